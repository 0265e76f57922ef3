package source

import (
	"bufio"
	"fmt"
	"html"
	"io"
	"strings"
)

// TextLoader handles plain text files. Blank lines separate paragraphs and
// single newlines become line breaks.
type TextLoader struct{}

func (l *TextLoader) Load(r io.Reader, filename string) (*Document, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var paragraphs [][]string
	var current []string

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			if len(current) > 0 {
				paragraphs = append(paragraphs, current)
				current = nil
			}
			continue
		}
		current = append(current, html.EscapeString(line))
	}
	if len(current) > 0 {
		paragraphs = append(paragraphs, current)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read text: %w", err)
	}

	var body strings.Builder
	for _, lines := range paragraphs {
		body.WriteString("<p>" + strings.Join(lines, "<br>") + "</p>\n")
	}

	d := newFileDocument(filename)
	d.Body = strings.TrimSpace(body.String())
	return d, nil
}
