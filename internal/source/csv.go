package source

import (
	"encoding/csv"
	"fmt"
	"html"
	"io"
	"strings"
)

// CSVLoader renders a CSV file as one HTML table. The first record is the
// header row.
type CSVLoader struct{}

func (l *CSVLoader) Load(r io.Reader, filename string) (*Document, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	d := newFileDocument(filename)
	if len(records) == 0 {
		return d, nil
	}

	var b strings.Builder
	b.WriteString("<table>")
	for i, row := range records {
		cell := "td"
		if i == 0 {
			cell = "th"
		}
		b.WriteString("<tr>")
		for _, v := range row {
			fmt.Fprintf(&b, "<%s>%s</%s>", cell, html.EscapeString(v), cell)
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</table>")
	d.Body = b.String()
	return d, nil
}
