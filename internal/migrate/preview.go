package migrate

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
)

// Preview is what a dry run prints instead of persisting.
type Preview struct {
	Title      string    `json:"title"`
	Slug       string    `json:"slug"`
	Collection string    `json:"collection"`
	Published  time.Time `json:"published,omitzero"`
	Excerpt    string    `json:"excerpt,omitempty"`
	Image      string    `json:"image,omitempty"`
	Categories []string  `json:"categories,omitempty"`
	Blocks     []string  `json:"blocks"`
	// Markdown renders the sanitized body for a quick read.
	Markdown string `json:"markdown"`
}

func newMarkdownConverter() *converter.Converter {
	return converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(
				commonmark.WithHeadingStyle("atx"),
			),
			table.NewTablePlugin(),
		),
	)
}

// WriteTo prints the preview as plain text.
func (p *Preview) WriteTo(w io.Writer) (int64, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Title:      %s\n", p.Title)
	fmt.Fprintf(&sb, "Slug:       %s\n", p.Slug)
	fmt.Fprintf(&sb, "Collection: %s\n", p.Collection)
	if !p.Published.IsZero() {
		fmt.Fprintf(&sb, "Published:  %s\n", p.Published.Format(time.RFC3339))
	}
	if p.Image != "" {
		fmt.Fprintf(&sb, "Image:      %s\n", p.Image)
	}
	if len(p.Categories) > 0 {
		fmt.Fprintf(&sb, "Categories: %s\n", strings.Join(p.Categories, ", "))
	}
	if p.Excerpt != "" {
		fmt.Fprintf(&sb, "Excerpt:    %s\n", p.Excerpt)
	}
	fmt.Fprintf(&sb, "\nBlocks (%d):\n", len(p.Blocks))
	for i, b := range p.Blocks {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, b)
	}
	sb.WriteString("\n--- body ---\n")
	sb.WriteString(p.Markdown)
	if !strings.HasSuffix(p.Markdown, "\n") {
		sb.WriteString("\n")
	}
	n, err := io.WriteString(w, sb.String())
	return int64(n), err
}
