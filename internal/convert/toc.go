package convert

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/dgallion1/wpmigrate/internal/blocks"
	"github.com/dgallion1/wpmigrate/internal/entity"
)

// TOC is a table of contents lifted out of page markup.
type TOC struct {
	Title string
	Items []blocks.TOCItem
}

// scanTOC reads the first element matching rules.TOCSelector and removes
// every match, whether or not items were found. It returns nil when the first
// match has no labelled items.
func scanTOC(doc *goquery.Document, rules PageRules) *TOC {
	matches := doc.Find(rules.TOCSelector)
	if matches.Length() == 0 {
		return nil
	}
	defer matches.Remove()

	first := matches.First()
	toc := &TOC{Title: rules.DefaultTOCTitle}
	if rules.TOCTitleSelector != "" {
		if title := cleanText(first.Find(rules.TOCTitleSelector).First().Text()); title != "" {
			toc.Title = title
		}
	}

	seen := make(map[string]bool)
	first.Find("li").Each(func(_ int, li *goquery.Selection) {
		label := cleanText(li.Text())
		link := li.Find("a").First()
		if link.Length() > 0 {
			if text := cleanText(link.Text()); text != "" {
				label = text
			}
		}
		if label == "" || seen[label] {
			return
		}
		seen[label] = true
		toc.Items = append(toc.Items, blocks.TOCItem{Label: label, Anchor: anchorID(link.AttrOr("href", ""))})
	})
	if len(toc.Items) == 0 {
		return nil
	}
	return toc
}

// anchorID resolves in-page fragment links only; any other href has no anchor.
func anchorID(href string) string {
	if !strings.HasPrefix(href, "#") {
		return ""
	}
	return strings.TrimPrefix(href, "#")
}

func cleanText(s string) string {
	return collapseSpace(entity.Decode(s))
}
