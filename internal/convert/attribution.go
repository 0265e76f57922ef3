package convert

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/dgallion1/wpmigrate/internal/entity"
)

// Attribution credits the author and the optional medical reviewer of a page.
type Attribution struct {
	Author        string
	Reviewer      string
	ReviewerTitel string
}

// The author name runs up to the first hyphen, en dash or em dash. The
// reviewer title is everything after the first comma.
var (
	authorPattern   = regexp.MustCompile(`(?i)^\s*auteur:\s*([^\-–—]+)`)
	reviewerPattern = regexp.MustCompile(`(?i)reviewer:\s*([^,]+)(?:,\s*(.+))?`)
)

// ParseAttribution extracts an attribution from text that starts with an
// "Auteur:" label.
func ParseAttribution(text string) (Attribution, bool) {
	m := authorPattern.FindStringSubmatchIndex(text)
	if m == nil {
		return Attribution{}, false
	}
	a := Attribution{Author: strings.TrimSpace(text[m[2]:m[3]])}
	if a.Author == "" {
		return Attribution{}, false
	}
	if rm := reviewerPattern.FindStringSubmatch(text[m[1]:]); rm != nil {
		a.Reviewer = strings.TrimSpace(rm[1])
		a.ReviewerTitel = strings.TrimSpace(rm[2])
	}
	return a, true
}

// scanAttribution returns the first candidate element carrying an
// attribution. The matched element is returned so the caller can remove it.
func scanAttribution(doc *goquery.Document, selector string) (*Attribution, *goquery.Selection) {
	var (
		found *Attribution
		match *goquery.Selection
	)
	doc.Find(selector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		a, ok := ParseAttribution(collapseSpace(entity.Decode(sel.Text())))
		if !ok {
			return true
		}
		found, match = &a, sel
		return false
	})
	return found, match
}
