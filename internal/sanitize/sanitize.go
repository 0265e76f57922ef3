// Package sanitize strips WordPress post markup down to its semantic content.
package sanitize

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Pass is one sanitization step over the parsed tree.
type Pass struct {
	Name  string
	Apply func(doc *goquery.Document)
}

// Sanitizer runs a fixed, ordered list of passes. It holds only read-only
// rules and is safe for concurrent use.
type Sanitizer struct {
	rules Rules
}

func New(rules Rules) *Sanitizer {
	return &Sanitizer{rules: rules.Merge(DefaultRules())}
}

// Rules returns the effective rules.
func (s *Sanitizer) Rules() Rules {
	return s.rules
}

// malformedCloser matches closing tags like </2td> that an old table plugin
// emitted; left in place they derail tree construction.
var malformedCloser = regexp.MustCompile(`(?i)</[0-9]+[a-z][a-z0-9]*\s*>`)

// StripMalformedClosers removes numeric-prefixed closing tags from raw markup.
func StripMalformedClosers(markup string) string {
	return malformedCloser.ReplaceAllString(markup, "")
}

// Passes returns the passes in the order Clean applies them. The order is
// load-bearing: style content must go before anything reads text, wrappers
// are unwrapped while classes still exist, and emptiness is only decided once
// everything else has been removed.
func (s *Sanitizer) Passes() []Pass {
	return []Pass{
		{Name: "remove_scripts", Apply: removeScripts},
		{Name: "remove_denylisted", Apply: s.removeDenylisted},
		{Name: "remove_decorative_svg", Apply: removeDecorativeSVG},
		{Name: "remove_event_handlers", Apply: s.removeEventHandlers},
		{Name: "unwrap_wrappers", Apply: s.unwrapWrappers},
		{Name: "strip_presentation", Apply: stripPresentation},
		{Name: "remove_generated_ids", Apply: s.removeGeneratedIDs},
		{Name: "remove_empty_paragraphs", Apply: removeEmptyParagraphs},
		{Name: "remove_empty_containers", Apply: removeEmptyContainers},
	}
}

// Clean returns the sanitized body markup. Empty input yields "".
func (s *Sanitizer) Clean(markup string) (string, error) {
	if strings.TrimSpace(markup) == "" {
		return "", nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(StripMalformedClosers(markup)))
	if err != nil {
		return "", fmt.Errorf("parse markup: %w", err)
	}
	for _, p := range s.Passes() {
		p.Apply(doc)
	}
	out, err := doc.Find("body").Html()
	if err != nil {
		return "", fmt.Errorf("render markup: %w", err)
	}
	return strings.TrimSpace(out), nil
}

func removeScripts(doc *goquery.Document) {
	doc.Find("script, style, noscript").Remove()
}

func (s *Sanitizer) removeDenylisted(doc *goquery.Document) {
	doc.Find("[class], [id]").Each(func(_ int, sel *goquery.Selection) {
		class, _ := sel.Attr("class")
		id, _ := sel.Attr("id")
		if containsAny(class, s.rules.RemovePatterns) || containsAny(id, s.rules.RemovePatterns) {
			sel.Remove()
		}
	})
}

// removeDecorativeSVG drops inline SVGs without width and height; sized SVGs
// are treated as content.
func removeDecorativeSVG(doc *goquery.Document) {
	doc.Find("svg").Each(func(_ int, sel *goquery.Selection) {
		_, hasWidth := sel.Attr("width")
		_, hasHeight := sel.Attr("height")
		if !hasWidth && !hasHeight {
			sel.Remove()
		}
	})
}

func (s *Sanitizer) removeEventHandlers(doc *goquery.Document) {
	doc.Find("*").Each(func(_ int, sel *goquery.Selection) {
		for _, attr := range s.rules.EventAttributes {
			sel.RemoveAttr(attr)
		}
	})
}

func (s *Sanitizer) unwrapWrappers(doc *goquery.Document) {
	doc.Find("[class]").Each(func(_ int, sel *goquery.Selection) {
		class, _ := sel.Attr("class")
		if !hasClassPrefix(class, s.rules.WrapperPrefixes) {
			return
		}
		switch goquery.NodeName(sel) {
		case "div", "section", "figure":
			for _, n := range sel.Nodes {
				unwrap(n)
			}
		default:
			sel.RemoveAttr("class")
			sel.RemoveAttr("style")
		}
	})
}

func stripPresentation(doc *goquery.Document) {
	doc.Find("*").Each(func(_ int, sel *goquery.Selection) {
		for _, n := range sel.Nodes {
			kept := n.Attr[:0]
			for _, a := range n.Attr {
				if a.Key == "class" || a.Key == "style" || strings.HasPrefix(a.Key, "data-") {
					continue
				}
				kept = append(kept, a)
			}
			n.Attr = kept
		}
	})
}

func (s *Sanitizer) removeGeneratedIDs(doc *goquery.Document) {
	doc.Find("[id]").Each(func(_ int, sel *goquery.Selection) {
		id, _ := sel.Attr("id")
		for _, prefix := range s.rules.GeneratedIDPrefixes {
			if strings.HasPrefix(id, prefix) {
				sel.RemoveAttr("id")
				return
			}
		}
	})
}

func removeEmptyParagraphs(doc *goquery.Document) {
	doc.Find("p").Each(func(_ int, sel *goquery.Selection) {
		if strings.TrimSpace(sel.Text()) == "" && sel.Find("img, a, mark").Length() == 0 {
			sel.Remove()
		}
	})
}

// removeEmptyContainers walks innermost first so a div holding only empty
// spans is removed too.
func removeEmptyContainers(doc *goquery.Document) {
	nodes := doc.Find("div, span").Nodes
	for i := len(nodes) - 1; i >= 0; i-- {
		n := nodes[i]
		if n.Parent != nil && isBlank(n) {
			n.Parent.RemoveChild(n)
		}
	}
}

func isBlank(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.TextNode || strings.TrimSpace(c.Data) != "" {
			return false
		}
	}
	return true
}

// unwrap replaces n with its children.
func unwrap(n *html.Node) {
	parent := n.Parent
	if parent == nil {
		return
	}
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		parent.InsertBefore(c, n)
		c = next
	}
	parent.RemoveChild(n)
}

func containsAny(value string, patterns []string) bool {
	if value == "" {
		return false
	}
	value = strings.ToLower(value)
	for _, p := range patterns {
		if p != "" && strings.Contains(value, strings.ToLower(p)) {
			return true
		}
	}
	return false
}

func hasClassPrefix(class string, prefixes []string) bool {
	for _, token := range strings.Fields(class) {
		for _, p := range prefixes {
			if p != "" && strings.HasPrefix(token, p) {
				return true
			}
		}
	}
	return false
}
