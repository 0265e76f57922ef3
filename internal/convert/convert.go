// Package convert maps sanitized WordPress markup to Payload rich text and
// page layout blocks.
package convert

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/dgallion1/wpmigrate/internal/richtext"
	"github.com/dgallion1/wpmigrate/internal/sanitize"
)

// Strategy selects how markup is mapped.
type Strategy string

const (
	// StrategyArticle splits markup linearly into headings, paragraphs, lists and tables.
	StrategyArticle Strategy = "article"
	// StrategyPage walks the tree and produces ordered layout blocks.
	StrategyPage Strategy = "page"
	// StrategyDocument walks the tree into a single rich-text document.
	StrategyDocument Strategy = "document"
)

// ParseStrategy validates a strategy name; empty selects StrategyDocument.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", StrategyDocument:
		return StrategyDocument, nil
	case StrategyArticle:
		return StrategyArticle, nil
	case StrategyPage:
		return StrategyPage, nil
	}
	return "", fmt.Errorf("unknown strategy %q (want article, page or document)", s)
}

// Converter holds read-only rules and is safe for concurrent use.
type Converter struct {
	sanitizer *sanitize.Sanitizer
	rules     PageRules
	log       *slog.Logger
}

func New(s *sanitize.Sanitizer, rules PageRules, log *slog.Logger) *Converter {
	if s == nil {
		s = sanitize.New(sanitize.DefaultRules())
	}
	if log == nil {
		log = slog.Default()
	}
	return &Converter{sanitizer: s, rules: rules.Merge(DefaultPageRules()), log: log}
}

// Article converts post markup with the linear strategy.
func (c *Converter) Article(raw string) (richtext.Document, error) {
	cleaned, err := c.sanitizer.Clean(raw)
	if err != nil {
		return richtext.Document{}, fmt.Errorf("sanitize article: %w", err)
	}
	return richtext.NewDocument(linearNodes(cleaned)...), nil
}

// Document converts markup with the recursive strategy into one document.
func (c *Converter) Document(raw string) (richtext.Document, error) {
	cleaned, err := c.sanitizer.Clean(raw)
	if err != nil {
		return richtext.Document{}, fmt.Errorf("sanitize document: %w", err)
	}
	nodes, err := walkMarkup(cleaned)
	if err != nil {
		return richtext.Document{}, err
	}
	return richtext.NewDocument(nodes...), nil
}

// Convert runs the given strategy. Page conversion returns the layout blocks,
// the other strategies a richtext.Document.
func (c *Converter) Convert(strategy Strategy, raw string) (any, error) {
	switch strategy {
	case StrategyArticle:
		return c.Article(raw)
	case StrategyPage:
		res, err := c.Page(raw)
		if err != nil {
			return nil, err
		}
		return res.Blocks, nil
	case StrategyDocument:
		return c.Document(raw)
	}
	return nil, fmt.Errorf("unknown strategy %q", strategy)
}

// SanitizedBody returns the sanitized markup used for previews.
func (c *Converter) SanitizedBody(raw string) (string, error) {
	return c.sanitizer.Clean(raw)
}

func walkMarkup(markup string) ([]richtext.Node, error) {
	if markup == "" {
		return nil, nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parse sanitized markup: %w", err)
	}
	body := doc.Find("body")
	if body.Length() == 0 {
		return nil, nil
	}
	return walkNodes(body.Get(0)), nil
}

