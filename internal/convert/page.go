package convert

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/dgallion1/wpmigrate/internal/blocks"
	"github.com/dgallion1/wpmigrate/internal/richtext"
	"github.com/dgallion1/wpmigrate/internal/sanitize"
)

// PageResult is the outcome of a page conversion.
type PageResult struct {
	Blocks      []blocks.Block
	Attribution *Attribution
	TOC         *TOC
	// PromoRowsRemoved counts layout rows dropped for promotional text.
	PromoRowsRemoved int
}

// Page converts page-builder markup into ordered layout blocks: the intro
// row, the attribution, the table of contents, then the remaining rows.
// It never returns an empty layout.
func (c *Converter) Page(raw string) (*PageResult, error) {
	res := &PageResult{}
	if strings.TrimSpace(raw) == "" {
		res.Blocks = []blocks.Block{blocks.NewContent(richtext.NewDocument())}
		return res, nil
	}

	// Scans read class values, so they run on the raw tree; each row is
	// sanitized on its own afterwards.
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(sanitize.StripMalformedClosers(raw)))
	if err != nil {
		return nil, fmt.Errorf("parse page markup: %w", err)
	}
	doc.Find("script, style, noscript").Remove()

	attribution, match := scanAttribution(doc, c.rules.AttributionSelector)
	if match != nil {
		match.Remove()
		res.Attribution = attribution
		c.log.Debug("attribution found", "author", attribution.Author, "reviewer", attribution.Reviewer)
	}
	if res.TOC = scanTOC(doc, c.rules); res.TOC != nil {
		c.log.Debug("table of contents found", "items", len(res.TOC.Items))
	}
	res.PromoRowsRemoved = c.removePromoRows(doc)

	regions, err := c.regions(doc.Find("body"))
	if err != nil {
		return nil, err
	}
	var (
		content  []*blocks.Content
		introAt  = -1
		sawFirst bool
	)
	for _, rg := range regions {
		cleaned, err := c.sanitizer.Clean(rg.markup)
		if err != nil {
			return nil, fmt.Errorf("sanitize row: %w", err)
		}
		nodes, err := walkMarkup(cleaned)
		if err != nil {
			return nil, err
		}
		if len(nodes) == 0 {
			continue
		}
		block := blocks.NewContent(richtext.NewDocument(nodes...))
		// The intro is the first non-empty row, unless it holds a section heading.
		if rg.row && !sawFirst {
			sawFirst = true
			if !hasHeading(block.RichText, "h2") {
				introAt = len(content)
			}
		}
		content = append(content, block)
	}

	var intro []blocks.Block
	rest := content
	if introAt >= 0 {
		intro = append(intro, content[introAt])
		rest = append(append([]*blocks.Content{}, content[:introAt]...), content[introAt+1:]...)
	}
	res.Blocks = append(res.Blocks, intro...)
	if res.Attribution != nil {
		res.Blocks = append(res.Blocks, blocks.NewAuthorReviewer(res.Attribution.Author, res.Attribution.Reviewer, res.Attribution.ReviewerTitel))
	}
	if res.TOC != nil {
		res.Blocks = append(res.Blocks, blocks.NewTableOfContents(res.TOC.Title, res.TOC.Items))
	}
	for _, b := range rest {
		res.Blocks = append(res.Blocks, b)
	}
	if len(res.Blocks) == 0 {
		res.Blocks = []blocks.Block{blocks.NewContent(richtext.NewDocument())}
	}
	return res, nil
}

// removePromoRows drops layout rows whose text holds a promotional phrase.
// Inner rows go first so only the smallest enclosing row is lost.
func (c *Converter) removePromoRows(doc *goquery.Document) int {
	nodes := doc.Find(c.rules.RowSelector).Nodes
	removed := 0
	for i := len(nodes) - 1; i >= 0; i-- {
		n := nodes[i]
		if n.Parent == nil {
			continue
		}
		text := strings.ToLower(collapseSpace(textContent(n)))
		for _, phrase := range c.rules.PromoPhrases {
			if phrase != "" && strings.Contains(text, strings.ToLower(phrase)) {
				n.Parent.RemoveChild(n)
				removed++
				c.log.Debug("promotional row removed", "phrase", phrase)
				break
			}
		}
	}
	return removed
}

// region is one slice of page markup. Loose content between rows is not a row.
type region struct {
	markup string
	row    bool
}

// regions splits the body into top-level layout rows, each flattened to the
// concatenated markup of its columns. Content between rows forms its own
// region. Without rows the whole body is one region and counts as a row.
func (c *Converter) regions(body *goquery.Selection) ([]region, error) {
	rowSel := c.rules.RowSelector
	rows := body.Find(rowSel).FilterFunction(func(_ int, r *goquery.Selection) bool {
		return r.ParentsFiltered(rowSel).Length() == 0
	})
	if rows.Length() == 0 {
		markup, err := body.Html()
		if err != nil {
			return nil, fmt.Errorf("render page body: %w", err)
		}
		return []region{{markup: markup, row: true}}, nil
	}

	rowIndex := make(map[*html.Node]int, rows.Length())
	holdsRow := make(map[*html.Node]bool)
	for i, n := range rows.Nodes {
		rowIndex[n] = i
		for p := n.Parent; p != nil; p = p.Parent {
			holdsRow[p] = true
		}
	}

	var (
		out   []region
		loose strings.Builder
	)
	flush := func() {
		if extractText(loose.String()) != "" {
			out = append(out, region{markup: loose.String()})
		}
		loose.Reset()
	}
	var visit func(n *html.Node) error
	visit = func(n *html.Node) error {
		for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
			if i, ok := rowIndex[ch]; ok {
				flush()
				markup, err := c.flattenRow(rows.Eq(i))
				if err != nil {
					return err
				}
				out = append(out, region{markup: markup, row: true})
				continue
			}
			if holdsRow[ch] {
				if err := visit(ch); err != nil {
					return err
				}
				continue
			}
			if err := html.Render(&loose, ch); err != nil {
				return fmt.Errorf("render loose content: %w", err)
			}
		}
		return nil
	}
	if err := visit(body.Get(0)); err != nil {
		return nil, err
	}
	flush()
	return out, nil
}

func (c *Converter) flattenRow(row *goquery.Selection) (string, error) {
	colSel := c.rules.ColumnSelector
	cols := row.Find(colSel).FilterFunction(func(_ int, col *goquery.Selection) bool {
		return col.ParentsUntilSelection(row).Filter(colSel).Length() == 0
	})
	if cols.Length() == 0 {
		markup, err := row.Html()
		if err != nil {
			return "", fmt.Errorf("render row: %w", err)
		}
		return markup, nil
	}
	var sb strings.Builder
	for i := range cols.Nodes {
		markup, err := cols.Eq(i).Html()
		if err != nil {
			return "", fmt.Errorf("render column: %w", err)
		}
		sb.WriteString(markup)
	}
	return sb.String(), nil
}

func hasHeading(doc richtext.Document, tag string) bool {
	for _, n := range doc.Root.Children {
		if h, ok := n.(*richtext.Heading); ok && h.Tag == tag {
			return true
		}
	}
	return false
}
