package convert

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dgallion1/wpmigrate/internal/entity"
	"github.com/dgallion1/wpmigrate/internal/richtext"
)

// containers are recursed into; their inline content is promoted to paragraphs.
var containers = map[atom.Atom]bool{
	atom.Body: true, atom.Div: true, atom.Span: true, atom.Section: true,
	atom.Article: true, atom.Main: true, atom.Header: true, atom.Footer: true,
	atom.Aside: true, atom.Figure: true, atom.Center: true,
}

// inlineFormats maps phrasing elements to Lexical text format flags.
var inlineFormats = map[atom.Atom]int{
	atom.Strong: richtext.FormatBold, atom.B: richtext.FormatBold,
	atom.Em: richtext.FormatItalic, atom.I: richtext.FormatItalic, atom.Cite: richtext.FormatItalic,
	atom.U: richtext.FormatUnderline, atom.Ins: richtext.FormatUnderline,
	atom.S: richtext.FormatStrikethrough, atom.Del: richtext.FormatStrikethrough, atom.Strike: richtext.FormatStrikethrough,
	atom.Code: richtext.FormatCode, atom.Kbd: richtext.FormatCode, atom.Samp: richtext.FormatCode,
	atom.Sub: richtext.FormatSubscript,
	atom.Sup: richtext.FormatSuperscript,
}

var inlineOnly = map[atom.Atom]bool{
	atom.A: true, atom.Br: true, atom.Img: true, atom.Mark: true, atom.Small: true,
	atom.Abbr: true, atom.Q: true, atom.Time: true, atom.Label: true, atom.Font: true,
	atom.Wbr: true,
}

var headingLevels = map[atom.Atom]int{
	atom.H1: 1, atom.H2: 2, atom.H3: 3, atom.H4: 4, atom.H5: 5, atom.H6: 6,
}

// walkNodes maps the children of n to block nodes with the recursive strategy.
func walkNodes(n *html.Node) []richtext.Node {
	w := &walker{}
	w.children(n)
	w.flush()
	return w.out
}

type walker struct {
	out     []richtext.Node
	pending runs
}

func (w *walker) children(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.node(c)
	}
}

func (w *walker) node(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		w.pending.text(n.Data, 0)
		return
	case html.ElementNode:
	default:
		return
	}

	if isInline(n) {
		w.pending.inline(n, 0)
		return
	}
	w.flush()

	switch {
	case headingLevels[n.DataAtom] > 0:
		var r runs
		r.inlineChildren(n, 0)
		if content := r.trimmed(); hasText(content) {
			w.out = append(w.out, richtext.NewHeading(headingLevels[n.DataAtom], content...))
		}
	case n.DataAtom == atom.P:
		var r runs
		r.inlineChildren(n, 0)
		if content := r.trimmed(); hasText(content) {
			w.out = append(w.out, richtext.NewParagraph(content...))
		}
	case n.DataAtom == atom.Ul || n.DataAtom == atom.Ol:
		if l := listNode(n); l != nil {
			w.out = append(w.out, l)
		}
	case n.DataAtom == atom.Table:
		if t := tableNode(n); t != nil {
			w.out = append(w.out, t)
		}
	case containers[n.DataAtom]:
		w.children(n)
		w.flush()
	case n.DataAtom == atom.Hr:
	default:
		if text := collapseSpace(entity.Decode(textContent(n))); text != "" {
			w.out = append(w.out, richtext.TextParagraph(text))
		}
	}
}

// flush turns buffered inline content into one paragraph.
func (w *walker) flush() {
	content := w.pending.trimmed()
	w.pending = runs{}
	if hasText(content) {
		w.out = append(w.out, richtext.NewParagraph(content...))
	}
}

// isInline reports whether n belongs in a paragraph run. A span is inline
// unless it wraps block content.
func isInline(n *html.Node) bool {
	if _, ok := inlineFormats[n.DataAtom]; ok {
		return true
	}
	if inlineOnly[n.DataAtom] {
		return true
	}
	return n.DataAtom == atom.Span && !hasBlockDescendant(n)
}

func hasBlockDescendant(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if !isInline(c) {
			return true
		}
		if hasBlockDescendant(c) {
			return true
		}
	}
	return false
}

// runs accumulates inline nodes, merging adjacent text of the same format.
type runs struct {
	nodes []richtext.Node
}

func (r *runs) text(s string, format int) {
	s = entity.Decode(spaceRun.ReplaceAllString(s, " "))
	if s == "" {
		return
	}
	if len(r.nodes) == 0 && strings.TrimSpace(s) == "" {
		return
	}
	if last, ok := r.lastText(); ok {
		if strings.HasSuffix(last.Text, " ") {
			s = strings.TrimLeft(s, " ")
		}
		if last.Format == format {
			last.Text += s
			return
		}
		if s == "" {
			return
		}
	}
	r.nodes = append(r.nodes, richtext.NewText(s, format))
}

func (r *runs) lastText() (*richtext.Text, bool) {
	if len(r.nodes) == 0 {
		return nil, false
	}
	t, ok := r.nodes[len(r.nodes)-1].(*richtext.Text)
	return t, ok
}

func (r *runs) inline(n *html.Node, format int) {
	switch n.Type {
	case html.TextNode:
		r.text(n.Data, format)
		return
	case html.ElementNode:
	default:
		return
	}
	switch n.DataAtom {
	case atom.Br:
		r.nodes = append(r.nodes, richtext.NewLineBreak())
		return
	case atom.A:
		href := attr(n, "href")
		if href == "" {
			r.inlineChildren(n, format)
			return
		}
		var inner runs
		inner.inlineChildren(n, format)
		link := richtext.NewLink(href, inner.trimmed()...)
		link.Fields.NewTab = attr(n, "target") == "_blank"
		r.nodes = append(r.nodes, link)
		return
	}
	if f, ok := inlineFormats[n.DataAtom]; ok {
		format |= f
	}
	r.inlineChildren(n, format)
}

// inlineChildren flattens everything under n into runs. Block children are
// separated by line breaks.
func (r *runs) inlineChildren(n *html.Node, format int) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		block := c.Type == html.ElementNode && !isInline(c)
		if block && len(r.nodes) > 0 {
			r.nodes = append(r.nodes, richtext.NewLineBreak())
		}
		r.inline(c, format)
	}
}

// trimmed drops leading and trailing whitespace and line breaks.
func (r *runs) trimmed() []richtext.Node {
	nodes := r.nodes
	for len(nodes) > 0 {
		if t, ok := nodes[0].(*richtext.Text); ok {
			t.Text = strings.TrimLeft(t.Text, " ")
			if t.Text != "" {
				break
			}
		} else if _, ok := nodes[0].(*richtext.LineBreak); !ok {
			break
		}
		nodes = nodes[1:]
	}
	for len(nodes) > 0 {
		last := nodes[len(nodes)-1]
		if t, ok := last.(*richtext.Text); ok {
			t.Text = strings.TrimRight(t.Text, " ")
			if t.Text != "" {
				break
			}
		} else if _, ok := last.(*richtext.LineBreak); !ok {
			break
		}
		nodes = nodes[:len(nodes)-1]
	}
	return nodes
}

func hasText(nodes []richtext.Node) bool {
	for _, n := range nodes {
		if _, ok := n.(*richtext.LineBreak); ok {
			continue
		}
		if richtext.PlainText(n) != "" {
			return true
		}
	}
	return false
}

// listNode maps ul/ol. Nested lists follow the item's paragraph.
func listNode(n *html.Node) *richtext.List {
	var items []*richtext.ListItem
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.DataAtom != atom.Li {
			continue
		}
		var (
			r      runs
			nested []richtext.Node
		)
		for gc := c.FirstChild; gc != nil; gc = gc.NextSibling {
			if gc.Type == html.ElementNode && (gc.DataAtom == atom.Ul || gc.DataAtom == atom.Ol) {
				if l := listNode(gc); l != nil {
					nested = append(nested, l)
				}
				continue
			}
			if gc.Type == html.ElementNode && !isInline(gc) && len(r.nodes) > 0 {
				r.nodes = append(r.nodes, richtext.NewLineBreak())
			}
			r.inline(gc, 0)
		}
		items = append(items, richtext.NewListItem(richtext.NewParagraph(r.trimmed()...), nested...))
	}
	if len(items) == 0 {
		return nil
	}
	return richtext.NewList(n.DataAtom == atom.Ol, items...)
}

// tableNode maps a table, reading rows from thead/tbody/tfoot sections. Cells
// are th elements or sit in thead to count as header cells.
func tableNode(n *html.Node) *richtext.Table {
	var rows []*richtext.TableRow
	var addRow func(tr *html.Node, inHead bool)
	addRow = func(tr *html.Node, inHead bool) {
		var cells []*richtext.TableCell
		for c := tr.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode || (c.DataAtom != atom.Td && c.DataAtom != atom.Th) {
				continue
			}
			var r runs
			r.inlineChildren(c, 0)
			cells = append(cells, richtext.NewTableCell(inHead || c.DataAtom == atom.Th, richtext.NewParagraph(r.trimmed()...)))
		}
		if len(cells) > 0 {
			rows = append(rows, richtext.NewTableRow(cells...))
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.DataAtom {
		case atom.Tr:
			addRow(c, false)
		case atom.Thead, atom.Tbody, atom.Tfoot:
			for tr := c.FirstChild; tr != nil; tr = tr.NextSibling {
				if tr.Type == html.ElementNode && tr.DataAtom == atom.Tr {
					addRow(tr, c.DataAtom == atom.Thead)
				}
			}
		}
	}
	if len(rows) == 0 {
		return nil
	}
	return richtext.NewTable(rows...)
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(textContent(c))
		sb.WriteByte(' ')
	}
	return sb.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
