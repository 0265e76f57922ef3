// Package richtext models the Lexical rich-text tree stored in Payload richText fields.
//
// Every node type is a concrete struct; the set is closed by the unexported
// method on Node, so an unsupported node kind fails at compile time instead of
// in the admin renderer.
package richtext

import (
	"encoding/json"
	"strings"
)

// Node is any node that can appear in a Lexical tree.
type Node interface {
	nodeType() string
}

// Text format bit flags, matching Lexical's IS_BOLD, IS_ITALIC, ... constants.
const (
	FormatBold          = 1
	FormatItalic        = 2
	FormatStrikethrough = 4
	FormatUnderline     = 8
	FormatCode          = 16
	FormatSubscript     = 32
	FormatSuperscript   = 64
)

// Header states for table cells.
const (
	HeaderNone = 0
	HeaderRow  = 1
)

const ltr = "ltr"

// Element holds the layout metadata every Lexical element node carries.
type Element struct {
	Direction *string `json:"direction"`
	Format    string  `json:"format"`
	Indent    int     `json:"indent"`
	Version   int     `json:"version"`
}

func newElement() Element {
	dir := ltr
	return Element{Direction: &dir, Version: 1}
}

// Document is the value of a richText field.
type Document struct {
	Root Root `json:"root"`
}

// Root owns the ordered block nodes of a document.
type Root struct {
	Element
	Children []Node `json:"children"`
}

type Paragraph struct {
	Element
	Children   []Node `json:"children"`
	TextFormat int    `json:"textFormat"`
	TextStyle  string `json:"textStyle"`
}

type Heading struct {
	Element
	Tag      string `json:"tag"`
	Children []Node `json:"children"`
}

type List struct {
	Element
	ListType string `json:"listType"`
	Start    int    `json:"start"`
	Tag      string `json:"tag"`
	Children []Node `json:"children"`
}

type ListItem struct {
	Element
	Value    int    `json:"value"`
	Children []Node `json:"children"`
}

type Table struct {
	Element
	Children []Node `json:"children"`
}

type TableRow struct {
	Element
	Children []Node `json:"children"`
}

type TableCell struct {
	Element
	HeaderState     int     `json:"headerState"`
	ColSpan         int     `json:"colSpan"`
	RowSpan         int     `json:"rowSpan"`
	BackgroundColor *string `json:"backgroundColor"`
	Children        []Node  `json:"children"`
}

// Link is Payload's link node; Fields mirrors its link field group.
type Link struct {
	Element
	Fields   LinkFields `json:"fields"`
	Children []Node     `json:"children"`
}

type LinkFields struct {
	URL      string `json:"url"`
	NewTab   bool   `json:"newTab"`
	LinkType string `json:"linkType"`
}

// Text is a run of characters sharing one format.
type Text struct {
	Text    string `json:"text"`
	Format  int    `json:"format"`
	Detail  int    `json:"detail"`
	Mode    string `json:"mode"`
	Style   string `json:"style"`
	Version int    `json:"version"`
}

type LineBreak struct {
	Version int `json:"version"`
}

func (Root) nodeType() string      { return "root" }
func (Paragraph) nodeType() string { return "paragraph" }
func (Heading) nodeType() string   { return "heading" }
func (List) nodeType() string      { return "list" }
func (ListItem) nodeType() string  { return "listitem" }
func (Table) nodeType() string     { return "table" }
func (TableRow) nodeType() string  { return "tablerow" }
func (TableCell) nodeType() string { return "tablecell" }
func (Link) nodeType() string      { return "link" }
func (Text) nodeType() string      { return "text" }
func (LineBreak) nodeType() string { return "linebreak" }

// NewDocument wraps children in a root. With no children the root gets a
// single empty paragraph, since the editor refuses an empty root.
func NewDocument(children ...Node) Document {
	if len(children) == 0 {
		children = []Node{NewParagraph()}
	}
	return Document{Root: Root{Element: newElement(), Children: children}}
}

// IsPlaceholder reports whether the document holds only the empty paragraph
// NewDocument falls back to.
func (d Document) IsPlaceholder() bool {
	if len(d.Root.Children) != 1 {
		return false
	}
	p, ok := d.Root.Children[0].(*Paragraph)
	return ok && len(p.Children) == 0
}

func NewText(s string, format int) *Text {
	return &Text{Text: s, Format: format, Mode: "normal", Version: 1}
}

func NewLineBreak() *LineBreak {
	return &LineBreak{Version: 1}
}

// NewParagraph builds a paragraph; no children yields an empty paragraph.
func NewParagraph(children ...Node) *Paragraph {
	return &Paragraph{Element: newElement(), Children: nonNil(children)}
}

// TextParagraph is a paragraph holding one plain text run, or no runs when s
// is empty.
func TextParagraph(s string) *Paragraph {
	if s == "" {
		return NewParagraph()
	}
	return NewParagraph(NewText(s, 0))
}

// NewHeading builds an h1..h6 node. Out-of-range levels are clamped.
func NewHeading(level int, children ...Node) *Heading {
	level = min(max(level, 1), 6)
	return &Heading{
		Element:  newElement(),
		Tag:      "h" + string(rune('0'+level)),
		Children: nonNil(children),
	}
}

// NewList builds a bullet or number list. Item values are renumbered from 1.
func NewList(ordered bool, items ...*ListItem) *List {
	l := &List{Element: newElement(), ListType: "bullet", Start: 1, Tag: "ul"}
	if ordered {
		l.ListType = "number"
		l.Tag = "ol"
	}
	l.Children = make([]Node, 0, len(items))
	for i, item := range items {
		item.Value = i + 1
		l.Children = append(l.Children, item)
	}
	return l
}

// NewListItem wraps content in the paragraph Payload's list renderer expects.
// Extra nodes (nested lists) follow the paragraph.
func NewListItem(content *Paragraph, extra ...Node) *ListItem {
	children := append([]Node{content}, extra...)
	return &ListItem{Element: newElement(), Value: 1, Children: children}
}

func NewTable(rows ...*TableRow) *Table {
	t := &Table{Element: newElement(), Children: make([]Node, 0, len(rows))}
	for _, r := range rows {
		t.Children = append(t.Children, r)
	}
	return t
}

func NewTableRow(cells ...*TableCell) *TableRow {
	r := &TableRow{Element: newElement(), Children: make([]Node, 0, len(cells))}
	for _, c := range cells {
		r.Children = append(r.Children, c)
	}
	return r
}

// NewTableCell wraps content in a paragraph with spans of 1.
func NewTableCell(header bool, content *Paragraph) *TableCell {
	state := HeaderNone
	if header {
		state = HeaderRow
	}
	return &TableCell{
		Element:     newElement(),
		HeaderState: state,
		ColSpan:     1,
		RowSpan:     1,
		Children:    []Node{content},
	}
}

func NewLink(url string, children ...Node) *Link {
	return &Link{
		Element:  newElement(),
		Fields:   LinkFields{URL: url, LinkType: "custom"},
		Children: nonNil(children),
	}
}

func nonNil(nodes []Node) []Node {
	if nodes == nil {
		return []Node{}
	}
	return nodes
}

// PlainText flattens a node's text, separating block children with newlines.
func PlainText(n Node) string {
	var sb strings.Builder
	writePlain(&sb, n)
	return strings.TrimSpace(sb.String())
}

func writePlain(sb *strings.Builder, n Node) {
	switch v := n.(type) {
	case *Text:
		sb.WriteString(v.Text)
	case *LineBreak:
		sb.WriteByte('\n')
	case *Link:
		writeChildren(sb, v.Children, "")
	case *Paragraph:
		writeChildren(sb, v.Children, "")
	case *Heading:
		writeChildren(sb, v.Children, "")
	case *ListItem:
		writeChildren(sb, v.Children, "\n")
	case *List:
		writeChildren(sb, v.Children, "\n")
	case *TableCell:
		writeChildren(sb, v.Children, "")
	case *TableRow:
		writeChildren(sb, v.Children, "\t")
	case *Table:
		writeChildren(sb, v.Children, "\n")
	case *Root:
		writeChildren(sb, v.Children, "\n")
	}
}

func writeChildren(sb *strings.Builder, children []Node, sep string) {
	for i, c := range children {
		if i > 0 {
			sb.WriteString(sep)
		}
		writePlain(sb, c)
	}
}

// MarshalJSON implementations add the Lexical "type" discriminator.

func (n Root) MarshalJSON() ([]byte, error) {
	type alias Root
	n.Children = nonNil(n.Children)
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{n.nodeType(), alias(n)})
}

func (n Paragraph) MarshalJSON() ([]byte, error) {
	type alias Paragraph
	n.Children = nonNil(n.Children)
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{n.nodeType(), alias(n)})
}

func (n Heading) MarshalJSON() ([]byte, error) {
	type alias Heading
	n.Children = nonNil(n.Children)
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{n.nodeType(), alias(n)})
}

func (n List) MarshalJSON() ([]byte, error) {
	type alias List
	n.Children = nonNil(n.Children)
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{n.nodeType(), alias(n)})
}

func (n ListItem) MarshalJSON() ([]byte, error) {
	type alias ListItem
	n.Children = nonNil(n.Children)
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{n.nodeType(), alias(n)})
}

func (n Table) MarshalJSON() ([]byte, error) {
	type alias Table
	n.Children = nonNil(n.Children)
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{n.nodeType(), alias(n)})
}

func (n TableRow) MarshalJSON() ([]byte, error) {
	type alias TableRow
	n.Children = nonNil(n.Children)
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{n.nodeType(), alias(n)})
}

func (n TableCell) MarshalJSON() ([]byte, error) {
	type alias TableCell
	n.Children = nonNil(n.Children)
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{n.nodeType(), alias(n)})
}

func (n Link) MarshalJSON() ([]byte, error) {
	type alias Link
	n.Children = nonNil(n.Children)
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{n.nodeType(), alias(n)})
}

func (n Text) MarshalJSON() ([]byte, error) {
	type alias Text
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{n.nodeType(), alias(n)})
}

func (n LineBreak) MarshalJSON() ([]byte, error) {
	type alias LineBreak
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{n.nodeType(), alias(n)})
}
