package richtext

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestNewDocument_EmptyGetsPlaceholder(t *testing.T) {
	doc := NewDocument()
	if len(doc.Root.Children) != 1 {
		t.Fatalf("expected 1 placeholder child, got %d", len(doc.Root.Children))
	}
	if !doc.IsPlaceholder() {
		t.Error("expected placeholder document")
	}
	if err := doc.Validate(); err != nil {
		t.Errorf("placeholder should validate: %v", err)
	}
}

func TestDocument_MarshalShape(t *testing.T) {
	doc := NewDocument(
		NewHeading(2, NewText("Title", 0)),
		TextParagraph("Body"),
	)
	raw, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	root := got["root"].(map[string]any)
	if root["type"] != "root" {
		t.Errorf("expected root type, got %v", root["type"])
	}
	if root["direction"] != "ltr" {
		t.Errorf("expected ltr direction, got %v", root["direction"])
	}
	children := root["children"].([]any)
	h := children[0].(map[string]any)
	if h["type"] != "heading" || h["tag"] != "h2" {
		t.Errorf("unexpected heading: %v", h)
	}
	p := children[1].(map[string]any)
	text := p["children"].([]any)[0].(map[string]any)
	if text["type"] != "text" || text["text"] != "Body" || text["mode"] != "normal" {
		t.Errorf("unexpected text node: %v", text)
	}
}

func TestParagraph_EmptyMarshalsChildrenArray(t *testing.T) {
	raw, err := json.Marshal(&Paragraph{})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(raw), `"children":[]`) {
		t.Errorf("expected empty children array, got %s", raw)
	}
}

func TestNewList_RenumbersItems(t *testing.T) {
	l := NewList(true,
		NewListItem(TextParagraph("A")),
		NewListItem(TextParagraph("B")),
	)
	if l.Tag != "ol" || l.ListType != "number" {
		t.Errorf("expected ordered list, got tag=%q type=%q", l.Tag, l.ListType)
	}
	for i, c := range l.Children {
		item := c.(*ListItem)
		if item.Value != i+1 {
			t.Errorf("item %d: expected value %d, got %d", i, i+1, item.Value)
		}
	}
}

func TestNewHeading_ClampsLevel(t *testing.T) {
	if tag := NewHeading(0).Tag; tag != "h1" {
		t.Errorf("expected h1, got %s", tag)
	}
	if tag := NewHeading(9).Tag; tag != "h6" {
		t.Errorf("expected h6, got %s", tag)
	}
}

func TestValidate_RejectsBareListItem(t *testing.T) {
	item := &ListItem{Element: newElement(), Value: 1, Children: []Node{NewText("A", 0)}}
	doc := NewDocument(&List{Element: newElement(), ListType: "bullet", Start: 1, Tag: "ul", Children: []Node{item}})
	if err := doc.Validate(); err == nil {
		t.Error("expected error for list item without paragraph wrapper")
	}
}

func TestValidate_RejectsZeroSpan(t *testing.T) {
	cell := NewTableCell(false, TextParagraph("x"))
	cell.ColSpan = 0
	doc := NewDocument(NewTable(NewTableRow(cell)))
	if err := doc.Validate(); err == nil {
		t.Error("expected error for zero colSpan")
	}
}

func TestPlainText(t *testing.T) {
	doc := NewDocument(
		NewHeading(1, NewText("Head", 0)),
		NewList(false, NewListItem(TextParagraph("one")), NewListItem(TextParagraph("two"))),
		NewParagraph(NewText("a", FormatBold), NewLineBreak(), NewLink("https://x.test", NewText("b", 0))),
	)
	want := "Head\none\ntwo\na\nb"
	if got := PlainText(&doc.Root); got != want {
		t.Errorf("PlainText = %q, want %q", got, want)
	}
}
