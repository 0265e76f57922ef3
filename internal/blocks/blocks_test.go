package blocks

import (
	"encoding/json"
	"testing"

	"github.com/dgallion1/wpmigrate/internal/richtext"
)

func TestMarshal_AddsBlockType(t *testing.T) {
	layout := []Block{
		NewContent(richtext.NewDocument(richtext.TextParagraph("hi"))),
		NewAuthorReviewer("Jane Doe", "John Smith", "orthopedist"),
		NewTableOfContents("Inhoud", []TOCItem{{Label: "Intro", Anchor: "intro"}}),
	}
	raw, err := json.Marshal(layout)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got []map[string]any
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := []string{"content", "authorReviewer", "tableOfContents"}
	for i, w := range want {
		if got[i]["blockType"] != w {
			t.Errorf("block %d: expected blockType %q, got %v", i, w, got[i]["blockType"])
		}
		if id, _ := got[i]["id"].(string); id == "" {
			t.Errorf("block %d: expected id", i)
		}
	}
	if got[1]["reviewerTitel"] != "orthopedist" {
		t.Errorf("expected reviewerTitel, got %v", got[1]["reviewerTitel"])
	}
	if _, ok := got[0]["richText"].(map[string]any)["root"]; !ok {
		t.Errorf("expected richText.root, got %v", got[0]["richText"])
	}
}

func TestAuthorReviewer_OmitsEmptyReviewer(t *testing.T) {
	raw, err := json.Marshal(NewAuthorReviewer("Jane", "", ""))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := got["reviewer"]; ok {
		t.Errorf("expected reviewer to be omitted, got %s", raw)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		block   Block
		wantErr bool
	}{
		{"content ok", NewContent(richtext.NewDocument()), false},
		{"author required", NewAuthorReviewer("", "John", ""), true},
		{"title without reviewer", NewAuthorReviewer("Jane", "", "orthopedist"), true},
		{"author only", NewAuthorReviewer("Jane", "", ""), false},
		{"toc needs items", NewTableOfContents("Inhoud", nil), true},
		{"toc empty label", NewTableOfContents("Inhoud", []TOCItem{{Label: ""}}), true},
		{"toc ok", NewTableOfContents("Inhoud", []TOCItem{{Label: "A"}}), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.block.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSummary(t *testing.T) {
	if got := Summary(NewTableOfContents("Inhoud", []TOCItem{{Label: "A"}, {Label: "B"}})); got != `tableOfContents ("Inhoud", 2 items)` {
		t.Errorf("unexpected summary %q", got)
	}
}
