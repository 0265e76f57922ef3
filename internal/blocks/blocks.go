// Package blocks defines the layout blocks a migrated page is built from.
package blocks

import (
	"encoding/json"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/dgallion1/wpmigrate/internal/richtext"
)

// Block is one entry of a page's layout field. The set is closed: Content,
// AuthorReviewer and TableOfContents.
type Block interface {
	BlockType() string
	validation.Validatable
	sealed()
}

// Content is a rich-text section of a page.
type Content struct {
	ID       string            `json:"id"`
	RichText richtext.Document `json:"richText"`
}

// AuthorReviewer credits the author and, optionally, a medical reviewer.
type AuthorReviewer struct {
	ID            string `json:"id"`
	Author        string `json:"author"`
	Reviewer      string `json:"reviewer,omitempty"`
	ReviewerTitel string `json:"reviewerTitel,omitempty"`
}

// TableOfContents lists in-page anchors.
type TableOfContents struct {
	ID    string    `json:"id"`
	Title string    `json:"title"`
	Items []TOCItem `json:"items"`
}

type TOCItem struct {
	Label  string `json:"label"`
	Anchor string `json:"anchor,omitempty"`
}

func NewContent(doc richtext.Document) *Content {
	return &Content{ID: uuid.NewString(), RichText: doc}
}

func NewAuthorReviewer(author, reviewer, reviewerTitel string) *AuthorReviewer {
	return &AuthorReviewer{ID: uuid.NewString(), Author: author, Reviewer: reviewer, ReviewerTitel: reviewerTitel}
}

func NewTableOfContents(title string, items []TOCItem) *TableOfContents {
	return &TableOfContents{ID: uuid.NewString(), Title: title, Items: items}
}

func (*Content) BlockType() string         { return "content" }
func (*AuthorReviewer) BlockType() string  { return "authorReviewer" }
func (*TableOfContents) BlockType() string { return "tableOfContents" }

func (*Content) sealed()         {}
func (*AuthorReviewer) sealed()  {}
func (*TableOfContents) sealed() {}

func (b *Content) Validate() error {
	if err := b.RichText.Validate(); err != nil {
		return fmt.Errorf("content block: %w", err)
	}
	return nil
}

func (b *AuthorReviewer) Validate() error {
	return validation.ValidateStruct(b,
		validation.Field(&b.Author, validation.Required),
		validation.Field(&b.ReviewerTitel, validation.When(b.Reviewer == "", validation.Empty)),
	)
}

func (b *TableOfContents) Validate() error {
	return validation.ValidateStruct(b,
		validation.Field(&b.Items, validation.Required, validation.Each(validation.By(func(v any) error {
			item, _ := v.(TOCItem)
			if item.Label == "" {
				return fmt.Errorf("label is required")
			}
			return nil
		}))),
	)
}

func (b *Content) MarshalJSON() ([]byte, error) {
	type alias Content
	v := *b
	return json.Marshal(struct {
		BlockType string `json:"blockType"`
		alias
	}{b.BlockType(), alias(v)})
}

func (b *AuthorReviewer) MarshalJSON() ([]byte, error) {
	type alias AuthorReviewer
	v := *b
	return json.Marshal(struct {
		BlockType string `json:"blockType"`
		alias
	}{b.BlockType(), alias(v)})
}

func (b *TableOfContents) MarshalJSON() ([]byte, error) {
	type alias TableOfContents
	v := *b
	if v.Items == nil {
		v.Items = []TOCItem{}
	}
	return json.Marshal(struct {
		BlockType string `json:"blockType"`
		alias
	}{b.BlockType(), alias(v)})
}

// Summary describes a block in one line for previews and logs.
func Summary(b Block) string {
	switch v := b.(type) {
	case *Content:
		return fmt.Sprintf("content (%d nodes)", len(v.RichText.Root.Children))
	case *AuthorReviewer:
		if v.Reviewer != "" {
			return fmt.Sprintf("authorReviewer (author=%q reviewer=%q)", v.Author, v.Reviewer)
		}
		return fmt.Sprintf("authorReviewer (author=%q)", v.Author)
	case *TableOfContents:
		return fmt.Sprintf("tableOfContents (%q, %d items)", v.Title, len(v.Items))
	}
	return b.BlockType()
}
