package richtext

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var headingTags = []any{"h1", "h2", "h3", "h4", "h5", "h6"}

// Validate checks the renderer contract before a document is persisted: a
// non-empty root, paragraph-wrapped list items and table cells, and sane
// heading tags, item values and spans.
func (d Document) Validate() error {
	if err := validation.ValidateStruct(&d.Root,
		validation.Field(&d.Root.Children, validation.Required),
	); err != nil {
		return fmt.Errorf("root: %w", err)
	}
	for i, child := range d.Root.Children {
		if err := validateNode(child); err != nil {
			return fmt.Errorf("root child %d: %w", i, err)
		}
	}
	return nil
}

// Min and Length skip zero values in ozzo-validation, so numeric fields pair
// them with Required.
func validateNode(n Node) error {
	switch v := n.(type) {
	case *Heading:
		if err := validation.ValidateStruct(v,
			validation.Field(&v.Tag, validation.Required, validation.In(headingTags...)),
		); err != nil {
			return err
		}
		return validateChildren(v.Children)
	case *List:
		if err := validation.ValidateStruct(v,
			validation.Field(&v.ListType, validation.Required, validation.In("bullet", "number")),
			validation.Field(&v.Start, validation.Required, validation.Min(1)),
		); err != nil {
			return err
		}
		return validateChildren(v.Children)
	case *ListItem:
		if err := validation.ValidateStruct(v,
			validation.Field(&v.Value, validation.Required, validation.Min(1)),
			validation.Field(&v.Children, validation.Required),
		); err != nil {
			return err
		}
		if _, ok := v.Children[0].(*Paragraph); !ok {
			return fmt.Errorf("list item %d: first child must be a paragraph", v.Value)
		}
		return validateChildren(v.Children)
	case *Table:
		return validateChildren(v.Children)
	case *TableRow:
		return validateChildren(v.Children)
	case *TableCell:
		if err := validation.ValidateStruct(v,
			validation.Field(&v.HeaderState, validation.In(HeaderNone, HeaderRow)),
			validation.Field(&v.ColSpan, validation.Required, validation.Min(1)),
			validation.Field(&v.RowSpan, validation.Required, validation.Min(1)),
			validation.Field(&v.Children, validation.Required, validation.Length(1, 1)),
		); err != nil {
			return err
		}
		if _, ok := v.Children[0].(*Paragraph); !ok {
			return fmt.Errorf("table cell: child must be a paragraph")
		}
		return nil
	case *Paragraph:
		return validateChildren(v.Children)
	case *Link:
		if err := validation.ValidateStruct(&v.Fields,
			validation.Field(&v.Fields.URL, validation.Required),
		); err != nil {
			return err
		}
		return validateChildren(v.Children)
	case *Text, *LineBreak:
		return nil
	default:
		return fmt.Errorf("unsupported node %T", n)
	}
}

func validateChildren(children []Node) error {
	for i, c := range children {
		if err := validateNode(c); err != nil {
			return fmt.Errorf("child %d: %w", i, err)
		}
	}
	return nil
}
