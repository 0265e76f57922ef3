package convert

import (
	"regexp"
	"strings"

	"github.com/dgallion1/wpmigrate/internal/richtext"
)

// The linear strategy works on rendered markup rather than the tree: it cuts
// table and list regions out whole, then splits the rest on closing block tags.

var (
	regionTag     = regexp.MustCompile(`(?i)<(/?)(table|ul|ol)\b[^>]*>`)
	blockBoundary = regexp.MustCompile(`(?i)</(?:p|h[1-6]|div)\s*>`)
	headingOpen   = regexp.MustCompile(`(?i)<h([1-6])\b[^>]*>`)
	blockOpen     = regexp.MustCompile(`(?i)<(?:p|div)\b[^>]*>`)
	orphanList    = regexp.MustCompile(`(?i)</?(?:li|ul|ol)\b`)
	rowPattern    = regexp.MustCompile(`(?is)<tr\b[^>]*>(.*?)</tr\s*>`)
	cellPattern   = regexp.MustCompile(`(?is)<(td|th)\b[^>]*>(.*?)</(?:td|th)\s*>`)
	itemTag       = regexp.MustCompile(`(?i)<(/?)li\b[^>]*>`)
)

type segment struct {
	kind   string // "text", "table", "ul" or "ol"
	markup string
}

// splitRegions cuts markup into text stretches and atomic table/list regions.
// Nesting is tracked per tag name, so a list inside a table stays in the table.
func splitRegions(markup string) []segment {
	var (
		segs  []segment
		last  int
		start = -1
		name  string
		depth int
	)
	for _, m := range regionTag.FindAllStringSubmatchIndex(markup, -1) {
		closing := m[3] > m[2]
		tag := strings.ToLower(markup[m[4]:m[5]])
		if start < 0 {
			if closing {
				continue
			}
			if m[0] > last {
				segs = append(segs, segment{kind: "text", markup: markup[last:m[0]]})
			}
			start, name, depth = m[0], tag, 1
			continue
		}
		if tag != name {
			continue
		}
		if closing {
			depth--
		} else {
			depth++
		}
		if depth == 0 {
			segs = append(segs, segment{kind: name, markup: markup[start:m[1]]})
			last, start = m[1], -1
		}
	}
	if start >= 0 {
		// Unterminated region: keep it whole.
		segs = append(segs, segment{kind: name, markup: markup[start:]})
	} else if last < len(markup) {
		segs = append(segs, segment{kind: "text", markup: markup[last:]})
	}
	return segs
}

// linearNodes maps sanitized markup to block nodes with the linear strategy.
func linearNodes(markup string) []richtext.Node {
	var nodes []richtext.Node
	for _, seg := range splitRegions(markup) {
		switch seg.kind {
		case "table":
			if t := parseTable(seg.markup); t != nil {
				nodes = append(nodes, t)
			}
		case "ul", "ol":
			if l := parseList(seg.markup, seg.kind == "ol"); l != nil {
				nodes = append(nodes, l)
			}
		default:
			for _, chunk := range blockBoundary.Split(seg.markup, -1) {
				nodes = append(nodes, classifyChunk(chunk)...)
			}
		}
	}
	return nodes
}

// classifyChunk turns the markup before one closing block tag into a heading,
// a paragraph, or a fallback paragraph for loose text.
func classifyChunk(chunk string) []richtext.Node {
	if m := headingOpen.FindStringSubmatchIndex(chunk); m != nil {
		nodes := appendFallback(nil, chunk[:m[0]])
		if text := extractText(chunk[m[1]:]); text != "" {
			level := int(chunk[m[2]] - '0')
			nodes = append(nodes, richtext.NewHeading(level, richtext.NewText(text, 0)))
		}
		return nodes
	}
	if m := blockOpen.FindStringIndex(chunk); m != nil {
		nodes := appendFallback(nil, chunk[:m[0]])
		if text := extractText(chunk[m[1]:]); text != "" {
			nodes = append(nodes, richtext.TextParagraph(text))
		}
		return nodes
	}
	return appendFallback(nil, chunk)
}

func appendFallback(nodes []richtext.Node, markup string) []richtext.Node {
	if orphanList.MatchString(markup) {
		return nodes
	}
	if text := extractText(markup); text != "" {
		nodes = append(nodes, richtext.TextParagraph(text))
	}
	return nodes
}

// parseTable reads row and cell markers. th cells are header cells. A table
// without cells yields nil.
func parseTable(markup string) *richtext.Table {
	var rows []*richtext.TableRow
	for _, rm := range rowPattern.FindAllStringSubmatch(markup, -1) {
		var cells []*richtext.TableCell
		for _, cm := range cellPattern.FindAllStringSubmatch(rm[1], -1) {
			header := strings.EqualFold(cm[1], "th")
			cells = append(cells, richtext.NewTableCell(header, richtext.TextParagraph(extractText(cm[2]))))
		}
		if len(cells) > 0 {
			rows = append(rows, richtext.NewTableRow(cells...))
		}
	}
	if len(rows) == 0 {
		return nil
	}
	return richtext.NewTable(rows...)
}

// parseList reads top-level item markers. Nested items are flattened into
// their parent item's text. Items without text keep their slot as an empty
// paragraph. A list without items yields nil.
func parseList(markup string, ordered bool) *richtext.List {
	var items []*richtext.ListItem
	for _, content := range topLevelItems(markup) {
		items = append(items, richtext.NewListItem(richtext.TextParagraph(extractText(content))))
	}
	if len(items) == 0 {
		return nil
	}
	return richtext.NewList(ordered, items...)
}

// topLevelItems returns the inner markup of each depth-zero list item.
func topLevelItems(markup string) []string {
	var (
		items []string
		start = -1
		depth int
	)
	for _, m := range itemTag.FindAllStringSubmatchIndex(markup, -1) {
		closing := m[3] > m[2]
		if !closing {
			if depth == 0 {
				start = m[1]
			}
			depth++
			continue
		}
		if depth == 0 {
			continue
		}
		depth--
		if depth == 0 {
			items = append(items, markup[start:m[0]])
			start = -1
		}
	}
	if start >= 0 {
		// Unterminated item: keep the rest.
		items = append(items, markup[start:])
	}
	return items
}
