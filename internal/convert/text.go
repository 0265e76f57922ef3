package convert

import (
	"regexp"
	"strings"

	"github.com/dgallion1/wpmigrate/internal/entity"
)

var (
	tagPattern = regexp.MustCompile(`<[^>]*>`)
	spaceRun   = regexp.MustCompile(`\s+`)
	// Line breaks and block tags separate words; inline tags do not.
	breakTag = regexp.MustCompile(`(?i)<br\s*/?>|</?(?:p|div|li|ul|ol|h[1-6]|table|thead|tbody|tfoot|tr|td|th|blockquote|section|article|figure|figcaption|pre|dl|dt|dd)\b[^>]*>`)
)

// extractText strips tags, decodes entities and collapses whitespace.
// Non-breaking spaces are content and survive.
func extractText(markup string) string {
	markup = breakTag.ReplaceAllString(markup, " ")
	return collapseSpace(entity.Decode(tagPattern.ReplaceAllString(markup, "")))
}

func collapseSpace(s string) string {
	return strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
}
