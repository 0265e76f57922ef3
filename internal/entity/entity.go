// Package entity decodes the character references WordPress leaves in post markup.
package entity

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// named is the fixed set of references the migration understands. Anything
// else is left as-is.
var named = strings.NewReplacer(
	"&nbsp;", "\u00a0",
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&apos;", "'",
	"&ndash;", "–",
	"&mdash;", "—",
	"&lsquo;", "‘",
	"&rsquo;", "’",
	"&sbquo;", "‚",
	"&ldquo;", "“",
	"&rdquo;", "”",
	"&bdquo;", "„",
	"&hellip;", "…",
	"&euro;", "€",
	"&pound;", "£",
	"&yen;", "¥",
	"&cent;", "¢",
	"&copy;", "©",
	"&reg;", "®",
	"&trade;", "™",
	"&deg;", "°",
	"&plusmn;", "±",
	"&times;", "×",
	"&divide;", "÷",
	"&frac12;", "½",
	"&frac14;", "¼",
	"&frac34;", "¾",
	"&bull;", "•",
	"&middot;", "·",
)

var (
	decimalRef = regexp.MustCompile(`&#([0-9]+);`)
	hexRef     = regexp.MustCompile(`&#[xX]([0-9a-fA-F]+);`)
)

// Decode replaces named, decimal and hexadecimal character references with
// their literal characters, in that order.
func Decode(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}
	s = named.Replace(s)
	s = replaceRefs(s, decimalRef, 10)
	s = replaceRefs(s, hexRef, 16)
	return s
}

func replaceRefs(s string, re *regexp.Regexp, base int) string {
	return re.ReplaceAllStringFunc(s, func(ref string) string {
		digits := re.FindStringSubmatch(ref)[1]
		n, err := strconv.ParseInt(digits, base, 32)
		if err != nil {
			return ref
		}
		r := rune(n)
		if r == 0 || !utf8.ValidRune(r) {
			return ref
		}
		return string(r)
	})
}
