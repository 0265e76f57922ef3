package entity

import "testing"

func TestDecode_NamedAndNumeric(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"A &amp; B &#8211; C", "A & B – C"},
		{"&#x2014;", "—"},
		{"&#X2014;", "—"},
		{"&lt;b&gt;", "<b>"},
		{"&ldquo;quoted&rdquo;", "“quoted”"},
		{"wait&hellip;", "wait…"},
		{"&euro;5 &pound;4 &yen;3 &cent;2", "€5 £4 ¥3 ¢2"},
		{"&copy; &reg; &trade;", "© ® ™"},
		{"20&deg; &plusmn;1 2&times;3 6&divide;2", "20° ±1 2×3 6÷2"},
		{"&frac12; &frac14; &frac34;", "½ ¼ ¾"},
		{"a&nbsp;b", "a\u00a0b"},
		{"it&#39;s", "it's"},
		{"&#34;x&#34;", `"x"`},
	}
	for _, tt := range tests {
		if got := Decode(tt.in); got != tt.want {
			t.Errorf("Decode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDecode_Idempotent(t *testing.T) {
	inputs := []string{
		"A &amp; B &#8211; C",
		"&ldquo;Hello&rdquo; &mdash; world&hellip;",
		"plain text",
		"",
	}
	for _, in := range inputs {
		once := Decode(in)
		twice := Decode(once)
		if once != twice {
			t.Errorf("Decode not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestDecode_LeavesUnknownSyntax(t *testing.T) {
	inputs := []string{
		"no entities here",
		"fish & chips",
		"&unknown;",
		"&#;",
		"&#xZZ;",
		"&#0;",
		"&#1114112;",
	}
	for _, in := range inputs {
		if got := Decode(in); got != in {
			t.Errorf("Decode(%q) = %q, want unchanged", in, got)
		}
	}
}

func TestDecode_NamedBeforeNumeric(t *testing.T) {
	// "&amp;#8211;" becomes "&#8211;" in the named pass and is then decoded.
	if got := Decode("&amp;#8211;"); got != "–" {
		t.Errorf("expected named pass to feed numeric pass, got %q", got)
	}
}
