package sanitize

import (
	"strings"
	"testing"
)

func clean(t *testing.T, s *Sanitizer, markup string) string {
	t.Helper()
	out, err := s.Clean(markup)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return out
}

func TestClean_EmptyInput(t *testing.T) {
	s := New(Rules{})
	for _, in := range []string{"", "   \n\t"} {
		if out := clean(t, s, in); out != "" {
			t.Errorf("Clean(%q) = %q, want empty", in, out)
		}
	}
}

func TestClean_RemovesScriptAndStyleAtAnyDepth(t *testing.T) {
	in := `<div><p>Hi<script>alert(1)</script></p><section><div><style>.x{color:red}</style></div></section><noscript>no js</noscript></div>`
	out := clean(t, New(Rules{}), in)
	for _, bad := range []string{"<script", "alert", "<style", "color:red", "no js"} {
		if strings.Contains(out, bad) {
			t.Errorf("expected %q to be removed, got %q", bad, out)
		}
	}
	if !strings.Contains(out, "Hi") {
		t.Errorf("expected paragraph text to survive, got %q", out)
	}
}

func TestClean_RemovesEmptyParagraphs(t *testing.T) {
	in := `<p> </p><p>&nbsp;</p><p><img src="a.png"></p><p><a href="/x"></a></p><p><mark></mark></p><p>Text</p>`
	out := clean(t, New(Rules{}), in)
	if got := strings.Count(out, "<p>"); got != 4 {
		t.Errorf("expected 4 paragraphs, got %d in %q", got, out)
	}
}

func TestClean_StripsPresentationAttributes(t *testing.T) {
	in := `<p class="lead" style="color:red" data-track="1" id="keep">Hi <em class="x" data-y="2">there</em></p>`
	out := clean(t, New(Rules{}), in)
	want := `<p id="keep">Hi <em>there</em></p>`
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestClean_UnwrapsWrappers(t *testing.T) {
	in := `<div class="wp-block-group"><p class="wp-block-paragraph">One</p>` +
		`<figure class="wp-block-table"><table><tbody><tr><td>x</td></tr></tbody></table></figure></div>` +
		`<div class="note"><p>kept</p></div>`
	out := clean(t, New(Rules{}), in)
	want := `<p>One</p><table><tbody><tr><td>x</td></tr></tbody></table><div><p>kept</p></div>`
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestClean_RemovesDenylisted(t *testing.T) {
	in := `<div class="kk-star-ratings"><span>5 stars</span></div><p>Body</p><span id="hs-cta-wrapper-1">Click</span><p class="screen-reader-text">skip</p>`
	out := clean(t, New(Rules{}), in)
	if out != "<p>Body</p>" {
		t.Errorf("got %q", out)
	}
}

func TestClean_DecorativeSVG(t *testing.T) {
	in := `<p>a</p><svg><path d="M0 0"></path></svg><svg width="10" height="10"><rect></rect></svg>`
	out := clean(t, New(Rules{}), in)
	if got := strings.Count(out, "<svg"); got != 1 {
		t.Errorf("expected only the sized svg, got %d in %q", got, out)
	}
	if !strings.Contains(out, `width="10"`) {
		t.Errorf("expected sized svg to survive, got %q", out)
	}
}

func TestClean_RemovesEventHandlers(t *testing.T) {
	in := `<p><a href="/x" onclick="track()" onmouseenter="h()">x</a><img src="a.png" onerror="y()" onload="z()"></p>`
	out := clean(t, New(Rules{}), in)
	for _, attr := range []string{"onclick", "onmouseenter", "onerror", "onload"} {
		if strings.Contains(out, attr) {
			t.Errorf("expected %s removed, got %q", attr, out)
		}
	}
	if !strings.Contains(out, `href="/x"`) {
		t.Errorf("expected href to survive, got %q", out)
	}
}

func TestClean_RemovesGeneratedIDs(t *testing.T) {
	out := clean(t, New(Rules{}), `<h2 id="uagb-abc123">T</h2><h2 id="intro">I</h2>`)
	want := `<h2>T</h2><h2 id="intro">I</h2>`
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestClean_RemovesNestedEmptyContainers(t *testing.T) {
	out := clean(t, New(Rules{}), `<div><span> </span><div></div></div><p>x</p>`)
	if out != "<p>x</p>" {
		t.Errorf("got %q", out)
	}
}

func TestStripMalformedClosers(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"<td>a</2td>", "<td>a"},
		{"<th>h</12TH >", "<th>h"},
		{"<td>a</td>", "<td>a</td>"},
		{"2 < 3 and </p>", "2 < 3 and </p>"},
	}
	for _, tt := range tests {
		if got := StripMalformedClosers(tt.in); got != tt.want {
			t.Errorf("StripMalformedClosers(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNew_CustomRulesKeepDefaultsForEmptyLists(t *testing.T) {
	s := New(Rules{RemovePatterns: []string{"promo"}})
	out := clean(t, s, `<div class="promo-box">Buy now</div><p onclick="x()">Body</p><div class="kk-star-ratings">5</div>`)
	if strings.Contains(out, "Buy now") {
		t.Errorf("expected custom pattern to remove promo, got %q", out)
	}
	if strings.Contains(out, "onclick") {
		t.Errorf("expected default event attributes to apply, got %q", out)
	}
	// The custom list replaces the default denylist.
	if !strings.Contains(out, "5") {
		t.Errorf("expected default denylist to be replaced, got %q", out)
	}
}

func TestPasses_Order(t *testing.T) {
	passes := New(Rules{}).Passes()
	index := map[string]int{}
	for i, p := range passes {
		index[p.Name] = i
	}
	if index["remove_scripts"] != 0 {
		t.Errorf("expected script removal first, got position %d", index["remove_scripts"])
	}
	if index["unwrap_wrappers"] > index["strip_presentation"] {
		t.Error("expected wrappers to be unwrapped before classes are stripped")
	}
	if index["remove_empty_containers"] != len(passes)-1 {
		t.Errorf("expected empty container cleanup last, got position %d", index["remove_empty_containers"])
	}
}
