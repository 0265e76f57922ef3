package convert

import (
	"fmt"
	"strings"
)

// PageRules configure the page strategy's scans. Selectors use CSS syntax.
type PageRules struct {
	AttributionSelector string   `yaml:"attribution_selector"`
	TOCSelector         string   `yaml:"toc_selector"`
	TOCTitleSelector    string   `yaml:"toc_title_selector"`
	DefaultTOCTitle     string   `yaml:"default_toc_title"`
	RowSelector         string   `yaml:"row_selector"`
	ColumnSelector      string   `yaml:"column_selector"`
	PromoPhrases        []string `yaml:"promo_phrases"`
}

// DefaultPageRules returns the rules for the source site's WPBakery and
// Spectra page layouts.
func DefaultPageRules() PageRules {
	var candidates []string
	for level := 1; level <= 6; level++ {
		for _, inline := range []string{"strong", "b", "sub"} {
			candidates = append(candidates, fmt.Sprintf("h%d:has(%s)", level, inline))
		}
	}
	candidates = append(candidates, "sub")

	return PageRules{
		AttributionSelector: strings.Join(candidates, ", "),
		TOCSelector: strings.Join([]string{
			".wp-block-uagb-table-of-contents",
			".uagb-toc__wrap",
			"#ez-toc-container",
			".ez-toc-container",
			".lwptoc",
			".table-of-contents",
			"nav.toc",
			"div.toc",
			"#toc",
		}, ", "),
		TOCTitleSelector: ".uagb-toc__title, .ez-toc-title, .lwptoc_title, .toc-title",
		DefaultTOCTitle:  "Inhoudsopgave",
		RowSelector:      ".vc_row, .wp-block-columns, .wp-block-uagb-container, .uagb-columns__wrap, .elementor-section",
		ColumnSelector:   ".vc_column, .wpb_column, .wp-block-column, .uagb-column__wrap, .elementor-column",
		PromoPhrases: []string{
			"maak een afspraak",
			"plan een afspraak",
			"gratis consult",
			"gratis e-book",
			"download de gratis",
			"schrijf je in",
			"nieuwsbrief",
		},
	}
}

// Merge fills every empty field in r from d.
func (r PageRules) Merge(d PageRules) PageRules {
	if r.AttributionSelector == "" {
		r.AttributionSelector = d.AttributionSelector
	}
	if r.TOCSelector == "" {
		r.TOCSelector = d.TOCSelector
	}
	if r.TOCTitleSelector == "" {
		r.TOCTitleSelector = d.TOCTitleSelector
	}
	if r.DefaultTOCTitle == "" {
		r.DefaultTOCTitle = d.DefaultTOCTitle
	}
	if r.RowSelector == "" {
		r.RowSelector = d.RowSelector
	}
	if r.ColumnSelector == "" {
		r.ColumnSelector = d.ColumnSelector
	}
	if len(r.PromoPhrases) == 0 {
		r.PromoPhrases = d.PromoPhrases
	}
	return r
}
