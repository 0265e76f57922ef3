package sanitize

// Rules are the denylists the sanitizer applies. They are plain data so a
// migration can override them from a rules file without touching code.
type Rules struct {
	// RemovePatterns are substrings matched against class and id values; a
	// match removes the element and its content.
	RemovePatterns []string `yaml:"remove_patterns"`
	// WrapperPrefixes are class prefixes of block-editor layout wrappers.
	WrapperPrefixes []string `yaml:"wrapper_prefixes"`
	// EventAttributes are inline handler attributes to drop.
	EventAttributes []string `yaml:"event_attributes"`
	// GeneratedIDPrefixes mark ids emitted by page builders rather than authors.
	GeneratedIDPrefixes []string `yaml:"generated_id_prefixes"`
}

// DefaultRules returns the denylists tuned for the source WordPress site
// (Gutenberg, Spectra and WPBakery markup).
func DefaultRules() Rules {
	return Rules{
		RemovePatterns: []string{
			"hubspot-cta",
			"hs-cta",
			"cta-embed",
			"kk-star-ratings",
			"star-rating",
			"wp-applause",
			"post-ratings",
			"save-button",
			"wpfp-",
			"pin-it",
			"screen-reader-text",
			"sr-only",
			"tracking-pixel",
			"gtm-container",
			"fb-pixel",
			"uagb-ifb-icon",
			"uagb-icon-list",
			"gallery-icon",
		},
		WrapperPrefixes: []string{
			"wp-block-",
			"uagb-",
			"vc_",
			"wpb_",
			"elementor-",
			"entry-content",
		},
		EventAttributes: []string{
			"onclick",
			"onmouseenter",
			"onmouseleave",
			"onfocus",
			"onblur",
			"onkeypress",
			"onerror",
			"onload",
		},
		GeneratedIDPrefixes: []string{
			"uagb-",
			"block-",
			"block_",
			"elementor-",
			"vc_",
			"wpb_",
		},
	}
}

// Merge fills every empty list in r from d.
func (r Rules) Merge(d Rules) Rules {
	if len(r.RemovePatterns) == 0 {
		r.RemovePatterns = d.RemovePatterns
	}
	if len(r.WrapperPrefixes) == 0 {
		r.WrapperPrefixes = d.WrapperPrefixes
	}
	if len(r.EventAttributes) == 0 {
		r.EventAttributes = d.EventAttributes
	}
	if len(r.GeneratedIDPrefixes) == 0 {
		r.GeneratedIDPrefixes = d.GeneratedIDPrefixes
	}
	return r
}
