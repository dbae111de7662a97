package parser

import "strings"

// RuleSet is an ordered list of selector candidates per field. Candidates
// are tried in order and the first non-empty match wins, so the order of
// each list is load-bearing.
type RuleSet struct {
	Retailer    string
	Name        []string
	Price       []string
	Image       []string
	Description []string
	Rating      []string
}

var amazonRules = RuleSet{
	Retailer: "amazon",
	Name: []string{
		"#productTitle",
		"h1.a-size-large",
		".a-size-large.a-spacing-none",
		"h1",
	},
	Price: []string{
		".a-price-whole",
		".a-price .a-offscreen",
		".a-price-current .a-offscreen",
		".a-price-current .a-price-whole",
	},
	Image: []string{
		"#landingImage",
		"#imgBlkFront",
		".a-dynamic-image",
		"img[data-old-hires]",
	},
	Description: []string{
		"#productDescription",
		".a-expander-content",
		".a-section.a-spacing-medium",
	},
	Rating: []string{
		".a-icon-alt",
		".a-star-rating-text",
	},
}

var flipkartRules = RuleSet{
	Retailer: "flipkart",
	Name: []string{
		`h1[class*="title"]`,
		".B_NuCI",
		"h1",
	},
	Price: []string{
		"._30jeq3",
		"._16Jk6d",
		".a-price-whole",
	},
	Image: []string{
		`img[class*="product-image"]`,
		`img[class*="image"]`,
		"img",
	},
	Description: []string{
		"._1mXcCf",
		".a-section",
	},
}

// RulesFor picks a rule set by substring match on the source URL. Unknown
// hosts get an empty rule set, which extracts nothing.
func RulesFor(sourceURL string) RuleSet {
	switch {
	case strings.Contains(sourceURL, "amazon"):
		return amazonRules
	case strings.Contains(sourceURL, "flipkart"):
		return flipkartRules
	default:
		return RuleSet{Retailer: "unknown"}
	}
}
