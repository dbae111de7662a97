package parser

import "strings"

type categoryRule struct {
	keywords []string
	category string
}

// Category rules are evaluated top to bottom and the first keyword hit
// wins, so reordering changes results.
var categoryRules = []categoryRule{
	{[]string{"phone", "mobile", "smartphone"}, "Mobile Phones"},
	{[]string{"laptop", "computer", "pc"}, "Computers"},
	{[]string{"headphone", "earphone", "speaker"}, "Audio"},
	{[]string{"camera", "photo", "video"}, "Cameras"},
	{[]string{"book", "novel", "textbook"}, "Books"},
	{[]string{"shirt", "dress", "clothing"}, "Fashion"},
	{[]string{"game", "console", "playstation", "xbox"}, "Gaming"},
	{[]string{"watch", "clock", "timepiece"}, "Watches"},
	{[]string{"shoe", "sneaker", "footwear"}, "Footwear"},
	{[]string{"bag", "backpack", "purse"}, "Bags"},
}

const defaultCategory = "Electronics"

// DetectCategory derives a category from the product name.
func DetectCategory(name string) string {
	lower := strings.ToLower(name)

	for _, rule := range categoryRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lower, keyword) {
				return rule.category
			}
		}
	}

	return defaultCategory
}
