package parser

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/cartodev/carto/internal/models"
)

// ErrNoProduct is returned when no product name could be extracted from the
// markup. A page without a name is treated as an extraction failure, not as
// a product with an empty name.
var ErrNoProduct = errors.New("no product information found in page")

var (
	priceStripRegex = regexp.MustCompile(`[^\d.]`)
	ratingRegex     = regexp.MustCompile(`(\d+(?:\.\d+)?)`)
	asinRegex       = regexp.MustCompile(`/dp/([A-Z0-9]{10})`)
)

type RetailerParser struct{}

func NewRetailerParser() *RetailerParser {
	return &RetailerParser{}
}

// Parse extracts a product draft from raw markup. The rule set is chosen
// from the source URL and each field takes the first matching selector.
func (p *RetailerParser) Parse(html, sourceURL string) (*models.Draft, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	rules := RulesFor(sourceURL)

	draft := &models.Draft{
		URL:         sourceURL,
		Name:        p.extractText(doc, rules.Name),
		Price:       p.extractPrice(doc, rules.Price),
		Image:       p.extractImage(doc, rules.Image),
		Description: p.extractText(doc, rules.Description),
		Rating:      p.extractRating(doc, rules.Rating),
	}

	if draft.Name == "" {
		return nil, ErrNoProduct
	}

	draft.Category = DetectCategory(draft.Name)

	return draft, nil
}

func (p *RetailerParser) extractText(doc *goquery.Document, selectors []string) string {
	for _, selector := range selectors {
		text := strings.TrimSpace(doc.Find(selector).First().Text())
		if text != "" {
			return text
		}
	}
	return ""
}

func (p *RetailerParser) extractPrice(doc *goquery.Document, selectors []string) float64 {
	for _, selector := range selectors {
		text := strings.TrimSpace(doc.Find(selector).First().Text())
		if text == "" {
			continue
		}

		price, err := strconv.ParseFloat(priceStripRegex.ReplaceAllString(text, ""), 64)
		if err == nil {
			return price
		}
	}
	return 0
}

func (p *RetailerParser) extractImage(doc *goquery.Document, selectors []string) string {
	for _, selector := range selectors {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}

		src, ok := sel.Attr("src")
		if !ok || src == "" {
			src, _ = sel.Attr("data-src")
		}
		if strings.HasPrefix(src, "http") {
			return src
		}
	}
	return ""
}

func (p *RetailerParser) extractRating(doc *goquery.Document, selectors []string) float64 {
	for _, selector := range selectors {
		text := strings.TrimSpace(doc.Find(selector).First().Text())
		if text == "" {
			continue
		}

		match := ratingRegex.FindStringSubmatch(text)
		if match == nil {
			continue
		}

		rating, err := strconv.ParseFloat(match[1], 64)
		if err == nil {
			return rating
		}
	}
	return 0
}

// DetectSource maps a product URL to the retailer name understood by the
// price-tracking API. Unknown hosts default to amazon.
func DetectSource(url string) string {
	if strings.Contains(url, "flipkart") {
		return "flipkart"
	}
	return "amazon"
}

// ExtractASIN pulls the Amazon product identifier out of a /dp/ URL.
func ExtractASIN(url string) (string, bool) {
	match := asinRegex.FindStringSubmatch(url)
	if match == nil {
		return "", false
	}
	return match[1], true
}
