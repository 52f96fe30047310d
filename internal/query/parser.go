// Package query turns free-text catalog queries into structured constraints.
//
// Parsing is rule based: a fixed synonym table for categories, one regular
// expression for price operators, a handful of rating phrases, and whatever
// text is left over becomes keywords. Parse never fails; text it does not
// recognise simply ends up as keywords or is dropped.
package query

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/hyperjump/katalog/internal/models"
)

const minKeywordLength = 3

var (
	pricePattern = regexp.MustCompile(
		`(under|below|less than|over|above|more than|between)\s?\$?(\d+(\.\d{1,2})?)\s?(and|to)?\s?\$?(\d+(\.\d{1,2})?)?`)
	standalonePricePattern = regexp.MustCompile(`\$?(\d+(\.\d{1,2})?)`)

	goodRatingPattern = regexp.MustCompile(`good reviews|high rating`)
	topRatingPattern  = regexp.MustCompile(`top rated|best reviews`)
	starRatingPattern = regexp.MustCompile(`(\d+(\.\d)?)\s?star(s)?`)
)

const (
	goodRatingFloor = 4.0
	topRatingFloor  = 4.5
)

// Parse converts a raw query into a ParsedQuery. Matching is done on the
// lower-cased text; each recognised phrase is removed from the residual text
// before the next step runs.
func Parse(query string) *models.ParsedQuery {
	parsed := models.NewParsedQuery(query)
	lower := strings.ToLower(query)

	remaining := extractCategory(lower, parsed)
	remaining = extractPrice(remaining, parsed)
	remaining = extractRating(remaining, parsed)
	parsed.Keywords = extractKeywords(remaining)

	return parsed
}

// extractCategory sets the first category whose synonym occurs anywhere in
// text (substring match, not whole word) and removes that synonym once.
func extractCategory(text string, parsed *models.ParsedQuery) string {
	for _, c := range categoryTable {
		for _, synonym := range c.synonyms {
			if strings.Contains(text, synonym) {
				parsed.Category = c.category
				return strings.TrimSpace(strings.Replace(text, synonym, "", 1))
			}
		}
	}
	return text
}

// extractPrice applies the operator pattern, or the standalone-amount
// fallback when the operator pattern does not match at all.
func extractPrice(text string, parsed *models.ParsedQuery) string {
	m := pricePattern.FindStringSubmatch(text)
	if m == nil {
		return extractStandalonePrice(text, parsed)
	}

	operator := m[1]
	first := parseAmount(m[2])
	second := parseAmount(m[5])

	// A zero amount counts as "no amount", so "under $0" or a "between"
	// without a second value constrains nothing.
	if first != 0 {
		switch operator {
		case "under", "below", "less than":
			parsed.MaxPrice = models.Float(first)
		case "over", "above", "more than":
			parsed.MinPrice = models.Float(first)
		case "between":
			if second != 0 {
				parsed.MinPrice = models.Float(math.Min(first, second))
				parsed.MaxPrice = models.Float(math.Max(first, second))
			}
		}
	}
	return strings.TrimSpace(strings.Replace(text, m[0], "", 1))
}

func extractStandalonePrice(text string, parsed *models.ParsedQuery) string {
	m := standalonePricePattern.FindStringSubmatch(text)
	if m == nil {
		return text
	}
	if parsed.MinPrice == nil && parsed.MaxPrice == nil {
		parsed.MaxPrice = models.Float(parseAmount(m[1]))
	}
	return strings.TrimSpace(strings.Replace(text, m[0], "", 1))
}

// extractRating raises the rating floor for each phrase found. Floors combine
// with max, so the order of phrases in the query does not matter.
func extractRating(text string, parsed *models.ParsedQuery) string {
	text = applyRatingPhrase(text, goodRatingPattern, goodRatingFloor, parsed)
	text = applyRatingPhrase(text, topRatingPattern, topRatingFloor, parsed)

	if m := starRatingPattern.FindStringSubmatch(text); m != nil {
		raiseRating(parsed, parseAmount(m[1]))
		text = strings.TrimSpace(strings.Replace(text, m[0], "", 1))
	}
	return text
}

func applyRatingPhrase(text string, pattern *regexp.Regexp, floor float64, parsed *models.ParsedQuery) string {
	loc := pattern.FindStringIndex(text)
	if loc == nil {
		return text
	}
	raiseRating(parsed, floor)
	return strings.TrimSpace(text[:loc[0]] + text[loc[1]:])
}

func raiseRating(parsed *models.ParsedQuery, floor float64) {
	if parsed.MinRating == nil {
		parsed.MinRating = models.Float(math.Max(0, floor))
		return
	}
	*parsed.MinRating = math.Max(*parsed.MinRating, floor)
}

// extractKeywords keeps whitespace-separated tokens longer than two
// characters, in order, duplicates included.
func extractKeywords(text string) []string {
	keywords := []string{}
	for _, token := range strings.Fields(text) {
		if utf8.RuneCountInString(token) >= minKeywordLength {
			keywords = append(keywords, token)
		}
	}
	return keywords
}

func parseAmount(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// Summary renders a one-line, human readable description of what was
// understood from the query.
func Summary(p *models.ParsedQuery) string {
	if p.IsEmpty() {
		return "No specific filters detected. Showing results based on keywords."
	}
	var b strings.Builder
	if p.Category != "" {
		fmt.Fprintf(&b, "Category: %s. ", p.Category)
	}
	if p.MinPrice != nil {
		fmt.Fprintf(&b, "Min Price: $%.2f. ", *p.MinPrice)
	}
	if p.MaxPrice != nil {
		fmt.Fprintf(&b, "Max Price: $%.2f. ", *p.MaxPrice)
	}
	if p.MinRating != nil {
		fmt.Fprintf(&b, "Min Rating: %.1f stars. ", *p.MinRating)
	}
	if len(p.Keywords) > 0 {
		fmt.Fprintf(&b, "Keywords: %s. ", strings.Join(p.Keywords, ", "))
	}
	return b.String()
}
