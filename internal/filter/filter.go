// Package filter applies structured and keyword constraints to a product list.
package filter

import (
	"math"
	"slices"
	"strings"

	"github.com/hyperjump/katalog/internal/models"
)

// Apply narrows products by the parsed query, then by the facet selection,
// then by keywords. Each stage filters the output of the previous one and the
// relative order of products is preserved.
//
// Facet values only apply when they add something the parsed query does not
// already enforce: a facet category equal to the parsed one is skipped, and a
// facet bound is skipped unless it is strictly tighter than the parsed bound.
//
// The keyword stage never empties the result: if no product matches any
// keyword, the structurally filtered list is returned unchanged.
func Apply(products []*models.Product, parsed *models.ParsedQuery, facets models.FacetSelection) []*models.Product {
	if parsed == nil {
		parsed = models.NewParsedQuery("")
	}
	result := slices.Clone(products)
	if result == nil {
		result = []*models.Product{}
	}

	if parsed.Category != "" {
		result = byCategory(result, parsed.Category)
	}
	if parsed.MinPrice != nil {
		lo := *parsed.MinPrice
		result = keep(result, func(p *models.Product) bool { return p.Price >= lo })
	}
	if parsed.MaxPrice != nil {
		hi := *parsed.MaxPrice
		result = keep(result, func(p *models.Product) bool { return p.Price <= hi })
	}
	if parsed.MinRating != nil {
		floor := *parsed.MinRating
		result = keep(result, func(p *models.Product) bool { return p.Rating >= floor })
	}

	if facets.Category != "" &&
		(parsed.Category == "" || strings.ToLower(facets.Category) != strings.ToLower(parsed.Category)) {
		result = byCategory(result, facets.Category)
	}
	if facets.MinPrice != 0 && (parsed.MinPrice == nil || facets.MinPrice > *parsed.MinPrice) {
		result = keep(result, func(p *models.Product) bool { return p.Price >= facets.MinPrice })
	}
	if !math.IsInf(facets.MaxPrice, 1) && (parsed.MaxPrice == nil || facets.MaxPrice < *parsed.MaxPrice) {
		result = keep(result, func(p *models.Product) bool { return p.Price <= facets.MaxPrice })
	}
	if facets.MinRating != 0 && (parsed.MinRating == nil || facets.MinRating > *parsed.MinRating) {
		result = keep(result, func(p *models.Product) bool { return p.Rating >= facets.MinRating })
	}

	if len(parsed.Keywords) > 0 {
		matched := keep(result, func(p *models.Product) bool { return MatchesKeywords(p, parsed.Keywords) })
		if len(matched) > 0 {
			result = matched
		}
	}
	return result
}

// MatchesKeywords reports whether any keyword occurs in the product's name,
// description or category (case-insensitive substring match).
func MatchesKeywords(p *models.Product, keywords []string) bool {
	text := strings.ToLower(p.Name + " " + p.Description + " " + p.Category)
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func byCategory(products []*models.Product, category string) []*models.Product {
	want := strings.ToLower(category)
	return keep(products, func(p *models.Product) bool { return strings.ToLower(p.Category) == want })
}

// keep returns a new slice with the products for which pred is true.
func keep(products []*models.Product, pred func(*models.Product) bool) []*models.Product {
	out := make([]*models.Product, 0, len(products))
	for _, p := range products {
		if pred(p) {
			out = append(out, p)
		}
	}
	return out
}
