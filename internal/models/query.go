package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParsedQuery is the structured form of a free-text query.
// Optional numeric bounds are nil when absent; Category is empty when absent.
type ParsedQuery struct {
	Category      string   `json:"category,omitempty"`
	MinPrice      *float64 `json:"min_price,omitempty"`
	MaxPrice      *float64 `json:"max_price,omitempty"`
	MinRating     *float64 `json:"min_rating,omitempty"`
	Keywords      []string `json:"keywords"`
	OriginalQuery string   `json:"original_query"`
}

// NewParsedQuery returns an empty parsed query for the given input text.
func NewParsedQuery(original string) *ParsedQuery {
	return &ParsedQuery{Keywords: []string{}, OriginalQuery: original}
}

// IsEmpty reports whether the query carries no constraint at all.
func (q *ParsedQuery) IsEmpty() bool {
	if q == nil {
		return true
	}
	return q.Category == "" && q.MinPrice == nil && q.MaxPrice == nil &&
		q.MinRating == nil && len(q.Keywords) == 0
}

// Clone returns a deep copy of q.
func (q *ParsedQuery) Clone() *ParsedQuery {
	if q == nil {
		return nil
	}
	c := &ParsedQuery{
		Category:      q.Category,
		MinPrice:      cloneFloat(q.MinPrice),
		MaxPrice:      cloneFloat(q.MaxPrice),
		MinRating:     cloneFloat(q.MinRating),
		Keywords:      append([]string{}, q.Keywords...),
		OriginalQuery: q.OriginalQuery,
	}
	return c
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	f := *v
	return &f
}

// Float returns a pointer to v, for building optional bounds.
func Float(v float64) *float64 {
	return &v
}

// FacetSelection holds manually chosen filter values. Each field has an
// "unset" sentinel: empty category, zero minimum price, +Inf maximum price and
// zero minimum rating.
//
// The zero value is not unset: its MaxPrice of 0 excludes every priced
// product. Build selections with NewFacetSelection or ParseFacetSelection.
type FacetSelection struct {
	Category  string  `json:"category"`
	MinPrice  float64 `json:"min_price"`
	MaxPrice  float64 `json:"max_price"`
	MinRating float64 `json:"min_rating"`
}

// NewFacetSelection returns a selection with every field unset.
func NewFacetSelection() FacetSelection {
	return FacetSelection{MaxPrice: math.Inf(1)}
}

// IsUnset reports whether every field holds its sentinel.
func (f FacetSelection) IsUnset() bool {
	return f.Category == "" && f.MinPrice == 0 && math.IsInf(f.MaxPrice, 1) && f.MinRating == 0
}

// ParseFacetSelection builds a selection from raw form/query-string values.
// Values that are not finite non-negative numbers fall back to the matching
// sentinel, and a maximum price of 0 means "any".
func ParseFacetSelection(category, minPrice, maxPrice, minRating string) FacetSelection {
	f := NewFacetSelection()
	f.Category = strings.TrimSpace(category)
	f.MinPrice = parseBound(minPrice, 0)
	f.MaxPrice = parseBound(maxPrice, math.Inf(1))
	if f.MaxPrice == 0 {
		f.MaxPrice = math.Inf(1)
	}
	f.MinRating = parseBound(minRating, 0)
	return f
}

func parseBound(raw string, unset float64) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return unset
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return unset
	}
	return v
}

type facetJSON struct {
	Category  string   `json:"category"`
	MinPrice  float64  `json:"min_price"`
	MaxPrice  *float64 `json:"max_price"`
	MinRating float64  `json:"min_rating"`
}

// MarshalJSON encodes an unset maximum price as null, since JSON has no infinity.
func (f FacetSelection) MarshalJSON() ([]byte, error) {
	out := facetJSON{Category: f.Category, MinPrice: f.MinPrice, MinRating: f.MinRating}
	if !math.IsInf(f.MaxPrice, 1) {
		out.MaxPrice = Float(f.MaxPrice)
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts a null or missing max_price as unset and applies the
// same sanitising rules as ParseFacetSelection.
func (f *FacetSelection) UnmarshalJSON(data []byte) error {
	var in facetJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return fmt.Errorf("invalid facet selection: %w", err)
	}
	*f = NewFacetSelection()
	f.Category = strings.TrimSpace(in.Category)
	if in.MinPrice > 0 && !math.IsInf(in.MinPrice, 0) {
		f.MinPrice = in.MinPrice
	}
	if in.MaxPrice != nil && *in.MaxPrice > 0 {
		f.MaxPrice = *in.MaxPrice
	}
	if in.MinRating > 0 {
		f.MinRating = in.MinRating
	}
	return nil
}

// SearchRequest is a catalog search request. Mode selects which constraint
// representation is active; see the search package for the accepted values.
type SearchRequest struct {
	Query  string          `json:"query"`
	Mode   string          `json:"mode,omitempty"`
	Facets *FacetSelection `json:"facets,omitempty"`
}

// FacetsOrUnset returns the request facets, or an unset selection when none were sent.
func (r *SearchRequest) FacetsOrUnset() FacetSelection {
	if r.Facets == nil {
		return NewFacetSelection()
	}
	return *r.Facets
}
