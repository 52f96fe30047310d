package query

// categorySynonym maps a canonical category to the phrases that select it.
type categorySynonym struct {
	category string
	synonyms []string
}

// categoryTable is scanned in order; within a category, synonyms are scanned
// in order. The first substring hit wins.
var categoryTable = []categorySynonym{
	{"electronics", []string{"electronics", "tech", "gadgets", "digital"}},
	{"home & office", []string{"home", "office", "furniture", "decor"}},
	{"apparel", []string{"apparel", "clothing", "fashion", "clothes", "t-shirt", "shirt"}},
	{"kitchen & dining", []string{"kitchen", "dining", "cookware", "food prep"}},
	{"musical instruments", []string{"music", "instrument", "guitar", "piano"}},
	{"footwear", []string{"footwear", "shoes", "boots", "sneakers", "running shoes"}},
	{"food & beverage", []string{"food", "beverage", "coffee", "tea", "drink"}},
	{"sports & outdoors", []string{"sports", "outdoor", "fitness", "yoga"}},
	{"accessories", []string{"accessories", "wallet", "bag", "jewelry"}},
}

// Categories returns the canonical category names in scan order.
func Categories() []string {
	out := make([]string, len(categoryTable))
	for i, c := range categoryTable {
		out[i] = c.category
	}
	return out
}

// Synonyms returns the synonym phrases for a canonical category, or nil if
// the category is unknown.
func Synonyms(category string) []string {
	for _, c := range categoryTable {
		if c.category == category {
			return append([]string(nil), c.synonyms...)
		}
	}
	return nil
}
