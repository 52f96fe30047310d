package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Scenarios(t *testing.T) {
	t.Run("electronics under price", func(t *testing.T) {
		p := Parse("Show me electronics under $150")
		assert.Equal(t, "electronics", p.Category)
		require.NotNil(t, p.MaxPrice)
		assert.Equal(t, 150.0, *p.MaxPrice)
		assert.Nil(t, p.MinPrice)
		assert.Nil(t, p.MinRating)
		assert.Equal(t, []string{"show"}, p.Keywords)
		assert.Equal(t, "Show me electronics under $150", p.OriginalQuery)
	})

	t.Run("office chairs between", func(t *testing.T) {
		p := Parse("Office chairs between $200 and $400")
		assert.Equal(t, "home & office", p.Category)
		require.NotNil(t, p.MinPrice)
		require.NotNil(t, p.MaxPrice)
		assert.Equal(t, 200.0, *p.MinPrice)
		assert.Equal(t, 400.0, *p.MaxPrice)
		assert.Equal(t, []string{"chairs"}, p.Keywords)
	})

	t.Run("top rated shoes", func(t *testing.T) {
		p := Parse("Top rated shoes")
		assert.Equal(t, "footwear", p.Category)
		require.NotNil(t, p.MinRating)
		assert.Equal(t, 4.5, *p.MinRating)
		assert.Nil(t, p.MinPrice)
		assert.Nil(t, p.MaxPrice)
		assert.Empty(t, p.Keywords)
	})

	t.Run("unknown words become keywords", func(t *testing.T) {
		p := Parse("blue widget")
		assert.Equal(t, "", p.Category)
		assert.Nil(t, p.MinPrice)
		assert.Nil(t, p.MaxPrice)
		assert.Nil(t, p.MinRating)
		assert.Equal(t, []string{"blue", "widget"}, p.Keywords)
	})

	t.Run("coffee beans with good reviews", func(t *testing.T) {
		p := Parse("Coffee beans with good reviews")
		assert.Equal(t, "food & beverage", p.Category)
		require.NotNil(t, p.MinRating)
		assert.Equal(t, 4.0, *p.MinRating)
		assert.Equal(t, []string{"beans", "with"}, p.Keywords)
	})
}

func TestParse_BetweenOutOfOrderIsSwapped(t *testing.T) {
	p := Parse("between 400 and 200")
	require.NotNil(t, p.MinPrice)
	require.NotNil(t, p.MaxPrice)
	assert.Equal(t, 200.0, *p.MinPrice)
	assert.Equal(t, 400.0, *p.MaxPrice)
	assert.LessOrEqual(t, *p.MinPrice, *p.MaxPrice)
}

func TestParse_PriceOperators(t *testing.T) {
	tests := []struct {
		query   string
		wantMin *float64
		wantMax *float64
	}{
		{"below 20", nil, ptr(20)},
		{"less than $35.50", nil, ptr(35.5)},
		{"over $100", ptr(100), nil},
		{"above 99.99", ptr(99.99), nil},
		{"more than 10", ptr(10), nil},
		{"between $10 to $20", ptr(10), ptr(20)},
		{"under $0", nil, nil},
		{"between 50", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			p := Parse(tt.query)
			assert.Equal(t, tt.wantMin, p.MinPrice)
			assert.Equal(t, tt.wantMax, p.MaxPrice)
			assert.Empty(t, p.Keywords, "price phrase should be stripped")
		})
	}
}

func TestParse_StandalonePriceFallback(t *testing.T) {
	p := Parse("speaker $80")
	require.NotNil(t, p.MaxPrice)
	assert.Equal(t, 80.0, *p.MaxPrice)
	assert.Nil(t, p.MinPrice)
	assert.Equal(t, []string{"speaker"}, p.Keywords)
}

func TestParse_StandaloneFallbackConsumesStarNumber(t *testing.T) {
	// Without a price operator the first bare number is read as a max price,
	// which leaves nothing for the star pattern.
	p := Parse("speaker 4 stars")
	require.NotNil(t, p.MaxPrice)
	assert.Equal(t, 4.0, *p.MaxPrice)
	assert.Nil(t, p.MinRating)
	assert.Equal(t, []string{"speaker", "stars"}, p.Keywords)
}

func TestParse_RatingFloorsCombineWithMax(t *testing.T) {
	for _, q := range []string{
		"top rated and good reviews",
		"good reviews and top rated",
		"high rating and best reviews",
	} {
		t.Run(q, func(t *testing.T) {
			p := Parse(q)
			require.NotNil(t, p.MinRating)
			assert.Equal(t, 4.5, *p.MinRating)
			assert.Equal(t, []string{"and"}, p.Keywords)
		})
	}
}

func TestParse_StarRating(t *testing.T) {
	p := Parse("under $50 with 4.8 stars")
	require.NotNil(t, p.MaxPrice)
	assert.Equal(t, 50.0, *p.MaxPrice)
	require.NotNil(t, p.MinRating)
	assert.Equal(t, 4.8, *p.MinRating)
	assert.Equal(t, []string{"with"}, p.Keywords)

	p = Parse("good reviews under $30, 3 stars")
	require.NotNil(t, p.MinRating)
	assert.Equal(t, 4.0, *p.MinRating, "lower star count must not lower the floor")
}

func TestParse_CategorySubstringMatch(t *testing.T) {
	p := Parse("shoes")
	assert.Equal(t, "footwear", p.Category)

	// "tech" inside "technical" still selects electronics.
	p = Parse("technical manuals")
	assert.Equal(t, "electronics", p.Category)
	assert.Equal(t, []string{"nical", "manuals"}, p.Keywords)

	// "shirt" appears inside "t-shirt"; the earlier synonym wins and is removed whole.
	p = Parse("cotton t-shirt")
	assert.Equal(t, "apparel", p.Category)
	assert.Equal(t, []string{"cotton"}, p.Keywords)
}

func TestParse_FirstCategoryWins(t *testing.T) {
	// electronics is scanned before footwear.
	p := Parse("digital shoes")
	assert.Equal(t, "electronics", p.Category)
	assert.Equal(t, []string{"shoes"}, p.Keywords)
}

func TestParse_KeywordsKeepOrderAndDuplicates(t *testing.T) {
	p := Parse("red red an ox blue")
	assert.Equal(t, []string{"red", "red", "blue"}, p.Keywords)
}

func TestParse_EmptyAndWhitespace(t *testing.T) {
	for _, q := range []string{"", "   ", "a an"} {
		p := Parse(q)
		assert.True(t, p.IsEmpty(), "query %q", q)
		assert.NotNil(t, p.Keywords)
	}
}

func TestParse_IsDeterministic(t *testing.T) {
	q := "Electronics under $150 with good reviews"
	assert.Equal(t, Parse(q), Parse(q))
}

func TestSummary(t *testing.T) {
	p := Parse("Electronics under $150 with good reviews")
	assert.Equal(t, "Category: electronics. Max Price: $150.00. Min Rating: 4.0 stars. Keywords: with. ", Summary(p))

	p = Parse("Office chairs between $200 and $400")
	assert.Equal(t, "Category: home & office. Min Price: $200.00. Max Price: $400.00. Keywords: chairs. ", Summary(p))

	assert.Equal(t, "No specific filters detected. Showing results based on keywords.", Summary(Parse("")))
}

func TestCategoriesAndSynonyms(t *testing.T) {
	cats := Categories()
	require.Len(t, cats, 9)
	assert.Equal(t, "electronics", cats[0])
	assert.Equal(t, "accessories", cats[8])

	syn := Synonyms("footwear")
	assert.Contains(t, syn, "shoes")
	syn[0] = "mutated"
	assert.Equal(t, "footwear", Synonyms("footwear")[0])
	assert.Nil(t, Synonyms("garden"))
}

func ptr(v float64) *float64 { return &v }
