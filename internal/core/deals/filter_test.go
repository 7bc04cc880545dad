package deals_test

import (
	"testing"

	"github.com/niksmo/dealspot/internal/core/deals"
	"github.com/niksmo/dealspot/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func price(v int64) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.NewFromInt(v))
}

func rating(v float64) *float64 {
	return &v
}

func filterPool() []domain.Product {
	return []domain.Product{
		newProduct("match", "25.00", compareAt("40"), shop("1", "Acme"), reviews(4.2, 5)),
		newProduct("otherShop", "25.00", compareAt("40"), shop("2", "Globex"), reviews(4.2, 5)),
		newProduct("tooCheap", "9.99", compareAt("40"), shop("1", "Acme"), reviews(4.2, 5)),
		newProduct("tooDear", "50.01", compareAt("90"), shop("1", "Acme"), reviews(4.2, 5)),
		newProduct("lowRated", "25.00", compareAt("40"), shop("1", "Acme"), reviews(3.9, 5)),
		newProduct("notOnSale", "25.00", shop("1", "Acme"), reviews(4.2, 5)),
		newProduct("edgeMin", "10", compareAt("11"), shop("1", "Acme"), reviews(4, 1)),
		newProduct("edgeMax", "50.00", compareAt("51"), shop("1", "Acme"), reviews(5, 1)),
		newProduct("noShop", "25.00", compareAt("40"), reviews(4.2, 5)),
		newProduct("badPrice", "n/a", compareAt("40"), shop("1", "Acme"), reviews(4.2, 5)),
	}
}

func TestApplyFilters(t *testing.T) {
	pool := filterPool()

	t.Run("AllCriteria", func(t *testing.T) {
		f := domain.ProductFilters{
			Shops:      []string{"Acme"},
			MinPrice:   price(10),
			MaxPrice:   price(50),
			MinRating:  rating(4),
			OnSaleOnly: true,
		}
		got := deals.ApplyFilters(pool, f)
		assert.Equal(t, []string{"match", "edgeMin", "edgeMax"}, ids(got))
	})

	t.Run("EmptyFilterKeepsPool", func(t *testing.T) {
		got := deals.ApplyFilters(pool, domain.ProductFilters{})
		assert.Equal(t, ids(pool), ids(got))
	})

	t.Run("BadPriceWithoutBound", func(t *testing.T) {
		got := deals.ApplyFilters(pool, domain.ProductFilters{Shops: []string{"Acme"}})
		assert.Contains(t, ids(got), "badPrice")
		assert.NotContains(t, ids(got), "noShop")
	})

	t.Run("BadPriceWithBound", func(t *testing.T) {
		got := deals.ApplyFilters(pool, domain.ProductFilters{MaxPrice: price(1000)})
		assert.NotContains(t, ids(got), "badPrice")
		assert.Len(t, got, len(pool)-1)
	})

	t.Run("AbsentRatingFailsPositiveThreshold", func(t *testing.T) {
		ps := []domain.Product{newProduct("x", "1")}
		assert.Empty(t, deals.ApplyFilters(ps, domain.ProductFilters{MinRating: rating(0.5)}))
		assert.Len(t, deals.ApplyFilters(ps, domain.ProductFilters{MinRating: rating(0)}), 1)
	})
}

func TestFilterFacets(t *testing.T) {
	pool := filterPool()

	assert.Equal(t, []string{"Acme", "Globex"}, deals.AvailableShops(pool))

	r, ok := deals.PriceRange(pool)
	require.True(t, ok)
	assert.Equal(t, "9", r.Min.String())
	assert.Equal(t, "51", r.Max.String())

	_, ok = deals.PriceRange([]domain.Product{newProduct("x", "oops")})
	assert.False(t, ok)
}

func TestProductFilters(t *testing.T) {
	f := domain.ClearFilters()
	assert.False(t, f.HasActive())

	f = f.ToggleShop("Acme")
	assert.Equal(t, []string{"Acme"}, f.Shops)
	assert.True(t, f.HasActive())

	f = f.ToggleShop("Acme")
	assert.Empty(t, f.Shops)

	f.OnSaleOnly = true
	assert.True(t, f.HasActive())
	assert.False(t, f.HasPriceBound())
}
