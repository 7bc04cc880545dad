package deals

import (
	"slices"

	"github.com/niksmo/dealspot/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ApplyFilters returns the products matching every set criterion of f,
// keeping their order.
//
// A product whose price does not parse is dropped only while a price bound
// is set.
func ApplyFilters(ps []domain.Product, f domain.ProductFilters) []domain.Product {
	out := make([]domain.Product, 0, len(ps))
	for _, p := range ps {
		if matches(p, f) {
			out = append(out, p)
		}
	}
	return out
}

func matches(p domain.Product, f domain.ProductFilters) bool {
	if len(f.Shops) > 0 {
		if p.Shop == nil || !slices.Contains(f.Shops, p.Shop.Name) {
			return false
		}
	}

	if f.HasPriceBound() {
		price, err := ParseAmount(p.Price.Amount)
		if err != nil {
			return false
		}
		if f.MinPrice.Valid && price.LessThan(f.MinPrice.Decimal) {
			return false
		}
		if f.MaxPrice.Valid && price.GreaterThan(f.MaxPrice.Decimal) {
			return false
		}
	}

	if f.MinRating != nil && p.Rating() < *f.MinRating {
		return false
	}

	if f.OnSaleOnly && !IsDiscounted(p) {
		return false
	}

	return true
}

// AvailableShops returns the distinct shop names of ps, sorted.
func AvailableShops(ps []domain.Product) []string {
	seen := make(map[string]struct{})
	shops := []string{}
	for _, p := range ps {
		if p.Shop == nil || p.Shop.Name == "" {
			continue
		}
		if _, ok := seen[p.Shop.Name]; ok {
			continue
		}
		seen[p.Shop.Name] = struct{}{}
		shops = append(shops, p.Shop.Name)
	}
	slices.Sort(shops)
	return shops
}

// PriceRange returns the floor of the lowest and the ceiling of the highest
// parsable price. ok is false when no price parses.
func PriceRange(ps []domain.Product) (r domain.PriceRange, ok bool) {
	var lo, hi decimal.Decimal
	for _, p := range ps {
		price, err := ParseAmount(p.Price.Amount)
		if err != nil {
			continue
		}
		if !ok {
			lo, hi, ok = price, price, true
			continue
		}
		lo = decimal.Min(lo, price)
		hi = decimal.Max(hi, price)
	}
	if !ok {
		return domain.PriceRange{}, false
	}
	return domain.PriceRange{Min: lo.Floor(), Max: hi.Ceil()}, true
}
