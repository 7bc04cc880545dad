package domain

import "github.com/shopspring/decimal"

// ProductFilters is a user-editable criteria set.
// Unset bounds are not applied.
type ProductFilters struct {
	Shops      []string
	MinPrice   decimal.NullDecimal
	MaxPrice   decimal.NullDecimal
	MinRating  *float64
	OnSaleOnly bool
}

func (f ProductFilters) HasActive() bool {
	return len(f.Shops) > 0 ||
		f.MinPrice.Valid ||
		f.MaxPrice.Valid ||
		f.MinRating != nil ||
		f.OnSaleOnly
}

func (f ProductFilters) HasPriceBound() bool {
	return f.MinPrice.Valid || f.MaxPrice.Valid
}

// ToggleShop returns a copy with shop added or removed.
func (f ProductFilters) ToggleShop(shop string) ProductFilters {
	shops := make([]string, 0, len(f.Shops)+1)
	found := false
	for _, s := range f.Shops {
		if s == shop {
			found = true
			continue
		}
		shops = append(shops, s)
	}
	if !found {
		shops = append(shops, shop)
	}
	f.Shops = shops
	return f
}

// ClearFilters returns the "clear all" criteria set.
func ClearFilters() ProductFilters {
	return ProductFilters{Shops: []string{}}
}

// A PriceRange is the whole-unit span of parsable prices in a pool.
type PriceRange struct {
	Min decimal.Decimal
	Max decimal.Decimal
}
