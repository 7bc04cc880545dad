package deals

import (
	"cmp"
	"slices"

	"github.com/niksmo/dealspot/internal/core/domain"
	"github.com/shopspring/decimal"
)

type scored struct {
	product  domain.Product
	discount decimal.Decimal
}

// SortByDiscountDesc returns a copy of ps ordered by discount percent,
// largest first. Equal discounts fall back to review count, then to the
// input order.
func SortByDiscountDesc(ps []domain.Product) []domain.Product {
	ss := make([]scored, len(ps))
	for i, p := range ps {
		ss[i] = scored{p, DiscountPercent(p)}
	}

	slices.SortStableFunc(ss, func(a, b scored) int {
		if c := b.discount.Cmp(a.discount); c != 0 {
			return c
		}
		return cmp.Compare(b.product.ReviewCount(), a.product.ReviewCount())
	})

	out := make([]domain.Product, len(ss))
	for i := range ss {
		out[i] = ss[i].product
	}
	return out
}

// ByPopularity orders by rating, then by review count, both descending.
func ByPopularity(a, b domain.Product) int {
	if c := cmp.Compare(b.Rating(), a.Rating()); c != 0 {
		return c
	}
	return cmp.Compare(b.ReviewCount(), a.ReviewCount())
}

// SortByPopularity returns a stably sorted copy of ps.
func SortByPopularity(ps []domain.Product) []domain.Product {
	out := slices.Clone(ps)
	slices.SortStableFunc(out, ByPopularity)
	return out
}

func capped(ps []domain.Product, limit int) []domain.Product {
	if limit > 0 && len(ps) > limit {
		return ps[:limit]
	}
	return ps
}
