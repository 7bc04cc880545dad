package deals

import (
	"github.com/niksmo/dealspot/internal/core/domain"
)

// GroupByStore partitions the discounted products of pool by shop name.
// Groups keep the order in which their shop first appears in pool and the
// deals of every group are sorted by discount, largest first.
func GroupByStore(pool []domain.Product) []domain.StoreGroup {
	var groups []domain.StoreGroup
	index := make(map[string]int)

	for _, p := range pool {
		if !IsDiscounted(p) {
			continue
		}

		name := p.ShopName()
		i, ok := index[name]
		if !ok {
			i = len(groups)
			index[name] = i
			g := domain.StoreGroup{ShopName: name}
			if p.Shop != nil {
				g.ShopID = p.Shop.ID
			}
			groups = append(groups, g)
		}
		groups[i].Deals = append(groups[i].Deals, p)
	}

	for i := range groups {
		groups[i].Deals = SortByDiscountDesc(groups[i].Deals)
	}
	return groups
}

// StoreWiseDeals is the shop name keyed view of [GroupByStore].
func StoreWiseDeals(pool []domain.Product) map[string][]domain.Product {
	groups := GroupByStore(pool)
	m := make(map[string][]domain.Product, len(groups))
	for _, g := range groups {
		m[g.ShopName] = g.Deals
	}
	return m
}

// FindStore looks a group up by shop id, then by shop name.
func FindStore(groups []domain.StoreGroup, store string) (domain.StoreGroup, bool) {
	if store == "" {
		return domain.StoreGroup{}, false
	}
	for _, g := range groups {
		if g.ShopID != "" && g.ShopID == store {
			return g, true
		}
	}
	for _, g := range groups {
		if g.ShopName == store {
			return g, true
		}
	}
	return domain.StoreGroup{}, false
}

// FeaturedStore picks the shop holding the single largest discount.
// Ties go to the alphabetically first shop name.
func FeaturedStore(groups []domain.StoreGroup) (domain.StoreGroup, bool) {
	var (
		best  domain.StoreGroup
		found bool
	)
	for _, g := range groups {
		if len(g.Deals) == 0 {
			continue
		}
		if !found {
			best, found = g, true
			continue
		}
		c := DiscountPercent(g.Deals[0]).Cmp(DiscountPercent(best.Deals[0]))
		if c > 0 || (c == 0 && g.ShopName < best.ShopName) {
			best = g
		}
	}
	return best, found
}

// FlattenStores concatenates the deals of all groups in group order.
func FlattenStores(groups []domain.StoreGroup) []domain.Product {
	var out []domain.Product
	for _, g := range groups {
		out = append(out, g.Deals...)
	}
	return out
}
