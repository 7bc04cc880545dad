package deals

import (
	"fmt"

	"github.com/niksmo/dealspot/internal/core/domain"
	"github.com/shopspring/decimal"
)

// FeaturedStoreFallbackName is shown when no shop has a deal.
const FeaturedStoreFallbackName = "Mock Shop"

// Rules holds the tunable parameters of the section derivations.
type Rules struct {
	// ItemLimit caps the home screen teaser of every section.
	ItemLimit int
	// MegaThreshold is the minimal discount percent of a mega deal.
	MegaThreshold decimal.Decimal
	// PopularMinRating is the minimal average rating of a popular pick.
	PopularMinRating float64
	// StoreListLimit caps the all-stores list of the store deals section.
	StoreListLimit int
}

// DefaultRules returns the rules the catalog runs with unless configured.
func DefaultRules() Rules {
	return Rules{
		ItemLimit:        5,
		MegaThreshold:    decimal.NewFromInt(50),
		PopularMinRating: 4,
		StoreListLimit:   20,
	}
}

// TopDeals returns discounted products, largest discount first.
// A non-positive limit means no cap.
func (r Rules) TopDeals(pool []domain.Product, limit int) []domain.Product {
	var ps []domain.Product
	for _, p := range pool {
		if IsDiscounted(p) {
			ps = append(ps, p)
		}
	}
	return capped(SortByDiscountDesc(ps), limit)
}

// MegaDeals returns products discounted by at least r.MegaThreshold.
func (r Rules) MegaDeals(pool []domain.Product, limit int) []domain.Product {
	var ps []domain.Product
	for _, p := range pool {
		if IsDiscounted(p) && DiscountPercent(p).GreaterThanOrEqual(r.MegaThreshold) {
			ps = append(ps, p)
		}
	}
	return capped(SortByDiscountDesc(ps), limit)
}

// Popular returns products rated at least r.PopularMinRating.
func (r Rules) Popular(pool []domain.Product, limit int) []domain.Product {
	var ps []domain.Product
	for _, p := range pool {
		if p.Rating() >= r.PopularMinRating {
			ps = append(ps, p)
		}
	}
	return capped(SortByPopularity(ps), limit)
}

// HomeSection derives the home screen teaser of t.
//
// The store deals teaser shows the featured store.
func (r Rules) HomeSection(pool []domain.Product, t domain.SectionType) (domain.Section, error) {
	const op = "Rules.HomeSection"

	meta := t.Meta()
	s := domain.Section{
		Type: t, Title: meta.Title, Subtitle: meta.Subtitle, Route: meta.Route,
	}

	switch t {
	case domain.TopDeals:
		s.Products = r.TopDeals(pool, r.ItemLimit)
	case domain.MegaDeals:
		s.Products = r.MegaDeals(pool, r.ItemLimit)
	case domain.Popular:
		s.Products = r.Popular(pool, r.ItemLimit)
	case domain.StoreDeals:
		featured, ok := FeaturedStore(GroupByStore(pool))
		if !ok {
			featured = domain.StoreGroup{ShopName: FeaturedStoreFallbackName}
		}
		featured.Deals = capped(featured.Deals, r.ItemLimit)
		s.Subtitle = featured.ShopName
		if featured.ShopID != "" {
			s.Route = domain.StoreRoute(featured.ShopID)
		}
		s.Store = &featured
		s.Products = featured.Deals
	default:
		return domain.Section{}, fmt.Errorf("%s: %w: %q", op, domain.ErrUnknownSection, t)
	}
	return s, nil
}

// FullList derives the uncapped list of t.
//
// For store deals a non-empty store selects one shop by id or name;
// otherwise all stores are flattened and capped at r.StoreListLimit.
func (r Rules) FullList(
	pool []domain.Product, t domain.SectionType, store string,
) (domain.Section, error) {
	const op = "Rules.FullList"

	meta := t.Meta()
	s := domain.Section{
		Type: t, Title: meta.ListTitle, Subtitle: meta.Subtitle, Route: meta.Route,
	}

	switch t {
	case domain.TopDeals:
		s.Products = r.TopDeals(pool, 0)
	case domain.MegaDeals:
		s.Products = r.MegaDeals(pool, 0)
	case domain.Popular:
		s.Products = r.Popular(pool, 0)
	case domain.StoreDeals:
		groups := GroupByStore(pool)
		if store == "" {
			s.Products = capped(FlattenStores(groups), r.StoreListLimit)
			break
		}
		g, ok := FindStore(groups, store)
		if !ok {
			g = domain.StoreGroup{ShopName: store}
		}
		s.Title = g.ShopName + " Deals"
		s.Route = domain.StoreRoute(store)
		s.Subtitle = "Best of " + g.ShopName
		s.Store = &g
		s.Products = g.Deals
	default:
		return domain.Section{}, fmt.Errorf("%s: %w: %q", op, domain.ErrUnknownSection, t)
	}
	return s, nil
}
