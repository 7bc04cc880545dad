package service

import (
	"context"
	"fmt"

	"github.com/niksmo/dealspot/internal/core/deals"
	"github.com/niksmo/dealspot/internal/core/domain"
	"github.com/niksmo/dealspot/internal/core/feed"
)

// pool returns the current snapshot of the spot feed, starting it if needed.
func (s *Service) pool(spot domain.SpotType, username string) feed.Snapshot {
	f := s.feeds.Get(spot, username)
	f.Start(s.fetchPolicy)
	return f.Snapshot()
}

func (s *Service) Home(ctx context.Context) (domain.Home, error) {
	const op = "Service.Home"

	if err := ctx.Err(); err != nil {
		return domain.Home{}, fmt.Errorf("%s: %w", op, err)
	}

	snap := s.pool(domain.Trending, "")

	home := domain.Home{Load: snap.Load}
	for _, t := range domain.SectionOrder {
		section, err := s.rules.HomeSection(snap.Products, t)
		if err != nil {
			return domain.Home{}, fmt.Errorf("%s: %w", op, err)
		}
		home.Sections = append(home.Sections, section)
	}

	for _, qa := range domain.QuickActions {
		action := domain.HomeQuickAction{
			QuickAction: qa,
			Route:       qa.Section.Meta().Route,
		}
		if qa.Section == domain.StoreDeals {
			for _, section := range home.Sections {
				if section.Type == domain.StoreDeals {
					action.Label = section.Subtitle + " Picks"
					action.Route = section.Route
				}
			}
		}
		home.QuickActions = append(home.QuickActions, action)
	}

	return home, nil
}

func (s *Service) SectionList(
	ctx context.Context, t domain.SectionType, store string,
) (domain.SectionList, error) {
	const op = "Service.SectionList"

	if err := ctx.Err(); err != nil {
		return domain.SectionList{}, fmt.Errorf("%s: %w", op, err)
	}

	snap := s.pool(domain.Trending, "")

	section, err := s.rules.FullList(snap.Products, t, store)
	if err != nil {
		return domain.SectionList{}, fmt.Errorf("%s: %w", op, err)
	}

	return domain.SectionList{
		Section: section,
		Rows:    deals.ProductRows(section.Products),
		Load:    snap.Load,
	}, nil
}

func (s *Service) FilterProducts(
	ctx context.Context, req domain.FilterRequest,
) (domain.FilterResult, error) {
	const op = "Service.FilterProducts"

	if err := ctx.Err(); err != nil {
		return domain.FilterResult{}, fmt.Errorf("%s: %w", op, err)
	}

	if req.Spot == "" {
		req.Spot = domain.Trending
	}
	if req.Spot.PerUser() && req.Username == "" {
		return domain.FilterResult{}, fmt.Errorf("%s: %w", op, domain.ErrNoUsername)
	}

	snap := s.pool(req.Spot, req.Username)

	ps := snap.Products
	if req.Section != "" {
		section, err := s.rules.FullList(ps, req.Section, req.Store)
		if err != nil {
			return domain.FilterResult{}, fmt.Errorf("%s: %w", op, err)
		}
		ps = section.Products
	}

	filtered := deals.ApplyFilters(ps, req.Filters)
	res := domain.FilterResult{
		Products:         filtered,
		Rows:             deals.ProductRows(filtered),
		AvailableShops:   deals.AvailableShops(ps),
		HasActiveFilters: req.Filters.HasActive(),
		Load:             snap.Load,
	}
	if r, ok := deals.PriceRange(ps); ok {
		res.PriceRange = &r
	}
	return res, nil
}
