package service

import (
	"context"
	"fmt"

	"github.com/niksmo/dealspot/internal/core/deals"
	"github.com/niksmo/dealspot/internal/core/domain"
)

func (s *Service) Spot(
	ctx context.Context, req domain.SpotRequest,
) (domain.SpotFeed, error) {
	const op = "Service.Spot"

	if err := ctx.Err(); err != nil {
		return domain.SpotFeed{}, fmt.Errorf("%s: %w", op, err)
	}

	if req.Spot.PerUser() && req.Username == "" {
		return domain.SpotFeed{}, fmt.Errorf("%s: %w", op, domain.ErrNoUsername)
	}

	policy := req.Policy
	if policy == "" {
		policy = s.fetchPolicy
	}

	f := s.feeds.Get(req.Spot, req.Username)
	f.Start(policy)
	snap := f.Snapshot()

	return domain.SpotFeed{
		Spot:     req.Spot,
		Config:   req.Spot.Config(),
		Products: snap.Products,
		Rows:     deals.ProductRows(snap.Products),
		Load:     snap.Load,
		HasMore:  snap.HasMore,
	}, nil
}

// FetchMore asks the spot feed for its next page without waiting for it.
func (s *Service) FetchMore(ctx context.Context, req domain.SpotRequest) (bool, error) {
	const op = "Service.FetchMore"

	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	if req.Spot.PerUser() && req.Username == "" {
		return false, fmt.Errorf("%s: %w", op, domain.ErrNoUsername)
	}

	return s.feeds.Get(req.Spot, req.Username).FetchMore(), nil
}

// LoadPage reads one page of a spot from storage.
func (s *Service) LoadPage(
	ctx context.Context, req domain.PageRequest,
) (domain.Page, error) {
	const op = "Service.LoadPage"

	if err := ctx.Err(); err != nil {
		return domain.Page{}, fmt.Errorf("%s: %w", op, err)
	}

	var (
		page domain.Page
		err  error
	)
	switch req.Spot {
	case domain.Trending:
		page, err = s.loadOrdered(ctx, domain.OrderByReviewCount, req)
	case domain.Recommended:
		page, err = s.loadOrdered(ctx, domain.OrderByRating, req)
	case domain.Recent:
		page, err = s.loadOrdered(ctx, domain.OrderByRecent, req)
	case domain.Saved:
		page, err = s.loadSaved(ctx, req)
	default:
		err = fmt.Errorf("%w: %q", domain.ErrUnknownSpot, req.Spot)
	}
	if err != nil {
		return domain.Page{}, fmt.Errorf("%s: %w", op, err)
	}
	return page, nil
}

func (s *Service) loadOrdered(
	ctx context.Context, order domain.ProductOrder, req domain.PageRequest,
) (domain.Page, error) {
	// one extra row tells whether another page exists
	ps, err := s.productsStorage.ListProducts(ctx, order, req.First+1, req.Offset)
	if err != nil {
		return domain.Page{}, err
	}

	hasMore := len(ps) > req.First
	if hasMore {
		ps = ps[:req.First]
	}
	return domain.Page{
		Products: ps,
		HasMore:  hasMore,
		Next:     req.Offset + len(ps),
	}, nil
}

func (s *Service) loadSaved(
	ctx context.Context, req domain.PageRequest,
) (domain.Page, error) {
	ids, err := s.savedReader.SavedProductIDs(ctx, req.Username)
	if err != nil {
		return domain.Page{}, err
	}

	if req.Offset >= len(ids) {
		return domain.Page{Next: req.Offset}, nil
	}
	end := min(req.Offset+req.First, len(ids))
	pageIDs := ids[req.Offset:end]

	ps, err := s.productsStorage.ReadProducts(ctx, pageIDs)
	if err != nil {
		return domain.Page{}, err
	}

	return domain.Page{
		Products: orderByIDs(ps, pageIDs),
		HasMore:  end < len(ids),
		Next:     end,
	}, nil
}

// orderByIDs arranges ps in the order of ids, skipping missing products.
func orderByIDs(ps []domain.Product, ids []string) []domain.Product {
	byID := make(map[string]domain.Product, len(ps))
	for _, p := range ps {
		byID[p.ProductID] = p
	}
	out := make([]domain.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out
}
