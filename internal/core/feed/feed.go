// Package feed keeps an incrementally loaded product pool per spot.
package feed

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/niksmo/dealspot/internal/core/deals"
	"github.com/niksmo/dealspot/internal/core/domain"
	"github.com/niksmo/dealspot/internal/core/loading"
	"github.com/niksmo/dealspot/internal/core/port"
)

// A Snapshot is the current, deduplicated view of a feed.
type Snapshot struct {
	Products []domain.Product
	Load     domain.LoadState
	HasMore  bool
	Loaded   bool
}

// A Feed loads pages of a spot on demand.
//
// Loads are fire-and-forget: Start and FetchMore return at once and the
// loading flag drives the tracker. A page that lands after Close, or after
// a reload superseded it, is dropped.
type Feed struct {
	ctx     context.Context
	loader  port.ProductPageLoader
	base    domain.PageRequest
	tracker *loading.Tracker
	wg      sync.WaitGroup

	mu       sync.Mutex
	products []domain.Product
	pool     []domain.Product
	offset   int
	hasMore  bool
	loading  bool
	started  bool
	loaded   bool
	gen      uint64
	closed   bool
}

// New returns an idle feed. ctx bounds page loads; it is not cancelled by
// Close.
func New(
	ctx context.Context,
	loader port.ProductPageLoader,
	spot domain.SpotType,
	username string,
	pageSize int,
	hideDelay time.Duration,
	opts ...loading.Opt,
) *Feed {
	return &Feed{
		ctx:    ctx,
		loader: loader,
		base: domain.PageRequest{
			Spot:     spot,
			Username: username,
			First:    pageSize,
		},
		tracker: loading.NewTracker(hideDelay, opts...),
	}
}

// Start loads the first page unless the policy allows reuse and the feed
// already has a page or is loading one. A feed whose first load failed
// starts over.
func (f *Feed) Start(policy domain.FetchPolicy) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return
	}
	if policy == domain.CacheFirst && (f.loaded || f.loading) {
		return
	}

	f.started = true
	f.gen++
	f.load(0, true)
}

// FetchMore requests the next page. It reports false when the feed is
// closed, not started, already loading or exhausted.
func (f *Feed) FetchMore() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed || !f.started || f.loading || !f.hasMore {
		return false
	}
	f.load(f.offset, false)
	return true
}

func (f *Feed) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	return Snapshot{
		Products: f.pool,
		Load:     f.tracker.State(),
		HasMore:  f.hasMore,
		Loaded:   f.loaded,
	}
}

// Close detaches the feed. In-flight loads finish but change nothing.
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.closed = true
	f.tracker.Close()
}

// Wait blocks until in-flight loads return.
func (f *Feed) Wait() {
	f.wg.Wait()
}

// load must be called with f.mu held.
func (f *Feed) load(offset int, replace bool) {
	f.loading = true
	f.tracker.Observe(true, len(f.pool))

	req := f.base
	req.Offset = offset
	gen := f.gen

	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		page, err := f.loader.LoadPage(f.ctx, req)
		f.complete(gen, req, replace, page, err)
	}()
}

func (f *Feed) complete(
	gen uint64,
	req domain.PageRequest,
	replace bool,
	page domain.Page,
	err error,
) {
	const op = "Feed.complete"
	log := slog.With(
		"op", op, "spot", req.Spot, "offset", req.Offset,
	)

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed || gen != f.gen {
		log.Debug("page dropped")
		return
	}

	f.loading = false

	if err != nil {
		log.Error("failed to load page", "err", err)
		f.tracker.Observe(false, len(f.pool))
		return
	}

	if replace {
		f.products = page.Products
	} else {
		f.products = append(f.products, page.Products...)
	}
	f.pool = deals.Dedupe(f.products)
	f.offset = page.Next
	f.hasMore = page.HasMore
	f.loaded = true
	if f.hasMore && f.offset <= req.Offset {
		log.Error("page does not advance, feed stopped", "next", page.Next)
		f.hasMore = false
	}

	f.tracker.Observe(false, len(f.pool))
	log.Debug("page loaded", "received", len(page.Products), "pool", len(f.pool))
}
