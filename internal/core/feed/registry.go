package feed

import (
	"context"
	"sync"
	"time"

	"github.com/niksmo/dealspot/internal/core/domain"
	"github.com/niksmo/dealspot/internal/core/loading"
	"github.com/niksmo/dealspot/internal/core/port"
)

type key struct {
	spot     domain.SpotType
	username string
}

// A Registry hands out one feed per spot and, for per-user spots, per user.
type Registry struct {
	ctx       context.Context
	loader    port.ProductPageLoader
	pageSize  int
	hideDelay time.Duration
	opts      []loading.Opt

	mu     sync.Mutex
	feeds  map[key]*Feed
	closed bool
}

func NewRegistry(
	ctx context.Context,
	loader port.ProductPageLoader,
	pageSize int,
	hideDelay time.Duration,
	opts ...loading.Opt,
) *Registry {
	return &Registry{
		ctx:       ctx,
		loader:    loader,
		pageSize:  pageSize,
		hideDelay: hideDelay,
		opts:      opts,
		feeds:     make(map[key]*Feed),
	}
}

// Get returns the feed of spot, creating it on first use.
// The username is ignored for spots shared by all users.
func (r *Registry) Get(spot domain.SpotType, username string) *Feed {
	if !spot.PerUser() {
		username = ""
	}
	k := key{spot, username}

	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.feeds[k]
	if !ok {
		f = New(r.ctx, r.loader, spot, username, r.pageSize, r.hideDelay, r.opts...)
		if r.closed {
			f.Close()
		}
		r.feeds[k] = f
	}
	return f
}

// Close closes every feed and waits for in-flight loads.
func (r *Registry) Close() {
	r.mu.Lock()
	r.closed = true
	feeds := make([]*Feed, 0, len(r.feeds))
	for _, f := range r.feeds {
		f.Close()
		feeds = append(feeds, f)
	}
	r.mu.Unlock()

	for _, f := range feeds {
		f.Wait()
	}
}
