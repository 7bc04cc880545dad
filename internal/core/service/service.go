package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/niksmo/dealspot/internal/core/deals"
	"github.com/niksmo/dealspot/internal/core/domain"
	"github.com/niksmo/dealspot/internal/core/feed"
	"github.com/niksmo/dealspot/internal/core/loading"
	"github.com/niksmo/dealspot/internal/core/port"
)

var (
	_ port.ProductsSender    = (*Service)(nil)
	_ port.ProductsSaver     = (*Service)(nil)
	_ port.DealsProvider     = (*Service)(nil)
	_ port.SpotsProvider     = (*Service)(nil)
	_ port.SavedSetter       = (*Service)(nil)
	_ port.ProductPageLoader = (*Service)(nil)
)

// Settings tunes the derivations and the feeds.
type Settings struct {
	Rules       deals.Rules
	PageSize    int
	HideDelay   time.Duration
	FetchPolicy domain.FetchPolicy
	TrackerOpts []loading.Opt
}

type Service struct {
	productsProducer port.ProductsProducer
	productsStorage  port.ProductsStorage
	savedEmitter     port.SavedEventEmitter
	savedReader      port.SavedReader
	savedProc        port.SavedProductsProcessor

	rules       deals.Rules
	fetchPolicy domain.FetchPolicy
	feeds       *feed.Registry
}

// New creates the service. ctx bounds the feed page loads.
func New(
	ctx context.Context,
	settings Settings,
	productsProducer port.ProductsProducer,
	productsStorage port.ProductsStorage,
	savedEmitter port.SavedEventEmitter,
	savedReader port.SavedReader,
	savedProc port.SavedProductsProcessor,
) *Service {
	s := &Service{
		productsProducer: productsProducer,
		productsStorage:  productsStorage,
		savedEmitter:     savedEmitter,
		savedReader:      savedReader,
		savedProc:        savedProc,
		rules:            settings.Rules,
		fetchPolicy:      settings.FetchPolicy,
	}
	s.feeds = feed.NewRegistry(
		ctx, s, settings.PageSize, settings.HideDelay, settings.TrackerOpts...,
	)
	return s
}

// Run runs the services components in separate goroutines.
//
// Blocks current goroutine while components is preparing to ready state.
func (s *Service) Run(ctx context.Context, stopFn context.CancelFunc) {
	var wg sync.WaitGroup
	wg.Add(1)
	go s.savedProc.Run(ctx, stopFn, &wg)
	wg.Wait()

	s.feeds.Get(domain.Trending, "").Start(s.fetchPolicy)
}

func (s *Service) Close() {
	s.feeds.Close()
	s.savedProc.Close()
}

func (s *Service) SendProducts(ctx context.Context, ps []domain.Product) error {
	const op = "Service.SendProducts"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err := s.productsProducer.ProduceProducts(ctx, ps)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Service) SaveProducts(ctx context.Context, ps []domain.Product) error {
	const op = "Service.SaveProducts"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err := s.productsStorage.StoreProducts(ctx, deals.Dedupe(ps))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Service) SetSaved(ctx context.Context, evt domain.SaveEvent) error {
	const op = "Service.SetSaved"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if evt.Username == "" {
		return fmt.Errorf("%s: %w", op, domain.ErrNoUsername)
	}

	err := s.savedEmitter.EmitSaveEvent(ctx, evt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
