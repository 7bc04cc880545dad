package app

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/niksmo/dealspot/config"
	"github.com/niksmo/dealspot/internal/adapter"
	"github.com/niksmo/dealspot/internal/adapter/httphandler"
	"github.com/niksmo/dealspot/internal/adapter/kafka"
	"github.com/niksmo/dealspot/internal/adapter/metrics"
	"github.com/niksmo/dealspot/internal/adapter/storage"
	"github.com/niksmo/dealspot/internal/core/deals"
	"github.com/niksmo/dealspot/internal/core/domain"
	"github.com/niksmo/dealspot/internal/core/service"
	"github.com/niksmo/dealspot/pkg/schema"
	"github.com/twmb/franz-go/pkg/sr"
)

const rateLimitCleanupEvery = time.Minute

type serdes struct {
	product    schema.Serde
	savedEvent schema.Serde
}

type producers struct {
	products     kafka.ProductsProducer
	savedEmitter kafka.SavedEventEmitter
}

type App struct {
	ctx context.Context
	cfg config.Config

	tlsConfig *tls.Config
	serdes    serdes
	sqlDB     storage.SQLDB
	producers producers

	savedProc *kafka.SavedProductsProcessor
	savedView *kafka.SavedView
	service   *service.Service

	productsConsumer kafka.ProductsConsumer
	rateLimiter      *httphandler.RateLimiter
	httpServer       httphandler.HTTPServer
}

func New(ctx context.Context, cfg config.Config) *App {
	app := &App{ctx: ctx, cfg: cfg}

	app.initLogger()
	app.initTLS()
	app.initSerdes()
	app.initStorage()
	app.initOutboundAdapters()
	app.initCoreService()
	app.initInboundAdapters()

	return app
}

func (app *App) initLogger() {
	opts := &slog.HandlerOptions{Level: app.cfg.LogLevel}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, opts))
	slog.SetDefault(logger)
}

func (app *App) initTLS() {
	const op = "App.initTLS"

	files := app.cfg.Broker.TLS
	if !files.Enabled() {
		return
	}

	tlsConfig, err := adapter.MakeTLSConfig(
		files.CAFile, files.CertFile, files.KeyFile,
	)
	if err != nil {
		app.fallDown(op, err)
	}

	kafka.ApplyGokaTLS(tlsConfig)
	app.tlsConfig = tlsConfig
}

func (app *App) initSerdes() {
	const op = "App.initSerdes"
	ctx := app.ctx
	topics := app.cfg.Broker.Topics

	srOpts := []sr.ClientOpt{sr.URLs(app.cfg.Broker.SchemaRegistryURLs...)}
	if app.tlsConfig != nil {
		srOpts = append(srOpts, sr.DialTLSConfig(app.tlsConfig))
	}

	srClient, err := sr.NewClient(srOpts...)
	if err != nil {
		app.fallDown(op, err)
	}

	schemaCreater := schema.NewSchemaCreater(srClient)

	productSerde, err := schema.NewSerdeProductV1(
		ctx,
		schema.SubjectOpt(schema.ValueSubject(topics.ProductsFromShop)),
		schema.SchemaIdentifierOpt(schemaCreater),
	)
	if err != nil {
		app.fallDown(op, err)
	}

	savedEventSerde, err := schema.NewSerdeSavedEventV1(
		ctx,
		schema.SubjectOpt(schema.ValueSubject(topics.SavedProductsStream)),
		schema.SchemaIdentifierOpt(schemaCreater),
	)
	if err != nil {
		app.fallDown(op, err)
	}

	app.serdes.product = productSerde
	app.serdes.savedEvent = savedEventSerde
}

func (app *App) initStorage() {
	const op = "App.initStorage"

	sqlDB, err := storage.NewSQLDB(app.ctx, app.cfg.SQLDB)
	if err != nil {
		app.fallDown(op, err)
	}
	app.sqlDB = sqlDB
}

func (app *App) initOutboundAdapters() {
	const op = "App.initOutboundAdapters"

	ctx := app.ctx
	seedBrokers := app.cfg.Broker.SeedBrokers
	topics := app.cfg.Broker.Topics
	savedGroup := app.cfg.Broker.Consumers.SavedProductsGroup

	productsProducer, err := kafka.NewProductsProducer(
		kafka.ProducerClientOpt(
			ctx, seedBrokers, topics.ProductsFromShop,
			kafka.TLSOpts(app.tlsConfig)...,
		),
		kafka.ProducerEncoderOpt(app.serdes.product),
	)
	if err != nil {
		app.fallDown(op, err)
	}

	savedEmitter, err := kafka.NewSavedEventEmitter(
		seedBrokers, topics.SavedProductsStream, app.serdes.savedEvent,
	)
	if err != nil {
		app.fallDown(op, err)
	}

	savedProc, err := kafka.NewSavedProductsProc(
		seedBrokers, topics.SavedProductsStream, savedGroup,
		app.serdes.savedEvent,
	)
	if err != nil {
		app.fallDown(op, err)
	}

	savedView, err := kafka.NewSavedView(seedBrokers, savedGroup)
	if err != nil {
		app.fallDown(op, err)
	}

	app.producers.products = productsProducer
	app.producers.savedEmitter = savedEmitter
	app.savedProc = savedProc
	app.savedView = savedView
}

func (app *App) initCoreService() {
	d := app.cfg.Deals

	settings := service.Settings{
		Rules: deals.Rules{
			ItemLimit:        d.SectionItemLimit,
			MegaThreshold:    d.MegaDealsThreshold,
			PopularMinRating: d.PopularMinRating,
			StoreListLimit:   d.StoreFullListLimit,
		},
		PageSize:    d.PageSize,
		HideDelay:   d.FetchMoreHideDelay,
		FetchPolicy: domain.ParseFetchPolicy(d.FetchPolicy, domain.CacheFirst),
	}

	app.service = service.New(
		app.ctx,
		settings,
		app.producers.products,
		storage.NewProductsRepository(app.sqlDB),
		app.producers.savedEmitter,
		app.savedView,
		app.savedProc,
	)
}

func (app *App) initInboundAdapters() {
	const op = "App.initInboundAdapters"

	b := app.cfg.Broker
	productsConsumer, err := kafka.NewProductsConsumer(
		kafka.ConsumerClientOpt(
			b.SeedBrokers,
			b.Topics.ProductsFromShop,
			b.Consumers.ProductSaverGroup,
			kafka.TLSOpts(app.tlsConfig)...,
		),
		kafka.ConsumerDecoderOpt(app.serdes.product),
		kafka.ProductsConsumerSaverOpt(app.service),
	)
	if err != nil {
		app.fallDown(op, err)
	}
	app.productsConsumer = productsConsumer

	mux := http.NewServeMux()
	httphandler.RegisterProducts(mux, app.service)
	httphandler.RegisterDeals(mux, app.service)
	httphandler.RegisterSpots(mux, app.service, app.service)
	httphandler.RegisterHealth(mux)
	mux.Handle("GET /metrics", metrics.Handler())

	h := app.cfg.HTTP
	app.rateLimiter = httphandler.NewRateLimiter(
		h.RateLimitRPS, h.RateLimitBurst, metrics.RateLimited,
	)

	var handler http.Handler = mux
	handler = metrics.InstrumentHandler(handler)
	handler = app.rateLimiter.Handler(handler)
	handler = httphandler.Recover(handler)

	app.httpServer = httphandler.NewHTTPServer(
		app.cfg.HTTPServerAddr, handler, h.HandlerTimeout,
	)
}

// Run runs the components in separate goroutines.
//
// Blocks current goroutine while the saved products table is recovering.
func (app *App) Run(stopFn context.CancelFunc) {
	app.service.Run(app.ctx, stopFn)

	var wg sync.WaitGroup
	wg.Add(1)
	go app.savedView.Run(app.ctx, stopFn, &wg)
	wg.Wait()

	go app.productsConsumer.Run(app.ctx)
	go app.rateLimiter.RunCleanup(app.ctx, rateLimitCleanupEvery)
	go app.httpServer.Run(stopFn)

	slog.Info("application is running")
}

func (app *App) Close(ctx context.Context) {
	slog.Info("application is closing...")

	app.httpServer.Close(ctx)
	app.productsConsumer.Close()
	app.service.Close()
	app.producers.savedEmitter.Close()
	app.producers.products.Close()
	app.sqlDB.Close()

	slog.Info("application is closed")
}

func (app *App) fallDown(op string, err error) {
	panic(fmt.Errorf("%s: %w", op, err))
}
