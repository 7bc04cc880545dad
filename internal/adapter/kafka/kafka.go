package kafka

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/lovoo/goka"
	"github.com/niksmo/dealspot/internal/core/domain"
	"github.com/niksmo/dealspot/pkg/schema"
	"github.com/twmb/franz-go/pkg/kgo"
)

var (
	ErrTooFewOpts       = errors.New("too few options")
	ErrInvalidValueType = errors.New("invalid value type")
)

type ProducerOpt func(*producerOpts) error

type producerOpts struct {
	cl      ProducerClient
	encoder Encoder
}

func ProducerClientOpt(
	ctx context.Context, seedBrokers []string, topic string, extra ...kgo.Opt,
) ProducerOpt {
	return func(opts *producerOpts) error {
		kopts := append([]kgo.Opt{
			kgo.SeedBrokers(seedBrokers...),
			kgo.DefaultProduceTopicAlways(),
			kgo.DefaultProduceTopic(topic),
			kgo.RequiredAcks(kgo.AllISRAcks()),
			kgo.AllowAutoTopicCreation(),
		}, extra...)

		cl, err := kgo.NewClient(kopts...)
		if err != nil {
			return err
		}

		if err := cl.Ping(ctx); err != nil {
			cl.Close()
			return err
		}
		opts.cl = cl
		return nil
	}
}

func ProducerEncoderOpt(encoder Encoder) ProducerOpt {
	return func(opts *producerOpts) error {
		if encoder == nil {
			return errors.New("encoder is nil")
		}
		opts.encoder = encoder
		return nil
	}
}

// TLSOpts returns the client options for dialing brokers over TLS.
// A nil config yields no options.
func TLSOpts(cfg *tls.Config) []kgo.Opt {
	if cfg == nil {
		return nil
	}
	return []kgo.Opt{kgo.DialTLSConfig(cfg)}
}

// ApplyGokaTLS switches the global goka config to TLS.
// Must be called before creating goka processors, views and emitters.
func ApplyGokaTLS(cfg *tls.Config) {
	if cfg == nil {
		return
	}
	gc := goka.DefaultConfig()
	gc.Net.TLS.Enable = true
	gc.Net.TLS.Config = cfg
	goka.ReplaceGlobalConfig(gc)
}

type ProducerClient interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Close()
}

type ConsumerClient interface {
	PollFetches(context.Context) kgo.Fetches
	CommitUncommittedOffsets(context.Context) error
	Close()
}

type Encoder interface {
	Encode(v any) ([]byte, error)
}

type Decoder interface {
	Decode(b []byte, v any) error
}

type Serde interface {
	Encoder
	Decoder
}

func withNonlogProcOpt() goka.ProcessorOption {
	return goka.WithLogger(log.New(io.Discard, "", 0))
}

func makeOp(s ...string) string {
	return strings.Join(s, ".")
}

func opErr(err error, op ...string) error {
	return fmt.Errorf("%s: %w", makeOp(op...), err)
}

func productToSchemaV1(v domain.Product) (s schema.ProductV1) {
	s.ProductID = v.ProductID
	s.Title = v.Title
	s.Price = schema.MoneyV1(v.Price)
	s.ImageURL = v.ImageURL

	if v.CompareAtPrice != nil {
		m := schema.MoneyV1(*v.CompareAtPrice)
		s.CompareAtPrice = &m
	}
	if v.Shop != nil {
		s.Shop = &schema.ShopV1{ID: v.Shop.ID, Name: v.Shop.Name}
	}
	if ra := v.ReviewAnalytics; ra != nil {
		s.ReviewAnalytics = &schema.ReviewAnalyticsV1{
			AverageRating: ra.AverageRating,
			ReviewCount:   int64(ra.ReviewCount),
		}
	}
	return
}

func schemaV1ToProduct(s schema.ProductV1) (v domain.Product) {
	v.ProductID = s.ProductID
	v.Title = s.Title
	v.Price = domain.Money(s.Price)
	v.ImageURL = s.ImageURL

	if s.CompareAtPrice != nil {
		m := domain.Money(*s.CompareAtPrice)
		v.CompareAtPrice = &m
	}
	if s.Shop != nil {
		v.Shop = &domain.Shop{ID: s.Shop.ID, Name: s.Shop.Name}
	}
	if ra := s.ReviewAnalytics; ra != nil {
		v.ReviewAnalytics = &domain.ReviewAnalytics{
			AverageRating: ra.AverageRating,
			ReviewCount:   int(ra.ReviewCount),
		}
	}
	return
}

func saveEventToSchemaV1(e domain.SaveEvent) schema.SavedEventV1 {
	return schema.SavedEventV1{
		Username:  e.Username,
		ProductID: e.ProductID,
		Saved:     e.Saved,
	}
}
