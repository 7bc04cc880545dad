package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/niksmo/dealspot/internal/core/domain"
	"github.com/niksmo/dealspot/internal/core/port"
	"github.com/niksmo/dealspot/pkg/schema"
	"github.com/twmb/franz-go/pkg/kgo"
)

const slowDownDelay = time.Second

type ConsumerOpt func(*consumerOpts) error

// ConsumerClientOpt joins group on topic. Offsets are committed only after
// a batch is handled.
func ConsumerClientOpt(
	seedBrokers []string, topic, group string, extra ...kgo.Opt,
) ConsumerOpt {
	return func(co *consumerOpts) error {
		kopts := append([]kgo.Opt{
			kgo.SeedBrokers(seedBrokers...),
			kgo.ConsumeTopics(topic),
			kgo.ConsumerGroup(group),
			kgo.DisableAutoCommit(),
		}, extra...)

		cl, err := kgo.NewClient(kopts...)
		if err != nil {
			return err
		}
		co.cl = cl
		return nil
	}
}

func ConsumerDecoderOpt(decoder Decoder) ConsumerOpt {
	return func(co *consumerOpts) error {
		if decoder == nil {
			return errors.New("decoder is nil")
		}
		co.decoder = decoder
		return nil
	}
}

func ProductsConsumerSaverOpt(ps port.ProductsSaver) ConsumerOpt {
	return func(co *consumerOpts) error {
		if ps == nil {
			return errors.New("products saver is nil")
		}
		co.productsSaver = ps
		return nil
	}
}

type consumerOpts struct {
	cl            ConsumerClient
	decoder       Decoder
	productsSaver port.ProductsSaver
}

type batchHandler interface {
	processFetches(context.Context, kgo.Fetches) error
}

// A consumer is used for composition.
//
// It polls the broker, hands non-empty batches to the handler and commits
// them. A failed batch is not committed and is fetched again after a pause.
type consumer struct {
	opPrefix      string
	handler       batchHandler
	cl            ConsumerClient
	slowDownTimer *time.Timer
}

func (c consumer) run(ctx context.Context) {
	log := slog.With("op", makeOp(c.opPrefix, "run"))
	log.Info("running")

	for ctx.Err() == nil {
		err := c.consume(ctx)
		if err == nil || errors.Is(err, context.Canceled) {
			continue
		}
		log.Error("failed to consume", "err", err)
		c.slowDown(ctx)
	}
}

func (c consumer) consume(ctx context.Context) error {
	const op = "consume"

	fetches := c.cl.PollFetches(ctx)
	if err := fetchesErr(fetches); err != nil {
		return opErr(err, c.opPrefix, op)
	}
	if fetches.Empty() {
		return nil
	}

	if err := c.handler.processFetches(ctx, fetches); err != nil {
		return opErr(err, c.opPrefix, op)
	}

	if err := ctx.Err(); err != nil {
		return opErr(err, c.opPrefix, op)
	}
	if err := c.cl.CommitUncommittedOffsets(ctx); err != nil {
		return opErr(err, c.opPrefix, op)
	}
	return nil
}

// fetchesErr joins client and partition errors of a poll.
func fetchesErr(fetches kgo.Fetches) error {
	if err := fetches.Err0(); err != nil {
		return err
	}
	var errs []error
	fetches.EachError(func(topic string, p int32, err error) {
		errs = append(errs, fmt.Errorf("topic %q partition %d: %w", topic, p, err))
	})
	return errors.Join(errs...)
}

func (c consumer) slowDown(ctx context.Context) {
	c.slowDownTimer.Reset(slowDownDelay)
	select {
	case <-ctx.Done():
	case <-c.slowDownTimer.C:
	}
}

func (c consumer) close() {
	log := slog.With("op", makeOp(c.opPrefix, "close"))

	c.slowDownTimer.Stop()

	log.Info("closing consumer...")
	c.cl.Close()
	log.Info("consumer is closed")
}

// A ProductsConsumer reads the products topic and stores every batch
// through the core service.
type ProductsConsumer struct {
	opPrefix string
	consumer consumer
	saver    port.ProductsSaver
	decoder  Decoder
}

func NewProductsConsumer(opts ...ConsumerOpt) (ProductsConsumer, error) {
	const op = "NewProductsConsumer"

	if len(opts) != 3 {
		panic(opErr(ErrTooFewOpts, op)) // develop mistake
	}

	var options consumerOpts
	for _, opt := range opts {
		if err := opt(&options); err != nil {
			return ProductsConsumer{}, opErr(err, op)
		}
	}

	const opPrefix = "ProductsConsumer"
	pc := ProductsConsumer{
		opPrefix: opPrefix,
		saver:    options.productsSaver,
		decoder:  options.decoder,
	}
	pc.consumer = consumer{
		opPrefix:      opPrefix,
		handler:       pc,
		cl:            options.cl,
		slowDownTimer: time.NewTimer(0),
	}
	return pc, nil
}

// Run blocks until ctx is done.
func (c ProductsConsumer) Run(ctx context.Context) {
	c.consumer.run(ctx)
}

func (c ProductsConsumer) Close() {
	c.consumer.close()
}

func (c ProductsConsumer) processFetches(
	ctx context.Context, fetches kgo.Fetches,
) error {
	ps := c.latestProducts(fetches)
	if len(ps) == 0 {
		return nil
	}

	if err := c.saver.SaveProducts(ctx, ps); err != nil {
		return opErr(err, c.opPrefix, "processFetches")
	}
	return nil
}

// latestProducts decodes a batch. A product sent more than once keeps the
// position of its first record and the value of its last one. Records that
// do not decode are logged and skipped, so one bad payload does not block
// the partition.
func (c ProductsConsumer) latestProducts(fetches kgo.Fetches) []domain.Product {
	log := slog.With("op", makeOp(c.opPrefix, "latestProducts"))

	var ps []domain.Product
	pos := make(map[string]int)
	fetches.EachRecord(func(r *kgo.Record) {
		if r.Value == nil {
			log.Debug("tombstone skipped", "key", string(r.Key))
			return
		}

		p, err := c.decodeProduct(r)
		if err != nil {
			log.Error(
				"failed to decode product",
				"err", err,
				"partition", r.Partition,
				"offset", r.Offset,
			)
			return
		}

		if i, ok := pos[p.ProductID]; ok {
			ps[i] = p
			return
		}
		pos[p.ProductID] = len(ps)
		ps = append(ps, p)
	})
	return ps
}

func (c ProductsConsumer) decodeProduct(r *kgo.Record) (domain.Product, error) {
	var s schema.ProductV1
	if err := c.decoder.Decode(r.Value, &s); err != nil {
		return domain.Product{}, err
	}
	if s.ProductID == "" {
		return domain.Product{}, domain.ErrNoProductID
	}
	if len(r.Key) != 0 && string(r.Key) != s.ProductID {
		return domain.Product{}, fmt.Errorf(
			"record key %q differs from product id %q", r.Key, s.ProductID,
		)
	}
	return schemaV1ToProduct(s), nil
}
