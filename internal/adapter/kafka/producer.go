package kafka

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/niksmo/dealspot/internal/core/domain"
	"github.com/niksmo/dealspot/internal/core/port"
	"github.com/twmb/franz-go/pkg/kgo"
)

const shopIDHeader = "shop-id"

var _ port.ProductsProducer = (*ProductsProducer)(nil)

// A producer is used for composition.
//
// Producing records to kafka broker and closing underlying [kgo.Client].
type producer struct {
	opPrefix string
	cl       ProducerClient
}

func (p producer) close() {
	log := slog.With("op", makeOp(p.opPrefix, "close"))
	log.Info("closing producer...")
	p.cl.Close()
	log.Info("producer is closed")
}

// produce waits for all records and reports the first failure.
func (p producer) produce(ctx context.Context, rs []*kgo.Record) error {
	if err := p.cl.ProduceSync(ctx, rs...).FirstErr(); err != nil {
		return opErr(err, p.opPrefix, "produce")
	}
	return nil
}

// A ProductsProducer publishes shop products to the products topic.
//
// Records are keyed by product id, so the updates of one product land in
// one partition in the order they were sent. The shop id travels in a
// header for consumers that route by shop without decoding the value.
type ProductsProducer struct {
	producer producer
	encoder  Encoder
	opPrefix string
}

func NewProductsProducer(opts ...ProducerOpt) (ProductsProducer, error) {
	const op = "NewProductsProducer"

	if len(opts) != 2 {
		panic(opErr(ErrTooFewOpts, op)) // develop mistake
	}

	var options producerOpts
	for _, opt := range opts {
		if err := opt(&options); err != nil {
			return ProductsProducer{}, opErr(err, op)
		}
	}

	const opPrefix = "ProductsProducer"
	return ProductsProducer{
		producer: producer{opPrefix: opPrefix, cl: options.cl},
		encoder:  options.encoder,
		opPrefix: opPrefix,
	}, nil
}

func (p ProductsProducer) Close() {
	p.producer.close()
}

// ProduceProducts sends the whole batch or fails. Nothing is sent when a
// product has no id or does not encode.
func (p ProductsProducer) ProduceProducts(
	ctx context.Context, ps []domain.Product,
) error {
	const op = "ProduceProducts"

	if err := ctx.Err(); err != nil {
		return opErr(err, p.opPrefix, op)
	}
	if len(ps) == 0 {
		return nil
	}

	rs := make([]*kgo.Record, 0, len(ps))
	for i, prod := range ps {
		r, err := p.productRecord(prod)
		if err != nil {
			return opErr(fmt.Errorf("product #%d: %w", i, err), p.opPrefix, op)
		}
		rs = append(rs, r)
	}

	if err := p.producer.produce(ctx, rs); err != nil {
		return opErr(err, p.opPrefix, op)
	}
	return nil
}

func (p ProductsProducer) productRecord(prod domain.Product) (*kgo.Record, error) {
	if prod.ProductID == "" {
		return nil, domain.ErrNoProductID
	}

	value, err := p.encoder.Encode(productToSchemaV1(prod))
	if err != nil {
		return nil, err
	}

	r := &kgo.Record{Key: []byte(prod.ProductID), Value: value}
	if prod.Shop != nil && prod.Shop.ID != "" {
		r.Headers = append(r.Headers, kgo.RecordHeader{
			Key: shopIDHeader, Value: []byte(prod.Shop.ID),
		})
	}
	return r, nil
}
