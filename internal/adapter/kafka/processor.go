package kafka

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/lovoo/goka"
	"github.com/niksmo/dealspot/internal/core/port"
	"github.com/niksmo/dealspot/pkg/schema"
)

var _ port.SavedProductsProcessor = (*SavedProductsProcessor)(nil)

// A processor is used for composition.
//
// Running and closing the underlying [goka.Processor]
type processor struct {
	opPrefix string
	gp       *goka.Processor
}

func (p *processor) run(
	ctx context.Context, stopFn context.CancelFunc, wg *sync.WaitGroup,
) {
	const op = "run"
	log := slog.With("op", makeOp(p.opPrefix, op))

	defer wg.Done()

	go p.runProc(ctx, stopFn)

	log.Info("preparing...")
	p.waitForReady(ctx)
	log.Info("running")
}

func (p *processor) runProc(ctx context.Context, stopFn context.CancelFunc) {
	const op = "runProc"
	log := slog.With("op", makeOp(p.opPrefix, op))

	defer stopFn()

	err := p.gp.Run(ctx)
	if err != nil {
		log.Error("stopped", "err", err)
		return
	}
	log.Info("stopped")
}

func (p *processor) waitForReady(ctx context.Context) {
	const op = "waitForReady"
	log := slog.With("op", makeOp(p.opPrefix, op))

	err := p.gp.WaitForReadyContext(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		log.Error("fall down while preparing", "err", err)
	}
}

func (p *processor) close() {
	const op = "close"
	log := slog.With("op", makeOp(p.opPrefix, op))

	log.Info("closing processor...")
	p.gp.Stop()
	log.Info("processor is closed")
}

// A savedEventCodec used for serde [schema.SavedEventV1]
type savedEventCodec struct {
	serde Serde
}

func newSavedEventCodec(s Serde) savedEventCodec {
	return savedEventCodec{s}
}

func (c savedEventCodec) Encode(v any) ([]byte, error) {
	const op = "savedEventCodec.Encode"
	if _, ok := v.(schema.SavedEventV1); !ok {
		return nil, opErr(ErrInvalidValueType, op)
	}
	return c.serde.Encode(v)
}

func (c savedEventCodec) Decode(data []byte) (any, error) {
	const op = "savedEventCodec.Decode"
	var s schema.SavedEventV1
	err := c.serde.Decode(data, &s)
	if err != nil {
		return nil, opErr(err, op)
	}
	return s, nil
}

// A savedSet is the table value of one user: product ids,
// most recently saved first.
type savedSet []string

// apply returns the set after the event. Saving moves the id to the front.
func (s savedSet) apply(e schema.SavedEventV1) savedSet {
	out := make(savedSet, 0, len(s)+1)
	if e.Saved {
		out = append(out, e.ProductID)
	}
	for _, id := range s {
		if id != e.ProductID {
			out = append(out, id)
		}
	}
	return out
}

// A savedSetCodec used for serde [savedSet]. Table values are not
// registry framed.
type savedSetCodec struct {
	encodeFn func(any) ([]byte, error)
	decodeFn func([]byte, any) error
}

func newSavedSetCodec() savedSetCodec {
	s := schema.SavedSetV1Avro()
	return savedSetCodec{
		encodeFn: schema.AvroEncodeFn(s),
		decodeFn: schema.AvroDecodeFn(s),
	}
}

func (c savedSetCodec) Encode(v any) ([]byte, error) {
	const op = "savedSetCodec.Encode"
	set, ok := v.(savedSet)
	if !ok {
		return nil, opErr(ErrInvalidValueType, op)
	}
	data, err := c.encodeFn([]string(set))
	if err != nil {
		return nil, opErr(err, op)
	}
	return data, nil
}

func (c savedSetCodec) Decode(data []byte) (any, error) {
	const op = "savedSetCodec.Decode"
	var ids []string
	if err := c.decodeFn(data, &ids); err != nil {
		return nil, opErr(err, op)
	}
	return savedSet(ids), nil
}

// A SavedProductsProcessor folds save events from the input stream
// into the per user saved set of the group table.
type SavedProductsProcessor struct {
	opPrefix string
	proc     processor
}

func NewSavedProductsProc(
	seedBrokers []string,
	inputStream string,
	groupTable string,
	savedEventSerde Serde,
) (*SavedProductsProcessor, error) {
	const op = "NewSavedProductsProc"

	p := SavedProductsProcessor{opPrefix: "SavedProductsProcessor"}

	gg := goka.DefineGroup(goka.Group(groupTable),
		goka.Input(
			goka.Stream(inputStream),
			newSavedEventCodec(savedEventSerde),
			p.processFn,
		),
		goka.Persist(newSavedSetCodec()),
	)

	gp, err := goka.NewProcessor(seedBrokers, gg, withNonlogProcOpt())
	if err != nil {
		return nil, opErr(err, op)
	}

	p.proc = processor{
		opPrefix: p.opPrefix,
		gp:       gp,
	}

	return &p, nil
}

func (p *SavedProductsProcessor) Run(
	ctx context.Context, stopFn context.CancelFunc, wg *sync.WaitGroup,
) {
	p.proc.run(ctx, stopFn, wg)
}

func (p *SavedProductsProcessor) Close() {
	p.proc.close()
}

func (p *SavedProductsProcessor) processFn(ctx goka.Context, msg any) {
	const op = "processFn"

	event, ok := msg.(schema.SavedEventV1)
	if !ok {
		return
	}
	log := slog.With(
		"op", makeOp(p.opPrefix, op),
		"username", ctx.Key(),
		"productID", event.ProductID,
	)

	current, _ := ctx.Value().(savedSet)
	next := current.apply(event)
	if slices.Equal(current, next) {
		return
	}
	ctx.SetValue(next)
	log.Info("saved set updated", "saved", event.Saved, "size", len(next))
}
