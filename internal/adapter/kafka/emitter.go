package kafka

import (
	"context"
	"log/slog"

	"github.com/lovoo/goka"
	"github.com/niksmo/dealspot/internal/core/domain"
	"github.com/niksmo/dealspot/internal/core/port"
)

var _ port.SavedEventEmitter = (*SavedEventEmitter)(nil)

type gokaEmitter interface {
	EmitSync(key string, msg any) error
	Finish() error
}

// A SavedEventEmitter emits save events keyed by username.
type SavedEventEmitter struct {
	ge gokaEmitter
}

func NewSavedEventEmitter(
	seedBrokers []string, stream string, savedEventSerde Serde,
) (SavedEventEmitter, error) {
	const op = "NewSavedEventEmitter"

	ge, err := goka.NewEmitter(
		seedBrokers,
		goka.Stream(stream),
		newSavedEventCodec(savedEventSerde),
	)
	if err != nil {
		return SavedEventEmitter{}, opErr(err, op)
	}
	return SavedEventEmitter{ge}, nil
}

func (e SavedEventEmitter) EmitSaveEvent(
	ctx context.Context, se domain.SaveEvent,
) error {
	const op = "SavedEventEmitter.EmitSaveEvent"

	if err := ctx.Err(); err != nil {
		return opErr(err, op)
	}

	err := e.ge.EmitSync(se.Username, saveEventToSchemaV1(se))
	if err != nil {
		return opErr(err, op)
	}
	return nil
}

func (e SavedEventEmitter) Close() {
	const op = "SavedEventEmitter.Close"
	log := slog.With("op", op)

	log.Info("closing emitter...")
	if err := e.ge.Finish(); err != nil {
		log.Error("failed to finish gracefully", "err", err)
		return
	}
	log.Info("emitter is closed")
}
