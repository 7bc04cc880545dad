package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lovoo/goka"
	"github.com/niksmo/dealspot/internal/core/port"
)

var _ port.SavedReader = (*SavedView)(nil)

const viewRecoverPoll = 100 * time.Millisecond

type gokaView interface {
	Run(context.Context) error
	Recovered() bool
	Get(key string) (any, error)
}

// A SavedView serves the saved products group table.
type SavedView struct {
	gv gokaView
}

func NewSavedView(
	seedBrokers []string, groupTable string,
) (*SavedView, error) {
	const op = "NewSavedView"

	gv, err := goka.NewView(
		seedBrokers,
		goka.GroupTable(goka.Group(groupTable)),
		newSavedSetCodec(),
	)
	if err != nil {
		return nil, opErr(err, op)
	}

	return &SavedView{gv}, nil
}

// Run runs the view in a separate goroutine and blocks
// until the table is recovered or ctx is done.
func (v *SavedView) Run(
	ctx context.Context, stopFn context.CancelFunc, wg *sync.WaitGroup,
) {
	const op = "SavedView.Run"
	log := slog.With("op", op)

	defer wg.Done()

	go func() {
		defer stopFn()
		if err := v.gv.Run(ctx); err != nil {
			log.Error("stopped", "err", err)
			return
		}
		log.Info("stopped")
	}()

	log.Info("recovering...")
	ticker := time.NewTicker(viewRecoverPoll)
	defer ticker.Stop()
	for !v.gv.Recovered() {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
	log.Info("running")
}

// SavedProductIDs returns the user's saved product ids,
// most recently saved first.
func (v *SavedView) SavedProductIDs(
	ctx context.Context, username string,
) ([]string, error) {
	const op = "SavedView.SavedProductIDs"

	if err := ctx.Err(); err != nil {
		return nil, opErr(err, op)
	}

	value, err := v.gv.Get(username)
	if err != nil {
		return nil, opErr(err, op)
	}
	if value == nil {
		return nil, nil
	}

	set, ok := value.(savedSet)
	if !ok {
		return nil, opErr(
			fmt.Errorf("%w: %T", ErrInvalidValueType, value), op,
		)
	}
	return []string(set), nil
}
