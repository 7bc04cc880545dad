// Package loading classifies the lifecycle of an incremental product load.
package loading

import (
	"sync"
	"time"

	"github.com/niksmo/dealspot/internal/core/domain"
)

// DefaultHideDelay keeps the fetching-more indicator up after a page lands.
const DefaultHideDelay = 240 * time.Millisecond

// A Timer is a scheduled one-shot callback.
type Timer interface {
	Stop() bool
}

// A Scheduler runs f once after d.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// State is what a consumer renders.
type State = domain.LoadState

type Opt func(*Tracker)

func WithScheduler(s Scheduler) Opt {
	return func(t *Tracker) {
		t.sched = s
	}
}

// WithOnChange registers fn to receive every state change, including the
// delayed hide of the fetching-more indicator.
func WithOnChange(fn func(State)) Opt {
	return func(t *Tracker) {
		t.onChange = fn
	}
}

// A Tracker turns a loading flag into initial-loading, fetching-more and
// idle phases.
//
// hasInitialData latches on the first non-empty result and is never reset.
// The fetching-more indicator shows at once but hides only after hideDelay
// of idleness; resuming a fetch within that window cancels the hide.
// After Close every call is a no-op.
type Tracker struct {
	mu        sync.Mutex
	hideDelay time.Duration
	sched     Scheduler
	onChange  func(State)

	hasInitialData bool
	loading        bool
	visible        bool
	hideTimer      Timer
	hideGen        uint64
	closed         bool
}

func NewTracker(hideDelay time.Duration, opts ...Opt) *Tracker {
	t := &Tracker{hideDelay: hideDelay, sched: realScheduler{}}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Observe records the current loading flag and the number of products
// received so far.
func (t *Tracker) Observe(loading bool, received int) State {
	t.mu.Lock()
	if t.closed {
		s := t.state()
		t.mu.Unlock()
		return s
	}

	if received > 0 {
		t.hasInitialData = true
	}
	t.loading = loading

	if t.loading && t.hasInitialData {
		t.cancelHide()
		t.visible = true
	} else if t.visible && t.hideTimer == nil {
		t.scheduleHide()
	}

	s := t.state()
	t.mu.Unlock()

	t.notify(s)
	return s
}

func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state()
}

func (t *Tracker) HasInitialData() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.hasInitialData
}

// Close cancels a pending hide and detaches the tracker.
func (t *Tracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancelHide()
	t.closed = true
}

func (t *Tracker) state() State {
	return State{
		InitialLoading:      t.loading && !t.hasInitialData,
		FetchingMore:        t.loading && t.hasInitialData,
		FetchingMoreVisible: t.visible,
	}
}

func (t *Tracker) scheduleHide() {
	t.hideGen++
	gen := t.hideGen
	t.hideTimer = t.sched.AfterFunc(t.hideDelay, func() {
		t.hide(gen)
	})
}

func (t *Tracker) cancelHide() {
	if t.hideTimer != nil {
		t.hideTimer.Stop()
		t.hideTimer = nil
	}
	t.hideGen++
}

func (t *Tracker) hide(gen uint64) {
	t.mu.Lock()
	if t.closed || gen != t.hideGen {
		t.mu.Unlock()
		return
	}
	t.visible = false
	t.hideTimer = nil
	s := t.state()
	t.mu.Unlock()

	t.notify(s)
}

func (t *Tracker) notify(s State) {
	if t.onChange != nil {
		t.onChange(s)
	}
}
