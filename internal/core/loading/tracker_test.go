package loading_test

import (
	"sync"
	"testing"
	"time"

	"github.com/niksmo/dealspot/internal/core/loading"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTimer struct {
	s       *fakeScheduler
	at      time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	wasPending := !t.stopped && !t.fired
	t.stopped = true
	return wasPending
}

// fakeScheduler fires timers only when the test advances its clock.
type fakeScheduler struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*fakeTimer
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) loading.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &fakeTimer{s: s, at: s.now + d, fn: f}
	s.timers = append(s.timers, t)
	return t
}

func (s *fakeScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	s.now += d
	var due []*fakeTimer
	for _, t := range s.timers {
		if !t.stopped && !t.fired && t.at <= s.now {
			t.fired = true
			due = append(due, t)
		}
	}
	s.mu.Unlock()

	for _, t := range due {
		t.fn()
	}
}

func (s *fakeScheduler) pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

func newTracker() (*loading.Tracker, *fakeScheduler) {
	sched := new(fakeScheduler)
	return loading.NewTracker(
		loading.DefaultHideDelay, loading.WithScheduler(sched),
	), sched
}

func TestTrackerPhases(t *testing.T) {
	tr, _ := newTracker()

	s := tr.Observe(true, 0)
	assert.True(t, s.InitialLoading)
	assert.False(t, s.FetchingMore)

	s = tr.Observe(false, 10)
	assert.False(t, s.InitialLoading)
	assert.True(t, s.Idle())
	assert.True(t, tr.HasInitialData())

	s = tr.Observe(true, 10)
	assert.True(t, s.FetchingMore)
	assert.False(t, s.InitialLoading)
	assert.True(t, s.FetchingMoreVisible)
}

func TestTrackerLatch(t *testing.T) {
	tr, _ := newTracker()

	tr.Observe(true, 0)
	tr.Observe(false, 0)
	assert.False(t, tr.HasInitialData(), "empty results do not latch")

	tr.Observe(false, 3)
	tr.Observe(true, 0)
	s := tr.State()
	assert.True(t, s.FetchingMore, "latch survives an emptied pool")
}

func TestTrackerDebounce(t *testing.T) {
	t.Run("HideAfterDelay", func(t *testing.T) {
		tr, sched := newTracker()
		tr.Observe(false, 5)
		tr.Observe(true, 5)

		s := tr.Observe(false, 10)
		assert.True(t, s.Idle())
		assert.True(t, s.FetchingMoreVisible)

		sched.Advance(239 * time.Millisecond)
		assert.True(t, tr.State().FetchingMoreVisible)

		sched.Advance(time.Millisecond)
		assert.False(t, tr.State().FetchingMoreVisible)
	})

	t.Run("ResumeCancelsHide", func(t *testing.T) {
		tr, sched := newTracker()
		tr.Observe(false, 5)
		tr.Observe(true, 5)
		tr.Observe(false, 10)

		sched.Advance(100 * time.Millisecond)
		s := tr.Observe(true, 10)
		assert.True(t, s.FetchingMoreVisible)
		assert.Equal(t, 0, sched.pending())

		sched.Advance(time.Second)
		assert.True(t, tr.State().FetchingMoreVisible, "never flickers off")

		tr.Observe(false, 15)
		sched.Advance(240 * time.Millisecond)
		assert.False(t, tr.State().FetchingMoreVisible)
	})

	t.Run("InitialLoadNeverShowsIndicator", func(t *testing.T) {
		tr, sched := newTracker()
		s := tr.Observe(true, 0)
		assert.False(t, s.FetchingMoreVisible)
		tr.Observe(false, 5)
		assert.Equal(t, 0, sched.pending())
	})

	t.Run("RepeatedIdleSchedulesOnce", func(t *testing.T) {
		tr, sched := newTracker()
		tr.Observe(false, 5)
		tr.Observe(true, 5)
		tr.Observe(false, 5)
		tr.Observe(false, 5)
		assert.Equal(t, 1, sched.pending())
	})
}

func TestTrackerClose(t *testing.T) {
	var (
		mu      sync.Mutex
		changes []loading.State
	)
	sched := new(fakeScheduler)
	tr := loading.NewTracker(
		loading.DefaultHideDelay,
		loading.WithScheduler(sched),
		loading.WithOnChange(func(s loading.State) {
			mu.Lock()
			changes = append(changes, s)
			mu.Unlock()
		}),
	)

	tr.Observe(false, 5)
	tr.Observe(true, 5)
	tr.Observe(false, 5)
	require.Equal(t, 1, sched.pending())

	tr.Close()
	assert.Equal(t, 0, sched.pending())

	sched.Advance(time.Second)
	s := tr.Observe(true, 100)
	assert.True(t, s.FetchingMoreVisible, "state frozen after close")

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, changes, 3)
}
