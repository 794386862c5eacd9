package scheduler

import (
	"sync"
	"sync/atomic"
	"time"
)

const defaultLoopBuffer = 64

// Loop is a real-time scheduler. Timers fire on background goroutines but
// only post their callbacks; the owner of C runs them one at a time.
type Loop struct {
	ch   chan func()
	once sync.Once
	done chan struct{}
}

// NewLoop returns a loop with a buffered callback channel.
func NewLoop() *Loop {
	return &Loop{
		ch:   make(chan func(), defaultLoopBuffer),
		done: make(chan struct{}),
	}
}

// C delivers callbacks to run on the owning goroutine.
func (l *Loop) C() <-chan func() {
	return l.ch
}

// Close stops delivering callbacks. Pending timers become no-ops.
func (l *Loop) Close() {
	l.once.Do(func() { close(l.done) })
}

type loopTimer struct {
	stopped atomic.Bool
	timer   *time.Timer
	ticker  *time.Ticker
	quit    chan struct{}
	once    sync.Once
}

func (t *loopTimer) Stop() {
	t.stopped.Store(true)
	if t.timer != nil {
		t.timer.Stop()
	}
	if t.ticker != nil {
		t.once.Do(func() {
			t.ticker.Stop()
			close(t.quit)
		})
	}
}

// post hands fn to the owner, guarded so a stop observed before the
// callback runs suppresses it.
func (l *Loop) post(t *loopTimer, fn func()) {
	guarded := func() {
		if t.stopped.Load() {
			return
		}
		fn()
	}
	select {
	case l.ch <- guarded:
	case <-l.done:
	}
}

// After schedules fn once after d.
func (l *Loop) After(d time.Duration, fn func()) Timer {
	t := &loopTimer{}
	t.timer = time.AfterFunc(d, func() {
		l.post(t, func() {
			t.stopped.Store(true)
			fn()
		})
	})
	return t
}

// Every schedules fn every d. A non-positive d is treated as 1ms.
func (l *Loop) Every(d time.Duration, fn func()) Timer {
	if d <= 0 {
		d = time.Millisecond
	}
	t := &loopTimer{ticker: time.NewTicker(d), quit: make(chan struct{})}
	go func() {
		for {
			select {
			case <-t.ticker.C:
				l.post(t, fn)
			case <-t.quit:
				return
			case <-l.done:
				t.ticker.Stop()
				return
			}
		}
	}()
	return t
}
