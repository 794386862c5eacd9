// Package scheduler provides the delayed and repeating callback capability
// the counter engine runs on.
package scheduler

import (
	"sort"
	"time"
)

// Timer is a cancellable scheduled callback.
type Timer interface {
	Stop()
}

// Scheduler schedules callbacks. Callbacks never run concurrently with
// each other.
type Scheduler interface {
	After(d time.Duration, fn func()) Timer
	Every(d time.Duration, fn func()) Timer
}

// Manual is a virtual-clock scheduler. Callbacks run synchronously from
// Advance, in due-time order and then registration order.
type Manual struct {
	now    time.Duration
	seq    int
	timers []*manualTimer
}

type manualTimer struct {
	due      time.Duration
	interval time.Duration
	seq      int
	fn       func()
	stopped  bool
}

// NewManual returns a scheduler whose clock starts at zero.
func NewManual() *Manual {
	return &Manual{}
}

// Now returns the elapsed virtual time.
func (m *Manual) Now() time.Duration {
	return m.now
}

// After schedules fn once after d.
func (m *Manual) After(d time.Duration, fn func()) Timer {
	return m.add(d, 0, fn)
}

// Every schedules fn every d. A non-positive d is treated as 1ms.
func (m *Manual) Every(d time.Duration, fn func()) Timer {
	if d <= 0 {
		d = time.Millisecond
	}
	return m.add(d, d, fn)
}

func (m *Manual) add(d, interval time.Duration, fn func()) *manualTimer {
	if d < 0 {
		d = 0
	}
	m.seq++
	t := &manualTimer{due: m.now + d, interval: interval, seq: m.seq, fn: fn}
	m.timers = append(m.timers, t)
	return t
}

// Stop cancels the timer.
func (t *manualTimer) Stop() {
	t.stopped = true
}

// Pending returns the number of live timers.
func (m *Manual) Pending() int {
	n := 0
	for _, t := range m.timers {
		if !t.stopped {
			n++
		}
	}
	return n
}

// Advance moves the clock forward by d, firing every callback that falls due.
func (m *Manual) Advance(d time.Duration) {
	target := m.now + d
	for {
		next := m.nextDue(target)
		if next == nil {
			break
		}
		m.now = next.due
		if next.interval > 0 {
			next.due += next.interval
			m.seq++
			next.seq = m.seq
		} else {
			next.stopped = true
		}
		next.fn()
		m.compact()
	}
	m.now = target
}

// RunUntilIdle advances until no timers remain or limit elapses.
func (m *Manual) RunUntilIdle(limit time.Duration) {
	deadline := m.now + limit
	for m.Pending() > 0 {
		next := m.nextDue(deadline)
		if next == nil {
			break
		}
		m.Advance(next.due - m.now)
	}
}

func (m *Manual) nextDue(limit time.Duration) *manualTimer {
	live := make([]*manualTimer, 0, len(m.timers))
	for _, t := range m.timers {
		if !t.stopped && t.due <= limit {
			live = append(live, t)
		}
	}
	if len(live) == 0 {
		return nil
	}
	sort.Slice(live, func(i, j int) bool {
		if live[i].due != live[j].due {
			return live[i].due < live[j].due
		}
		return live[i].seq < live[j].seq
	})
	return live[0]
}

func (m *Manual) compact() {
	kept := m.timers[:0]
	for _, t := range m.timers {
		if !t.stopped {
			kept = append(kept, t)
		}
	}
	m.timers = kept
}
