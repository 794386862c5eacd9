package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestManualFiresInDueOrder(t *testing.T) {
	m := NewManual()
	var got []string
	m.After(30*time.Millisecond, func() { got = append(got, "c") })
	m.After(10*time.Millisecond, func() { got = append(got, "a") })
	m.After(10*time.Millisecond, func() { got = append(got, "b") })

	m.Advance(20 * time.Millisecond)
	require.Equal(t, []string{"a", "b"}, got)
	require.Equal(t, 20*time.Millisecond, m.Now())

	m.Advance(10 * time.Millisecond)
	require.Equal(t, []string{"a", "b", "c"}, got)
	require.Zero(t, m.Pending())
}

func TestManualEveryRearmsUntilStopped(t *testing.T) {
	m := NewManual()
	count := 0
	var timer Timer
	timer = m.Every(10*time.Millisecond, func() {
		count++
		if count == 3 {
			timer.Stop()
		}
	})

	m.Advance(time.Second)
	require.Equal(t, 3, count)
	require.Zero(t, m.Pending())
}

func TestManualStopBeforeDue(t *testing.T) {
	m := NewManual()
	fired := false
	timer := m.After(5*time.Millisecond, func() { fired = true })
	timer.Stop()
	m.Advance(10 * time.Millisecond)
	require.False(t, fired)
}

func TestManualCallbackSchedulesWithinAdvance(t *testing.T) {
	m := NewManual()
	var at []time.Duration
	m.After(10*time.Millisecond, func() {
		at = append(at, m.Now())
		m.After(10*time.Millisecond, func() { at = append(at, m.Now()) })
	})
	m.Advance(25 * time.Millisecond)
	require.Equal(t, []time.Duration{10 * time.Millisecond, 20 * time.Millisecond}, at)
}

func TestManualRunUntilIdle(t *testing.T) {
	m := NewManual()
	count := 0
	var timer Timer
	timer = m.Every(100*time.Millisecond, func() {
		count++
		if count == 10 {
			timer.Stop()
		}
	})
	m.RunUntilIdle(time.Minute)
	require.Equal(t, 10, count)
	require.Equal(t, time.Second, m.Now())
}

func TestLoopPostsCallbacks(t *testing.T) {
	l := NewLoop()
	defer l.Close()

	l.After(time.Millisecond, func() {})
	select {
	case fn := <-l.C():
		fn()
	case <-time.After(2 * time.Second):
		t.Fatalf("expected callback to be posted")
	}
}

func TestLoopStoppedTickerSuppressesPostedCallback(t *testing.T) {
	l := NewLoop()
	defer l.Close()

	ran := 0
	timer := l.Every(time.Millisecond, func() { ran++ })
	var fn func()
	select {
	case fn = <-l.C():
	case <-time.After(2 * time.Second):
		t.Fatalf("expected tick to be posted")
	}
	timer.Stop()
	fn()
	require.Zero(t, ran)
}
