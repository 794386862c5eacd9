package tui

import (
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/tickup/internal/counter"
	"github.com/verte-zerg/tickup/internal/model"
	"github.com/verte-zerg/tickup/internal/page"
	"github.com/verte-zerg/tickup/internal/scheduler"
	"github.com/verte-zerg/tickup/internal/visibility"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func testConfig() model.Config {
	return model.Config{
		Namespace: counter.DefaultNamespace,
		Marker:    counter.DefaultMarker,
		Threshold: visibility.DefaultThreshold,
	}
}

// testPage has one counter at the top and one below a tall gap.
// At width 40 the page is 42 rows high.
func testPage() *page.Page {
	settings := func() map[string]any {
		return map[string]any{"end": int64(10), "duration": 0.1, "delay": int64(10)}
	}
	return &page.Page{
		Title: "Test page",
		Sections: []page.Section{
			{Title: "Top", Counters: []page.Counter{{ID: "a", Label: "Alpha", Settings: settings()}}},
			{Title: "Bottom", Gap: 30, Counters: []page.Counter{{ID: "b", Label: "Beta", Settings: settings()}}},
		},
	}
}

func TestSessionIntersectionRevealsOnScroll(t *testing.T) {
	sched := scheduler.NewManual()
	s := NewSession(testPage(), testConfig(), sched, 40, 10, quietLogger())
	require.Equal(t, 42, s.Layout.Height)
	require.Equal(t, visibility.ModeIntersection, s.Start())

	a := s.Layout.Document.ByID("a")
	b := s.Layout.Document.ByID("b")
	require.Equal(t, counter.Pending, s.Engine.State(a))
	require.Equal(t, "0", b.Content())

	sched.RunUntilIdle(time.Minute)
	require.Equal(t, "10", a.Content())
	require.Equal(t, 1, s.Engine.Settled())

	s.ScrollTo(100)
	require.Equal(t, 32.0, s.Window.Viewport().ScrollY)
	require.Equal(t, counter.Pending, s.Engine.State(b))
	sched.RunUntilIdle(time.Minute)
	require.Equal(t, "10", b.Content())
	require.Equal(t, "10", a.Content())
	require.Equal(t, 2, s.Engine.Settled())
	require.Equal(t, 10, s.Recorder.Trace(b).Ticks)
}

func TestSessionLegacyScansOnScroll(t *testing.T) {
	cfg := testConfig()
	cfg.ForceLegacy = true
	sched := scheduler.NewManual()
	s := NewSession(testPage(), cfg, sched, 40, 10, quietLogger())
	require.Equal(t, visibility.ModeLegacy, s.Start())

	b := s.Layout.Document.ByID("b")
	sched.RunUntilIdle(time.Minute)
	require.Empty(t, b.Content())
	require.Equal(t, 1, s.Engine.Settled())

	s.ScrollTo(-5)
	require.Equal(t, 0.0, s.Window.Viewport().ScrollY)

	s.ScrollTo(32)
	sched.RunUntilIdle(time.Minute)
	require.Equal(t, "10", b.Content())

	snap := s.Snapshot(2 * time.Second)
	require.Equal(t, "legacy", snap.Mode)
	require.Equal(t, "2s", snap.Elapsed)
	require.Len(t, snap.Elements, 2)
}

func TestSessionStopCancelsTimers(t *testing.T) {
	sched := scheduler.NewManual()
	s := NewSession(testPage(), testConfig(), sched, 40, 10, quietLogger())
	s.Start()
	require.Equal(t, 1, sched.Pending())

	s.Stop()
	sched.RunUntilIdle(time.Minute)
	a := s.Layout.Document.ByID("a")
	require.Empty(t, a.Content())

	// Detached from the window: scrolling no longer triggers anything.
	s.ScrollTo(32)
	require.Equal(t, 0, sched.Pending())
}

func TestSessionTracksRenders(t *testing.T) {
	sched := scheduler.NewManual()
	s := NewSession(testPage(), testConfig(), sched, 40, 10, quietLogger())
	s.Start()
	// Parking the hidden counter renders it.
	require.True(t, s.TakeDirty())
	require.False(t, s.TakeDirty())

	sched.Advance(10 * time.Millisecond)
	require.True(t, s.TakeDirty())
}
