package tui

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/verte-zerg/tickup/internal/counter"
	"github.com/verte-zerg/tickup/internal/dom"
	"github.com/verte-zerg/tickup/internal/model"
	"github.com/verte-zerg/tickup/internal/page"
	"github.com/verte-zerg/tickup/internal/report"
	"github.com/verte-zerg/tickup/internal/scheduler"
	"github.com/verte-zerg/tickup/internal/visibility"
)

// Session is one laid out page with a running counter engine.
type Session struct {
	Page     *page.Page
	Layout   *page.Layout
	Window   *visibility.Window
	Engine   *counter.Engine
	Recorder *report.Recorder
	mode     visibility.Mode
	dirty    bool
}

// NewSession lays p out for a width x height window and wires an engine
// scheduling on sched. Nothing is observed until Start.
func NewSession(p *page.Page, cfg model.Config, sched scheduler.Scheduler, width, height int, log logrus.FieldLogger) *Session {
	namespace := cfg.Namespace
	if namespace == "" {
		namespace = counter.DefaultNamespace
	}
	caps := visibility.FullCapabilities()
	if cfg.ForceLegacy {
		caps = visibility.Capabilities{}
	}

	s := &Session{
		Page:     p,
		Layout:   page.Build(p, namespace, width),
		Window:   visibility.NewWindow(float64(width), float64(height), caps),
		Recorder: report.NewRecorder(counter.Hooks{}),
	}
	opts := []counter.Option{
		counter.WithLogger(log),
		counter.WithResolver(counter.NewResolver(
			counter.WithNamespace(namespace),
			counter.WithResolverLogger(log),
		)),
		counter.WithFormatter(counter.NewFormatter(counter.ParseLocale(cfg.Locale))),
		counter.WithDetection(visibility.Options{RootMargin: cfg.RootMargin, Threshold: cfg.Threshold}),
		counter.WithHooks(s.Recorder.Hooks()),
	}
	if cfg.Marker != "" {
		opts = append(opts, counter.WithMarker(cfg.Marker))
	}
	s.Engine = counter.NewEngine(sched, opts...)
	s.Layout.Document.OnRender(func(*dom.Element) { s.dirty = true })
	return s
}

// TakeDirty reports whether any counter re-rendered since the last call.
func (s *Session) TakeDirty() bool {
	dirty := s.dirty
	s.dirty = false
	return dirty
}

// Start registers the page's counters and returns the detection mode.
func (s *Session) Start() visibility.Mode {
	s.mode = s.Engine.Start(s.Layout.Document, s.Window)
	return s.mode
}

// Mode returns the detection mode chosen by Start.
func (s *Session) Mode() visibility.Mode {
	return s.mode
}

// ScrollTo moves the window to row y, clamped to the page.
func (s *Session) ScrollTo(y int) {
	maxY := s.Layout.Height - int(s.Window.Viewport().Height)
	if y > maxY {
		y = maxY
	}
	if y < 0 {
		y = 0
	}
	s.Window.ScrollTo(0, float64(y))
}

// Stop cancels all timers and detaches from the window.
func (s *Session) Stop() {
	s.Engine.Stop()
	s.Window.Reset()
}

// Snapshot captures the session for report.RenderSnapshot.
func (s *Session) Snapshot(elapsed time.Duration) report.Snapshot {
	snap := report.Snapshot{
		Title:    s.Page.Title,
		Mode:     string(s.mode),
		Elements: s.Layout.Document.Elements,
		State:    s.Engine.State,
		Recorder: s.Recorder,
	}
	if elapsed > 0 {
		snap.Elapsed = elapsed.String()
	}
	return snap
}
