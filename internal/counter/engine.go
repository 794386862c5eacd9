package counter

import (
	"math"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/verte-zerg/tickup/internal/dom"
	"github.com/verte-zerg/tickup/internal/scheduler"
	"github.com/verte-zerg/tickup/internal/visibility"
)

// DefaultMarker is the class that marks counter elements.
const DefaultMarker = "purecounter"

// State is the per-element animation state.
type State int

const (
	Idle State = iota
	Pending
	Stepping
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Stepping:
		return "stepping"
	default:
		return "idle"
	}
}

// Hooks observe engine output. Either field may be nil.
type Hooks struct {
	OnRender func(el *dom.Element, value float64, text string)
	OnSettle func(el *dom.Element, ticks int)
}

type run struct {
	cfg        Config
	state      State
	decreasing bool
	step       float64
	current    float64
	ticks      int
	settled    bool
	timer      scheduler.Timer
}

// Engine drives counter animations. All methods must be called from the
// goroutine that runs scheduler callbacks.
type Engine struct {
	sched     scheduler.Scheduler
	resolver  *Resolver
	formatter *Formatter
	log       logrus.FieldLogger
	marker    string
	detection visibility.Options
	hooks     Hooks

	source    visibility.Source
	runs      map[*dom.Element]*run
	completed map[*dom.Element]bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithResolver sets the config resolver.
func WithResolver(r *Resolver) Option {
	return func(e *Engine) { e.resolver = r }
}

// WithFormatter sets the value formatter.
func WithFormatter(f *Formatter) Option {
	return func(e *Engine) { e.formatter = f }
}

// WithLogger sets the engine logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(e *Engine) { e.log = log }
}

// WithMarker sets the class Start queries for.
func WithMarker(class string) Option {
	return func(e *Engine) {
		if class != "" {
			e.marker = class
		}
	}
}

// WithDetection sets the intersection observer options.
func WithDetection(opts visibility.Options) Option {
	return func(e *Engine) { e.detection = opts }
}

// WithHooks installs output hooks.
func WithHooks(h Hooks) Option {
	return func(e *Engine) { e.hooks = h }
}

// NewEngine returns an engine scheduling on sched.
func NewEngine(sched scheduler.Scheduler, opts ...Option) *Engine {
	e := &Engine{
		sched:     sched,
		log:       logrus.StandardLogger(),
		marker:    DefaultMarker,
		detection: visibility.DefaultOptions(),
		runs:      map[*dom.Element]*run{},
		completed: map[*dom.Element]bool{},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.resolver == nil {
		e.resolver = NewResolver(WithResolverLogger(e.log))
	}
	if e.formatter == nil {
		e.formatter = NewFormatter(ParseLocale(""))
	}
	return e
}

// Start queries the document for counter elements, picks a detection
// strategy from the platform's capabilities, and registers the elements.
func (e *Engine) Start(doc *dom.Document, p visibility.Platform) visibility.Mode {
	elements := doc.QueryClass(e.marker)
	src := visibility.Select(p, e.participatesInLegacy, e.detection)
	e.log.WithFields(logrus.Fields{"mode": src.Mode(), "elements": len(elements)}).Debug("starting counters")
	e.Register(elements, src)
	return src.Mode()
}

// Register observes elements through src.
func (e *Engine) Register(elements []*dom.Element, src visibility.Source) {
	e.source = src
	src.Observe(elements, e.handle)
}

// Mode returns the active detection mode, or "" before registration.
func (e *Engine) Mode() visibility.Mode {
	if e.source == nil {
		return ""
	}
	return e.source.Mode()
}

// Config resolves the element's current configuration. Completed
// once-only counters resolve with a zero duration.
func (e *Engine) Config(el *dom.Element) Config {
	cfg := e.resolver.Resolve(el.Attrs())
	if e.completed[el] {
		cfg.Duration = 0
	}
	return cfg
}

// State returns the element's animation state.
func (e *Engine) State(el *dom.Element) State {
	if r, ok := e.runs[el]; ok {
		return r.state
	}
	return Idle
}

// Running counts elements that are pending or stepping.
func (e *Engine) Running() int {
	n := 0
	for _, r := range e.runs {
		if r.state != Idle {
			n++
		}
	}
	return n
}

// Settled counts elements whose last run reached its end value.
func (e *Engine) Settled() int {
	n := 0
	for _, r := range e.runs {
		if r.settled && r.state == Idle {
			n++
		}
	}
	return n
}

// Stop cancels every scheduled callback and forgets all runs, as tearing
// down the page would.
func (e *Engine) Stop() {
	for _, r := range e.runs {
		if r.timer != nil {
			r.timer.Stop()
		}
	}
	e.runs = map[*dom.Element]*run{}
	e.completed = map[*dom.Element]bool{}
	e.source = nil
}

func (e *Engine) participatesInLegacy(el *dom.Element) bool {
	return e.Config(el).Legacy
}

func (e *Engine) handle(entries []visibility.Entry) {
	for _, entry := range entries {
		e.Trigger(entry)
	}
}

// Trigger evaluates one visibility report for an element.
func (e *Engine) Trigger(entry visibility.Entry) {
	el := entry.Element
	log := e.log.WithField("element", el.ID)
	if r, ok := e.runs[el]; ok && r.state != Idle {
		log.WithField("state", r.state).Debug("ignoring trigger while counter is running")
		return
	}

	cfg := e.Config(el)
	if cfg.Duration <= 0 {
		e.render(el, cfg.End, cfg)
		return
	}
	if !entry.Visible {
		e.render(el, math.Min(cfg.Start, cfg.End), cfg)
		return
	}

	r := &run{cfg: cfg, state: Pending}
	e.runs[el] = r
	log.WithFields(logrus.Fields{"start": cfg.Start, "end": cfg.End, "duration": cfg.Duration}).Debug("counter triggered")
	r.timer = e.sched.After(millis(cfg.Delay), func() {
		e.startStepping(el, r)
	})
}

func (e *Engine) startStepping(el *dom.Element, r *run) {
	cfg := r.cfg
	ticks := float64(cfg.Duration) / float64(cfg.Delay)
	step := (cfg.End - cfg.Start) / ticks
	if cfg.Start > cfg.End {
		r.decreasing = true
		step = -step
	}
	if step < 1 && cfg.Decimals <= 0 {
		step = 1
	}
	r.step = step

	if cfg.Decimals <= 0 {
		r.current = math.Trunc(cfg.Start)
	} else {
		r.current = roundTo(cfg.Start, cfg.Decimals)
	}
	r.state = Stepping
	e.render(el, r.current, cfg)

	if cfg.Once {
		e.completed[el] = true
	}
	r.timer = e.sched.Every(millis(cfg.Delay), func() {
		e.tick(el, r)
	})
}

func (e *Engine) tick(el *dom.Element, r *run) {
	cfg := r.cfg
	next := e.nextNumber(r)
	r.current = next
	r.ticks++
	e.render(el, next, cfg)

	done := (!r.decreasing && r.current >= cfg.End) || (r.decreasing && r.current <= cfg.End)
	if !done {
		return
	}
	r.timer.Stop()
	if r.current != cfg.End {
		e.render(el, cfg.End, cfg)
	}
	r.state = Idle
	r.settled = true
	e.log.WithFields(logrus.Fields{"element": el.ID, "ticks": r.ticks}).Debug("counter settled")
	if e.hooks.OnSettle != nil {
		e.hooks.OnSettle(el, r.ticks)
	}
}

func (e *Engine) nextNumber(r *run) float64 {
	if r.cfg.Decimals <= 0 {
		step := math.Trunc(r.step)
		if r.decreasing {
			return math.Trunc(r.current) - step
		}
		return math.Trunc(r.current) + step
	}
	if r.decreasing {
		return r.current - r.step
	}
	return r.current + r.step
}

func (e *Engine) render(el *dom.Element, value float64, cfg Config) {
	text := e.formatter.Format(value, cfg)
	el.SetContent(text)
	if e.hooks.OnRender != nil {
		e.hooks.OnRender(el, value, text)
	}
}

func roundTo(value float64, decimals int) float64 {
	f, err := strconv.ParseFloat(Fixed(value, decimals), 64)
	if err != nil {
		return value
	}
	return f
}

func millis(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
