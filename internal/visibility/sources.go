package visibility

import "github.com/verte-zerg/tickup/internal/dom"

// Intersection is a push-based source. Targets are never unobserved, so an
// element that scrolls out and back in is reported again.
type Intersection struct {
	platform Platform
	opts     Options
	targets  []*observed
	notify   Notify
	started  bool
}

type observed struct {
	el      *dom.Element
	visible bool
}

// NewIntersection returns an observer rooted at the platform viewport.
func NewIntersection(p Platform, opts Options) *Intersection {
	if opts.Threshold <= 0 {
		opts.Threshold = DefaultThreshold
	}
	if opts.RootMargin < 0 {
		opts.RootMargin = 0
	}
	return &Intersection{platform: p, opts: opts}
}

// Mode implements Source.
func (o *Intersection) Mode() Mode { return ModeIntersection }

// Observe registers elements. An initial entry is delivered for every
// newly observed element.
func (o *Intersection) Observe(elements []*dom.Element, notify Notify) {
	o.notify = notify
	if !o.started {
		o.started = true
		o.platform.OnScroll(o.check)
	}
	vp := o.platform.Viewport()
	entries := make([]Entry, 0, len(elements))
	for _, el := range elements {
		entry := o.entry(el, vp)
		o.targets = append(o.targets, &observed{el: el, visible: entry.Visible})
		entries = append(entries, entry)
	}
	if len(entries) > 0 && o.notify != nil {
		o.notify(entries)
	}
}

func (o *Intersection) entry(el *dom.Element, vp Viewport) Entry {
	ratio := IntersectionRatio(el.Box.Rect(), vp, o.opts.RootMargin)
	return Entry{Element: el, Ratio: ratio, Visible: ratio >= o.opts.Threshold}
}

// check delivers entries for targets that crossed the threshold.
func (o *Intersection) check() {
	vp := o.platform.Viewport()
	var entries []Entry
	for _, t := range o.targets {
		entry := o.entry(t.el, vp)
		if entry.Visible == t.visible {
			continue
		}
		t.visible = entry.Visible
		entries = append(entries, entry)
	}
	if len(entries) > 0 && o.notify != nil {
		o.notify(entries)
	}
}

// Legacy is a poll-based source: it scans on observe and on every scroll.
type Legacy struct {
	platform Platform
	filter   Filter
	elements []*dom.Element
	notify   Notify
	started  bool
}

// NewLegacy returns a scroll-polling source. A nil filter admits every element.
func NewLegacy(p Platform, filter Filter) *Legacy {
	return &Legacy{platform: p, filter: filter}
}

// Mode implements Source.
func (l *Legacy) Mode() Mode { return ModeLegacy }

// Observe registers elements and scans once immediately.
func (l *Legacy) Observe(elements []*dom.Element, notify Notify) {
	l.notify = notify
	l.elements = append(l.elements, elements...)
	if !l.started {
		l.started = true
		l.platform.OnScroll(l.Scan)
	}
	l.Scan()
}

// Scan notifies, one element at a time, every participating element that
// is fully in view.
func (l *Legacy) Scan() {
	if l.notify == nil {
		return
	}
	vp := l.platform.Viewport()
	for _, el := range l.elements {
		if l.filter != nil && !l.filter(el) {
			continue
		}
		if !InView(el.Box.Rect(), vp) {
			continue
		}
		l.notify([]Entry{{Element: el, Ratio: 1, Visible: true}})
	}
}
