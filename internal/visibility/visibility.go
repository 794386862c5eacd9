// Package visibility decides when counter elements enter the viewport.
//
// Two interchangeable sources implement the same contract: an
// intersection observer that pushes threshold crossings, and a legacy
// poller that re-scans element boxes on every scroll event. Select picks
// one once, from the platform's capabilities.
package visibility

import (
	"math"

	"github.com/verte-zerg/tickup/internal/dom"
)

const (
	// DefaultRootMargin grows the viewport on every side before ratios are computed.
	DefaultRootMargin = 20.0
	// DefaultThreshold is the visible fraction that counts as "in view".
	DefaultThreshold = 0.5
)

// Mode names the active detection strategy.
type Mode string

const (
	ModeIntersection Mode = "intersection"
	ModeLegacy       Mode = "legacy"
)

// Viewport is the visible window in page coordinates.
type Viewport struct {
	ScrollX float64
	ScrollY float64
	Width   float64
	Height  float64
}

// Capabilities mirrors the probe for intersection notifications: the
// observer itself, its entry type, and the ratio field on entries.
type Capabilities struct {
	Observer   bool
	EntryType  bool
	RatioField bool
}

// IntersectionSupported requires all three capabilities.
func (c Capabilities) IntersectionSupported() bool {
	return c.Observer && c.EntryType && c.RatioField
}

// FullCapabilities reports support for intersection notifications.
func FullCapabilities() Capabilities {
	return Capabilities{Observer: true, EntryType: true, RatioField: true}
}

// Platform is the host surface elements are laid out on.
type Platform interface {
	Viewport() Viewport
	// OnScroll registers a passive listener for viewport changes.
	OnScroll(fn func())
	Capabilities() Capabilities
}

// Entry reports an element whose visibility was evaluated.
type Entry struct {
	Element *dom.Element
	Ratio   float64
	Visible bool
}

// Notify receives entries from a source.
type Notify func(entries []Entry)

// Source observes elements and reports visibility changes.
type Source interface {
	Observe(elements []*dom.Element, notify Notify)
	Mode() Mode
}

// Filter selects elements that take part in legacy polling.
type Filter func(el *dom.Element) bool

// Options tunes the intersection source.
type Options struct {
	RootMargin float64
	Threshold  float64
}

// DefaultOptions returns the standard observer configuration.
func DefaultOptions() Options {
	return Options{RootMargin: DefaultRootMargin, Threshold: DefaultThreshold}
}

// Select probes the platform and returns the matching source.
func Select(p Platform, filter Filter, opts Options) Source {
	if p.Capabilities().IntersectionSupported() {
		return NewIntersection(p, opts)
	}
	return NewLegacy(p, filter)
}

// InView reports whether r lies entirely within the viewport.
func InView(r dom.Rect, vp Viewport) bool {
	return r.Top >= vp.ScrollY &&
		r.Left >= vp.ScrollX &&
		r.Top+r.Height <= vp.ScrollY+vp.Height &&
		r.Left+r.Width <= vp.ScrollX+vp.Width
}

// IntersectionRatio returns the fraction of r inside the viewport grown
// by margin on every side.
func IntersectionRatio(r dom.Rect, vp Viewport, margin float64) float64 {
	rootTop := vp.ScrollY - margin
	rootLeft := vp.ScrollX - margin
	rootBottom := vp.ScrollY + vp.Height + margin
	rootRight := vp.ScrollX + vp.Width + margin

	top := math.Max(r.Top, rootTop)
	left := math.Max(r.Left, rootLeft)
	bottom := math.Min(r.Top+r.Height, rootBottom)
	right := math.Min(r.Left+r.Width, rootRight)
	if bottom < top || right < left {
		return 0
	}
	area := r.Width * r.Height
	if area <= 0 {
		// Zero-area targets count as fully visible when they touch the root.
		return 1
	}
	return ((bottom - top) * (right - left)) / area
}
