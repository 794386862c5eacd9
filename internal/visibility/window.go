package visibility

// Window is a programmable Platform. Scroll and resize changes are
// delivered to listeners synchronously.
type Window struct {
	vp        Viewport
	caps      Capabilities
	listeners []func()
}

// NewWindow returns a window of the given size at the page origin.
func NewWindow(width, height float64, caps Capabilities) *Window {
	return &Window{vp: Viewport{Width: width, Height: height}, caps: caps}
}

// Viewport implements Platform.
func (w *Window) Viewport() Viewport { return w.vp }

// Capabilities implements Platform.
func (w *Window) Capabilities() Capabilities { return w.caps }

// OnScroll implements Platform.
func (w *Window) OnScroll(fn func()) {
	w.listeners = append(w.listeners, fn)
}

// ScrollTo moves the viewport and notifies listeners when it changed.
func (w *Window) ScrollTo(x, y float64) {
	if w.vp.ScrollX == x && w.vp.ScrollY == y {
		return
	}
	w.vp.ScrollX = x
	w.vp.ScrollY = y
	w.dispatch()
}

// Resize changes the viewport size and notifies listeners when it changed.
func (w *Window) Resize(width, height float64) {
	if w.vp.Width == width && w.vp.Height == height {
		return
	}
	w.vp.Width = width
	w.vp.Height = height
	w.dispatch()
}

// Reset drops all listeners, as a page unload would.
func (w *Window) Reset() {
	w.listeners = nil
}

func (w *Window) dispatch() {
	for _, fn := range w.listeners {
		fn()
	}
}
