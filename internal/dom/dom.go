// Package dom provides an inert document model for counter pages.
package dom

import "strings"

// Rect is an absolute rectangle in page coordinates.
type Rect struct {
	Top    float64
	Left   float64
	Width  float64
	Height float64
}

// Box is an element layout box positioned relative to its offset parent.
type Box struct {
	OffsetTop  float64
	OffsetLeft float64
	Width      float64
	Height     float64
	Parent     *Box
}

// Rect accumulates offsets through the offset-parent chain.
func (b *Box) Rect() Rect {
	if b == nil {
		return Rect{}
	}
	r := Rect{Top: b.OffsetTop, Left: b.OffsetLeft, Width: b.Width, Height: b.Height}
	for p := b.Parent; p != nil; p = p.Parent {
		r.Top += p.OffsetTop
		r.Left += p.OffsetLeft
	}
	return r
}

// RenderHook is notified after an element's content changes.
type RenderHook func(el *Element)

// Element is a page element that may carry counter attributes.
type Element struct {
	ID      string
	Label   string
	Classes []string
	Box     *Box

	attrs   map[string]string
	content string
	hook    RenderHook
}

// NewElement builds an element. Attribute names are stored lowercased.
func NewElement(id string, classes []string, attrs map[string]string) *Element {
	el := &Element{
		ID:      id,
		Classes: append([]string(nil), classes...),
		Box:     &Box{},
		attrs:   make(map[string]string, len(attrs)),
	}
	for name, value := range attrs {
		el.attrs[strings.ToLower(name)] = value
	}
	return el
}

// Attr returns the attribute value for a case-insensitive name.
func (e *Element) Attr(name string) (string, bool) {
	v, ok := e.attrs[strings.ToLower(name)]
	return v, ok
}

// SetAttr sets an attribute value.
func (e *Element) SetAttr(name, value string) {
	if e.attrs == nil {
		e.attrs = map[string]string{}
	}
	e.attrs[strings.ToLower(name)] = value
}

// Attrs returns a copy of the attribute map.
func (e *Element) Attrs() map[string]string {
	out := make(map[string]string, len(e.attrs))
	for k, v := range e.attrs {
		out[k] = v
	}
	return out
}

// HasClass reports whether the element carries the class.
func (e *Element) HasClass(class string) bool {
	for _, c := range e.Classes {
		if c == class {
			return true
		}
	}
	return false
}

// Content returns the rendered content.
func (e *Element) Content() string {
	return e.content
}

// SetContent replaces the rendered content.
func (e *Element) SetContent(s string) {
	e.content = s
	if e.hook != nil {
		e.hook(e)
	}
}

// Document is an ordered set of elements.
type Document struct {
	Title    string
	Elements []*Element
}

// NewDocument builds a document over elements.
func NewDocument(title string, elements []*Element) *Document {
	return &Document{Title: title, Elements: elements}
}

// QueryClass returns elements carrying the class in document order.
func (d *Document) QueryClass(class string) []*Element {
	var out []*Element
	for _, el := range d.Elements {
		if el.HasClass(class) {
			out = append(out, el)
		}
	}
	return out
}

// ByID returns the element with the given id.
func (d *Document) ByID(id string) *Element {
	for _, el := range d.Elements {
		if el.ID == id {
			return el
		}
	}
	return nil
}

// OnRender installs a hook on every element of the document.
func (d *Document) OnRender(hook RenderHook) {
	for _, el := range d.Elements {
		el.hook = hook
	}
}

// Height returns the bottom edge of the lowest element.
func (d *Document) Height() float64 {
	maxBottom := 0.0
	for _, el := range d.Elements {
		r := el.Box.Rect()
		if bottom := r.Top + r.Height; bottom > maxBottom {
			maxBottom = bottom
		}
	}
	return maxBottom
}
