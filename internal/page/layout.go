package page

import (
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/tickup/internal/dom"
)

const (
	// CardHeight is the outer height of a counter card: border, label,
	// value, border.
	CardHeight   = 4
	minCardWidth = 18
	cardChrome   = 4 // border and horizontal padding
	headerHeight = 2 // title line and a blank line
)

// DefaultClass is given to counters that declare no classes.
const DefaultClass = "purecounter"

// Layout is a page laid out for a given width.
type Layout struct {
	Document  *dom.Document
	Sections  []SectionLayout
	CardWidth int
	Columns   int
	Height    int
}

// SectionLayout is one laid out section.
type SectionLayout struct {
	Title string
	Gap   int
	Box   *dom.Box
	Rows  [][]*dom.Element
}

// Build lays the page out in rows of equally sized cards. Sections stack
// vertically and act as offset parents of their counters.
func Build(p *Page, namespace string, width int) *Layout {
	cardWidth := CardWidth(p, width)
	columns := 1
	if width > 0 && width/cardWidth > 1 {
		columns = width / cardWidth
	}

	layout := &Layout{CardWidth: cardWidth, Columns: columns}
	var elements []*dom.Element
	y := 0
	for _, s := range p.Sections {
		y += s.Gap
		sl := SectionLayout{Title: s.Title, Gap: s.Gap, Box: &dom.Box{OffsetTop: float64(y), Width: float64(width)}}
		top := 0
		if s.Title != "" {
			top = headerHeight
		}
		var row []*dom.Element
		for i, c := range s.Counters {
			classes := c.Classes
			if len(classes) == 0 {
				classes = []string{DefaultClass}
			}
			el := dom.NewElement(c.ID, classes, c.ElementAttributes(namespace))
			el.Label = c.Label
			col := i % columns
			rowIdx := i / columns
			el.Box = &dom.Box{
				OffsetTop:  float64(top + rowIdx*CardHeight),
				OffsetLeft: float64(col * cardWidth),
				Width:      float64(cardWidth),
				Height:     CardHeight,
				Parent:     sl.Box,
			}
			row = append(row, el)
			if len(row) == columns {
				sl.Rows = append(sl.Rows, row)
				row = nil
			}
			elements = append(elements, el)
		}
		if len(row) > 0 {
			sl.Rows = append(sl.Rows, row)
		}
		sl.Box.Height = float64(top + len(sl.Rows)*CardHeight)
		y += int(sl.Box.Height)
		layout.Sections = append(layout.Sections, sl)
	}
	layout.Height = y
	layout.Document = dom.NewDocument(p.Title, elements)
	return layout
}

// CardWidth sizes cards to fit the widest label, capped at the page width.
func CardWidth(p *Page, width int) int {
	w := minCardWidth
	for _, s := range p.Sections {
		for _, c := range s.Counters {
			if cw := runewidth.StringWidth(c.Label) + cardChrome; cw > w {
				w = cw
			}
		}
	}
	if width > 0 && w > width {
		w = width
	}
	if w < cardChrome+1 {
		w = cardChrome + 1
	}
	return w
}
