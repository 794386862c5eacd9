// Package generator builds randomized demo counter pages.
package generator

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/verte-zerg/tickup/internal/page"
)

var sectionTitles = []string{"Community", "Growth", "Revenue", "Operations", "Support", "Engineering"}

var labels = []string{
	"Active users", "Countries", "Downloads", "Stars", "Orders", "Refunds",
	"Deploys", "Incidents", "Tickets closed", "Uptime days", "Revenue", "Cups of coffee",
}

// Generator produces randomized demo pages.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with seed, or the current time when seed is 0.
func New(seed int64) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Page builds a page with count counters spread over a few sections.
func (g *Generator) Page(count int) *page.Page {
	p := &page.Page{Title: "Demo counters"}
	if count <= 0 {
		return p
	}
	perSection := 3 + g.rnd.Intn(3)
	for i := 0; i < count; i++ {
		if i%perSection == 0 {
			p.Sections = append(p.Sections, page.Section{
				Title: sectionTitles[len(p.Sections)%len(sectionTitles)],
				// Gaps push later sections below the fold.
				Gap: g.rnd.Intn(12),
			})
		}
		s := &p.Sections[len(p.Sections)-1]
		s.Counters = append(s.Counters, g.counter(i+1))
	}
	return p
}

func (g *Generator) counter(n int) page.Counter {
	c := page.Counter{
		ID:       fmt.Sprintf("demo-%d", n),
		Label:    labels[g.rnd.Intn(len(labels))],
		Settings: map[string]any{},
	}
	set := c.Settings

	switch g.rnd.Intn(4) {
	case 0:
		// Small integer count.
		set["end"] = int64(10 + g.rnd.Intn(990))
	case 1:
		// Large count with grouping.
		set["end"] = int64(10000 + g.rnd.Intn(9990000))
		set["separator"] = true
	case 2:
		// Currency abbreviation.
		set["end"] = int64(1+g.rnd.Intn(999)) * 1000000
		set["currency"] = true
		set["currencysymbol"] = "$"
		set["decimals"] = int64(1)
	default:
		// Fractional countdown.
		set["start"] = int64(50 + g.rnd.Intn(50))
		set["end"] = int64(g.rnd.Intn(10))
		set["decimals"] = int64(1 + g.rnd.Intn(2))
	}
	set["duration"] = float64(1+g.rnd.Intn(4)) / 2
	if g.rnd.Float64() < 0.25 {
		set["once"] = false
	}
	return c
}
