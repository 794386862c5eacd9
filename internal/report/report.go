// Package report records counter renders and prints snapshots of a page.
package report

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/verte-zerg/tickup/internal/counter"
	"github.com/verte-zerg/tickup/internal/dom"
	"github.com/verte-zerg/tickup/internal/model"
)

const (
	sparkChars = " .:-=+*#%@"
	// SparkWidth caps the trend column.
	SparkWidth = 16
)

// Trace is the render history of one element.
type Trace struct {
	Values  []float64
	Text    string
	Ticks   int
	Settled bool
}

// Recorder collects traces from engine hooks. It is not safe for
// concurrent use; engines call hooks from a single goroutine.
type Recorder struct {
	traces map[*dom.Element]*Trace
	next   counter.Hooks
}

// NewRecorder returns a recorder that forwards to next after recording.
func NewRecorder(next counter.Hooks) *Recorder {
	return &Recorder{traces: map[*dom.Element]*Trace{}, next: next}
}

// Hooks returns engine hooks feeding the recorder.
func (r *Recorder) Hooks() counter.Hooks {
	return counter.Hooks{
		OnRender: func(el *dom.Element, value float64, text string) {
			tr := r.trace(el)
			tr.Values = append(tr.Values, value)
			tr.Text = text
			if r.next.OnRender != nil {
				r.next.OnRender(el, value, text)
			}
		},
		OnSettle: func(el *dom.Element, ticks int) {
			tr := r.trace(el)
			tr.Ticks = ticks
			tr.Settled = true
			if r.next.OnSettle != nil {
				r.next.OnSettle(el, ticks)
			}
		},
	}
}

// Trace returns the recorded trace for el, or nil.
func (r *Recorder) Trace(el *dom.Element) *Trace {
	return r.traces[el]
}

// Reset drops all traces.
func (r *Recorder) Reset() {
	r.traces = map[*dom.Element]*Trace{}
}

func (r *Recorder) trace(el *dom.Element) *Trace {
	tr, ok := r.traces[el]
	if !ok {
		tr = &Trace{}
		r.traces[el] = tr
	}
	return tr
}

// Snapshot is the page state handed to RenderSnapshot.
type Snapshot struct {
	Title    string
	Mode     string
	Elapsed  string
	Elements []*dom.Element
	State    func(*dom.Element) counter.State
	Recorder *Recorder
}

// RenderSnapshot prints a table with one row per counter element.
func RenderSnapshot(w io.Writer, s Snapshot) error {
	if s.Title != "" {
		if _, err := fmt.Fprintln(w, s.Title); err != nil {
			return err
		}
	}
	settled := 0
	rows := make([][]string, 0, len(s.Elements))
	for _, el := range s.Elements {
		var tr Trace
		if s.Recorder != nil {
			if got := s.Recorder.Trace(el); got != nil {
				tr = *got
			}
		}
		if tr.Settled {
			settled++
		}
		state := "-"
		if s.State != nil {
			state = s.State(el).String()
		}
		if tr.Settled && state == counter.Idle.String() {
			state = "settled"
		}
		text := el.Content()
		if text == "" {
			text = "-"
		}
		rows = append(rows, []string{
			el.ID,
			el.Label,
			text,
			strconv.Itoa(tr.Ticks),
			state,
			Sparkline(Downsample(tr.Values, SparkWidth)),
		})
	}
	header := fmt.Sprintf("Mode: %s  Counters: %d  Settled: %d", s.Mode, len(s.Elements), settled)
	if s.Elapsed != "" {
		header += "  Elapsed: " + s.Elapsed
	}
	if _, err := fmt.Fprintln(w, header); err != nil {
		return err
	}
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No counters found.")
		return err
	}
	lines := formatTable(
		[]string{"ID", "Label", "Value", "Ticks", "State", "Trend"},
		rows,
		map[int]bool{2: true, 3: true},
	)
	_, err := fmt.Fprintln(w, strings.Join(lines, "\n"))
	return err
}

// Downsample keeps at most n evenly spaced values, always including the last.
func Downsample(values []float64, n int) []float64 {
	if n <= 0 || len(values) <= n {
		return values
	}
	out := make([]float64, n)
	step := float64(len(values)-1) / float64(n-1)
	for i := 0; i < n; i++ {
		out[i] = values[int(math.Round(float64(i)*step))]
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderPages prints the stored page library.
func RenderPages(w io.Writer, pages []model.PageSummary) error {
	if len(pages) == 0 {
		_, err := fmt.Fprintln(w, "No pages found.")
		return err
	}
	rows := make([][]string, 0, len(pages))
	for _, p := range pages {
		rows = append(rows, []string{
			p.Name,
			p.Title,
			strconv.Itoa(p.Counters),
			p.ImportedAt.Local().Format("2006-01-02 15:04"),
		})
	}
	lines := formatTable([]string{"Name", "Title", "Counters", "Imported"}, rows, map[int]bool{2: true})
	_, err := fmt.Fprintln(w, strings.Join(lines, "\n"))
	return err
}
