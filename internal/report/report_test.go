package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/tickup/internal/counter"
	"github.com/verte-zerg/tickup/internal/dom"
	"github.com/verte-zerg/tickup/internal/model"
	"github.com/verte-zerg/tickup/internal/scheduler"
	"github.com/verte-zerg/tickup/internal/visibility"
)

func TestFormatTableAlignsColumns(t *testing.T) {
	lines := formatTable(
		[]string{"ID", "Value"},
		[][]string{
			{"users", "1,500"},
			{"x", "7"},
			{"日本", "12"},
		},
		map[int]bool{1: true},
	)
	require.Equal(t, []string{
		"ID     Value",
		"users  1,500",
		"x          7",
		"日本      12",
	}, lines)
}

func TestSparkline(t *testing.T) {
	require.Equal(t, "", Sparkline(nil))
	require.Equal(t, "+++", Sparkline([]float64{4, 4, 4}))
	require.Equal(t, " @", Sparkline([]float64{0, 10}))
	require.Equal(t, "@ ", Sparkline([]float64{10, 0}))
}

func TestDownsampleKeepsEnds(t *testing.T) {
	values := make([]float64, 101)
	for i := range values {
		values[i] = float64(i)
	}
	out := Downsample(values, 5)
	require.Equal(t, []float64{0, 25, 50, 75, 100}, out)
	require.Len(t, Downsample(values[:3], 5), 3)
}

func TestRenderSnapshotAfterRun(t *testing.T) {
	log := logrus.New()
	log.SetOutput(bytes.NewBuffer(nil))

	sched := scheduler.NewManual()
	rec := NewRecorder(counter.Hooks{})
	engine := counter.NewEngine(sched, counter.WithLogger(log), counter.WithHooks(rec.Hooks()))

	users := dom.NewElement("users", []string{counter.DefaultMarker}, map[string]string{
		"data-purecounter-end":      "100",
		"data-purecounter-duration": "1",
		"data-purecounter-delay":    "100",
	})
	users.Label = "Users"
	idle := dom.NewElement("later", []string{counter.DefaultMarker}, nil)
	idle.Label = "Later"

	engine.Trigger(visibility.Entry{Element: users, Ratio: 1, Visible: true})
	sched.RunUntilIdle(time.Minute)

	tr := rec.Trace(users)
	require.NotNil(t, tr)
	require.True(t, tr.Settled)
	require.Equal(t, 10, tr.Ticks)
	require.Len(t, tr.Values, 11)
	require.Equal(t, "100", tr.Text)
	require.Nil(t, rec.Trace(idle))

	var out bytes.Buffer
	err := RenderSnapshot(&out, Snapshot{
		Title:    "Demo",
		Mode:     "legacy",
		Elements: []*dom.Element{users, idle},
		State:    engine.State,
		Recorder: rec,
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 5)
	require.Equal(t, "Demo", lines[0])
	require.Equal(t, "Mode: legacy  Counters: 2  Settled: 1", lines[1])
	require.True(t, strings.HasPrefix(lines[2], "ID"))
	require.Contains(t, lines[3], "users")
	require.Contains(t, lines[3], "settled")
	require.True(t, strings.HasSuffix(lines[3], Sparkline(tr.Values)))
	require.Contains(t, lines[4], "idle")

	rec.Reset()
	require.Nil(t, rec.Trace(users))
}

func TestRenderSnapshotEmpty(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, RenderSnapshot(&out, Snapshot{Mode: "intersection"}))
	require.Equal(t, "Mode: intersection  Counters: 0  Settled: 0\nNo counters found.\n", out.String())
}

func TestRenderPages(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, RenderPages(&out, nil))
	require.Equal(t, "No pages found.\n", out.String())

	out.Reset()
	imported := time.Date(2026, 3, 1, 12, 30, 0, 0, time.Local)
	require.NoError(t, RenderPages(&out, []model.PageSummary{
		{Name: "launch", Title: "Launch day", Counters: 12, ImportedAt: imported},
		{Name: "q1", Title: "Quarter", Counters: 3, ImportedAt: imported},
	}))
	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Equal(t, []string{
		"Name    Title       Counters  Imported",
		"launch  Launch day        12  2026-03-01 12:30",
		"q1      Quarter            3  2026-03-01 12:30",
	}, lines)
}
