package generator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPageIsDeterministicForSeed(t *testing.T) {
	a := New(42).Page(12)
	b := New(42).Page(12)
	require.Equal(t, a, b)
}

func TestPageCounts(t *testing.T) {
	p := New(7).Page(17)
	require.Equal(t, 17, p.CounterCount())
	require.NoError(t, p.Normalize())
	for _, s := range p.Sections {
		require.NotEmpty(t, s.Counters)
		require.LessOrEqual(t, len(s.Counters), 5)
		require.GreaterOrEqual(t, s.Gap, 0)
		for _, c := range s.Counters {
			require.Contains(t, c.Settings, "end")
			require.Contains(t, c.Settings, "duration")
			require.NotEmpty(t, c.Label)
		}
	}
}

func TestPageEmpty(t *testing.T) {
	p := New(1).Page(0)
	require.Empty(t, p.Sections)
	require.Equal(t, 0, p.CounterCount())
}
