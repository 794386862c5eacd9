package counter

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestCastDataType(t *testing.T) {
	v := CastDataType("42")
	require.Equal(t, KindInt, v.Kind)
	require.Equal(t, int64(42), v.Int)

	v = CastDataType("3.5")
	require.Equal(t, KindFloat, v.Kind)
	require.Equal(t, 3.5, v.Float)

	v = CastDataType("abc")
	require.Equal(t, KindString, v.Kind)
	require.Equal(t, "abc", v.Str)

	// Neither pattern admits signs or bare dots.
	for _, raw := range []string{"-5", "1.", ".5", "true", ""} {
		require.Equal(t, KindString, CastDataType(raw).Kind, raw)
	}
}

func TestValueCoercions(t *testing.T) {
	n, ok := CastDataType("-5").Number()
	require.True(t, ok)
	require.Equal(t, -5.0, n)

	_, ok = CastDataType("abc").Number()
	require.False(t, ok)

	b, ok := CastDataType("false").Bool()
	require.True(t, ok)
	require.False(t, b)

	b, ok = CastDataType("TRUE").Bool()
	require.True(t, ok)
	require.True(t, b)

	b, ok = CastDataType("0").Bool()
	require.True(t, ok)
	require.False(t, b)

	_, ok = CastDataType("yes please").Bool()
	require.False(t, ok)
}

func TestResolveDefaults(t *testing.T) {
	r := NewResolver(WithResolverLogger(quietLogger()))
	cfg := r.Resolve(map[string]string{"class": "purecounter"})
	require.Equal(t, DefaultConfig(), cfg)
	require.Equal(t, 9001.0, cfg.End)
	require.Equal(t, 2000, cfg.Duration)
	require.Equal(t, 10, cfg.Delay)
	require.True(t, cfg.Once)
	require.True(t, cfg.Legacy)
	require.Equal(t, ",", cfg.SeparatorSymbol)
	require.Empty(t, cfg.CurrencySymbol)
}

func TestResolveOverrides(t *testing.T) {
	r := NewResolver(WithResolverLogger(quietLogger()))
	cfg := r.Resolve(map[string]string{
		"DATA-PURECOUNTER-End":             "100",
		"data-purecounter-start":           "-5",
		"data-purecounter-duration":        "1.5",
		"data-purecounter-delay":           "50",
		"data-purecounter-once":            "false",
		"data-purecounter-decimals":        "2",
		"data-purecounter-legacy":          "false",
		"data-purecounter-currency":        "true",
		"data-purecounter-currencysymbol":  "$",
		"data-purecounter-separator":       "1",
		"data-purecounter-separatorsymbol": " ",
		"data-other-end":                   "7",
	})
	require.Equal(t, Config{
		Start:           -5,
		End:             100,
		Duration:        1500,
		Delay:           50,
		Once:            false,
		Decimals:        2,
		Legacy:          false,
		Currency:        true,
		CurrencySymbol:  "$",
		Separator:       true,
		SeparatorSymbol: " ",
	}, cfg)
}

func TestResolveDurationIsSeconds(t *testing.T) {
	r := NewResolver(WithResolverLogger(quietLogger()))
	require.Equal(t, 2000, r.Resolve(map[string]string{"data-purecounter-duration": "2"}).Duration)
	require.Equal(t, 0, r.Resolve(map[string]string{"data-purecounter-duration": "0"}).Duration)
	require.Equal(t, 250, r.Resolve(map[string]string{"data-purecounter-duration": "0.25"}).Duration)
	// Negative durations mean "display immediately".
	require.Equal(t, 0, r.Resolve(map[string]string{"data-purecounter-duration": "-1"}).Duration)
}

func TestResolveFallsBackOnUnreadableValues(t *testing.T) {
	r := NewResolver(WithResolverLogger(quietLogger()))
	cfg := r.Resolve(map[string]string{
		"data-purecounter-end":      "lots",
		"data-purecounter-duration": "soon",
		"data-purecounter-once":     "maybe",
		"data-purecounter-bogus":    "1",
	})
	require.Equal(t, DefaultConfig(), cfg)
}

func TestResolveClampsDelayAndDecimals(t *testing.T) {
	r := NewResolver(WithResolverLogger(quietLogger()))
	cfg := r.Resolve(map[string]string{
		"data-purecounter-delay":    "0",
		"data-purecounter-decimals": "-3",
	})
	require.Equal(t, MinDelay, cfg.Delay)
	require.Equal(t, 0, cfg.Decimals)

	cfg = r.Resolve(map[string]string{"data-purecounter-decimals": "2.9"})
	require.Equal(t, 2, cfg.Decimals)
}

func TestResolveCurrencySymbolFalse(t *testing.T) {
	r := NewResolver(WithResolverLogger(quietLogger()))
	cfg := r.Resolve(map[string]string{"data-purecounter-currencysymbol": "false"})
	require.Empty(t, cfg.CurrencySymbol)
}

func TestResolveCustomNamespace(t *testing.T) {
	r := NewResolver(WithNamespace("data-count-"), WithResolverLogger(quietLogger()))
	cfg := r.Resolve(map[string]string{
		"data-count-end":       "5",
		"data-purecounter-end": "9",
	})
	require.Equal(t, 5.0, cfg.End)
	require.Equal(t, "data-count-", r.Namespace())
}
