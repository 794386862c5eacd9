// Package counter resolves per-element counter configuration, formats
// counter values, and runs the stepping engine.
package counter

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Kind identifies how a raw attribute value was coerced.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
)

// Value is a coerced attribute value.
type Value struct {
	Kind  Kind
	Int   int64
	Float float64
	Str   string
}

var (
	floatPattern = regexp.MustCompile(`^[0-9]+\.[0-9]+$`)
	intPattern   = regexp.MustCompile(`^[0-9]+$`)
)

// CastDataType coerces digits.digits to a float, digits to an integer,
// and leaves everything else as the original string.
func CastDataType(raw string) Value {
	if floatPattern.MatchString(raw) {
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return Value{Kind: KindFloat, Float: f, Str: raw}
		}
	}
	if intPattern.MatchString(raw) {
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return Value{Kind: KindInt, Int: n, Str: raw}
		}
		// Too large for int64: keep the magnitude as a float.
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return Value{Kind: KindFloat, Float: f, Str: raw}
		}
	}
	return Value{Kind: KindString, Str: raw}
}

// Number returns the numeric reading of v. Strings are read the way a
// numeric coercion would read them, so "-5" or " 2e3 " still count.
func (v Value) Number() (float64, bool) {
	switch v.Kind {
	case KindInt:
		return float64(v.Int), true
	case KindFloat:
		return v.Float, true
	}
	s := strings.TrimSpace(v.Str)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Bool returns the boolean reading of v. Numbers are true when non-zero;
// strings must spell a boolean literal.
func (v Value) Bool() (bool, bool) {
	switch v.Kind {
	case KindInt:
		return v.Int != 0, true
	case KindFloat:
		return v.Float != 0, true
	}
	b, err := strconv.ParseBool(strings.ToLower(strings.TrimSpace(v.Str)))
	if err != nil {
		return false, false
	}
	return b, true
}
