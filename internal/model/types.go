// Package model defines shared data structures.
package model

import "time"

// Config defines counter page run settings.
type Config struct {
	Namespace   string
	Marker      string
	RootMargin  float64
	Threshold   float64
	ForceLegacy bool
	Locale      string
}

// RenderConfig defines a headless render.
type RenderConfig struct {
	Width   int
	Height  int
	Scrolls []int
	Elapsed time.Duration
}

// PageSummary describes a stored page.
type PageSummary struct {
	Name       string
	Title      string
	Counters   int
	ImportedAt time.Time
}
