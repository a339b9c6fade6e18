// Package config holds run options and their persisted user preferences.
package config

import (
	"fmt"
	"strings"

	"blobscope/internal/analysis"
	"blobscope/internal/binimg"
	"blobscope/internal/labeling"
	"blobscope/pkg/colorutil"
)

// TracerBackend selects the contour extraction implementation. The OpenCV
// backend also reads images and writes label maps through OpenCV.
type TracerBackend string

const (
	TracerMoore  TracerBackend = "moore"
	TracerOpenCV TracerBackend = "opencv"
)

// ParseTracer validates a tracer backend name.
func ParseTracer(name string) (TracerBackend, error) {
	switch b := TracerBackend(strings.ToLower(strings.TrimSpace(name))); b {
	case TracerMoore, TracerOpenCV:
		return b, nil
	}
	return "", fmt.Errorf("unknown tracer backend %q", name)
}

// Options configures a labeling and analysis run.
type Options struct {
	Algorithm   labeling.Algorithm
	Tracer      TracerBackend
	Threshold   uint8 // luma below this is foreground when binarizing
	PaletteSize int
	PaletteSeed int64
	Criteria    analysis.Criteria
	LogLevel    string
	LastDir     string // last directory an image was opened from
}

// Default returns the default options.
func Default() Options {
	return Options{
		Algorithm:   labeling.AlgorithmTwoPass,
		Tracer:      TracerMoore,
		Threshold:   binimg.DefaultThreshold,
		PaletteSize: colorutil.DefaultPaletteSize,
		PaletteSeed: 1,
		Criteria: analysis.Criteria{
			AreaThreshold: 1000,
			PhiLow:        0,
			PhiHigh:       180,
		},
		LogLevel: "info",
	}
}

// Apply overrides o with any values stored in p. Invalid stored values are
// ignored.
func (o Options) Apply(p *Prefs) Options {
	rec := p.snapshot()
	if rec.Algorithm != "" {
		if a, err := labeling.ParseAlgorithm(rec.Algorithm); err == nil {
			o.Algorithm = a
		}
	}
	if rec.Tracer != "" {
		if t, err := ParseTracer(rec.Tracer); err == nil {
			o.Tracer = t
		}
	}
	if rec.Threshold != nil && *rec.Threshold >= 0 && *rec.Threshold <= 255 {
		o.Threshold = uint8(*rec.Threshold)
	}
	if rec.PaletteSeed != nil {
		o.PaletteSeed = *rec.PaletteSeed
	}
	if rec.AreaThreshold != nil {
		o.Criteria.AreaThreshold = *rec.AreaThreshold
	}
	if rec.PhiLow != nil {
		o.Criteria.PhiLow = *rec.PhiLow
	}
	if rec.PhiHigh != nil {
		o.Criteria.PhiHigh = *rec.PhiHigh
	}
	if rec.LogLevel != "" {
		o.LogLevel = rec.LogLevel
	}
	if rec.LastDir != "" {
		o.LastDir = rec.LastDir
	}
	return o
}

// Store writes o into p. Call p.Save to persist.
func (o Options) Store(p *Prefs) {
	threshold := int(o.Threshold)
	seed := o.PaletteSeed
	area := o.Criteria.AreaThreshold
	low, high := o.Criteria.PhiLow, o.Criteria.PhiHigh
	p.replace(stored{
		Algorithm:     o.Algorithm.String(),
		Tracer:        string(o.Tracer),
		Threshold:     &threshold,
		PaletteSeed:   &seed,
		AreaThreshold: &area,
		PhiLow:        &low,
		PhiHigh:       &high,
		LogLevel:      o.LogLevel,
		LastDir:       o.LastDir,
	})
}
