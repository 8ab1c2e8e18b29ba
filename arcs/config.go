// arcs/config.go
// Copyright(c) 2022-2026 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package arcs

import (
	"github.com/mmp/flightarcs/math"
	"github.com/mmp/flightarcs/util"
)

// Config collects the constants that determine the geometry, timing, and
// coloring of the flight arcs. It is fixed for the lifetime of an
// Animator.
type Config struct {
	// SegmentsPerFlight is the number of line segments each flight's lit
	// window is divided into.
	SegmentsPerFlight int `json:"segments_per_flight"`
	// CurveSamples is the number of intervals the arc is sampled at
	// before it's wrapped in a Catmull-Rom curve.
	CurveSamples int `json:"curve_samples"`

	// ArcAngleDegrees is the sweep of the sine altitude profile over the
	// length of the flight: 180 gives a symmetric hump that lands at
	// ground level, while 270 (the default) peaks early and finishes
	// below the surface so the arc appears to descend into the globe.
	ArcAngleDegrees float32 `json:"arc_angle_degrees"`
	BaseRadius      float32 `json:"base_radius"`
	// The peak altitude of a flight is AltitudeBase + distance *
	// AltitudeScale, where distance is the central angle in radians, so
	// that long haul flights fly higher.
	AltitudeBase  float32 `json:"altitude_base"`
	AltitudeScale float32 `json:"altitude_scale"`

	// Curve positions are clamped to [ClampMin, ClampMax] when sampled.
	ClampMin float32 `json:"clamp_min"`
	ClampMax float32 `json:"clamp_max"`

	// JitterMaxMs bounds the random delay before a flight starts and
	// DurationScale gives milliseconds of flight per radian of distance.
	JitterMaxMs   int64   `json:"jitter_max_ms"`
	DurationScale float32 `json:"duration_scale"`

	// HueOffset is added to the origin longitude (in degrees) to pick
	// the flight's hue.
	HueOffset float32 `json:"hue_offset"`
}

func DefaultConfig() Config {
	return Config{
		SegmentsPerFlight: 256,
		CurveSamples:      256,
		ArcAngleDegrees:   270,
		BaseRadius:        1,
		AltitudeBase:      0.02,
		AltitudeScale:     0.1,
		ClampMin:          0,
		ClampMax:          1,
		JitterMaxMs:       1000,
		DurationScale:     2000,
		HueOffset:         100,
	}
}

// CurveParams returns the subset of the configuration that determines
// the flight path geometry.
func (c Config) CurveParams() CurveParams {
	return CurveParams{
		BaseRadius:      c.BaseRadius,
		AltitudeBase:    c.AltitudeBase,
		AltitudeScale:   c.AltitudeScale,
		ArcAngleDegrees: c.ArcAngleDegrees,
		Samples:         c.CurveSamples,
	}
}

// Validate logs all of the problems with the configuration to e.
func (c Config) Validate(e *util.ErrorLogger) {
	e.Push("config")
	defer e.Pop()

	if c.SegmentsPerFlight <= 0 {
		e.Error(ErrInvalidSegments)
	}
	if c.CurveSamples <= 0 {
		e.ErrorString("curve_samples must be positive (got %d)", c.CurveSamples)
	}
	if !math.IsFinite(c.BaseRadius) || c.BaseRadius <= 0 {
		e.ErrorString("base_radius must be positive (got %f)", c.BaseRadius)
	}
	for _, v := range []struct {
		name string
		v    float32
	}{
		{"arc_angle_degrees", c.ArcAngleDegrees},
		{"altitude_base", c.AltitudeBase},
		{"altitude_scale", c.AltitudeScale},
		{"hue_offset", c.HueOffset},
	} {
		if !math.IsFinite(v.v) {
			e.ErrorString("%s must be finite", v.name)
		}
	}
	if !math.IsFinite(c.ClampMin) || !math.IsFinite(c.ClampMax) ||
		c.ClampMin < 0 || c.ClampMax > 1 || c.ClampMin > c.ClampMax {
		e.ErrorString("clamp range [%f, %f] must be ordered and within [0, 1]", c.ClampMin, c.ClampMax)
	}
	if c.JitterMaxMs < 0 {
		e.ErrorString("jitter_max_ms must not be negative (got %d)", c.JitterMaxMs)
	}
	if !math.IsFinite(c.DurationScale) || c.DurationScale < 0 {
		e.ErrorString("duration_scale must not be negative (got %f)", c.DurationScale)
	}
}
