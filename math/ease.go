// math/ease.go
// Copyright(c) 2022-2026 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

// EaseOutQuadratic maps elapsed time in [0,duration] to a value that goes
// from start to start+change, accelerating over the first half and
// decelerating over the second. Past duration the decelerating quadratic
// keeps going, so the value falls back and eventually drops below start;
// callers that want a plateau must clamp.
func EaseOutQuadratic(elapsed, start, change, duration float32) float32 {
	t := elapsed / (duration / 2)
	if t < 1 {
		return change/2*t*t + start
	}
	t--
	return -change/2*(t*(t-2)-1) + start
}
