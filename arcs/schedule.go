// arcs/schedule.go
// Copyright(c) 2022-2026 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package arcs

import (
	"github.com/mmp/flightarcs/math"
	"github.com/mmp/flightarcs/rand"
)

// FlightTiming gives the wall-clock interval, in milliseconds, over which
// a flight's lit window travels from origin to destination.
type FlightTiming struct {
	StartMs int64
	EndMs   int64
}

func (ft FlightTiming) Duration() int64 {
	return ft.EndMs - ft.StartMs
}

func (ft FlightTiming) Elapsed(now int64) int64 {
	return now - ft.StartMs
}

// Active reports whether the flight has started as of now; before then it
// is dormant.
func (ft FlightTiming) Active(now int64) bool {
	return now >= ft.StartMs
}

// Progress returns the eased progress at now. It is not clamped: it rises
// from 0 to 1 over the flight's duration, then falls and goes negative.
// It is NaN for a zero-length timing.
func (ft FlightTiming) Progress(now int64) float32 {
	return math.EaseOutQuadratic(float32(ft.Elapsed(now)), 0, 1, float32(ft.Duration()))
}

// Reversed reports whether the flight's duration has passed, after which
// the lit window retreats toward the destination.
func (ft FlightTiming) Reversed(now int64) bool {
	return ft.Elapsed(now) > ft.Duration()
}

// Scheduler assigns randomized timings to flights so that they don't all
// animate in lockstep.
type Scheduler struct {
	// Flights start up to JitterMaxMs after they're scheduled.
	JitterMaxMs int64
	// Milliseconds of flight per radian of great-circle distance, before
	// a random factor in [0.8,1.8] is applied.
	DurationScale float32
	Rand          *rand.Rand
}

// AssignTiming returns a fresh timing for a flight covering the given
// central angle, starting no earlier than now. The duration is always at
// least one millisecond.
func (s *Scheduler) AssignTiming(distance float32, now int64) FlightTiming {
	start := now + int64(math.Floor(s.Rand.Float32()*float32(s.JitterMaxMs)))

	duration := math.Floor(distance*s.DurationScale) * (0.8 + s.Rand.Float32())
	d := max(int64(duration), 1)

	return FlightTiming{StartMs: start, EndMs: start + d}
}
