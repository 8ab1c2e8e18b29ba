// arcs/buffer.go
// Copyright(c) 2022-2026 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package arcs

import (
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/mmp/flightarcs/math"
)

// SegmentBuffer holds the vertex positions and colors of every flight's
// line segments, laid out for drawing as independent lines (a la
// GL_LINES): for flight f and segment s, endpoint e (0 or 1) and axis a
// are at index ((f*segments+s)*2+e)*3+a. Its size is fixed when it is
// created.
//
// The renderer may read Positions and Colors between calls to Tick but
// must not modify them.
type SegmentBuffer struct {
	Positions []float32
	Colors    []float32

	// Version is incremented each time Positions changes.
	Version uint64
	// Dirty is set when Positions changes; the renderer clears it via
	// ClearDirty once it has uploaded the new positions.
	Dirty bool

	flights  int
	segments int
}

func MakeSegmentBuffer(flights, segments int) *SegmentBuffer {
	n := flights * segments * 2 * 3
	return &SegmentBuffer{
		Positions: make([]float32, n),
		Colors:    make([]float32, n),
		flights:   flights,
		segments:  segments,
	}
}

func (sb *SegmentBuffer) NumFlights() int {
	return sb.flights
}

func (sb *SegmentBuffer) SegmentsPerFlight() int {
	return sb.segments
}

// Index returns the offset of the x coordinate (or red component) of the
// given segment endpoint.
func (sb *SegmentBuffer) Index(flight, segment, endpoint int) int {
	return ((flight*sb.segments+segment)*2 + endpoint) * 3
}

// FlightPositions returns the slice of Positions that holds the given
// flight's segments.
func (sb *SegmentBuffer) FlightPositions(flight int) []float32 {
	n := sb.segments * 6
	return sb.Positions[flight*n : (flight+1)*n]
}

func (sb *SegmentBuffer) FlightColors(flight int) []float32 {
	n := sb.segments * 6
	return sb.Colors[flight*n : (flight+1)*n]
}

func (sb *SegmentBuffer) Position(flight, segment, endpoint int) [3]float32 {
	i := sb.Index(flight, segment, endpoint)
	return [3]float32{sb.Positions[i], sb.Positions[i+1], sb.Positions[i+2]}
}

func (sb *SegmentBuffer) Color(flight, segment, endpoint int) [3]float32 {
	i := sb.Index(flight, segment, endpoint)
	return [3]float32{sb.Colors[i], sb.Colors[i+1], sb.Colors[i+2]}
}

// SetSegment stores both endpoints of a segment.
func (sb *SegmentBuffer) SetSegment(flight, segment int, p0, p1 [3]float32) {
	i := sb.Index(flight, segment, 0)
	copy(sb.Positions[i:i+3], p0[:])
	copy(sb.Positions[i+3:i+6], p1[:])
}

func (sb *SegmentBuffer) MarkDirty() {
	sb.Version++
	sb.Dirty = true
}

func (sb *SegmentBuffer) ClearDirty() {
	sb.Dirty = false
}

// SegmentColor returns the color of a segment endpoint: the hue comes
// from the flight's origin longitude and the lightness ramps from 0.3 at
// the start of the window to 0.5 at its end. normal is the endpoint's
// position along the window in [0,1].
func SegmentColor(originLongitude, hueOffset, normal float32) [3]float32 {
	hue := math.Mod(originLongitude+hueOffset, 360)
	if hue < 0 {
		hue += 360
	}
	c := colorful.Hsl(float64(hue), 1, float64(0.3+normal*0.2))
	return [3]float32{float32(c.R), float32(c.G), float32(c.B)}
}

// fillColors sets the colors of all of the segments of the given flight.
func (sb *SegmentBuffer) fillColors(flight int, originLongitude, hueOffset float32) {
	for s := range sb.segments {
		begin, end := segmentNormals(s, sb.segments)
		i := sb.Index(flight, s, 0)
		c0 := SegmentColor(originLongitude, hueOffset, begin)
		c1 := SegmentColor(originLongitude, hueOffset, end)
		copy(sb.Colors[i:i+3], c0[:])
		copy(sb.Colors[i+3:i+6], c1[:])
	}
}

// segmentNormals returns the positions of segment s's endpoints along the
// lit window, s/(n-1) and (s+1)/(n-1). A single-segment window has no
// extent and both are 0.
func segmentNormals(s, n int) (float32, float32) {
	if n == 1 {
		return 0, 0
	}
	return float32(s) / float32(n-1), float32(s+1) / float32(n-1)
}
