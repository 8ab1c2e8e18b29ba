// arcs/curve.go
// Copyright(c) 2022-2026 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package arcs

import (
	"github.com/mmp/flightarcs/math"
)

// CurveParams specifies how a flight's endpoints are turned into a 3D
// path.
type CurveParams struct {
	BaseRadius      float32
	AltitudeBase    float32
	AltitudeScale   float32
	ArcAngleDegrees float32
	Samples         int
}

// ArcRadius returns the distance from the globe center of the point at
// sample p of a flight whose peak altitude is altitudeMax.
func (cp CurveParams) ArcRadius(p int, altitudeMax float32) float32 {
	arcAngle := float32(p) * cp.ArcAngleDegrees / float32(cp.Samples)
	return cp.BaseRadius + math.Sin(math.Radians(arcAngle))*altitudeMax
}

// AltitudeMax returns the amplitude of the altitude profile for a flight
// covering the given central angle.
func (cp CurveParams) AltitudeMax(distance float32) float32 {
	return cp.AltitudeBase + distance*cp.AltitudeScale
}

// ArcCurve is a flight's path: samples along the great circle between the
// endpoints, lifted by a sine altitude profile, that can be evaluated at
// any t in [0,1] via centripetal Catmull-Rom interpolation.
type ArcCurve struct {
	points [][3]float32
}

// BuildArcCurve samples the flight's path at cp.Samples+1 points.
func BuildArcCurve(f Flight, cp CurveParams) *ArcCurve {
	altitudeMax := cp.AltitudeMax(f.Distance())

	points := make([][3]float32, cp.Samples+1)
	for p := range points {
		t := float32(p) / float32(cp.Samples)
		ll := math.GreatCircleTween(f.Origin, f.Destination, t)
		points[p] = math.LL2XYZ(ll, cp.ArcRadius(p, altitudeMax))
	}

	return &ArcCurve{points: points}
}

// MakeArcCurve returns a curve through the given points, of which there
// must be at least one.
func MakeArcCurve(points [][3]float32) *ArcCurve {
	return &ArcCurve{points: points}
}

func (c *ArcCurve) Len() int {
	return len(c.points)
}

// Points returns the curve's samples; the caller must not modify them.
func (c *ArcCurve) Points() [][3]float32 {
	return c.points
}

func (c *ArcCurve) Origin() [3]float32 {
	return c.points[0]
}

func (c *ArcCurve) Destination() [3]float32 {
	return c.points[len(c.points)-1]
}

// PointAt returns the point on the curve at t, where t is clamped to
// [0,1]. t is uniform in sample index, not arc length; PointAt(0) and
// PointAt(1) are exactly the first and last samples.
func (c *ArcCurve) PointAt(t float32) [3]float32 {
	n := len(c.points)
	if n == 1 {
		return c.points[0]
	}

	t = math.Clamp(t, 0, 1)
	if math.IsNaN(t) {
		t = 0
	}
	p := float32(n-1) * t
	i := int(p)
	weight := p - float32(i)
	if i >= n-1 {
		i, weight = n-2, 1
	}

	// The end samples are duplicated to provide the missing neighbors.
	p0 := c.points[max(i-1, 0)]
	p1 := c.points[i]
	p2 := c.points[i+1]
	p3 := c.points[min(i+2, n-1)]

	return centripetalCatmullRom(p0, p1, p2, p3, weight)
}

// centripetalCatmullRom evaluates the centripetal (alpha=0.5) Catmull-Rom
// segment between p1 and p2 at u in [0,1].
func centripetalCatmullRom(p0, p1, p2, p3 [3]float32, u float32) [3]float32 {
	if u == 0 {
		return p1
	} else if u == 1 {
		return p2
	}

	// Knot intervals are distance^alpha, i.e. the fourth root of the
	// squared distance. Zero-length intervals (duplicated endpoints or
	// coincident samples) would divide by zero, so substitute a
	// neighboring interval.
	dt0 := math.Pow(math.DistanceSquared3f(p0, p1), 0.25)
	dt1 := math.Pow(math.DistanceSquared3f(p1, p2), 0.25)
	dt2 := math.Pow(math.DistanceSquared3f(p2, p3), 0.25)
	if dt1 < 1e-4 {
		dt1 = 1
	}
	if dt0 < 1e-4 {
		dt0 = dt1
	}
	if dt2 < 1e-4 {
		dt2 = dt1
	}

	var r [3]float32
	for axis := range 3 {
		x0, x1, x2, x3 := p0[axis], p1[axis], p2[axis], p3[axis]

		// Tangents at p1 and p2 for the non-uniform parameterization,
		// rescaled to the [0,1] interval between them.
		t1 := (x1-x0)/dt0 - (x2-x0)/(dt0+dt1) + (x2-x1)/dt1
		t2 := (x2-x1)/dt1 - (x3-x1)/(dt1+dt2) + (x3-x2)/dt2
		t1 *= dt1
		t2 *= dt1

		// Cubic Hermite basis.
		c0 := x1
		c1 := t1
		c2 := -3*x1 + 3*x2 - 2*t1 - t2
		c3 := 2*x1 - 2*x2 + t1 + t2
		r[axis] = c0 + u*(c1+u*(c2+u*c3))
	}
	return r
}
