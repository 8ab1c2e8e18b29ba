// math/vec3.go
// Copyright(c) 2022-2026 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

///////////////////////////////////////////////////////////////////////////
// point 3f

// Various useful functions for arithmetic with 3D points/vectors.
// Names are brief in order to avoid clutter when they're used.

// a+b
func Add3f(a, b [3]float32) [3]float32 {
	return [3]float32{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}

// a-b
func Sub3f(a, b [3]float32) [3]float32 {
	return [3]float32{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

// a*s
func Scale3f(a [3]float32, s float32) [3]float32 {
	return [3]float32{s * a[0], s * a[1], s * a[2]}
}

func Dot3f(a, b [3]float32) float32 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

// Linearly interpolate x of the way between a and b. x==0 corresponds to
// a, x==1 corresponds to b, etc.
func Lerp3f(x float32, a, b [3]float32) [3]float32 {
	return [3]float32{(1-x)*a[0] + x*b[0], (1-x)*a[1] + x*b[1], (1-x)*a[2] + x*b[2]}
}

// Length of v
func Length3f(v [3]float32) float32 {
	return Sqrt(Dot3f(v, v))
}

// Distance between two points
func Distance3f(a, b [3]float32) float32 {
	return Length3f(Sub3f(a, b))
}

// DistanceSquared3f avoids the square root when only relative distances
// matter.
func DistanceSquared3f(a, b [3]float32) float32 {
	d := Sub3f(a, b)
	return Dot3f(d, d)
}

// Normalizes the given vector.
func Normalize3f(a [3]float32) [3]float32 {
	l := Length3f(a)
	if l == 0 {
		return [3]float32{0, 0, 0}
	}
	return Scale3f(a, 1/l)
}
