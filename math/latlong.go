// math/latlong.go
// Copyright(c) 2022-2026 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	"fmt"
	gomath "math"
	"regexp"
	"strconv"
)

///////////////////////////////////////////////////////////////////////////
// Point2LL

// Point2LL represents a 2D point on the Earth in latitude-longitude.
// Important: 0 (x) is longitude, 1 (y) is latitude
type Point2LL [2]float32

// MakeLL returns the Point2LL for the given latitude and longitude, which
// are given in that order since that's how flight endpoints are usually
// written.
func MakeLL(latitude, longitude float32) Point2LL {
	return Point2LL{longitude, latitude}
}

func (p Point2LL) Longitude() float32 {
	return p[0]
}

func (p Point2LL) Latitude() float32 {
	return p[1]
}

// DDString returns the position in decimal degrees, e.g.:
// (39.860901, -75.274864)
func (p Point2LL) DDString() string {
	return fmt.Sprintf("(%f, %f)", p[1], p[0]) // latitude, longitude
}

// NormalizedLongitude returns the point with its longitude wrapped to
// [-180,180).
func (p Point2LL) NormalizedLongitude() Point2LL {
	lon := Mod(p[0]+180, 360)
	if lon < 0 {
		lon += 360
	}
	return Point2LL{lon - 180, p[1]}
}

var (
	// pair of floats (no exponents)
	reLatLongFloat = regexp.MustCompile(`^(\-?[0-9]+(?:\.[0-9]+)?), *(\-?[0-9]+(?:\.[0-9]+)?)$`)
)

// ParseLatLong parses endpoints given either as decimal degrees
// "40.6328888, -73.771385" (latitude first) or in dotted degrees, minutes,
// seconds form, e.g. "N40.37.58.400, W073.46.17.000".
func ParseLatLong(llstr []byte) (Point2LL, error) {
	if p, ok := tryParseDotted(llstr); ok {
		return p, nil
	} else if strs := reLatLongFloat.FindStringSubmatch(string(llstr)); len(strs) == 3 {
		lat, err := strconv.ParseFloat(strs[1], 32)
		if err != nil {
			return Point2LL{}, err
		}
		lon, err := strconv.ParseFloat(strs[2], 32)
		if err != nil {
			return Point2LL{}, err
		}
		return MakeLL(float32(lat), float32(lon)), nil
	} else {
		return Point2LL{}, fmt.Errorf("%s: invalid latlong string", llstr)
	}
}

func tryParseDotted(b []byte) (Point2LL, bool) {
	hemisphere := func(b []byte, pos, neg byte) (float32, int, bool) {
		if len(b) == 0 || (b[0] != pos && b[0] != neg) {
			return 0, 0, false
		}
		v, n, ok := tryParseDottedNumbers(b[1:])
		if !ok {
			return 0, 0, false
		}
		if b[0] == neg {
			v = -v
		}
		return v, n + 1, true
	}

	latitude, n, ok := hemisphere(b, 'N', 'S')
	if !ok {
		return Point2LL{}, false
	}
	b = b[n:]

	if len(b) == 0 || b[0] != ',' {
		return Point2LL{}, false
	}
	b = b[1:]
	if len(b) > 0 && b[0] == ' ' {
		b = b[1:]
	}

	longitude, n, ok := hemisphere(b, 'E', 'W')
	if !ok || n != len(b) {
		return Point2LL{}, false
	}

	return MakeLL(latitude, longitude), true
}

// tryParseDottedNumbers parses ddd.mm.ss.fff, returning the value in
// degrees and the number of bytes consumed.
func tryParseDottedNumbers(b []byte) (float32, int, bool) {
	scales := [4]float64{1, 60, 3600, 3600000}
	var ll float64
	n := 0

	for i := range 4 {
		end := 0
		for end < len(b) && b[end] != '.' && b[end] != ',' {
			end++
		}
		if end == 0 {
			return 0, 0, false
		}

		value := 0
		for _, ch := range b[:end] {
			if ch < '0' || ch > '9' {
				return 0, 0, false
			}
			value = 10*value + int(ch-'0')
		}
		if i == 3 {
			// Treat the last set of digits as a decimal, so that
			// Nxx.yy.zz.1 is handled like Nxx.yy.zz.100.
			for j := end; j < 3; j++ {
				value *= 10
			}
		}

		ll += float64(value) / scales[i]
		n += end
		b = b[end:]

		if i < 3 {
			if len(b) == 0 || b[0] != '.' {
				return 0, 0, false
			}
			b = b[1:]
			n++
		}
	}

	return float32(ll), n, true
}

///////////////////////////////////////////////////////////////////////////
// Globe coordinates

// LL2XYZ converts a lat-long point to Cartesian coordinates on a sphere
// of the given radius centered at the origin. +y is the north pole and
// the prime meridian lies along +x.
func LL2XYZ(p Point2LL, radius float32) [3]float32 {
	phi := Radians(90 - p.Latitude())
	theta := Radians(360 - p.Longitude())
	return [3]float32{
		radius * Sin(phi) * Cos(theta),
		radius * Cos(phi),
		radius * Sin(phi) * Sin(theta),
	}
}

// XYZ2LL is the inverse of LL2XYZ; the radius of v is discarded. The
// returned longitude is in [-180,180).
func XYZ2LL(v [3]float32) Point2LL {
	r := Length3f(v)
	if r == 0 {
		return Point2LL{}
	}
	lat := 90 - Degrees(SafeACos(v[1]/r))
	lon := 360 - Degrees(Atan2(v[2], v[0]))
	return Point2LL{lon, lat}.NormalizedLongitude()
}

// centralAngle returns the haversine central angle between a and b in
// radians.
func centralAngle(a, b Point2LL) float64 {
	rad := func(d float32) float64 { return float64(d) / 180 * gomath.Pi }
	lat1, lon1 := rad(a[1]), rad(a[0])
	lat2, lon2 := rad(b[1]), rad(b[0])
	dlat, dlon := lat2-lat1, lon2-lon1

	x := Sqr(gomath.Sin(dlat/2)) + gomath.Cos(lat1)*gomath.Cos(lat2)*Sqr(gomath.Sin(dlon/2))
	x = Clamp(x, 0, 1)
	return 2 * gomath.Atan2(gomath.Sqrt(x), gomath.Sqrt(1-x))
}

// GreatCircleDistance returns the great-circle distance between a and b
// as a central angle in radians (not a length); multiply by a sphere
// radius to get one.
func GreatCircleDistance(a, b Point2LL) float32 {
	return float32(centralAngle(a, b))
}

// GreatCircleTween returns the point t of the way along the great circle
// from a to b. When the great circle is undefined (coincident or antipodal
// points), a is returned.
func GreatCircleTween(a, b Point2LL, t float32) Point2LL {
	d := centralAngle(a, b)
	sd := gomath.Sin(d)
	if gomath.Abs(sd) < 1e-7 {
		return a
	}

	rad := func(d float32) float64 { return float64(d) / 180 * gomath.Pi }
	lat1, lon1 := rad(a[1]), rad(a[0])
	lat2, lon2 := rad(b[1]), rad(b[0])

	wa := gomath.Sin((1-float64(t))*d) / sd
	wb := gomath.Sin(float64(t)*d) / sd

	x := wa*gomath.Cos(lat1)*gomath.Cos(lon1) + wb*gomath.Cos(lat2)*gomath.Cos(lon2)
	y := wa*gomath.Cos(lat1)*gomath.Sin(lon1) + wb*gomath.Cos(lat2)*gomath.Sin(lon2)
	z := wa*gomath.Sin(lat1) + wb*gomath.Sin(lat2)

	lat := gomath.Atan2(z, gomath.Sqrt(x*x+y*y)) * 180 / gomath.Pi
	lon := gomath.Atan2(y, x) * 180 / gomath.Pi
	return Point2LL{float32(lon), float32(lat)}
}
