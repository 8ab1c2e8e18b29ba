// arcs/flight.go
// Copyright(c) 2022-2026 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package arcs

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/mmp/flightarcs/math"
	"github.com/mmp/flightarcs/rand"
	"github.com/mmp/flightarcs/util"
)

// Flight is a single origin-destination pair.
type Flight struct {
	Origin      math.Point2LL
	Destination math.Point2LL
}

func MakeFlight(originLat, originLong, destLat, destLong float32) Flight {
	return Flight{
		Origin:      math.MakeLL(originLat, originLong),
		Destination: math.MakeLL(destLat, destLong),
	}
}

// Distance returns the great-circle distance between the flight's
// endpoints as a central angle in radians.
func (f Flight) Distance() float32 {
	return math.GreatCircleDistance(f.Origin, f.Destination)
}

func (f Flight) String() string {
	return f.Origin.DDString() + "-" + f.Destination.DDString()
}

func (f Flight) Validate(e *util.ErrorLogger) {
	check := func(what string, p math.Point2LL) {
		if !math.IsFinite(p.Latitude()) || !math.IsFinite(p.Longitude()) {
			e.ErrorString("%s %s: non-finite coordinate", what, p.DDString())
		} else if p.Latitude() < -90 || p.Latitude() > 90 {
			e.ErrorString("%s latitude %f outside [-90, 90]", what, p.Latitude())
		} else if p.Longitude() < -180 || p.Longitude() >= 360 {
			e.ErrorString("%s longitude %f outside [-180, 360)", what, p.Longitude())
		}
	}
	check("origin", f.Origin)
	check("destination", f.Destination)
}

// ValidateFlights logs every invalid flight in flights to e.
func ValidateFlights(flights []Flight, e *util.ErrorLogger) {
	e.Push("flights")
	defer e.Pop()

	if len(flights) == 0 {
		e.Error(ErrNoFlights)
	}
	for i, f := range flights {
		e.Push("flight " + strconv.Itoa(i))
		f.Validate(e)
		e.Pop()
	}
}

// FlightsFromLines converts rows of {originLat, originLong, destLat,
// destLong} to flights.
func FlightsFromLines(lines [][]float32) ([]Flight, error) {
	flights := make([]Flight, 0, len(lines))
	for i, l := range lines {
		if len(l) != 4 {
			return nil, fmt.Errorf("line %d: %w: expected 4 values, got %d", i, ErrInvalidFlight, len(l))
		}
		flights = append(flights, MakeFlight(l[0], l[1], l[2], l[3]))
	}
	return flights, nil
}

// UnmarshalJSON accepts either an array of four numbers (origin latitude,
// origin longitude, destination latitude, destination longitude) or an
// object with "origin" and "destination" strings in any format
// math.ParseLatLong understands.
func (f *Flight) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '[' {
		var l []float32
		if err := json.Unmarshal(b, &l); err != nil {
			return err
		}
		if len(l) != 4 {
			return fmt.Errorf("%w: expected 4 values, got %d", ErrInvalidFlight, len(l))
		}
		*f = MakeFlight(l[0], l[1], l[2], l[3])
		return nil
	}

	var s struct {
		Origin      string `json:"origin"`
		Destination string `json:"destination"`
	}
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	o, err := math.ParseLatLong([]byte(s.Origin))
	if err != nil {
		return fmt.Errorf("%w: origin: %v", ErrInvalidFlight, err)
	}
	d, err := math.ParseLatLong([]byte(s.Destination))
	if err != nil {
		return fmt.Errorf("%w: destination: %v", ErrInvalidFlight, err)
	}
	*f = Flight{Origin: o, Destination: d}
	return nil
}

// LoadFlights reads a JSON array of flights.
func LoadFlights(r io.Reader) ([]Flight, error) {
	var flights []Flight
	if err := util.UnmarshalJSON(r, &flights); err != nil {
		return nil, err
	}
	return flights, nil
}

// RandomFlights returns n flights with uniformly distributed endpoints,
// avoiding the polar caps.
func RandomFlights(r *rand.Rand, n int) []Flight {
	flights := make([]Flight, n)
	ll := func() (float32, float32) {
		return -70 + 140*r.Float32(), -180 + 360*r.Float32()
	}
	for i := range flights {
		olat, olong := ll()
		dlat, dlong := ll()
		flights[i] = MakeFlight(olat, olong, dlat, dlong)
	}
	return flights
}
