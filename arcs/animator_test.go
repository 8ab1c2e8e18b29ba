// arcs/animator_test.go
// Copyright(c) 2022-2026 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package arcs

import (
	"bytes"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/mmp/flightarcs/log"
	"github.com/mmp/flightarcs/math"
	"github.com/mmp/flightarcs/rand"
)

// makeTestAnimator returns an animator with a seeded generator whose clock
// reads the returned variable.
func makeTestAnimator(t *testing.T, flights []Flight, cfg Config, seed int64) (*Animator, *int64) {
	t.Helper()

	now := new(int64)
	*now = 1000
	a, err := NewAnimator(flights, cfg, Options{
		Rand:  rand.MakeSeeded(seed),
		Clock: func() int64 { return *now },
	})
	if err != nil {
		t.Fatalf("NewAnimator: %v", err)
	}
	return a, now
}

func checkSegment(t *testing.T, what string, a *Animator, f, s int, tb, te float32) {
	t.Helper()

	c := a.Curve(f)
	if p, exp := a.Buffer().Position(f, s, 0), c.PointAt(tb); !close3(p, exp, 1e-6) {
		t.Errorf("%s: segment %d begins at %v, expected PointAt(%f) = %v", what, s, p, tb, exp)
	}
	if p, exp := a.Buffer().Position(f, s, 1), c.PointAt(te); !close3(p, exp, 1e-6) {
		t.Errorf("%s: segment %d ends at %v, expected PointAt(%f) = %v", what, s, p, te, exp)
	}
}

func TestNewAnimatorErrors(t *testing.T) {
	good := []Flight{MakeFlight(0, 0, 0, 90)}

	type test struct {
		name    string
		flights []Flight
		cfg     func(*Config)
		err     error
	}
	for _, tc := range []test{
		{name: "no flights", flights: nil, err: ErrNoFlights},
		{name: "zero segments", flights: good, cfg: func(c *Config) { c.SegmentsPerFlight = 0 }, err: ErrInvalidSegments},
		{name: "negative segments", flights: good, cfg: func(c *Config) { c.SegmentsPerFlight = -3 }, err: ErrInvalidSegments},
		{name: "no samples", flights: good, cfg: func(c *Config) { c.CurveSamples = 0 }, err: ErrInvalidConfig},
		{name: "clamp order", flights: good, cfg: func(c *Config) { c.ClampMin, c.ClampMax = 0.8, 0.2 }, err: ErrInvalidConfig},
		{name: "clamp range", flights: good, cfg: func(c *Config) { c.ClampMax = 1.5 }, err: ErrInvalidConfig},
		{name: "negative jitter", flights: good, cfg: func(c *Config) { c.JitterMaxMs = -1 }, err: ErrInvalidConfig},
		{name: "latitude", flights: []Flight{MakeFlight(95, 0, 0, 0)}, err: ErrInvalidConfig},
		{name: "longitude", flights: []Flight{MakeFlight(0, 0, 0, 400)}, err: ErrInvalidConfig},
	} {
		cfg := DefaultConfig()
		if tc.cfg != nil {
			tc.cfg(&cfg)
		}
		a, err := NewAnimator(tc.flights, cfg, Options{Rand: rand.MakeSeeded(0)})
		if a != nil || err == nil {
			t.Errorf("%s: expected an error", tc.name)
		} else if !errors.Is(err, tc.err) {
			t.Errorf("%s: got error %v, expected %v", tc.name, err, tc.err)
		}
	}

	// Longitudes in [180, 360) are accepted.
	if _, err := NewAnimator([]Flight{MakeFlight(0, 350, 10, 200)}, DefaultConfig(), Options{}); err != nil {
		t.Errorf("unexpected error for longitudes past 180: %v", err)
	}

	// All of the problems are reported, with their context.
	var b bytes.Buffer
	lg := log.NewWithWriter(&b, "info")
	cfg := DefaultConfig()
	cfg.CurveSamples = 0
	_, err := NewAnimator([]Flight{MakeFlight(0, 0, 0, 0), MakeFlight(0, 0, -91, 0)}, cfg, Options{Logger: lg})
	if err == nil {
		t.Fatalf("expected an error")
	}
	for _, s := range []string{"config: curve_samples", "flights / flight 1: destination latitude"} {
		if !strings.Contains(err.Error(), s) {
			t.Errorf("error %q doesn't mention %q", err, s)
		}
		if !strings.Contains(b.String(), s) {
			t.Errorf("log doesn't mention %q", s)
		}
	}
}

func TestAnimatorInitialState(t *testing.T) {
	flights := RandomFlights(rand.MakeSeeded(3), 10)
	cfg := DefaultConfig()
	cfg.SegmentsPerFlight = 16
	a, now := makeTestAnimator(t, flights, cfg, 1)

	buf := a.Buffer()
	if len(buf.Positions) != len(flights)*16*6 || len(buf.Colors) != len(flights)*16*6 {
		t.Fatalf("unexpected buffer sizes %d, %d", len(buf.Positions), len(buf.Colors))
	}
	if !buf.Dirty || buf.Version != 1 {
		t.Errorf("expected a freshly written buffer, got dirty %v version %d", buf.Dirty, buf.Version)
	}

	for f := range flights {
		// Everything starts collapsed at the origin.
		o := a.Curve(f).PointAt(0)
		if !close3(o, math.LL2XYZ(flights[f].Origin, cfg.BaseRadius), 1e-5) {
			t.Errorf("flight %d: curve origin %v isn't on the globe's surface", f, o)
		}
		for s := range 16 {
			if buf.Position(f, s, 0) != o || buf.Position(f, s, 1) != o {
				t.Errorf("flight %d segment %d: not at the origin", f, s)
			}
		}

		ft := a.Timing(f)
		if ft.StartMs < *now || ft.StartMs > *now+cfg.JitterMaxMs || ft.Duration() < 1 {
			t.Errorf("flight %d: unexpected timing %+v", f, ft)
		}
		if st := a.State(f, *now-1); st != Dormant {
			t.Errorf("flight %d: state %s before start", f, st)
		}

		m := a.Markers()[f]
		if m[0] != a.Curve(f).Origin() || m[1] != a.Curve(f).Destination() {
			t.Errorf("flight %d: markers %v don't match the curve", f, m)
		}
	}
}

func TestAnimatorFlightCycle(t *testing.T) {
	// A quarter of the way around the equator, in four segments.
	cfg := DefaultConfig()
	cfg.SegmentsPerFlight = 4
	a, _ := makeTestAnimator(t, []Flight{MakeFlight(0, 0, 0, 90)}, cfg, 7)

	ft := a.Timing(0)
	d := ft.Duration()
	third := float32(1) / 3

	// Before the start, nothing moves.
	initial := slices.Clone(a.Buffer().Positions)
	a.Tick(ft.StartMs - 1)
	if !slices.Equal(initial, a.Buffer().Positions) {
		t.Errorf("dormant flight's segments changed")
	}

	// At the start, progress is 0: only the leading segment has any
	// extent, reaching one segment length ahead.
	a.Tick(ft.StartMs)
	if st := a.State(0, ft.StartMs); st != Active {
		t.Errorf("expected active at start, got %s", st)
	}
	checkSegment(t, "start", a, 0, 0, 0, third)
	for s := 1; s < 4; s++ {
		checkSegment(t, "start", a, 0, s, 0, 0)
	}
	atStart := slices.Clone(a.Buffer().Positions)

	// Halfway through, progress is 0.5.
	mid := ft.StartMs + d/2
	a.Tick(mid)
	p := ft.Progress(mid)
	if math.Abs(p-0.5) > 0.01 {
		t.Errorf("expected progress of about 0.5, got %f", p)
	}
	for s := range 4 {
		tb := math.Clamp(p-float32(s)/3, 0, 1)
		te := math.Clamp(p-float32(s-1)/3, 0, 1)
		checkSegment(t, "midway", a, 0, s, tb, te)
	}

	// At the end of the duration, the window spans the whole curve with
	// contiguous segments.
	a.Tick(ft.EndMs)
	if pe := ft.Progress(ft.EndMs); pe != 1 {
		t.Errorf("expected progress 1 at end, got %f", pe)
	}
	checkSegment(t, "end", a, 0, 3, 0, third)
	checkSegment(t, "end", a, 0, 2, third, 2*third)
	checkSegment(t, "end", a, 0, 1, 2*third, 1)
	checkSegment(t, "end", a, 0, 0, 1, 1)
	for s := 1; s < 4; s++ {
		if a.Buffer().Position(0, s, 1) != a.Buffer().Position(0, s-1, 0) {
			t.Errorf("segments %d and %d aren't contiguous", s, s-1)
		}
	}
	if a.Buffer().Position(0, 3, 0) != a.Curve(0).Origin() {
		t.Errorf("trailing segment doesn't start at the origin")
	}

	// Past the end, the window retreats into the destination.
	for _, now := range []int64{ft.EndMs + 1, ft.EndMs + d/4, ft.EndMs + d/2, ft.StartMs + d*17/10} {
		if st := a.State(0, now); st != Reversing {
			t.Errorf("elapsed %d: expected reversing, got %s", now-ft.StartMs, st)
		}
		a.Tick(now)
		p := ft.Progress(now)
		if p < 0 || p > 1 {
			t.Errorf("elapsed %d: unexpected progress %f", now-ft.StartMs, p)
		}
		for s := range 4 {
			tb := math.Clamp(1-p+float32(s)/3, 0, 1)
			te := math.Clamp(1-p+float32(s-1)/3, 0, 1)
			// Only the leading segment reaches back past 1-p.
			if tb < 1-p || (s > 0 && te < 1-p) {
				t.Errorf("elapsed %d: segment %d [%f, %f] extends before %f", now-ft.StartMs, s, tb, te, 1-p)
			}
			checkSegment(t, "reversing", a, 0, s, tb, te)
		}
	}
	if a.Reschedules() != 0 {
		t.Errorf("rescheduled during the first cycle")
	}

	// Once the progress goes negative, the flight is given a new timing
	// and starts over from the origin.
	a.Tick(ft.StartMs + 2*d)
	if a.Reschedules() != 1 {
		t.Errorf("expected a reschedule, got %d", a.Reschedules())
	}
	nt := a.Timing(0)
	if nt.StartMs < ft.StartMs+2*d || nt.StartMs > ft.StartMs+2*d+cfg.JitterMaxMs {
		t.Errorf("new timing %+v doesn't start at the time of the reschedule", nt)
	}
	if !slices.Equal(atStart, a.Buffer().Positions) {
		t.Errorf("rescheduled flight isn't back at its starting window")
	}
}

func TestAnimatorClockJump(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SegmentsPerFlight = 8
	a, _ := makeTestAnimator(t, []Flight{MakeFlight(51.5, -0.1, 40.6, -73.8)}, cfg, 11)

	ft := a.Timing(0)
	later := ft.StartMs + 100*ft.Duration()
	a.Tick(later)
	if a.Reschedules() != 1 {
		t.Errorf("expected the flight to be rescheduled")
	}
	if nt := a.Timing(0); nt.StartMs < later {
		t.Errorf("new start %d is before the tick time %d", nt.StartMs, later)
	}

	// Going back in time leaves the flight dormant until its new start.
	before := slices.Clone(a.Buffer().Positions)
	a.Tick(ft.StartMs)
	if !slices.Equal(before, a.Buffer().Positions) {
		t.Errorf("flight moved before its new start")
	}
}

func TestAnimatorDormantFlightsUntouched(t *testing.T) {
	flights := RandomFlights(rand.MakeSeeded(5), 50)
	cfg := DefaultConfig()
	cfg.SegmentsPerFlight = 8
	a, _ := makeTestAnimator(t, flights, cfg, 5)

	const now = 1500
	initial := slices.Clone(a.Buffer().Positions)
	states := make([]FlightState, len(flights))
	for f := range flights {
		states[f] = a.State(f, now)
	}
	a.Tick(now)

	var dormant, active int
	for f := range flights {
		same := slices.Equal(initial[f*48:(f+1)*48], a.Buffer().FlightPositions(f))
		if states[f] == Dormant {
			dormant++
			if !same {
				t.Errorf("flight %d: dormant but modified", f)
			}
		} else {
			active++
		}
	}
	if dormant == 0 || active == 0 {
		t.Errorf("expected a mix of dormant and active flights; got %d and %d", dormant, active)
	}
}

func TestAnimatorTickProperties(t *testing.T) {
	flights := RandomFlights(rand.MakeSeeded(8), 20)
	cfg := DefaultConfig()
	cfg.SegmentsPerFlight = 12
	a, _ := makeTestAnimator(t, flights, cfg, 8)

	colors := slices.Clone(a.Buffer().Colors)
	n := len(a.Buffer().Positions)
	version := a.Buffer().Version

	for now := int64(1000); now < 20000; now += 97 {
		a.Tick(now)
		version++
		if a.Buffer().Version != version || !a.Buffer().Dirty {
			t.Errorf("tick at %d: version %d, expected %d", now, a.Buffer().Version, version)
		}
		a.Buffer().ClearDirty()

		if len(a.Buffer().Positions) != n {
			t.Fatalf("tick at %d: buffer size changed", now)
		}
		for i, v := range a.Buffer().Positions {
			if !math.IsFinite(v) {
				t.Fatalf("tick at %d: position %d is %f", now, i, v)
			}
		}

		// Ticking again at the same time changes nothing.
		p := slices.Clone(a.Buffer().Positions)
		a.Tick(now)
		version++
		if !slices.Equal(p, a.Buffer().Positions) {
			t.Errorf("tick at %d isn't idempotent", now)
		}
	}
	if !slices.Equal(colors, a.Buffer().Colors) {
		t.Errorf("colors changed")
	}
	if a.Reschedules() == 0 {
		t.Errorf("expected some flights to have been rescheduled")
	}
}

func TestAnimatorReproducible(t *testing.T) {
	flights := RandomFlights(rand.MakeSeeded(21), 8)
	cfg := DefaultConfig()
	cfg.SegmentsPerFlight = 6
	a, _ := makeTestAnimator(t, flights, cfg, 21)
	b, _ := makeTestAnimator(t, flights, cfg, 21)

	for now := int64(1000); now < 12000; now += 250 {
		a.Tick(now)
		b.Tick(now)
	}
	sa, sb := a.Snapshot(), b.Snapshot()
	if !slices.Equal(sa.Timings, sb.Timings) || !slices.Equal(sa.Positions, sb.Positions) {
		t.Errorf("same seed and ticks gave different results")
	}
}

func TestAnimatorClamp(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SegmentsPerFlight = 4
	cfg.ClampMin, cfg.ClampMax = 0.1, 0.9
	a, _ := makeTestAnimator(t, []Flight{MakeFlight(-33.9, 151.2, 35.5, 139.8)}, cfg, 4)

	ft := a.Timing(0)
	a.Tick(ft.StartMs)
	for s := 1; s < 4; s++ {
		checkSegment(t, "start", a, 0, s, 0.1, 0.1)
	}
	a.Tick(ft.EndMs)
	checkSegment(t, "end", a, 0, 0, 0.9, 0.9)
	checkSegment(t, "end", a, 0, 3, 0.1, float32(1)/3)
}

func TestAnimatorSingleSegment(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SegmentsPerFlight = 1
	a, _ := makeTestAnimator(t, []Flight{MakeFlight(10, 10, 20, 20)}, cfg, 2)

	ft := a.Timing(0)
	a.Tick(ft.StartMs)
	checkSegment(t, "start", a, 0, 0, 0, 0)
	a.Tick(ft.EndMs)
	checkSegment(t, "end", a, 0, 0, 1, 1)
	if len(a.Buffer().Positions) != 6 {
		t.Errorf("expected 6 floats, got %d", len(a.Buffer().Positions))
	}
}

func TestAnimatorDegenerateFlight(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SegmentsPerFlight = 8
	a, _ := makeTestAnimator(t, []Flight{MakeFlight(48.9, 2.5, 48.9, 2.5)}, cfg, 9)

	ft := a.Timing(0)
	if ft.Duration() != 1 {
		t.Errorf("expected the minimum duration, got %d", ft.Duration())
	}
	for now := ft.StartMs; now < ft.StartMs+5; now++ {
		a.Tick(now)
		for i, v := range a.Buffer().Positions {
			if !math.IsFinite(v) {
				t.Fatalf("tick at %d: position %d is %f", now, i, v)
			}
		}
	}
}

func TestAnimatorStepAndSnapshot(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SegmentsPerFlight = 4
	a, now := makeTestAnimator(t, []Flight{MakeFlight(0, 0, 0, 90)}, cfg, 7)

	ft := a.Timing(0)
	*now = ft.EndMs
	a.Step()
	s := a.Snapshot()
	pos := slices.Clone(s.Positions)
	checkSegment(t, "step", a, 0, 0, 1, 1)

	*now = ft.EndMs + ft.Duration()/2
	a.Step()
	if !slices.Equal(pos, s.Positions) {
		t.Errorf("snapshot changed after a subsequent tick")
	}
	if s.Version == a.Buffer().Version {
		t.Errorf("snapshot version wasn't frozen")
	}
	if s.Timings[0] != ft {
		t.Errorf("snapshot timing %+v, expected %+v", s.Timings[0], ft)
	}
}

func TestAnimatorParallelCurves(t *testing.T) {
	flights := RandomFlights(rand.MakeSeeded(12), parallelCurveBuildThreshold+36)
	cfg := DefaultConfig()
	cfg.CurveSamples = 16
	cfg.SegmentsPerFlight = 2

	cache, err := NewCurveCache(len(flights))
	if err != nil {
		t.Fatal(err)
	}
	a, err := NewAnimator(flights, cfg, Options{Rand: rand.MakeSeeded(1), Cache: cache})
	if err != nil {
		t.Fatalf("NewAnimator: %v", err)
	}

	for i, f := range flights {
		exp := BuildArcCurve(f, cfg.CurveParams())
		if !slices.Equal(a.Curve(i).Points(), exp.Points()) {
			t.Errorf("flight %d: curve built in parallel doesn't match", i)
		}
		if cache.Get(f, cfg.CurveParams()) != a.Curve(i) {
			t.Errorf("flight %d: curve wasn't cached", i)
		}
	}

	// A second animator for the same flights reuses the curves.
	b, err := NewAnimator(flights, cfg, Options{Rand: rand.MakeSeeded(2), Cache: cache})
	if err != nil {
		t.Fatalf("NewAnimator: %v", err)
	}
	for i := range flights {
		if a.Curve(i) != b.Curve(i) {
			t.Errorf("flight %d: curve was rebuilt", i)
		}
	}
}

func TestAnimatorLogging(t *testing.T) {
	var b bytes.Buffer
	lg := log.NewWithWriter(&b, "debug")

	cfg := DefaultConfig()
	cfg.SegmentsPerFlight = 4
	a, err := NewAnimator([]Flight{MakeFlight(0, 0, 0, 90)}, cfg,
		Options{Rand: rand.MakeSeeded(1), Clock: func() int64 { return 0 }, Logger: lg})
	if err != nil {
		t.Fatalf("NewAnimator: %v", err)
	}
	if !strings.Contains(b.String(), "Animator initialized") {
		t.Errorf("initialization wasn't logged")
	}

	ft := a.Timing(0)
	a.Tick(ft.StartMs + 3*ft.Duration())
	if !strings.Contains(b.String(), "Rescheduled flight") {
		t.Errorf("reschedule wasn't logged")
	}
}

func TestFlightStateString(t *testing.T) {
	for st, s := range map[FlightState]string{Dormant: "dormant", Active: "active", Reversing: "reversing", 7: "unknown"} {
		if st.String() != s {
			t.Errorf("%d: got %q, expected %q", int(st), st.String(), s)
		}
	}
}
