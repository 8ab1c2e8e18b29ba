// arcs/animator.go
// Copyright(c) 2022-2026 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package arcs

import (
	"log/slog"
	"runtime"
	"time"

	"github.com/brunoga/deep"
	"golang.org/x/sync/errgroup"

	"github.com/mmp/flightarcs/log"
	"github.com/mmp/flightarcs/math"
	"github.com/mmp/flightarcs/rand"
	"github.com/mmp/flightarcs/util"
)

// FlightState describes where a flight is in its animation cycle.
type FlightState int

const (
	// Dormant flights haven't started yet; their segments are left as
	// they are.
	Dormant FlightState = iota
	// Active flights' lit windows are moving from origin to destination.
	Active
	// Reversing flights have used up their duration; their windows are
	// retreating toward the destination, after which they are
	// rescheduled.
	Reversing
)

func (s FlightState) String() string {
	switch s {
	case Dormant:
		return "dormant"
	case Active:
		return "active"
	case Reversing:
		return "reversing"
	default:
		return "unknown"
	}
}

// Options holds an Animator's collaborators; zero values are replaced
// with defaults.
type Options struct {
	// Rand is used for the randomized flight timings. Defaults to a
	// generator seeded from the current time.
	Rand *rand.Rand
	// Clock returns the current time in milliseconds. It's used to
	// schedule the initial timings and by Step. Defaults to the wall
	// clock.
	Clock  func() int64
	Logger *log.Logger
	// Cache, if non-nil, is used to look up and store flight curves.
	Cache *CurveCache
}

// flights with at least this many curves to build are built in parallel.
const parallelCurveBuildThreshold = 64

// Animator owns the flight curves, their timings, and the segment buffer
// that is rewritten each frame. It is not safe for concurrent use: Tick
// must not be called again until the previous call has returned, and the
// buffer may only be read between calls.
type Animator struct {
	cfg       Config
	flights   []Flight
	distances []float32
	curves    []*ArcCurve
	timings   []FlightTiming
	buf       *SegmentBuffer
	sched     Scheduler
	clock     func() int64
	lg        *log.Logger

	reschedules int
}

// NewAnimator validates the configuration and flights, builds each
// flight's curve, assigns initial timings, and initializes the segment
// buffer with every segment collapsed at its flight's origin.
func NewAnimator(flights []Flight, cfg Config, opts Options) (*Animator, error) {
	var e util.ErrorLogger
	cfg.Validate(&e)
	ValidateFlights(flights, &e)
	if e.HaveErrors() {
		base := ErrInvalidConfig
		if len(flights) == 0 {
			base = ErrNoFlights
		} else if cfg.SegmentsPerFlight <= 0 {
			base = ErrInvalidSegments
		}
		if opts.Logger != nil {
			e.PrintErrors(opts.Logger)
		}
		return nil, e.Err(base)
	}

	a := &Animator{
		cfg:     cfg,
		flights: flights,
		clock:   opts.Clock,
		lg:      opts.Logger,
		sched: Scheduler{
			JitterMaxMs:   cfg.JitterMaxMs,
			DurationScale: cfg.DurationScale,
			Rand:          opts.Rand,
		},
	}
	if a.clock == nil {
		a.clock = func() int64 { return time.Now().UnixMilli() }
	}
	if a.sched.Rand == nil {
		a.sched.Rand = rand.MakeSeeded(time.Now().UnixNano())
	}

	a.distances = util.MapSlice(flights, func(f Flight) float32 { return f.Distance() })
	a.curves = buildCurves(flights, cfg.CurveParams(), opts.Cache)

	now := a.clock()
	a.timings = make([]FlightTiming, len(flights))
	for i := range flights {
		a.timings[i] = a.sched.AssignTiming(a.distances[i], now)
	}

	a.buf = MakeSegmentBuffer(len(flights), cfg.SegmentsPerFlight)
	for i, f := range flights {
		a.buf.fillColors(i, f.Origin.Longitude(), cfg.HueOffset)
		p := a.curves[i].PointAt(0)
		for s := range cfg.SegmentsPerFlight {
			a.buf.SetSegment(i, s, p, p)
		}
	}
	a.buf.MarkDirty()

	a.lg.Info("Animator initialized", slog.Int("flights", len(flights)),
		slog.Int("segments_per_flight", cfg.SegmentsPerFlight),
		slog.Int("curve_samples", cfg.CurveSamples),
		slog.Int64("now", now))

	return a, nil
}

func buildCurves(flights []Flight, cp CurveParams, cache *CurveCache) []*ArcCurve {
	curves := make([]*ArcCurve, len(flights))
	if len(flights) < parallelCurveBuildThreshold {
		for i, f := range flights {
			curves[i] = cache.Get(f, cp)
		}
		return curves
	}

	var eg errgroup.Group
	eg.SetLimit(runtime.NumCPU())
	for i, f := range flights {
		eg.Go(func() error {
			curves[i] = cache.Get(f, cp)
			return nil
		})
	}
	_ = eg.Wait() // the workers never fail

	return curves
}

// Tick advances the animation to now (in milliseconds) and rewrites the
// positions of every flight that has started. Calling it twice with the
// same time leaves the positions unchanged.
func (a *Animator) Tick(now int64) {
	for f := range a.flights {
		ft := a.timings[f]
		if !ft.Active(now) {
			continue
		}

		progress := ft.Progress(now)
		if progress < 0 || math.IsNaN(progress) {
			// The flight has run its course (or the clock misbehaved);
			// start over with a fresh timing.
			progress = 0
			ft = a.reschedule(f, now)
		}

		a.writeWindow(f, progress, ft.Reversed(now))
	}
	a.buf.MarkDirty()
}

// Step ticks at the current time according to the animator's clock.
func (a *Animator) Step() {
	a.Tick(a.clock())
}

func (a *Animator) reschedule(f int, now int64) FlightTiming {
	old := a.timings[f]
	a.timings[f] = a.sched.AssignTiming(a.distances[f], now)
	a.reschedules++

	a.lg.Debug("Rescheduled flight", slog.Int("flight", f),
		slog.Int64("old_start", old.StartMs), slog.Int64("old_end", old.EndMs),
		slog.Int64("start", a.timings[f].StartMs), slog.Int64("end", a.timings[f].EndMs))

	return a.timings[f]
}

// writeWindow samples the flight's curve at the boundaries of each of its
// segments given the current progress. Going forward, the window's
// leading edge is at progress and it trails back toward the origin;
// reversed, the window covers [1-progress, 1] and so shrinks into the
// destination as progress falls.
func (a *Animator) writeWindow(f int, progress float32, reverse bool) {
	n := a.cfg.SegmentsPerFlight
	curve := a.curves[f]

	for s := n - 1; s >= 0; s-- {
		begin, end := windowOffsets(s, n)

		var bt, et float32
		if reverse {
			bt, et = 1-progress+begin, 1-progress+end
		} else {
			bt, et = progress-begin, progress-end
		}
		bt = math.Clamp(bt, a.cfg.ClampMin, a.cfg.ClampMax)
		et = math.Clamp(et, a.cfg.ClampMin, a.cfg.ClampMax)

		a.buf.SetSegment(f, s, curve.PointAt(bt), curve.PointAt(et))
	}
}

// windowOffsets returns how far behind the window's leading edge segment
// s's endpoints are: s/(n-1) and (s-1)/(n-1).
func windowOffsets(s, n int) (float32, float32) {
	if n == 1 {
		return 0, 0
	}
	return float32(s) / float32(n-1), float32(s-1) / float32(n-1)
}

func (a *Animator) Config() Config {
	return a.cfg
}

func (a *Animator) Flights() []Flight {
	return a.flights
}

func (a *Animator) NumFlights() int {
	return len(a.flights)
}

func (a *Animator) Curve(i int) *ArcCurve {
	return a.curves[i]
}

func (a *Animator) Timing(i int) FlightTiming {
	return a.timings[i]
}

// Buffer returns the segment buffer; see SegmentBuffer for the rules on
// accessing it.
func (a *Animator) Buffer() *SegmentBuffer {
	return a.buf
}

// Reschedules returns the number of times a flight has been given a new
// timing since the animator was created.
func (a *Animator) Reschedules() int {
	return a.reschedules
}

// State returns the state the given flight would be in at now, based on
// its current timing.
func (a *Animator) State(i int, now int64) FlightState {
	ft := a.timings[i]
	if !ft.Active(now) {
		return Dormant
	} else if ft.Reversed(now) {
		return Reversing
	}
	return Active
}

// Markers returns the origin and destination points of each flight's
// curve, for drawing endpoint markers.
func (a *Animator) Markers() [][2][3]float32 {
	return util.MapSlice(a.curves, func(c *ArcCurve) [2][3]float32 {
		return [2][3]float32{c.Origin(), c.Destination()}
	})
}

// Snapshot is a copy of an animator's mutable state.
type Snapshot struct {
	Timings   []FlightTiming
	Positions []float32
	Version   uint64
}

// Snapshot returns a deep copy of the animator's timings and positions
// that stays valid across subsequent ticks.
func (a *Animator) Snapshot() Snapshot {
	return deep.MustCopy(Snapshot{
		Timings:   a.timings,
		Positions: a.buf.Positions,
		Version:   a.buf.Version,
	})
}
