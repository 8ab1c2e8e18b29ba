// cmd/arcsim/main.go
// Copyright(c) 2022-2026 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

// arcsim runs the flight arc animation headlessly against a simulated
// clock. It's useful for checking a set of flights and a configuration
// before handing them to a renderer, and for producing captures that can
// be replayed or inspected offline.

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/apenwarr/fixconsole"
	"github.com/goforj/godump"

	"github.com/mmp/flightarcs/arcs"
	"github.com/mmp/flightarcs/log"
	"github.com/mmp/flightarcs/rand"
	"github.com/mmp/flightarcs/util"
)

var (
	flightsFilename = flag.String("flights", "", "JSON file with a list of flights")
	numRandom       = flag.Int("random", 0, "generate this many random flights instead of reading them from a file")
	seed            = flag.Int64("seed", 1, "random number generator seed")
	configFilename  = flag.String("config", "", "JSON file with animation configuration overrides")
	segments        = flag.Int("segments", 0, "line segments per flight (0: use the configured value)")
	samples         = flag.Int("samples", 0, "curve samples per flight (0: use the configured value)")
	arcAngle        = flag.Float64("arcangle", 0, "sweep of the altitude profile in degrees (0: use the configured value)")
	clampRange      = flag.String("clamp", "", "range that curve positions are clamped to, e.g. '0.05,0.95'")
	numFrames       = flag.Int("frames", 600, "number of frames to simulate")
	frameInterval   = flag.Int64("interval", 16, "simulated milliseconds between frames")
	captureFilename = flag.String("capture", "", "write the simulated frames to this file (e.g. "+arcs.CaptureFilename+")")
	inspectCapture  = flag.String("inspect", "", "print a summary of a previously written capture and exit")
	dumpState       = flag.Bool("dump", false, "dump the final flight timings")
	logLevel        = flag.String("loglevel", "info", "logging level: debug, info, warn, error")
	logDir          = flag.String("logdir", "", "log file directory")
	cpuprofile      = flag.String("cpuprofile", "", "write CPU profile to file")
	memprofile      = flag.String("memprofile", "", "write memory profile to this file")
)

func main() {
	flag.Parse()

	if err := fixconsole.FixConsoleIfNeeded(); err != nil {
		fmt.Printf("FixConsole: %v\n", err)
	}

	lg := log.New(*logLevel, *logDir)

	profiler, err := util.CreateProfiler(*cpuprofile, *memprofile)
	if err != nil {
		lg.Errorf("%v", err)
	}
	defer profiler.Cleanup()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "Caught signal, cleaning up...")
		profiler.Cleanup()
		os.Exit(0)
	}()

	if *inspectCapture != "" {
		if err := inspect(*inspectCapture); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", *inspectCapture, err)
			os.Exit(1)
		}
		return
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	r := rand.MakeSeeded(*seed)
	flights, err := loadFlights(r)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	// The simulated clock starts at zero and only advances between frames.
	var now int64
	a, err := arcs.NewAnimator(flights, cfg, arcs.Options{
		Rand:   r,
		Clock:  func() int64 { return now },
		Logger: lg,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	var rec *arcs.Recorder
	if *captureFilename != "" {
		rec = arcs.NewRecorder(a)
	}

	var states [3]int
	for range *numFrames {
		a.Step()
		if rec != nil {
			rec.Record(now)
		}
		now += *frameInterval
	}
	for i := range a.NumFlights() {
		states[a.State(i, now)]++
	}

	fmt.Printf("%d flights, %d segments each, %d frames over %.1fs\n", a.NumFlights(), cfg.SegmentsPerFlight,
		*numFrames, float64(now)/1000)
	fmt.Printf("final state: %d %s, %d %s, %d %s; %d reschedules\n",
		states[arcs.Dormant], arcs.Dormant, states[arcs.Active], arcs.Active,
		states[arcs.Reversing], arcs.Reversing, a.Reschedules())

	if *dumpState {
		godump.Dump(a.Snapshot().Timings)
	}

	if rec != nil {
		if err := saveCapture(rec.Capture(), *captureFilename); err != nil {
			lg.Errorf("%s: %v", *captureFilename, err)
			fmt.Fprintf(os.Stderr, "%s: %v\n", *captureFilename, err)
			os.Exit(1)
		}
		lg.Infof("Wrote %d frames to %s", *numFrames, *captureFilename)
	}
}

// loadConfig starts from the defaults, applies the config file if one was
// given, and then any overrides from the command line.
func loadConfig() (arcs.Config, error) {
	cfg := arcs.DefaultConfig()

	if *configFilename != "" {
		f, err := os.Open(*configFilename)
		if err != nil {
			return cfg, err
		}
		defer f.Close()

		if err := util.UnmarshalJSON(f, &cfg); err != nil {
			return cfg, fmt.Errorf("%s: %w", *configFilename, err)
		}
	}

	if *segments != 0 {
		cfg.SegmentsPerFlight = *segments
	}
	if *samples != 0 {
		cfg.CurveSamples = *samples
	}
	if *arcAngle != 0 {
		cfg.ArcAngleDegrees = float32(*arcAngle)
	}
	if *clampRange != "" {
		lo, hi, ok := strings.Cut(*clampRange, ",")
		if !ok {
			return cfg, fmt.Errorf("%s: expected -clamp min,max", *clampRange)
		}
		vlo, err := strconv.ParseFloat(strings.TrimSpace(lo), 32)
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", lo, err)
		}
		vhi, err := strconv.ParseFloat(strings.TrimSpace(hi), 32)
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", hi, err)
		}
		cfg.ClampMin, cfg.ClampMax = float32(vlo), float32(vhi)
	}

	return cfg, nil
}

func loadFlights(r *rand.Rand) ([]arcs.Flight, error) {
	if *numRandom > 0 {
		return arcs.RandomFlights(r, *numRandom), nil
	} else if *flightsFilename == "" {
		return nil, fmt.Errorf("must specify either -flights or -random")
	}

	f, err := os.Open(*flightsFilename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	flights, err := arcs.LoadFlights(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", *flightsFilename, err)
	}
	return flights, nil
}

func saveCapture(c *arcs.Capture, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}

	if err := c.Save(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func inspect(filename string) error {
	f, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	c, err := arcs.LoadCapture(f)
	if err != nil {
		return err
	}

	fmt.Printf("%d flights, %d segments each, %d frames\n", c.NumFlights, c.SegmentsPerFlight, len(c.Frames))
	if n := len(c.Frames); n > 0 {
		fmt.Printf("time %dms to %dms, versions %d to %d\n", c.Frames[0].NowMs, c.Frames[n-1].NowMs,
			c.Frames[0].Version, c.Frames[n-1].Version)
	}
	godump.Dump(c.Config)
	return nil
}
