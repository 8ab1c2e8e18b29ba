// arcs/capture.go
// Copyright(c) 2022-2026 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package arcs

import (
	"fmt"
	"io"
	"slices"

	"github.com/mmp/flightarcs/util"
)

// CaptureFilename is the conventional name for saved captures.
const CaptureFilename = "arcs-capture.msgpack.zst"

// Frame is the segment positions after a single tick.
type Frame struct {
	NowMs     int64     `msgpack:"now"`
	Version   uint64    `msgpack:"version"`
	Positions []float32 `msgpack:"positions"`
}

// Capture is a recording of an animation: the static colors and the
// positions at each recorded frame. It's stored as msgpack compressed
// with zstd.
type Capture struct {
	NumFlights        int       `msgpack:"flights"`
	SegmentsPerFlight int       `msgpack:"segments"`
	Config            Config    `msgpack:"config"`
	Colors            []float32 `msgpack:"colors"`
	Frames            []Frame   `msgpack:"frames"`
}

// Recorder accumulates frames from an animator.
type Recorder struct {
	a       *Animator
	capture Capture
}

func NewRecorder(a *Animator) *Recorder {
	buf := a.Buffer()
	return &Recorder{
		a: a,
		capture: Capture{
			NumFlights:        buf.NumFlights(),
			SegmentsPerFlight: buf.SegmentsPerFlight(),
			Config:            a.Config(),
			Colors:            slices.Clone(buf.Colors),
		},
	}
}

// Record adds the animator's current positions, labeled with the time
// they were computed for.
func (r *Recorder) Record(now int64) {
	buf := r.a.Buffer()
	r.capture.Frames = append(r.capture.Frames, Frame{
		NowMs:     now,
		Version:   buf.Version,
		Positions: slices.Clone(buf.Positions),
	})
}

func (r *Recorder) Capture() *Capture {
	return &r.capture
}

func (c *Capture) Save(w io.Writer) error {
	return util.EncodeMsgpackZstd(w, c)
}

// LoadCapture reads a capture written by Save and checks that its buffers
// are consistent with its dimensions.
func LoadCapture(r io.Reader) (*Capture, error) {
	var c Capture
	if err := util.DecodeMsgpackZstd(r, &c); err != nil {
		return nil, err
	}

	n := c.NumFlights * c.SegmentsPerFlight * 6
	if len(c.Colors) != n {
		return nil, fmt.Errorf("%w: %d colors, expected %d", ErrInvalidCapture, len(c.Colors), n)
	}
	for i, f := range c.Frames {
		if len(f.Positions) != n {
			return nil, fmt.Errorf("%w: frame %d has %d positions, expected %d", ErrInvalidCapture,
				i, len(f.Positions), n)
		}
	}
	return &c, nil
}
