// rand/rand.go
// Copyright(c) 2022-2026 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package rand

import (
	"github.com/MichaelTJones/pcg"
)

///////////////////////////////////////////////////////////////////////////
// Random numbers.

// Rand is a seedable PCG32 generator. Anything that needs randomness takes
// a *Rand so that tests can fix the seed and get reproducible results.
type Rand struct {
	r *pcg.PCG32
}

func Make() *Rand {
	return &Rand{r: pcg.NewPCG32()}
}

// MakeSeeded returns a generator already seeded with s.
func MakeSeeded(s int64) *Rand {
	r := Make()
	r.Seed(s)
	return r
}

func (r *Rand) Seed(s int64) {
	r.r.Seed(uint64(s), 0xda3e39cb94b95bdb)
}

func (r *Rand) Intn(n int) int {
	return int(r.r.Bounded(uint32(n)))
}

// Float32 returns a uniformly distributed value in [0,1].
func (r *Rand) Float32() float32 {
	return float32(r.r.Random()) / (1<<32 - 1)
}

func (r *Rand) Uint32() uint32 {
	return r.r.Random()
}

// Drop-in replacement for the subset of math/rand that we use...
var r = Make()

func Seed(s int64) {
	r.Seed(s)
}

func Intn(n int) int {
	return r.Intn(n)
}

func Float32() float32 {
	return r.Float32()
}

func Uint32() uint32 {
	return r.Uint32()
}
