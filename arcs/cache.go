// arcs/cache.go
// Copyright(c) 2022-2026 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package arcs

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

type curveKey struct {
	Flight Flight
	Params CurveParams
}

// CurveCache holds recently built curves so that hosts that re-create
// animators for the same flights (e.g. after a resize or remount) don't
// have to rebuild them. It is safe for concurrent use. Curves are
// immutable, so cached curves are shared between animators.
type CurveCache struct {
	cache *lru.Cache[curveKey, *ArcCurve]
}

func NewCurveCache(size int) (*CurveCache, error) {
	c, err := lru.New[curveKey, *ArcCurve](size)
	if err != nil {
		return nil, err
	}
	return &CurveCache{cache: c}, nil
}

// Get returns the curve for the flight and parameters, building it if it
// isn't already cached. A nil *CurveCache just builds the curve.
func (c *CurveCache) Get(f Flight, cp CurveParams) *ArcCurve {
	if c == nil {
		return BuildArcCurve(f, cp)
	}

	key := curveKey{Flight: f, Params: cp}
	if curve, ok := c.cache.Get(key); ok {
		return curve
	}
	curve := BuildArcCurve(f, cp)
	c.cache.Add(key, curve)
	return curve
}

func (c *CurveCache) Len() int {
	if c == nil {
		return 0
	}
	return c.cache.Len()
}
