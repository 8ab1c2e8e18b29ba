// arcs/errors.go
// Copyright(c) 2022-2026 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package arcs

import "errors"

var (
	ErrNoFlights       = errors.New("No flights provided")
	ErrInvalidSegments = errors.New("Segments per flight must be positive")
	ErrInvalidConfig   = errors.New("Invalid configuration")
	ErrInvalidFlight   = errors.New("Invalid flight")
	ErrInvalidCapture  = errors.New("Invalid capture")
)
