// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package jitter displaces a coordinate by a random distance in a random direction.
package jitter

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/wneessen/waybar-whereto/internal/geobus"
)

var ErrInvalidRange = errors.New("invalid jitter distance range")

// Rand is the source of randomness used for jittering and sampling.
type Rand interface {
	// Float64 returns a number in [0.0, 1.0).
	Float64() float64
	// IntN returns a number in [0, n).
	IntN(n int) int
}

// Result is a jittered destination together with the parameters that produced it.
type Result struct {
	Destination geobus.Coordinate
	DistanceKm  float64
	BearingDeg  float64
}

// Jitter moves origin by a distance drawn uniformly from [minKm, maxKm] along a bearing drawn
// uniformly from [0, 360).
func Jitter(rnd Rand, origin geobus.Coordinate, minKm, maxKm float64) (Result, error) {
	if err := ValidateRange(minKm, maxKm); err != nil {
		return Result{}, err
	}
	if rnd == nil {
		return Result{}, errors.New("random source is required")
	}

	distance := minKm + rnd.Float64()*(maxKm-minKm)
	bearing := rnd.Float64() * 360
	return Result{
		Destination: origin.Offset(distance, bearing),
		DistanceKm:  distance,
		BearingDeg:  bearing,
	}, nil
}

// ValidateRange checks that 0 <= minKm < maxKm and both are finite.
func ValidateRange(minKm, maxKm float64) error {
	if math.IsNaN(minKm) || math.IsNaN(maxKm) || math.IsInf(minKm, 0) || math.IsInf(maxKm, 0) {
		return fmt.Errorf("%w: distances must be finite", ErrInvalidRange)
	}
	if minKm < 0 {
		return fmt.Errorf("%w: minimum distance %.2fkm is negative", ErrInvalidRange, minKm)
	}
	if minKm >= maxKm {
		return fmt.Errorf("%w: minimum distance %.2fkm is not below maximum %.2fkm", ErrInvalidRange,
			minKm, maxKm)
	}
	return nil
}

// NewRand returns a PCG backed random source. A zero seed draws a random one.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
