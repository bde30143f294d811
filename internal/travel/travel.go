// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package travel estimates how long it takes to get to a place.
package travel

import (
	"time"

	"github.com/wneessen/waybar-whereto/internal/geobus"
)

const (
	WalkingSpeedKmh = 4.5
	// DrivingSpeedKmh is an average urban speed including traffic lights.
	DrivingSpeedKmh = 30.0

	// WalkableKm is the distance up to which walking is suggested.
	WalkableKm = 1.5
)

type Estimate struct {
	DistanceKm float64
	Walking    time.Duration
	Driving    time.Duration
}

// Walkable reports whether the place is close enough to walk to.
func (e Estimate) Walkable() bool {
	return e.DistanceKm <= WalkableKm
}

// ForDistance estimates the travel times for a straight-line distance.
func ForDistance(distanceKm float64) Estimate {
	if distanceKm < 0 {
		distanceKm = 0
	}
	return Estimate{
		DistanceKm: distanceKm,
		Walking:    duration(distanceKm, WalkingSpeedKmh),
		Driving:    duration(distanceKm, DrivingSpeedKmh),
	}
}

// Between estimates the travel times between two coordinates.
func Between(from, to geobus.Coordinate) Estimate {
	return ForDistance(from.DistanceKm(to))
}

// duration rounds up to the full minute.
func duration(distanceKm, speedKmh float64) time.Duration {
	d := time.Duration(distanceKm / speedKmh * float64(time.Hour))
	if rounded := d.Truncate(time.Minute); rounded != d {
		return rounded + time.Minute
	}
	return d
}
