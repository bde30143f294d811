// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geobus

import (
	"math"
	"testing"
)

const tolerance = 1e-4

func TestCoordinate_Valid(t *testing.T) {
	tests := []struct {
		name  string
		coord Coordinate
		valid bool
	}{
		{"seoul", Coordinate{Lat: 37.5663, Lon: 126.9779}, true},
		{"poles and antimeridian", Coordinate{Lat: 90, Lon: -180}, true},
		{"latitude too large", Coordinate{Lat: 90.1, Lon: 0}, false},
		{"longitude too small", Coordinate{Lat: 0, Lon: -180.1}, false},
		{"nan", Coordinate{Lat: math.NaN(), Lon: 0}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.coord.Valid() != tc.valid {
				t.Errorf("expected valid to be %t for %+v", tc.valid, tc.coord)
			}
		})
	}
}

func TestCoordinate_Offset(t *testing.T) {
	origin := Coordinate{Lat: 37.5, Lon: 127.0}
	tests := []struct {
		name    string
		km      float64
		bearing float64
		lat     float64
		lon     float64
	}{
		{"north", 10, 0, 37.5901, 127.0},
		{"east", 10, 90, 37.5, 127.1136},
		{"south", 10, 180, 37.4099, 127.0},
		{"west", 10, 270, 37.5, 126.8864},
		{"zero distance", 0, 123, 37.5, 127.0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := origin.Offset(tc.km, tc.bearing)
			if math.Abs(got.Lat-tc.lat) > tolerance {
				t.Errorf("expected lat to be %.4f, got %.6f", tc.lat, got.Lat)
			}
			if math.Abs(got.Lon-tc.lon) > tolerance {
				t.Errorf("expected lon to be %.4f, got %.6f", tc.lon, got.Lon)
			}
		})
	}
	t.Run("offset does not mutate the origin", func(t *testing.T) {
		o := Coordinate{Lat: 37.5, Lon: 127.0}
		_ = o.Offset(5, 45)
		if o.Lat != 37.5 || o.Lon != 127.0 {
			t.Errorf("origin was mutated: %+v", o)
		}
	})
	t.Run("offset distance matches haversine for short hops", func(t *testing.T) {
		for _, bearing := range []float64{0, 45, 90, 135, 225, 315} {
			got := origin.DistanceKm(origin.Offset(5, bearing))
			if math.Abs(got-5) > 0.05 {
				t.Errorf("expected distance of ~5km for bearing %.0f, got %.3f", bearing, got)
			}
		}
	})
}

func TestCoordinate_DistanceKm(t *testing.T) {
	cityHall := Coordinate{Lat: 37.5663, Lon: 126.9779}
	gangnam := Coordinate{Lat: 37.4979, Lon: 127.0276}
	got := cityHall.DistanceKm(gangnam)
	if math.Abs(got-8.78) > 0.1 {
		t.Errorf("expected distance of about 8.78km, got %.3f", got)
	}
	if cityHall.DistanceKm(cityHall) != 0 {
		t.Error("expected distance to self to be zero")
	}
}

func TestCoordinate_BearingTo(t *testing.T) {
	origin := Coordinate{Lat: 37.5, Lon: 127.0}
	tests := []struct {
		name    string
		bearing float64
	}{
		{"north", 0},
		{"east", 90},
		{"south", 180},
		{"west", 270},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := origin.BearingTo(origin.Offset(1, tc.bearing))
			if math.Abs(got-tc.bearing) > 0.1 {
				t.Errorf("expected bearing %.1f, got %.3f", tc.bearing, got)
			}
		})
	}
}

func TestCoordinate_String(t *testing.T) {
	c := Coordinate{Lat: 37.56634, Lon: 126.97796}
	if got := c.String(); got != "37.5663,126.9780" {
		t.Errorf("expected string to be %q, got %q", "37.5663,126.9780", got)
	}
}

func TestRound(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{126.97796, 126.978},
		{37.56634, 37.5663},
		{37.5663, 37.5663},
	}
	for _, tc := range tests {
		if got := Round(tc.in, 4); got != tc.want {
			t.Errorf("expected rounded value to be %f, got %f", tc.want, got)
		}
	}
}
