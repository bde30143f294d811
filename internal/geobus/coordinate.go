// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geobus

import (
	"fmt"
	"math"
)

const (
	EarthRadius = 6371000.0 // meters

	// KmPerDegree is the small-angle approximation of one degree of latitude in kilometers.
	// One degree of longitude is KmPerDegree scaled by cos(latitude).
	KmPerDegree = 111.0

	// DistanceThreshold is the distance in meters a device has to move before the recommendations
	// are considered stale.
	DistanceThreshold = 500.0
	AccuracyThreshold = 50.0
)

// Coordinate represents a geographic coordinate. It is a value type: operations return new
// coordinates instead of mutating the receiver.
type Coordinate struct {
	Lat float64
	Lon float64
	Acc float64

	CacheHit bool
	Found    bool
}

// Valid checks if the coordinate is valid according to the EPSG logic
func (c Coordinate) Valid() bool {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lon) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// Offset returns the coordinate that lies distanceKm away from c in the direction of bearingDeg
// (0 = north, 90 = east). It uses the flat small-angle approximation, which is accurate enough for
// displacements of a few dozen kilometers. The result is neither clamped at the poles nor wrapped
// at the antimeridian.
func (c Coordinate) Offset(distanceKm, bearingDeg float64) Coordinate {
	bearing := radians(bearingDeg)
	dLat := distanceKm * math.Cos(bearing) / KmPerDegree
	dLon := distanceKm * math.Sin(bearing) / (KmPerDegree * math.Cos(radians(c.Lat)))
	return Coordinate{Lat: c.Lat + dLat, Lon: c.Lon + dLon}
}

// DistanceMeters returns the great-circle distance between c and other using the Haversine formula.
func (c Coordinate) DistanceMeters(other Coordinate) float64 {
	dLat := radians(other.Lat - c.Lat)
	dLon := radians(other.Lon - c.Lon)
	lat1 := radians(c.Lat)
	lat2 := radians(other.Lat)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * EarthRadius * math.Asin(math.Sqrt(h))
}

// DistanceKm is DistanceMeters in kilometers.
func (c Coordinate) DistanceKm(other Coordinate) float64 {
	return c.DistanceMeters(other) / 1000
}

// BearingTo returns the initial great-circle bearing from c to other in degrees within [0, 360).
func (c Coordinate) BearingTo(other Coordinate) float64 {
	lat1, lat2 := radians(c.Lat), radians(other.Lat)
	dLon := radians(other.Lon - c.Lon)
	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)
	bearing := math.Mod(degrees(math.Atan2(y, x))+360, 360)
	if bearing >= 360 {
		return 0
	}
	return bearing
}

// PosHasSignificantChange checks if the geographic position differs significantly from
// another based on the distance threshold.
func (c Coordinate) PosHasSignificantChange(other Coordinate) bool {
	// Higher accuracy always trumps the distance threshold.
	if c.Acc < other.Acc && math.Abs(c.Acc-other.Acc) > AccuracyThreshold {
		return true
	}
	return c.DistanceMeters(other) > DistanceThreshold
}

// String returns the coordinate as "lat,lon" with four decimals (~11m).
func (c Coordinate) String() string {
	return fmt.Sprintf("%.4f,%.4f", c.Lat, c.Lon)
}

// Round rounds x to the given number of decimals.
func Round(x float64, precision int) float64 {
	p := math.Pow(10, float64(precision))
	return math.Round(x*p) / p
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

func degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}
