// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geocode

import (
	"context"
	"errors"

	"github.com/wneessen/waybar-whereto/internal/geobus"
)

// ErrUnresolvable is returned when a coordinate cannot be turned into an address, for example
// because it lies in the sea.
var ErrUnresolvable = errors.New("coordinate could not be resolved to an address")

type Address struct {
	AddressFound bool
	Latitude     float64
	Longitude    float64
	DisplayName  string
	Country      string
	State        string
	Municipality string
	CityDistrict string
	Postcode     string
	City         string
	Suburb       string
	Street       string
	HouseNumber  string

	CacheHit bool
}

// Region returns the most specific administrative area that is still useful as a search term,
// e.g. "Jung-gu" or "중구".
func (a Address) Region() string {
	for _, v := range []string{a.CityDistrict, a.Suburb, a.City, a.Municipality, a.State} {
		if v != "" {
			return v
		}
	}
	return ""
}

// Geocoder turns coordinates into addresses and addresses into coordinates.
type Geocoder interface {
	Name() string
	Reverse(ctx context.Context, coords geobus.Coordinate) (Address, error)
	Search(ctx context.Context, address string) (geobus.Coordinate, error)
}
