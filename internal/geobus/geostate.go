// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geobus

// GeolocationState remembers the coordinate the current recommendations were made for, so that
// small GPS drift does not cause a new search.
type GeolocationState struct {
	last     Coordinate
	haveLast bool
}

// Update stores the given coordinate as the last known position.
func (s *GeolocationState) Update(coord Coordinate) {
	s.last = coord
	s.haveLast = true
}

// HasChanged reports whether coord is far enough away from the last known position to matter.
func (s *GeolocationState) HasChanged(coord Coordinate) bool {
	if !s.haveLast {
		return true
	}
	return coord.DistanceMeters(s.last) > DistanceThreshold
}

// Last returns the last known position and whether there is one.
func (s *GeolocationState) Last() (Coordinate, bool) {
	return s.last, s.haveLast
}
