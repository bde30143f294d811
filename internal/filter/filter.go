// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package filter decides which place candidates are eligible for a recommendation.
package filter

import (
	"github.com/wneessen/waybar-whereto/internal/places"
)

// Func reports whether a candidate is eligible.
type Func func(places.Candidate) bool

// Kind accepts candidates of the given kind only.
func Kind(kind places.Kind) Func {
	return func(c places.Candidate) bool {
		return c.Kind == kind
	}
}

// Named rejects candidates without a name.
func Named() Func {
	return func(c places.Candidate) bool {
		return c.Name != ""
	}
}

// All accepts a candidate if every filter accepts it. Nil filters are ignored.
func All(filters ...Func) Func {
	return func(c places.Candidate) bool {
		for _, f := range filters {
			if f != nil && !f(c) {
				return false
			}
		}
		return true
	}
}

// Exclude rejects candidates with one of the given IDs.
func Exclude(ids ...string) Func {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return func(c places.Candidate) bool {
		_, excluded := set[c.ID]
		return !excluded
	}
}
