// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package places defines the place search abstraction shared by all place providers.
package places

import (
	"context"
	"strings"

	"github.com/wneessen/waybar-whereto/internal/geobus"
)

// Kind is the provider independent category of a place.
type Kind string

const (
	KindFood    Kind = "food"
	KindCafe    Kind = "cafe"
	KindUnknown Kind = ""
)

// Candidate is a single place returned by a provider.
type Candidate struct {
	ID           string
	Name         string
	Kind         Kind
	Category     string // human readable category path, e.g. "음식점 > 한식 > 냉면"
	CategoryCode string // provider specific code, e.g. "FD6"
	Address      string
	RoadAddress  string
	Phone        string
	URL          string
	Coordinate   geobus.Coordinate

	// DistanceMeters is the distance from the query point as reported by the provider.
	DistanceMeters float64
	Source         string
}

// ShortCategory returns the most specific segment of the category path.
func (c Candidate) ShortCategory() string {
	if i := strings.LastIndex(c.Category, ">"); i >= 0 {
		return strings.TrimSpace(c.Category[i+1:])
	}
	return strings.TrimSpace(c.Category)
}

// DisplayAddress prefers the road address and falls back to the lot address.
func (c Candidate) DisplayAddress() string {
	if c.RoadAddress != "" {
		return c.RoadAddress
	}
	return c.Address
}

// Query describes a place search around a coordinate.
type Query struct {
	Coordinate   geobus.Coordinate
	RadiusMeters int
	Kind         Kind
	Keyword      string
	Size         int
}

// Provider looks up places around a coordinate.
type Provider interface {
	Name() string
	// Category returns places of the query's Kind, nearest first.
	Category(ctx context.Context, query Query) ([]Candidate, error)
	// Keyword returns places matching the query's Keyword, nearest first.
	Keyword(ctx context.Context, query Query) ([]Candidate, error)
}
