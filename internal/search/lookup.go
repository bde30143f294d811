// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package search

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wneessen/waybar-whereto/internal/filter"
	"github.com/wneessen/waybar-whereto/internal/geobus"
	"github.com/wneessen/waybar-whereto/internal/geocode"
	"github.com/wneessen/waybar-whereto/internal/places"
)

// CategoryLookup searches places of the mode's kind within the mode's radius.
func CategoryLookup(provider places.Provider, modes map[Mode]ModeConfig, size int) Lookup {
	return func(ctx context.Context, coord geobus.Coordinate, mode Mode) ([]places.Candidate, error) {
		mc, ok := modes[mode]
		if !ok {
			return nil, fmt.Errorf("no configuration for mode %s", mode)
		}
		return provider.Category(ctx, places.Query{
			Coordinate:   coord,
			RadiusMeters: mc.RadiusMeters,
			Kind:         mode.Kind(),
			Size:         size,
		})
	}
}

// KeywordLookup resolves the region of the coordinate and searches for "<region> <keyword>",
// e.g. "중구 맛집". Coordinates without an address fail with geocode.ErrUnresolvable.
func KeywordLookup(coder geocode.Geocoder, provider places.Provider, modes map[Mode]ModeConfig, size int) Lookup {
	return func(ctx context.Context, coord geobus.Coordinate, mode Mode) ([]places.Candidate, error) {
		mc, ok := modes[mode]
		if !ok {
			return nil, fmt.Errorf("no configuration for mode %s", mode)
		}
		if mc.Keyword == "" {
			return nil, fmt.Errorf("no keyword configured for mode %s", mode)
		}

		address, err := coder.Reverse(ctx, coord)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %w", geocode.ErrUnresolvable, err)
		}
		region := address.Region()
		if !address.AddressFound || region == "" {
			return nil, fmt.Errorf("%w: %s", geocode.ErrUnresolvable, coord)
		}

		return provider.Keyword(ctx, places.Query{
			Coordinate:   coord,
			RadiusMeters: mc.RadiusMeters,
			Kind:         mode.Kind(),
			Keyword:      strings.TrimSpace(region + " " + mc.Keyword),
			Size:         size,
		})
	}
}

// Validator accepts named candidates of the mode's kind that pass all extra filters.
func Validator(extra ...filter.Func) Validate {
	return func(candidate places.Candidate, mode Mode) bool {
		return filter.All(append([]filter.Func{filter.Kind(mode.Kind()), filter.Named()}, extra...)...)(candidate)
	}
}
