// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package search

import (
	"fmt"
	"strings"

	"github.com/wneessen/waybar-whereto/internal/places"
)

// Mode selects what kind of place is recommended.
type Mode int

const (
	ModeFood Mode = iota
	ModeCafe
)

// ModeConfig holds the per-mode search parameters.
type ModeConfig struct {
	// MinKm and MaxKm bound the teleport distance from the origin.
	MinKm float64
	MaxKm float64
	// RadiusMeters is the search radius around the (jittered) destination.
	RadiusMeters int
	// Keyword is appended to the destination's region name for keyword searches, e.g. "맛집".
	Keyword string
}

func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "food", "restaurant", "식당":
		return ModeFood, nil
	case "cafe", "coffee", "카페":
		return ModeCafe, nil
	default:
		return ModeFood, fmt.Errorf("unknown mode %q", s)
	}
}

func (m Mode) String() string {
	switch m {
	case ModeFood:
		return "food"
	case ModeCafe:
		return "cafe"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Toggle switches between food and cafe.
func (m Mode) Toggle() Mode {
	if m == ModeCafe {
		return ModeFood
	}
	return ModeCafe
}

// Kind returns the place kind a mode searches for.
func (m Mode) Kind() places.Kind {
	switch m {
	case ModeFood:
		return places.KindFood
	case ModeCafe:
		return places.KindCafe
	default:
		return places.KindUnknown
	}
}
