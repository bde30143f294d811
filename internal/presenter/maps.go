// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package presenter

import (
	"github.com/vorlif/spreak/localize"

	"github.com/wneessen/waybar-whereto/internal/search"
)

var modeIcons = map[search.Mode]string{
	search.ModeFood: "🍜",
	search.ModeCafe: "☕",
}

var i18nVars = map[string]localize.MsgID{
	"recommendations": "Recommendations",
	"nothing found":   "Nothing found",
	"attempts":        "attempts",
	"updated":         "Updated",
	"food":            "Food",
	"cafe":            "Cafe",
	"near me":         "Near me",
	"walk":            "Walk",
	"drive":           "Drive",
	"from here":       "from here",
}

var directionIcons = map[string]string{
	"N":  "↑",
	"NE": "↗",
	"E":  "→",
	"SE": "↘",
	"S":  "↓",
	"SW": "↙",
	"W":  "←",
	"NW": "↖",
}
