// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package presenter

import (
	"fmt"
	"math"
	"strings"
	"text/template"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/vorlif/humanize"

	"github.com/wneessen/waybar-whereto/internal/search"
)

func (p *Presenter) templateFuncMap() template.FuncMap {
	return template.FuncMap{
		"timeFormat":    p.timeFormat,
		"localizedTime": p.localizedTime,
		"floatFormat":   p.floatFormat,
		"loc":           p.loc,
		"modeIcon":      modeIcon,
		"first":         first,
		"trunc":         trunc,
		"compass":       p.degToString,
		"arrow":         p.bearingIcon,
		"distance":      distance,
		"duration":      duration,
		"inc":           func(i int) int { return i + 1 },
		"lc":            strings.ToLower,
		"uc":            strings.ToUpper,
	}
}

func (p *Presenter) loc(val string) string {
	val = strings.ToLower(val)
	if raw, ok := i18nVars[val]; ok {
		return p.localizer.Get(raw)
	}
	return val
}

func (p *Presenter) localizedTime(val time.Time) string {
	return p.humanizer.FormatTime(val, humanize.TimeFormat)
}

func (p *Presenter) timeFormat(val time.Time, fmt string) string {
	return val.Format(fmt)
}

func (p *Presenter) floatFormat(val float64, precision int) string {
	return fmt.Sprintf("%.*f", precision, val)
}

// degToString maps a bearing to one of the eight compass directions.
func (p *Presenter) degToString(deg float64) string {
	directions := []string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	idx := int(math.Mod(deg+22.5, 360) / 45)
	return directions[idx]
}

func (p *Presenter) bearingIcon(deg float64) string {
	return directionIcons[p.degToString(deg)]
}

func modeIcon(mode search.Mode) string {
	if icon, ok := modeIcons[mode]; ok {
		return icon
	}
	return modeIcons[search.ModeFood]
}

// first returns the first pick or nil, so templates can use it with "with".
func first(picks []PickView) *PickView {
	if len(picks) == 0 {
		return nil
	}
	return &picks[0]
}

// trunc shortens s to the given display width. Wide runes count twice.
func trunc(s string, width int) string {
	return runewidth.Truncate(s, width, "…")
}

// distance formats meters as "412m" below one kilometer and as "1.2km" above.
func distance(meters float64) string {
	if meters < 1000 {
		return fmt.Sprintf("%dm", int(math.Round(meters)))
	}
	return fmt.Sprintf("%.1fkm", meters/1000)
}

func duration(d time.Duration) string {
	minutes := int(d.Round(time.Minute) / time.Minute)
	switch {
	case minutes < 60:
		return fmt.Sprintf("%d min", minutes)
	case minutes%60 == 0:
		return fmt.Sprintf("%d h", minutes/60)
	default:
		return fmt.Sprintf("%d h %d min", minutes/60, minutes%60)
	}
}
