// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package presenter

import (
	"bytes"
	"fmt"
	"text/template"
	"time"

	"github.com/vorlif/humanize"
	"github.com/vorlif/spreak"

	"github.com/wneessen/waybar-whereto/internal/config"
	"github.com/wneessen/waybar-whereto/internal/geobus"
	"github.com/wneessen/waybar-whereto/internal/geocode"
	"github.com/wneessen/waybar-whereto/internal/i18n"
	"github.com/wneessen/waybar-whereto/internal/links"
	"github.com/wneessen/waybar-whereto/internal/places"
	"github.com/wneessen/waybar-whereto/internal/search"
	"github.com/wneessen/waybar-whereto/internal/travel"
)

// PickView wraps a recommended place with presentation-related fields.
type PickView struct {
	places.Candidate

	Label  string
	Street string
	Travel travel.Estimate
	Links  links.Links
	Image  string
}

type TemplateContext struct {
	Mode     search.Mode
	Found    bool
	Teleport bool
	Attempts int

	Origin      geobus.Coordinate
	Destination geobus.Coordinate
	DistanceKm  float64
	BearingDeg  float64
	Address     geocode.Address
	Region      string

	UpdateTime time.Time
	Picks      []PickView
}

type Presenter struct {
	TextTemplate       *template.Template
	AltTextTemplate    *template.Template
	TooltipTemplate    *template.Template
	AltTooltipTemplate *template.Template

	localizer *spreak.Localizer
	humanizer *humanize.Humanizer
}

func New(conf *config.Config, lang *spreak.Localizer) (*Presenter, error) {
	humanizer, err := i18n.NewHumanizer(lang.Language())
	if err != nil {
		return nil, err
	}
	pres := &Presenter{
		localizer: lang,
		humanizer: humanizer,
	}

	templates := []struct {
		name string
		text string
		dst  **template.Template
	}{
		{"text", conf.Templates.Text, &pres.TextTemplate},
		{"alt_text", conf.Templates.AltText, &pres.AltTextTemplate},
		{"tooltip", conf.Templates.Tooltip, &pres.TooltipTemplate},
		{"alt_tooltip", conf.Templates.AltTooltip, &pres.AltTooltipTemplate},
	}
	for _, tpl := range templates {
		parsed, err := template.New(tpl.name).Funcs(pres.templateFuncMap()).Parse(tpl.text)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", tpl.name, err)
		}
		*tpl.dst = parsed
	}

	// Catch templates that reference unknown fields before the first real outcome arrives.
	if _, err = pres.Render(sampleContext()); err != nil {
		return nil, err
	}
	return pres, nil
}

// BuildContext turns a search outcome into the template context. images maps place IDs to
// preview image URLs and may be nil.
func (p *Presenter) BuildContext(outcome search.Outcome, addr geocode.Address, images map[string]string,
	updated time.Time,
) TemplateContext {
	tplCtx := TemplateContext{
		Mode:        outcome.Mode,
		Found:       outcome.Found,
		Teleport:    outcome.Teleport,
		Attempts:    outcome.Attempts,
		Origin:      outcome.Origin,
		Destination: outcome.Jitter.Destination,
		DistanceKm:  outcome.Jitter.DistanceKm,
		BearingDeg:  outcome.Jitter.BearingDeg,
		Address:     addr,
		Region:      addr.Region(),
		UpdateTime:  updated,
		Picks:       make([]PickView, 0, len(outcome.Picks)),
	}
	for _, pick := range outcome.Picks {
		tplCtx.Picks = append(tplCtx.Picks, p.viewFromCandidate(outcome, pick, images[pick.ID]))
	}
	return tplCtx
}

func (p *Presenter) Render(tplCtx TemplateContext) (map[string]string, error) {
	outputs := map[string]*template.Template{
		"text":        p.TextTemplate,
		"alt_text":    p.AltTextTemplate,
		"tooltip":     p.TooltipTemplate,
		"alt_tooltip": p.AltTooltipTemplate,
	}
	result := make(map[string]string, len(outputs))
	buf := bytes.NewBuffer(nil)
	for name, tpl := range outputs {
		buf.Reset()
		if err := tpl.Execute(buf, tplCtx); err != nil {
			return nil, fmt.Errorf("failed to render %s template: %w", name, err)
		}
		result[name] = buf.String()
	}
	return result, nil
}

func (p *Presenter) viewFromCandidate(outcome search.Outcome, c places.Candidate, image string) PickView {
	estimate := travel.Between(outcome.Origin, c.Coordinate)
	if c.Coordinate == (geobus.Coordinate{}) {
		estimate = travel.ForDistance(outcome.Jitter.DistanceKm + c.DistanceMeters/1000)
	}
	return PickView{
		Candidate: c,
		Label:     c.ShortCategory(),
		Street:    c.DisplayAddress(),
		Travel:    estimate,
		Links:     links.For(c),
		Image:     image,
	}
}

func sampleContext() TemplateContext {
	origin := geobus.Coordinate{Lat: 37.5663, Lon: 126.9779}
	dest := origin.Offset(4, 90)
	pick := places.Candidate{
		ID:             "sample",
		Name:           "Sample",
		Kind:           places.KindFood,
		Category:       "음식점 > 한식",
		Address:        "Sample street 1",
		Coordinate:     dest,
		DistanceMeters: 250,
	}
	return TemplateContext{
		Found:       true,
		Teleport:    true,
		Attempts:    1,
		Origin:      origin,
		Destination: dest,
		DistanceKm:  4,
		BearingDeg:  90,
		UpdateTime:  time.Now(),
		Picks: []PickView{{
			Candidate: pick,
			Label:     pick.ShortCategory(),
			Street:    pick.DisplayAddress(),
			Travel:    travel.Between(origin, dest),
			Links:     links.For(pick),
		}},
	}
}
