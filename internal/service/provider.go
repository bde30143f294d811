// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wneessen/waybar-whereto/internal/config"
	"github.com/wneessen/waybar-whereto/internal/geobus"
	"github.com/wneessen/waybar-whereto/internal/geobus/provider/geoip"
	"github.com/wneessen/waybar-whereto/internal/geobus/provider/geolocation_file"
	"github.com/wneessen/waybar-whereto/internal/geobus/provider/gpsd"
	"github.com/wneessen/waybar-whereto/internal/geobus/provider/ichnaea"
	"github.com/wneessen/waybar-whereto/internal/geobus/provider/placename_file"
	"github.com/wneessen/waybar-whereto/internal/geocode"
	geocodeearth "github.com/wneessen/waybar-whereto/internal/geocode/provider/geocode-earth"
	kakaogeo "github.com/wneessen/waybar-whereto/internal/geocode/provider/kakao"
	"github.com/wneessen/waybar-whereto/internal/geocode/provider/opencage"
	nominatim "github.com/wneessen/waybar-whereto/internal/geocode/provider/osm-nominatim"
	"github.com/wneessen/waybar-whereto/internal/http"
	"github.com/wneessen/waybar-whereto/internal/logger"
	"github.com/wneessen/waybar-whereto/internal/places"
	"github.com/wneessen/waybar-whereto/internal/places/provider/google"
	kakaoplaces "github.com/wneessen/waybar-whereto/internal/places/provider/kakao"
	"github.com/wneessen/waybar-whereto/internal/search"
)

const (
	cacheHitTTL  = time.Hour * 24
	cacheMissTTL = time.Minute * 30
)

func (s *Service) selectGeobusProviders() ([]geobus.Provider, error) {
	httpClient := http.New(s.logger)
	var provider []geobus.Provider

	if !s.config.GeoLocation.DisableGeolocationFile {
		gfp, err := geolocation_file.NewGeolocationFileProvider(s.config.GeoLocation.File, s.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create geolocation file provider: %w", err)
		}
		provider = append(provider, gfp)
	}

	if !s.config.GeoLocation.DisablePlacenameFile {
		if s.geocoder == nil {
			return nil, errors.New("place name file provider requires a geocoder")
		}
		pfp, err := placename_file.NewPlacenameFileProvider(s.config.GeoLocation.PlacenameFile, s.geocoder,
			s.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create place name file provider: %w", err)
		}
		provider = append(provider, pfp)
	}

	if !s.config.GeoLocation.DisableGPSD {
		gps, err := gpsd.NewGeolocationGPSDProvider(s.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create GPSD provider: %w", err)
		}
		provider = append(provider, gps)
	}

	if !s.config.GeoLocation.DisableGeoIP {
		gip, err := geoip.NewGeolocationGeoIPProvider(httpClient, s.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create GeoIP provider: %w", err)
		}
		provider = append(provider, gip)
	}

	if !s.config.GeoLocation.DisableICHNAEA {
		mls, err := ichnaea.NewGeolocationICHNAEAProvider(httpClient, s.logger)
		if err != nil {
			s.logger.Error("failed to create ICHNAEA provider", logger.Err(err))
		} else {
			provider = append(provider, mls)
		}
	}
	if len(provider) == 0 {
		return nil, fmt.Errorf("no geolocation providers enabled")
	}

	return provider, nil
}

func (s *Service) selectGeocodeProvider(conf *config.Config, client *http.Client) (*geocode.CachedGeocoder, error) {
	var coder geocode.Geocoder
	var err error

	switch strings.ToLower(conf.GeoCoder.Provider) {
	case "nominatim":
		coder, err = nominatim.New(client, s.t.Language())
	case "kakao":
		// The Kakao Local API shares one REST key between places and addresses.
		apikey := conf.GeoCoder.APIKey
		if apikey == "" {
			apikey = conf.Places.APIKey
		}
		if apikey == "" {
			return nil, fmt.Errorf("kakao geocoder requires an API key")
		}
		coder, err = kakaogeo.New(client, apikey)
	case "opencage":
		coder, err = opencage.New(client, s.t.Language(), conf.GeoCoder.APIKey)
	case "geocode-earth":
		coder, err = geocodeearth.New(client, s.t.Language(), conf.GeoCoder.APIKey)
	default:
		return nil, fmt.Errorf("unsupported geocoder type: %s", conf.GeoCoder.Provider)
	}
	if err != nil {
		return nil, err
	}

	return geocode.NewCachedGeocoder(coder, cacheHitTTL, cacheMissTTL), nil
}

func (s *Service) selectPlacesProvider(conf *config.Config, client *http.Client) (*places.CachedProvider, error) {
	var provider places.Provider
	var err error

	switch strings.ToLower(conf.Places.Provider) {
	case "kakao":
		if conf.Places.APIKey == "" {
			return nil, fmt.Errorf("kakao places provider requires an API key")
		}
		provider, err = kakaoplaces.New(client, conf.Places.APIKey)
	case "google":
		if conf.Places.APIKey == "" {
			return nil, fmt.Errorf("google places provider requires an API key")
		}
		provider, err = google.New(client, conf.Places.APIKey, s.t.Language().String())
	default:
		return nil, fmt.Errorf("unsupported places provider: %s", conf.Places.Provider)
	}
	if err != nil {
		return nil, err
	}

	return places.NewCachedProvider(provider, conf.Places.CacheTTL), nil
}

// modeConfigs converts the per-mode settings into the searcher's configuration.
func modeConfigs(conf *config.Config) map[search.Mode]search.ModeConfig {
	convert := func(m config.ModeSettings) search.ModeConfig {
		return search.ModeConfig{
			MinKm:        m.MinKm,
			MaxKm:        m.MaxKm,
			RadiusMeters: m.RadiusMeters,
			Keyword:      m.Keyword,
		}
	}
	return map[search.Mode]search.ModeConfig{
		search.ModeFood: convert(conf.Food),
		search.ModeCafe: convert(conf.Cafe),
	}
}

// selectLookup dispatches every mode to its configured lookup type.
func (s *Service) selectLookup(conf *config.Config, coder geocode.Geocoder, provider places.Provider) search.Lookup {
	modes := modeConfigs(conf)
	size := conf.Search.PoolSize
	category := search.CategoryLookup(provider, modes, size)
	keyword := search.KeywordLookup(coder, provider, modes, size)

	lookups := map[search.Mode]search.Lookup{
		search.ModeFood: category,
		search.ModeCafe: category,
	}
	if conf.Food.Lookup == "keyword" {
		lookups[search.ModeFood] = keyword
	}
	if conf.Cafe.Lookup == "keyword" {
		lookups[search.ModeCafe] = keyword
	}

	return func(ctx context.Context, coord geobus.Coordinate, mode search.Mode) ([]places.Candidate, error) {
		lookup, ok := lookups[mode]
		if !ok {
			return nil, fmt.Errorf("no lookup for mode %s", mode)
		}
		return lookup(ctx, coord, mode)
	}
}
