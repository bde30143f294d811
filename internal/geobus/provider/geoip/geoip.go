// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geoip

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wneessen/waybar-whereto/internal/geobus"
	"github.com/wneessen/waybar-whereto/internal/http"
	"github.com/wneessen/waybar-whereto/internal/logger"
)

const (
	APIEndpoint   = "https://reallyfreegeoip.org/json/"
	LookupTimeout = time.Second * 5
	name          = "geoip"
)

// GeolocationGeoIPProvider estimates the position from the public IP address. It is the least
// accurate source and only matters when nothing else is available.
type GeolocationGeoIPProvider struct {
	http   *http.Client
	poller geobus.Poller
}

type APIResult struct {
	IP          string  `json:"ip"`
	CountryCode string  `json:"country_code"`
	Country     string  `json:"country_name"`
	RegionCode  string  `json:"region_code,omitempty"`
	Region      string  `json:"region_name,omitempty"`
	City        string  `json:"city,omitempty"`
	ZipCode     string  `json:"zip_code,omitempty"`
	TimeZone    string  `json:"time_zone"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

func NewGeolocationGeoIPProvider(client *http.Client, log *logger.Logger) (*GeolocationGeoIPProvider, error) {
	if client == nil {
		return nil, errors.New("http client is required")
	}
	if log == nil {
		return nil, errors.New("logger is required")
	}
	provider := &GeolocationGeoIPProvider{http: client}
	provider.poller = geobus.Poller{
		Source: name,
		Period: time.Minute * 30,
		TTL:    time.Hour,
		Logger: log,
		Locate: provider.locate,
	}
	return provider, nil
}

func (p *GeolocationGeoIPProvider) Name() string {
	return name
}

func (p *GeolocationGeoIPProvider) LookupStream(ctx context.Context, key string) <-chan geobus.Result {
	return p.poller.Stream(ctx, key)
}

func (p *GeolocationGeoIPProvider) locate(ctx context.Context) (geobus.Coordinate, error) {
	result := new(APIResult)
	if _, err := p.http.GetWithTimeout(ctx, APIEndpoint, result, nil, nil, LookupTimeout); err != nil {
		return geobus.Coordinate{}, fmt.Errorf("failed to get geolocation data from API: %w", err)
	}
	if result.CountryCode == "" {
		return geobus.Coordinate{}, nil
	}
	return geobus.Coordinate{
		Lat:   result.Latitude,
		Lon:   result.Longitude,
		Acc:   accuracy(result),
		Found: true,
	}, nil
}

// accuracy derives a rough accuracy from how specific the answer is.
func accuracy(result *APIResult) float64 {
	switch {
	case result.ZipCode != "":
		return geobus.AccuracyZip
	case result.City != "":
		return geobus.AccuracyCity
	case result.RegionCode != "":
		return geobus.AccuracyRegion
	case result.CountryCode != "":
		return geobus.AccuracyCountry
	default:
		return geobus.AccuracyUnknown
	}
}
