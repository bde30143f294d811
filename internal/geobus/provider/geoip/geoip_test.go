// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geoip

import (
	"errors"
	stdhttp "net/http"
	"testing"

	"github.com/wneessen/waybar-whereto/internal/geobus"
	"github.com/wneessen/waybar-whereto/internal/http"
	"github.com/wneessen/waybar-whereto/internal/logger"
	"github.com/wneessen/waybar-whereto/internal/testhelper"
)

func TestNewGeolocationGeoIPProvider(t *testing.T) {
	t.Run("new GeoIP provider succeeds", func(t *testing.T) {
		provider := testProvider(t, nil)
		if provider.Name() != name {
			t.Errorf("expected provider name to be %s, got %s", name, provider.Name())
		}
	})
	t.Run("GeoIP without http client fails", func(t *testing.T) {
		if _, err := NewGeolocationGeoIPProvider(nil, logger.Discard()); err == nil {
			t.Fatal("expected provider creation to fail")
		}
	})
}

func TestGeolocationGeoIPProvider_locate(t *testing.T) {
	t.Run("locate succeeds", func(t *testing.T) {
		provider := testProvider(t, testhelper.FileResponder(t, "geoip.json", 200, nil))
		coord, err := provider.locate(t.Context())
		if err != nil {
			t.Fatalf("failed to locate: %s", err)
		}
		if !coord.Found {
			t.Fatal("expected coordinate to be found")
		}
		if coord.Lat != 37.5665 || coord.Lon != 126.978 {
			t.Errorf("unexpected coordinate: %s", coord)
		}
		if coord.Acc != geobus.AccuracyCity {
			t.Errorf("expected accuracy to be %d, got %f", geobus.AccuracyCity, coord.Acc)
		}
	})
	t.Run("locate fails on API request", func(t *testing.T) {
		provider := testProvider(t, func(*stdhttp.Request) (*stdhttp.Response, error) {
			return nil, errors.New("intentionally failing")
		})
		if _, err := provider.locate(t.Context()); err == nil {
			t.Fatal("expected locate to fail")
		}
	})
}

func TestAccuracy(t *testing.T) {
	tests := []struct {
		name   string
		result APIResult
		want   float64
	}{
		{"zip code", APIResult{CountryCode: "KR", RegionCode: "11", City: "Seoul", ZipCode: "04524"}, geobus.AccuracyZip},
		{"city", APIResult{CountryCode: "KR", RegionCode: "11", City: "Seoul"}, geobus.AccuracyCity},
		{"region", APIResult{CountryCode: "KR", RegionCode: "11"}, geobus.AccuracyRegion},
		{"country", APIResult{CountryCode: "KR"}, geobus.AccuracyCountry},
		{"nothing", APIResult{}, geobus.AccuracyUnknown},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := accuracy(&tc.result); got != tc.want {
				t.Errorf("expected accuracy to be %f, got %f", tc.want, got)
			}
		})
	}
}

func testProvider(t *testing.T, fn func(*stdhttp.Request) (*stdhttp.Response, error)) *GeolocationGeoIPProvider {
	t.Helper()
	client := http.New(logger.Discard())
	if fn != nil {
		client.Transport = testhelper.MockRoundTripper{Fn: fn}
	}
	provider, err := NewGeolocationGeoIPProvider(client, logger.Discard())
	if err != nil {
		t.Fatalf("failed to create provider: %s", err)
	}
	return provider
}
