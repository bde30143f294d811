// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geocode

import (
	"context"
	"errors"
	"strings"
	"testing"
	"testing/synctest"
	"time"

	"github.com/wneessen/waybar-whereto/internal/geobus"
)

const (
	testHitTTL  = time.Hour
	testMissTTL = time.Minute
)

var testCoords = geobus.Coordinate{Lat: 37.5663, Lon: 126.9779}

var testAddress = Address{
	DisplayName:  "서울특별시청, 110, 세종대로, 명동, 중구, 서울특별시, 04524, 대한민국",
	Country:      "대한민국",
	State:        "서울특별시",
	CityDistrict: "중구",
	Suburb:       "명동",
	Postcode:     "04524",
	City:         "서울특별시",
	Street:       "세종대로",
	HouseNumber:  "110",
}

type mockCoder struct {
	reverseCalls int
	searchCalls  int
}

func (c *mockCoder) Name() string { return "mock" }

func (c *mockCoder) Reverse(_ context.Context, coords geobus.Coordinate) (Address, error) {
	c.reverseCalls++
	if coords.Lat == 1 && coords.Lon == -1 {
		return Address{}, errors.New("lookup intentionally failed")
	}
	addr := testAddress
	addr.Latitude = coords.Lat
	addr.Longitude = coords.Lon
	addr.AddressFound = coords.Lat > 30
	return addr, nil
}

func (c *mockCoder) Search(_ context.Context, address string) (geobus.Coordinate, error) {
	c.searchCalls++
	if address == "invalid" {
		return geobus.Coordinate{}, errors.New("lookup intentionally failed")
	}
	coords := testCoords
	coords.Found = strings.Contains(address, "City Hall")
	return coords, nil
}

func TestNewCachedGeocoder(t *testing.T) {
	coder := NewCachedGeocoder(&mockCoder{}, testHitTTL, testMissTTL)
	if coder.Name() != "geocoder cache using mock" {
		t.Errorf("expected geocoder name to be %q, got %q", "geocoder cache using mock", coder.Name())
	}
}

func TestCachedGeocoder_Reverse(t *testing.T) {
	t.Run("second lookup hits the cache", func(t *testing.T) {
		mock := &mockCoder{}
		coder := NewCachedGeocoder(mock, testHitTTL, testMissTTL)
		addr, err := coder.Reverse(t.Context(), testCoords)
		if err != nil {
			t.Fatal(err)
		}
		if !addr.AddressFound || addr.CacheHit {
			t.Fatalf("expected found address without cache hit, got %+v", addr)
		}
		addr, err = coder.Reverse(t.Context(), testCoords)
		if err != nil {
			t.Fatal(err)
		}
		if !addr.CacheHit {
			t.Error("expected cached result")
		}
		if addr.DisplayName != testAddress.DisplayName {
			t.Errorf("expected address to be %q, got %q", testAddress.DisplayName, addr.DisplayName)
		}
		if mock.reverseCalls != 1 {
			t.Errorf("expected 1 upstream call, got %d", mock.reverseCalls)
		}
	})
	t.Run("nearby coordinates share a cache entry", func(t *testing.T) {
		coder := NewCachedGeocoder(&mockCoder{}, testHitTTL, testMissTTL)
		if _, err := coder.Reverse(t.Context(), testCoords); err != nil {
			t.Fatal(err)
		}
		for _, c := range []geobus.Coordinate{
			{Lat: testCoords.Lat + 0.002, Lon: testCoords.Lon - 0.002},
			{Lat: testCoords.Lat - 0.001, Lon: testCoords.Lon + 0.003},
		} {
			addr, err := coder.Reverse(t.Context(), c)
			if err != nil {
				t.Fatal(err)
			}
			if !addr.CacheHit {
				t.Errorf("expected cached result for %s", c)
			}
		}
	})
	t.Run("lookup errors are not cached", func(t *testing.T) {
		mock := &mockCoder{}
		coder := NewCachedGeocoder(mock, testHitTTL, testMissTTL)
		for range 2 {
			if _, err := coder.Reverse(t.Context(), geobus.Coordinate{Lat: 1, Lon: -1}); err == nil {
				t.Fatal("expected an error")
			}
		}
		if mock.reverseCalls != 2 {
			t.Errorf("expected 2 upstream calls, got %d", mock.reverseCalls)
		}
	})
	t.Run("misses expire after the miss TTL", func(t *testing.T) {
		synctest.Test(t, func(t *testing.T) {
			mock := &mockCoder{}
			coder := NewCachedGeocoder(mock, testHitTTL, testMissTTL)
			sea := geobus.Coordinate{Lat: 20, Lon: 125}
			if addr, _ := coder.Reverse(t.Context(), sea); addr.AddressFound {
				t.Fatal("expected address to be not found")
			}
			if addr, _ := coder.Reverse(t.Context(), sea); !addr.CacheHit {
				t.Error("expected cached miss")
			}
			time.Sleep(testMissTTL + time.Second)
			if addr, _ := coder.Reverse(t.Context(), sea); addr.CacheHit {
				t.Error("expected miss entry to be expired")
			}
		})
	})
	t.Run("hits expire after the hit TTL", func(t *testing.T) {
		synctest.Test(t, func(t *testing.T) {
			coder := NewCachedGeocoder(&mockCoder{}, testHitTTL, testMissTTL)
			_, _ = coder.Reverse(t.Context(), testCoords)
			time.Sleep(testHitTTL - time.Second)
			if addr, _ := coder.Reverse(t.Context(), testCoords); !addr.CacheHit {
				t.Error("expected cached result before TTL")
			}
			time.Sleep(2 * time.Second)
			if addr, _ := coder.Reverse(t.Context(), testCoords); addr.CacheHit {
				t.Error("expected cache miss after TTL")
			}
		})
	})
}

func TestCachedGeocoder_Search(t *testing.T) {
	t.Run("search results are cached case-insensitively", func(t *testing.T) {
		mock := &mockCoder{}
		coder := NewCachedGeocoder(mock, testHitTTL, testMissTTL)
		coords, err := coder.Search(t.Context(), "Seoul City Hall")
		if err != nil {
			t.Fatal(err)
		}
		if !coords.Found || coords.CacheHit {
			t.Fatalf("expected found coordinate without cache hit, got %+v", coords)
		}
		coords, err = coder.Search(t.Context(), "  seoul city hall ")
		if err != nil {
			t.Fatal(err)
		}
		if !coords.CacheHit {
			t.Error("expected cached result")
		}
		if mock.searchCalls != 1 {
			t.Errorf("expected 1 upstream call, got %d", mock.searchCalls)
		}
	})
	t.Run("search errors are returned", func(t *testing.T) {
		coder := NewCachedGeocoder(&mockCoder{}, testHitTTL, testMissTTL)
		if _, err := coder.Search(t.Context(), "invalid"); err == nil {
			t.Fatal("expected an error")
		}
	})
}

func TestCachedGeocoder_Sweep(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		coder := NewCachedGeocoder(&mockCoder{}, testHitTTL, testMissTTL)
		_, _ = coder.Reverse(t.Context(), testCoords)
		_, _ = coder.Reverse(t.Context(), geobus.Coordinate{Lat: 20, Lon: 125})
		_, _ = coder.Search(t.Context(), "nowhere")
		if n := coder.Sweep(); n != 0 {
			t.Errorf("expected nothing to be swept, got %d", n)
		}
		time.Sleep(testMissTTL + time.Second)
		if n := coder.Sweep(); n != 2 {
			t.Errorf("expected 2 expired misses to be swept, got %d", n)
		}
	})
}

func TestAddress_Region(t *testing.T) {
	tests := []struct {
		name string
		addr Address
		want string
	}{
		{"district wins", testAddress, "중구"},
		{"suburb fallback", Address{Suburb: "Myeong-dong", City: "Seoul"}, "Myeong-dong"},
		{"city fallback", Address{City: "Jeju"}, "Jeju"},
		{"state fallback", Address{State: "Gangwon"}, "Gangwon"},
		{"empty", Address{}, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.addr.Region(); got != tc.want {
				t.Errorf("expected region to be %q, got %q", tc.want, got)
			}
		})
	}
}
