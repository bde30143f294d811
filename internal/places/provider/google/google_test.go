// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package google

import (
	"errors"
	stdhttp "net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/wneessen/waybar-whereto/internal/geobus"
	"github.com/wneessen/waybar-whereto/internal/http"
	"github.com/wneessen/waybar-whereto/internal/logger"
	"github.com/wneessen/waybar-whereto/internal/places"
	"github.com/wneessen/waybar-whereto/internal/testhelper"
)

const testKey = "AIza-test-key"

var testQuery = places.Query{
	Coordinate:   geobus.Coordinate{Lat: 37.5663, Lon: 126.9779},
	RadiusMeters: 3000,
	Kind:         places.KindFood,
	Size:         15,
}

func TestNew(t *testing.T) {
	t.Run("new google provider succeeds", func(t *testing.T) {
		provider := testProvider(t, nil)
		if provider.Name() != name {
			t.Errorf("expected name to be %q, got %q", name, provider.Name())
		}
	})
	t.Run("missing api key fails", func(t *testing.T) {
		if _, err := New(http.New(logger.Discard()), "", "ko"); err == nil {
			t.Error("expected provider creation to fail")
		}
	})
	t.Run("missing http client fails", func(t *testing.T) {
		if _, err := New(nil, testKey, "ko"); err == nil {
			t.Error("expected provider creation to fail")
		}
	})
}

func TestGoogle_Category(t *testing.T) {
	t.Run("nearby search maps results to candidates", func(t *testing.T) {
		var got url.Values
		var gotPath string
		inspect := func(req *stdhttp.Request) {
			got = req.URL.Query()
			gotPath = req.URL.Path
		}
		provider := testProvider(t, testhelper.FileResponder(t, "google_nearby.json", 200, inspect))
		candidates, err := provider.Category(t.Context(), testQuery)
		if err != nil {
			t.Fatalf("nearby search failed: %s", err)
		}
		// the nameless result is skipped
		if len(candidates) != 4 {
			t.Fatalf("expected 4 candidates, got %d", len(candidates))
		}

		first := candidates[0]
		if first.Name != "Eulji Myeonok" || first.Kind != places.KindFood {
			t.Errorf("unexpected first candidate: %+v", first)
		}
		if first.Category != TypeRestaurant {
			t.Errorf("expected category to be %q, got %q", TypeRestaurant, first.Category)
		}
		if first.URL != PlaceURL+"ChIJ-eulji-myeonok" {
			t.Errorf("unexpected place URL: %s", first.URL)
		}
		if first.DistanceMeters < 1100 || first.DistanceMeters > 1300 {
			t.Errorf("expected distance of about 1.2km, got %f", first.DistanceMeters)
		}
		if candidates[1].Category != TypeRestaurant {
			t.Errorf("expected generic types to be skipped, got %q", candidates[1].Category)
		}
		if candidates[2].Kind != places.KindCafe {
			t.Errorf("expected cafe kind for a cafe-restaurant, got %q", candidates[2].Kind)
		}
		if candidates[3].Kind != places.KindFood || candidates[3].Address != "Namdaemun Market, Jung-gu, Seoul" {
			t.Errorf("unexpected takeaway candidate: %+v", candidates[3])
		}

		if gotPath != "/maps/api/place/nearbysearch/json" {
			t.Errorf("unexpected endpoint path %q", gotPath)
		}
		checks := map[string]string{
			"location": "37.566300,126.977900",
			"radius":   "3000",
			"type":     "restaurant",
			"key":      testKey,
			"language": "ko",
		}
		for k, v := range checks {
			if got.Get(k) != v {
				t.Errorf("expected query parameter %s to be %q, got %q", k, v, got.Get(k))
			}
		}
	})
	t.Run("result size is limited", func(t *testing.T) {
		provider := testProvider(t, testhelper.FileResponder(t, "google_nearby.json", 200, nil))
		q := testQuery
		q.Size = 2
		candidates, err := provider.Category(t.Context(), q)
		if err != nil {
			t.Fatalf("nearby search failed: %s", err)
		}
		if len(candidates) != 2 {
			t.Errorf("expected 2 candidates, got %d", len(candidates))
		}
	})
	t.Run("zero results is not an error", func(t *testing.T) {
		provider := testProvider(t, testhelper.FileResponder(t, "google_zero.json", 200, nil))
		candidates, err := provider.Category(t.Context(), testQuery)
		if err != nil {
			t.Fatalf("nearby search failed: %s", err)
		}
		if len(candidates) != 0 {
			t.Errorf("expected no candidates, got %d", len(candidates))
		}
	})
	t.Run("denied requests fail", func(t *testing.T) {
		provider := testProvider(t, testhelper.FileResponder(t, "google_denied.json", 200, nil))
		_, err := provider.Category(t.Context(), testQuery)
		if err == nil {
			t.Fatal("expected nearby search to fail")
		}
		if !strings.Contains(err.Error(), "REQUEST_DENIED") {
			t.Errorf("expected error to contain the API status, got %s", err)
		}
	})
	t.Run("non-200 status fails", func(t *testing.T) {
		provider := testProvider(t, testhelper.FileResponder(t, "google_zero.json", 500, nil))
		if _, err := provider.Category(t.Context(), testQuery); err == nil {
			t.Fatal("expected nearby search to fail")
		}
	})
	t.Run("unsupported kind fails", func(t *testing.T) {
		provider := testProvider(t, nil)
		q := testQuery
		q.Kind = places.KindUnknown
		if _, err := provider.Category(t.Context(), q); !errors.Is(err, ErrUnsupportedKind) {
			t.Errorf("expected error to be %s, got %v", ErrUnsupportedKind, err)
		}
	})
}

func TestGoogle_Keyword(t *testing.T) {
	t.Run("text search sends the query", func(t *testing.T) {
		var got url.Values
		var gotPath string
		inspect := func(req *stdhttp.Request) {
			got = req.URL.Query()
			gotPath = req.URL.Path
		}
		provider := testProvider(t, testhelper.FileResponder(t, "google_nearby.json", 200, inspect))
		q := testQuery
		q.Keyword = "Jung-gu restaurant"
		if _, err := provider.Keyword(t.Context(), q); err != nil {
			t.Fatalf("text search failed: %s", err)
		}
		if gotPath != "/maps/api/place/textsearch/json" {
			t.Errorf("unexpected endpoint path %q", gotPath)
		}
		if got.Get("query") != "Jung-gu restaurant" || got.Has("type") {
			t.Errorf("unexpected query parameters: %v", got)
		}
	})
	t.Run("empty keyword fails", func(t *testing.T) {
		provider := testProvider(t, nil)
		if _, err := provider.Keyword(t.Context(), testQuery); err == nil {
			t.Fatal("expected text search to fail")
		}
	})
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		types []string
		want  places.Kind
	}{
		{[]string{"restaurant", "food"}, places.KindFood},
		{[]string{"restaurant", "cafe"}, places.KindCafe},
		{[]string{"meal_delivery"}, places.KindFood},
		{[]string{"bar", "point_of_interest"}, places.KindUnknown},
		{nil, places.KindUnknown},
	}
	for _, tc := range tests {
		t.Run(strings.Join(tc.types, ","), func(t *testing.T) {
			if got := KindOf(tc.types); got != tc.want {
				t.Errorf("expected kind %q, got %q", tc.want, got)
			}
		})
	}
}

func testProvider(t *testing.T, fn func(*stdhttp.Request) (*stdhttp.Response, error)) *Google {
	t.Helper()
	client := http.New(logger.Discard())
	if fn != nil {
		client.Transport = testhelper.MockRoundTripper{Fn: fn}
	}
	provider, err := New(client, testKey, "ko")
	if err != nil {
		t.Fatalf("failed to create provider: %s", err)
	}
	return provider
}
