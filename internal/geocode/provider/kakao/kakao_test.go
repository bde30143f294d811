// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package kakao

import (
	stdhttp "net/http"
	"strings"
	"testing"

	"github.com/wneessen/waybar-whereto/internal/geobus"
	"github.com/wneessen/waybar-whereto/internal/http"
	"github.com/wneessen/waybar-whereto/internal/logger"
	"github.com/wneessen/waybar-whereto/internal/testhelper"
)

const testKey = "0123456789abcdef"

var cityHall = geobus.Coordinate{Lat: 37.5663, Lon: 126.9779}

func TestNew(t *testing.T) {
	t.Run("new kakao geocoder succeeds", func(t *testing.T) {
		coder := testCoder(t, nil)
		if coder.Name() != name {
			t.Errorf("expected name to be %q, got %q", name, coder.Name())
		}
	})
	t.Run("missing api key fails", func(t *testing.T) {
		if _, err := New(http.New(logger.Discard()), ""); err == nil {
			t.Error("expected geocoder creation to fail")
		}
	})
	t.Run("missing http client fails", func(t *testing.T) {
		if _, err := New(nil, testKey); err == nil {
			t.Error("expected geocoder creation to fail")
		}
	})
}

func TestKakao_Reverse(t *testing.T) {
	t.Run("administrative region is preferred", func(t *testing.T) {
		var gotAuth, gotX, gotY string
		inspect := func(req *stdhttp.Request) {
			gotAuth = req.Header.Get("Authorization")
			gotX = req.URL.Query().Get("x")
			gotY = req.URL.Query().Get("y")
		}
		coder := testCoder(t, testhelper.FileResponder(t, "kakao_region.json", 200, inspect))
		addr, err := coder.Reverse(t.Context(), cityHall)
		if err != nil {
			t.Fatal(err)
		}
		if !addr.AddressFound {
			t.Fatal("expected address to be found")
		}
		if addr.Suburb != "명동" {
			t.Errorf("expected suburb to be %q, got %q", "명동", addr.Suburb)
		}
		if addr.Region() != "중구" {
			t.Errorf("expected region to be %q, got %q", "중구", addr.Region())
		}
		if gotAuth != "KakaoAK "+testKey {
			t.Errorf("expected authorization header %q, got %q", "KakaoAK "+testKey, gotAuth)
		}
		if gotX != "126.977900" || gotY != "37.566300" {
			t.Errorf("expected x/y to be lon/lat, got x=%s y=%s", gotX, gotY)
		}
	})
	t.Run("no regions means not found", func(t *testing.T) {
		coder := testCoder(t, testhelper.FileResponder(t, "kakao_region_empty.json", 200, nil))
		addr, err := coder.Reverse(t.Context(), geobus.Coordinate{Lat: 34.0, Lon: 128.5})
		if err != nil {
			t.Fatal(err)
		}
		if addr.AddressFound {
			t.Error("expected address to be not found")
		}
	})
	t.Run("api errors are returned", func(t *testing.T) {
		coder := testCoder(t, testhelper.FileResponder(t, "kakao_unauthorized.json", 401, nil))
		_, err := coder.Reverse(t.Context(), cityHall)
		if err == nil {
			t.Fatal("expected reverse geocoding to fail")
		}
		if !strings.Contains(err.Error(), "cannot find appkey") {
			t.Errorf("expected error to contain the API message, got %s", err)
		}
	})
}

func TestKakao_Search(t *testing.T) {
	t.Run("address search succeeds", func(t *testing.T) {
		coder := testCoder(t, testhelper.FileResponder(t, "kakao_address.json", 200, nil))
		coords, err := coder.Search(t.Context(), "세종대로 110")
		if err != nil {
			t.Fatal(err)
		}
		if !coords.Found {
			t.Fatal("expected coordinates to be found")
		}
		if geobus.Round(coords.Lat, 4) != 37.5663 || geobus.Round(coords.Lon, 4) != 126.9778 {
			t.Errorf("unexpected coordinates: %s", coords)
		}
	})
	t.Run("empty result is not found", func(t *testing.T) {
		coder := testCoder(t, testhelper.FileResponder(t, "kakao_region_empty.json", 200, nil))
		coords, err := coder.Search(t.Context(), "nowhere")
		if err != nil {
			t.Fatal(err)
		}
		if coords.Found {
			t.Error("expected coordinates to be not found")
		}
	})
}

func testCoder(t *testing.T, fn func(req *stdhttp.Request) (*stdhttp.Response, error)) *Kakao {
	t.Helper()
	client := http.New(logger.Discard())
	if fn != nil {
		client.Transport = testhelper.MockRoundTripper{Fn: fn}
	}
	coder, err := New(client, testKey)
	if err != nil {
		t.Fatalf("failed to create geocoder: %s", err)
	}
	return coder
}
