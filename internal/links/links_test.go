// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package links

import (
	"strings"
	"testing"

	"github.com/wneessen/waybar-whereto/internal/geobus"
	"github.com/wneessen/waybar-whereto/internal/places"
)

var noodles = places.Candidate{
	ID:          "10332413",
	Name:        "을지면옥",
	RoadAddress: "서울 중구 충무로14길 2-1",
	URL:         "http://place.map.kakao.com/10332413",
	Coordinate:  geobus.Coordinate{Lat: 37.566201, Lon: 126.991426},
	Source:      "kakao",
}

func TestFor(t *testing.T) {
	t.Run("kakao candidate keeps its place page", func(t *testing.T) {
		links := For(noodles)
		if links.Place != noodles.URL {
			t.Errorf("expected place link %q, got %q", noodles.URL, links.Place)
		}
		want := KakaoToURL + "%EC%9D%84%EC%A7%80%EB%A9%B4%EC%98%A5,37.566201,126.991426"
		if links.Route != want {
			t.Errorf("expected route link %q, got %q", want, links.Route)
		}
		if !strings.HasPrefix(links.Naver, NaverMapURL) || !strings.Contains(links.Naver, "%20") {
			t.Errorf("unexpected naver link %q", links.Naver)
		}
		if links.Google != GoogleMapURL+"?api=1&query=37.566201%2C126.991426" {
			t.Errorf("unexpected google link %q", links.Google)
		}
	})
	t.Run("candidate without page links to the kakao map", func(t *testing.T) {
		c := noodles
		c.URL = ""
		c.Name = "Kim, Lee & Park"
		links := For(c)
		if links.Place != KakaoMapURL+"Kim%20%20Lee%20&%20Park,37.566201,126.991426" {
			t.Errorf("unexpected place link %q", links.Place)
		}
	})
	t.Run("google candidate links by place id", func(t *testing.T) {
		c := noodles
		c.Source = "google"
		c.ID = "ChIJ-eulji"
		links := For(c)
		if !strings.Contains(links.Google, "query_place_id=ChIJ-eulji") {
			t.Errorf("expected place id in google link, got %q", links.Google)
		}
	})
}

func TestQR(t *testing.T) {
	qr, err := QR("http://place.map.kakao.com/10332413")
	if err != nil {
		t.Fatalf("failed to render QR code: %s", err)
	}
	lines := strings.Split(strings.TrimSuffix(qr, "\n"), "\n")
	if len(lines) < 10 {
		t.Fatalf("expected a multi-line QR code, got %d lines", len(lines))
	}
	width := len([]rune(lines[0]))
	for i, line := range lines {
		if len([]rune(line)) != width {
			t.Fatalf("line %d has width %d, expected %d", i, len([]rune(line)), width)
		}
	}
	if !strings.ContainsRune(qr, '█') {
		t.Error("expected QR code to contain full blocks")
	}
}
