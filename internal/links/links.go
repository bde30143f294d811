// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package links builds map service links for recommended places.
package links

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/skip2/go-qrcode"

	"github.com/wneessen/waybar-whereto/internal/places"
)

const (
	KakaoMapURL  = "https://map.kakao.com/link/map/"
	KakaoToURL   = "https://map.kakao.com/link/to/"
	NaverMapURL  = "https://map.naver.com/p/search/"
	GoogleMapURL = "https://www.google.com/maps/search/"
)

// Links holds the map links of a single place.
type Links struct {
	Place  string
	Route  string
	Naver  string
	Google string
}

// For returns the links for a candidate. Place is the provider's own page when it has one.
func For(c places.Candidate) Links {
	point := kakaoPoint(c)
	links := Links{
		Place:  c.URL,
		Route:  KakaoToURL + point,
		Naver:  NaverMapURL + url.PathEscape(naverQuery(c)),
		Google: GoogleMapURL + "?" + googleQuery(c).Encode(),
	}
	if links.Place == "" {
		links.Place = KakaoMapURL + point
	}
	return links
}

// kakaoPoint formats "<name>,<lat>,<lon>". Kakao splits on commas, so they are dropped from the name.
func kakaoPoint(c places.Candidate) string {
	name := strings.ReplaceAll(c.Name, ",", " ")
	return url.PathEscape(name) + "," + formatCoord(c.Coordinate.Lat) + "," + formatCoord(c.Coordinate.Lon)
}

// naverQuery adds the address to the name to disambiguate franchises.
func naverQuery(c places.Candidate) string {
	if address := c.DisplayAddress(); address != "" {
		return c.Name + " " + address
	}
	return c.Name
}

func googleQuery(c places.Candidate) url.Values {
	values := url.Values{}
	values.Set("api", "1")
	if c.Source == "google" && c.ID != "" {
		values.Set("query", c.Name)
		values.Set("query_place_id", c.ID)
		return values
	}
	values.Set("query", fmt.Sprintf("%s,%s", formatCoord(c.Coordinate.Lat), formatCoord(c.Coordinate.Lon)))
	return values
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// QR renders content as a QR code using unicode half blocks, two modules per character row.
func QR(content string) (string, error) {
	code, err := qrcode.New(content, qrcode.Low)
	if err != nil {
		return "", fmt.Errorf("failed to create QR code: %w", err)
	}
	bitmap := code.Bitmap()

	var sb strings.Builder
	for y := 0; y < len(bitmap); y += 2 {
		for x := range bitmap[y] {
			top := bitmap[y][x]
			bottom := y+1 < len(bitmap) && bitmap[y+1][x]
			switch {
			case top && bottom:
				sb.WriteRune('█')
			case top:
				sb.WriteRune('▀')
			case bottom:
				sb.WriteRune('▄')
			default:
				sb.WriteRune(' ')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}
