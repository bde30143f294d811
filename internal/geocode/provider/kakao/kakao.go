// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package kakao

import (
	"context"
	"errors"
	"fmt"
	stdhttp "net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/wneessen/waybar-whereto/internal/geobus"
	"github.com/wneessen/waybar-whereto/internal/geocode"
	"github.com/wneessen/waybar-whereto/internal/http"
)

const (
	APIReverseEndpoint = "https://dapi.kakao.com/v2/local/geo/coord2regioncode.json"
	APISearchEndpoint  = "https://dapi.kakao.com/v2/local/search/address.json"
	APITimeout         = time.Second * 10
	name               = "kakao"

	// regionTypeAdministrative marks administrative dong regions ("H"), which are what people use
	// when they talk about neighborhoods. Legal dong regions are "B".
	regionTypeAdministrative = "H"
)

type Kakao struct {
	http   *http.Client
	apikey string
}

type apiError struct {
	ErrorType string `json:"errorType"`
	Message   string `json:"message"`
}

type RegionResult struct {
	apiError
	Documents []Region `json:"documents"`
}

type Region struct {
	RegionType  string  `json:"region_type"`
	AddressName string  `json:"address_name"`
	Depth1      string  `json:"region_1depth_name"`
	Depth2      string  `json:"region_2depth_name"`
	Depth3      string  `json:"region_3depth_name"`
	Code        string  `json:"code"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
}

type SearchResult struct {
	apiError
	Documents []struct {
		AddressName string `json:"address_name"`
		AddressType string `json:"address_type"`
		X           string `json:"x"`
		Y           string `json:"y"`
	} `json:"documents"`
}

func New(client *http.Client, apikey string) (*Kakao, error) {
	if client == nil {
		return nil, errors.New("http client is required")
	}
	if apikey == "" {
		return nil, errors.New("kakao REST API key is required")
	}
	return &Kakao{http: client, apikey: apikey}, nil
}

func (k *Kakao) Name() string {
	return name
}

func (k *Kakao) Reverse(ctx context.Context, coords geobus.Coordinate) (geocode.Address, error) {
	var result RegionResult
	query := url.Values{}
	query.Set("x", strconv.FormatFloat(coords.Lon, 'f', 6, 64))
	query.Set("y", strconv.FormatFloat(coords.Lat, 'f', 6, 64))

	code, err := k.http.GetWithTimeout(ctx, APIReverseEndpoint, &result, query, k.headers(), APITimeout)
	if err != nil {
		return geocode.Address{}, fmt.Errorf("failed to fetch region details from Kakao API: %w", err)
	}
	if code != stdhttp.StatusOK {
		return geocode.Address{}, apiFailure(code, result.apiError)
	}
	if len(result.Documents) == 0 {
		return geocode.Address{Latitude: coords.Lat, Longitude: coords.Lon}, nil
	}

	region := result.Documents[0]
	for _, doc := range result.Documents {
		if doc.RegionType == regionTypeAdministrative {
			region = doc
			break
		}
	}
	return geocode.Address{
		AddressFound: true,
		Latitude:     coords.Lat,
		Longitude:    coords.Lon,
		DisplayName:  region.AddressName,
		Country:      "대한민국",
		State:        region.Depth1,
		City:         region.Depth1,
		CityDistrict: region.Depth2,
		Suburb:       region.Depth3,
	}, nil
}

func (k *Kakao) Search(ctx context.Context, address string) (geobus.Coordinate, error) {
	var result SearchResult
	query := url.Values{}
	query.Set("query", address)
	query.Set("size", "1")

	code, err := k.http.GetWithTimeout(ctx, APISearchEndpoint, &result, query, k.headers(), APITimeout)
	if err != nil {
		return geobus.Coordinate{}, fmt.Errorf("failed to fetch address details from Kakao API: %w", err)
	}
	if code != stdhttp.StatusOK {
		return geobus.Coordinate{}, apiFailure(code, result.apiError)
	}
	if len(result.Documents) == 0 {
		return geobus.Coordinate{}, nil
	}

	coords := geobus.Coordinate{Found: true, Acc: geobus.AccuracyZip}
	coords.Lon, err = strconv.ParseFloat(result.Documents[0].X, 64)
	if err != nil {
		return geobus.Coordinate{}, fmt.Errorf("failed to parse longitude from Kakao API response: %w", err)
	}
	coords.Lat, err = strconv.ParseFloat(result.Documents[0].Y, 64)
	if err != nil {
		return geobus.Coordinate{}, fmt.Errorf("failed to parse latitude from Kakao API response: %w", err)
	}
	return coords, nil
}

func (k *Kakao) headers() map[string]string {
	return map[string]string{"Authorization": "KakaoAK " + k.apikey}
}

func apiFailure(code int, apiErr apiError) error {
	if apiErr.Message != "" {
		return fmt.Errorf("kakao API returned status %d: %s: %s", code, apiErr.ErrorType, apiErr.Message)
	}
	return fmt.Errorf("kakao API returned status %d", code)
}
