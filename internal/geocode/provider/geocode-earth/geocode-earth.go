// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geocodeearth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/text/language"

	"github.com/wneessen/waybar-whereto/internal/geobus"
	"github.com/wneessen/waybar-whereto/internal/geocode"
	"github.com/wneessen/waybar-whereto/internal/http"
)

const (
	APIReverseEndpoint = "https://api.geocode.earth/v1/reverse"
	APISearchEndpoint  = "https://api.geocode.earth/v1/search"
	APITimeout         = time.Second * 10
	name               = "geocode-earth"
)

type GeocodeEarth struct {
	apikey string
	http   *http.Client
	lang   language.Tag
}

type Response struct {
	Features []Feature `json:"features"`
	Type     string    `json:"type"`
}

type Feature struct {
	Geometry   Geometry   `json:"geometry"`
	Properties Properties `json:"properties"`
	Type       string     `json:"type"`
}

// Geometry is a GeoJSON point, Coordinates holds longitude first.
type Geometry struct {
	Coordinates []float64 `json:"coordinates"`
	Type        string    `json:"type"`
}

type Properties struct {
	DisplayName   string `json:"label"`
	Layer         string `json:"layer"`
	Locality      string `json:"locality"`
	County        string `json:"county"`
	Borough       string `json:"borough"`
	LocalAdmin    string `json:"localadmin"`
	Country       string `json:"country"`
	HouseNumber   string `json:"housenumber"`
	Neighbourhood string `json:"neighbourhood"`
	Postcode      string `json:"postalcode"`
	Street        string `json:"street"`
	Region        string `json:"region"`
}

func New(client *http.Client, lang language.Tag, apikey string) (*GeocodeEarth, error) {
	if client == nil {
		return nil, errors.New("http client is required")
	}
	if apikey == "" {
		return nil, errors.New("geocode.earth geocoder requires an API key")
	}
	return &GeocodeEarth{apikey: apikey, lang: lang, http: client}, nil
}

func (g *GeocodeEarth) Name() string {
	return name
}

func (g *GeocodeEarth) Reverse(ctx context.Context, coords geobus.Coordinate) (geocode.Address, error) {
	query := g.query()
	query.Set("point.lat", strconv.FormatFloat(coords.Lat, 'f', 6, 64))
	query.Set("point.lon", strconv.FormatFloat(coords.Lon, 'f', 6, 64))
	query.Set("size", "1")

	response, err := g.get(ctx, APIReverseEndpoint, query)
	if err != nil {
		return geocode.Address{}, err
	}
	if len(response.Features) < 1 {
		return geocode.Address{Latitude: coords.Lat, Longitude: coords.Lon}, nil
	}

	props := response.Features[0].Properties
	return geocode.Address{
		AddressFound: true,
		Latitude:     coords.Lat,
		Longitude:    coords.Lon,
		DisplayName:  props.DisplayName,
		Country:      props.Country,
		State:        props.Region,
		Municipality: props.LocalAdmin,
		CityDistrict: firstOf(props.Borough, props.County),
		Postcode:     props.Postcode,
		City:         props.Locality,
		Suburb:       props.Neighbourhood,
		Street:       props.Street,
		HouseNumber:  props.HouseNumber,
	}, nil
}

func (g *GeocodeEarth) Search(ctx context.Context, address string) (geobus.Coordinate, error) {
	query := g.query()
	query.Set("text", address)
	query.Set("size", "1")

	response, err := g.get(ctx, APISearchEndpoint, query)
	if err != nil {
		return geobus.Coordinate{}, err
	}
	if len(response.Features) < 1 {
		return geobus.Coordinate{}, nil
	}

	feature := response.Features[0]
	if len(feature.Geometry.Coordinates) != 2 {
		return geobus.Coordinate{}, fmt.Errorf("invalid geometry in geocode.earth API response: %v",
			feature.Geometry.Coordinates)
	}
	return geobus.Coordinate{
		Lat:   feature.Geometry.Coordinates[1],
		Lon:   feature.Geometry.Coordinates[0],
		Acc:   layerAccuracy(feature.Properties.Layer),
		Found: true,
	}, nil
}

func (g *GeocodeEarth) query() url.Values {
	query := url.Values{}
	query.Set("api_key", g.apikey)
	query.Set("lang", g.lang.String())
	return query
}

func (g *GeocodeEarth) get(ctx context.Context, endpoint string, query url.Values) (Response, error) {
	var response Response
	code, err := g.http.GetWithTimeout(ctx, endpoint, &response, query, nil, APITimeout)
	if err != nil {
		return response, fmt.Errorf("failed to retrieve address details from geocode.earth API: %w", err)
	}
	if code != 200 {
		return response, fmt.Errorf("received non-positive response code from geocode.earth API: %d", code)
	}
	return response, nil
}

func layerAccuracy(layer string) float64 {
	switch layer {
	case "venue", "address", "street":
		return geobus.AccuracyZip
	case "neighbourhood", "locality", "borough", "localadmin":
		return geobus.AccuracyCity
	case "county", "region", "macroregion":
		return geobus.AccuracyRegion
	case "country":
		return geobus.AccuracyCountry
	}
	return geobus.AccuracyUnknown
}

func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
