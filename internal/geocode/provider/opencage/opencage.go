// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package opencage

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
	APIEndpoint = "https://api.opencagedata.com/geocode/v1/json"
	APITimeout  = time.Second * 10
	name        = "opencage"

	// Confidence 7 and above is roughly street level, lower values only match a town or region.
	streetConfidence = 7
)

type OpenCage struct {
	apikey string
	http   *http.Client
	lang   language.Tag
}

type Response struct {
	Results      []Result `json:"results"`
	Status       Status   `json:"status"`
	TotalResults int      `json:"total_results"`
}

type Status struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type Result struct {
	Components  Components `json:"components"`
	Confidence  int        `json:"confidence"`
	DisplayName string     `json:"formatted"`
	Geometry    Geometry   `json:"geometry"`
}

type Components struct {
	NormalizedCity string `json:"_normalized_city"`
	City           string `json:"city"`
	CityDistrict   string `json:"city_district"`
	Borough        string `json:"borough"`
	Country        string `json:"country"`
	HouseNumber    string `json:"house_number"`
	Municipality   string `json:"municipality"`
	Postcode       string `json:"postcode"`
	Quarter        string `json:"quarter"`
	Road           string `json:"road"`
	State          string `json:"state"`
	Province       string `json:"province"`
	Suburb         string `json:"suburb"`
	Town           string `json:"town"`
	Village        string `json:"village"`
}

type Geometry struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lng"`
}

func New(client *http.Client, lang language.Tag, apikey string) (*OpenCage, error) {
	if client == nil {
		return nil, errors.New("http client is required")
	}
	if apikey == "" {
		return nil, errors.New("opencage geocoder requires an API key")
	}
	return &OpenCage{apikey: apikey, lang: lang, http: client}, nil
}

func (o *OpenCage) Name() string {
	return name
}

// Reverse resolves the address of coords. Coordinates without any result, e.g. in open water,
// return an address with AddressFound unset.
func (o *OpenCage) Reverse(ctx context.Context, coords geobus.Coordinate) (geocode.Address, error) {
	query := o.query(strconv.FormatFloat(coords.Lat, 'f', 6, 64) + "," +
		strconv.FormatFloat(coords.Lon, 'f', 6, 64))
	response, err := o.get(ctx, query)
	if err != nil {
		return geocode.Address{}, err
	}
	if len(response.Results) == 0 {
		return geocode.Address{Latitude: coords.Lat, Longitude: coords.Lon}, nil
	}

	result := response.Results[0]
	comp := result.Components
	return geocode.Address{
		AddressFound: true,
		Latitude:     result.Geometry.Lat,
		Longitude:    result.Geometry.Lon,
		DisplayName:  result.DisplayName,
		Country:      comp.Country,
		State:        firstOf(comp.State, comp.Province),
		Municipality: comp.Municipality,
		CityDistrict: firstOf(comp.CityDistrict, comp.Borough),
		Postcode:     comp.Postcode,
		City:         firstOf(comp.Village, comp.Town, comp.NormalizedCity, comp.City),
		Suburb:       firstOf(comp.Suburb, comp.Quarter),
		Street:       comp.Road,
		HouseNumber:  comp.HouseNumber,
	}, nil
}

// Search returns the coordinate of the best match for address.
func (o *OpenCage) Search(ctx context.Context, address string) (geobus.Coordinate, error) {
	query := o.query(address)
	query.Set("limit", "1")
	response, err := o.get(ctx, query)
	if err != nil {
		return geobus.Coordinate{}, err
	}
	if len(response.Results) == 0 {
		return geobus.Coordinate{}, nil
	}

	result := response.Results[0]
	coords := geobus.Coordinate{
		Lat:   result.Geometry.Lat,
		Lon:   result.Geometry.Lon,
		Acc:   geobus.AccuracyCity,
		Found: true,
	}
	if result.Confidence >= streetConfidence {
		coords.Acc = geobus.AccuracyZip
	}
	return coords, nil
}

func (o *OpenCage) query(q string) url.Values {
	query := url.Values{}
	query.Set("key", o.apikey)
	query.Set("q", q)
	query.Set("no_annotations", "1")
	query.Set("no_record", "1")
	query.Set("language", o.lang.String())
	return query
}

func (o *OpenCage) get(ctx context.Context, query url.Values) (Response, error) {
	var response Response
	code, err := o.http.GetWithTimeout(ctx, APIEndpoint, &response, query, nil, APITimeout)
	if err != nil {
		return response, fmt.Errorf("failed to retrieve address details from OpenCage API: %w", err)
	}
	if code != 200 {
		return response, fmt.Errorf("OpenCage API returned status %d: %s", code, response.Status.Message)
	}
	return response, nil
}

func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
