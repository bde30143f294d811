// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package google

import (
	"context"
	"errors"
	"fmt"
	stdhttp "net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/wneessen/waybar-whereto/internal/geobus"
	"github.com/wneessen/waybar-whereto/internal/http"
	"github.com/wneessen/waybar-whereto/internal/places"
)

const (
	APINearbyEndpoint = "https://maps.googleapis.com/maps/api/place/nearbysearch/json"
	APITextEndpoint   = "https://maps.googleapis.com/maps/api/place/textsearch/json"
	APITimeout        = time.Second * 10
	PlaceURL          = "https://www.google.com/maps/place/?q=place_id:"
	name              = "google"

	// Nearby search accepts up to 50km and returns at most 20 results per page.
	maxRadius = 50000
	maxSize   = 20

	TypeRestaurant = "restaurant"
	TypeCafe       = "cafe"

	statusOK          = "OK"
	statusZeroResults = "ZERO_RESULTS"
)

var ErrUnsupportedKind = errors.New("place kind is not supported by google")

// genericTypes are place types that say nothing about the cuisine.
var genericTypes = map[string]bool{
	"point_of_interest": true,
	"establishment":     true,
	"food":              true,
	"store":             true,
}

type Google struct {
	http   *http.Client
	apikey string
	lang   string
}

type Response struct {
	Status       string   `json:"status"`
	ErrorMessage string   `json:"error_message"`
	Results      []Result `json:"results"`
}

type Result struct {
	PlaceID          string   `json:"place_id"`
	Name             string   `json:"name"`
	Types            []string `json:"types"`
	Vicinity         string   `json:"vicinity"`
	FormattedAddress string   `json:"formatted_address"`
	Rating           float64  `json:"rating"`
	Geometry         struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
}

func New(client *http.Client, apikey, lang string) (*Google, error) {
	if client == nil {
		return nil, errors.New("http client is required")
	}
	if apikey == "" {
		return nil, errors.New("google places API key is required")
	}
	return &Google{http: client, apikey: apikey, lang: lang}, nil
}

func (g *Google) Name() string {
	return name
}

// Category runs a nearby search restricted to the place type of the query's kind.
func (g *Google) Category(ctx context.Context, query places.Query) ([]places.Candidate, error) {
	placeType, ok := TypeOf(query.Kind)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedKind, query.Kind)
	}
	values := g.baseQuery(query)
	values.Set("type", placeType)
	return g.search(ctx, APINearbyEndpoint, query, values)
}

func (g *Google) Keyword(ctx context.Context, query places.Query) ([]places.Candidate, error) {
	if query.Keyword == "" {
		return nil, errors.New("keyword is required for a keyword search")
	}
	values := g.baseQuery(query)
	values.Set("query", query.Keyword)
	return g.search(ctx, APITextEndpoint, query, values)
}

func (g *Google) baseQuery(query places.Query) url.Values {
	values := url.Values{}
	values.Set("location", strconv.FormatFloat(query.Coordinate.Lat, 'f', 6, 64)+","+
		strconv.FormatFloat(query.Coordinate.Lon, 'f', 6, 64))
	values.Set("radius", strconv.Itoa(min(max(query.RadiusMeters, 1), maxRadius)))
	values.Set("key", g.apikey)
	if g.lang != "" {
		values.Set("language", g.lang)
	}
	return values
}

func (g *Google) search(ctx context.Context, endpoint string, query places.Query, values url.Values) ([]places.Candidate, error) {
	var response Response
	code, err := g.http.GetWithTimeout(ctx, endpoint, &response, values, nil, APITimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to search places via Google Places API: %w", err)
	}
	if code != stdhttp.StatusOK {
		return nil, fmt.Errorf("google places API returned status %d", code)
	}
	switch response.Status {
	case statusOK, statusZeroResults:
	default:
		if response.ErrorMessage != "" {
			return nil, fmt.Errorf("google places API error: %s: %s", response.Status, response.ErrorMessage)
		}
		return nil, fmt.Errorf("google places API error: %s", response.Status)
	}

	size := len(response.Results)
	if query.Size > 0 {
		size = min(size, query.Size, maxSize)
	}
	candidates := make([]places.Candidate, 0, size)
	for _, result := range response.Results {
		if len(candidates) == size {
			break
		}
		if result.Name == "" || result.PlaceID == "" {
			continue
		}
		candidates = append(candidates, result.candidate(query.Coordinate))
	}
	return candidates, nil
}

func (r Result) candidate(origin geobus.Coordinate) places.Candidate {
	coord := geobus.Coordinate{Lat: r.Geometry.Location.Lat, Lon: r.Geometry.Location.Lng, Found: true}
	address := r.Vicinity
	if address == "" {
		address = r.FormattedAddress
	}
	category := r.category()
	return places.Candidate{
		ID:             r.PlaceID,
		Name:           r.Name,
		Kind:           KindOf(r.Types),
		Category:       category,
		CategoryCode:   category,
		Address:        address,
		URL:            PlaceURL + url.QueryEscape(r.PlaceID),
		Coordinate:     coord,
		DistanceMeters: origin.DistanceMeters(coord),
		Source:         name,
	}
}

// category returns the first type that is not a generic marker.
func (r Result) category() string {
	for _, t := range r.Types {
		if !genericTypes[t] {
			return t
		}
	}
	return ""
}

// TypeOf maps a place kind to a Google place type.
func TypeOf(kind places.Kind) (string, bool) {
	switch kind {
	case places.KindFood:
		return TypeRestaurant, true
	case places.KindCafe:
		return TypeCafe, true
	default:
		return "", false
	}
}

// KindOf derives the place kind from a result's type list. A cafe type wins over restaurant.
func KindOf(types []string) places.Kind {
	kind := places.KindUnknown
	for _, t := range types {
		switch t {
		case TypeCafe:
			return places.KindCafe
		case TypeRestaurant, "meal_takeaway", "meal_delivery":
			kind = places.KindFood
		}
	}
	return kind
}
