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
	"github.com/wneessen/waybar-whereto/internal/http"
	"github.com/wneessen/waybar-whereto/internal/places"
)

const (
	APICategoryEndpoint = "https://dapi.kakao.com/v2/local/search/category.json"
	APIKeywordEndpoint  = "https://dapi.kakao.com/v2/local/search/keyword.json"
	APITimeout          = time.Second * 10
	name                = "kakao"

	// The Kakao Local API caps the radius at 20km and the page size at 15.
	maxRadius = 20000
	maxSize   = 15

	CodeRestaurant = "FD6"
	CodeCafe       = "CE7"
)

var ErrUnsupportedKind = errors.New("place kind is not supported by kakao")

type Kakao struct {
	http   *http.Client
	apikey string
}

type Response struct {
	ErrorType string     `json:"errorType"`
	Message   string     `json:"message"`
	Meta      Meta       `json:"meta"`
	Documents []Document `json:"documents"`
}

type Meta struct {
	TotalCount    int  `json:"total_count"`
	PageableCount int  `json:"pageable_count"`
	IsEnd         bool `json:"is_end"`
}

// Document is a single place. Kakao sends coordinates and the distance as strings.
type Document struct {
	ID                string `json:"id"`
	PlaceName         string `json:"place_name"`
	CategoryName      string `json:"category_name"`
	CategoryGroupCode string `json:"category_group_code"`
	CategoryGroupName string `json:"category_group_name"`
	Phone             string `json:"phone"`
	AddressName       string `json:"address_name"`
	RoadAddressName   string `json:"road_address_name"`
	X                 string `json:"x"`
	Y                 string `json:"y"`
	PlaceURL          string `json:"place_url"`
	Distance          string `json:"distance"`
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

// Category searches places of the query's kind around the query coordinate, nearest first.
func (k *Kakao) Category(ctx context.Context, query places.Query) ([]places.Candidate, error) {
	code, ok := CategoryCode(query.Kind)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedKind, query.Kind)
	}
	values := k.baseQuery(query)
	values.Set("category_group_code", code)
	return k.search(ctx, APICategoryEndpoint, values)
}

// Keyword searches places matching the query's keyword around the query coordinate.
func (k *Kakao) Keyword(ctx context.Context, query places.Query) ([]places.Candidate, error) {
	if query.Keyword == "" {
		return nil, errors.New("keyword is required for a keyword search")
	}
	values := k.baseQuery(query)
	values.Set("query", query.Keyword)
	return k.search(ctx, APIKeywordEndpoint, values)
}

func (k *Kakao) baseQuery(query places.Query) url.Values {
	values := url.Values{}
	values.Set("x", strconv.FormatFloat(query.Coordinate.Lon, 'f', 6, 64))
	values.Set("y", strconv.FormatFloat(query.Coordinate.Lat, 'f', 6, 64))
	values.Set("radius", strconv.Itoa(clamp(query.RadiusMeters, 1, maxRadius)))
	values.Set("size", strconv.Itoa(clamp(query.Size, 1, maxSize)))
	values.Set("sort", "distance")
	return values
}

func (k *Kakao) search(ctx context.Context, endpoint string, values url.Values) ([]places.Candidate, error) {
	var response Response
	headers := map[string]string{"Authorization": "KakaoAK " + k.apikey}
	code, err := k.http.GetWithTimeout(ctx, endpoint, &response, values, headers, APITimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to search places via Kakao API: %w", err)
	}
	if code != stdhttp.StatusOK {
		if response.Message != "" {
			return nil, fmt.Errorf("kakao API returned status %d: %s: %s", code, response.ErrorType, response.Message)
		}
		return nil, fmt.Errorf("kakao API returned status %d", code)
	}

	candidates := make([]places.Candidate, 0, len(response.Documents))
	for _, doc := range response.Documents {
		candidate, err := doc.candidate()
		if err != nil {
			continue
		}
		candidates = append(candidates, candidate)
	}
	return candidates, nil
}

func (d Document) candidate() (places.Candidate, error) {
	lon, err := strconv.ParseFloat(d.X, 64)
	if err != nil {
		return places.Candidate{}, fmt.Errorf("failed to parse longitude of %q: %w", d.PlaceName, err)
	}
	lat, err := strconv.ParseFloat(d.Y, 64)
	if err != nil {
		return places.Candidate{}, fmt.Errorf("failed to parse latitude of %q: %w", d.PlaceName, err)
	}
	// distance is empty when the request had no center point
	distance, _ := strconv.ParseFloat(d.Distance, 64)

	return places.Candidate{
		ID:             d.ID,
		Name:           d.PlaceName,
		Kind:           KindOf(d.CategoryGroupCode),
		Category:       d.CategoryName,
		CategoryCode:   d.CategoryGroupCode,
		Address:        d.AddressName,
		RoadAddress:    d.RoadAddressName,
		Phone:          d.Phone,
		URL:            d.PlaceURL,
		Coordinate:     geobus.Coordinate{Lat: lat, Lon: lon, Found: true},
		DistanceMeters: distance,
		Source:         name,
	}, nil
}

// CategoryCode maps a place kind to its Kakao category group code.
func CategoryCode(kind places.Kind) (string, bool) {
	switch kind {
	case places.KindFood:
		return CodeRestaurant, true
	case places.KindCafe:
		return CodeCafe, true
	default:
		return "", false
	}
}

// KindOf maps a Kakao category group code to a place kind.
func KindOf(code string) places.Kind {
	switch code {
	case CodeRestaurant:
		return places.KindFood
	case CodeCafe:
		return places.KindCafe
	default:
		return places.KindUnknown
	}
}

func clamp(v, lower, upper int) int {
	return min(max(v, lower), upper)
}
