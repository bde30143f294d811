// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package preview

import (
	"errors"
	stdhttp "net/http"
	"strings"
	"testing"

	"github.com/wneessen/waybar-whereto/internal/http"
	"github.com/wneessen/waybar-whereto/internal/logger"
	"github.com/wneessen/waybar-whereto/internal/testhelper"
)

func TestNewFetcher(t *testing.T) {
	if _, err := NewFetcher(nil); err == nil {
		t.Error("expected fetcher creation to fail without http client")
	}
}

func TestFetcher_Image(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		page    string
		want    string
		wantErr error
	}{
		{
			"open graph image with scheme-relative URL",
			"place_page.html",
			"https://place.map.kakao.com/10332413",
			"https://img1.kakaocdn.net/cthumb/local/R736x0.q50/?fname=http%3A%2F%2Ft1.kakaocdn.net%2Fplace%2Feuljimyeonok.jpg",
			nil,
		},
		{
			"twitter image with relative URL",
			"place_page_twitter.html",
			"https://cafe.example.com/places/onion",
			"https://cafe.example.com/images/onion.jpg",
			nil,
		},
		{
			"blank image",
			"place_page_noimage.html",
			"https://place.map.kakao.com/1",
			"",
			ErrNoImage,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fetcher := testFetcher(t, testhelper.FileResponder(t, tc.file, 200, nil))
			image, err := fetcher.Image(t.Context(), tc.page)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected error to be %s, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("failed to get image: %s", err)
			}
			if image != tc.want {
				t.Errorf("expected image %q, got %q", tc.want, image)
			}
		})
	}
	t.Run("non-200 status fails", func(t *testing.T) {
		fetcher := testFetcher(t, testhelper.FileResponder(t, "place_page.html", 404, nil))
		_, err := fetcher.Image(t.Context(), "https://place.map.kakao.com/1")
		if err == nil || !strings.Contains(err.Error(), "404") {
			t.Errorf("expected status error, got %v", err)
		}
	})
	t.Run("invalid page URL fails", func(t *testing.T) {
		fetcher := testFetcher(t, nil)
		if _, err := fetcher.Image(t.Context(), "http://example.com/xyz%"); err == nil {
			t.Error("expected invalid URL to fail")
		}
	})
}

func testFetcher(t *testing.T, fn func(*stdhttp.Request) (*stdhttp.Response, error)) *Fetcher {
	t.Helper()
	client := http.New(logger.Discard())
	if fn != nil {
		client.Transport = testhelper.MockRoundTripper{Fn: fn}
	}
	fetcher, err := NewFetcher(client)
	if err != nil {
		t.Fatalf("failed to create fetcher: %s", err)
	}
	return fetcher
}
