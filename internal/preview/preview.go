// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package preview finds the preview image of a place page.
package preview

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	stdhttp "net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/wneessen/waybar-whereto/internal/http"
)

const FetchTimeout = time.Second * 5

var ErrNoImage = errors.New("page has no preview image")

// imageSelectors are tried in order.
var imageSelectors = []string{
	`meta[property="og:image"]`,
	`meta[name="og:image"]`,
	`meta[name="twitter:image"]`,
	`meta[property="twitter:image"]`,
}

type Fetcher struct {
	http *http.Client
}

func NewFetcher(client *http.Client) (*Fetcher, error) {
	if client == nil {
		return nil, errors.New("http client is required")
	}
	return &Fetcher{http: client}, nil
}

// Image returns the absolute URL of the page's Open Graph image, falling back to the Twitter
// card image.
func (f *Fetcher) Image(ctx context.Context, pageURL string) (string, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse page URL: %w", err)
	}
	body, code, err := f.http.GetBody(ctx, pageURL, nil, map[string]string{"Accept": "text/html"}, FetchTimeout)
	if err != nil {
		return "", fmt.Errorf("failed to fetch place page: %w", err)
	}
	if code != stdhttp.StatusOK {
		return "", fmt.Errorf("place page returned status %d", code)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to parse place page: %w", err)
	}
	return imageFromDocument(doc, base)
}

func imageFromDocument(doc *goquery.Document, base *url.URL) (string, error) {
	for _, selector := range imageSelectors {
		content, ok := doc.Find(selector).First().Attr("content")
		content = strings.TrimSpace(content)
		if !ok || content == "" {
			continue
		}
		ref, err := url.Parse(content)
		if err != nil {
			continue
		}
		return base.ResolveReference(ref).String(), nil
	}
	return "", ErrNoImage
}
