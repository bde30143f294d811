// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package placename_file

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/wneessen/waybar-whereto/internal/geobus"
	"github.com/wneessen/waybar-whereto/internal/geocode"
	"github.com/wneessen/waybar-whereto/internal/logger"
)

const name = "placename_file"

var ErrNoPlace = errors.New("no resolvable place name found in place name file")

// PlacenameFileProvider reads a place name or address (e.g. "Seoul City Hall") from a file and
// resolves it to a coordinate with a forward geocoder.
type PlacenameFileProvider struct {
	path   string
	coder  geocode.Geocoder
	poller geobus.Poller
}

// NewPlacenameFileProvider returns a provider for the file at path.
func NewPlacenameFileProvider(path string, coder geocode.Geocoder, log *logger.Logger) (*PlacenameFileProvider, error) {
	if coder == nil {
		return nil, errors.New("geocoder is required")
	}
	if log == nil {
		return nil, errors.New("logger is required")
	}
	provider := &PlacenameFileProvider{path: path, coder: coder}
	provider.poller = geobus.Poller{
		Source: name,
		Period: time.Minute * 5,
		TTL:    time.Hour * 12,
		Logger: log,
		Locate: provider.locate,
	}
	return provider, nil
}

// Name returns the name of the PlacenameFileProvider instance.
func (p *PlacenameFileProvider) Name() string {
	return name
}

// LookupStream emits the resolved place right away and then on every poll.
func (p *PlacenameFileProvider) LookupStream(ctx context.Context, key string) <-chan geobus.Result {
	return p.poller.Stream(ctx, key)
}

// locate resolves the first line of the file the geocoder can find.
func (p *PlacenameFileProvider) locate(ctx context.Context) (geobus.Coordinate, error) {
	places, err := p.readFile()
	if err != nil {
		return geobus.Coordinate{}, err
	}
	for _, place := range places {
		coords, err := p.coder.Search(ctx, place)
		if err != nil {
			return geobus.Coordinate{}, fmt.Errorf("failed to geocode place %q: %w", place, err)
		}
		if coords.Found {
			coords.Acc = geobus.AccuracyZip
			return coords, nil
		}
	}
	return geobus.Coordinate{}, ErrNoPlace
}

// readFile returns all non-empty, non-comment lines of the place name file.
func (p *PlacenameFileProvider) readFile() ([]string, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read place name file %q: %w", p.path, err)
	}
	var places []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		places = append(places, line)
	}
	if len(places) == 0 {
		return nil, ErrNoPlace
	}
	return places, nil
}
