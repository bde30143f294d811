// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geolocation_file

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/wneessen/waybar-whereto/internal/geobus"
	"github.com/wneessen/waybar-whereto/internal/logger"
)

const (
	name = "geolocation_file"

	// Accuracy is the accuracy we assign to coordinates from the geolocation file. The user wrote
	// them down on purpose, so they beat every other source.
	Accuracy = 5
)

var ErrNoCoordinates = errors.New("no valid coordinates found in geolocation file")

// GeolocationFileProvider periodically reads a "lat,lon" pair from a file. Empty lines and lines
// starting with "#" are skipped, the first valid pair wins.
type GeolocationFileProvider struct {
	path   string
	poller geobus.Poller
}

// NewGeolocationFileProvider returns a provider for the file at path.
func NewGeolocationFileProvider(path string, log *logger.Logger) (*GeolocationFileProvider, error) {
	if path == "" {
		return nil, errors.New("geolocation file path is required")
	}
	if log == nil {
		return nil, errors.New("logger is required")
	}
	provider := &GeolocationFileProvider{path: path}
	provider.poller = geobus.Poller{
		Source: name,
		Period: time.Minute * 2,
		TTL:    time.Hour,
		Logger: log,
		Locate: provider.locate,
	}
	return provider, nil
}

// Name returns the name of the GeolocationFileProvider instance.
func (p *GeolocationFileProvider) Name() string {
	return name
}

// LookupStream emits the file's coordinate right away and then on every poll.
func (p *GeolocationFileProvider) LookupStream(ctx context.Context, key string) <-chan geobus.Result {
	return p.poller.Stream(ctx, key)
}

func (p *GeolocationFileProvider) locate(context.Context) (geobus.Coordinate, error) {
	coord, err := p.readFile()
	if err != nil {
		return coord, err
	}
	coord.Acc = Accuracy
	coord.Found = true
	return coord, nil
}

// readFile returns the first valid coordinate of the geolocation file.
func (p *GeolocationFileProvider) readFile() (geobus.Coordinate, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return geobus.Coordinate{}, fmt.Errorf("failed to read geolocation file %q: %w", p.path, err)
	}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		if coord, ok := parseLine(scanner.Text()); ok {
			return coord, nil
		}
	}
	return geobus.Coordinate{}, ErrNoCoordinates
}

func parseLine(line string) (geobus.Coordinate, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return geobus.Coordinate{}, false
	}
	latStr, lonStr, ok := strings.Cut(line, ",")
	if !ok {
		return geobus.Coordinate{}, false
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return geobus.Coordinate{}, false
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
	if err != nil {
		return geobus.Coordinate{}, false
	}
	coord := geobus.Coordinate{Lat: lat, Lon: lon}
	return coord, coord.Valid()
}
