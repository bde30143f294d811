// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package gpsd

import (
	"context"
	"errors"
	"math"
	"net"
	"time"

	"github.com/stratoberry/go-gpsd"

	"github.com/wneessen/waybar-whereto/internal/geobus"
	"github.com/wneessen/waybar-whereto/internal/logger"
)

const (
	name = "gpsd"
	host = "localhost"
	port = "2947"

	fallbackAccuracy3DFix = 10 // ~10 m typical consumer GPS in open sky
	fallbackAccuracy2DFix = 25
)

type GeolocationGPSDProvider struct {
	addr   string
	period time.Duration
	ttl    time.Duration
	logger *logger.Logger
}

func NewGeolocationGPSDProvider(log *logger.Logger) (*GeolocationGPSDProvider, error) {
	if log == nil {
		return nil, errors.New("logger is required")
	}
	return &GeolocationGPSDProvider{
		addr:   net.JoinHostPort(host, port),
		period: time.Second * 30,
		ttl:    time.Minute * 2,
		logger: log,
	}, nil
}

func (p *GeolocationGPSDProvider) Name() string {
	return name
}

// LookupStream watches gpsd for TPV reports and emits a result whenever the position moved or
// the last result is about to go stale. Lost connections are re-established every period.
func (p *GeolocationGPSDProvider) LookupStream(ctx context.Context, key string) <-chan geobus.Result {
	out := make(chan geobus.Result)
	// fixes is never closed, the gpsd watch goroutine may still call the filter after we are gone.
	fixes := make(chan geobus.Coordinate, 1)

	go func() {
		defer close(out)
		state := geobus.GeolocationState{}
		var lastSent time.Time

		for ctx.Err() == nil {
			session, err := gpsd.Dial(p.addr)
			if err != nil {
				p.logger.Debug("failed to connect to gpsd", "address", p.addr, logger.Err(err))
				if !wait(ctx, p.period) {
					return
				}
				continue
			}

			session.AddFilter("TPV", func(r interface{}) {
				report, ok := r.(*gpsd.TPVReport)
				if !ok {
					return
				}
				coord, ok := fixFromTPV(report)
				if !ok {
					return
				}
				select {
				case fixes <- coord:
				default:
				}
			})
			done := session.Watch()

		watch:
			for {
				select {
				case <-ctx.Done():
					return
				case <-done:
					break watch
				case coord := <-fixes:
					if !state.HasChanged(coord) && time.Since(lastSent) < p.ttl/2 {
						continue
					}
					state.Update(coord)
					lastSent = time.Now()
					select {
					case out <- p.createResult(key, coord):
					case <-ctx.Done():
						return
					}
				}
			}

			if !wait(ctx, p.period) {
				return
			}
		}
	}()

	return out
}

// createResult composes and returns a Result using provided geolocation data and metadata.
func (p *GeolocationGPSDProvider) createResult(key string, coord geobus.Coordinate) geobus.Result {
	return geobus.Result{
		Key:            key,
		Lat:            geobus.Round(coord.Lat, geobus.RoundPrecision),
		Lon:            geobus.Round(coord.Lon, geobus.RoundPrecision),
		AccuracyMeters: coord.Acc,
		Source:         name,
		At:             time.Now(),
		TTL:            p.ttl,
	}
}

// fixFromTPV converts a TPV report into a coordinate. Reports without at least a 2D fix are
// rejected.
func fixFromTPV(report *gpsd.TPVReport) (geobus.Coordinate, bool) {
	if report == nil || report.Mode < gpsd.Mode2D {
		return geobus.Coordinate{}, false
	}
	coord := geobus.Coordinate{Lat: report.Lat, Lon: report.Lon, Found: true}
	if !coord.Valid() {
		return geobus.Coordinate{}, false
	}

	switch {
	case report.Epx > 0 && report.Epy > 0:
		coord.Acc = math.Hypot(report.Epx, report.Epy)
	case report.Mode == gpsd.Mode3D:
		coord.Acc = fallbackAccuracy3DFix
	default:
		coord.Acc = fallbackAccuracy2DFix
	}
	return coord, true
}

func wait(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
