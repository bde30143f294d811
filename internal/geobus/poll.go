// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geobus

import (
	"context"
	"time"

	"github.com/wneessen/waybar-whereto/internal/logger"
)

// LocateFunc returns the current position. A coordinate with Found set to false skips the round
// without an error.
type LocateFunc func(ctx context.Context) (Coordinate, error)

// Poller is the shared loop for providers that look up a position periodically instead of
// receiving a stream of updates.
type Poller struct {
	Source string
	Period time.Duration
	TTL    time.Duration
	Logger *logger.Logger
	Locate LocateFunc
}

// Stream runs the lookup right away and then every Period until ctx is done. Results are sent
// on the returned channel, which is closed when the loop ends.
func (p Poller) Stream(ctx context.Context, key string) <-chan Result {
	out := make(chan Result)
	go func() {
		defer close(out)
		ticker := time.NewTicker(p.Period)
		defer ticker.Stop()

		for {
			coord, err := p.Locate(ctx)
			switch {
			case err != nil:
				p.Logger.Error("failed to look up geolocation", "source", p.Source, logger.Err(err))
			case coord.Found:
				select {
				case out <- p.result(key, coord):
				case <-ctx.Done():
					return
				}
			}

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
	return out
}

func (p Poller) result(key string, coord Coordinate) Result {
	return Result{
		Key:            key,
		Lat:            Round(coord.Lat, RoundPrecision),
		Lon:            Round(coord.Lon, RoundPrecision),
		AccuracyMeters: coord.Acc,
		Source:         p.Source,
		At:             time.Now(),
		TTL:            p.TTL,
	}
}
