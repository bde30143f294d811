// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package search implements the randomized place recommendation: jitter the origin, look up
// places around the destination, filter them and pick a few at random. Attempts that yield no
// eligible place are retried from a fresh destination.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/wneessen/waybar-whereto/internal/geobus"
	"github.com/wneessen/waybar-whereto/internal/jitter"
	"github.com/wneessen/waybar-whereto/internal/logger"
	"github.com/wneessen/waybar-whereto/internal/places"
)

const (
	DefaultMaxAttempts  = 5
	DefaultNearAttempts = 1
	DefaultPicks        = 3
	DefaultPoolSize     = 15
)

var ErrInvalidInput = errors.New("invalid search input")

// Lookup returns the places around a coordinate for a mode. An error counts as an empty
// result for the attempt.
type Lookup func(ctx context.Context, coord geobus.Coordinate, mode Mode) ([]places.Candidate, error)

// Validate reports whether a candidate is eligible for a mode.
type Validate func(candidate places.Candidate, mode Mode) bool

type Config struct {
	// MaxAttempts is the number of destinations tried in teleport mode.
	MaxAttempts int
	// NearAttempts is the number of lookups around the origin when teleport is off.
	NearAttempts int
	Picks        int
	// PoolSize limits sampling to the first PoolSize eligible candidates in provider order,
	// so picks are uniform within that pool only.
	PoolSize int
	Teleport bool
	Modes    map[Mode]ModeConfig
}

// Outcome is the result of a search. Found is false when every attempt came up empty.
type Outcome struct {
	Found    bool
	Picks    []places.Candidate
	Attempts int
	Jitter   jitter.Result
	Origin   geobus.Coordinate
	Mode     Mode
	Teleport bool
}

type Searcher struct {
	conf     Config
	lookup   Lookup
	validate Validate
	logger   *logger.Logger

	// rnd is not safe for concurrent use
	rndMu sync.Mutex
	rnd   jitter.Rand
}

func New(conf Config, lookup Lookup, validate Validate, rnd jitter.Rand, log *logger.Logger) (*Searcher, error) {
	if lookup == nil {
		return nil, errors.New("lookup function is required")
	}
	if rnd == nil {
		return nil, errors.New("random source is required")
	}
	if log == nil {
		return nil, errors.New("logger is required")
	}
	if validate == nil {
		validate = func(places.Candidate, Mode) bool { return true }
	}
	if err := conf.validate(); err != nil {
		return nil, err
	}
	return &Searcher{
		conf:     conf,
		lookup:   lookup,
		validate: validate,
		rnd:      rnd,
		logger:   log,
	}, nil
}

func (c Config) validate() error {
	if c.MaxAttempts <= 0 {
		return fmt.Errorf("%w: max attempts must be positive, got %d", ErrInvalidInput, c.MaxAttempts)
	}
	if c.NearAttempts <= 0 {
		return fmt.Errorf("%w: near attempts must be positive, got %d", ErrInvalidInput, c.NearAttempts)
	}
	if c.Picks <= 0 {
		return fmt.Errorf("%w: picks must be positive, got %d", ErrInvalidInput, c.Picks)
	}
	if c.PoolSize < c.Picks {
		return fmt.Errorf("%w: pool size %d is smaller than picks %d", ErrInvalidInput, c.PoolSize, c.Picks)
	}
	for _, mode := range []Mode{ModeFood, ModeCafe} {
		mc, ok := c.Modes[mode]
		if !ok {
			return fmt.Errorf("%w: no configuration for mode %s", ErrInvalidInput, mode)
		}
		if err := jitter.ValidateRange(mc.MinKm, mc.MaxKm); err != nil {
			return fmt.Errorf("%w: mode %s: %w", ErrInvalidInput, mode, err)
		}
		if mc.RadiusMeters <= 0 {
			return fmt.Errorf("%w: mode %s: radius must be positive", ErrInvalidInput, mode)
		}
	}
	return nil
}

// Search runs the retry loop for the searcher's configured teleport setting.
func (s *Searcher) Search(ctx context.Context, origin geobus.Coordinate, mode Mode) (Outcome, error) {
	return s.SearchWith(ctx, origin, mode, s.conf.Teleport)
}

// SearchWith runs the retry loop. With teleport enabled every attempt jitters origin by the
// mode's distance range; otherwise every attempt searches around origin itself.
func (s *Searcher) SearchWith(ctx context.Context, origin geobus.Coordinate, mode Mode, teleport bool) (Outcome, error) {
	if !origin.Valid() {
		return Outcome{}, fmt.Errorf("%w: origin %s is not a valid coordinate", ErrInvalidInput, origin)
	}
	mc, ok := s.conf.Modes[mode]
	if !ok {
		return Outcome{}, fmt.Errorf("%w: unknown mode %s", ErrInvalidInput, mode)
	}

	maxAttempts := s.conf.NearAttempts
	if teleport {
		maxAttempts = s.conf.MaxAttempts
	}
	outcome := Outcome{Origin: origin, Mode: mode, Teleport: teleport}
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return outcome, err
		}
		outcome.Attempts = attempt

		jit := jitter.Result{Destination: origin}
		if teleport {
			var err error
			s.rndMu.Lock()
			jit, err = jitter.Jitter(s.rnd, origin, mc.MinKm, mc.MaxKm)
			s.rndMu.Unlock()
			if err != nil {
				return outcome, fmt.Errorf("%w: %w", ErrInvalidInput, err)
			}
		}
		outcome.Jitter = jit

		log := s.logger.With(slog.Int("attempt", attempt), slog.String("mode", mode.String()),
			slog.String("destination", jit.Destination.String()))
		candidates, err := s.lookup(ctx, jit.Destination, mode)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return outcome, ctxErr
			}
			log.Debug("place lookup failed, trying next destination", logger.Err(err))
			continue
		}

		valid := make([]places.Candidate, 0, len(candidates))
		for _, candidate := range candidates {
			if s.validate(candidate, mode) {
				valid = append(valid, candidate)
			}
		}
		if len(valid) == 0 {
			log.Debug("no eligible places found", slog.Int("candidates", len(candidates)))
			continue
		}
		if len(valid) > s.conf.PoolSize {
			valid = valid[:s.conf.PoolSize]
		}

		s.rndMu.Lock()
		outcome.Picks = Sample(s.rnd, valid, s.conf.Picks)
		s.rndMu.Unlock()
		outcome.Found = true
		log.Debug("found places", slog.Int("eligible", len(valid)), slog.Int("picks", len(outcome.Picks)))
		return outcome, nil
	}
	return outcome, nil
}

// Sample returns min(k, len(pool)) distinct elements of pool chosen uniformly at random. pool
// is not modified.
func Sample[T any](rnd jitter.Rand, pool []T, k int) []T {
	k = min(k, len(pool))
	if k <= 0 {
		return nil
	}
	shuffled := make([]T, len(pool))
	copy(shuffled, pool)
	for i := range k {
		j := i + rnd.IntN(len(shuffled)-i)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	return shuffled[:k:k]
}
