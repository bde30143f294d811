// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wneessen/waybar-whereto/internal/filter"
	"github.com/wneessen/waybar-whereto/internal/geocode"
	"github.com/wneessen/waybar-whereto/internal/logger"
	"github.com/wneessen/waybar-whereto/internal/places"
	"github.com/wneessen/waybar-whereto/internal/search"
)

const (
	SearchTimeout  = time.Second * 45
	LocateTimeout  = time.Second * 30
	historyTimeout = time.Second * 5
	maxPreviews    = 4
)

var errNoLocation = errors.New("no location available yet")

// reroll replaces the current recommendations with a fresh search and prints them.
func (s *Service) reroll(ctx context.Context) {
	if err := s.search(ctx); err != nil {
		if errors.Is(err, errNoLocation) {
			s.logger.Debug("no location available yet, skipping recommendation")
			return
		}
		s.logger.Error("failed to search for recommendations", logger.Err(err))
		return
	}
	s.printOutput(ctx)
}

// search runs the search loop around the current location and stores the outcome.
func (s *Service) search(ctx context.Context) error {
	s.searchLock.Lock()
	defer s.searchLock.Unlock()

	origin, originAddr, ok := s.currentLocation()
	if !ok {
		return errNoLocation
	}
	mode, nearMe := s.Mode()

	ctxSearch, cancel := context.WithTimeout(ctx, SearchTimeout)
	defer cancel()

	s.refreshRecent(ctxSearch)
	outcome, err := s.searcher.SearchWith(ctxSearch, origin, mode, !nearMe)
	if err != nil {
		return err
	}
	s.logger.Debug("search finished", slog.Bool("found", outcome.Found), slog.Int("attempts", outcome.Attempts),
		slog.Int("picks", len(outcome.Picks)), slog.String("mode", mode.String()))

	destAddr := originAddr
	if outcome.Teleport && outcome.Found {
		destAddr, err = s.geocoder.Reverse(ctxSearch, outcome.Jitter.Destination)
		if err != nil {
			s.logger.Debug("failed to resolve destination address", logger.Err(err))
			destAddr = geocode.Address{}
		}
	}
	images := s.fetchPreviews(ctxSearch, outcome.Picks)
	s.saveHistory(ctx, outcome)

	s.outcomeLock.Lock()
	s.outcome = &outcome
	s.destAddress = destAddr
	s.images = images
	s.updated = time.Now()
	s.outcomeLock.Unlock()
	return nil
}

// Mode returns the current search mode and whether searches stay near the current location.
func (s *Service) Mode() (search.Mode, bool) {
	s.modeLock.RLock()
	defer s.modeLock.RUnlock()
	return s.mode, s.nearMe
}

func (s *Service) SetMode(mode search.Mode) {
	s.modeLock.Lock()
	defer s.modeLock.Unlock()
	s.mode = mode
}

func (s *Service) SetNearMe(nearMe bool) {
	s.modeLock.Lock()
	defer s.modeLock.Unlock()
	s.nearMe = nearMe
}

func (s *Service) toggleMode() search.Mode {
	s.modeLock.Lock()
	defer s.modeLock.Unlock()
	s.mode = s.mode.Toggle()
	return s.mode
}

// notRecent rejects places that were recommended within the configured avoid period.
func (s *Service) notRecent(c places.Candidate) bool {
	s.recentLock.RLock()
	defer s.recentLock.RUnlock()
	if s.recent == nil {
		return true
	}
	return s.recent(c)
}

func (s *Service) refreshRecent(ctx context.Context) {
	if s.history == nil || s.config.Filter.AvoidRecent <= 0 {
		return
	}
	ids, err := s.history.PlaceIDs(ctx, time.Now().Add(-s.config.Filter.AvoidRecent))
	if err != nil {
		s.logger.Error("failed to load recently recommended places", logger.Err(err))
		return
	}
	recent := filter.Exclude(ids...)
	s.recentLock.Lock()
	s.recent = recent
	s.recentLock.Unlock()
}

// fetchPreviews looks up the preview images of the picks concurrently. Failed lookups are
// left out of the result.
func (s *Service) fetchPreviews(ctx context.Context, picks []places.Candidate) map[string]string {
	if s.preview == nil || len(picks) == 0 {
		return nil
	}

	var mu sync.Mutex
	images := make(map[string]string, len(picks))
	var g errgroup.Group
	g.SetLimit(maxPreviews)
	for _, pick := range picks {
		if pick.URL == "" {
			continue
		}
		g.Go(func() error {
			image, err := s.preview.Image(ctx, pick.URL)
			if err != nil {
				s.logger.Debug("no preview image found", slog.String("place", pick.Name), logger.Err(err))
				return nil
			}
			mu.Lock()
			images[pick.ID] = image
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return images
}

func (s *Service) saveHistory(ctx context.Context, outcome search.Outcome) {
	if s.history == nil {
		return
	}
	ctxSave, cancel := context.WithTimeout(context.WithoutCancel(ctx), historyTimeout)
	defer cancel()
	if _, err := s.history.Save(ctxSave, outcome); err != nil {
		s.logger.Error("failed to store recommendation in history", logger.Err(err))
	}
}
