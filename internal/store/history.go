// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wneessen/waybar-whereto/internal/geobus"
	"github.com/wneessen/waybar-whereto/internal/search"
)

// Entry is a stored recommendation.
type Entry struct {
	ID          string
	CreatedAt   time.Time
	Mode        string
	Teleport    bool
	Origin      geobus.Coordinate
	Destination geobus.Coordinate
	DistanceKm  float64
	Attempts    int
	Found       bool
	Picks       []Pick
}

type Pick struct {
	PlaceID  string
	Name     string
	Category string
	URL      string
}

// Save stores an outcome and returns the ID of the new entry.
func (s *Store) Save(ctx context.Context, outcome search.Outcome) (string, error) {
	id := uuid.NewString()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	dest := outcome.Jitter.Destination
	_, err = tx.ExecContext(ctx, `INSERT INTO recommendations
  (id, created_at, mode, teleport, origin_lat, origin_lon, dest_lat, dest_lon, distance_km, attempts, found)
  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, s.now().UnixNano(), outcome.Mode.String(), outcome.Teleport, outcome.Origin.Lat, outcome.Origin.Lon,
		dest.Lat, dest.Lon, outcome.Jitter.DistanceKm, outcome.Attempts, outcome.Found)
	if err != nil {
		return "", fmt.Errorf("failed to store recommendation: %w", err)
	}
	for i, pick := range outcome.Picks {
		_, err = tx.ExecContext(ctx, `INSERT INTO picks (recommendation_id, position, place_id, name, category, url)
  VALUES (?, ?, ?, ?, ?, ?)`, id, i, pick.ID, pick.Name, pick.Category, pick.URL)
		if err != nil {
			return "", fmt.Errorf("failed to store pick %q: %w", pick.Name, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit recommendation: %w", err)
	}
	return id, nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, created_at, mode, teleport, origin_lat, origin_lon,
  dest_lat, dest_lon, distance_km, attempts, found
  FROM recommendations ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recommendations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		var created int64
		if err = rows.Scan(&entry.ID, &created, &entry.Mode, &entry.Teleport, &entry.Origin.Lat,
			&entry.Origin.Lon, &entry.Destination.Lat, &entry.Destination.Lon, &entry.DistanceKm,
			&entry.Attempts, &entry.Found); err != nil {
			return nil, fmt.Errorf("failed to scan recommendation: %w", err)
		}
		entry.CreatedAt = time.Unix(0, created)
		entries = append(entries, entry)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read recommendations: %w", err)
	}
	// picks are loaded after the rows are drained since the pool holds a single connection
	if err = rows.Close(); err != nil {
		return nil, fmt.Errorf("failed to close rows: %w", err)
	}

	for i := range entries {
		if entries[i].Picks, err = s.picks(ctx, entries[i].ID); err != nil {
			return nil, err
		}
	}
	return entries, nil
}

func (s *Store) picks(ctx context.Context, id string) ([]Pick, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT place_id, name, category, url FROM picks
  WHERE recommendation_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query picks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var picks []Pick
	for rows.Next() {
		var pick Pick
		if err = rows.Scan(&pick.PlaceID, &pick.Name, &pick.Category, &pick.URL); err != nil {
			return nil, fmt.Errorf("failed to scan pick: %w", err)
		}
		picks = append(picks, pick)
	}
	return picks, rows.Err()
}

// PlaceIDs returns the IDs of places picked in the given period, most recent first.
func (s *Store) PlaceIDs(ctx context.Context, since time.Time) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT p.place_id FROM picks p
  JOIN recommendations r ON r.id = p.recommendation_id
  WHERE r.created_at >= ? ORDER BY r.created_at DESC, p.position`, since.UnixNano())
	if err != nil {
		return nil, fmt.Errorf("failed to query picked places: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err = rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan place id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
