package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"veloform/internal/store"
)

// UpsertRide inserts or updates a ride summary keyed by its external
// activity id.
func (db *DB) UpsertRide(ctx context.Context, r *store.Ride) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO rides (
			id, athlete_id, started_at, duration_seconds, avg_power,
			normalized_power, best_20min_power, elevation_gain, category,
			zone, tss, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			athlete_id = excluded.athlete_id,
			started_at = excluded.started_at,
			duration_seconds = excluded.duration_seconds,
			avg_power = excluded.avg_power,
			normalized_power = excluded.normalized_power,
			best_20min_power = excluded.best_20min_power,
			elevation_gain = excluded.elevation_gain,
			category = excluded.category,
			zone = excluded.zone,
			tss = excluded.tss
	`,
		r.ID, r.AthleteID, r.StartedAt.UTC().Format(time.RFC3339),
		r.DurationSeconds, r.AvgPower, r.NormalizedPower, r.Best20MinPower,
		r.ElevationGain, r.Category, zoneToArg(r.Zone), r.TSS,
		r.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upserting ride %d: %w", r.ID, err)
	}
	return nil
}

// GetRide returns one ride by its external activity id.
func (db *DB) GetRide(ctx context.Context, id int64) (*store.Ride, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, athlete_id, started_at, duration_seconds, avg_power,
			normalized_power, best_20min_power, elevation_gain, category,
			zone, tss, created_at
		FROM rides
		WHERE id = ?
	`, id)

	r, err := scanRide(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrRideNotFound
	}
	return r, err
}

// ListRidesSince returns the athlete's rides started at or after the
// given time, oldest first.
func (db *DB) ListRidesSince(ctx context.Context, athleteID int64, since time.Time) ([]store.Ride, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, athlete_id, started_at, duration_seconds, avg_power,
			normalized_power, best_20min_power, elevation_gain, category,
			zone, tss, created_at
		FROM rides
		WHERE athlete_id = ? AND started_at >= ?
		ORDER BY started_at ASC
	`, athleteID, since.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rides []store.Ride
	for rows.Next() {
		r, err := scanRide(rows.Scan)
		if err != nil {
			return nil, err
		}
		rides = append(rides, *r)
	}
	return rides, rows.Err()
}

func scanRide(scan func(dest ...interface{}) error) (*store.Ride, error) {
	var r store.Ride
	var startedAt, createdAt string
	var zone sql.NullString

	err := scan(&r.ID, &r.AthleteID, &startedAt, &r.DurationSeconds,
		&r.AvgPower, &r.NormalizedPower, &r.Best20MinPower, &r.ElevationGain,
		&r.Category, &zone, &r.TSS, &createdAt)
	if err != nil {
		return nil, err
	}
	if r.StartedAt, err = time.Parse(time.RFC3339, startedAt); err != nil {
		return nil, fmt.Errorf("parsing started_at %q: %w", startedAt, err)
	}
	if r.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at %q: %w", createdAt, err)
	}
	if zone.Valid {
		z := store.Zone(zone.String)
		r.Zone = &z
	}
	return &r, nil
}

func zoneToArg(z *store.Zone) interface{} {
	if z == nil {
		return nil
	}
	return string(*z)
}
