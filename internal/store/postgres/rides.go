package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"veloform/internal/store"
)

// UpsertRide inserts or updates a ride summary keyed by its external
// activity id.
func (db *DB) UpsertRide(ctx context.Context, r *store.Ride) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	_, err := db.pool.Exec(ctx, `
		INSERT INTO rides (
			id, athlete_id, started_at, duration_seconds, avg_power,
			normalized_power, best_20min_power, elevation_gain, category,
			zone, tss, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
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
		r.ID, r.AthleteID, r.StartedAt, r.DurationSeconds,
		r.AvgPower, r.NormalizedPower, r.Best20MinPower,
		r.ElevationGain, r.Category, zoneToArg(r.Zone), r.TSS, r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("upserting ride %d: %w", r.ID, err)
	}
	return nil
}

// GetRide returns one ride by its external activity id.
func (db *DB) GetRide(ctx context.Context, id int64) (*store.Ride, error) {
	const q = `
		SELECT id, athlete_id, started_at, duration_seconds, avg_power,
			normalized_power, best_20min_power, elevation_gain, category,
			zone, tss, created_at
		FROM rides
		WHERE id = $1
	`
	r, err := scanRide(db.pool.QueryRow(ctx, q, id).Scan)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrRideNotFound
	}
	return r, err
}

// ListRidesSince returns the athlete's rides started at or after the
// given time, oldest first.
func (db *DB) ListRidesSince(ctx context.Context, athleteID int64, since time.Time) ([]store.Ride, error) {
	const q = `
		SELECT id, athlete_id, started_at, duration_seconds, avg_power,
			normalized_power, best_20min_power, elevation_gain, category,
			zone, tss, created_at
		FROM rides
		WHERE athlete_id = $1 AND started_at >= $2
		ORDER BY started_at ASC
	`
	rows, err := db.pool.Query(ctx, q, athleteID, since)
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
	var zone *string

	err := scan(&r.ID, &r.AthleteID, &r.StartedAt, &r.DurationSeconds,
		&r.AvgPower, &r.NormalizedPower, &r.Best20MinPower, &r.ElevationGain,
		&r.Category, &zone, &r.TSS, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	r.Zone = zoneFromCol(zone)
	return &r, nil
}
