package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"veloform/internal/store"
)

// ActivateTrend deactivates the athlete's active trends whose type is in
// supersedes (matching t's zone key), then inserts t as active, in one
// transaction. Superseded rows keep their data and gain a deactivation
// timestamp.
func (db *DB) ActivateTrend(ctx context.Context, t *store.PerformanceTrend, supersedes []store.TrendType) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if len(supersedes) > 0 {
		types := make([]string, len(supersedes))
		for i, tt := range supersedes {
			types[i] = string(tt)
		}
		if _, err := tx.Exec(ctx, `
			UPDATE performance_trends
			SET is_active = FALSE, deactivated_at = $1
			WHERE athlete_id = $2 AND is_active
				AND trend_type = ANY($3)
				AND zone IS NOT DISTINCT FROM $4
		`, time.Now().UTC(), t.AthleteID, types, zoneToArg(t.Zone)); err != nil {
			return fmt.Errorf("deactivating superseded trends: %w", err)
		}
	}

	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	t.IsActive = true
	t.DeactivatedAt = nil

	var metrics []byte
	if t.Metrics != nil {
		if metrics, err = json.Marshal(t.Metrics); err != nil {
			return fmt.Errorf("encoding trend metrics: %w", err)
		}
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO performance_trends (
			id, athlete_id, trend_type, zone, direction, confidence,
			window_start, window_end, change_magnitude, sample_count,
			metrics, is_active, created_at, deactivated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, TRUE, $12, NULL)
	`,
		t.ID.String(), t.AthleteID, string(t.TrendType), zoneToArg(t.Zone),
		string(t.Direction), t.Confidence, t.WindowStart, t.WindowEnd,
		t.ChangeMagnitude, t.SampleCount, metrics, t.CreatedAt,
	); err != nil {
		return fmt.Errorf("inserting trend: %w", err)
	}

	return tx.Commit(ctx)
}

// ListActiveTrends returns the athlete's active trends, newest first.
func (db *DB) ListActiveTrends(ctx context.Context, athleteID int64) ([]store.PerformanceTrend, error) {
	const q = `
		SELECT id, athlete_id, trend_type, zone, direction, confidence,
			window_start, window_end, change_magnitude, sample_count,
			metrics, is_active, created_at, deactivated_at
		FROM performance_trends
		WHERE athlete_id = $1 AND is_active
		ORDER BY created_at DESC
	`
	return db.queryTrends(ctx, q, athleteID)
}

// ListTrends returns every trend row for the athlete, deactivated ones
// included, newest first.
func (db *DB) ListTrends(ctx context.Context, athleteID int64) ([]store.PerformanceTrend, error) {
	const q = `
		SELECT id, athlete_id, trend_type, zone, direction, confidence,
			window_start, window_end, change_magnitude, sample_count,
			metrics, is_active, created_at, deactivated_at
		FROM performance_trends
		WHERE athlete_id = $1
		ORDER BY created_at DESC
	`
	return db.queryTrends(ctx, q, athleteID)
}

func (db *DB) queryTrends(ctx context.Context, q string, args ...interface{}) ([]store.PerformanceTrend, error) {
	rows, err := db.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trends []store.PerformanceTrend
	for rows.Next() {
		var t store.PerformanceTrend
		var id, trendType, direction string
		var zone *string
		var metrics []byte

		if err := rows.Scan(&id, &t.AthleteID, &trendType, &zone, &direction,
			&t.Confidence, &t.WindowStart, &t.WindowEnd, &t.ChangeMagnitude,
			&t.SampleCount, &metrics, &t.IsActive, &t.CreatedAt, &t.DeactivatedAt); err != nil {
			return nil, err
		}
		if t.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parsing trend id %q: %w", id, err)
		}
		t.TrendType = store.TrendType(trendType)
		t.Direction = store.TrendDirection(direction)
		t.Zone = zoneFromCol(zone)
		if len(metrics) > 0 {
			if err := json.Unmarshal(metrics, &t.Metrics); err != nil {
				return nil, fmt.Errorf("decoding trend metrics: %w", err)
			}
		}
		trends = append(trends, t)
	}
	return trends, rows.Err()
}
