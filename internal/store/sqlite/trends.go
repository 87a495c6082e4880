package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"veloform/internal/store"
)

// ActivateTrend deactivates the athlete's active trends whose type is in
// supersedes (matching t's zone key), then inserts t as active, in one
// transaction. Superseded rows keep their data and gain a deactivation
// timestamp.
func (db *DB) ActivateTrend(ctx context.Context, t *store.PerformanceTrend, supersedes []store.TrendType) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)

	if len(supersedes) > 0 {
		placeholders := make([]string, len(supersedes))
		args := []interface{}{now, t.AthleteID}
		for i, tt := range supersedes {
			placeholders[i] = "?"
			args = append(args, string(tt))
		}
		query := fmt.Sprintf(`
			UPDATE performance_trends
			SET is_active = 0, deactivated_at = ?
			WHERE athlete_id = ? AND is_active = 1 AND trend_type IN (%s)
		`, strings.Join(placeholders, ", "))
		if t.Zone != nil {
			query += ` AND zone = ?`
			args = append(args, string(*t.Zone))
		} else {
			query += ` AND zone IS NULL`
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
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

	var metrics interface{}
	if t.Metrics != nil {
		buf, err := json.Marshal(t.Metrics)
		if err != nil {
			return fmt.Errorf("encoding trend metrics: %w", err)
		}
		metrics = string(buf)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO performance_trends (
			id, athlete_id, trend_type, zone, direction, confidence,
			window_start, window_end, change_magnitude, sample_count,
			metrics, is_active, created_at, deactivated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, NULL)
	`,
		t.ID.String(), t.AthleteID, string(t.TrendType), zoneToArg(t.Zone),
		string(t.Direction), t.Confidence,
		t.WindowStart.UTC().Format(time.RFC3339), t.WindowEnd.UTC().Format(time.RFC3339),
		t.ChangeMagnitude, t.SampleCount, metrics,
		t.CreatedAt.UTC().Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("inserting trend: %w", err)
	}

	return tx.Commit()
}

// ListActiveTrends returns the athlete's active trends, newest first.
func (db *DB) ListActiveTrends(ctx context.Context, athleteID int64) ([]store.PerformanceTrend, error) {
	return db.queryTrends(ctx, `
		SELECT id, athlete_id, trend_type, zone, direction, confidence,
			window_start, window_end, change_magnitude, sample_count,
			metrics, is_active, created_at, deactivated_at
		FROM performance_trends
		WHERE athlete_id = ? AND is_active = 1
		ORDER BY created_at DESC
	`, athleteID)
}

// ListTrends returns every trend row for the athlete, deactivated ones
// included, newest first.
func (db *DB) ListTrends(ctx context.Context, athleteID int64) ([]store.PerformanceTrend, error) {
	return db.queryTrends(ctx, `
		SELECT id, athlete_id, trend_type, zone, direction, confidence,
			window_start, window_end, change_magnitude, sample_count,
			metrics, is_active, created_at, deactivated_at
		FROM performance_trends
		WHERE athlete_id = ?
		ORDER BY created_at DESC
	`, athleteID)
}

func (db *DB) queryTrends(ctx context.Context, query string, args ...interface{}) ([]store.PerformanceTrend, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trends []store.PerformanceTrend
	for rows.Next() {
		t, err := scanTrend(rows)
		if err != nil {
			return nil, err
		}
		trends = append(trends, *t)
	}
	return trends, rows.Err()
}

func scanTrend(rows *sql.Rows) (*store.PerformanceTrend, error) {
	var t store.PerformanceTrend
	var id, trendType, direction, windowStart, windowEnd, createdAt string
	var zone, metrics, deactivatedAt sql.NullString
	var isActive int

	err := rows.Scan(&id, &t.AthleteID, &trendType, &zone, &direction,
		&t.Confidence, &windowStart, &windowEnd, &t.ChangeMagnitude,
		&t.SampleCount, &metrics, &isActive, &createdAt, &deactivatedAt)
	if err != nil {
		return nil, err
	}

	if t.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parsing trend id %q: %w", id, err)
	}
	if t.WindowStart, err = time.Parse(time.RFC3339, windowStart); err != nil {
		return nil, fmt.Errorf("parsing window_start %q: %w", windowStart, err)
	}
	if t.WindowEnd, err = time.Parse(time.RFC3339, windowEnd); err != nil {
		return nil, fmt.Errorf("parsing window_end %q: %w", windowEnd, err)
	}
	if t.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at %q: %w", createdAt, err)
	}
	if t.DeactivatedAt, err = parseTimePtr(deactivatedAt); err != nil {
		return nil, fmt.Errorf("parsing deactivated_at: %w", err)
	}
	t.TrendType = store.TrendType(trendType)
	t.Direction = store.TrendDirection(direction)
	t.IsActive = isActive == 1
	if zone.Valid {
		z := store.Zone(zone.String)
		t.Zone = &z
	}
	if metrics.Valid && metrics.String != "" {
		if err := json.Unmarshal([]byte(metrics.String), &t.Metrics); err != nil {
			return nil, fmt.Errorf("decoding trend metrics: %w", err)
		}
	}
	return &t, nil
}
