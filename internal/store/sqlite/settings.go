package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"veloform/internal/store"
)

// GetAdaptationSettings returns the athlete's settings row.
func (db *DB) GetAdaptationSettings(ctx context.Context, athleteID int64) (*store.AdaptationSettings, error) {
	row := db.QueryRowContext(ctx, `
		SELECT athlete_id, enabled, auto_apply, sensitivity, min_lead_time_hours,
			fatigue_threshold, freshness_threshold, created_at, updated_at
		FROM adaptation_settings
		WHERE athlete_id = ?
	`, athleteID)

	var s store.AdaptationSettings
	var enabled, autoApply int
	var sensitivity, createdAt, updatedAt string
	err := row.Scan(&s.AthleteID, &enabled, &autoApply, &sensitivity,
		&s.MinLeadTimeHours, &s.FatigueThreshold, &s.FreshnessThreshold,
		&createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNoSettings
	}
	if err != nil {
		return nil, err
	}
	s.Enabled = enabled == 1
	s.AutoApply = autoApply == 1
	s.Sensitivity = store.Sensitivity(sensitivity)
	if s.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at %q: %w", createdAt, err)
	}
	if s.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at %q: %w", updatedAt, err)
	}
	return &s, nil
}

// SaveAdaptationSettings inserts or updates the settings row. CreatedAt
// is preserved on update; UpdatedAt always moves forward.
func (db *DB) SaveAdaptationSettings(ctx context.Context, s *store.AdaptationSettings) error {
	now := time.Now().UTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now

	_, err := db.ExecContext(ctx, `
		INSERT INTO adaptation_settings (
			athlete_id, enabled, auto_apply, sensitivity, min_lead_time_hours,
			fatigue_threshold, freshness_threshold, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (athlete_id) DO UPDATE SET
			enabled = excluded.enabled,
			auto_apply = excluded.auto_apply,
			sensitivity = excluded.sensitivity,
			min_lead_time_hours = excluded.min_lead_time_hours,
			fatigue_threshold = excluded.fatigue_threshold,
			freshness_threshold = excluded.freshness_threshold,
			updated_at = excluded.updated_at
	`,
		s.AthleteID, boolToInt(s.Enabled), boolToInt(s.AutoApply),
		string(s.Sensitivity), s.MinLeadTimeHours,
		s.FatigueThreshold, s.FreshnessThreshold,
		s.CreatedAt.UTC().Format(time.RFC3339), s.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("saving adaptation settings: %w", err)
	}
	return nil
}

// ListAthleteIDs returns the distinct athlete ids present in any of the
// benchmark, progression, or ride tables.
func (db *DB) ListAthleteIDs(ctx context.Context) ([]int64, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT athlete_id FROM benchmarks
		UNION
		SELECT athlete_id FROM progression_levels
		UNION
		SELECT athlete_id FROM rides
		ORDER BY athlete_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
