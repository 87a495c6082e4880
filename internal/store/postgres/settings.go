package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"veloform/internal/store"
)

// GetAdaptationSettings returns the athlete's settings row.
func (db *DB) GetAdaptationSettings(ctx context.Context, athleteID int64) (*store.AdaptationSettings, error) {
	const q = `
		SELECT athlete_id, enabled, auto_apply, sensitivity, min_lead_time_hours,
			fatigue_threshold, freshness_threshold, created_at, updated_at
		FROM adaptation_settings
		WHERE athlete_id = $1
	`
	var s store.AdaptationSettings
	var sensitivity string
	err := db.pool.QueryRow(ctx, q, athleteID).Scan(
		&s.AthleteID, &s.Enabled, &s.AutoApply, &sensitivity, &s.MinLeadTimeHours,
		&s.FatigueThreshold, &s.FreshnessThreshold, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNoSettings
	}
	if err != nil {
		return nil, err
	}
	s.Sensitivity = store.Sensitivity(sensitivity)
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

	_, err := db.pool.Exec(ctx, `
		INSERT INTO adaptation_settings (
			athlete_id, enabled, auto_apply, sensitivity, min_lead_time_hours,
			fatigue_threshold, freshness_threshold, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (athlete_id) DO UPDATE SET
			enabled = excluded.enabled,
			auto_apply = excluded.auto_apply,
			sensitivity = excluded.sensitivity,
			min_lead_time_hours = excluded.min_lead_time_hours,
			fatigue_threshold = excluded.fatigue_threshold,
			freshness_threshold = excluded.freshness_threshold,
			updated_at = excluded.updated_at
	`,
		s.AthleteID, s.Enabled, s.AutoApply, string(s.Sensitivity),
		s.MinLeadTimeHours, s.FatigueThreshold, s.FreshnessThreshold,
		s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("saving adaptation settings: %w", err)
	}
	return nil
}

// ListAthleteIDs returns the distinct athlete ids present in any of the
// benchmark, progression, or ride tables.
func (db *DB) ListAthleteIDs(ctx context.Context) ([]int64, error) {
	const q = `
		SELECT athlete_id FROM benchmarks
		UNION
		SELECT athlete_id FROM progression_levels
		UNION
		SELECT athlete_id FROM rides
		ORDER BY athlete_id
	`
	rows, err := db.pool.Query(ctx, q)
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
