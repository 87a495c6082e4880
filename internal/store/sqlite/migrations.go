package sqlite

import (
	"database/sql"
	"fmt"
)

// migrate runs all migrations in order. Each statement is idempotent so
// the full list can run on every open.
func migrate(db *sql.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS benchmarks (
			id TEXT PRIMARY KEY,
			athlete_id INTEGER NOT NULL,
			ftp_watts INTEGER NOT NULL,
			lthr_bpm INTEGER,
			test_date TEXT NOT NULL,
			test_method TEXT NOT NULL,
			source_activity_id INTEGER,
			is_current INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_benchmarks_athlete_current
			ON benchmarks(athlete_id, is_current)`,

		`CREATE TABLE IF NOT EXISTS training_zones (
			athlete_id INTEGER NOT NULL,
			zone TEXT NOT NULL,
			zone_index INTEGER NOT NULL,
			power_low INTEGER NOT NULL,
			power_high INTEGER NOT NULL,
			hr_low INTEGER,
			hr_high INTEGER,
			pct_ftp_low INTEGER NOT NULL,
			pct_ftp_high INTEGER NOT NULL,
			pct_lthr_low INTEGER,
			pct_lthr_high INTEGER,
			PRIMARY KEY (athlete_id, zone)
		)`,

		`CREATE TABLE IF NOT EXISTS progression_levels (
			athlete_id INTEGER NOT NULL,
			zone TEXT NOT NULL,
			level REAL NOT NULL,
			workouts_completed INTEGER NOT NULL DEFAULT 0,
			last_delta REAL NOT NULL DEFAULT 0,
			last_changed_at TEXT,
			PRIMARY KEY (athlete_id, zone)
		)`,

		`CREATE TABLE IF NOT EXISTS progression_history (
			id TEXT PRIMARY KEY,
			athlete_id INTEGER NOT NULL,
			zone TEXT NOT NULL,
			old_level REAL NOT NULL,
			new_level REAL NOT NULL,
			delta REAL NOT NULL,
			reason TEXT NOT NULL,
			activity_id INTEGER,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_progression_history_athlete
			ON progression_history(athlete_id, zone, created_at)`,

		`CREATE TABLE IF NOT EXISTS workout_outcomes (
			id TEXT PRIMARY KEY,
			athlete_id INTEGER NOT NULL,
			zone TEXT NOT NULL,
			target_level REAL NOT NULL,
			completion_pct REAL NOT NULL,
			rpe REAL NOT NULL,
			activity_id INTEGER,
			completed_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_workout_outcomes_athlete
			ON workout_outcomes(athlete_id, zone)`,

		`CREATE TABLE IF NOT EXISTS rides (
			id INTEGER PRIMARY KEY,
			athlete_id INTEGER NOT NULL,
			started_at TEXT NOT NULL,
			duration_seconds INTEGER NOT NULL,
			avg_power REAL,
			normalized_power REAL,
			best_20min_power REAL,
			elevation_gain REAL NOT NULL DEFAULT 0,
			category TEXT NOT NULL DEFAULT '',
			zone TEXT,
			tss INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_rides_athlete_started
			ON rides(athlete_id, started_at)`,

		`CREATE TABLE IF NOT EXISTS performance_trends (
			id TEXT PRIMARY KEY,
			athlete_id INTEGER NOT NULL,
			trend_type TEXT NOT NULL,
			zone TEXT,
			direction TEXT NOT NULL,
			confidence REAL NOT NULL,
			window_start TEXT NOT NULL,
			window_end TEXT NOT NULL,
			change_magnitude REAL NOT NULL,
			sample_count INTEGER NOT NULL,
			metrics TEXT,
			is_active INTEGER NOT NULL DEFAULT 1,
			created_at TEXT NOT NULL,
			deactivated_at TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_performance_trends_active
			ON performance_trends(athlete_id, trend_type, is_active)`,

		`CREATE TABLE IF NOT EXISTS adaptation_settings (
			athlete_id INTEGER PRIMARY KEY,
			enabled INTEGER NOT NULL DEFAULT 1,
			auto_apply INTEGER NOT NULL DEFAULT 0,
			sensitivity TEXT NOT NULL DEFAULT 'moderate',
			min_lead_time_hours INTEGER NOT NULL DEFAULT 24,
			fatigue_threshold REAL NOT NULL DEFAULT -20,
			freshness_threshold REAL NOT NULL DEFAULT 10,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}
