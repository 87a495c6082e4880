package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Statements are idempotent and run one at a time at startup; pgx's
// default exec mode does not allow multi-command strings.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS benchmarks (
		id                 UUID PRIMARY KEY,
		athlete_id         BIGINT NOT NULL,
		ftp_watts          INT NOT NULL,
		lthr_bpm           INT,
		test_date          TIMESTAMPTZ NOT NULL,
		test_method        TEXT NOT NULL,
		source_activity_id BIGINT,
		is_current         BOOLEAN NOT NULL DEFAULT FALSE,
		created_at         TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_benchmarks_athlete_current
		ON benchmarks (athlete_id, is_current)`,

	`CREATE TABLE IF NOT EXISTS training_zones (
		athlete_id    BIGINT NOT NULL,
		zone          TEXT NOT NULL,
		zone_index    INT NOT NULL,
		power_low     INT NOT NULL,
		power_high    INT NOT NULL,
		hr_low        INT,
		hr_high       INT,
		pct_ftp_low   INT NOT NULL,
		pct_ftp_high  INT NOT NULL,
		pct_lthr_low  INT,
		pct_lthr_high INT,
		PRIMARY KEY (athlete_id, zone)
	)`,

	`CREATE TABLE IF NOT EXISTS progression_levels (
		athlete_id         BIGINT NOT NULL,
		zone               TEXT NOT NULL,
		level              DOUBLE PRECISION NOT NULL,
		workouts_completed INT NOT NULL DEFAULT 0,
		last_delta         DOUBLE PRECISION NOT NULL DEFAULT 0,
		last_changed_at    TIMESTAMPTZ,
		PRIMARY KEY (athlete_id, zone)
	)`,

	`CREATE TABLE IF NOT EXISTS progression_history (
		id          UUID PRIMARY KEY,
		athlete_id  BIGINT NOT NULL,
		zone        TEXT NOT NULL,
		old_level   DOUBLE PRECISION NOT NULL,
		new_level   DOUBLE PRECISION NOT NULL,
		delta       DOUBLE PRECISION NOT NULL,
		reason      TEXT NOT NULL,
		activity_id BIGINT,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_progression_history_athlete
		ON progression_history (athlete_id, zone, created_at)`,

	`CREATE TABLE IF NOT EXISTS workout_outcomes (
		id             UUID PRIMARY KEY,
		athlete_id     BIGINT NOT NULL,
		zone           TEXT NOT NULL,
		target_level   DOUBLE PRECISION NOT NULL,
		completion_pct DOUBLE PRECISION NOT NULL,
		rpe            DOUBLE PRECISION NOT NULL,
		activity_id    BIGINT,
		completed_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_workout_outcomes_athlete
		ON workout_outcomes (athlete_id, zone)`,

	`CREATE TABLE IF NOT EXISTS rides (
		id               BIGINT PRIMARY KEY,
		athlete_id       BIGINT NOT NULL,
		started_at       TIMESTAMPTZ NOT NULL,
		duration_seconds INT NOT NULL,
		avg_power        DOUBLE PRECISION,
		normalized_power DOUBLE PRECISION,
		best_20min_power DOUBLE PRECISION,
		elevation_gain   DOUBLE PRECISION NOT NULL DEFAULT 0,
		category         TEXT NOT NULL DEFAULT '',
		zone             TEXT,
		tss              INT NOT NULL DEFAULT 0,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_rides_athlete_started
		ON rides (athlete_id, started_at)`,

	`CREATE TABLE IF NOT EXISTS performance_trends (
		id               UUID PRIMARY KEY,
		athlete_id       BIGINT NOT NULL,
		trend_type       TEXT NOT NULL,
		zone             TEXT,
		direction        TEXT NOT NULL,
		confidence       DOUBLE PRECISION NOT NULL,
		window_start     TIMESTAMPTZ NOT NULL,
		window_end       TIMESTAMPTZ NOT NULL,
		change_magnitude DOUBLE PRECISION NOT NULL,
		sample_count     INT NOT NULL,
		metrics          JSONB,
		is_active        BOOLEAN NOT NULL DEFAULT TRUE,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
		deactivated_at   TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS idx_performance_trends_athlete
		ON performance_trends (athlete_id, trend_type, is_active)`,

	`CREATE TABLE IF NOT EXISTS adaptation_settings (
		athlete_id          BIGINT PRIMARY KEY,
		enabled             BOOLEAN NOT NULL DEFAULT TRUE,
		auto_apply          BOOLEAN NOT NULL DEFAULT FALSE,
		sensitivity         TEXT NOT NULL DEFAULT 'moderate',
		min_lead_time_hours INT NOT NULL DEFAULT 24,
		fatigue_threshold   DOUBLE PRECISION NOT NULL DEFAULT -20,
		freshness_threshold DOUBLE PRECISION NOT NULL DEFAULT 10,
		created_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at          TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

// migrate ensures tables exist. Called once at startup.
func migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, m := range migrations {
		if _, err := pool.Exec(ctx, m); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}
