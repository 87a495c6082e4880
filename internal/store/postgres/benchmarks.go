package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"veloform/internal/store"
)

// SetCurrentBenchmark demotes any current benchmark for the athlete,
// inserts the new record as current, and replaces the athlete's seven
// training zones, all in one transaction.
func (db *DB) SetCurrentBenchmark(ctx context.Context, b *store.BenchmarkRecord, zones []store.TrainingZone) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		UPDATE benchmarks
		SET is_current = FALSE
		WHERE athlete_id = $1 AND is_current
	`, b.AthleteID); err != nil {
		return fmt.Errorf("demoting current benchmark: %w", err)
	}

	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}
	b.IsCurrent = true

	if _, err := tx.Exec(ctx, `
		INSERT INTO benchmarks (
			id, athlete_id, ftp_watts, lthr_bpm, test_date,
			test_method, source_activity_id, is_current, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE, $8)
	`,
		b.ID.String(), b.AthleteID, b.FTPWatts, b.LTHRBpm, b.TestDate,
		string(b.TestMethod), b.SourceActivityID, b.CreatedAt,
	); err != nil {
		return fmt.Errorf("inserting benchmark: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		DELETE FROM training_zones WHERE athlete_id = $1
	`, b.AthleteID); err != nil {
		return fmt.Errorf("clearing training zones: %w", err)
	}

	for _, z := range zones {
		if _, err := tx.Exec(ctx, `
			INSERT INTO training_zones (
				athlete_id, zone, zone_index, power_low, power_high,
				hr_low, hr_high, pct_ftp_low, pct_ftp_high, pct_lthr_low, pct_lthr_high
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		`,
			z.AthleteID, string(z.Zone), z.ZoneIndex, z.PowerLow, z.PowerHigh,
			z.HRLow, z.HRHigh, z.PctFTPLow, z.PctFTPHigh, z.PctLTHRLow, z.PctLTHRHigh,
		); err != nil {
			return fmt.Errorf("inserting zone %s: %w", z.Zone, err)
		}
	}

	return tx.Commit(ctx)
}

// GetCurrentBenchmark returns the athlete's current benchmark record.
func (db *DB) GetCurrentBenchmark(ctx context.Context, athleteID int64) (*store.BenchmarkRecord, error) {
	const q = `
		SELECT id, athlete_id, ftp_watts, lthr_bpm, test_date,
			test_method, source_activity_id, is_current, created_at
		FROM benchmarks
		WHERE athlete_id = $1 AND is_current
	`
	b, err := scanBenchmark(db.pool.QueryRow(ctx, q, athleteID).Scan)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNoBenchmark
	}
	return b, err
}

// ListBenchmarks returns every benchmark for the athlete, newest first.
func (db *DB) ListBenchmarks(ctx context.Context, athleteID int64) ([]store.BenchmarkRecord, error) {
	const q = `
		SELECT id, athlete_id, ftp_watts, lthr_bpm, test_date,
			test_method, source_activity_id, is_current, created_at
		FROM benchmarks
		WHERE athlete_id = $1
		ORDER BY created_at DESC
	`
	rows, err := db.pool.Query(ctx, q, athleteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []store.BenchmarkRecord
	for rows.Next() {
		b, err := scanBenchmark(rows.Scan)
		if err != nil {
			return nil, err
		}
		records = append(records, *b)
	}
	return records, rows.Err()
}

// GetZones returns the athlete's training zones in zone order.
func (db *DB) GetZones(ctx context.Context, athleteID int64) ([]store.TrainingZone, error) {
	const q = `
		SELECT athlete_id, zone, zone_index, power_low, power_high,
			hr_low, hr_high, pct_ftp_low, pct_ftp_high, pct_lthr_low, pct_lthr_high
		FROM training_zones
		WHERE athlete_id = $1
		ORDER BY zone_index
	`
	rows, err := db.pool.Query(ctx, q, athleteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var zones []store.TrainingZone
	for rows.Next() {
		var z store.TrainingZone
		var name string
		if err := rows.Scan(
			&z.AthleteID, &name, &z.ZoneIndex, &z.PowerLow, &z.PowerHigh,
			&z.HRLow, &z.HRHigh, &z.PctFTPLow, &z.PctFTPHigh, &z.PctLTHRLow, &z.PctLTHRHigh,
		); err != nil {
			return nil, err
		}
		z.Zone = store.Zone(name)
		zones = append(zones, z)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(zones) == 0 {
		return nil, store.ErrNoBenchmark
	}
	return zones, nil
}

func scanBenchmark(scan func(dest ...interface{}) error) (*store.BenchmarkRecord, error) {
	var b store.BenchmarkRecord
	var id, method string

	err := scan(&id, &b.AthleteID, &b.FTPWatts, &b.LTHRBpm, &b.TestDate,
		&method, &b.SourceActivityID, &b.IsCurrent, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	if b.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parsing benchmark id %q: %w", id, err)
	}
	b.TestMethod = store.TestMethod(method)
	return &b, nil
}
