package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"veloform/internal/store"
)

// SetCurrentBenchmark demotes any current benchmark for the athlete,
// inserts the new record as current, and replaces the athlete's seven
// training zones, all in one transaction.
func (db *DB) SetCurrentBenchmark(ctx context.Context, b *store.BenchmarkRecord, zones []store.TrainingZone) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		UPDATE benchmarks
		SET is_current = 0
		WHERE athlete_id = ? AND is_current = 1
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

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO benchmarks (
			id, athlete_id, ftp_watts, lthr_bpm, test_date,
			test_method, source_activity_id, is_current, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, 1, ?)
	`,
		b.ID.String(), b.AthleteID, b.FTPWatts, b.LTHRBpm,
		b.TestDate.UTC().Format(time.RFC3339), string(b.TestMethod),
		b.SourceActivityID, b.CreatedAt.UTC().Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("inserting benchmark: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM training_zones WHERE athlete_id = ?
	`, b.AthleteID); err != nil {
		return fmt.Errorf("clearing training zones: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO training_zones (
			athlete_id, zone, zone_index, power_low, power_high,
			hr_low, hr_high, pct_ftp_low, pct_ftp_high, pct_lthr_low, pct_lthr_high
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, z := range zones {
		if _, err := stmt.ExecContext(ctx,
			z.AthleteID, string(z.Zone), z.ZoneIndex, z.PowerLow, z.PowerHigh,
			z.HRLow, z.HRHigh, z.PctFTPLow, z.PctFTPHigh, z.PctLTHRLow, z.PctLTHRHigh,
		); err != nil {
			return fmt.Errorf("inserting zone %s: %w", z.Zone, err)
		}
	}

	return tx.Commit()
}

// GetCurrentBenchmark returns the athlete's current benchmark record.
func (db *DB) GetCurrentBenchmark(ctx context.Context, athleteID int64) (*store.BenchmarkRecord, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, athlete_id, ftp_watts, lthr_bpm, test_date,
			test_method, source_activity_id, is_current, created_at
		FROM benchmarks
		WHERE athlete_id = ? AND is_current = 1
	`, athleteID)

	b, err := scanBenchmark(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNoBenchmark
	}
	return b, err
}

// ListBenchmarks returns every benchmark for the athlete, newest first.
func (db *DB) ListBenchmarks(ctx context.Context, athleteID int64) ([]store.BenchmarkRecord, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, athlete_id, ftp_watts, lthr_bpm, test_date,
			test_method, source_activity_id, is_current, created_at
		FROM benchmarks
		WHERE athlete_id = ?
		ORDER BY created_at DESC
	`, athleteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []store.BenchmarkRecord
	for rows.Next() {
		b, err := scanBenchmarkRows(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *b)
	}
	return records, rows.Err()
}

// GetZones returns the athlete's training zones in zone order.
func (db *DB) GetZones(ctx context.Context, athleteID int64) ([]store.TrainingZone, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT athlete_id, zone, zone_index, power_low, power_high,
			hr_low, hr_high, pct_ftp_low, pct_ftp_high, pct_lthr_low, pct_lthr_high
		FROM training_zones
		WHERE athlete_id = ?
		ORDER BY zone_index
	`, athleteID)
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

func scanBenchmark(row *sql.Row) (*store.BenchmarkRecord, error) {
	var b store.BenchmarkRecord
	var id, testDate, method, createdAt string
	var isCurrent int

	err := row.Scan(&id, &b.AthleteID, &b.FTPWatts, &b.LTHRBpm, &testDate,
		&method, &b.SourceActivityID, &isCurrent, &createdAt)
	if err != nil {
		return nil, err
	}
	return finishBenchmark(&b, id, testDate, method, createdAt, isCurrent)
}

func scanBenchmarkRows(rows *sql.Rows) (*store.BenchmarkRecord, error) {
	var b store.BenchmarkRecord
	var id, testDate, method, createdAt string
	var isCurrent int

	err := rows.Scan(&id, &b.AthleteID, &b.FTPWatts, &b.LTHRBpm, &testDate,
		&method, &b.SourceActivityID, &isCurrent, &createdAt)
	if err != nil {
		return nil, err
	}
	return finishBenchmark(&b, id, testDate, method, createdAt, isCurrent)
}

func finishBenchmark(b *store.BenchmarkRecord, id, testDate, method, createdAt string, isCurrent int) (*store.BenchmarkRecord, error) {
	var err error
	b.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parsing benchmark id %q: %w", id, err)
	}
	b.TestDate, err = time.Parse(time.RFC3339, testDate)
	if err != nil {
		return nil, fmt.Errorf("parsing test_date %q: %w", testDate, err)
	}
	b.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at %q: %w", createdAt, err)
	}
	b.TestMethod = store.TestMethod(method)
	b.IsCurrent = isCurrent == 1
	return b, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
