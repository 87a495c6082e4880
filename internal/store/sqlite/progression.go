package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"veloform/internal/store"
)

// GetProgressionLevel returns the level row for one zone.
func (db *DB) GetProgressionLevel(ctx context.Context, athleteID int64, zone store.Zone) (*store.ProgressionLevel, error) {
	row := db.QueryRowContext(ctx, `
		SELECT athlete_id, zone, level, workouts_completed, last_delta, last_changed_at
		FROM progression_levels
		WHERE athlete_id = ? AND zone = ?
	`, athleteID, string(zone))

	var p store.ProgressionLevel
	var name string
	var lastChanged sql.NullString
	err := row.Scan(&p.AthleteID, &name, &p.Level, &p.WorkoutsCompleted, &p.LastDelta, &lastChanged)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNoProgression
	}
	if err != nil {
		return nil, err
	}
	p.Zone = store.Zone(name)
	if p.LastChangedAt, err = parseTimePtr(lastChanged); err != nil {
		return nil, fmt.Errorf("parsing last_changed_at: %w", err)
	}
	return &p, nil
}

// ListProgressionLevels returns every level row for the athlete, ordered
// by zone intensity. Zones are stored by name, so ordering happens here
// rather than in SQL.
func (db *DB) ListProgressionLevels(ctx context.Context, athleteID int64) ([]store.ProgressionLevel, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT athlete_id, zone, level, workouts_completed, last_delta, last_changed_at
		FROM progression_levels
		WHERE athlete_id = ?
	`, athleteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var levels []store.ProgressionLevel
	for rows.Next() {
		var p store.ProgressionLevel
		var name string
		var lastChanged sql.NullString
		if err := rows.Scan(&p.AthleteID, &name, &p.Level, &p.WorkoutsCompleted, &p.LastDelta, &lastChanged); err != nil {
			return nil, err
		}
		p.Zone = store.Zone(name)
		if p.LastChangedAt, err = parseTimePtr(lastChanged); err != nil {
			return nil, fmt.Errorf("parsing last_changed_at: %w", err)
		}
		levels = append(levels, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.Slice(levels, func(i, j int) bool {
		return store.ZoneRank(levels[i].Zone) < store.ZoneRank(levels[j].Zone)
	})
	return levels, nil
}

// ApplyProgression writes the level row, its history entry, and the
// workout outcome (when given) in one transaction.
func (db *DB) ApplyProgression(ctx context.Context, level *store.ProgressionLevel, entry *store.ProgressionHistoryEntry, outcome *store.WorkoutOutcome) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := upsertLevelTx(ctx, tx, level); err != nil {
		return err
	}
	if err := insertHistoryTx(ctx, tx, entry); err != nil {
		return err
	}
	if outcome != nil {
		if outcome.ID == uuid.Nil {
			outcome.ID = uuid.New()
		}
		if outcome.CompletedAt.IsZero() {
			outcome.CompletedAt = time.Now().UTC()
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO workout_outcomes (
				id, athlete_id, zone, target_level, completion_pct, rpe,
				activity_id, completed_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`,
			outcome.ID.String(), outcome.AthleteID, string(outcome.Zone),
			outcome.TargetLevel, outcome.CompletionPct, outcome.RPE,
			outcome.ActivityID, outcome.CompletedAt.UTC().Format(time.RFC3339),
		); err != nil {
			return fmt.Errorf("inserting workout outcome: %w", err)
		}
	}

	return tx.Commit()
}

// SeedProgression bulk-writes level rows and their seed history entries
// in one transaction.
func (db *DB) SeedProgression(ctx context.Context, levels []store.ProgressionLevel, entries []store.ProgressionHistoryEntry) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for i := range levels {
		if err := upsertLevelTx(ctx, tx, &levels[i]); err != nil {
			return err
		}
	}
	for i := range entries {
		if err := insertHistoryTx(ctx, tx, &entries[i]); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ListProgressionHistory returns entries since the given time, newest
// first. A nil zone returns entries for every zone.
func (db *DB) ListProgressionHistory(ctx context.Context, athleteID int64, zone *store.Zone, since time.Time) ([]store.ProgressionHistoryEntry, error) {
	query := `
		SELECT id, athlete_id, zone, old_level, new_level, delta, reason,
			activity_id, created_at
		FROM progression_history
		WHERE athlete_id = ? AND created_at >= ?
	`
	args := []interface{}{athleteID, since.UTC().Format(time.RFC3339)}
	if zone != nil {
		query += ` AND zone = ?`
		args = append(args, string(*zone))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []store.ProgressionHistoryEntry
	for rows.Next() {
		var e store.ProgressionHistoryEntry
		var id, name, reason, createdAt string
		if err := rows.Scan(&id, &e.AthleteID, &name, &e.OldLevel, &e.NewLevel,
			&e.Delta, &reason, &e.ActivityID, &createdAt); err != nil {
			return nil, err
		}
		if e.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parsing history id %q: %w", id, err)
		}
		if e.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, fmt.Errorf("parsing created_at %q: %w", createdAt, err)
		}
		e.Zone = store.Zone(name)
		e.Reason = store.ChangeReason(reason)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// GetAverageRPEByZone returns the mean reported exertion per zone across
// all of the athlete's recorded outcomes.
func (db *DB) GetAverageRPEByZone(ctx context.Context, athleteID int64) (map[store.Zone]float64, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT zone, AVG(rpe)
		FROM workout_outcomes
		WHERE athlete_id = ?
		GROUP BY zone
	`, athleteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	averages := make(map[store.Zone]float64)
	for rows.Next() {
		var name string
		var avg float64
		if err := rows.Scan(&name, &avg); err != nil {
			return nil, err
		}
		averages[store.Zone(name)] = avg
	}
	return averages, rows.Err()
}

func upsertLevelTx(ctx context.Context, tx *sql.Tx, level *store.ProgressionLevel) error {
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO progression_levels (
			athlete_id, zone, level, workouts_completed, last_delta, last_changed_at
		) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (athlete_id, zone) DO UPDATE SET
			level = excluded.level,
			workouts_completed = excluded.workouts_completed,
			last_delta = excluded.last_delta,
			last_changed_at = excluded.last_changed_at
	`,
		level.AthleteID, string(level.Zone), level.Level,
		level.WorkoutsCompleted, level.LastDelta, formatTimePtr(level.LastChangedAt),
	); err != nil {
		return fmt.Errorf("upserting level for %s: %w", level.Zone, err)
	}
	return nil
}

func insertHistoryTx(ctx context.Context, tx *sql.Tx, entry *store.ProgressionHistoryEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO progression_history (
			id, athlete_id, zone, old_level, new_level, delta, reason,
			activity_id, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		entry.ID.String(), entry.AthleteID, string(entry.Zone),
		entry.OldLevel, entry.NewLevel, entry.Delta, string(entry.Reason),
		entry.ActivityID, entry.CreatedAt.UTC().Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("inserting history entry: %w", err)
	}
	return nil
}

func formatTimePtr(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func parseTimePtr(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
