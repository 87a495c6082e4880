package store

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors shared by all Store implementations. Callers branch on
// these with errors.Is.
var (
	// ErrNoBenchmark means the athlete has no current benchmark record.
	ErrNoBenchmark = errors.New("no current benchmark")
	// ErrNoProgression means no progression level exists for the zone yet.
	ErrNoProgression = errors.New("no progression level")
	// ErrNoSettings means the athlete has no adaptation settings row.
	ErrNoSettings = errors.New("no adaptation settings")
	// ErrRideNotFound is returned when a ride doesn't exist.
	ErrRideNotFound = errors.New("ride not found")
	// ErrTrendNotFound is returned when a trend doesn't exist.
	ErrTrendNotFound = errors.New("trend not found")
)

// Store is the persistence contract for the training engine. All state is
// partitioned by athlete id, so different athletes may be written
// concurrently without coordination.
//
// Three operations are transactional units and must be all-or-nothing:
// SetCurrentBenchmark (demote old current, insert new, replace zones),
// ApplyProgression (level update, audit append, outcome record), and
// ActivateTrend (deactivate superseded actives, insert new).
type Store interface {
	// SetCurrentBenchmark demotes any existing current benchmark for the
	// athlete, inserts b as the new current record, and replaces the
	// athlete's training zones with the given set, atomically.
	SetCurrentBenchmark(ctx context.Context, b *BenchmarkRecord, zones []TrainingZone) error
	// GetCurrentBenchmark returns the athlete's current benchmark, or
	// ErrNoBenchmark.
	GetCurrentBenchmark(ctx context.Context, athleteID int64) (*BenchmarkRecord, error)
	// ListBenchmarks returns all benchmark records for the athlete, newest
	// first.
	ListBenchmarks(ctx context.Context, athleteID int64) ([]BenchmarkRecord, error)
	// GetZones returns the athlete's training zones in zone order, or
	// ErrNoBenchmark when none have been derived yet.
	GetZones(ctx context.Context, athleteID int64) ([]TrainingZone, error)

	// GetProgressionLevel returns the level for one zone, or
	// ErrNoProgression.
	GetProgressionLevel(ctx context.Context, athleteID int64, zone Zone) (*ProgressionLevel, error)
	// ListProgressionLevels returns all levels for the athlete in zone
	// order.
	ListProgressionLevels(ctx context.Context, athleteID int64) ([]ProgressionLevel, error)
	// ApplyProgression upserts the level row, appends the history entry,
	// and records the outcome (when non-nil), atomically.
	ApplyProgression(ctx context.Context, level *ProgressionLevel, entry *ProgressionHistoryEntry, outcome *WorkoutOutcome) error
	// SeedProgression bulk-writes level rows and their seed history
	// entries, atomically.
	SeedProgression(ctx context.Context, levels []ProgressionLevel, entries []ProgressionHistoryEntry) error
	// ListProgressionHistory returns history entries since the given time,
	// newest first, optionally filtered to one zone.
	ListProgressionHistory(ctx context.Context, athleteID int64, zone *Zone, since time.Time) ([]ProgressionHistoryEntry, error)
	// GetAverageRPEByZone returns the athlete's mean reported exertion per
	// zone across all recorded outcomes.
	GetAverageRPEByZone(ctx context.Context, athleteID int64) (map[Zone]float64, error)

	// UpsertRide inserts or updates a ride summary keyed by its external
	// activity id.
	UpsertRide(ctx context.Context, r *Ride) error
	// GetRide returns one ride by id, or ErrRideNotFound.
	GetRide(ctx context.Context, id int64) (*Ride, error)
	// ListRidesSince returns the athlete's rides started at or after the
	// given time, oldest first.
	ListRidesSince(ctx context.Context, athleteID int64, since time.Time) ([]Ride, error)

	// ActivateTrend deactivates the athlete's active trends whose type is
	// in supersedes (matching t's zone key) and inserts t, atomically.
	ActivateTrend(ctx context.Context, t *PerformanceTrend, supersedes []TrendType) error
	// ListActiveTrends returns the athlete's active trends, newest first.
	ListActiveTrends(ctx context.Context, athleteID int64) ([]PerformanceTrend, error)
	// ListTrends returns all trend rows for the athlete including
	// deactivated ones, newest first.
	ListTrends(ctx context.Context, athleteID int64) ([]PerformanceTrend, error)

	// GetAdaptationSettings returns the athlete's settings, or
	// ErrNoSettings.
	GetAdaptationSettings(ctx context.Context, athleteID int64) (*AdaptationSettings, error)
	// SaveAdaptationSettings inserts or updates the settings row.
	SaveAdaptationSettings(ctx context.Context, s *AdaptationSettings) error

	// ListAthleteIDs returns the distinct athlete ids that have any
	// benchmark, progression, or ride data.
	ListAthleteIDs(ctx context.Context) ([]int64, error)

	Close() error
}
