package store

import (
	"time"

	"github.com/google/uuid"
)

// Zone identifies one of the seven training zones.
type Zone string

const (
	ZoneRecovery  Zone = "recovery"
	ZoneEndurance Zone = "endurance"
	ZoneTempo     Zone = "tempo"
	ZoneSweetSpot Zone = "sweet_spot"
	ZoneThreshold Zone = "threshold"
	ZoneVO2Max    Zone = "vo2max"
	ZoneAnaerobic Zone = "anaerobic"
)

// ZoneOrder lists the seven zones from easiest to hardest.
var ZoneOrder = []Zone{
	ZoneRecovery,
	ZoneEndurance,
	ZoneTempo,
	ZoneSweetSpot,
	ZoneThreshold,
	ZoneVO2Max,
	ZoneAnaerobic,
}

// ValidZone reports whether name is one of the seven training zones.
func ValidZone(name Zone) bool {
	for _, z := range ZoneOrder {
		if z == name {
			return true
		}
	}
	return false
}

// ZoneRank returns the zone's position in ZoneOrder, or -1 for unknown
// zones. Used to sort per-zone records into training order.
func ZoneRank(name Zone) int {
	for i, z := range ZoneOrder {
		if z == name {
			return i
		}
	}
	return -1
}

// TestMethod describes how a benchmark value was obtained.
type TestMethod string

const (
	TestMethodRamp      TestMethod = "ramp"
	TestMethodTwentyMin TestMethod = "20min"
	TestMethodEightMin  TestMethod = "8min"
	TestMethodAuto      TestMethod = "auto"
	TestMethodManual    TestMethod = "manual"
)

// ValidTestMethod reports whether m is a known benchmark test method.
func ValidTestMethod(m TestMethod) bool {
	switch m {
	case TestMethodRamp, TestMethodTwentyMin, TestMethodEightMin, TestMethodAuto, TestMethodManual:
		return true
	}
	return false
}

// ChangeReason tags a progression history entry with why the level moved.
type ChangeReason string

const (
	ReasonWorkoutSuccess  ChangeReason = "workout_success"
	ReasonWorkoutStruggle ChangeReason = "workout_struggle"
	ReasonWorkoutFailure  ChangeReason = "workout_failure"
	ReasonNoChange        ChangeReason = "no_change"
	ReasonReseed          ChangeReason = "reseed"
)

// TrendType identifies what a performance trend is about.
type TrendType string

const (
	TrendFTPImprovement TrendType = "ftp_improvement"
	TrendFTPDecline     TrendType = "ftp_decline"
	TrendVolumeIncrease TrendType = "volume_increase"
	TrendVolumeDecrease TrendType = "volume_decrease"
	TrendZoneFitness    TrendType = "zone_fitness"
)

// TrendDirection is the sign of a detected trend.
type TrendDirection string

const (
	DirectionImproving TrendDirection = "improving"
	DirectionDeclining TrendDirection = "declining"
	DirectionStable    TrendDirection = "stable"
)

// Sensitivity selects how eagerly downstream consumers react to trends.
type Sensitivity string

const (
	SensitivityConservative Sensitivity = "conservative"
	SensitivityModerate     Sensitivity = "moderate"
	SensitivityAggressive   Sensitivity = "aggressive"
)

// ValidSensitivity reports whether s is a known sensitivity tier.
func ValidSensitivity(s Sensitivity) bool {
	switch s {
	case SensitivityConservative, SensitivityModerate, SensitivityAggressive:
		return true
	}
	return false
}

// BenchmarkRecord is one threshold test result. Records are append-only:
// a new current record demotes the prior one, which stays as history.
type BenchmarkRecord struct {
	ID               uuid.UUID  `db:"id"`
	AthleteID        int64      `db:"athlete_id"`
	FTPWatts         int        `db:"ftp_watts"`
	LTHRBpm          *int       `db:"lthr_bpm"`
	TestDate         time.Time  `db:"test_date"`
	TestMethod       TestMethod `db:"test_method"`
	SourceActivityID *int64     `db:"source_activity_id"`
	IsCurrent        bool       `db:"is_current"`
	CreatedAt        time.Time  `db:"created_at"`
}

// TrainingZone is one of the seven zones derived from the current
// benchmark. Zones are replaced as a unit, never edited individually.
type TrainingZone struct {
	AthleteID   int64 `db:"athlete_id"`
	Zone        Zone  `db:"zone"`
	ZoneIndex   int   `db:"zone_index"`
	PowerLow    int   `db:"power_low"`  // watts
	PowerHigh   int   `db:"power_high"` // watts
	HRLow       *int  `db:"hr_low"`     // bpm, unset without LTHR
	HRHigh      *int  `db:"hr_high"`    // bpm
	PctFTPLow   int   `db:"pct_ftp_low"`
	PctFTPHigh  int   `db:"pct_ftp_high"`
	PctLTHRLow  *int  `db:"pct_lthr_low"`
	PctLTHRHigh *int  `db:"pct_lthr_high"`
}

// ProgressionLevel is the per-zone fitness score for an athlete,
// continuous on [1.0, 10.0].
type ProgressionLevel struct {
	AthleteID         int64      `db:"athlete_id"`
	Zone              Zone       `db:"zone"`
	Level             float64    `db:"level"`
	WorkoutsCompleted int        `db:"workouts_completed"`
	LastDelta         float64    `db:"last_delta"`
	LastChangedAt     *time.Time `db:"last_changed_at"`
}

// ProgressionHistoryEntry is the immutable audit record of one level
// transition.
type ProgressionHistoryEntry struct {
	ID         uuid.UUID    `db:"id"`
	AthleteID  int64        `db:"athlete_id"`
	Zone       Zone         `db:"zone"`
	OldLevel   float64      `db:"old_level"`
	NewLevel   float64      `db:"new_level"`
	Delta      float64      `db:"delta"`
	Reason     ChangeReason `db:"reason"`
	ActivityID *int64       `db:"activity_id"`
	CreatedAt  time.Time    `db:"created_at"`
}

// WorkoutOutcome is one completed structured workout as reported by the
// surrounding product.
type WorkoutOutcome struct {
	ID            uuid.UUID `db:"id"`
	AthleteID     int64     `db:"athlete_id"`
	Zone          Zone      `db:"zone"`
	TargetLevel   float64   `db:"target_level"`
	CompletionPct float64   `db:"completion_pct"`
	RPE           float64   `db:"rpe"` // perceived exertion, 1-10
	ActivityID    *int64    `db:"activity_id"`
	CompletedAt   time.Time `db:"completed_at"`
}

// Ride is a raw activity summary ingested from the surrounding product.
// The ID is the external activity id.
type Ride struct {
	ID              int64     `db:"id"`
	AthleteID       int64     `db:"athlete_id"`
	StartedAt       time.Time `db:"started_at"`
	DurationSeconds int       `db:"duration_seconds"`
	AvgPower        *float64  `db:"avg_power"`        // watts
	NormalizedPower *float64  `db:"normalized_power"` // watts
	Best20MinPower  *float64  `db:"best_20min_power"` // watts
	ElevationGain   float64   `db:"elevation_gain"`   // meters
	Category        string    `db:"category"`         // workout category, e.g. "endurance"
	Zone            *Zone     `db:"zone"`             // classification, when known
	TSS             int       `db:"tss"`
	CreatedAt       time.Time `db:"created_at"`
}

// PerformanceTrend is a directional, confidence-scored inference over a
// historical window. Trends stay active until superseded; deactivated
// rows form the trend history.
type PerformanceTrend struct {
	ID              uuid.UUID              `db:"id"`
	AthleteID       int64                  `db:"athlete_id"`
	TrendType       TrendType              `db:"trend_type"`
	Zone            *Zone                  `db:"zone"` // set for zone_fitness only
	Direction       TrendDirection         `db:"direction"`
	Confidence      float64                `db:"confidence"` // [0,1]
	WindowStart     time.Time              `db:"window_start"`
	WindowEnd       time.Time              `db:"window_end"`
	ChangeMagnitude float64                `db:"change_magnitude"`
	SampleCount     int                    `db:"sample_count"`
	Metrics         map[string]interface{} `db:"metrics"` // stored as JSON
	IsActive        bool                   `db:"is_active"`
	CreatedAt       time.Time              `db:"created_at"`
	DeactivatedAt   *time.Time             `db:"deactivated_at"`
}

// AdaptationSettings is per-athlete configuration for consumers of trend
// and progression output. The engine reads it, never mutates it.
type AdaptationSettings struct {
	AthleteID          int64       `db:"athlete_id"`
	Enabled            bool        `db:"enabled"`
	AutoApply          bool        `db:"auto_apply"`
	Sensitivity        Sensitivity `db:"sensitivity"`
	MinLeadTimeHours   int         `db:"min_lead_time_hours"`
	FatigueThreshold   float64     `db:"fatigue_threshold"`   // TSB at or below means fatigued
	FreshnessThreshold float64     `db:"freshness_threshold"` // TSB at or above means fresh
	CreatedAt          time.Time   `db:"created_at"`
	UpdatedAt          time.Time   `db:"updated_at"`
}

// DefaultAdaptationSettings returns the documented defaults used when an
// athlete has no stored settings row.
func DefaultAdaptationSettings(athleteID int64) *AdaptationSettings {
	return &AdaptationSettings{
		AthleteID:          athleteID,
		Enabled:            true,
		AutoApply:          false,
		Sensitivity:        SensitivityModerate,
		MinLeadTimeHours:   24,
		FatigueThreshold:   -20,
		FreshnessThreshold: 10,
	}
}
