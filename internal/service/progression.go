package service

import (
	"context"
	"errors"
	"time"

	"veloform/internal/analysis"
	"veloform/internal/store"
)

// DefaultHistoryDays is the progression-history window when the caller
// doesn't give one.
const DefaultHistoryDays = 90

// WorkoutInput describes a completed workout in one zone.
type WorkoutInput struct {
	AthleteID     int64
	Zone          store.Zone
	TargetLevel   float64 // 0 means the workout targeted the current level
	CompletionPct float64
	RPE           float64
	ActivityID    *int64
	CompletedAt   time.Time // zero means now
}

// WorkoutResult reports how a workout outcome moved the zone's level.
type WorkoutResult struct {
	Zone              store.Zone
	OldLevel          float64
	NewLevel          float64
	Delta             float64
	Reason            store.ChangeReason
	WorkoutsCompleted int
}

// ApplyWorkoutOutcome scores a completed workout against its zone's
// progression level and applies the bounded adjustment, writing the
// level, its audit entry, and the outcome in one transaction. A zone
// that has never been trained starts from the baseline level.
func (e *Engine) ApplyWorkoutOutcome(ctx context.Context, in WorkoutInput) (*WorkoutResult, error) {
	if !store.ValidZone(in.Zone) {
		return nil, ErrInvalidZone
	}
	if in.RPE < 1 || in.RPE > 10 {
		return nil, ErrInvalidRPE
	}
	if in.CompletionPct < 0 {
		return nil, ErrInvalidCompletion
	}

	current, err := e.store.GetProgressionLevel(ctx, in.AthleteID, in.Zone)
	if errors.Is(err, store.ErrNoProgression) {
		current = &store.ProgressionLevel{
			AthleteID: in.AthleteID,
			Zone:      in.Zone,
			Level:     analysis.BaselineLevel,
		}
	} else if err != nil {
		return nil, err
	}

	target := in.TargetLevel
	if target <= 0 {
		target = current.Level
	}

	delta, reason := analysis.ComputeAdjustment(current.Level, target, in.CompletionPct, in.RPE)
	newLevel := analysis.ClampLevel(current.Level + delta)
	applied := newLevel - current.Level

	completedAt := in.CompletedAt
	if completedAt.IsZero() {
		completedAt = time.Now().UTC()
	}

	level := &store.ProgressionLevel{
		AthleteID:         in.AthleteID,
		Zone:              in.Zone,
		Level:             newLevel,
		WorkoutsCompleted: current.WorkoutsCompleted + 1,
		LastDelta:         applied,
		LastChangedAt:     &completedAt,
	}
	entry := &store.ProgressionHistoryEntry{
		AthleteID:  in.AthleteID,
		Zone:       in.Zone,
		OldLevel:   current.Level,
		NewLevel:   newLevel,
		Delta:      applied,
		Reason:     reason,
		ActivityID: in.ActivityID,
		CreatedAt:  completedAt,
	}
	outcome := &store.WorkoutOutcome{
		AthleteID:     in.AthleteID,
		Zone:          in.Zone,
		TargetLevel:   target,
		CompletionPct: in.CompletionPct,
		RPE:           in.RPE,
		ActivityID:    in.ActivityID,
		CompletedAt:   completedAt,
	}
	if err := e.store.ApplyProgression(ctx, level, entry, outcome); err != nil {
		return nil, err
	}

	e.log.Infow("progression adjusted",
		"athlete", in.AthleteID,
		"zone", in.Zone,
		"old_level", current.Level,
		"new_level", newLevel,
		"reason", reason,
	)
	return &WorkoutResult{
		Zone:              in.Zone,
		OldLevel:          current.Level,
		NewLevel:          newLevel,
		Delta:             applied,
		Reason:            reason,
		WorkoutsCompleted: level.WorkoutsCompleted,
	}, nil
}

// GetProgressionLevels returns a level for every zone in zone order.
// Zones never trained report the baseline.
func (e *Engine) GetProgressionLevels(ctx context.Context, athleteID int64) ([]store.ProgressionLevel, error) {
	stored, err := e.store.ListProgressionLevels(ctx, athleteID)
	if err != nil {
		return nil, err
	}
	byZone := make(map[store.Zone]store.ProgressionLevel, len(stored))
	for _, p := range stored {
		byZone[p.Zone] = p
	}

	levels := make([]store.ProgressionLevel, 0, len(store.ZoneOrder))
	for _, z := range store.ZoneOrder {
		if p, ok := byZone[z]; ok {
			levels = append(levels, p)
			continue
		}
		levels = append(levels, store.ProgressionLevel{
			AthleteID: athleteID,
			Zone:      z,
			Level:     analysis.BaselineLevel,
		})
	}
	return levels, nil
}

// GetProgressionHistory returns the athlete's level changes over the
// last daysBack days, newest first, optionally filtered to one zone.
func (e *Engine) GetProgressionHistory(ctx context.Context, athleteID int64, zone *store.Zone, daysBack int) ([]store.ProgressionHistoryEntry, error) {
	if zone != nil && !store.ValidZone(*zone) {
		return nil, ErrInvalidZone
	}
	if daysBack <= 0 {
		daysBack = DefaultHistoryDays
	}
	since := time.Now().UTC().AddDate(0, 0, -daysBack)
	return e.store.ListProgressionHistory(ctx, athleteID, zone, since)
}

// ReseedProgressionLevels recomputes every zone's level from the
// athlete's average reported exertion in that zone, replacing whatever
// the adjustment history had accumulated. Zones with no recorded
// outcomes fall back to the baseline.
func (e *Engine) ReseedProgressionLevels(ctx context.Context, athleteID int64) ([]store.ProgressionLevel, error) {
	averages, err := e.store.GetAverageRPEByZone(ctx, athleteID)
	if err != nil {
		return nil, err
	}
	stored, err := e.store.ListProgressionLevels(ctx, athleteID)
	if err != nil {
		return nil, err
	}
	byZone := make(map[store.Zone]store.ProgressionLevel, len(stored))
	for _, p := range stored {
		byZone[p.Zone] = p
	}

	now := time.Now().UTC()
	levels := make([]store.ProgressionLevel, 0, len(store.ZoneOrder))
	entries := make([]store.ProgressionHistoryEntry, 0, len(store.ZoneOrder))
	for _, z := range store.ZoneOrder {
		old := analysis.BaselineLevel
		workouts := 0
		if p, ok := byZone[z]; ok {
			old = p.Level
			workouts = p.WorkoutsCompleted
		}

		seeded := analysis.BaselineLevel
		if avg, ok := averages[z]; ok {
			seeded = analysis.SeedLevelFromRPE(avg)
		}

		levels = append(levels, store.ProgressionLevel{
			AthleteID:         athleteID,
			Zone:              z,
			Level:             seeded,
			WorkoutsCompleted: workouts,
			LastDelta:         seeded - old,
			LastChangedAt:     &now,
		})
		entries = append(entries, store.ProgressionHistoryEntry{
			AthleteID: athleteID,
			Zone:      z,
			OldLevel:  old,
			NewLevel:  seeded,
			Delta:     seeded - old,
			Reason:    store.ReasonReseed,
			CreatedAt: now,
		})
	}

	if err := e.store.SeedProgression(ctx, levels, entries); err != nil {
		return nil, err
	}
	e.log.Infow("progression levels reseeded", "athlete", athleteID)
	return levels, nil
}
