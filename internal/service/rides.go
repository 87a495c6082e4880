package service

import (
	"context"
	"errors"
	"time"

	"veloform/internal/analysis"
	"veloform/internal/store"
)

// RideInput is a ride summary to record, keyed by its external activity
// id.
type RideInput struct {
	ID              int64
	AthleteID       int64
	StartedAt       time.Time
	DurationSeconds int
	AvgPower        *float64
	NormalizedPower *float64
	Best20MinPower  *float64
	ElevationGain   float64
	Category        string
	Zone            *store.Zone
}

// RecordRide estimates the ride's training stress against the athlete's
// current threshold power and stores it. Recording the same activity id
// again replaces the earlier summary and re-estimates its load.
func (e *Engine) RecordRide(ctx context.Context, in RideInput) (*store.Ride, error) {
	if in.ID <= 0 {
		return nil, ErrInvalidRideID
	}
	if in.DurationSeconds <= 0 {
		return nil, ErrInvalidDuration
	}
	if in.Zone != nil && !store.ValidZone(*in.Zone) {
		return nil, ErrInvalidZone
	}

	startedAt := in.StartedAt
	if startedAt.IsZero() {
		startedAt = time.Now().UTC()
	}
	r := &store.Ride{
		ID:              in.ID,
		AthleteID:       in.AthleteID,
		StartedAt:       startedAt,
		DurationSeconds: in.DurationSeconds,
		AvgPower:        in.AvgPower,
		NormalizedPower: in.NormalizedPower,
		Best20MinPower:  in.Best20MinPower,
		ElevationGain:   in.ElevationGain,
		Category:        in.Category,
		Zone:            in.Zone,
	}

	// Without a benchmark the estimate falls back to the duration and
	// elevation heuristic.
	ftpWatts := 0
	b, err := e.store.GetCurrentBenchmark(ctx, in.AthleteID)
	if err == nil {
		ftpWatts = b.FTPWatts
	} else if !errors.Is(err, store.ErrNoBenchmark) {
		return nil, err
	}
	r.TSS = analysis.EstimateTSS(r, ftpWatts)

	if err := e.store.UpsertRide(ctx, r); err != nil {
		return nil, err
	}
	e.log.Debugw("ride recorded",
		"athlete", in.AthleteID,
		"ride", in.ID,
		"tss", r.TSS,
	)
	return r, nil
}

// ListRides returns the athlete's rides from the last daysBack days,
// oldest first.
func (e *Engine) ListRides(ctx context.Context, athleteID int64, daysBack int) ([]store.Ride, error) {
	if daysBack <= 0 {
		daysBack = DefaultHistoryDays
	}
	since := time.Now().UTC().AddDate(0, 0, -daysBack)
	return e.store.ListRidesSince(ctx, athleteID, since)
}
