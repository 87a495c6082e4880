package service

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"

	"veloform/internal/analysis"
	"veloform/internal/store"
)

// Each detector supersedes only its own key: both FTP types share one
// key, both volume types share one, and zone-fitness trends are keyed
// per zone.
var (
	ftpTrendTypes    = []store.TrendType{store.TrendFTPImprovement, store.TrendFTPDecline}
	volumeTrendTypes = []store.TrendType{store.TrendVolumeIncrease, store.TrendVolumeDecrease}
	zoneTrendTypes   = []store.TrendType{store.TrendZoneFitness}
)

// TrendDetection summarizes one detection pass over an athlete's
// recent history.
type TrendDetection struct {
	Count         int
	FTPTrendID    *uuid.UUID
	VolumeTrendID *uuid.UUID
	ZoneTrendIDs  []uuid.UUID
}

// DetectAllTrends runs the FTP, volume, and zone-fitness detectors over
// the last lookbackDays days and activates a trend record for each
// significant signal, superseding the previous record under the same
// key. Detectors that find nothing leave earlier trends active; a
// trend only retires when a fresh one replaces it.
func (e *Engine) DetectAllTrends(ctx context.Context, athleteID int64, lookbackDays int) (*TrendDetection, error) {
	if lookbackDays <= 0 {
		lookbackDays = analysis.DefaultTrendLookbackDays
	}
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -lookbackDays)

	rides, err := e.store.ListRidesSince(ctx, athleteID, start)
	if err != nil {
		return nil, err
	}

	result := &TrendDetection{}

	if result.FTPTrendID, err = e.detectFTPTrend(ctx, athleteID, rides, start, end); err != nil {
		return nil, err
	}
	if result.FTPTrendID != nil {
		result.Count++
	}

	if result.VolumeTrendID, err = e.detectVolumeTrend(ctx, athleteID, rides, start, end); err != nil {
		return nil, err
	}
	if result.VolumeTrendID != nil {
		result.Count++
	}

	if result.ZoneTrendIDs, err = e.detectZoneTrends(ctx, athleteID, start, end); err != nil {
		return nil, err
	}
	result.Count += len(result.ZoneTrendIDs)

	return result, nil
}

// GetActiveTrends returns the athlete's currently active trends, newest
// first.
func (e *Engine) GetActiveTrends(ctx context.Context, athleteID int64) ([]store.PerformanceTrend, error) {
	return e.store.ListActiveTrends(ctx, athleteID)
}

// GetTrendHistory returns every trend on record for the athlete,
// superseded ones included, newest first.
func (e *Engine) GetTrendHistory(ctx context.Context, athleteID int64) ([]store.PerformanceTrend, error) {
	return e.store.ListTrends(ctx, athleteID)
}

// detectFTPTrend compares an FTP estimate from recent rides against the
// current benchmark. Changes under the significance threshold leave the
// trend state untouched.
func (e *Engine) detectFTPTrend(ctx context.Context, athleteID int64, rides []store.Ride, start, end time.Time) (*uuid.UUID, error) {
	b, err := e.store.GetCurrentBenchmark(ctx, athleteID)
	if errors.Is(err, store.ErrNoBenchmark) {
		e.log.Debugw("ftp trend skipped, no benchmark", "athlete", athleteID)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	est, err := analysis.EstimateFTP(rides)
	if errors.Is(err, analysis.ErrInsufficientData) {
		e.log.Debugw("ftp trend skipped, insufficient rides",
			"athlete", athleteID, "samples", est.SampleCount)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	pct := analysis.PercentChange(float64(b.FTPWatts), est.Estimate)
	if math.Abs(pct) < analysis.FTPSignificancePct {
		return nil, nil
	}

	trendType := store.TrendFTPImprovement
	direction := store.DirectionImproving
	if pct < 0 {
		trendType = store.TrendFTPDecline
		direction = store.DirectionDeclining
	}
	t := &store.PerformanceTrend{
		AthleteID:       athleteID,
		TrendType:       trendType,
		Direction:       direction,
		Confidence:      analysis.FTPTrendConfidence(pct),
		WindowStart:     start,
		WindowEnd:       end,
		ChangeMagnitude: pct,
		SampleCount:     est.SampleCount,
		Metrics: map[string]interface{}{
			"baseline_ftp":     float64(b.FTPWatts),
			"estimated_ftp":    est.Estimate,
			"threshold_avg_np": est.ThresholdAvgNP,
			"best20_derived":   est.Best20Derived,
		},
	}
	if err := e.store.ActivateTrend(ctx, t, ftpTrendTypes); err != nil {
		return nil, err
	}
	e.log.Infow("ftp trend detected",
		"athlete", athleteID,
		"type", trendType,
		"change_pct", pct,
		"confidence", t.Confidence,
	)
	return &t.ID, nil
}

// detectVolumeTrend compares weekly training stress between the two
// halves of the observation window.
func (e *Engine) detectVolumeTrend(ctx context.Context, athleteID int64, rides []store.Ride, start, end time.Time) (*uuid.UUID, error) {
	split, err := analysis.SplitWeeklyVolume(rides, start, end)
	if errors.Is(err, analysis.ErrInsufficientData) {
		e.log.Debugw("volume trend skipped, insufficient history", "athlete", athleteID)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	pct := analysis.PercentChange(split.EarlierWeeklyTSS, split.RecentWeeklyTSS)
	if math.Abs(pct) < analysis.VolumeSignificancePct {
		return nil, nil
	}

	trendType := store.TrendVolumeIncrease
	direction := store.DirectionImproving
	if pct < 0 {
		trendType = store.TrendVolumeDecrease
		direction = store.DirectionDeclining
	}
	t := &store.PerformanceTrend{
		AthleteID:       athleteID,
		TrendType:       trendType,
		Direction:       direction,
		Confidence:      analysis.VolumeTrendConfidence(pct),
		WindowStart:     start,
		WindowEnd:       end,
		ChangeMagnitude: pct,
		SampleCount:     split.RideCount,
		Metrics: map[string]interface{}{
			"earlier_weekly_tss": split.EarlierWeeklyTSS,
			"recent_weekly_tss":  split.RecentWeeklyTSS,
		},
	}
	if err := e.store.ActivateTrend(ctx, t, volumeTrendTypes); err != nil {
		return nil, err
	}
	e.log.Infow("volume trend detected",
		"athlete", athleteID,
		"type", trendType,
		"change_pct", pct,
		"confidence", t.Confidence,
	)
	return &t.ID, nil
}

// detectZoneTrends sums progression deltas per zone over the window and
// records a trend for each zone whose levels moved decisively.
func (e *Engine) detectZoneTrends(ctx context.Context, athleteID int64, start, end time.Time) ([]uuid.UUID, error) {
	history, err := e.store.ListProgressionHistory(ctx, athleteID, nil, start)
	if err != nil {
		return nil, err
	}
	sums := analysis.SumZoneDeltas(history)

	var ids []uuid.UUID
	for _, z := range store.ZoneOrder {
		s, ok := sums[z]
		if !ok || s.Entries < analysis.MinZoneTrendEntries {
			continue
		}
		direction := analysis.ClassifyZoneTrend(s.Sum)
		if direction == store.DirectionStable {
			continue
		}

		zone := z
		t := &store.PerformanceTrend{
			AthleteID:       athleteID,
			TrendType:       store.TrendZoneFitness,
			Zone:            &zone,
			Direction:       direction,
			Confidence:      analysis.ZoneTrendConfidence(s.Sum),
			WindowStart:     start,
			WindowEnd:       end,
			ChangeMagnitude: s.Sum,
			SampleCount:     s.Entries,
		}
		if err := e.store.ActivateTrend(ctx, t, zoneTrendTypes); err != nil {
			return ids, err
		}
		e.log.Infow("zone fitness trend detected",
			"athlete", athleteID,
			"zone", z,
			"direction", direction,
			"delta_sum", s.Sum,
		)
		ids = append(ids, t.ID)
	}
	return ids, nil
}
