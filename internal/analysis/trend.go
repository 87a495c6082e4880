package analysis

import (
	"errors"
	"math"
	"time"

	"veloform/internal/store"
)

// ErrInsufficientData means a detector had too few qualifying samples.
// Callers skip emitting that trend; it is not a failure of the run.
var ErrInsufficientData = errors.New("insufficient data")

// Detection windows and significance thresholds.
const (
	DefaultTrendLookbackDays   = 28
	DefaultVolumeLookbackWeeks = 4

	MinFTPTrendRides      = 3
	MinZoneTrendEntries   = 3
	MinVolumeWeeksPerHalf = 2

	FTPSignificancePct    = 2.0
	VolumeSignificancePct = 15.0
	ZoneSignificanceSum   = 0.5

	// A sustained 20-minute effort overestimates hour power by ~5%.
	best20FTPFactor = 0.95
)

// FTPEstimate is the evidence behind a threshold-power estimate.
type FTPEstimate struct {
	Estimate       float64 // watts; the greater of the two sub-estimates
	ThresholdAvgNP float64 // mean normalized power over threshold rides
	Best20Derived  float64 // best20FTPFactor x mean best 20-minute power
	SampleCount    int     // distinct rides contributing to either figure
}

// EstimateFTP derives a current threshold-power estimate from ride
// history: the greater of the average normalized power across rides
// classified in the threshold zone and 95% of the average best
// 20-minute power. Returns ErrInsufficientData when fewer than
// MinFTPTrendRides rides qualify or no estimate can be formed.
func EstimateFTP(rides []store.Ride) (FTPEstimate, error) {
	var est FTPEstimate
	var npSum, bestSum float64
	var npCount, bestCount int

	for _, r := range rides {
		qualifies := false
		if r.Zone != nil && *r.Zone == store.ZoneThreshold && r.NormalizedPower != nil && *r.NormalizedPower > 0 {
			npSum += *r.NormalizedPower
			npCount++
			qualifies = true
		}
		if r.Best20MinPower != nil && *r.Best20MinPower > 0 {
			bestSum += *r.Best20MinPower
			bestCount++
			qualifies = true
		}
		if qualifies {
			est.SampleCount++
		}
	}

	if npCount > 0 {
		est.ThresholdAvgNP = npSum / float64(npCount)
	}
	if bestCount > 0 {
		est.Best20Derived = bestSum / float64(bestCount) * best20FTPFactor
	}
	est.Estimate = math.Max(est.ThresholdAvgNP, est.Best20Derived)

	if est.SampleCount < MinFTPTrendRides || est.Estimate <= 0 {
		return est, ErrInsufficientData
	}
	return est, nil
}

// VolumeSplit is the weekly-average training stress in the two halves of
// an observation window.
type VolumeSplit struct {
	EarlierWeeklyTSS float64
	RecentWeeklyTSS  float64
	RideCount        int
}

// SplitWeeklyVolume splits the rides falling in [start, end) at the
// window midpoint and averages weekly TSS in each half. Each half must
// contain rides in at least MinVolumeWeeksPerHalf distinct calendar
// weeks, and the earlier half must carry a nonzero load to serve as the
// baseline; otherwise ErrInsufficientData.
func SplitWeeklyVolume(rides []store.Ride, start, end time.Time) (VolumeSplit, error) {
	var split VolumeSplit

	weeksPerHalf := end.Sub(start).Hours() / 24 / 7 / 2
	if weeksPerHalf <= 0 {
		return split, ErrInsufficientData
	}
	mid := start.Add(end.Sub(start) / 2)

	var earlierTSS, recentTSS float64
	earlierWeeks := make(map[int]bool)
	recentWeeks := make(map[int]bool)

	for _, r := range rides {
		if r.StartedAt.Before(start) || !r.StartedAt.Before(end) {
			continue
		}
		year, week := r.StartedAt.ISOWeek()
		key := year*100 + week
		if r.StartedAt.Before(mid) {
			earlierTSS += float64(r.TSS)
			earlierWeeks[key] = true
		} else {
			recentTSS += float64(r.TSS)
			recentWeeks[key] = true
		}
		split.RideCount++
	}

	if len(earlierWeeks) < MinVolumeWeeksPerHalf || len(recentWeeks) < MinVolumeWeeksPerHalf {
		return split, ErrInsufficientData
	}

	split.EarlierWeeklyTSS = earlierTSS / weeksPerHalf
	split.RecentWeeklyTSS = recentTSS / weeksPerHalf
	if split.EarlierWeeklyTSS == 0 {
		return split, ErrInsufficientData
	}
	return split, nil
}

// ZoneDeltaSum aggregates progression deltas for one zone.
type ZoneDeltaSum struct {
	Sum     float64
	Entries int
}

// SumZoneDeltas groups progression history entries by zone and sums
// their deltas. Deltas are summed flat, without recency weighting.
func SumZoneDeltas(entries []store.ProgressionHistoryEntry) map[store.Zone]ZoneDeltaSum {
	sums := make(map[store.Zone]ZoneDeltaSum)
	for _, e := range entries {
		s := sums[e.Zone]
		s.Sum += e.Delta
		s.Entries++
		sums[e.Zone] = s
	}
	return sums
}

// ClassifyZoneTrend maps a delta sum to a direction. Stable means the
// movement stayed inside the significance band and no trend should be
// recorded.
func ClassifyZoneTrend(sum float64) store.TrendDirection {
	switch {
	case sum > ZoneSignificanceSum:
		return store.DirectionImproving
	case sum < -ZoneSignificanceSum:
		return store.DirectionDeclining
	default:
		return store.DirectionStable
	}
}

// PercentChange is the relative change from baseline to value, in
// percent. Baseline must be nonzero.
func PercentChange(baseline, value float64) float64 {
	return (value - baseline) / baseline * 100
}

// FTPTrendConfidence scores an FTP trend from its percent change. A 6%
// shift reads 0.66; the cap engages from 35% up.
func FTPTrendConfidence(pct float64) float64 {
	return math.Min(0.95, 0.60+math.Abs(pct)/100)
}

// VolumeTrendConfidence scores a volume trend from its percent change.
func VolumeTrendConfidence(pct float64) float64 {
	return math.Min(0.90, 0.65+math.Abs(pct)/50)
}

// ZoneTrendConfidence scores a zone-fitness trend from its delta sum.
func ZoneTrendConfidence(sum float64) float64 {
	return math.Min(0.90, 0.65+math.Abs(sum)/5)
}
