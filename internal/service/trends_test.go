package service

import (
	"context"
	"testing"
	"time"

	"veloform/internal/store"
)

// thresholdRide records a one-hour threshold ride n days back at the
// given normalized power.
func thresholdRide(t *testing.T, e *Engine, id int64, daysAgo int, np float64) {
	t.Helper()
	_, err := e.RecordRide(context.Background(), RideInput{
		ID:              id,
		AthleteID:       7,
		StartedAt:       time.Now().UTC().AddDate(0, 0, -daysAgo),
		DurationSeconds: 3600,
		NormalizedPower: floatPtr(np),
		Category:        "threshold",
		Zone:            zonePtr(store.ZoneThreshold),
	})
	if err != nil {
		t.Fatalf("recording ride %d: %v", id, err)
	}
}

// enduranceRide records a flat endurance ride n days back. Without a
// benchmark on file its TSS comes out of the duration heuristic, which
// makes the weekly load exactly controllable.
func enduranceRide(t *testing.T, e *Engine, id int64, daysAgo, durationSeconds int) {
	t.Helper()
	_, err := e.RecordRide(context.Background(), RideInput{
		ID:              id,
		AthleteID:       7,
		StartedAt:       time.Now().UTC().AddDate(0, 0, -daysAgo),
		DurationSeconds: durationSeconds,
		Category:        "endurance",
	})
	if err != nil {
		t.Fatalf("recording ride %d: %v", id, err)
	}
}

func TestDetectAllTrends_FTPImprovement(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	setBenchmark(t, e, 7, 250)
	for i, daysAgo := range []int{20, 16, 9, 4} {
		thresholdRide(t, e, int64(9001+i), daysAgo, 265)
	}

	res, err := e.DetectAllTrends(ctx, 7, 28)
	if err != nil {
		t.Fatalf("detecting trends: %v", err)
	}
	if res.Count != 1 || res.FTPTrendID == nil {
		t.Fatalf("detection count = %d (ftp %v), want 1 ftp trend", res.Count, res.FTPTrendID)
	}
	if res.VolumeTrendID != nil || len(res.ZoneTrendIDs) != 0 {
		t.Errorf("unexpected extra trends: volume %v zones %v", res.VolumeTrendID, res.ZoneTrendIDs)
	}

	active, err := e.GetActiveTrends(ctx, 7)
	if err != nil {
		t.Fatalf("listing active trends: %v", err)
	}
	if len(active) != 1 {
		t.Fatalf("expected 1 active trend, got %d", len(active))
	}
	tr := active[0]
	if tr.TrendType != store.TrendFTPImprovement {
		t.Errorf("type = %s, want %s", tr.TrendType, store.TrendFTPImprovement)
	}
	if tr.Direction != store.DirectionImproving {
		t.Errorf("direction = %s, want %s", tr.Direction, store.DirectionImproving)
	}
	// 265 W against a 250 W benchmark is a 6% gain.
	if !almostEqual(tr.ChangeMagnitude, 6.0) {
		t.Errorf("magnitude = %.2f, want 6.00", tr.ChangeMagnitude)
	}
	if !almostEqual(tr.Confidence, 0.66) {
		t.Errorf("confidence = %.2f, want 0.66", tr.Confidence)
	}
	if tr.SampleCount != 4 {
		t.Errorf("samples = %d, want 4", tr.SampleCount)
	}
	if est, ok := tr.Metrics["estimated_ftp"].(float64); !ok || est != 265 {
		t.Errorf("metrics estimated_ftp = %v, want 265", tr.Metrics["estimated_ftp"])
	}
}

func TestDetectAllTrends_SmallChangeLeavesNoTrend(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	setBenchmark(t, e, 7, 250)
	for i, daysAgo := range []int{20, 9, 4} {
		thresholdRide(t, e, int64(9001+i), daysAgo, 253)
	}

	res, err := e.DetectAllTrends(ctx, 7, 28)
	if err != nil {
		t.Fatalf("detecting trends: %v", err)
	}
	if res.Count != 0 {
		t.Errorf("detection count = %d, want 0 for a 1.2%% change", res.Count)
	}

	active, err := e.GetActiveTrends(ctx, 7)
	if err != nil {
		t.Fatalf("listing active trends: %v", err)
	}
	if len(active) != 0 {
		t.Errorf("expected no active trends, got %d", len(active))
	}
}

func TestDetectAllTrends_RerunSupersedes(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	setBenchmark(t, e, 7, 250)
	for i, daysAgo := range []int{20, 16, 9, 4} {
		thresholdRide(t, e, int64(9001+i), daysAgo, 265)
	}

	first, err := e.DetectAllTrends(ctx, 7, 28)
	if err != nil {
		t.Fatalf("first detection: %v", err)
	}
	second, err := e.DetectAllTrends(ctx, 7, 28)
	if err != nil {
		t.Fatalf("second detection: %v", err)
	}
	if first.FTPTrendID == nil || second.FTPTrendID == nil {
		t.Fatal("both passes should detect the ftp trend")
	}
	if *first.FTPTrendID == *second.FTPTrendID {
		t.Error("second pass should write a fresh trend record")
	}

	// The fresh record replaced the first; history keeps both.
	active, err := e.GetActiveTrends(ctx, 7)
	if err != nil {
		t.Fatalf("listing active trends: %v", err)
	}
	if len(active) != 1 {
		t.Fatalf("expected 1 active trend after rerun, got %d", len(active))
	}
	if active[0].ID != *second.FTPTrendID {
		t.Error("active trend should be the one from the second pass")
	}

	all, err := e.GetTrendHistory(ctx, 7)
	if err != nil {
		t.Fatalf("listing trend history: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 records in history, got %d", len(all))
	}
	deactivated := 0
	for _, tr := range all {
		if !tr.IsActive {
			deactivated++
			if tr.DeactivatedAt == nil {
				t.Error("superseded trend should carry a deactivation time")
			}
		}
	}
	if deactivated != 1 {
		t.Errorf("deactivated records = %d, want 1", deactivated)
	}
}

func TestDetectAllTrends_VolumeIncrease(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	// One easy hour per week early on, two-hour rides in the recent
	// half: weekly TSS doubles from 50 to 100.
	enduranceRide(t, e, 9001, 26, 3600)
	enduranceRide(t, e, 9002, 19, 3600)
	enduranceRide(t, e, 9003, 12, 7200)
	enduranceRide(t, e, 9004, 5, 7200)

	res, err := e.DetectAllTrends(ctx, 7, 28)
	if err != nil {
		t.Fatalf("detecting trends: %v", err)
	}
	if res.Count != 1 || res.VolumeTrendID == nil {
		t.Fatalf("detection count = %d (volume %v), want 1 volume trend", res.Count, res.VolumeTrendID)
	}

	active, err := e.GetActiveTrends(ctx, 7)
	if err != nil {
		t.Fatalf("listing active trends: %v", err)
	}
	if len(active) != 1 {
		t.Fatalf("expected 1 active trend, got %d", len(active))
	}
	tr := active[0]
	if tr.TrendType != store.TrendVolumeIncrease {
		t.Errorf("type = %s, want %s", tr.TrendType, store.TrendVolumeIncrease)
	}
	if !almostEqual(tr.ChangeMagnitude, 100.0) {
		t.Errorf("magnitude = %.1f%%, want 100.0%%", tr.ChangeMagnitude)
	}
	if !almostEqual(tr.Confidence, 0.90) {
		t.Errorf("confidence = %.2f, want capped 0.90", tr.Confidence)
	}
	if tr.SampleCount != 4 {
		t.Errorf("samples = %d, want 4", tr.SampleCount)
	}
	if earlier, ok := tr.Metrics["earlier_weekly_tss"].(float64); !ok || !almostEqual(earlier, 50) {
		t.Errorf("metrics earlier_weekly_tss = %v, want 50", tr.Metrics["earlier_weekly_tss"])
	}
}

func TestDetectAllTrends_ZoneFitness(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	// Three solid threshold workouts push the level up 0.9 in total.
	for i := 0; i < 3; i++ {
		_, err := e.ApplyWorkoutOutcome(ctx, WorkoutInput{
			AthleteID:     7,
			Zone:          store.ZoneThreshold,
			CompletionPct: 100,
			RPE:           6,
		})
		if err != nil {
			t.Fatalf("applying outcome %d: %v", i, err)
		}
	}

	res, err := e.DetectAllTrends(ctx, 7, 28)
	if err != nil {
		t.Fatalf("detecting trends: %v", err)
	}
	if res.Count != 1 || len(res.ZoneTrendIDs) != 1 {
		t.Fatalf("detection count = %d (zones %d), want 1 zone trend", res.Count, len(res.ZoneTrendIDs))
	}

	active, err := e.GetActiveTrends(ctx, 7)
	if err != nil {
		t.Fatalf("listing active trends: %v", err)
	}
	if len(active) != 1 {
		t.Fatalf("expected 1 active trend, got %d", len(active))
	}
	tr := active[0]
	if tr.TrendType != store.TrendZoneFitness {
		t.Errorf("type = %s, want %s", tr.TrendType, store.TrendZoneFitness)
	}
	if tr.Zone == nil || *tr.Zone != store.ZoneThreshold {
		t.Errorf("zone = %v, want threshold", tr.Zone)
	}
	if tr.Direction != store.DirectionImproving {
		t.Errorf("direction = %s, want %s", tr.Direction, store.DirectionImproving)
	}
	if !almostEqual(tr.ChangeMagnitude, 0.9) {
		t.Errorf("magnitude = %.2f, want 0.90", tr.ChangeMagnitude)
	}
	if !almostEqual(tr.Confidence, 0.83) {
		t.Errorf("confidence = %.2f, want 0.83", tr.Confidence)
	}
	if tr.SampleCount != 3 {
		t.Errorf("samples = %d, want 3", tr.SampleCount)
	}
}

func TestDetectAllTrends_StableZoneStaysQuiet(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	// Up, up a little, back down: the sum lands inside the stability
	// band and no trend is recorded.
	inputs := []WorkoutInput{
		{AthleteID: 7, Zone: store.ZoneThreshold, CompletionPct: 100, RPE: 6}, // +0.3
		{AthleteID: 7, Zone: store.ZoneThreshold, CompletionPct: 75, RPE: 7},  // +0.1
		{AthleteID: 7, Zone: store.ZoneThreshold, CompletionPct: 60, RPE: 8},  // -0.1
	}
	for i, in := range inputs {
		if _, err := e.ApplyWorkoutOutcome(ctx, in); err != nil {
			t.Fatalf("applying outcome %d: %v", i, err)
		}
	}

	res, err := e.DetectAllTrends(ctx, 7, 28)
	if err != nil {
		t.Fatalf("detecting trends: %v", err)
	}
	if res.Count != 0 {
		t.Errorf("detection count = %d, want 0 for a flat zone", res.Count)
	}
}
