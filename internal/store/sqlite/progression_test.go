package sqlite

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"veloform/internal/store"
)

func TestGetProgressionLevel_NoneYet(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.GetProgressionLevel(context.Background(), 7, store.ZoneThreshold)
	if !errors.Is(err, store.ErrNoProgression) {
		t.Fatalf("expected ErrNoProgression, got %v", err)
	}
}

func TestApplyProgression_RoundTrip(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	changed := time.Date(2024, 3, 5, 18, 0, 0, 0, time.UTC)
	level := &store.ProgressionLevel{
		AthleteID:         7,
		Zone:              store.ZoneThreshold,
		Level:             3.3,
		WorkoutsCompleted: 1,
		LastDelta:         0.3,
		LastChangedAt:     timePtr(changed),
	}
	entry := &store.ProgressionHistoryEntry{
		AthleteID:  7,
		Zone:       store.ZoneThreshold,
		OldLevel:   3.0,
		NewLevel:   3.3,
		Delta:      0.3,
		Reason:     store.ReasonWorkoutSuccess,
		ActivityID: int64Ptr(9001),
	}
	outcome := &store.WorkoutOutcome{
		AthleteID:     7,
		Zone:          store.ZoneThreshold,
		TargetLevel:   3.0,
		CompletionPct: 100,
		RPE:           6,
		ActivityID:    int64Ptr(9001),
	}
	if err := db.ApplyProgression(ctx, level, entry, outcome); err != nil {
		t.Fatalf("applying progression: %v", err)
	}

	got, err := db.GetProgressionLevel(ctx, 7, store.ZoneThreshold)
	if err != nil {
		t.Fatalf("getting level: %v", err)
	}
	if got.Level != 3.3 {
		t.Errorf("level = %.2f, want 3.30", got.Level)
	}
	if got.WorkoutsCompleted != 1 {
		t.Errorf("workouts = %d, want 1", got.WorkoutsCompleted)
	}
	if got.LastDelta != 0.3 {
		t.Errorf("last delta = %.2f, want 0.30", got.LastDelta)
	}
	if got.LastChangedAt == nil || !got.LastChangedAt.Equal(changed) {
		t.Errorf("last changed = %v, want %v", got.LastChangedAt, changed)
	}

	entries, err := db.ListProgressionHistory(ctx, 7, nil, time.Time{})
	if err != nil {
		t.Fatalf("listing history: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(entries))
	}
	e := entries[0]
	if e.OldLevel != 3.0 || e.NewLevel != 3.3 {
		t.Errorf("entry levels = %.1f -> %.1f, want 3.0 -> 3.3", e.OldLevel, e.NewLevel)
	}
	if e.Reason != store.ReasonWorkoutSuccess {
		t.Errorf("reason = %s, want %s", e.Reason, store.ReasonWorkoutSuccess)
	}
	if e.ActivityID == nil || *e.ActivityID != 9001 {
		t.Errorf("activity id = %v, want 9001", e.ActivityID)
	}
}

func TestApplyProgression_RollsBackOnFailure(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	level := &store.ProgressionLevel{AthleteID: 7, Zone: store.ZoneTempo, Level: 3.3}
	entry := &store.ProgressionHistoryEntry{
		AthleteID: 7, Zone: store.ZoneTempo,
		OldLevel: 3.0, NewLevel: 3.3, Delta: 0.3,
		Reason: store.ReasonWorkoutSuccess,
	}
	if err := db.ApplyProgression(ctx, level, entry, nil); err != nil {
		t.Fatalf("applying progression: %v", err)
	}

	// Re-using the same history entry id violates its primary key, so
	// the whole transaction, level update included, must roll back.
	level.Level = 9.9
	if err := db.ApplyProgression(ctx, level, entry, nil); err == nil {
		t.Fatal("expected duplicate history id to fail")
	}

	got, err := db.GetProgressionLevel(ctx, 7, store.ZoneTempo)
	if err != nil {
		t.Fatalf("getting level: %v", err)
	}
	if got.Level != 3.3 {
		t.Errorf("level = %.2f after failed apply, want 3.30", got.Level)
	}
}

func TestSeedProgression_ListsInZoneOrder(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	// Written out of order on purpose.
	levels := []store.ProgressionLevel{
		{AthleteID: 7, Zone: store.ZoneVO2Max, Level: 2.0},
		{AthleteID: 7, Zone: store.ZoneRecovery, Level: 6.0},
		{AthleteID: 7, Zone: store.ZoneThreshold, Level: 4.0},
	}
	entries := make([]store.ProgressionHistoryEntry, 0, len(levels))
	for _, l := range levels {
		entries = append(entries, store.ProgressionHistoryEntry{
			AthleteID: 7,
			Zone:      l.Zone,
			OldLevel:  l.Level,
			NewLevel:  l.Level,
			Reason:    store.ReasonReseed,
		})
	}
	if err := db.SeedProgression(ctx, levels, entries); err != nil {
		t.Fatalf("seeding progression: %v", err)
	}

	got, err := db.ListProgressionLevels(ctx, 7)
	if err != nil {
		t.Fatalf("listing levels: %v", err)
	}
	wantOrder := []store.Zone{store.ZoneRecovery, store.ZoneThreshold, store.ZoneVO2Max}
	if len(got) != len(wantOrder) {
		t.Fatalf("expected %d levels, got %d", len(wantOrder), len(got))
	}
	for i, z := range wantOrder {
		if got[i].Zone != z {
			t.Errorf("levels[%d] = %s, want %s", i, got[i].Zone, z)
		}
	}

	history, err := db.ListProgressionHistory(ctx, 7, nil, time.Time{})
	if err != nil {
		t.Fatalf("listing history: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("expected 3 seed entries, got %d", len(history))
	}
	for _, e := range history {
		if e.Reason != store.ReasonReseed {
			t.Errorf("reason = %s, want %s", e.Reason, store.ReasonReseed)
		}
	}
}

func TestListProgressionHistory_WindowAndZoneFilter(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	writeEntry := func(zone store.Zone, createdAt time.Time) {
		t.Helper()
		level := &store.ProgressionLevel{AthleteID: 7, Zone: zone, Level: 3.0}
		entry := &store.ProgressionHistoryEntry{
			AthleteID: 7, Zone: zone,
			OldLevel: 3.0, NewLevel: 3.0,
			Reason:    store.ReasonNoChange,
			CreatedAt: createdAt,
		}
		if err := db.ApplyProgression(ctx, level, entry, nil); err != nil {
			t.Fatalf("applying progression: %v", err)
		}
	}

	writeEntry(store.ZoneThreshold, time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC))
	writeEntry(store.ZoneThreshold, time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC))
	writeEntry(store.ZoneEndurance, time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC))

	since := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	entries, err := db.ListProgressionHistory(ctx, 7, nil, since)
	if err != nil {
		t.Fatalf("listing history: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries in window, got %d", len(entries))
	}
	// Newest first.
	if entries[0].Zone != store.ZoneEndurance {
		t.Errorf("entries[0].Zone = %s, want %s", entries[0].Zone, store.ZoneEndurance)
	}
	if entries[1].Zone != store.ZoneThreshold {
		t.Errorf("entries[1].Zone = %s, want %s", entries[1].Zone, store.ZoneThreshold)
	}

	threshold := store.ZoneThreshold
	entries, err = db.ListProgressionHistory(ctx, 7, &threshold, since)
	if err != nil {
		t.Fatalf("listing filtered history: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 threshold entry in window, got %d", len(entries))
	}
	if entries[0].Zone != store.ZoneThreshold {
		t.Errorf("zone = %s, want %s", entries[0].Zone, store.ZoneThreshold)
	}
}

func TestGetAverageRPEByZone(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	apply := func(zone store.Zone, rpe float64) {
		t.Helper()
		level := &store.ProgressionLevel{AthleteID: 7, Zone: zone, Level: 3.0}
		entry := &store.ProgressionHistoryEntry{
			AthleteID: 7, Zone: zone,
			OldLevel: 3.0, NewLevel: 3.0,
			Reason: store.ReasonNoChange,
		}
		outcome := &store.WorkoutOutcome{
			AthleteID: 7, Zone: zone,
			TargetLevel: 3.0, CompletionPct: 100, RPE: rpe,
		}
		if err := db.ApplyProgression(ctx, level, entry, outcome); err != nil {
			t.Fatalf("applying progression: %v", err)
		}
	}

	apply(store.ZoneThreshold, 6)
	apply(store.ZoneThreshold, 8)
	apply(store.ZoneVO2Max, 9)

	averages, err := db.GetAverageRPEByZone(ctx, 7)
	if err != nil {
		t.Fatalf("getting averages: %v", err)
	}
	if len(averages) != 2 {
		t.Fatalf("expected 2 zones, got %d", len(averages))
	}
	if math.Abs(averages[store.ZoneThreshold]-7.0) > 1e-9 {
		t.Errorf("threshold avg = %.2f, want 7.00", averages[store.ZoneThreshold])
	}
	if math.Abs(averages[store.ZoneVO2Max]-9.0) > 1e-9 {
		t.Errorf("vo2max avg = %.2f, want 9.00", averages[store.ZoneVO2Max])
	}
}
