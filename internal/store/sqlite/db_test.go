package sqlite

import (
	"context"
	"testing"
	"time"

	"veloform/internal/store"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})
	return db
}

func intPtr(v int) *int                { return &v }
func int64Ptr(v int64) *int64          { return &v }
func floatPtr(v float64) *float64      { return &v }
func zonePtr(z store.Zone) *store.Zone { return &z }
func timePtr(t time.Time) *time.Time   { return &t }

// testZones builds a full seven-zone set with synthetic bounds, enough
// to exercise ordered persistence without deriving real zones.
func testZones(athleteID int64) []store.TrainingZone {
	zones := make([]store.TrainingZone, 0, len(store.ZoneOrder))
	for i, z := range store.ZoneOrder {
		zones = append(zones, store.TrainingZone{
			AthleteID:  athleteID,
			Zone:       z,
			ZoneIndex:  i,
			PowerLow:   i * 50,
			PowerHigh:  i*50 + 49,
			PctFTPLow:  i * 20,
			PctFTPHigh: i*20 + 19,
		})
	}
	return zones
}

func TestOpenMemory(t *testing.T) {
	db := setupTestDB(t)

	// Migrations are idempotent, so a second pass must not fail.
	if err := migrate(db.DB); err != nil {
		t.Fatalf("re-running migrations: %v", err)
	}
}

func TestListAthleteIDs(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	ids, err := db.ListAthleteIDs(ctx)
	if err != nil {
		t.Fatalf("listing athlete ids: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("expected no athletes, got %v", ids)
	}

	// Athlete 1 via benchmark, 2 via progression, 3 via ride; 1 also
	// rides, which must not duplicate it.
	b := &store.BenchmarkRecord{
		AthleteID:  1,
		FTPWatts:   250,
		TestDate:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		TestMethod: store.TestMethodManual,
	}
	if err := db.SetCurrentBenchmark(ctx, b, testZones(1)); err != nil {
		t.Fatalf("setting benchmark: %v", err)
	}
	level := &store.ProgressionLevel{AthleteID: 2, Zone: store.ZoneThreshold, Level: 3.0}
	entry := &store.ProgressionHistoryEntry{
		AthleteID: 2, Zone: store.ZoneThreshold,
		OldLevel: 3.0, NewLevel: 3.0, Reason: store.ReasonNoChange,
	}
	if err := db.ApplyProgression(ctx, level, entry, nil); err != nil {
		t.Fatalf("applying progression: %v", err)
	}
	for _, athleteID := range []int64{1, 3} {
		r := &store.Ride{
			ID:              athleteID * 100,
			AthleteID:       athleteID,
			StartedAt:       time.Date(2024, 3, 2, 8, 0, 0, 0, time.UTC),
			DurationSeconds: 3600,
		}
		if err := db.UpsertRide(ctx, r); err != nil {
			t.Fatalf("upserting ride: %v", err)
		}
	}

	ids, err = db.ListAthleteIDs(ctx)
	if err != nil {
		t.Fatalf("listing athlete ids: %v", err)
	}
	want := []int64{1, 2, 3}
	if len(ids) != len(want) {
		t.Fatalf("expected %v, got %v", want, ids)
	}
	for i, id := range want {
		if ids[i] != id {
			t.Errorf("ids[%d] = %d, want %d", i, ids[i], id)
		}
	}
}
