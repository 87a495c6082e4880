package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"veloform/internal/store"
)

func TestGetAdaptationSettings_NoneYet(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.GetAdaptationSettings(context.Background(), 7)
	if !errors.Is(err, store.ErrNoSettings) {
		t.Fatalf("expected ErrNoSettings, got %v", err)
	}
}

func TestSaveAdaptationSettings_RoundTrip(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	s := store.DefaultAdaptationSettings(7)
	if err := db.SaveAdaptationSettings(ctx, s); err != nil {
		t.Fatalf("saving settings: %v", err)
	}

	got, err := db.GetAdaptationSettings(ctx, 7)
	if err != nil {
		t.Fatalf("getting settings: %v", err)
	}
	if !got.Enabled {
		t.Error("expected enabled by default")
	}
	if got.AutoApply {
		t.Error("expected auto-apply off by default")
	}
	if got.Sensitivity != store.SensitivityModerate {
		t.Errorf("sensitivity = %s, want %s", got.Sensitivity, store.SensitivityModerate)
	}
	if got.MinLeadTimeHours != 24 {
		t.Errorf("min lead time = %d, want 24", got.MinLeadTimeHours)
	}
	if got.FatigueThreshold != -20 {
		t.Errorf("fatigue threshold = %.0f, want -20", got.FatigueThreshold)
	}
	if got.FreshnessThreshold != 10 {
		t.Errorf("freshness threshold = %.0f, want 10", got.FreshnessThreshold)
	}
}

func TestSaveAdaptationSettings_UpdatePreservesCreatedAt(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := store.DefaultAdaptationSettings(7)
	s.CreatedAt = created
	if err := db.SaveAdaptationSettings(ctx, s); err != nil {
		t.Fatalf("saving settings: %v", err)
	}

	update := store.DefaultAdaptationSettings(7)
	update.Enabled = false
	update.Sensitivity = store.SensitivityAggressive
	update.FatigueThreshold = -15
	if err := db.SaveAdaptationSettings(ctx, update); err != nil {
		t.Fatalf("updating settings: %v", err)
	}

	got, err := db.GetAdaptationSettings(ctx, 7)
	if err != nil {
		t.Fatalf("getting settings: %v", err)
	}
	if got.Enabled {
		t.Error("expected enabled to be off after update")
	}
	if got.Sensitivity != store.SensitivityAggressive {
		t.Errorf("sensitivity = %s, want %s", got.Sensitivity, store.SensitivityAggressive)
	}
	if got.FatigueThreshold != -15 {
		t.Errorf("fatigue threshold = %.0f, want -15", got.FatigueThreshold)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("created at = %v, want original %v", got.CreatedAt, created)
	}
	if got.UpdatedAt.Before(got.CreatedAt) {
		t.Errorf("updated at %v precedes created at %v", got.UpdatedAt, got.CreatedAt)
	}
}
