package analysis

import (
	"math"
	"testing"

	"veloform/internal/store"
)

func TestComputeAdjustment(t *testing.T) {
	tests := []struct {
		name       string
		current    float64
		workout    float64
		completion float64
		rpe        float64
		wantDelta  float64
		wantReason store.ChangeReason
	}{
		{"full completion low effort", 5.0, 5.0, 95, 6, 0.3, store.ReasonWorkoutSuccess},
		{"full completion moderate effort", 5.0, 5.0, 95, 8, 0.2, store.ReasonWorkoutSuccess},
		{"full completion maximal effort", 5.0, 5.0, 95, 10, 0.1, store.ReasonWorkoutSuccess},
		{"exactly ninety percent", 5.0, 5.0, 90, 7, 0.3, store.ReasonWorkoutSuccess},
		{"most of the workout done", 5.0, 5.0, 75, 8, 0.1, store.ReasonWorkoutSuccess},
		{"most done but very hard", 5.0, 5.0, 75, 9, 0, store.ReasonNoChange},
		{"half done", 5.0, 5.0, 60, 7, -0.1, store.ReasonWorkoutStruggle},
		{"half done and maximal", 5.0, 5.0, 60, 9, -0.3, store.ReasonWorkoutStruggle},
		{"abandoned early", 3.0, 3.0, 40, 9, -0.5, store.ReasonWorkoutFailure},
		{"barely started", 5.0, 5.0, 10, 5, -0.5, store.ReasonWorkoutFailure},

		// Damping: failing far above the current level is expected.
		{"failure far above level damped", 3.0, 8.0, 40, 9, -0.25, store.ReasonWorkoutFailure},
		// Damping: succeeding far below the current level shouldn't inflate.
		{"success far below level damped", 5.0, 2.0, 95, 6, 0.15, store.ReasonWorkoutSuccess},
		// No damping when signs don't match the gap.
		{"success far above level undamped", 3.0, 8.0, 95, 6, 0.3, store.ReasonWorkoutSuccess},
		{"failure far below level undamped", 5.0, 2.0, 40, 9, -0.5, store.ReasonWorkoutFailure},
		// Gap of exactly 2.0 is not "far".
		{"gap at damping boundary", 3.0, 5.0, 40, 9, -0.5, store.ReasonWorkoutFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			delta, reason := ComputeAdjustment(tt.current, tt.workout, tt.completion, tt.rpe)
			if math.Abs(delta-tt.wantDelta) > 1e-9 {
				t.Errorf("ComputeAdjustment() delta = %v, expected %v", delta, tt.wantDelta)
			}
			if reason != tt.wantReason {
				t.Errorf("ComputeAdjustment() reason = %s, expected %s", reason, tt.wantReason)
			}
		})
	}
}

func TestComputeAdjustment_ExactSpecCases(t *testing.T) {
	// 95% complete at RPE 6 on a workout matching the current level.
	delta, reason := ComputeAdjustment(5.0, 5.0, 95, 6)
	if delta != 0.3 || reason != store.ReasonWorkoutSuccess {
		t.Errorf("Expected +0.3 workout_success, got %v %s", delta, reason)
	}
	if got := ClampLevel(5.0 + delta); math.Abs(got-5.3) > 1e-9 {
		t.Errorf("Expected new level 5.3, got %v", got)
	}

	// 40% complete at RPE 9.
	delta, reason = ComputeAdjustment(3.0, 3.0, 40, 9)
	if delta != -0.5 || reason != store.ReasonWorkoutFailure {
		t.Errorf("Expected -0.5 workout_failure, got %v %s", delta, reason)
	}
	if got := ClampLevel(3.0 + delta); math.Abs(got-2.5) > 1e-9 {
		t.Errorf("Expected new level 2.5, got %v", got)
	}
}

func TestClampLevel(t *testing.T) {
	tests := []struct {
		level    float64
		expected float64
	}{
		{0.5, 1.0},
		{1.0, 1.0},
		{5.5, 5.5},
		{10.0, 10.0},
		{10.5, 10.0},
		{-3.0, 1.0},
		{42.0, 10.0},
	}

	for _, tt := range tests {
		if got := ClampLevel(tt.level); got != tt.expected {
			t.Errorf("ClampLevel(%v) = %v, expected %v", tt.level, got, tt.expected)
		}
	}
}

// Repeated extreme outcomes must never push a level outside [1, 10].
func TestAdjustment_RepeatedExtremesStayBounded(t *testing.T) {
	level := BaselineLevel
	for i := 0; i < 50; i++ {
		delta, _ := ComputeAdjustment(level, level, 10, 10)
		level = ClampLevel(level + delta)
		if level < MinLevel || level > MaxLevel {
			t.Fatalf("Level escaped bounds after %d failures: %v", i+1, level)
		}
	}
	if level != MinLevel {
		t.Errorf("Expected floor after repeated failures, got %v", level)
	}

	level = BaselineLevel
	for i := 0; i < 50; i++ {
		delta, _ := ComputeAdjustment(level, level, 100, 5)
		level = ClampLevel(level + delta)
		if level < MinLevel || level > MaxLevel {
			t.Fatalf("Level escaped bounds after %d successes: %v", i+1, level)
		}
	}
	if level != MaxLevel {
		t.Errorf("Expected ceiling after repeated successes, got %v", level)
	}
}

func TestSeedLevelFromRPE(t *testing.T) {
	tests := []struct {
		avgRPE   float64
		expected float64
	}{
		{3.0, 7.0},
		{4.0, 7.0},
		{4.5, 6.0},
		{5.0, 6.0},
		{5.5, 5.0},
		{6.5, 4.0},
		{7.5, 3.0},
		{8.5, 2.0},
		{10.0, 2.0},
		{11.0, 2.0}, // out-of-scale input still lands in the last band
	}

	for _, tt := range tests {
		if got := SeedLevelFromRPE(tt.avgRPE); got != tt.expected {
			t.Errorf("SeedLevelFromRPE(%v) = %v, expected %v", tt.avgRPE, got, tt.expected)
		}
	}
}
