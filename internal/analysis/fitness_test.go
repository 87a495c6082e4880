package analysis

import (
	"math"
	"strings"
	"testing"
	"time"

	"veloform/internal/store"
)

func TestDailyLoadsFromRides(t *testing.T) {
	day := time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)
	rides := []store.Ride{
		{StartedAt: day.Add(8 * time.Hour), TSS: 60},
		{StartedAt: day.Add(17 * time.Hour), TSS: 40}, // same day, second session
		{StartedAt: day.AddDate(0, 0, 2).Add(9 * time.Hour), TSS: 80},
	}

	loads := DailyLoadsFromRides(rides)
	if len(loads) != 2 {
		t.Fatalf("Expected 2 daily loads, got %d", len(loads))
	}
	if math.Abs(loads[0].TSS-100) > 1e-9 {
		t.Errorf("Expected double-session day to sum to 100, got %v", loads[0].TSS)
	}
	if !loads[0].Date.Before(loads[1].Date) {
		t.Error("Expected loads sorted by date ascending")
	}
}

func TestCalculateFitnessSeries(t *testing.T) {
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	var loads []DailyLoad
	for i := 0; i < 14; i++ {
		loads = append(loads, DailyLoad{Date: start.AddDate(0, 0, i), TSS: 100})
	}

	metrics := CalculateFitnessSeries(loads)
	if len(metrics) != 14 {
		t.Fatalf("Expected 14 days of metrics, got %d", len(metrics))
	}

	// Under constant load, fatigue accumulates faster than fitness.
	last := metrics[len(metrics)-1]
	if last.ATL <= last.CTL {
		t.Errorf("Expected ATL > CTL under constant load, got ATL=%v CTL=%v", last.ATL, last.CTL)
	}
	if last.TSB >= 0 {
		t.Errorf("Expected negative TSB under constant load, got %v", last.TSB)
	}

	for i := 1; i < len(metrics); i++ {
		if metrics[i].CTL <= metrics[i-1].CTL {
			t.Fatalf("Expected CTL to rise every day under constant load, fell on day %d", i)
		}
	}
}

func TestCalculateFitnessSeries_DecaysThroughRest(t *testing.T) {
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	loads := []DailyLoad{
		{Date: start, TSS: 100},
		{Date: start.AddDate(0, 0, 6), TSS: 0}, // rest week closes the range
	}

	metrics := CalculateFitnessSeries(loads)
	if len(metrics) != 7 {
		t.Fatalf("Expected 7 days of metrics, got %d", len(metrics))
	}
	for i := 1; i < len(metrics); i++ {
		if metrics[i].CTL >= metrics[i-1].CTL {
			t.Fatalf("Expected CTL to decay on rest day %d", i)
		}
	}
}

func TestCalculateFitnessSeries_Empty(t *testing.T) {
	if metrics := CalculateFitnessSeries(nil); metrics != nil {
		t.Errorf("Expected nil metrics for no loads, got %d entries", len(metrics))
	}
}

func TestCurrentFitness(t *testing.T) {
	if got := CurrentFitness(nil); got.CTL != 0 || got.ATL != 0 || got.TSB != 0 {
		t.Errorf("Expected zero fitness with no history, got %+v", got)
	}

	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	loads := []DailyLoad{
		{Date: start, TSS: 100},
		{Date: start.AddDate(0, 0, 1), TSS: 100},
	}
	got := CurrentFitness(loads)
	if got.CTL <= 0 || got.ATL <= 0 {
		t.Errorf("Expected positive CTL/ATL, got %+v", got)
	}
}

func TestClassifyForm(t *testing.T) {
	tests := []struct {
		tsb      float64
		expected FormState
	}{
		{-25, FormFatigued},
		{-20, FormFatigued}, // at the threshold counts
		{-19.9, FormNeutral},
		{0, FormNeutral},
		{9.9, FormNeutral},
		{10, FormFresh}, // at the threshold counts
		{15, FormFresh},
	}

	for _, tt := range tests {
		if got := ClassifyForm(tt.tsb, -20, 10); got != tt.expected {
			t.Errorf("ClassifyForm(%v) = %s, expected %s", tt.tsb, got, tt.expected)
		}
	}
}

func TestRampRate(t *testing.T) {
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	var loads []DailyLoad
	for i := 0; i < 28; i++ {
		loads = append(loads, DailyLoad{Date: start.AddDate(0, 0, i), TSS: 100})
	}
	metrics := CalculateFitnessSeries(loads)

	if rate := RampRate(metrics); rate <= 0 {
		t.Errorf("Expected positive ramp rate under constant load, got %v", rate)
	}
	if rate := RampRate(nil); rate != 0 {
		t.Errorf("Expected zero ramp rate without metrics, got %v", rate)
	}
}

func TestFormDescription(t *testing.T) {
	tests := []struct {
		tsb      float64
		contains string
	}{
		{30, "detrained"},
		{15, "race"},
		{5, "Neutral"},
		{-5, "Slightly"},
		{-15, "building"},
		{-30, "rest"},
	}

	for _, tt := range tests {
		desc := FormDescription(tt.tsb)
		if !strings.Contains(desc, tt.contains) {
			t.Errorf("FormDescription(%v) = %q, expected to mention %q", tt.tsb, desc, tt.contains)
		}
	}
}
