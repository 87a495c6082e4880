package analysis

import (
	"sort"
	"time"

	"veloform/internal/store"
)

// DailyLoad is one day's accumulated training stress.
type DailyLoad struct {
	Date time.Time
	TSS  float64
}

// FitnessMetrics is the fitness/fatigue/form picture for one day.
type FitnessMetrics struct {
	Date time.Time
	CTL  float64 // Chronic Training Load (42-day EMA) - "Fitness"
	ATL  float64 // Acute Training Load (7-day EMA) - "Fatigue"
	TSB  float64 // Training Stress Balance (CTL - ATL) - "Form"
}

// FormState classifies a training-stress balance value.
type FormState string

const (
	FormFatigued FormState = "fatigued"
	FormNeutral  FormState = "neutral"
	FormFresh    FormState = "fresh"
)

// DailyLoadsFromRides folds ride TSS into per-day totals, ready for
// CalculateFitnessSeries.
func DailyLoadsFromRides(rides []store.Ride) []DailyLoad {
	byDay := make(map[string]DailyLoad)
	for _, r := range rides {
		day := r.StartedAt.Truncate(24 * time.Hour)
		key := day.Format("2006-01-02")
		dl := byDay[key]
		dl.Date = day
		dl.TSS += float64(r.TSS)
		byDay[key] = dl
	}

	loads := make([]DailyLoad, 0, len(byDay))
	for _, dl := range byDay {
		loads = append(loads, dl)
	}
	sort.Slice(loads, func(i, j int) bool {
		return loads[i].Date.Before(loads[j].Date)
	})
	return loads
}

// CalculateFitnessSeries computes day-by-day CTL/ATL/TSB from daily
// loads using exponential moving averages. Days without training count
// as zero load, so fitness decays through gaps.
func CalculateFitnessSeries(dailyLoads []DailyLoad) []FitnessMetrics {
	if len(dailyLoads) == 0 {
		return nil
	}

	sort.Slice(dailyLoads, func(i, j int) bool {
		return dailyLoads[i].Date.Before(dailyLoads[j].Date)
	})

	// EMA decay constants
	ctlDecay := 2.0 / (42.0 + 1.0) // 42-day time constant
	atlDecay := 2.0 / (7.0 + 1.0)  // 7-day time constant

	loadMap := make(map[string]float64)
	for _, dl := range dailyLoads {
		key := dl.Date.Format("2006-01-02")
		loadMap[key] += dl.TSS
	}

	startDate := dailyLoads[0].Date.Truncate(24 * time.Hour)
	endDate := dailyLoads[len(dailyLoads)-1].Date.Truncate(24 * time.Hour)

	var metrics []FitnessMetrics
	var ctl, atl float64
	for d := startDate; !d.After(endDate); d = d.AddDate(0, 0, 1) {
		tss := loadMap[d.Format("2006-01-02")]

		ctl = ctl + ctlDecay*(tss-ctl)
		atl = atl + atlDecay*(tss-atl)

		metrics = append(metrics, FitnessMetrics{
			Date: d,
			CTL:  ctl,
			ATL:  atl,
			TSB:  ctl - atl,
		})
	}
	return metrics
}

// CurrentFitness returns the most recent CTL/ATL/TSB values, or zeros
// when there is no load history.
func CurrentFitness(dailyLoads []DailyLoad) FitnessMetrics {
	metrics := CalculateFitnessSeries(dailyLoads)
	if len(metrics) == 0 {
		return FitnessMetrics{}
	}
	return metrics[len(metrics)-1]
}

// ClassifyForm maps a TSB value onto the athlete's fatigue and freshness
// thresholds.
func ClassifyForm(tsb, fatigueThreshold, freshnessThreshold float64) FormState {
	switch {
	case tsb <= fatigueThreshold:
		return FormFatigued
	case tsb >= freshnessThreshold:
		return FormFresh
	default:
		return FormNeutral
	}
}

// RampRate is the CTL change over the series, per week. Positive means
// fitness is building.
func RampRate(metrics []FitnessMetrics) float64 {
	if len(metrics) < 2 {
		return 0
	}
	first, last := metrics[0], metrics[len(metrics)-1]
	days := last.Date.Sub(first.Date).Hours() / 24
	if days <= 0 {
		return 0
	}
	return (last.CTL - first.CTL) / days * 7
}

// FormDescription returns a human-readable description of TSB.
func FormDescription(tsb float64) string {
	switch {
	case tsb > 25:
		return "Very fresh (possibly detrained)"
	case tsb > 10:
		return "Fresh and ready to race"
	case tsb > 0:
		return "Neutral - good for training"
	case tsb > -10:
		return "Slightly fatigued"
	case tsb > -25:
		return "Tired but building fitness"
	default:
		return "Very fatigued - rest needed"
	}
}
