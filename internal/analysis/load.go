package analysis

import (
	"errors"
	"fmt"
	"math"

	"veloform/internal/store"
)

// ErrPowerUnavailable means the power-based TSS path cannot be used
// because FTP or the ride's power figure is missing or zero.
var ErrPowerUnavailable = errors.New("power data unavailable")

// Heuristic TSS constants: a flat hour of riding scores 50, and every
// 300m of climbing adds 10 before the category multiplier.
const (
	heuristicTSSPerHour = 50.0
	elevationUnitMeters = 300.0
	elevationUnitTSS    = 10.0

	defaultIntensityMultiplier = 1.0
)

// intensityMultipliers scales the heuristic estimate by workout category.
// Unknown categories fall back to the default multiplier.
var intensityMultipliers = map[string]float64{
	"recovery":     0.5,
	"endurance":    1.0,
	"tempo":        1.3,
	"sweet_spot":   1.5,
	"threshold":    1.7,
	"vo2max":       2.0,
	"hill_repeats": 1.6,
}

// PowerTSS computes Training Stress Score from power data:
// duration in hours times the squared intensity factor (power / FTP)
// times 100, so one hour ridden exactly at FTP scores 100.
func PowerTSS(durationSeconds int, watts, ftpWatts float64) (int, error) {
	if ftpWatts <= 0 || watts <= 0 {
		return 0, fmt.Errorf("%w: power=%.0fW ftp=%.0fW", ErrPowerUnavailable, watts, ftpWatts)
	}
	intensity := watts / ftpWatts
	hours := float64(durationSeconds) / 3600
	return int(math.Round(hours * intensity * intensity * 100)), nil
}

// HeuristicTSS estimates Training Stress Score without power data, from
// duration, elevation gain, and the workout category.
func HeuristicTSS(durationSeconds int, elevationGainMeters float64, category string) int {
	minutes := float64(durationSeconds) / 60
	base := math.Round(minutes / 60 * heuristicTSSPerHour)
	elevation := elevationGainMeters / elevationUnitMeters * elevationUnitTSS

	mult, ok := intensityMultipliers[category]
	if !ok {
		mult = defaultIntensityMultiplier
	}
	return int(math.Round((base + elevation) * mult))
}

// EstimateTSS scores a ride, preferring the power path (normalized power
// first, then average power) when the ride carries power data and the
// athlete's FTP is known, and falling back to the heuristic otherwise.
func EstimateTSS(r *store.Ride, ftpWatts int) int {
	var power float64
	switch {
	case r.NormalizedPower != nil && *r.NormalizedPower > 0:
		power = *r.NormalizedPower
	case r.AvgPower != nil && *r.AvgPower > 0:
		power = *r.AvgPower
	}

	if power > 0 && ftpWatts > 0 {
		if tss, err := PowerTSS(r.DurationSeconds, power, float64(ftpWatts)); err == nil {
			return tss
		}
	}
	return HeuristicTSS(r.DurationSeconds, r.ElevationGain, r.Category)
}
