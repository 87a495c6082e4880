package analysis

import (
	"errors"
	"fmt"
	"math"

	"veloform/internal/store"
)

// Benchmark validation errors.
var (
	ErrFTPOutOfRange  = errors.New("ftp out of range")
	ErrLTHROutOfRange = errors.New("lthr out of range")
)

// Accepted benchmark ranges.
const (
	MinFTPWatts = 1
	MaxFTPWatts = 599
	MinLTHRBpm  = 1
	MaxLTHRBpm  = 219
)

// zoneBand is one row of a percent lookup table.
type zoneBand struct {
	zone    store.Zone
	lowPct  int
	highPct int
}

// Percent-of-FTP bands for the seven power zones.
var powerBands = []zoneBand{
	{store.ZoneRecovery, 0, 55},
	{store.ZoneEndurance, 56, 75},
	{store.ZoneTempo, 76, 87},
	{store.ZoneSweetSpot, 88, 93},
	{store.ZoneThreshold, 94, 105},
	{store.ZoneVO2Max, 106, 120},
	{store.ZoneAnaerobic, 121, 150},
}

// Percent-of-LTHR bands for the heart-rate side of each zone.
var heartRateBands = []zoneBand{
	{store.ZoneRecovery, 0, 68},
	{store.ZoneEndurance, 69, 83},
	{store.ZoneTempo, 84, 89},
	{store.ZoneSweetSpot, 90, 94},
	{store.ZoneThreshold, 95, 102},
	{store.ZoneVO2Max, 103, 106},
	{store.ZoneAnaerobic, 107, 120},
}

// ComputeZones maps a benchmark to the seven training zones. Pure and
// deterministic: the same inputs always produce the same zones.
//
// Each zone's upper watt bound is the rounded percent of FTP from the
// lookup table; the lower bound continues from the previous zone's upper
// bound so bands stay contiguous and non-overlapping at every FTP
// (rounding both ends of the percent table independently can open
// one-watt gaps). Heart-rate bands are built the same way from LTHR when
// it is supplied, otherwise left unset. AthleteID is left zero for the
// caller to fill.
func ComputeZones(ftpWatts int, lthrBpm *int) ([]store.TrainingZone, error) {
	if ftpWatts < MinFTPWatts || ftpWatts > MaxFTPWatts {
		return nil, fmt.Errorf("%w: %d watts (valid %d-%d)", ErrFTPOutOfRange, ftpWatts, MinFTPWatts, MaxFTPWatts)
	}
	if lthrBpm != nil && (*lthrBpm < MinLTHRBpm || *lthrBpm > MaxLTHRBpm) {
		return nil, fmt.Errorf("%w: %d bpm (valid %d-%d)", ErrLTHROutOfRange, *lthrBpm, MinLTHRBpm, MaxLTHRBpm)
	}

	zones := make([]store.TrainingZone, 0, len(powerBands))
	var prevHigh, prevHRHigh int
	for i, band := range powerBands {
		low := 0
		if i > 0 {
			low = prevHigh + 1
		}
		high := scalePct(ftpWatts, band.highPct)
		if high < low {
			high = low
		}
		prevHigh = high

		z := store.TrainingZone{
			Zone:       band.zone,
			ZoneIndex:  i,
			PowerLow:   low,
			PowerHigh:  high,
			PctFTPLow:  band.lowPct,
			PctFTPHigh: band.highPct,
		}

		if lthrBpm != nil {
			hr := heartRateBands[i]
			hrLow := 0
			if i > 0 {
				hrLow = prevHRHigh + 1
			}
			hrHigh := scalePct(*lthrBpm, hr.highPct)
			if hrHigh < hrLow {
				hrHigh = hrLow
			}
			prevHRHigh = hrHigh

			pctLow, pctHigh := hr.lowPct, hr.highPct
			z.HRLow = &hrLow
			z.HRHigh = &hrHigh
			z.PctLTHRLow = &pctLow
			z.PctLTHRHigh = &pctHigh
		}

		zones = append(zones, z)
	}
	return zones, nil
}

// scalePct rounds value * pct / 100 to the nearest whole unit.
func scalePct(value, pct int) int {
	return int(math.Round(float64(value) * float64(pct) / 100))
}
