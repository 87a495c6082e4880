package analysis

import (
	"math"

	"veloform/internal/store"
)

// Progression level bounds and the baseline assigned when a zone is
// first referenced.
const (
	MinLevel      = 1.0
	MaxLevel      = 10.0
	BaselineLevel = 3.0
)

// dampingLevelGap is how far the workout's target level must sit from
// the athlete's current level before deltas are damped.
const dampingLevelGap = 2.0

// rpeRule maps a perceived-exertion ceiling to a level delta.
type rpeRule struct {
	maxRPE float64
	delta  float64
}

// adjustmentBracket holds the RPE rules for one completion band. The
// last rule in each bracket is the catch-all.
type adjustmentBracket struct {
	minCompletion float64
	rules         []rpeRule
}

// Completion/RPE bracket table. Brackets are ordered by descending
// completion; the first one at or below the workout's completion applies.
var adjustmentBrackets = []adjustmentBracket{
	{minCompletion: 90, rules: []rpeRule{
		{maxRPE: 7, delta: 0.3},
		{maxRPE: 9, delta: 0.2},
		{maxRPE: 10, delta: 0.1},
	}},
	{minCompletion: 70, rules: []rpeRule{
		{maxRPE: 8, delta: 0.1},
		{maxRPE: 10, delta: 0},
	}},
	{minCompletion: 50, rules: []rpeRule{
		{maxRPE: 8, delta: -0.1},
		{maxRPE: 10, delta: -0.3},
	}},
	{minCompletion: 0, rules: []rpeRule{
		{maxRPE: 10, delta: -0.5},
	}},
}

// seedBand maps an average historical RPE ceiling to a starting level.
type seedBand struct {
	maxRPE float64
	level  float64
}

// Lower historical effort in a zone seeds a higher starting level.
var seedBands = []seedBand{
	{maxRPE: 4, level: 7.0},
	{maxRPE: 5, level: 6.0},
	{maxRPE: 6, level: 5.0},
	{maxRPE: 7, level: 4.0},
	{maxRPE: 8, level: 3.0},
	{maxRPE: 10, level: 2.0},
}

// ComputeAdjustment applies the bounded adjustment policy to one workout
// outcome and returns the (possibly damped) level delta plus its reason
// tag. The caller clamps the resulting level with ClampLevel.
func ComputeAdjustment(currentLevel, workoutLevel, completionPct, rpe float64) (float64, store.ChangeReason) {
	if completionPct < 0 {
		completionPct = 0
	}
	delta := baseDelta(completionPct, rpe)

	levelDiff := workoutLevel - currentLevel
	switch {
	case levelDiff > dampingLevelGap && delta < 0:
		// Struggling far above the current level is expected.
		delta /= 2
	case levelDiff < -dampingLevelGap && delta > 0:
		// Succeeding far below the current level shouldn't inflate it.
		delta /= 2
	}

	switch {
	case delta > 0:
		return delta, store.ReasonWorkoutSuccess
	case delta < 0:
		if completionPct < 50 {
			return delta, store.ReasonWorkoutFailure
		}
		return delta, store.ReasonWorkoutStruggle
	default:
		return 0, store.ReasonNoChange
	}
}

// baseDelta looks up the raw delta for a completion/RPE pair in the
// bracket table.
func baseDelta(completionPct, rpe float64) float64 {
	for _, bracket := range adjustmentBrackets {
		if completionPct < bracket.minCompletion {
			continue
		}
		for _, rule := range bracket.rules {
			if rpe <= rule.maxRPE {
				return rule.delta
			}
		}
		return bracket.rules[len(bracket.rules)-1].delta
	}
	return 0
}

// ClampLevel bounds a progression level to the valid range.
func ClampLevel(level float64) float64 {
	return math.Min(MaxLevel, math.Max(MinLevel, level))
}

// SeedLevelFromRPE discretizes the athlete's average reported exertion
// in a zone into a starting progression level.
func SeedLevelFromRPE(avgRPE float64) float64 {
	for _, band := range seedBands {
		if avgRPE <= band.maxRPE {
			return band.level
		}
	}
	return seedBands[len(seedBands)-1].level
}
