package service

import (
	"context"
	"time"

	"veloform/internal/analysis"
)

// FormAssessment is the athlete's fitness/fatigue/form picture as of
// today.
type FormAssessment struct {
	Date        time.Time
	CTL         float64
	ATL         float64
	TSB         float64
	RampRate    float64 // CTL change per week over the window
	State       analysis.FormState
	Description string
}

// AssessForm computes chronic and acute load from the last daysBack days
// of rides and classifies the resulting form against the athlete's
// fatigue and freshness thresholds. With no rides on record everything
// reads zero and the form is neutral.
func (e *Engine) AssessForm(ctx context.Context, athleteID int64, daysBack int) (*FormAssessment, error) {
	if daysBack <= 0 {
		daysBack = DefaultHistoryDays
	}
	since := time.Now().UTC().AddDate(0, 0, -daysBack)

	rides, err := e.store.ListRidesSince(ctx, athleteID, since)
	if err != nil {
		return nil, err
	}
	settings, err := e.GetAdaptationSettings(ctx, athleteID)
	if err != nil {
		return nil, err
	}

	loads := analysis.DailyLoadsFromRides(rides)
	series := analysis.CalculateFitnessSeries(loads)
	current := analysis.CurrentFitness(loads)

	return &FormAssessment{
		Date:        current.Date,
		CTL:         current.CTL,
		ATL:         current.ATL,
		TSB:         current.TSB,
		RampRate:    analysis.RampRate(series),
		State:       analysis.ClassifyForm(current.TSB, settings.FatigueThreshold, settings.FreshnessThreshold),
		Description: analysis.FormDescription(current.TSB),
	}, nil
}
