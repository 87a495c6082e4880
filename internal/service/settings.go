package service

import (
	"context"
	"errors"

	"veloform/internal/store"
)

// GetAdaptationSettings returns the athlete's settings, falling back to
// the defaults when none have been saved. The engine itself never
// mutates settings; the detection and progression paths only read them.
func (e *Engine) GetAdaptationSettings(ctx context.Context, athleteID int64) (*store.AdaptationSettings, error) {
	s, err := e.store.GetAdaptationSettings(ctx, athleteID)
	if errors.Is(err, store.ErrNoSettings) {
		return store.DefaultAdaptationSettings(athleteID), nil
	}
	return s, err
}

// UpdateAdaptationSettings validates and persists a settings change on
// the athlete's behalf.
func (e *Engine) UpdateAdaptationSettings(ctx context.Context, s *store.AdaptationSettings) error {
	if !store.ValidSensitivity(s.Sensitivity) {
		return ErrInvalidSensitivity
	}
	if err := e.store.SaveAdaptationSettings(ctx, s); err != nil {
		return err
	}
	e.log.Infow("adaptation settings updated",
		"athlete", s.AthleteID,
		"enabled", s.Enabled,
		"sensitivity", s.Sensitivity,
	)
	return nil
}
