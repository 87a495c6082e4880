// Package service orchestrates benchmark, progression, and trend
// operations on top of a Store. The Engine owns the adaptive-training
// semantics: zone derivation on benchmark changes, bounded progression
// adjustments, and windowed trend detection.
package service

import (
	"errors"

	"go.uber.org/zap"

	"veloform/internal/store"
)

// Validation errors returned before anything is written.
var (
	ErrInvalidTestMethod  = errors.New("invalid test method")
	ErrInvalidZone        = errors.New("invalid zone")
	ErrInvalidRPE         = errors.New("rpe must be between 1 and 10")
	ErrInvalidCompletion  = errors.New("completion percent must not be negative")
	ErrInvalidDuration    = errors.New("duration must be positive")
	ErrInvalidRideID      = errors.New("ride id must be positive")
	ErrInvalidSensitivity = errors.New("invalid sensitivity")
)

// Engine coordinates the training-intelligence operations over a Store.
// It is safe for concurrent use as long as the underlying Store is.
type Engine struct {
	store store.Store
	log   *zap.SugaredLogger
}

// New creates an Engine. A nil logger disables logging.
func New(st store.Store, log *zap.SugaredLogger) *Engine {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Engine{store: st, log: log}
}
