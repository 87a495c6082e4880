package service

import (
	"context"
	"time"

	"veloform/internal/analysis"
	"veloform/internal/store"
)

// BenchmarkInput carries the user-supplied fields for a new benchmark.
type BenchmarkInput struct {
	AthleteID        int64
	FTPWatts         int
	LTHRBpm          *int
	TestDate         time.Time
	TestMethod       store.TestMethod
	SourceActivityID *int64
}

// SetCurrentBenchmark validates the input, derives the seven training
// zones from it, and atomically swaps it in as the athlete's current
// benchmark. The previous record is kept, demoted. Returns the stored
// record and the derived zones.
func (e *Engine) SetCurrentBenchmark(ctx context.Context, in BenchmarkInput) (*store.BenchmarkRecord, []store.TrainingZone, error) {
	if !store.ValidTestMethod(in.TestMethod) {
		return nil, nil, ErrInvalidTestMethod
	}

	zones, err := analysis.ComputeZones(in.FTPWatts, in.LTHRBpm)
	if err != nil {
		return nil, nil, err
	}
	for i := range zones {
		zones[i].AthleteID = in.AthleteID
	}

	testDate := in.TestDate
	if testDate.IsZero() {
		testDate = time.Now().UTC()
	}
	b := &store.BenchmarkRecord{
		AthleteID:        in.AthleteID,
		FTPWatts:         in.FTPWatts,
		LTHRBpm:          in.LTHRBpm,
		TestDate:         testDate,
		TestMethod:       in.TestMethod,
		SourceActivityID: in.SourceActivityID,
	}
	if err := e.store.SetCurrentBenchmark(ctx, b, zones); err != nil {
		return nil, nil, err
	}

	e.log.Infow("benchmark updated",
		"athlete", in.AthleteID,
		"ftp_watts", in.FTPWatts,
		"method", in.TestMethod,
	)
	return b, zones, nil
}

// GetCurrentBenchmark returns the athlete's current benchmark, or
// store.ErrNoBenchmark.
func (e *Engine) GetCurrentBenchmark(ctx context.Context, athleteID int64) (*store.BenchmarkRecord, error) {
	return e.store.GetCurrentBenchmark(ctx, athleteID)
}

// GetCurrentZones returns the athlete's training zones, derived from the
// current benchmark.
func (e *Engine) GetCurrentZones(ctx context.Context, athleteID int64) ([]store.TrainingZone, error) {
	return e.store.GetZones(ctx, athleteID)
}

// GetBenchmarkHistory returns every benchmark on record for the athlete,
// newest first.
func (e *Engine) GetBenchmarkHistory(ctx context.Context, athleteID int64) ([]store.BenchmarkRecord, error) {
	return e.store.ListBenchmarks(ctx, athleteID)
}
