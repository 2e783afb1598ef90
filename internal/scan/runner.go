package scan

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	scanerrors "nepse-scanner/internal/errors"
	"nepse-scanner/internal/models"
)

// RunReport collects the outcome of one scan pass across all detectors.
type RunReport struct {
	Results  []*models.Result `json:"results"`
	Failures map[string]error `json:"-"`
	Started  time.Time        `json:"started"`
	Finished time.Time        `json:"finished"`
}

// Empty reports whether no detector produced a result.
func (r *RunReport) Empty() bool {
	return len(r.Results) == 0
}

// QuietFailure reports whether the named detector failed only because
// nothing qualified, as opposed to an actual error.
func (r *RunReport) QuietFailure(detector string) bool {
	err, ok := r.Failures[detector]
	return ok && scanerrors.Is(err, scanerrors.ErrNoQualifyingSymbols)
}

// Runner executes detectors over one snapshot of market data. Detectors
// run sequentially; the state store serializes its own load-mutate-save
// cycle, so a concurrent runner would also be safe, but one pass per run
// keeps the persisted file deterministic.
type Runner struct {
	detectors []Detector
	logger    zerolog.Logger
	now       func() time.Time
}

// NewRunner creates a runner over the given detectors.
func NewRunner(logger zerolog.Logger, detectors ...Detector) *Runner {
	return &Runner{
		detectors: detectors,
		logger:    logger,
		now:       time.Now,
	}
}

// Run executes every detector, isolating failures per detector so one
// broken pass never aborts the whole batch.
func (r *Runner) Run(ctx context.Context, data models.MarketData) *RunReport {
	report := &RunReport{
		Failures: make(map[string]error),
		Started:  r.now(),
	}

	for _, detector := range r.detectors {
		result, err := detector.Detect(ctx, data)
		if err != nil {
			report.Failures[detector.Name()] = err
			if scanerrors.Is(err, scanerrors.ErrNoQualifyingSymbols) {
				r.logger.Info().
					Str("detector", detector.Name()).
					Msg("No qualifying symbols")
			} else {
				r.logger.Error().
					Str("detector", detector.Name()).
					Err(err).
					Msg("Detector failed")
			}
			continue
		}
		report.Results = append(report.Results, result)
	}

	report.Finished = r.now()
	return report
}
