package scan

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"nepse-scanner/internal/analysis/indicators"
	"nepse-scanner/internal/config"
	scanerrors "nepse-scanner/internal/errors"
	"nepse-scanner/internal/logging"
	"nepse-scanner/internal/models"
	"nepse-scanner/internal/state"
)

const (
	institutionalWindow = 30 // most recent records considered
	recentVolumeDays    = 5  // short window for the volume anomaly factor
)

// InstitutionalDetector scores symbols on volume anomaly, price/volume
// alignment, price stability and OBV trend, then buckets them by score
// threshold for notification.
type InstitutionalDetector struct {
	cfg    config.InstitutionalConfig
	states *state.Store
	logger zerolog.Logger
	now    func() time.Time
}

// NewInstitutionalDetector creates a new institutional activity detector.
func NewInstitutionalDetector(cfg config.InstitutionalConfig, states *state.Store, logger zerolog.Logger) *InstitutionalDetector {
	return &InstitutionalDetector{
		cfg:    cfg,
		states: states,
		logger: logging.WithDetector(logger, DetectorInstitutional),
		now:    time.Now,
	}
}

func (d *InstitutionalDetector) Name() string {
	return DetectorInstitutional
}

// Detect scores every symbol with at least 30 records. State is written
// for all scanned symbols, not just qualifying ones, so the persisted
// scores cover the full universe the pass looked at.
func (d *InstitutionalDetector) Detect(ctx context.Context, data models.MarketData) (*models.Result, error) {
	started := d.now()

	var signals []models.InstitutionalSignal
	entries := make(map[string]state.Entry)
	scanned := 0
	now := d.now()

	for _, symbol := range data.Symbols() {
		if err := ctx.Err(); err != nil {
			return nil, scanerrors.NewDetectionError(d.Name(), "detect", err)
		}

		series := data[symbol]
		if len(series) < institutionalWindow {
			continue
		}
		scanned++

		window := series.Tail(institutionalWindow)
		score, pctChange := d.scoreWindow(window)

		entries[symbol] = state.Entry{
			Score:     score,
			Timestamp: now,
		}

		if score < d.cfg.Thresholds[0] && math.Abs(pctChange) < d.cfg.MinPercentChange {
			continue
		}

		signals = append(signals, models.InstitutionalSignal{
			Symbol:        symbol,
			Score:         score,
			PercentChange: pctChange,
			Volume:        window.Last().Volume,
			Activity:      classifyActivity(score, pctChange),
		})
		logging.LogSignal(d.logger, d.Name(), symbol, score)
	}

	err := d.states.UpdateDetector(d.Name(), entries)
	logging.LogStateWrite(d.logger, d.Name(), len(entries), err)

	if len(signals) == 0 {
		logging.LogScan(d.logger, d.Name(), scanned, 0, d.now().Sub(started))
		return nil, scanerrors.NewDetectionError(d.Name(), "detect", scanerrors.ErrNoQualifyingSymbols)
	}

	sort.Slice(signals, func(i, j int) bool {
		return signals[i].Score > signals[j].Score
	})

	logging.LogScan(d.logger, d.Name(), scanned, len(signals), d.now().Sub(started))

	return &models.Result{
		Type: d.Name(),
		Data: models.InstitutionalReport{
			Signals: signals,
			Buckets: d.bucket(signals),
		},
		Timestamp: d.now(),
	}, nil
}

// scoreWindow computes the composite score in [0, 1] over the 30-day
// window plus the window percent change.
func (d *InstitutionalDetector) scoreWindow(window models.SymbolSeries) (float64, float64) {
	closes := window.Closes()
	pctChange := indicators.PercentChange(closes[0], closes[len(closes)-1])

	var score float64

	// Volume anomaly (max 0.3): recent mean volume vs full-window mean
	fullVolume := indicators.MeanVolume(window)
	recentVolume := indicators.MeanVolume(window.Tail(recentVolumeDays))
	volumeRatio := 0.0
	if fullVolume > 0 {
		volumeRatio = recentVolume / fullVolume
	}
	switch {
	case volumeRatio > 1.5:
		score += 0.3
	case volumeRatio > 1.2:
		score += 0.2
	case volumeRatio > 1.0:
		score += 0.1
	}

	// Price/volume alignment (max 0.3)
	switch {
	case pctChange > 5 && volumeRatio > 1.3:
		score += 0.3
	case pctChange > 2 && volumeRatio > 1.1:
		score += 0.2
	case pctChange > 0 && volumeRatio > 1.0:
		score += 0.1
	}

	// Price stability (max 0.2): tight ranges suggest accumulation
	lowClose := indicators.Lowest(closes)
	highClose := indicators.Highest(closes)
	if lowClose > 0 {
		rangePct := (highClose - lowClose) / lowClose * 100
		switch {
		case rangePct < 5:
			score += 0.2
		case rangePct < 10:
			score += 0.15
		case rangePct < 15:
			score += 0.1
		}
	}

	// OBV trend (max 0.2)
	obv, err := indicators.NewOBV().Latest(window)
	if err == nil && obv > 0 {
		if pctChange > 0 {
			score += 0.2
		} else {
			score += 0.1
		}
	}

	return score, pctChange
}

// classifyActivity labels the composite score.
func classifyActivity(score, pctChange float64) models.ActivityLevel {
	switch {
	case score >= 0.7 && pctChange > 0:
		return models.ActivityIncreasing
	case score >= 0.5 && pctChange < 0:
		return models.ActivityDecreasing
	case score >= 0.5:
		return models.ActivityStable
	default:
		return models.ActivityNeutral
	}
}

// bucket assigns each signal to the highest configured threshold it
// meets, gated by the percent-change minimum. Signals meeting no
// threshold are dropped from the bucketed output.
func (d *InstitutionalDetector) bucket(signals []models.InstitutionalSignal) []models.InstitutionalBucket {
	buckets := make([]models.InstitutionalBucket, len(d.cfg.Thresholds))
	for i, t := range d.cfg.Thresholds {
		buckets[i].Threshold = t
	}

	for _, sig := range signals {
		if math.Abs(sig.PercentChange) < d.cfg.MinPercentChange {
			continue
		}
		// Scan from the top so a score lands in the highest bucket it meets
		for i := len(d.cfg.Thresholds) - 1; i >= 0; i-- {
			if sig.Score >= d.cfg.Thresholds[i] {
				buckets[i].Signals = append(buckets[i].Signals, sig)
				break
			}
		}
	}

	var out []models.InstitutionalBucket
	for _, b := range buckets {
		if len(b.Signals) > 0 {
			out = append(out, b)
		}
	}
	return out
}
