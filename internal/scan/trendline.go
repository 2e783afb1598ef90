package scan

import (
	"context"
	"math"
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
	trendlineWindow    = 60 // most recent records considered
	trendlineNeighbors = 7  // local-minimum half window, in days
	trendlineMinPoints = 2  // minima required for a fit
)

// TrendlineDetector fits a regression line through recent local minima and
// tracks newly detected versus continuing trends across runs.
type TrendlineDetector struct {
	cfg    config.TrendlineConfig
	states *state.Store
	logger zerolog.Logger
	now    func() time.Time
}

// NewTrendlineDetector creates a new trendline detector.
func NewTrendlineDetector(cfg config.TrendlineConfig, states *state.Store, logger zerolog.Logger) *TrendlineDetector {
	return &TrendlineDetector{
		cfg:    cfg,
		states: states,
		logger: logging.WithDetector(logger, DetectorTrendline),
		now:    time.Now,
	}
}

func (d *TrendlineDetector) Name() string {
	return DetectorTrendline
}

// Detect fits a trendline per symbol and splits qualifying signals into
// new and existing against the persisted state. The state slice is then
// overwritten with the union of both sets; symbols that stopped
// qualifying are dropped.
func (d *TrendlineDetector) Detect(ctx context.Context, data models.MarketData) (*models.Result, error) {
	started := d.now()

	prior, err := d.states.Load()
	if err != nil {
		return nil, scanerrors.NewDetectionError(d.Name(), "load state", err)
	}
	priorEntries := prior.Detector(d.Name())

	report := models.TrendReport{}
	entries := make(map[string]state.Entry)
	scanned := 0
	now := d.now()

	for _, symbol := range data.Symbols() {
		if err := ctx.Err(); err != nil {
			return nil, scanerrors.NewDetectionError(d.Name(), "detect", err)
		}

		series := data[symbol]
		if len(series) < trendlineWindow {
			continue
		}
		scanned++

		signal, ok := d.analyze(series)
		if !ok {
			continue
		}
		signal.Symbol = symbol

		if previous, seen := priorEntries[symbol]; seen && !previous.FirstDetected.IsZero() {
			signal.FirstDetected = previous.FirstDetected
			signal.DaysSinceDetected = int(math.Floor(now.Sub(previous.FirstDetected).Hours() / 24))
			report.Existing = append(report.Existing, signal)
		} else {
			signal.FirstDetected = now
			report.New = append(report.New, signal)
		}

		entries[symbol] = state.Entry{
			FirstDetected: signal.FirstDetected,
			Timestamp:     now,
		}
		logging.LogSignal(d.logger, d.Name(), symbol, signal.TrendStrength)
	}

	// Overwrite state even on an empty pass so lapsed symbols are dropped
	// and a later re-detection counts as new.
	err = d.states.UpdateDetector(d.Name(), entries)
	logging.LogStateWrite(d.logger, d.Name(), len(entries), err)

	if len(report.New) == 0 && len(report.Existing) == 0 {
		logging.LogScan(d.logger, d.Name(), scanned, 0, d.now().Sub(started))
		return nil, scanerrors.NewDetectionError(d.Name(), "detect", scanerrors.ErrNoQualifyingSymbols)
	}

	logging.LogScan(d.logger, d.Name(), scanned, len(entries), d.now().Sub(started))

	return &models.Result{
		Type:      d.Name(),
		Data:      report,
		Timestamp: d.now(),
	}, nil
}

// analyze fits the trendline for one symbol. The second return value is
// false when the symbol does not qualify.
func (d *TrendlineDetector) analyze(series models.SymbolSeries) (models.TrendSignal, bool) {
	window := series.Tail(trendlineWindow)
	lows := window.Lows()

	minima := indicators.LocalMinima(lows, trendlineNeighbors)
	if len(minima) < trendlineMinPoints {
		return models.TrendSignal{}, false
	}

	xs := make([]float64, len(minima))
	ys := make([]float64, len(minima))
	for i, idx := range minima {
		xs[i] = float64(idx)
		ys[i] = lows[idx]
	}

	fit, err := indicators.FitLine(xs, ys)
	if err != nil {
		return models.TrendSignal{}, false
	}

	lastPrice := window.Last().Close
	expectedSupport := fit.ValueAt(float64(len(window) - 1))

	pctFromSupport := 0.0
	if expectedSupport != 0 {
		pctFromSupport = (lastPrice - expectedSupport) / expectedSupport * 100
	}

	period := d.cfg.PeriodToCheck
	if period > len(window) {
		period = len(window)
	}
	checked := window.Tail(period)
	pctChange := indicators.PercentChange(checked[0].Close, lastPrice)

	trend := models.TrendSideways
	switch {
	case fit.Slope > 0 && pctChange >= d.cfg.MinPercentChange:
		trend = models.TrendUptrend
	case fit.Slope < 0 && math.Abs(pctChange) >= d.cfg.MinPercentChange:
		trend = models.TrendDowntrend
	}

	if math.Abs(pctChange) < d.cfg.MinPercentChange {
		return models.TrendSignal{}, false
	}

	// Bounded confidence score; the constant keeps typical slopes in range
	strength := indicators.Clamp(math.Abs(fit.R2*fit.Slope*20), 0, 1)

	return models.TrendSignal{
		Trend:              trend,
		PercentChange:      pctChange,
		TrendStrength:      strength,
		Support:            expectedSupport,
		LastPrice:          lastPrice,
		PercentFromSupport: pctFromSupport,
	}, true
}
