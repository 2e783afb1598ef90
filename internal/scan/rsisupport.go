package scan

import (
	"context"
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
	rsiPeriod        = 14
	supportWindow    = 120 // trailing records scanned for support levels
	supportNeighbors = 5   // local-minimum half window, in days
	supportDedupePct = 2.0 // levels within this percent collapse into one
)

// RsiSupportDetector flags stocks that are oversold and near a historical
// support level.
type RsiSupportDetector struct {
	cfg    config.RsiSupportConfig
	states *state.Store
	logger zerolog.Logger
	now    func() time.Time
}

// NewRsiSupportDetector creates a new RSI/support detector.
func NewRsiSupportDetector(cfg config.RsiSupportConfig, states *state.Store, logger zerolog.Logger) *RsiSupportDetector {
	return &RsiSupportDetector{
		cfg:    cfg,
		states: states,
		logger: logging.WithDetector(logger, DetectorRsiSupport),
		now:    time.Now,
	}
}

func (d *RsiSupportDetector) Name() string {
	return DetectorRsiSupport
}

// Detect scans every symbol for oversold RSI near support. Symbols with
// fewer than 15 records are skipped. Zero qualifying symbols is reported
// as ErrNoQualifyingSymbols so callers can tell it apart from a fetch
// failure.
func (d *RsiSupportDetector) Detect(ctx context.Context, data models.MarketData) (*models.Result, error) {
	started := d.now()
	rsi := indicators.NewRSI(rsiPeriod)

	var signals []models.RsiSupportSignal
	scanned := 0

	for _, symbol := range data.Symbols() {
		if err := ctx.Err(); err != nil {
			return nil, scanerrors.NewDetectionError(d.Name(), "detect", err)
		}

		series := data[symbol]
		if len(series) < rsiPeriod+1 {
			continue
		}
		scanned++

		current, err := rsi.Latest(series)
		if err != nil {
			continue
		}

		lastPrice := series.Last().Close
		support, found := nearestSupportBelow(series, lastPrice)
		if !found {
			continue
		}

		pctFromSupport := (lastPrice - support) / support * 100

		if current > d.cfg.MaxRSI || pctFromSupport > d.cfg.MaxDistanceFromSupport {
			continue
		}

		signals = append(signals, models.RsiSupportSignal{
			Symbol:             symbol,
			RSI:                current,
			SupportLevel:       support,
			LastPrice:          lastPrice,
			PercentFromSupport: pctFromSupport,
		})
		logging.LogSignal(d.logger, d.Name(), symbol, current)
	}

	var rsiSum float64
	entries := make(map[string]state.Entry, len(signals))
	for _, sig := range signals {
		rsiSum += sig.RSI
		entries[sig.Symbol] = state.Entry{
			RSI:          sig.RSI,
			SupportLevel: sig.SupportLevel,
			Timestamp:    d.now(),
		}
	}

	// Overwrite state even on an empty pass so lapsed symbols are dropped.
	err := d.states.UpdateDetector(d.Name(), entries)
	logging.LogStateWrite(d.logger, d.Name(), len(entries), err)

	if len(signals) == 0 {
		logging.LogScan(d.logger, d.Name(), scanned, 0, d.now().Sub(started))
		return nil, scanerrors.NewDetectionError(d.Name(), "detect", scanerrors.ErrNoQualifyingSymbols)
	}

	// Most oversold first
	sort.Slice(signals, func(i, j int) bool {
		return signals[i].RSI < signals[j].RSI
	})

	logging.LogScan(d.logger, d.Name(), scanned, len(signals), d.now().Sub(started))

	return &models.Result{
		Type: d.Name(),
		Data: models.RsiSupportReport{
			Signals: signals,
			Count:   len(signals),
			MeanRSI: rsiSum / float64(len(signals)),
		},
		Timestamp: d.now(),
	}, nil
}

// supportLevels scans the trailing window for local minima of the low and
// collapses levels within supportDedupePct of each other, keeping the
// first found.
func supportLevels(series models.SymbolSeries) []float64 {
	window := series.Tail(supportWindow)
	lows := window.Lows()

	var levels []float64
	for _, idx := range indicators.LocalMinima(lows, supportNeighbors) {
		level := lows[idx]
		duplicate := false
		for _, existing := range levels {
			if existing != 0 && abs(level-existing)/existing*100 < supportDedupePct {
				duplicate = true
				break
			}
		}
		if !duplicate {
			levels = append(levels, level)
		}
	}
	return levels
}

// nearestSupportBelow picks, among supports strictly below price, the one
// minimizing the relative distance to it.
func nearestSupportBelow(series models.SymbolSeries, price float64) (float64, bool) {
	var best float64
	found := false
	bestDist := 0.0

	for _, level := range supportLevels(series) {
		if level <= 0 || level >= price {
			continue
		}
		dist := (price - level) / level
		if !found || dist < bestDist {
			best = level
			bestDist = dist
			found = true
		}
	}
	return best, found
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
