// Package loader produces normalized market data for the detectors.
//
// The loader is the only place raw row shapes are tolerated: everything
// past this boundary is a strict DailyRecord series, sorted ascending and
// unique per calendar day.
package loader

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	scanerrors "nepse-scanner/internal/errors"
	"nepse-scanner/internal/logging"
	"nepse-scanner/internal/models"
	"nepse-scanner/internal/store"
	"nepse-scanner/pkg/utils"
)

// historyDays caps how much history a scan pass pulls per symbol. The
// deepest detector window is 120 records; a year of trading days clears
// it with room for gaps.
const historyDays = 250

// Loader assembles the symbol-to-series mapping for a scan pass,
// restricted to the watchlist.
type Loader struct {
	store  store.DataStore
	logger zerolog.Logger
	retry  utils.RetryConfig
}

// NewLoader creates a loader over the given data store.
func NewLoader(dataStore store.DataStore, logger zerolog.Logger) *Loader {
	return &Loader{
		store:  dataStore,
		logger: logging.WithSource(logger, "store"),
		retry:  utils.DefaultRetryConfig(),
	}
}

// Load returns the series for every tracked symbol. Symbols without data
// are simply absent; detectors handle short series themselves. I/O
// failures are wrapped as ErrSourceUnavailable so the caller can decide
// on a substitution policy.
func (l *Loader) Load(ctx context.Context) (models.MarketData, error) {
	started := time.Now()

	var symbols []string
	err := utils.Retry(ctx, l.retry, func() error {
		var err error
		symbols, err = l.store.GetWatchlist(ctx)
		return err
	})
	if err != nil {
		logging.LogSourceRead(l.logger, "watchlist", 0, time.Since(started), err)
		return nil, scanerrors.NewLoadError("store", "reading watchlist",
			errors.Join(scanerrors.ErrSourceUnavailable, err))
	}

	if len(symbols) == 0 {
		return nil, scanerrors.NewLoadError("store", "watchlist is empty", scanerrors.ErrDataNotFound)
	}

	var data models.MarketData
	err = utils.Retry(ctx, l.retry, func() error {
		var err error
		data, err = l.store.GetSeries(ctx, symbols, historyDays)
		return err
	})
	if err != nil {
		logging.LogSourceRead(l.logger, "daily_records", 0, time.Since(started), err)
		return nil, scanerrors.NewLoadError("store", "reading daily records",
			errors.Join(scanerrors.ErrSourceUnavailable, err))
	}

	logging.LogSourceRead(l.logger, "daily_records", len(data), time.Since(started), nil)
	return data, nil
}

// Normalize validates and canonicalizes a batch of raw records: rejects
// non-positive prices, negative volume and inconsistent high/low, sorts
// ascending and keeps the first record per symbol per calendar day.
func Normalize(records []models.DailyRecord) ([]models.DailyRecord, error) {
	seen := make(map[string]bool, len(records))
	out := make([]models.DailyRecord, 0, len(records))

	for _, r := range records {
		if r.Symbol == "" {
			return nil, scanerrors.NewValidationError("symbol", r.Symbol, "must not be empty")
		}
		if r.Open <= 0 || r.High <= 0 || r.Low <= 0 || r.Close <= 0 {
			return nil, scanerrors.NewValidationError("price", r.Symbol, "prices must be positive")
		}
		if r.Low > r.High {
			return nil, scanerrors.NewValidationError("low", r.Symbol, "low exceeds high")
		}
		if r.Volume < 0 {
			return nil, scanerrors.NewValidationError("volume", r.Symbol, "volume must be non-negative")
		}

		day := r.Date.Format("2006-01-02")
		key := r.Symbol + "|" + day
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}

	grouped := make(models.MarketData)
	for _, r := range out {
		grouped[r.Symbol] = append(grouped[r.Symbol], r)
	}
	for _, series := range grouped {
		series.Sort()
	}

	sorted := make([]models.DailyRecord, 0, len(out))
	for _, symbol := range grouped.Symbols() {
		sorted = append(sorted, grouped[symbol]...)
	}
	return sorted, nil
}
