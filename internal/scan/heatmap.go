package scan

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"nepse-scanner/internal/analysis/indicators"
	"nepse-scanner/internal/config"
	scanerrors "nepse-scanner/internal/errors"
	"nepse-scanner/internal/logging"
	"nepse-scanner/internal/models"
)

const heatmapWindow = 5 // rolling days aggregated per symbol

// SectorTable maps symbol prefixes to sector names. The longest matching
// prefix wins; unmatched symbols fall into DefaultSector.
type SectorTable map[string]string

// DefaultSector is used when no prefix matches.
const DefaultSector = "Other"

// Lookup resolves the sector for a symbol.
func (t SectorTable) Lookup(symbol string) string {
	best := ""
	for prefix := range t {
		if strings.HasPrefix(symbol, prefix) && len(prefix) > len(best) {
			best = prefix
		}
	}
	if best == "" {
		return DefaultSector
	}
	return t[best]
}

// HeatmapDetector computes 5-day rolling volume/price aggregates grouped
// by sector, ranked by volume.
type HeatmapDetector struct {
	cfg     config.HeatmapConfig
	sectors SectorTable
	logger  zerolog.Logger
	now     func() time.Time
}

// NewHeatmapDetector creates a new heatmap aggregator. The sector table
// is injected so callers can source it from config or the watchlist
// database.
func NewHeatmapDetector(cfg config.HeatmapConfig, sectors SectorTable, logger zerolog.Logger) *HeatmapDetector {
	if sectors == nil {
		sectors = SectorTable(cfg.Sectors)
	}
	return &HeatmapDetector{
		cfg:     cfg,
		sectors: sectors,
		logger:  logging.WithDetector(logger, DetectorHeatmap),
		now:     time.Now,
	}
}

func (d *HeatmapDetector) Name() string {
	return DetectorHeatmap
}

// Detect aggregates the last five records per symbol. An entirely empty
// heatmap is a failure condition, distinct from sectors that simply have
// no qualifying entries.
func (d *HeatmapDetector) Detect(ctx context.Context, data models.MarketData) (*models.Result, error) {
	started := d.now()

	sectors := make(map[string][]models.HeatmapEntry)
	scanned := 0
	total := 0

	for _, symbol := range data.Symbols() {
		if err := ctx.Err(); err != nil {
			return nil, scanerrors.NewDetectionError(d.Name(), "detect", err)
		}

		series := data[symbol]
		if len(series) < heatmapWindow {
			continue
		}
		scanned++

		window := series.Tail(heatmapWindow)
		avgVolume := indicators.MeanVolume(window)
		if avgVolume < d.cfg.MinVolume {
			continue
		}

		closes := window.Closes()
		sector := d.sectors.Lookup(symbol)
		sectors[sector] = append(sectors[sector], models.HeatmapEntry{
			Symbol:        symbol,
			Sector:        sector,
			Close:         closes[len(closes)-1],
			PercentChange: indicators.PercentChange(closes[0], closes[len(closes)-1]),
			AvgVolume:     avgVolume,
		})
		total++
	}

	if total == 0 {
		logging.LogScan(d.logger, d.Name(), scanned, 0, d.now().Sub(started))
		return nil, scanerrors.NewDetectionError(d.Name(), "detect", scanerrors.ErrNoQualifyingSymbols)
	}

	for sector, entries := range sectors {
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].AvgVolume > entries[j].AvgVolume
		})
		if len(entries) > d.cfg.TopNByVolume {
			entries = entries[:d.cfg.TopNByVolume]
		}
		sectors[sector] = entries
	}

	logging.LogScan(d.logger, d.Name(), scanned, total, d.now().Sub(started))

	return &models.Result{
		Type:      d.Name(),
		Data:      models.HeatmapReport{Sectors: sectors},
		Timestamp: d.now(),
	}, nil
}
