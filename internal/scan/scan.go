// Package scan implements the signal detectors and their orchestration.
package scan

import (
	"context"

	"nepse-scanner/internal/models"
)

// Detector names, used as result types and state-store keys.
const (
	DetectorRsiSupport    = "rsi_support"
	DetectorTrendline     = "trendline"
	DetectorInstitutional = "institutional_activity"
	DetectorHeatmap       = "weekly_heatmap"
)

// Detector is a stateless computation over a snapshot of market data plus
// the persisted cross-run history. Detectors must not re-sort the input,
// must tolerate calendar gaps, and skip symbols with insufficient history.
type Detector interface {
	Name() string
	Detect(ctx context.Context, data models.MarketData) (*models.Result, error)
}
