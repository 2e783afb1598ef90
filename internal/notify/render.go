package notify

import (
	"fmt"
	"sort"
	"strings"

	"nepse-scanner/internal/models"
	"nepse-scanner/pkg/utils"
)

// renderResult builds a title and plain-text body for a detector result.
func renderResult(result *models.Result) (string, string) {
	switch data := result.Data.(type) {
	case models.RsiSupportReport:
		return renderRsiSupport(data)
	case models.TrendReport:
		return renderTrend(data)
	case models.InstitutionalReport:
		return renderInstitutional(data)
	case models.HeatmapReport:
		return renderHeatmap(data)
	default:
		return fmt.Sprintf("Scan Report: %s", result.Type),
			fmt.Sprintf("Detector %s produced a result at %s.",
				result.Type, result.Timestamp.Format("2006-01-02 15:04"))
	}
}

func renderRsiSupport(report models.RsiSupportReport) (string, string) {
	title := fmt.Sprintf("Oversold Near Support: %d stocks", report.Count)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d stocks oversold near support (mean RSI %.1f)\n\n", report.Count, report.MeanRSI))
	for _, sig := range report.Signals {
		sb.WriteString(fmt.Sprintf("%-10s RSI %5.1f  support %10s  %s from support\n",
			sig.Symbol, sig.RSI,
			utils.FormatRupees(sig.SupportLevel),
			utils.FormatPercent(sig.PercentFromSupport)))
	}
	return title, sb.String()
}

func renderTrend(report models.TrendReport) (string, string) {
	title := fmt.Sprintf("Trendlines: %d new, %d continuing", len(report.New), len(report.Existing))

	var sb strings.Builder
	if len(report.New) > 0 {
		sb.WriteString("Newly detected:\n")
		for _, sig := range report.New {
			sb.WriteString(fmt.Sprintf("%-10s %-9s %s  strength %.2f\n",
				sig.Symbol, sig.Trend, utils.FormatPercent(sig.PercentChange), sig.TrendStrength))
		}
	}
	if len(report.Existing) > 0 {
		sb.WriteString("\nContinuing:\n")
		for _, sig := range report.Existing {
			sb.WriteString(fmt.Sprintf("%-10s %-9s %s  day %d\n",
				sig.Symbol, sig.Trend, utils.FormatPercent(sig.PercentChange), sig.DaysSinceDetected))
		}
	}
	return title, sb.String()
}

func renderInstitutional(report models.InstitutionalReport) (string, string) {
	title := fmt.Sprintf("Institutional Activity: %d stocks", len(report.Signals))

	var sb strings.Builder
	for i := len(report.Buckets) - 1; i >= 0; i-- {
		bucket := report.Buckets[i]
		sb.WriteString(fmt.Sprintf("Score >= %.2f:\n", bucket.Threshold))
		for _, sig := range bucket.Signals {
			sb.WriteString(fmt.Sprintf("%-10s score %.2f  %s  vol %s  %s\n",
				sig.Symbol, sig.Score,
				utils.FormatPercent(sig.PercentChange),
				utils.FormatQuantity(sig.Volume),
				sig.Activity))
		}
		sb.WriteString("\n")
	}
	return title, sb.String()
}

func renderHeatmap(report models.HeatmapReport) (string, string) {
	title := fmt.Sprintf("Weekly Heatmap: %d sectors", len(report.Sectors))

	names := make([]string, 0, len(report.Sectors))
	for sector := range report.Sectors {
		names = append(names, sector)
	}
	sort.Strings(names)

	var sb strings.Builder
	for _, sector := range names {
		sb.WriteString(sector + ":\n")
		for _, entry := range report.Sectors[sector] {
			sb.WriteString(fmt.Sprintf("%-10s close %10s  %s  avg vol %s\n",
				entry.Symbol,
				utils.FormatRupees(entry.Close),
				utils.FormatPercent(entry.PercentChange),
				utils.FormatVolume(entry.AvgVolume)))
		}
		sb.WriteString("\n")
	}
	return title, sb.String()
}
