package cli

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	scanerrors "nepse-scanner/internal/errors"
	"nepse-scanner/internal/loader"
	"nepse-scanner/internal/models"
	"nepse-scanner/internal/scan"
	"nepse-scanner/pkg/utils"
)

// addScanCommands adds the detector commands.
func addScanCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newScanCmd(app))
	rootCmd.AddCommand(newRsiCmd(app))
	rootCmd.AddCommand(newTrendlineCmd(app))
	rootCmd.AddCommand(newInstitutionalCmd(app))
	rootCmd.AddCommand(newHeatmapCmd(app))
}

// loadMarketData pulls the tracked symbols' series from the store.
func loadMarketData(ctx context.Context, app *App) (models.MarketData, error) {
	if app.Store == nil {
		return nil, fmt.Errorf("data store not available")
	}
	return loader.NewLoader(app.Store, app.Logger).Load(ctx)
}

func newScanCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Run all signal detectors",
		Long: `Run every detector over the tracked symbols and report the results.

Detectors that find nothing are reported quietly; detector errors are
isolated so one failure never aborts the whole pass.`,
		Example: `  nepsescan scan
  nepsescan scan --notify
  nepsescan scan --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
			defer cancel()

			sendNotifications, _ := cmd.Flags().GetBool("notify")

			data, err := loadMarketData(ctx, app)
			if err != nil {
				output.Error("Failed to load market data: %v", err)
				return err
			}

			runner := scan.NewRunner(app.Logger,
				scan.NewRsiSupportDetector(app.Config.RSISupport, app.States, app.Logger),
				scan.NewTrendlineDetector(app.Config.Trendline, app.States, app.Logger),
				scan.NewInstitutionalDetector(app.Config.Institutional, app.States, app.Logger),
				scan.NewHeatmapDetector(app.Config.Heatmap, nil, app.Logger),
			)

			report := runner.Run(ctx, data)

			if output.IsJSON() {
				return output.JSON(report)
			}

			for _, result := range report.Results {
				printResult(output, result)
				if sendNotifications && app.Notifier != nil {
					if err := app.Notifier.SendResult(ctx, result); err != nil {
						output.Warning("Notification failed: %v", err)
					}
				}
			}

			for detector, err := range report.Failures {
				if report.QuietFailure(detector) {
					output.Dim("%s: no qualifying symbols", detector)
				} else {
					output.Error("%s: %v", detector, err)
				}
			}

			return nil
		},
	}

	cmd.Flags().Bool("notify", false, "deliver results over configured notification channels")
	return cmd
}

func newRsiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rsi",
		Short: "Scan for oversold stocks near support",
		Example: `  nepsescan rsi
  nepsescan rsi --json`,
		RunE: runDetector(app, func(app *App) scan.Detector {
			return scan.NewRsiSupportDetector(app.Config.RSISupport, app.States, app.Logger)
		}),
	}
}

func newTrendlineCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "trendline",
		Short: "Scan for regression trendlines through recent lows",
		Example: `  nepsescan trendline
  nepsescan trendline --json`,
		RunE: runDetector(app, func(app *App) scan.Detector {
			return scan.NewTrendlineDetector(app.Config.Trendline, app.States, app.Logger)
		}),
	}
}

func newInstitutionalCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "institutional",
		Aliases: []string{"inst"},
		Short:   "Score institutional accumulation activity",
		Example: `  nepsescan institutional
  nepsescan inst --json`,
		RunE: runDetector(app, func(app *App) scan.Detector {
			return scan.NewInstitutionalDetector(app.Config.Institutional, app.States, app.Logger)
		}),
	}
}

func newHeatmapCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "heatmap",
		Short: "Sector volume heatmap over the last 5 days",
		Example: `  nepsescan heatmap
  nepsescan heatmap --json`,
		RunE: runDetector(app, func(app *App) scan.Detector {
			return scan.NewHeatmapDetector(app.Config.Heatmap, nil, app.Logger)
		}),
	}
}

// runDetector builds the shared single-detector command body.
func runDetector(app *App, build func(*App) scan.Detector) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		output := NewOutput(cmd)
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		data, err := loadMarketData(ctx, app)
		if err != nil {
			output.Error("Failed to load market data: %v", err)
			return err
		}

		detector := build(app)
		result, err := detector.Detect(ctx, data)
		if err != nil {
			if scanerrors.Is(err, scanerrors.ErrNoQualifyingSymbols) {
				output.Dim("No qualifying symbols")
				return nil
			}
			output.Error("Scan failed: %v", err)
			return err
		}

		if output.IsJSON() {
			return output.JSON(result)
		}

		printResult(output, result)
		return nil
	}
}

// printResult renders a detector result as a terminal table.
func printResult(output *Output, result *models.Result) {
	switch data := result.Data.(type) {
	case models.RsiSupportReport:
		color.Cyan("Oversold Near Support (%d stocks, mean RSI %.1f)", data.Count, data.MeanRSI)
		for _, sig := range data.Signals {
			output.Printf("  %-10s RSI %5.1f  support %12s  last %12s  %s\n",
				sig.Symbol, sig.RSI,
				utils.FormatRupees(sig.SupportLevel),
				utils.FormatRupees(sig.LastPrice),
				utils.FormatPercent(sig.PercentFromSupport))
		}
		output.Println()

	case models.TrendReport:
		color.Cyan("Trendlines (%d new, %d continuing)", len(data.New), len(data.Existing))
		for _, sig := range data.New {
			output.Printf("  NEW  %-10s %-9s %8s  strength %.2f\n",
				sig.Symbol, sig.Trend, utils.FormatPercent(sig.PercentChange), sig.TrendStrength)
		}
		for _, sig := range data.Existing {
			output.Printf("       %-10s %-9s %8s  day %d\n",
				sig.Symbol, sig.Trend, utils.FormatPercent(sig.PercentChange), sig.DaysSinceDetected)
		}
		output.Println()

	case models.InstitutionalReport:
		color.Cyan("Institutional Activity (%d stocks)", len(data.Signals))
		for i := len(data.Buckets) - 1; i >= 0; i-- {
			bucket := data.Buckets[i]
			output.Info("  score >= %.2f", bucket.Threshold)
			for _, sig := range bucket.Signals {
				output.Printf("    %-10s %.2f  %8s  vol %12s  %s\n",
					sig.Symbol, sig.Score,
					utils.FormatPercent(sig.PercentChange),
					utils.FormatQuantity(sig.Volume),
					sig.Activity)
			}
		}
		output.Println()

	case models.HeatmapReport:
		color.Cyan("Weekly Heatmap (%d sectors)", len(data.Sectors))
		names := make([]string, 0, len(data.Sectors))
		for sector := range data.Sectors {
			names = append(names, sector)
		}
		sort.Strings(names)
		for _, sector := range names {
			output.Info("  %s", sector)
			for _, entry := range data.Sectors[sector] {
				output.Printf("    %-10s close %12s  %8s  avg vol %s\n",
					entry.Symbol,
					utils.FormatRupees(entry.Close),
					utils.FormatPercent(entry.PercentChange),
					utils.FormatVolume(entry.AvgVolume))
			}
		}
		output.Println()

	default:
		output.Printf("%s completed at %s\n", result.Type, result.Timestamp.Format("15:04:05"))
	}
}
