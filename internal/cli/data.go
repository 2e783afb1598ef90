package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"nepse-scanner/internal/loader"
	"nepse-scanner/internal/store"
	"nepse-scanner/pkg/utils"
)

// addDataCommands adds the market data commands.
func addDataCommands(rootCmd *cobra.Command, app *App) {
	dataCmd := &cobra.Command{
		Use:   "data",
		Short: "Manage historical market data",
	}

	dataCmd.AddCommand(newDataImportCmd(app))
	dataCmd.AddCommand(newDataShowCmd(app))
	rootCmd.AddCommand(dataCmd)
}

func newDataImportCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <csv-file>",
		Short: "Import daily records from a CSV file",
		Long: `Import daily OHLCV records from a CSV export.

Expected columns: symbol, date, open, high, low, close, volume.
Rows with non-positive prices or inverted high/low are rejected and
duplicate symbol-day rows keep the first occurrence.`,
		Example: `  nepsescan data import floorsheet.csv
  nepsescan data import floorsheet.csv --date-format 2006-01-02`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
			defer cancel()

			if app.Store == nil {
				return fmt.Errorf("data store not available")
			}

			dateFormat, _ := cmd.Flags().GetString("date-format")
			if !cmd.Flags().Changed("date-format") && app.Config.Data.CSVDateFmt != "" {
				dateFormat = app.Config.Data.CSVDateFmt
			}

			records, err := loader.ReadCSV(args[0], dateFormat)
			if err != nil {
				output.Error("Import failed: %v", err)
				return err
			}

			if err := app.Store.SaveDailyRecords(ctx, records); err != nil {
				output.Error("Failed to save records: %v", err)
				return err
			}

			if err := app.Store.SetLastSync(string(store.SyncTypeDaily), time.Now()); err != nil {
				app.Logger.Warn().Err(err).Msg("Failed to record sync time")
			}

			output.Success("Imported %d records from %s", len(records), args[0])
			return nil
		},
	}

	cmd.Flags().String("date-format", "2006-01-02", "Go layout for the date column")
	return cmd
}

func newDataShowCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <symbol>",
		Short: "Show recent daily records for a symbol",
		Example: `  nepsescan data show NABIL
  nepsescan data show UPPER --days 10`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if app.Store == nil {
				return fmt.Errorf("data store not available")
			}

			days, _ := cmd.Flags().GetInt("days")
			symbol := args[0]

			to := time.Now()
			from := to.AddDate(0, 0, -days)

			series, err := app.Store.GetDailyRecords(ctx, symbol, from, to)
			if err != nil {
				output.Error("Failed to read records: %v", err)
				return err
			}
			if len(series) == 0 {
				output.Dim("No records for %s in the last %d days", symbol, days)
				return nil
			}

			if output.IsJSON() {
				return output.JSON(series)
			}

			dateFmt := app.Config.UI.DateFormat
			if dateFmt == "" {
				dateFmt = "2006-01-02"
			}

			color.Cyan("%s (%d records)", symbol, len(series))
			output.Printf("  %-12s %12s %12s %12s %12s %12s\n",
				"DATE", "OPEN", "HIGH", "LOW", "CLOSE", "VOLUME")
			for _, rec := range series {
				output.Printf("  %-12s %12.2f %12.2f %12.2f %12.2f %12s\n",
					rec.Date.Format(dateFmt),
					rec.Open, rec.High, rec.Low, rec.Close,
					utils.FormatQuantity(rec.Volume))
			}
			return nil
		},
	}

	cmd.Flags().Int("days", 30, "number of days to show")
	return cmd
}
