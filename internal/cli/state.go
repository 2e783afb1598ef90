package cli

import (
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"nepse-scanner/internal/scan"
	"nepse-scanner/internal/state"
)

// addStateCommands adds the detector state inspection commands.
func addStateCommands(rootCmd *cobra.Command, app *App) {
	stateCmd := &cobra.Command{
		Use:   "state",
		Short: "Inspect persisted detector state",
	}

	stateCmd.AddCommand(newStateShowCmd(app))
	stateCmd.AddCommand(newStateClearCmd(app))
	rootCmd.AddCommand(stateCmd)
}

func newStateShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show [detector]",
		Short: "Show remembered signals per detector",
		Example: `  nepsescan state show
  nepsescan state show trendline`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			snapshot, err := app.States.Load()
			if err != nil {
				output.Error("Failed to load state: %v", err)
				return err
			}

			if output.IsJSON() {
				if len(args) == 1 {
					return output.JSON(snapshot.Detector(args[0]))
				}
				return output.JSON(snapshot)
			}

			dateFmt := app.Config.UI.DateFormat
			if dateFmt == "" {
				dateFmt = "2006-01-02"
			}

			names := []string{
				scan.DetectorRsiSupport,
				scan.DetectorTrendline,
				scan.DetectorInstitutional,
				scan.DetectorHeatmap,
			}
			if len(args) == 1 {
				names = []string{args[0]}
			}

			for _, name := range names {
				entries := snapshot.Detectors[name]
				color.Cyan("%s (%d symbols)", name, len(entries))
				symbols := make([]string, 0, len(entries))
				for symbol := range entries {
					symbols = append(symbols, symbol)
				}
				sort.Strings(symbols)
				for _, symbol := range symbols {
					entry := entries[symbol]
					switch {
					case entry.RSI != 0:
						output.Printf("  %-10s RSI %.1f  support %.2f\n",
							symbol, entry.RSI, entry.SupportLevel)
					case entry.Score != 0:
						output.Printf("  %-10s score %.2f\n", symbol, entry.Score)
					case !entry.FirstDetected.IsZero():
						output.Printf("  %-10s since %s\n",
							symbol, entry.FirstDetected.Format(dateFmt))
					default:
						output.Printf("  %s\n", symbol)
					}
				}
			}

			if !snapshot.LastUpdated.IsZero() {
				output.Dim("Last updated %s", snapshot.LastUpdated.Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}
}

func newStateClearCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "clear [detector]",
		Short: "Forget remembered signals",
		Long: `Clear persisted detector state.

With a detector name only that detector's entries are removed; without
arguments the whole state file is reset. The next scan starts fresh and
reports every qualifying signal as new.`,
		Example: `  nepsescan state clear trendline
  nepsescan state clear`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			if len(args) == 1 {
				if err := app.States.UpdateDetector(args[0], map[string]state.Entry{}); err != nil {
					output.Error("Failed to clear state: %v", err)
					return err
				}
				output.Success("Cleared %s state", args[0])
				return nil
			}

			if err := app.States.Save(state.NewState()); err != nil {
				output.Error("Failed to clear state: %v", err)
				return err
			}
			output.Success("Cleared all detector state")
			return nil
		},
	}
}
