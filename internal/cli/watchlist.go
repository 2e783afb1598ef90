package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// addWatchlistCommands adds the watchlist management commands.
func addWatchlistCommands(rootCmd *cobra.Command, app *App) {
	watchCmd := &cobra.Command{
		Use:     "watchlist",
		Aliases: []string{"watch"},
		Short:   "Manage the scanned symbol list",
	}

	watchCmd.AddCommand(newWatchlistAddCmd(app))
	watchCmd.AddCommand(newWatchlistRemoveCmd(app))
	watchCmd.AddCommand(newWatchlistListCmd(app))
	rootCmd.AddCommand(watchCmd)
}

func newWatchlistAddCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <symbol>...",
		Short: "Add symbols to the watchlist",
		Example: `  nepsescan watchlist add NABIL
  nepsescan watchlist add UPPER CHCL --sector Hydropower`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()

			if app.Store == nil {
				return fmt.Errorf("data store not available")
			}

			sector, _ := cmd.Flags().GetString("sector")

			for _, symbol := range args {
				symbol = strings.ToUpper(strings.TrimSpace(symbol))
				if symbol == "" {
					continue
				}
				if err := app.Store.AddToWatchlist(ctx, symbol, sector); err != nil {
					output.Error("Failed to add %s: %v", symbol, err)
					return err
				}
				output.Success("Added %s", symbol)
			}
			return nil
		},
	}

	cmd.Flags().String("sector", "", "sector label for the added symbols")
	return cmd
}

func newWatchlistRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <symbol>...",
		Aliases: []string{"rm"},
		Short:   "Remove symbols from the watchlist",
		Example: `  nepsescan watchlist remove NABIL`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()

			if app.Store == nil {
				return fmt.Errorf("data store not available")
			}

			for _, symbol := range args {
				symbol = strings.ToUpper(strings.TrimSpace(symbol))
				if err := app.Store.RemoveFromWatchlist(ctx, symbol); err != nil {
					output.Error("Failed to remove %s: %v", symbol, err)
					return err
				}
				output.Success("Removed %s", symbol)
			}
			return nil
		},
	}
}

func newWatchlistListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List watched symbols with sectors",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()

			if app.Store == nil {
				return fmt.Errorf("data store not available")
			}

			symbols, err := app.Store.GetWatchlist(ctx)
			if err != nil {
				output.Error("Failed to read watchlist: %v", err)
				return err
			}
			if len(symbols) == 0 {
				output.Dim("Watchlist is empty")
				return nil
			}

			sectors, err := app.Store.GetSectors(ctx)
			if err != nil {
				app.Logger.Warn().Err(err).Msg("Failed to read sectors")
				sectors = map[string]string{}
			}

			if output.IsJSON() {
				type entry struct {
					Symbol string `json:"symbol"`
					Sector string `json:"sector,omitempty"`
				}
				entries := make([]entry, 0, len(symbols))
				for _, symbol := range symbols {
					entries = append(entries, entry{Symbol: symbol, Sector: sectors[symbol]})
				}
				return output.JSON(entries)
			}

			color.Cyan("Watchlist (%d symbols)", len(symbols))
			for _, symbol := range symbols {
				if sector := sectors[symbol]; sector != "" {
					output.Printf("  %-10s %s\n", symbol, sector)
				} else {
					output.Printf("  %s\n", symbol)
				}
			}
			return nil
		},
	}
}
