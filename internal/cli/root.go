// Package cli provides the command-line interface for the market scanner.
package cli

import (
	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"nepse-scanner/internal/config"
	"nepse-scanner/internal/logging"
	"nepse-scanner/internal/notify"
	"nepse-scanner/internal/state"
	"nepse-scanner/internal/store"
)

// Version information
const (
	Version   = "0.3.0"
	BuildDate = "2026-08-29"
)

// App holds the application dependencies.
type App struct {
	Config   *config.Config
	Logger   zerolog.Logger
	Store    store.DataStore
	States   *state.Store
	Notifier notify.Notifier
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	if !cfg.UI.ColorEnabled {
		color.NoColor = true
	}

	// Initialize SQLite store
	dataStore, err := store.NewSQLiteStore(cfg.Data.DatabasePath)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize store, some features may be unavailable")
	} else {
		app.Store = dataStore
		logger.Debug().Str("path", cfg.Data.DatabasePath).Msg("SQLite store initialized")
	}

	app.States = state.NewStore(cfg.Data.StatePath)

	notifier := notify.NewMultiNotifier(&cfg.Notifications)
	if cfg.Notifications.Enabled {
		notifier.AddChannel(notify.NewTerminalNotifier())
	}
	app.Notifier = notifier

	rootCmd := &cobra.Command{
		Use:   "nepsescan",
		Short: "NEPSE Scanner - technical signal scanner for the Nepal stock exchange",
		Long: `NEPSE Scanner detects technical signals over daily OHLCV data:
oversold stocks near support, regression trendlines, institutional
accumulation scores and sector volume heatmaps.

Signals are tracked across runs so newly detected setups can be told
apart from continuing ones.

Use 'nepsescan help <command>' for more information about a command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/nepse-scanner)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	// Add all command groups
	addCoreCommands(rootCmd, app)
	addScanCommands(rootCmd, app)
	addDataCommands(rootCmd, app)
	addWatchlistCommands(rootCmd, app)
	addStateCommands(rootCmd, app)

	return rootCmd
}

// addCoreCommands adds core utility commands.
func addCoreCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			} else {
				output.Printf("NEPSE Scanner v%s\n", Version)
				output.Dim("Build date: %s", BuildDate)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and manage application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}

			output.Info("Data")
			output.Printf("  database:  %s\n", app.Config.Data.DatabasePath)
			output.Printf("  state:     %s\n", app.Config.Data.StatePath)
			output.Println()
			output.Info("RSI/Support")
			output.Printf("  max RSI:               %.1f\n", app.Config.RSISupport.MaxRSI)
			output.Printf("  max distance:          %.1f%%\n", app.Config.RSISupport.MaxDistanceFromSupport)
			output.Println()
			output.Info("Trendline")
			output.Printf("  min percent change:    %.1f%%\n", app.Config.Trendline.MinPercentChange)
			output.Printf("  period to check:       %d days\n", app.Config.Trendline.PeriodToCheck)
			output.Println()
			output.Info("Institutional")
			output.Printf("  thresholds:            %v\n", app.Config.Institutional.Thresholds)
			output.Printf("  min percent change:    %.1f%%\n", app.Config.Institutional.MinPercentChange)
			output.Println()
			output.Info("Heatmap")
			output.Printf("  top N by volume:       %d\n", app.Config.Heatmap.TopNByVolume)
			output.Printf("  min volume:            %.0f\n", app.Config.Heatmap.MinVolume)
			return nil
		},
	})

	return cmd
}
