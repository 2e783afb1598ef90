// Package config provides configuration management for the market scanner.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	scanerrors "nepse-scanner/internal/errors"
)

// Config holds all application configuration.
type Config struct {
	Data          DataConfig          `mapstructure:"data"`
	RSISupport    RsiSupportConfig    `mapstructure:"rsi_support"`
	Trendline     TrendlineConfig     `mapstructure:"trendline"`
	Institutional InstitutionalConfig `mapstructure:"institutional"`
	Heatmap       HeatmapConfig       `mapstructure:"heatmap"`
	Notifications NotificationConfig  `mapstructure:"notifications"`
	UI            UIConfig            `mapstructure:"ui"`
}

// DataConfig holds data source and state configuration.
type DataConfig struct {
	DatabasePath string `mapstructure:"database_path"`
	StatePath    string `mapstructure:"state_path"`
	CSVDateFmt   string `mapstructure:"csv_date_format"`
}

// RsiSupportConfig holds RSI/support detector thresholds.
type RsiSupportConfig struct {
	MaxRSI                 float64 `mapstructure:"max_rsi"`
	MaxDistanceFromSupport float64 `mapstructure:"max_distance_from_support"`
}

// TrendlineConfig holds trendline detector thresholds.
type TrendlineConfig struct {
	MinPercentChange float64 `mapstructure:"min_percent_change"`
	PeriodToCheck    int     `mapstructure:"period_to_check"`
}

// InstitutionalConfig holds institutional activity detector thresholds.
type InstitutionalConfig struct {
	// Thresholds is an ascending list of score buckets; a stock is assigned
	// to the highest bucket it meets.
	Thresholds       []float64 `mapstructure:"thresholds"`
	MinPercentChange float64   `mapstructure:"min_percent_change"`
}

// HeatmapConfig holds heatmap aggregator configuration.
type HeatmapConfig struct {
	TopNByVolume int     `mapstructure:"top_n_by_volume"`
	MinVolume    float64 `mapstructure:"min_volume"`
	// Sectors maps a symbol prefix to a sector name. The longest matching
	// prefix wins; unmatched symbols fall into "Other".
	Sectors map[string]string `mapstructure:"sectors"`
}

// UIConfig holds UI-related configuration.
type UIConfig struct {
	ColorEnabled bool   `mapstructure:"color_enabled"`
	DateFormat   string `mapstructure:"date_format"`
}

// NotificationConfig holds notification configuration.
type NotificationConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Level   string        `mapstructure:"level"` // all, signals_only, errors_only
	Webhook WebhookConfig `mapstructure:"webhook"`
	Email   EmailConfig   `mapstructure:"email"`
}

// WebhookConfig holds webhook notification configuration.
type WebhookConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
}

// EmailConfig holds email notification configuration.
type EmailConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	SMTPHost string `mapstructure:"smtp_host"`
	SMTPPort int    `mapstructure:"smtp_port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	To       string `mapstructure:"to"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/nepse-scanner"
	}
	return filepath.Join(home, ".config", "nepse-scanner")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	cfg := &Config{}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	setDefaults(v, configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("loading config.toml: %w", err)
		}
		// Config file not found, create template and run with defaults
		if err := createTemplateConfig(configDir); err != nil {
			return nil, fmt.Errorf("creating config template: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config.toml: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, configDir string) {
	v.SetDefault("data.database_path", filepath.Join(configDir, "market.db"))
	v.SetDefault("data.state_path", filepath.Join(configDir, "tracked_stocks.json"))
	v.SetDefault("data.csv_date_format", "2006-01-02")

	v.SetDefault("rsi_support.max_rsi", 40.0)
	v.SetDefault("rsi_support.max_distance_from_support", 5.0)

	v.SetDefault("trendline.min_percent_change", 5.0)
	v.SetDefault("trendline.period_to_check", 30)

	v.SetDefault("institutional.thresholds", []float64{0.5, 0.65, 0.8})
	v.SetDefault("institutional.min_percent_change", 2.0)

	v.SetDefault("heatmap.top_n_by_volume", 5)
	v.SetDefault("heatmap.min_volume", 1000.0)

	v.SetDefault("notifications.enabled", false)
	v.SetDefault("notifications.level", "all")

	v.SetDefault("ui.color_enabled", true)
	v.SetDefault("ui.date_format", "02-Jan-2006")
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("NEPSE_SCANNER_DB"); v != "" {
		cfg.Data.DatabasePath = v
	}
	if v := os.Getenv("NEPSE_SCANNER_STATE"); v != "" {
		cfg.Data.StatePath = v
	}
	if v := os.Getenv("NEPSE_SMTP_PASSWORD"); v != "" {
		cfg.Notifications.Email.Password = v
	}
	if v := os.Getenv("NEPSE_WEBHOOK_URL"); v != "" {
		cfg.Notifications.Webhook.URL = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.RSISupport.MaxRSI < 0 || c.RSISupport.MaxRSI > 100 {
		return fmt.Errorf("%w: rsi_support.max_rsi must be between 0 and 100", scanerrors.ErrConfigInvalid)
	}
	if c.RSISupport.MaxDistanceFromSupport < 0 {
		return fmt.Errorf("%w: rsi_support.max_distance_from_support must be non-negative", scanerrors.ErrConfigInvalid)
	}
	if c.Trendline.MinPercentChange < 0 {
		return fmt.Errorf("%w: trendline.min_percent_change must be non-negative", scanerrors.ErrConfigInvalid)
	}
	if c.Trendline.PeriodToCheck <= 0 {
		return fmt.Errorf("%w: trendline.period_to_check must be positive", scanerrors.ErrConfigInvalid)
	}
	if len(c.Institutional.Thresholds) == 0 {
		return fmt.Errorf("%w: institutional.thresholds must not be empty", scanerrors.ErrConfigInvalid)
	}
	for i, t := range c.Institutional.Thresholds {
		if t <= 0 || t > 1 {
			return fmt.Errorf("%w: institutional.thresholds[%d] must be in (0, 1]", scanerrors.ErrConfigInvalid, i)
		}
		if i > 0 && t <= c.Institutional.Thresholds[i-1] {
			return fmt.Errorf("%w: institutional.thresholds must be strictly ascending", scanerrors.ErrConfigInvalid)
		}
	}
	if c.Heatmap.TopNByVolume <= 0 {
		return fmt.Errorf("%w: heatmap.top_n_by_volume must be positive", scanerrors.ErrConfigInvalid)
	}
	if c.Heatmap.MinVolume < 0 {
		return fmt.Errorf("%w: heatmap.min_volume must be non-negative", scanerrors.ErrConfigInvalid)
	}

	switch c.Notifications.Level {
	case "", "all", "signals_only", "errors_only":
	default:
		return fmt.Errorf("%w: invalid notification level: %s", scanerrors.ErrConfigInvalid, c.Notifications.Level)
	}

	return nil
}
