package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# NEPSE Scanner Configuration

[data]
# SQLite database holding daily OHLCV records and the watchlist
database_path = "%s"
# JSON file tracking signals across runs
state_path = "%s"
# Date layout used when importing CSV exports
csv_date_format = "2006-01-02"

[rsi_support]
# Flag stocks with RSI at or below this value
max_rsi = 40.0
# Maximum distance from the nearest support level, in percent
max_distance_from_support = 5.0

[trendline]
# Minimum absolute price change over the check period, in percent
min_percent_change = 5.0
# Trailing period for the percent-change calculation, in days
period_to_check = 30

[institutional]
# Ascending score buckets; a stock lands in the highest one it meets
thresholds = [0.5, 0.65, 0.8]
# Additional percent-change gate for bucketed output
min_percent_change = 2.0

[heatmap]
# Entries kept per sector, ranked by average volume
top_n_by_volume = 5
# Minimum 5-day average volume
min_volume = 1000.0

# Symbol-prefix to sector mapping; longest prefix wins
[heatmap.sectors]
NABIL = "Commercial Banks"
NICA = "Commercial Banks"
SCB = "Commercial Banks"
EBL = "Commercial Banks"
NLIC = "Life Insurance"
LICN = "Life Insurance"
NRIC = "Non-Life Insurance"
UPPER = "Hydropower"
CHCL = "Hydropower"
AKPL = "Hydropower"
CIT = "Investment"
NIFRA = "Investment"
SHIVM = "Manufacturing"
HDL = "Manufacturing"
NTC = "Others"

[notifications]
enabled = false
# Notification level: all, signals_only, errors_only
level = "all"

[notifications.webhook]
enabled = false
url = ""

[notifications.email]
enabled = false
smtp_host = ""
smtp_port = 587
username = ""
password = ""
from = ""
to = ""

[ui]
color_enabled = true
date_format = "02-Jan-2006"
`

// createTemplateConfig writes a commented config template so a first run
// leaves something editable behind.
func createTemplateConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, "config.toml")
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	content := fmt.Sprintf(configTemplate,
		filepath.Join(configDir, "market.db"),
		filepath.Join(configDir, "tracked_stocks.json"),
	)

	return os.WriteFile(path, []byte(content), 0644)
}
