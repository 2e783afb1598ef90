package models

import (
	"time"
)

// TrendDirection classifies the direction of a fitted trendline.
type TrendDirection string

const (
	TrendUptrend   TrendDirection = "UPTREND"
	TrendDowntrend TrendDirection = "DOWNTREND"
	TrendSideways  TrendDirection = "SIDEWAYS"
)

// ActivityLevel classifies institutional activity for a symbol.
type ActivityLevel string

const (
	ActivityIncreasing ActivityLevel = "INCREASING"
	ActivityDecreasing ActivityLevel = "DECREASING"
	ActivityStable     ActivityLevel = "STABLE"
	ActivityNeutral    ActivityLevel = "NEUTRAL"
)

// Result is the envelope every detector produces. A nil Result with a nil
// error never occurs; "nothing to report" is surfaced as a typed error so
// callers can tell it apart from a fetch failure.
type Result struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// RsiSupportSignal flags a stock that is oversold and close to a
// historical support level.
type RsiSupportSignal struct {
	Symbol             string  `json:"symbol"`
	RSI                float64 `json:"rsi"`
	SupportLevel       float64 `json:"support_level"`
	LastPrice          float64 `json:"last_price"`
	PercentFromSupport float64 `json:"percent_from_support"`
}

// RsiSupportReport is the payload of an RSI/support scan.
type RsiSupportReport struct {
	Signals []RsiSupportSignal `json:"signals"`
	Count   int                `json:"count"`
	MeanRSI float64            `json:"mean_rsi"`
}

// TrendSignal describes a fitted trendline for a symbol.
type TrendSignal struct {
	Symbol             string         `json:"symbol"`
	Trend              TrendDirection `json:"trend"`
	PercentChange      float64        `json:"percent_change"`
	TrendStrength      float64        `json:"trend_strength"`
	Support            float64        `json:"support"`
	LastPrice          float64        `json:"last_price"`
	PercentFromSupport float64        `json:"percent_from_support"`
	FirstDetected      time.Time      `json:"first_detected"`
	DaysSinceDetected  int            `json:"days_since_detected"`
}

// TrendReport splits qualifying trend signals into newly detected and
// continuing ones, based on the persisted state of the previous run.
type TrendReport struct {
	New      []TrendSignal `json:"new"`
	Existing []TrendSignal `json:"existing"`
}

// InstitutionalSignal scores a symbol on volume anomaly, price/volume
// alignment, price stability and OBV trend.
type InstitutionalSignal struct {
	Symbol        string        `json:"symbol"`
	Score         float64       `json:"score"`
	PercentChange float64       `json:"percent_change"`
	Volume        int64         `json:"volume"`
	Activity      ActivityLevel `json:"activity"`
}

// InstitutionalBucket groups signals under the highest score threshold
// they meet.
type InstitutionalBucket struct {
	Threshold float64               `json:"threshold"`
	Signals   []InstitutionalSignal `json:"signals"`
}

// InstitutionalReport is the payload of an institutional activity scan.
type InstitutionalReport struct {
	Signals []InstitutionalSignal `json:"signals"`
	Buckets []InstitutionalBucket `json:"buckets"`
}

// HeatmapEntry is a 5-day rolling volume/price aggregate for a symbol.
type HeatmapEntry struct {
	Symbol        string  `json:"symbol"`
	Sector        string  `json:"sector"`
	Close         float64 `json:"close"`
	PercentChange float64 `json:"percent_change"`
	AvgVolume     float64 `json:"avg_volume"`
}

// HeatmapReport maps sector name to its top entries ranked by volume.
type HeatmapReport struct {
	Sectors map[string][]HeatmapEntry `json:"sectors"`
}
