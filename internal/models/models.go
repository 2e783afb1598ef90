// Package models provides domain models for the market scanner.
package models

import (
	"sort"
	"time"
)

// DailyRecord represents one trading day of OHLCV data for a symbol.
// Records are immutable once ingested; for a given symbol there is at
// most one record per calendar day.
type DailyRecord struct {
	Symbol string    `json:"symbol"`
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// SymbolSeries is a chronologically ordered sequence of daily records
// for one symbol. Gaps (holidays) are permitted.
type SymbolSeries []DailyRecord

// MarketData maps a stock symbol to its ordered daily series.
type MarketData map[string]SymbolSeries

// Last returns the most recent record in the series.
func (s SymbolSeries) Last() DailyRecord {
	return s[len(s)-1]
}

// Tail returns the most recent n records, or the whole series if it is shorter.
func (s SymbolSeries) Tail(n int) SymbolSeries {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

// Closes extracts close prices from the series.
func (s SymbolSeries) Closes() []float64 {
	prices := make([]float64, len(s))
	for i, r := range s {
		prices[i] = r.Close
	}
	return prices
}

// Lows extracts low prices from the series.
func (s SymbolSeries) Lows() []float64 {
	prices := make([]float64, len(s))
	for i, r := range s {
		prices[i] = r.Low
	}
	return prices
}

// Volumes extracts volumes from the series.
func (s SymbolSeries) Volumes() []int64 {
	vols := make([]int64, len(s))
	for i, r := range s {
		vols[i] = r.Volume
	}
	return vols
}

// Sort orders the series ascending by date.
func (s SymbolSeries) Sort() {
	sort.Slice(s, func(i, j int) bool {
		return s[i].Date.Before(s[j].Date)
	})
}

// Symbols returns the symbols present in the data, sorted.
func (m MarketData) Symbols() []string {
	symbols := make([]string, 0, len(m))
	for symbol := range m {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	return symbols
}
