// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"nepse-scanner/internal/models"
)

// DataStore defines the interface for market data persistence.
type DataStore interface {
	// Daily records
	SaveDailyRecords(ctx context.Context, records []models.DailyRecord) error
	GetDailyRecords(ctx context.Context, symbol string, from, to time.Time) (models.SymbolSeries, error)
	GetSeries(ctx context.Context, symbols []string, maxDays int) (models.MarketData, error)

	// Watchlist (the allow-list of tracked symbols)
	AddToWatchlist(ctx context.Context, symbol, sector string) error
	RemoveFromWatchlist(ctx context.Context, symbol string) error
	GetWatchlist(ctx context.Context) ([]string, error)
	GetSectors(ctx context.Context) (map[string]string, error)

	// Sync bookkeeping
	GetLastSync(dataType string) time.Time
	SetLastSync(dataType string, t time.Time) error

	// Lifecycle
	Close() error
}

// SyncDataType represents the type of data being synced.
type SyncDataType string

const (
	SyncTypeDaily     SyncDataType = "daily_records"
	SyncTypeWatchlist SyncDataType = "watchlist"
)
