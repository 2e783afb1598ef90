// Package store provides data persistence implementations.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	scanerrors "nepse-scanner/internal/errors"
	"nepse-scanner/internal/models"
)

// SQLiteStore implements DataStore using SQLite.
type SQLiteStore struct {
	db        *sql.DB
	mu        sync.RWMutex
	syncTimes map[string]time.Time
}

// NewSQLiteStore creates a new SQLite-based data store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open database: %w", scanerrors.ErrDatabaseError, err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{
		db:        db,
		syncTimes: make(map[string]time.Time),
	}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: failed to initialize schema: %w", scanerrors.ErrDatabaseError, err)
	}

	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Daily OHLCV records
	CREATE TABLE IF NOT EXISTS daily_records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		symbol TEXT NOT NULL,
		date DATETIME NOT NULL,
		open REAL NOT NULL,
		high REAL NOT NULL,
		low REAL NOT NULL,
		close REAL NOT NULL,
		volume INTEGER NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(symbol, date)
	);

	-- Tracked symbols (the scan allow-list)
	CREATE TABLE IF NOT EXISTS watchlist (
		symbol TEXT PRIMARY KEY,
		sector TEXT NOT NULL DEFAULT '',
		added_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Sync bookkeeping
	CREATE TABLE IF NOT EXISTS sync_times (
		data_type TEXT PRIMARY KEY,
		synced_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_daily_records_symbol_date
		ON daily_records(symbol, date);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SaveDailyRecords upserts daily records, one row per symbol per day.
func (s *SQLiteStore) SaveDailyRecords(ctx context.Context, records []models.DailyRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO daily_records (symbol, date, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(symbol, date) DO UPDATE SET
			open = excluded.open,
			high = excluded.high,
			low = excluded.low,
			close = excluded.close,
			volume = excluded.volume
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx,
			r.Symbol, r.Date.UTC(), r.Open, r.High, r.Low, r.Close, r.Volume,
		); err != nil {
			return fmt.Errorf("inserting record %s@%s: %w", r.Symbol, r.Date.Format("2006-01-02"), err)
		}
	}

	return tx.Commit()
}

// GetDailyRecords returns the records for a symbol in [from, to], ordered
// ascending by date.
func (s *SQLiteStore) GetDailyRecords(ctx context.Context, symbol string, from, to time.Time) (models.SymbolSeries, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT symbol, date, open, high, low, close, volume
		FROM daily_records
		WHERE symbol = ? AND date >= ? AND date <= ?
		ORDER BY date ASC
	`, symbol, from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("querying daily records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// GetSeries returns the most recent maxDays of records for each symbol.
// Symbols with no data are omitted from the result.
func (s *SQLiteStore) GetSeries(ctx context.Context, symbols []string, maxDays int) (models.MarketData, error) {
	data := make(models.MarketData, len(symbols))

	for _, symbol := range symbols {
		rows, err := s.db.QueryContext(ctx, `
			SELECT symbol, date, open, high, low, close, volume
			FROM (
				SELECT * FROM daily_records
				WHERE symbol = ?
				ORDER BY date DESC
				LIMIT ?
			)
			ORDER BY date ASC
		`, symbol, maxDays)
		if err != nil {
			return nil, fmt.Errorf("querying series for %s: %w", symbol, err)
		}

		series, err := scanRecords(rows)
		rows.Close()
		if err != nil {
			return nil, err
		}
		if len(series) > 0 {
			data[symbol] = series
		}
	}

	return data, nil
}

func scanRecords(rows *sql.Rows) (models.SymbolSeries, error) {
	var series models.SymbolSeries
	for rows.Next() {
		var r models.DailyRecord
		if err := rows.Scan(&r.Symbol, &r.Date, &r.Open, &r.High, &r.Low, &r.Close, &r.Volume); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		series = append(series, r)
	}
	return series, rows.Err()
}

// AddToWatchlist adds a symbol to the allow-list.
func (s *SQLiteStore) AddToWatchlist(ctx context.Context, symbol, sector string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO watchlist (symbol, sector) VALUES (?, ?)
		ON CONFLICT(symbol) DO UPDATE SET sector = excluded.sector
	`, symbol, sector)
	if err != nil {
		return fmt.Errorf("adding %s to watchlist: %w", symbol, err)
	}
	return nil
}

// RemoveFromWatchlist removes a symbol from the allow-list.
func (s *SQLiteStore) RemoveFromWatchlist(ctx context.Context, symbol string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM watchlist WHERE symbol = ?`, symbol)
	if err != nil {
		return fmt.Errorf("removing %s from watchlist: %w", symbol, err)
	}
	return nil
}

// GetWatchlist returns all tracked symbols, sorted.
func (s *SQLiteStore) GetWatchlist(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT symbol FROM watchlist ORDER BY symbol`)
	if err != nil {
		return nil, fmt.Errorf("querying watchlist: %w", err)
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var symbol string
		if err := rows.Scan(&symbol); err != nil {
			return nil, fmt.Errorf("scanning watchlist: %w", err)
		}
		symbols = append(symbols, symbol)
	}
	return symbols, rows.Err()
}

// GetSectors returns the symbol-to-sector mapping for tracked symbols.
func (s *SQLiteStore) GetSectors(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT symbol, sector FROM watchlist WHERE sector != ''`)
	if err != nil {
		return nil, fmt.Errorf("querying sectors: %w", err)
	}
	defer rows.Close()

	sectors := make(map[string]string)
	for rows.Next() {
		var symbol, sector string
		if err := rows.Scan(&symbol, &sector); err != nil {
			return nil, fmt.Errorf("scanning sectors: %w", err)
		}
		sectors[symbol] = sector
	}
	return sectors, rows.Err()
}

// GetLastSync returns the last sync time for a data type.
func (s *SQLiteStore) GetLastSync(dataType string) time.Time {
	s.mu.RLock()
	if t, ok := s.syncTimes[dataType]; ok {
		s.mu.RUnlock()
		return t
	}
	s.mu.RUnlock()

	var t time.Time
	err := s.db.QueryRow(`SELECT synced_at FROM sync_times WHERE data_type = ?`, dataType).Scan(&t)
	if err != nil {
		return time.Time{}
	}

	s.mu.Lock()
	s.syncTimes[dataType] = t
	s.mu.Unlock()
	return t
}

// SetLastSync records the last sync time for a data type.
func (s *SQLiteStore) SetLastSync(dataType string, t time.Time) error {
	_, err := s.db.Exec(`
		INSERT INTO sync_times (data_type, synced_at) VALUES (?, ?)
		ON CONFLICT(data_type) DO UPDATE SET synced_at = excluded.synced_at
	`, dataType, t.UTC())
	if err != nil {
		return fmt.Errorf("recording sync time: %w", err)
	}

	s.mu.Lock()
	s.syncTimes[dataType] = t
	s.mu.Unlock()
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
