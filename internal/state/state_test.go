package state

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	scanerrors "nepse-scanner/internal/errors"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "tracked_stocks.json"))
}

func TestLoadAbsentFileReturnsFreshState(t *testing.T) {
	store := tempStore(t)

	state, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if state == nil || state.Detectors == nil {
		t.Fatal("expected a usable empty state for an absent file")
	}
	if len(state.Detectors) != 0 {
		t.Errorf("expected no detectors, got %d", len(state.Detectors))
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := tempStore(t)

	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	state := NewState()
	state.Detectors["rsi_support"] = map[string]Entry{
		"NABIL": {RSI: 32.5, SupportLevel: 1250.0, Timestamp: now},
	}
	state.Detectors["trendline"] = map[string]Entry{
		"UPPER": {FirstDetected: now.AddDate(0, 0, -3), Timestamp: now},
	}

	if err := store.Save(state); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	entry := loaded.Detectors["rsi_support"]["NABIL"]
	if entry.RSI != 32.5 || entry.SupportLevel != 1250.0 {
		t.Errorf("round trip lost data: %+v", entry)
	}
	trend := loaded.Detectors["trendline"]["UPPER"]
	if !trend.FirstDetected.Equal(now.AddDate(0, 0, -3)) {
		t.Errorf("round trip lost first_detected: %+v", trend)
	}
	if loaded.LastUpdated.IsZero() {
		t.Error("expected last_updated to be set on save")
	}
}

func TestUpdateDetectorReplacesWholesale(t *testing.T) {
	store := tempStore(t)

	first := map[string]Entry{
		"A": {Score: 0.7, Timestamp: time.Now()},
		"B": {Score: 0.6, Timestamp: time.Now()},
	}
	if err := store.UpdateDetector("institutional_activity", first); err != nil {
		t.Fatalf("UpdateDetector failed: %v", err)
	}

	second := map[string]Entry{
		"A": {Score: 0.8, Timestamp: time.Now()},
	}
	if err := store.UpdateDetector("institutional_activity", second); err != nil {
		t.Fatalf("UpdateDetector failed: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	entries := loaded.Detectors["institutional_activity"]
	if len(entries) != 1 {
		t.Fatalf("expected only the replacement entries, got %v", entries)
	}
	if _, ok := entries["B"]; ok {
		t.Error("symbol B should have been dropped by the wholesale replace")
	}
	if entries["A"].Score != 0.8 {
		t.Errorf("expected updated score 0.8, got %v", entries["A"].Score)
	}
}

func TestUpdateDetectorPreservesOtherDetectors(t *testing.T) {
	store := tempStore(t)

	if err := store.UpdateDetector("rsi_support", map[string]Entry{
		"NABIL": {RSI: 30},
	}); err != nil {
		t.Fatalf("UpdateDetector failed: %v", err)
	}
	if err := store.UpdateDetector("trendline", map[string]Entry{
		"UPPER": {FirstDetected: time.Now()},
	}); err != nil {
		t.Fatalf("UpdateDetector failed: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if _, ok := loaded.Detectors["rsi_support"]["NABIL"]; !ok {
		t.Error("updating one detector clobbered another detector's entries")
	}
}

func TestSaveCreatesDirectoryAndLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "deeper", "state.json")
	store := NewStore(path)

	if err := store.Save(NewState()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("state file not written: %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file left behind after save")
	}
}

func TestLoadCorruptFileReturnsError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	store := NewStore(path)
	_, err := store.Load()
	if err == nil {
		t.Fatal("expected an error for a corrupt state file")
	}
	if !scanerrors.Is(err, scanerrors.ErrStatePersistence) {
		t.Errorf("state failure must match ErrStatePersistence, got %v", err)
	}
}

func TestSaveFailureMatchesSentinel(t *testing.T) {
	// The state path points at a directory so the rename cannot succeed.
	store := NewStore(t.TempDir())
	err := store.Save(NewState())
	if err == nil {
		t.Fatal("expected an error saving over a directory")
	}
	if !scanerrors.Is(err, scanerrors.ErrStatePersistence) {
		t.Errorf("state failure must match ErrStatePersistence, got %v", err)
	}
}

func TestDetectorAccessorNeverNil(t *testing.T) {
	state := NewState()
	entries := state.Detector("missing")
	if entries == nil {
		t.Fatal("Detector returned nil for an absent detector")
	}
}
