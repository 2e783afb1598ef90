// Package state persists per-detector signal metadata across runs.
package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	scanerrors "nepse-scanner/internal/errors"
)

// Entry holds the metadata persisted for one symbol under one detector.
// Fields are detector-specific; unused ones stay at their zero value.
type Entry struct {
	RSI           float64   `json:"rsi,omitempty"`
	SupportLevel  float64   `json:"support_level,omitempty"`
	Score         float64   `json:"score,omitempty"`
	FirstDetected time.Time `json:"first_detected,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// State is the full persisted structure: detector name -> symbol -> entry.
type State struct {
	Detectors   map[string]map[string]Entry `json:"detectors"`
	LastUpdated time.Time                   `json:"last_updated"`
}

// NewState returns a fresh empty state.
func NewState() *State {
	return &State{
		Detectors: make(map[string]map[string]Entry),
	}
}

// Detector returns the entries for a detector, never nil.
func (s *State) Detector(name string) map[string]Entry {
	if entries, ok := s.Detectors[name]; ok {
		return entries
	}
	return make(map[string]Entry)
}

// Store reads and writes the tracked-stocks file. Load-mutate-save cycles
// are serialized per store instance so concurrent detectors cannot lose
// each other's updates.
type Store struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

// NewStore creates a state store backed by the given file path.
func NewStore(path string) *Store {
	return &Store{
		path: path,
		now:  time.Now,
	}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Load returns the persisted state, or a fresh empty state if the file
// does not exist yet. Absence is not an error.
func (s *Store) Load() (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() (*State, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewState(), nil
		}
		return nil, scanerrors.NewStateError("load", s.path, err)
	}

	state := NewState()
	if err := json.Unmarshal(data, state); err != nil {
		return nil, scanerrors.NewStateError("load", s.path, err)
	}
	if state.Detectors == nil {
		state.Detectors = make(map[string]map[string]Entry)
	}
	return state, nil
}

// Save persists the state atomically, creating the containing directory
// if needed. The file is written to a temp path and renamed so a crashed
// write never leaves a torn state file behind.
func (s *Store) Save(state *State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(state)
}

func (s *Store) save(state *State) error {
	state.LastUpdated = s.now()

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return scanerrors.NewStateError("save", s.path, err)
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return scanerrors.NewStateError("save", s.path, err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return scanerrors.NewStateError("save", s.path, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return scanerrors.NewStateError("save", s.path, err)
	}

	return nil
}

// UpdateDetector replaces the named detector's slice of the state
// wholesale with the given entries and persists the whole store. Symbols
// absent from entries are dropped; callers wanting partial retention must
// construct the full replacement map themselves.
func (s *Store) UpdateDetector(name string, entries map[string]Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.load()
	if err != nil {
		return err
	}

	state.Detectors[name] = entries
	return s.save(state)
}
