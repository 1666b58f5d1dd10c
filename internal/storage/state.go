package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/snapcal/snapcal-cli/internal/model"
)

const (
	slotSession     = "session"
	slotPreferences = "preferences"
)

// SessionSnapshot is the persisted credential + last-known user pair.
type SessionSnapshot struct {
	Credential string      `json:"credential"`
	User       *model.User `json:"user"`
}

// Preferences are UI-only settings; losing them is harmless.
type Preferences struct {
	HistoryViewMode string `json:"history_view_mode"`
	HistoryDays     int    `json:"history_days"`
}

// Store reads and writes the durable key/value slots.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) getSlot(key string, out any) (bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM app_state WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s slot: %w", key, err)
	}
	if err := json.Unmarshal([]byte(value), out); err != nil {
		// A corrupt slot reads as absent rather than wedging startup.
		return false, nil
	}
	return true, nil
}

func (s *Store) putSlot(key string, in any) error {
	value, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode %s slot: %w", key, err)
	}
	_, err = s.db.Exec(`
INSERT INTO app_state(key, value, updated_at)
VALUES(?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at
`, key, string(value))
	if err != nil {
		return fmt.Errorf("write %s slot: %w", key, err)
	}
	return nil
}

func (s *Store) LoadSession() (SessionSnapshot, bool, error) {
	var snap SessionSnapshot
	ok, err := s.getSlot(slotSession, &snap)
	return snap, ok, err
}

func (s *Store) SaveSession(snap SessionSnapshot) error {
	return s.putSlot(slotSession, snap)
}

func (s *Store) LoadPreferences() (Preferences, bool, error) {
	var prefs Preferences
	ok, err := s.getSlot(slotPreferences, &prefs)
	return prefs, ok, err
}

func (s *Store) SavePreferences(prefs Preferences) error {
	return s.putSlot(slotPreferences, prefs)
}
