package session

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Fixed keys in the state table. The draft is stored as JSON with
// timestamps as ISO-8601 strings; the submission flag as "0"/"1".
const (
	keyDraft     = "draft"
	keySubmitted = "has_been_saved"
)

// StateDB persists the working draft in a local SQLite database so a
// session survives process restarts. Implements Store.
type StateDB struct {
	db  *sql.DB
	log *slog.Logger
}

var _ Store = (*StateDB)(nil)

// OpenStateDB opens (or creates) the state database at dir/state.db.
func OpenStateDB(dir string, log *slog.Logger) (*StateDB, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state dir %s: %w", dir, err)
	}

	dbPath := filepath.Join(dir, "state.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening state db: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS session_state (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating state table: %w", err)
	}

	return &StateDB{db: db, log: log}, nil
}

// SaveDraft serializes and upserts the draft under its fixed key.
func (s *StateDB) SaveDraft(d *Draft) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshaling draft: %w", err)
	}
	return s.put(keyDraft, string(data))
}

// LoadDraft returns the persisted draft, or nil if none exists. A draft
// that fails to parse is treated as absent: a corrupt local store should
// fall back to a fresh not_started session, not crash the process.
func (s *StateDB) LoadDraft() (*Draft, error) {
	raw, ok, err := s.get(keyDraft)
	if err != nil || !ok {
		return nil, err
	}

	var d Draft
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		s.log.Warn("discarding malformed persisted draft", "error", err)
		return nil, nil
	}
	return &d, nil
}

// SaveSubmitted persists the exactly-once submission flag.
func (s *StateDB) SaveSubmitted(submitted bool) error {
	v := "0"
	if submitted {
		v = "1"
	}
	return s.put(keySubmitted, v)
}

// LoadSubmitted returns the persisted submission flag; absent means false.
func (s *StateDB) LoadSubmitted() (bool, error) {
	raw, ok, err := s.get(keySubmitted)
	if err != nil || !ok {
		return false, err
	}
	return raw == "1", nil
}

// Clear removes the draft and submission flag.
func (s *StateDB) Clear() error {
	_, err := s.db.Exec(`DELETE FROM session_state WHERE key IN (?, ?)`, keyDraft, keySubmitted)
	if err != nil {
		return fmt.Errorf("clearing state: %w", err)
	}
	return nil
}

// Close closes the state database.
func (s *StateDB) Close() error {
	return s.db.Close()
}

func (s *StateDB) put(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO session_state (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("writing state key %s: %w", key, err)
	}
	return nil
}

func (s *StateDB) get(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM session_state WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading state key %s: %w", key, err)
	}
	return value, true, nil
}
