package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

var ErrNoSavedSession = errors.New("no saved session")

// FilePersistence stores the rejoin record as a single JSON file, by default
// under the user's home directory.
type FilePersistence struct {
	path string
}

// NewFilePersistence creates a persistence backend writing to path. An empty
// path falls back to ~/.duel-client/session.json.
func NewFilePersistence(path string) (*FilePersistence, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve home directory: %w", err)
		}
		path = filepath.Join(home, ".duel-client", "session.json")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}

	return &FilePersistence{path: path}, nil
}

// Save writes the record, stamping SavedAt.
func (p *FilePersistence) Save(rec Record) error {
	rec.SavedAt = time.Now()

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session record: %w", err)
	}

	// Player keys are capabilities; keep the file private.
	if err := os.WriteFile(p.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}

	return nil
}

// Load reads the most recently saved record.
func (p *FilePersistence) Load() (Record, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Record{}, ErrNoSavedSession
		}
		return Record{}, fmt.Errorf("failed to read session file: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("failed to parse session file: %w", err)
	}

	if rec.RoomID == "" || rec.PlayerKey == "" {
		return Record{}, ErrNoSavedSession
	}

	return rec, nil
}

// Clear removes the saved record. Clearing an absent file is not an error.
func (p *FilePersistence) Clear() error {
	if err := os.Remove(p.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}
