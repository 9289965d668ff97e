package session

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestFilePersistenceSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	p, err := NewFilePersistence(path)
	if err != nil {
		t.Fatalf("NewFilePersistence: %v", err)
	}

	rec := Record{
		ServerURL: "http://localhost:8000",
		RoomID:    "42",
		PlayerKey: "k1",
	}
	if err := p.Save(rec); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := p.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.RoomID != "42" || loaded.PlayerKey != "k1" {
		t.Errorf("Load = (%q, %q), want (42, k1)", loaded.RoomID, loaded.PlayerKey)
	}
	if loaded.SavedAt.IsZero() {
		t.Error("Save should stamp SavedAt")
	}
}

func TestFilePersistenceLoadMissing(t *testing.T) {
	p, err := NewFilePersistence(filepath.Join(t.TempDir(), "session.json"))
	if err != nil {
		t.Fatalf("NewFilePersistence: %v", err)
	}

	if _, err := p.Load(); !errors.Is(err, ErrNoSavedSession) {
		t.Errorf("Load with no file = %v, want ErrNoSavedSession", err)
	}
}

func TestFilePersistenceClear(t *testing.T) {
	p, err := NewFilePersistence(filepath.Join(t.TempDir(), "session.json"))
	if err != nil {
		t.Fatalf("NewFilePersistence: %v", err)
	}

	if err := p.Save(Record{RoomID: "42", PlayerKey: "k1"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := p.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, err := p.Load(); !errors.Is(err, ErrNoSavedSession) {
		t.Errorf("Load after Clear = %v, want ErrNoSavedSession", err)
	}

	// Clearing twice is fine.
	if err := p.Clear(); err != nil {
		t.Errorf("Second Clear = %v, want nil", err)
	}
}

func TestFilePersistenceRejectsPartialRecord(t *testing.T) {
	p, err := NewFilePersistence(filepath.Join(t.TempDir(), "session.json"))
	if err != nil {
		t.Fatalf("NewFilePersistence: %v", err)
	}

	if err := p.Save(Record{RoomID: "42"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := p.Load(); !errors.Is(err, ErrNoSavedSession) {
		t.Errorf("Load of keyless record = %v, want ErrNoSavedSession", err)
	}
}
