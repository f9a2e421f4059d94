package sessions

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"nmsportal/backend/services/portal-service/internal/sessions/sessionstest"
)

func TestStoreListsOnlySessionFiles(t *testing.T) {
	dir := t.TempDir()
	sessionstest.Write(t, dir, "b_run.csv", sessionstest.SpeedOnly)
	sessionstest.Write(t, dir, "a_run.CSV", sessionstest.Full)
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.Mkdir(filepath.Join(dir, "archive.csv"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	files, err := NewStore(dir).List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(files))
	}
	if files[0].Name != "a_run.CSV" || files[1].Name != "b_run.csv" {
		t.Fatalf("expected sorted names, got %s, %s", files[0].Name, files[1].Name)
	}
	if files[0].Size == 0 || files[0].Modified.IsZero() {
		t.Fatalf("expected size and modification time, got %+v", files[0])
	}
}

func TestStoreLoad(t *testing.T) {
	dir := t.TempDir()
	sessionstest.Write(t, dir, "run.csv", sessionstest.Full)

	table, err := NewStore(dir).Load("run.csv")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if table.Len() != 4 {
		t.Fatalf("expected 4 samples, got %d", table.Len())
	}
	if !table.Has("Pack Current") {
		t.Fatalf("expected Pack Current channel")
	}
}

func TestStoreRejectsUnknownAndUnsafeNames(t *testing.T) {
	dir := t.TempDir()
	sessionstest.Write(t, dir, "run.csv", sessionstest.Full)
	store := NewStore(dir)

	for _, name := range []string{"", "missing.csv", "../run.csv", "sub/run.csv", "run.txt", ".."} {
		if _, err := store.Load(name); !errors.Is(err, ErrNotFound) {
			t.Fatalf("load %q: expected ErrNotFound, got %v", name, err)
		}
		if _, err := store.Stat(name); !errors.Is(err, ErrNotFound) {
			t.Fatalf("stat %q: expected ErrNotFound, got %v", name, err)
		}
	}
}

func TestStoreListMissingDir(t *testing.T) {
	if _, err := NewStore(filepath.Join(t.TempDir(), "nope")).List(); err == nil {
		t.Fatalf("expected error for missing directory")
	}
}
