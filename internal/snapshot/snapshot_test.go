package snapshot

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

func makeFakeLibrary(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	dbDir := filepath.Join(root, "database")
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		t.Fatal(err)
	}
	dbPath := filepath.Join(dbDir, "Photos.sqlite")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(`CREATE TABLE Z_METADATA (Z_VERSION INTEGER)`); err != nil {
		t.Fatal(err)
	}
	if err := db.Close(); err != nil {
		t.Fatal(err)
	}
	return root
}

func TestAcquireReadOnlySnapshotDoesNotMutateSource(t *testing.T) {
	libDir := makeFakeLibrary(t)
	sourcePath := filepath.Join(libDir, "database", "Photos.sqlite")

	before, err := os.Stat(sourcePath)
	if err != nil {
		t.Fatal(err)
	}

	snap, err := Acquire(libDir, zerolog.Nop())
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer snap.Close()

	after, err := os.Stat(sourcePath)
	if err != nil {
		t.Fatal(err)
	}
	if before.ModTime() != after.ModTime() {
		t.Fatalf("source mtime changed: %v -> %v", before.ModTime(), after.ModTime())
	}
	if before.Size() != after.Size() {
		t.Fatalf("source size changed: %d -> %d", before.Size(), after.Size())
	}

	db, err := sql.Open("sqlite3", snap.DSN())
	if err != nil {
		t.Fatalf("opening snapshot: %v", err)
	}
	defer db.Close()

	// A read-only DSN must reject writes.
	if _, err := db.Exec(`CREATE TABLE should_fail (x INTEGER)`); err == nil {
		t.Fatalf("expected write against read-only snapshot to fail")
	}
}

func TestAcquireMissingBundleReturnsNotFound(t *testing.T) {
	_, err := Acquire(t.TempDir(), zerolog.Nop())
	if err == nil {
		t.Fatal("expected error for a directory with no catalog")
	}
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
