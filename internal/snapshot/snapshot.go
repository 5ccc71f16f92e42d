// Package snapshot acquires a consistent, read-only copy of a live Photos
// library's SQLite catalog so the rest of the core can query it without
// racing Photos' own write locks (§4.A).
package snapshot

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

// Errors returned by Acquire are classified per §4.A / §7 "Library-open".
var (
	ErrNotFound    = errors.New("snapshot: library bundle layout not recognized")
	ErrPermission  = errors.New("snapshot: permission denied reading library")
	ErrIntegrity   = errors.New("snapshot: copied catalog failed integrity check")
)

// candidateCatalogPaths lists the locations, newest generation first, where
// the primary SQLite catalog can live inside a .photoslibrary bundle.
var candidateCatalogPaths = []string{
	filepath.Join("database", "Photos.sqlite"), // G4+
	filepath.Join("database", "photos.db"),     // G2-G3
}

// sidecarSuffixes are WAL/SHM companions copied alongside whichever primary
// file is found.
var sidecarSuffixes = []string{"-wal", "-shm"}

// companionFiles are per-generation sibling databases copied best-effort;
// their absence is not an error.
var companionFiles = []string{"search.db"}

// Snapshot is a read-only, checkpointed copy of a library's catalog, safe to
// query concurrently for the life of the session.
type Snapshot struct {
	// Path is the on-disk location of the copied, checkpointed catalog file.
	Path string
	dir  string
}

// DSN returns a sqlite3 connection string that opens the snapshot strictly
// read-only, matching lrcat-go's OpenCatalog(ReadOnly) convention.
func (s *Snapshot) DSN() string {
	return fmt.Sprintf("file:%s?mode=ro&cache=private&immutable=1", s.Path)
}

// Close removes the private per-session directory holding the copy.
func (s *Snapshot) Close() error {
	if s.dir == "" {
		return nil
	}
	return os.RemoveAll(s.dir)
}

// Acquire locates the primary catalog inside libraryPath, copies it plus its
// WAL/SHM/companion files into a private temp directory, checkpoints the
// WAL into the main file by opening it once, and verifies integrity. The
// caller owns the returned Snapshot and must Close it.
func Acquire(libraryPath string, log zerolog.Logger) (*Snapshot, error) {
	primary, err := locatePrimaryCatalog(libraryPath)
	if err != nil {
		return nil, err
	}

	sessionDir, err := os.MkdirTemp("", "photoslib-snapshot-*")
	if err != nil {
		return nil, fmt.Errorf("snapshot: creating session directory: %w", err)
	}

	destPrimary := filepath.Join(sessionDir, filepath.Base(primary))
	if err := cloneOrCopy(primary, destPrimary, log); err != nil {
		os.RemoveAll(sessionDir)
		return nil, classifyCopyError(err)
	}

	for _, suffix := range sidecarSuffixes {
		src := primary + suffix
		if _, statErr := os.Stat(src); statErr != nil {
			continue
		}
		if err := cloneOrCopy(src, destPrimary+suffix, log); err != nil {
			os.RemoveAll(sessionDir)
			return nil, classifyCopyError(err)
		}
	}

	libraryDir := filepath.Dir(filepath.Dir(primary)) // <library>/database/.. -> <library>
	for _, name := range companionFiles {
		src := filepath.Join(libraryDir, "database", name)
		if _, statErr := os.Stat(src); statErr != nil {
			continue
		}
		if err := cloneOrCopy(src, filepath.Join(sessionDir, name), log); err != nil {
			log.Warn().Err(err).Str("file", name).Msg("snapshot: failed to copy optional companion database")
		}
	}

	if err := checkpointWAL(destPrimary); err != nil {
		os.RemoveAll(sessionDir)
		return nil, fmt.Errorf("snapshot: checkpointing WAL: %w", err)
	}

	snap := &Snapshot{Path: destPrimary, dir: sessionDir}
	if err := verifyIntegrity(snap); err != nil {
		os.RemoveAll(sessionDir)
		return nil, err
	}

	return snap, nil
}

func locatePrimaryCatalog(libraryPath string) (string, error) {
	for _, rel := range candidateCatalogPaths {
		candidate := filepath.Join(libraryPath, rel)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		} else if err != nil && !os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %v", ErrPermission, err)
		}
	}
	return "", fmt.Errorf("%w: no Photos.sqlite or photos.db under %s/database", ErrNotFound, libraryPath)
}

// cloneOrCopy copies src to dst with a full stream copy. It does not
// hardlink: a link shares the source's inode, so checkpointWAL's read-write
// open of the copy would write into the live library. No copy-on-write
// clone is attempted either.
func cloneOrCopy(src, dst string, log zerolog.Logger) error {
	log.Debug().Str("src", src).Msg("snapshot: stream-copying catalog file")
	return streamCopy(src, dst)
}

func streamCopy(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		os.Remove(dst)
		return err
	}
	return out.Sync()
}

func classifyCopyError(err error) error {
	if os.IsPermission(err) {
		return fmt.Errorf("%w: %v", ErrPermission, err)
	}
	if os.IsNotExist(err) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return err
}

// checkpointWAL applies any pending -wal file into the main database by
// opening it read-write once with a full checkpoint, then closing it so the
// rest of the session can open it strictly read-only.
func checkpointWAL(path string) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.Exec(`PRAGMA wal_checkpoint(TRUNCATE)`); err != nil {
		return err
	}
	return db.Close()
}

// verifyIntegrity runs PRAGMA integrity_check on the snapshot and fails the
// session (per §4.A / §8 invariant 2) if it reports anything but "ok".
func verifyIntegrity(s *Snapshot) error {
	db, err := sql.Open("sqlite3", s.DSN())
	if err != nil {
		return fmt.Errorf("%w: opening copy: %v", ErrIntegrity, err)
	}
	defer db.Close()

	var result string
	if err := db.QueryRow(`PRAGMA integrity_check`).Scan(&result); err != nil {
		return fmt.Errorf("%w: running integrity_check: %v", ErrIntegrity, err)
	}
	if result != "ok" {
		return fmt.Errorf("%w: got %q", ErrIntegrity, result)
	}
	return nil
}
