// Package catalog runs the dialect-selected SQL against a snapshot and
// stitches the joined rows into the immutable asset graph described by
// internal/model (§4.D). It is the largest single component of the core:
// base/cloud/extended attribute queries, album/folder/keyword/person/face
// fetches, and the derived-attribute and path-resolution passes that turn
// raw rows into a queryable model.Library.
package catalog

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"
	bar "github.com/schollz/progressbar/v3"

	"github.com/mdriscoll/photoslib/internal/dialect"
	"github.com/mdriscoll/photoslib/internal/model"
)

// Load executes the generation-specific query set against db and returns the
// fully materialized library. libraryRoot is the original `.photoslibrary`
// bundle path (not the snapshot copy) — used only for resolving the
// sharded originals/resources directories back to real files (§4.D.6).
func Load(db *sql.DB, d dialect.Dialect, libraryRoot string, log zerolog.Logger) (*model.Library, error) {
	lib := model.NewLibrary()

	loadFns := []struct {
		name string
		fn   func(*sql.DB, dialect.Dialect, *model.Library, zerolog.Logger) error
	}{
		{"base attributes", loadBaseAttributes},
		{"cloud attributes", loadCloudAttributes},
		{"extended attributes", loadExtendedAttributes},
		{"burst and special types", loadBurstAndSpecialTypes},
		{"keywords", loadKeywords},
		{"albums and folders", loadAlbumsAndFolders},
		{"persons and faces", loadPersonsAndFaces},
		{"search info", loadSearchInfo},
		{"import sessions", loadImportSessions},
	}

	progress := bar.Default(int64(len(loadFns)), "Loading catalog")
	for _, step := range loadFns {
		if err := step.fn(db, d, lib, log); err != nil {
			return nil, fmt.Errorf("catalog: loading %s: %w", step.name, err)
		}
		progress.Add(1)
	}
	progress.Finish()

	resolvePaths(lib, libraryRoot, log)
	deriveAttributes(lib, log)

	if err := checkInvariants(lib); err != nil {
		return nil, fmt.Errorf("catalog: invariant check failed: %w", err)
	}

	return lib, nil
}

// isLegacyGeneration reports whether d uses the G2/G3 RKMaster/RKVersion
// table layout rather than the Core Data ZASSET/ZGENERICASSET layout used
// from G4 onward.
func isLegacyGeneration(d dialect.Dialect) bool {
	return d.Generation == dialect.G2 || d.Generation == dialect.G3
}
