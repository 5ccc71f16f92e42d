// Package photoslib reads a macOS Photos library's catalog into a queryable
// in-memory model, and exports filtered assets to disk under templated
// paths with sidecars, incremental updates, and a session report.
//
// It glues together the Snapshot Acquirer, Schema Detector, Catalog Loader,
// Query Engine, and Export Engine the way the teacher's main.go wires
// util.Library: open once, then issue read-only operations against the
// result for the life of the process.
package photoslib

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mdriscoll/photoslib/internal/catalog"
	"github.com/mdriscoll/photoslib/internal/dialect"
	"github.com/mdriscoll/photoslib/internal/errs"
	"github.com/mdriscoll/photoslib/internal/export"
	"github.com/mdriscoll/photoslib/internal/exportdb"
	"github.com/mdriscoll/photoslib/internal/model"
	"github.com/mdriscoll/photoslib/internal/query"
	"github.com/mdriscoll/photoslib/internal/report"
	"github.com/mdriscoll/photoslib/internal/snapshot"
)

// Library is a fully loaded, in-memory view of one .photoslibrary bundle.
// It owns a private snapshot of the catalog for its lifetime and must be
// closed when the caller is done with it.
type Library struct {
	root *model.Library
	snap *snapshot.Snapshot
	log  zerolog.Logger
}

// Option configures Open. The zero value of every Option is the default,
// matching the teacher's habit of a single functional-option constructor
// rather than a long positional parameter list.
type Option func(*openConfig)

type openConfig struct {
	log zerolog.Logger
}

// WithLogger attaches a zerolog.Logger; without it, Open logs nowhere.
func WithLogger(log zerolog.Logger) Option {
	return func(c *openConfig) { c.log = log }
}

// Open acquires a private snapshot of the library at path, detects its
// schema generation, and loads the full entity graph (§4.A-E). The
// returned Library is safe for concurrent read-only use; callers must call
// Close when finished to release the snapshot's temp directory.
func Open(path string, opts ...Option) (*Library, error) {
	cfg := openConfig{log: zerolog.Nop()}
	for _, o := range opts {
		o(&cfg)
	}

	snap, err := snapshot.Acquire(path, cfg.log)
	if err != nil {
		return nil, &errs.LibraryOpenError{Path: path, Err: err}
	}

	db, err := sql.Open("sqlite3", snap.DSN())
	if err != nil {
		snap.Close()
		return nil, &errs.LibraryOpenError{Path: path, Err: fmt.Errorf("opening snapshot database: %w", err)}
	}
	defer db.Close()

	dial, err := dialect.Detect(db, cfg.log)
	if err != nil {
		snap.Close()
		return nil, &errs.LibraryOpenError{Path: path, Err: fmt.Errorf("detecting schema generation: %w", err)}
	}

	lib, err := catalog.Load(db, dial, path, cfg.log)
	if err != nil {
		snap.Close()
		return nil, &errs.LibraryOpenError{Path: path, Err: fmt.Errorf("loading catalog: %w", err)}
	}

	return &Library{root: lib, snap: snap, log: cfg.log}, nil
}

// Close releases the library's private snapshot directory.
func (l *Library) Close() error {
	return l.snap.Close()
}

// Model returns the loaded entity graph for direct inspection (asset/album/
// folder/person/face/place lookups) when a caller needs more than Query
// offers.
func (l *Library) Model() *model.Library { return l.root }

// NewQuery starts a fluent filter over this library's assets (§4.F).
func (l *Library) NewQuery() *query.Query { return query.New() }

// Export runs one export session (§4.I) against the given assets, typically
// the result of a Query.Match call. Callers that want export logs folded
// into the library's own logger should set opts.Log to Logger() themselves.
func (l *Library) Export(ctx context.Context, assets []*model.Asset, opts export.Options) (export.Summary, error) {
	return export.Run(ctx, l.root, assets, opts)
}

// Logger returns the zerolog.Logger this Library was opened with.
func (l *Library) Logger() zerolog.Logger { return l.log }

// ExportReport reads the most recent session's logged actions back out of
// the export database and renders them via internal/report (§4.K).
func ExportReport(exportDBPath string) ([]report.Row, error) {
	db, err := exportdb.Open(exportDBPath)
	if err != nil {
		return nil, &errs.DatabaseError{Op: "opening export database for report", Err: err}
	}
	defer db.Close()

	actions, err := db.Actions()
	if err != nil {
		return nil, &errs.DatabaseError{Op: "reading session actions", Err: err}
	}
	return report.FromActions(actions), nil
}
