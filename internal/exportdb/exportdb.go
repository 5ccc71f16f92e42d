// Package exportdb tracks what an export session has already written, so a
// subsequent incremental run can compare file signatures and decide
// skip/re-export/cleanup without re-copying everything (§4.J). It runs
// file-backed when Open is given a path, so state survives between
// invocations, or purely in-memory when the path is empty. export.Options
// sets no default path: an empty ExportDBPath (and every dry run) gives an
// in-memory database that is discarded when the session ends.
package exportdb

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Signature is the cheap (size, mtime, filename) fingerprint of an exported
// destination file, used to decide whether that file is unchanged since it
// was recorded (§4.I.6).
type Signature struct {
	Size     int64
	ModTime  time.Time
	Filename string
}

// Record is one (AID, version) export entry.
type Record struct {
	AID         string
	Version     string // "original" or "edited"
	DestPath    string
	Sig         Signature
	SidecarHash string
	ExportedAt  time.Time
}

// Action is one logged export-session event, consumed by internal/report.
type Action struct {
	AID      string
	DestPath string
	Category string // "skip", "write", "overwrite", "cleanup_remove"
	Err      string
}

// DB wraps the export-tracking SQLite database (or :memory: for dry runs).
// Each Open call starts a new session, identified by sessionID, and tags
// every action it logs with that ID. Actions reads back only the most
// recently logged session, so the report built from it reflects the latest
// run rather than every run ever logged to the same on-disk database.
type DB struct {
	sql       *sql.DB
	goqu      *goqu.Database
	sessionID string
}

// Open opens (creating if necessary) the export database at path, or an
// in-memory database when path is "" (dry runs, or any session without an
// export-database path).
func Open(path string) (*DB, error) {
	dsn := path
	if dsn == "" {
		dsn = ":memory:"
	}
	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("exportdb: opening %s: %w", dsn, err)
	}

	db := &DB{sql: sqlDB, goqu: goqu.New("sqlite3", sqlDB), sessionID: uuid.NewString()}
	if err := db.migrate(); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}

func (db *DB) Close() error { return db.sql.Close() }

// SessionID identifies this Open call's export session, used to tag and
// later filter session_action rows so concurrent or historical runs
// against the same database file don't bleed into each other's report.
func (db *DB) SessionID() string { return db.sessionID }

func (db *DB) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS export_record (
			aid TEXT NOT NULL,
			version TEXT NOT NULL,
			dest_path TEXT NOT NULL,
			size INTEGER NOT NULL,
			mtime INTEGER NOT NULL,
			filename TEXT NOT NULL,
			sidecar_hash TEXT,
			exported_at INTEGER NOT NULL,
			PRIMARY KEY (aid, version)
		)`,
		`CREATE TABLE IF NOT EXISTS session_action (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			aid TEXT NOT NULL,
			dest_path TEXT NOT NULL,
			category TEXT NOT NULL,
			error TEXT
		)`,
	}
	for _, s := range stmts {
		if _, err := db.sql.Exec(s); err != nil {
			return fmt.Errorf("exportdb: migrating: %w", err)
		}
	}
	// Best-effort: databases created before session_id existed lack the
	// column. Ignored on failure since "duplicate column" is the expected
	// error on every database created after this line was added.
	db.sql.Exec(`ALTER TABLE session_action ADD COLUMN session_id TEXT NOT NULL DEFAULT ''`)
	return nil
}

// Lookup returns the prior export record for (aid, version), if any.
func (db *DB) Lookup(aid, version string) (Record, bool, error) {
	query, args, err := db.goqu.From("export_record").
		Where(goqu.Ex{"aid": aid, "version": version}).
		Select("dest_path", "size", "mtime", "filename", "sidecar_hash", "exported_at").
		ToSQL()
	if err != nil {
		return Record{}, false, fmt.Errorf("exportdb: building lookup query: %w", err)
	}

	var destPath, filename string
	var sidecarHash sql.NullString
	var size, mtime, exportedAt int64

	r := db.sql.QueryRow(query, args...)
	switch scanErr := r.Scan(&destPath, &size, &mtime, &filename, &sidecarHash, &exportedAt); scanErr {
	case nil:
		return Record{
			AID: aid, Version: version, DestPath: destPath,
			Sig:         Signature{Size: size, ModTime: time.Unix(mtime, 0), Filename: filename},
			SidecarHash: sidecarHash.String,
			ExportedAt:  time.Unix(exportedAt, 0),
		}, true, nil
	case sql.ErrNoRows:
		return Record{}, false, nil
	default:
		return Record{}, false, fmt.Errorf("exportdb: looking up %s/%s: %w", aid, version, scanErr)
	}
}

// Upsert commits (or replaces) one export record. The export database is
// written only by export.Run's result loop, one record as each job's
// result arrives, so this need not be safe for concurrent callers.
func (db *DB) Upsert(r Record) error {
	_, err := db.sql.Exec(`
		INSERT INTO export_record (aid, version, dest_path, size, mtime, filename, sidecar_hash, exported_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(aid, version) DO UPDATE SET
			dest_path = excluded.dest_path, size = excluded.size, mtime = excluded.mtime,
			filename = excluded.filename, sidecar_hash = excluded.sidecar_hash, exported_at = excluded.exported_at
	`, r.AID, r.Version, r.DestPath, r.Sig.Size, r.Sig.ModTime.Unix(), r.Sig.Filename, r.SidecarHash, r.ExportedAt.Unix())
	if err != nil {
		return fmt.Errorf("exportdb: upserting %s/%s: %w", r.AID, r.Version, err)
	}
	return nil
}

// Delete removes a record, used by the CLEANUP_REMOVE transition when an
// asset's export target moved or the asset left the filtered query result.
func (db *DB) Delete(aid, version string) error {
	_, err := db.sql.Exec(`DELETE FROM export_record WHERE aid = ? AND version = ?`, aid, version)
	return err
}

// LogAction appends one session action for the report emitter, tagged with
// this DB handle's session ID.
func (db *DB) LogAction(a Action) error {
	_, err := db.sql.Exec(`INSERT INTO session_action (session_id, aid, dest_path, category, error) VALUES (?, ?, ?, ?, ?)`,
		db.sessionID, a.AID, a.DestPath, a.Category, a.Err)
	return err
}

// Actions returns every action logged during the most recently started
// session in this database, ordered by AID (§4.K: report rows are sorted
// by source AID at session end). A report is typically read back through a
// fresh DB handle opened after the export Run completed, so this
// deliberately looks up the latest session_id on disk rather than this
// handle's own (almost certainly session-less) one.
func (db *DB) Actions() ([]Action, error) {
	rows, err := db.sql.Query(`
		SELECT aid, dest_path, category, error FROM session_action
		WHERE session_id = (SELECT session_id FROM session_action ORDER BY id DESC LIMIT 1)
		ORDER BY aid
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Action
	for rows.Next() {
		var a Action
		var errStr sql.NullString
		if err := rows.Scan(&a.AID, &a.DestPath, &a.Category, &errStr); err != nil {
			return nil, err
		}
		a.Err = errStr.String
		out = append(out, a)
	}
	return out, rows.Err()
}

// SignatureMatches reports whether a candidate on-disk signature still
// matches the previously recorded one (§4.I.6's skip/re-export decision).
// Modification times are compared at whole-second resolution, the
// resolution export_record stores them at.
func SignatureMatches(recorded, candidate Signature) bool {
	return recorded.Size == candidate.Size &&
		recorded.ModTime.Unix() == candidate.ModTime.Unix() &&
		recorded.Filename == candidate.Filename
}
