// Package report emits the end-of-session export report in CSV, JSON, or
// SQLite form from the actions an exportdb.DB accumulated during the run
// (§4.K).
package report

import (
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mdriscoll/photoslib/internal/exportdb"
)

// Row is one report line: one (asset, destination) export action.
type Row struct {
	AID       string `json:"aid"`
	DestPath  string `json:"dest_path"`
	Extension string `json:"extension"`
	Category  string `json:"category"`
	Error     string `json:"error,omitempty"`
}

// FromActions converts the session's logged exportdb actions into report
// rows, already sorted by source AID (exportdb.Actions guarantees the
// order; this function doesn't re-sort).
func FromActions(actions []exportdb.Action) []Row {
	rows := make([]Row, len(actions))
	for i, a := range actions {
		rows[i] = Row{
			AID:       a.AID,
			DestPath:  a.DestPath,
			Extension: extensionOf(a.DestPath),
			Category:  a.Category,
			Error:     a.Err,
		}
	}
	return rows
}

func extensionOf(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		switch path[i] {
		case '.':
			return path[i+1:]
		case '/':
			return ""
		}
	}
	return ""
}

// WriteCSV writes rows as a CSV report.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"aid", "dest_path", "extension", "category", "error"}); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write([]string{r.AID, r.DestPath, r.Extension, r.Category, r.Error}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes rows as a pretty-printed JSON array.
func WriteJSON(w io.Writer, rows []Row) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

// WriteSQLite writes rows into a fresh "report" table in the SQLite
// database at path, creating the file if needed and replacing any existing
// "report" table; other tables in the file are left as they are.
func WriteSQLite(path string, rows []Row) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("report: opening %s: %w", path, err)
	}
	defer db.Close()

	if _, err := db.Exec(`DROP TABLE IF EXISTS report`); err != nil {
		return err
	}
	if _, err := db.Exec(`CREATE TABLE report (
		aid TEXT, dest_path TEXT, extension TEXT, category TEXT, error TEXT
	)`); err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT INTO report (aid, dest_path, extension, category, error) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.Exec(r.AID, r.DestPath, r.Extension, r.Category, r.Error); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}
