package dialect

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

func openMemDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestDetectFallsBackWithoutMetadataTable(t *testing.T) {
	db := openMemDB(t)
	d, err := Detect(db, zerolog.Nop())
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if d.Generation != G2 {
		t.Fatalf("expected fallback to G2 when no metadata table exists, got %s", d.Generation)
	}
}

func TestDetectG6FromModelVersion(t *testing.T) {
	db := openMemDB(t)
	if _, err := db.Exec(`CREATE TABLE Z_METADATA (Z_VERSION INTEGER, Z_PLIST TEXT)`); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(`INSERT INTO Z_METADATA (Z_VERSION, Z_PLIST) VALUES (12000, 'contains PLModelVersion marker')`); err != nil {
		t.Fatal(err)
	}

	d, err := Detect(db, zerolog.Nop())
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if d.Generation != G6 {
		t.Fatalf("expected G6, got %s", d.Generation)
	}
	if d.AssetTable != "ZASSET" {
		t.Fatalf("expected ZASSET for G6, got %s", d.AssetTable)
	}
}

func TestGenerationForVersionFutureFallsBackToNewestKnown(t *testing.T) {
	gen, exact := generationForVersion(999999)
	if gen != G8 {
		t.Fatalf("expected future version to fall back to newest known generation G8, got %s", gen)
	}
	if exact {
		t.Fatalf("expected exact=false for an unrecognized future version")
	}
}
