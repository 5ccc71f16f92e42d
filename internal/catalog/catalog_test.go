package catalog

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/mdriscoll/photoslib/internal/dialect"
)

func openSyntheticG6Catalog(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatal(err)
	}

	schema := []string{
		`CREATE TABLE ZASSET (
			Z_PK INTEGER PRIMARY KEY, ZUUID TEXT, ZFILENAME TEXT,
			ZDATECREATED REAL, ZMODIFICATIONDATE REAL,
			ZTRASHEDSTATE INTEGER, ZTRASHEDDATE REAL,
			ZFAVORITE INTEGER, ZHIDDEN INTEGER,
			ZLATITUDE REAL, ZLONGITUDE REAL,
			ZWIDTH INTEGER, ZHEIGHT INTEGER, ZORIENTATION INTEGER,
			ZKIND INTEGER, ZUNIFORMTYPEIDENTIFIER TEXT, ZDIRECTORY TEXT,
			ZCLOUDOWNERHASHEDPERSONID TEXT,
			ZAVALANCHEUUID TEXT, ZAVALANCHEPICKTYPE INTEGER, ZKINDSUBTYPE INTEGER,
			ZCUSTOMRENDEREDVALUE INTEGER, ZIMPORTSESSION INTEGER
		)`,
		`CREATE TABLE ZADDITIONALASSETATTRIBUTES (
			Z_PK INTEGER PRIMARY KEY, ZASSET INTEGER, ZORIGINALFILENAME TEXT, ZTITLE TEXT
		)`,
		`CREATE TABLE ZGENERICALBUM (
			Z_PK INTEGER PRIMARY KEY, ZUUID TEXT, ZTITLE TEXT, ZKIND INTEGER, ZPARENTFOLDER INTEGER
		)`,
		`CREATE TABLE ZEXTENDEDATTRIBUTES (
			ZASSET INTEGER, ZFILESIZE INTEGER, ZCAMERAMAKE TEXT, ZCAMERAMODEL TEXT, ZLENSMODEL TEXT
		)`,
		`INSERT INTO ZASSET (Z_PK, ZUUID, ZFILENAME, ZDATECREATED, ZTRASHEDSTATE, ZFAVORITE, ZHIDDEN,
			ZWIDTH, ZHEIGHT, ZORIENTATION, ZKIND, ZUNIFORMTYPEIDENTIFIER, ZDIRECTORY)
			VALUES (1, 'AID-1', 'IMG_0001.JPEG', 600000000, 0, 1, 0, 4032, 3024, 1, 0, 'public.jpeg', '1/00')`,
		`INSERT INTO ZADDITIONALASSETATTRIBUTES (Z_PK, ZASSET, ZORIGINALFILENAME, ZTITLE)
			VALUES (1, 1, 'IMG_0001.JPEG', 'Beach day')`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("exec %q: %v", stmt, err)
		}
	}
	return db
}

func TestLoadPopulatesBaseAttributes(t *testing.T) {
	db := openSyntheticG6Catalog(t)
	defer db.Close()

	lib, err := Load(db, dialect.Dialect{
		Generation:                dialect.G6,
		AssetTable:                "ZASSET",
		AdditionalAttributesTable: "ZADDITIONALASSETATTRIBUTES",
		ExtendedAttributesTable:   "ZEXTENDEDATTRIBUTES",
		CloudOwnerColumn:          "ZCLOUDOWNERHASHEDPERSONID",
		AlbumTable:                "ZGENERICALBUM",
		FolderTable:               "ZGENERICALBUM",
		SearchInfoAvailable:       true,
	}, t.TempDir(), zerolog.Nop())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if lib.AssetCount() != 1 {
		t.Fatalf("expected 1 asset, got %d", lib.AssetCount())
	}
	a, ok := lib.Asset("AID-1")
	if !ok {
		t.Fatal("expected to find AID-1")
	}
	if a.Title != "Beach day" {
		t.Fatalf("title = %q", a.Title)
	}
	if !a.Favorite {
		t.Fatal("expected favorite=true")
	}
	if !a.Visible {
		t.Fatal("expected non-trashed, non-burst asset to be visible")
	}
	if !a.Missing {
		t.Fatal("expected asset with no file on disk to be marked Missing")
	}
}

func TestLoadRejectsFolderCycle(t *testing.T) {
	db := openSyntheticG6Catalog(t)
	defer db.Close()

	// Folder A's parent is folder B, and folder B's parent is folder A.
	if _, err := db.Exec(`
		INSERT INTO ZGENERICALBUM (Z_PK, ZUUID, ZTITLE, ZKIND, ZPARENTFOLDER) VALUES
			(10, 'folder-a', 'A', 4000, 11),
			(11, 'folder-b', 'B', 4000, 10)
	`); err != nil {
		t.Fatal(err)
	}

	lib, err := Load(db, dialect.Dialect{
		Generation:                dialect.G6,
		AssetTable:                "ZASSET",
		AdditionalAttributesTable: "ZADDITIONALASSETATTRIBUTES",
		AlbumTable:                "ZGENERICALBUM",
		FolderTable:               "ZGENERICALBUM",
	}, t.TempDir(), zerolog.Nop())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	fa, ok := lib.Folder("folder-a")
	if !ok {
		t.Fatal("expected folder-a to load")
	}
	fb, _ := lib.Folder("folder-b")
	if fa.ParentID != nil && fb.ParentID != nil {
		t.Fatal("expected the cyclic edge to be rejected on at least one side")
	}
}
