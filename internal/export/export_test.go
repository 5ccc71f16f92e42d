package export

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mdriscoll/photoslib/internal/exportdb"
	"github.com/mdriscoll/photoslib/internal/model"
)

func buildTestLibrary(t *testing.T, root string) *model.Library {
	t.Helper()
	lib := model.NewLibrary()

	srcDir := filepath.Join(root, "originals")
	if err := os.MkdirAll(srcDir, 0755); err != nil {
		t.Fatal(err)
	}
	srcPath := filepath.Join(srcDir, "IMG_0001.JPG")
	if err := os.WriteFile(srcPath, []byte("fake jpeg bytes"), 0644); err != nil {
		t.Fatal(err)
	}

	lib.AddAsset(&model.Asset{
		AID:                  "aid-1",
		OriginalFilename:     "IMG_0001.JPG",
		CreatedAt:            time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC),
		Title:                "Beach day",
		Visible:              true,
		ResolvedOriginalPath: srcPath,
	})
	return lib
}

func TestRunWritesNewAssetAndLogsAction(t *testing.T) {
	tmp := t.TempDir()
	lib := buildTestLibrary(t, tmp)
	destDir := filepath.Join(tmp, "export")

	opts := Options{
		DestDir:          destDir,
		DirTemplate:      "{created.year}",
		FilenameTemplate: "{name}",
		ExportDBPath:     filepath.Join(tmp, "export.db"),
	}

	summary, err := Run(context.Background(), lib, lib.Assets(), opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Written != 1 {
		t.Fatalf("expected 1 written, got %+v", summary)
	}

	wantPath := filepath.Join(destDir, "2024", "IMG_0001.JPG")
	if _, err := os.Stat(wantPath); err != nil {
		t.Fatalf("expected exported file at %s: %v", wantPath, err)
	}

	db, err := exportdb.Open(opts.ExportDBPath)
	if err != nil {
		t.Fatalf("reopening export db: %v", err)
	}
	defer db.Close()
	actions, err := db.Actions()
	if err != nil {
		t.Fatalf("Actions: %v", err)
	}
	if len(actions) != 1 || actions[0].Category != string(ActionWrite) {
		t.Fatalf("expected one logged write action, got %v", actions)
	}
}

func TestRunIncrementalSkipsUnchangedAsset(t *testing.T) {
	tmp := t.TempDir()
	lib := buildTestLibrary(t, tmp)
	destDir := filepath.Join(tmp, "export")
	dbPath := filepath.Join(tmp, "export.db")

	opts := Options{
		DestDir:          destDir,
		DirTemplate:      "{created.year}",
		FilenameTemplate: "{name}",
		ExportDBPath:     dbPath,
		Incremental:      true,
	}

	if _, err := Run(context.Background(), lib, lib.Assets(), opts); err != nil {
		t.Fatalf("first Run: %v", err)
	}

	summary, err := Run(context.Background(), lib, lib.Assets(), opts)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if summary.Skipped != 1 || summary.Written != 0 {
		t.Fatalf("expected incremental skip on second run, got %+v", summary)
	}
}

func TestRunDryRunWritesNoFiles(t *testing.T) {
	tmp := t.TempDir()
	lib := buildTestLibrary(t, tmp)
	destDir := filepath.Join(tmp, "export")

	opts := Options{
		DestDir:          destDir,
		DirTemplate:      "{created.year}",
		FilenameTemplate: "{name}",
		DryRun:           true,
	}

	if _, err := Run(context.Background(), lib, lib.Assets(), opts); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, err := os.Stat(destDir); !os.IsNotExist(err) {
		t.Fatalf("dry run should not create destination dir, stat err = %v", err)
	}
}

func TestResolveCollisionIncrementsFilename(t *testing.T) {
	claimed := map[string]bool{"/x/photo.jpg": true}
	got := resolveCollision("/x/photo.jpg", claimed, CollisionIncrement)
	want := "/x/photo (1).jpg"
	if got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestVersionsForRespectsSelection(t *testing.T) {
	edited := &model.Asset{HasAdjustments: true}
	plain := &model.Asset{HasAdjustments: false}

	if got := versionsFor(edited, VersionBoth); len(got) != 2 {
		t.Fatalf("expected both versions, got %v", got)
	}
	if got := versionsFor(plain, VersionEditedOnly); len(got) != 0 {
		t.Fatalf("expected no edited version for unedited asset, got %v", got)
	}
	if got := versionsFor(plain, VersionOriginalOnly); len(got) != 1 {
		t.Fatalf("expected one original version, got %v", got)
	}
}
