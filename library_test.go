package photoslib

import (
	"errors"
	"testing"

	"github.com/mdriscoll/photoslib/internal/errs"
)

func TestOpenMissingLibraryReturnsLibraryOpenError(t *testing.T) {
	_, err := Open(t.TempDir() + "/does-not-exist.photoslibrary")
	if err == nil {
		t.Fatal("expected an error opening a nonexistent library")
	}
	var openErr *errs.LibraryOpenError
	if !errors.As(err, &openErr) {
		t.Fatalf("expected *errs.LibraryOpenError, got %T: %v", err, err)
	}
}
