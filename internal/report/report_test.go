package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mdriscoll/photoslib/internal/exportdb"
)

func TestFromActionsDerivesExtension(t *testing.T) {
	rows := FromActions([]exportdb.Action{
		{AID: "a1", DestPath: "/export/a1.jpeg", Category: "write"},
	})
	if len(rows) != 1 || rows[0].Extension != "jpeg" {
		t.Fatalf("got %+v", rows)
	}
}

func TestWriteCSVIncludesHeader(t *testing.T) {
	var buf bytes.Buffer
	rows := []Row{{AID: "a1", DestPath: "/x.jpg", Extension: "jpg", Category: "write"}}
	if err := WriteCSV(&buf, rows); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "aid,dest_path,extension,category,error\n") {
		t.Fatalf("unexpected CSV output: %s", buf.String())
	}
}

func TestWriteJSONIsValidArray(t *testing.T) {
	var buf bytes.Buffer
	rows := []Row{{AID: "a1", DestPath: "/x.jpg", Extension: "jpg", Category: "skip"}}
	if err := WriteJSON(&buf, rows); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	if !strings.Contains(buf.String(), `"aid": "a1"`) {
		t.Fatalf("unexpected JSON output: %s", buf.String())
	}
}
