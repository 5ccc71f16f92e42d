package exportdb

import (
	"testing"
	"time"
)

func TestUpsertAndLookupRoundTrip(t *testing.T) {
	db, err := Open("")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	want := Record{
		AID: "a1", Version: "original", DestPath: "/export/a1.jpg",
		Sig:        Signature{Size: 1024, ModTime: time.Unix(1700000000, 0), Filename: "a1.jpg"},
		ExportedAt: time.Unix(1700000100, 0),
	}
	if err := db.Upsert(want); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	got, ok, err := db.Lookup("a1", "original")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if !ok {
		t.Fatal("expected record to be found")
	}
	if got.DestPath != want.DestPath || got.Sig.Size != want.Sig.Size {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestLookupMissingReturnsNotFound(t *testing.T) {
	db, err := Open("")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	_, ok, err := db.Lookup("does-not-exist", "original")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if ok {
		t.Fatal("expected not found")
	}
}

func TestSignatureMatches(t *testing.T) {
	sig := Signature{Size: 100, ModTime: time.Unix(1000, 0), Filename: "x.jpg"}
	if !SignatureMatches(sig, sig) {
		t.Fatal("identical signatures should match")
	}
	other := sig
	other.Size = 200
	if SignatureMatches(sig, other) {
		t.Fatal("differing size should not match")
	}
}

func TestActionsOrderedByAID(t *testing.T) {
	db, err := Open("")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	if err := db.LogAction(Action{AID: "b", DestPath: "/b", Category: "write"}); err != nil {
		t.Fatal(err)
	}
	if err := db.LogAction(Action{AID: "a", DestPath: "/a", Category: "skip"}); err != nil {
		t.Fatal(err)
	}

	actions, err := db.Actions()
	if err != nil {
		t.Fatalf("Actions: %v", err)
	}
	if len(actions) != 2 || actions[0].AID != "a" || actions[1].AID != "b" {
		t.Fatalf("expected actions sorted by AID, got %v", actions)
	}
}
