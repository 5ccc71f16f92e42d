package model

import "testing"

func TestMergedAlbumMembersDeduplicatesPreservingOrder(t *testing.T) {
	lib := NewLibrary()
	lib.AddAlbum(&Album{ID: "a1", Title: "Travel", AssetIDs: []string{"x", "y"}})
	lib.AddAlbum(&Album{ID: "a2", Title: "Travel", AssetIDs: []string{"y", "z"}})

	got := lib.MergedAlbumMembers("Travel")
	want := []string{"x", "y", "z"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestBurstSelectedAndAlbumsBurstAware(t *testing.T) {
	lib := NewLibrary()
	burst := "burst-1"
	lib.AddAsset(&Asset{AID: "sel", BurstSetID: &burst, BurstSelected: true, AlbumIDs: []string{"alb"}})
	lib.AddAsset(&Asset{AID: "other", BurstSetID: &burst, BurstSelected: false})

	selected, ok := lib.BurstSelected(burst)
	if !ok || selected.AID != "sel" {
		t.Fatalf("expected sel to be burst-selected, got %v ok=%v", selected, ok)
	}

	albums := lib.AlbumsForAssetBurstAware("other")
	if len(albums) != 1 || albums[0] != "alb" {
		t.Fatalf("expected non-selected burst member to inherit selected's albums, got %v", albums)
	}
}

func TestAssetsPreserveInsertionOrder(t *testing.T) {
	lib := NewLibrary()
	lib.AddAsset(&Asset{AID: "b"})
	lib.AddAsset(&Asset{AID: "a"})
	lib.AddAsset(&Asset{AID: "c"})

	got := lib.Assets()
	want := []string{"b", "a", "c"}
	for i, a := range got {
		if a.AID != want[i] {
			t.Fatalf("order mismatch at %d: got %s want %s", i, a.AID, want[i])
		}
	}
}
