package query

import (
	"testing"

	"github.com/mdriscoll/photoslib/internal/model"
)

func buildTestLibrary() *model.Library {
	lib := model.NewLibrary()
	lib.AddAsset(&model.Asset{AID: "a1", Title: "Sunset", Keywords: []string{"beach", "sunset"}, Favorite: true, Visible: true})
	lib.AddAsset(&model.Asset{AID: "a2", Title: "Cat", Keywords: []string{"pets"}, Visible: true})
	lib.AddAsset(&model.Asset{AID: "a3", Title: "Trashed photo", InTrash: true, Visible: false})
	return lib
}

func TestQueryKeywordAndFavoriteConjunction(t *testing.T) {
	lib := buildTestLibrary()
	q := New().WithKeyword("beach").WithFavorite(true)
	got := q.Match(lib)
	if len(got) != 1 || got[0].AID != "a1" {
		t.Fatalf("expected [a1], got %v", got)
	}
}

func TestQueryVisibleExcludesTrash(t *testing.T) {
	lib := buildTestLibrary()
	got := New().WithVisible().Match(lib)
	if len(got) != 2 {
		t.Fatalf("expected 2 visible assets, got %d", len(got))
	}
	for _, a := range got {
		if a.InTrash {
			t.Fatalf("trashed asset %s leaked through WithVisible", a.AID)
		}
	}
}

func TestQueryKeywordsAreOrWithinFamily(t *testing.T) {
	lib := buildTestLibrary()
	got := New().WithKeyword("beach", "pets").Match(lib)
	if len(got) != 2 {
		t.Fatalf("expected both a1 and a2 to match the keyword OR, got %d", len(got))
	}
}
