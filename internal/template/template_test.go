package template

import (
	"testing"
	"time"

	"github.com/mdriscoll/photoslib/internal/model"
)

func TestRenderSimpleFields(t *testing.T) {
	lib := model.NewLibrary()
	a := &model.Asset{AID: "a1", CurrentFilename: "IMG_0001.JPEG", Title: "Beach Day",
		CreatedAt: time.Date(2024, 7, 4, 10, 30, 0, 0, time.UTC)}
	lib.AddAsset(a)

	ast, err := Parse("{created.year}/{created.mm}/{name}")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	s, unmatched := RenderString(ast, lib, a)
	if len(unmatched) != 0 {
		t.Fatalf("unexpected unmatched fields: %v", unmatched)
	}
	if s != "2024/07/IMG_0001" {
		t.Fatalf("got %q", s)
	}
}

func TestRenderFilterPipeline(t *testing.T) {
	lib := model.NewLibrary()
	a := &model.Asset{AID: "a1", Title: "beach DAY"}
	lib.AddAsset(a)

	ast, err := Parse("{title|titlecase|lower}")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	s, _ := RenderString(ast, lib, a)
	if s != "beach day" {
		t.Fatalf("got %q", s)
	}
}

func TestRenderMultiValuedAlbumCrossProduct(t *testing.T) {
	lib := model.NewLibrary()
	lib.AddAlbum(&model.Album{ID: "alb1", Title: "Trip"})
	lib.AddAlbum(&model.Album{ID: "alb2", Title: "Favorites"})
	a := &model.Asset{AID: "a1", Title: "X", AlbumIDs: []string{"alb1", "alb2"}}
	lib.AddAsset(a)

	ast, err := Parse("{album}")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	res := Render(ast, lib, a)
	if len(res.Values) != 2 {
		t.Fatalf("expected 2 expansions for 2 albums, got %v", res.Values)
	}
}

func TestRenderUnknownFieldReportsUnmatched(t *testing.T) {
	lib := model.NewLibrary()
	a := &model.Asset{AID: "a1"}
	lib.AddAsset(a)

	ast, err := Parse("{not_a_real_field}")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	res := Render(ast, lib, a)
	if len(res.Unmatched) != 1 || res.Unmatched[0] != "not_a_real_field" {
		t.Fatalf("expected unmatched=[not_a_real_field], got %v", res.Unmatched)
	}
}

func TestRenderDefaultFallback(t *testing.T) {
	lib := model.NewLibrary()
	a := &model.Asset{AID: "a1", Title: ""}
	lib.AddAsset(a)

	ast, err := Parse("{title,Untitled}")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	s, _ := RenderString(ast, lib, a)
	if s != "Untitled" {
		t.Fatalf("got %q", s)
	}
}
