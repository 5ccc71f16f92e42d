package sidecar

import (
	"strings"
	"testing"

	"github.com/mdriscoll/photoslib/internal/model"
)

func TestRenderXMPEscapesAndIncludesFaceRegion(t *testing.T) {
	a := &model.Asset{AID: "a1", Title: "Me & You", Keywords: []string{"beach"}}
	face := &model.Face{ID: "f1", PersonID: "p1", Region: model.FaceRegion{CenterX: 0.5, CenterY: 0.25, Width: 0.1, Height: 0.2}}

	xmp := RenderXMP(a, []*model.Face{face}, func(id string) string { return "Maria" })

	if !strings.Contains(xmp, "Me &amp; You") {
		t.Fatalf("expected escaped title, got: %s", xmp)
	}
	if !strings.Contains(xmp, "0.500000") || !strings.Contains(xmp, "0.250000") {
		t.Fatalf("expected six-decimal normalized coordinates, got: %s", xmp)
	}
	if !strings.Contains(xmp, "Maria") {
		t.Fatalf("expected resolved person name in region, got: %s", xmp)
	}
}

func TestRenderJSONIncludesResolvedAlbumsAndPersons(t *testing.T) {
	lib := model.NewLibrary()
	lib.AddAlbum(&model.Album{ID: "alb1", Title: "Trip"})
	lib.AddPerson(&model.Person{ID: "p1", DisplayName: "Maria"})
	a := &model.Asset{AID: "a1", Title: "X", AlbumIDs: []string{"alb1"}, PersonIDs: []string{"p1"}}
	lib.AddAsset(a)

	data, err := RenderJSON(lib, a)
	if err != nil {
		t.Fatalf("RenderJSON: %v", err)
	}
	s := string(data)
	if !strings.Contains(s, "Trip") || !strings.Contains(s, "Maria") {
		t.Fatalf("expected resolved album/person names in JSON, got: %s", s)
	}
}

func TestSidecarFilenameAvoidsCollision(t *testing.T) {
	claimed := map[string]bool{"IMG_0001.xmp": true}
	name := SidecarFilename("IMG_0001.JPEG", "xmp", claimed)
	if name == "IMG_0001.xmp" {
		t.Fatal("expected collision to force the fallback naming scheme")
	}
}
