package catalog

import (
	"fmt"

	"github.com/mdriscoll/photoslib/internal/model"
)

// checkInvariants asserts the §3/§8 structural guarantees a loaded library
// must hold before it is handed to the query engine: unique asset IDs
// (guaranteed by construction via model.Library's map keying, checked here
// for the things that aren't), resolvable parent/face references, and
// exactly one selected member per burst set. An asset cannot be both a
// photo and a video because Asset.Media holds a single MediaKind, so that
// case is not checked here.
func checkInvariants(lib *model.Library) error {
	for _, f := range lib.RootFolders() {
		if err := checkFolderTreeAcyclic(lib, f, map[string]bool{}); err != nil {
			return err
		}
	}

	for _, album := range lib.Albums() {
		if album.ParentFolderID != nil {
			if _, ok := lib.Folder(*album.ParentFolderID); !ok {
				return fmt.Errorf("album %s references missing parent folder %s", album.ID, *album.ParentFolderID)
			}
		}
	}

	for _, a := range lib.Assets() {
		for _, faceID := range facesFor(lib, a.AID) {
			face, ok := lib.Face(faceID)
			if !ok {
				return fmt.Errorf("asset %s references missing face %s", a.AID, faceID)
			}
			if face.AssetID != a.AID {
				return fmt.Errorf("face %s asset backreference mismatch: got %s, want %s", faceID, face.AssetID, a.AID)
			}
		}
	}

	for _, bsID := range burstSetIDs(lib) {
		members := lib.BurstMembers(bsID)
		selectedCount := 0
		for _, m := range members {
			if m.BurstSelected {
				selectedCount++
			}
		}
		if selectedCount != 1 {
			return fmt.Errorf("burst set %s has %d selected members, want exactly 1", bsID, selectedCount)
		}
	}

	return nil
}

func facesFor(lib *model.Library, aid string) []string {
	faces := lib.FacesForAsset(aid)
	ids := make([]string, len(faces))
	for i, f := range faces {
		ids[i] = f.ID
	}
	return ids
}

func checkFolderTreeAcyclic(lib *model.Library, f *model.Folder, visiting map[string]bool) error {
	if visiting[f.ID] {
		return fmt.Errorf("folder %s participates in a parent/child cycle", f.ID)
	}
	visiting[f.ID] = true
	for _, childID := range f.ChildFolderIDs {
		child, ok := lib.Folder(childID)
		if !ok {
			return fmt.Errorf("folder %s references missing child folder %s", f.ID, childID)
		}
		if err := checkFolderTreeAcyclic(lib, child, visiting); err != nil {
			return err
		}
	}
	delete(visiting, f.ID)
	return nil
}
