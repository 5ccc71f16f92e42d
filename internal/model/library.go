package model

import "sort"

// Library owns every entity loaded from one catalog snapshot. All
// cross-references between entities are opaque identifiers resolved through
// the owning Library, never ownership cycles. Library is built once by the
// catalog loader and is immutable and safe for concurrent reads thereafter.
type Library struct {
	assets  map[string]*Asset
	albums  map[string]*Album
	folders map[string]*Folder
	persons map[string]*Person
	faces   map[string]*Face
	places  map[string]*Place
	imports map[string]*ImportSession

	// assetOrder preserves the loader's canonical insertion order so that
	// repeated queries return identical, stable results within a session.
	assetOrder []string
}

// NewLibrary returns an empty Library ready for the loader to populate.
func NewLibrary() *Library {
	return &Library{
		assets:  make(map[string]*Asset),
		albums:  make(map[string]*Album),
		folders: make(map[string]*Folder),
		persons: make(map[string]*Person),
		faces:   make(map[string]*Face),
		places:  make(map[string]*Place),
		imports: make(map[string]*ImportSession),
	}
}

// AddAsset registers an asset, appending it to the canonical order. Calling
// this twice with the same AID is a loader bug and overwrites silently,
// since the loader itself is responsible for AID uniqueness (invariant
// checked separately by catalog.Load).
func (l *Library) AddAsset(a *Asset) {
	if _, exists := l.assets[a.AID]; !exists {
		l.assetOrder = append(l.assetOrder, a.AID)
	}
	l.assets[a.AID] = a
}

func (l *Library) AddAlbum(a *Album)   { l.albums[a.ID] = a }
func (l *Library) AddFolder(f *Folder) { l.folders[f.ID] = f }
func (l *Library) AddPerson(p *Person) { l.persons[p.ID] = p }
func (l *Library) AddFace(f *Face)     { l.faces[f.ID] = f }
func (l *Library) AddPlace(id string, p *Place) { l.places[id] = p }
func (l *Library) AddImportSession(s *ImportSession) { l.imports[s.ID] = s }

// Asset looks up an asset by AID.
func (l *Library) Asset(aid string) (*Asset, bool) {
	a, ok := l.assets[aid]
	return a, ok
}

// Assets returns every asset in canonical (insertion) order.
func (l *Library) Assets() []*Asset {
	out := make([]*Asset, 0, len(l.assetOrder))
	for _, aid := range l.assetOrder {
		out = append(out, l.assets[aid])
	}
	return out
}

// AssetCount returns the number of loaded assets.
func (l *Library) AssetCount() int { return len(l.assets) }

// Album looks up an album by ID.
func (l *Library) Album(id string) (*Album, bool) {
	a, ok := l.albums[id]
	return a, ok
}

// Albums returns every album, sorted by ID as a stable tie-break (callers
// that need user-visible order should instead walk the folder forest).
func (l *Library) Albums() []*Album {
	out := make([]*Album, 0, len(l.albums))
	for _, a := range l.albums {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// AlbumsByTitle returns every album sharing the given title, case-sensitive.
// Per design notes §9, multiple albums sharing a title are a single logical
// album to most callers; MergedAlbumMembers implements that union.
func (l *Library) AlbumsByTitle(title string) []*Album {
	var out []*Album
	for _, a := range l.Albums() {
		if a.Title == title {
			out = append(out, a)
		}
	}
	return out
}

// MergedAlbumMembers returns the de-duplicated, order-preserving union of
// asset IDs across every album sharing the given title — the "cross-album
// photo duplication" behavior from design notes §9.
func (l *Library) MergedAlbumMembers(title string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, a := range l.AlbumsByTitle(title) {
		for _, aid := range a.AssetIDs {
			if !seen[aid] {
				seen[aid] = true
				out = append(out, aid)
			}
		}
	}
	return out
}

// Folder looks up a folder by ID.
func (l *Library) Folder(id string) (*Folder, bool) {
	f, ok := l.folders[id]
	return f, ok
}

// RootFolders returns the folders with no parent, sorted by ID.
func (l *Library) RootFolders() []*Folder {
	var out []*Folder
	for _, f := range l.folders {
		if f.ParentID == nil {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Person looks up a person by ID.
func (l *Library) Person(id string) (*Person, bool) {
	p, ok := l.persons[id]
	return p, ok
}

// Persons returns every person sorted by ID.
func (l *Library) Persons() []*Person {
	out := make([]*Person, 0, len(l.persons))
	for _, p := range l.persons {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Face looks up a face by ID.
func (l *Library) Face(id string) (*Face, bool) {
	f, ok := l.faces[id]
	return f, ok
}

// FacesForAsset returns the faces on an asset, ordered by descending quality.
func (l *Library) FacesForAsset(aid string) []*Face {
	var out []*Face
	for _, f := range l.faces {
		if f.AssetID == aid {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Quality != out[j].Quality {
			return out[i].Quality > out[j].Quality
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// ImportSession looks up an import session by ID.
func (l *Library) ImportSession(id string) (*ImportSession, bool) {
	s, ok := l.imports[id]
	return s, ok
}

// BurstMembers returns every asset sharing the given burst-set identifier,
// in canonical order.
func (l *Library) BurstMembers(burstSetID string) []*Asset {
	var out []*Asset
	for _, a := range l.Assets() {
		if a.BurstSetID != nil && *a.BurstSetID == burstSetID {
			out = append(out, a)
		}
	}
	return out
}

// BurstSelected returns the selected member of a burst set, if loaded.
func (l *Library) BurstSelected(burstSetID string) (*Asset, bool) {
	for _, a := range l.BurstMembers(burstSetID) {
		if a.BurstSelected {
			return a, true
		}
	}
	return nil, false
}

// AlbumsForAssetBurstAware returns an asset's own album memberships, plus —
// when the asset is a non-selected burst member — the albums of its burst
// set's selected member, per catalog loader derivation rule 5(a).
func (l *Library) AlbumsForAssetBurstAware(aid string) []string {
	a, ok := l.Asset(aid)
	if !ok {
		return nil
	}
	if a.BurstSetID == nil || a.BurstSelected {
		return a.AlbumIDs
	}
	selected, ok := l.BurstSelected(*a.BurstSetID)
	if !ok {
		return a.AlbumIDs
	}
	out := append([]string(nil), a.AlbumIDs...)
	seen := make(map[string]bool, len(out))
	for _, id := range out {
		seen[id] = true
	}
	for _, id := range selected.AlbumIDs {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
