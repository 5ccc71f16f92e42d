package sidecar

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/mdriscoll/photoslib/internal/model"
)

// flatRecord is the shape written by the default (non-grouped) JSON
// sidecar: every attribute at one level.
type flatRecord struct {
	UUID        string   `json:"uuid"`
	Filename    string   `json:"filename"`
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
	Persons     []string `json:"persons,omitempty"`
	Albums      []string `json:"albums,omitempty"`
	Favorite    bool     `json:"favorite"`
	Hidden      bool     `json:"hidden"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	CreatedAt   string   `json:"created_at"`
}

// RenderJSON builds the flat JSON sidecar for one asset.
func RenderJSON(lib *model.Library, a *model.Asset) ([]byte, error) {
	rec := flatRecord{
		UUID:        a.AID,
		Filename:    a.CurrentFilename,
		Title:       a.Title,
		Description: a.Description,
		Keywords:    a.Keywords,
		Favorite:    a.Favorite,
		Hidden:      a.Hidden,
		CreatedAt:   a.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	for _, pid := range a.PersonIDs {
		if p, ok := lib.Person(pid); ok {
			rec.Persons = append(rec.Persons, p.DisplayName)
		}
	}
	for _, aid := range a.AlbumIDs {
		if al, ok := lib.Album(aid); ok {
			rec.Albums = append(rec.Albums, al.Title)
		}
	}
	if a.Location.Valid {
		lat, lon := a.Location.Lat, a.Location.Lon
		rec.Latitude, rec.Longitude = &lat, &lon
	}
	return json.MarshalIndent(rec, "", "  ")
}

// RenderJSONGrouped builds the "exiftool:GROUP:TAG"-style grouped JSON
// sidecar variant, where keys are namespaced by metadata group
// ("IPTC" and "Composite") instead of flattened.
func RenderJSONGrouped(lib *model.Library, a *model.Asset) ([]byte, error) {
	groups := map[string]map[string]any{
		"IPTC": {
			"ObjectName": a.Title,
			"Caption":    a.Description,
			"Keywords":   a.Keywords,
		},
		"Composite": {
			"UUID":      a.AID,
			"Favorite":  a.Favorite,
			"Hidden":    a.Hidden,
			"CreatedAt": a.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		},
	}
	if a.Location.Valid {
		groups["Composite"]["GPSLatitude"] = a.Location.Lat
		groups["Composite"]["GPSLongitude"] = a.Location.Lon
	}

	out := make(map[string]any, len(groups))
	var groupNames []string
	for g := range groups {
		groupNames = append(groupNames, g)
	}
	sort.Strings(groupNames)
	for _, g := range groupNames {
		out[g] = groups[g]
	}
	return json.MarshalIndent(out, "", "  ")
}

// SidecarFilename derives the sidecar's own filename from the destination
// media filename, dropping the source extension (the common convention) and
// appending the sidecar's extension; when dropping the extension would
// collide with another file already claimed for this export batch, the
// original extension is preserved instead so the two sidecars don't clash.
func SidecarFilename(destMediaFilename, sidecarExt string, claimed map[string]bool) string {
	stem := destMediaFilename
	if i := strings.LastIndexByte(destMediaFilename, '.'); i >= 0 {
		stem = destMediaFilename[:i]
	}
	candidate := stem + "." + sidecarExt
	if !claimed[candidate] {
		return candidate
	}
	return fmt.Sprintf("%s.%s", destMediaFilename, sidecarExt)
}
