package template

import (
	"fmt"
	"strings"
	"time"

	"github.com/mdriscoll/photoslib/internal/model"
)

// resolveField returns the multi-valued expansion of one field against an asset,
// or ok=false when the field name isn't recognized (the renderer then adds
// it to the unmatched list rather than failing the whole render, §4.G.4).
func resolveField(lib *model.Library, a *model.Asset, name, subfield string, exif map[string]string) (values []string, ok bool) {
	switch name {
	case "name":
		return []string{trimExt(a.CurrentFilename)}, true
	case "original_name":
		return []string{trimExt(a.OriginalFilename)}, true
	case "ext":
		return []string{extOf(a.CurrentFilename)}, true
	case "title":
		return []string{a.Title}, true
	case "descr", "description":
		return []string{a.Description}, true
	case "uuid":
		return []string{a.AID}, true
	case "media_type":
		if a.Media == model.MediaVideo {
			return []string{"video"}, true
		}
		return []string{"photo"}, true

	case "created":
		return dateComponent(a.CreatedAt, subfield), true
	case "modified":
		if a.ModifiedAt == nil {
			return []string{""}, true
		}
		return dateComponent(*a.ModifiedAt, subfield), true
	case "today":
		return dateComponent(time.Now(), subfield), true

	case "keyword":
		return dedupOrdered(a.Keywords), true
	case "label":
		return dedupOrdered(a.LabelIDs), true
	case "comment":
		out := make([]string, len(a.Comments))
		for i, c := range a.Comments {
			out[i] = c.Text
		}
		return out, true

	case "album":
		return albumTitles(lib, a.AlbumIDs), true
	case "album_path":
		return albumPaths(lib, a.AlbumIDs), true
	case "folder_album":
		return albumTitles(lib, lib.AlbumsForAssetBurstAware(a.AID)), true

	case "person":
		out := make([]string, 0, len(a.PersonIDs))
		for _, pid := range a.PersonIDs {
			if p, ok := lib.Person(pid); ok {
				out = append(out, p.DisplayName)
			}
		}
		return dedupOrdered(out), true

	case "place":
		return placeComponent(a.Place, subfield), true
	case "searchinfo":
		return searchInfoComponent(a.Search, subfield), true

	case "function":
		// `{function:path::name}` is recognized, but no package in this
		// module registers or side-loads functions, so it always renders
		// empty.
		return []string{""}, true

	case "exiftool":
		// `{exiftool:GROUP:TAG}` splits, at the name/subfield boundary, into
		// Name="exiftool", Subfield="GROUP:TAG" (or just "TAG").
		if exif == nil {
			return []string{""}, true
		}
		if v, ok := exif[subfield]; ok {
			return []string{v}, true
		}
		return []string{""}, true

	case "photo":
		// `{photo.attr}` is recognized, but there is no accessor that reads
		// an asset attribute by name, so it always renders empty.
		return []string{""}, true

	// Literal punctuation fields (§4.G.1): scanned as ordinary fields so
	// the rest of the grammar stays uniform (design notes §9).
	case "openbrace":
		return []string{"{"}, true
	case "closebrace":
		return []string{"}"}, true
	case "openparens":
		return []string{"("}, true
	case "closeparens":
		return []string{")"}, true
	case "openbracket":
		return []string{"["}, true
	case "closebracket":
		return []string{"]"}, true
	case "comma":
		return []string{","}, true
	case "semicolon":
		return []string{";"}, true
	case "pipe":
		return []string{"|"}, true
	case "question", "questionmark":
		return []string{"?"}, true
	case "newline":
		return []string{"\n"}, true
	case "cr":
		return []string{"\r"}, true
	case "lf":
		return []string{"\n"}, true
	case "crlf":
		return []string{"\r\n"}, true

	default:
		return nil, false
	}
}

func trimExt(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[:i]
	}
	return name
}

func extOf(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i+1:]
	}
	return ""
}

func dedupOrdered(in []string) []string {
	seen := make(map[string]bool, len(in))
	var out []string
	for _, s := range in {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func albumTitles(lib *model.Library, ids []string) []string {
	var out []string
	for _, id := range ids {
		if al, ok := lib.Album(id); ok {
			out = append(out, al.Title)
		}
	}
	return dedupOrdered(out)
}

// albumPaths renders each album's full folder/.../album path using '/' as
// the structural separator; PathSep (if set on the Field) substitutes for
// it at render time, not here.
func albumPaths(lib *model.Library, ids []string) []string {
	var out []string
	for _, id := range ids {
		al, ok := lib.Album(id)
		if !ok {
			continue
		}
		var parts []string
		parentID := al.ParentFolderID
		for parentID != nil {
			f, ok := lib.Folder(*parentID)
			if !ok {
				break
			}
			parts = append([]string{f.Title}, parts...)
			parentID = f.ParentID
		}
		parts = append(parts, al.Title)
		out = append(out, strings.Join(parts, "/"))
	}
	return dedupOrdered(out)
}

func dateComponent(t time.Time, subfield string) []string {
	switch subfield {
	case "", "date":
		return []string{t.Format("2006-01-02")}
	case "year":
		return []string{fmt.Sprintf("%04d", t.Year())}
	case "yy":
		return []string{fmt.Sprintf("%02d", t.Year()%100)}
	case "mm":
		return []string{fmt.Sprintf("%02d", int(t.Month()))}
	case "month":
		return []string{t.Month().String()}
	case "dd":
		return []string{fmt.Sprintf("%02d", t.Day())}
	case "doy":
		return []string{fmt.Sprintf("%03d", t.YearDay())}
	case "hour":
		return []string{fmt.Sprintf("%02d", t.Hour())}
	case "min":
		return []string{fmt.Sprintf("%02d", t.Minute())}
	case "sec":
		return []string{fmt.Sprintf("%02d", t.Second())}
	case "weekday":
		return []string{t.Weekday().String()}
	default:
		return []string{t.Format("2006-01-02")}
	}
}

func placeComponent(p *model.Place, subfield string) []string {
	if p == nil {
		return []string{""}
	}
	switch subfield {
	case "", "name":
		return []string{p.Country()}
	case "country":
		return dedupOrdered(p.Countries)
	case "state_province":
		return dedupOrdered(p.StatesProvinces)
	case "city":
		return dedupOrdered(p.Cities)
	case "area_of_interest":
		return dedupOrdered(p.AreasOfInterest)
	case "address":
		return []string{p.PostalAddressFull}
	default:
		return []string{""}
	}
}

func searchInfoComponent(s model.SearchInfo, subfield string) []string {
	switch subfield {
	case "", "label":
		return dedupOrdered(s.Labels)
	case "city":
		return []string{s.City}
	case "state":
		return []string{s.State}
	case "country":
		return []string{s.Country}
	case "activity":
		return dedupOrdered(s.Activities)
	case "venue":
		return dedupOrdered(s.Venues)
	default:
		return []string{""}
	}
}
