package catalog

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/mdriscoll/photoslib/internal/model"
)

// deriveAttributes computes the attributes that depend on more than one
// joined row: RAW+JPEG pairing by shared filename stem, burst-set
// selection defaults, and final per-asset visibility (§4.D.5).
func deriveAttributes(lib *model.Library, log zerolog.Logger) {
	byStem := make(map[string][]*model.Asset)
	for _, a := range lib.Assets() {
		stem := stemOf(a.OriginalFilename)
		byStem[stem] = append(byStem[stem], a)
	}

	for _, group := range byStem {
		if len(group) < 2 {
			continue
		}
		var raw, rendered *model.Asset
		for _, a := range group {
			if isRawUTI(a.UTIs.Original) {
				raw = a
			} else {
				rendered = a
			}
		}
		if raw != nil && rendered != nil {
			rendered.HasRaw = true
			rendered.RawCompanionPath = raw.ResolvedOriginalPath
			raw.RawIsOriginal = true
		}
	}

	for _, bsID := range burstSetIDs(lib) {
		members := lib.BurstMembers(bsID)
		if len(members) == 0 {
			continue
		}
		if _, ok := lib.BurstSelected(bsID); !ok {
			// No pick-type-2 member survived the join (can happen on older
			// libraries that predate the pick-type column): fall back to the
			// earliest-created member so exactly one member is selected,
			// satisfying the §3 invariant.
			earliest := members[0]
			for _, m := range members[1:] {
				if m.CreatedAt.Before(earliest.CreatedAt) {
					earliest = m
				}
			}
			earliest.BurstSelected = true
			log.Debug().Str("burst_set", bsID).Str("asset", earliest.AID).
				Msg("catalog: no pick-type-2 burst member found, defaulting to earliest")
		}
	}

	for _, a := range lib.Assets() {
		a.Visible = !a.InTrash && !isNonSelectedBurstMember(a)
	}
}

func burstSetIDs(lib *model.Library) []string {
	seen := make(map[string]bool)
	var out []string
	for _, a := range lib.Assets() {
		if a.BurstSetID == nil {
			continue
		}
		if !seen[*a.BurstSetID] {
			seen[*a.BurstSetID] = true
			out = append(out, *a.BurstSetID)
		}
	}
	return out
}

func isNonSelectedBurstMember(a *model.Asset) bool {
	return a.BurstSetID != nil && !a.BurstSelected
}

func stemOf(filename string) string {
	i := strings.LastIndexByte(filename, '.')
	if i < 0 {
		return filename
	}
	return filename[:i]
}

// isRawUTI reports whether a UTI string names one of the common RAW
// companion formats Photos tracks alongside a rendered JPEG/HEIC.
func isRawUTI(uti string) bool {
	switch uti {
	case "com.canon.cr2-raw-image", "com.canon.cr3-raw-image",
		"com.nikon.raw-image", "com.sony.arw-raw-image",
		"com.adobe.raw-image", "public.camera-raw-image":
		return true
	default:
		return false
	}
}
