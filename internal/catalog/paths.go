package catalog

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mdriscoll/photoslib/internal/model"
)

// resolvePaths computes each asset's on-disk path under the library's
// sharded originals directory (originals/<first-char-of-AID>/<AID>.<ext>,
// §4.D.6) and, when an edited rendition exists, the parallel resources
// directory. Assets whose resolved path doesn't exist are flagged Missing
// rather than failing the load — a deleted-on-disk-but-still-cataloged
// asset is a normal, queryable state (§3).
func resolvePaths(lib *model.Library, libraryRoot string, log zerolog.Logger) {
	originalsDir := filepath.Join(libraryRoot, "originals")
	resourcesDir := filepath.Join(libraryRoot, "resources", "renders")

	for _, a := range lib.Assets() {
		ext := extensionForUTI(a.UTIs.Original, a.OriginalFilename)
		shard := shardFor(a.AID)

		originalPath := filepath.Join(originalsDir, shard, a.AID+ext)
		a.ResolvedOriginalPath = originalPath
		if _, err := os.Stat(originalPath); err != nil {
			a.Missing = true
			log.Debug().Str("asset", a.AID).Str("path", originalPath).Msg("catalog: resolved original not found on disk")
		}

		if a.HasAdjustments {
			editedExt := extensionForUTI(a.UTIs.Edited, a.CurrentFilename)
			if editedExt == "" {
				editedExt = ext
			}
			editedPath := filepath.Join(resourcesDir, shard, a.AID+"_1_201_a"+editedExt)
			a.ResolvedEditedPath = editedPath
			if _, err := os.Stat(editedPath); err != nil {
				a.Missing = true
				log.Debug().Str("asset", a.AID).Str("path", editedPath).Msg("catalog: resolved edited rendition not found on disk")
			}
		}
	}
}

// shardFor returns the single-character shard directory Photos uses to
// avoid one giant flat originals/ directory: the first character of the
// asset's UUID, uppercased.
func shardFor(aid string) string {
	if aid == "" {
		return "0"
	}
	return strings.ToUpper(aid[:1])
}

// extensionForUTI maps a uniform type identifier to its on-disk extension,
// falling back to whatever extension the catalog's own filename column
// carries when the UTI is unrecognized.
func extensionForUTI(uti, fallbackFilename string) string {
	switch uti {
	case "public.jpeg":
		return ".jpeg"
	case "public.heic":
		return ".heic"
	case "public.png":
		return ".png"
	case "com.compuserve.gif":
		return ".gif"
	case "com.apple.quicktime-movie":
		return ".mov"
	case "public.mpeg-4":
		return ".mp4"
	case "com.canon.cr2-raw-image":
		return ".cr2"
	case "com.canon.cr3-raw-image":
		return ".cr3"
	case "com.adobe.raw-image", "public.camera-raw-image":
		return ".dng"
	}
	if i := strings.LastIndexByte(fallbackFilename, '.'); i >= 0 {
		return fallbackFilename[i:]
	}
	return ""
}
