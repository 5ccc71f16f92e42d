// Package dialect identifies which major Photos library generation a
// snapshot was written by and hands back the table/column names that vary
// across that generation, so the catalog loader never hard-codes a schema
// version (§4.B).
package dialect

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"
)

// Generation is a major version of the on-disk Photos library schema.
type Generation int

const (
	Unknown Generation = iota
	G2
	G3
	G4
	G5
	G6
	G7
	G8
)

func (g Generation) String() string {
	switch g {
	case G2:
		return "G2"
	case G3:
		return "G3"
	case G4:
		return "G4"
	case G5:
		return "G5"
	case G6:
		return "G6"
	case G7:
		return "G7"
	case G8:
		return "G8"
	default:
		return "unknown"
	}
}

// Dialect names every query-relevant identifier that varies by generation.
type Dialect struct {
	Generation Generation

	// AssetTable is "RKMaster" for G2/G3, "ZGENERICASSET" for G4/G5, or
	// "ZASSET" from G6 on.
	AssetTable string
	// CloudOwnerColumn names the column (on AssetTable or a join table)
	// holding the shared-asset cloud-owner identity; empty when the
	// generation predates shared libraries.
	CloudOwnerColumn string
	// AdditionalAttributesTable holds original filename / master fingerprint.
	AdditionalAttributesTable string
	// AttributesTable holds orientation, EXIF subset, dimension columns.
	AttributesTable string
	// ExtendedAttributesTable holds ancillary EXIF-derived columns present
	// from G5 onward.
	ExtendedAttributesTable string
	// ComputedAttributesTable holds some of the boolean special-type flags
	// on later generations that split them out of AssetTable.
	ComputedAttributesTable string
	// KeywordJoinTable is the many-to-many asset<->keyword join table name.
	KeywordJoinTable string
	// AlbumTable / FolderTable name the container hierarchy tables; Photos
	// generations G4+ collapse albums and folders into one table
	// discriminated by a "kind" column, so FolderTable may equal AlbumTable.
	AlbumTable  string
	FolderTable string
	// SearchInfoAvailable is false pre-G5 (§4.D.4).
	SearchInfoAvailable bool
	// MomentTable names the per-generation "moment"/"day"/"event" grouping
	// table, empty when the generation has no such concept queryable here.
	MomentTable string
}

// dialectsByGeneration is the authoritative table of per-generation names.
// Values are the ones observed across real library samples. The table names
// no raw-is-original column; the catalog loader (derive.go) sets
// RawIsOriginal on the RAW member of every filename-stem pair the same way
// for every generation.
var dialectsByGeneration = map[Generation]Dialect{
	G2: {
		Generation:                G2,
		AssetTable:                "RKMaster",
		AdditionalAttributesTable: "RKAdditionalMetadata",
		AttributesTable:           "RKVersion",
		KeywordJoinTable:          "RKKeywordForVersion",
		AlbumTable:                "RKAlbum",
		FolderTable:               "RKFolder",
		SearchInfoAvailable:       false,
	},
	G3: {
		Generation:                G3,
		AssetTable:                "RKMaster",
		AdditionalAttributesTable: "RKAdditionalMetadata",
		AttributesTable:           "RKVersion",
		KeywordJoinTable:          "RKKeywordForVersion",
		AlbumTable:                "RKAlbum",
		FolderTable:               "RKFolder",
		SearchInfoAvailable:       false,
	},
	G4: {
		Generation:                G4,
		AssetTable:                "ZGENERICASSET",
		AdditionalAttributesTable: "ZADDITIONALASSETATTRIBUTES",
		AttributesTable:           "ZEXTENDEDATTRIBUTES",
		KeywordJoinTable:          "Z_1KEYWORDS",
		AlbumTable:                "ZGENERICALBUM",
		FolderTable:               "ZGENERICALBUM",
		SearchInfoAvailable:       false,
	},
	G5: {
		Generation:                G5,
		AssetTable:                "ZGENERICASSET",
		AdditionalAttributesTable: "ZADDITIONALASSETATTRIBUTES",
		AttributesTable:           "ZEXTENDEDATTRIBUTES",
		ExtendedAttributesTable:   "ZEXTENDEDATTRIBUTES",
		KeywordJoinTable:          "Z_1KEYWORDS",
		AlbumTable:                "ZGENERICALBUM",
		FolderTable:               "ZGENERICALBUM",
		SearchInfoAvailable:       true,
		MomentTable:               "ZMOMENT",
	},
	G6: {
		Generation:                G6,
		AssetTable:                "ZASSET",
		CloudOwnerColumn:          "ZCLOUDOWNERHASHEDPERSONID",
		AdditionalAttributesTable: "ZADDITIONALASSETATTRIBUTES",
		AttributesTable:           "ZEXTENDEDATTRIBUTES",
		ExtendedAttributesTable:   "ZEXTENDEDATTRIBUTES",
		ComputedAttributesTable:   "ZCLOUDMASTER",
		KeywordJoinTable:          "Z_1KEYWORDS",
		AlbumTable:                "ZGENERICALBUM",
		FolderTable:               "ZGENERICALBUM",
		SearchInfoAvailable:       true,
		MomentTable:               "ZMOMENT",
	},
	G7: {
		Generation:                G7,
		AssetTable:                "ZASSET",
		CloudOwnerColumn:          "ZCLOUDOWNERHASHEDPERSONID",
		AdditionalAttributesTable: "ZADDITIONALASSETATTRIBUTES",
		AttributesTable:           "ZEXTENDEDATTRIBUTES",
		ExtendedAttributesTable:   "ZEXTENDEDATTRIBUTES",
		ComputedAttributesTable:   "ZCLOUDMASTER",
		KeywordJoinTable:          "Z_1KEYWORDS",
		AlbumTable:                "ZGENERICALBUM",
		FolderTable:               "ZGENERICALBUM",
		SearchInfoAvailable:       true,
		MomentTable:               "ZMOMENT",
	},
	G8: {
		Generation:                G8,
		AssetTable:                "ZASSET",
		CloudOwnerColumn:          "ZCLOUDOWNERHASHEDPERSONID",
		AdditionalAttributesTable: "ZADDITIONALASSETATTRIBUTES",
		AttributesTable:           "ZEXTENDEDATTRIBUTES",
		ExtendedAttributesTable:   "ZEXTENDEDATTRIBUTES",
		ComputedAttributesTable:   "ZCLOUDMASTER",
		KeywordJoinTable:          "Z_1KEYWORDS",
		AlbumTable:                "ZGENERICALBUM",
		FolderTable:               "ZGENERICALBUM",
		SearchInfoAvailable:       true,
		MomentTable:               "ZMOMENT",
	},
}

// versionToGeneration maps the numeric Z_METADATA/Z_MODELCACHE model
// version observed in the catalog to a known generation. Unknown versions
// fall back to the nearest known generation below the observed one, per
// §4.B "attempt to continue by matching the highest known generation below
// the observed one".
var versionToGeneration = []struct {
	minModelVersion int
	generation      Generation
}{
	{0, G2},
	{3000, G3},
	{6000, G4},
	{8000, G5},
	{11000, G6},
	{14000, G7},
	{17000, G8},
}

// modelVersionCeiling is the first model version past the newest generation
// in versionToGeneration; anything at or above it is newer than every known
// generation.
const modelVersionCeiling = 20000

// Detect reads the catalog's own metadata table to determine the library
// generation and returns the matching dialect. Unknown/future generations
// degrade to the highest known generation below the observed version and
// log a one-time warning instead of failing, per §4.B.
func Detect(db *sql.DB, log zerolog.Logger) (Dialect, error) {
	version, err := readModelVersion(db)
	if err != nil {
		return Dialect{}, fmt.Errorf("dialect: reading model version: %w", err)
	}

	gen, exact := generationForVersion(version)
	if !exact {
		log.Warn().Int("model_version", version).Stringer("falling_back_to", gen).
			Msg("dialect: unrecognized library generation, attempting highest known generation below it")
	}

	d, ok := dialectsByGeneration[gen]
	if !ok {
		return Dialect{}, fmt.Errorf("dialect: no dialect registered for generation %s", gen)
	}
	return d, nil
}

// readModelVersion looks for the Z_METADATA table's model version, falling
// back to the G2/G3-era "version" pragma-like table when that table is
// absent. Both lookups are "any SQL error degrades to unknown" per §4.B, so
// an unexpected layout returns version 0 (mapped to G2) rather than error.
func readModelVersion(db *sql.DB) (int, error) {
	var version int
	err := db.QueryRow(`SELECT Z_VERSION FROM Z_METADATA WHERE Z_PLIST LIKE '%PLModelVersion%' LIMIT 1`).Scan(&version)
	if err == nil {
		return version, nil
	}

	err = db.QueryRow(`SELECT version FROM LibraryVersion LIMIT 1`).Scan(&version)
	if err == nil {
		return version, nil
	}

	// Neither metadata shape was found; this is not necessarily fatal — the
	// session still loads under the lowest known generation's dialect.
	return 0, nil
}

// generationForVersion returns the generation whose threshold the observed
// version falls into, plus whether that match was exact (version landed
// strictly below the next generation's threshold, or, for the newest known
// generation, below modelVersionCeiling). A version at or beyond
// modelVersionCeiling still resolves to the newest known generation, but
// exact is false so the caller can warn.
func generationForVersion(version int) (gen Generation, exact bool) {
	gen = Unknown
	for i, entry := range versionToGeneration {
		if version < entry.minModelVersion {
			break
		}
		gen = entry.generation
		next := modelVersionCeiling
		if i+1 < len(versionToGeneration) {
			next = versionToGeneration[i+1].minModelVersion
		}
		exact = version < next
	}
	if gen == Unknown {
		gen = G2
		exact = false
	}
	return gen, exact
}
