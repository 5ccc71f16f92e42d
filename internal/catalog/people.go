package catalog

import (
	"database/sql"
	"sort"

	"github.com/rs/zerolog"

	"github.com/mdriscoll/photoslib/internal/dialect"
	"github.com/mdriscoll/photoslib/internal/model"
)

// loadPersonsAndFaces fetches the named-face clusters and the individual
// detected-face instances belonging to each asset, including the normalized
// region geometry used by the XMP sidecar writer (§4.H.2).
func loadPersonsAndFaces(db *sql.DB, d dialect.Dialect, lib *model.Library, log zerolog.Logger) error {
	if isLegacyGeneration(d) {
		return loadPersonsAndFacesLegacy(db, d, lib, log)
	}

	personRows, err := db.Query(`SELECT ZPERSONUUID, ZFULLNAME, ZDISPLAYNAME, ZFACECOUNT, ZKEYFACE FROM ZPERSON`)
	if err != nil {
		log.Debug().Err(err).Msg("catalog: person query unavailable")
		return nil
	}
	for personRows.Next() {
		var id, fullName, displayName sql.NullString
		var faceCount, keyFace sql.NullInt64
		if err := personRows.Scan(&id, &fullName, &displayName, &faceCount, &keyFace); err != nil {
			continue
		}
		if !id.Valid {
			continue
		}
		lib.AddPerson(&model.Person{
			ID:          id.String,
			FullName:    fullName.String,
			DisplayName: displayName.String,
			FaceCount:   int(faceCount.Int64),
		})
	}
	personRows.Close()
	if err := personRows.Err(); err != nil {
		return err
	}

	faceRows, err := db.Query(`
		SELECT f.ZUUID, a.ZUUID, p.ZPERSONUUID,
			f.ZCENTERX, f.ZCENTERY, f.ZQUALITY,
			f.ZROLL, f.ZPITCH, f.ZYAW
		FROM ZDETECTEDFACE f
		JOIN ZASSET a ON a.Z_PK = f.ZASSETFORFACE
		LEFT JOIN ZPERSON p ON p.Z_PK = f.ZPERSONFORFACE
	`)
	if err != nil {
		log.Debug().Err(err).Msg("catalog: face query unavailable")
		return nil
	}
	defer faceRows.Close()

	for faceRows.Next() {
		var faceID, assetID, personID sql.NullString
		var centerX, centerY, quality, roll, pitch, yaw sql.NullFloat64
		if err := faceRows.Scan(&faceID, &assetID, &personID, &centerX, &centerY, &quality, &roll, &pitch, &yaw); err != nil {
			continue
		}
		if !faceID.Valid || !assetID.Valid {
			continue
		}
		f := &model.Face{
			ID:       faceID.String,
			AssetID:  assetID.String,
			PersonID: personID.String,
			CenterX:  centerX.Float64,
			CenterY:  centerY.Float64,
			Quality:  quality.Float64,
			Roll:     roll.Float64,
			Pitch:    pitch.Float64,
			Yaw:      yaw.Float64,
		}
		f.Region = faceRegionFromCenter(f.CenterX, f.CenterY)
		lib.AddFace(f)

		if a, ok := lib.Asset(assetID.String); ok {
			a.PersonIDs = append(a.PersonIDs, personID.String)
		}
		if personID.Valid {
			if p, ok := lib.Person(personID.String); ok {
				p.FaceIDs = append(p.FaceIDs, faceID.String)
				if p.KeyAssetID == "" {
					p.KeyAssetID = assetID.String
				}
			}
		}
	}
	if err := faceRows.Err(); err != nil {
		return err
	}
	for _, p := range lib.Persons() {
		sort.SliceStable(p.FaceIDs, func(i, j int) bool {
			fi, _ := lib.Face(p.FaceIDs[i])
			fj, _ := lib.Face(p.FaceIDs[j])
			return fi.Quality > fj.Quality
		})
	}
	return nil
}

func loadPersonsAndFacesLegacy(db *sql.DB, d dialect.Dialect, lib *model.Library, log zerolog.Logger) error {
	personRows, err := db.Query(`SELECT uuid, name, faceCount FROM RKPerson`)
	if err != nil {
		log.Debug().Err(err).Msg("catalog: legacy person query unavailable")
		return nil
	}
	defer personRows.Close()
	for personRows.Next() {
		var id, name sql.NullString
		var faceCount sql.NullInt64
		if err := personRows.Scan(&id, &name, &faceCount); err != nil {
			continue
		}
		if !id.Valid {
			continue
		}
		lib.AddPerson(&model.Person{ID: id.String, FullName: name.String, DisplayName: name.String, FaceCount: int(faceCount.Int64)})
	}
	return personRows.Err()
}

// faceRegionFromCenter derives the top-left/width-height box the spec also
// requires (§4.H.2) from the fractional center Photos stores, using a fixed
// nominal box size since the legacy/modern schemas don't always carry an
// explicit width/height for detected faces.
func faceRegionFromCenter(cx, cy float64) model.FaceRegion {
	const nominal = 0.15
	return model.FaceRegion{
		X: cx - nominal/2, Y: cy - nominal/2,
		Width: nominal, Height: nominal,
		CenterX: cx, CenterY: cy,
	}
}
