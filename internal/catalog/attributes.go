package catalog

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mdriscoll/photoslib/internal/dialect"
	"github.com/mdriscoll/photoslib/internal/model"
)

// loadBaseAttributes populates one model.Asset per row of the dialect's
// asset table: identity, filenames, dates, title/description, trash/hidden/
// favorite flags, and the UTI/dimension/orientation columns carried on the
// asset row itself. Cloud and extended columns are filled in by
// loadCloudAttributes and loadExtendedAttributes so a join failure in either
// degrades that attribute to its zero value rather than aborting the asset
// (§7 Decode downgrade path).
func loadBaseAttributes(db *sql.DB, d dialect.Dialect, lib *model.Library, log zerolog.Logger) error {
	clear(assetPKToAID)
	if isLegacyGeneration(d) {
		return loadBaseAttributesLegacy(db, d, lib, log)
	}
	return loadBaseAttributesModern(db, d, lib, log)
}

func loadBaseAttributesModern(db *sql.DB, d dialect.Dialect, lib *model.Library, log zerolog.Logger) error {
	query := fmt.Sprintf(`
		SELECT
			a.Z_PK, a.ZUUID, a.ZFILENAME, a.ZDATECREATED, a.ZMODIFICATIONDATE,
			a.ZTRASHEDSTATE, a.ZTRASHEDDATE, a.ZFAVORITE, a.ZHIDDEN,
			a.ZLATITUDE, a.ZLONGITUDE, a.ZWIDTH, a.ZHEIGHT, a.ZORIENTATION,
			a.ZKIND, a.ZUNIFORMTYPEIDENTIFIER, a.ZDIRECTORY,
			aa.ZORIGINALFILENAME, aa.ZTITLE, aa.Z_PK
		FROM %s a
		LEFT JOIN %s aa ON aa.ZASSET = a.Z_PK
	`, d.AssetTable, d.AdditionalAttributesTable)

	rows, err := db.Query(query)
	if err != nil {
		return fmt.Errorf("catalog: querying %s: %w", d.AssetTable, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			pk                                        int64
			uuid, filename, uti, directory            sql.NullString
			createdAt, modifiedAt, trashedAt           sql.NullFloat64
			trashedState, favorite, hidden             sql.NullInt64
			lat, lon                                   sql.NullFloat64
			width, height, orientation, kind           sql.NullInt64
			originalFilename, title                    sql.NullString
			additionalPK                                sql.NullInt64
		)
		if err := rows.Scan(&pk, &uuid, &filename, &createdAt, &modifiedAt,
			&trashedState, &trashedAt, &favorite, &hidden,
			&lat, &lon, &width, &height, &orientation,
			&kind, &uti, &directory,
			&originalFilename, &title, &additionalPK); err != nil {
			log.Warn().Err(err).Msg("catalog: skipping asset row with unreadable columns")
			continue
		}
		if !uuid.Valid {
			continue
		}

		a := &model.Asset{AID: uuid.String}
		a.CurrentFilename = filename.String
		a.OriginalFilename = originalFilename.String
		if a.OriginalFilename == "" {
			a.OriginalFilename = a.CurrentFilename
		}
		a.Title = title.String
		a.CreatedAt = coreDataTimeFromFloat(createdAt)
		if modifiedAt.Valid {
			t := coreDataTimeFromFloat(modifiedAt)
			a.ModifiedAt = &t
		}
		a.InTrash = trashedState.Valid && trashedState.Int64 != 0
		if trashedAt.Valid {
			t := coreDataTimeFromFloat(trashedAt)
			a.TrashAt = &t
		}
		a.Favorite = favorite.Valid && favorite.Int64 != 0
		a.Hidden = hidden.Valid && hidden.Int64 != 0
		if lat.Valid && lon.Valid && !(lat.Float64 == 0 && lon.Float64 == 0) {
			a.Location = model.LatLon{Lat: lat.Float64, Lon: lon.Float64, Valid: true}
		}
		a.PixelsCurrent = model.Dimensions{Width: int(width.Int64), Height: int(height.Int64)}
		a.PixelsOriginal = a.PixelsCurrent
		a.OrientationCurrent = int(orientation.Int64)
		a.OrientationOriginal = a.OrientationCurrent
		a.UTIs.Current = uti.String
		a.UTIs.Original = uti.String
		if kind.Valid && kind.Int64 == 1 {
			a.Media = model.MediaVideo
		}

		lib.AddAsset(a)
		assetPKToAID[pk] = a.AID
	}
	return rows.Err()
}

func loadBaseAttributesLegacy(db *sql.DB, d dialect.Dialect, lib *model.Library, log zerolog.Logger) error {
	query := fmt.Sprintf(`
		SELECT
			m.modelId, m.uuid, m.originalFileName, m.imagePath,
			v.fileName, v.imageDate, v.lastModifiedDate, v.isInTrash,
			v.isFavorite, v.isHidden, v.latitude, v.longitude,
			v.imageTimeZoneOffsetSeconds, v.rawOrientation, v.mainRating,
			v.name, v.versionNumber
		FROM %s m
		JOIN %s v ON v.masterUuid = m.uuid AND v.isInTrash = v.isInTrash
	`, d.AssetTable, d.AttributesTable)

	rows, err := db.Query(query)
	if err != nil {
		return fmt.Errorf("catalog: querying legacy %s/%s: %w", d.AssetTable, d.AttributesTable, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			pk                                    int64
			uuid, originalFilename, imagePath     sql.NullString
			filename                              sql.NullString
			imageDate, modifiedDate               sql.NullFloat64
			inTrash, favorite, hidden             sql.NullInt64
			lat, lon                              sql.NullFloat64
			tzOffset                              sql.NullInt64
			orientation, rating                   sql.NullInt64
			title                                 sql.NullString
			versionNumber                         sql.NullInt64
		)
		if err := rows.Scan(&pk, &uuid, &originalFilename, &imagePath,
			&filename, &imageDate, &modifiedDate, &inTrash,
			&favorite, &hidden, &lat, &lon,
			&tzOffset, &orientation, &rating,
			&title, &versionNumber); err != nil {
			log.Warn().Err(err).Msg("catalog: skipping legacy asset row with unreadable columns")
			continue
		}
		if !uuid.Valid {
			continue
		}

		a := &model.Asset{AID: uuid.String}
		a.OriginalFilename = originalFilename.String
		a.CurrentFilename = filename.String
		if a.CurrentFilename == "" {
			a.CurrentFilename = a.OriginalFilename
		}
		a.Title = title.String
		a.CreatedAt = appleEpochFromSeconds(imageDate)
		if modifiedDate.Valid {
			t := appleEpochFromSeconds(modifiedDate)
			a.ModifiedAt = &t
		}
		a.CreatedTZOffset = int(tzOffset.Int64) / 60
		a.InTrash = inTrash.Valid && inTrash.Int64 != 0
		a.Favorite = favorite.Valid && favorite.Int64 != 0
		a.Hidden = hidden.Valid && hidden.Int64 != 0
		if lat.Valid && lon.Valid && !(lat.Float64 == 0 && lon.Float64 == 0) {
			a.Location = model.LatLon{Lat: lat.Float64, Lon: lon.Float64, Valid: true}
		}
		a.OrientationCurrent = int(orientation.Int64)
		a.OrientationOriginal = a.OrientationCurrent
		a.ExternallyEdited = versionNumber.Valid && versionNumber.Int64 > 0

		lib.AddAsset(a)
		assetPKToAID[pk] = a.AID
	}
	return rows.Err()
}

// assetPKToAID bridges the integer primary keys used by join tables (faces,
// album membership, keywords) back to the stable string AID the rest of the
// model uses. It is cleared and repopulated at the start of each Load call
// by loadBaseAttributes running first; catalog.Load is never called
// concurrently against the same process-wide map, matching the "one Library
// per session" usage the spec assumes.
var assetPKToAID = make(map[int64]string)

// loadCloudAttributes fills in CloudStatus for generations that carry a
// cloud-owner column. Its absence (pre-shared-library generations) leaves
// every asset at CloudStatusNone, which is the correct default.
func loadCloudAttributes(db *sql.DB, d dialect.Dialect, lib *model.Library, log zerolog.Logger) error {
	if d.CloudOwnerColumn == "" || isLegacyGeneration(d) {
		return nil
	}
	query := fmt.Sprintf(`SELECT Z_PK, %s FROM %s`, d.CloudOwnerColumn, d.AssetTable)
	rows, err := db.Query(query)
	if err != nil {
		// Some generations' asset table omits this column depending on
		// library history; degrade rather than fail the whole load.
		log.Debug().Err(err).Msg("catalog: cloud attribute query unavailable, leaving CloudStatusNone")
		return nil
	}
	defer rows.Close()

	for rows.Next() {
		var pk int64
		var owner sql.NullString
		if err := rows.Scan(&pk, &owner); err != nil {
			continue
		}
		aid, ok := assetPKToAID[pk]
		if !ok {
			continue
		}
		a, _ := lib.Asset(aid)
		if a == nil {
			continue
		}
		if owner.Valid && owner.String != "" {
			a.Cloud = model.CloudStatusUploaded
		}
	}
	return rows.Err()
}

// loadExtendedAttributes fills in OriginalByteSize from the extended
// attributes table (G5+). The camera make/model/lens columns are read but
// not stored, and no RAW-companion or edited-UTI field is set here; pre-G5
// generations leave OriginalByteSize at zero.
func loadExtendedAttributes(db *sql.DB, d dialect.Dialect, lib *model.Library, log zerolog.Logger) error {
	if d.ExtendedAttributesTable == "" {
		return nil
	}
	query := fmt.Sprintf(`
		SELECT ZASSET, ZFILESIZE, ZCAMERAMAKE, ZCAMERAMODEL, ZLENSMODEL
		FROM %s
	`, d.ExtendedAttributesTable)
	rows, err := db.Query(query)
	if err != nil {
		log.Debug().Err(err).Msg("catalog: extended attribute query unavailable")
		return nil
	}
	defer rows.Close()

	for rows.Next() {
		var pk int64
		var fileSize sql.NullInt64
		var make_, model_, lens sql.NullString
		if err := rows.Scan(&pk, &fileSize, &make_, &model_, &lens); err != nil {
			continue
		}
		aid, ok := assetPKToAID[pk]
		if !ok {
			continue
		}
		a, _ := lib.Asset(aid)
		if a == nil {
			continue
		}
		a.OriginalByteSize = fileSize.Int64
	}
	return rows.Err()
}
