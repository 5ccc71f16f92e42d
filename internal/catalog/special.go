package catalog

import (
	"database/sql"

	"github.com/rs/zerolog"

	"github.com/mdriscoll/photoslib/internal/dialect"
	"github.com/mdriscoll/photoslib/internal/model"
)

// loadBurstAndSpecialTypes fills in the boolean special-type flags and
// burst-set grouping. Photos' internal name for a burst set predates the
// public "burst" terminology (it is stored as an "avalanche" UUID on the
// asset row), which the catalog loader translates into the model's
// BurstSetID/IsBurst/BurstSelected fields so nothing downstream needs to
// know that history.
func loadBurstAndSpecialTypes(db *sql.DB, d dialect.Dialect, lib *model.Library, log zerolog.Logger) error {
	if isLegacyGeneration(d) {
		return nil
	}

	rows, err := db.Query(`
		SELECT ZUUID, ZAVALANCHEUUID, ZAVALANCHEPICKTYPE, ZKINDSUBTYPE,
			ZCUSTOMRENDEREDVALUE, ZUNIFORMTYPEIDENTIFIER
		FROM ZASSET
	`)
	if err != nil {
		log.Debug().Err(err).Msg("catalog: special-type query unavailable")
		return nil
	}
	defer rows.Close()

	for rows.Next() {
		var aid sql.NullString
		var burstUUID sql.NullString
		var pickType, kindSubtype, customRendered sql.NullInt64
		var uti sql.NullString
		if err := rows.Scan(&aid, &burstUUID, &pickType, &kindSubtype, &customRendered, &uti); err != nil {
			continue
		}
		a, ok := lib.Asset(aid.String)
		if !ok {
			continue
		}

		if burstUUID.Valid && burstUUID.String != "" {
			id := burstUUID.String
			a.BurstSetID = &id
			a.IsBurst = true
			// Pick type 2 is the "selected representative" marker Photos
			// assigns to exactly one member of every burst set.
			a.BurstSelected = pickType.Valid && pickType.Int64 == 2
		}

		switch kindSubtype.Int64 {
		case 1:
			a.IsPanorama = true
		case 2:
			a.IsHDR = true
		case 10:
			a.IsScreenshot = true
		case 100:
			a.IsLive = true
		case 103:
			a.IsTimeLapse = true
		case 104:
			a.IsSlowMo = true
		case 3:
			a.IsPortrait = true
		}
		a.IsSelfie = kindSubtype.Valid && kindSubtype.Int64 == 9
		a.HasAdjustments = customRendered.Valid && customRendered.Int64 != 0
	}
	return rows.Err()
}
