package catalog

import (
	"database/sql"

	"github.com/rs/zerolog"

	"github.com/mdriscoll/photoslib/internal/dialect"
	"github.com/mdriscoll/photoslib/internal/model"
)

// loadImportSessions fetches the import-session grouping and assigns each
// asset's ImportSessionID.
func loadImportSessions(db *sql.DB, d dialect.Dialect, lib *model.Library, log zerolog.Logger) error {
	if isLegacyGeneration(d) {
		return loadImportSessionsLegacy(db, d, lib, log)
	}

	rows, err := db.Query(`
		SELECT s.ZUUID, s.ZSTARTDATE, s.ZENDDATE, a.ZUUID
		FROM ZIMPORTSESSION s
		JOIN ZASSET a ON a.ZIMPORTSESSION = s.Z_PK
	`)
	if err != nil {
		log.Debug().Err(err).Msg("catalog: import session query unavailable")
		return nil
	}
	defer rows.Close()

	sessions := make(map[string]*model.ImportSession)
	for rows.Next() {
		var sessionID, assetID sql.NullString
		var started, ended sql.NullFloat64
		if err := rows.Scan(&sessionID, &started, &ended, &assetID); err != nil {
			continue
		}
		if !sessionID.Valid || !assetID.Valid {
			continue
		}
		s, ok := sessions[sessionID.String]
		if !ok {
			s = &model.ImportSession{
				ID:        sessionID.String,
				StartedAt: coreDataTimeFromFloat(started),
				EndedAt:   coreDataTimeFromFloat(ended),
			}
			s.CreatedAt = s.StartedAt
			sessions[sessionID.String] = s
		}
		s.AssetIDs = append(s.AssetIDs, assetID.String)
		if a, ok := lib.Asset(assetID.String); ok {
			id := sessionID.String
			a.ImportSessionID = &id
		}
	}
	for _, s := range sessions {
		lib.AddImportSession(s)
	}
	return rows.Err()
}

func loadImportSessionsLegacy(db *sql.DB, d dialect.Dialect, lib *model.Library, log zerolog.Logger) error {
	rows, err := db.Query(`
		SELECT s.uuid, s.importDate, m.uuid
		FROM RKImportGroup s
		JOIN RKMaster m ON m.importGroupUuid = s.uuid
	`)
	if err != nil {
		log.Debug().Err(err).Msg("catalog: legacy import session query unavailable")
		return nil
	}
	defer rows.Close()

	sessions := make(map[string]*model.ImportSession)
	for rows.Next() {
		var sessionID, assetID sql.NullString
		var imported sql.NullFloat64
		if err := rows.Scan(&sessionID, &imported, &assetID); err != nil {
			continue
		}
		if !sessionID.Valid || !assetID.Valid {
			continue
		}
		s, ok := sessions[sessionID.String]
		if !ok {
			s = &model.ImportSession{ID: sessionID.String, StartedAt: appleEpochFromSeconds(imported), CreatedAt: appleEpochFromSeconds(imported)}
			sessions[sessionID.String] = s
		}
		s.AssetIDs = append(s.AssetIDs, assetID.String)
		if a, ok := lib.Asset(assetID.String); ok {
			id := sessionID.String
			a.ImportSessionID = &id
		}
	}
	for _, s := range sessions {
		lib.AddImportSession(s)
	}
	return rows.Err()
}
