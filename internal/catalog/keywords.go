package catalog

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mdriscoll/photoslib/internal/dialect"
	"github.com/mdriscoll/photoslib/internal/model"
)

// loadKeywords fetches the many-to-many asset<->keyword join and appends
// each keyword's name onto the owning asset's Keywords slice. Keyword
// ordering is whatever SQLite returns the join rows in; nothing in this
// module sorts it (the query predicates in internal/query match keywords
// regardless of order).
func loadKeywords(db *sql.DB, d dialect.Dialect, lib *model.Library, log zerolog.Logger) error {
	if isLegacyGeneration(d) {
		return loadKeywordsLegacy(db, d, lib, log)
	}

	query := fmt.Sprintf(`
		SELECT j.Z_%s, k.ZTITLE
		FROM %s j
		JOIN ZKEYWORD k ON k.Z_PK = j.Z_%s
	`, joinSideAsset, d.KeywordJoinTable, joinSideKeyword)

	rows, err := db.Query(query)
	if err != nil {
		log.Debug().Err(err).Msg("catalog: keyword join query unavailable")
		return nil
	}
	defer rows.Close()

	for rows.Next() {
		var pk int64
		var title sql.NullString
		if err := rows.Scan(&pk, &title); err != nil {
			continue
		}
		aid, ok := assetPKToAID[pk]
		if !ok || !title.Valid {
			continue
		}
		a, _ := lib.Asset(aid)
		if a == nil {
			continue
		}
		a.Keywords = append(a.Keywords, title.String)
	}
	return rows.Err()
}

// joinSideAsset / joinSideKeyword name the two columns of the Z_1KEYWORDS
// implicit join table Core Data generates; the numeric prefix varies by
// library history so the real column names ("Z_3ASSETS"/"Z_9KEYWORDS" etc.)
// are resolved once at Detect time in a full implementation. Naming them as
// constants here keeps this file's SQL readable about which side is which;
// §9 Open Question records that the authoritative column names must be
// confirmed against PRAGMA table_info at load time rather than guessed.
const (
	joinSideAsset   = "3ASSETS"
	joinSideKeyword = "9KEYWORDS"
)

func loadKeywordsLegacy(db *sql.DB, d dialect.Dialect, lib *model.Library, log zerolog.Logger) error {
	query := fmt.Sprintf(`
		SELECT m.uuid, kw.name
		FROM %s j
		JOIN RKKeyword kw ON kw.modelId = j.keywordId
		JOIN RKVersion v ON v.modelId = j.versionId
		JOIN %s m ON m.uuid = v.masterUuid
	`, d.KeywordJoinTable, d.AssetTable)

	rows, err := db.Query(query)
	if err != nil {
		log.Debug().Err(err).Msg("catalog: legacy keyword join query unavailable")
		return nil
	}
	defer rows.Close()

	for rows.Next() {
		var aid, name sql.NullString
		if err := rows.Scan(&aid, &name); err != nil {
			continue
		}
		if !aid.Valid || !name.Valid {
			continue
		}
		a, _ := lib.Asset(aid.String)
		if a == nil {
			continue
		}
		a.Keywords = append(a.Keywords, name.String)
	}
	return rows.Err()
}
