package catalog

import (
	"database/sql"

	"github.com/rs/zerolog"

	"github.com/mdriscoll/photoslib/internal/dialect"
	"github.com/mdriscoll/photoslib/internal/model"
	"github.com/mdriscoll/photoslib/internal/plist"
)

// loadSearchInfo decodes the per-asset search metadata blob (G5+ only,
// §4.D.4) through the plist package and fills in model.SearchInfo. Earlier
// generations leave every asset's Search field at its zero value.
func loadSearchInfo(db *sql.DB, d dialect.Dialect, lib *model.Library, log zerolog.Logger) error {
	if !d.SearchInfoAvailable {
		return nil
	}

	rows, err := db.Query(`
		SELECT a.ZUUID, si.ZLOCATIONDATA
		FROM ZASSET a
		JOIN ZASSETSEARCHINFO si ON si.ZASSET = a.Z_PK
	`)
	if err != nil {
		log.Debug().Err(err).Msg("catalog: search info query unavailable")
		return nil
	}
	defer rows.Close()

	for rows.Next() {
		var aid sql.NullString
		var blob []byte
		if err := rows.Scan(&aid, &blob); err != nil {
			continue
		}
		if !aid.Valid || len(blob) == 0 {
			continue
		}
		a, ok := lib.Asset(aid.String)
		if !ok {
			continue
		}

		decoded, err := plist.Decode(blob)
		if err != nil {
			a.Warnings = append(a.Warnings, "search info: "+err.Error())
			continue
		}
		a.Search = searchInfoFromPlist(decoded)
		a.Place = placeFromPlist(decoded)
	}
	return rows.Err()
}

func stringListFrom(v plist.Value) []string {
	items, err := v.AsList()
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, err := item.AsString(); err == nil {
			out = append(out, s)
		}
	}
	return out
}

func searchInfoFromPlist(v plist.Value) model.SearchInfo {
	var s model.SearchInfo
	s.Labels = stringListFrom(v.Get("labels"))
	s.Streets = stringListFrom(v.Get("streets"))
	s.Neighborhoods = stringListFrom(v.Get("neighborhoods"))
	s.Localities = stringListFrom(v.Get("localities"))
	s.BodiesOfWater = stringListFrom(v.Get("bodiesOfWater"))
	s.Holidays = stringListFrom(v.Get("holidays"))
	s.Activities = stringListFrom(v.Get("activities"))
	s.Venues = stringListFrom(v.Get("venues"))
	s.VenueTypes = stringListFrom(v.Get("venueTypes"))
	s.MediaTypes = stringListFrom(v.Get("mediaTypes"))
	s.City, _ = v.Get("city").AsString()
	s.State, _ = v.Get("state").AsString()
	s.StateAbbrev, _ = v.Get("stateAbbreviation").AsString()
	s.Country, _ = v.Get("country").AsString()
	s.Month, _ = v.Get("month").AsString()
	s.Year, _ = v.Get("year").AsString()
	s.Season, _ = v.Get("season").AsString()
	return s
}

// placeFromPlist decodes the reverse-geocode fields that sit alongside
// search info in the same blob (§4.D.4) into model.Place. A blob with no
// countries, cities, areas of interest, full postal address or ISO country
// code yields a nil Place rather than an empty one, even when other place
// lists (states, sub-localities, ...) are present.
func placeFromPlist(v plist.Value) *model.Place {
	p := &model.Place{
		Countries:          stringListFrom(v.Get("countries")),
		StatesProvinces:    stringListFrom(v.Get("statesProvinces")),
		SubAdminAreas:      stringListFrom(v.Get("subAdminAreas")),
		Cities:             stringListFrom(v.Get("cities")),
		SubLocalities:      stringListFrom(v.Get("subLocalities")),
		AreasOfInterest:    stringListFrom(v.Get("areasOfInterest")),
		BodiesOfWater:      stringListFrom(v.Get("bodiesOfWater")),
		PostalAddressParts: stringListFrom(v.Get("postalAddressParts")),
	}
	p.PostalAddressFull, _ = v.Get("postalAddressFull").AsString()
	p.ISOCountryCode, _ = v.Get("isoCountryCode").AsString()
	p.IsHome, _ = v.Get("isHome").AsBool()

	if len(p.Countries) == 0 && len(p.Cities) == 0 && len(p.AreasOfInterest) == 0 &&
		p.PostalAddressFull == "" && p.ISOCountryCode == "" {
		return nil
	}
	return p
}
