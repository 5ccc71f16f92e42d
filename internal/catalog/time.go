package catalog

import (
	"database/sql"
	"time"

	"github.com/mdriscoll/photoslib/internal/plist"
)

// coreDataTimeFromFloat converts a Core Data timestamp (seconds since the
// Apple epoch, as stored by ZASSET/ZGENERICASSET date columns) into a UTC
// time.Time. An invalid/null column yields the zero time rather than
// erroring, matching the "degrade this attribute" posture of §7.
func coreDataTimeFromFloat(v sql.NullFloat64) time.Time {
	if !v.Valid {
		return time.Time{}
	}
	return plist.AppleEpoch.Add(time.Duration(v.Float64 * float64(time.Second)))
}

// appleEpochFromSeconds is the same conversion used for the legacy
// RKVersion schema's imageDate/lastModifiedDate columns, which use the same
// reference epoch as the modern Core Data schema.
func appleEpochFromSeconds(v sql.NullFloat64) time.Time {
	return coreDataTimeFromFloat(v)
}
