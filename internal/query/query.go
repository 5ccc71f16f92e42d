// Package query implements the predicate-based asset selection engine
// (§4.F): a set of named predicate families AND'd together, with
// alternatives inside a single family treated as an OR.
package query

import (
	"regexp"
	"strings"
	"time"

	"github.com/mdriscoll/photoslib/internal/model"
)

// Predicate reports whether an asset matches one query clause.
type Predicate func(lib *model.Library, a *model.Asset) bool

// Query is an ordered list of predicates, ANDed together. Each predicate
// that represents "any of several values" (e.g. --keyword a --keyword b)
// is itself responsible for OR-ing its alternatives internally, since that
// OR only ever applies within a single family (§4.F.2).
type Query struct {
	predicates []Predicate
}

// New returns an empty query that matches everything; callers append
// predicates with the With* builders.
func New() *Query { return &Query{} }

func (q *Query) with(p Predicate) *Query {
	q.predicates = append(q.predicates, p)
	return q
}

// Match runs every predicate against lib and returns the matching assets in
// canonical library order (§4.F.4).
func (q *Query) Match(lib *model.Library) []*model.Asset {
	var out []*model.Asset
	for _, a := range lib.Assets() {
		if q.matches(lib, a) {
			out = append(out, a)
		}
	}
	return out
}

func (q *Query) matches(lib *model.Library, a *model.Asset) bool {
	for _, p := range q.predicates {
		if !p(lib, a) {
			return false
		}
	}
	return true
}

func containsFold(haystack []string, needle string) bool {
	for _, s := range haystack {
		if strings.EqualFold(s, needle) {
			return true
		}
	}
	return false
}

func anyFold(haystack []string, needles []string) bool {
	for _, n := range needles {
		if containsFold(haystack, n) {
			return true
		}
	}
	return false
}

// WithKeyword matches assets carrying any of the given keywords.
func (q *Query) WithKeyword(keywords ...string) *Query {
	return q.with(func(_ *model.Library, a *model.Asset) bool {
		return anyFold(a.Keywords, keywords)
	})
}

// WithNoKeyword matches assets carrying none of the given keywords; with no
// arguments it matches assets with zero keywords at all.
func (q *Query) WithNoKeyword(keywords ...string) *Query {
	return q.with(func(_ *model.Library, a *model.Asset) bool {
		if len(keywords) == 0 {
			return len(a.Keywords) == 0
		}
		return !anyFold(a.Keywords, keywords)
	})
}

// WithPerson matches assets with any of the given persons resolved by name.
func (q *Query) WithPerson(lib *model.Library, names ...string) *Query {
	ids := personIDsForNames(lib, names)
	return q.with(func(_ *model.Library, a *model.Asset) bool {
		for _, id := range a.PersonIDs {
			if containsFold(ids, id) {
				return true
			}
		}
		return false
	})
}

func personIDsForNames(lib *model.Library, names []string) []string {
	var ids []string
	for _, p := range lib.Persons() {
		if anyFold(names, []string{p.FullName, p.DisplayName}) {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

// WithAlbum matches assets in any album sharing one of the given titles,
// using the cross-album merge union (§4.F.2).
func (q *Query) WithAlbum(titles ...string) *Query {
	return q.with(func(lib *model.Library, a *model.Asset) bool {
		for _, title := range titles {
			for _, aid := range lib.MergedAlbumMembers(title) {
				if aid == a.AID {
					return true
				}
			}
		}
		return false
	})
}

// WithUUID matches assets whose AID is in the given list.
func (q *Query) WithUUID(uuids ...string) *Query {
	set := make(map[string]bool, len(uuids))
	for _, u := range uuids {
		set[u] = true
	}
	return q.with(func(_ *model.Library, a *model.Asset) bool { return set[a.AID] })
}

// WithTitleRegex matches assets whose title matches the given pattern.
func (q *Query) WithTitleRegex(pattern string) (*Query, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return q.with(func(_ *model.Library, a *model.Asset) bool { return re.MatchString(a.Title) }), nil
}

// WithDescriptionContains matches assets whose description contains needle
// (case-insensitive).
func (q *Query) WithDescriptionContains(needle string) *Query {
	return q.with(func(_ *model.Library, a *model.Asset) bool {
		return strings.Contains(strings.ToLower(a.Description), strings.ToLower(needle))
	})
}

// WithFavorite / WithHidden / WithEdited / WithShared filter on the
// corresponding boolean flags.
func (q *Query) WithFavorite(want bool) *Query {
	return q.with(func(_ *model.Library, a *model.Asset) bool { return a.Favorite == want })
}
func (q *Query) WithHidden(want bool) *Query {
	return q.with(func(_ *model.Library, a *model.Asset) bool { return a.Hidden == want })
}
func (q *Query) WithEdited(want bool) *Query {
	return q.with(func(_ *model.Library, a *model.Asset) bool { return (a.HasAdjustments || a.ExternallyEdited) == want })
}
func (q *Query) WithBurst(want bool) *Query {
	return q.with(func(_ *model.Library, a *model.Asset) bool { return a.IsBurst == want })
}
func (q *Query) WithLive(want bool) *Query {
	return q.with(func(_ *model.Library, a *model.Asset) bool { return a.IsLive == want })
}
func (q *Query) WithPortrait(want bool) *Query {
	return q.with(func(_ *model.Library, a *model.Asset) bool { return a.IsPortrait == want })
}
func (q *Query) WithHDR(want bool) *Query {
	return q.with(func(_ *model.Library, a *model.Asset) bool { return a.IsHDR == want })
}
func (q *Query) WithSelfie(want bool) *Query {
	return q.with(func(_ *model.Library, a *model.Asset) bool { return a.IsSelfie == want })
}
func (q *Query) WithScreenshot(want bool) *Query {
	return q.with(func(_ *model.Library, a *model.Asset) bool { return a.IsScreenshot == want })
}
func (q *Query) WithPanorama(want bool) *Query {
	return q.with(func(_ *model.Library, a *model.Asset) bool { return a.IsPanorama == want })
}
func (q *Query) WithSlowMo(want bool) *Query {
	return q.with(func(_ *model.Library, a *model.Asset) bool { return a.IsSlowMo == want })
}
func (q *Query) WithTimeLapse(want bool) *Query {
	return q.with(func(_ *model.Library, a *model.Asset) bool { return a.IsTimeLapse == want })
}

// WithOnlyPhotos / WithOnlyMovies restrict to one media kind.
func (q *Query) WithOnlyPhotos() *Query {
	return q.with(func(_ *model.Library, a *model.Asset) bool { return a.Media == model.MediaPhoto })
}
func (q *Query) WithOnlyMovies() *Query {
	return q.with(func(_ *model.Library, a *model.Asset) bool { return a.Media == model.MediaVideo })
}

// WithHasRaw matches assets that have a RAW companion.
func (q *Query) WithHasRaw(want bool) *Query {
	return q.with(func(_ *model.Library, a *model.Asset) bool { return a.HasRaw == want })
}

// WithIsReference matches reference (externally-managed, not copied into
// the library) assets.
func (q *Query) WithIsReference(want bool) *Query {
	return q.with(func(_ *model.Library, a *model.Asset) bool { return a.IsReference == want })
}

// WithPlaceContains matches assets whose resolved place data contains
// needle in any of the place's text fields.
func (q *Query) WithPlaceContains(needle string) *Query {
	needle = strings.ToLower(needle)
	return q.with(func(_ *model.Library, a *model.Asset) bool {
		if a.Place == nil {
			return false
		}
		fields := append(append(append([]string{}, a.Place.Countries...), a.Place.Cities...), a.Place.AreasOfInterest...)
		for _, f := range fields {
			if strings.Contains(strings.ToLower(f), needle) {
				return true
			}
		}
		return false
	})
}

// WithLabel matches assets whose search-info label list contains any of the
// given labels.
func (q *Query) WithLabel(labels ...string) *Query {
	return q.with(func(_ *model.Library, a *model.Asset) bool { return anyFold(a.Search.Labels, labels) })
}

// WithUTI matches assets whose current UTI is one of the given values.
func (q *Query) WithUTI(utis ...string) *Query {
	return q.with(func(_ *model.Library, a *model.Asset) bool {
		for _, u := range utis {
			if strings.EqualFold(a.UTIs.Current, u) {
				return true
			}
		}
		return false
	})
}

// WithCreatedBetween matches assets whose creation date falls in [from, to).
func (q *Query) WithCreatedBetween(from, to time.Time) *Query {
	return q.with(func(_ *model.Library, a *model.Asset) bool {
		return !a.CreatedAt.Before(from) && a.CreatedAt.Before(to)
	})
}

// WithTimeOfDayBetween matches assets whose creation local-clock time falls
// in [from, to) — wrapping past midnight when from > to.
func (q *Query) WithTimeOfDayBetween(from, to time.Duration) *Query {
	return q.with(func(_ *model.Library, a *model.Asset) bool {
		t := a.CreatedAt
		clock := time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute + time.Duration(t.Second())*time.Second
		if from <= to {
			return clock >= from && clock < to
		}
		return clock >= from || clock < to
	})
}

// WithByteSizeBetween matches assets whose OriginalByteSize falls in
// [min, max].
func (q *Query) WithByteSizeBetween(min, max int64) *Query {
	return q.with(func(_ *model.Library, a *model.Asset) bool {
		return a.OriginalByteSize >= min && a.OriginalByteSize <= max
	})
}

// WithMissing matches assets whose resolved path doesn't exist on disk.
func (q *Query) WithMissing(want bool) *Query {
	return q.with(func(_ *model.Library, a *model.Asset) bool { return a.Missing == want })
}

// WithTrash includes or excludes trashed assets. A fresh Query applies no
// trash filter of its own; callers that want both states add neither this
// predicate nor WithVisible.
func (q *Query) WithTrash(want bool) *Query {
	return q.with(func(_ *model.Library, a *model.Asset) bool { return a.InTrash == want })
}

// WithVisible restricts to the burst-aware, non-trashed visibility the
// catalog loader computed (§4.D.5); this is the default most callers want
// before applying any other predicate.
func (q *Query) WithVisible() *Query {
	return q.with(func(_ *model.Library, a *model.Asset) bool { return a.Visible })
}
