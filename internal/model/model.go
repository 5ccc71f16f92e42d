// Package model defines the immutable entity graph assembled by the catalog
// loader: assets, albums, folders, persons, faces, places, import sessions,
// and the library object that owns and cross-references all of them.
package model

import "time"

// CloudStatus describes where an asset stands relative to iCloud sync.
type CloudStatus int

const (
	CloudStatusNone CloudStatus = iota
	CloudStatusUploaded
	CloudStatusPendingUpload
)

// MediaKind distinguishes still photos from video assets.
type MediaKind int

const (
	MediaPhoto MediaKind = iota
	MediaVideo
)

// UTISet carries the four UTI slots an asset can report.
type UTISet struct {
	Current string
	Original string
	Edited   string
	RawCompanion string
}

// Dimensions is a pixel width/height pair.
type Dimensions struct {
	Width  int
	Height int
}

// LatLon is a nullable geo-coordinate pair.
type LatLon struct {
	Lat float64
	Lon float64
	Valid bool
}

// Asset is the fully materialized record for one library asset, joined from
// the dozen-plus tables the catalog loader stitches together.
type Asset struct {
	AID string

	OriginalFilename string
	CurrentFilename  string

	CreatedAt       time.Time
	CreatedTZOffset int // minutes east of UTC
	ModifiedAt      *time.Time

	Title       string
	Description string

	Favorite bool
	Hidden   bool
	InTrash  bool
	TrashAt  *time.Time
	Visible  bool

	Cloud CloudStatus
	Location LatLon

	UTIs UTISet

	PixelsCurrent  Dimensions
	PixelsOriginal Dimensions
	OrientationCurrent  int
	OrientationOriginal int

	OriginalByteSize int64
	Media MediaKind

	IsLive        bool
	IsPortrait    bool
	IsHDR         bool
	IsPanorama    bool
	IsSelfie      bool
	IsScreenshot  bool
	IsTimeLapse   bool
	IsSlowMo      bool
	IsBurst       bool
	IsReference   bool

	BurstSetID     *string
	BurstSelected  bool

	LivePhotoCompanionPath string

	RawCompanionPath string
	RawIsOriginal    bool
	HasRaw           bool

	HasAdjustments bool
	ExternallyEdited bool

	ImportSessionID *string

	Keywords []string
	PersonIDs []string
	AlbumIDs  []string
	LabelIDs  []string

	Search SearchInfo
	Place  *Place

	Adjustments *Adjustments

	Comments []Comment
	Likes    []Like

	// Missing is true when the resolved on-disk path for the original (or,
	// for edited assets, the edited rendition) does not exist. Missing
	// assets still carry every other attribute the catalog could load.
	Missing bool

	// ResolvedOriginalPath and ResolvedEditedPath are absolute paths computed
	// from the library's sharded originals/resources layout; empty when the
	// generation's layout could not be resolved.
	ResolvedOriginalPath string
	ResolvedEditedPath   string

	// Warnings accumulates non-fatal decode/derivation problems for this
	// asset (§7 "Decode" downgrade path): the attribute became null instead
	// of aborting the session.
	Warnings []string
}

// Album is an ordered, user-named collection of assets.
type Album struct {
	ID        string
	Title     string
	CreatedAt time.Time
	AssetIDs  []string // preserves user sort order
	ParentFolderID *string
	Shared    bool
	CloudOwner string
}

// Folder is a node in the album/folder forest.
type Folder struct {
	ID        string
	Title     string
	ParentID  *string
	ChildFolderIDs []string
	AlbumIDs       []string
}

// Person is a named face cluster.
type Person struct {
	ID          string
	FullName    string
	DisplayName string
	FaceCount   int
	KeyAssetID  string
	FaceIDs     []string // ordered by descending face quality
}

// FaceRegion captures both representations the spec requires: top-left +
// width/height, and fractional + center, all normalized to [0,1].
type FaceRegion struct {
	X, Y, Width, Height float64 // top-left + size
	CenterX, CenterY    float64 // fractional center
}

// Face is one detected face instance belonging to an asset and (usually) a
// resolved person.
type Face struct {
	ID        string
	AssetID   string
	PersonID  string
	CenterX, CenterY float64
	MouthX, MouthY   float64
	LeftEyeX, LeftEyeY   float64
	RightEyeX, RightEyeY float64
	SourcePixels Dimensions
	Quality      float64
	Roll, Pitch, Yaw float64
	Region FaceRegion
}

// Place is a reverse-geocoded record. Every list field is sorted smallest
// enclosing area first; the value shown to users is the first element.
type Place struct {
	Countries        []string
	StatesProvinces  []string
	SubAdminAreas    []string
	Cities           []string
	SubLocalities    []string
	AreasOfInterest  []string
	BodiesOfWater    []string
	PostalAddressFull string
	PostalAddressParts []string
	ISOCountryCode   string
	IsHome           bool
}

// first returns the first (smallest-enclosing) value of the given list kind,
// or "" when the place has no value for it.
func first(xs []string) string {
	if len(xs) == 0 {
		return ""
	}
	return xs[0]
}

func (p *Place) Country() string  { if p == nil { return "" }; return first(p.Countries) }
func (p *Place) City() string     { if p == nil { return "" }; return first(p.Cities) }
func (p *Place) AreaOfInterest() string { if p == nil { return "" }; return first(p.AreasOfInterest) }

// ImportSession groups assets ingested together.
type ImportSession struct {
	ID        string
	CreatedAt time.Time
	StartedAt time.Time
	EndedAt   time.Time
	AssetIDs  []string
}

// SearchInfo bundles the free-text search metadata Photos derives per asset.
type SearchInfo struct {
	Labels         []string
	Streets        []string
	Neighborhoods  []string
	Localities     []string
	BodiesOfWater  []string
	Holidays       []string
	Activities     []string
	Venues         []string
	VenueTypes     []string
	MediaTypes     []string

	City    string
	State   string
	StateAbbrev string
	Country string
	Month   string
	Year    string
	Season  string
}

// AdjustmentOp is one decoded editing operation from the adjustments blob.
// Best-effort: not every editor's format is understood, in which case
// Operations is nil but RawData is preserved.
type AdjustmentOp struct {
	Name string
	Params map[string]any
}

// Adjustments holds the decoded edit-history record for an edited asset.
type Adjustments struct {
	EditorBundleID string
	FormatID       string
	BaseVersion    string
	FormatVersion  string
	Timestamp      time.Time
	Operations     []AdjustmentOp // nil when the editor's format isn't understood
	Metadata       map[string]any
	Orientation    int
	RawData        []byte
}

// Comment is one entry in a shared asset's comment thread.
type Comment struct {
	Timestamp   time.Time
	UserName    string
	IsOwnUser   bool
	Text        string
}

// Like is one entry in a shared asset's like list.
type Like struct {
	Timestamp time.Time
	UserName  string
	IsOwnUser bool
}
