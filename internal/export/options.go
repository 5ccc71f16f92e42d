// Package export implements the copy/link/write pipeline that turns a
// queried set of assets into files on disk: path/filename rendering,
// collision resolution, sidecar writing, incremental-update comparison
// against the export database, and the worker-pool-driven copy itself
// (§4.I).
package export

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// VersionSelect controls which rendition(s) of an edited asset get
// exported.
type VersionSelect int

const (
	VersionOriginalOnly VersionSelect = iota
	VersionEditedOnly
	VersionBoth
)

// CollisionMode controls what happens when a rendered destination path is
// already claimed by a different asset within the same session.
type CollisionMode int

const (
	CollisionIncrement CollisionMode = iota // append " (1)", " (2)", ... (default)
	CollisionOverwrite
	CollisionError
)

// SidecarKind is one sidecar format the export engine can emit per asset.
type SidecarKind int

const (
	SidecarNone SidecarKind = iota
	SidecarXMP
	SidecarJSON
	SidecarJSONGrouped
	SidecarText
)

// Options configures one export session (§4.I.1).
type Options struct {
	DestDir          string
	DirTemplate      string // e.g. "{created.year}/{created.mm}"
	FilenameTemplate string // e.g. "{name}"

	Version   VersionSelect
	Collision CollisionMode
	Sidecars  []SidecarKind
	TextSidecarTemplate string

	DryRun      bool
	Incremental bool
	Cleanup     bool // remove previously-exported files for assets no longer in the query result

	Workers int

	RetryAttempts int
	RetryBaseWait time.Duration

	ExportDBPath string // "" means in-memory (forced when DryRun is true)
	PidfilePath  string

	// ExifFields enables per-asset exiftool lookups so `{exiftool:TAG}`
	// template fields resolve in directory/filename/sidecar templates. Off
	// by default since it costs one exiftool invocation per exported file.
	ExifFields bool

	// MetricsRegistry, when set, receives the session's write/skip/fail
	// counters and the worker queue-depth gauge (§5 "optional export-session
	// metrics"). Nil means metrics are collected against a private registry
	// and discarded — this core never starts an HTTP server to scrape them,
	// that belongs to the embedding application.
	MetricsRegistry *prometheus.Registry

	Log zerolog.Logger
}

// WithDefaults fills in the zero-value fields of an Options with the
// engine's defaults, mirroring the teacher's habit of a single
// construction helper rather than scattering `if x == 0` checks through
// the pipeline.
func (o Options) WithDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = runtime.NumCPU() * 2
	}
	if o.RetryAttempts <= 0 {
		o.RetryAttempts = 3
	}
	if o.RetryBaseWait <= 0 {
		o.RetryBaseWait = 250 * time.Millisecond
	}
	if o.DirTemplate == "" {
		o.DirTemplate = "{created.year}/{created.mm}"
	}
	if o.FilenameTemplate == "" {
		o.FilenameTemplate = "{name}"
	}
	if o.DryRun {
		o.ExportDBPath = ""
	}
	return o
}
