package export

// Action names the per-file transition the export state machine reaches
// for one (asset, version) pair (§4.I.2):
//
//	PLAN -> RESOLVE_PATHS -> {SKIP | WRITE | OVERWRITE | CLEANUP_REMOVE} -> POST_WRITE -> COMMIT_DB
type Action string

const (
	ActionSkip           Action = "skip"
	ActionWrite          Action = "write"
	ActionOverwrite      Action = "overwrite"
	ActionCleanupRemove  Action = "cleanup_remove"
)

// Plan is the result of resolving one asset/version against the export
// database and the destination filesystem, before any bytes move.
type Plan struct {
	AID          string
	Version      string
	DestPath     string
	SidecarPaths []string
	Action       Action
	Reason       string
}
