// Package errs holds the small taxonomy of wrapped error types callers can
// errors.As/errors.Is against to decide fatal-vs-recoverable (§7), in the
// same style as internal/plist's ErrWrongKind: a plain struct carrying
// context fields, an Error() method, and an Unwrap for the underlying cause.
package errs

import "fmt"

// LibraryOpenError means the .photoslibrary bundle itself could not be
// acquired (missing, locked, not a real library bundle) — always fatal.
type LibraryOpenError struct {
	Path string
	Err  error
}

func (e *LibraryOpenError) Error() string {
	return fmt.Sprintf("opening library %s: %v", e.Path, e.Err)
}
func (e *LibraryOpenError) Unwrap() error { return e.Err }

// DecodeError means one asset's row or plist blob could not be decoded.
// Per §7 this downgrades the field to zero-value/nil rather than aborting
// the whole catalog load; it is surfaced on Asset.Warnings, not returned.
type DecodeError struct {
	AID, Component string
	Err            error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding %s for asset %s: %v", e.Component, e.AID, e.Err)
}
func (e *DecodeError) Unwrap() error { return e.Err }

// MissingAssetError means a resolved on-disk path does not exist. The
// catalog loader records that condition on Asset.Missing; no package in
// this module returns this type.
type MissingAssetError struct {
	AID, Path string
}

func (e *MissingAssetError) Error() string {
	return fmt.Sprintf("asset %s: file not found at %s", e.AID, e.Path)
}

// TemplateError means a directory/filename/sidecar template failed to
// parse — always fatal, since every asset in the session would fail the
// same way.
type TemplateError struct {
	Template string
	Err      error
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("template %q: %v", e.Template, e.Err)
}
func (e *TemplateError) Unwrap() error { return e.Err }

// DestinationError means a write to the export destination failed (disk
// full, permission denied, path too long) — per-file recoverable unless it
// recurs across many files, in which case the caller should treat the
// session as fatal.
type DestinationError struct {
	Path string
	Err  error
}

func (e *DestinationError) Error() string {
	return fmt.Sprintf("writing %s: %v", e.Path, e.Err)
}
func (e *DestinationError) Unwrap() error { return e.Err }

// DatabaseError wraps a catalog or export-database SQL failure.
type DatabaseError struct {
	Op  string
	Err error
}

func (e *DatabaseError) Error() string {
	return fmt.Sprintf("database: %s: %v", e.Op, e.Err)
}
func (e *DatabaseError) Unwrap() error { return e.Err }

// ExternalToolError wraps a failure from a shelled-out collaborator
// (exiftool, a post-export command template).
type ExternalToolError struct {
	Tool string
	Err  error
}

func (e *ExternalToolError) Error() string {
	return fmt.Sprintf("external tool %s: %v", e.Tool, e.Err)
}
func (e *ExternalToolError) Unwrap() error { return e.Err }
