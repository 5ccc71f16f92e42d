package export

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	bar "github.com/schollz/progressbar/v3"
	"golang.org/x/time/rate"

	"github.com/mdriscoll/photoslib/internal/errs"
	"github.com/mdriscoll/photoslib/internal/exiftags"
	"github.com/mdriscoll/photoslib/internal/exportdb"
	"github.com/mdriscoll/photoslib/internal/model"
	"github.com/mdriscoll/photoslib/internal/sidecar"
	"github.com/mdriscoll/photoslib/internal/template"
)

// Summary tallies one export session's outcome for the caller (and
// ultimately the report emitter).
type Summary struct {
	Written   int
	Overwritten int
	Skipped   int
	CleanedUp int
	Errors    []error
}

// job is one (asset, version) unit of work handed to a copy worker —
// photosort's jobs-channel-plus-per-worker-resource pattern (util/import.go
// worker), generalized from "scan EXIF" to "copy + sidecar + commit".
type job struct {
	asset   *model.Asset
	version string // "original" or "edited"
	plan    Plan
}

type jobResult struct {
	job     job
	record  exportdb.Record
	action  exportdb.Action
	err     error
}

// Run executes one export session against the given assets (already
// filtered by the caller's query.Query), driving the PLAN -> RESOLVE_PATHS
// -> {SKIP|WRITE|OVERWRITE|CLEANUP_REMOVE} -> POST_WRITE -> COMMIT_DB state
// machine per asset/version.
func Run(ctx context.Context, lib *model.Library, assets []*model.Asset, opts Options) (Summary, error) {
	opts = opts.WithDefaults()

	release, err := acquirePidfile(opts.PidfilePath)
	if err != nil {
		return Summary{}, err
	}
	defer release()

	db, err := exportdb.Open(opts.ExportDBPath)
	if err != nil {
		return Summary{}, err
	}
	defer db.Close()

	dirAST, err := template.Parse(opts.DirTemplate)
	if err != nil {
		return Summary{}, &errs.TemplateError{Template: opts.DirTemplate, Err: err}
	}
	filenameAST, err := template.Parse(opts.FilenameTemplate)
	if err != nil {
		return Summary{}, &errs.TemplateError{Template: opts.FilenameTemplate, Err: err}
	}
	var textAST *template.AST
	if opts.TextSidecarTemplate != "" {
		textAST, err = template.Parse(opts.TextSidecarTemplate)
		if err != nil {
			return Summary{}, &errs.TemplateError{Template: opts.TextSidecarTemplate, Err: err}
		}
	}

	plans, claimErrs := planAll(lib, assets, opts, dirAST, filenameAST, db)

	m := newMetrics(opts.MetricsRegistry)
	m.queueDepth.Set(float64(len(plans)))

	jobs := make(chan job, len(plans))
	results := make(chan jobResult, len(plans))
	limiter := rate.NewLimiter(rate.Every(opts.RetryBaseWait), 1)

	var wg sync.WaitGroup
	progress := bar.Default(int64(len(plans)), "Exporting")
	for i := 0; i < opts.Workers; i++ {
		wg.Add(1)
		go worker(ctx, &wg, jobs, results, opts, limiter, lib, textAST, progress)
	}
	for _, p := range plans {
		jobs <- p
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	summary := Summary{Errors: claimErrs}
	for r := range results {
		m.observe(r)
		m.queueDepth.Dec()
		if r.err != nil {
			summary.Errors = append(summary.Errors, r.err)
		}
		if !opts.DryRun {
			if r.job.plan.Action == ActionCleanupRemove {
				db.Delete(r.job.asset.AID, r.job.version)
			} else if r.err == nil {
				db.Upsert(r.record)
			}
			db.LogAction(r.action)
		}
		switch r.job.plan.Action {
		case ActionWrite:
			summary.Written++
		case ActionOverwrite:
			summary.Overwritten++
		case ActionSkip:
			summary.Skipped++
		case ActionCleanupRemove:
			summary.CleanedUp++
		}
	}
	progress.Finish()

	return summary, nil
}

// planAll resolves every asset/version into a Plan, rendering directory and
// filename templates and resolving collisions. Collision bookkeeping is
// shared mutable state across assets (not goroutines, since planning runs
// single-threaded ahead of the worker pool — collisions only ever occur
// within one deterministic renderer pass, so no mutex is needed here).
func planAll(lib *model.Library, assets []*model.Asset, opts Options, dirAST, filenameAST *template.AST, db *exportdb.DB) ([]job, []error) {
	var jobs []job
	var errs []error
	claimed := make(map[string]bool)

	// One exiftool process for the whole (sequential) planning pass —
	// planAll never runs concurrently with itself, so this reader never
	// crosses a goroutine boundary, unlike the per-worker readers below.
	var exifReader *exiftags.Reader
	if opts.ExifFields {
		if r, err := exiftags.NewReader(); err == nil {
			exifReader = r
			defer r.Close()
		} else {
			opts.Log.Warn().Err(err).Msg("export: exiftool unavailable, {exiftool:...} fields will render empty")
		}
	}

	for _, a := range assets {
		for _, version := range versionsFor(a, opts.Version) {
			plans, err := planOne(lib, a, version, opts, dirAST, filenameAST, claimed, db, exifReader)
			if err != nil {
				errs = append(errs, fmt.Errorf("export: planning %s/%s: %w", a.AID, version, err))
				continue
			}
			for _, plan := range plans {
				jobs = append(jobs, job{asset: a, version: version, plan: plan})
			}
		}
	}

	if opts.Cleanup {
		jobs = append(jobs, planCleanup(lib, assets, opts, db)...)
	}

	return jobs, errs
}

func versionsFor(a *model.Asset, sel VersionSelect) []string {
	switch sel {
	case VersionEditedOnly:
		if a.HasAdjustments {
			return []string{"edited"}
		}
		return nil
	case VersionBoth:
		if a.HasAdjustments {
			return []string{"original", "edited"}
		}
		return []string{"original"}
	default:
		return []string{"original"}
	}
}

// planOne renders the directory and filename templates for one
// asset/version and returns one Plan per tuple in their cross product
// (§4.I.2): a multi-valued field like `{keyword}` on an asset tagged both
// Travel and Vacation must yield two destinations, not one value joined
// with an arbitrary separator.
func planOne(lib *model.Library, a *model.Asset, version string, opts Options, dirAST, filenameAST *template.AST, claimed map[string]bool, db *exportdb.DB, exifReader *exiftags.Reader) ([]Plan, error) {
	sourcePath := a.ResolvedOriginalPath
	if version == "edited" {
		sourcePath = a.ResolvedEditedPath
	}

	var exifVals map[string]string
	if exifReader != nil && sourcePath != "" {
		if tags, err := exifReader.Tags(sourcePath); err == nil {
			exifVals = tags
		} else {
			opts.Log.Debug().Err(err).Str("asset", a.AID).Msg("export: exiftool read failed, {exiftool:...} fields render empty")
		}
	}

	dirRes := template.RenderWithExif(dirAST, lib, a, exifVals)
	nameRes := template.RenderWithExif(filenameAST, lib, a, exifVals)
	for _, u := range append(dirRes.Unmatched, nameRes.Unmatched...) {
		opts.Log.Warn().Str("asset", a.AID).Str("field", u).Msg("export: unmatched template field")
	}

	ext := filepath.Ext(sourcePath)

	plans := make([]Plan, 0, len(dirRes.Values)*len(nameRes.Values))
	for _, dir := range dirRes.Values {
		for _, name := range nameRes.Values {
			rendered := filepath.Join(opts.DestDir, dir, name+ext)
			if opts.Collision == CollisionError && claimed[rendered] {
				return nil, fmt.Errorf("destination %s already claimed in this session", rendered)
			}
			destPath := resolveCollision(rendered, claimed, opts.Collision)
			claimed[destPath] = true

			action := ActionWrite
			reason := "new export"
			if opts.Incremental {
				if prior, ok, _ := db.Lookup(a.AID, version); ok {
					if info, statErr := os.Stat(destPath); statErr == nil {
						candidate := exportdb.Signature{Size: info.Size(), ModTime: info.ModTime(), Filename: filepath.Base(destPath)}
						if exportdb.SignatureMatches(prior.Sig, candidate) && prior.DestPath == destPath {
							action, reason = ActionSkip, "signature unchanged"
						} else {
							action, reason = ActionOverwrite, "signature changed"
						}
					}
				}
			}

			plans = append(plans, Plan{AID: a.AID, Version: version, DestPath: destPath, Action: action, Reason: reason})
		}
	}

	return plans, nil
}

// resolveCollision applies the configured CollisionMode when destPath is
// already claimed within this session.
func resolveCollision(destPath string, claimed map[string]bool, mode CollisionMode) string {
	if !claimed[destPath] {
		return destPath
	}
	switch mode {
	case CollisionOverwrite:
		return destPath
	case CollisionError:
		return destPath // planOne fails the asset before calling here in this mode
	default:
		ext := filepath.Ext(destPath)
		stem := strings.TrimSuffix(destPath, ext)
		for i := 1; ; i++ {
			candidate := fmt.Sprintf("%s (%d)%s", stem, i, ext)
			if !claimed[candidate] {
				return candidate
			}
		}
	}
}

// planCleanup finds previously-exported (aid, version) records whose asset
// is no longer among the current query result and schedules their removal.
func planCleanup(lib *model.Library, current []*model.Asset, opts Options, db *exportdb.DB) []job {
	inResult := make(map[string]bool, len(current))
	for _, a := range current {
		inResult[a.AID] = true
	}

	var jobs []job
	for _, a := range lib.Assets() {
		if inResult[a.AID] {
			continue
		}
		for _, version := range []string{"original", "edited"} {
			if rec, ok, _ := db.Lookup(a.AID, version); ok {
				jobs = append(jobs, job{asset: a, version: version, plan: Plan{
					AID: a.AID, Version: version, DestPath: rec.DestPath, Action: ActionCleanupRemove, Reason: "asset left query result",
				}})
			}
		}
	}
	return jobs
}

// worker mirrors photosort's per-goroutine exiftool-instance pattern
// (util/import.go): no shared mutable resource crosses a worker boundary
// except the jobs/results channels themselves.
func worker(ctx context.Context, wg *sync.WaitGroup, jobs <-chan job, results chan<- jobResult, opts Options, limiter *rate.Limiter, lib *model.Library, textAST *template.AST, progress *bar.ProgressBar) {
	defer wg.Done()

	var exifReader *exiftags.Reader
	if opts.ExifFields {
		if r, err := exiftags.NewReader(); err == nil {
			exifReader = r
			defer r.Close()
		} else {
			opts.Log.Warn().Err(err).Msg("export: exiftool unavailable for this worker")
		}
	}

	for j := range jobs {
		select {
		case <-ctx.Done():
			results <- jobResult{job: j, err: ctx.Err()}
			progress.Add(1)
			continue
		default:
		}

		rec, action, err := processJob(ctx, j, opts, limiter, lib, textAST, exifReader)
		results <- jobResult{job: j, record: rec, action: action, err: err}
		progress.Add(1)
	}
}

func processJob(ctx context.Context, j job, opts Options, limiter *rate.Limiter, lib *model.Library, textAST *template.AST, exifReader *exiftags.Reader) (exportdb.Record, exportdb.Action, error) {
	if j.plan.Action == ActionCleanupRemove {
		if !opts.DryRun {
			os.Remove(j.plan.DestPath)
		}
		return exportdb.Record{}, exportdb.Action{AID: j.asset.AID, DestPath: j.plan.DestPath, Category: string(ActionCleanupRemove)}, nil
	}
	if j.plan.Action == ActionSkip {
		return exportdb.Record{}, exportdb.Action{AID: j.asset.AID, DestPath: j.plan.DestPath, Category: string(ActionSkip)}, nil
	}

	sourcePath := j.asset.ResolvedOriginalPath
	if j.version == "edited" {
		sourcePath = j.asset.ResolvedEditedPath
	}

	var lastErr error
	for attempt := 0; attempt < opts.RetryAttempts; attempt++ {
		if attempt > 0 {
			limiter.Wait(ctx)
			select {
			case <-ctx.Done():
			case <-time.After(opts.RetryBaseWait << (attempt - 1)):
			}
		}
		if opts.DryRun {
			lastErr = nil
			break
		}
		if err := copyOrLink(sourcePath, j.plan.DestPath); err != nil {
			lastErr = err
			continue
		}
		lastErr = nil
		break
	}
	if lastErr != nil {
		action := exportdb.Action{AID: j.asset.AID, DestPath: j.plan.DestPath, Category: string(j.plan.Action), Err: lastErr.Error()}
		return exportdb.Record{}, action, &errs.DestinationError{Path: j.plan.DestPath, Err: lastErr}
	}

	if !opts.DryRun {
		var exifVals map[string]string
		if exifReader != nil {
			if tags, err := exifReader.Tags(j.plan.DestPath); err == nil {
				exifVals = tags
			}
		}
		if err := writeSidecars(lib, j.asset, j.plan.DestPath, opts, textAST, exifVals); err != nil {
			opts.Log.Warn().Err(err).Str("asset", j.asset.AID).Msg("export: sidecar write failed")
		}
	}

	var sig exportdb.Signature
	if info, err := os.Stat(j.plan.DestPath); err == nil {
		sig = exportdb.Signature{Size: info.Size(), ModTime: info.ModTime(), Filename: filepath.Base(j.plan.DestPath)}
	}

	rec := exportdb.Record{
		AID: j.asset.AID, Version: j.version, DestPath: j.plan.DestPath,
		Sig: sig, ExportedAt: time.Now(),
	}
	action := exportdb.Action{AID: j.asset.AID, DestPath: j.plan.DestPath, Category: string(j.plan.Action)}
	return rec, action, nil
}

// copyOrLink removes any existing file at dst, tries a hardlink (free on
// same-volume destinations) and falls back to a full stream copy. Removing
// first keeps a dst that is itself a hardlink to src from being truncated,
// along with src, by os.Create.
func copyOrLink(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	if err := os.Remove(dst); err != nil && !os.IsNotExist(err) {
		return err
	}
	if err := os.Link(src, dst); err == nil {
		return nil
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()
	if _, err := io.Copy(out, in); err != nil {
		os.Remove(dst)
		return err
	}
	return out.Sync()
}

func writeSidecars(lib *model.Library, a *model.Asset, destMediaPath string, opts Options, textAST *template.AST, exifVals map[string]string) error {
	claimed := make(map[string]bool)
	for _, kind := range opts.Sidecars {
		switch kind {
		case SidecarXMP:
			faces := lib.FacesForAsset(a.AID)
			xmp := sidecar.RenderXMP(a, faces, func(id string) string {
				if p, ok := lib.Person(id); ok {
					return p.DisplayName
				}
				return ""
			})
			path := sidecar.SidecarFilename(filepath.Base(destMediaPath), "xmp", claimed)
			claimed[path] = true
			if err := os.WriteFile(filepath.Join(filepath.Dir(destMediaPath), path), []byte(xmp), 0644); err != nil {
				return err
			}
		case SidecarJSON:
			data, err := sidecar.RenderJSON(lib, a)
			if err != nil {
				return err
			}
			path := sidecar.SidecarFilename(filepath.Base(destMediaPath), "json", claimed)
			claimed[path] = true
			if err := os.WriteFile(filepath.Join(filepath.Dir(destMediaPath), path), data, 0644); err != nil {
				return err
			}
		case SidecarJSONGrouped:
			data, err := sidecar.RenderJSONGrouped(lib, a)
			if err != nil {
				return err
			}
			path := sidecar.SidecarFilename(filepath.Base(destMediaPath), "json", claimed)
			claimed[path] = true
			if err := os.WriteFile(filepath.Join(filepath.Dir(destMediaPath), path), data, 0644); err != nil {
				return err
			}
		case SidecarText:
			if textAST == nil {
				continue
			}
			body, _ := template.RenderStringWithExif(textAST, lib, a, exifVals)
			path := sidecar.SidecarFilename(filepath.Base(destMediaPath), "txt", claimed)
			claimed[path] = true
			if err := os.WriteFile(filepath.Join(filepath.Dir(destMediaPath), path), []byte(body), 0644); err != nil {
				return err
			}
		}
	}
	return nil
}
