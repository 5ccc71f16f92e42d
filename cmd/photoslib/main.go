// Command photoslib is a thin wiring harness over the photoslib core: open
// a library, export every visible asset to a destination directory. The
// full CLI (TOML config, query DSL flags, colorized terminal output) is out
// of scope for this core; this binary exists so the core is runnable, not
// to replace that front end.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/mdriscoll/photoslib"
	"github.com/mdriscoll/photoslib/internal/export"
)

func main() {
	if len(os.Args) != 3 {
		fmt.Println("Usage: photoslib <library.photoslibrary> <dest_dir>")
		os.Exit(1)
	}
	libraryPath, destDir := os.Args[1], os.Args[2]

	log := zerolog.New(os.Stderr).With().Timestamp().Logger()

	lib, err := photoslib.Open(libraryPath, photoslib.WithLogger(log))
	if err != nil {
		log.Fatal().Err(err).Msg("opening library")
	}
	defer lib.Close()

	assets := lib.NewQuery().WithVisible().Match(lib.Model())
	log.Info().Int("count", len(assets)).Msg("exporting visible assets")

	summary, err := lib.Export(context.Background(), assets, export.Options{
		DestDir:     destDir,
		Incremental: true,
		Sidecars:    []export.SidecarKind{export.SidecarXMP},
		Log:         log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("export session failed")
	}

	log.Info().
		Int("written", summary.Written).
		Int("overwritten", summary.Overwritten).
		Int("skipped", summary.Skipped).
		Int("errors", len(summary.Errors)).
		Msg("export complete")
}
