// Command filterforge applies a convolution filter (blur, sharpen, edge)
// or a grayscale transform to every image found in a directory, spreading
// the per-pixel work across CPU cores.
//
// Usage:
//
//	filterforge [-dir images/] [-effect blur] [-size 3] [-workers N]
//	            [-mode rows] [-preserve-alpha] [-results results.jsonl] [-v]
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"filterforge/imaging"
	"filterforge/scheduler"
)

func main() {
	var (
		dir           = flag.String("dir", "images/", "directory scanned for input images")
		effectName    = flag.String("effect", "blur", "effect to apply: blur|sharpen|edge|grayscale")
		size          = flag.Int("size", 3, "kernel size (odd, >= 3) for blur and sharpen")
		workers       = flag.Int("workers", 0, "worker count; 0 uses all CPU cores")
		mode          = flag.String("mode", scheduler.ModeRows, "scheduling mode: sequential|rows|files|steal")
		preserveAlpha = flag.Bool("preserve-alpha", false, "copy the alpha channel through instead of convolving it")
		resultsPath   = flag.String("results", "", "append a timing record to this JSONL file (for filterbench)")
		verbose       = flag.Bool("v", false, "log each processed file")
	)
	flag.Parse()

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().
		Timestamp().
		Logger()

	effect, err := imaging.ParseEffect(*effectName, *size)
	if err != nil {
		fmt.Fprintf(os.Stderr, "filterforge: %v\n", err)
		flag.Usage()
		os.Exit(2)
	}

	cfg := scheduler.Config{
		InputDir:      *dir,
		Effect:        effect,
		Workers:       *workers,
		Mode:          *mode,
		PreserveAlpha: *preserveAlpha,
		ResultsPath:   *resultsPath,
	}

	if err := scheduler.Run(cfg, log); err != nil {
		log.Error().Err(err).Msg("run failed")
		if errors.Is(err, scheduler.ErrAllFilesFailed) {
			os.Exit(1)
		}
		os.Exit(2)
	}
}
