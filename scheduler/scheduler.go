// Package scheduler drives batches of image filter tasks through one of
// several scheduling modes: sequential, row-parallel within each image,
// file-parallel across images, or file-parallel with work stealing.
package scheduler

import (
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"filterforge/imaging"
	"filterforge/tasks"
)

// Scheduling modes.
const (
	ModeSequential = "sequential"
	ModeRows       = "rows"
	ModeFiles      = "files"
	ModeSteal      = "steal"
)

// ErrAllFilesFailed reports that not a single input produced an output.
// Per-file failures are logged and skipped; only a fully failed batch
// makes the run fail.
var ErrAllFilesFailed = errors.New("every input file failed")

// Config selects what to process and how.
type Config struct {
	InputDir      string         // directory scanned for image files
	Effect        imaging.Effect // filter to apply
	Workers       int            // worker count; 0 means NumCPU
	Mode          string         // one of the Mode constants; "" means ModeRows
	PreserveAlpha bool           // copy alpha through instead of convolving it
	ResultsPath   string         // optional JSONL timing output for filterbench
}

// runner carries the per-run state shared by the drivers.
type runner struct {
	cfg    Config
	log    zerolog.Logger
	kernel *imaging.Kernel // nil for grayscale
	opts   imaging.Options

	processed atomic.Int64
	failed    atomic.Int64
}

// Run executes one batch. Configuration problems (bad kernel size,
// unknown mode, unreadable input directory) are fatal and reported as
// errors; per-file decode/processing/encode failures are logged with the
// offending path and skipped.
func Run(cfg Config, log zerolog.Logger) error {
	kernel, err := cfg.Effect.Kernel()
	if err != nil {
		return err
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeRows
	}

	list, err := tasks.Discover(cfg.InputDir, cfg.Effect.Label())
	if err != nil {
		return err
	}
	if len(list) == 0 {
		return fmt.Errorf("no image files found in %s", cfg.InputDir)
	}

	r := &runner{
		cfg:    cfg,
		log:    log,
		kernel: kernel,
		opts:   imaging.Options{PreserveAlpha: cfg.PreserveAlpha},
	}

	log.Info().
		Str("mode", cfg.Mode).
		Str("effect", cfg.Effect.Name()).
		Int("workers", cfg.Workers).
		Int("files", len(list)).
		Msg("starting batch")

	start := time.Now()
	var parallel time.Duration
	switch cfg.Mode {
	case ModeSequential:
		r.runSequential(list)
	case ModeRows:
		parallel = r.runRows(list)
	case ModeFiles:
		parallel = r.runFiles(list)
	case ModeSteal:
		parallel = r.runSteal(list)
	default:
		return fmt.Errorf("unknown scheduling mode %q", cfg.Mode)
	}
	elapsed := time.Since(start)

	log.Info().
		Int64("processed", r.processed.Load()).
		Int64("failed", r.failed.Load()).
		Dur("elapsed", elapsed).
		Msg("batch finished")

	if cfg.ResultsPath != "" {
		rec := result{
			Mode:         cfg.Mode,
			Workers:      cfg.Workers,
			TimeElapsed:  elapsed.Seconds(),
			TimeParallel: parallel.Seconds(),
			Dir:          cfg.InputDir,
		}
		if err := appendResult(cfg.ResultsPath, rec); err != nil {
			log.Error().Err(err).Str("path", cfg.ResultsPath).Msg("writing results")
		}
	}

	if r.processed.Load() == 0 {
		return fmt.Errorf("%w (%d files)", ErrAllFilesFailed, r.failed.Load())
	}
	return nil
}

// processWholeFile decodes, filters and encodes one file on the calling
// goroutine. Used by the sequential, files and steal drivers.
func (r *runner) processWholeFile(t tasks.Task) {
	img, err := imaging.Decode(t.InPath)
	if err != nil {
		r.skip(t.InPath, err)
		return
	}
	out, err := filterImage(img, r.kernel, r.opts)
	if err != nil {
		r.skip(t.InPath, err)
		return
	}
	if err := imaging.Encode(t.OutPath, out); err != nil {
		r.skip(t.InPath, err)
		return
	}
	r.done(t)
}

func (r *runner) skip(path string, err error) {
	r.failed.Add(1)
	r.log.Error().Str("path", path).Err(err).Msg("skipping file")
}

func (r *runner) done(t tasks.Task) {
	r.processed.Add(1)
	r.log.Debug().Str("path", t.InPath).Str("out", t.OutPath).Msg("file written")
}
