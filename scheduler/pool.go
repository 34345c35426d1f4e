package scheduler

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"filterforge/imaging"
)

// ErrProcessingFailed reports that a worker failed while computing its
// row range. The whole image is discarded; no partial output is written.
var ErrProcessingFailed = errors.New("image processing failed")

// RowSpan is a contiguous output row range [Y0, Y1) owned by one worker.
type RowSpan struct {
	Y0, Y1 int
}

// PartitionRows splits [0, height) into at most chunks contiguous spans
// covering every row exactly once. Spans are balanced: sizes differ by at
// most one row, with the first height%chunks spans taking the extra row.
func PartitionRows(height, chunks int) []RowSpan {
	if height <= 0 || chunks <= 0 {
		return nil
	}
	if chunks > height {
		chunks = height
	}
	base := height / chunks
	extra := height % chunks

	spans := make([]RowSpan, chunks)
	y := 0
	for i := range spans {
		size := base
		if i < extra {
			size++
		}
		spans[i] = RowSpan{Y0: y, Y1: y + size}
		y += size
	}
	return spans
}

// Pool is a fixed-size worker pool. The pipeline driver creates one per
// run and reuses it for every image; workers block on the job channel
// between images rather than being respawned.
type Pool struct {
	jobs    chan func()
	workers int
	stopped sync.WaitGroup
}

// NewPool starts a pool of the given size, defaulting to the number of
// CPUs when workers is not positive.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	p := &Pool{jobs: make(chan func()), workers: workers}
	for i := 0; i < workers; i++ {
		p.stopped.Add(1)
		go func() {
			defer p.stopped.Done()
			for job := range p.jobs {
				job()
			}
		}()
	}
	return p
}

// Workers returns the pool size.
func (p *Pool) Workers() int { return p.workers }

// Close shuts the pool down after the in-flight jobs finish.
func (p *Pool) Close() {
	close(p.jobs)
	p.stopped.Wait()
}

// Filter applies the kernel (or the grayscale transform, when the kernel
// is nil) to src across the pool and returns a fresh buffer of the same
// dimensions.
//
// Each span is an independent work unit: it reads the shared src and
// writes only its own rows of dst, so the units need no locks and the
// result is bit-identical for every pool size. The only synchronization
// is the join barrier. If any unit fails the image fails as a whole with
// ErrProcessingFailed.
func (p *Pool) Filter(src *imaging.Image, k *imaging.Kernel, opts imaging.Options) (*imaging.Image, error) {
	dst := imaging.New(src.Width, src.Height)
	spans := PartitionRows(src.Height, p.workers)
	errs := make([]error, len(spans))

	var join sync.WaitGroup
	join.Add(len(spans))
	for i, span := range spans {
		i, span := i, span
		p.jobs <- func() {
			defer join.Done()
			defer func() {
				if v := recover(); v != nil {
					errs[i] = fmt.Errorf("rows [%d,%d): %v", span.Y0, span.Y1, v)
				}
			}()
			if k == nil {
				imaging.GrayscaleRows(dst, src, span.Y0, span.Y1)
			} else {
				imaging.ConvolveRows(dst, src, k, opts, span.Y0, span.Y1)
			}
		}
	}
	join.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrProcessingFailed, err)
		}
	}
	return dst, nil
}

// filterImage is the single-threaded counterpart of Pool.Filter, used by
// the drivers that parallelize across files instead of rows.
func filterImage(src *imaging.Image, k *imaging.Kernel, opts imaging.Options) (dst *imaging.Image, err error) {
	defer func() {
		if v := recover(); v != nil {
			dst = nil
			err = fmt.Errorf("%w: %v", ErrProcessingFailed, v)
		}
	}()
	dst = imaging.New(src.Width, src.Height)
	if k == nil {
		imaging.GrayscaleRows(dst, src, 0, src.Height)
	} else {
		imaging.Convolve(dst, src, k, opts)
	}
	return dst, nil
}
