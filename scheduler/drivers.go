package scheduler

import (
	"sync"
	"time"

	"filterforge/imaging"
	"filterforge/tasks"
	"filterforge/worksteal"
)

// runSequential processes every file on the calling goroutine, one at a
// time. Baseline for the speedup plots.
func (r *runner) runSequential(list []tasks.Task) {
	for _, t := range list {
		r.processWholeFile(t)
	}
}

// runRows is the default driver: files are handled one at a time, but
// each image's rows are convolved in parallel on a pool that lives for
// the whole run. I/O stays sequential on this goroutine; the pool only
// ever sees CPU work. Returns the time spent inside the parallel region.
func (r *runner) runRows(list []tasks.Task) time.Duration {
	pool := NewPool(r.cfg.Workers)
	defer pool.Close()

	var parallel time.Duration
	for _, t := range list {
		img, err := imaging.Decode(t.InPath)
		if err != nil {
			r.skip(t.InPath, err)
			continue
		}

		start := time.Now()
		out, err := pool.Filter(img, r.kernel, r.opts)
		parallel += time.Since(start)
		if err != nil {
			r.skip(t.InPath, err)
			continue
		}

		if err := imaging.Encode(t.OutPath, out); err != nil {
			r.skip(t.InPath, err)
			continue
		}
		r.done(t)
	}
	return parallel
}

// runFiles processes whole files in parallel: workers drain a shared
// queue, each handling one image at a time single-threaded.
func (r *runner) runFiles(list []tasks.Task) time.Duration {
	queue := tasks.NewQueue(list)
	workers := r.cfg.Workers
	if workers > len(list) {
		workers = len(list)
	}

	start := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := queue.Dequeue(); t != nil; t = queue.Dequeue() {
				r.processWholeFile(*t)
			}
		}()
	}
	wg.Wait()
	return time.Since(start)
}

// fileJob adapts one task to the work-stealing worker loop.
type fileJob struct {
	r       *runner
	task    tasks.Task
	pending *sync.WaitGroup
}

func (j fileJob) Run(worker int) {
	j.r.processWholeFile(j.task)
	j.pending.Done()
}

// runSteal processes whole files with per-worker deques and random
// victim stealing, which keeps workers busy when file sizes are skewed.
func (r *runner) runSteal(list []tasks.Task) time.Duration {
	workers := r.cfg.Workers
	if workers > len(list) {
		workers = len(list)
	}
	if workers < 1 {
		workers = 1
	}

	deques := make([]*worksteal.Deque, workers)
	for i := range deques {
		deques[i] = worksteal.NewDeque(4)
	}
	stealers := make([]*worksteal.Worker, workers)
	for i := range stealers {
		stealers[i] = worksteal.NewWorker(i, deques)
	}

	var pending sync.WaitGroup
	pending.Add(len(list))
	// Deques are only owner-mutated once the workers start, so the
	// round-robin seeding has to happen first.
	for i, t := range list {
		stealers[i%workers].Push(fileJob{r: r, task: t, pending: &pending})
	}

	start := time.Now()
	done := make(chan struct{})
	var stopped sync.WaitGroup
	for _, w := range stealers {
		stopped.Add(1)
		go func(w *worksteal.Worker) {
			defer stopped.Done()
			w.Run(done)
		}(w)
	}

	pending.Wait()
	close(done)
	stopped.Wait()
	return time.Since(start)
}
