// Package worksteal implements an unbounded work-stealing deque and the
// worker loop that drains it. Each worker owns one deque: the owner
// pushes and pops at the bottom, idle workers steal from the top.
package worksteal

import (
	"sync/atomic"
	"unsafe"
)

// Job is a unit of work a worker can execute. The worker id is passed
// through so jobs can attribute their logs.
type Job interface {
	Run(worker int)
}

// ring is a circular task array with power-of-two capacity. Indexing is
// modular, so indexes taken before a resize still land on the right slot
// in the old array while it remains visible.
type ring struct {
	logCap int
	jobs   []Job
}

func newRing(logCap int) *ring {
	return &ring{logCap: logCap, jobs: make([]Job, 1<<logCap)}
}

func (r *ring) cap() int { return 1 << r.logCap }

func (r *ring) get(i int64) Job { return r.jobs[i&int64(r.cap()-1)] }

func (r *ring) put(i int64, j Job) { r.jobs[i&int64(r.cap()-1)] = j }

// grow returns a ring of double capacity holding the jobs in [top, bottom).
func (r *ring) grow(bottom, top int64) *ring {
	bigger := newRing(r.logCap + 1)
	for i := top; i < bottom; i++ {
		bigger.put(i, r.get(i))
	}
	return bigger
}

// Deque is an unbounded double-ended queue. Only the owning worker calls
// PushBottom and PopBottom; any other worker may call Steal. top only
// ever increases, which rules out ABA on the CAS paths.
type Deque struct {
	jobs   unsafe.Pointer // *ring, swapped atomically on resize
	bottom int64          // next slot the owner writes; owner-managed
	top    int64          // oldest live slot; bumped by successful steals
}

// NewDeque returns an empty deque with capacity 1<<logCap before the
// first resize.
func NewDeque(logCap int) *Deque {
	return &Deque{jobs: unsafe.Pointer(newRing(logCap))}
}

// Empty reports whether the deque currently holds no jobs. A stale true
// only costs the caller another steal attempt.
func (d *Deque) Empty() bool {
	top := atomic.LoadInt64(&d.top)
	return atomic.LoadInt64(&d.bottom) <= top
}

// PushBottom appends a job at the bottom. Owner only.
func (d *Deque) PushBottom(j Job) {
	top := atomic.LoadInt64(&d.top)
	bottom := atomic.LoadInt64(&d.bottom)
	r := (*ring)(atomic.LoadPointer(&d.jobs))

	if bottom-top >= int64(r.cap())-1 {
		r = r.grow(bottom, top)
		atomic.StorePointer(&d.jobs, unsafe.Pointer(r))
	}
	r.put(bottom, j)
	atomic.AddInt64(&d.bottom, 1)
}

// Steal removes a job from the top, or returns nil if the deque looked
// empty or the caller lost the race. Losing is fine; the thief just
// picks another victim.
func (d *Deque) Steal() Job {
	top := atomic.LoadInt64(&d.top)
	if atomic.LoadInt64(&d.bottom) <= top {
		return nil
	}
	r := (*ring)(atomic.LoadPointer(&d.jobs))
	j := r.get(top)
	if atomic.CompareAndSwapInt64(&d.top, top, top+1) {
		return j
	}
	return nil
}

// PopBottom removes a job from the bottom. Owner only. On the last
// element the owner races the thieves and a CAS on top decides who wins.
func (d *Deque) PopBottom() Job {
	bottom := atomic.AddInt64(&d.bottom, -1)
	top := atomic.LoadInt64(&d.top)

	if bottom < top {
		// Already empty; restore the canonical empty state.
		atomic.StoreInt64(&d.bottom, top)
		return nil
	}

	r := (*ring)(atomic.LoadPointer(&d.jobs))
	j := r.get(bottom)
	if bottom > top {
		return j
	}

	// bottom == top: one job left, thieves may be after it too.
	if !atomic.CompareAndSwapInt64(&d.top, top, top+1) {
		j = nil // a thief got there first
	}
	atomic.StoreInt64(&d.bottom, top+1)
	return j
}
