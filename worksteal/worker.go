package worksteal

import (
	"math/rand"
	"runtime"
)

// Worker drains its own deque and steals from the others when it runs
// dry. Workers keep stealing until the done channel closes, so the
// coordinator must only close it after every pushed job has finished
// (e.g. by joining on a WaitGroup the jobs signal).
type Worker struct {
	id     int
	deques []*Deque
	rng    *rand.Rand
}

// NewWorker returns worker id with access to every deque; deques[id] is
// the one it owns.
func NewWorker(id int, deques []*Deque) *Worker {
	return &Worker{id: id, deques: deques, rng: rand.New(rand.NewSource(int64(id) + 1))}
}

// Push adds a job to the worker's own deque.
func (w *Worker) Push(j Job) {
	w.deques[w.id].PushBottom(j)
}

// Run executes jobs until done closes: first everything in its own
// deque, then whatever it can steal from random victims.
func (w *Worker) Run(done <-chan struct{}) {
	own := w.deques[w.id]
	for {
		for j := own.PopBottom(); j != nil; j = own.PopBottom() {
			j.Run(w.id)
		}

		select {
		case <-done:
			return
		default:
		}

		if j := w.steal(); j != nil {
			j.Run(w.id)
		} else {
			runtime.Gosched()
		}
	}
}

// steal picks a random victim other than itself and tries to take the
// top of its deque.
func (w *Worker) steal() Job {
	if len(w.deques) < 2 {
		return nil
	}
	victim := w.rng.Intn(len(w.deques))
	for victim == w.id {
		victim = w.rng.Intn(len(w.deques))
	}
	if w.deques[victim].Empty() {
		return nil
	}
	return w.deques[victim].Steal()
}
