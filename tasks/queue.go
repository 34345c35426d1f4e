package tasks

import (
	"runtime"
	"sync/atomic"
)

// spinLock is a test-and-set lock. The queue's critical sections are a
// handful of instructions, so spinning with Gosched is cheaper than
// parking on a mutex.
type spinLock struct {
	state uint32
}

func (l *spinLock) lock() {
	for atomic.SwapUint32(&l.state, 1) == 1 {
		runtime.Gosched()
	}
}

func (l *spinLock) unlock() {
	atomic.StoreUint32(&l.state, 0)
}

// Queue is a FIFO of tasks shared by the file-parallel workers. Dequeue
// is safe to call from any number of goroutines.
type Queue struct {
	lock  spinLock
	tasks []Task
}

// NewQueue returns a queue holding the given tasks in order.
func NewQueue(tasks []Task) *Queue {
	q := &Queue{tasks: make([]Task, len(tasks))}
	copy(q.tasks, tasks)
	return q
}

// Len returns the number of tasks currently queued.
func (q *Queue) Len() int {
	q.lock.lock()
	n := len(q.tasks)
	q.lock.unlock()
	return n
}

// Dequeue removes and returns the next task, or nil when the queue is
// drained.
func (q *Queue) Dequeue() *Task {
	q.lock.lock()
	defer q.lock.unlock()
	if len(q.tasks) == 0 {
		return nil
	}
	task := q.tasks[0]
	q.tasks = q.tasks[1:]
	return &task
}
