// Package job serializes access to the editor core. Closures posted here
// run one at a time with exclusive ownership of the editor state, which
// removes data races by construction: background tasks never mutate
// shared state, they post proposals.
package job

import (
	"sync"

	"quill/internal/editor"
)

// Task is a closure run with exclusive access to the editor.
type Task func(*editor.Editor)

// Queue is the single-threaded cooperative core. Run drains tasks in FIFO
// order until Close.
type Queue struct {
	ed    *editor.Editor
	tasks chan Task

	closeOnce sync.Once
	done      chan struct{}
}

// NewQueue creates a queue owning the given editor.
func NewQueue(ed *editor.Editor) *Queue {
	return &Queue{
		ed:    ed,
		tasks: make(chan Task, 128),
		done:  make(chan struct{}),
	}
}

// Run executes posted tasks until the queue is closed. It is the only
// goroutine that ever touches the editor.
func (q *Queue) Run() {
	defer close(q.done)
	for task := range q.tasks {
		task(q.ed)
	}
}

// Dispatch posts a task for later execution. Safe from any goroutine.
// Posts after Close are dropped.
func (q *Queue) Dispatch(task Task) {
	defer func() {
		// The queue raced with Close; the task is dropped like any other
		// post-shutdown proposal.
		_ = recover()
	}()
	select {
	case <-q.done:
	default:
		q.tasks <- task
	}
}

// DispatchWait posts a task and blocks until it has run. Must not be
// called from a task already on the queue.
func (q *Queue) DispatchWait(task Task) {
	ran := make(chan struct{})
	q.Dispatch(func(ed *editor.Editor) {
		defer close(ran)
		task(ed)
	})
	select {
	case <-ran:
	case <-q.done:
	}
}

// Close stops the queue after the already-posted tasks drain.
func (q *Queue) Close() {
	q.closeOnce.Do(func() {
		close(q.tasks)
	})
}

// Done returns a channel closed once Run has finished.
func (q *Queue) Done() <-chan struct{} {
	return q.done
}
