// Package queue runs tasks one at a time in submission order. The client
// uses one queue for the outbound write path and one for inbound dispatch,
// which is what guarantees subscribers see console lines in arrival order.
package queue

import (
	"sync"
)

type Error uint8

const (
	ErrQueueIsFull    Error = 0
	ErrQueueIsStopped Error = 1
)

func (e Error) Error() string {
	switch e {
	case ErrQueueIsFull:
		return "queue is full"
	case ErrQueueIsStopped:
		return "queue is stopped"
	default:
		return "unknown error"
	}
}

type Queue struct {
	mu    sync.Mutex
	tasks chan func()
	done  chan struct{}
}

// New creates a queue with the given capacity and starts its worker.
func New(size int) *Queue {
	if size < 1 {
		panic("queue size must be at least 1")
	}
	q := &Queue{
		tasks: make(chan func(), size),
		done:  make(chan struct{}),
	}
	go q.run()
	return q
}

func (q *Queue) run() {
	defer close(q.done)
	for task := range q.tasks {
		task()
	}
}

// Push submits a task. It never blocks; a full queue is an error.
func (q *Queue) Push(task func()) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.tasks == nil {
		return ErrQueueIsStopped
	}
	select {
	case q.tasks <- task:
		return nil
	default:
		return ErrQueueIsFull
	}
}

// Close stops the worker after draining queued tasks. Idempotent.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.tasks != nil {
		close(q.tasks)
		q.tasks = nil
	}
}

// Wait blocks until the worker has drained and exited after Close.
func (q *Queue) Wait() {
	<-q.done
}
