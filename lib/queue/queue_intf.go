package queue

import "errors"

var (
	ErrQueueEmpty = errors.New("[queue] empty")
)

// Queue is a FIFO queue.
// It is not thread safe.
type Queue[E any] interface {
	Len() int64
	IsEmpty() bool
	// Enqueue appends the elements to the tail in order.
	Enqueue(elements ...E)
	// Dequeue removes and returns the head element.
	// Returns ErrQueueEmpty if there is nothing to remove.
	Dequeue() (E, error)
	// Peek returns the head element without removing it.
	Peek() (E, error)
	// Foreach visits the elements from head to tail until action returns false.
	Foreach(action func(idx int64, e E) bool)
	Clear()
}
