package queue

import "errors"

// ErrQueueFull is returned by Enqueue when the buffer has no room left.
var ErrQueueFull = errors.New("queue is full")

// Queue is a bounded FIFO shared between producer goroutines and the tick loop.
type Queue[T any] interface {
	Enqueue(item T) error
	Size() int
	// ReadAllMessages drains every pending item without blocking.
	ReadAllMessages() []T
	ClearQueue()
}
