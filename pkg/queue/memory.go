package queue

const (
	// QueueBufferSize is the default capacity of a queue
	QueueBufferSize = 1024
)

// InMemoryQueue implements Queue over a buffered channel.
type InMemoryQueue[T any] struct {
	ch chan T
}

// NewInMemoryQueue creates a queue holding up to size items.
// A non-positive size uses QueueBufferSize.
func NewInMemoryQueue[T any](size int) *InMemoryQueue[T] {
	if size <= 0 {
		size = QueueBufferSize
	}
	return &InMemoryQueue[T]{
		ch: make(chan T, size),
	}
}

// Enqueue adds an item to the end of the queue without blocking.
func (q *InMemoryQueue[T]) Enqueue(item T) error {
	select {
	case q.ch <- item:
		return nil
	default:
		return ErrQueueFull
	}
}

// Size returns the current size of the queue.
func (q *InMemoryQueue[T]) Size() int {
	return len(q.ch)
}

// ReadAllMessages reads the items pending when it was called.
func (q *InMemoryQueue[T]) ReadAllMessages() []T {
	n := len(q.ch)
	if n == 0 {
		return nil
	}
	items := make([]T, 0, n)
	for i := 0; i < n; i++ {
		select {
		case item := <-q.ch:
			items = append(items, item)
		default:
			return items
		}
	}
	return items
}

// ClearQueue drops all pending items.
func (q *InMemoryQueue[T]) ClearQueue() {
	for {
		select {
		case <-q.ch:
		default:
			return
		}
	}
}
