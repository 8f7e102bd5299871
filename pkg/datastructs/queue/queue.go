package queue

// Queue is a generic interface for bounded FIFO queues.
type Queue[T any] interface {
	// Enqueue adds an item to the queue, waiting for space if the queue is full.
	// Returns true if the item was stored, false if the queue was shut down first.
	Enqueue(item T) bool

	// Dequeue removes and returns the oldest item, waiting while the queue is empty.
	// Returns (zero, false) once the queue is shut down and drained.
	Dequeue() (T, bool)

	// Capacity returns the total capacity of the queue.
	Capacity() int
}
