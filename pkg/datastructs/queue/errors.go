package queue

import "github.com/pkg/errors"

var (
	// ErrInvalidCapacity is returned when constructing a queue with capacity <= 0.
	ErrInvalidCapacity = errors.New("queue: capacity must be positive")

	// ErrAllocationFailure is returned when the slot storage cannot be allocated.
	ErrAllocationFailure = errors.New("queue: cannot allocate storage")

	// ErrShutdown is returned by the context-aware operations once the queue is shut down.
	ErrShutdown = errors.New("queue: shut down")
)
