package batcher

// stripe is a single worker's batch buffer. It is NOT thread-safe.
type stripe[T any] struct {
	cons Consumer[T]
	data []T
	cap  int
}

// newStripe creates a new stripe with the given consumer and capacity.
func newStripe[T any](cons Consumer[T], capacity int) *stripe[T] {
	return &stripe[T]{
		cons: cons,
		data: make([]T, 0, capacity),
		cap:  capacity,
	}
}

// Push appends an item to the stripe.
// If the stripe becomes full, it flushes data to the consumer.
func (s *stripe[T]) Push(item T) error {
	s.data = append(s.data, item)

	if len(s.data) >= s.cap {
		return s.Flush()
	}
	return nil
}

// Flush hands buffered items to the consumer. A failed batch is not retried.
func (s *stripe[T]) Flush() error {
	if len(s.data) == 0 {
		return nil
	}

	batch := s.data
	// The Consumer owns the passed slice, so the stripe starts a fresh one.
	s.data = make([]T, 0, s.cap)

	return s.cons.Consume(batch)
}

// Len returns the number of buffered items.
func (s *stripe[T]) Len() int { return len(s.data) }
