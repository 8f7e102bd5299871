package batcher

import (
	"time"

	"github.com/huynhanx03/blockq/pkg/settings"
)

// Consumer is the interface that must be implemented by users of the Batcher.
// It is responsible for processing a batch of items.
type Consumer[T any] interface {
	// Consume processes a batch of items. The batch is owned by the Consumer.
	// A non-nil error stops the Batcher.
	Consume(batch []T) error
}

// ConsumerFunc adapts a plain function to the Consumer interface.
type ConsumerFunc[T any] func(batch []T) error

// Consume calls f(batch).
func (f ConsumerFunc[T]) Consume(batch []T) error { return f(batch) }

// Config holds configuration for the Batcher.
type Config struct {
	// Workers is the number of goroutines draining the queue.
	Workers int

	// BatchSize is the capacity of a worker's stripe.
	// When a stripe reaches this size, it will be flushed to the Consumer.
	BatchSize int

	// FlushInterval flushes a partially filled stripe after waiting this long
	// for the next item. Zero flushes only on full stripes and at exit.
	FlushInterval time.Duration
}

// ConfigFrom converts the settings section into a Config.
func ConfigFrom(s settings.Batcher) Config {
	return Config{
		Workers:       s.Workers,
		BatchSize:     s.BatchSize,
		FlushInterval: s.FlushInterval,
	}
}
