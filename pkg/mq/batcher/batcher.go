package batcher

import (
	"context"
	"sync/atomic"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/huynhanx03/blockq/pkg/datastructs/queue"
)

const (
	defaultWorkers   = 1
	defaultBatchSize = 512
)

// Batcher drains a Blocking queue with a fixed set of workers.
//
// Behavior:
//   - Each worker dequeues into its own stripe and hands a full stripe to the Consumer.
//   - With FlushInterval set, a partial stripe is flushed once no item arrives for that long.
//   - When the queue is shut down and drained, every worker flushes its remainder and exits.
//   - Every dequeued item reaches exactly one Consume call unless Consume fails.
type Batcher[T any] struct {
	q      *queue.Blocking[T]
	cons   Consumer[T]
	cfg    Config
	logger *zap.Logger

	items   atomic.Int64
	batches atomic.Int64
}

// Stats is a snapshot of delivered work.
type Stats struct {
	Items   int64
	Batches int64
}

// Option configures a Batcher.
type Option func(*options)

type options struct {
	logger *zap.Logger
}

// WithLogger sets the logger for worker lifecycle and consume failures.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// New creates a Batcher for q. Non-positive Workers or BatchSize fall back to defaults.
func New[T any](q *queue.Blocking[T], cons Consumer[T], cfg Config, opts ...Option) *Batcher[T] {
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.FlushInterval < 0 {
		cfg.FlushInterval = 0
	}

	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	return &Batcher[T]{
		q:      q,
		cons:   cons,
		cfg:    cfg,
		logger: o.logger,
	}
}

// Run drains the queue until it is shut down and empty, or until ctx is done.
// It returns nil after a full drain, ctx.Err() after cancellation, and the
// first Consume error otherwise. Workers flush held items before returning in
// every case.
func (b *Batcher[T]) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for id := 0; id < b.cfg.Workers; id++ {
		id := id
		g.Go(func() error {
			return b.work(gctx, id)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// Stats returns the number of items and batches handed to the Consumer.
func (b *Batcher[T]) Stats() Stats {
	return Stats{
		Items:   b.items.Load(),
		Batches: b.batches.Load(),
	}
}

func (b *Batcher[T]) work(ctx context.Context, id int) error {
	log := b.logger.With(zap.Int("worker", id))
	s := newStripe[T](ConsumerFunc[T](b.deliver), b.cfg.BatchSize)

	for {
		item, err := b.next(ctx, s.Len() > 0)
		switch {
		case err == nil:
			if err := s.Push(item); err != nil {
				log.Error("consume failed", zap.Error(err))
				return errors.Wrapf(err, "worker %d", id)
			}

		case errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil:
			if err := s.Flush(); err != nil {
				log.Error("consume failed", zap.Error(err))
				return errors.Wrapf(err, "worker %d", id)
			}

		default:
			// Queue drained after shutdown, or ctx done.
			if err := s.Flush(); err != nil {
				log.Error("consume failed", zap.Error(err))
				return errors.Wrapf(err, "worker %d", id)
			}
			log.Debug("worker stopped", zap.NamedError("cause", err))
			return nil
		}
	}
}

// next waits for the next item. While the stripe holds items and a flush
// interval is configured, the wait is bounded by that interval.
func (b *Batcher[T]) next(ctx context.Context, holding bool) (T, error) {
	if !holding || b.cfg.FlushInterval == 0 {
		return b.q.DequeueContext(ctx)
	}

	tctx, cancel := context.WithTimeout(ctx, b.cfg.FlushInterval)
	defer cancel()
	return b.q.DequeueContext(tctx)
}

func (b *Batcher[T]) deliver(batch []T) error {
	if err := b.cons.Consume(batch); err != nil {
		return errors.Wrapf(err, "consume batch of %d", len(batch))
	}
	b.items.Add(int64(len(batch)))
	b.batches.Add(1)
	return nil
}
