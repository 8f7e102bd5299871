package queue

import (
	"context"
	"fmt"
	"math"
	"sync"
	"unsafe"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var _ Queue[int] = (*Blocking[int])(nil)

// Blocking is a fixed-capacity FIFO queue safe for any number of producers and
// consumers. Producers wait while the queue is full and consumers wait while it
// is empty. Shutdown releases every waiter: pending producers give up without
// storing their item, and consumers keep receiving resident items until the
// queue is drained.
//
// A single mutex guards all state. notFull is waited on by producers and
// notEmpty by consumers.
type Blocking[T any] struct {
	mu       sync.Mutex
	notFull  *sync.Cond
	notEmpty *sync.Cond

	slots    []T // circular storage, len == capacity until Destroy
	capacity int
	size     int // occupied slots
	head     int // oldest item
	tail     int // next insert position, (head+size) % capacity

	shutdown  bool
	destroyed bool

	logger *zap.Logger
}

// NewBlocking creates a queue holding at most capacity items.
// Returns ErrInvalidCapacity if capacity <= 0 and ErrAllocationFailure if the
// slot storage cannot be allocated.
//
// ErrAllocationFailure covers requests the runtime rejects outright: byte size
// overflowing int, or exceeding the runtime's address-space limit (about
// 256 TiB on 64-bit platforms). A request under that limit that exceeds
// available memory ends the process with a fatal out-of-memory error, which Go
// cannot recover from; bound capacity by what the host can actually back.
func NewBlocking[T any](capacity int, opts ...Option) (*Blocking[T], error) {
	if capacity <= 0 {
		return nil, errors.Wrapf(ErrInvalidCapacity, "capacity %d", capacity)
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	slots, err := allocSlots[T](capacity)
	if err != nil {
		return nil, err
	}

	q := &Blocking[T]{
		slots:    slots,
		capacity: capacity,
		logger:   o.logger,
	}
	q.notFull = sync.NewCond(&q.mu)
	q.notEmpty = sync.NewCond(&q.mu)

	return q, nil
}

// allocSlots converts an oversized request into ErrAllocationFailure instead of
// letting makeslice panic.
func allocSlots[T any](capacity int) (slots []T, err error) {
	var zero T
	if sz := unsafe.Sizeof(zero); sz > 0 && uintptr(capacity) > uintptr(math.MaxInt)/sz {
		return nil, errors.Wrapf(ErrAllocationFailure, "capacity %d of %d-byte items", capacity, sz)
	}

	defer func() {
		if r := recover(); r != nil {
			slots = nil
			err = errors.Wrapf(ErrAllocationFailure, "capacity %d: %v", capacity, r)
		}
	}()

	return make([]T, capacity), nil
}

// Enqueue appends item, waiting while the queue is full.
// It returns false without storing the item if the queue is shut down before
// space becomes available; the item then stays with the caller.
func (q *Blocking[T]) Enqueue(item T) bool {
	if q == nil {
		return false
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	for q.size == q.capacity && !q.shutdown {
		q.notFull.Wait()
	}

	if q.shutdown {
		q.logger.Debug("enqueue rejected", zap.String("reason", "shutdown"))
		return false
	}

	q.push(item)
	return true
}

// Dequeue removes the oldest item, waiting while the queue is empty.
// It returns (zero, false) once the queue is shut down and no items remain.
func (q *Blocking[T]) Dequeue() (T, bool) {
	var zero T
	if q == nil {
		return zero, false
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	for q.size == 0 && !q.shutdown {
		q.notEmpty.Wait()
	}

	if q.size == 0 {
		return zero, false
	}

	return q.pop(), true
}

// EnqueueContext is Enqueue with cancellation. It returns ctx.Err() if ctx is
// done before space becomes available and ErrShutdown if the queue is shut down.
// Cancellation affects only this call.
func (q *Blocking[T]) EnqueueContext(ctx context.Context, item T) error {
	if q == nil {
		return ErrShutdown
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.size == q.capacity && !q.shutdown {
		stop := q.wakeOnDone(ctx, q.notFull)
		defer stop()
	}

	for q.size == q.capacity && !q.shutdown {
		if err := ctx.Err(); err != nil {
			return err
		}
		q.notFull.Wait()
	}

	if q.shutdown {
		q.logger.Debug("enqueue rejected", zap.String("reason", "shutdown"))
		return ErrShutdown
	}

	q.push(item)
	return nil
}

// DequeueContext is Dequeue with cancellation. It returns ctx.Err() if ctx is
// done while the queue is empty and ErrShutdown once the queue is shut down and
// drained. A resident item is always returned in preference to an error.
func (q *Blocking[T]) DequeueContext(ctx context.Context) (T, error) {
	var zero T
	if q == nil {
		return zero, ErrShutdown
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.size == 0 && !q.shutdown {
		stop := q.wakeOnDone(ctx, q.notEmpty)
		defer stop()
	}

	for q.size == 0 && !q.shutdown {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		q.notEmpty.Wait()
	}

	if q.size == 0 {
		return zero, ErrShutdown
	}

	return q.pop(), nil
}

// wakeOnDone broadcasts cond once ctx is done. The broadcast takes the lock, so
// a waiter that saw ctx.Err() == nil under the lock is already parked when it
// fires. Other waiters woken by it re-check their predicate and park again.
func (q *Blocking[T]) wakeOnDone(ctx context.Context, cond *sync.Cond) func() bool {
	return context.AfterFunc(ctx, func() {
		q.mu.Lock()
		cond.Broadcast()
		q.mu.Unlock()
	})
}

// TryEnqueue stores item only if there is space right now.
func (q *Blocking[T]) TryEnqueue(item T) bool {
	if q == nil {
		return false
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.shutdown || q.size == q.capacity {
		return false
	}

	q.push(item)
	return true
}

// TryDequeue removes the oldest item only if one is resident right now.
func (q *Blocking[T]) TryDequeue() (T, bool) {
	var zero T
	if q == nil {
		return zero, false
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.size == 0 {
		return zero, false
	}

	return q.pop(), true
}

// EnqueueBatch enqueues items in order, waiting for space as needed.
// Returns the number stored; fewer than len(items) means the queue was shut down.
func (q *Blocking[T]) EnqueueBatch(items []T) int {
	count := 0
	for _, item := range items {
		if !q.Enqueue(item) {
			break
		}
		count++
	}
	return count
}

// DequeueBatch fills out with dequeued items, waiting for each one.
// Returns the count dequeued; fewer than len(out) means the queue was shut down and drained.
func (q *Blocking[T]) DequeueBatch(out []T) int {
	count := 0
	for i := range out {
		item, ok := q.Dequeue()
		if !ok {
			break
		}
		out[i] = item
		count++
	}
	return count
}

// Drain removes and returns all resident items in FIFO order.
func (q *Blocking[T]) Drain() []T {
	if q == nil {
		return nil
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.size == 0 {
		return nil
	}

	items := make([]T, 0, q.size)
	for q.size > 0 {
		items = append(items, q.take())
	}
	q.notFull.Broadcast()

	return items
}

// Shutdown marks the queue shut down and wakes every waiting producer and
// consumer. Resident items stay available to Dequeue. Repeated calls are no-ops.
func (q *Blocking[T]) Shutdown() {
	if q == nil {
		return
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	q.markShutdown()
}

func (q *Blocking[T]) markShutdown() {
	if !q.shutdown {
		q.shutdown = true
		q.logger.Debug("queue shut down", zap.Int("resident", q.size))
	}
	q.notEmpty.Broadcast()
	q.notFull.Broadcast()
}

// Destroy shuts the queue down and releases its storage. Items still resident
// are dropped, not handed back; call Drain first to recover them. After Destroy
// every operation behaves as on a shut down, empty queue.
func (q *Blocking[T]) Destroy() {
	if q == nil {
		return
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.destroyed {
		return
	}

	q.markShutdown()
	if q.size > 0 {
		q.logger.Info("queue destroyed with resident items", zap.Int("dropped", q.size))
	}

	q.destroyed = true
	q.slots = nil
	q.size, q.head, q.tail = 0, 0, 0
}

// IsEmpty reports whether the queue held no items at the time of the call.
func (q *Blocking[T]) IsEmpty() bool {
	if q == nil {
		return true
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size == 0
}

// IsFull reports whether the queue was at capacity at the time of the call.
func (q *Blocking[T]) IsFull() bool {
	if q == nil {
		return false
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	return !q.destroyed && q.size == q.capacity
}

// IsShutdown reports whether Shutdown or Destroy has been called. Once true it stays true.
func (q *Blocking[T]) IsShutdown() bool {
	if q == nil {
		return true
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	return q.shutdown
}

// Len returns the number of resident items at the time of the call.
func (q *Blocking[T]) Len() int {
	if q == nil {
		return 0
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size
}

// Capacity returns the maximum number of resident items.
func (q *Blocking[T]) Capacity() int {
	if q == nil {
		return 0
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	return q.capacity
}

func (q *Blocking[T]) String() string {
	if q == nil {
		return "Blocking(nil)"
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	return fmt.Sprintf("Blocking(len=%d cap=%d shutdown=%t)", q.size, q.capacity, q.shutdown)
}

// push requires q.mu held and size < capacity.
func (q *Blocking[T]) push(item T) {
	q.slots[q.tail] = item
	q.tail++
	if q.tail == q.capacity {
		q.tail = 0
	}
	q.size++
	q.notEmpty.Signal()
}

// pop requires q.mu held and size > 0.
func (q *Blocking[T]) pop() T {
	item := q.take()
	q.notFull.Signal()
	return item
}

// take removes the head item without waking anyone.
func (q *Blocking[T]) take() T {
	var zero T
	item := q.slots[q.head]
	q.slots[q.head] = zero
	q.head++
	if q.head == q.capacity {
		q.head = 0
	}
	q.size--
	return item
}
