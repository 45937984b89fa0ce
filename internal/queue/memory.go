package queue

import (
	"sync"
	"time"
)

// MemoryQueue implements Queue using a buffered channel
type MemoryQueue[T any] struct {
	items  chan T
	mu     sync.RWMutex
	closed bool
	config *Config
}

// NewMemoryQueue creates a new in-memory queue
func NewMemoryQueue[T any](config *Config) *MemoryQueue[T] {
	if config == nil {
		config = DefaultConfig("memory")
	}
	if config.Capacity <= 0 {
		config.Capacity = DefaultCapacity
	}

	return &MemoryQueue[T]{
		items:  make(chan T, config.Capacity),
		config: config,
	}
}

// Offer adds an item to the queue without blocking
func (q *MemoryQueue[T]) Offer(item T) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.items <- item:
		return nil
	default:
		return ErrQueueFull
	}
}

// Drain removes up to maxItems from the head of the queue
func (q *MemoryQueue[T]) Drain(maxItems int) []T {
	var items []T
	for len(items) < maxItems {
		select {
		case item := <-q.items:
			items = append(items, item)
		default:
			return items
		}
	}
	return items
}

// DrainWithTimeout waits for the first item, then drains without blocking
func (q *MemoryQueue[T]) DrainWithTimeout(maxItems int, timeout time.Duration) []T {
	if maxItems <= 0 {
		return nil
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case item := <-q.items:
		return append([]T{item}, q.Drain(maxItems-1)...)
	case <-timer.C:
		return nil
	}
}

// Length returns the current queue length
func (q *MemoryQueue[T]) Length() int {
	return len(q.items)
}

func (q *MemoryQueue[T]) Capacity() int {
	return cap(q.items)
}

func (q *MemoryQueue[T]) Name() string {
	return q.config.QueueName
}

// Close stops the queue from accepting new items
func (q *MemoryQueue[T]) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.closed = true
	return nil
}

var _ Queue[int] = (*MemoryQueue[int])(nil)
