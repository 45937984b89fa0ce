// Package queue holds the bounded in-memory buffer that sits between log
// producers and the delivery engine.
//
//	producers ──Offer──▶ ┌──────────────┐ ──Drain(n)──▶ batch cut
//	  (never block)      │ bounded FIFO │   (timer or flush)
//	                     └──────────────┘
//
// A full queue drops the newest item instead of blocking the producer.
package queue

import "time"

// Queue is a bounded FIFO.
type Queue[T any] interface {
	// Offer adds item without blocking. It returns ErrQueueFull when the
	// queue is at capacity and ErrQueueClosed after Close.
	Offer(item T) error

	// Drain removes up to maxItems from the head without blocking.
	Drain(maxItems int) []T

	// DrainWithTimeout waits up to timeout for the first item, then drains
	// like Drain.
	DrainWithTimeout(maxItems int, timeout time.Duration) []T

	Length() int
	Capacity() int

	// Close stops accepting items. Items already queued can still be drained.
	Close() error
}

// Config holds queue configuration
type Config struct {
	// Capacity is the maximum number of buffered items
	Capacity int

	// QueueName identifies the queue in diagnostics
	QueueName string
}

const DefaultCapacity = 10_000

// DefaultConfig returns default queue configuration
func DefaultConfig(queueName string) *Config {
	return &Config{
		Capacity:  DefaultCapacity,
		QueueName: queueName,
	}
}
