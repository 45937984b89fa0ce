package queue

import "errors"

var (
	// ErrQueueClosed is returned when operating on a closed queue
	ErrQueueClosed = errors.New("queue is closed")

	// ErrQueueFull is returned when an item is offered to a queue at capacity
	ErrQueueFull = errors.New("queue is full")
)
