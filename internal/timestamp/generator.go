// Package timestamp produces strictly increasing RFC 3339 timestamps with
// nanosecond precision.
package timestamp

import (
	"sync"
	"time"
)

// Layout always renders nine fractional digits in UTC.
const Layout = "2006-01-02T15:04:05.000000000Z"

// Generator hands out timestamps that never repeat or go backwards, even when
// the wall clock does. Safe for concurrent use.
type Generator struct {
	mu        sync.Mutex
	lastNanos int64
	now       func() time.Time
}

func NewGenerator() *Generator {
	return &Generator{now: time.Now}
}

// NewGeneratorWithClock is used by tests to drive the clock by hand.
func NewGeneratorWithClock(now func() time.Time) *Generator {
	return &Generator{now: now}
}

// Next returns the next timestamp, formatted with Layout.
func (g *Generator) Next() string {
	return time.Unix(0, g.NextNanos()).UTC().Format(Layout)
}

// NextNanos returns the next value as nanoseconds since the Unix epoch.
func (g *Generator) NextNanos() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	current := g.now().UnixNano()
	if current <= g.lastNanos {
		current = g.lastNanos + 1
	}
	g.lastNanos = current
	return current
}
