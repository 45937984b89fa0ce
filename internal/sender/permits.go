package sender

import "sync/atomic"

// permits is an advisory counter of delivery slots. It never blocks: a
// failed acquire only means the batch is submitted without a permit, and
// only a successful acquire is released. The hard cap on concurrency is the
// worker slot channel.
type permits struct {
	available atomic.Int32
	ceiling   int32
}

func newPermits(initial, ceiling int) *permits {
	p := &permits{ceiling: int32(ceiling)}
	p.available.Store(int32(initial))
	return p
}

func (p *permits) tryAcquire() bool {
	for {
		current := p.available.Load()
		if current <= 0 {
			return false
		}
		if p.available.CompareAndSwap(current, current-1) {
			return true
		}
	}
}

// release returns a permit, never going above the ceiling.
func (p *permits) release() {
	for {
		current := p.available.Load()
		if current >= p.ceiling {
			return
		}
		if p.available.CompareAndSwap(current, current+1) {
			return
		}
	}
}

func (p *permits) value() int {
	return int(p.available.Load())
}
