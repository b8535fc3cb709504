package size

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultPoolCapacity is maximum number of idle sizes kept for reuse.
	DefaultPoolCapacity = 200

	// poolCleanupInterval limits how often Acquire looks at pool size.
	poolCleanupInterval = time.Minute
)

// PoolStats holds pool diagnostics. Counters only grow until Clear.
type PoolStats struct {
	Hits     uint64
	Misses   uint64
	Created  uint64
	Idle     int
	Capacity int
}

// Pool keeps released Size instances for reuse. Release is a hand-off:
// after releasing an instance the caller must not touch it again, the next
// Acquire may give it to somebody else.
type Pool struct {
	mu          sync.Mutex
	ctx         *Context
	log         *zap.Logger
	free        []*Size
	capacity    int
	now         func() time.Time
	lastCleanup time.Time

	hits, misses, created uint64
}

func newPool(ctx *Context, capacity int, now func() time.Time) *Pool {
	return &Pool{
		ctx:         ctx,
		log:         ctx.log.Named("pool"),
		free:        make([]*Size, 0, capacity),
		capacity:    capacity,
		now:         now,
		lastCleanup: now(),
	}
}

// Acquire returns a pooled Size holding parsed input. Root font size which
// is not positive means context default.
func (p *Pool) Acquire(in any, rootFontSize float64) *Size {
	if rootFontSize <= 0 {
		rootFontSize = p.ctx.root
	}
	v := p.ctx.Parse(in)

	p.mu.Lock()
	p.cleanup()
	var s *Size
	if n := len(p.free); n > 0 {
		s = p.free[n-1]
		p.free[n-1] = nil
		p.free = p.free[:n-1]
		p.hits++
	} else {
		s = &Size{ctx: p.ctx}
		p.misses++
		p.created++
	}
	p.mu.Unlock()

	s.init(v, rootFontSize)
	s.state.pooled = true
	return s
}

// Release resets s and keeps it for reuse if there is room. Sizes not
// obtained from Acquire, and sizes already released, are ignored.
func (p *Pool) Release(s *Size) {
	if s == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if !s.state.pooled || s.ctx != p.ctx {
		return
	}
	s.reset()
	if len(p.free) < p.capacity {
		p.free = append(p.free, s)
	}
}

// cleanup halves the idle list when it somehow grew past capacity. Runs at
// most once per poolCleanupInterval. Caller holds p.mu.
func (p *Pool) cleanup() {
	now := p.now()
	if now.Sub(p.lastCleanup) < poolCleanupInterval {
		return
	}
	p.lastCleanup = now
	if len(p.free) <= p.capacity {
		return
	}
	keep := len(p.free) / 2
	clear(p.free[keep:])
	p.free = p.free[:keep]
	p.log.Debug("Pool trimmed", zap.Int("kept", keep), zap.Int("capacity", p.capacity))
}

// Stats returns pool diagnostics.
func (p *Pool) Stats() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()

	return PoolStats{
		Hits:     p.hits,
		Misses:   p.misses,
		Created:  p.created,
		Idle:     len(p.free),
		Capacity: p.capacity,
	}
}

// Clear drops all idle instances and resets counters.
func (p *Pool) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()

	clear(p.free)
	p.free = p.free[:0]
	p.hits, p.misses, p.created = 0, 0, 0
}

// Grow pre-populates the pool up to n idle instances, never beyond capacity.
func (p *Pool) Grow(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for len(p.free) < n && len(p.free) < p.capacity {
		s := &Size{ctx: p.ctx}
		s.reset()
		p.free = append(p.free, s)
		p.created++
	}
}
