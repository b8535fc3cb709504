// Package size implements the computation context of the engine: shared
// bounded caches for parsing, formatting and unit conversion, the reuse
// pool of Size instances and the Size arithmetic facade itself.
//
// There is no process wide state. Everything hangs off a Context which the
// caller constructs once and hands to consumers (fluid calculator, manager).
//
//	ctx := size.NewContext(size.WithLogger(log))
//	s := ctx.New("16px")
//	total := s.Add("1rem")           // 32px
//	rem := total.Rem()               // 2
//	half, err := total.Divide(2)     // 16px, nil
//
// Parsing never fails: anything that does not look like a size becomes 0px.
// Arithmetic never fails except Divide by zero, which returns
// ErrDivisionByZero.
package size

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"sizekit/cache"
	"sizekit/units"
)

// Cache capacities.
const (
	ParseCacheCapacity      = 200
	FormatCacheCapacity     = 200
	ConversionCacheCapacity = 500
)

// StatsSource is anything able to report cache counters, *cache.FIFO in
// particular.
type StatsSource interface {
	Stats() cache.Stats
}

// Context carries caches and the pool shared by all sizes created from it.
type Context struct {
	root float64
	log  *zap.Logger

	parse  *cache.FIFO[string, units.Value]
	format *cache.FIFO[string, string]
	conv   *cache.FIFO[string, units.Value]
	pool   *Pool

	mu      sync.Mutex
	tracked []StatsSource
}

type options struct {
	root         float64
	log          *zap.Logger
	poolCapacity int
	now          func() time.Time
}

// Option configures Context.
type Option func(*options)

// WithLogger sets logger, nil means no logging.
func WithLogger(log *zap.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

// WithRootFontSize sets default root font size used for rem and em. Values
// which are not positive are ignored.
func WithRootFontSize(px float64) Option {
	return func(o *options) {
		if px > 0 {
			o.root = px
		}
	}
}

// WithPoolCapacity sets maximum number of idle instances kept by the pool.
func WithPoolCapacity(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.poolCapacity = n
		}
	}
}

// WithClock replaces time source used by pool housekeeping.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// NewContext creates computation context.
func NewContext(opts ...Option) *Context {
	o := options{
		root:         units.DefaultRootFontSize,
		poolCapacity: DefaultPoolCapacity,
		now:          time.Now,
	}
	for _, setOpt := range opts {
		setOpt(&o)
	}
	if o.log == nil {
		o.log = zap.NewNop()
	}

	ctx := &Context{
		root:   o.root,
		log:    o.log.Named("sizing"),
		parse:  cache.New[string, units.Value]("parse", ParseCacheCapacity),
		format: cache.New[string, string]("format", FormatCacheCapacity),
		conv:   cache.New[string, units.Value]("conversion", ConversionCacheCapacity),
	}
	ctx.pool = newPool(ctx, o.poolCapacity, o.now)
	ctx.tracked = []StatsSource{ctx.parse, ctx.format, ctx.conv}
	return ctx
}

// RootFontSize returns default root font size in pixels.
func (c *Context) RootFontSize() float64 {
	return c.root
}

// Logger returns context logger, never nil.
func (c *Context) Logger() *zap.Logger {
	return c.log
}

// Pool returns the instance pool of this context.
func (c *Context) Pool() *Pool {
	return c.pool
}

// Parse turns caller input into a value. Accepted: any Go number (pixels),
// units.Value, *Size and strings like "1.5rem". Everything else, including
// malformed strings, is 0px. String results are cached by literal input.
func (c *Context) Parse(in any) units.Value {
	switch v := in.(type) {
	case units.Value:
		return v
	case *Size:
		if v == nil {
			return units.Zero
		}
		return v.val
	case string:
		return c.parse.Fetch(v, func() units.Value {
			val, ok := units.ParseString(v)
			if !ok {
				c.log.Debug("Unable to parse size, using 0px", zap.String("input", v))
			}
			return val
		})
	}
	if val, ok := units.FromNumber(in); ok {
		return val
	}
	return units.Zero
}

// Format returns canonical CSS text for the value, cached by (value, unit).
func (c *Context) Format(v units.Value) string {
	return c.format.Fetch(valueKey(v), func() string {
		return units.Format(v)
	})
}

// Convert converts value using context root font size.
func (c *Context) Convert(v units.Value, to units.Unit) units.Value {
	return c.ConvertWithRoot(v, to, c.root)
}

// ConvertWithRoot converts value, results are cached by (value, from, to,
// root).
func (c *Context) ConvertWithRoot(v units.Value, to units.Unit, root float64) units.Value {
	if v.Unit == to {
		return v
	}
	var b strings.Builder
	b.Grow(32)
	b.WriteString(valueKey(v))
	b.WriteByte('>')
	b.WriteString(to.String())
	b.WriteByte('@')
	b.WriteString(strconv.FormatFloat(root, 'g', -1, 64))
	return c.conv.Fetch(b.String(), func() units.Value {
		return units.Convert(v, to, root)
	})
}

// New creates Size which is not managed by the pool.
func (c *Context) New(in any) *Size {
	return c.NewWithRoot(in, c.root)
}

// NewWithRoot creates Size with specific root font size.
func (c *Context) NewWithRoot(in any, root float64) *Size {
	if root <= 0 {
		root = c.root
	}
	return &Size{ctx: c, val: c.Parse(in), root: root}
}

// TrackCaches adds external caches to the ones reported by CacheStats and
// metrics. Returned function stops tracking them.
func (c *Context) TrackCaches(srcs ...StatsSource) (untrack func()) {
	c.mu.Lock()
	c.tracked = append(c.tracked, srcs...)
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		kept := c.tracked[:0]
		for _, t := range c.tracked {
			drop := false
			for _, s := range srcs {
				if t == s {
					drop = true
					break
				}
			}
			if !drop {
				kept = append(kept, t)
			}
		}
		c.tracked = kept
	}
}

// CacheStats returns counters of all tracked caches.
func (c *Context) CacheStats() []cache.Stats {
	c.mu.Lock()
	srcs := make([]StatsSource, len(c.tracked))
	copy(srcs, c.tracked)
	c.mu.Unlock()

	stats := make([]cache.Stats, 0, len(srcs))
	for _, s := range srcs {
		stats = append(stats, s.Stats())
	}
	return stats
}

// Destroy clears context caches and the pool.
func (c *Context) Destroy() {
	c.parse.Clear()
	c.format.Clear()
	c.conv.Clear()
	c.pool.Clear()
	c.log.Debug("Context destroyed")
}

func valueKey(v units.Value) string {
	return strconv.FormatFloat(v.Value, 'g', -1, 64) + v.Unit.String()
}
