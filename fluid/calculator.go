// Package fluid produces CSS expressions for sizes which scale linearly with
// the viewport width, and modular (geometric) type scales.
//
// A fluid size grows from Min at ViewportMin to Max at ViewportMax:
//
//	slope     = (max - min) / (viewportMax - viewportMin)
//	intercept = min - slope * viewportMin
//	preferred = calc(<intercept>rem + <slope*100>vw)
//	result    = clamp(<min>, <preferred>, <max>)
//
// Numeric inputs are not validated. NaN or infinite values end up in the
// output text as is, checking them is up to the caller.
package fluid

import (
	"math"
	"slices"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"sizekit/cache"
	"sizekit/size"
	"sizekit/units"
)

const (
	SlopeCacheCapacity = 100
	FluidCacheCapacity = 200
	ScaleCacheCapacity = 500

	// number of oldest fluid expressions kept when viewport changes
	retainOnViewportChange = 50

	fluidDecimals = 4
	scaleDecimals = 3
)

// Options describes a fluid size.
type Options struct {
	Min         units.Value
	Max         units.Value
	ViewportMin float64 // px
	ViewportMax float64 // px
	// NoClamp returns bare calc() expression without clamp() bounds.
	NoClamp bool
}

// Calculator creates fluid expressions and modular scales, caching results.
type Calculator struct {
	ctx *size.Context
	log *zap.Logger

	mu          sync.Mutex
	viewport    Viewport
	unsubscribe func()

	slopes  *cache.FIFO[string, float64]
	fluid   *cache.FIFO[string, string]
	scales  *cache.FIFO[string, []string]
	untrack func()
}

// New creates calculator working in given computation context.
func New(ctx *size.Context, log *zap.Logger) *Calculator {
	if log == nil {
		log = ctx.Logger()
	}
	c := &Calculator{
		ctx:    ctx,
		log:    log.Named("fluid"),
		slopes: cache.New[string, float64]("slope", SlopeCacheCapacity),
		fluid:  cache.New[string, string]("fluid", FluidCacheCapacity),
		scales: cache.New[string, []string]("modular-scale", ScaleCacheCapacity),
	}
	c.untrack = ctx.TrackCaches(c.slopes, c.fluid, c.scales)
	return c
}

// Watch subscribes to viewport changes of src, replacing previous source
// if any. Returned function unsubscribes, calling it more than once is
// harmless.
func (c *Calculator) Watch(src ViewportSource) func() {
	var once sync.Once
	cancel := src.Subscribe(func(vp Viewport) {
		c.OnViewportChange(vp)
	})
	unsubscribe := func() { once.Do(cancel) }

	c.mu.Lock()
	prev := c.unsubscribe
	c.viewport = src.Viewport()
	c.unsubscribe = unsubscribe
	c.mu.Unlock()

	if prev != nil {
		prev()
	}
	return unsubscribe
}

// Viewport returns last observed viewport.
func (c *Calculator) Viewport() Viewport {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewport
}

// OnViewportChange records new viewport. When it differs from the stored
// one the fluid cache is trimmed to its oldest entries. Reports whether
// anything changed.
func (c *Calculator) OnViewportChange(vp Viewport) bool {
	c.mu.Lock()
	if c.viewport == vp {
		c.mu.Unlock()
		return false
	}
	c.viewport = vp
	c.mu.Unlock()

	if dropped := c.fluid.Retain(retainOnViewportChange); dropped > 0 {
		c.log.Debug("Viewport changed, fluid cache trimmed",
			zap.Float64("width", vp.Width),
			zap.Float64("height", vp.Height),
			zap.String("device", vp.DeviceClass),
			zap.Int("dropped", dropped))
	}
	return true
}

// Slope returns pixel growth per pixel of viewport width.
func (c *Calculator) Slope(minSize, maxSize units.Value, viewportMin, viewportMax float64) float64 {
	key := joinKey(fkey(minSize.Value)+minSize.Unit.String(), fkey(maxSize.Value)+maxSize.Unit.String(),
		fkey(viewportMin), fkey(viewportMax))
	return c.slopes.Fetch(key, func() float64 {
		minPx := c.ctx.Convert(minSize, units.UnitPx).Value
		maxPx := c.ctx.Convert(maxSize, units.UnitPx).Value
		return (maxPx - minPx) / (viewportMax - viewportMin)
	})
}

// CreateFluidSize returns clamp() expression, or bare calc() when
// o.NoClamp is set.
func (c *Calculator) CreateFluidSize(o Options) string {
	key := joinKey(fkey(o.Min.Value)+o.Min.Unit.String(), fkey(o.Max.Value)+o.Max.Unit.String(),
		fkey(o.ViewportMin), fkey(o.ViewportMax), strconv.FormatBool(!o.NoClamp), fkey(c.ctx.RootFontSize()))

	if v, ok := c.fluid.Get(key); ok {
		return v
	}

	slope := c.Slope(o.Min, o.Max, o.ViewportMin, o.ViewportMax)
	minPx := c.ctx.Convert(o.Min, units.UnitPx).Value
	intercept := units.Rem((minPx - slope*o.ViewportMin) / c.ctx.RootFontSize())
	coefficient := units.New(slope*100, units.UnitVw)

	var b strings.Builder
	if !o.NoClamp {
		b.WriteString("clamp(")
		b.WriteString(c.bound(o.Min))
		b.WriteString(", ")
	}
	b.WriteString("calc(")
	b.WriteString(units.FormatFixed(intercept, fluidDecimals))
	b.WriteString(" + ")
	b.WriteString(units.FormatFixed(coefficient, fluidDecimals))
	b.WriteString(")")
	if !o.NoClamp {
		b.WriteString(", ")
		b.WriteString(c.bound(o.Max))
		b.WriteString(")")
	}

	expr := b.String()
	c.fluid.Put(key, expr)
	return expr
}

// bound formats clamp() bound in rem. Relative bounds keep their own unit,
// the slope computed from them is meaningless though.
func (c *Calculator) bound(v units.Value) string {
	if v.Unit.IsRelative() {
		c.log.Warn("Relative clamp bound cannot be converted, fluid size is unreliable", zap.Stringer("bound", v))
		return c.ctx.Format(v)
	}
	return c.ctx.Format(c.ctx.Convert(v, units.UnitRem))
}

// GenerateModularScale returns 2*steps+1 values base*ratio^i for i from
// -steps to steps, formatted with 3 decimals and unit suffix.
func (c *Calculator) GenerateModularScale(base, ratio float64, steps int, unit units.Unit) []string {
	if steps < 0 {
		steps = 0
	}
	key := joinKey(fkey(base), fkey(ratio), strconv.Itoa(steps), unit.String())
	scale := c.scales.Fetch(key, func() []string {
		powers := make(map[int]float64, steps+1)
		power := func(exp int) float64 {
			n := exp
			if n < 0 {
				n = -n
			}
			p, ok := powers[n]
			if !ok {
				p = math.Pow(ratio, float64(n))
				powers[n] = p
			}
			if exp < 0 {
				return 1 / p
			}
			return p
		}

		out := make([]string, 0, 2*steps+1)
		for i := -steps; i <= steps; i++ {
			out = append(out, units.FormatFixed(units.New(base*power(i), unit), scaleDecimals))
		}
		return out
	})
	return slices.Clone(scale)
}

// Destroy unsubscribes from viewport source and clears all caches.
func (c *Calculator) Destroy() {
	c.mu.Lock()
	unsubscribe := c.unsubscribe
	c.unsubscribe = nil
	c.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	c.slopes.Clear()
	c.fluid.Clear()
	c.scales.Clear()
	c.untrack()
}

func fkey(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func joinKey(parts ...string) string {
	return strings.Join(parts, "|")
}
