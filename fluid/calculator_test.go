package fluid_test

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"sizekit/fluid"
	"sizekit/size"
	"sizekit/units"
)

func newCalculator(t *testing.T) (*fluid.Calculator, *size.Context) {
	t.Helper()
	ctx := size.NewContext()
	c := fluid.New(ctx, zap.NewNop())
	t.Cleanup(c.Destroy)
	return c, ctx
}

func TestCreateFluidSize_Reference(t *testing.T) {
	c, _ := newCalculator(t)
	opts := fluid.Options{
		Min:         units.Px(16),
		Max:         units.Px(32),
		ViewportMin: 320,
		ViewportMax: 1920,
	}

	assert.InDelta(t, 0.01, c.Slope(opts.Min, opts.Max, opts.ViewportMin, opts.ViewportMax), 1e-12)

	got := c.CreateFluidSize(opts)
	assert.Equal(t, "clamp(1rem, calc(0.8000rem + 1.0000vw), 2rem)", got)

	opts.NoClamp = true
	assert.Equal(t, "calc(0.8000rem + 1.0000vw)", c.CreateFluidSize(opts))
}

func TestCreateFluidSize_MixedUnits(t *testing.T) {
	c, _ := newCalculator(t)
	got := c.CreateFluidSize(fluid.Options{
		Min:         units.Rem(1.5),
		Max:         units.Rem(3),
		ViewportMin: 400,
		ViewportMax: 1200,
	})
	// slope = (48 - 24) / 800 = 0.03, intercept = 24 - 12 = 12px = 0.75rem
	assert.Equal(t, "clamp(1.5rem, calc(0.7500rem + 3.0000vw), 3rem)", got)
}

func TestCreateFluidSize_RelativeBoundKeepsUnit(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	c := fluid.New(size.NewContext(), zap.New(core))
	t.Cleanup(c.Destroy)

	got := c.CreateFluidSize(fluid.Options{
		Min:         units.New(50, units.UnitPercent),
		Max:         units.Rem(10),
		ViewportMin: 320,
		ViewportMax: 1280,
	})
	require.True(t, strings.HasPrefix(got, "clamp(50%, calc("), got)
	assert.True(t, strings.HasSuffix(got, "), 10rem)"), got)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "50%", logs.All()[0].ContextMap()["bound"])
}

func TestCreateFluidSize_InvalidInputPropagates(t *testing.T) {
	c, _ := newCalculator(t)
	got := c.CreateFluidSize(fluid.Options{
		Min:         units.Px(16),
		Max:         units.Px(32),
		ViewportMin: 800,
		ViewportMax: 800,
		NoClamp:     true,
	})
	assert.Contains(t, got, "Inf")

	got = c.CreateFluidSize(fluid.Options{Min: units.Px(math.NaN()), Max: units.Px(1), ViewportMin: 0, ViewportMax: 100})
	assert.Contains(t, got, "NaN")
}

func TestCreateFluidSize_Cached(t *testing.T) {
	c, ctx := newCalculator(t)
	opts := fluid.Options{Min: units.Px(14), Max: units.Px(18), ViewportMin: 375, ViewportMax: 1440}

	first := c.CreateFluidSize(opts)
	second := c.CreateFluidSize(opts)
	assert.Equal(t, first, second)

	for _, st := range ctx.CacheStats() {
		if st.Name == "fluid" {
			assert.Equal(t, 1, st.Len)
			assert.Equal(t, uint64(1), st.Hits)
		}
		if st.Name == "slope" {
			assert.Equal(t, 1, st.Len)
		}
	}
}

func TestCaches_StayBounded(t *testing.T) {
	c, ctx := newCalculator(t)
	for i := range 1000 {
		c.CreateFluidSize(fluid.Options{
			Min:         units.Px(float64(i)),
			Max:         units.Px(float64(i + 10)),
			ViewportMin: 320,
			ViewportMax: 1920,
		})
		c.GenerateModularScale(float64(i), 1.2, 1, units.UnitPx)
	}
	for _, st := range ctx.CacheStats() {
		assert.LessOrEqual(t, st.Len, st.Capacity, "cache %s", st.Name)
	}
}

func TestViewportChange_PartialTrim(t *testing.T) {
	c, ctx := newCalculator(t)
	src := fluid.NewBroadcaster(fluid.Viewport{Width: 1024, Height: 768, DeviceClass: "tablet"})
	unsubscribe := c.Watch(src)
	defer unsubscribe()

	assert.Equal(t, src.Viewport(), c.Viewport())

	for i := range 120 {
		c.CreateFluidSize(fluid.Options{Min: units.Px(float64(i)), Max: units.Px(100), ViewportMin: 320, ViewportMax: 1920})
	}
	require.Equal(t, 120, fluidLen(ctx))

	// same viewport, nothing happens
	src.Set(fluid.Viewport{Width: 1024, Height: 768, DeviceClass: "tablet"})
	assert.Equal(t, 120, fluidLen(ctx))

	src.Set(fluid.Viewport{Width: 390, Height: 844, DeviceClass: "mobile"})
	assert.Equal(t, 50, fluidLen(ctx), "only the oldest entries survive")
	assert.Equal(t, "mobile", c.Viewport().DeviceClass)

	// the oldest entry is still served from cache
	before := fluidHits(ctx)
	c.CreateFluidSize(fluid.Options{Min: units.Px(0), Max: units.Px(100), ViewportMin: 320, ViewportMax: 1920})
	assert.Equal(t, before+1, fluidHits(ctx))

	// a cache at or below the retained size is left alone
	assert.True(t, c.OnViewportChange(fluid.Viewport{Width: 1}))
	assert.Equal(t, 50, fluidLen(ctx))
	assert.False(t, c.OnViewportChange(fluid.Viewport{Width: 1}))
}

func TestWatch_Unsubscribe(t *testing.T) {
	c, _ := newCalculator(t)
	first := fluid.NewBroadcaster(fluid.Viewport{Width: 100})
	second := fluid.NewBroadcaster(fluid.Viewport{Width: 200})

	unsubscribe := c.Watch(first)
	assert.Equal(t, 1, first.Subscribers())

	c.Watch(second)
	assert.Equal(t, 0, first.Subscribers(), "previous source must be released")
	assert.Equal(t, 1, second.Subscribers())
	assert.Equal(t, 200.0, c.Viewport().Width)

	unsubscribe()
	first.Set(fluid.Viewport{Width: 300})
	assert.Equal(t, 200.0, c.Viewport().Width)

	c.Destroy()
	assert.Equal(t, 0, second.Subscribers())
}

func TestGenerateModularScale(t *testing.T) {
	c, _ := newCalculator(t)

	got := c.GenerateModularScale(16, 1.25, 2, units.UnitPx)
	want := make([]string, 0, 5)
	for i := -2; i <= 2; i++ {
		want = append(want, fmt.Sprintf("%.3fpx", 16*math.Pow(1.25, float64(i))))
	}
	assert.Equal(t, want, got)
	assert.Equal(t, []string{"10.240px", "12.800px", "16.000px", "20.000px", "25.000px"}, got)

	// callers may modify result without affecting cache
	got[0] = "changed"
	assert.Equal(t, "10.240px", c.GenerateModularScale(16, 1.25, 2, units.UnitPx)[0])

	rem := c.GenerateModularScale(1, 2, 1, units.UnitRem)
	assert.Equal(t, []string{"0.500rem", "1.000rem", "2.000rem"}, rem)

	assert.Equal(t, []string{"16.000px"}, c.GenerateModularScale(16, 1.5, 0, units.UnitPx))
	assert.Len(t, c.GenerateModularScale(16, 1.5, -3, units.UnitPx), 1)
	assert.True(t, strings.HasSuffix(c.GenerateModularScale(10, 1.1, 3, units.UnitVw)[6], "vw"))
}

func fluidLen(ctx *size.Context) int {
	for _, st := range ctx.CacheStats() {
		if st.Name == "fluid" {
			return st.Len
		}
	}
	return -1
}

func fluidHits(ctx *size.Context) uint64 {
	for _, st := range ctx.CacheStats() {
		if st.Name == "fluid" {
			return st.Hits
		}
	}
	return 0
}
