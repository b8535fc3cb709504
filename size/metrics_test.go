package size_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"sizekit/size"
	"sizekit/units"
)

func TestContext_RegisterMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = provider.Shutdown(context.Background()) }()

	ctx := size.NewContext()
	reg, err := ctx.RegisterMetrics(provider.Meter("test"))
	require.NoError(t, err)
	defer func() { _ = reg.Unregister() }()

	p := ctx.Pool()
	p.Release(p.Acquire("1rem", 0))
	p.Release(p.Acquire("2rem", 0))
	ctx.Format(units.Px(4))
	ctx.Format(units.Px(4))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	got := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				for _, dp := range data.DataPoints {
					got[m.Name+suffix(dp.Attributes)] = dp.Value
				}
			case metricdata.Gauge[int64]:
				for _, dp := range data.DataPoints {
					got[m.Name+suffix(dp.Attributes)] = dp.Value
				}
			}
		}
	}

	assert.Equal(t, int64(1), got["sizekit.pool.hits"])
	assert.Equal(t, int64(1), got["sizekit.pool.misses"])
	assert.Equal(t, int64(1), got["sizekit.pool.idle"])
	assert.Equal(t, int64(1), got["sizekit.cache.hits/format"])
	assert.Equal(t, int64(1), got["sizekit.cache.entries/format"])
}

func suffix(set attribute.Set) string {
	if v, ok := set.Value("cache"); ok {
		return "/" + v.AsString()
	}
	return ""
}
