package size

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "sizekit/size"

// RegisterMetrics exposes pool and cache counters as observable
// instruments. A nil meter means the global meter provider. Unregister the
// returned registration when the context is no longer used.
func (c *Context) RegisterMetrics(meter metric.Meter) (metric.Registration, error) {
	if meter == nil {
		meter = otel.Meter(instrumentationName)
	}

	poolHits, err := meter.Int64ObservableCounter("sizekit.pool.hits",
		metric.WithDescription("Number of acquisitions served by a pooled instance"))
	if err != nil {
		return nil, err
	}
	poolMisses, err := meter.Int64ObservableCounter("sizekit.pool.misses",
		metric.WithDescription("Number of acquisitions which had to allocate"))
	if err != nil {
		return nil, err
	}
	poolIdle, err := meter.Int64ObservableGauge("sizekit.pool.idle",
		metric.WithDescription("Number of idle instances in the pool"))
	if err != nil {
		return nil, err
	}
	cacheHits, err := meter.Int64ObservableCounter("sizekit.cache.hits",
		metric.WithDescription("Number of cache lookups which found an entry"))
	if err != nil {
		return nil, err
	}
	cacheMisses, err := meter.Int64ObservableCounter("sizekit.cache.misses",
		metric.WithDescription("Number of cache lookups which computed the value"))
	if err != nil {
		return nil, err
	}
	cacheEvictions, err := meter.Int64ObservableCounter("sizekit.cache.evictions",
		metric.WithDescription("Number of entries dropped to stay within capacity"))
	if err != nil {
		return nil, err
	}
	cacheEntries, err := meter.Int64ObservableGauge("sizekit.cache.entries",
		metric.WithDescription("Number of entries currently cached"))
	if err != nil {
		return nil, err
	}

	return meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		ps := c.pool.Stats()
		o.ObserveInt64(poolHits, int64(ps.Hits))
		o.ObserveInt64(poolMisses, int64(ps.Misses))
		o.ObserveInt64(poolIdle, int64(ps.Idle))

		for _, cs := range c.CacheStats() {
			attrs := metric.WithAttributes(attribute.String("cache", cs.Name))
			o.ObserveInt64(cacheHits, int64(cs.Hits), attrs)
			o.ObserveInt64(cacheMisses, int64(cs.Misses), attrs)
			o.ObserveInt64(cacheEvictions, int64(cs.Evictions), attrs)
			o.ObserveInt64(cacheEntries, int64(cs.Len), attrs)
		}
		return nil
	}, poolHits, poolMisses, poolIdle, cacheHits, cacheMisses, cacheEvictions, cacheEntries)
}
