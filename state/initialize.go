package state

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/maruel/natural"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"sizekit/fluid"
	"sizekit/manager"
	"sizekit/size"
	"sizekit/store"
)

// newLocalEnv creates a new LocalEnv instance with default values
func newLocalEnv() *LocalEnv {
	return &LocalEnv{
		start: time.Now(),
	}
}

// StartEngine creates computation context, fluid calculator and manager
// according to configuration. When debug report is requested engine metrics
// are collected for it.
func (e *LocalEnv) StartEngine(opts ...manager.Option) error {
	if e.Cfg == nil {
		return errors.New("configuration is not loaded")
	}
	if e.Sizes != nil {
		return nil
	}
	ec := e.Cfg.Engine
	log := e.Log
	if log == nil {
		log = zap.NewNop()
	}

	e.Sizes = size.NewContext(
		size.WithLogger(log),
		size.WithRootFontSize(ec.RootFontSize),
		size.WithPoolCapacity(ec.PoolCapacity),
	)
	e.Fluid = fluid.New(e.Sizes, log)

	if e.Rpt != nil {
		e.metrics = sdkmetric.NewManualReader()
		e.provider = sdkmetric.NewMeterProvider(sdkmetric.WithReader(e.metrics))
		reg, err := e.Sizes.RegisterMetrics(e.provider.Meter("sizekit"))
		if err != nil {
			return fmt.Errorf("unable to register metrics: %w", err)
		}
		e.metricsR = reg
	}

	presets := make([]manager.Preset, 0, len(e.Cfg.Presets))
	for _, p := range e.Cfg.Presets {
		presets = append(presets, manager.Preset{Name: p.Name, BaseSize: p.BaseSize, Density: p.Density})
	}
	mopts := []manager.Option{
		manager.WithLogger(log),
		manager.WithPresets(presets...),
		manager.WithBatchSize(ec.ListenerBatchSize),
		manager.WithConfig(manager.Config{BaseSize: ec.BaseSize, Preset: ec.Preset}),
	}

	if path := e.Cfg.Storage.Path; len(path) > 0 {
		st, err := store.Open(path, log)
		if err != nil {
			return fmt.Errorf("unable to open storage: %w", err)
		}
		st.SetHistoryLimit(e.Cfg.Storage.History)
		e.Store = st
		mopts = append(mopts, manager.WithStorage(st))
	}

	m, err := manager.New(e.Sizes, append(mopts, opts...)...)
	if err != nil {
		return fmt.Errorf("unable to create size manager: %w", err)
	}
	e.Manager = m

	log.Debug("Sizing engine started",
		zap.Float64("root", ec.RootFontSize),
		zap.Any("config", m.Config()),
		zap.Bool("persistent", e.Store != nil))
	return nil
}

// StopEngine releases everything StartEngine created. Collected metrics and
// stored configuration history go to the debug report.
func (e *LocalEnv) StopEngine(ctx context.Context) (err error) {
	if e.Sizes == nil {
		return nil
	}

	if e.Manager != nil {
		e.Manager.Flush()
	}
	if e.Rpt != nil && e.Store != nil {
		if h, er := e.Store.History(); er != nil {
			err = multierr.Append(err, fmt.Errorf("unable to read configuration history: %w", er))
		} else {
			e.Rpt.StoreData("history.txt", formatHistory(h))
		}
	}
	if e.metrics != nil {
		var rm metricdata.ResourceMetrics
		if er := e.metrics.Collect(ctx, &rm); er != nil {
			err = multierr.Append(err, fmt.Errorf("unable to collect metrics: %w", er))
		} else {
			e.Rpt.StoreData("metrics.txt", formatMetrics(&rm))
		}
		err = multierr.Append(err, e.metricsR.Unregister())
		err = multierr.Append(err, e.provider.Shutdown(ctx))
	}
	if e.Manager != nil {
		e.Manager.Destroy()
	}
	e.Fluid.Destroy()
	e.Sizes.Destroy()
	if e.Store != nil {
		err = multierr.Append(err, e.Store.Close())
	}

	e.Sizes, e.Fluid, e.Manager, e.Store = nil, nil, nil, nil
	e.metrics, e.provider, e.metricsR = nil, nil, nil
	return err
}

func formatHistory(entries []store.Entry) []byte {
	buf := new(bytes.Buffer)
	for _, h := range entries {
		preset := h.Config.Preset
		if len(preset) == 0 {
			preset = "-"
		}
		fmt.Fprintf(buf, "%s\t%vpx\t%s\n", h.Saved.UTC().Format(time.RFC3339), h.Config.BaseSize, preset)
	}
	return buf.Bytes()
}

func formatMetrics(rm *metricdata.ResourceMetrics) []byte {
	var lines []string
	add := func(name string, attrs fmt.Stringer, v int64) {
		lines = append(lines, fmt.Sprintf("%s%s\t%d", name, attrs, v))
	}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				for _, dp := range data.DataPoints {
					add(m.Name, labels(dp.Attributes.Encoded(attribute.DefaultEncoder())), dp.Value)
				}
			case metricdata.Gauge[int64]:
				for _, dp := range data.DataPoints {
					add(m.Name, labels(dp.Attributes.Encoded(attribute.DefaultEncoder())), dp.Value)
				}
			}
		}
	}
	sort.Sort(natural.StringSlice(lines))

	buf := new(bytes.Buffer)
	for _, l := range lines {
		buf.WriteString(l)
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

type labels string

func (l labels) String() string {
	if len(l) == 0 {
		return ""
	}
	return "{" + string(l) + "}"
}
