// Package manager aggregates the sizing engine into a complete sheet of CSS
// custom properties derived from a single base size, keeps track of the
// active configuration and tells interested parties when it changes.
package manager

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"sizekit/cache"
	"sizekit/size"
	"sizekit/units"
)

// ErrInvalidConfiguration is returned when configuration is rejected.
// Manager state is not changed in that case.
var ErrInvalidConfiguration = errors.New("invalid configuration")

const (
	SheetCacheCapacity    = 50
	VariableCacheCapacity = 500

	DefaultBatchSize = 16
	MaxBaseSize      = 100

	tokenDecimals = 4
)

// Config is the active configuration. It is also what gets persisted.
type Config struct {
	BaseSize float64 `json:"baseSize" yaml:"base_size"`
	Preset   string  `json:"presetName,omitempty" yaml:"preset,omitempty"`
}

// Storage persists configuration between sessions. Load reports false when
// nothing was stored yet.
type Storage interface {
	Load() (Config, bool, error)
	Save(Config) error
}

// StyleTarget receives generated sheets, the render side of the manager.
type StyleTarget interface {
	Apply(css string) error
}

// Listener is notified about configuration changes. Returned errors and
// panics are logged and never stop delivery to other listeners.
type Listener func(Config) error

type options struct {
	log       *zap.Logger
	initial   Config
	presets   []Preset
	storage   Storage
	target    StyleTarget
	batchSize int
}

// Option configures Manager.
type Option func(*options)

// WithLogger sets logger, default is the context logger.
func WithLogger(log *zap.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

// WithConfig sets configuration used when storage has nothing.
func WithConfig(cfg Config) Option {
	return func(o *options) {
		o.initial = cfg
	}
}

// WithPresets registers additional presets, overriding defaults with the
// same name.
func WithPresets(presets ...Preset) Option {
	return func(o *options) {
		o.presets = append(o.presets, presets...)
	}
}

// WithStorage sets storage collaborator.
func WithStorage(s Storage) Option {
	return func(o *options) {
		o.storage = s
	}
}

// WithStyleTarget sets style target collaborator.
func WithStyleTarget(t StyleTarget) Option {
	return func(o *options) {
		o.target = t
	}
}

// WithBatchSize sets how many listeners are notified before yielding.
func WithBatchSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.batchSize = n
		}
	}
}

type subscription struct {
	id uuid.UUID
	fn Listener
}

// Manager holds active configuration and produces CSS sheets for it.
type Manager struct {
	ctx     *size.Context
	log     *zap.Logger
	presets *registry
	storage Storage
	target  StyleTarget
	batch   int

	sheets  *cache.FIFO[string, string]
	vars    *cache.FIFO[string, string]
	untrack func()

	mu          sync.Mutex
	cfg         Config
	lastApplied string
	listeners   []subscription

	// delivery state, guarded by mu
	pending   Config
	seq       uint64
	delivered uint64
	scheduled bool
	drains    int
	idle      sync.Cond // signalled when drains drops to zero

	// setMu serializes SetConfig so storage and target see changes in the
	// order they were accepted, applyMu does the same for Apply.
	setMu     sync.Mutex
	applyMu   sync.Mutex
	deliverMu sync.Mutex
}

// New creates manager. When storage is configured previously saved
// configuration is loaded, invalid stored data is ignored.
func New(ctx *size.Context, opts ...Option) (*Manager, error) {
	o := options{
		initial:   Config{BaseSize: units.DefaultRootFontSize},
		batchSize: DefaultBatchSize,
	}
	for _, setOpt := range opts {
		setOpt(&o)
	}
	if o.log == nil {
		o.log = ctx.Logger()
	}

	m := &Manager{
		ctx:     ctx,
		log:     o.log.Named("manager"),
		presets: newRegistry(),
		storage: o.storage,
		target:  o.target,
		batch:   o.batchSize,
		sheets:  cache.New[string, string]("css-sheet", SheetCacheCapacity),
		vars:    cache.New[string, string]("css-variable", VariableCacheCapacity),
	}
	m.idle.L = &m.mu
	for _, p := range o.presets {
		if err := m.presets.add(p); err != nil {
			return nil, err
		}
	}

	cfg, err := m.normalize(o.initial)
	if err != nil {
		return nil, fmt.Errorf("initial configuration: %w", err)
	}
	if m.storage != nil {
		stored, ok, err := m.storage.Load()
		if err != nil {
			return nil, fmt.Errorf("unable to load configuration: %w", err)
		}
		if ok {
			if n, err := m.normalize(stored); err != nil {
				m.log.Warn("Ignoring stored configuration", zap.Any("stored", stored), zap.Error(err))
			} else {
				cfg = n
			}
		}
	}
	m.cfg = cfg
	m.untrack = ctx.TrackCaches(m.sheets, m.vars)
	return m, nil
}

// Config returns active configuration.
func (m *Manager) Config() Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cfg
}

func validBaseSize(v float64) bool {
	return v > 0 && v <= MaxBaseSize && !math.IsNaN(v)
}

func (m *Manager) normalize(cfg Config) (Config, error) {
	if !validBaseSize(cfg.BaseSize) {
		return Config{}, fmt.Errorf("%w: base size %v is outside of (0, %d]", ErrInvalidConfiguration, cfg.BaseSize, MaxBaseSize)
	}
	if cfg.Preset != "" {
		p, ok := m.presets.get(cfg.Preset)
		if !ok {
			return Config{}, fmt.Errorf("%w: unknown preset %q", ErrInvalidConfiguration, cfg.Preset)
		}
		cfg.Preset = p.Name
	}
	return cfg, nil
}

// SetConfig validates and activates configuration. On ErrInvalidConfiguration
// nothing changes. Once accepted, configuration is saved, the new sheet is
// applied to the style target and listeners are notified asynchronously.
// Errors of collaborators are returned combined, configuration stays
// accepted regardless. Concurrent calls are serialized, storage and style
// target must not call SetConfig back.
func (m *Manager) SetConfig(cfg Config) error {
	cfg, err := m.normalize(cfg)
	if err != nil {
		return err
	}

	m.setMu.Lock()
	defer m.setMu.Unlock()

	m.mu.Lock()
	m.cfg = cfg
	m.mu.Unlock()

	m.log.Debug("Configuration changed", zap.Float64("base", cfg.BaseSize), zap.String("preset", cfg.Preset))

	if m.storage != nil {
		if serr := m.storage.Save(cfg); serr != nil {
			err = multierr.Append(err, fmt.Errorf("unable to save configuration: %w", serr))
		}
	}
	if _, aerr := m.Apply(); aerr != nil {
		err = multierr.Append(err, aerr)
	}
	m.notify(cfg)
	return err
}

// ApplyPreset activates named preset.
func (m *Manager) ApplyPreset(name string) error {
	p, ok := m.presets.get(name)
	if !ok {
		return fmt.Errorf("%w: unknown preset %q", ErrInvalidConfiguration, name)
	}
	return m.SetConfig(Config{BaseSize: p.BaseSize, Preset: p.Name})
}

// RegisterPreset adds or replaces preset. Cached sheets are dropped since
// they may refer to the old definition.
func (m *Manager) RegisterPreset(p Preset) error {
	if err := m.presets.add(p); err != nil {
		return err
	}
	m.sheets.Clear()
	return nil
}

// Preset returns preset by (not necessarily normalized) name.
func (m *Manager) Preset(name string) (Preset, bool) {
	return m.presets.get(name)
}

// Presets returns registered presets in natural name order.
func (m *Manager) Presets() []Preset {
	return m.presets.list()
}

// GenerateCSS returns sheet for active configuration.
func (m *Manager) GenerateCSS() string {
	return m.GenerateCSSFor(m.Config())
}

// GenerateCSSFor returns sheet for arbitrary configuration. Configuration is
// not validated, unknown preset means density of 1.
func (m *Manager) GenerateCSSFor(cfg Config) string {
	key := strconv.FormatFloat(cfg.BaseSize, 'g', -1, 64) + "|" + cfg.Preset
	if css, ok := m.sheets.Get(key); ok {
		return css
	}

	density := 1.0
	if p, ok := m.presets.get(cfg.Preset); ok && cfg.Preset != "" {
		density = p.density()
	}

	var b strings.Builder
	b.Grow(len(tokens) * 40)
	b.WriteString(":root {\n")
	for _, t := range m.tokenValues(cfg.BaseSize, density) {
		b.WriteString(m.declaration(t.name, t.value))
	}
	b.WriteString("}\n")

	css := b.String()
	m.sheets.Put(key, css)
	return css
}

type tokenValue struct {
	name  string
	value string
}

// tokenValues computes every token for base size. Sizes are drawn from the
// context pool and go back once done.
func (m *Manager) tokenValues(base, density float64) []tokenValue {
	pool := m.ctx.Pool()
	root := m.ctx.RootFontSize()
	s := pool.Acquire(units.Px(base), root)
	defer pool.Release(s)

	out := make([]tokenValue, 0, len(tokens))
	for _, t := range tokens {
		var v units.Value
		switch t.kind {
		case kindRem:
			f := t.mult
			if t.dense {
				f *= density
			}
			v = s.Scale(f).To(units.UnitRem).Round(tokenDecimals).Value()
		case kindPx:
			v = s.Scale(t.mult).Round(tokenDecimals).Value()
		case kindNumber:
			out = append(out, tokenValue{name: t.name, value: strconv.FormatFloat(t.mult, 'f', -1, 64)})
			continue
		case kindFixedPx:
			v = units.Px(t.mult)
		}
		out = append(out, tokenValue{name: t.name, value: m.ctx.Format(v)})
	}
	return out
}

func (m *Manager) declaration(name, value string) string {
	return m.vars.Fetch(name+"|"+value, func() string {
		return "  --" + name + ": " + value + ";\n"
	})
}

// Tokens returns generated custom property values for configuration keyed by
// property name with leading "--".
func (m *Manager) Tokens(cfg Config) map[string]string {
	density := 1.0
	if p, ok := m.presets.get(cfg.Preset); ok && cfg.Preset != "" {
		density = p.density()
	}
	values := m.tokenValues(cfg.BaseSize, density)
	out := make(map[string]string, len(values))
	for _, t := range values {
		out["--"+t.name] = t.value
	}
	return out
}

// Apply hands sheet for active configuration to the style target, unless it
// is byte identical to the last applied one. Reports whether target was
// updated. Target is called without manager lock held and may read manager
// state.
func (m *Manager) Apply() (bool, error) {
	if m.target == nil {
		return false, nil
	}

	m.applyMu.Lock()
	defer m.applyMu.Unlock()

	css := m.GenerateCSS()
	m.mu.Lock()
	same := css == m.lastApplied
	m.mu.Unlock()
	if same {
		return false, nil
	}

	if err := m.target.Apply(css); err != nil {
		return false, fmt.Errorf("unable to apply styles: %w", err)
	}

	m.mu.Lock()
	m.lastApplied = css
	m.mu.Unlock()
	return true, nil
}

// Subscribe registers listener. Listeners are notified in subscription
// order. Returned function unsubscribes.
func (m *Manager) Subscribe(fn Listener) (unsubscribe func()) {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}

	m.mu.Lock()
	m.listeners = append(m.listeners, subscription{id: id, fn: fn})
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		for i, s := range m.listeners {
			if s.id == id {
				m.listeners = append(m.listeners[:i], m.listeners[i+1:]...)
				return
			}
		}
	}
}

// Listeners returns number of registered listeners.
func (m *Manager) Listeners() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.listeners)
}

// Flush waits until all scheduled notifications are delivered. Listeners
// must not call it, delivery they are part of never completes then.
func (m *Manager) Flush() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for m.drains > 0 {
		m.idle.Wait()
	}
}

// Destroy waits for pending notifications, drops listeners and clears
// manager caches.
func (m *Manager) Destroy() {
	m.Flush()

	m.mu.Lock()
	m.listeners = nil
	m.lastApplied = ""
	m.mu.Unlock()

	m.sheets.Clear()
	m.vars.Clear()
	m.untrack()
	m.log.Debug("Manager destroyed")
}
