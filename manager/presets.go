package manager

import (
	"fmt"
	"slices"
	"sync"

	"github.com/gosimple/slug"
)

// Preset is a named configuration selectable by name.
type Preset struct {
	Name     string
	BaseSize float64 // px
	// Density scales spacing tokens (paddings, gaps, spacing scale). Zero
	// means 1.
	Density float64
}

func (p Preset) density() float64 {
	if p.Density <= 0 {
		return 1
	}
	return p.Density
}

// DefaultPresets are registered by every manager.
var DefaultPresets = []Preset{
	{Name: "compact", BaseSize: 14, Density: 0.75},
	{Name: "default", BaseSize: 16, Density: 1},
	{Name: "comfortable", BaseSize: 18, Density: 1.25},
	{Name: "large", BaseSize: 20, Density: 1.25},
	{Name: "extra-large", BaseSize: 24, Density: 1.5},
}

// PresetName normalizes user supplied name ("Extra Large" -> "extra-large").
func PresetName(name string) string {
	return slug.Make(name)
}

type registry struct {
	mu      sync.RWMutex
	presets map[string]Preset
}

func newRegistry() *registry {
	r := &registry{presets: make(map[string]Preset, len(DefaultPresets))}
	for _, p := range DefaultPresets {
		_ = r.add(p)
	}
	return r
}

func (r *registry) add(p Preset) error {
	name := PresetName(p.Name)
	if name == "" {
		return fmt.Errorf("%w: empty preset name %q", ErrInvalidConfiguration, p.Name)
	}
	if !validBaseSize(p.BaseSize) {
		return fmt.Errorf("%w: preset %q base size %v is out of range", ErrInvalidConfiguration, name, p.BaseSize)
	}
	p.Name = name

	r.mu.Lock()
	defer r.mu.Unlock()
	r.presets[name] = p
	return nil
}

func (r *registry) get(name string) (Preset, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.presets[PresetName(name)]
	return p, ok
}

func (r *registry) list() []Preset {
	r.mu.RLock()
	out := make([]Preset, 0, len(r.presets))
	for _, p := range r.presets {
		out = append(out, p)
	}
	r.mu.RUnlock()

	slices.SortFunc(out, func(a, b Preset) int {
		return compareNatural(a.Name, b.Name)
	})
	return out
}
