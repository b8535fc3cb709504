package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	EngineConfig struct {
		RootFontSize      float64 `yaml:"root_font_size" validate:"gt=0"`
		BaseSize          float64 `yaml:"base_size" validate:"gt=0,lte=100"`
		Preset            string  `yaml:"preset,omitempty"`
		PoolCapacity      int     `yaml:"pool_capacity" validate:"min=1"`
		ListenerBatchSize int     `yaml:"listener_batch_size" validate:"min=1"`
	}

	FluidConfig struct {
		ViewportMin float64    `yaml:"viewport_min" validate:"gte=0"`
		ViewportMax float64    `yaml:"viewport_max" validate:"gtfield=ViewportMin"`
		Clamp       bool       `yaml:"clamp"`
		ScaleRatio  ScaleRatio `yaml:"scale_ratio" validate:"gte=0"`
		ScaleSteps  int        `yaml:"scale_steps" validate:"min=0,max=12"`
	}

	PresetConfig struct {
		Name     string  `yaml:"name" validate:"required"`
		BaseSize float64 `yaml:"base_size" validate:"gt=0,lte=100"`
		Density  float64 `yaml:"density,omitempty" validate:"gte=0"`
	}

	StorageConfig struct {
		// empty path disables persistence
		Path    string `yaml:"path,omitempty"`
		History int    `yaml:"history" validate:"min=1"`
	}

	Config struct {
		Version   int            `yaml:"version" validate:"eq=1"`
		Engine    EngineConfig   `yaml:"engine"`
		Fluid     FluidConfig    `yaml:"fluid"`
		Presets   []PresetConfig `yaml:"presets,omitempty" validate:"dive"`
		Storage   StorageConfig  `yaml:"storage"`
		Logging   LoggingConfig  `yaml:"logging"`
		Reporting ReporterConfig `yaml:"reporting"`
	}
)

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// We want to use only fields we defined so we cannot use yaml.Unmarshal
	// directly here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, err
		}
		if err := gencfg.Validate(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of expanded configuration template to
// provide sane defaults and performs validation.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	// overwrite cfg values with values from the file
	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare generates configuration file from template and returns it as a byte
// slice.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %w", err)
	}
	return data, nil
}
