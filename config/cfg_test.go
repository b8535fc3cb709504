package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfiguration_NoFile(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() with empty path error = %v", err)
	}

	if cfg.Version != 1 {
		t.Errorf("Default config version = %d, want 1", cfg.Version)
	}
	if cfg.Engine.RootFontSize != 16 || cfg.Engine.BaseSize != 16 {
		t.Errorf("Engine defaults = %+v", cfg.Engine)
	}
	if cfg.Engine.PoolCapacity != 200 {
		t.Errorf("PoolCapacity = %d, want 200", cfg.Engine.PoolCapacity)
	}
	if cfg.Fluid.ViewportMin != 320 || cfg.Fluid.ViewportMax != 1920 || !cfg.Fluid.Clamp {
		t.Errorf("Fluid defaults = %+v", cfg.Fluid)
	}
	if cfg.Fluid.ScaleRatio != ScaleRatioMajorThird {
		t.Errorf("ScaleRatio = %s, want major-third", cfg.Fluid.ScaleRatio)
	}
	if len(cfg.Presets) != 1 || cfg.Presets[0].Name != "reading" {
		t.Errorf("Presets = %+v", cfg.Presets)
	}
	if cfg.Storage.Path != "" {
		t.Errorf("Storage must be disabled by default, got %q", cfg.Storage.Path)
	}
}

func TestLoadConfiguration_WithFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := writeConfig(t, `version: 1
engine:
  base_size: 18
  preset: comfortable
fluid:
  viewport_min: 375
  viewport_max: 1440
  clamp: false
  scale_ratio: golden
presets:
  - name: Kiosk
    base_size: 24
    density: 1.5
storage:
  path: `+filepath.Join(tmpDir, "sizes.db")+`
logging:
  console:
    level: debug
  file:
    level: debug
    destination: `+filepath.Join(tmpDir, "test.log")+`
    mode: append
reporting:
  destination: `+filepath.Join(tmpDir, "report.zip")+`
`)

	cfg, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if cfg.Engine.BaseSize != 18 || cfg.Engine.Preset != "comfortable" {
		t.Errorf("Engine = %+v", cfg.Engine)
	}
	// defaults survive when not overridden
	if cfg.Engine.RootFontSize != 16 {
		t.Errorf("RootFontSize = %v, want 16", cfg.Engine.RootFontSize)
	}
	if cfg.Fluid.Clamp {
		t.Error("Expected Clamp to be false")
	}
	if cfg.Fluid.ScaleRatio.Ratio() != 1.618 {
		t.Errorf("ScaleRatio = %s", cfg.Fluid.ScaleRatio)
	}
	if len(cfg.Presets) != 1 || cfg.Presets[0].Name != "Kiosk" || cfg.Presets[0].Density != 1.5 {
		t.Errorf("Presets = %+v", cfg.Presets)
	}
	if !strings.HasSuffix(cfg.Storage.Path, "sizes.db") {
		t.Errorf("Storage.Path = %q", cfg.Storage.Path)
	}
}

func TestLoadConfiguration_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"invalid yaml", "version: 1\nengine:\n  base_size: 16\n  invalid indent\n"},
		{"unknown field", "version: 1\nunknown_field: value\n"},
		{"wrong version", "version: 2\n"},
		{"base size out of range", "version: 1\nengine:\n  base_size: 150\n"},
		{"inverted viewport", "version: 1\nfluid:\n  viewport_min: 1000\n  viewport_max: 500\n"},
		{"bad ratio", "version: 1\nfluid:\n  scale_ratio: silver\n"},
		{"preset without name", "version: 1\npresets:\n  - base_size: 12\n"},
		{"bad log level", "version: 1\nlogging:\n  console:\n    level: chatty\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadConfiguration(writeConfig(t, tt.content)); err == nil {
				t.Error("Expected error")
			}
		})
	}

	if _, err := LoadConfiguration("/nonexistent/config.yaml"); err == nil {
		t.Error("Expected error for nonexistent file")
	}
}

func TestPrepare(t *testing.T) {
	data, err := Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if len(data) == 0 {
		t.Fatal("Prepare() returned empty data")
	}

	if _, err = unmarshalConfig(data, &Config{}, true); err != nil {
		t.Errorf("Prepared config is not valid: %v", err)
	}
}

func TestDump(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	cfg.Fluid.ScaleRatio = ScaleRatioPerfectFourth

	data, err := Dump(cfg)
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}
	if !strings.Contains(string(data), "scale_ratio: perfect-fourth") {
		t.Errorf("ratio must be dumped by name:\n%s", data)
	}

	cfg2, err := unmarshalConfig(data, &Config{}, true)
	if err != nil {
		t.Fatalf("Dumped config cannot be loaded: %v", err)
	}
	if cfg2.Fluid.ScaleRatio != ScaleRatioPerfectFourth || cfg2.Engine != cfg.Engine {
		t.Errorf("mismatch after dump/load: %+v vs %+v", cfg2, cfg)
	}
}

func TestScaleRatio(t *testing.T) {
	for i, name := range ScaleRatioNames() {
		r, err := ParseScaleRatio(strings.ToUpper(name))
		if err != nil {
			t.Fatalf("ParseScaleRatio(%q) error = %v", name, err)
		}
		if int(r) != i || r.String() != name {
			t.Errorf("ParseScaleRatio(%q) = %v", name, r)
		}
		if r.Ratio() <= 1 {
			t.Errorf("%s ratio = %v", name, r.Ratio())
		}
	}

	if _, err := ParseScaleRatio("silver"); !errors.Is(err, ErrInvalidScaleRatio) {
		t.Errorf("expected ErrInvalidScaleRatio, got %v", err)
	}
	bad := ScaleRatio(42)
	if bad.IsValid() || bad.Ratio() != 1 || bad.String() != "ScaleRatio(42)" {
		t.Errorf("invalid ratio misbehaves: %v %v", bad.IsValid(), bad.Ratio())
	}
	if _, err := bad.MarshalText(); err == nil {
		t.Error("expected MarshalText error")
	}
}
