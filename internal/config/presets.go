package config

import (
	"fmt"
	"os"
	"sort"

	"github.com/san-kum/wormsim/internal/texture"
)

// Presets holds named scenes. Each is a complete configuration built from
// the defaults.
var Presets = map[string]*Config{
	"interstellar": DefaultConfig(),
	"inward": with(func(c *Config) {
		c.Camera.CamL = -2
		c.Camera.Dt = 0.005
	}),
	"thin-throat": with(func(c *Config) {
		c.Camera.A = 0.5
		c.Camera.N = 0.5
		c.Camera.CamL = 1.5
	}),
	"wide": with(func(c *Config) {
		c.Width = 1200
		c.Height = 500
		c.Camera.Zoom = 1.2
	}),
	"ring-only": with(func(c *Config) {
		c.Texture.Mode = texture.ModeRing
	}),
	"preview": with(func(c *Config) {
		c.Width = 200
		c.Height = 150
		c.Camera.MaxSteps = 800
	}),
}

func with(edit func(c *Config)) *Config {
	c := DefaultConfig()
	edit(c)
	return c
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

// ListPresets returns the preset names in sorted order.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve builds a configuration from an optional preset and an optional
// YAML file. The file overrides the preset, which overrides the defaults.
func Resolve(preset, path string) (*Config, error) {
	cfg := DefaultConfig()
	if preset != "" {
		cfg = GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("%w: unknown preset %q", ErrInvalidConfig, preset)
		}
	}
	if path != "" {
		var err error
		if cfg, err = LoadOver(cfg, path); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// Exists reports whether path names a readable file.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
