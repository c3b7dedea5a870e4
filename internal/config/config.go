package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/wormsim/internal/texture"
	"github.com/san-kum/wormsim/internal/wormhole"
)

const (
	DefaultWidth      = 800
	DefaultHeight     = 600
	DefaultIntegrator = "euler"
	DefaultOutput     = "wormhole.png"
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

type Config struct {
	Width       int             `yaml:"width"`
	Height      int             `yaml:"height"`
	Camera      wormhole.Params `yaml:"camera"`
	Texture     texture.Params  `yaml:"texture"`
	Integrator  string          `yaml:"integrator"`
	Workers     int             `yaml:"workers"`
	Supersample int             `yaml:"supersample"`
	Output      string          `yaml:"output"`
}

func DefaultConfig() *Config {
	return &Config{
		Width:       DefaultWidth,
		Height:      DefaultHeight,
		Camera:      wormhole.DefaultParams(),
		Texture:     texture.DefaultParams(),
		Integrator:  DefaultIntegrator,
		Workers:     0,
		Supersample: 1,
		Output:      DefaultOutput,
	}
}

// Clone returns a copy that shares nothing with c.
func (c *Config) Clone() *Config {
	out := *c
	return &out
}

// Load reads a YAML file over the defaults. Fields absent from the file keep
// their default values.
func Load(path string) (*Config, error) {
	return LoadOver(DefaultConfig(), path)
}

// LoadOver reads a YAML file over a copy of base.
func LoadOver(base *Config, path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := base.Clone()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: size must be positive, got %dx%d", ErrInvalidConfig, c.Width, c.Height)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must be non-negative, got %d", ErrInvalidConfig, c.Workers)
	}
	if c.Supersample < 1 {
		return fmt.Errorf("%w: supersample must be at least 1, got %d", ErrInvalidConfig, c.Supersample)
	}
	if c.Integrator == "" {
		return fmt.Errorf("%w: integrator is required", ErrInvalidConfig)
	}
	if err := c.Camera.Validate(); err != nil {
		return fmt.Errorf("%w: camera: %w", ErrInvalidConfig, err)
	}
	if _, err := texture.New(c.Texture); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}
