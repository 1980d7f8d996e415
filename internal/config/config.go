// Package config holds the yaml run configuration for the walker CLI.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ArnoutMaet/walker-masses/internal/forcefield"
)

const (
	DefaultPotential = "lennard_jones"
	DefaultStart     = 0
	DefaultStep      = 1
)

type Config struct {
	Potential       string             `yaml:"potential"`
	PotentialParams map[string]float64 `yaml:"potential_params"`
	ForceThreshold  float64            `yaml:"force_threshold"` // eV/A
	Bias            BiasConfig         `yaml:"bias"`
	Hooks           HookConfig         `yaml:"hooks"`
}

type BiasConfig struct {
	Enabled bool       `yaml:"enabled"`
	Atom    int        `yaml:"atom"`
	Anchor  [3]float64 `yaml:"anchor"` // A
	K       float64    `yaml:"k"`      // eV/A^2
}

type HookConfig struct {
	Start     int    `yaml:"start"`
	Step      int    `yaml:"step"`
	XYZ       string `yaml:"xyz"`
	SkipFirst bool   `yaml:"skip_first"`
}

func DefaultConfig() *Config {
	return &Config{
		Potential:      DefaultPotential,
		ForceThreshold: forcefield.DefaultThreshold,
		Hooks: HookConfig{
			Start: DefaultStart,
			Step:  DefaultStep,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (c *Config) Validate() error {
	if c.ForceThreshold <= 0 {
		return fmt.Errorf("config: force_threshold must be positive, got %g", c.ForceThreshold)
	}
	if c.Hooks.Start < 0 || c.Hooks.Step < 1 {
		return fmt.Errorf("config: invalid hook schedule start=%d step=%d", c.Hooks.Start, c.Hooks.Step)
	}
	if c.Bias.Enabled && c.Bias.Atom < 0 {
		return fmt.Errorf("config: bias atom index %d is negative", c.Bias.Atom)
	}
	return nil
}
