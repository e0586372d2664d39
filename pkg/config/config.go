package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// ErrInvalidConfig is returned by Validate for out of range settings
var ErrInvalidConfig = errors.New("invalid config")

// Config represents the main configuration
type Config struct {
	Render RenderConfig `yaml:"render"`
	Output OutputConfig `yaml:"output"`
}

// RenderConfig contains ray tracing configuration
type RenderConfig struct {
	RecursionDepth            int     `yaml:"recursion_depth"`
	Epsilon                   float64 `yaml:"epsilon"` // Bias for shadow, reflection and transmission rays
	BackgroundRefractionIndex float64 `yaml:"background_refraction_index"`
	Workers                   int     `yaml:"workers"` // 0 = one per CPU
	TileSize                  int     `yaml:"tile_size"`
}

// OutputConfig controls what happens to the finished image
type OutputConfig struct {
	Path    string `yaml:"path"`   // Empty: scene file name with the format's extension
	Format  string `yaml:"format"` // ppm, png
	Preview bool   `yaml:"preview"`
}

// DefaultConfig creates a default configuration
func DefaultConfig() *Config {
	return &Config{
		Render: RenderConfig{
			RecursionDepth:            4,
			Epsilon:                   1e-3,
			BackgroundRefractionIndex: 1.0,
			Workers:                   0,
			TileSize:                  32,
		},
		Output: OutputConfig{
			Path:    "",
			Format:  "ppm",
			Preview: false,
		},
	}
}

// LoadConfig loads the configuration from a file. Keys missing from the
// file keep their default values.
func LoadConfig(filePath string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.UnmarshalStrict(data, config); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// SaveConfig saves the configuration to a file
func SaveConfig(config *Config, filePath string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("error serializing config: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}
	return nil
}

// Validate checks every setting's range
func (c *Config) Validate() error {
	r := c.Render
	switch {
	case r.RecursionDepth < 0:
		return fmt.Errorf("%w: recursion_depth %d is negative", ErrInvalidConfig, r.RecursionDepth)
	case r.Epsilon <= 0:
		return fmt.Errorf("%w: epsilon %v must be positive", ErrInvalidConfig, r.Epsilon)
	case r.BackgroundRefractionIndex <= 0:
		return fmt.Errorf("%w: background_refraction_index %v must be positive", ErrInvalidConfig, r.BackgroundRefractionIndex)
	case r.Workers < 0:
		return fmt.Errorf("%w: workers %d is negative", ErrInvalidConfig, r.Workers)
	case r.TileSize <= 0:
		return fmt.Errorf("%w: tile_size %d must be positive", ErrInvalidConfig, r.TileSize)
	}

	switch c.Output.Format {
	case "ppm", "png":
	default:
		return fmt.Errorf("%w: output format %q must be ppm or png", ErrInvalidConfig, c.Output.Format)
	}
	return nil
}
