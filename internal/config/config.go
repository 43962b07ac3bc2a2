// Package config loads the server's tuning parameters from YAML.
//
// Values missing from the file keep their defaults, so a config file only
// needs the keys it changes:
//
//	canny:
//	  gaussian_radius: 2
//	  low_ratio: 0.075
//	  high_ratio: 0.175
//	lines:
//	  gaussian_radius: 2
//	  low_ratio: 0.05
//	  high_ratio: 0.10
//	  min_size: 10
//	  include_cross: false
//	stop_sign:
//	  color: {min_r: 80, max_r: 255, min_g: 0, max_g: 80, min_b: 0, max_b: 80}
//	  min_cluster_width: 50
//	  min_cluster_height: 50
//	  min_cluster_ratio: 0.8
//	  min_cluster_size: 1
//	  max_dissimilarity: 0.2
//	  border_ratio: 0.025
//	  template_path: ""
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/vision-tools-mcp/internal/detection"
	"github.com/ironsheep/vision-tools-mcp/internal/imaging"
)

// Environment variables consulted by FromEnv.
const (
	EnvConfigPath = "VISION_MCP_CONFIG"
	EnvLogLevel   = "VISION_MCP_LOG_LEVEL"
)

// Config holds every tunable of the server.
type Config struct {
	// LogLevel is "info" or "debug".
	LogLevel string `yaml:"log_level"`

	Canny    imaging.CannyOptions  `yaml:"canny"`
	Lines    detection.LineOptions `yaml:"lines"`
	StopSign StopSign              `yaml:"stop_sign"`
}

// StopSign configures the stop-sign detector.
type StopSign struct {
	detection.StopSignOptions `yaml:",inline"`

	// TemplatePath is an optional silhouette image. Empty selects the
	// built-in octagon.
	TemplatePath string `yaml:"template_path"`
}

// Default returns the stock configuration.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Canny:    imaging.DefaultCannyOptions(),
		Lines:    detection.DefaultLineOptions(),
		StopSign: StopSign{StopSignOptions: detection.DefaultStopSignOptions()},
	}
}

// Load reads a YAML config file over the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and validates the result. Unknown keys
// are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv loads the file named by path, or by VISION_MCP_CONFIG when path is
// empty, falling back to the defaults when neither is set.
// VISION_MCP_LOG_LEVEL overrides the log level from any source.
func FromEnv(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}

	cfg := Default()
	if path != "" {
		var err error
		if cfg, err = Load(path); err != nil {
			return nil, err
		}
	}

	if level := os.Getenv(EnvLogLevel); level != "" {
		cfg.LogLevel = level
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "info", "debug":
	default:
		return fmt.Errorf("invalid log_level %q: want info or debug", c.LogLevel)
	}
	if err := c.Canny.Validate(); err != nil {
		return fmt.Errorf("canny: %w", err)
	}
	if err := c.Lines.Canny.Validate(); err != nil {
		return fmt.Errorf("lines: %w", err)
	}
	if c.Lines.MinSize < 1 {
		return fmt.Errorf("lines: %w: min_size %d", imaging.ErrInvalidOptions, c.Lines.MinSize)
	}
	if err := c.StopSign.Validate(); err != nil {
		return fmt.Errorf("stop_sign: %w", err)
	}
	return nil
}

// Debug reports whether debug logging is enabled.
func (c *Config) Debug() bool {
	return c.LogLevel == "debug"
}

// Marshal renders the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
