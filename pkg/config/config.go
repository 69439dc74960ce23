// Package config loads tool configuration from YAML files.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dect-ule/ule-go/pkg/transport"
)

// Config holds connection settings for the HAN server and the serial
// targets, plus tracing options.
type Config struct {
	// HAN configures the UDP connection to the HAN server daemon.
	HAN HANConfig `yaml:"han"`

	// Serial configures the serial link to a CMBS or CMND target.
	Serial SerialConfig `yaml:"serial"`

	// Timeout bounds request/response round trips. Zero keeps the
	// per-protocol default.
	Timeout time.Duration `yaml:"timeout"`

	// TracePath, when set, appends a binary protocol trace to this file.
	TracePath string `yaml:"trace_path"`
}

// HANConfig is the HAN server endpoint.
type HANConfig struct {
	Addr string `yaml:"addr"`
}

// SerialConfig is the serial device settings.
type SerialConfig struct {
	Device   string `yaml:"device"`
	BaudRate int    `yaml:"baud_rate"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		HAN:    HANConfig{Addr: transport.DefaultHANAddr},
		Serial: SerialConfig{BaudRate: transport.DefaultBaudRate},
	}
}

// Parse parses a configuration from YAML bytes, filling unset fields with
// defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.HAN.Addr == "" {
		cfg.HAN.Addr = transport.DefaultHANAddr
	}
	if cfg.Serial.BaudRate == 0 {
		cfg.Serial.BaudRate = transport.DefaultBaudRate
	}
	return cfg, nil
}

// Load loads and parses a configuration file. An empty path yields the
// defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return Parse(data)
}
