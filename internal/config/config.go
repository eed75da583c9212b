// Package config loads the server's settings from compiled defaults,
// optionally overridden by a YAML file and then by CLI flags.
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every tunable the server needs at startup. Field names match
// the CLI flags in cmd/robotserver one-for-one, and yaml tags match the
// config file keys.
type Config struct {
	Address           string `yaml:"address"`
	ServerKey         uint16 `yaml:"server_key"`
	ClientKey         uint16 `yaml:"client_key"`
	ReadTimeoutMS     int    `yaml:"read_timeout_ms"`
	ChargingTimeoutMS int    `yaml:"charging_timeout_ms"`
	AcceptTimeoutMS   int    `yaml:"accept_timeout_ms"`
	MaxConnections    int    `yaml:"max_connections"`
	LogLevel          string `yaml:"log_level"`
	LogFile           string `yaml:"log_file"`
}

// Default returns the compiled-in baseline the server falls back to when no
// config file or flag overrides anything.
func Default() Config {
	return Config{
		Address:           ":2222",
		ServerKey:         54621,
		ClientKey:         45328,
		ReadTimeoutMS:     1000,
		ChargingTimeoutMS: 5000,
		AcceptTimeoutMS:   15000,
		MaxConnections:    0,
		LogLevel:          "info",
		LogFile:           "",
	}
}

// LoadFile merges a YAML config file over cfg, leaving fields the file
// doesn't mention untouched. A missing path is not an error; the caller
// should run on defaults plus flags alone.
func LoadFile(cfg Config, path string) (Config, error) {
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ReadTimeout is ReadTimeoutMS as a time.Duration.
func (c Config) ReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeoutMS) * time.Millisecond
}

// ChargingTimeout is ChargingTimeoutMS as a time.Duration.
func (c Config) ChargingTimeout() time.Duration {
	return time.Duration(c.ChargingTimeoutMS) * time.Millisecond
}

// AcceptTimeout is AcceptTimeoutMS as a time.Duration.
func (c Config) AcceptTimeout() time.Duration {
	return time.Duration(c.AcceptTimeoutMS) * time.Millisecond
}
