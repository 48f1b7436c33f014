package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed bno080.toml
var defaultConfigData []byte

// Global state for the selected sensor
var (
	SensorName string
	Path       string
	Current    Sensor
)

// Config represents the entire TOML configuration structure
type Config struct {
	Default string   `toml:"default"`
	Sensor  []Sensor `toml:"sensor"`
}

// Sensor describes how to reach one sensor hub
type Sensor struct {
	Name       string `toml:"name"`
	Transport  string `toml:"transport"` // "uart" or "i2c"
	Port       string `toml:"port"`      // serial port name, or "auto"
	Baud       int    `toml:"baud"`
	ResetDTR   bool   `toml:"reset_dtr"`
	Bus        string `toml:"bus"` // I2C bus name; empty selects the first bus
	Address    int    `toml:"address"`
	MaxRead    int    `toml:"max_read"`
	IntPin     string `toml:"int_pin"`
	ResetPin   string `toml:"reset_pin"`
	IntervalUs int    `toml:"interval_us"`
	TimeoutMs  int    `toml:"timeout_ms"`
}

// Interval returns the requested report interval, zero if unset
func (s *Sensor) Interval() time.Duration {
	return time.Duration(s.IntervalUs) * time.Microsecond
}

// Timeout returns the read timeout, zero if unset
func (s *Sensor) Timeout() time.Duration {
	return time.Duration(s.TimeoutMs) * time.Millisecond
}

// Validate checks the fields of a sensor entry
func (s *Sensor) Validate() error {
	switch s.Transport {
	case "uart":
		if s.Baud < 0 {
			return fmt.Errorf("sensor %q has invalid baud: %d (must be positive)", s.Name, s.Baud)
		}
	case "i2c":
		if s.Address != 0 && (s.Address < 0x08 || s.Address > 0x77) {
			return fmt.Errorf("sensor %q has invalid address: 0x%x (must be 0x08..0x77)", s.Name, s.Address)
		}
		if s.MaxRead < 0 {
			return fmt.Errorf("sensor %q has invalid max_read: %d (must not be negative)", s.Name, s.MaxRead)
		}
	case "":
		return fmt.Errorf("sensor %q has no transport", s.Name)
	default:
		return fmt.Errorf("sensor %q has unknown transport %q (must be uart or i2c)", s.Name, s.Transport)
	}
	if s.IntervalUs < 0 {
		return fmt.Errorf("sensor %q has invalid interval_us: %d (must not be negative)", s.Name, s.IntervalUs)
	}
	if s.TimeoutMs < 0 {
		return fmt.Errorf("sensor %q has invalid timeout_ms: %d (must not be negative)", s.Name, s.TimeoutMs)
	}
	return nil
}

// configPath determines the config file path based on the operating system
func configPath() (string, error) {
	var configDir string
	var err error

	switch runtime.GOOS {
	case "windows":
		// Use AppData directory for Windows
		configDir, err = os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine user config directory: %w", err)
		}
		configDir = filepath.Join(configDir, "bno080")
	default:
		// Linux/macOS: use home directory
		configDir, err = os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine user home directory: %w", err)
		}
	}

	return filepath.Join(configDir, ".bno080"), nil
}

// Load parses the config file at path and returns the named sensor entry.
// An empty name selects the entry named by `default`.
func Load(path, name string) (*Sensor, error) {
	var conf Config
	if _, err := toml.DecodeFile(path, &conf); err != nil {
		return nil, fmt.Errorf("failed to parse TOML config at %s: %w", path, err)
	}
	return conf.Lookup(name)
}

// Lookup finds and validates a sensor entry by name,
// falling back to `default` when name is empty
func (c *Config) Lookup(name string) (*Sensor, error) {
	if name == "" {
		if c.Default == "" {
			return nil, errors.New("`default` key is missing or empty in config")
		}
		name = c.Default
	}

	for i := range c.Sensor {
		if c.Sensor[i].Name == name {
			s := c.Sensor[i]
			if err := s.Validate(); err != nil {
				return nil, err
			}
			return &s, nil
		}
	}
	return nil, fmt.Errorf("sensor %q not found in sensor array", name)
}

// Initialize loads the configuration and selects a sensor.
// An empty path means ~/.bno080, which is created from the embedded
// default if it doesn't exist.
func Initialize(path, name string) error {
	if path == "" {
		var err error
		path, err = configPath()
		if err != nil {
			return err
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			// Create parent directory if needed (for Windows)
			configDir := filepath.Dir(path)
			if err := os.MkdirAll(configDir, 0755); err != nil {
				return fmt.Errorf("failed to create config directory %s: %w", configDir, err)
			}
			if err := os.WriteFile(path, defaultConfigData, 0644); err != nil {
				return fmt.Errorf("failed to create default config file at %s: %w", path, err)
			}
		}
	}

	sensor, err := Load(path, name)
	if err != nil {
		return err
	}
	Path = path
	SensorName = sensor.Name
	Current = *sensor
	return nil
}
