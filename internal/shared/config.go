package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Database DatabaseConfig `toml:"database"`
	UI       UIConfig       `toml:"ui"`
	Tasks    TasksConfig    `toml:"tasks"`
	Monitor  MonitorConfig  `toml:"monitor"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// UIConfig contains list rendering and search settings shared by the TUI and CLI.
type UIConfig struct {
	Language         string `toml:"language"`
	ProductsPageSize int    `toml:"products_page_size"`
	DebitsPageSize   int    `toml:"debits_page_size"`
	InvoicesPageSize int    `toml:"invoices_page_size"`
	SearchDebounceMs int    `toml:"search_debounce_ms"`
	SearchMinChars   int    `toml:"search_min_chars"`
	SearchLimit      int    `toml:"search_limit"`
}

// TasksConfig contains background scheduler settings.
type TasksConfig struct {
	Workers        int `toml:"workers"`
	QueueSize      int `toml:"queue_size"`
	CloseTimeoutMs int `toml:"close_timeout_ms"`
}

// MonitorConfig contains performance monitoring settings.
type MonitorConfig struct {
	SlowOpMs int `toml:"slow_op_ms"`
}

// SearchDebounce returns the configured debounce quiet period as a [time.Duration].
func (u UIConfig) SearchDebounce() time.Duration {
	return time.Duration(u.SearchDebounceMs) * time.Millisecond
}

// CloseTimeout returns the configured scheduler drain timeout as a [time.Duration].
func (t TasksConfig) CloseTimeout() time.Duration {
	return time.Duration(t.CloseTimeoutMs) * time.Millisecond
}

// SlowOp returns the slow-operation threshold as a [time.Duration].
func (m MonitorConfig) SlowOp() time.Duration {
	return time.Duration(m.SlowOpMs) * time.Millisecond
}

// LoadConfig reads and parses a TOML configuration file from the specified
// path. A missing file maps to [ErrMissingConfig] and a malformed one to
// [ErrInvalidConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrMissingConfig, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	// Check if file already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	// Write the embedded example config to the file
	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
