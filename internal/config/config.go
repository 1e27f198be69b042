package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all archreport configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Description repository
	Database DatabaseConfig `yaml:"database"`

	// Report generation
	Reports ReportsConfig `yaml:"reports"`

	// Reference code composition
	ReferenceCode ReferenceCodeConfig `yaml:"reference_code"`

	// Watch mode
	Watch WatchConfig `yaml:"watch"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// DatabaseConfig configures the SQLite description repository.
type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite (pure Go) or sqlite3 (cgo)
	Path   string `yaml:"path"`
}

// ReportsConfig configures where and how reports are produced.
type ReportsConfig struct {
	DownloadsDir string      `yaml:"downloads_dir"`
	Culture      string      `yaml:"culture"` // operating culture for term lookup and labels
	Batch        BatchConfig `yaml:"batch"`
}

// BatchConfig bounds concurrent jobs in batch mode.
type BatchConfig struct {
	Concurrency int `yaml:"concurrency"`
}

// ReferenceCodeConfig mirrors the "inherit reference code" setting of the
// cataloguing application.
type ReferenceCodeConfig struct {
	Inherit        bool   `yaml:"inherit"`
	Separator      string `yaml:"separator"`
	RepositoryCode string `yaml:"repository_code"`
}

// WatchConfig configures database-change watching.
type WatchConfig struct {
	Debounce string `yaml:"debounce"`
}

// ValidDrivers lists the supported database/sql driver names.
var ValidDrivers = []string{"sqlite", "sqlite3"}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "archreport",
		Version: "0.3.0",

		Database: DatabaseConfig{
			Driver: "sqlite",
			Path:   "data/archive.db",
		},

		Reports: ReportsConfig{
			DownloadsDir: "downloads",
			Culture:      "en",
			Batch: BatchConfig{
				Concurrency: 4,
			},
		},

		ReferenceCode: ReferenceCodeConfig{
			Inherit:   true,
			Separator: "-",
		},

		Watch: WatchConfig{
			Debounce: "500ms",
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return defaults if config file doesn't exist
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if path := os.Getenv("ARCHREPORT_DB"); path != "" {
		c.Database.Path = path
	}
	if driver := os.Getenv("ARCHREPORT_DB_DRIVER"); driver != "" {
		c.Database.Driver = driver
	}
	if dir := os.Getenv("ARCHREPORT_DOWNLOADS"); dir != "" {
		c.Reports.DownloadsDir = dir
	}
	if culture := os.Getenv("ARCHREPORT_CULTURE"); culture != "" {
		c.Reports.Culture = culture
	}
	if n := os.Getenv("ARCHREPORT_BATCH_CONCURRENCY"); n != "" {
		if v, err := strconv.Atoi(n); err == nil {
			c.Reports.Batch.Concurrency = v
		}
	}
}

// GetWatchDebounce returns the watch debounce as a duration.
func (c *Config) GetWatchDebounce() time.Duration {
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil || d <= 0 {
		return 500 * time.Millisecond
	}
	return d
}

// GetBatchConcurrency returns the batch limit, never less than one.
func (c *Config) GetBatchConcurrency() int {
	if c.Reports.Batch.Concurrency < 1 {
		return 1
	}
	return c.Reports.Batch.Concurrency
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validDriver := false
	for _, d := range ValidDrivers {
		if c.Database.Driver == d {
			validDriver = true
			break
		}
	}
	if !validDriver {
		return fmt.Errorf("invalid database driver: %s (valid: %v)", c.Database.Driver, ValidDrivers)
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database path not configured (set database.path or ARCHREPORT_DB)")
	}
	if c.Reports.DownloadsDir == "" {
		return fmt.Errorf("downloads directory not configured")
	}
	if c.Reports.Culture == "" {
		return fmt.Errorf("operating culture not configured")
	}

	return c.Logging.validate()
}
