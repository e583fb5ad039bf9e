package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds the QC tool configuration
type Config struct {
	EditServiceURL string `toml:"edit_service_url"`

	// Job polling
	PollIntervalSeconds int `toml:"poll_interval_seconds"`
	JobTimeoutSeconds   int `toml:"job_timeout_seconds"`
	PollErrorBudget     int `toml:"poll_error_budget"`

	// Backlog query window for recently-touched assets
	BacklogWindowDays int `toml:"backlog_window_days"`

	// Mask editor
	BrushDiameter int `toml:"brush_diameter"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		EditServiceURL:      "http://127.0.0.1:8787",
		PollIntervalSeconds: 2,
		JobTimeoutSeconds:   120,
		PollErrorBudget:     5,
		BacklogWindowDays:   14,
		BrushDiameter:       3,
	}
}

// PollInterval returns the poll interval as a duration
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

// JobTimeout returns the job wall-clock ceiling as a duration
func (c *Config) JobTimeout() time.Duration {
	return time.Duration(c.JobTimeoutSeconds) * time.Second
}

// BacklogWindow returns the backlog query window as a duration
func (c *Config) BacklogWindow() time.Duration {
	return time.Duration(c.BacklogWindowDays) * 24 * time.Hour
}

// DataDir returns the asqc data directory.
// Uses ASQC_DATA_DIR env var if set, otherwise ~/.asqc
func DataDir() string {
	if dir := os.Getenv("ASQC_DATA_DIR"); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".asqc")
}

// GlobalConfigPath returns the path to the global config file
func GlobalConfigPath() string {
	return filepath.Join(DataDir(), "config.toml")
}

// LoadGlobal loads the global configuration from the default path
func LoadGlobal() (*Config, error) {
	return LoadGlobalFrom(GlobalConfigPath())
}

// LoadGlobalFrom loads the global configuration from a specific path.
// Missing file is not an error; defaults are returned.
func LoadGlobalFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SaveGlobal saves the global configuration
func SaveGlobal(cfg *Config) error {
	path := GlobalConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}
