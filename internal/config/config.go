package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"icsdiff/internal/diff"
	"icsdiff/internal/export"
	"icsdiff/internal/ics"
	appLog "icsdiff/internal/log"
)

// NOTE: Every field is optional. A missing config file is not an error;
// the diff runs with DefaultConfig().

// MarkersConfig holds the words prefixed to annotated event names.
type MarkersConfig struct {
	Deleted string `yaml:"deleted" json:"deleted"`
	Updated string `yaml:"updated" json:"updated"`
}

// WatchConfig controls `icsdiff watch`.
type WatchConfig struct {
	// Schedule is a standard 5-field cron spec (e.g. "*/5 * * * *").
	Schedule string `yaml:"schedule" json:"schedule"`
}

// Config is the top-level application configuration.
type Config struct {
	// Policy selects modification-equality: "full" (default) compares
	// name, begin, end and location; "schedule" only begin and end.
	Policy string `yaml:"policy" json:"policy"`

	// OutputDir is where exported calendars are written.
	OutputDir string `yaml:"output_dir" json:"output_dir"`

	// ProductID is written as PRODID of exported calendars.
	ProductID string `yaml:"product_id" json:"product_id"`

	// TimestampLayout is the Go time layout used in output filenames.
	TimestampLayout string `yaml:"timestamp_layout" json:"timestamp_layout"`

	Markers MarkersConfig `yaml:"markers" json:"markers"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" json:"log_level"`

	Watch WatchConfig `yaml:"watch" json:"watch"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Policy:          string(diff.DefaultPolicy),
		OutputDir:       ".",
		ProductID:       ics.DefaultProductID,
		TimestampLayout: export.DefaultTimestampLayout,
		Markers: MarkersConfig{
			Deleted: export.DefaultMarkers.Deleted,
			Updated: export.DefaultMarkers.Updated,
		},
		LogLevel: "info",
		Watch:    WatchConfig{Schedule: "*/5 * * * *"},
	}
}

// Normalize fills in missing/zero values with defaults so that partially
// filled configs still behave correctly.
func (c *Config) Normalize() {
	def := DefaultConfig()

	if _, err := diff.ParsePolicy(c.Policy); err != nil || c.Policy == "" {
		if c.Policy != "" {
			appLog.Warn("unknown policy in config; falling back", "policy", c.Policy, "fallback", def.Policy)
		}
		c.Policy = def.Policy
	}
	if c.OutputDir == "" {
		c.OutputDir = def.OutputDir
	}
	if c.ProductID == "" {
		c.ProductID = def.ProductID
	}
	if c.TimestampLayout == "" {
		c.TimestampLayout = def.TimestampLayout
	}
	if c.Markers.Deleted == "" {
		c.Markers.Deleted = def.Markers.Deleted
	}
	if c.Markers.Updated == "" {
		c.Markers.Updated = def.Markers.Updated
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if c.Watch.Schedule == "" {
		c.Watch.Schedule = def.Watch.Schedule
	}
}

// Validate checks values that Normalize cannot repair silently.
func (c *Config) Validate() error {
	if _, err := diff.ParsePolicy(c.Policy); err != nil {
		return err
	}
	if _, err := appLog.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if _, err := cron.ParseStandard(c.Watch.Schedule); err != nil {
		return fmt.Errorf("watch schedule %q: %w", c.Watch.Schedule, err)
	}
	return nil
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - Empty path or missing file: defaults.
//   - Otherwise: unmarshal, normalize defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			appLog.Debug("config file not found; using defaults", "config_path", path)
			return DefaultConfig(), nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Marshals cfg to YAML.
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".icsdiff-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	// Ensure we clean up temp file on error.
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}

// Save is a convenience method on Config that delegates to the package-level
// Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
