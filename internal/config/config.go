package config

import (
	"os"
	"strconv"

	"gridsig/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Grid    GridConfig
	Audit   AuditConfig
	Paths   PathConfig
	Archive ArchiveConfig
}

// GridConfig holds grid geometry settings
type GridConfig struct {
	Size int
}

// AuditConfig holds significance-audit settings
type AuditConfig struct {
	NControls int
	Seed      int64
	Alpha     float64
	Workers   int // 0 means size to available cores
}

// PathConfig holds file system paths for input and report output
type PathConfig struct {
	GridFile   string
	StreamFile string
	ReportDir  string
}

// ArchiveConfig holds report-archive settings
type ArchiveConfig struct {
	Enabled bool
	DSN     string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	cfg := &Config{
		Grid: GridConfig{
			Size: envInt("GRIDSIG_GRID_SIZE", 128),
		},
		Audit: AuditConfig{
			NControls: envInt("GRIDSIG_N_CONTROLS", 1000),
			Seed:      envInt64("GRIDSIG_SEED", 42),
			Alpha:     envFloat("GRIDSIG_ALPHA", 0.05),
			Workers:   envInt("GRIDSIG_WORKERS", 0),
		},
		Paths: PathConfig{
			GridFile:   os.Getenv("GRIDSIG_GRID_FILE"),
			StreamFile: os.Getenv("GRIDSIG_STREAM_FILE"),
			ReportDir:  envString("GRIDSIG_REPORT_DIR", "reports"),
		},
		Archive: ArchiveConfig{
			Enabled: envBool("GRIDSIG_ARCHIVE_ENABLED", false),
			DSN:     envString("GRIDSIG_ARCHIVE_DSN", "gridsig.db"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Grid.Size <= 0 || c.Grid.Size%2 != 0 {
		return errors.ConfigInvalid("GRIDSIG_GRID_SIZE must be a positive even number")
	}
	if c.Audit.NControls <= 0 {
		return errors.ConfigInvalid("GRIDSIG_N_CONTROLS must be positive")
	}
	if c.Audit.Alpha <= 0 || c.Audit.Alpha >= 1 {
		return errors.ConfigInvalid("GRIDSIG_ALPHA must be in (0, 1)")
	}
	if c.Audit.Workers < 0 {
		return errors.ConfigInvalid("GRIDSIG_WORKERS must be non-negative")
	}
	if c.Archive.Enabled && c.Archive.DSN == "" {
		return errors.ConfigInvalid("GRIDSIG_ARCHIVE_DSN required when archive is enabled")
	}
	return nil
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
