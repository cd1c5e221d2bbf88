// Package config provides configuration management for the Subcue Agent.
// Configuration is loaded from environment variables with sensible defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const (
	// Default values
	DefaultPort            = 8686
	DefaultLogLevel        = "info"
	DefaultDataDir         = ".subcue"
	DefaultAutosaveDelayMS = 2000

	// Environment variable names
	EnvPort          = "SUBCUE_PORT"
	EnvLogLevel      = "SUBCUE_LOG_LEVEL"
	EnvDataDir       = "SUBCUE_DATA_DIR"
	EnvAutosaveDelay = "SUBCUE_AUTOSAVE_DELAY_MS"
	EnvHeadless      = "SUBCUE_HEADLESS"
	EnvProbeDisabled = "SUBCUE_PROBE_DISABLED"

	// Database filename
	DBFilename = "subcue.db"
)

// Config defines the application configuration interface
type Config interface {
	Port() int
	LogLevel() string
	DataDir() string
	DBPath() string
	AutosaveDelay() time.Duration
	Headless() bool
	ProbeDisabled() bool
}

// EnvConfig reads configuration from environment variables
type EnvConfig struct {
	port            int
	logLevel        string
	dataDir         string
	autosaveDelayMS int
	headless        bool
	probeDisabled   bool
}

// New creates a new EnvConfig with defaults and environment variable overrides
func New() (*EnvConfig, error) {
	cfg := &EnvConfig{
		port:            DefaultPort,
		logLevel:        DefaultLogLevel,
		dataDir:         defaultDataDir(),
		autosaveDelayMS: DefaultAutosaveDelayMS,
	}

	// Override port from environment
	if p := os.Getenv(EnvPort); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvPort, err)
		}
		if port < 1 || port > 65535 {
			return nil, fmt.Errorf("invalid %s: port must be between 1 and 65535", EnvPort)
		}
		cfg.port = port
	}

	// Override log level from environment
	if ll := os.Getenv(EnvLogLevel); ll != "" {
		cfg.logLevel = ll
	}

	// Override data directory from environment
	if dd := os.Getenv(EnvDataDir); dd != "" {
		cfg.dataDir = dd
	}

	// Override autosave debounce delay from environment
	if ad := os.Getenv(EnvAutosaveDelay); ad != "" {
		delay, err := strconv.Atoi(ad)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvAutosaveDelay, err)
		}
		if delay < 0 {
			return nil, fmt.Errorf("invalid %s: delay must not be negative", EnvAutosaveDelay)
		}
		cfg.autosaveDelayMS = delay
	}

	cfg.headless = boolFromEnv(EnvHeadless)
	cfg.probeDisabled = boolFromEnv(EnvProbeDisabled)

	return cfg, nil
}

// Port returns the HTTP server port
func (c *EnvConfig) Port() int {
	return c.port
}

// LogLevel returns the log level (debug, info, warn, error)
func (c *EnvConfig) LogLevel() string {
	return c.logLevel
}

// DataDir returns the data directory path
func (c *EnvConfig) DataDir() string {
	return c.dataDir
}

// DBPath returns the full path to the SQLite database file
func (c *EnvConfig) DBPath() string {
	return filepath.Join(c.dataDir, DBFilename)
}

// AutosaveDelay returns the debounce window between a caption edit and the
// autosave that persists it
func (c *EnvConfig) AutosaveDelay() time.Duration {
	return time.Duration(c.autosaveDelayMS) * time.Millisecond
}

// Headless reports whether the system tray should be skipped
func (c *EnvConfig) Headless() bool {
	return c.headless
}

// ProbeDisabled reports whether ffprobe duration probing is turned off
func (c *EnvConfig) ProbeDisabled() bool {
	return c.probeDisabled
}

func boolFromEnv(key string) bool {
	switch os.Getenv(key) {
	case "1", "true", "TRUE", "True", "yes":
		return true
	default:
		return false
	}
}

// defaultDataDir returns the default data directory path
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home is not available
		return DefaultDataDir
	}
	return filepath.Join(home, DefaultDataDir)
}

// Version information (set at build time via ldflags)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)
