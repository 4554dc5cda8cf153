// Package config loads and validates the leaveoff configuration.
package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/localrivet/configurator"
	"github.com/localrivet/leaveoff/internal/errortypes"
)

// Config represents the leaveoff configuration
type Config struct {
	// Store contains storage-related configuration.
	Store struct {
		// Dir is the directory holding one file per context item.
		Dir string `json:"dir" env:"STORE_DIR"`

		// Backend selects the storage implementation ("file" or "sqlite").
		Backend string `json:"backend" env:"STORE_BACKEND" validate:"required"`

		// SQLitePath overrides the database location for the sqlite backend.
		SQLitePath string `json:"sqlite_path" env:"SQLITE_PATH"`
	} `json:"store"`

	// Server contains MCP transport configuration.
	Server struct {
		// Transport is "stdio" or "sse".
		Transport string `json:"transport" env:"TRANSPORT" validate:"required"`

		// Address is the listen address for the sse transport.
		Address string `json:"address" env:"ADDRESS"`
	} `json:"server"`

	// Logging contains logging-related configuration.
	Logging struct {
		// Level is the minimum log level to display ("debug", "info", "warn", "error", "disabled").
		Level string `json:"level" env:"LOG_LEVEL" validate:"required"`

		// Format is the log format to use ("text", "json").
		Format string `json:"format" env:"LOG_FORMAT"`
	} `json:"logging"`

	// Internal state (not saved to config file)
	configPath     string       `json:"-"`
	mutex          sync.RWMutex `json:"-"`
	lastModifiedAt time.Time    `json:"-"`
}

// Default configuration values
const (
	DefaultConfigFilename = ".leaveoffconfig"
	DefaultSQLiteFilename = ".leaveoff.db"
	DefaultBackend        = "file"
	DefaultTransport      = "stdio"
	DefaultAddress        = ":8080"
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "text"
	EnvPrefix             = "LEAVEOFF"
)

// Supported transports
const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
)

// ErrNoFolder is returned by Validate when no store directory was configured.
var ErrNoFolder = errors.New("no folder provided")

// NewConfig creates a new Config instance with default values
func NewConfig() *Config {
	config := &Config{}
	config.Store.Backend = DefaultBackend
	config.Server.Transport = DefaultTransport
	config.Server.Address = DefaultAddress
	config.Logging.Level = DefaultLogLevel
	config.Logging.Format = DefaultLogFormat
	return config
}

// LoadConfig loads the configuration from the default path
func LoadConfig(logger *slog.Logger) (*Config, error) {
	return LoadConfigWithPath(DefaultConfigFilename, logger)
}

// LoadConfigWithPath loads the configuration from a specific path, layering
// defaults, the JSON file (when present) and LEAVEOFF_* environment variables.
func LoadConfigWithPath(configPath string, logger *slog.Logger) (*Config, error) {
	if logger == nil {
		logger = slog.Default()
	}

	cfg := NewConfig()

	// Try to find config file if path is default
	if configPath == DefaultConfigFilename {
		foundPath, err := configurator.FindConfigFile(configPath)
		if err == nil {
			configPath = foundPath
			logger.Debug("Found config file", "path", foundPath)
		}
	}

	loader := configurator.New(logger).
		WithProvider(configurator.NewDefaultProvider())

	if _, err := os.Stat(configPath); err == nil {
		logger.Info("Loading configuration", "path", configPath)
		loader = loader.WithProvider(configurator.NewFileProvider(configPath))
	} else {
		logger.Debug("Config file not found, using defaults and environment", "path", configPath)
	}

	loader = loader.
		WithProvider(configurator.NewEnvProvider(EnvPrefix)).
		WithValidator(configurator.NewDefaultValidator())

	if err := loader.Load(context.Background(), cfg); err != nil {
		return nil, errortypes.ConfigError(err, "failed to load configuration").WithField("path", configPath)
	}

	cfg.configPath = configPath
	cfg.lastModifiedAt = time.Now()

	return cfg, nil
}

// Overrides holds values supplied on the command line. Empty fields leave
// the loaded configuration untouched.
type Overrides struct {
	Dir       string
	Backend   string
	Transport string
	Address   string
	Debug     bool
}

// ApplyOverrides copies the non-empty overrides into the configuration.
func (c *Config) ApplyOverrides(o Overrides) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if o.Dir != "" {
		c.Store.Dir = o.Dir
	}
	if o.Backend != "" {
		c.Store.Backend = o.Backend
	}
	if o.Transport != "" {
		c.Server.Transport = o.Transport
	}
	if o.Address != "" {
		c.Server.Address = o.Address
	}
	if o.Debug {
		c.Logging.Level = "debug"
	}
}

// Validate checks the settings that cannot be expressed as struct tags.
func (c *Config) Validate() error {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	if strings.TrimSpace(c.Store.Dir) == "" {
		return errortypes.ConfigError(ErrNoFolder, "store directory is required")
	}

	switch c.Store.Backend {
	case "file", "sqlite":
	default:
		return errortypes.ConfigError(fmt.Errorf("unknown backend %q", c.Store.Backend), "invalid store backend")
	}

	switch c.Server.Transport {
	case TransportStdio:
	case TransportSSE:
		if c.Server.Address == "" {
			return errortypes.ConfigError(errors.New("empty address"), "sse transport requires an address")
		}
	default:
		return errortypes.ConfigError(fmt.Errorf("unknown transport %q", c.Server.Transport), "invalid transport")
	}

	switch strings.ToLower(c.Logging.Format) {
	case "", "text", "json":
	default:
		return errortypes.ConfigError(fmt.Errorf("unknown log format %q", c.Logging.Format), "invalid log format")
	}

	return nil
}

// StoreLocation returns what the configured backend should be initialized
// with: the directory for the file store, the database path for SQLite.
func (c *Config) StoreLocation() string {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	if c.Store.Backend == "sqlite" {
		if c.Store.SQLitePath != "" {
			return c.Store.SQLitePath
		}
		return filepath.Join(c.Store.Dir, DefaultSQLiteFilename)
	}
	return c.Store.Dir
}

// SaveToFile saves the configuration to the specified file
func (c *Config) SaveToFile(path string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errortypes.IOError(err, "failed to create config directory").WithField("dir", dir)
	}

	if err := configurator.SaveToFile(c, path, configurator.FormatJSON); err != nil {
		return errortypes.IOError(err, "failed to save configuration").WithField("path", path)
	}

	c.configPath = path
	c.lastModifiedAt = time.Now()

	return nil
}

// Save saves the configuration to the last used file path
func (c *Config) Save() error {
	if c.configPath == "" {
		c.configPath = DefaultConfigFilename
	}
	return c.SaveToFile(c.configPath)
}

// GetConfigPath returns the path of the currently loaded configuration file
func (c *Config) GetConfigPath() string {
	return c.configPath
}
