// Package leaveoff exposes the leaveoff context server as an embeddable library.
package leaveoff

import (
	"log/slog"
	"time"

	"github.com/localrivet/leaveoff/internal/config"
	"github.com/localrivet/leaveoff/internal/contextstore"
	"github.com/localrivet/leaveoff/internal/errortypes"
	"github.com/localrivet/leaveoff/internal/prompts"
	"github.com/localrivet/leaveoff/internal/server"
	"github.com/localrivet/leaveoff/internal/telemetry"
	"github.com/localrivet/leaveoff/internal/tools"
)

// Config represents the configuration for the leaveoff service.
type Config = config.Config

// Entry is one saved context item as reported by ListContexts.
type Entry = contextstore.Entry

// Server represents the leaveoff service.
type Server struct {
	config     *config.Config
	store      contextstore.ContextStore
	metrics    *telemetry.MetricsCollector
	toolServer *server.MCPContextToolServer
	logger     *slog.Logger
}

// ServerOptions defines the options for creating a new Server.
type ServerOptions struct {
	Config     *Config      // Pre-filled config. If nil, ConfigPath is used.
	ConfigPath string       // Path to config file. Used if Config is nil. If both are empty, DefaultConfig() is used.
	Dir        string       // Store directory; overrides the configured one when set.
	Logger     *slog.Logger // External logger. If nil, slog.Default() is used.

	// Clock stamps new ids. Defaults to time.Now.
	Clock func() time.Time
}

// NewServer creates a new leaveoff Server with the given options.
// If opts.Config is provided, it will be used directly.
// Otherwise, if opts.ConfigPath is provided, configuration will be loaded from that path.
// If neither is provided, DefaultConfig() will be used.
func NewServer(opts ServerOptions) (*Server, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var cfg *Config
	var err error

	if opts.Config != nil {
		cfg = opts.Config
		logger.Debug("Using provided Config object for server initialization")
	} else if opts.ConfigPath != "" {
		logger.Info("Loading configuration for server initialization", "path", opts.ConfigPath)
		cfg, err = config.LoadConfigWithPath(opts.ConfigPath, logger)
		if err != nil {
			return nil, err
		}
	} else {
		cfg = DefaultConfig()
	}

	if opts.Dir != "" {
		cfg.ApplyOverrides(config.Overrides{Dir: opts.Dir})
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store, err := CreateComponents(cfg, logger)
	if err != nil {
		return nil, err
	}

	metrics := telemetry.NewMetricsCollector()
	toolServer := server.NewContextToolServer(store, server.Options{
		Logger:    logger,
		Metrics:   metrics,
		Transport: cfg.Server.Transport,
		Address:   cfg.Server.Address,
		Clock:     opts.Clock,
	})
	if err := toolServer.Initialize(); err != nil {
		store.Close()
		return nil, err
	}

	logger.Info("leaveoff server initialized", "backend", cfg.Store.Backend, "location", cfg.StoreLocation())
	return &Server{
		config:     cfg,
		store:      store,
		metrics:    metrics,
		toolServer: toolServer,
		logger:     logger,
	}, nil
}

// DefaultConfig returns the default configuration for the leaveoff service.
// The store directory is left empty and must be supplied.
func DefaultConfig() *Config {
	return config.NewConfig()
}

// CreateComponents opens the store selected by cfg without building a server.
func CreateComponents(cfg *Config, logger *slog.Logger) (contextstore.ContextStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	store, err := contextstore.NewContextStore(cfg.Store.Backend)
	if err != nil {
		return nil, err
	}

	location := cfg.StoreLocation()
	logger.Info("Initializing context store", "backend", cfg.Store.Backend, "location", location)
	if err := store.Initialize(location); err != nil {
		errortypes.LogError(logger, err)
		return nil, err
	}
	return store, nil
}

// Start serves MCP clients on the configured transport. It blocks.
func (s *Server) Start() error {
	s.logger.Info("Starting leaveoff service")
	return s.toolServer.Start()
}

// Stop stops the tool server and closes the store.
func (s *Server) Stop() error {
	s.logger.Info("Stopping leaveoff service")
	if err := s.toolServer.Stop(); err != nil {
		s.logger.Error("Error stopping tool server", "error", err)
		return err
	}

	if err := s.store.Close(); err != nil {
		errortypes.LogError(s.logger, err)
		return err
	}

	s.logger.Info("leaveoff service stopped")
	return nil
}

// SaveContext saves content as a new item and returns its id.
func (s *Server) SaveContext(content string) (string, error) {
	return s.toolServer.LeaveOff(content)
}

// LoadContext returns the content stored under id.
func (s *Server) LoadContext(id string) (string, error) {
	return s.toolServer.PickUp(id)
}

// RemoveContext deletes the item stored under id.
func (s *Server) RemoveContext(id string) error {
	return s.toolServer.Remove(id)
}

// ListContexts returns every saved item, newest first.
func (s *Server) ListContexts() ([]Entry, error) {
	return s.toolServer.List()
}

// LoadLatestContext returns the id and content of the newest item.
func (s *Server) LoadLatestContext() (string, string, error) {
	entry, content, err := s.toolServer.LoadLatest()
	if err != nil {
		return "", "", err
	}
	return entry.ID, content, nil
}

// RenderPrompt renders the named prompt with args. Unlike prompts served over
// MCP, optional arguments such as focus are substituted here.
func (s *Server) RenderPrompt(name string, args map[string]string) (string, error) {
	return prompts.Render(name, args)
}

// FailureResult maps err to the failed envelope the built-in tools return,
// for hosts that expose these operations from their own MCP server.
func (s *Server) FailureResult(tool string, err error) tools.Result {
	return server.Failure(s.logger, tool, err)
}

// GetStore returns the context store instance used by the server.
func (s *Server) GetStore() contextstore.ContextStore {
	return s.store
}

// GetConfig returns the configuration the server was built from.
func (s *Server) GetConfig() *Config {
	return s.config
}

// MetricsReport returns the tool call telemetry collected so far.
func (s *Server) MetricsReport() string {
	return s.metrics.GetReport()
}
