// Command leaveoff serves saved context items to MCP clients.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/localrivet/leaveoff"
	"github.com/localrivet/leaveoff/internal/config"
	"github.com/localrivet/leaveoff/internal/errortypes"
	"github.com/localrivet/leaveoff/internal/logger"
	"github.com/spf13/cobra"
)

type options struct {
	configPath string
	overrides  config.Overrides
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if errors.Is(err, config.ErrNoFolder) {
			fmt.Fprintln(os.Stderr, "No folder provided.")
		} else {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "leaveoff <directory>",
		Short: "MCP server that saves and restores working context",
		Long: `Run leaveoff as a Model Context Protocol (MCP) server.

Every context item is saved under <directory>, one file per item (or one
row per item with --backend sqlite). Clients call leave_off to save,
pick_up or load_latest_context_item to restore, list_context_items to
browse and remove_context_item to delete.

Configure in your agent's MCP settings:
  {
    "mcpServers": {
      "leaveoff": {
        "command": "leaveoff",
        "args": ["/path/to/contexts"]
      }
    }
  }`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.overrides.Dir = args[0]
			}
			return run(opts)
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&opts.overrides.Debug, "debug", false, "log every tool call and its result")
	flags.StringVar(&opts.configPath, "config", config.DefaultConfigFilename, "path to the JSON configuration file")
	flags.StringVar(&opts.overrides.Backend, "backend", "", "storage backend: file or sqlite")
	flags.StringVar(&opts.overrides.Transport, "transport", "", "MCP transport: stdio or sse")
	flags.StringVar(&opts.overrides.Address, "address", "", "listen address for the sse transport")

	return cmd
}

func run(opts *options) error {
	appLogger := setupLogging(os.Getenv(config.EnvPrefix+"_LOG_LEVEL"), "")

	cfg, err := config.LoadConfigWithPath(opts.configPath, appLogger)
	if err != nil {
		errortypes.LogError(appLogger, err)
		return err
	}
	cfg.ApplyOverrides(opts.overrides)
	if err := cfg.Validate(); err != nil {
		return err
	}

	appLogger = setupLogging(cfg.Logging.Level, cfg.Logging.Format)
	appLogger.Info("leaveoff MCP server starting",
		"dir", cfg.Store.Dir, "backend", cfg.Store.Backend, "transport", cfg.Server.Transport)

	srv, err := leaveoff.NewServer(leaveoff.ServerOptions{
		Config: cfg,
		Logger: logger.WithComponent(appLogger, "server"),
	})
	if err != nil {
		errortypes.LogError(appLogger, err)
		return err
	}

	setupSignalHandler(srv, appLogger)

	// Blocks until the client disconnects.
	if err := srv.Start(); err != nil {
		errortypes.LogError(appLogger, errortypes.InternalError(err, "MCP server failed"))
		srv.Stop()
		return err
	}
	return srv.Stop()
}

// setupLogging configures the process-wide logger. Output always goes to
// stderr so the stdio transport keeps stdout to itself.
func setupLogging(level, format string) *slog.Logger {
	cfg := logger.DefaultConfig()
	if level != "" {
		cfg.Level = logger.ParseLevel(level)
	}
	cfg.Format = logger.ParseFormat(format)
	return logger.Setup(cfg)
}

// setupSignalHandler sets up a signal handler for graceful shutdown.
func setupSignalHandler(srv *leaveoff.Server, log *slog.Logger) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-c
		log.Info("Received shutdown signal, terminating gracefully", "signal", sig.String())

		if err := srv.Stop(); err != nil {
			errortypes.LogError(log, err)
		}
		log.Debug(srv.MetricsReport())

		log.Info("Shutdown complete")
		os.Exit(0)
	}()
}
