package server

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/localrivet/gomcp/server"
	"github.com/localrivet/leaveoff/internal/config"
	"github.com/localrivet/leaveoff/internal/contextid"
	"github.com/localrivet/leaveoff/internal/contextstore"
	"github.com/localrivet/leaveoff/internal/errortypes"
	"github.com/localrivet/leaveoff/internal/prompts"
	"github.com/localrivet/leaveoff/internal/telemetry"
	"github.com/localrivet/leaveoff/internal/tools"
)

// ServerName is the name announced to MCP clients.
const ServerName = "leaveoff"

// Common server error types
var (
	ErrServerNotInitialized = errors.New("server not initialized")
	ErrMissingDependencies  = errors.New("one or more required dependencies are nil")
)

// Options configures an MCPContextToolServer. Zero values fall back to
// defaults: slog.Default, a fresh metrics collector, stdio, time.Now.
type Options struct {
	Logger    *slog.Logger
	Metrics   *telemetry.MetricsCollector
	Transport string
	Address   string
	Clock     func() time.Time
}

// MCPContextToolServer implements the ContextToolServer interface
// for handling MCP tool calls related to saving and loading context items.
type MCPContextToolServer struct {
	store     contextstore.ContextStore
	metrics   *telemetry.MetricsCollector
	logger    *slog.Logger
	transport string
	address   string
	clock     func() time.Time
	mcpServer server.Server
}

// NewContextToolServer creates a new MCPContextToolServer instance.
func NewContextToolServer(store contextstore.ContextStore, opts Options) *MCPContextToolServer {
	s := &MCPContextToolServer{
		store:     store,
		metrics:   opts.Metrics,
		logger:    opts.Logger,
		transport: opts.Transport,
		address:   opts.Address,
		clock:     opts.Clock,
	}
	if s.metrics == nil {
		s.metrics = telemetry.NewMetricsCollector()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.transport == "" {
		s.transport = config.TransportStdio
	}
	if s.address == "" {
		s.address = config.DefaultAddress
	}
	if s.clock == nil {
		s.clock = time.Now
	}
	return s
}

// Metrics returns the collector the server records into.
func (s *MCPContextToolServer) Metrics() *telemetry.MetricsCollector {
	return s.metrics
}

// Initialize registers every tool and prompt with a new MCP server.
func (s *MCPContextToolServer) Initialize() error {
	s.logger.Info("Initializing MCP Context Tool Server")

	if s.store == nil {
		return errortypes.ConfigError(ErrMissingDependencies, "server initialization failed")
	}

	srv := server.NewServer(ServerName)

	srv = srv.Tool(tools.ToolLeaveOff, LeaveOffDescription, wireResult(s.handleLeaveOff))
	srv = srv.Tool(tools.ToolPickUp, PickUpDescription, wireResult(s.handlePickUp))
	srv = srv.Tool(tools.ToolRemoveContextItem, RemoveDescription, wireResult(s.handleRemoveContextItem))
	srv = srv.Tool(tools.ToolListContextItems, ListDescription, wireResult(s.handleListContextItems))
	srv = srv.Tool(tools.ToolLoadLatestContextItem, LoadLatestDescription, wireResult(s.handleLoadLatestContextItem))

	registered := prompts.All()
	for _, p := range registered {
		tmpl, err := p.Registered()
		if err != nil {
			return err
		}
		srv = srv.Prompt(p.Name, p.Description, server.User(tmpl))

		// the server derives arguments from placeholders in map order with
		// generic descriptions; replace them with the declared ones
		if entry, ok := srv.GetServer().GetPrompts()[p.Name]; ok {
			entry.Arguments = p.ServerArguments()
		}
	}

	s.mcpServer = srv
	s.logger.Info("MCP Context Tool Server initialized successfully",
		"tool_count", len(tools.Names), "prompt_count", len(registered))
	return nil
}

// Start starts the MCP server on the configured transport.
func (s *MCPContextToolServer) Start() error {
	if s.mcpServer == nil {
		return errortypes.ConfigError(ErrServerNotInitialized, "cannot start server")
	}

	switch s.transport {
	case config.TransportStdio:
		s.logger.Info("Starting MCP Context Tool Server", "transport", s.transport)
		return s.mcpServer.AsStdio().Run()
	case config.TransportSSE:
		s.logger.Info("Starting MCP Context Tool Server", "transport", s.transport, "address", s.address)
		return s.mcpServer.AsSSE(s.address).Run()
	default:
		return errortypes.ConfigError(fmt.Errorf("unknown transport %q", s.transport), "cannot start server")
	}
}

// Stop gracefully shuts down the MCP server.
func (s *MCPContextToolServer) Stop() error {
	s.logger.Info("Stopping MCP Context Tool Server")
	// stdio exits when stdin closes; the process owns the SSE listener
	s.logger.Debug("Tool server metrics\n" + s.metrics.GetReport())
	return nil
}

// requireText trims value and rejects it when empty.
func requireText(field, value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", errortypes.ValidationError(fmt.Errorf("%s must not be empty", field), field+" is required")
	}
	return trimmed, nil
}

// LeaveOff saves content as a new item and returns its id. Content is stored
// exactly as given; only the emptiness check trims it.
func (s *MCPContextToolServer) LeaveOff(content string) (string, error) {
	if _, err := requireText("context", content); err != nil {
		return "", err
	}

	id := contextid.NewAt(s.clock())
	if err := s.store.Write(id, content); err != nil {
		return "", err
	}
	s.logger.Info("Saved context item", "context_id", id, "length", len(content))
	return id, nil
}

// PickUp returns the content stored under id.
func (s *MCPContextToolServer) PickUp(id string) (string, error) {
	id, err := requireText("id", id)
	if err != nil {
		return "", err
	}
	return s.store.Read(id)
}

// Remove deletes the item stored under id.
func (s *MCPContextToolServer) Remove(id string) error {
	id, err := requireText("id", id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(id); err != nil {
		return err
	}
	s.logger.Info("Removed context item", "context_id", id)
	return nil
}

// List returns all items newest first.
func (s *MCPContextToolServer) List() ([]contextstore.Entry, error) {
	entries, err := contextstore.ListNewest(s.store, s.logger)
	if err != nil {
		return nil, err
	}
	s.metrics.SetGauge(telemetry.MetricStoreItems, float64(len(entries)))
	return entries, nil
}

// LoadLatest returns the newest entry and its content.
func (s *MCPContextToolServer) LoadLatest() (contextstore.Entry, string, error) {
	entry, err := contextstore.Latest(s.store, s.logger)
	if err != nil {
		return contextstore.Entry{}, "", err
	}
	content, err := s.store.Read(entry.ID)
	if err != nil {
		return contextstore.Entry{}, "", err
	}
	return entry, content, nil
}

// FormatEntries renders entries as "<id> (<date>)" lines.
func FormatEntries(entries []contextstore.Entry) string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf(ListLineFormat, e.ID, e.SavedAt.UTC().Format(time.RFC1123)))
	}
	return strings.Join(lines, "\n")
}

// wireResult adapts a handler to return the envelope as a map, the only
// result shape whose content and isError the MCP server passes through.
func wireResult[T any](h func(*server.Context, T) (tools.Result, error)) func(*server.Context, T) (map[string]interface{}, error) {
	return func(ctx *server.Context, req T) (map[string]interface{}, error) {
		result, err := h(ctx, req)
		if err != nil {
			return nil, err
		}
		return result.Map(), nil
	}
}

// call runs op as the named tool: it records telemetry, recovers panics and
// routes every error through failure.
func (s *MCPContextToolServer) call(tool string, op func() (tools.Result, error), attrs ...any) (result tools.Result) {
	start := time.Now()
	s.logger.Debug("Tool call", append([]any{"tool", tool}, attrs...)...)

	defer func() {
		if r := recover(); r != nil {
			s.metrics.IncrementCounter(telemetry.ToolMetric(telemetry.MetricToolPanics, tool), 1)
			result = Failure(s.logger, tool, errortypes.InternalError(fmt.Errorf("panic: %v", r), "unexpected failure"))
		}
		elapsed := time.Since(start)
		s.metrics.RecordToolCall(tool, elapsed, !result.Success)
		s.logger.Debug("Tool result", "tool", tool, "success", result.Success, "duration", elapsed)
	}()

	res, err := op()
	if err != nil {
		return Failure(s.logger, tool, err)
	}
	return res
}

// handleLeaveOff handles the leave_off MCP tool call.
func (s *MCPContextToolServer) handleLeaveOff(ctx *server.Context, req tools.LeaveOffRequest) (tools.Result, error) {
	return s.call(tools.ToolLeaveOff, func() (tools.Result, error) {
		id, err := s.LeaveOff(req.Context)
		if err != nil {
			return tools.Result{}, err
		}
		result := tools.Success(fmt.Sprintf(SavedMsgFormat, id))
		result.ID = id
		return result, nil
	}, "length", len(req.Context)), nil
}

// handlePickUp handles the pick_up MCP tool call.
func (s *MCPContextToolServer) handlePickUp(ctx *server.Context, req tools.PickUpRequest) (tools.Result, error) {
	return s.call(tools.ToolPickUp, func() (tools.Result, error) {
		content, err := s.PickUp(req.ID)
		if err != nil {
			return tools.Result{}, err
		}
		return tools.Success(content), nil
	}, "context_id", req.ID), nil
}

// handleRemoveContextItem handles the remove_context_item MCP tool call.
func (s *MCPContextToolServer) handleRemoveContextItem(ctx *server.Context, req tools.RemoveContextItemRequest) (tools.Result, error) {
	return s.call(tools.ToolRemoveContextItem, func() (tools.Result, error) {
		if err := s.Remove(req.ID); err != nil {
			return tools.Result{}, err
		}
		return tools.Success(fmt.Sprintf(RemovedMsgFormat, strings.TrimSpace(req.ID))), nil
	}, "context_id", req.ID), nil
}

// handleListContextItems handles the list_context_items MCP tool call.
func (s *MCPContextToolServer) handleListContextItems(ctx *server.Context, req tools.ListContextItemsRequest) (tools.Result, error) {
	return s.call(tools.ToolListContextItems, func() (tools.Result, error) {
		entries, err := s.List()
		if err != nil {
			return tools.Result{}, err
		}
		if len(entries) == 0 {
			return tools.Success(NoSavedContextsMsg), nil
		}
		return tools.Success(FormatEntries(entries)), nil
	}), nil
}

// handleLoadLatestContextItem handles the load_latest_context_item MCP tool call.
func (s *MCPContextToolServer) handleLoadLatestContextItem(ctx *server.Context, req tools.LoadLatestContextItemRequest) (tools.Result, error) {
	return s.call(tools.ToolLoadLatestContextItem, func() (tools.Result, error) {
		entry, content, err := s.LoadLatest()
		if err != nil {
			return tools.Result{}, err
		}
		result := tools.Success(content)
		result.ID = entry.ID
		return result, nil
	}), nil
}
