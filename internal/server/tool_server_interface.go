// Package server provides the MCP server implementation for the leaveoff service.
package server

// ContextToolServer defines the interface for the MCP server that handles
// context-related tool calls from MCP clients.
type ContextToolServer interface {
	// Initialize registers tools and prompts with the MCP server.
	Initialize() error

	// Start starts the MCP server on the configured transport and blocks.
	Start() error

	// Stop gracefully shuts down the MCP server.
	Stop() error
}

var _ ContextToolServer = (*MCPContextToolServer)(nil)
