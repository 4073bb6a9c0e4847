package timetree_tools

import (
	"fmt"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/timetree/internal/server"
)

// RegisterTimeTreeTools registers all TimeTree tools with the MCP server
func RegisterTimeTreeTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	if err := RegisterCalendarTools(s, sc); err != nil {
		return fmt.Errorf("failed to register calendar tools: %w", err)
	}

	// Write operations require !readOnly
	if err := RegisterEventTools(s, sc, readOnly); err != nil {
		return fmt.Errorf("failed to register event tools: %w", err)
	}

	return nil
}
