// SPDX-FileCopyrightText: Copyright 2026 Packlane Authors
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/packlane/packlane/recovery"
)

// ServerName and ServerVersion identify this tool server to MCP clients.
const (
	ServerName    = "packlane"
	ServerVersion = "0.1.0"
)

// NewServer builds an MCP server exposing every workflow in the toolbox.
// Handlers are wrapped in panic recovery so a misbehaving workflow takes
// down one call, not the server.
func NewServer(tb *Toolbox) *server.MCPServer {
	s := server.NewMCPServer(ServerName, ServerVersion,
		server.WithToolCapabilities(false),
	)
	for _, inv := range tb.All() {
		s.AddTool(inv.Definition(), recovery.ToolMiddleware(handlerFor(inv)))
	}
	return s
}

// handlerFor adapts an Invoker to the MCP tool handler contract: the
// workflow's Result is serialized as the tool's text content. Workflow
// failures are ordinary results, not protocol errors.
func handlerFor(inv Invoker) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		res := inv.Invoke(ctx, req.GetArguments())
		data, err := json.Marshal(res)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to serialize result: %s", err)), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	}
}
