// SPDX-FileCopyrightText: Copyright 2026 Packlane Authors
// SPDX-License-Identifier: Apache-2.0

package recovery

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/packlane/packlane/logger"
)

// ToolMiddleware wraps an MCP tool handler and recovers from panics.
// When a panic occurs, it logs the panic value and returns an error
// result to the client instead of crashing the server.
func ToolMiddleware(next server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (res *mcp.CallToolResult, err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Errorw("tool handler panicked", "tool", req.Params.Name, "panic", r)
				res = mcp.NewToolResultError(fmt.Sprintf("internal error in tool %s", req.Params.Name))
				err = nil
			}
		}()
		return next(ctx, req)
	}
}
