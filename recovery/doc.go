// SPDX-FileCopyrightText: Copyright 2026 Packlane Authors
// SPDX-License-Identifier: Apache-2.0

// Package recovery provides panic recovery middleware for MCP tool handlers.
//
// The middleware recovers from panics in tool handlers and returns a
// structured error result to the client. This prevents a single panicking
// tool invocation from crashing the entire server: a workflow either fully
// succeeds or reports a failure, nothing propagates as an unhandled fault.
//
// # Basic Usage
//
//	srv.AddTool(tool, recovery.ToolMiddleware(handler))
package recovery
