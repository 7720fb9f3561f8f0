// SPDX-FileCopyrightText: Copyright 2026 Packlane Authors
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/packlane/packlane/cliexec"
	"github.com/packlane/packlane/config"
	"github.com/packlane/packlane/gcloud"
)

// Result is the JSON-serializable outcome of a workflow invocation. It
// always carries a "success" key; failures additionally carry "error".
type Result map[string]any

// Toolbox holds the collaborators shared by all workflows. The zero value
// is not usable; construct with NewToolbox or populate every field.
type Toolbox struct {
	Config *config.Config
	Runner cliexec.Runner
	GCloud *gcloud.Client

	// Now supplies timestamps for archive names and versions.
	Now func() time.Time
}

// NewToolbox wires a Toolbox around the real external CLIs.
func NewToolbox(cfg *config.Config) *Toolbox {
	runner := &cliexec.OSRunner{}
	return &Toolbox{
		Config: cfg,
		Runner: runner,
		GCloud: gcloud.NewClient(gcloud.WithRunner(runner), gcloud.WithBinary(cfg.GcloudBinary)),
		Now:    time.Now,
	}
}

// Invoker is one callable workflow.
type Invoker interface {
	// Definition describes the tool for registration with an MCP server.
	Definition() mcp.Tool

	// Invoke runs the workflow. It never returns an error; failures are
	// encoded in the Result.
	Invoke(ctx context.Context, args map[string]any) Result
}

// All returns the full set of workflows backed by the toolbox.
func (tb *Toolbox) All() []Invoker {
	return []Invoker{
		NewArtifactPusher(tb),
		NewPackagePuller(tb),
		NewPackagePublisher(tb),
		NewScriptPublisher(tb),
	}
}

// timeout resolves the per-invocation subprocess timeout: the "timeout"
// argument in seconds when present, the configured default otherwise.
func (tb *Toolbox) timeout(args map[string]any) time.Duration {
	if v, ok := args["timeout"].(float64); ok && v > 0 {
		return time.Duration(v) * time.Second
	}
	return time.Duration(tb.Config.TimeoutSeconds) * time.Second
}

// errResult builds a failure Result.
func errResult(format string, a ...any) Result {
	return Result{"success": false, "error": fmt.Sprintf(format, a...)}
}

// execFailure converts a subprocess error into a failure Result,
// distinguishing timeouts so the configured limit is reported.
func execFailure(err error, timeout time.Duration) Result {
	var te *cliexec.TimeoutError
	if errors.As(err, &te) {
		return errResult("command timed out after %d seconds", int(timeout.Seconds()))
	}
	return errResult("%s", err.Error())
}

// stringArg reads an optional string argument, returning def when the key
// is absent or empty.
func stringArg(args map[string]any, key, def string) string {
	if v, ok := args[key].(string); ok && v != "" {
		return v
	}
	return def
}

// boolArg reads an optional boolean argument.
func boolArg(args map[string]any, key string, def bool) bool {
	if v, ok := args[key].(bool); ok {
		return v
	}
	return def
}
