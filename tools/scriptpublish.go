// SPDX-FileCopyrightText: Copyright 2026 Packlane Authors
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/packlane/packlane/cliexec"
	"github.com/packlane/packlane/logger"
	"github.com/packlane/packlane/npmrc"
)

// publishScript is the project-provided entrypoint the workflow executes.
const publishScript = "publish.sh"

// ScriptPublisher runs a project's own publish.sh with registry credentials
// in the environment. Dry runs rewrite the script's publish command in
// place and restore the original content on every exit path.
type ScriptPublisher struct {
	tb *Toolbox
}

// NewScriptPublisher returns the npm_script_publish workflow.
func NewScriptPublisher(tb *Toolbox) *ScriptPublisher {
	return &ScriptPublisher{tb: tb}
}

// Definition implements Invoker.
func (*ScriptPublisher) Definition() mcp.Tool {
	return mcp.NewTool("npm_script_publish",
		mcp.WithDescription("Publish an NPM package by running the project's publish.sh with registry credentials in the environment."),
		mcp.WithString("project_dir", mcp.Description("Directory containing the npm package and its publish.sh.")),
		mcp.WithBoolean("dry_run", mcp.Description("Rewrite npm publish to npm publish --dry-run for this invocation (default: false).")),
		mcp.WithNumber("timeout", mcp.Description("Script timeout in seconds (default: 300).")),
	)
}

// Invoke implements Invoker.
func (s *ScriptPublisher) Invoke(ctx context.Context, args map[string]any) Result {
	if err := validateArgs(args, "data/npm_script_publish.schema.json"); err != nil {
		return errResult("%s", err.Error())
	}

	projectDir := stringArg(args, "project_dir", "")
	if projectDir == "" {
		return errResult("Project directory is required")
	}
	dryRun := boolArg(args, "dry_run", false)
	timeout := s.tb.timeout(args)

	if _, err := os.Stat(projectDir); err != nil {
		return errResult("Project directory does not exist: %s", projectDir)
	}
	scriptPath := filepath.Join(projectDir, publishScript)
	if _, err := os.Stat(scriptPath); err != nil {
		return errResult("publish.sh not found in %s", projectDir)
	}
	if err := os.Chmod(scriptPath, 0o755); err != nil { //nolint:gosec // the script must be executable to run
		return errResult("Failed to make publish.sh executable: %s", err.Error())
	}

	token, err := s.tb.GCloud.AccessToken(ctx, timeout)
	if err != nil {
		return execFailure(err, timeout)
	}

	if dryRun {
		restore, err := rewriteForDryRun(scriptPath)
		if err != nil {
			return errResult("failed to prepare dry run: %s", err.Error())
		}
		defer func() {
			if err := restore(); err != nil {
				logger.Warnw("failed to restore publish script", "path", scriptPath, "error", err)
			}
		}()
	}

	logger.Infow("running publish script", "project_dir", projectDir, "dry_run", dryRun)
	res, err := s.tb.Runner.Run(ctx, cliexec.Command{
		Name:    "./" + publishScript,
		Dir:     projectDir,
		Env:     []string{npmrc.TokenEnvVar + "=" + token},
		Timeout: timeout,
	})
	if err != nil {
		return execFailure(err, timeout)
	}
	if res.ExitCode != 0 {
		return Result{
			"success": false,
			"error":   "Publishing failed",
			"stdout":  res.Stdout,
			"stderr":  res.Stderr,
			"dry_run": dryRun,
		}
	}

	return Result{
		"success": true,
		"output":  res.Stdout,
		"dry_run": dryRun,
	}
}

// rewriteForDryRun swaps the script's publish command for its --dry-run
// form and returns a func restoring the original bytes.
func rewriteForDryRun(scriptPath string) (func() error, error) {
	original, err := os.ReadFile(scriptPath) // #nosec G304 -- script path derived from caller input
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(scriptPath)
	if err != nil {
		return nil, err
	}

	modified := strings.ReplaceAll(string(original), "npm publish", "npm publish --dry-run")
	if err := os.WriteFile(scriptPath, []byte(modified), info.Mode().Perm()); err != nil {
		return nil, err
	}

	return func() error {
		return os.WriteFile(scriptPath, original, info.Mode().Perm())
	}, nil
}
