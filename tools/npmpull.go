// SPDX-FileCopyrightText: Copyright 2026 Packlane Authors
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/packlane/packlane/archive"
	"github.com/packlane/packlane/cliexec"
	"github.com/packlane/packlane/gar"
	"github.com/packlane/packlane/logger"
	"github.com/packlane/packlane/npmrc"
	"github.com/packlane/packlane/validation/names"
)

// defaultPullOutputDir is where pulled packages are extracted. It is
// retained after the invocation; only the working directory is removed.
const defaultPullOutputDir = "fetched-package"

// packageTopDir is the canonical top-level folder inside npm tarballs.
const packageTopDir = "package"

// PackagePuller fetches an npm package from Artifact Registry and extracts
// it into a local directory.
type PackagePuller struct {
	tb *Toolbox
}

// NewPackagePuller returns the npm_pull workflow.
func NewPackagePuller(tb *Toolbox) *PackagePuller {
	return &PackagePuller{tb: tb}
}

// Definition implements Invoker.
func (*PackagePuller) Definition() mcp.Tool {
	return mcp.NewTool("npm_pull",
		mcp.WithDescription("Pull an NPM package from Google Artifact Registry and extract it into a local directory."),
		mcp.WithString("package_name", mcp.Description("Package to pull, e.g. @observability/react-app.")),
		mcp.WithString("repository_path", mcp.Description("Artifact Registry repository path, e.g. us-central1-npm.pkg.dev/project-id/repo-name.")),
		mcp.WithString("version", mcp.Description("Version to pull (default: latest).")),
		mcp.WithString("output_dir", mcp.Description("Directory to extract the package into (default: fetched-package).")),
		mcp.WithNumber("timeout", mcp.Description("Per-command timeout in seconds (default: 300).")),
	)
}

// Invoke implements Invoker.
func (p *PackagePuller) Invoke(ctx context.Context, args map[string]any) Result {
	if err := validateArgs(args, "data/npm_pull.schema.json"); err != nil {
		return errResult("%s", err.Error())
	}

	packageName := stringArg(args, "package_name", "")
	if packageName == "" {
		return errResult("Package name is required")
	}
	repositoryPath := stringArg(args, "repository_path", "")
	if repositoryPath == "" {
		return errResult("GCP Artifact Registry repository path is required")
	}
	version := stringArg(args, "version", "latest")
	outputDir := stringArg(args, "output_dir", defaultPullOutputDir)
	timeout := p.tb.timeout(args)

	repo, err := gar.ParsePath(repositoryPath)
	if err != nil {
		return errResult("%s", err.Error())
	}
	if err := names.ValidatePackageName(packageName); err != nil {
		return errResult("invalid package name: %s", err.Error())
	}

	workDir, err := os.MkdirTemp("", "packlane-pull-*")
	if err != nil {
		return errResult("failed to create working directory: %s", err.Error())
	}
	defer func() { _ = os.RemoveAll(workDir) }()

	token, err := p.tb.GCloud.Provision(ctx, p.tb.Config.NpmHost, timeout)
	if err != nil {
		return execFailure(err, timeout)
	}

	scope := names.Scope(packageName)
	if scope == "" {
		scope = p.tb.Config.DefaultScope
	}
	restore, _, err := npmrc.Write(workDir, repo, scope, token)
	if err != nil {
		return errResult("Failed to configure .npmrc: %s", err.Error())
	}
	defer func() {
		if err := restore(); err != nil {
			logger.Warnw("failed to restore npm config", "error", err)
		}
	}()

	env := []string{npmrc.TokenEnvVar + "=" + token}

	// Existence check is informational: a registry that rejects "view"
	// can still serve "pack", so failure here does not abort the pull.
	availableVersions := ""
	viewRes, err := p.tb.Runner.Run(ctx, cliexec.Command{
		Name:    p.tb.Config.NpmBinary,
		Args:    []string{"view", packageName, "versions", "--registry", repo.RegistryURL()},
		Dir:     workDir,
		Env:     env,
		Timeout: timeout,
	})
	switch {
	case err != nil:
		if cliexec.IsTimeout(err) {
			return execFailure(err, timeout)
		}
		logger.Warnw("failed to fetch package versions", "package", packageName, "error", err)
	case viewRes.ExitCode != 0:
		logger.Warnw("failed to fetch package versions", "package", packageName, "stderr", viewRes.Stderr)
	default:
		availableVersions = strings.TrimSpace(viewRes.Stdout)
	}

	spec := packageName
	if version != "latest" {
		spec = packageName + "@" + version
	}
	logger.Infow("packing package", "spec", spec, "registry", repo.String())
	packRes, err := p.tb.Runner.Run(ctx, cliexec.Command{
		Name:    p.tb.Config.NpmBinary,
		Args:    []string{"pack", spec, "--registry", repo.RegistryURL()},
		Dir:     workDir,
		Env:     env,
		Timeout: timeout,
	})
	if err != nil {
		return execFailure(err, timeout)
	}
	if packRes.ExitCode != 0 {
		return errResult("Failed to pack package: %s", packRes.Stderr)
	}

	tarball, err := findTarball(workDir)
	if err != nil {
		return errResult("failed to locate tarball: %s", err.Error())
	}
	if tarball == "" {
		return errResult("No package tarball found after npm pack")
	}

	if err := os.MkdirAll(outputDir, 0o750); err != nil {
		return errResult("failed to create output directory: %s", err.Error())
	}
	if err := archive.Extract(tarball, outputDir); err != nil {
		return errResult("failed to extract package: %s", err.Error())
	}
	if err := archive.FlattenTopDir(outputDir, packageTopDir); err != nil {
		return errResult("failed to flatten package directory: %s", err.Error())
	}

	entries, err := os.ReadDir(outputDir)
	if err != nil {
		return errResult("failed to list output directory: %s", err.Error())
	}
	files := make([]string, 0, len(entries))
	for _, e := range entries {
		files = append(files, e.Name())
	}

	res := Result{
		"success":      true,
		"package_name": packageName,
		"version":      version,
		"output_dir":   outputDir,
		"files":        files,
		"stdout":       packRes.Stdout,
	}
	if availableVersions != "" {
		res["available_versions"] = availableVersions
	}
	return res
}

// findTarball locates the .tgz file npm pack leaves in dir. Returns an
// empty path when none exists.
func findTarball(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".tgz") {
			return filepath.Join(dir, e.Name()), nil
		}
	}
	return "", nil
}
