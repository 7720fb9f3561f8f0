// SPDX-FileCopyrightText: Copyright 2026 Packlane Authors
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/packlane/packlane/cliexec"
	"github.com/packlane/packlane/gar"
	"github.com/packlane/packlane/logger"
	"github.com/packlane/packlane/npmrc"
	"github.com/packlane/packlane/validation/names"
)

// manifestFile is the npm package descriptor.
const manifestFile = "package.json"

// PackagePublisher publishes an npm package directory to Artifact Registry.
//
// The source directory is never mutated directly: the tree is copied into a
// temporary working directory, the manifest mutations (version bump, name
// override) and registry config happen there, and the mutated manifest is
// promoted back to the source only after a successful publish. A failed
// publish leaves the source exactly as it was.
type PackagePublisher struct {
	tb *Toolbox
}

// NewPackagePublisher returns the npm_push workflow.
func NewPackagePublisher(tb *Toolbox) *PackagePublisher {
	return &PackagePublisher{tb: tb}
}

// Definition implements Invoker.
func (*PackagePublisher) Definition() mcp.Tool {
	return mcp.NewTool("npm_push",
		mcp.WithDescription("Publish an NPM package directory to Google Artifact Registry, optionally auto-versioning the manifest."),
		mcp.WithString("source_dir", mcp.Description("Directory containing the package to publish.")),
		mcp.WithString("repository_path", mcp.Description("Artifact Registry repository path, e.g. us-central1-npm.pkg.dev/project-id/repo-name.")),
		mcp.WithString("package_name", mcp.Description("Override for the package name in package.json.")),
		mcp.WithBoolean("auto_version", mcp.Description("Auto-generate a timestamped version (default: true).")),
		mcp.WithBoolean("dry_run", mcp.Description("Pass --dry-run to npm publish (default: false).")),
		mcp.WithNumber("timeout", mcp.Description("Per-command timeout in seconds (default: 300).")),
	)
}

// Invoke implements Invoker.
func (p *PackagePublisher) Invoke(ctx context.Context, args map[string]any) Result {
	if err := validateArgs(args, "data/npm_push.schema.json"); err != nil {
		return errResult("%s", err.Error())
	}

	sourceDir := stringArg(args, "source_dir", "")
	if sourceDir == "" {
		return errResult("Source directory is required")
	}
	repositoryPath := stringArg(args, "repository_path", "")
	if repositoryPath == "" {
		return errResult("GCP Artifact Registry repository path is required")
	}
	nameOverride := stringArg(args, "package_name", "")
	autoVersion := boolArg(args, "auto_version", true)
	dryRun := boolArg(args, "dry_run", false)
	timeout := p.tb.timeout(args)

	repo, err := gar.ParsePath(repositoryPath)
	if err != nil {
		return errResult("%s", err.Error())
	}
	if nameOverride != "" {
		if err := names.ValidatePackageName(nameOverride); err != nil {
			return errResult("invalid package name: %s", err.Error())
		}
	}

	sourceManifest := filepath.Join(sourceDir, manifestFile)
	if _, err := os.Stat(sourceManifest); err != nil {
		return errResult("package.json not found in %s", sourceDir)
	}

	workDir, err := os.MkdirTemp("", "packlane-push-*")
	if err != nil {
		return errResult("failed to create working directory: %s", err.Error())
	}
	defer func() { _ = os.RemoveAll(workDir) }()

	if err := copyTree(sourceDir, workDir); err != nil {
		return errResult("failed to stage working copy: %s", err.Error())
	}
	workManifest := filepath.Join(workDir, manifestFile)

	token, err := p.tb.GCloud.Provision(ctx, p.tb.Config.NpmHost, timeout)
	if err != nil {
		return execFailure(err, timeout)
	}

	manifest, err := readManifest(workManifest)
	if err != nil {
		return errResult("failed to read package.json: %s", err.Error())
	}

	oldVersion, _ := manifest["version"].(string)
	if autoVersion {
		// Unix-second granularity: two publishes within the same second
		// get the same version. Accepted collision.
		newVersion := fmt.Sprintf("0.1.%d", p.tb.Now().Unix())
		manifest["version"] = newVersion
		logger.Infow("auto-versioned package", "old_version", oldVersion, "new_version", newVersion)
	}
	if nameOverride != "" {
		manifest["name"] = nameOverride
	}
	if err := writeManifest(workManifest, manifest); err != nil {
		return errResult("failed to update package.json: %s", err.Error())
	}

	finalName, _ := manifest["name"].(string)
	scope := names.Scope(finalName)
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

	publishArgs := []string{"publish", "--registry", repo.RegistryURL()}
	if dryRun {
		publishArgs = append(publishArgs, "--dry-run")
	}
	logger.Infow("publishing package", "name", finalName, "registry", repo.String(), "dry_run", dryRun)
	res, err := p.tb.Runner.Run(ctx, cliexec.Command{
		Name:    p.tb.Config.NpmBinary,
		Args:    publishArgs,
		Dir:     workDir,
		Env:     []string{npmrc.TokenEnvVar + "=" + token},
		Timeout: timeout,
	})
	if err != nil {
		return execFailure(err, timeout)
	}
	if res.ExitCode != 0 {
		return errResult("Failed to publish package: %s", res.Stderr)
	}

	// A dry run publishes nothing, so the manifest mutations stay in the
	// discarded working copy.
	if !dryRun {
		if err := promoteManifest(workManifest, sourceManifest); err != nil {
			return errResult("published, but failed to update source package.json: %s", err.Error())
		}
	}

	finalVersion, _ := manifest["version"].(string)
	return Result{
		"success":      true,
		"package_name": finalName,
		"version":      finalVersion,
		"old_version":  oldVersion,
		"repository":   repo.String(),
		"dry_run":      dryRun,
		"output":       res.Stdout,
	}
}

func readManifest(path string) (map[string]any, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- manifest path derived from caller input
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func writeManifest(path string, m map[string]any) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o600)
}

// promoteManifest copies the published manifest over the source one so the
// source reflects exactly what was published.
func promoteManifest(from, to string) error {
	data, err := os.ReadFile(from) // #nosec G304 -- both paths constructed above
	if err != nil {
		return err
	}
	return os.WriteFile(to, data, 0o600)
}

// copyTree copies a directory tree of regular files. Symlinks and special
// files are rejected so a publish never reaches outside the source tree.
func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		target := filepath.Join(dst, rel)

		switch {
		case d.IsDir():
			return os.MkdirAll(target, 0o750)
		case d.Type().IsRegular():
			return copyFile(p, target, d)
		default:
			return fmt.Errorf("unsupported file type in source tree: %s", p)
		}
	})
}

func copyFile(src, dst string, d fs.DirEntry) error {
	info, err := d.Info()
	if err != nil {
		return err
	}
	in, err := os.Open(src) // #nosec G304 -- path produced by WalkDir over the source tree
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm()) // #nosec G304
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
