// SPDX-FileCopyrightText: Copyright 2026 Packlane Authors
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/packlane/packlane/cliexec"
)

func readManifestFile(t *testing.T, dir string) map[string]any {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, manifestFile))
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	return m
}

// publishOK answers provisioning and lets npm publish succeed.
func publishOK(cmd cliexec.Command) (*cliexec.Result, error) {
	if isGcloud(cmd) {
		return authOK(cmd), nil
	}
	return &cliexec.Result{Stdout: "+ published\n"}, nil
}

func TestNpmPush_SuccessPromotesManifest(t *testing.T) {
	t.Parallel()

	sourceDir := writePackageDir(t, "@observability/app", "1.0.0")
	wantVersion := fmt.Sprintf("0.1.%d", testClock.Unix())

	runner := &fakeRunner{handler: publishOK}
	res := NewPackagePublisher(newTestToolbox(runner)).Invoke(context.Background(), map[string]any{
		"source_dir":      sourceDir,
		"repository_path": "us-central1-npm.pkg.dev/proj/repo",
	})

	require.Equal(t, true, res["success"], "unexpected result: %v", res)
	assert.Equal(t, "@observability/app", res["package_name"])
	assert.Equal(t, wantVersion, res["version"])
	assert.Equal(t, "1.0.0", res["old_version"])
	assert.Equal(t, "+ published\n", res["output"])

	// The source manifest reflects the published state.
	manifest := readManifestFile(t, sourceDir)
	assert.Equal(t, wantVersion, manifest["version"])

	// The publish ran from the working copy, not the source directory.
	var publishCall *cliexec.Command
	for i := range runner.calls {
		if runner.calls[i].Name == "npm" {
			publishCall = &runner.calls[i]
		}
	}
	require.NotNil(t, publishCall)
	assert.NotEqual(t, sourceDir, publishCall.Dir)
	assert.Equal(t, []string{"publish", "--registry", "https://us-central1-npm.pkg.dev/proj/repo/"}, publishCall.Args)
	assert.Contains(t, publishCall.Env, "NPM_TOKEN=T")

	// No registry config leaks into the source directory.
	_, err := os.Stat(filepath.Join(sourceDir, ".npmrc"))
	assert.True(t, os.IsNotExist(err))
}

func TestNpmPush_FailureLeavesSourceUntouched(t *testing.T) {
	t.Parallel()

	sourceDir := writePackageDir(t, "@observability/app", "1.0.0")
	original, err := os.ReadFile(filepath.Join(sourceDir, manifestFile))
	require.NoError(t, err)

	runner := &fakeRunner{handler: func(cmd cliexec.Command) (*cliexec.Result, error) {
		if isGcloud(cmd) {
			return authOK(cmd), nil
		}
		return &cliexec.Result{Stderr: "E403 forbidden", ExitCode: 1}, nil
	}}

	res := NewPackagePublisher(newTestToolbox(runner)).Invoke(context.Background(), map[string]any{
		"source_dir":      sourceDir,
		"repository_path": "us-central1-npm.pkg.dev/proj/repo",
	})

	assert.Equal(t, false, res["success"])
	assert.Contains(t, res["error"], "Failed to publish package: E403 forbidden")

	after, err := os.ReadFile(filepath.Join(sourceDir, manifestFile))
	require.NoError(t, err)
	assert.Equal(t, original, after, "a failed publish must not mutate the source manifest")
	_, err = os.Stat(filepath.Join(sourceDir, ".npmrc"))
	assert.True(t, os.IsNotExist(err))
}

func TestNpmPush_AutoVersionCollidesWithinSameSecond(t *testing.T) {
	t.Parallel()

	tb := newTestToolbox(&fakeRunner{handler: publishOK})

	first := NewPackagePublisher(tb).Invoke(context.Background(), map[string]any{
		"source_dir":      writePackageDir(t, "@observability/app", "1.0.0"),
		"repository_path": "us-central1-npm.pkg.dev/proj/repo",
	})
	second := NewPackagePublisher(tb).Invoke(context.Background(), map[string]any{
		"source_dir":      writePackageDir(t, "@observability/app", "2.0.0"),
		"repository_path": "us-central1-npm.pkg.dev/proj/repo",
	})

	require.Equal(t, true, first["success"])
	require.Equal(t, true, second["success"])
	// Two publishes in the same wall-clock second get the same version.
	assert.Equal(t, first["version"], second["version"])
}

func TestNpmPush_AutoVersionDisabled(t *testing.T) {
	t.Parallel()

	sourceDir := writePackageDir(t, "@observability/app", "3.2.1")
	runner := &fakeRunner{handler: publishOK}

	res := NewPackagePublisher(newTestToolbox(runner)).Invoke(context.Background(), map[string]any{
		"source_dir":      sourceDir,
		"repository_path": "us-central1-npm.pkg.dev/proj/repo",
		"auto_version":    false,
	})

	require.Equal(t, true, res["success"])
	assert.Equal(t, "3.2.1", res["version"])
}

func TestNpmPush_NameOverride(t *testing.T) {
	t.Parallel()

	sourceDir := writePackageDir(t, "@observability/app", "1.0.0")
	runner := &fakeRunner{handler: publishOK}

	res := NewPackagePublisher(newTestToolbox(runner)).Invoke(context.Background(), map[string]any{
		"source_dir":      sourceDir,
		"repository_path": "us-central1-npm.pkg.dev/proj/repo",
		"package_name":    "@observability/renamed",
	})

	require.Equal(t, true, res["success"])
	assert.Equal(t, "@observability/renamed", res["package_name"])

	manifest := readManifestFile(t, sourceDir)
	assert.Equal(t, "@observability/renamed", manifest["name"])
}

func TestNpmPush_DryRunDoesNotPromote(t *testing.T) {
	t.Parallel()

	sourceDir := writePackageDir(t, "@observability/app", "1.0.0")
	runner := &fakeRunner{handler: publishOK}

	res := NewPackagePublisher(newTestToolbox(runner)).Invoke(context.Background(), map[string]any{
		"source_dir":      sourceDir,
		"repository_path": "us-central1-npm.pkg.dev/proj/repo",
		"dry_run":         true,
	})

	require.Equal(t, true, res["success"])
	assert.Equal(t, true, res["dry_run"])

	var publishCall *cliexec.Command
	for i := range runner.calls {
		if runner.calls[i].Name == "npm" {
			publishCall = &runner.calls[i]
		}
	}
	require.NotNil(t, publishCall)
	assert.Contains(t, publishCall.Args, "--dry-run")

	// Nothing was published, so the source manifest keeps its version.
	manifest := readManifestFile(t, sourceDir)
	assert.Equal(t, "1.0.0", manifest["version"])
}

func TestNpmPush_MissingManifest(t *testing.T) {
	t.Parallel()

	sourceDir := t.TempDir()
	runner := &fakeRunner{}

	res := NewPackagePublisher(newTestToolbox(runner)).Invoke(context.Background(), map[string]any{
		"source_dir":      sourceDir,
		"repository_path": "us-central1-npm.pkg.dev/proj/repo",
	})

	assert.Equal(t, false, res["success"])
	assert.Equal(t, "package.json not found in "+sourceDir, res["error"])
	assert.Empty(t, runner.calls)
}

func TestNpmPush_MissingArguments(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{}
	tb := newTestToolbox(runner)

	res := NewPackagePublisher(tb).Invoke(context.Background(), map[string]any{
		"repository_path": "x/y/z",
	})
	assert.Equal(t, "Source directory is required", res["error"])

	res = NewPackagePublisher(tb).Invoke(context.Background(), map[string]any{
		"source_dir": "/tmp/x",
	})
	assert.Equal(t, "GCP Artifact Registry repository path is required", res["error"])

	assert.Empty(t, runner.calls)
}
