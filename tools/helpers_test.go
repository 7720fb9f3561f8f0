// SPDX-FileCopyrightText: Copyright 2026 Packlane Authors
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/packlane/packlane/cliexec"
	"github.com/packlane/packlane/config"
	"github.com/packlane/packlane/gcloud"
)

// fakeRunner records every command and delegates to a per-test handler.
type fakeRunner struct {
	calls   []cliexec.Command
	handler func(cmd cliexec.Command) (*cliexec.Result, error)
}

func (f *fakeRunner) Run(_ context.Context, cmd cliexec.Command) (*cliexec.Result, error) {
	f.calls = append(f.calls, cmd)
	if f.handler != nil {
		return f.handler(cmd)
	}
	return &cliexec.Result{}, nil
}

// testClock is the fixed wall clock used by workflow tests.
var testClock = time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)

func newTestToolbox(r cliexec.Runner) *Toolbox {
	return &Toolbox{
		Config: config.Default(),
		Runner: r,
		GCloud: gcloud.NewClient(gcloud.WithRunner(r)),
		Now:    func() time.Time { return testClock },
	}
}

// isGcloud reports whether cmd is a gcloud auth/configure call, so handlers
// can answer provisioning generically and match on the domain command.
func isGcloud(cmd cliexec.Command) bool {
	return cmd.Name == "gcloud" && len(cmd.Args) > 0 && cmd.Args[0] == "auth"
}

// authOK answers gcloud provisioning calls with a fixed token.
func authOK(cmd cliexec.Command) *cliexec.Result {
	if cmd.Args[1] == "print-access-token" {
		return &cliexec.Result{Stdout: "T\n"}
	}
	return &cliexec.Result{}
}

// makeTgz writes a real npm-style tarball containing the given files under
// the canonical "package/" top-level directory.
func makeTgz(t *testing.T, path string, files map[string]string) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	gw := gzip.NewWriter(f)
	tw := tar.NewWriter(gw)

	for name, content := range files {
		hdr := &tar.Header{
			Name:     "package/" + name,
			Size:     int64(len(content)),
			Mode:     0o644,
			Typeflag: tar.TypeReg,
		}
		require.NoError(t, tw.WriteHeader(hdr))
		_, err := tw.Write([]byte(content))
		require.NoError(t, err)
	}

	require.NoError(t, tw.Close())
	require.NoError(t, gw.Close())
	require.NoError(t, f.Close())
}

// writePackageDir creates a directory holding an npm package manifest.
func writePackageDir(t *testing.T, name, version string) string {
	t.Helper()

	dir := t.TempDir()
	manifest := `{
  "name": "` + name + `",
  "version": "` + version + `"
}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, manifestFile), []byte(manifest), 0o600))
	return dir
}
