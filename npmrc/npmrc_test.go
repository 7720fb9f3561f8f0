// SPDX-FileCopyrightText: Copyright 2026 Packlane Authors
// SPDX-License-Identifier: Apache-2.0

package npmrc

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/packlane/packlane/gar"
)

func testRepo(t *testing.T) *gar.Path {
	t.Helper()
	repo, err := gar.ParsePath("us-central1-npm.pkg.dev/proj/repo")
	require.NoError(t, err)
	return repo
}

func TestWrite_Content(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	restore, path, err := Write(dir, testRepo(t), "@observability", "sekret")
	require.NoError(t, err)
	defer func() { require.NoError(t, restore()) }()

	assert.Equal(t, filepath.Join(dir, FileName), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)

	assert.Contains(t, content, "@observability:registry=https://us-central1-npm.pkg.dev/proj/repo/\n")
	assert.Contains(t, content, "//us-central1-npm.pkg.dev/proj/repo/:_authToken=sekret\n")
	assert.Contains(t, content, "//us-central1-npm.pkg.dev/proj/repo/:always-auth=true\n")
	assert.Contains(t, content, "//npm.pkg.dev/:_authToken=${NPM_TOKEN}\n")
	assert.Contains(t, content, "//npm.pkg.dev/:always-auth=true\n")
	assert.Contains(t, content, "registry=https://registry.npmjs.org/\n")
}

func TestWrite_RestorePriorContent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	prior := "registry=https://corp.example.com/\n"
	require.NoError(t, os.WriteFile(path, []byte(prior), 0o600))

	restore, _, err := Write(dir, testRepo(t), "@observability", "sekret")
	require.NoError(t, err)

	overwritten, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotEqual(t, prior, string(overwritten))

	require.NoError(t, restore())

	restored, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, prior, string(restored))
}

func TestWrite_RestoreRemovesFreshFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	restore, path, err := Write(dir, testRepo(t), "@observability", "sekret")
	require.NoError(t, err)

	require.NoError(t, restore())

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "fresh .npmrc should be removed on restore")
}

func TestWrite_MissingDir(t *testing.T) {
	t.Parallel()

	_, _, err := Write(filepath.Join(t.TempDir(), "nope"), testRepo(t), "@observability", "sekret")
	assert.Error(t, err)
}
