// SPDX-FileCopyrightText: Copyright 2026 Packlane Authors
// SPDX-License-Identifier: Apache-2.0

package cliexec

import (
	"context"
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func skipWithoutShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("tests use sh")
	}
}

func TestOSRunner_CapturesStdout(t *testing.T) {
	t.Parallel()
	skipWithoutShell(t)

	runner := &OSRunner{}
	res, err := runner.Run(context.Background(), Command{
		Name: "sh",
		Args: []string{"-c", "printf hello; printf world >&2"},
	})
	require.NoError(t, err)

	assert.Equal(t, "hello", res.Stdout)
	assert.Equal(t, "world", res.Stderr)
	assert.Equal(t, 0, res.ExitCode)
}

func TestOSRunner_NonZeroExitIsNotAnError(t *testing.T) {
	t.Parallel()
	skipWithoutShell(t)

	runner := &OSRunner{}
	res, err := runner.Run(context.Background(), Command{
		Name: "sh",
		Args: []string{"-c", "printf nope >&2; exit 3"},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, res.ExitCode)
	assert.Equal(t, "nope", res.Stderr)
}

func TestOSRunner_Timeout(t *testing.T) {
	t.Parallel()
	skipWithoutShell(t)

	runner := &OSRunner{}
	_, err := runner.Run(context.Background(), Command{
		Name:    "sh",
		Args:    []string{"-c", "sleep 5"},
		Timeout: 100 * time.Millisecond,
	})
	require.Error(t, err)

	assert.True(t, IsTimeout(err))

	var te *TimeoutError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, 100*time.Millisecond, te.Timeout)
}

func TestOSRunner_MissingBinary(t *testing.T) {
	t.Parallel()

	runner := &OSRunner{}
	_, err := runner.Run(context.Background(), Command{Name: "definitely-not-a-real-binary-12345"})
	require.Error(t, err)
	assert.False(t, IsTimeout(err))
}

func TestTimeoutError_Message(t *testing.T) {
	t.Parallel()

	err := &TimeoutError{Command: "npm", Timeout: 300 * time.Second}
	assert.Equal(t, "command npm timed out after 300 seconds", err.Error())
}

func TestOSRunner_WorkingDirAndEnv(t *testing.T) {
	t.Parallel()
	skipWithoutShell(t)

	dir := t.TempDir()
	runner := &OSRunner{}
	res, err := runner.Run(context.Background(), Command{
		Name: "sh",
		Args: []string{"-c", "pwd; printf '%s' \"$PACKLANE_TEST_VAR\""},
		Dir:  dir,
		Env:  []string{"PACKLANE_TEST_VAR=injected"},
	})
	require.NoError(t, err)

	assert.Contains(t, res.Stdout, "injected")
}
