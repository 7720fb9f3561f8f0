// SPDX-FileCopyrightText: Copyright 2026 Packlane Authors
// SPDX-License-Identifier: Apache-2.0

package cliexec

//go:generate mockgen -source=cliexec.go -destination=mocks/mock_runner.go -package=mocks Runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"
)

// Command describes a single external CLI invocation.
type Command struct {
	// Name is the binary to run (e.g. "gcloud", "npm").
	Name string

	// Args are the command arguments, passed verbatim (no shell).
	Args []string

	// Dir is the working directory. Empty means the caller's directory.
	Dir string

	// Env holds extra KEY=VALUE entries appended to the inherited environment.
	Env []string

	// Timeout bounds the invocation. Zero means no timeout.
	Timeout time.Duration
}

// Result holds the captured output of a completed invocation.
// A non-zero ExitCode is not a Go error; callers inspect it and
// surface Stderr themselves.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner executes external CLI commands.
type Runner interface {
	// Run executes the command and returns its captured output.
	// It returns an error only when the command could not be started,
	// or when it exceeded its timeout (a *TimeoutError).
	Run(ctx context.Context, cmd Command) (*Result, error)
}

// TimeoutError reports that a command ran past its configured timeout.
type TimeoutError struct {
	Command string
	Timeout time.Duration
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("command %s timed out after %d seconds", e.Command, int(e.Timeout.Seconds()))
}

// IsTimeout reports whether err (or anything it wraps) is a *TimeoutError.
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}

// Compile-time interface check.
var _ Runner = (*OSRunner)(nil)

// OSRunner implements Runner using os/exec.
type OSRunner struct{}

// Run executes the command, capturing stdout and stderr separately.
func (*OSRunner) Run(ctx context.Context, c Command) (*Result, error) {
	runCtx := ctx
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, c.Name, c.Args...) // #nosec G204 -- binary names come from configuration, not request payloads
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := &Result{Stdout: stdout.String(), Stderr: stderr.String()}

	if err != nil {
		// Distinguish a timeout from an ordinary non-zero exit.
		if runCtx.Err() == context.DeadlineExceeded {
			return nil, &TimeoutError{Command: c.Name, Timeout: c.Timeout}
		}

		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}

		return nil, fmt.Errorf("running %s: %w", c.Name, err)
	}

	return res, nil
}
