// SPDX-FileCopyrightText: Copyright 2026 Packlane Authors
// SPDX-License-Identifier: Apache-2.0

/*
Package cliexec provides an interface-based boundary for running external
CLI tools (gcloud, npm) as subprocesses.

Every workflow in this repository is a linear sequence of subprocess calls;
this package is the single place where those calls happen. The Runner
interface enables dependency injection and testing isolation: production
code uses OSRunner, tests substitute the generated mock from the mocks
sub-package or a hand-rolled fake.

# Semantics

A non-zero exit code is a normal outcome, reported through Result.ExitCode
alongside the captured stderr; callers decide how to surface it. Run returns
a Go error only when the command could not be started or when it exceeded
its per-call timeout, the latter as a distinguished *TimeoutError so callers
can report the configured timeout value:

	res, err := runner.Run(ctx, cliexec.Command{
		Name:    "gcloud",
		Args:    []string{"auth", "print-access-token"},
		Timeout: 5 * time.Minute,
	})
	if cliexec.IsTimeout(err) {
		// report the timeout, not a generic failure
	}

There is no cancellation path once a subprocess has started beyond the
timeout, and no retry.
*/
package cliexec
