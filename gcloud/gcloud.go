// SPDX-FileCopyrightText: Copyright 2026 Packlane Authors
// SPDX-License-Identifier: Apache-2.0

package gcloud

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/packlane/packlane/cliexec"
	"github.com/packlane/packlane/logger"
)

// DefaultBinary is the gcloud CLI binary name.
const DefaultBinary = "gcloud"

// ErrUnauthenticated is returned when the gcloud CLI cannot produce an
// access token or cannot configure registry credentials. No partial
// credential state is left behind: a token obtained before a failed
// configure step is discarded.
var ErrUnauthenticated = errors.New("failed to authenticate with GCP")

// Client wraps the gcloud CLI for authentication and generic artifact uploads.
type Client struct {
	runner cliexec.Runner
	binary string
}

// Option configures a Client.
type Option func(*Client)

// WithRunner sets a custom subprocess runner. Defaults to cliexec.OSRunner.
func WithRunner(r cliexec.Runner) Option {
	return func(c *Client) {
		c.runner = r
	}
}

// WithBinary overrides the gcloud binary name.
func WithBinary(binary string) Option {
	return func(c *Client) {
		c.binary = binary
	}
}

// NewClient creates a gcloud CLI client with the given options.
func NewClient(opts ...Option) *Client {
	c := &Client{
		runner: &cliexec.OSRunner{},
		binary: DefaultBinary,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AccessToken obtains a short-lived access token from the gcloud CLI.
// The token is opaque, carries an externally-managed expiry, and is never
// persisted by this package.
func (c *Client) AccessToken(ctx context.Context, timeout time.Duration) (string, error) {
	res, err := c.runner.Run(ctx, cliexec.Command{
		Name:    c.binary,
		Args:    []string{"auth", "print-access-token"},
		Timeout: timeout,
	})
	if err != nil {
		return "", err
	}
	if res.ExitCode != 0 {
		logger.Debugw("gcloud auth print-access-token failed", "stderr", res.Stderr)
		return "", ErrUnauthenticated
	}

	token := strings.TrimSpace(res.Stdout)
	if token == "" {
		return "", ErrUnauthenticated
	}
	return token, nil
}

// ConfigureDocker configures the docker credential helper for the given
// registry host via the gcloud CLI. This rewrites a global docker
// credential configuration file; the operation is idempotent and safe to
// repeat.
func (c *Client) ConfigureDocker(ctx context.Context, host string, timeout time.Duration) error {
	res, err := c.runner.Run(ctx, cliexec.Command{
		Name:    c.binary,
		Args:    []string{"auth", "configure-docker", host},
		Timeout: timeout,
	})
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		logger.Debugw("gcloud auth configure-docker failed", "host", host, "stderr", res.Stderr)
		return fmt.Errorf("%w: configure-docker failed for %s", ErrUnauthenticated, host)
	}
	return nil
}

// Provision obtains an access token and configures docker credentials for
// the given registry host. If the configure step fails, the token is
// discarded and the whole provisioning fails.
func (c *Client) Provision(ctx context.Context, host string, timeout time.Duration) (string, error) {
	token, err := c.AccessToken(ctx, timeout)
	if err != nil {
		return "", err
	}
	if err := c.ConfigureDocker(ctx, host, timeout); err != nil {
		return "", err
	}
	return token, nil
}

// UploadParams describe a generic artifact upload.
type UploadParams struct {
	Location   string
	Repository string
	Project    string
	Package    string
	Version    string
	Source     string
	Timeout    time.Duration
}

// UploadGeneric uploads a file to a generic Artifact Registry repository.
// On a non-zero exit the captured stderr is surfaced verbatim in the
// returned error, alongside the raw Result for callers that want stdout.
func (c *Client) UploadGeneric(ctx context.Context, p UploadParams) (*cliexec.Result, error) {
	res, err := c.runner.Run(ctx, cliexec.Command{
		Name: c.binary,
		Args: []string{
			"artifacts", "generic", "upload",
			"--location=" + p.Location,
			"--repository=" + p.Repository,
			"--project=" + p.Project,
			"--package=" + p.Package,
			"--version=" + p.Version,
			"--source=" + p.Source,
		},
		Timeout: p.Timeout,
	})
	if err != nil {
		return nil, err
	}
	if res.ExitCode != 0 {
		return res, fmt.Errorf("failed to push artifact: %s", res.Stderr)
	}
	return res, nil
}
