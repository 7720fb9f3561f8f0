// SPDX-FileCopyrightText: Copyright 2026 Packlane Authors
// SPDX-License-Identifier: Apache-2.0

package gar

import (
	"fmt"
	"strings"
)

// Path identifies a Google Artifact Registry repository, addressed as
// <region>-<service>.pkg.dev/<project-id>/<repository-name>.
type Path struct {
	// Host is the registry hostname, e.g. "us-central1-npm.pkg.dev".
	Host string

	// Project is the GCP project ID.
	Project string

	// Repository is the repository name within the project.
	Repository string

	raw string
}

// ParsePath parses a repository path. At least three slash-delimited
// segments are required; segments beyond the third are ignored. Parsing
// happens before any subprocess is invoked, so a malformed path never
// reaches an external CLI.
func ParsePath(s string) (*Path, error) {
	parts := strings.Split(s, "/")
	if len(parts) < 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return nil, fmt.Errorf(
			"invalid repository path format. Expected: region-service.pkg.dev/project-id/repository-name, got %q", s)
	}

	return &Path{
		Host:       parts[0],
		Project:    parts[1],
		Repository: parts[2],
		raw:        s,
	}, nil
}

// String returns the path exactly as it was given.
func (p *Path) String() string {
	return p.raw
}

// URL returns the https URL of the repository, as reported in results.
func (p *Path) URL() string {
	return "https://" + p.raw
}

// RegistryURL returns the https URL with a trailing slash, the form npm
// expects for --registry flags and .npmrc entries.
func (p *Path) RegistryURL() string {
	return "https://" + p.raw + "/"
}
