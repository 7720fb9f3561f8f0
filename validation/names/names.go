// SPDX-FileCopyrightText: Copyright 2026 Packlane Authors
// SPDX-License-Identifier: Apache-2.0

// Package names provides validation functions for artifact and npm package names.
package names

import (
	"fmt"
	"regexp"
	"strings"
)

var validNameRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9._\-]*$`)

// ValidatePackageName validates an artifact or npm package name: lowercase
// alphanumeric with dots, underscores and dashes, optionally prefixed with
// an npm scope ("@scope/name"). It also disallows null bytes and whitespace.
func ValidatePackageName(name string) error {
	if name == "" || strings.TrimSpace(name) == "" {
		return fmt.Errorf("package name cannot be empty or consist only of whitespace")
	}

	// Check for null bytes explicitly
	if strings.Contains(name, "\x00") {
		return fmt.Errorf("package name cannot contain null bytes")
	}

	if strings.TrimSpace(name) != name {
		return fmt.Errorf("package name cannot have leading or trailing whitespace: %q", name)
	}

	// Enforce lowercase-only names; registries reject mixed case anyway
	if name != strings.ToLower(name) {
		return fmt.Errorf("package name must be lowercase: %q", name)
	}

	bare := name
	if strings.HasPrefix(name, "@") {
		scope, rest, ok := strings.Cut(name[1:], "/")
		if !ok || scope == "" {
			return fmt.Errorf("scoped package name must look like @scope/name: %q", name)
		}
		if !validNameRegex.MatchString(scope) {
			return fmt.Errorf("invalid npm scope in package name: %q", name)
		}
		bare = rest
	}

	if !validNameRegex.MatchString(bare) {
		return fmt.Errorf(
			"package name can only contain lowercase alphanumeric characters, dots, underscores, and dashes: %q", name)
	}

	return nil
}

// Scope returns the npm scope of a package name ("@scope/name" yields
// "@scope") or the empty string for unscoped names.
func Scope(name string) string {
	if !strings.HasPrefix(name, "@") {
		return ""
	}
	scope, _, ok := strings.Cut(name, "/")
	if !ok {
		return ""
	}
	return scope
}
