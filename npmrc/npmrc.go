// SPDX-FileCopyrightText: Copyright 2026 Packlane Authors
// SPDX-License-Identifier: Apache-2.0

package npmrc

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/packlane/packlane/gar"
)

// FileName is the npm per-project configuration file name.
const FileName = ".npmrc"

// TokenEnvVar is the environment variable npm substitutes into the
// ${NPM_TOKEN} auth line. Callers must export it when invoking npm.
const TokenEnvVar = "NPM_TOKEN"

// RestoreFunc undoes a Write: it restores the prior file content, or
// removes the file if none existed. It is safe to call exactly once and
// must be called on every exit path, success or failure.
type RestoreFunc func() error

// Write creates <dir>/.npmrc configured for the given Artifact Registry
// repository: a scope-to-registry mapping, a per-registry bearer token with
// always-auth, a variable-substituted token line for the generic npm.pkg.dev
// host, and the public npm registry as fallback for everything else.
//
// Any existing file is captured first and the returned RestoreFunc puts it
// back (or deletes the file if there was none), so the mutation of a shared
// directory is always scoped to the invocation that made it.
func Write(dir string, repo *gar.Path, scope, token string) (RestoreFunc, string, error) {
	path := filepath.Join(dir, FileName)

	var original []byte
	hadPrior := false
	if data, err := os.ReadFile(path); err == nil { // #nosec G304 -- path is <dir>/.npmrc by construction
		original = data
		hadPrior = true
	} else if !os.IsNotExist(err) {
		return nil, "", fmt.Errorf("reading existing %s: %w", FileName, err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s:registry=%s\n", scope, repo.RegistryURL())
	fmt.Fprintf(&b, "//%s/:_authToken=%s\n", repo.String(), token)
	fmt.Fprintf(&b, "//%s/:always-auth=true\n", repo.String())
	fmt.Fprintf(&b, "//npm.pkg.dev/:_authToken=${%s}\n", TokenEnvVar)
	b.WriteString("//npm.pkg.dev/:always-auth=true\n")
	b.WriteString("registry=https://registry.npmjs.org/\n")

	// 0600: the file carries a bearer token.
	if err := os.WriteFile(path, []byte(b.String()), 0o600); err != nil {
		return nil, "", fmt.Errorf("writing %s: %w", FileName, err)
	}

	restore := func() error {
		if hadPrior {
			if err := os.WriteFile(path, original, 0o600); err != nil {
				return fmt.Errorf("restoring %s: %w", FileName, err)
			}
			return nil
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing %s: %w", FileName, err)
		}
		return nil
	}

	return restore, path, nil
}
