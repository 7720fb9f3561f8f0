// SPDX-FileCopyrightText: Copyright 2026 Packlane Authors
// SPDX-License-Identifier: Apache-2.0

/*
Package gar models Google Artifact Registry repository paths.

A repository path has the form

	<region>-<service>.pkg.dev/<project-id>/<repository-name>

and is parsed positionally: segment 0 is the registry host, segment 1 the
project ID, segment 2 the repository name. Fewer than three segments is a
validation error; additional segments are ignored.
*/
package gar
