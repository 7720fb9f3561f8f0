// SPDX-FileCopyrightText: Copyright 2026 Packlane Authors
// SPDX-License-Identifier: Apache-2.0

/*
Package archive creates and unpacks .tar.gz archives of directory trees.

Build roots every entry under the base name of the source directory so
archives unpack into a single directory, and computes the sha256 digest of
the compressed bytes as they stream out. Extract enforces the usual
defensive constraints on untrusted archives: no traversal paths, no links,
no special entries, bounded per-file size.
*/
package archive
