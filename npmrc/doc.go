// SPDX-FileCopyrightText: Copyright 2026 Packlane Authors
// SPDX-License-Identifier: Apache-2.0

/*
Package npmrc writes registry-scoped npm configuration files pointing at a
Google Artifact Registry repository.

Writes are scoped mutations: Write captures whatever was at the target path
and returns a RestoreFunc that unconditionally puts the prior state back
(or deletes the file if there was none). Callers defer the restore so the
config never outlives the invocation that wrote it, regardless of which
workflow triggered it or how it exited.
*/
package npmrc
