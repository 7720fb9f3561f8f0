// SPDX-FileCopyrightText: Copyright 2026 Packlane Authors
// SPDX-License-Identifier: Apache-2.0

/*
Package gcloud wraps the external gcloud CLI: obtaining short-lived access
tokens, configuring docker credential helpers for Artifact Registry hosts,
and uploading files to generic repositories.

The CLI is an external collaborator; this package shells out through
cliexec and never speaks to Google APIs directly. Authentication failures
surface as ErrUnauthenticated with no partial credential state.
*/
package gcloud
