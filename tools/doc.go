// SPDX-FileCopyrightText: Copyright 2026 Packlane Authors
// SPDX-License-Identifier: Apache-2.0

/*
Package tools implements the four packaging workflows exposed as callable
tools: artifact_push, npm_pull, npm_push, and npm_script_publish.

Each workflow is a self-contained linear pipeline: validate arguments,
provision credentials through the gcloud CLI, perform local filesystem
work, shell out to the external registry or package-manager CLI, and
return a structured result. Workflows share no state; every invocation
owns its temporary directories and releases them on all exit paths.

Failures never propagate out of a workflow as an error. They are converted
at the workflow boundary into a result carrying "success": false and an
"error" message.
*/
package tools
