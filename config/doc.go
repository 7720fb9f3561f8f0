// SPDX-FileCopyrightText: Copyright 2026 Packlane Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the YAML configuration for the packaging tools,
// overlaying operator overrides on built-in defaults.
package config
