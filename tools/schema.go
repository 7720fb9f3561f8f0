// SPDX-FileCopyrightText: Copyright 2026 Packlane Authors
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"embed"
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed data/artifact_push.schema.json data/npm_pull.schema.json data/npm_push.schema.json data/npm_script_publish.schema.json
var embeddedSchemaFS embed.FS

// validateArgs checks an argument map against a named embedded schema file.
// Schemas constrain types and reject unknown keys; presence of required
// fields is checked by each workflow so the exact message is controlled.
func validateArgs(args map[string]any, schemaFile string) error {
	schemaData, err := embeddedSchemaFS.ReadFile(schemaFile)
	if err != nil {
		return fmt.Errorf("failed to read embedded schema %s: %w", schemaFile, err)
	}

	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("failed to serialize arguments: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaData),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return fmt.Errorf("argument validation failed: %w", err)
	}

	if result.Valid() {
		return nil
	}
	for _, desc := range result.Errors() {
		return fmt.Errorf("invalid arguments: %s", desc.String())
	}
	return nil
}
