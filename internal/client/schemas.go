package client

import (
	"bytes"
	"embed"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// response schemas, one per capability (schemas/<capability>.json)
//
//go:embed schemas/*.json
var schemaFiles embed.FS

const schemaBaseURL = "https://schemas.eduvision.ai/"

var (
	schemasOnce sync.Once
	schemas     map[Capability]*jsonschema.Schema
	schemasErr  error
)

func loadSchemas() {
	compiler := jsonschema.NewCompiler()
	capabilities := append([]Capability{CapabilityHealth, CapabilityAnalytics, CapabilityConversations}, ProcessingCapabilities...)

	for _, capability := range capabilities {
		content, err := schemaFiles.ReadFile("schemas/" + string(capability) + ".json")
		if err != nil {
			schemasErr = fmt.Errorf("reading %s schema: %w", capability, err)
			return
		}
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(content))
		if err != nil {
			schemasErr = fmt.Errorf("parsing %s schema: %w", capability, err)
			return
		}
		if err := compiler.AddResource(schemaURL(capability), doc); err != nil {
			schemasErr = fmt.Errorf("adding %s schema: %w", capability, err)
			return
		}
	}

	compiled := make(map[Capability]*jsonschema.Schema, len(capabilities))
	for _, capability := range capabilities {
		schema, err := compiler.Compile(schemaURL(capability))
		if err != nil {
			schemasErr = fmt.Errorf("compiling %s schema: %w", capability, err)
			return
		}
		compiled[capability] = schema
	}
	schemas = compiled
}

func schemaURL(capability Capability) string {
	return schemaBaseURL + string(capability) + ".json"
}

// validateResponse checks that body is JSON matching the capability's schema
func validateResponse(capability Capability, body []byte) error {
	schemasOnce.Do(loadSchemas)
	if schemasErr != nil {
		return schemasErr
	}

	instance, err := jsonschema.UnmarshalJSON(bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("response is not valid JSON: %w", err)
	}

	schema, ok := schemas[capability]
	if !ok {
		return nil
	}

	if err := schema.Validate(instance); err != nil {
		return fmt.Errorf("response does not match the %s schema: %w", capability, err)
	}
	return nil
}
