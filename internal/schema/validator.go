package schema

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed workflow.schema.yaml
var workflowSchemaYAML []byte

// Validator handles JSON schema validation of workflow documents.
type Validator struct {
	workflowSchema *jsonschema.Schema
}

// NewValidator compiles the embedded workflow schema.
func NewValidator() (*Validator, error) {
	compiled, err := compileSchema(workflowSchemaYAML, "workflow.schema.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile workflow schema: %w", err)
	}
	return &Validator{workflowSchema: compiled}, nil
}

// ValidateWorkflow validates a decoded workflow document against the
// schema. data must be the generic YAML decoding (maps and slices), not
// the typed struct.
func (v *Validator) ValidateWorkflow(data interface{}) error {
	if v.workflowSchema == nil {
		return fmt.Errorf("workflow schema not loaded")
	}
	return v.workflowSchema.Validate(data)
}

// compileSchema compiles a schema from YAML bytes (JSON is a subset).
func compileSchema(raw []byte, url string) (*jsonschema.Schema, error) {
	var schemaData interface{}
	if err := yaml.Unmarshal(raw, &schemaData); err != nil {
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}

	// Convert to JSON for the schema compiler
	jsonData, err := json.Marshal(schemaData)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}

	schema, err := jsonschema.CompileString(url, string(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	return schema, nil
}
