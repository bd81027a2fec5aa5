package manifest

import (
	_ "embed"
	"sync"

	"github.com/sdd-labs/sdd-scaffold/internal/schema"
)

//go:embed schema/component.schema.json
var schemaBytes []byte

var (
	compiledSchema *schema.Schema
	compileOnce    sync.Once
	compileErr     error
)

// ValidationResult contains the outcome of a schema validation.
type ValidationResult = schema.Result

// ValidationIssue represents a single validation error from the schema.
type ValidationIssue = schema.Issue

// getSchema compiles the embedded component schema once and returns it.
func getSchema() (*schema.Schema, error) {
	compileOnce.Do(func() {
		compiledSchema, compileErr = schema.Compile("component.schema.json", schemaBytes)
	})
	return compiledSchema, compileErr
}

// Validate validates raw component.yaml bytes against the component schema.
// The error return is for malformed YAML or schema compilation failures.
// Validation issues are returned in the ValidationResult.
func Validate(data []byte) (*ValidationResult, error) {
	s, err := getSchema()
	if err != nil {
		return nil, err
	}
	return s.ValidateYAML(data)
}

// ValidateFile reads a file and validates it against the component schema.
func ValidateFile(path string) (*ValidationResult, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return Validate(data)
}
