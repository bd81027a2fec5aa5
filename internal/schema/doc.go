// Package schema compiles embedded JSON Schemas and validates YAML or JSON
// documents against them, flattening validator output into path-level issues.
package schema
