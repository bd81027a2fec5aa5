package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"go.yaml.in/yaml/v3"
)

// ErrInvalidManifest is returned when a manifest or skill document cannot be
// parsed or fails schema validation.
var ErrInvalidManifest = errors.New("manifest: invalid manifest")

// namePattern matches component identifiers. It mirrors the "name" pattern
// in schema/component.schema.json.
var namePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

// ValidName reports whether name is a usable component identifier.
func ValidName(name string) bool {
	return namePattern.MatchString(name)
}

// Parse unmarshals component.yaml content. It does not run schema
// validation; use Load for the parse-and-validate path.
func Parse(data []byte, path string) (*ComponentManifest, error) {
	var m ComponentManifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", ErrInvalidManifest, path, err)
	}
	return &m, nil
}

// ParseFile reads and parses a component.yaml from disk.
func ParseFile(path string) (*ComponentManifest, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data, path)
}

// Load validates data against the component schema and parses it. Schema
// issues are folded into a single ErrInvalidManifest error.
func Load(data []byte, path string) (*ComponentManifest, error) {
	result, err := Validate(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidManifest, path, err)
	}
	if !result.Valid {
		return nil, fmt.Errorf("%w: %s: %s", ErrInvalidManifest, path, result.Summary())
	}
	return Parse(data, path)
}

// ParseSkillDoc extracts the YAML frontmatter of a SKILL.md document. The
// frontmatter is delimited by "---" lines at the very top of the file.
func ParseSkillDoc(data []byte, path string) (*SkillDoc, error) {
	content := string(bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n")))
	if !strings.HasPrefix(content, "---\n") {
		return nil, fmt.Errorf("%w: %s: missing frontmatter", ErrInvalidManifest, path)
	}
	rest := content[len("---\n"):]
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return nil, fmt.Errorf("%w: %s: unterminated frontmatter", ErrInvalidManifest, path)
	}

	var doc SkillDoc
	if err := yaml.Unmarshal([]byte(rest[:end]), &doc); err != nil {
		return nil, fmt.Errorf("%w: parsing frontmatter in %s: %v", ErrInvalidManifest, path, err)
	}
	if doc.Name == "" {
		return nil, fmt.Errorf("%w: %s: frontmatter missing 'name'", ErrInvalidManifest, path)
	}

	body := rest[end+len("\n---"):]
	doc.Body = strings.TrimLeft(body, "\n")
	return &doc, nil
}

// readFile reads the contents of a file at the given path.
func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}
	return data, nil
}
