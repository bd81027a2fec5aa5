// Package manifest parses and validates the metadata that turns a skill
// directory into a scaffoldable component: the component.yaml manifest and
// the frontmatter of the skill's SKILL.md document. Manifests are checked
// against an embedded JSON Schema.
package manifest
