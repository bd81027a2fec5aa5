// Package library discovers scaffoldable components in a template library.
// A library is either the built-in set embedded in the binary or a skills
// directory on disk; each skill directory with a component.yaml (or named
// <component>-scaffolding with a templates/ subdirectory) defines one
// component.
package library
