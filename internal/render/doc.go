// Package render substitutes {{TOKEN}} placeholders in template files with
// project values and detects tokens left unresolved after substitution.
package render
