// Package cli defines the Cobra command tree for the sdd-scaffold CLI. Each
// file registers one top-level command with the root command. Commands only
// parse flags, format output and prompt the user; the work happens in the
// config, library and scaffold packages.
package cli
