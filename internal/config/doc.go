// Package config loads the project configuration file that drives a
// scaffolding run and the user-level settings stored at ~/.sdd/config.yaml.
// Project files are JSON, validated against an embedded schema, and accept
// SDD_* environment overrides.
package config
