package scaffold

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrScriptLint is returned when an emitted shell script lacks a supported
// shebang or does not enable errexit.
var ErrScriptLint = errors.New("scaffold: script lint failed")

// interpreters are the accepted shebang lines.
var interpreters = map[string]bool{
	"/bin/bash":         true,
	"/bin/sh":           true,
	"/usr/bin/env bash": true,
	"/usr/bin/env sh":   true,
}

// errexitPattern matches "set -e", "set -eu", "set -euo pipefail" and
// "set -o errexit" at the start of a line.
var errexitPattern = regexp.MustCompile(`(?m)^[ \t]*set[ \t]+(-[a-zA-Z]*e[a-zA-Z]*\b|-o[ \t]+errexit\b)`)

// LintScript checks that a shell script starts with a supported shebang and
// enables errexit. name is used in the error message.
func LintScript(name string, content []byte) error {
	var problems []string

	first, _, _ := bufio.NewReader(bytes.NewReader(content)).ReadLine()
	line := strings.TrimSpace(string(first))
	switch {
	case !strings.HasPrefix(line, "#!"):
		problems = append(problems, "missing shebang line")
	case !interpreters[strings.Join(strings.Fields(strings.TrimPrefix(line, "#!")), " ")]:
		problems = append(problems, fmt.Sprintf("unsupported interpreter %q", line))
	}

	if !errexitPattern.Match(content) {
		problems = append(problems, `missing "set -e"`)
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s: %s", ErrScriptLint, name, strings.Join(problems, "; "))
	}
	return nil
}
