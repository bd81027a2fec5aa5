//go:build integration

package integration_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// testEnv holds paths to isolated test directories.
type testEnv struct {
	HomeDir    string // SDD_HOME, holds config.yaml
	ProjectDir string // contains the project configuration file
	SkillsDir  string // on-disk template library
}

// setupTestEnv creates isolated temp directories and points SDD_HOME at one
// of them so user settings never leak into the test.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		HomeDir:    t.TempDir(),
		ProjectDir: t.TempDir(),
		SkillsDir:  t.TempDir(),
	}
	t.Setenv("SDD_HOME", env.HomeDir)
	return env
}

// setupLibrary writes a synthetic template library into skillsDir with one
// manifest-driven component (api), one convention component (worker) and a
// skill that only documents patterns (postgresql).
func setupLibrary(t *testing.T, skillsDir string) {
	t.Helper()

	// --- api: component.yaml ---
	api := filepath.Join(skillsDir, "api-scaffolding")
	writeFile(t, filepath.Join(api, "SKILL.md"), `---
name: api-scaffolding
description: HTTP API component
---
# API scaffolding
`)
	writeFile(t, filepath.Join(api, "component.yaml"), `name: api
skill: api-scaffolding
version: "0.3.0"
directories:
  - handlers
  - docs/openapi
`)
	writeFile(t, filepath.Join(api, "templates", "package.json"), `{
  "name": "{{PACKAGE_NAME}}",
  "description": "{{PROJECT_DESCRIPTION}}"
}
`)
	writeFile(t, filepath.Join(api, "templates", "README.md"), "# {{PROJECT_TITLE}} API\n\nDomain: {{PRIMARY_DOMAIN}}\n")
	writeFile(t, filepath.Join(api, "templates", "scripts", "serve.sh"), "#!/usr/bin/env bash\nset -euo pipefail\necho serving {{PROJECT_NAME}}\n")
	writeFile(t, filepath.Join(api, "templates", "node_modules", "left-pad", "index.js"), "ignored")
	writeFile(t, filepath.Join(api, "templates", ".DS_Store"), "ignored")

	// --- worker: convention only ---
	worker := filepath.Join(skillsDir, "worker-scaffolding")
	writeFile(t, filepath.Join(worker, "SKILL.md"), `---
name: worker-scaffolding
description: Background job runner
---
`)
	writeFile(t, filepath.Join(worker, "templates", "jobs", "example.js"), "// {{COMPONENT_NAME}} job for {{PROJECT_NAME}}\n")

	// --- postgresql: no templates, not a component ---
	writeFile(t, filepath.Join(skillsDir, "postgresql", "SKILL.md"), `---
name: postgresql
description: PostgreSQL patterns
---
`)
}

// writeProject writes a project configuration file and returns its path.
func writeProject(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "sdd-project.json")
	writeFile(t, path, content)
	return path
}

// writeFile creates a file at the given path with the given content.
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("creating dir %s: %v", dir, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

// assertFileExists fails the test if the file does not exist.
func assertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected file to exist: %s (error: %v)", path, err)
	}
}

// assertFileNotExists fails the test if the file exists.
func assertFileNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("expected file NOT to exist: %s", path)
	}
}

// assertDirExists fails the test if the directory does not exist.
func assertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Errorf("expected directory to exist: %s (error: %v)", path, err)
		return
	}
	if !info.IsDir() {
		t.Errorf("expected %s to be a directory, but it is a file", path)
	}
}

// assertFileContains fails if the file doesn't exist or doesn't contain substr.
func assertFileContains(t *testing.T, path, substr string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Errorf("reading %s: %v", path, err)
		return
	}
	if !strings.Contains(string(data), substr) {
		t.Errorf("file %s does not contain %q.\nContents:\n%s", path, substr, string(data))
	}
}
