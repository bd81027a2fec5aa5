package scaffold

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/sdd-labs/sdd-scaffold/internal/config"
	"github.com/sdd-labs/sdd-scaffold/internal/library"
	"github.com/sdd-labs/sdd-scaffold/internal/render"
)

var residualToken = regexp.MustCompile(`\{\{[A-Z][A-Z0-9_]*\}\}`)

func newProject(t *testing.T, components ...string) *config.Project {
	t.Helper()
	return &config.Project{
		ProjectName:        "my-app",
		ProjectDescription: "My application",
		PrimaryDomain:      "Testing",
		TargetDir:          filepath.Join(t.TempDir(), "out"),
		Components:         components,
		Strict:             true,
	}
}

func builtinScaffolder(t *testing.T, opts Options) *Scaffolder {
	t.Helper()
	lib, err := library.Builtin()
	if err != nil {
		t.Fatalf("Builtin() error: %v", err)
	}
	return New(lib, opts)
}

func mapScaffolder(t *testing.T, fsys fstest.MapFS, opts Options) *Scaffolder {
	t.Helper()
	lib, err := library.Load(fsys, "test")
	if err != nil {
		t.Fatalf("library.Load() error: %v", err)
	}
	return New(lib, opts)
}

func TestGenerateDatabase(t *testing.T) {
	cfg := newProject(t, "database")
	s := builtinScaffolder(t, Options{})

	result, err := s.Generate(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}

	dbDir := filepath.Join(cfg.TargetDir, "components", "database")
	if len(result.Components) != 1 || result.Components[0].Dir != dbDir {
		t.Fatalf("unexpected components in result: %+v", result.Components)
	}

	expected := []string{
		"README.md",
		"migrations/001_initial_schema.sql",
		"package.json",
		"scripts/migrate.sh",
		"scripts/reset.sh",
		"scripts/seed.sh",
		"seeds/001_seed_data.sql",
	}
	assertFiles(t, result.Components[0], expected)

	pkg := readGenerated(t, dbDir, "package.json")
	var parsed struct {
		Name    string            `json:"name"`
		Scripts map[string]string `json:"scripts"`
	}
	if err := json.Unmarshal([]byte(pkg), &parsed); err != nil {
		t.Fatalf("package.json is not valid JSON: %v", err)
	}
	if parsed.Name != "my-app-database" {
		t.Errorf("package name = %q, want %q", parsed.Name, "my-app-database")
	}
	for _, script := range []string{"migrate", "seed", "reset"} {
		if _, ok := parsed.Scripts[script]; !ok {
			t.Errorf("package.json missing script %q", script)
		}
	}

	readme := readGenerated(t, dbDir, "README.md")
	assertContains(t, readme, "npm run migrate")
	assertContains(t, readme, "npm run seed")
	assertContains(t, readme, "npm run reset")

	migration := readGenerated(t, dbDir, "migrations/001_initial_schema.sql")
	assertContains(t, migration, "BEGIN;")
	assertContains(t, migration, "COMMIT;")

	seed := readGenerated(t, dbDir, "seeds/001_seed_data.sql")
	assertContains(t, seed, "ON CONFLICT")

	reset := readGenerated(t, dbDir, "scripts/reset.sh")
	assertContains(t, reset, "WARNING")
	assertContains(t, reset, "Are you sure")
}

func TestGenerateAllBuiltinComponents(t *testing.T) {
	cfg := newProject(t, "database", "config")
	s := builtinScaffolder(t, Options{})

	if _, err := s.Generate(context.Background(), cfg); err != nil {
		t.Fatalf("Generate() error: %v", err)
	}

	for _, dir := range []string{
		"components/database/migrations",
		"components/database/seeds",
		"components/database/scripts",
		"components/config/envs",
		"components/config/schemas",
	} {
		assertDirExists(t, filepath.Join(cfg.TargetDir, dir))
	}

	configDir := filepath.Join(cfg.TargetDir, "components", "config")
	assertContains(t, readGenerated(t, configDir, "package.json"), `"my-app-config"`)
	assertContains(t, readGenerated(t, configDir, "envs/default.yaml"), "Testing")
	assertContains(t, readGenerated(t, configDir, "README.md"), "My App")

	var schema map[string]any
	if err := json.Unmarshal([]byte(readGenerated(t, configDir, "schemas/config.schema.json")), &schema); err != nil {
		t.Errorf("config.schema.json is not valid JSON: %v", err)
	}
}

func TestGenerateLeavesNoPlaceholders(t *testing.T) {
	cfg := newProject(t, "database", "config")
	s := builtinScaffolder(t, Options{})

	if _, err := s.Generate(context.Background(), cfg); err != nil {
		t.Fatalf("Generate() error: %v", err)
	}

	err := filepath.WalkDir(cfg.TargetDir, func(p string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		if m := residualToken.Find(data); m != nil {
			t.Errorf("%s still contains %s", p, m)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestGenerateScriptsAreExecutable(t *testing.T) {
	cfg := newProject(t, "database")
	s := builtinScaffolder(t, Options{})

	if _, err := s.Generate(context.Background(), cfg); err != nil {
		t.Fatalf("Generate() error: %v", err)
	}

	scripts := filepath.Join(cfg.TargetDir, "components", "database", "scripts")
	for _, name := range []string{"migrate.sh", "seed.sh", "reset.sh"} {
		p := filepath.Join(scripts, name)
		content := readGenerated(t, scripts, name)
		if !strings.HasPrefix(content, "#!/bin/bash\n") {
			t.Errorf("%s does not start with a bash shebang", name)
		}
		assertContains(t, content, "set -e")

		if runtime.GOOS == "windows" {
			continue
		}
		info, err := os.Stat(p)
		if err != nil {
			t.Fatal(err)
		}
		if perm := info.Mode().Perm(); perm != 0755 {
			t.Errorf("%s permissions = %o, want 755", name, perm)
		}
	}
}

func TestGenerateUnknownComponentWritesNothing(t *testing.T) {
	cfg := newProject(t, "database", "frontend")
	s := builtinScaffolder(t, Options{})

	_, err := s.Generate(context.Background(), cfg)
	if !errors.Is(err, library.ErrUnknownComponent) {
		t.Fatalf("expected ErrUnknownComponent, got %v", err)
	}
	assertContains(t, err.Error(), `"frontend"`)

	if _, err := os.Stat(cfg.TargetDir); !os.IsNotExist(err) {
		t.Errorf("target directory should not exist after a failed run, stat err = %v", err)
	}
}

func TestGenerateOverwritesOnRerun(t *testing.T) {
	cfg := newProject(t, "database")
	s := builtinScaffolder(t, Options{})

	if _, err := s.Generate(context.Background(), cfg); err != nil {
		t.Fatalf("first Generate() error: %v", err)
	}

	dbDir := filepath.Join(cfg.TargetDir, "components", "database")
	pkgPath := filepath.Join(dbDir, "package.json")
	if err := os.WriteFile(pkgPath, []byte("edited by hand"), 0644); err != nil {
		t.Fatal(err)
	}
	extra := filepath.Join(dbDir, "notes.txt")
	if err := os.WriteFile(extra, []byte("keep me"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := s.Generate(context.Background(), cfg); err != nil {
		t.Fatalf("second Generate() error: %v", err)
	}

	assertContains(t, readGenerated(t, dbDir, "package.json"), "my-app-database")
	if got := readGenerated(t, dbDir, "notes.txt"); got != "keep me" {
		t.Errorf("unrelated file changed: %q", got)
	}
}

func TestPlanDoesNotWrite(t *testing.T) {
	cfg := newProject(t, "database", "config")
	s := builtinScaffolder(t, Options{})

	plan, err := s.Plan(cfg)
	if err != nil {
		t.Fatalf("Plan() error: %v", err)
	}
	if len(plan.Components) != 2 {
		t.Fatalf("got %d components, want 2", len(plan.Components))
	}
	if plan.FileCount() == 0 {
		t.Error("plan should contain files")
	}
	if !plan.Strict {
		t.Error("plan should be strict by default")
	}
	if _, err := os.Stat(cfg.TargetDir); !os.IsNotExist(err) {
		t.Errorf("Plan must not create the target directory")
	}
}

func TestPlanInvalidConfig(t *testing.T) {
	cfg := newProject(t, "database")
	cfg.ProjectName = ""
	s := builtinScaffolder(t, Options{})

	_, err := s.Plan(cfg)
	if !errors.Is(err, config.ErrMissingField) {
		t.Fatalf("expected ErrMissingField, got %v", err)
	}
}

func TestPlanRejectsTokensInValues(t *testing.T) {
	cfg := newProject(t, "database")
	cfg.ProjectDescription = "listens on {{API_PORT}}"

	_, err := builtinScaffolder(t, Options{}).Plan(cfg)
	if !errors.Is(err, config.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	if _, statErr := os.Stat(cfg.TargetDir); !os.IsNotExist(statErr) {
		t.Errorf("target dir should not be created, stat error: %v", statErr)
	}
}

func TestStrictUnresolvedPlaceholder(t *testing.T) {
	fsys := fstest.MapFS{
		"api-scaffolding/templates/README.md": {Data: []byte("# {{PROJECT_NAME}} on {{API_PORT}}\n")},
	}
	cfg := newProject(t, "api")

	_, err := mapScaffolder(t, fsys, Options{}).Plan(cfg)
	if !errors.Is(err, render.ErrUnresolvedPlaceholder) {
		t.Fatalf("expected ErrUnresolvedPlaceholder, got %v", err)
	}
	assertContains(t, err.Error(), "{{API_PORT}}")
	assertContains(t, err.Error(), "components/api/README.md")
}

func TestLenientUnresolvedPlaceholder(t *testing.T) {
	fsys := fstest.MapFS{
		"api-scaffolding/templates/README.md": {Data: []byte("# {{PROJECT_NAME}} on {{API_PORT}}\n")},
	}
	cfg := newProject(t, "api")

	result, err := mapScaffolder(t, fsys, Options{Lenient: true}).Generate(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if len(result.Warnings) != 1 {
		t.Fatalf("got warnings %v, want 1", result.Warnings)
	}
	assertContains(t, result.Warnings[0], "{{API_PORT}}")

	readme := readGenerated(t, filepath.Join(cfg.TargetDir, "components", "api"), "README.md")
	if readme != "# my-app on {{API_PORT}}\n" {
		t.Errorf("README.md = %q", readme)
	}
}

func TestProjectStrictFalseIsLenient(t *testing.T) {
	fsys := fstest.MapFS{
		"api-scaffolding/templates/README.md": {Data: []byte("{{UNKNOWN}}")},
	}
	cfg := newProject(t, "api")
	cfg.Strict = false

	plan, err := mapScaffolder(t, fsys, Options{}).Plan(cfg)
	if err != nil {
		t.Fatalf("Plan() error: %v", err)
	}
	if plan.Strict || len(plan.Warnings) != 1 {
		t.Errorf("expected a lenient plan with one warning, got strict=%v warnings=%v", plan.Strict, plan.Warnings)
	}
}

func TestScriptLintStrictAndLenient(t *testing.T) {
	fsys := fstest.MapFS{
		"jobs-scaffolding/templates/scripts/run.sh": {Data: []byte("echo running {{PROJECT_NAME}}\n")},
	}

	t.Run("strict", func(t *testing.T) {
		_, err := mapScaffolder(t, fsys, Options{}).Plan(newProject(t, "jobs"))
		if !errors.Is(err, ErrScriptLint) {
			t.Fatalf("expected ErrScriptLint, got %v", err)
		}
	})

	t.Run("lenient", func(t *testing.T) {
		plan, err := mapScaffolder(t, fsys, Options{Lenient: true}).Plan(newProject(t, "jobs"))
		if err != nil {
			t.Fatalf("Plan() error: %v", err)
		}
		if len(plan.Warnings) != 1 {
			t.Fatalf("got warnings %v, want 1", plan.Warnings)
		}
		assertContains(t, plan.Warnings[0], "missing shebang")
	})

	t.Run("extensionless script", func(t *testing.T) {
		fsys := fstest.MapFS{
			"tool-scaffolding/templates/scripts/migrate": {Data: []byte("echo no shebang\n")},
		}
		_, err := mapScaffolder(t, fsys, Options{}).Plan(newProject(t, "tool"))
		if !errors.Is(err, ErrScriptLint) {
			t.Fatalf("expected ErrScriptLint for scripts/migrate, got %v", err)
		}
		assertContains(t, err.Error(), "components/tool/scripts/migrate")
	})
}

func TestIncompatibleComponent(t *testing.T) {
	fsys := fstest.MapFS{
		"cache-scaffolding/component.yaml":      {Data: []byte("name: cache\nversion: \"1.0.0\"\nrequires: \">= 9.0.0\"\n")},
		"cache-scaffolding/templates/README.md": {Data: []byte("{{PROJECT_NAME}}")},
	}

	_, err := mapScaffolder(t, fsys, Options{Version: "1.2.0"}).Plan(newProject(t, "cache"))
	if !errors.Is(err, library.ErrIncompatibleComponent) {
		t.Fatalf("expected ErrIncompatibleComponent, got %v", err)
	}

	if _, err := mapScaffolder(t, fsys, Options{Version: "dev"}).Plan(newProject(t, "cache")); err != nil {
		t.Errorf("dev builds should skip the requires check, got %v", err)
	}
}

func TestApplyCancelled(t *testing.T) {
	cfg := newProject(t, "database")
	s := builtinScaffolder(t, Options{})

	plan, err := s.Plan(cfg)
	if err != nil {
		t.Fatalf("Plan() error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := s.Apply(ctx, plan)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(result.Components) != 0 {
		t.Errorf("no component should be written after cancellation")
	}
}

func TestApplyWriteError(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "components")
	if err := os.WriteFile(blocker, []byte("not a directory"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg := newProject(t, "database")
	cfg.TargetDir = dir

	_, err := builtinScaffolder(t, Options{}).Generate(context.Background(), cfg)
	if !errors.Is(err, ErrWrite) {
		t.Fatalf("expected ErrWrite, got %v", err)
	}
}

// --- helpers ---

func readGenerated(t *testing.T, dir, filename string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(filename)))
	if err != nil {
		t.Fatalf("reading %s: %v", filename, err)
	}
	return string(data)
}

func assertFiles(t *testing.T, cr ComponentResult, expected []string) {
	t.Helper()
	if len(cr.Files) != len(expected) {
		t.Errorf("got %d files %v, want %d files %v", len(cr.Files), cr.Files, len(expected), expected)
		return
	}
	for i, f := range expected {
		if cr.Files[i] != f {
			t.Errorf("file[%d] = %q, want %q", i, cr.Files[i], f)
		}
	}
}

func assertContains(t *testing.T, content, substr string) {
	t.Helper()
	if !strings.Contains(content, substr) {
		t.Errorf("content does not contain %q\n--- content ---\n%s", substr, content)
	}
}

func assertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Errorf("expected directory %s: %v", path, err)
		return
	}
	if !info.IsDir() {
		t.Errorf("%s is not a directory", path)
	}
}
