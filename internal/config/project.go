package config

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/sdd-labs/sdd-scaffold/internal/branding"
	"github.com/sdd-labs/sdd-scaffold/internal/render"
	"github.com/sdd-labs/sdd-scaffold/internal/schema"
	"github.com/spf13/viper"
)

//go:embed schema/project.schema.json
var projectSchemaBytes []byte

var (
	projectSchema     *schema.Schema
	projectSchemaOnce sync.Once
	projectSchemaErr  error
)

var projectNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]*$`)

// Project configuration keys, shared by the JSON file and SDD_* overrides.
const (
	KeyProjectName        = "project_name"
	KeyProjectDescription = "project_description"
	KeyPrimaryDomain      = "primary_domain"
	KeyTargetDir          = "target_dir"
	KeyComponents         = "components"
	KeySkillsDir          = "skills_dir"
	KeyStrict             = "strict"
)

// envKeys are the project keys that may be overridden from the environment.
var envKeys = []string{
	KeyProjectName,
	KeyProjectDescription,
	KeyPrimaryDomain,
	KeyTargetDir,
	KeySkillsDir,
	KeyStrict,
}

// Project is the configuration for one scaffolding run. It is built once by
// Load (or by the init command) and treated as read-only afterwards.
type Project struct {
	ProjectName        string   `json:"project_name" mapstructure:"project_name"`
	ProjectDescription string   `json:"project_description" mapstructure:"project_description"`
	PrimaryDomain      string   `json:"primary_domain" mapstructure:"primary_domain"`
	TargetDir          string   `json:"target_dir" mapstructure:"target_dir"`
	Components         []string `json:"components" mapstructure:"components"`
	SkillsDir          string   `json:"skills_dir,omitempty" mapstructure:"skills_dir"`
	Strict             bool     `json:"strict" mapstructure:"strict"`

	path string
}

// Path returns the absolute path of the file the project was loaded from,
// or "" for a project built in memory.
func (p *Project) Path() string { return p.path }

// WithSkillsDir returns a copy of p that reads templates from dir.
func (p *Project) WithSkillsDir(dir string) *Project {
	cp := *p
	cp.Components = append([]string(nil), p.Components...)
	cp.SkillsDir = dir
	return &cp
}

func getProjectSchema() (*schema.Schema, error) {
	projectSchemaOnce.Do(func() {
		projectSchema, projectSchemaErr = schema.Compile("project.schema.json", projectSchemaBytes)
	})
	return projectSchema, projectSchemaErr
}

// Load reads a JSON project configuration file, applies SDD_* environment
// overrides (after loading a .env file next to it, if present), resolves
// relative paths against the file's directory, and validates the result.
// When neither the file nor the environment sets strict, the user-level
// strict setting applies.
func Load(path string) (*Project, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving config path %s: %w", path, err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, absPath)
		}
		return nil, fmt.Errorf("reading config %s: %w", absPath, err)
	}

	if err := validateDocument(data); err != nil {
		return nil, fmt.Errorf("%s: %w", absPath, err)
	}

	baseDir := filepath.Dir(absPath)
	if err := loadDotenv(baseDir); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigFile(absPath)
	v.SetConfigType("json")
	v.SetEnvPrefix(branding.EnvPrefix())
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("binding env for %s: %w", key, err)
		}
	}
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", ErrInvalidConfig, absPath, err)
	}

	var p Project
	if err := v.Unmarshal(&p); err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %v", ErrInvalidConfig, absPath, err)
	}
	p.path = absPath
	if !v.IsSet(KeyStrict) {
		p.Strict = StrictDefault()
	}
	p.normalize(baseDir)

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// validateDocument checks raw file content against the embedded schema.
func validateDocument(data []byte) error {
	s, err := getProjectSchema()
	if err != nil {
		return err
	}
	result, err := s.ValidateJSON(data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if result.Valid {
		return nil
	}

	errs := &ValidationErrors{}
	for _, issue := range result.Issues {
		field := strings.TrimPrefix(issue.Path, "/")
		if field == "" {
			field = "(root)"
		}
		errs.add(field, issue.Message, nil, ErrInvalidConfig)
	}
	return errs
}

// loadDotenv loads baseDir/.env without overriding variables already set.
func loadDotenv(baseDir string) error {
	envFile := filepath.Join(baseDir, ".env")
	if _, err := os.Stat(envFile); err != nil {
		return nil
	}
	if err := godotenv.Load(envFile); err != nil {
		return fmt.Errorf("loading %s: %w", envFile, err)
	}
	return nil
}

// normalize trims fields, collapses duplicate components (first occurrence
// wins), and anchors relative paths at baseDir.
func (p *Project) normalize(baseDir string) {
	p.ProjectName = strings.TrimSpace(p.ProjectName)
	p.TargetDir = strings.TrimSpace(p.TargetDir)
	p.SkillsDir = strings.TrimSpace(p.SkillsDir)

	seen := make(map[string]bool, len(p.Components))
	components := make([]string, 0, len(p.Components))
	for _, c := range p.Components {
		c = strings.TrimSpace(c)
		if seen[c] {
			continue
		}
		seen[c] = true
		components = append(components, c)
	}
	p.Components = components

	if p.TargetDir != "" && !filepath.IsAbs(p.TargetDir) {
		p.TargetDir = filepath.Join(baseDir, p.TargetDir)
	}
	if p.SkillsDir != "" && !filepath.IsAbs(p.SkillsDir) {
		p.SkillsDir = filepath.Join(baseDir, p.SkillsDir)
	}
}

// ResolvePaths returns a copy of p with relative target_dir and skills_dir
// anchored at baseDir, the way Load anchors them at the file's directory.
func (p *Project) ResolvePaths(baseDir string) *Project {
	cp := *p
	cp.Components = append([]string(nil), p.Components...)
	cp.normalize(baseDir)
	return &cp
}

// Validate checks required fields and value formats. Component names are
// only checked for shape here; whether they exist depends on the template
// library and is checked when the run is planned.
func (p *Project) Validate() error {
	errs := &ValidationErrors{}

	var nameErr *ValidationError
	if errors.As(ValidateProjectName(p.ProjectName), &nameErr) {
		errs.Errors = append(errs.Errors, *nameErr)
	}

	// Substituted values are not rescanned, so they must not carry tokens.
	for _, f := range []struct{ key, value string }{
		{KeyProjectDescription, p.ProjectDescription},
		{KeyPrimaryDomain, p.PrimaryDomain},
	} {
		if tokens := render.Tokens([]byte(f.value)); len(tokens) > 0 {
			errs.add(f.key, "must not contain placeholder tokens", "{{"+strings.Join(tokens, "}}, {{")+"}}", ErrInvalidConfig)
		}
	}

	if len(p.Components) == 0 {
		errs.add(KeyComponents, "at least one component is required", nil, ErrMissingField)
	}
	for i, c := range p.Components {
		if c == "" {
			errs.add(fmt.Sprintf("%s[%d]", KeyComponents, i), "must not be empty", nil, ErrInvalidConfig)
		}
	}

	if p.TargetDir == "" {
		errs.add(KeyTargetDir, "is required", nil, ErrMissingField)
	} else if info, err := os.Stat(p.TargetDir); err == nil && !info.IsDir() {
		errs.add(KeyTargetDir, "exists and is not a directory", p.TargetDir, ErrInvalidConfig)
	}

	if p.SkillsDir != "" {
		if info, err := os.Stat(p.SkillsDir); err != nil || !info.IsDir() {
			errs.add(KeySkillsDir, "is not a readable directory", p.SkillsDir, ErrInvalidConfig)
		}
	}

	return errs.orNil()
}

// ValidateProjectName checks a project_name value. The returned error is a
// *ValidationError wrapping ErrMissingField or ErrInvalidConfig.
func ValidateProjectName(name string) error {
	switch {
	case name == "":
		return &ValidationError{Field: KeyProjectName, Message: "is required", Wrapped: ErrMissingField}
	case !projectNamePattern.MatchString(name):
		return &ValidationError{Field: KeyProjectName, Message: "must match [a-z0-9][a-z0-9._-]*", Value: name, Wrapped: ErrInvalidConfig}
	}
	return nil
}

// Write saves the project as indented JSON at path.
func (p *Project) Write(path string) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	data = append(data, '\n')

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}
	return nil
}
