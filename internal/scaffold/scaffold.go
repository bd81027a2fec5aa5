package scaffold

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"github.com/sdd-labs/sdd-scaffold/internal/branding"
	"github.com/sdd-labs/sdd-scaffold/internal/config"
	"github.com/sdd-labs/sdd-scaffold/internal/library"
	"github.com/sdd-labs/sdd-scaffold/internal/platform"
	"github.com/sdd-labs/sdd-scaffold/internal/render"
)

// ErrWrite is returned when the output tree cannot be written.
var ErrWrite = errors.New("scaffold: write failed")

// Options controls a Scaffolder.
type Options struct {
	// Lenient downgrades unresolved placeholders and script lint failures
	// to warnings, regardless of the project's strict setting.
	Lenient bool

	// Version is the running scaffolder version, checked against component
	// requires constraints. Empty or "dev" skips the check.
	Version string

	Logger *slog.Logger
}

// Scaffolder generates component trees from one library.
type Scaffolder struct {
	lib  *library.Library
	opts Options
	log  *slog.Logger
}

// Plan is the fully rendered output of a run, held in memory.
type Plan struct {
	TargetDir  string
	Library    string
	Strict     bool
	Components []ComponentPlan
	Warnings   []string
}

// ComponentPlan is the rendered output of one component.
type ComponentPlan struct {
	Name        string
	Dir         string   // absolute output directory
	Directories []string // declared directories, relative to Dir
	Files       []PlannedFile
}

// PlannedFile is one rendered file awaiting write.
type PlannedFile struct {
	Path string // slash-separated, relative to the component directory
	Data []byte
	Mode os.FileMode
}

// Result reports what Apply wrote.
type Result struct {
	TargetDir  string            `json:"target_dir"`
	Components []ComponentResult `json:"components"`
	Warnings   []string          `json:"warnings,omitempty"`
}

// ComponentResult lists the files written for one component.
type ComponentResult struct {
	Name  string   `json:"name"`
	Dir   string   `json:"dir"`
	Files []string `json:"files"`
}

// New creates a Scaffolder reading templates from lib.
func New(lib *library.Library, opts Options) *Scaffolder {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Scaffolder{lib: lib, opts: opts, log: log}
}

// Plan resolves the project's components and renders every template. It
// performs no filesystem writes.
func (s *Scaffolder) Plan(cfg *config.Project) (*Plan, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	comps, err := s.lib.Resolve(cfg.Components)
	if err != nil {
		return nil, err
	}

	strict := cfg.Strict && !s.opts.Lenient
	plan := &Plan{
		TargetDir: cfg.TargetDir,
		Library:   s.lib.Name(),
		Strict:    strict,
	}

	project := render.Project{
		Name:        cfg.ProjectName,
		Description: cfg.ProjectDescription,
		Domain:      cfg.PrimaryDomain,
	}

	for _, c := range comps {
		if err := library.CheckCompatible(c, s.opts.Version); err != nil {
			return nil, err
		}

		cp, warnings, err := s.planComponent(c, project, cfg.TargetDir, strict)
		if err != nil {
			return nil, err
		}
		plan.Components = append(plan.Components, *cp)
		plan.Warnings = append(plan.Warnings, warnings...)
	}

	return plan, nil
}

func (s *Scaffolder) planComponent(c *library.Component, project render.Project, targetDir string, strict bool) (*ComponentPlan, []string, error) {
	files, err := s.lib.Templates(c)
	if err != nil {
		return nil, nil, err
	}

	cp := &ComponentPlan{
		Name:        c.Name,
		Dir:         filepath.Join(targetDir, branding.ComponentsDir(), c.Name),
		Directories: c.Directories,
	}
	renderer := render.New(render.ComponentValues(project, c.Name), strict)
	outPrefix := path.Join(branding.ComponentsDir(), c.Name)

	var warnings []string
	for _, f := range files {
		display := path.Join(outPrefix, f.Path)

		data, unresolved, err := renderer.Render(display, f.Data)
		if err != nil {
			return nil, nil, err
		}
		for _, tok := range unresolved {
			warnings = append(warnings, fmt.Sprintf("%s: unresolved placeholder {{%s}} left in place", display, tok))
		}

		if library.IsScript(f.Path) {
			if err := LintScript(display, data); err != nil {
				if strict {
					return nil, nil, err
				}
				warnings = append(warnings, err.Error())
			}
		}

		cp.Files = append(cp.Files, PlannedFile{
			Path: f.Path,
			Data: data,
			Mode: platform.ModeFor(f.Executable),
		})
	}

	s.log.Debug("planned component", "component", c.Name, "skill", c.Skill, "files", len(cp.Files))
	return cp, warnings, nil
}

// Apply writes a plan to disk. Existing files are overwritten; files not in
// the plan are left alone. ctx is checked between components.
func (s *Scaffolder) Apply(ctx context.Context, plan *Plan) (*Result, error) {
	if err := os.MkdirAll(plan.TargetDir, 0755); err != nil {
		return nil, fmt.Errorf("%w: creating target directory %s: %v", ErrWrite, plan.TargetDir, err)
	}

	result := &Result{
		TargetDir: plan.TargetDir,
		Warnings:  plan.Warnings,
	}

	for _, cp := range plan.Components {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("scaffold: stopped before component %q: %w", cp.Name, err)
		}

		cr, err := s.applyComponent(cp)
		if err != nil {
			return result, err
		}
		result.Components = append(result.Components, *cr)
	}

	return result, nil
}

func (s *Scaffolder) applyComponent(cp ComponentPlan) (*ComponentResult, error) {
	if err := os.MkdirAll(cp.Dir, 0755); err != nil {
		return nil, fmt.Errorf("%w: creating %s: %v", ErrWrite, cp.Dir, err)
	}
	for _, d := range cp.Directories {
		dir := filepath.Join(cp.Dir, filepath.FromSlash(d))
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("%w: creating %s: %v", ErrWrite, dir, err)
		}
	}

	cr := &ComponentResult{Name: cp.Name, Dir: cp.Dir}
	for _, f := range cp.Files {
		dest := filepath.Join(cp.Dir, filepath.FromSlash(f.Path))
		if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
			return nil, fmt.Errorf("%w: creating %s: %v", ErrWrite, filepath.Dir(dest), err)
		}
		if err := platform.WriteFile(dest, f.Data, f.Mode); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrWrite, dest, err)
		}
		s.log.Debug("wrote file", "path", dest, "mode", fmt.Sprintf("%o", f.Mode))
		cr.Files = append(cr.Files, f.Path)
	}

	s.log.Info("scaffolded component", "component", cp.Name, "dir", cp.Dir, "files", len(cr.Files))
	return cr, nil
}

// Generate plans and applies cfg in one step.
func (s *Scaffolder) Generate(ctx context.Context, cfg *config.Project) (*Result, error) {
	plan, err := s.Plan(cfg)
	if err != nil {
		return nil, err
	}
	return s.Apply(ctx, plan)
}

// FileCount returns the number of files in the plan.
func (p *Plan) FileCount() int {
	n := 0
	for _, c := range p.Components {
		n += len(c.Files)
	}
	return n
}
