package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
	"github.com/sdd-labs/sdd-scaffold/internal/branding"
	"github.com/sdd-labs/sdd-scaffold/internal/config"
	"github.com/sdd-labs/sdd-scaffold/internal/library"
	"github.com/spf13/cobra"
)

// errInitCancelled is returned when the user aborts the init form.
var errInitCancelled = errors.New("init cancelled")

var (
	initOutput         string
	initName           string
	initDescription    string
	initDomain         string
	initTargetDir      string
	initComponents     string
	initPreset         string
	initSkillsDir      string
	initNonInteractive bool
	initForce          bool
)

func init() {
	initCmd.Flags().StringVarP(&initOutput, "output", "o", "sdd-project.json", "Configuration file to write")
	initCmd.Flags().StringVar(&initName, "name", "", "Project name")
	initCmd.Flags().StringVar(&initDescription, "description", "", "Project description")
	initCmd.Flags().StringVar(&initDomain, "domain", "", "Primary business domain")
	initCmd.Flags().StringVar(&initTargetDir, "target-dir", ".", "Directory that receives components/")
	initCmd.Flags().StringVar(&initComponents, "components", "", "Comma-separated list of components")
	initCmd.Flags().StringVar(&initPreset, "preset", "", `Project type preset: "Backend", "Backend with Database" or "Full Stack"`)
	initCmd.Flags().StringVar(&initSkillsDir, "skills-dir", "", "Template library directory (default: builtin)")
	initCmd.Flags().BoolVar(&initNonInteractive, "non-interactive", false, "Never prompt; take every value from flags")
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing configuration file")
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a project configuration file",
	Long: `Write a project configuration file for the scaffold command.

When stdin is a terminal, an interactive form asks for the project details and
components. Otherwise, or with --non-interactive, values come from flags.

Examples:
  ` + branding.CLIName() + ` init
  ` + branding.CLIName() + ` init --non-interactive --name my-app --components database,config`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

// preset is a project type offered by init. A nil component list selects
// every component in the library.
type preset struct {
	Label      string
	Components []string
}

var presets = []preset{
	{Label: "Backend", Components: []string{"config"}},
	{Label: "Backend with Database", Components: []string{"config", "database"}},
	{Label: "Full Stack", Components: nil},
}

// presetComponents returns the preset's components that lib provides.
func presetComponents(label string, lib *library.Library) ([]string, error) {
	for _, p := range presets {
		if !strings.EqualFold(p.Label, label) {
			continue
		}
		if p.Components == nil {
			return lib.Names(), nil
		}
		var out []string
		for _, c := range p.Components {
			if _, err := lib.Lookup(c); err == nil {
				out = append(out, c)
			}
		}
		return out, nil
	}

	labels := make([]string, len(presets))
	for i, p := range presets {
		labels[i] = fmt.Sprintf("%q", p.Label)
	}
	return nil, fmt.Errorf("unknown preset %q (available: %s)", label, strings.Join(labels, ", "))
}

func runInit(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(initOutput); err == nil && !initForce {
		return fmt.Errorf("%s already exists; use --force to overwrite", initOutput)
	}

	// Relative paths in the written file are read back relative to it.
	baseDir := filepath.Dir(initOutput)
	skillsDir := initSkillsDir
	if skillsDir != "" && !filepath.IsAbs(skillsDir) {
		skillsDir = filepath.Join(baseDir, skillsDir)
	}

	lib, err := openLibrary(skillsDir)
	if err != nil {
		return err
	}

	cfg := &config.Project{
		ProjectName:        initName,
		ProjectDescription: initDescription,
		PrimaryDomain:      initDomain,
		TargetDir:          initTargetDir,
		Components:         splitList(initComponents),
		SkillsDir:          initSkillsDir,
		Strict:             true,
	}

	if len(cfg.Components) == 0 && initPreset != "" {
		if cfg.Components, err = presetComponents(initPreset, lib); err != nil {
			return err
		}
	}

	if !initNonInteractive && isatty.IsTerminal(os.Stdin.Fd()) {
		if err := runInitForm(cfg, lib); err != nil {
			return err
		}
	}

	if _, err := lib.Resolve(cfg.Components); err != nil {
		return err
	}
	if err := cfg.ResolvePaths(baseDir).Validate(); err != nil {
		return err
	}
	if err := cfg.Write(initOutput); err != nil {
		return err
	}

	p := newPrinter(cmd.OutOrStdout())
	p.success("Wrote %s", initOutput)
	p.item("project:    %s", cfg.ProjectName)
	p.item("components: %s", strings.Join(cfg.Components, ", "))
	fmt.Fprintln(p.w)
	p.muted("Next: %s scaffold --config %s", branding.CLIName(), initOutput)
	return nil
}

// runInitForm fills cfg interactively. Each step is its own form so a
// later step can depend on an earlier answer.
func runInitForm(cfg *config.Project, lib *library.Library) error {
	details := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Project name").
			Description("Lowercase letters, digits, '.', '_' and '-'").
			Value(&cfg.ProjectName).
			Validate(config.ValidateProjectName),
		huh.NewInput().
			Title("Description").
			Value(&cfg.ProjectDescription),
		huh.NewInput().
			Title("Primary domain").
			Placeholder("e.g. Billing").
			Value(&cfg.PrimaryDomain),
		huh.NewInput().
			Title("Target directory").
			Description("components/ is created inside it").
			Value(&cfg.TargetDir),
	))
	if err := runForm(details); err != nil {
		return err
	}

	selected := cfg.Components
	if len(selected) == 0 {
		label := presets[1].Label
		opts := make([]huh.Option[string], len(presets))
		for i, p := range presets {
			opts[i] = huh.NewOption(p.Label, p.Label)
		}
		typeForm := huh.NewForm(huh.NewGroup(
			huh.NewSelect[string]().
				Title("Project type").
				Options(opts...).
				Value(&label),
		))
		if err := runForm(typeForm); err != nil {
			return err
		}
		comps, err := presetComponents(label, lib)
		if err != nil {
			return err
		}
		selected = comps
	}

	compOpts := make([]huh.Option[string], 0, len(lib.Components()))
	for _, c := range lib.Components() {
		key := c.Name
		if c.Description != "" {
			key = c.Name + " - " + c.Description
		}
		compOpts = append(compOpts, huh.NewOption(key, c.Name).Selected(contains(selected, c.Name)))
	}
	compForm := huh.NewForm(huh.NewGroup(
		huh.NewMultiSelect[string]().
			Title("Components").
			Options(compOpts...).
			Value(&selected).
			Validate(func(v []string) error {
				if len(v) == 0 {
					return errors.New("select at least one component")
				}
				return nil
			}),
	))
	if err := runForm(compForm); err != nil {
		return err
	}

	cfg.Components = selected
	return nil
}

func runForm(f *huh.Form) error {
	if err := f.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return errInitCancelled
		}
		return fmt.Errorf("init form: %w", err)
	}
	return nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
