package cli

import (
	"fmt"
	"path"

	"github.com/sdd-labs/sdd-scaffold/internal/branding"
	"github.com/sdd-labs/sdd-scaffold/internal/config"
	"github.com/sdd-labs/sdd-scaffold/internal/scaffold"
	"github.com/spf13/cobra"
)

var (
	scaffoldConfigPath string
	scaffoldLenient    bool
	scaffoldDryRun     bool
	scaffoldJSON       bool
)

func init() {
	scaffoldCmd.Flags().StringVarP(&scaffoldConfigPath, "config", "c", "", "Project configuration file (required)")
	scaffoldCmd.Flags().BoolVar(&scaffoldLenient, "lenient", false, "Report unresolved placeholders and script problems as warnings")
	scaffoldCmd.Flags().BoolVar(&scaffoldDryRun, "dry-run", false, "Print the files that would be written without writing them")
	scaffoldCmd.Flags().BoolVar(&scaffoldJSON, "json", false, "Print the result as JSON")
	_ = scaffoldCmd.MarkFlagRequired("config")
	rootCmd.AddCommand(scaffoldCmd)
}

var scaffoldCmd = &cobra.Command{
	Use:   "scaffold",
	Short: "Generate project components from templates",
	Long: `Generate every component listed in a project configuration under
<target_dir>/components/<component>/. Existing files are overwritten.

Nothing is written when the configuration is invalid, a component is unknown
or a template cannot be rendered.

Example:
  ` + branding.CLIName() + ` scaffold --config sdd-project.json`,
	Args: cobra.NoArgs,
	RunE: runScaffold,
}

func runScaffold(cmd *cobra.Command, args []string) error {
	cfg, err := loadProject(scaffoldConfigPath)
	if err != nil {
		return err
	}

	s, err := newScaffolder(cfg, scaffoldLenient)
	if err != nil {
		return err
	}

	plan, err := s.Plan(cfg)
	if err != nil {
		return err
	}

	if scaffoldDryRun {
		if scaffoldJSON {
			return printJSON(cmd.OutOrStdout(), planSummary(plan))
		}
		printPlan(newPrinter(cmd.OutOrStdout()), plan)
		return nil
	}

	result, err := s.Apply(cmd.Context(), plan)
	if err != nil {
		return err
	}

	if scaffoldJSON {
		return printJSON(cmd.OutOrStdout(), result)
	}
	printResult(newPrinter(cmd.OutOrStdout()), result)
	return nil
}

// newScaffolder opens the project's library and builds a Scaffolder.
func newScaffolder(cfg *config.Project, lenient bool) (*scaffold.Scaffolder, error) {
	lib, err := openLibrary(cfg.SkillsDir)
	if err != nil {
		return nil, err
	}
	return scaffold.New(lib, scaffold.Options{
		Lenient: lenient,
		Version: buildVersion,
		Logger:  logger,
	}), nil
}

// planOutput is the JSON form of a dry run.
type planOutput struct {
	TargetDir  string                `json:"target_dir"`
	Library    string                `json:"library"`
	Strict     bool                  `json:"strict"`
	Components []planComponentOutput `json:"components"`
	Warnings   []string              `json:"warnings,omitempty"`
}

type planComponentOutput struct {
	Name        string   `json:"name"`
	Dir         string   `json:"dir"`
	Directories []string `json:"directories,omitempty"`
	Files       []string `json:"files"`
}

func planSummary(plan *scaffold.Plan) planOutput {
	out := planOutput{
		TargetDir: plan.TargetDir,
		Library:   plan.Library,
		Strict:    plan.Strict,
		Warnings:  plan.Warnings,
	}
	for _, c := range plan.Components {
		pc := planComponentOutput{Name: c.Name, Dir: c.Dir, Directories: c.Directories}
		for _, f := range c.Files {
			pc.Files = append(pc.Files, f.Path)
		}
		out.Components = append(out.Components, pc)
	}
	return out
}

func printPlan(p *printer, plan *scaffold.Plan) {
	p.heading("Dry run: %d files in %d components would be written to %s", plan.FileCount(), len(plan.Components), plan.TargetDir)
	for _, c := range plan.Components {
		fmt.Fprintln(p.w)
		p.heading("%s/", path.Join(branding.ComponentsDir(), c.Name))
		for _, f := range c.Files {
			p.item("%s  %s", f.Path, p.style(styleMuted, fmt.Sprintf("%o", f.Mode.Perm())))
		}
	}
	p.warnings(plan.Warnings)
}

func printResult(p *printer, result *scaffold.Result) {
	total := 0
	for _, c := range result.Components {
		total += len(c.Files)
	}
	p.success("Scaffolded %d components (%d files) in %s", len(result.Components), total, result.TargetDir)
	for _, c := range result.Components {
		fmt.Fprintln(p.w)
		p.heading("%s/", path.Join(branding.ComponentsDir(), c.Name))
		for _, f := range c.Files {
			p.item("%s", f)
		}
	}
	p.warnings(result.Warnings)
}
