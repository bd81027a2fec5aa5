package cli

import (
	"github.com/spf13/cobra"
)

var (
	validateConfigPath string
	validateLenient    bool
)

func init() {
	validateCmd.Flags().StringVarP(&validateConfigPath, "config", "c", "", "Project configuration file (required)")
	validateCmd.Flags().BoolVar(&validateLenient, "lenient", false, "Report unresolved placeholders and script problems as warnings")
	_ = validateCmd.MarkFlagRequired("config")
	rootCmd.AddCommand(validateCmd)
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a project configuration without writing anything",
	Long: `Load a project configuration, resolve its components against the template
library and render every template in memory, including the script checks.
Exits non-zero on the first problem scaffold would hit.`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadProject(validateConfigPath)
	if err != nil {
		return err
	}

	s, err := newScaffolder(cfg, validateLenient)
	if err != nil {
		return err
	}

	plan, err := s.Plan(cfg)
	if err != nil {
		return err
	}

	p := newPrinter(cmd.OutOrStdout())
	p.success("%s is valid", cfg.Path())
	p.item("project:    %s", cfg.ProjectName)
	p.item("library:    %s", plan.Library)
	p.item("components: %d (%d files)", len(plan.Components), plan.FileCount())
	p.item("target:     %s", plan.TargetDir)
	p.warnings(plan.Warnings)
	return nil
}
