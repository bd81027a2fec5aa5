package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/sdd-labs/sdd-scaffold/internal/library"
	"github.com/spf13/cobra"
)

var (
	componentsSkillsDir string
	componentsJSON      bool
)

func init() {
	componentsCmd.PersistentFlags().StringVar(&componentsSkillsDir, "skills-dir", "", "Template library directory (default: builtin)")
	componentsListCmd.Flags().BoolVar(&componentsJSON, "json", false, "Output in JSON format")
	componentsCmd.AddCommand(componentsListCmd)
	componentsCmd.AddCommand(componentsShowCmd)
	rootCmd.AddCommand(componentsCmd)
}

var componentsCmd = &cobra.Command{
	Use:   "components",
	Short: "Inspect the components a template library provides",
}

var componentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available components",
	Args:  cobra.NoArgs,
	RunE:  runComponentsList,
}

var componentsShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a component's manifest and template files",
	Args:  cobra.ExactArgs(1),
	RunE:  runComponentsShow,
}

// componentEntry is a component for display.
type componentEntry struct {
	Name        string   `json:"name"`
	Skill       string   `json:"skill"`
	Version     string   `json:"version,omitempty"`
	Description string   `json:"description,omitempty"`
	Directories []string `json:"directories,omitempty"`
	Requires    string   `json:"requires,omitempty"`
}

func newComponentEntry(c *library.Component) componentEntry {
	return componentEntry{
		Name:        c.Name,
		Skill:       c.Skill,
		Version:     c.Version,
		Description: c.Description,
		Directories: c.Directories,
		Requires:    c.Requires,
	}
}

func runComponentsList(cmd *cobra.Command, args []string) error {
	lib, err := openLibrary(componentsSkillsDir)
	if err != nil {
		return err
	}

	comps := lib.Components()
	entries := make([]componentEntry, 0, len(comps))
	for _, c := range comps {
		entries = append(entries, newComponentEntry(c))
	}

	if componentsJSON {
		return printJSON(cmd.OutOrStdout(), entries)
	}

	if len(entries) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No components found in %s\n", lib.Name())
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "NAME\tSKILL\tVERSION\tDIRECTORIES")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.Name, e.Skill, orDash(e.Version), orDash(strings.Join(e.Directories, ", ")))
	}
	return w.Flush()
}

func runComponentsShow(cmd *cobra.Command, args []string) error {
	lib, err := openLibrary(componentsSkillsDir)
	if err != nil {
		return err
	}

	c, err := lib.Lookup(args[0])
	if err != nil {
		return err
	}
	files, err := lib.Templates(c)
	if err != nil {
		return err
	}

	p := newPrinter(cmd.OutOrStdout())
	p.heading("%s", c.Name)
	if c.Description != "" {
		p.muted("%s", c.Description)
	}
	fmt.Fprintln(p.w)
	p.item("skill:       %s", c.Skill)
	p.item("version:     %s", orDash(c.Version))
	p.item("library:     %s", lib.Name())
	p.item("directories: %s", orDash(strings.Join(c.Directories, ", ")))
	if c.Requires != "" {
		p.item("requires:    %s", c.Requires)
	}

	fmt.Fprintln(p.w)
	p.heading("Templates")
	for _, f := range files {
		mark := ""
		if f.Executable {
			mark = " (executable)"
		}
		p.item("%s%s", f.Path, mark)
	}
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
