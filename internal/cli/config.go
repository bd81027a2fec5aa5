package cli

import (
	"fmt"
	"strings"

	"github.com/sdd-labs/sdd-scaffold/internal/config"
	"github.com/spf13/cobra"
)

func init() {
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configGetCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage user settings",
	Long: `Read and write user settings stored at ~/.sdd/config.yaml.

Keys:
  skills_dir   template library used when a project omits skills_dir
  strict       default for projects that do not set strict`,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]
		if key == config.KeyStrict && value != "true" && value != "false" {
			return fmt.Errorf("setting config key %q: value must be true or false, got %q", key, value)
		}
		if err := config.Set(key, value); err != nil {
			return fmt.Errorf("setting config key %q: %w", key, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, value)
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := args[0]
		known := false
		for _, k := range config.SettingKeys() {
			if k == key {
				known = true
			}
		}
		if !known {
			return fmt.Errorf("%w: %q (supported: %s)", config.ErrUnknownSetting, key, strings.Join(config.SettingKeys(), ", "))
		}
		fmt.Fprintln(cmd.OutOrStdout(), config.Get(key))
		return nil
	},
}
