package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/panbanda/relic/pkg/config"
	"github.com/pelletier/go-toml"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management commands",
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Validates a relic configuration file for syntax errors and invalid values.

Examples:
  relic config validate                   # Validates default config locations
  relic config validate -c relic.toml     # Validates specific file
  relic config validate -c .relic/relic.toml`,
	Args: cobra.NoArgs,
	Annotations: map[string]string{
		skipConfig: "true",
	},
	RunE: runConfigValidate,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long: `Shows the merged configuration from defaults and config file.

Examples:
  relic config show               # Show effective config
  relic config show -c relic.toml # Show config from specific file`,
	Args: cobra.NoArgs,
	Annotations: map[string]string{
		skipConfig: "true",
	},
	RunE: runConfigShow,
}

func init() {
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}

func loadConfigFlag() (*config.LoadResult, error) {
	var opts []config.LoadOption
	if cfgFile != "" {
		opts = append(opts, config.WithPath(cfgFile))
	}
	return config.LoadConfig(opts...)
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	result, err := loadConfigFlag()
	if err != nil {
		color.Red("Configuration validation failed:")
		fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", err)
		return err
	}

	if result.Source != "" {
		color.Green("Configuration valid: %s", result.Source)
	} else {
		color.Yellow("No config file found. Default configuration is valid.")
	}
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	result, err := loadConfigFlag()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if result.Source != "" {
		fmt.Fprintf(out, "# Configuration from: %s\n\n", result.Source)
	} else {
		fmt.Fprintln(out, "# Default configuration (no config file found)")
	}

	content, err := toml.Marshal(result.Config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	fmt.Fprint(out, string(content))
	return nil
}
