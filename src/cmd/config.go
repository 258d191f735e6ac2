package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/facetrace/cli/src/paths"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage CLI configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		settings := viper.AllSettings()
		out, err := yaml.Marshal(settings)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), string(out))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := args[0]
		value := args[1]

		viper.Set(key, value)

		configPath, err := getConfigPath()
		if err != nil {
			return err
		}
		if err := paths.EnsureParent(configPath); err != nil {
			return err
		}

		if err := viper.WriteConfigAs(configPath); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
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
		value := viper.Get(key)
		if value == nil {
			return fmt.Errorf("key not found: %s", key)
		}
		fmt.Fprintln(cmd.OutOrStdout(), value)
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create default configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, err := getConfigPath()
		if err != nil {
			return err
		}

		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("config already exists: %s", configPath)
		}

		if err := paths.EnsureParent(configPath); err != nil {
			return err
		}

		if err := os.WriteFile(configPath, []byte(defaultConfig), 0600); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Created config file: %s\n", configPath)
		return nil
	},
}

const defaultConfig = `# FaceTrace CLI configuration
server:
  # empty uses the address saved at login, then the built-in default
  address: ""
  timeout: 30

search:
  poll_interval: 2s
  max_attempts: 60
  min_score: 70
  top: 5

output:
  format: sherlock

logging:
  level: warn
  file: ""
  max_size: 10
  max_files: 5
`

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func getConfigPath() (string, error) {
	return paths.ResolveConfigPath(cfgFile)
}
