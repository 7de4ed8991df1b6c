package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/huimingz/autocommit-go/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and modify configuration",
	Long: `Read or change settings in the configuration file.

Settable keys: ` + strings.Join(config.SettableKeys(), ", "),
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configFile)
		if err != nil {
			return err
		}

		value, err := cfg.GetKey(args[0])
		if err != nil {
			return err
		}
		fmt.Println(value)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := configPath()
		if err != nil {
			return err
		}

		cfg, err := config.Load(configFile)
		if err != nil {
			return err
		}

		if err := cfg.SetKey(args[0], args[1]); err != nil {
			return err
		}
		if err := cfg.Save(path); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}

		fmt.Printf("Set %s = %s\n", args[0], args[1])
		return nil
	},
}

// configPath resolves where `config set` writes: the explicit --config
// path, an existing config in the current directory, or the home file.
func configPath() (string, error) {
	if configFile != "" {
		return configFile, nil
	}
	if _, err := os.Stat(config.DefaultFileName); err == nil {
		return config.DefaultFileName, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, config.DefaultFileName), nil
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}
