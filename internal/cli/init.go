package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/huimingz/autocommit-go/internal/config"
)

const defaultConfigTemplate = `# Autocommit Configuration File

# Output language for commit messages (en, zh, ja, etc.)
language: en

# Generate a commit body in addition to the subject line
description: true

# Prefix the subject with a gitmoji
emoji: false

# Commit author override (optional, falls back to git config)
# name: Your Name
# email: you@example.com

# Approximate token budget per generation request
token_budget: 4096

# Default model to use (must match a key in the models section)
default_model: openai

# Model configurations
models:
  openai:
    provider: openai
    api_key: ${OPENAI_API_KEY}
    model: gpt-4o
    # base_url: https://api.openai.com/v1  # optional, uses default

  # deepseek:
  #   provider: deepseek
  #   api_key: ${DEEPSEEK_API_KEY}
  #   model: deepseek-chat

  # ollama:
  #   provider: ollama
  #   model: llama3.2
  #   base_url: http://localhost:11434/v1

  # gemini:
  #   provider: gemini
  #   api_key: ${GOOGLE_API_KEY}
  #   model: gemini-2.0-flash

  # grok:
  #   provider: grok
  #   api_key: ${XAI_API_KEY}
  #   model: grok-beta

# Retry behavior for transient service failures
retry:
  enabled: true
  max_attempts: 3
  backoff_base: 1.0
  backoff_max: 8.0
`

var (
	initForce bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	Long: `Create a default configuration file (~/.autocommit.yaml).

This command creates a template configuration file with example settings
for the supported providers. Edit the file to add your API keys.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}

		configPath := filepath.Join(homeDir, config.DefaultFileName)

		// Check if file exists
		if _, err := os.Stat(configPath); err == nil && !initForce {
			return fmt.Errorf("config file already exists: %s\nUse --force to overwrite", configPath)
		}

		// Write config file
		err = os.WriteFile(configPath, []byte(defaultConfigTemplate), 0600)
		if err != nil {
			return fmt.Errorf("failed to write config file: %w", err)
		}

		fmt.Printf("✅ Configuration file created: %s\n", configPath)
		fmt.Println("\nNext steps:")
		fmt.Println("  1. Edit the config file and add your API keys")
		fmt.Println("  2. Set environment variables for sensitive keys (recommended)")
		fmt.Println("  3. Stage some changes and run 'autocommit'")

		return nil
	},
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite existing config file")
	rootCmd.AddCommand(initCmd)
}
