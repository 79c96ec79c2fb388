package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a default .seltag.yaml config file",
	Long:  `Create a .seltag.yaml configuration file in the current directory with sensible defaults.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		force, _ := cmd.Flags().GetBool("force")

		if _, err := os.Stat(".seltag.yaml"); err == nil && !force {
			return fmt.Errorf(".seltag.yaml already exists (use --force to overwrite)")
		}

		if err := os.WriteFile(".seltag.yaml", []byte(defaultConfig), 0644); err != nil {
			return fmt.Errorf("writing config file: %w", err)
		}

		fmt.Println("Created .seltag.yaml")
		return nil
	},
}

const defaultConfig = `# seltag configuration

# Shared settings
root: .
verbose: false

# Injection settings
inject:
  include:
    - "**/*.tsx"
    - "**/*.jsx"
  exclude:
    - "**/*.test.*"
    - "**/*.spec.*"
    - "**/*.stories.*"
  check: false
  workers: 0               # 0 = derive from CPU count

# Stylesheet generation settings
generate:
  output: styles/selectors.css
  custom: styles/selectors.custom.css
  allow-duplicates: []     # identifiers permitted to occur more than once

# Watch settings
watch:
  debounce: 300ms
`

func init() {
	initCmd.Flags().Bool("force", false, "Overwrite existing config file")
}
