package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/gnana997/seltag/pkg/util"
)

var rootCmd = &cobra.Command{
	Use:   "seltag",
	Short: "Stable selector identifiers for React components",
	Long: `seltag assigns each exported React component a deterministic data-ui
identifier, injects it at the component's root element, and generates a
CSS selector scaffold from the resulting registry.`,
	// Default behavior: run inject when no subcommand is given. loadConfig
	// must run here because injectCmd's PreRunE is not triggered when
	// delegating via rootCmd.RunE.
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := loadConfig(cmd); err != nil {
			return err
		}
		return runInject(injectCmd, nil)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().Bool("quiet", false, "Suppress all output (exit code only)")
	rootCmd.PersistentFlags().Bool("color", false, "Force color output")
	rootCmd.PersistentFlags().String("config", ".seltag.yaml", "Config file path")
	rootCmd.PersistentFlags().String("root", ".", "Project root directory")

	rootCmd.AddCommand(injectCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(completionCmd)
	rootCmd.AddCommand(versionCmd)
}

// newLogger builds the run logger from the verbosity flags.
func newLogger() *slog.Logger {
	cfg := util.DefaultLoggerConfig()
	if getBoolWithFallback("verbose", "verbose", false) {
		cfg.Level = util.LevelDebug
	}
	if getBoolWithFallback("quiet", "quiet", false) {
		cfg.Level = util.LevelError
	}
	return util.NewLogger(cfg)
}
