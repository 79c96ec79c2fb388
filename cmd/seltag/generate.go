package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gnana997/seltag/pkg/parser"
	"github.com/gnana997/seltag/pkg/registry"
	"github.com/gnana997/seltag/pkg/stylegen"
)

var generateCmd = &cobra.Command{
	Use:     "generate",
	Aliases: []string{"gen"},
	Short:   "Generate the CSS selector scaffold from the identifier registry",
	Long: `Scan the project for identifier attributes and regenerate the selector
stylesheet. The scan is read-only and refuses to write anything when it
finds syntax errors, duplicate identifiers, or non-literal values. The
companion file for hand-written rules is created on the first run and
never touched again.`,
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		return loadConfig(cmd)
	},
	RunE: runGenerate,
}

func init() {
	f := generateCmd.Flags()
	f.String("output", "styles/selectors.css", "Regenerated selector file")
	f.String("custom", "styles/selectors.custom.css", "Write-once companion file")
	f.StringSlice("include", nil, "Glob patterns for source files to include")
	f.StringSlice("exclude", nil, "Glob patterns for source files to exclude")
	f.StringSlice("allow-duplicates", nil, "Identifiers permitted to occur more than once")
}

func runGenerate(_ *cobra.Command, _ []string) error {
	logger := newLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	parsers := parser.NewManager(logger)
	defer parsers.Close()

	scanner := registry.NewScanner(parsers, logger)
	defer scanner.Close()

	reg, err := scanner.Scan(ctx, buildScanOptions())
	if err != nil {
		var scanErr *registry.ScanError
		if errors.As(err, &scanErr) {
			useColors := getBoolWithFallback("color", "color", false)
			if !getBoolWithFallback("quiet", "quiet", false) {
				printScanIssues(scanErr.Issues, useColors)
			}
			return errIssuesFound
		}
		return err
	}

	summary, err := stylegen.Generate(reg, buildStyleOptions(), logger)
	if err != nil {
		return err
	}

	if !getBoolWithFallback("quiet", "quiet", false) {
		useColors := getBoolWithFallback("color", "color", false)
		fmt.Printf("%s  %d selectors written (hash %s)\n",
			render(styleSuccess, "ok", useColors), summary.Selectors, summary.Hash)
		if summary.WroteCustom {
			fmt.Printf("    created %s\n", buildStyleOptions().CustomPath)
		}
	}
	return nil
}
