package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gnana997/seltag/pkg/inject"
	"github.com/gnana997/seltag/pkg/parser"
)

var injectCmd = &cobra.Command{
	Use:   "inject",
	Short: "Inject identifier attributes into component source",
	Long: `Scan the project for exported React components, resolve each one's
identifier from its path and export name, and insert the attribute at the
component's root element. Files already carrying their identifiers are
left untouched, so repeated runs are no-ops.`,
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		return loadConfig(cmd)
	},
	RunE: runInject,
}

func init() {
	f := injectCmd.Flags()
	f.Bool("check", false, "Report missing identifiers without writing files")
	f.Int("workers", 0, "Worker count (0 = derive from CPU count)")
	f.StringSlice("include", nil, "Glob patterns for source files to include")
	f.StringSlice("exclude", nil, "Glob patterns for source files to exclude")
}

func runInject(_ *cobra.Command, _ []string) error {
	logger := newLogger()
	opts := buildInjectOptions()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	parsers := parser.NewManager(logger)
	defer parsers.Close()

	injector, err := inject.New(parsers, logger)
	if err != nil {
		return err
	}

	result, err := injector.Run(ctx, opts)
	if err != nil {
		return err
	}

	useColors := getBoolWithFallback("color", "color", false)
	quiet := getBoolWithFallback("quiet", "quiet", false)

	if !quiet {
		printDiagnostics(result.Diagnostics, useColors)
	}
	printRunSummary(result, quiet, useColors)

	if result.HasErrors() {
		return errIssuesFound
	}
	return nil
}
