package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gnana997/seltag/pkg/inject"
	"github.com/gnana997/seltag/pkg/parser"
	"github.com/gnana997/seltag/pkg/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-run injection as source files change",
	Long: `Watch the project tree and re-run the injection pass on changed files,
debouncing editor save bursts into single runs. An initial full run brings
the tree up to date before watching starts.`,
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		return loadConfig(cmd)
	},
	RunE: runWatch,
}

func init() {
	f := watchCmd.Flags()
	f.String("debounce", "300ms", "Delay before a burst of changes triggers a run")
	f.Int("workers", 0, "Worker count (0 = derive from CPU count)")
	f.StringSlice("include", nil, "Glob patterns for source files to include")
	f.StringSlice("exclude", nil, "Glob patterns for source files to exclude")
}

func runWatch(_ *cobra.Command, _ []string) error {
	logger := newLogger()
	opts := buildInjectOptions()
	opts.Check = false

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	parsers := parser.NewManager(logger)
	defer parsers.Close()

	injector, err := inject.New(parsers, logger)
	if err != nil {
		return err
	}

	useColors := getBoolWithFallback("color", "color", false)
	quiet := getBoolWithFallback("quiet", "quiet", false)

	watcher := watch.New(injector, logger, watchDebounce())
	err = watcher.Run(ctx, opts, func(result *inject.Result) {
		if !quiet {
			printDiagnostics(result.Diagnostics, useColors)
		}
		printRunSummary(result, quiet, useColors)
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
