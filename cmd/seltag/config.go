package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"

	"github.com/gnana997/seltag/pkg/inject"
	"github.com/gnana997/seltag/pkg/registry"
	"github.com/gnana997/seltag/pkg/stylegen"
	"github.com/gnana997/seltag/pkg/watch"
)

var k = koanf.New(".")

// defaultInclude and defaultExclude bound a run when neither flags nor
// config narrow it. Discovery always skips dependency and build trees on
// top of these.
var (
	defaultInclude = []string{"**/*.tsx", "**/*.jsx"}
	defaultExclude = []string{"**/*.test.*", "**/*.spec.*", "**/*.stories.*"}
)

// loadConfig loads configuration with precedence: flags > env > file >
// defaults. It must run after cobra parses flags (PreRunE or RunE).
func loadConfig(cmd *cobra.Command) error {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		configPath = ".seltag.yaml"
	}

	if err := loadConfigFromPath(configPath); err != nil {
		return err
	}

	// CLI flags win; only flags explicitly set are merged.
	if err := k.Load(posflag.Provider(cmd.Flags(), ".", k), nil); err != nil {
		return fmt.Errorf("loading command flags: %w", err)
	}

	return nil
}

// loadConfigFromPath loads the config file and environment variables,
// separated from loadConfig so tests can run without a cobra command.
func loadConfigFromPath(configPath string) error {
	if _, err := os.Stat(configPath); err == nil {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return fmt.Errorf("loading config file %s: %w", configPath, err)
		}
	}

	// SELTAG_INJECT_CHECK -> inject.check
	// SELTAG_GENERATE_OUTPUT -> generate.output
	// SELTAG_VERBOSE -> verbose
	if err := k.Load(env.Provider("SELTAG_", ".", func(s string) string {
		return strings.ReplaceAll(
			strings.ToLower(strings.TrimPrefix(s, "SELTAG_")),
			"_", ".",
		)
	}), nil); err != nil {
		return fmt.Errorf("loading environment variables: %w", err)
	}

	return nil
}

// buildInjectOptions constructs the injection pass config from koanf state.
func buildInjectOptions() inject.Options {
	return inject.Options{
		Root:    getStringWithFallback("root", "root", "."),
		Include: getStringsWithFallback("include", "inject.include", defaultInclude),
		Exclude: getStringsWithFallback("exclude", "inject.exclude", defaultExclude),
		Check:   getBoolWithFallback("check", "inject.check", false),
		Workers: getIntWithFallback("workers", "inject.workers", 0),
	}
}

// buildScanOptions constructs the registry scan config. The scan covers
// the same files injection does.
func buildScanOptions() registry.Options {
	return registry.Options{
		Root:               getStringWithFallback("root", "root", "."),
		Include:            getStringsWithFallback("include", "inject.include", defaultInclude),
		Exclude:            getStringsWithFallback("exclude", "inject.exclude", defaultExclude),
		DuplicateAllowlist: getStringsWithFallback("allow-duplicates", "generate.allow-duplicates", nil),
	}
}

// buildStyleOptions constructs the stylesheet output config.
func buildStyleOptions() stylegen.Options {
	return stylegen.Options{
		OutputPath: getStringWithFallback("output", "generate.output", "styles/selectors.css"),
		CustomPath: getStringWithFallback("custom", "generate.custom", "styles/selectors.custom.css"),
	}
}

// watchDebounce reads the watch debounce interval from koanf state.
func watchDebounce() time.Duration {
	raw := getStringWithFallback("debounce", "watch.debounce", "")
	if raw == "" {
		return watch.DefaultDebounce
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return watch.DefaultDebounce
	}
	return d
}

// getStringWithFallback checks the flag key first, then the config file
// key, then returns the default.
func getStringWithFallback(flagKey, configKey, defaultVal string) string {
	if v := k.String(flagKey); v != "" {
		return v
	}
	if v := k.String(configKey); v != "" {
		return v
	}
	return defaultVal
}

// getStringsWithFallback checks the flag key first, then the config file
// key, then returns the default.
func getStringsWithFallback(flagKey, configKey string, defaultVal []string) []string {
	if v := k.Strings(flagKey); len(v) > 0 {
		return v
	}
	if v := k.Strings(configKey); len(v) > 0 {
		return v
	}
	return defaultVal
}

// getBoolWithFallback checks the flag key first, then the config file
// key, then returns the default.
func getBoolWithFallback(flagKey, configKey string, defaultVal bool) bool {
	if k.Exists(flagKey) {
		return k.Bool(flagKey)
	}
	if k.Exists(configKey) {
		return k.Bool(configKey)
	}
	return defaultVal
}

// getIntWithFallback checks the flag key first, then the config file
// key, then returns the default.
func getIntWithFallback(flagKey, configKey string, defaultVal int) int {
	if k.Exists(flagKey) {
		return k.Int(flagKey)
	}
	if k.Exists(configKey) {
		return k.Int(configKey)
	}
	return defaultVal
}
