// Package stylegen renders the identifier registry into a two-file
// stylesheet: a regenerated selector scaffold that mirrors the registry
// exactly, and a write-once companion file owned by hand-written rules.
package stylegen

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gnana997/seltag/pkg/locate"
	"github.com/gnana997/seltag/pkg/registry"
)

// hashLen is the number of hex digits of the content hash kept in the
// generated header.
const hashLen = 12

// Options configures generation.
type Options struct {
	// OutputPath is the regenerated selector file. Overwritten on every
	// run.
	OutputPath string
	// CustomPath is the companion file for hand-written rules. Created
	// once when absent, never opened otherwise.
	CustomPath string

	// Now overrides the header timestamp source, for tests.
	Now func() time.Time
}

// Summary reports what one generation run produced.
type Summary struct {
	Selectors   int
	Hash        string
	WroteCustom bool
}

// Generate writes both artifacts from the registry.
func Generate(reg *registry.Registry, opts Options, logger *slog.Logger) (*Summary, error) {
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	hash := ContentHash(reg.Identifiers())
	content := render(reg, hash, now().UTC())

	if err := os.MkdirAll(filepath.Dir(opts.OutputPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(opts.OutputPath, []byte(content), 0o644); err != nil {
		return nil, fmt.Errorf("writing %s: %w", opts.OutputPath, err)
	}

	summary := &Summary{Selectors: len(reg.Entries), Hash: hash}

	wrote, err := ensureCustom(opts.CustomPath, opts.OutputPath)
	if err != nil {
		return nil, err
	}
	summary.WroteCustom = wrote

	logger.Info("stylesheet generated",
		"output", opts.OutputPath,
		"selectors", summary.Selectors,
		"hash", summary.Hash,
		"custom_created", wrote)
	return summary, nil
}

// ContentHash returns a short digest over the identifier set, independent
// of registry order and of the generation timestamp.
func ContentHash(ids []string) string {
	sorted := make([]string, len(ids))
	copy(sorted, ids)
	sort.Strings(sorted)

	sum := sha256.Sum256([]byte(strings.Join(sorted, "\n")))
	return hex.EncodeToString(sum[:])[:hashLen]
}

func render(reg *registry.Registry, hash string, ts time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "/* Generated file. Do not edit: every run rewrites it in full. */\n")
	fmt.Fprintf(&b, "/* generated: %s */\n", ts.Format(time.RFC3339))
	fmt.Fprintf(&b, "/* selectors: %d */\n", len(reg.Entries))
	fmt.Fprintf(&b, "/* hash: %s */\n", hash)

	for _, layer := range reg.Layers() {
		fmt.Fprintf(&b, "\n/* ===== %s ===== */\n", layer)
		for _, entry := range reg.ByLayer(layer) {
			if len(entry.Locations) > 0 {
				fmt.Fprintf(&b, "\n/* %s */\n", entry.Locations[0].FilePath)
			} else {
				b.WriteString("\n")
			}
			fmt.Fprintf(&b, "[%s=%q] {\n}\n", locate.Attribute, entry.Identifier)
		}
	}
	return b.String()
}

// ensureCustom creates the companion file the first time generation runs.
// An existing file is left untouched, whatever its content.
func ensureCustom(customPath, outputPath string) (bool, error) {
	if customPath == "" {
		return false, nil
	}
	if _, err := os.Stat(customPath); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("checking %s: %w", customPath, err)
	}

	if err := os.MkdirAll(filepath.Dir(customPath), 0o755); err != nil {
		return false, fmt.Errorf("creating output directory: %w", err)
	}

	var b strings.Builder
	b.WriteString("/* Hand-written rules. This file is created once and never regenerated. */\n")
	fmt.Fprintf(&b, "/* Selector scaffold lives in %s. */\n", filepath.Base(outputPath))

	if err := os.WriteFile(customPath, []byte(b.String()), 0o644); err != nil {
		return false, fmt.Errorf("writing %s: %w", customPath, err)
	}
	return true, nil
}
