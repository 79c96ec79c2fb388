package registry

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/seltag/pkg/parser"
)

func newTestScanner(t *testing.T) *Scanner {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	parsers := parser.NewManager(logger)
	t.Cleanup(func() { parsers.Close() })

	scanner := NewScanner(parsers, logger)
	t.Cleanup(scanner.Close)
	return scanner
}

func writeProjectFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func scanOptions(root string) Options {
	return Options{
		Root:    root,
		Include: []string{"**/*.tsx"},
	}
}

func TestScan_CollectsIdentifiers(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "components/ui/button/button.tsx", `
export function Button() {
  return <button data-ui="ui-button">Go</button>;
}
`)
	writeProjectFile(t, root, "app/settings/page.tsx", `
export default function SettingsPage() {
  return <main data-ui="page-settings" />;
}
`)

	scanner := newTestScanner(t)
	reg, err := scanner.Scan(context.Background(), scanOptions(root))
	require.NoError(t, err)

	assert.Equal(t, []string{"ui-button", "page-settings"}, reg.Identifiers())
	require.Len(t, reg.Entries, 2)
	assert.Equal(t, "ui", reg.Entries[0].Layer)
	assert.Equal(t, "components/ui/button/button.tsx", reg.Entries[0].Locations[0].FilePath)
}

func TestScan_LayerOrdering(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "a.tsx", `
export function A() {
  return (
    <div>
      <p data-ui="marketing-hero" />
      <p data-ui="page-home" />
      <p data-ui="billing-invoice" />
      <p data-ui="layout-sidebar" />
      <p data-ui="ui-button" />
    </div>
  );
}
`)

	scanner := newTestScanner(t)
	reg, err := scanner.Scan(context.Background(), scanOptions(root))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"ui-button",
		"layout-sidebar",
		"page-home",
		"billing-invoice",
		"marketing-hero",
	}, reg.Identifiers())
	assert.Equal(t, []string{"ui", "layout", "page", "billing", "marketing"}, reg.Layers())
}

func TestScan_DuplicateIsFatal(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "a.tsx", `export const A = () => <div data-ui="ui-button" />;`)
	writeProjectFile(t, root, "b.tsx", `export const B = () => <div data-ui="ui-button" />;`)

	scanner := newTestScanner(t)
	_, err := scanner.Scan(context.Background(), scanOptions(root))
	require.Error(t, err)

	var scanErr *ScanError
	require.True(t, errors.As(err, &scanErr))
	require.Len(t, scanErr.Issues, 1)
	assert.Equal(t, IssueDuplicate, scanErr.Issues[0].Code)
	assert.Equal(t, "ui-button", scanErr.Issues[0].Identifier)
}

func TestScan_DuplicateAllowlist(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "a.tsx", `export const A = () => <div data-ui="ui-button" />;`)
	writeProjectFile(t, root, "b.tsx", `export const B = () => <div data-ui="ui-button" />;`)

	scanner := newTestScanner(t)
	opts := scanOptions(root)
	opts.DuplicateAllowlist = []string{"ui-button"}

	reg, err := scanner.Scan(context.Background(), opts)
	require.NoError(t, err)
	require.Len(t, reg.Entries, 1)
	assert.Len(t, reg.Entries[0].Locations, 2)
}

func TestScan_NonLiteralIsFatal(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "a.tsx", `
export function A({ id }) {
  return <div data-ui={id} />;
}
`)

	scanner := newTestScanner(t)
	_, err := scanner.Scan(context.Background(), scanOptions(root))

	var scanErr *ScanError
	require.True(t, errors.As(err, &scanErr))
	require.Len(t, scanErr.Issues, 1)
	assert.Equal(t, IssueNonLiteral, scanErr.Issues[0].Code)
}

func TestScan_ExpressionWrappedLiteralIsAccepted(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "a.tsx", `
export function A() {
  return <div data-ui={"ui-box"} />;
}
`)

	scanner := newTestScanner(t)
	reg, err := scanner.Scan(context.Background(), scanOptions(root))
	require.NoError(t, err)
	assert.Equal(t, []string{"ui-box"}, reg.Identifiers())
}

func TestScan_CollectsCloneElementProps(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "components/ui/slot/slot.tsx", `
import React from "react";

export function Slotted({ children }) {
  return React.cloneElement(children, { "data-ui": "ui-slotted", role: "presentation" });
}
`)
	writeProjectFile(t, root, "components/ui/button/button.tsx", `
export const Button = () => <button data-ui="ui-button" />;
`)

	scanner := newTestScanner(t)
	reg, err := scanner.Scan(context.Background(), scanOptions(root))
	require.NoError(t, err)

	assert.Equal(t, []string{"ui-button", "ui-slotted"}, reg.Identifiers())
}

func TestScan_NonLiteralClonePropIsFatal(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "a.tsx", `
import React from "react";

export function Slotted({ children, id }) {
  return React.cloneElement(children, { "data-ui": id });
}
`)

	scanner := newTestScanner(t)
	_, err := scanner.Scan(context.Background(), scanOptions(root))

	var scanErr *ScanError
	require.True(t, errors.As(err, &scanErr))
	require.Len(t, scanErr.Issues, 1)
	assert.Equal(t, IssueNonLiteral, scanErr.Issues[0].Code)
}

func TestScan_MalformedIdentifierIsFatal(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "a.tsx", `export const A = () => <div data-ui="UI_Button" />;`)

	scanner := newTestScanner(t)
	_, err := scanner.Scan(context.Background(), scanOptions(root))

	var scanErr *ScanError
	require.True(t, errors.As(err, &scanErr))
	require.Len(t, scanErr.Issues, 1)
	assert.Equal(t, IssueMalformed, scanErr.Issues[0].Code)
}

func TestScan_SyntaxErrorIsFatal(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "a.tsx", "export function A() {\n  return <div\n}\n")

	scanner := newTestScanner(t)
	_, err := scanner.Scan(context.Background(), scanOptions(root))

	var scanErr *ScanError
	require.True(t, errors.As(err, &scanErr))
	require.Len(t, scanErr.Issues, 1)
	assert.Equal(t, IssueParseError, scanErr.Issues[0].Code)
}
