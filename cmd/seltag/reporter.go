package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/gnana997/seltag/pkg/inject"
	"github.com/gnana997/seltag/pkg/registry"
)

// Terminal styles for run output. Lipgloss degrades colors automatically
// based on terminal capabilities.
var (
	styleLocation = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	styleError    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))
	styleWarning  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("3"))
	styleSuccess  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
	styleHint     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// render applies a style only when color output is on.
func render(style lipgloss.Style, text string, useColors bool) string {
	if !useColors {
		return text
	}
	return style.Render(text)
}

// printDiagnostics writes injection diagnostics one per line, in the
// path:line shape lint tools use.
func printDiagnostics(diags []inject.Diagnostic, useColors bool) {
	for _, d := range diags {
		loc := fmt.Sprintf("%s:%d", d.FilePath, d.Line)
		sev := d.Severity.String()
		style := styleWarning
		if d.Severity == inject.SeverityError {
			style = styleError
		}

		msg := d.Message
		if d.Export != "" {
			msg = fmt.Sprintf("%s (%s)", msg, d.Export)
		}
		fmt.Fprintf(os.Stderr, "%s: %s: %s %s\n",
			render(styleLocation, loc, useColors),
			render(style, sev, useColors),
			msg,
			render(styleHint, "["+d.Code+"]", useColors))
	}
}

// printScanIssues writes registry scan failures the same way.
func printScanIssues(issues []registry.Issue, useColors bool) {
	for _, issue := range issues {
		loc := fmt.Sprintf("%s:%d", issue.FilePath, issue.Line)
		fmt.Fprintf(os.Stderr, "%s: %s: %s %s\n",
			render(styleLocation, loc, useColors),
			render(styleError, "error", useColors),
			issue.Message,
			render(styleHint, "["+issue.Code+"]", useColors))
	}
}

// printRunSummary writes the one-line outcome of an injection run.
func printRunSummary(result *inject.Result, quiet, useColors bool) {
	if quiet {
		return
	}
	line := fmt.Sprintf("%d files scanned, %d changed, %d identifiers injected, %d already tagged (%s)",
		result.FilesScanned, result.FilesChanged, result.Injected,
		result.AlreadyTagged, result.Duration.Round(time.Millisecond))
	if len(result.Diagnostics) == 0 {
		fmt.Println(render(styleSuccess, "ok", useColors) + "  " + line)
		return
	}
	fmt.Printf("%s  %s, %d diagnostics\n",
		render(styleWarning, "!!", useColors), line, len(result.Diagnostics))
}
