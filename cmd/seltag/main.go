// Package main provides the seltag CLI: deterministic identifier injection
// for React components and stylesheet scaffolding from the resulting
// registry.
package main

import (
	"errors"
	"fmt"
	"os"
)

// errIssuesFound signals a run that completed but found problems; the
// details were already printed, so main only sets the exit code.
var errIssuesFound = errors.New("issues found")

func main() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, errIssuesFound) {
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
}
