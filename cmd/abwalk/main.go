// Package main provides the CLI entry point for abwalk.
package main

import (
	"fmt"
	"os"

	coreerrors "github.com/five82/abwalk/internal/errors"
)

const (
	appName    = "abwalk"
	appVersion = "0.1.0"
)

// Exit codes
const (
	exitConfig    = 1
	exitFatal     = 2
	exitCancelled = 130
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !coreerrors.IsCancelled(err) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case coreerrors.IsCancelled(err):
		return exitCancelled
	case coreerrors.IsEncoderFatal(err):
		return exitFatal
	default:
		return exitConfig
	}
}
