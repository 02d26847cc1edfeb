// Package config provides configuration types and defaults for abwalk.
package config

import "errors"

// Sentinel errors for configuration validation.
var (
	// ErrUnknownBackend indicates an encoder backend outside the supported set.
	ErrUnknownBackend = errors.New("unknown encoder")

	// ErrInvalidQuality indicates a VMAF target outside the valid 1-100 range.
	ErrInvalidQuality = errors.New("VMAF target out of range")

	// ErrInvalidRootDir indicates the folder to scan is missing or not a directory.
	ErrInvalidRootDir = errors.New("folder is not a directory")

	// ErrInvalidRetryPolicy indicates an unusable transient retry setting.
	ErrInvalidRetryPolicy = errors.New("transient retry policy invalid")

	// ErrInvalidExitCode indicates a transient exit code that collides with success.
	ErrInvalidExitCode = errors.New("transient exit code invalid")
)
