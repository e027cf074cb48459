// Package exec provides an interface for running the external check tools.
package exec

import (
	"context"
)

// Result holds the outcome of a completed command.
type Result struct {
	// Stdout is the captured standard output.
	Stdout []byte
	// Stderr is the captured standard error.
	Stderr []byte
	// ExitCode is the command's exit code. Check tools exit non-zero when
	// they find diagnostics, so a non-zero code is not an error by itself.
	ExitCode int
}

// CommandRunner defines the interface for running external commands.
// This abstraction allows mocking the type-check and lint toolchain in tests.
type CommandRunner interface {
	// Run executes a command in workDir (if non-empty) and returns its
	// captured output and exit code. The returned error is non-nil only
	// when the command could not be started or was interrupted - a command
	// that ran to completion with a non-zero exit code returns a nil error.
	Run(ctx context.Context, workDir string, name string, args ...string) (Result, error)

	// LookPath reports where the named binary resolves, or an error if it
	// is not installed.
	LookPath(name string) (string, error)
}
