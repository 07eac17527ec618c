// Package exec provides shell command execution and application launching
// for plan steps. Commands run through the platform shell (PowerShell on
// Windows, sh elsewhere) with a caller-specified timeout and a configurable
// blocked-command list.
package exec

import (
	"context"
	"time"
)

// Runner defines the interface for executing shell commands.
type Runner interface {
	// Run executes a shell command and returns its result. A non-zero exit
	// code is reported in the Result, not as an error.
	Run(ctx context.Context, command string, opts *Opts) (Result, error)

	// Open launches an application or command detached from the agent.
	// Success means the spawn call did not error, not that the application
	// fully started.
	Open(ctx context.Context, app string) error
}

// Opts contains options for command execution.
type Opts struct {
	// Env contains extra environment variables (KEY=VALUE format).
	Env []string

	// Timeout is the maximum duration for command execution.
	Timeout time.Duration

	// WorkDir is the working directory for the command.
	WorkDir string
}

// Result contains the result of command execution.
type Result struct {
	// Stdout contains the standard output.
	Stdout string

	// Stderr contains the standard error output.
	Stderr string

	// Duration is how long the command took to execute.
	Duration time.Duration

	// ExitCode is the exit code of the command. -1 indicates the command
	// did not run (blocked, timed out, or failed to start).
	ExitCode int
}

// DefaultOpts returns default execution options.
func DefaultOpts() Opts {
	return Opts{
		Timeout: 30 * time.Second,
	}
}
