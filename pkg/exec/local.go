package exec

import (
	"context"
	"fmt"
	"os"
	osexec "os/exec"
	"runtime"
	"strings"
	"time"
)

// LocalRunner executes commands through the platform shell on the local system.
type LocalRunner struct {
	blocked []string
}

// NewLocalRunner creates a runner. blocked is a list of substrings; any
// command containing one (case-insensitive) is refused before it runs.
func NewLocalRunner(blocked []string) *LocalRunner {
	lowered := make([]string, 0, len(blocked))
	for _, b := range blocked {
		if b = strings.TrimSpace(b); b != "" {
			lowered = append(lowered, strings.ToLower(b))
		}
	}
	return &LocalRunner{blocked: lowered}
}

// IsBlocked reports whether the command matches the blocked-command list.
func (r *LocalRunner) IsBlocked(command string) bool {
	lowered := strings.ToLower(command)
	for _, b := range r.blocked {
		if strings.Contains(lowered, b) {
			return true
		}
	}
	return false
}

// shellArgv returns the platform shell invocation for a command string.
func shellArgv(command string) []string {
	if runtime.GOOS == "windows" {
		return []string{"powershell", "-Command", command}
	}
	return []string{"sh", "-c", command}
}

// Run executes a shell command locally.
func (r *LocalRunner) Run(ctx context.Context, command string, opts *Opts) (Result, error) {
	if strings.TrimSpace(command) == "" {
		return Result{ExitCode: -1}, fmt.Errorf("command cannot be empty")
	}

	if r.IsBlocked(command) {
		return Result{
			ExitCode: -1,
			Stderr:   "command blocked for safety",
		}, nil
	}

	if opts == nil {
		defaults := DefaultOpts()
		opts = &defaults
	}

	startTime := time.Now()

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	argv := shellArgv(command)
	cmd := osexec.CommandContext(ctx, argv[0], argv[1:]...)

	if opts.WorkDir != "" {
		if _, err := os.Stat(opts.WorkDir); os.IsNotExist(err) {
			return Result{ExitCode: -1}, fmt.Errorf("working directory does not exist: %s", opts.WorkDir)
		}
		cmd.Dir = opts.WorkDir
	}

	if len(opts.Env) > 0 {
		cmd.Env = append(os.Environ(), opts.Env...)
	}

	var stdoutBuf, stderrBuf strings.Builder
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	err := cmd.Run()
	duration := time.Since(startTime)

	exitCode := 0
	if err != nil {
		if exitError, ok := err.(*osexec.ExitError); ok {
			// Non-zero exit is a result, not an error; the caller checks ExitCode.
			exitCode = exitError.ExitCode()
			err = nil
		} else {
			exitCode = -1
		}
	}

	if ctx.Err() == context.DeadlineExceeded {
		return Result{
			ExitCode: -1,
			Stderr:   "command timed out",
			Duration: duration,
		}, nil
	}

	return Result{
		ExitCode: exitCode,
		Stdout:   stdoutBuf.String(),
		Stderr:   stderrBuf.String(),
		Duration: duration,
	}, err
}

// Open launches an application detached from the agent process. The child is
// left running; only spawn failures are reported.
func (r *LocalRunner) Open(_ context.Context, app string) error {
	if strings.TrimSpace(app) == "" {
		return fmt.Errorf("application name cannot be empty")
	}

	var cmd *osexec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = osexec.Command("cmd", "/C", "start", "", app)
	case "darwin":
		cmd = osexec.Command("open", "-a", app)
	default:
		cmd = osexec.Command("sh", "-c", app+" >/dev/null 2>&1 &")
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to launch %s: %w", app, err)
	}

	// Reap the shell wrapper in the background so it does not linger as a zombie.
	go func() { _ = cmd.Wait() }()

	return nil
}
