// Package execx runs external tools and captures their output.
//
// It is the single process-execution primitive shared by the lint,
// refactor, and version-check layers: one invocation per call, stdin
// supplied by the caller, stdout and stderr captured separately, and
// failures reported with enough captured text to show the user.
package execx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// ErrToolMissing indicates the executable was not found or not runnable.
var ErrToolMissing = errors.New("tool not found")

// ExecError describes a tool invocation that ran but failed: non-zero
// exit status or output on stderr.
type ExecError struct {
	Tool     string
	ExitCode int
	Stderr   string
}

func (e *ExecError) Error() string {
	detail := strings.TrimSpace(e.Stderr)
	if detail == "" {
		return fmt.Sprintf("%s failed with exit code %d", e.Tool, e.ExitCode)
	}
	return fmt.Sprintf("%s failed with exit code %d: %s", e.Tool, e.ExitCode, detail)
}

// Invocation describes one tool call.
type Invocation struct {
	// Path is the executable path or name resolved via PATH.
	Path string
	// Args are the command arguments, without the executable itself.
	Args []string
	// Stdin, when non-empty, is streamed to the process.
	Stdin string
	// Timeout bounds the invocation when positive. Zero means no limit;
	// a hung tool then hangs its caller, matching the historical behavior.
	Timeout time.Duration
	// StrictStderr treats any stderr output as a failure even when the
	// process exits zero.
	StrictStderr bool
}

// Result carries the captured streams of a completed invocation.
type Result struct {
	Stdout string
	Stderr string
}

// Run executes the invocation and returns captured output.
//
// Spawn failures map to ErrToolMissing; non-zero exit (and, with
// StrictStderr, any stderr output) maps to *ExecError carrying the
// captured stderr text.
func Run(ctx context.Context, inv Invocation) (Result, error) {
	if inv.Path == "" {
		return Result{}, fmt.Errorf("execx: empty tool path")
	}
	if inv.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, inv.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, inv.Path, inv.Args...)
	if inv.Stdin != "" {
		cmd.Stdin = strings.NewReader(inv.Stdin)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			if ctx.Err() != nil {
				return res, fmt.Errorf("execx: %s: %w", inv.Path, ctx.Err())
			}
			return res, &ExecError{Tool: inv.Path, ExitCode: exitErr.ExitCode(), Stderr: res.Stderr}
		}
		if errors.Is(err, exec.ErrNotFound) {
			return res, fmt.Errorf("%w: %s", ErrToolMissing, inv.Path)
		}
		return res, fmt.Errorf("%w: %s: %v", ErrToolMissing, inv.Path, err)
	}
	if inv.StrictStderr && strings.TrimSpace(res.Stderr) != "" {
		return res, &ExecError{Tool: inv.Path, ExitCode: 0, Stderr: res.Stderr}
	}
	return res, nil
}
