package execx

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell-script fixtures require a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "tool.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func TestRunCapturesStdout(t *testing.T) {
	tool := writeScript(t, "printf 'hello'\n")
	res, err := Run(context.Background(), Invocation{Path: tool})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Stdout != "hello" {
		t.Fatalf("unexpected stdout: %q", res.Stdout)
	}
}

func TestRunStreamsStdin(t *testing.T) {
	tool := writeScript(t, "cat\n")
	res, err := Run(context.Background(), Invocation{Path: tool, Stdin: "module Main where\n"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Stdout != "module Main where\n" {
		t.Fatalf("unexpected stdout: %q", res.Stdout)
	}
}

func TestRunNonZeroExit(t *testing.T) {
	tool := writeScript(t, "printf 'boom' >&2\nexit 3\n")
	_, err := Run(context.Background(), Invocation{Path: tool})
	var execErr *ExecError
	if !errors.As(err, &execErr) {
		t.Fatalf("expected *ExecError, got %v", err)
	}
	if execErr.ExitCode != 3 {
		t.Fatalf("unexpected exit code: %d", execErr.ExitCode)
	}
	if execErr.Stderr != "boom" {
		t.Fatalf("unexpected stderr: %q", execErr.Stderr)
	}
}

func TestRunStrictStderr(t *testing.T) {
	tool := writeScript(t, "printf 'warning' >&2\nexit 0\n")
	_, err := Run(context.Background(), Invocation{Path: tool, StrictStderr: true})
	var execErr *ExecError
	if !errors.As(err, &execErr) {
		t.Fatalf("expected *ExecError for strict stderr, got %v", err)
	}
	if execErr.ExitCode != 0 {
		t.Fatalf("unexpected exit code: %d", execErr.ExitCode)
	}
}

func TestRunStderrIgnoredWhenNotStrict(t *testing.T) {
	tool := writeScript(t, "printf 'noise' >&2\nprintf 'ok'\n")
	res, err := Run(context.Background(), Invocation{Path: tool})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Stdout != "ok" || res.Stderr != "noise" {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestRunMissingTool(t *testing.T) {
	_, err := Run(context.Background(), Invocation{Path: filepath.Join(t.TempDir(), "no-such-tool")})
	if !errors.Is(err, ErrToolMissing) {
		t.Fatalf("expected ErrToolMissing, got %v", err)
	}
}
