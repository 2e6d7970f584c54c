// Package refact applies hlint refactoring descriptors through the
// external refactor executable (apply-refact).
package refact

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"hlintls/internal/execx"
)

// Mode selects how the rewritten source is produced.
type Mode uint8

const (
	// ModeStdout streams the buffer to the tool's stdin and captures the
	// rewritten source from stdout. Works on dirty buffers.
	ModeStdout Mode = iota
	// ModeInPlace rewrites the saved file on disk. Requires the document
	// to be persisted first.
	ModeInPlace
)

// Runner invokes the refactor tool. Create once, use for every apply.
type Runner struct {
	// Path is the refactor executable, defaulting to "refactor" on PATH.
	Path string
	// Mode selects the invocation strategy.
	Mode Mode
	// Timeout bounds one invocation when positive; zero means none.
	Timeout time.Duration
}

// NewRunner returns a Runner for the given executable path.
func NewRunner(path string) *Runner {
	if path == "" {
		path = "refactor"
	}
	return &Runner{Path: path}
}

// Envelope wraps a single refactoring descriptor in the tool's expected
// input shape: a one-element list pairing an empty label with the raw
// descriptor. The descriptor is spliced in verbatim, never parsed.
func Envelope(descriptor string) string {
	return `[("", ` + descriptor + `)]`
}

// Result of one apply attempt.
type Result struct {
	// Applied is false when the tool ran but produced no change. That is
	// the documented "nothing to refactor" signal, not an error.
	Applied bool
	// Text is the full rewritten source in ModeStdout. Empty otherwise.
	Text string
}

// Apply runs the refactor tool with one descriptor.
//
// In ModeStdout, text is the current buffer content and the rewritten
// source comes back on stdout with exactly one synthetic trailing newline
// trimmed; empty output (or output that collapses to empty after the
// trim) means not applied. In ModeInPlace, path names the saved file and
// the tool modifies it directly.
func (r *Runner) Apply(ctx context.Context, path, text, descriptor string) (Result, error) {
	if strings.TrimSpace(descriptor) == "" {
		return Result{}, fmt.Errorf("refact: empty refactoring descriptor")
	}
	refactFile, err := writeEnvelope(descriptor)
	if err != nil {
		return Result{}, err
	}
	defer os.Remove(refactFile)

	inv := execx.Invocation{
		Path:    r.Path,
		Timeout: r.Timeout,
	}
	switch r.Mode {
	case ModeInPlace:
		if path == "" {
			return Result{}, fmt.Errorf("refact: in-place mode requires a file path")
		}
		inv.Args = []string{path, "--refact-file", refactFile, "--inplace"}
	default:
		inv.Args = []string{"--refact-file", refactFile}
		inv.Stdin = text
	}

	res, err := execx.Run(ctx, inv)
	if err != nil {
		return Result{}, fmt.Errorf("refact: %w", err)
	}
	if r.Mode == ModeInPlace {
		return Result{Applied: true}, nil
	}
	out := trimSyntheticNewline(res.Stdout)
	if out == "" {
		return Result{}, nil
	}
	return Result{Applied: true, Text: out}, nil
}

func writeEnvelope(descriptor string) (string, error) {
	f, err := os.CreateTemp("", "hlintls-refact-*.refact")
	if err != nil {
		return "", fmt.Errorf("refact: create refact file: %w", err)
	}
	if _, err := f.WriteString(Envelope(descriptor)); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("refact: write refact file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("refact: close refact file: %w", err)
	}
	return f.Name(), nil
}

// trimSyntheticNewline removes the one trailing newline the tool is known
// to append. Only one: further newlines belong to the source.
func trimSyntheticNewline(out string) string {
	out = strings.TrimSuffix(out, "\r\n")
	return strings.TrimSuffix(out, "\n")
}
