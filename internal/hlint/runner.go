// Package hlint invokes the external hlint executable and parses its
// structured output.
package hlint

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"hlintls/internal/execx"
)

// Snapshot is the content of one document at the moment a lint cycle was
// dispatched.
type Snapshot struct {
	// Path is the on-disk location of the document, when it has one.
	Path string
	// Text is the full buffer content.
	Text string
	// UseStdin selects stdin streaming over linting the saved file.
	// Tool versions without stdin support must lint the file on disk.
	UseStdin bool
}

// Runner invokes hlint. Create once, use for every lint cycle.
type Runner struct {
	// Path is the hlint executable, defaulting to "hlint" on PATH.
	Path string
	// Flags are extra arguments appended before the input argument.
	Flags []string
	// Timeout bounds one invocation when positive; zero means none.
	Timeout time.Duration
}

// NewRunner returns a Runner for the given executable path.
func NewRunner(path string) *Runner {
	if path == "" {
		path = "hlint"
	}
	return &Runner{Path: path}
}

// Lint runs one lint cycle for the snapshot: exactly one process
// invocation, no retries.
//
// --no-exit-code makes a "findings exist" exit unambiguous: any non-zero
// exit is a real execution failure. Non-empty stderr is also a failure
// even on a zero exit. Both, along with spawn failure and malformed
// output, surface as an error carrying the captured text.
func (r *Runner) Lint(ctx context.Context, snap Snapshot) ([]Idea, error) {
	args := []string{"--no-exit-code", "--json"}
	args = append(args, r.Flags...)

	inv := execx.Invocation{
		Path:         r.Path,
		Timeout:      r.Timeout,
		StrictStderr: true,
	}
	if snap.UseStdin {
		inv.Args = append(args, StdinFile)
		inv.Stdin = snap.Text
	} else {
		if snap.Path == "" {
			return nil, fmt.Errorf("hlint: no file path for non-stdin lint")
		}
		inv.Args = append(args, snap.Path)
	}

	res, err := execx.Run(ctx, inv)
	if err != nil {
		return nil, fmt.Errorf("hlint: %w", err)
	}
	return Parse(res.Stdout)
}

// Parse decodes hlint --json output into ideas.
func Parse(out string) ([]Idea, error) {
	trimmed := strings.TrimSpace(out)
	if trimmed == "" {
		return nil, nil
	}
	var ideas []Idea
	if err := json.Unmarshal([]byte(trimmed), &ideas); err != nil {
		return nil, fmt.Errorf("hlint: malformed output: %w", err)
	}
	return ideas, nil
}
