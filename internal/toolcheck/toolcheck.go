// Package toolcheck gates external tool versions before activation.
package toolcheck

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"

	"hlintls/internal/execx"
)

// Status classifies the outcome of a version check.
type Status uint8

const (
	// Satisfied means the tool reported a version inside the required range.
	Satisfied Status = iota
	// Unsatisfied means the reported version is outside the required range.
	Unsatisfied
	// Missing means the executable was not found or not runnable.
	Missing
	// ParseError means the version output did not match the expected pattern
	// or the captured version string could not be interpreted.
	ParseError
)

func (s Status) String() string {
	switch s {
	case Satisfied:
		return "satisfied"
	case Unsatisfied:
		return "unsatisfied"
	case Missing:
		return "missing"
	case ParseError:
		return "parse error"
	}
	return "unknown"
}

// Requirement names a tool and the version range it must satisfy.
type Requirement struct {
	// Tool is the executable path or name.
	Tool string
	// VersionArgs extract the version banner, e.g. ["--version"].
	VersionArgs []string
	// Pattern captures the version substring from the banner in group 1.
	Pattern *regexp.Regexp
	// Constraint is the required range in semver constraint syntax.
	Constraint *semver.Constraints
}

// Result is the outcome of evaluating a Requirement.
type Result struct {
	Status  Status
	Version string
	Detail  string
}

// Ok reports whether the requirement is satisfied.
func (r Result) Ok() bool { return r.Status == Satisfied }

// HLint is the requirement for the hlint executable: banner
// "HLint v2.1.10, ..." and the 2.x line from 2.0.8 or the 1.9.x line
// from 1.9.25.
func HLint(tool string) Requirement {
	return Requirement{
		Tool:        tool,
		VersionArgs: []string{"--version"},
		Pattern:     regexp.MustCompile(`^HLint v([^,]+),`),
		Constraint:  mustConstraint("^2.0.8 || ^1.9.25"),
	}
}

// Refactor is the requirement for the apply-refact executable.
func Refactor(tool string) Requirement {
	return Requirement{
		Tool:        tool,
		VersionArgs: []string{"--version"},
		Pattern:     regexp.MustCompile(`v([0-9][^ ]*)`),
		Constraint:  mustConstraint(">=0.1.0"),
	}
}

func mustConstraint(expr string) *semver.Constraints {
	c, err := semver.NewConstraint(expr)
	if err != nil {
		panic(fmt.Errorf("toolcheck: bad constraint %q: %w", expr, err))
	}
	return c
}

// Check runs the tool's version command and evaluates the requirement.
func Check(ctx context.Context, req Requirement) Result {
	res, err := execx.Run(ctx, execx.Invocation{Path: req.Tool, Args: req.VersionArgs})
	if err != nil {
		if errors.Is(err, execx.ErrToolMissing) {
			return Result{Status: Missing, Detail: err.Error()}
		}
		return Result{Status: Missing, Detail: err.Error()}
	}
	return Evaluate(req, res.Stdout)
}

// Evaluate matches the version banner against the requirement. Split from
// Check so the comparison logic is testable without spawning processes.
func Evaluate(req Requirement, banner string) Result {
	m := req.Pattern.FindStringSubmatch(strings.TrimSpace(banner))
	if len(m) < 2 {
		return Result{
			Status: ParseError,
			Detail: fmt.Sprintf("version output %q did not match %s", firstLine(banner), req.Pattern),
		}
	}
	raw := strings.TrimSpace(m[1])
	v, err := semver.NewVersion(coerce(raw))
	if err != nil {
		return Result{
			Status:  ParseError,
			Version: raw,
			Detail:  fmt.Sprintf("cannot interpret version %q: %v", raw, err),
		}
	}
	if !req.Constraint.Check(v) {
		return Result{
			Status:  Unsatisfied,
			Version: raw,
			Detail:  fmt.Sprintf("version %s does not satisfy %s", raw, req.Constraint),
		}
	}
	return Result{Status: Satisfied, Version: raw}
}

// coerce makes loose tool version strings comparable. Haskell tools report
// four-component versions like "1.9.26.1"; only the first three components
// are significant, and missing components default to zero.
func coerce(raw string) string {
	parts := strings.SplitN(raw, "-", 2)
	nums := strings.Split(parts[0], ".")
	if len(nums) > 3 {
		nums = nums[:3]
	}
	for len(nums) < 3 {
		nums = append(nums, "0")
	}
	return strings.Join(nums, ".")
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
