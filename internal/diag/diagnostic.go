// Package diag projects linter findings into editor diagnostics and owns
// the per-document diagnostic state.
package diag

import (
	"fmt"

	"hlintls/internal/hlint"
)

// Source is the fixed tag identifying diagnostics produced by this program.
const Source = "hlint"

// Position is a 0-based line/column pair.
type Position struct {
	Line int
	Col  int
}

// Range is a 0-based coordinate range.
type Range struct {
	Start Position
	End   Position
}

// Diagnostic is the editor-facing projection of one linter finding.
type Diagnostic struct {
	Range    Range
	Severity Severity
	// Code names the hint rule, e.g. "Redundant bracket".
	Code    string
	Message string
	// Refactoring is the opaque apply-refact descriptor for this finding.
	// Empty means the diagnostic is not actionable and must not be offered
	// as an auto-fix target.
	Refactoring string
}

// Actionable reports whether the diagnostic carries a refactoring
// descriptor.
func (d Diagnostic) Actionable() bool { return d.Refactoring != "" }

// FromIdea maps one hlint finding to a diagnostic. hlint reports 1-based
// inclusive coordinates; the editor wants 0-based.
func FromIdea(idea hlint.Idea) Diagnostic {
	msg := idea.Hint
	if idea.To != "" {
		msg = fmt.Sprintf("%s. Replace with %s", idea.Hint, idea.To)
	}
	return Diagnostic{
		Range: Range{
			Start: Position{Line: maxZero(idea.StartLine - 1), Col: maxZero(idea.StartColumn - 1)},
			End:   Position{Line: maxZero(idea.EndLine - 1), Col: maxZero(idea.EndColumn - 1)},
		},
		Severity:    SeverityFor(idea.Severity),
		Code:        idea.Hint,
		Message:     msg,
		Refactoring: idea.Refactorings,
	}
}

// FromIdeas maps the findings that belong to the given file. hlint can
// report ideas for other logical units in one invocation; those must not
// leak into this document's diagnostic set.
func FromIdeas(ideas []hlint.Idea, file string) []Diagnostic {
	out := make([]Diagnostic, 0, len(ideas))
	for _, idea := range ideas {
		if idea.File != file {
			continue
		}
		out = append(out, FromIdea(idea))
	}
	return out
}

func maxZero(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
