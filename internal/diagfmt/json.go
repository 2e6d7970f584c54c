package diagfmt

import (
	"encoding/json"
	"io"

	"hlintls/internal/diag"
)

type jsonDiagnostic struct {
	File        string `json:"file"`
	StartLine   int    `json:"startLine"`
	StartColumn int    `json:"startColumn"`
	EndLine     int    `json:"endLine"`
	EndColumn   int    `json:"endColumn"`
	Severity    string `json:"severity"`
	Code        string `json:"code"`
	Message     string `json:"message"`
	Actionable  bool   `json:"actionable"`
}

// FileDiagnostics pairs a file path with its findings for multi-file
// JSON output.
type FileDiagnostics struct {
	Path  string
	Diags []diag.Diagnostic
}

// JSON writes diagnostics as a JSON array with 1-based coordinates.
func JSON(w io.Writer, path string, diags []diag.Diagnostic, opts JSONOpts) error {
	return JSONAll(w, []FileDiagnostics{{Path: path, Diags: diags}}, opts)
}

// JSONAll writes the findings of several files as one flat JSON array.
func JSONAll(w io.Writer, files []FileDiagnostics, opts JSONOpts) error {
	out := make([]jsonDiagnostic, 0, 16)
	for _, f := range files {
		for _, d := range f.Diags {
			if opts.Max > 0 && len(out) >= opts.Max {
				break
			}
			out = append(out, jsonDiagnostic{
				File:        f.Path,
				StartLine:   d.Range.Start.Line + 1,
				StartColumn: d.Range.Start.Col + 1,
				EndLine:     d.Range.End.Line + 1,
				EndColumn:   d.Range.End.Col + 1,
				Severity:    d.Severity.String(),
				Code:        d.Code,
				Message:     d.Message,
				Actionable:  d.Actionable(),
			})
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
