// Package diagfmt renders diagnostics for the CLI.
package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"hlintls/internal/diag"
)

var (
	errColor  = color.New(color.FgRed, color.Bold)
	warnColor = color.New(color.FgYellow, color.Bold)
	infoColor = color.New(color.FgCyan)
	hintColor = color.New(color.FgGreen)
)

// Pretty formats diagnostics in a human-readable way.
// For each diagnostic it prints:
// <path>:<line>:<col>: <SEV> <code>: <Message>
// then, with opts.Context and source available, the offending line with a
// ^~~~ underline across the span. Coordinates print 1-based.
func Pretty(w io.Writer, path string, diags []diag.Diagnostic, source string, opts PrettyOpts) {
	lines := strings.Split(source, "\n")
	for _, d := range diags {
		sev := d.Severity.String()
		if opts.Color {
			sev = severityColor(d.Severity).Sprint(sev)
		}
		fmt.Fprintf(w, "%s:%d:%d: %s %s: %s\n",
			path, d.Range.Start.Line+1, d.Range.Start.Col+1, sev, d.Code, d.Message)
		if opts.Context && source != "" && d.Range.Start.Line < len(lines) {
			printContext(w, lines, d, opts)
		}
	}
}

func severityColor(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return errColor
	case diag.SevWarning:
		return warnColor
	case diag.SevHint:
		return hintColor
	}
	return infoColor
}

func printContext(w io.Writer, lines []string, d diag.Diagnostic, opts PrettyOpts) {
	line := lines[d.Range.Start.Line]
	fmt.Fprintf(w, "  %s\n", line)

	start := d.Range.Start.Col
	if start > len(line) {
		start = len(line)
	}
	end := len(line)
	if d.Range.End.Line == d.Range.Start.Line && d.Range.End.Col <= len(line) {
		end = d.Range.End.Col
	}
	if end < start {
		end = start
	}
	// Pad by display width so the caret lines up under wide runes.
	pad := runewidth.StringWidth(line[:start])
	span := runewidth.StringWidth(line[start:end])
	underline := "^"
	if span > 1 {
		underline += strings.Repeat("~", span-1)
	}
	if opts.Color {
		underline = severityColor(d.Severity).Sprint(underline)
	}
	fmt.Fprintf(w, "  %s%s\n", strings.Repeat(" ", pad), underline)
}
