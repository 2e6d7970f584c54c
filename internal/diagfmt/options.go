package diagfmt

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Color     bool
	ShowNotes bool
	// Context prints the offending source line with an underline when the
	// source text is available.
	Context bool
}

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	// Max truncates the output, 0 for no limit.
	Max int
}
