package diag

// Severity mirrors the LSP DiagnosticSeverity numbering.
type Severity int

const (
	SevError       Severity = 1
	SevWarning     Severity = 2
	SevInformation Severity = 3
	SevHint        Severity = 4
)

func (s Severity) String() string {
	switch s {
	case SevError:
		return "ERROR"
	case SevWarning:
		return "WARNING"
	case SevInformation:
		return "INFO"
	case SevHint:
		return "HINT"
	}
	return "UNKNOWN"
}

// SeverityFor maps an hlint severity name to an editor severity. The
// mapping is total: unknown names fall through to Information.
func SeverityFor(name string) Severity {
	switch name {
	case "Suggestion":
		return SevHint
	case "Warning":
		return SevWarning
	case "Error":
		return SevError
	}
	return SevInformation
}
