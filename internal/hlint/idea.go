package hlint

import "encoding/json"

// StdinFile is the file identifier hlint reports for input fed on stdin.
const StdinFile = "-"

// Idea is one finding from hlint's --json output.
//
// Refactorings is the serialized apply-refact descriptor. It is opaque to
// this program: never parsed, only threaded through to the refactor tool.
type Idea struct {
	Module       string   `json:"module"`
	Decl         string   `json:"decl"`
	Severity     string   `json:"severity"`
	Hint         string   `json:"hint"`
	File         string   `json:"file"`
	StartLine    int      `json:"startLine"`
	StartColumn  int      `json:"startColumn"`
	EndLine      int      `json:"endLine"`
	EndColumn    int      `json:"endColumn"`
	From         string   `json:"from"`
	To           string   `json:"to"`
	Note         []string `json:"note"`
	Refactorings string   `json:"refactorings"`
}

// UnmarshalJSON tolerates the banner variation where module and decl are
// reported as one-element arrays instead of strings.
func (i *Idea) UnmarshalJSON(data []byte) error {
	type alias Idea
	aux := struct {
		*alias
		Module json.RawMessage `json:"module"`
		Decl   json.RawMessage `json:"decl"`
	}{alias: (*alias)(i)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	i.Module = flattenField(aux.Module)
	i.Decl = flattenField(aux.Decl)
	return nil
}

func flattenField(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return list[0]
	}
	return ""
}
