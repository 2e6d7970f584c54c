package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"hlintls/internal/diag"
)

func sample() diag.Diagnostic {
	return diag.Diagnostic{
		Range: diag.Range{
			Start: diag.Position{Line: 0, Col: 7},
			End:   diag.Position{Line: 0, Col: 12},
		},
		Severity:    diag.SevWarning,
		Code:        "Redundant bracket",
		Message:     "Redundant bracket. Replace with foo",
		Refactoring: "[Replace]",
	}
}

func TestPrettyHeaderLine(t *testing.T) {
	var buf bytes.Buffer
	Pretty(&buf, "Main.hs", []diag.Diagnostic{sample()}, "", PrettyOpts{})
	want := "Main.hs:1:8: WARNING Redundant bracket: Redundant bracket. Replace with foo\n"
	if buf.String() != want {
		t.Fatalf("got %q, want %q", buf.String(), want)
	}
}

func TestPrettyContextUnderline(t *testing.T) {
	var buf bytes.Buffer
	source := "main = (foo)\n"
	Pretty(&buf, "Main.hs", []diag.Diagnostic{sample()}, source, PrettyOpts{Context: true})
	lines := strings.Split(buf.String(), "\n")
	if len(lines) < 3 {
		t.Fatalf("expected header, context, underline; got %q", buf.String())
	}
	if lines[1] != "  main = (foo)" {
		t.Fatalf("unexpected context line: %q", lines[1])
	}
	if lines[2] != "         ^~~~~" {
		t.Fatalf("unexpected underline: %q", lines[2])
	}
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, "Main.hs", []diag.Diagnostic{sample()}, JSONOpts{}); err != nil {
		t.Fatalf("json: %v", err)
	}
	var out []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(out))
	}
	if out[0]["startLine"].(float64) != 1 || out[0]["startColumn"].(float64) != 8 {
		t.Fatalf("expected 1-based coordinates, got %+v", out[0])
	}
	if out[0]["actionable"] != true {
		t.Fatalf("expected actionable, got %+v", out[0])
	}
}

func TestJSONMax(t *testing.T) {
	var buf bytes.Buffer
	list := []diag.Diagnostic{sample(), sample(), sample()}
	if err := JSON(&buf, "Main.hs", list, JSONOpts{Max: 2}); err != nil {
		t.Fatalf("json: %v", err)
	}
	var out []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected truncation to 2, got %d", len(out))
	}
}
