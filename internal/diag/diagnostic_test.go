package diag

import (
	"testing"

	"hlintls/internal/hlint"
)

func TestSeverityMappingTotal(t *testing.T) {
	cases := map[string]Severity{
		"Suggestion": SevHint,
		"Warning":    SevWarning,
		"Error":      SevError,
		"Ignore":     SevInformation,
		"":           SevInformation,
		"Bogus":      SevInformation,
	}
	for name, want := range cases {
		if got := SeverityFor(name); got != want {
			t.Errorf("SeverityFor(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestFromIdeaCoordinateTranslation(t *testing.T) {
	idea := hlint.Idea{
		Severity:    "Warning",
		Hint:        "Redundant bracket",
		File:        "-",
		StartLine:   3,
		StartColumn: 5,
		EndLine:     3,
		EndColumn:   20,
		To:          "foo bar",
	}
	d := FromIdea(idea)
	if d.Range.Start.Line != 2 || d.Range.Start.Col != 4 {
		t.Fatalf("unexpected start: %+v", d.Range.Start)
	}
	if d.Range.End.Line != 2 || d.Range.End.Col != 19 {
		t.Fatalf("unexpected end: %+v", d.Range.End)
	}
	if d.Severity != SevWarning {
		t.Fatalf("unexpected severity: %v", d.Severity)
	}
	if d.Message != "Redundant bracket. Replace with foo bar" {
		t.Fatalf("unexpected message: %q", d.Message)
	}
}

func TestFromIdeaMessageWithoutReplacement(t *testing.T) {
	d := FromIdea(hlint.Idea{Hint: "Parse error", Severity: "Error", StartLine: 1, StartColumn: 1, EndLine: 1, EndColumn: 1})
	if d.Message != "Parse error" {
		t.Fatalf("unexpected message: %q", d.Message)
	}
	if d.Actionable() {
		t.Fatal("diagnostic without descriptor must not be actionable")
	}
}

func TestFromIdeasFiltersByFile(t *testing.T) {
	ideas := []hlint.Idea{
		{File: "-", Hint: "A", StartLine: 1, StartColumn: 1, EndLine: 1, EndColumn: 2},
		{File: "/a.hs", Hint: "B", StartLine: 1, StartColumn: 1, EndLine: 1, EndColumn: 2},
		{File: "/b.hs", Hint: "C", StartLine: 1, StartColumn: 1, EndLine: 1, EndColumn: 2},
	}
	got := FromIdeas(ideas, "-")
	if len(got) != 1 || got[0].Code != "A" {
		t.Fatalf("expected only the stdin idea, got %+v", got)
	}
}

func TestCollectionReplacement(t *testing.T) {
	c := NewCollection()
	c.Set("doc", []Diagnostic{{Code: "first"}, {Code: "second"}})
	c.Set("doc", []Diagnostic{{Code: "third"}})
	got := c.Get("doc")
	if len(got) != 1 || got[0].Code != "third" {
		t.Fatalf("expected wholesale replacement, got %+v", got)
	}
}

func TestCollectionClearOnFailure(t *testing.T) {
	c := NewCollection()
	c.Set("doc", []Diagnostic{{Code: "stale"}})
	c.Clear("doc")
	if got := c.Get("doc"); len(got) != 0 {
		t.Fatalf("expected empty set after clear, got %+v", got)
	}
}

func TestCollectionDeleteOnClose(t *testing.T) {
	c := NewCollection()
	c.Set("doc", []Diagnostic{{Code: "x"}})
	c.Delete("doc")
	if got := c.Get("doc"); len(got) != 0 {
		t.Fatalf("expected no diagnostics after delete, got %+v", got)
	}
	if len(c.Docs()) != 0 {
		t.Fatal("expected document to be forgotten")
	}
}
