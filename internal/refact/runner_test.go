package refact

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func fakeRefactor(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell-script fixtures require a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "refactor")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write fake refactor: %v", err)
	}
	return path
}

func TestEnvelope(t *testing.T) {
	got := Envelope(`[Replace {rtype = Expr}]`)
	want := `[("", [Replace {rtype = Expr}])]`
	if got != want {
		t.Fatalf("envelope = %q, want %q", got, want)
	}
}

func TestApplyStdoutMode(t *testing.T) {
	// Echoes the buffer back upper-cased plus the synthetic newline.
	tool := fakeRefactor(t, "tr a-z A-Z\nprintf '\\n'\n")
	r := NewRunner(tool)
	res, err := r.Apply(context.Background(), "", "main = foo\n", "[Replace]")
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if !res.Applied {
		t.Fatal("expected applied")
	}
	if res.Text != "MAIN = FOO\n" {
		t.Fatalf("unexpected rewritten text: %q", res.Text)
	}
}

func TestApplyEmptyOutputNotApplied(t *testing.T) {
	tool := fakeRefactor(t, "cat >/dev/null\n")
	r := NewRunner(tool)
	res, err := r.Apply(context.Background(), "", "main = foo\n", "[Replace]")
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if res.Applied {
		t.Fatal("expected not applied for empty output")
	}
}

func TestApplySoleNewlineNotApplied(t *testing.T) {
	tool := fakeRefactor(t, "cat >/dev/null\nprintf '\\n'\n")
	r := NewRunner(tool)
	res, err := r.Apply(context.Background(), "", "main = foo\n", "[Replace]")
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if res.Applied {
		t.Fatal("expected not applied for a lone synthetic newline")
	}
}

func TestApplyReceivesEnvelope(t *testing.T) {
	dir := t.TempDir()
	captured := filepath.Join(dir, "captured")
	tool := fakeRefactor(t, `while [ $# -gt 0 ]; do
  if [ "$1" = "--refact-file" ]; then cp "$2" `+captured+`; shift; fi
  shift
done
cat
printf '\n'
`)
	r := NewRunner(tool)
	if _, err := r.Apply(context.Background(), "", "src\n", "[Delete {pos = 1}]"); err != nil {
		t.Fatalf("apply: %v", err)
	}
	data, err := os.ReadFile(captured)
	if err != nil {
		t.Fatalf("read captured refact file: %v", err)
	}
	if string(data) != `[("", [Delete {pos = 1}])]` {
		t.Fatalf("unexpected envelope: %q", data)
	}
}

func TestApplyInPlaceMode(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "Main.hs")
	if err := os.WriteFile(target, []byte("main = (foo)\n"), 0o644); err != nil {
		t.Fatalf("write target: %v", err)
	}
	tool := fakeRefactor(t, `file="$1"
printf 'main = foo\n' > "$file"
`)
	r := NewRunner(tool)
	r.Mode = ModeInPlace
	res, err := r.Apply(context.Background(), target, "", "[Replace]")
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if !res.Applied {
		t.Fatal("expected applied")
	}
	data, _ := os.ReadFile(target)
	if string(data) != "main = foo\n" {
		t.Fatalf("file not rewritten: %q", data)
	}
}

func TestApplyInPlaceRequiresPath(t *testing.T) {
	r := NewRunner("refactor")
	r.Mode = ModeInPlace
	if _, err := r.Apply(context.Background(), "", "", "[Replace]"); err == nil {
		t.Fatal("expected error for in-place mode without path")
	}
}

func TestApplyEmptyDescriptor(t *testing.T) {
	r := NewRunner("refactor")
	if _, err := r.Apply(context.Background(), "", "src", "   "); err == nil {
		t.Fatal("expected error for empty descriptor")
	}
}

func TestApplyToolFailure(t *testing.T) {
	tool := fakeRefactor(t, "printf 'bad descriptor' >&2\nexit 1\n")
	r := NewRunner(tool)
	_, err := r.Apply(context.Background(), "", "src", "[Replace]")
	if err == nil || !strings.Contains(err.Error(), "bad descriptor") {
		t.Fatalf("expected failure carrying stderr, got %v", err)
	}
}

func TestTrimSyntheticNewline(t *testing.T) {
	cases := map[string]string{
		"out\n":     "out",
		"out\n\n":   "out\n",
		"out":       "out",
		"\n":        "",
		"out\r\n":   "out",
		"":          "",
		"a\nb\n":    "a\nb",
	}
	for in, want := range cases {
		if got := trimSyntheticNewline(in); got != want {
			t.Errorf("trim(%q) = %q, want %q", in, got, want)
		}
	}
}
