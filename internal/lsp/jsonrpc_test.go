package lsp

import (
	"bufio"
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

func TestFramingRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	payload := []byte(`{"jsonrpc":"2.0","method":"initialized"}`)
	if err := writeMessage(&buf, payload); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "Content-Length: 40\r\n\r\n") {
		t.Fatalf("unexpected framing: %q", buf.String())
	}
	got, err := readMessage(bufio.NewReader(&buf))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("payload = %q, want %q", got, payload)
	}
}

func TestReadMessageIgnoresContentType(t *testing.T) {
	raw := "Content-Type: application/vscode-jsonrpc; charset=utf-8\r\nContent-Length: 2\r\n\r\n{}"
	got, err := readMessage(bufio.NewReader(strings.NewReader(raw)))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "{}" {
		t.Fatalf("payload = %q", got)
	}
}

func TestReadMessageRejectsBadFraming(t *testing.T) {
	cases := map[string]string{
		"no content length": "Content-Type: text\r\n\r\n{}",
		"malformed header":  "not a header\r\nContent-Length: 2\r\n\r\n{}",
		"negative length":   "Content-Length: -5\r\n\r\n{}",
		"non-numeric":       "Content-Length: many\r\n\r\n{}",
	}
	for name, raw := range cases {
		if _, err := readMessage(bufio.NewReader(strings.NewReader(raw))); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}

func TestReadMessageTruncatedPayload(t *testing.T) {
	raw := "Content-Length: 10\r\n\r\n{}"
	if _, err := readMessage(bufio.NewReader(strings.NewReader(raw))); err == nil {
		t.Fatal("expected an error for a short payload")
	}
}

func TestURIToPath(t *testing.T) {
	sep := string(filepath.Separator)
	cases := map[string]string{
		"file:///tmp/Main.hs":          sep + filepath.Join("tmp", "Main.hs"),
		"file:///tmp/My%20Project/a.hs": sep + filepath.Join("tmp", "My Project", "a.hs"),
		"untitled:Untitled-1":          "",
		"":                             "",
	}
	for uri, want := range cases {
		if got := uriToPath(uri); got != want {
			t.Errorf("uriToPath(%q) = %q, want %q", uri, got, want)
		}
	}
}
