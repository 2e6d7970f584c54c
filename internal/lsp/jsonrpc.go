package lsp

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Stdio framing: a message is a header block terminated by a blank line,
// then exactly Content-Length bytes of JSON payload. Content-Type is
// permitted and ignored; a header line that is not "name: value" shaped
// means the stream is out of sync and reading cannot continue.

const contentLengthHeader = "Content-Length"

func readMessage(r *bufio.Reader) ([]byte, error) {
	length := -1
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return nil, err
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("lsp: malformed header line %q", line)
		}
		if !strings.EqualFold(strings.TrimSpace(name), contentLengthHeader) {
			continue
		}
		value = strings.TrimSpace(value)
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("lsp: bad %s %q", contentLengthHeader, value)
		}
		length = n
	}
	if length < 0 {
		return nil, errors.New("lsp: message without " + contentLengthHeader)
	}
	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("lsp: truncated message payload: %w", err)
	}
	return payload, nil
}

func writeMessage(w io.Writer, payload []byte) error {
	if _, err := fmt.Fprintf(w, "%s: %d\r\n\r\n", contentLengthHeader, len(payload)); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}
