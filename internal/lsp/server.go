// Package lsp serves the Language Server Protocol over stdio, driving
// hlint against open Haskell documents and applying suggested
// refactorings on request.
package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"hlintls/internal/diag"
	"hlintls/internal/hlint"
	"hlintls/internal/refact"
)

var (
	// ErrExit signals a graceful shutdown after receiving "exit".
	ErrExit = errors.New("lsp exit")
	// ErrExitWithoutShutdown signals an "exit" without a preceding "shutdown".
	ErrExitWithoutShutdown = errors.New("lsp exit without shutdown")
)

// CommandApplyRefact is the workspace command applying one refactoring
// descriptor to a document.
const CommandApplyRefact = "hlint.applyRefact"

// LintFunc runs one lint cycle for a document snapshot.
type LintFunc func(ctx context.Context, snap hlint.Snapshot, extraFlags []string) ([]hlint.Idea, error)

// ApplyFunc invokes the refactor tool with one descriptor against the
// current buffer text.
type ApplyFunc func(ctx context.Context, path, text, descriptor string) (refact.Result, error)

// ServerOptions configures server behavior.
type ServerOptions struct {
	// Debounce is the per-document quiet period before a lint dispatches.
	Debounce time.Duration
	// Lint runs the external linter. Required.
	Lint LintFunc
	// Apply runs the external refactor tool. Required unless refactoring
	// is disabled.
	Apply ApplyFunc
	// StdinLint streams buffers on stdin. When false, only saved
	// documents existing on disk are linted.
	StdinLint bool
	// EnableRefactor registers the code-action provider and the apply
	// command. Disabled when the refactor tool failed its version gate.
	EnableRefactor bool
	// RefactorWarning, when non-empty, is shown to the user once after
	// initialization. Used to explain a disabled refactor tool.
	RefactorWarning string
}

// document is the tracked state of one open Haskell document.
type document struct {
	// gen distinguishes successive opens of the same URI. The counters
	// below restart per open, so a completion must match the generation
	// as well as the sequence, or a cycle surviving a close/reopen could
	// collide with the new document's numbering.
	gen     uint64
	text    string
	version int
	// dirty is set on unsaved edits; the save-only lint variant skips
	// dirty documents until the next save.
	dirty   bool
	pending *time.Timer
	// seq is the latest dispatched lint cycle for this document. A
	// completion publishes only if it still carries this number.
	seq uint64
	// publishedSeq is the newest cycle whose result was published.
	publishedSeq uint64
}

// Server handles stdio JSON-RPC for the hlint language server.
type Server struct {
	in     *bufio.Reader
	out    *bufio.Writer
	sendMu sync.Mutex

	mu          sync.Mutex
	docs        map[string]*document
	diagnostics *diag.Collection
	debounce    time.Duration
	extraFlags  []string

	shutdownRequested bool
	nextRequestID     int64
	nextGen           uint64
	baseCtx           context.Context

	lint            LintFunc
	apply           ApplyFunc
	stdinLint       bool
	enableRefactor  bool
	refactorWarning string
}

// NewServer constructs a server reading requests from in and writing
// responses to out.
func NewServer(in io.Reader, out io.Writer, opts ServerOptions) *Server {
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = 200 * time.Millisecond
	}
	return &Server{
		in:              bufio.NewReader(in),
		out:             bufio.NewWriter(out),
		docs:            make(map[string]*document),
		diagnostics:     diag.NewCollection(),
		debounce:        debounce,
		lint:            opts.Lint,
		apply:           opts.Apply,
		stdinLint:       opts.StdinLint,
		enableRefactor:  opts.EnableRefactor,
		refactorWarning: opts.RefactorWarning,
	}
}

// Diagnostics exposes the per-document diagnostic state.
func (s *Server) Diagnostics() *diag.Collection {
	return s.diagnostics
}

// Run serves LSP requests until shutdown.
func (s *Server) Run(ctx context.Context) error {
	s.baseCtx = ctx
	for {
		payload, err := readMessage(s.in)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		var msg rpcMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			s.logf("failed to parse message: %v", err)
			continue
		}
		if msg.Method == "" {
			// Response to a server-initiated request, e.g. applyEdit.
			continue
		}
		if err := s.handleMessage(&msg); err != nil {
			return err
		}
	}
}

func (s *Server) handleMessage(msg *rpcMessage) error {
	switch msg.Method {
	case "initialize":
		return s.handleInitialize(msg)
	case "initialized":
		return s.handleInitialized(msg)
	case "shutdown":
		return s.handleShutdown(msg)
	case "exit":
		if s.shutdownRequested {
			return ErrExit
		}
		return ErrExitWithoutShutdown
	case "workspace/didChangeConfiguration":
		return s.handleDidChangeConfiguration(msg)
	case "workspace/executeCommand":
		return s.handleExecuteCommand(msg)
	case "textDocument/didOpen":
		return s.handleDidOpen(msg)
	case "textDocument/didChange":
		return s.handleDidChange(msg)
	case "textDocument/didSave":
		return s.handleDidSave(msg)
	case "textDocument/didClose":
		return s.handleDidClose(msg)
	case "textDocument/codeAction":
		return s.handleCodeAction(msg)
	default:
		if len(msg.ID) > 0 {
			return s.sendError(msg.ID, -32601, "method not found")
		}
		return nil
	}
}

func (s *Server) handleInitialize(msg *rpcMessage) error {
	var params initializeParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, -32602, "invalid params")
		}
	}
	result := initializeResult{
		Capabilities: serverCapabilities{
			TextDocumentSync: textDocumentSyncOptions{
				OpenClose: true,
				Change:    2,
				Save: saveOptions{
					IncludeText: true,
				},
			},
		},
	}
	if s.enableRefactor {
		result.Capabilities.CodeActionProvider = &codeActionOptions{
			CodeActionKinds: []string{"quickfix"},
		}
		result.Capabilities.ExecuteCommandProvider = &executeCommandOptions{
			Commands: []string{CommandApplyRefact},
		}
	}
	return s.sendResponse(msg.ID, result)
}

func (s *Server) handleInitialized(*rpcMessage) error {
	if s.refactorWarning != "" {
		return s.sendShowMessage(messageWarning, s.refactorWarning)
	}
	return nil
}

func (s *Server) handleShutdown(msg *rpcMessage) error {
	s.mu.Lock()
	s.shutdownRequested = true
	for uri, doc := range s.docs {
		if doc.pending != nil {
			doc.pending.Stop()
		}
		delete(s.docs, uri)
	}
	s.mu.Unlock()
	return s.sendResponse(msg.ID, nil)
}

func (s *Server) handleDidOpen(msg *rpcMessage) error {
	var params didOpenTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := params.TextDocument.URI
	if uri == "" || !isHaskellDocument(params.TextDocument.LanguageID, uri) {
		return nil
	}
	s.mu.Lock()
	s.nextGen++
	s.docs[uri] = &document{
		gen:     s.nextGen,
		text:    params.TextDocument.Text,
		version: params.TextDocument.Version,
	}
	s.scheduleLintLocked(uri)
	s.mu.Unlock()
	return nil
}

func (s *Server) handleDidChange(msg *rpcMessage) error {
	var params didChangeTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := params.TextDocument.URI
	s.mu.Lock()
	doc, ok := s.docs[uri]
	if !ok {
		s.mu.Unlock()
		return nil
	}
	doc.text = applyChanges(doc.text, params.ContentChanges)
	doc.version = params.TextDocument.Version
	doc.dirty = true
	// Without stdin streaming the buffer cannot be linted until saved.
	if s.stdinLint {
		s.scheduleLintLocked(uri)
	}
	s.mu.Unlock()
	return nil
}

func (s *Server) handleDidSave(msg *rpcMessage) error {
	var params didSaveTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := params.TextDocument.URI
	s.mu.Lock()
	doc, ok := s.docs[uri]
	if !ok {
		s.mu.Unlock()
		return nil
	}
	if params.Text != nil {
		doc.text = *params.Text
	}
	doc.dirty = false
	s.scheduleLintLocked(uri)
	s.mu.Unlock()
	return nil
}

func (s *Server) handleDidClose(msg *rpcMessage) error {
	var params didCloseTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := params.TextDocument.URI
	s.mu.Lock()
	doc, ok := s.docs[uri]
	if ok {
		if doc.pending != nil {
			doc.pending.Stop()
		}
		delete(s.docs, uri)
	}
	s.mu.Unlock()
	if !ok {
		return nil
	}
	// Clear immediately, no debounce. In-flight results for this
	// document are discarded on arrival since the document is gone.
	s.diagnostics.Delete(uri)
	if err := s.sendPublish(uri, nil); err != nil {
		s.logf("failed to clear diagnostics: %v", err)
	}
	return nil
}

// uriToPath resolves a file: URI to an absolute filesystem path. Any
// other scheme yields "", which callers treat as "no on-disk location":
// the save-only lint variant skips such documents and the refactor tool
// receives no target path.
func uriToPath(uri string) string {
	if uri == "" {
		return ""
	}
	parsed, err := url.Parse(uri)
	if err != nil {
		return ""
	}
	var path string
	switch parsed.Scheme {
	case "file":
		path = parsed.Path
	case "":
		// Some hosts send bare paths.
		path = uri
	default:
		return ""
	}
	if unescaped, err := url.PathUnescape(path); err == nil {
		path = unescaped
	}
	path = filepath.FromSlash(path)
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return path
}

func isHaskellDocument(languageID, uri string) bool {
	switch languageID {
	case "haskell", "lhaskell", "literate haskell":
		return true
	case "":
		return strings.HasSuffix(uri, ".hs") || strings.HasSuffix(uri, ".lhs")
	}
	return false
}

func (s *Server) sendResponse(id json.RawMessage, result any) error {
	msg := map[string]any{
		"jsonrpc": "2.0",
		"id":      json.RawMessage(id),
		"result":  result,
	}
	return s.send(msg)
}

func (s *Server) sendError(id json.RawMessage, code int, message string) error {
	msg := map[string]any{
		"jsonrpc": "2.0",
		"id":      json.RawMessage(id),
		"error": rpcError{
			Code:    code,
			Message: message,
		},
	}
	return s.send(msg)
}

func (s *Server) sendRequest(method string, params any) error {
	s.mu.Lock()
	s.nextRequestID++
	id := s.nextRequestID
	s.mu.Unlock()
	msg := map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"method":  method,
		"params":  params,
	}
	return s.send(msg)
}

func (s *Server) sendPublish(uri string, list []lspDiagnostic) error {
	if list == nil {
		list = []lspDiagnostic{}
	}
	msg := map[string]any{
		"jsonrpc": "2.0",
		"method":  "textDocument/publishDiagnostics",
		"params": publishDiagnosticsParams{
			URI:         uri,
			Diagnostics: list,
		},
	}
	return s.send(msg)
}

func (s *Server) sendShowMessage(kind int, text string) error {
	msg := map[string]any{
		"jsonrpc": "2.0",
		"method":  "window/showMessage",
		"params": showMessageParams{
			Type:    kind,
			Message: text,
		},
	}
	return s.send(msg)
}

func (s *Server) send(msg any) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	if err := writeMessage(s.out, payload); err != nil {
		return err
	}
	return s.out.Flush()
}

func (s *Server) logf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "hlintls: "+format+"\n", args...)
}
