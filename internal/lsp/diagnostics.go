package lsp

import (
	"fmt"
	"os"
	"time"

	"hlintls/internal/diag"
	"hlintls/internal/hlint"
)

// scheduleLintLocked dispatches a debounced lint cycle for uri. The
// caller holds s.mu.
//
// Each dispatch bumps the document's sequence counter; a burst of events
// restarts the timer so only the last dispatch fires, and any slower
// already-running cycle is discarded at completion because its sequence
// is no longer the document's latest. The generation pins the cycle to
// this particular open of the URI: sequence numbers restart per open, so
// without it a cycle surviving a close/reopen could match the new
// document's counters.
func (s *Server) scheduleLintLocked(uri string) {
	doc, ok := s.docs[uri]
	if !ok {
		return
	}
	doc.seq++
	gen := doc.gen
	seq := doc.seq
	if doc.pending != nil {
		doc.pending.Stop()
	}
	doc.pending = time.AfterFunc(s.debounce, func() {
		s.runLint(uri, gen, seq)
	})
}

func (s *Server) runLint(uri string, gen, seq uint64) {
	s.mu.Lock()
	doc, ok := s.docs[uri]
	if !ok || gen != doc.gen || seq != doc.seq {
		s.mu.Unlock()
		return
	}
	snap := hlint.Snapshot{
		Path:     uriToPath(uri),
		Text:     doc.text,
		UseStdin: s.stdinLint,
	}
	dirty := doc.dirty
	flags := append([]string(nil), s.extraFlags...)
	ctx := s.baseCtx
	s.mu.Unlock()

	if !s.stdinLint {
		// Save-only variant: dirty or unsaved documents are silently
		// skipped until the next save.
		if dirty || snap.Path == "" {
			return
		}
		if _, err := os.Stat(snap.Path); err != nil {
			return
		}
	}

	ideas, lintErr := s.lint(ctx, snap, flags)

	// The completion decision, the collection update, and the publish are
	// one critical section so a stale cycle can never overwrite a
	// fresher one on the wire.
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok = s.docs[uri]
	if !ok {
		// Closed while in flight; the close already cleared state.
		return
	}
	if gen != doc.gen {
		// The URI was closed and reopened while this cycle ran; its
		// result belongs to the previous open.
		return
	}
	if seq != doc.seq || seq <= doc.publishedSeq {
		return
	}
	doc.publishedSeq = seq

	if lintErr != nil {
		// Stale diagnostics must not survive a failed cycle.
		s.diagnostics.Clear(uri)
		if err := s.sendPublish(uri, nil); err != nil {
			s.logf("failed to clear diagnostics: %v", err)
		}
		if err := s.sendShowMessage(messageError, fmt.Sprintf("hlint failed: %v", lintErr)); err != nil {
			s.logf("failed to report lint error: %v", err)
		}
		return
	}

	target := hlint.StdinFile
	if !snap.UseStdin {
		target = snap.Path
	}
	diags := diag.FromIdeas(ideas, target)
	s.diagnostics.Set(uri, diags)
	if err := s.sendPublish(uri, toLSPDiagnostics(diags)); err != nil {
		s.logf("failed to publish diagnostics: %v", err)
	}
}

func toLSPDiagnostics(diags []diag.Diagnostic) []lspDiagnostic {
	out := make([]lspDiagnostic, 0, len(diags))
	for _, d := range diags {
		out = append(out, lspDiagnostic{
			Range:    toLSPRange(d.Range),
			Severity: int(d.Severity),
			Code:     d.Code,
			Source:   diag.Source,
			Message:  d.Message,
			Data:     d.Refactoring,
		})
	}
	return out
}

func toLSPRange(r diag.Range) lspRange {
	return lspRange{
		Start: position{Line: r.Start.Line, Character: r.Start.Col},
		End:   position{Line: r.End.Line, Character: r.End.Col},
	}
}
