package lsp

import (
	"encoding/json"
	"fmt"

	"hlintls/internal/diag"
)

func (s *Server) handleCodeAction(msg *rpcMessage) error {
	var params codeActionParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return s.sendError(msg.ID, -32602, "invalid params")
	}
	if !s.enableRefactor {
		return s.sendResponse(msg.ID, []codeAction{})
	}
	uri := params.TextDocument.URI
	actions := make([]codeAction, 0, 4)
	for _, d := range s.diagnostics.Get(uri) {
		// Only diagnostics carrying a refactoring descriptor are
		// actionable.
		if !d.Actionable() {
			continue
		}
		if !rangesOverlap(toLSPRange(d.Range), params.Range) {
			continue
		}
		lspDiag := toLSPDiagnostics([]diag.Diagnostic{d})
		actions = append(actions, codeAction{
			Title:       fmt.Sprintf("Apply hint: %s", d.Code),
			Kind:        "quickfix",
			Diagnostics: lspDiag,
			Command: &command{
				Title:     "Apply suggested refactoring",
				Command:   CommandApplyRefact,
				Arguments: []any{uri, d.Refactoring},
			},
		})
	}
	return s.sendResponse(msg.ID, actions)
}

func (s *Server) handleExecuteCommand(msg *rpcMessage) error {
	var params executeCommandParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return s.sendError(msg.ID, -32602, "invalid params")
	}
	if params.Command != CommandApplyRefact {
		return s.sendError(msg.ID, -32601, fmt.Sprintf("unknown command %q", params.Command))
	}
	if !s.enableRefactor || s.apply == nil {
		return s.sendError(msg.ID, -32603, "refactoring support is disabled")
	}
	if len(params.Arguments) != 2 {
		return s.sendError(msg.ID, -32602, "expected [uri, descriptor] arguments")
	}
	var uri, descriptor string
	if err := json.Unmarshal(params.Arguments[0], &uri); err != nil {
		return s.sendError(msg.ID, -32602, "invalid document argument")
	}
	if err := json.Unmarshal(params.Arguments[1], &descriptor); err != nil {
		return s.sendError(msg.ID, -32602, "invalid descriptor argument")
	}
	if err := s.sendResponse(msg.ID, nil); err != nil {
		return err
	}
	s.performApply(uri, descriptor)
	return nil
}

// performApply runs the refactor tool on the document's current text and
// applies the rewritten source as one whole-document edit. The host's
// edit machinery makes the replacement a single undoable operation.
func (s *Server) performApply(uri, descriptor string) {
	s.mu.Lock()
	doc, ok := s.docs[uri]
	if !ok {
		s.mu.Unlock()
		return
	}
	text := doc.text
	ctx := s.baseCtx
	s.mu.Unlock()

	res, err := s.apply(ctx, uriToPath(uri), text, descriptor)
	if err != nil {
		if sendErr := s.sendShowMessage(messageError, fmt.Sprintf("refactor failed: %v", err)); sendErr != nil {
			s.logf("failed to report refactor error: %v", sendErr)
		}
		return
	}
	if !res.Applied {
		// The tool ran but had nothing to do. Not an error.
		if sendErr := s.sendShowMessage(messageInfo, "hlint: no refactoring to apply"); sendErr != nil {
			s.logf("failed to report refactor result: %v", sendErr)
		}
		return
	}

	edit := applyWorkspaceEditParams{
		Label: "Apply hlint suggestion",
		Edit: workspaceEdit{
			Changes: map[string][]textEdit{
				uri: {
					{
						Range: lspRange{
							Start: position{Line: 0, Character: 0},
							End:   endPosition(text),
						},
						NewText: res.Text,
					},
				},
			},
		},
	}
	if err := s.sendRequest("workspace/applyEdit", edit); err != nil {
		s.logf("failed to request edit: %v", err)
		return
	}

	// The fix may have resolved or introduced findings; re-lint with the
	// rewritten text. The client's own didChange for the applied edit
	// coalesces with this through the per-document debounce.
	s.mu.Lock()
	if doc, ok := s.docs[uri]; ok {
		doc.text = res.Text
		doc.dirty = true
		s.scheduleLintLocked(uri)
	}
	s.mu.Unlock()
}

func rangesOverlap(a, b lspRange) bool {
	if positionBefore(b.End, a.Start) {
		return false
	}
	if positionBefore(a.End, b.Start) {
		return false
	}
	return true
}

func positionBefore(a, b position) bool {
	if a.Line != b.Line {
		return a.Line < b.Line
	}
	return a.Character < b.Character
}
