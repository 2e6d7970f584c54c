package lsp

import (
	"encoding/json"
	"time"
)

func (s *Server) handleDidChangeConfiguration(msg *rpcMessage) error {
	if len(msg.Params) == 0 {
		return nil
	}
	var params didChangeConfigurationParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return nil
	}
	s.applySettings(params.Settings)
	return nil
}

func (s *Server) applySettings(raw json.RawMessage) {
	if len(raw) == 0 {
		return
	}
	var settings lspSettings
	if err := json.Unmarshal(raw, &settings); err != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if settings.HLint.Flags != nil {
		s.extraFlags = append([]string(nil), (*settings.HLint.Flags)...)
	}
	if settings.HLint.DebounceMs != nil && *settings.HLint.DebounceMs > 0 {
		s.debounce = time.Duration(*settings.HLint.DebounceMs) * time.Millisecond
	}
}
