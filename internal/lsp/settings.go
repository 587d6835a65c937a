package lsp

import (
	"encoding/json"

	"codeact/internal/codeaction"
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

// applySettings reads the "codeact" section. The client disallow list is
// merged with the one from the config file.
func (s *Server) applySettings(raw json.RawMessage) {
	if len(raw) == 0 {
		return
	}
	var settings lspSettings
	if err := json.Unmarshal(raw, &settings); err != nil {
		s.logf("ignoring malformed settings: %v", err)
		return
	}
	s.mu.Lock()
	if settings.Codeact.LSP.Trace != nil {
		s.traceLSP = *settings.Codeact.LSP.Trace
	}
	changed := settings.Codeact.Providers.Disallow != nil
	if changed {
		s.clientDisallow = append([]string(nil), (*settings.Codeact.Providers.Disallow)...)
	}
	ids := append(append([]string(nil), s.baseDisallow...), s.clientDisallow...)
	s.mu.Unlock()
	if changed {
		s.service.SetPolicy(codeaction.NewDisallowList(ids...))
	}
}
