package api

import (
	"encoding/json"
	"net/http"
)

func (s *Server) handleLLMStats(w http.ResponseWriter, r *http.Request) {
	if s.stats == nil {
		jsonError(w, "llm stats unavailable", http.StatusServiceUnavailable)
		return
	}

	resp := map[string]any{
		"provider": s.cfg.SummarizerProvider,
		"model":    s.cfg.SummarizerModel,
		"stats":    s.stats.Snapshot(),
	}
	n, enabled, err := s.summarizer.CachedSummaries(r.Context())
	if err != nil {
		s.log.Warn("count cached summaries", "error", err)
	}
	if enabled && err == nil {
		resp["cached_summaries"] = n
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
