package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/binkread/internal/pipeline"
)

// handleSubmitSummary queues a document and returns immediately.
func (s *Server) handleSubmitSummary(w http.ResponseWriter, r *http.Request) {
	filename, data, err := s.readUpload(w, r, "file")
	if err != nil {
		code, msg := classify(err)
		jsonError(w, msg, code)
		return
	}

	job := pipeline.NewJob(filename, data)
	if err := s.orchestrator.Submit(job); err != nil {
		code, msg := classify(err)
		jsonError(w, msg, code)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"job_id":   job.ID,
		"status":   pipeline.StatusQueued,
		"poll_url": fmt.Sprintf("/api/summaries/%s", job.ID),
	})
}

func (s *Server) handleSummaryStatus(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}

// handleSummarize summarizes a document within the request.
func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	filename, data, err := s.readUpload(w, r, "file")
	if err != nil {
		code, msg := classify(err)
		jsonError(w, msg, code)
		return
	}

	out, err := s.summarizer.SummarizeDocument(r.Context(), data, filename)
	if err != nil {
		code, msg := classify(err)
		if code >= 500 {
			s.log.Error("summarize failed", "filename", filename, "error", err)
		}
		jsonError(w, msg, code)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}
