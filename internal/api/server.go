package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgallion1/binkread/internal/config"
	"github.com/dgallion1/binkread/internal/llm"
	"github.com/dgallion1/binkread/internal/pipeline"
)

// Server is the HTTP front end: the upload form plus the JSON API.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	summarizer   *pipeline.Summarizer
	stats        *llm.LLMStats
	metrics      http.Handler
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server. metrics may be nil.
func NewServer(orch *pipeline.Orchestrator, summarizer *pipeline.Summarizer, stats *llm.LLMStats, metrics http.Handler, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		summarizer:   summarizer,
		stats:        stats,
		metrics:      metrics,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)
	r.Get("/", s.handleIndex)
	r.Post("/upload", s.handleUpload)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/api", func(r chi.Router) {
		if s.cfg.APIKey != "" {
			r.Use(AuthMiddleware(s.cfg.APIKey, s.log))
		}

		r.Post("/summaries", s.handleSubmitSummary)
		r.Get("/summaries/{jobID}", s.handleSummaryStatus)
		r.Post("/summarize", s.handleSummarize)
		r.Get("/stats/llm", s.handleLLMStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
