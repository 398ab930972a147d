// Package api is the HTTP surface of the test case generator: requirement
// extraction from uploads, model-backed generation and modification, and
// CSV export.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/dgallion1/testgen/internal/config"
	"github.com/dgallion1/testgen/internal/refdoc"
	"github.com/dgallion1/testgen/internal/testcase"
	"github.com/dgallion1/testgen/internal/testgen"
)

// TestCaseService is the generation backend the handlers call.
type TestCaseService interface {
	Generate(ctx context.Context, reqs []testcase.Requirement, testabilityType string, refPDF []byte) ([]testcase.TestCase, error)
	Modify(ctx context.Context, cases []testcase.TestCase, instruction string, split bool, atts []refdoc.Attachment) ([]testcase.TestCase, error)
}

// Server is the HTTP API server.
type Server struct {
	router chi.Router
	svc    TestCaseService
	stats  *testgen.Stats
	log    *slog.Logger
	cfg    config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(svc TestCaseService, stats *testgen.Stats, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		svc:   svc,
		stats: stats,
		log:   log,
		cfg:   cfg,
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
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Public endpoint.
	r.Get("/api/health", s.handleHealth)

	// Auth only engages when an API key is configured.
	r.Group(func(r chi.Router) {
		if s.cfg.APIKey != "" {
			r.Use(AuthMiddleware(s.cfg.APIKey, s.log))
		}

		r.Post("/api/extract", s.handleExtract)
		r.Post("/api/generate-testcases", s.handleGenerateTestCases)
		r.Post("/api/modify-testcases", s.handleModifyTestCases)
		r.Post("/api/download-selected", s.handleDownloadSelected)
		r.Get("/api/stats/llm", s.handleLLMStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{
		"status": "ok",
		"model":  s.cfg.Model,
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
