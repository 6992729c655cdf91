// Package server exposes the pipeline steps as a JSON API for the upload
// wizard. Each endpoint is an independent request/response operation; clients
// pass each step's output into the next.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/sheetsync/internal/cache"
	"github.com/sells-group/sheetsync/internal/config"
	"github.com/sells-group/sheetsync/internal/extract"
	"github.com/sells-group/sheetsync/internal/process"
	"github.com/sells-group/sheetsync/pkg/sheets"
)

// Server holds the dependencies shared by all handlers. The sheets client is
// initialized once and reused across requests.
type Server struct {
	cfg       *config.Config
	client    sheets.Client
	sessions  *cache.Store
	extractor *extract.Engine
	processor *process.Processor
}

// New builds a server. The extraction rule set comes from the configured
// rules file when present, otherwise the built-in defaults.
func New(cfg *config.Config, client sheets.Client, sessions *cache.Store) (*Server, error) {
	var rules []extract.Rule
	if cfg.Extract.RulesFile != "" {
		loaded, err := extract.LoadRules(cfg.Extract.RulesFile)
		if err != nil {
			return nil, err
		}
		rules = loaded
	}

	return &Server{
		cfg:       cfg,
		client:    client,
		sessions:  sessions,
		extractor: extract.NewEngine(rules, cfg.Extract.MinConfidence),
		processor: process.New(cfg.Companies),
	}, nil
}

// Handler builds the HTTP routing tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.Server.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/ingest", s.handleIngest)
		r.Post("/extract", s.handleExtract)
		r.Post("/detect", s.handleDetect)
		r.Post("/process", s.handleProcess)
		r.Post("/configure", s.handleConfigure)
		r.Post("/sync", s.handleSync)
	})

	return r
}

// requestLogger emits one line per request through the global zap logger.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		zap.L().Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}
