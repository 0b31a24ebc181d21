// Package api provides the HTTP REST API server for TickerLens.
//
// It exposes endpoints for symbol resolution, full analysis runs, session
// inspection, and provider diagnostics.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/seenimoa/tickerlens/internal/analysis"
	"github.com/seenimoa/tickerlens/internal/config"
	"github.com/seenimoa/tickerlens/internal/fetch"
	"github.com/seenimoa/tickerlens/internal/logger"
	"github.com/seenimoa/tickerlens/internal/news"
	"github.com/seenimoa/tickerlens/internal/provider"
	"github.com/seenimoa/tickerlens/internal/providers"
	"github.com/seenimoa/tickerlens/internal/resolve"
	"github.com/seenimoa/tickerlens/internal/sentiment"
	"github.com/seenimoa/tickerlens/internal/session"
	"github.com/seenimoa/tickerlens/pkg/models"
)

// Server is the HTTP API server.
type Server struct {
	router      chi.Router
	cfg         *config.Config
	engine      *analysis.Engine
	store       *session.Store
	registry    *provider.Registry
	coordinator *fetch.Coordinator
}

// NewServer creates a configured API server with all routes and middleware.
func NewServer(cfg *config.Config) (*Server, error) {
	log := logger.New("api", cfg.Logging.Level, cfg.Logging.Format)

	reg := provider.NewRegistry()
	if err := providers.RegisterTo(reg, providers.Credentials{
		FMPKey:          cfg.Providers.FMPKey,
		AlphaVantageKey: cfg.Providers.AlphaVantageKey,
	}); err != nil {
		return nil, fmt.Errorf("provider setup failed: %w", err)
	}
	if err := applyPriority(reg, cfg.Providers.Priority); err != nil {
		return nil, fmt.Errorf("provider priority config: %w", err)
	}

	store, err := session.Open(cfg.Session.DBPath, log)
	if err != nil {
		return nil, fmt.Errorf("session store open failed: %w", err)
	}

	coord := fetch.NewCoordinator(reg, log, time.Duration(cfg.Fetch.AttemptTimeoutSec)*time.Second)
	engine := analysis.NewEngine(
		store,
		resolve.NewResolver(coord, log, cfg.Resolver.SimilarityThreshold),
		coord,
		news.NewAggregator(reg, coord, log, cfg.News.MaxArticles),
		sentiment.NewClassifier(0),
		log,
		cfg.News.MaxArticles,
	)

	srv := &Server{
		cfg:         cfg,
		engine:      engine,
		store:       store,
		registry:    reg,
		coordinator: coord,
	}
	srv.router = srv.buildRouter()
	return srv, nil
}

// applyPriority reorders provider fallback chains from the config. Config
// keys arrive lowercased, so capabilities match case-insensitively.
func applyPriority(reg *provider.Registry, priority map[string][]string) error {
	for key, chain := range priority {
		matched := false
		for _, cap := range provider.AllCapabilities() {
			if strings.EqualFold(string(cap), key) {
				if err := reg.SetPriority(cap, chain); err != nil {
					return err
				}
				matched = true
				break
			}
		}
		if !matched {
			return fmt.Errorf("unknown capability %q", key)
		}
	}
	return nil
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// Close releases the session store.
func (s *Server) Close() error {
	return s.store.Close()
}

// ListenAndServe starts the HTTP server with graceful shutdown.
func (s *Server) ListenAndServe(addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	<-done
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(ctx); err != nil {
		return err
	}
	return s.store.Close()
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	// CORS
	origins := []string{"*"}
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", s.handleHealth)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health (also available at /health)
		r.Get("/health", s.handleHealth)

		// Resolution and analysis
		r.Get("/resolve", s.handleResolve)
		r.Post("/analyze", s.handleAnalyze)

		// Sessions
		r.Get("/sessions", s.handleListSessions)
		r.Get("/sessions/{id}", s.handleGetSession)

		// Provider diagnostics
		r.Get("/providers", s.handleProviders)
		r.Get("/providers/attempts", s.handleAttempts)
	})

	return r
}

// ============================================================
// Request / Response types
// ============================================================

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// AnalyzeRequest is the body for POST /api/v1/analyze.
type AnalyzeRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id,omitempty"`
}

// ResolveResponse describes one symbol resolution for GET /api/v1/resolve.
type ResolveResponse struct {
	Query  string         `json:"query"`
	Symbol *models.Symbol `json:"symbol"`
	Trail  []string       `json:"trail"`
}

// ProvidersResponse describes the registered providers and their coverage.
type ProvidersResponse struct {
	Providers []provider.ProviderInfo          `json:"providers"`
	Coverage  map[provider.Capability][]string `json:"coverage"`
	Keys      []config.APIKeyStatus            `json:"keys"`
}

// ============================================================
// Handlers
// ============================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"status":    "ok",
			"providers": len(s.registry.List()),
			"time":      time.Now().UTC().Format(time.RFC3339),
		},
	})
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "q is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	resolution, err := s.engine.Resolve(ctx, query)
	if err != nil {
		var rf *resolve.ResolutionFailure
		if errors.As(err, &rf) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: ResolveResponse{
			Query:  query,
			Symbol: resolution.Symbol,
			Trail:  resolution.TrailStrings(),
		},
	})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Query == "" && req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "query or session_id is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()

	report, err := s.engine.Analyze(ctx, req.SessionID, req.Query)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrSessionNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case isResolutionFailure(err):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    report,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "session id is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	record, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    record,
	})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	records, err := s.store.List(ctx, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    records,
	})
}

func (s *Server) handleProviders(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: ProvidersResponse{
			Providers: s.registry.List(),
			Coverage:  s.registry.CapabilityCoverage(),
			Keys:      config.CheckAPIKeys(s.cfg),
		},
	})
}

func (s *Server) handleAttempts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    s.coordinator.Attempts(),
	})
}

// ============================================================
// Helpers
// ============================================================

func isResolutionFailure(err error) bool {
	var rf *resolve.ResolutionFailure
	return errors.As(err, &rf)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to write JSON response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}
