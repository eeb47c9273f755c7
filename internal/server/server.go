// Package server provides the companion HTTP API the browser extension talks to. It runs the same
// scrape, analyze and save pipeline as the CLI, against page snapshots or live URLs.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/felixge/httpsnoop"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/careerstack/internal/db"
	"github.com/jonathan/careerstack/internal/pipeline"
	"github.com/jonathan/careerstack/internal/selectors"
	"github.com/jonathan/careerstack/internal/server/middleware"
	"github.com/jonathan/careerstack/internal/server/ratelimit"
)

// maxBodyBytes bounds request bodies. Page snapshots of long postings run to a few megabytes.
const maxBodyBytes = 8 << 20

// SelectorProvider serves and refreshes the remote selector document.
type SelectorProvider interface {
	Get(ctx context.Context) (*selectors.Document, selectors.Source)
	Refresh(ctx context.Context) (*selectors.Document, error)
}

// History is the save history the API records into and lists from.
type History interface {
	pipeline.History
	ListSavedJobs(ctx context.Context, filters db.SavedJobFilters) ([]db.SavedJob, error)
	DeleteSavedJob(ctx context.Context, id uuid.UUID) error
	ListRuns(ctx context.Context, limit int) ([]db.Run, error)
}

// Config holds server configuration
type Config struct {
	Addr string
	// AllowedOrigins lists browser origins allowed to call the API, such as
	// chrome-extension://<id>. "*" allows any origin.
	AllowedOrigins []string
	RateLimit      *ratelimit.Config
	// Tokens authenticates requests. Nil serves the API without authentication.
	Tokens *TokenService
	// Pipeline holds the collaborators shared by every request. Analyzer and Saver may be nil,
	// which turns the endpoints needing them into 503 responses.
	Pipeline  pipeline.Options
	Selectors SelectorProvider
	History   History
	Logger    *zap.Logger
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	handler     http.Handler
	pipeline    pipeline.Options
	selectors   SelectorProvider
	history     History
	rateLimiter *ratelimit.Limiter
	tokens      *TokenService
	origins     []string
	logger      *zap.Logger
}

// New creates a new server instance
func New(cfg Config) (*Server, error) {
	if cfg.Pipeline.Loader == nil {
		return nil, fmt.Errorf("server needs a page loader")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		pipeline:    cfg.Pipeline,
		selectors:   cfg.Selectors,
		history:     cfg.History,
		rateLimiter: ratelimit.NewLimiter(cfg.RateLimit),
		tokens:      cfg.Tokens,
		origins:     cfg.AllowedOrigins,
		logger:      logger,
	}
	s.pipeline.Logger = logger
	// progress is only streamed per request
	s.pipeline.OnProgress = nil
	if cfg.Selectors != nil && s.pipeline.Selectors == nil {
		s.pipeline.Selectors = cfg.Selectors
	}
	if cfg.History != nil {
		s.pipeline.History = cfg.History
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	mux.Handle("POST /v1/scrape", s.protect(s.handleScrape))
	mux.Handle("POST /v1/scrape/stream", s.protect(s.handleScrapeStream))
	mux.Handle("POST /v1/analyze", s.protect(s.handleAnalyze))
	mux.Handle("POST /v1/save", s.protect(s.handleSave))
	mux.Handle("GET /v1/duplicate", s.protect(s.handleDuplicate))

	mux.Handle("GET /v1/selectors", s.protect(s.handleSelectors))
	mux.Handle("POST /v1/selectors/refresh", s.protect(s.handleRefreshSelectors))

	mux.Handle("GET /v1/history", s.protect(s.handleListHistory))
	mux.Handle("GET /v1/history/runs", s.protect(s.handleListRuns))
	mux.Handle("DELETE /v1/history/{id}", s.protect(s.handleDeleteHistory))

	s.handler = s.withRateLimit(s.withLogging(s.withCORS(mux)))
	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      300 * time.Second, // batch scrapes render pages and call the model
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

// Handler returns the fully wrapped request handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start listens until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ctx, listener)
}

// Serve accepts connections on listener until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	defer s.rateLimiter.Stop()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			zap.String("addr", listener.Addr().String()),
			zap.Bool("auth", s.tokens != nil))
		errCh <- s.httpServer.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

// protect requires a valid bearer token when authentication is enabled.
func (s *Server) protect(h http.HandlerFunc) http.Handler {
	if s.tokens == nil {
		return h
	}
	return middleware.AuthMiddleware(s.tokens.AsTokenValidator())(h)
}

// withCORS answers preflight requests and sets CORS headers for allowed origins.
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		allowed := origin != "" && s.originAllowed(origin)
		if allowed {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
			w.Header().Set("Access-Control-Max-Age", "600")
			w.Header().Add("Vary", "Origin")
		}

		if r.Method == http.MethodOptions {
			if !allowed {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) originAllowed(origin string) bool {
	return slices.Contains(s.origins, "*") || slices.Contains(s.origins, origin)
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(s.extractClientID(r), r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withLogging logs each request once it completes.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := httpsnoop.CaptureMetrics(next, w, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("remote", r.RemoteAddr),
			zap.Int("status", m.Code),
			zap.Int64("bytes", m.Written),
			zap.Duration("duration", m.Duration))
	})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("failed to encode JSON response", zap.Error(err))
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// writeError maps err to a status and writes it. Server-side failures are logged.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Warn("request failed", zap.Int("status", status), zap.Error(err))
	}
	s.errorResponse(w, status, err.Error())
}

// extractClientID identifies the caller by remote IP.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
	}
	if !info.ResetTime.IsZero() {
		response["reset_at"] = info.ResetTime.Format(time.RFC3339)
	}

	if info.RetryAfter > 0 {
		seconds := int((info.RetryAfter + time.Second - 1) / time.Second)
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
	}

	s.logger.Info("rate limit exceeded",
		zap.Int("limit", info.Limit),
		zap.Duration("retry_after", info.RetryAfter))

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
