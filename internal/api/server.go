package api

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/JakeFAU/jarchive-crawler/internal/config"
	"github.com/JakeFAU/jarchive-crawler/internal/database"
	"github.com/JakeFAU/jarchive-crawler/internal/export"
	"github.com/JakeFAU/jarchive-crawler/internal/metrics"
)

const readinessTimeout = 2 * time.Second

// Server wires HTTP handlers to the clue database and the exported site.
// The JSON endpoints mirror the export artifacts so the same frontend can run
// against live data or the static dist directory.
type Server struct {
	router   chi.Router
	db       database.Provider
	registry *prometheus.Registry
	distDir  string
	logger   *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(
	db database.Provider,
	registry *prometheus.Registry,
	cfg config.Config,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	s := &Server{
		db:       db,
		registry: registry,
		distDir:  cfg.Export.DistDir,
		logger:   logger,
	}
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	if httpMetrics, err := metrics.NewHTTP(registry); err != nil {
		logger.Warn("http metrics disabled", zap.Error(err))
	} else {
		r.Use(httpMetrics.Middleware)
	}
	r.Use(loggingMiddleware(logger))
	r.Use(recoverMiddleware(logger))
	r.Use(timeoutMiddleware(60 * time.Second))

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Get("/metrics", s.metrics)

	r.Route("/api", func(r chi.Router) {
		r.Get("/seasons", s.listSeasons)
		r.Get("/seasons/{season}", s.getSeason)
		r.Get("/stats", s.getStats)
	})

	// Everything else is served from the exported site, so the landing page
	// works identically against this server or a plain file host.
	r.Handle("/*", http.FileServer(http.Dir(s.distDir)))

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()
	if _, err := s.db.CountClues(ctx); err != nil {
		s.writeError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}).ServeHTTP(w, r)
}

func (s *Server) listSeasons(w http.ResponseWriter, r *http.Request) {
	tokens, err := s.db.SeasonNumbers(r.Context())
	if err != nil {
		s.logger.Error("list seasons failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to list seasons")
		return
	}
	s.writeJSON(w, http.StatusOK, export.NewSeasonEntries(tokens))
}

func (s *Server) getSeason(w http.ResponseWriter, r *http.Request) {
	season := chi.URLParam(r, "season")
	rows, err := s.db.SeasonEpisodes(r.Context(), season)
	if err != nil {
		s.logger.Error("list season episodes failed", zap.String("season", season), zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to load season")
		return
	}
	clues, err := s.db.SeasonClues(r.Context(), season)
	if err != nil {
		s.logger.Error("list season clues failed", zap.String("season", season), zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to load season")
		return
	}
	if len(rows) == 0 && len(clues) == 0 {
		s.writeError(w, http.StatusNotFound, "season not found")
		return
	}
	s.writeJSON(w, http.StatusOK, export.SeasonData{
		Episodes: export.NewEpisodeEntries(rows),
		Clues:    export.NewClueEntries(clues),
	})
}

func (s *Server) getStats(w http.ResponseWriter, r *http.Request) {
	total, err := s.db.CountClues(r.Context())
	if err != nil {
		s.logger.Error("count clues failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to count clues")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]int64{"total_clues": total})
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func loggingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			logger.Info("request completed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.status),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
			)
		})
	}
}

func recoverMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic recovered", zap.Any("error", rec))
					http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func timeoutMiddleware(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, "request timed out")
	}
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	if err != nil {
		return n, fmt.Errorf("write response: %w", err)
	}
	return n, nil
}

func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := rw.ResponseWriter.(http.Hijacker); ok {
		conn, buf, err := h.Hijack()
		if err != nil {
			return nil, nil, fmt.Errorf("hijack connection: %w", err)
		}
		return conn, buf, nil
	}
	return nil, nil, errors.New("hijacker not supported")
}

type requestIDKey struct{}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("write JSON failed", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
