// Package api exposes the scoring pipeline over HTTP: POST /v1/score
// accepts a normalized content snapshot and returns the full report.
// The server also serves /healthz and Prometheus metrics on /metrics.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/docscore/docscore/internal/content"
	"github.com/docscore/docscore/internal/engine"
)

const maxBodyBytes = 10 << 20

// Server wraps the engine behind an http.Server.
type Server struct {
	mu      sync.RWMutex
	engine  *engine.Engine
	httpSrv *http.Server
	metrics *promMetrics
	logger  *slog.Logger
}

// NewServer builds the server on the given address.
func NewServer(addr string, eng *engine.Engine, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		engine:  eng,
		metrics: newPromMetrics(),
		logger:  logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/score", s.handleScore)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))

	s.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      5 * time.Minute, // semantic calls can be slow
	}
	return s
}

// ListenAndServe blocks until the server stops or ctx is canceled,
// then drains in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", s.httpSrv.Addr)
		errCh <- s.httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return s.httpSrv.Shutdown(shutdownCtx)
	}
}

// SwapEngine replaces the engine for subsequent requests, used by
// config hot reload. In-flight requests keep the engine they started
// with.
func (s *Server) SwapEngine(eng *engine.Engine) {
	s.mu.Lock()
	s.engine = eng
	s.mu.Unlock()
}

func (s *Server) currentEngine() *engine.Engine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() {
		s.metrics.requestSeconds.WithLabelValues("/v1/score").Observe(time.Since(start).Seconds())
	}()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.metrics.scoringErrors.Inc()
		s.writeError(w, "/v1/score", http.StatusBadRequest, err)
		return
	}
	nc, err := content.ParseJSON(body)
	if err != nil {
		s.metrics.scoringErrors.Inc()
		s.writeError(w, "/v1/score", http.StatusBadRequest, err)
		return
	}

	report, err := s.currentEngine().Score(r.Context(), nc)
	if err != nil {
		s.metrics.scoringErrors.Inc()
		s.writeError(w, "/v1/score", http.StatusUnprocessableEntity, err)
		return
	}

	s.metrics.pagesScored.Inc()
	s.metrics.scoreHist.Observe(report.CompositeScore)
	if report.Meta.ClaudeError != "" {
		s.metrics.semanticFalls.Inc()
	}

	s.writeJSON(w, "/v1/score", http.StatusOK, report)
	s.logger.Info("page scored",
		"url", report.Meta.URL,
		"score", report.CompositeScore,
		"status", report.Status,
		"duration", time.Since(start))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, "/healthz", http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, endpoint string, code int, v any) {
	s.metrics.requests.WithLabelValues(endpoint, strconv.Itoa(code)).Inc()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encoding response", "endpoint", endpoint, "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, endpoint string, code int, err error) {
	s.writeJSON(w, endpoint, code, errorResponse{Error: fmt.Sprintf("%v", err)})
}
