// Package server provides the HTTP API of the scorer.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/spigell/resume-scorer/internal/scoring"
	"github.com/spigell/resume-scorer/internal/store"
)

const (
	defaultListen          = ":8080"
	defaultShutdownTimeout = 30 * time.Second
	maxListLimit           = 500
)

type Config struct {
	Listen          string        `mapstructure:"listen"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown-timeout"`
}

// ResultStore persists scoring results. *store.Store implements it.
type ResultStore interface {
	Save(ctx context.Context, rec store.Record) (*store.Record, error)
	Get(ctx context.Context, id string) (*store.Record, error)
	ListByJob(ctx context.Context, jobID string, limit int) ([]*store.Record, error)
}

type Server struct {
	httpServer      *http.Server
	scorer          scoring.Scorer
	results         ResultStore
	validate        *validator.Validate
	shutdownTimeout time.Duration
	logger          *zap.Logger
}

// New creates the server. results may be nil, in which case nothing is persisted.
func New(cfg Config, scorer scoring.Scorer, results ResultStore, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	listen := strings.TrimSpace(cfg.Listen)
	if listen == "" {
		listen = defaultListen
	}
	shutdownTimeout := cfg.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = defaultShutdownTimeout
	}

	s := &Server{
		scorer:          scorer,
		results:         results,
		validate:        newValidator(),
		shutdownTimeout: shutdownTimeout,
		logger:          logger,
	}

	s.httpServer = &http.Server{
		Addr:              listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return s
}

// Handler returns the routed handler with request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/score", s.handleScore)
	mux.HandleFunc("GET /v1/results/{id}", s.handleResult)
	mux.HandleFunc("GET /v1/jobs/{id}/results", s.handleJobResults)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())
	return s.withLogging(mux)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("listen", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("request completed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 2*maxResumeBytes)

	var req ScoreRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.fail(w, &ErrValidation{Field: "body", Message: err.Error()})
		return
	}

	if err := req.Validate(s.validate); err != nil {
		s.fail(w, err)
		return
	}

	result, err := s.scorer.Score(r.Context(), req.toScoring())
	if err != nil {
		s.fail(w, fmt.Errorf("score: %w", err))
		return
	}

	resp := ScoreResponse{
		Score:        result.Score,
		MatchedTerms: result.MatchedTerms,
		Terms:        result.Terms,
		Strategy:     s.scorer.Name(),
		Fallback:     result.Fallback,
	}

	if req.JobID != "" && s.results != nil && !result.IsFallback() {
		saved, err := s.results.Save(r.Context(), store.Record{
			JobID:         req.JobID,
			ApplicationID: req.ApplicationID,
			Strategy:      resp.Strategy,
			Score:         result.Score,
			MatchedTerms:  result.MatchedTerms,
		})
		if err != nil {
			s.fail(w, fmt.Errorf("save result: %w", err))
			return
		}
		resp.ResultID = saved.ID
	}

	s.jsonResponse(w, http.StatusOK, resp)
}

func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	if s.results == nil {
		s.fail(w, ErrStoreDisabled)
		return
	}

	rec, err := s.results.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, fmt.Errorf("get result: %w", err))
		return
	}

	s.jsonResponse(w, http.StatusOK, rec)
}

func (s *Server) handleJobResults(w http.ResponseWriter, r *http.Request) {
	if s.results == nil {
		s.fail(w, ErrStoreDisabled)
		return
	}

	limit := store.DefaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxListLimit {
			s.fail(w, &ErrValidation{Field: "limit", Message: fmt.Sprintf("must be an integer between 1 and %d", maxListLimit)})
			return
		}
		limit = n
	}

	records, err := s.results.ListByJob(r.Context(), r.PathValue("id"), limit)
	if err != nil {
		s.fail(w, fmt.Errorf("list results: %w", err))
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{"results": records})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok", "strategy": s.scorer.Name()})
}

func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("encoding JSON response failed", zap.Error(err))
	}
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Int("status", status), zap.Error(err))
	}
	s.jsonResponse(w, status, map[string]string{"error": err.Error()})
}
