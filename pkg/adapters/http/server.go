package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/scripter"
	"github.com/aretw0/scripter/internal/logging"
	"github.com/aretw0/scripter/pkg/domain"
	"github.com/aretw0/scripter/pkg/registry"
	"github.com/aretw0/scripter/pkg/runner"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Runs is the run lifecycle exposed over HTTP. *runner.Runner implements it.
type Runs interface {
	Start(ctx context.Context, name string, script runner.Script) (string, <-chan runner.Result)
	Lookup(ctx context.Context, runID string) (*domain.RunRecord, error)
	Runs(ctx context.Context) ([]*domain.RunRecord, error)
	Cancel(runID string) error
}

// Server is the control surface of a scripter host.
type Server struct {
	Runs    Runs
	Scripts *registry.Registry
	Metrics http.Handler
	Logger  *slog.Logger

	// base outlives requests; runs started over HTTP are bound to it.
	base context.Context
}

// Option configures the Server.
type Option func(*Server)

// WithScripts sets the scripts that can be started by name.
func WithScripts(scripts *registry.Registry) Option {
	return func(s *Server) {
		s.Scripts = scripts
	}
}

// WithMetrics mounts a metrics handler (e.g. promhttp) on /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.Metrics = h
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.Logger = logger
	}
}

// WithBaseContext sets the context runs started over HTTP inherit.
// Canceling it cancels those runs.
func WithBaseContext(ctx context.Context) Option {
	return func(s *Server) {
		s.base = ctx
	}
}

// NewHandler creates the HTTP handler for runs.
func NewHandler(runs Runs, opts ...Option) http.Handler {
	s := &Server{Runs: runs, Scripts: registry.NewRegistry(), base: context.Background()}
	for _, opt := range opts {
		opt(s)
	}
	if s.Logger == nil {
		s.Logger = logging.NewNop()
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/scripts", s.ListScripts)
	r.Post("/scripts/{name}/runs", s.StartRun)
	r.Get("/runs", s.ListRuns)
	r.Get("/runs/{id}", s.GetRun)
	r.Post("/runs/{id}/cancel", s.CancelRun)
	if s.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.Metrics)
	}
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "scripter-http",
		"version": strings.TrimSpace(scripter.Version),
	})
}

// ListScripts handles the GET /scripts request.
func (s *Server) ListScripts(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Scripts.Names())
}

// StartRun handles the POST /scripts/{name}/runs request.
func (s *Server) StartRun(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	script, err := s.Scripts.Lookup(name)
	if err != nil {
		s.writeError(w, http.StatusNotFound, err.Error())
		return
	}

	id, results := s.Runs.Start(s.base, name, script)
	go func() {
		res := <-results
		if res.Err != nil {
			s.Logger.Warn("run failed", "run_id", id, "script", name, "err", res.Err)
		}
	}()
	s.writeJSON(w, http.StatusAccepted, map[string]string{"id": id})
}

// ListRuns handles the GET /runs request.
func (s *Server) ListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.Runs.Runs(r.Context())
	if err != nil {
		s.Logger.Error("list runs failed", "err", err)
		s.writeError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}
	if runs == nil {
		runs = []*domain.RunRecord{}
	}
	s.writeJSON(w, http.StatusOK, runs)
}

// GetRun handles the GET /runs/{id} request.
func (s *Server) GetRun(w http.ResponseWriter, r *http.Request) {
	rec, err := s.Runs.Lookup(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, domain.ErrRunNotFound) {
		s.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		s.Logger.Error("lookup run failed", "err", err)
		s.writeError(w, http.StatusInternalServerError, "failed to load run")
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

// CancelRun handles the POST /runs/{id}/cancel request.
func (s *Server) CancelRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.Runs.Cancel(id); err != nil {
		s.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	s.writeJSON(w, http.StatusAccepted, map[string]string{"id": id, "status": "canceling"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Error("response encode failed", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
