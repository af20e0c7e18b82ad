// Package server exposes the query engine over HTTP.
//
// Routes:
//
//	POST /query    {"query": "..."} -> {"request_id": "...", "docs": [...]}
//	POST /explain  {"query": "..."} -> {"logical": "...", "physical": "..."}
//	GET  /healthz  ok
//	GET  /metrics  Prometheus exposition
//
// Query failures are reported as a plain-text body: 400 for parse and
// unsupported errors, 500 for everything else.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/roach88/relgraph/internal/engine"
	"github.com/roach88/relgraph/internal/qerr"
)

// MaxBodyBytes bounds a request body.
const MaxBodyBytes = 1 << 20

// RequestIDHeader carries the id of the query that produced a response.
const RequestIDHeader = "X-Request-Id"

const shutdownTimeout = 5 * time.Second

// queryEngine provides an abstraction from query execution to aid in testing.
type queryEngine interface {
	Query(ctx context.Context, text string) (*engine.Result, error)
	Explain(text string) (*engine.Explain, error)
}

// Server serves queries against one engine.
type Server struct {
	engine   queryEngine
	logger   *slog.Logger
	metrics  *metrics
	gatherer prometheus.Gatherer
	router   *httprouter.Router
	now      func() time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// WithRegistry registers metrics in r and serves them from /metrics
// instead of the default registry.
func WithRegistry(r *prometheus.Registry) Option {
	return func(s *Server) {
		s.metrics = newMetrics(r)
		s.gatherer = r
	}
}

// New returns a server for eng. Routes are ready once New returns; call
// Run to start listening.
func New(eng queryEngine, opts ...Option) *Server {
	s := &Server{
		engine: eng,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = newMetrics(prometheus.DefaultRegisterer)
		s.gatherer = prometheus.DefaultGatherer
	}

	m := httprouter.New()
	m.POST("/query", s.query)
	m.POST("/explain", s.explain)
	m.GET("/healthz", s.healthz)
	m.Handler(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	s.router = m
	return s
}

// Handler returns the HTTP handler serving all routes.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.logger.Debug("http request", "method", r.Method, "path", r.URL.Path)
		s.router.ServeHTTP(w, r)
	})
}

// Run listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

type queryRequest struct {
	Query string `json:"query"`
}

func (s *Server) query(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	text, ok := s.readQuery(w, r)
	if !ok {
		return
	}

	s.metrics.queries.Inc()
	start := s.now()
	res, err := s.engine.Query(r.Context(), text)
	s.metrics.latency.Observe(s.now().Sub(start).Seconds())
	if res != nil && res.RequestID != "" {
		w.Header().Set(RequestIDHeader, res.RequestID)
	}
	if err != nil {
		s.metrics.failed(err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) explain(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	text, ok := s.readQuery(w, r)
	if !ok {
		return
	}
	out, err := s.engine.Explain(text)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok")
}

// readQuery decodes the request body, writing the error response itself
// when it fails.
func (s *Server) readQuery(w http.ResponseWriter, r *http.Request) (string, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, fmt.Sprintf("request body exceeds %d bytes", MaxBodyBytes), http.StatusRequestEntityTooLarge)
			return "", false
		}
		http.Error(w, fmt.Sprintf("read request body: %v", err), http.StatusBadRequest)
		return "", false
	}

	var req queryRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return "", false
	}
	if strings.TrimSpace(req.Query) == "" {
		http.Error(w, "query is required", http.StatusBadRequest)
		return "", false
	}
	return req.Query, true
}

// statusOf maps a query error to an HTTP status.
func statusOf(err error) int {
	switch qerr.CodeOf(err) {
	case qerr.CodeParse, qerr.CodeUnsupported:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), statusOf(err))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, fmt.Sprintf("encode response: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(data, '\n'))
}
