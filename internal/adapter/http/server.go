package http

import (
	"bytes"
	"context"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/quake-dashboard/internal/adapter/svgchart"
	"github.com/couchcryptid/quake-dashboard/internal/chart"
	"github.com/couchcryptid/quake-dashboard/internal/dashboard"
	"github.com/couchcryptid/quake-dashboard/internal/observability"
	"github.com/couchcryptid/quake-dashboard/internal/session"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Controller describes the page for a session and a window selection.
type Controller interface {
	Run(ctx context.Context, sess *session.Session, selection string) dashboard.View
}

// Sessions resolves the session carried by a request.
type Sessions interface {
	GetOrCreate(id string) (*session.Session, bool)
	Len() int
}

// Server serves the dashboard page plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	controller Controller
	sessions   Sessions
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewServer creates an HTTP server with /, /healthz, /readyz, and /metrics routes.
func NewServer(addr string, controller Controller, sessions Sessions, ready sharedobs.ReadinessChecker, logger *slog.Logger, metrics *observability.Metrics) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:        addr,
			Handler:     mux,
			ReadTimeout: 10 * time.Second,
			// The first request of a session waits on four feed downloads.
			WriteTimeout: 2 * time.Minute,
			IdleTimeout:  60 * time.Second,
		},
		controller: controller,
		sessions:   sessions,
		logger:     logger,
		metrics:    metrics,
	}

	mux.HandleFunc("GET /{$}", s.handleDashboard)
	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

type pageData struct {
	dashboard.View
	MapSVG       template.HTML
	MapCaption   string
	DepthSVG     template.HTML
	DepthCaption string
	Rows         [][]string
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sess, created := s.sessions.GetOrCreate(q.Get("sid"))
	if created {
		s.logger.Info("session started", "session", sess.ID())
	}
	s.metrics.SessionsActive.Set(float64(s.sessions.Len()))

	view := s.controller.Run(r.Context(), sess, q.Get("window"))
	data := pageData{View: view}

	if view.HasSelection() {
		var err error
		if data.MapSVG, data.MapCaption, err = renderSVG(view.MapChart); err == nil {
			data.DepthSVG, data.DepthCaption, err = renderSVG(view.DepthChart)
		}
		if err != nil {
			s.logger.Error("chart render failed", "session", sess.ID(), "window", view.Selected, "error", err)
			s.metrics.PageRenders.WithLabelValues("error").Inc()
			http.Error(w, "chart rendering failed", http.StatusInternalServerError)
			return
		}
		data.Rows = make([][]string, 0, view.Table.Len())
		for _, e := range view.Table {
			data.Rows = append(data.Rows, e.Row())
		}
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		s.logger.Error("page render failed", "session", sess.ID(), "error", err)
		s.metrics.PageRenders.WithLabelValues("error").Inc()
		http.Error(w, "page rendering failed", http.StatusInternalServerError)
		return
	}

	status := "ok"
	if view.Failed {
		status = "failed"
	}
	s.metrics.PageRenders.WithLabelValues(status).Inc()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w) //nolint:errcheck // client may have gone away
}

func renderSVG(c *chart.Chart) (template.HTML, string, error) {
	var buf bytes.Buffer
	if err := svgchart.Write(&buf, *c); err != nil {
		return "", "", err
	}
	return template.HTML(buf.String()), c.Caption, nil //nolint:gosec // SVG produced by go-chart
}
