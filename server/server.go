// Package server is the HTTP boundary in front of the route table. It maps
// resolve failures to status codes, records metrics and traces, and owns the
// http.Server lifecycle.
package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/ritego/challenge-analytics-router/config"
	"github.com/ritego/challenge-analytics-router/router"
)

type Server struct {
	cfg      *config.Config
	log      *log.Logger
	registry *prometheus.Registry
	handler  http.Handler
}

// New mounts table at its prefix on a fresh root router.
func New(cfg *config.Config, table *router.Router, logger *log.Logger) *Server {
	s := &Server{cfg: cfg, log: logger}

	var reg prometheus.Registerer
	if cfg.Metrics.Enabled {
		s.registry = prometheus.NewRegistry()
		s.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		reg = s.registry
	}

	d := &dispatcher{
		table:         table,
		log:           logger,
		metrics:       newMetrics(reg),
		invalidStatus: cfg.Routes.InvalidParamStatus,
	}
	if d.invalidStatus == 0 {
		d.invalidStatus = http.StatusNotFound
	}

	r := mux.NewRouter()
	r.Use(requestID)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}).Methods(http.MethodGet, http.MethodHead)
	if s.registry != nil {
		r.Handle(cfg.Metrics.Path, promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}
	r.PathPrefix(table.Prefix()).Handler(d)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Not found.")
	})

	s.handler = otelhttp.NewHandler(r, "analytics")
	return s
}

func (s *Server) Handler() http.Handler { return s.handler }

// Run serves until ctx is done, then shuts down within the configured
// shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Server.Addr,
		Handler:      s.handler,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("server running", "addr", srv.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down", "timeout", s.cfg.Server.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
