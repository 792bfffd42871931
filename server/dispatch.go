package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ritego/challenge-analytics-router/router"
)

const (
	outcomeDispatched = "dispatched"
	outcomeNotFound   = "not_found"
	outcomeInvalid    = "invalid"
	outcomePanic      = "panic"
)

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// dispatcher resolves the request path against the route table and invokes
// the matched handler with its typed params in the request context.
type dispatcher struct {
	table         *router.Router
	log           *log.Logger
	metrics       *metrics
	invalidStatus int
}

func (d *dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := d.log.With("request_id", RequestID(r.Context()), "path", r.URL.Path)

	m, err := d.table.Resolve(r.URL.Path)
	if err != nil {
		var verr *router.ValidationError
		if errors.As(err, &verr) {
			logger.Debug("invalid route parameter", "route", verr.Route, "param", verr.Param, "value", verr.Value)
			d.metrics.requests.WithLabelValues(verr.Route, outcomeInvalid).Inc()
			writeError(w, d.invalidStatus, verr.Error())
			return
		}
		logger.Debug("no route matched")
		d.metrics.requests.WithLabelValues("", outcomeNotFound).Inc()
		writeError(w, http.StatusNotFound, "Not found.")
		return
	}

	view := m.ViewName()
	trace.SpanFromContext(r.Context()).SetAttributes(
		attribute.String("http.route", d.table.Prefix()+m.Route.Pattern),
		attribute.String("analytics.view", view),
	)

	sw := &statusWriter{ResponseWriter: w}
	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			d.metrics.requests.WithLabelValues(m.Route.Name, outcomePanic).Inc()
			if p == http.ErrAbortHandler {
				panic(p)
			}
			logger.Error("handler panicked", "view", view, "panic", p, "response_started", sw.wrote)
			if !sw.wrote {
				writeError(w, http.StatusInternalServerError, "internal error")
			}
			return
		}
		d.metrics.requests.WithLabelValues(m.Route.Name, outcomeDispatched).Inc()
		d.metrics.duration.WithLabelValues(m.Route.Name).Observe(time.Since(start).Seconds())
		logger.Debug("dispatched", "view", view, "params", m.Params, "took", time.Since(start))
	}()

	m.Route.Handler.ServeHTTP(sw, r.WithContext(router.WithMatch(r.Context(), m)))
}

// statusWriter notes whether the handler has started the response.
type statusWriter struct {
	http.ResponseWriter
	wrote bool
}

func (w *statusWriter) WriteHeader(code int) {
	w.wrote = true
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	w.wrote = true
	return w.ResponseWriter.Write(b)
}

func (w *statusWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }
