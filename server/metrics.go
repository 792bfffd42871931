package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// newMetrics registers the dispatch collectors with reg. A nil reg keeps
// them unregistered.
func newMetrics(reg prometheus.Registerer) *metrics {
	f := promauto.With(reg)
	return &metrics{
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "analytics",
			Subsystem: "router",
			Name:      "requests_total",
			Help:      "Requests dispatched by the route table, by route and outcome.",
		}, []string{"route", "outcome"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "analytics",
			Subsystem: "router",
			Name:      "handler_duration_seconds",
			Help:      "Time spent in matched handlers.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
}
