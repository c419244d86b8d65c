// Package metrics exposes the Prometheus collectors of the custody workflow.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "wrapchain"

var (
	// Registry holds every collector of the process.
	Registry = prometheus.NewRegistry()

	RequestTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "request_transitions_total",
		Help:      "Mint and burn request state transitions.",
	}, []string{"kind", "status"})

	SupplyChanges = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "supply_change_amount_total",
		Help:      "Token units minted or burned through the controller.",
	}, []string{"op"})

	PendingRequests = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "pending_requests",
		Help:      "Requests awaiting an admin decision.",
	}, []string{"kind"})

	LockConflicts = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "record_lock_conflicts_total",
		Help:      "Operations rejected because a declared record was held.",
	})

	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by route and status.",
	}, []string{"method", "route", "status"})

	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		RequestTransitions,
		SupplyChanges,
		PendingRequests,
		LockConflicts,
		HTTPRequests,
		HTTPDuration,
	)
}

// Handler serves the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// ObserveTransition counts a request entering status.
func ObserveTransition(kind, status string) {
	RequestTransitions.WithLabelValues(kind, status).Inc()
}

// ObserveSupply adds amount to the minted or burned total.
func ObserveSupply(op string, amount uint64) {
	SupplyChanges.WithLabelValues(op).Add(float64(amount))
}

// ObserveHTTP records one served request.
func ObserveHTTP(method, route string, status int, latency time.Duration) {
	HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPDuration.WithLabelValues(method, route).Observe(latency.Seconds())
}
