// Package metrics records API gateway traffic in a private Prometheus
// registry and writes it out in textfile-collector format.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "nksadmin"

// Gateway implements client.Observer.
type Gateway struct {
	reg *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	sessionExpired  prometheus.Counter
}

// NewGateway registers the gateway metrics on a fresh registry.
func NewGateway() *Gateway {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Gateway{
		reg: reg,
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "API requests by method and HTTP status (0 when no response was received).",
		}, []string{"method", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "API request latency in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"method"}),
		sessionExpired: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_expired_total",
			Help:      "Requests answered with 401 that cleared the session.",
		}),
	}
}

// ObserveRequest records one completed request.
func (g *Gateway) ObserveRequest(method string, status int, elapsed time.Duration) {
	g.requestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
	g.requestDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// ObserveSessionExpired records a forced logout.
func (g *Gateway) ObserveSessionExpired() {
	g.sessionExpired.Inc()
}

// Registry exposes the underlying registry.
func (g *Gateway) Registry() *prometheus.Registry { return g.reg }

// WriteFile dumps the registry to path. Missing parent directories are created.
func (g *Gateway) WriteFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create metrics dir: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, g.reg); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}
