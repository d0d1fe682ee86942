// Package tqsqlmetrics instruments connection establishment with
// Prometheus metrics: handshake counts and latency, TLS upgrade counts,
// and auth plugin usage, following the same package-level CounterVec /
// HistogramVec plus Init/Handler pattern the rest of this stack uses.
package tqsqlmetrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HandshakeTotal counts connection attempts by outcome ("ok" or
	// "error").
	HandshakeTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tqsql_handshake_total",
			Help: "Total number of connection handshakes attempted",
		},
		[]string{"outcome"},
	)

	// HandshakeLatency tracks time spent from dial to authenticated
	// connection.
	HandshakeLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tqsql_handshake_latency_seconds",
			Help:    "Time to establish and authenticate a connection",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)

	// TLSUpgradeTotal counts in-band TLS upgrades performed.
	TLSUpgradeTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tqsql_tls_upgrade_total",
			Help: "Total number of in-band TLS upgrades performed",
		},
		[]string{},
	)

	// AuthPluginTotal counts auth plugin responses computed, by plugin
	// name.
	AuthPluginTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tqsql_auth_plugin_total",
			Help: "Total number of auth plugin exchanges by plugin name",
		},
		[]string{"plugin"},
	)

	once sync.Once
)

// Init registers all metrics with Prometheus.
func Init() {
	once.Do(func() {
		prometheus.MustRegister(HandshakeTotal)
		prometheus.MustRegister(HandshakeLatency)
		prometheus.MustRegister(TLSUpgradeTotal)
		prometheus.MustRegister(AuthPluginTotal)
	})
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Recorder receives instrumentation events from a single Connect call. The
// core driver depends only on this interface, never on a running
// Prometheus registry, so embedding it never forces a consumer to call
// Init or expose Handler.
type Recorder interface {
	// StartHandshake marks the beginning of a connection attempt and
	// returns a function to call with the outcome once it concludes.
	StartHandshake() (done func(ok bool))
	// TLSUpgraded is called once an in-band TLS upgrade completes.
	TLSUpgraded()
	// AuthPlugin is called once the auth plugin response has been
	// computed, naming the plugin used.
	AuthPlugin(name string)
}

// NoOp is the default Recorder: every method is a no-op, so instrumenting
// a connection costs nothing unless a caller opts in with Prometheus.
type NoOp struct{}

func (NoOp) StartHandshake() func(bool) { return func(bool) {} }
func (NoOp) TLSUpgraded()               {}
func (NoOp) AuthPlugin(string)          {}

// Prometheus is a Recorder backed by the package-level metrics above. Call
// Init once before using it so the metrics are registered.
type Prometheus struct{}

func (Prometheus) StartHandshake() func(bool) {
	start := time.Now()
	return func(ok bool) {
		outcome := "ok"
		if !ok {
			outcome = "error"
		}
		HandshakeTotal.WithLabelValues(outcome).Inc()
		HandshakeLatency.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
	}
}

func (Prometheus) TLSUpgraded() {
	TLSUpgradeTotal.WithLabelValues().Inc()
}

func (Prometheus) AuthPlugin(name string) {
	AuthPluginTotal.WithLabelValues(name).Inc()
}
