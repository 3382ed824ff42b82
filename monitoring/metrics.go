// Package monitoring exposes Prometheus metrics for the factory daemon.
package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the factory's Prometheus collectors.
type Metrics struct {
	TokensCreated  prometheus.Counter
	FeesCollected  prometheus.Counter
	CreateRejected *prometheus.CounterVec
	FeesWithdrawn  prometheus.Counter
	StreamClients  prometheus.Gauge
	OracleLookups  *prometheus.CounterVec
}

// New registers and returns the factory metrics.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		TokensCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tokenfactory",
			Name:      "tokens_created_total",
			Help:      "Number of token ledgers created.",
		}),
		FeesCollected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tokenfactory",
			Name:      "fees_collected_total",
			Help:      "Total fees charged, in smallest units.",
		}),
		CreateRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tokenfactory",
			Name:      "create_rejected_total",
			Help:      "Rejected createToken calls by reason.",
		}, []string{"reason"}),
		FeesWithdrawn: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tokenfactory",
			Name:      "fees_withdrawn_total",
			Help:      "Total fees withdrawn, in smallest units.",
		}),
		StreamClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "tokenfactory",
			Name:      "stream_clients",
			Help:      "Connected websocket stream clients.",
		}),
		OracleLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tokenfactory",
			Name:      "oracle_lookups_total",
			Help:      "Discount oracle lookups by outcome.",
		}, []string{"outcome"}),
	}

	if reg != nil {
		reg.MustRegister(
			m.TokensCreated,
			m.FeesCollected,
			m.CreateRejected,
			m.FeesWithdrawn,
			m.StreamClients,
			m.OracleLookups,
		)
	}
	return m
}
