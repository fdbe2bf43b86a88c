package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the prometheus instruments exported by the server.
type Metrics struct {
	ActionsTotal    *prometheus.CounterVec
	RejectedActions *prometheus.CounterVec
	HandsCompleted  prometheus.Counter
	HandsAborted    prometheus.Counter
	Timeouts        prometheus.Counter
	TablesActive    prometheus.Gauge
	ClientsActive   prometheus.Gauge
	PotSize         prometheus.Histogram
}

// NewMetrics registers the server's instruments against reg. Pass
// prometheus.DefaultRegisterer outside of tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ActionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pokertable",
			Name:      "actions_total",
			Help:      "Player actions applied, by action type.",
		}, []string{"type"}),
		RejectedActions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pokertable",
			Name:      "rejected_actions_total",
			Help:      "Player actions rejected, by reject reason.",
		}, []string{"reason"}),
		HandsCompleted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "pokertable",
			Name:      "hands_completed_total",
			Help:      "Hands played to completion.",
		}),
		HandsAborted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "pokertable",
			Name:      "hands_aborted_total",
			Help:      "Hands aborted after a consistency failure.",
		}),
		Timeouts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "pokertable",
			Name:      "turn_timeouts_total",
			Help:      "Turn timers that fired and forced a default action.",
		}),
		TablesActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "pokertable",
			Name:      "tables_active",
			Help:      "Tables currently running.",
		}),
		ClientsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "pokertable",
			Name:      "ws_clients_active",
			Help:      "Websocket clients currently connected.",
		}),
		PotSize: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "pokertable",
			Name:      "pot_size_chips",
			Help:      "Total chips in the pot at hand completion.",
			Buckets:   prometheus.ExponentialBuckets(10, 4, 8),
		}),
	}
}
