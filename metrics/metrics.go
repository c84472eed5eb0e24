// Package metrics exposes the engine's operational counters over
// Prometheus: orders accepted/rejected, trades executed, cancels (client and
// self-match-prevention), and the current event-queue depth.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds every metric this engine records.
type Collector struct {
	OrdersAccepted *prometheus.CounterVec
	OrdersRejected *prometheus.CounterVec
	TradesTotal    *prometheus.CounterVec
	TradedQuantity *prometheus.CounterVec
	CancelsTotal   *prometheus.CounterVec
	SMPCancels     *prometheus.CounterVec
	SessionsActive prometheus.Gauge
	QueueDepth     prometheus.Gauge
}

var (
	instance     *Collector
	instanceOnce sync.Once
)

// Get returns the process-wide collector, creating and registering it with
// the default Prometheus registry on first use.
func Get() *Collector {
	instanceOnce.Do(func() {
		instance = newCollector()
	})
	return instance
}

func newCollector() *Collector {
	c := &Collector{
		OrdersAccepted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "lobcore",
				Subsystem: "orders",
				Name:      "accepted_total",
				Help:      "Total orders accepted, by instrument, side, and order type.",
			},
			[]string{"instrument", "side", "order_type"},
		),
		OrdersRejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "lobcore",
				Subsystem: "orders",
				Name:      "rejected_total",
				Help:      "Total requests rejected, by instrument and reason.",
			},
			[]string{"instrument", "reason"},
		),
		TradesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "lobcore",
				Subsystem: "trades",
				Name:      "total",
				Help:      "Total matches, by instrument.",
			},
			[]string{"instrument"},
		),
		TradedQuantity: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "lobcore",
				Subsystem: "trades",
				Name:      "quantity_total",
				Help:      "Total quantity traded, by instrument.",
			},
			[]string{"instrument"},
		),
		CancelsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "lobcore",
				Subsystem: "orders",
				Name:      "canceled_total",
				Help:      "Total client-initiated cancels, by instrument.",
			},
			[]string{"instrument"},
		),
		SMPCancels: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "lobcore",
				Subsystem: "orders",
				Name:      "self_match_canceled_total",
				Help:      "Total resting orders canceled by self-match prevention, by instrument.",
			},
			[]string{"instrument"},
		),
		SessionsActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "lobcore",
				Subsystem: "sessions",
				Name:      "active",
				Help:      "Number of currently connected sessions (order-entry plus market-data).",
			},
		),
		QueueDepth: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "lobcore",
				Subsystem: "marketdata",
				Name:      "queue_depth",
				Help:      "Number of events currently queued awaiting dispatch.",
			},
		),
	}

	prometheus.MustRegister(
		c.OrdersAccepted,
		c.OrdersRejected,
		c.TradesTotal,
		c.TradedQuantity,
		c.CancelsTotal,
		c.SMPCancels,
		c.SessionsActive,
		c.QueueDepth,
	)
	return c
}

// RecordAccepted increments the accepted-orders counter.
func (c *Collector) RecordAccepted(instrument, side, orderType string) {
	c.OrdersAccepted.WithLabelValues(instrument, side, orderType).Inc()
}

// RecordRejected increments the rejected-requests counter.
func (c *Collector) RecordRejected(instrument, reason string) {
	c.OrdersRejected.WithLabelValues(instrument, reason).Inc()
}

// RecordTrade increments the trade counters for one transaction.
func (c *Collector) RecordTrade(instrument string, quantity int64) {
	c.TradesTotal.WithLabelValues(instrument).Inc()
	c.TradedQuantity.WithLabelValues(instrument).Add(float64(quantity))
}

// RecordCancel increments the client-cancel counter.
func (c *Collector) RecordCancel(instrument string) {
	c.CancelsTotal.WithLabelValues(instrument).Inc()
}

// RecordSMPCancel increments the self-match-prevention-cancel counter.
func (c *Collector) RecordSMPCancel(instrument string) {
	c.SMPCancels.WithLabelValues(instrument).Inc()
}

// Handler returns the HTTP handler that serves the Prometheus exposition
// format for every metric registered through this package.
func Handler() http.Handler {
	return promhttp.Handler()
}
