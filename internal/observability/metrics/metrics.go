package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/soukly/payments/internal/config"
)

// Metrics captures payment lifecycle health signals.
type Metrics struct {
	operations    *prometheus.CounterVec
	webhookEvents *prometheus.CounterVec
	transfers     *prometheus.CounterVec
}

func New(cfg config.Config) *Metrics {
	return newMetrics(prometheus.DefaultRegisterer, cfg)
}

func newMetrics(registerer prometheus.Registerer, cfg config.Config) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.AppName)
	if serviceName == "" {
		serviceName = "payments"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "payments_operations_total",
		Help:        "Payment lifecycle operations by name and outcome.",
		ConstLabels: constLabels,
	}, []string{"op", "outcome"})
	webhookEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "payments_webhook_events_total",
		Help:        "Provider webhook events by type and outcome.",
		ConstLabels: constLabels,
	}, []string{"type", "outcome"})
	transfers := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "payments_transfers_total",
		Help:        "Seller settlement transfers by outcome.",
		ConstLabels: constLabels,
	}, []string{"outcome"})

	registerer.MustRegister(operations, webhookEvents, transfers)

	return &Metrics{
		operations:    operations,
		webhookEvents: webhookEvents,
		transfers:     transfers,
	}
}

// RecordOperation increments the lifecycle operation counter. Outcome
// must be low cardinality, typically "ok" or an error class.
func (m *Metrics) RecordOperation(op, outcome string) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(op, outcome).Inc()
}

func (m *Metrics) RecordWebhookEvent(eventType, outcome string) {
	if m == nil {
		return
	}
	m.webhookEvents.WithLabelValues(eventType, outcome).Inc()
}

func (m *Metrics) RecordTransfer(outcome string) {
	if m == nil {
		return
	}
	m.transfers.WithLabelValues(outcome).Inc()
}
