package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/fx"
)

// Metrics counts financial events processed by the subsystem.
type Metrics struct {
	webhookEvents *prometheus.CounterVec
	settlements   *prometheus.CounterVec
	payouts       *prometheus.CounterVec
	refunds       *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		webhookEvents: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "serbiz_webhook_events_total",
			Help: "Gateway webhook deliveries by event type and outcome.",
		}, []string{"event_type", "outcome"}),
		settlements: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "serbiz_settlements_total",
			Help: "Booking settlements by transaction type.",
		}, []string{"type"}),
		payouts: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "serbiz_payout_transitions_total",
			Help: "Payout request transitions by resulting status.",
		}, []string{"status"}),
		refunds: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "serbiz_refunds_total",
			Help: "Refund attempts by outcome.",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) RecordWebhookEvent(eventType, outcome string) {
	if m == nil {
		return
	}
	m.webhookEvents.WithLabelValues(eventType, outcome).Inc()
}

func (m *Metrics) RecordSettlement(txType string) {
	if m == nil {
		return
	}
	m.settlements.WithLabelValues(txType).Inc()
}

func (m *Metrics) RecordPayoutTransition(status string) {
	if m == nil {
		return
	}
	m.payouts.WithLabelValues(status).Inc()
}

func (m *Metrics) RecordRefund(outcome string) {
	if m == nil {
		return
	}
	m.refunds.WithLabelValues(outcome).Inc()
}

var Module = fx.Module("metrics",
	fx.Provide(New),
)
