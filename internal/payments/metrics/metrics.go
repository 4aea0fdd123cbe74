package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	IntentsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tably_payment_intents_created_total",
		Help: "Payment intents created, by provider.",
	}, []string{"provider"})

	PaymentEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tably_payment_events_total",
		Help: "Payment events appended, by event type.",
	}, []string{"event_type"})

	WebhooksReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tably_payment_webhooks_received_total",
		Help: "Inbound provider webhooks, by provider.",
	}, []string{"provider"})
)
