package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Subscriptions tracks currently open realtime subscriptions.
	Subscriptions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tably_realtime_subscriptions",
		Help: "Number of open realtime subscriptions",
	})

	// Notifications counts change notifications entering the hub, per topic.
	Notifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tably_realtime_notifications_total",
		Help: "Total change notifications dispatched to the hub",
	}, []string{"topic"})

	// Flushes counts debounced refresh hints delivered to subscribers.
	Flushes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tably_realtime_debounced_flushes_total",
		Help: "Total debounced refresh hints flushed to subscribers",
	}, []string{"topic"})
)
