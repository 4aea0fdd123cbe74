package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OrdersCreated counts orders materialized from checkout or order entry.
	OrdersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tably_orders_created_total",
		Help: "Total number of orders created",
	})

	// StatusEvents counts appended status transitions by target status.
	StatusEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tably_order_status_events_total",
		Help: "Total order status events appended",
	}, []string{"to_status"})
)
