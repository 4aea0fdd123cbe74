// Package realtime fans database-change notifications out to subscribed
// dashboards. Writers notify a topic (table) for a tenant; subscribers get a
// debounced refresh hint and refetch their own read projection, so bursty
// writes collapse into one refetch without any server-side batching.
package realtime

import (
	"context"
	"fmt"

	id "tably/pkg/domain"
)

// Topics mirror the tables dashboards watch.
const (
	TopicOrders            = "orders"
	TopicOrderStatusEvents = "order_status_events"
	TopicPaymentIntents    = "payment_intents"
)

// Topics returns the full set of subscribable topics.
func Topics() []string {
	return []string{TopicOrders, TopicOrderStatusEvents, TopicPaymentIntents}
}

// ValidTopic reports whether t is a known topic.
func ValidTopic(t string) bool {
	switch t {
	case TopicOrders, TopicOrderStatusEvents, TopicPaymentIntents:
		return true
	}
	return false
}

// Channel builds the tenant-scoped channel name: {table}:tenant:{tenantID}.
func Channel(topic string, tenantID id.TenantID) string {
	return fmt.Sprintf("%s:tenant:%s", topic, tenantID)
}

// Notifier is the write-side seam. Stores and services call Notify after a
// change lands; failures are logged, never propagated, so a notification
// problem cannot fail a write that already committed.
type Notifier interface {
	Notify(ctx context.Context, topic string, tenantID id.TenantID)
}

// NopNotifier discards notifications. Used where fan-out is irrelevant.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, string, id.TenantID) {}
