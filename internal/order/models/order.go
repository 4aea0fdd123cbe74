package models

import (
	"time"

	"github.com/google/uuid"

	id "tably/pkg/domain"
)

// OrderType distinguishes table service from counter pickup.
type OrderType string

const (
	OrderTypeDineIn   OrderType = "dine_in"
	OrderTypeTakeaway OrderType = "takeaway"
)

// Order is the aggregate root for a placed order.
//
// Invariants:
//   - Every order belongs to exactly one tenant; no cross-tenant read or
//     write ever succeeds.
//   - Current status is derived from the latest StatusEvent, never stored
//     here as a business-logic source of truth.
//   - Orders are never deleted; cancellation is a status event.
type Order struct {
	ID              id.OrderID    `json:"id"`
	TenantID        id.TenantID   `json:"tenant_id"`
	TableID         *id.TableID   `json:"table_id,omitempty"`
	OrderType       OrderType     `json:"order_type"`
	TotalAmount     float64       `json:"total_amount"`
	PaymentIntentID *id.IntentID  `json:"payment_intent_id,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// OrderItem snapshots a menu item at order-creation time. UnitPrice is copied
// from the menu item, not referenced live: later menu price changes must not
// retroactively alter historical orders.
type OrderItem struct {
	ID         uuid.UUID     `json:"id"`
	OrderID    id.OrderID    `json:"order_id"`
	MenuItemID id.MenuItemID `json:"menu_item_id"`
	Name       string        `json:"name,omitempty"`
	Quantity   int           `json:"quantity"`
	UnitPrice  float64       `json:"unit_price"`
	Note       string        `json:"note,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
}

// StatusEvent is one immutable row of the append-only status log, the source
// of truth for an order's current status.
type StatusEvent struct {
	ID               uuid.UUID   `json:"id"`
	TenantID         id.TenantID `json:"tenant_id"`
	OrderID          id.OrderID  `json:"order_id"`
	FromStatus       Status      `json:"from_status"`
	ToStatus         Status      `json:"to_status"`
	Note             string      `json:"note,omitempty"`
	CreatedByStaffID *id.StaffID `json:"created_by_staff_id,omitempty"`
	CreatedAt        time.Time   `json:"created_at"`
}

// OrderSummary is the list-view projection: an order with its derived status.
type OrderSummary struct {
	Order
	CurrentStatus Status `json:"current_status"`
}

// OrderDetail is the single-order projection with items and status history.
type OrderDetail struct {
	Order
	CurrentStatus Status        `json:"current_status"`
	Items         []OrderItem   `json:"items"`
	Events        []StatusEvent `json:"events"`
}

// LaneOrder is one order as shown on the kitchen display: derived status,
// table number and the denormalized item list in a single row.
type LaneOrder struct {
	ID              id.OrderID  `json:"id"`
	TableID         *id.TableID `json:"table_id,omitempty"`
	TableNumber     string      `json:"table_number,omitempty"`
	OrderType       OrderType   `json:"order_type"`
	TotalAmount     float64     `json:"total_amount"`
	CurrentStatus   Status      `json:"current_status"`
	StatusUpdatedAt *time.Time  `json:"status_updated_at,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	Items           []OrderItem `json:"items"`
}

// Lanes buckets active orders for the kitchen display. Orders within a lane
// are FIFO: oldest created first.
type Lanes struct {
	Queued    []LaneOrder `json:"queued"`
	Preparing []LaneOrder `json:"preparing"`
	Ready     []LaneOrder `json:"ready"`
}

// GroupLanes distributes lane orders into their buckets, preserving input
// order (callers supply rows sorted by creation time ascending).
func GroupLanes(orders []LaneOrder) Lanes {
	lanes := Lanes{
		Queued:    []LaneOrder{},
		Preparing: []LaneOrder{},
		Ready:     []LaneOrder{},
	}
	for _, o := range orders {
		lane, ok := LaneFor(o.CurrentStatus)
		if !ok {
			continue
		}
		switch lane {
		case LaneQueued:
			lanes.Queued = append(lanes.Queued, o)
		case LanePreparing:
			lanes.Preparing = append(lanes.Preparing, o)
		case LaneReady:
			lanes.Ready = append(lanes.Ready, o)
		}
	}
	return lanes
}
