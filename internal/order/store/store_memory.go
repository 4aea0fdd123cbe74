package store

import (
	"context"
	"sort"
	"sync"

	"tably/internal/order/models"
	id "tably/pkg/domain"
	"tably/pkg/platform/sentinel"
	"tably/pkg/requestcontext"
)

// MemoryStore is the in-memory order store used as a test double and by
// single-process tooling. Not distributed; state is lost on restart.
type MemoryStore struct {
	mu     sync.RWMutex
	orders map[id.OrderID]*memoryOrder
}

type memoryOrder struct {
	order  models.Order
	status models.Status
	items  []models.OrderItem
	events []models.StatusEvent
}

// NewMemory creates an empty in-memory order store.
func NewMemory() *MemoryStore {
	return &MemoryStore{orders: make(map[id.OrderID]*memoryOrder)}
}

// CreateOrder inserts an order with its item snapshots. Used by the checkout
// pipeline and by tests seeding fixtures.
func (s *MemoryStore) CreateOrder(ctx context.Context, order *models.Order, items []models.OrderItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.orders[order.ID]; exists {
		return sentinel.ErrConflict
	}
	o := *order
	s.orders[order.ID] = &memoryOrder{
		order:  o,
		status: models.DefaultStatus,
		items:  append([]models.OrderItem(nil), items...),
	}
	return nil
}

// EmitStatus appends a status event if the order exists under the tenant.
func (s *MemoryStore) EmitStatus(ctx context.Context, ev *models.StatusEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[ev.OrderID]
	if !ok || o.order.TenantID != ev.TenantID {
		return sentinel.ErrNotFound
	}

	ev.FromStatus = o.status
	ev.CreatedAt = requestcontext.Now(ctx)
	o.events = append(o.events, *ev)
	o.status = ev.ToStatus
	o.order.UpdatedAt = ev.CreatedAt
	return nil
}

// CurrentStatus derives the status from the event log, defaulting when empty.
func (s *MemoryStore) CurrentStatus(ctx context.Context, orderID id.OrderID) (models.Status, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[orderID]
	if !ok {
		return models.DefaultStatus, nil
	}
	if len(o.events) == 0 {
		return models.DefaultStatus, nil
	}
	return o.events[len(o.events)-1].ToStatus, nil
}

// ActiveOrders returns kitchen-active orders oldest first.
func (s *MemoryStore) ActiveOrders(ctx context.Context, tenantID id.TenantID) ([]models.LaneOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var orders []models.LaneOrder
	for _, o := range s.orders {
		if o.order.TenantID != tenantID {
			continue
		}
		if _, active := models.LaneFor(o.status); !active {
			continue
		}
		lo := models.LaneOrder{
			ID:            o.order.ID,
			TableID:       o.order.TableID,
			OrderType:     o.order.OrderType,
			TotalAmount:   o.order.TotalAmount,
			CurrentStatus: o.status,
			CreatedAt:     o.order.CreatedAt,
			Items:         append([]models.OrderItem(nil), o.items...),
		}
		if n := len(o.events); n > 0 {
			at := o.events[n-1].CreatedAt
			lo.StatusUpdatedAt = &at
		}
		orders = append(orders, lo)
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.Before(orders[j].CreatedAt) })
	return orders, nil
}

// List returns all tenant orders with derived status, newest first.
func (s *MemoryStore) List(ctx context.Context, tenantID id.TenantID) ([]models.OrderSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var orders []models.OrderSummary
	for _, o := range s.orders {
		if o.order.TenantID != tenantID {
			continue
		}
		orders = append(orders, models.OrderSummary{Order: o.order, CurrentStatus: o.status})
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) })
	return orders, nil
}

// Get returns a tenant-scoped order with items and history.
func (s *MemoryStore) Get(ctx context.Context, tenantID id.TenantID, orderID id.OrderID) (*models.OrderDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[orderID]
	if !ok || o.order.TenantID != tenantID {
		return nil, sentinel.ErrNotFound
	}
	return &models.OrderDetail{
		Order:         o.order,
		CurrentStatus: o.status,
		Items:         append([]models.OrderItem(nil), o.items...),
		Events:        append([]models.StatusEvent(nil), o.events...),
	}, nil
}
