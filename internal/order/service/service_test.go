package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tably/internal/order/models"
	"tably/internal/order/store"
	id "tably/pkg/domain"
	dErrors "tably/pkg/domain-errors"
)

type fakeNotifier struct {
	mu     sync.Mutex
	topics []string
}

func (f *fakeNotifier) Notify(ctx context.Context, topic string, tenantID id.TenantID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.topics = append(f.topics, topic)
}

func (f *fakeNotifier) notified() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.topics...)
}

func seedOrder(t *testing.T, s *store.MemoryStore, tenantID id.TenantID) id.OrderID {
	t.Helper()
	orderID := id.OrderID(uuid.New())
	err := s.CreateOrder(context.Background(), &models.Order{
		ID:          orderID,
		TenantID:    tenantID,
		OrderType:   models.OrderTypeDineIn,
		TotalAmount: 25.50,
		CreatedAt:   time.Now().UTC(),
	}, nil)
	require.NoError(t, err)
	return orderID
}

func TestEmitStatus(t *testing.T) {
	tenantID := id.TenantID(uuid.New())

	t.Run("appends event with derived from_status", func(t *testing.T) {
		orders := store.NewMemory()
		notifier := &fakeNotifier{}
		svc := New(orders, notifier)
		orderID := seedOrder(t, orders, tenantID)

		ev, err := svc.EmitStatus(context.Background(), tenantID, orderID, "confirmed", "table 4")
		require.NoError(t, err)
		assert.Equal(t, models.StatusNew, ev.FromStatus)
		assert.Equal(t, models.StatusConfirmed, ev.ToStatus)
		assert.Equal(t, "table 4", ev.Note)

		status, err := svc.CurrentStatus(context.Background(), orderID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusConfirmed, status)

		assert.Contains(t, notifier.notified(), "order_status_events")
		assert.Contains(t, notifier.notified(), "orders")
	})

	t.Run("serialized emits chain through the log", func(t *testing.T) {
		orders := store.NewMemory()
		svc := New(orders, nil)
		orderID := seedOrder(t, orders, tenantID)

		sequence := []string{"confirmed", "preparing", "ready", "served", "paid"}
		prev := models.StatusNew
		for _, next := range sequence {
			ev, err := svc.EmitStatus(context.Background(), tenantID, orderID, next, "")
			require.NoError(t, err)
			assert.Equal(t, prev, ev.FromStatus)
			prev = ev.ToStatus
		}

		status, err := svc.CurrentStatus(context.Background(), orderID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusPaid, status)
	})

	t.Run("normalizes the pending alias", func(t *testing.T) {
		orders := store.NewMemory()
		svc := New(orders, nil)
		orderID := seedOrder(t, orders, tenantID)

		ev, err := svc.EmitStatus(context.Background(), tenantID, orderID, "pending", "")
		require.NoError(t, err)
		assert.Equal(t, models.StatusNew, ev.ToStatus)
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		orders := store.NewMemory()
		svc := New(orders, nil)
		orderID := seedOrder(t, orders, tenantID)

		_, err := svc.EmitStatus(context.Background(), tenantID, orderID, "teleported", "")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("unknown order yields not found", func(t *testing.T) {
		orders := store.NewMemory()
		svc := New(orders, nil)

		_, err := svc.EmitStatus(context.Background(), tenantID, id.OrderID(uuid.New()), "confirmed", "")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	t.Run("cross-tenant order reads as not found", func(t *testing.T) {
		orders := store.NewMemory()
		svc := New(orders, nil)
		orderID := seedOrder(t, orders, tenantID)

		otherTenant := id.TenantID(uuid.New())
		_, err := svc.EmitStatus(context.Background(), otherTenant, orderID, "confirmed", "")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))

		status, err := svc.CurrentStatus(context.Background(), orderID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusNew, status, "failed emit must not append")
	})

	t.Run("missing tenant is unauthorized", func(t *testing.T) {
		orders := store.NewMemory()
		svc := New(orders, nil)

		_, err := svc.EmitStatus(context.Background(), id.TenantID{}, id.OrderID(uuid.New()), "confirmed", "")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}

func TestAdvance(t *testing.T) {
	tenantID := id.TenantID(uuid.New())

	t.Run("accepts the kitchen set", func(t *testing.T) {
		orders := store.NewMemory()
		svc := New(orders, nil)
		orderID := seedOrder(t, orders, tenantID)

		for _, next := range []string{"preparing", "ready", "served"} {
			_, err := svc.Advance(context.Background(), tenantID, orderID, next)
			require.NoError(t, err)
		}
	})

	t.Run("rejects statuses outside the kitchen set", func(t *testing.T) {
		orders := store.NewMemory()
		svc := New(orders, nil)
		orderID := seedOrder(t, orders, tenantID)

		for _, next := range []string{"confirmed", "paid", "cancelled", "new"} {
			_, err := svc.Advance(context.Background(), tenantID, orderID, next)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput), "status %q", next)
		}
	})
}

func TestLanes(t *testing.T) {
	tenantID := id.TenantID(uuid.New())
	orders := store.NewMemory()
	svc := New(orders, nil)

	place := func(status string) id.OrderID {
		orderID := seedOrder(t, orders, tenantID)
		if status != "new" {
			_, err := svc.EmitStatus(context.Background(), tenantID, orderID, status, "")
			require.NoError(t, err)
		}
		return orderID
	}

	queued := place("new")
	confirmed := place("confirmed")
	preparing := place("preparing")
	ready := place("ready")
	place("served")
	place("paid")
	place("cancelled")

	lanes, err := svc.Lanes(context.Background(), tenantID)
	require.NoError(t, err)

	laneIDs := func(lane []models.LaneOrder) []id.OrderID {
		ids := make([]id.OrderID, 0, len(lane))
		for _, o := range lane {
			ids = append(ids, o.ID)
		}
		return ids
	}

	assert.ElementsMatch(t, []id.OrderID{queued, confirmed}, laneIDs(lanes.Queued))
	assert.ElementsMatch(t, []id.OrderID{preparing}, laneIDs(lanes.Preparing))
	assert.ElementsMatch(t, []id.OrderID{ready}, laneIDs(lanes.Ready))
}

func TestListOrdersEmpty(t *testing.T) {
	svc := New(store.NewMemory(), nil)
	orders, err := svc.ListOrders(context.Background(), id.TenantID(uuid.New()))
	require.NoError(t, err)
	assert.NotNil(t, orders)
	assert.Empty(t, orders)
}
