package handler

import (
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tably/internal/order/models"
	"tably/internal/order/service"
	"tably/internal/order/store"
	id "tably/pkg/domain"
	"tably/pkg/requestcontext"
	"tably/pkg/testutil"
)

func newRouter(t *testing.T, orders *store.MemoryStore, tenantID id.TenantID) http.Handler {
	t.Helper()

	h := New(service.New(orders, nil), slog.Default())
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		// Stand-in for the JWT middleware: inject the tenant directly.
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				next.ServeHTTP(w, req.WithContext(requestcontext.WithTenantID(req.Context(), tenantID)))
			})
		})
		h.Register(r)
	})
	return r
}

func seedOrder(t *testing.T, orders *store.MemoryStore, tenantID id.TenantID) id.OrderID {
	t.Helper()
	orderID := id.OrderID(uuid.New())
	err := orders.CreateOrder(t.Context(), &models.Order{
		ID:          orderID,
		TenantID:    tenantID,
		OrderType:   models.OrderTypeDineIn,
		TotalAmount: 18.70,
		CreatedAt:   time.Now().UTC(),
	}, nil)
	require.NoError(t, err)
	return orderID
}

func TestEmitStatusEndpoint(t *testing.T) {
	tenantID := id.TenantID(uuid.New())

	t.Run("appends and returns the event", func(t *testing.T) {
		orders := store.NewMemory()
		router := newRouter(t, orders, tenantID)
		orderID := seedOrder(t, orders, tenantID)

		req := testutil.NewJSONRequest(t, http.MethodPost, "/orders/"+orderID.String()+"/emit-status",
			map[string]string{"to_status": "confirmed", "note": "table 4"})
		rr := testutil.DoRequest(router, req)

		testutil.AssertStatus(t, rr, http.StatusOK)
		ev := testutil.UnmarshalResponse[models.StatusEvent](t, rr)
		assert.Equal(t, models.StatusNew, ev.FromStatus)
		assert.Equal(t, models.StatusConfirmed, ev.ToStatus)
		assert.Equal(t, "table 4", ev.Note)
	})

	t.Run("unknown status is a bad request", func(t *testing.T) {
		orders := store.NewMemory()
		router := newRouter(t, orders, tenantID)
		orderID := seedOrder(t, orders, tenantID)

		req := testutil.NewJSONRequest(t, http.MethodPost, "/orders/"+orderID.String()+"/emit-status",
			map[string]string{"to_status": "teleported"})
		rr := testutil.DoRequest(router, req)

		testutil.AssertStatus(t, rr, http.StatusBadRequest)
	})

	t.Run("malformed order id is a bad request", func(t *testing.T) {
		router := newRouter(t, store.NewMemory(), tenantID)

		req := testutil.NewJSONRequest(t, http.MethodPost, "/orders/not-a-uuid/emit-status",
			map[string]string{"to_status": "confirmed"})
		rr := testutil.DoRequest(router, req)

		testutil.AssertStatus(t, rr, http.StatusBadRequest)
	})

	t.Run("unknown order is not found", func(t *testing.T) {
		router := newRouter(t, store.NewMemory(), tenantID)

		req := testutil.NewJSONRequest(t, http.MethodPost, "/orders/"+uuid.NewString()+"/emit-status",
			map[string]string{"to_status": "confirmed"})
		rr := testutil.DoRequest(router, req)

		testutil.AssertStatus(t, rr, http.StatusNotFound)
	})
}

func TestGetOrderEndpoint(t *testing.T) {
	tenantID := id.TenantID(uuid.New())
	orders := store.NewMemory()
	router := newRouter(t, orders, tenantID)
	orderID := seedOrder(t, orders, tenantID)

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/orders/"+orderID.String()))
	testutil.AssertStatus(t, rr, http.StatusOK)

	detail := testutil.UnmarshalResponse[models.OrderDetail](t, rr)
	assert.Equal(t, orderID, detail.ID)
	assert.Equal(t, models.StatusNew, detail.CurrentStatus)

	// Orders of another tenant must be invisible, not forbidden.
	other := newRouter(t, orders, id.TenantID(uuid.New()))
	rr = testutil.DoRequest(other, testutil.NewRequest(t, http.MethodGet, "/orders/"+orderID.String()))
	testutil.AssertStatus(t, rr, http.StatusNotFound)
}

func TestLanesEndpoint(t *testing.T) {
	tenantID := id.TenantID(uuid.New())
	orders := store.NewMemory()
	router := newRouter(t, orders, tenantID)
	orderID := seedOrder(t, orders, tenantID)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/kds/orders/"+orderID.String()+"/advance",
		map[string]string{"to_status": "preparing"})
	testutil.AssertStatus(t, testutil.DoRequest(router, req), http.StatusOK)

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/kds/lanes"))
	testutil.AssertStatus(t, rr, http.StatusOK)

	lanes := testutil.UnmarshalResponse[models.Lanes](t, rr)
	require.Len(t, lanes.Preparing, 1)
	assert.Equal(t, orderID, lanes.Preparing[0].ID)
	assert.Empty(t, lanes.Queued)
}

func TestAdvanceEndpointRejectsNonKitchenStatus(t *testing.T) {
	tenantID := id.TenantID(uuid.New())
	orders := store.NewMemory()
	router := newRouter(t, orders, tenantID)
	orderID := seedOrder(t, orders, tenantID)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/kds/orders/"+orderID.String()+"/advance",
		map[string]string{"to_status": "paid"})
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatus(t, rr, http.StatusBadRequest)
}
