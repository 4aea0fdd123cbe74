//go:build integration

package store_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"tably/internal/order/models"
	"tably/internal/order/store"
	id "tably/pkg/domain"
	"tably/pkg/platform/sentinel"
	"tably/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	// Truncate in dependency order
	err := s.postgres.TruncateTables(ctx,
		"order_status_events", "order_items", "orders", "tenants")
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) seedTenant() id.TenantID {
	tenantID := id.TenantID(uuid.New())
	_, err := s.postgres.DB.Exec(
		`INSERT INTO tenants (id, name, code) VALUES ($1, $2, $3)`,
		uuid.UUID(tenantID), "Test Bistro", "bistro-"+uuid.NewString())
	s.Require().NoError(err)
	return tenantID
}

func (s *PostgresStoreSuite) seedOrder(tenantID id.TenantID) id.OrderID {
	orderID := id.OrderID(uuid.New())
	_, err := s.postgres.DB.Exec(
		`INSERT INTO orders (id, tenant_id, order_type, total_amount) VALUES ($1, $2, 'dine_in', 25.50)`,
		uuid.UUID(orderID), uuid.UUID(tenantID))
	s.Require().NoError(err)
	return orderID
}

func (s *PostgresStoreSuite) emit(tenantID id.TenantID, orderID id.OrderID, to models.Status) error {
	return s.store.EmitStatus(context.Background(), &models.StatusEvent{
		ID:       uuid.New(),
		TenantID: tenantID,
		OrderID:  orderID,
		ToStatus: to,
	})
}

// TestConcurrentEmitsSerialize verifies the row lock keeps the event log a
// linear chain: exactly one concurrent event may depart from 'new'.
func (s *PostgresStoreSuite) TestConcurrentEmitsSerialize() {
	ctx := context.Background()
	tenantID := s.seedTenant()
	orderID := s.seedOrder(tenantID)

	const goroutines = 30
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.emit(tenantID, orderID, models.StatusConfirmed)
		}()
	}
	wg.Wait()

	detail, err := s.store.Get(ctx, tenantID, orderID)
	s.Require().NoError(err)
	s.Len(detail.Events, goroutines)

	fromNew := 0
	for _, ev := range detail.Events {
		if ev.FromStatus == models.StatusNew {
			fromNew++
		} else {
			s.Equal(models.StatusConfirmed, ev.FromStatus)
		}
	}
	s.Equal(1, fromNew, "exactly one event departs from the initial status")

	status, err := s.store.CurrentStatus(ctx, orderID)
	s.Require().NoError(err)
	s.Equal(models.StatusConfirmed, status)
}

func (s *PostgresStoreSuite) TestEmitUnknownOrder() {
	tenantID := s.seedTenant()
	err := s.emit(tenantID, id.OrderID(uuid.New()), models.StatusConfirmed)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

// TestEmitCrossTenant verifies another tenant's order reads as not found and
// that the failed emit leaves no trace in the log.
func (s *PostgresStoreSuite) TestEmitCrossTenant() {
	ctx := context.Background()
	tenantID := s.seedTenant()
	orderID := s.seedOrder(tenantID)

	err := s.emit(s.seedTenant(), orderID, models.StatusConfirmed)
	s.ErrorIs(err, sentinel.ErrNotFound)

	status, err := s.store.CurrentStatus(ctx, orderID)
	s.Require().NoError(err)
	s.Equal(models.StatusNew, status)
}

func (s *PostgresStoreSuite) TestCurrentStatusDefaultsToNew() {
	status, err := s.store.CurrentStatus(context.Background(), id.OrderID(uuid.New()))
	s.Require().NoError(err)
	s.Equal(models.StatusNew, status)
}

// TestActiveOrdersExcludesTerminalStatuses verifies the kitchen query only
// returns orders in the active set.
func (s *PostgresStoreSuite) TestActiveOrdersExcludesTerminalStatuses() {
	ctx := context.Background()
	tenantID := s.seedTenant()
	active := s.seedOrder(tenantID)
	paid := s.seedOrder(tenantID)
	cancelled := s.seedOrder(tenantID)

	s.Require().NoError(s.emit(tenantID, active, models.StatusPreparing))
	s.Require().NoError(s.emit(tenantID, paid, models.StatusPaid))
	s.Require().NoError(s.emit(tenantID, cancelled, models.StatusCancelled))

	orders, err := s.store.ActiveOrders(ctx, tenantID)
	s.Require().NoError(err)
	s.Require().Len(orders, 1)
	s.Equal(active, orders[0].ID)
	s.Equal(models.StatusPreparing, orders[0].CurrentStatus)
	s.NotNil(orders[0].StatusUpdatedAt)
	s.NotNil(orders[0].Items, "items decode to an empty list, not null")
}

func (s *PostgresStoreSuite) TestListNewestFirst() {
	ctx := context.Background()
	tenantID := s.seedTenant()
	s.seedOrder(tenantID)
	s.seedOrder(tenantID)

	orders, err := s.store.List(ctx, tenantID)
	s.Require().NoError(err)
	s.Require().Len(orders, 2)
	s.False(orders[0].CreatedAt.Before(orders[1].CreatedAt))
}
