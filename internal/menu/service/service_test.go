package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	menumodels "tably/internal/menu/models"
	menustore "tably/internal/menu/store"
	tenantmodels "tably/internal/tenant/models"
	tenantstore "tably/internal/tenant/store"
	id "tably/pkg/domain"
	dErrors "tably/pkg/domain-errors"
)

func newFixture(t *testing.T) (*Service, id.TenantID) {
	t.Helper()

	tenants := tenantstore.NewMemory()
	tenantID := id.TenantID(uuid.New())
	tenants.AddTenant(tenantmodels.Tenant{ID: tenantID, Name: "Bistro", Code: "bistro", IsActive: true})
	tenants.AddTenant(tenantmodels.Tenant{ID: id.TenantID(uuid.New()), Code: "closed", IsActive: false})
	tenants.AddTable(tenantmodels.Table{ID: id.TableID(uuid.New()), TenantID: tenantID, TableNumber: "12"})

	menu := menustore.NewMemory()
	menu.AddCategory(tenantID, menumodels.Category{ID: uuid.NewString(), Name: "Mains", SortOrder: 1})
	menu.AddItem(tenantID, menumodels.Item{ID: id.MenuItemID(uuid.New()), Name: "Burger", Price: 9.50, IsAvailable: true})
	menu.AddItem(tenantID, menumodels.Item{ID: id.MenuItemID(uuid.New()), Name: "Special", Price: 15.00, IsAvailable: false})

	return New(menu, tenants), tenantID
}

func TestPublicMenu(t *testing.T) {
	svc, tenantID := newFixture(t)

	t.Run("returns available items for an active tenant", func(t *testing.T) {
		tm, err := svc.PublicMenu(context.Background(), "bistro")
		require.NoError(t, err)
		assert.Equal(t, tenantID, tm.Tenant.ID)
		require.Len(t, tm.Menu.Items, 1, "unavailable items are excluded")
		assert.Equal(t, "Burger", tm.Menu.Items[0].Name)
	})

	t.Run("inactive tenant reads as not found", func(t *testing.T) {
		_, err := svc.PublicMenu(context.Background(), "closed")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	t.Run("requires tenantCode", func(t *testing.T) {
		_, err := svc.PublicMenu(context.Background(), "")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func TestQREntry(t *testing.T) {
	svc, _ := newFixture(t)

	t.Run("resolves tenant and table", func(t *testing.T) {
		tm, err := svc.QREntry(context.Background(), "bistro", "12")
		require.NoError(t, err)
		require.NotNil(t, tm.Table)
		assert.Equal(t, "12", tm.Table.TableNumber)
	})

	t.Run("unknown table reads as not found", func(t *testing.T) {
		_, err := svc.QREntry(context.Background(), "bistro", "99")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}
