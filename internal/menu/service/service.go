package service

import (
	"context"
	"errors"

	menumodels "tably/internal/menu/models"
	tenantmodels "tably/internal/tenant/models"
	id "tably/pkg/domain"
	dErrors "tably/pkg/domain-errors"
	"tably/pkg/platform/sentinel"
)

// MenuStore reads menu data for a tenant.
type MenuStore interface {
	PublicMenu(ctx context.Context, tenantID id.TenantID) (*menumodels.PublicMenu, error)
}

// TenantStore resolves tenants and tables for the public entry points.
type TenantStore interface {
	FindActiveByCode(ctx context.Context, code string) (*tenantmodels.Tenant, error)
	FindTable(ctx context.Context, tenantID id.TenantID, tableNumber string) (*tenantmodels.Table, error)
}

// Service serves the customer-facing menu and QR entry surface.
type Service struct {
	menus   MenuStore
	tenants TenantStore
}

func New(menus MenuStore, tenants TenantStore) *Service {
	return &Service{menus: menus, tenants: tenants}
}

// TenantMenu is a public menu together with the tenant it belongs to.
type TenantMenu struct {
	Tenant *tenantmodels.Tenant   `json:"tenant"`
	Menu   *menumodels.PublicMenu `json:"menu"`
	Table  *tenantmodels.Table    `json:"table,omitempty"`
}

// PublicMenu resolves an active tenant by code and returns its menu.
func (s *Service) PublicMenu(ctx context.Context, tenantCode string) (*TenantMenu, error) {
	tenant, err := s.resolveTenant(ctx, tenantCode)
	if err != nil {
		return nil, err
	}
	menu, err := s.menus.PublicMenu(ctx, tenant.ID)
	if err != nil {
		return nil, wrapMenuErr(err)
	}
	return &TenantMenu{Tenant: tenant, Menu: menu}, nil
}

// QREntry resolves the tenant and table behind a scanned QR code and
// returns the menu for that table's session.
func (s *Service) QREntry(ctx context.Context, tenantCode, tableNumber string) (*TenantMenu, error) {
	tenant, err := s.resolveTenant(ctx, tenantCode)
	if err != nil {
		return nil, err
	}
	table, err := s.tenants.FindTable(ctx, tenant.ID, tableNumber)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "table not found")
		}
		return nil, wrapMenuErr(err)
	}
	menu, err := s.menus.PublicMenu(ctx, tenant.ID)
	if err != nil {
		return nil, wrapMenuErr(err)
	}
	return &TenantMenu{Tenant: tenant, Menu: menu, Table: table}, nil
}

func (s *Service) resolveTenant(ctx context.Context, tenantCode string) (*tenantmodels.Tenant, error) {
	if tenantCode == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "tenantCode is required")
	}
	tenant, err := s.tenants.FindActiveByCode(ctx, tenantCode)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "restaurant not found")
		}
		return nil, wrapMenuErr(err)
	}
	return tenant, nil
}

func wrapMenuErr(err error) error {
	if errors.Is(err, sentinel.ErrMissingTable) {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "menu storage unavailable").
			WithReason("missing_table")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "menu lookup failed")
}
