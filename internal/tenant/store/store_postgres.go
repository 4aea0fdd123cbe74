package store

import (
	"context"
	"database/sql"
	"fmt"

	"tably/internal/platform/postgres"
	"tably/internal/tenant/models"
	id "tably/pkg/domain"
)

// PostgresStore resolves tenants and tables for the public entry surface.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// FindActiveByCode resolves an active tenant by its public code.
// Inactive or unknown codes surface as sentinel.ErrNotFound.
func (s *PostgresStore) FindActiveByCode(ctx context.Context, code string) (*models.Tenant, error) {
	const q = `
SELECT id, name, code, is_active, COALESCE(branding, '{}'), created_at, updated_at
FROM tenants
WHERE code = $1 AND is_active = true
`
	var t models.Tenant
	err := s.db.QueryRowContext(ctx, q, code).Scan(
		&t.ID, &t.Name, &t.Code, &t.IsActive, &t.Branding, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("find tenant by code: %w", postgres.Classify(err))
	}
	return &t, nil
}

// FindTable resolves a table by its printed number within a tenant.
func (s *PostgresStore) FindTable(ctx context.Context, tenantID id.TenantID, tableNumber string) (*models.Table, error) {
	const q = `
SELECT id, tenant_id, table_number, COALESCE(section, ''), COALESCE(capacity, 0)
FROM tables
WHERE tenant_id = $1 AND table_number = $2
`
	var t models.Table
	err := s.db.QueryRowContext(ctx, q, tenantID, tableNumber).Scan(
		&t.ID, &t.TenantID, &t.TableNumber, &t.Section, &t.Capacity)
	if err != nil {
		return nil, fmt.Errorf("find table: %w", postgres.Classify(err))
	}
	return &t, nil
}
