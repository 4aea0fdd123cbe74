package store

import (
	"context"
	"sync"

	"tably/internal/tenant/models"
	id "tably/pkg/domain"
	"tably/pkg/platform/sentinel"
)

// MemoryStore is the in-memory tenant store used as a test double.
type MemoryStore struct {
	mu      sync.RWMutex
	tenants map[string]*models.Tenant
	tables  map[id.TenantID][]models.Table
}

func NewMemory() *MemoryStore {
	return &MemoryStore{
		tenants: make(map[string]*models.Tenant),
		tables:  make(map[id.TenantID][]models.Table),
	}
}

// AddTenant seeds a tenant fixture.
func (s *MemoryStore) AddTenant(t models.Tenant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tenants[t.Code] = &t
}

// AddTable seeds a table fixture.
func (s *MemoryStore) AddTable(t models.Table) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[t.TenantID] = append(s.tables[t.TenantID], t)
}

func (s *MemoryStore) FindActiveByCode(ctx context.Context, code string) (*models.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tenants[code]
	if !ok || !t.IsActive {
		return nil, sentinel.ErrNotFound
	}
	clone := *t
	return &clone, nil
}

func (s *MemoryStore) FindTable(ctx context.Context, tenantID id.TenantID, tableNumber string) (*models.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tables[tenantID] {
		if t.TableNumber == tableNumber {
			clone := t
			return &clone, nil
		}
	}
	return nil, sentinel.ErrNotFound
}
