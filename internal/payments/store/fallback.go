package store

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"tably/internal/payments/models"
	id "tably/pkg/domain"
	"tably/pkg/platform/sentinel"
)

// ConfigStore reads and writes the per-tenant provider configuration.
type ConfigStore interface {
	DefaultConfig(ctx context.Context, tenantID id.TenantID) (*models.ProviderConfig, error)
	UpsertConfig(ctx context.Context, tenantID id.TenantID, cfg *models.ProviderConfig) error
}

// FallbackConfigStore wraps a ConfigStore with a process-local in-memory
// map used only while the backing table is absent. This is the single
// place that decides "is the config store reachable"; callers never sniff
// store error codes themselves.
//
// The fallback map is process-local and lost on restart. It is NOT shared
// across horizontally scaled instances.
type FallbackConfigStore struct {
	primary ConfigStore
	logger  *slog.Logger

	mu    sync.RWMutex
	local map[id.TenantID]*models.ProviderConfig
}

func NewFallbackConfigStore(primary ConfigStore, logger *slog.Logger) *FallbackConfigStore {
	return &FallbackConfigStore{
		primary: primary,
		logger:  logger,
		local:   make(map[id.TenantID]*models.ProviderConfig),
	}
}

func (s *FallbackConfigStore) DefaultConfig(ctx context.Context, tenantID id.TenantID) (*models.ProviderConfig, error) {
	cfg, err := s.primary.DefaultConfig(ctx, tenantID)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, sentinel.ErrMissingTable) {
		return nil, err
	}
	s.logger.Warn("provider table missing, reading in-memory config", "tenant_id", tenantID)
	s.mu.RLock()
	defer s.mu.RUnlock()
	local, ok := s.local[tenantID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *local
	return &clone, nil
}

func (s *FallbackConfigStore) UpsertConfig(ctx context.Context, tenantID id.TenantID, cfg *models.ProviderConfig) error {
	err := s.primary.UpsertConfig(ctx, tenantID, cfg)
	if err == nil || !errors.Is(err, sentinel.ErrMissingTable) {
		return err
	}
	s.logger.Warn("provider table missing, storing config in memory", "tenant_id", tenantID)
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *cfg
	s.local[tenantID] = &clone
	return nil
}
