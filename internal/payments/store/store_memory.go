package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"tably/internal/payments/models"
	id "tably/pkg/domain"
	"tably/pkg/platform/sentinel"
)

// MemoryStore is the in-memory payments store used as a test double.
type MemoryStore struct {
	mu        sync.RWMutex
	intents   map[id.IntentID]*models.Intent
	events    map[id.IntentID][]models.PaymentEvent
	providers map[id.TenantID][]*models.ProviderRecord

	// EventsTableMissing simulates the degraded mode where the payment
	// event log has not been migrated yet.
	EventsTableMissing bool
}

func NewMemory() *MemoryStore {
	return &MemoryStore{
		intents:   make(map[id.IntentID]*models.Intent),
		events:    make(map[id.IntentID][]models.PaymentEvent),
		providers: make(map[id.TenantID][]*models.ProviderRecord),
	}
}

func (s *MemoryStore) CreateIntent(ctx context.Context, intent *models.Intent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	intent.CreatedAt = now
	intent.UpdatedAt = now
	clone := *intent
	s.intents[intent.ID] = &clone
	return nil
}

func (s *MemoryStore) GetIntent(ctx context.Context, tenantID id.TenantID, intentID id.IntentID) (*models.Intent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	intent, ok := s.intents[intentID]
	if !ok || intent.TenantID != tenantID {
		return nil, sentinel.ErrNotFound
	}
	clone := *intent
	return &clone, nil
}

// GetIntentByID looks an intent up without tenant scoping. The public
// checkout surface has no authenticated tenant; isolation there comes from
// the intent's own tenant_id.
func (s *MemoryStore) GetIntentByID(ctx context.Context, intentID id.IntentID) (*models.Intent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	intent, ok := s.intents[intentID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *intent
	return &clone, nil
}

// SetIntentStatus updates an intent's status without tenant scoping or an
// existence guard, matching the unguarded checkout cancellation path.
func (s *MemoryStore) SetIntentStatus(ctx context.Context, intentID id.IntentID, status models.IntentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if intent, ok := s.intents[intentID]; ok {
		intent.Status = status
		intent.UpdatedAt = time.Now().UTC()
	}
	return nil
}

func (s *MemoryStore) UpdateIntentStatus(ctx context.Context, tenantID id.TenantID, intentID id.IntentID, status models.IntentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	intent, ok := s.intents[intentID]
	if !ok || intent.TenantID != tenantID {
		return nil
	}
	intent.Status = status
	intent.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *MemoryStore) AppendEvent(ctx context.Context, ev *models.PaymentEvent, newStatus models.IntentStatus, statusChanged bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.EventsTableMissing {
		return sentinel.ErrMissingTable
	}
	if intent, ok := s.intents[ev.IntentID]; ok && statusChanged {
		intent.Status = newStatus
		intent.UpdatedAt = time.Now().UTC()
	}
	ev.CreatedAt = time.Now().UTC()
	s.events[ev.IntentID] = append(s.events[ev.IntentID], *ev)
	return nil
}

// Events returns the recorded events for an intent, for assertions.
func (s *MemoryStore) Events(intentID id.IntentID) []models.PaymentEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.PaymentEvent{}, s.events[intentID]...)
}

func (s *MemoryStore) DefaultConfig(ctx context.Context, tenantID id.TenantID) (*models.ProviderConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rec := range s.providers[tenantID] {
		if rec.IsDefault {
			cfg := rec.ProviderConfig
			return &cfg, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *MemoryStore) UpsertConfig(ctx context.Context, tenantID id.TenantID, cfg *models.ProviderConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	for _, rec := range s.providers[tenantID] {
		if rec.Provider == cfg.Provider {
			rec.ProviderConfig = *cfg
			rec.IsDefault = true
			rec.UpdatedAt = now
			return nil
		}
	}
	for _, rec := range s.providers[tenantID] {
		rec.IsDefault = false
	}
	s.providers[tenantID] = append(s.providers[tenantID], &models.ProviderRecord{
		ID:             uuid.New(),
		TenantID:       tenantID,
		ProviderConfig: *cfg,
		IsDefault:      true,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	return nil
}

func (s *MemoryStore) ListProviders(ctx context.Context, tenantID id.TenantID) ([]models.ProviderRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := make([]models.ProviderRecord, 0, len(s.providers[tenantID]))
	for _, rec := range s.providers[tenantID] {
		records = append(records, *rec)
	}
	return records, nil
}

func (s *MemoryStore) CreateProvider(ctx context.Context, rec *models.ProviderRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	if rec.IsDefault {
		for _, existing := range s.providers[rec.TenantID] {
			existing.IsDefault = false
		}
	}
	clone := *rec
	s.providers[rec.TenantID] = append(s.providers[rec.TenantID], &clone)
	return nil
}

func (s *MemoryStore) PatchProvider(ctx context.Context, tenantID id.TenantID, providerID uuid.UUID, patch models.ProviderPatch) (*models.ProviderRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.providers[tenantID] {
		if rec.ID != providerID {
			continue
		}
		if patch.LiveMode != nil {
			rec.LiveMode = *patch.LiveMode
		}
		if patch.Currency != nil {
			rec.Currency = *patch.Currency
		}
		if patch.EnabledMethods != nil {
			rec.EnabledMethods = append([]string{}, (*patch.EnabledMethods)...)
		}
		if patch.PublishableKey != nil {
			rec.PublishableKey = *patch.PublishableKey
		}
		if patch.SecretKey != nil {
			rec.SecretKey = *patch.SecretKey
		}
		rec.UpdatedAt = time.Now().UTC()
		clone := *rec
		return &clone, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *MemoryStore) MakeDefault(ctx context.Context, tenantID id.TenantID, providerID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var target *models.ProviderRecord
	for _, rec := range s.providers[tenantID] {
		if rec.ID == providerID {
			target = rec
			break
		}
	}
	if target == nil {
		return sentinel.ErrNotFound
	}
	for _, rec := range s.providers[tenantID] {
		rec.IsDefault = false
	}
	target.IsDefault = true
	target.UpdatedAt = time.Now().UTC()
	return nil
}
