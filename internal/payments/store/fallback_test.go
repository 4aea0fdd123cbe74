package store

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tably/internal/payments/models"
	id "tably/pkg/domain"
	"tably/pkg/platform/sentinel"
)

// missingTableConfigStore simulates a provider table that was never migrated.
type missingTableConfigStore struct{}

func (missingTableConfigStore) DefaultConfig(ctx context.Context, tenantID id.TenantID) (*models.ProviderConfig, error) {
	return nil, sentinel.ErrMissingTable
}

func (missingTableConfigStore) UpsertConfig(ctx context.Context, tenantID id.TenantID, cfg *models.ProviderConfig) error {
	return sentinel.ErrMissingTable
}

func TestFallbackConfigStore(t *testing.T) {
	ctx := context.Background()
	tenantID := id.TenantID(uuid.New())

	t.Run("uses primary when healthy", func(t *testing.T) {
		primary := NewMemory()
		fallback := NewFallbackConfigStore(primary, slog.Default())

		cfg := &models.ProviderConfig{Provider: models.ProviderMock, Currency: "USD"}
		require.NoError(t, fallback.UpsertConfig(ctx, tenantID, cfg))

		got, err := primary.DefaultConfig(ctx, tenantID)
		require.NoError(t, err)
		assert.Equal(t, models.ProviderMock, got.Provider)
	})

	t.Run("falls back to memory when table is missing", func(t *testing.T) {
		fallback := NewFallbackConfigStore(missingTableConfigStore{}, slog.Default())

		cfg := &models.ProviderConfig{Provider: models.ProviderMock, Currency: "USD"}
		require.NoError(t, fallback.UpsertConfig(ctx, tenantID, cfg))

		got, err := fallback.DefaultConfig(ctx, tenantID)
		require.NoError(t, err)
		assert.Equal(t, models.ProviderMock, got.Provider)
	})

	t.Run("missing table and no local config reads as not found", func(t *testing.T) {
		fallback := NewFallbackConfigStore(missingTableConfigStore{}, slog.Default())
		_, err := fallback.DefaultConfig(ctx, id.TenantID(uuid.New()))
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})
}
