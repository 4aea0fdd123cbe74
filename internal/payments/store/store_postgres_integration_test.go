//go:build integration

package store_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"tably/internal/payments/models"
	"tably/internal/payments/store"
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
		"payment_events", "payment_intents", "payment_providers", "tenants")
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

func (s *PostgresStoreSuite) seedIntent(tenantID id.TenantID) *models.Intent {
	intent := &models.Intent{
		ID:       id.IntentID(uuid.New()),
		TenantID: tenantID,
		Provider: models.ProviderMock,
		Amount:   26.40,
		Currency: "USD",
		Status:   models.StatusRequiresPaymentMethod,
	}
	s.Require().NoError(s.store.CreateIntent(context.Background(), intent))
	return intent
}

// TestUpsertKeepsSecretWhenOmitted verifies that re-submitting the config
// without a secret key does not wipe the stored one.
func (s *PostgresStoreSuite) TestUpsertKeepsSecretWhenOmitted() {
	ctx := context.Background()
	tenantID := s.seedTenant()

	err := s.store.UpsertConfig(ctx, tenantID, &models.ProviderConfig{
		Provider:  models.ProviderStripe,
		Currency:  "USD",
		SecretKey: "sk_test_original",
	})
	s.Require().NoError(err)

	err = s.store.UpsertConfig(ctx, tenantID, &models.ProviderConfig{
		Provider:       models.ProviderStripe,
		Currency:       "EUR",
		PublishableKey: "pk_test_new",
	})
	s.Require().NoError(err)

	cfg, err := s.store.DefaultConfig(ctx, tenantID)
	s.Require().NoError(err)
	s.Equal("EUR", cfg.Currency)
	s.Equal("pk_test_new", cfg.PublishableKey)
	s.Equal("sk_test_original", cfg.SecretKey, "omitted secret keeps the stored value")
}

func (s *PostgresStoreSuite) TestDefaultConfigNotFound() {
	_, err := s.store.DefaultConfig(context.Background(), s.seedTenant())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

// TestMissingProvidersTable verifies the undefined-table error surfaces as
// the sentinel that drives the in-memory config fallback.
func (s *PostgresStoreSuite) TestMissingProvidersTable() {
	ctx := context.Background()
	tenantID := s.seedTenant()

	_, err := s.postgres.DB.ExecContext(ctx, `DROP TABLE payment_providers`)
	s.Require().NoError(err)
	defer func() {
		s.Require().NoError(s.postgres.ApplySchema(ctx))
	}()

	_, err = s.store.DefaultConfig(ctx, tenantID)
	s.ErrorIs(err, sentinel.ErrMissingTable)

	err = s.store.UpsertConfig(ctx, tenantID, &models.ProviderConfig{
		Provider: models.ProviderMock,
		Currency: "USD",
	})
	s.ErrorIs(err, sentinel.ErrMissingTable)
}

// TestMakeDefault verifies exactly one provider row stays default.
func (s *PostgresStoreSuite) TestMakeDefault() {
	ctx := context.Background()
	tenantID := s.seedTenant()

	first := &models.ProviderRecord{
		ID:       uuid.New(),
		TenantID: tenantID,
		ProviderConfig: models.ProviderConfig{
			Provider: models.ProviderMock,
			Currency: "USD",
		},
		IsDefault: true,
	}
	s.Require().NoError(s.store.CreateProvider(ctx, first))

	second := &models.ProviderRecord{
		ID:       uuid.New(),
		TenantID: tenantID,
		ProviderConfig: models.ProviderConfig{
			Provider: models.ProviderStripe,
			Currency: "USD",
		},
	}
	s.Require().NoError(s.store.CreateProvider(ctx, second))

	s.Require().NoError(s.store.MakeDefault(ctx, tenantID, second.ID))

	records, err := s.store.ListProviders(ctx, tenantID)
	s.Require().NoError(err)
	s.Require().Len(records, 2)
	defaults := 0
	for _, rec := range records {
		if rec.IsDefault {
			defaults++
			s.Equal(second.ID, rec.ID)
		}
	}
	s.Equal(1, defaults)

	err = s.store.MakeDefault(ctx, tenantID, uuid.New())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

// TestAppendEventUpdatesIntent verifies the event insert and the intent
// status update commit atomically.
func (s *PostgresStoreSuite) TestAppendEventUpdatesIntent() {
	ctx := context.Background()
	tenantID := s.seedTenant()
	intent := s.seedIntent(tenantID)

	ev := &models.PaymentEvent{
		ID:        uuid.New(),
		TenantID:  tenantID,
		IntentID:  intent.ID,
		Provider:  models.ProviderMock,
		EventType: "payment_succeeded",
	}
	s.Require().NoError(s.store.AppendEvent(ctx, ev, models.StatusSucceeded, true))
	s.False(ev.CreatedAt.IsZero())

	got, err := s.store.GetIntent(ctx, tenantID, intent.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusSucceeded, got.Status)
}

func (s *PostgresStoreSuite) TestGetIntentCrossTenant() {
	ctx := context.Background()
	intent := s.seedIntent(s.seedTenant())

	_, err := s.store.GetIntent(ctx, s.seedTenant(), intent.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}
