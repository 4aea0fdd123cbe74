package service

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tably/internal/payments/models"
	"tably/internal/payments/store"
	id "tably/pkg/domain"
	dErrors "tably/pkg/domain-errors"
)

func newService(t *testing.T) (*Service, *store.MemoryStore, id.TenantID) {
	t.Helper()
	mem := store.NewMemory()
	svc := New(mem, mem, mem, nil, slog.Default())
	return svc, mem, id.TenantID(uuid.New())
}

func configureMock(t *testing.T, svc *Service, tenantID id.TenantID) {
	t.Helper()
	_, err := svc.UpsertConfig(context.Background(), tenantID, &models.ProviderConfig{
		Provider:       models.ProviderMock,
		Currency:       "USD",
		EnabledMethods: []string{"cash"},
	})
	require.NoError(t, err)
}

func TestCreateIntent(t *testing.T) {
	t.Run("mock provider synthesizes a capturable intent", func(t *testing.T) {
		svc, _, tenantID := newService(t)
		configureMock(t, svc, tenantID)

		intent, err := svc.CreateIntent(context.Background(), tenantID, CreateIntentInput{Amount: 43.42})
		require.NoError(t, err)
		assert.Equal(t, models.ProviderMock, intent.Provider)
		assert.Equal(t, models.StatusRequiresCapture, intent.Status)
		assert.Equal(t, "USD", intent.Currency)
		assert.True(t, strings.HasPrefix(intent.ClientSecret, "mock_"),
			"client secret %q should be mock-prefixed", intent.ClientSecret)
	})

	t.Run("without provider config fails not-configured", func(t *testing.T) {
		svc, _, tenantID := newService(t)
		_, err := svc.CreateIntent(context.Background(), tenantID, CreateIntentInput{Amount: 10})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotConfigured))
	})

	t.Run("stripe without publishable key fails not-configured", func(t *testing.T) {
		svc, _, tenantID := newService(t)
		_, err := svc.UpsertConfig(context.Background(), tenantID, &models.ProviderConfig{
			Provider: models.ProviderStripe,
			Currency: "USD",
		})
		require.NoError(t, err)

		_, err = svc.CreateIntent(context.Background(), tenantID, CreateIntentInput{Amount: 10})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotConfigured))
	})

	t.Run("stripe with keys fails not-implemented", func(t *testing.T) {
		svc, _, tenantID := newService(t)
		_, err := svc.UpsertConfig(context.Background(), tenantID, &models.ProviderConfig{
			Provider:       models.ProviderStripe,
			Currency:       "USD",
			PublishableKey: "pk_test_123",
		})
		require.NoError(t, err)

		_, err = svc.CreateIntent(context.Background(), tenantID, CreateIntentInput{Amount: 10})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotImplemented))
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		svc, _, tenantID := newService(t)
		configureMock(t, svc, tenantID)
		_, err := svc.CreateIntent(context.Background(), tenantID, CreateIntentInput{Amount: 0})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func TestCapture(t *testing.T) {
	svc, _, tenantID := newService(t)
	configureMock(t, svc, tenantID)

	intent, err := svc.CreateIntent(context.Background(), tenantID, CreateIntentInput{Amount: 20})
	require.NoError(t, err)

	result, err := svc.Capture(context.Background(), tenantID, CaptureInput{IntentID: intent.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, models.StatusSucceeded, result.Status)
	assert.Equal(t, 20.0, result.Amount)

	stored, err := svc.intents.GetIntent(context.Background(), tenantID, intent.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSucceeded, stored.Status)
}

func TestCaptureUnknownIntent(t *testing.T) {
	svc, _, tenantID := newService(t)
	configureMock(t, svc, tenantID)

	_, err := svc.Capture(context.Background(), tenantID, CaptureInput{IntentID: uuid.NewString()})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestSplit(t *testing.T) {
	svc, _, tenantID := newService(t)

	t.Run("accepts sums within one minor unit", func(t *testing.T) {
		result, err := svc.Split(context.Background(), tenantID, SplitInput{
			Total:    100.00,
			Currency: "USD",
			Splits:   []models.SplitLine{{Amount: 60}, {Amount: 40.005}},
		})
		require.NoError(t, err)
		require.Len(t, result.Splits, 2)
		for _, line := range result.Splits {
			assert.True(t, strings.HasPrefix(line.ID, "split_"))
		}
	})

	t.Run("rejects mismatched sums", func(t *testing.T) {
		_, err := svc.Split(context.Background(), tenantID, SplitInput{
			Total:  100.00,
			Splits: []models.SplitLine{{Amount: 60}, {Amount: 30}},
		})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
		assert.Equal(t, "split_mismatch", dErrors.ReasonOf(err))
	})

	t.Run("requires at least one split", func(t *testing.T) {
		_, err := svc.Split(context.Background(), tenantID, SplitInput{Total: 10})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func TestEmitEvent(t *testing.T) {
	t.Run("infers status and appends exactly one event", func(t *testing.T) {
		svc, mem, tenantID := newService(t)
		configureMock(t, svc, tenantID)
		intent, err := svc.CreateIntent(context.Background(), tenantID, CreateIntentInput{Amount: 15})
		require.NoError(t, err)

		ev, err := svc.EmitEvent(context.Background(), tenantID, intent.ID, "payment_succeeded", nil)
		require.NoError(t, err)
		assert.Equal(t, "payment_succeeded", ev.EventType)
		assert.Equal(t, models.ProviderMock, ev.Provider)

		stored, err := mem.GetIntent(context.Background(), tenantID, intent.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusSucceeded, stored.Status)
		assert.Len(t, mem.Events(intent.ID), 1)
	})

	t.Run("unrecognized event types leave status unchanged", func(t *testing.T) {
		svc, mem, tenantID := newService(t)
		configureMock(t, svc, tenantID)
		intent, err := svc.CreateIntent(context.Background(), tenantID, CreateIntentInput{Amount: 15})
		require.NoError(t, err)

		_, err = svc.EmitEvent(context.Background(), tenantID, intent.ID, "receipt_emailed", nil)
		require.NoError(t, err)

		stored, err := mem.GetIntent(context.Background(), tenantID, intent.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusRequiresCapture, stored.Status)
		assert.Len(t, mem.Events(intent.ID), 1)
	})

	t.Run("unknown intent yields not found", func(t *testing.T) {
		svc, _, tenantID := newService(t)
		_, err := svc.EmitEvent(context.Background(), tenantID, id.IntentID(uuid.New()), "payment_started", nil)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	t.Run("missing event table fails loudly", func(t *testing.T) {
		svc, mem, tenantID := newService(t)
		configureMock(t, svc, tenantID)
		intent, err := svc.CreateIntent(context.Background(), tenantID, CreateIntentInput{Amount: 15})
		require.NoError(t, err)

		mem.EventsTableMissing = true
		_, err = svc.EmitEvent(context.Background(), tenantID, intent.ID, "payment_failed", nil)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))
		assert.Equal(t, "missing_table", dErrors.ReasonOf(err))
	})
}

func TestProviderAdmin(t *testing.T) {
	svc, _, tenantID := newService(t)

	first, err := svc.CreateProvider(context.Background(), tenantID, CreateProviderInput{
		Provider: "mock", Currency: "USD", IsDefault: true,
	})
	require.NoError(t, err)

	second, err := svc.CreateProvider(context.Background(), tenantID, CreateProviderInput{
		Provider: "stripe", Currency: "USD", PublishableKey: "pk_test",
	})
	require.NoError(t, err)

	require.NoError(t, svc.MakeDefault(context.Background(), tenantID, second.ID))

	records, err := svc.ListProviders(context.Background(), tenantID)
	require.NoError(t, err)
	require.Len(t, records, 2)

	defaults := 0
	for _, rec := range records {
		if rec.IsDefault {
			defaults++
			assert.Equal(t, second.ID, rec.ID)
		}
	}
	assert.Equal(t, 1, defaults, "exactly one default per tenant")
	_ = first
}
