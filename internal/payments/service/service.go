// Package service orchestrates the payment intent lifecycle: provider
// resolution, synthetic mock settlement, the append-only payment event log
// with status inference, and the provider configuration surface.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"

	"github.com/google/uuid"

	paymetrics "tably/internal/payments/metrics"
	"tably/internal/payments/models"
	"tably/internal/payments/provider"
	"tably/internal/payments/store"
	"tably/internal/realtime"
	id "tably/pkg/domain"
	dErrors "tably/pkg/domain-errors"
	"tably/pkg/platform/sentinel"
)

// splitTolerance is one currency-minor-unit of rounding allowance when
// comparing split amounts against the total.
const splitTolerance = 0.01

// IntentStore persists payment intents and the payment event log.
type IntentStore interface {
	CreateIntent(ctx context.Context, intent *models.Intent) error
	GetIntent(ctx context.Context, tenantID id.TenantID, intentID id.IntentID) (*models.Intent, error)
	UpdateIntentStatus(ctx context.Context, tenantID id.TenantID, intentID id.IntentID, status models.IntentStatus) error
	AppendEvent(ctx context.Context, ev *models.PaymentEvent, newStatus models.IntentStatus, statusChanged bool) error
}

// AdminStore manages the multi-provider admin rows.
type AdminStore interface {
	ListProviders(ctx context.Context, tenantID id.TenantID) ([]models.ProviderRecord, error)
	CreateProvider(ctx context.Context, rec *models.ProviderRecord) error
	PatchProvider(ctx context.Context, tenantID id.TenantID, providerID uuid.UUID, patch models.ProviderPatch) (*models.ProviderRecord, error)
	MakeDefault(ctx context.Context, tenantID id.TenantID, providerID uuid.UUID) error
}

// Service exposes the authed payment operations.
type Service struct {
	intents  IntentStore
	config   store.ConfigStore
	admin    AdminStore
	notifier realtime.Notifier
	logger   *slog.Logger
}

// New constructs the payments service. A nil notifier disables fan-out.
func New(intents IntentStore, config store.ConfigStore, admin AdminStore, notifier realtime.Notifier, logger *slog.Logger) *Service {
	if notifier == nil {
		notifier = realtime.NopNotifier{}
	}
	return &Service{intents: intents, config: config, admin: admin, notifier: notifier, logger: logger}
}

// CreateIntentInput is the request for a direct payment intent.
type CreateIntentInput struct {
	Amount   float64     `json:"amount"`
	Currency string      `json:"currency"`
	OrderID  *id.OrderID `json:"order_id,omitempty"`
	Method   string      `json:"method,omitempty"`
}

// CreateIntent opens a payment attempt through the tenant's configured
// provider. Without a provider configuration the operation fails as
// not-configured; the mock provider settles everything locally.
func (s *Service) CreateIntent(ctx context.Context, tenantID id.TenantID, in CreateIntentInput) (*models.Intent, error) {
	if err := requireTenantID(tenantID); err != nil {
		return nil, err
	}
	if in.Amount <= 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "amount must be positive")
	}

	cfg, prov, err := s.resolveProvider(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	currency := in.Currency
	if currency == "" {
		currency = cfg.Currency
	}

	res, err := prov.CreateIntent(ctx, provider.CreateIntentRequest{
		TenantID: tenantID,
		Amount:   in.Amount,
		Currency: currency,
		OrderID:  in.OrderID,
		Method:   in.Method,
	})
	if err != nil {
		return nil, err
	}

	intent := &models.Intent{
		ID:           res.IntentID,
		TenantID:     tenantID,
		OrderID:      in.OrderID,
		Provider:     prov.Name(),
		Amount:       in.Amount,
		Currency:     currency,
		Status:       res.Status,
		ClientSecret: res.ClientSecret,
	}
	if err := s.intents.CreateIntent(ctx, intent); err != nil {
		return nil, wrapPaymentErr(err)
	}
	paymetrics.IntentsCreated.WithLabelValues(string(prov.Name())).Inc()
	s.notifier.Notify(ctx, realtime.TopicPaymentIntents, tenantID)
	return intent, nil
}

// CaptureInput identifies the intent to capture.
type CaptureInput struct {
	IntentID string  `json:"intent_id"`
	Amount   float64 `json:"amount,omitempty"`
}

// Capture settles a previously created intent through its provider.
func (s *Service) Capture(ctx context.Context, tenantID id.TenantID, in CaptureInput) (*models.CaptureResult, error) {
	if err := requireTenantID(tenantID); err != nil {
		return nil, err
	}
	intentID, err := id.ParseIntentID(in.IntentID)
	if err != nil {
		return nil, err
	}
	intent, err := s.intents.GetIntent(ctx, tenantID, intentID)
	if err != nil {
		return nil, wrapIntentLookup(err)
	}

	_, prov, err := s.resolveProvider(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	result, err := prov.Capture(ctx, provider.CaptureRequest{Intent: intent, Amount: in.Amount})
	if err != nil {
		return nil, err
	}
	if err := s.intents.UpdateIntentStatus(ctx, tenantID, intentID, result.Status); err != nil {
		return nil, wrapPaymentErr(err)
	}
	s.notifier.Notify(ctx, realtime.TopicPaymentIntents, tenantID)
	return result, nil
}

// RefundInput identifies the settled payment to refund.
type RefundInput struct {
	PaymentID string  `json:"payment_id"`
	Amount    float64 `json:"amount"`
	Reason    string  `json:"reason,omitempty"`
}

// Refund returns money through the tenant's provider.
func (s *Service) Refund(ctx context.Context, tenantID id.TenantID, in RefundInput) (*models.RefundResult, error) {
	if err := requireTenantID(tenantID); err != nil {
		return nil, err
	}
	if in.PaymentID == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "payment_id is required")
	}
	if in.Amount <= 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "amount must be positive")
	}
	_, prov, err := s.resolveProvider(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return prov.Refund(ctx, provider.RefundRequest{
		TenantID:  tenantID,
		PaymentID: in.PaymentID,
		Amount:    in.Amount,
		Reason:    in.Reason,
	})
}

// SplitInput is the split-calculator request.
type SplitInput struct {
	Total    float64            `json:"total"`
	Currency string             `json:"currency"`
	Splits   []models.SplitLine `json:"splits"`
}

// Split validates that the requested shares sum to the total within one
// minor-unit tolerance and echoes them back with synthetic line ids.
// Nothing is persisted: this is a calculator, not a ledger entry.
func (s *Service) Split(ctx context.Context, tenantID id.TenantID, in SplitInput) (*models.SplitResult, error) {
	if err := requireTenantID(tenantID); err != nil {
		return nil, err
	}
	if len(in.Splits) == 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "splits are required")
	}
	var sum float64
	for _, line := range in.Splits {
		if line.Amount <= 0 {
			return nil, dErrors.New(dErrors.CodeInvalidInput, "split amounts must be positive")
		}
		sum += line.Amount
	}
	if math.Abs(sum-in.Total) > splitTolerance {
		return nil, dErrors.Newf(dErrors.CodeInvalidInput,
			"split amounts sum to %.2f, expected %.2f", sum, in.Total).
			WithReason("split_mismatch")
	}

	result := &models.SplitResult{
		Total:    in.Total,
		Currency: in.Currency,
		Splits:   make([]models.SplitResultLine, 0, len(in.Splits)),
	}
	for _, line := range in.Splits {
		result.Splits = append(result.Splits, models.SplitResultLine{
			ID:     "split_" + uuid.NewString(),
			Amount: line.Amount,
			Label:  line.Label,
		})
	}
	return result, nil
}

// EmitEvent appends a payment event and moves the intent to the status the
// event type implies. A missing event table fails loudly as degraded mode:
// the audit log is not optional for payment state.
func (s *Service) EmitEvent(ctx context.Context, tenantID id.TenantID, intentID id.IntentID, eventType string, payload json.RawMessage) (*models.PaymentEvent, error) {
	if err := requireTenantID(tenantID); err != nil {
		return nil, err
	}
	if eventType == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "event_type is required")
	}

	intent, err := s.intents.GetIntent(ctx, tenantID, intentID)
	if err != nil {
		return nil, wrapIntentLookup(err)
	}

	newStatus, changed := models.StatusForEvent(eventType)
	ev := &models.PaymentEvent{
		ID:        uuid.New(),
		TenantID:  tenantID,
		IntentID:  intentID,
		Provider:  intent.Provider,
		EventType: eventType,
		Payload:   payload,
	}
	if err := s.intents.AppendEvent(ctx, ev, newStatus, changed); err != nil {
		if errors.Is(err, sentinel.ErrMissingTable) {
			return nil, dErrors.New(dErrors.CodeUnavailable, "payment event log not available").
				WithReason("missing_table")
		}
		return nil, wrapPaymentErr(err)
	}
	paymetrics.PaymentEvents.WithLabelValues(eventType).Inc()
	s.notifier.Notify(ctx, realtime.TopicPaymentIntents, tenantID)
	return ev, nil
}

// GetConfig returns the tenant's default provider configuration.
func (s *Service) GetConfig(ctx context.Context, tenantID id.TenantID) (*models.ProviderConfig, error) {
	if err := requireTenantID(tenantID); err != nil {
		return nil, err
	}
	cfg, err := s.config.DefaultConfig(ctx, tenantID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "no payment provider configured")
		}
		return nil, wrapPaymentErr(err)
	}
	return cfg, nil
}

// UpsertConfig stores the tenant's default provider configuration.
func (s *Service) UpsertConfig(ctx context.Context, tenantID id.TenantID, cfg *models.ProviderConfig) (*models.ProviderConfig, error) {
	if err := requireTenantID(tenantID); err != nil {
		return nil, err
	}
	if !models.KnownProvider(cfg.Provider) {
		return nil, dErrors.Newf(dErrors.CodeInvalidInput, "unknown provider %q", cfg.Provider)
	}
	if cfg.Currency == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "currency is required")
	}
	if err := s.config.UpsertConfig(ctx, tenantID, cfg); err != nil {
		return nil, wrapPaymentErr(err)
	}
	return cfg, nil
}

// ListProviders returns the tenant's provider rows.
func (s *Service) ListProviders(ctx context.Context, tenantID id.TenantID) ([]models.ProviderRecord, error) {
	if err := requireTenantID(tenantID); err != nil {
		return nil, err
	}
	records, err := s.admin.ListProviders(ctx, tenantID)
	if err != nil {
		return nil, wrapPaymentErr(err)
	}
	if records == nil {
		records = []models.ProviderRecord{}
	}
	return records, nil
}

// CreateProviderInput describes a new provider row.
type CreateProviderInput struct {
	Provider       string   `json:"provider"`
	LiveMode       bool     `json:"live_mode"`
	Currency       string   `json:"currency"`
	EnabledMethods []string `json:"enabled_methods"`
	PublishableKey string   `json:"publishable_key,omitempty"`
	SecretKey      string   `json:"secret_key,omitempty"`
	IsDefault      bool     `json:"is_default"`
}

// CreateProvider adds a provider row. Flagging it default unsets every
// other default for the tenant in the same write.
func (s *Service) CreateProvider(ctx context.Context, tenantID id.TenantID, in CreateProviderInput) (*models.ProviderRecord, error) {
	if err := requireTenantID(tenantID); err != nil {
		return nil, err
	}
	name := models.ProviderName(in.Provider)
	if !models.KnownProvider(name) {
		return nil, dErrors.Newf(dErrors.CodeInvalidInput, "unknown provider %q", in.Provider)
	}
	if in.Currency == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "currency is required")
	}
	rec := &models.ProviderRecord{
		ID:       uuid.New(),
		TenantID: tenantID,
		ProviderConfig: models.ProviderConfig{
			Provider:       name,
			LiveMode:       in.LiveMode,
			Currency:       in.Currency,
			EnabledMethods: in.EnabledMethods,
			PublishableKey: in.PublishableKey,
			SecretKey:      in.SecretKey,
		},
		IsDefault: in.IsDefault,
	}
	if err := s.admin.CreateProvider(ctx, rec); err != nil {
		return nil, wrapPaymentErr(err)
	}
	return rec, nil
}

// PatchProvider applies a partial update to a provider row.
func (s *Service) PatchProvider(ctx context.Context, tenantID id.TenantID, providerID uuid.UUID, patch models.ProviderPatch) (*models.ProviderRecord, error) {
	if err := requireTenantID(tenantID); err != nil {
		return nil, err
	}
	rec, err := s.admin.PatchProvider(ctx, tenantID, providerID, patch)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "provider not found")
		}
		return nil, wrapPaymentErr(err)
	}
	return rec, nil
}

// MakeDefault promotes one provider row to the single tenant default.
func (s *Service) MakeDefault(ctx context.Context, tenantID id.TenantID, providerID uuid.UUID) error {
	if err := requireTenantID(tenantID); err != nil {
		return err
	}
	if err := s.admin.MakeDefault(ctx, tenantID, providerID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "provider not found")
		}
		return wrapPaymentErr(err)
	}
	return nil
}

// webhookEnvelope is the best-effort shape sniffed out of inbound webhook
// bodies. Providers that send something else are acknowledged unprocessed.
type webhookEnvelope struct {
	IntentID  string          `json:"payment_intent_id"`
	EventType string          `json:"event_type"`
	Payload   json.RawMessage `json:"payload"`
}

// HandleWebhook ingests an inbound provider webhook. Signature
// verification is not implemented. Processing failures are logged and
// swallowed: the caller always acknowledges so upstream providers do not
// enter retry storms.
func (s *Service) HandleWebhook(ctx context.Context, tenantID id.TenantID, providerName string, body []byte) {
	paymetrics.WebhooksReceived.WithLabelValues(providerName).Inc()

	var env webhookEnvelope
	if err := json.Unmarshal(body, &env); err != nil || env.IntentID == "" || env.EventType == "" {
		s.logger.Info("webhook acknowledged without processing", "provider", providerName)
		return
	}
	intentID, err := id.ParseIntentID(env.IntentID)
	if err != nil {
		s.logger.Warn("webhook carried an invalid intent id", "provider", providerName)
		return
	}
	if _, err := s.EmitEvent(ctx, tenantID, intentID, env.EventType, env.Payload); err != nil {
		s.logger.Error("webhook event processing failed",
			"provider", providerName, "event_type", env.EventType, "error", err)
	}
}

func (s *Service) resolveProvider(ctx context.Context, tenantID id.TenantID) (*models.ProviderConfig, provider.Provider, error) {
	cfg, err := s.config.DefaultConfig(ctx, tenantID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil, dErrors.New(dErrors.CodeNotConfigured, "no payment provider configured")
		}
		return nil, nil, wrapPaymentErr(err)
	}
	prov, err := provider.ForConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, prov, nil
}

func requireTenantID(tenantID id.TenantID) error {
	if tenantID.IsNil() {
		return dErrors.New(dErrors.CodeUnauthorized, "missing tenant ID")
	}
	return nil
}

func wrapIntentLookup(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "payment intent not found")
	}
	return wrapPaymentErr(err)
}

func wrapPaymentErr(err error) error {
	if errors.Is(err, sentinel.ErrMissingTable) {
		return dErrors.New(dErrors.CodeUnavailable, "payment storage not available").
			WithReason("missing_table")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "payment store failure")
}
