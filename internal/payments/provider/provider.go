package provider

import (
	"context"

	"tably/internal/payments/models"
	id "tably/pkg/domain"
	dErrors "tably/pkg/domain-errors"
)

// CreateIntentRequest asks a provider to open a payment attempt.
type CreateIntentRequest struct {
	TenantID id.TenantID
	Amount   float64
	Currency string
	OrderID  *id.OrderID
	Method   string
}

// CreateIntentResult is the provider-side half of a new intent.
type CreateIntentResult struct {
	IntentID     id.IntentID
	Status       models.IntentStatus
	ClientSecret string
}

// CaptureRequest asks a provider to capture a previously created intent.
type CaptureRequest struct {
	Intent *models.Intent
	Amount float64
}

// RefundRequest asks a provider to refund a settled payment.
type RefundRequest struct {
	TenantID  id.TenantID
	PaymentID string
	Amount    float64
	Reason    string
}

// Provider is the pluggable payment backend. Only the mock variant is
// functional; stripe and razorpay exist structurally so real SDKs can be
// slotted in without touching calling code.
type Provider interface {
	Name() models.ProviderName
	CreateIntent(ctx context.Context, req CreateIntentRequest) (*CreateIntentResult, error)
	Capture(ctx context.Context, req CaptureRequest) (*models.CaptureResult, error)
	Refund(ctx context.Context, req RefundRequest) (*models.RefundResult, error)
}

// ForConfig resolves the provider implementation for a tenant's config.
// Real providers without a publishable key are treated as not configured,
// distinct from the not-implemented SDK path behind them.
func ForConfig(cfg *models.ProviderConfig) (Provider, error) {
	switch cfg.Provider {
	case models.ProviderMock:
		return Mock{}, nil
	case models.ProviderStripe, models.ProviderRazorpay:
		if cfg.PublishableKey == "" {
			return nil, dErrors.Newf(dErrors.CodeNotConfigured,
				"%s provider is missing a publishable key", cfg.Provider)
		}
		return unimplemented{name: cfg.Provider}, nil
	default:
		return nil, dErrors.Newf(dErrors.CodeNotConfigured, "unknown provider %q", cfg.Provider)
	}
}
