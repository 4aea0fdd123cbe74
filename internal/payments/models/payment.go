package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	id "tably/pkg/domain"
)

// IntentStatus is the lifecycle state of a payment intent.
type IntentStatus string

const (
	StatusRequiresPaymentMethod IntentStatus = "requires_payment_method"
	StatusRequiresCapture       IntentStatus = "requires_capture"
	StatusRequiresAction        IntentStatus = "requires_action"
	StatusProcessing            IntentStatus = "processing"
	StatusSucceeded             IntentStatus = "succeeded"
	StatusFailed                IntentStatus = "failed"
	StatusCanceled              IntentStatus = "canceled"
)

// ProviderName identifies a payment provider variant.
type ProviderName string

const (
	ProviderMock     ProviderName = "mock"
	ProviderStripe   ProviderName = "stripe"
	ProviderRazorpay ProviderName = "razorpay"
)

// KnownProvider reports whether name is one of the supported variants.
func KnownProvider(name ProviderName) bool {
	switch name {
	case ProviderMock, ProviderStripe, ProviderRazorpay:
		return true
	}
	return false
}

// Intent is a payment provider's representation of an in-progress payment
// attempt. Status moves through intent events and checkout operations;
// intents are never deleted.
type Intent struct {
	ID           id.IntentID  `json:"id"`
	TenantID     id.TenantID  `json:"tenant_id"`
	CartID       *id.CartID   `json:"cart_id,omitempty"`
	OrderID      *id.OrderID  `json:"order_id,omitempty"`
	Provider     ProviderName `json:"provider"`
	Amount       float64      `json:"amount"`
	Currency     string       `json:"currency"`
	Status       IntentStatus `json:"status"`
	ClientSecret string       `json:"client_secret,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// PaymentEvent is one immutable row of the payment audit log, the
// payment-domain analogue of an order status event.
type PaymentEvent struct {
	ID        uuid.UUID       `json:"id"`
	TenantID  id.TenantID     `json:"tenant_id"`
	IntentID  id.IntentID     `json:"payment_intent_id"`
	Provider  ProviderName    `json:"provider"`
	EventType string          `json:"event_type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// StatusForEvent maps a payment event type onto the intent status it
// implies. Unrecognized event types leave the status unchanged (ok=false).
func StatusForEvent(eventType string) (IntentStatus, bool) {
	switch eventType {
	case "payment_started":
		return StatusProcessing, true
	case "payment_succeeded":
		return StatusSucceeded, true
	case "payment_failed":
		return StatusFailed, true
	}
	return "", false
}

// ProviderConfig is the per-tenant provider configuration. SecretKey is
// never serialized to clients.
type ProviderConfig struct {
	Provider       ProviderName `json:"provider"`
	LiveMode       bool         `json:"live_mode"`
	Currency       string       `json:"currency"`
	EnabledMethods []string     `json:"enabled_methods"`
	PublishableKey string       `json:"publishable_key,omitempty"`
	SecretKey      string       `json:"-"`
}

// ProviderRecord is one provider row as managed by the admin surface.
// At most one record per tenant carries IsDefault.
type ProviderRecord struct {
	ID       uuid.UUID   `json:"id"`
	TenantID id.TenantID `json:"tenant_id"`
	ProviderConfig
	IsDefault bool      `json:"is_default"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProviderPatch carries partial updates for a provider record. Nil fields
// are left untouched.
type ProviderPatch struct {
	LiveMode       *bool     `json:"live_mode,omitempty"`
	Currency       *string   `json:"currency,omitempty"`
	EnabledMethods *[]string `json:"enabled_methods,omitempty"`
	PublishableKey *string   `json:"publishable_key,omitempty"`
	SecretKey      *string   `json:"secret_key,omitempty"`
}

// SplitLine is one requested share of a split payment.
type SplitLine struct {
	Amount float64 `json:"amount"`
	Label  string  `json:"label,omitempty"`
}

// SplitResultLine echoes a validated split line with a synthetic id.
type SplitResultLine struct {
	ID     string  `json:"id"`
	Amount float64 `json:"amount"`
	Label  string  `json:"label,omitempty"`
}

// SplitResult is the outcome of the split calculator. Nothing is persisted.
type SplitResult struct {
	Total    float64           `json:"total"`
	Currency string            `json:"currency"`
	Splits   []SplitResultLine `json:"splits"`
}

// CaptureResult reports a capture operation.
type CaptureResult struct {
	IntentID id.IntentID  `json:"intent_id"`
	Status   IntentStatus `json:"status"`
	Amount   float64      `json:"amount"`
}

// RefundResult reports a refund operation.
type RefundResult struct {
	ID        string    `json:"id"`
	PaymentID string    `json:"payment_id"`
	Amount    float64   `json:"amount"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
