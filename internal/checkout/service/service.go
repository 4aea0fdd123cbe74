// Package service implements the public checkout pipeline: cart totals are
// recomputed from live menu prices, an intent is opened, and a mock confirm
// materializes the order with item prices snapshotted at confirm time.
package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"

	cartmodels "tably/internal/cart/models"
	cartservice "tably/internal/cart/service"
	ordermetrics "tably/internal/order/metrics"
	paymodels "tably/internal/payments/models"
	"tably/internal/realtime"
	id "tably/pkg/domain"
	dErrors "tably/pkg/domain-errors"
	"tably/pkg/platform/sentinel"
)

// checkoutCurrency is the only currency the public checkout quotes in.
const checkoutCurrency = "USD"

// Store is the persistence seam for the checkout pipeline.
type Store interface {
	CreateIntent(ctx context.Context, intent *paymodels.Intent) error
	GetIntentByID(ctx context.Context, intentID id.IntentID) (*paymodels.Intent, error)
	CancelIntent(ctx context.Context, intentID id.IntentID) error
	ConfirmOrder(ctx context.Context, intent *paymodels.Intent) (id.OrderID, error)
}

// Service exposes the public checkout operations.
type Service struct {
	store    Store
	carts    *cartservice.Service
	notifier realtime.Notifier
}

// New constructs the checkout service. A nil notifier disables fan-out.
func New(store Store, carts *cartservice.Service, notifier realtime.Notifier) *Service {
	if notifier == nil {
		notifier = realtime.NopNotifier{}
	}
	return &Service{store: store, carts: carts, notifier: notifier}
}

// IntentResponse is the create-intent payload handed to the customer client.
type IntentResponse struct {
	Intent         *paymodels.Intent `json:"intent"`
	ClientSecret   string            `json:"client_secret,omitempty"`
	ProviderParams map[string]any    `json:"provider_params"`
	Totals         cartmodels.Totals `json:"totals"`
}

// CreateIntent recomputes the cart's totals from its current items at live
// menu prices and persists a payment intent for that amount. Price changes
// between cart creation and checkout are reflected here.
func (s *Service) CreateIntent(ctx context.Context, rawCartID, rawProvider string) (*IntentResponse, error) {
	if rawCartID == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "cart_id is required")
	}
	cartID, err := id.ParseCartID(rawCartID)
	if err != nil {
		return nil, err
	}
	provider := paymodels.ProviderName(rawProvider)
	if provider == "" {
		provider = paymodels.ProviderMock
	}
	if !paymodels.KnownProvider(provider) {
		return nil, dErrors.Newf(dErrors.CodeInvalidInput, "unknown provider %q", rawProvider)
	}

	cart, priced, err := s.carts.PriceCart(ctx, cartID)
	if err != nil {
		return nil, err
	}
	totals := cartmodels.ComputeTotals(priced)

	intentID := id.IntentID(uuid.New())
	intent := &paymodels.Intent{
		ID:       intentID,
		TenantID: cart.TenantID,
		CartID:   &cartID,
		Provider: provider,
		Amount:   totals.Total,
		Currency: checkoutCurrency,
		Status:   paymodels.StatusRequiresPaymentMethod,
	}
	if provider == paymodels.ProviderMock {
		intent.ClientSecret = "mock_" + intentID.String()
	}
	if err := s.store.CreateIntent(ctx, intent); err != nil {
		return nil, wrapCheckoutErr(err)
	}

	s.notifier.Notify(ctx, realtime.TopicPaymentIntents, cart.TenantID)

	params := map[string]any{}
	if provider == paymodels.ProviderMock {
		params["mock"] = true
	}
	return &IntentResponse{
		Intent:         intent,
		ClientSecret:   intent.ClientSecret,
		ProviderParams: params,
		Totals:         totals,
	}, nil
}

// ConfirmResult reports the outcome of a confirm call.
type ConfirmResult struct {
	Status  paymodels.IntentStatus `json:"status"`
	OrderID id.OrderID             `json:"order_id"`
}

// Confirm settles a mock intent and materializes the order from its cart.
// Order items snapshot the menu price at confirm time. Non-mock providers
// are a genuine capability gap and return not-implemented.
func (s *Service) Confirm(ctx context.Context, rawIntentID string, providerPayload json.RawMessage) (*ConfirmResult, error) {
	if rawIntentID == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "intent_id is required")
	}
	intentID, err := id.ParseIntentID(rawIntentID)
	if err != nil {
		return nil, err
	}

	intent, err := s.store.GetIntentByID(ctx, intentID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "payment intent not found")
		}
		return nil, wrapCheckoutErr(err)
	}
	if intent.Provider != paymodels.ProviderMock {
		return nil, dErrors.Newf(dErrors.CodeNotImplemented, "%s confirmation is not implemented", intent.Provider)
	}

	orderID, err := s.store.ConfirmOrder(ctx, intent)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "cart not found")
		}
		return nil, wrapCheckoutErr(err)
	}

	ordermetrics.OrdersCreated.Inc()
	ordermetrics.StatusEvents.WithLabelValues("paid").Inc()
	s.notifier.Notify(ctx, realtime.TopicOrders, intent.TenantID)
	s.notifier.Notify(ctx, realtime.TopicOrderStatusEvents, intent.TenantID)
	s.notifier.Notify(ctx, realtime.TopicPaymentIntents, intent.TenantID)

	return &ConfirmResult{Status: paymodels.StatusSucceeded, OrderID: orderID}, nil
}

// Cancel unconditionally marks an intent canceled. There is no existence
// or current-state guard: canceling twice succeeds both times.
func (s *Service) Cancel(ctx context.Context, rawIntentID string) (paymodels.IntentStatus, error) {
	if rawIntentID == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "intent_id is required")
	}
	intentID, err := id.ParseIntentID(rawIntentID)
	if err != nil {
		return "", err
	}
	if err := s.store.CancelIntent(ctx, intentID); err != nil {
		return "", wrapCheckoutErr(err)
	}
	return paymodels.StatusCanceled, nil
}

func wrapCheckoutErr(err error) error {
	if errors.Is(err, sentinel.ErrMissingTable) {
		return dErrors.New(dErrors.CodeUnavailable, "checkout not available").
			WithReason("missing_table")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "checkout store failure")
}
