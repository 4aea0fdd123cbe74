// Package service orchestrates the order lifecycle: status derivation from
// the append-only event log, validated transitions, and the kitchen display
// lane projection.
package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	ordermetrics "tably/internal/order/metrics"
	"tably/internal/order/models"
	"tably/internal/realtime"
	id "tably/pkg/domain"
	dErrors "tably/pkg/domain-errors"
	"tably/pkg/platform/sentinel"
	"tably/pkg/requestcontext"
)

// Store is the persistence seam for orders and their status log.
type Store interface {
	EmitStatus(ctx context.Context, ev *models.StatusEvent) error
	CurrentStatus(ctx context.Context, orderID id.OrderID) (models.Status, error)
	ActiveOrders(ctx context.Context, tenantID id.TenantID) ([]models.LaneOrder, error)
	List(ctx context.Context, tenantID id.TenantID) ([]models.OrderSummary, error)
	Get(ctx context.Context, tenantID id.TenantID, orderID id.OrderID) (*models.OrderDetail, error)
}

// Service exposes order lifecycle operations.
type Service struct {
	orders   Store
	notifier realtime.Notifier
}

// New constructs the order service. A nil notifier disables fan-out.
func New(orders Store, notifier realtime.Notifier) *Service {
	if notifier == nil {
		notifier = realtime.NopNotifier{}
	}
	return &Service{orders: orders, notifier: notifier}
}

// EmitStatus appends a transition to the full-lifecycle status set. The
// target status must be a member of the set; edge legality is not checked.
func (s *Service) EmitStatus(ctx context.Context, tenantID id.TenantID, orderID id.OrderID, rawStatus, note string) (*models.StatusEvent, error) {
	toStatus, err := models.ParseStatus(rawStatus)
	if err != nil {
		return nil, err
	}
	return s.emit(ctx, tenantID, orderID, toStatus, note)
}

// Advance is the kitchen's restricted entry point: only preparing, ready and
// served are accepted.
func (s *Service) Advance(ctx context.Context, tenantID id.TenantID, orderID id.OrderID, rawStatus string) (*models.StatusEvent, error) {
	toStatus, err := models.ParseKitchenStatus(rawStatus)
	if err != nil {
		return nil, err
	}
	return s.emit(ctx, tenantID, orderID, toStatus, "")
}

func (s *Service) emit(ctx context.Context, tenantID id.TenantID, orderID id.OrderID, toStatus models.Status, note string) (*models.StatusEvent, error) {
	if err := requireTenantID(tenantID); err != nil {
		return nil, err
	}

	ev := &models.StatusEvent{
		ID:       uuid.New(),
		TenantID: tenantID,
		OrderID:  orderID,
		ToStatus: toStatus,
		Note:     note,
	}
	if staffID := requestcontext.StaffID(ctx); !staffID.IsNil() {
		ev.CreatedByStaffID = &staffID
	}

	if err := s.orders.EmitStatus(ctx, ev); err != nil {
		return nil, wrapOrderErr(err)
	}

	ordermetrics.StatusEvents.WithLabelValues(string(toStatus)).Inc()
	s.notifier.Notify(ctx, realtime.TopicOrderStatusEvents, tenantID)
	s.notifier.Notify(ctx, realtime.TopicOrders, tenantID)
	return ev, nil
}

// CurrentStatus derives the order's status from the log.
func (s *Service) CurrentStatus(ctx context.Context, orderID id.OrderID) (models.Status, error) {
	status, err := s.orders.CurrentStatus(ctx, orderID)
	if err != nil {
		return "", wrapOrderErr(err)
	}
	return status, nil
}

// Lanes buckets the tenant's active orders for the kitchen display.
func (s *Service) Lanes(ctx context.Context, tenantID id.TenantID) (models.Lanes, error) {
	if err := requireTenantID(tenantID); err != nil {
		return models.Lanes{}, err
	}
	orders, err := s.orders.ActiveOrders(ctx, tenantID)
	if err != nil {
		return models.Lanes{}, wrapOrderErr(err)
	}
	return models.GroupLanes(orders), nil
}

// ListOrders returns all tenant orders with derived status.
func (s *Service) ListOrders(ctx context.Context, tenantID id.TenantID) ([]models.OrderSummary, error) {
	if err := requireTenantID(tenantID); err != nil {
		return nil, err
	}
	orders, err := s.orders.List(ctx, tenantID)
	if err != nil {
		return nil, wrapOrderErr(err)
	}
	if orders == nil {
		orders = []models.OrderSummary{}
	}
	return orders, nil
}

// GetOrder returns one tenant-scoped order with items and history.
func (s *Service) GetOrder(ctx context.Context, tenantID id.TenantID, orderID id.OrderID) (*models.OrderDetail, error) {
	if err := requireTenantID(tenantID); err != nil {
		return nil, err
	}
	detail, err := s.orders.Get(ctx, tenantID, orderID)
	if err != nil {
		return nil, wrapOrderErr(err)
	}
	return detail, nil
}

func requireTenantID(tenantID id.TenantID) error {
	if tenantID.IsNil() {
		return dErrors.New(dErrors.CodeUnauthorized, "missing tenant ID")
	}
	return nil
}

func wrapOrderErr(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "order not found")
	case errors.Is(err, sentinel.ErrMissingTable):
		return dErrors.New(dErrors.CodeUnavailable, "service not available").WithReason("missing_table")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "order store failure")
	}
}
