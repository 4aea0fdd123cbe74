package service

import (
	"context"
	"errors"
	"time"

	"tably/internal/analytics/models"
	id "tably/pkg/domain"
	dErrors "tably/pkg/domain-errors"
	"tably/pkg/platform/sentinel"
	"tably/pkg/requestcontext"
)

// Store runs the reporting aggregations against the relational store.
type Store interface {
	PaymentFunnel(ctx context.Context, tenantID id.TenantID, since time.Time) ([]models.FunnelRow, error)
	PeakHours(ctx context.Context, tenantID id.TenantID, since time.Time) ([]models.PeakHourRow, error)
	RevenueSeries(ctx context.Context, tenantID id.TenantID, since time.Time) ([]models.RevenuePoint, error)
	RevenueBreakdown(ctx context.Context, tenantID id.TenantID, since time.Time) ([]models.BreakdownRow, error)
	FulfillmentTimeline(ctx context.Context, tenantID id.TenantID, since time.Time) ([]models.TimelineRow, error)
}

// Service exposes the read-only analytics projections.
type Service struct {
	store Store
}

func New(store Store) *Service {
	return &Service{store: store}
}

// Report wraps every aggregation result with the window it covers.
type Report[T any] struct {
	Window models.Window `json:"window"`
	Rows   []T           `json:"rows"`
}

func query[T any](ctx context.Context, tenantID id.TenantID, rawWindow string,
	fn func(context.Context, id.TenantID, time.Time) ([]T, error)) (*Report[T], error) {
	if tenantID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "missing tenant ID")
	}
	window, err := models.ParseWindow(rawWindow)
	if err != nil {
		return nil, err
	}
	rows, err := fn(ctx, tenantID, window.Start(requestcontext.Now(ctx)))
	if err != nil {
		return nil, wrapAnalyticsErr(err)
	}
	if rows == nil {
		rows = []T{}
	}
	return &Report[T]{Window: window, Rows: rows}, nil
}

func (s *Service) PaymentFunnel(ctx context.Context, tenantID id.TenantID, rawWindow string) (*Report[models.FunnelRow], error) {
	return query(ctx, tenantID, rawWindow, s.store.PaymentFunnel)
}

func (s *Service) PeakHours(ctx context.Context, tenantID id.TenantID, rawWindow string) (*Report[models.PeakHourRow], error) {
	return query(ctx, tenantID, rawWindow, s.store.PeakHours)
}

func (s *Service) RevenueSeries(ctx context.Context, tenantID id.TenantID, rawWindow string) (*Report[models.RevenuePoint], error) {
	return query(ctx, tenantID, rawWindow, s.store.RevenueSeries)
}

func (s *Service) RevenueBreakdown(ctx context.Context, tenantID id.TenantID, rawWindow string) (*Report[models.BreakdownRow], error) {
	return query(ctx, tenantID, rawWindow, s.store.RevenueBreakdown)
}

func (s *Service) FulfillmentTimeline(ctx context.Context, tenantID id.TenantID, rawWindow string) (*Report[models.TimelineRow], error) {
	return query(ctx, tenantID, rawWindow, s.store.FulfillmentTimeline)
}

func wrapAnalyticsErr(err error) error {
	if errors.Is(err, sentinel.ErrMissingTable) {
		return dErrors.New(dErrors.CodeUnavailable, "analytics not available").
			WithReason("missing_table")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "analytics query failed")
}
