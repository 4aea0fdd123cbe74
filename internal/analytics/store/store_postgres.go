package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"tably/internal/analytics/models"
	"tably/internal/platform/postgres"
	id "tably/pkg/domain"
)

// PostgresStore runs the read-only reporting aggregations. Every query is
// tenant-scoped and bounded below by the window start.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// PaymentFunnel groups intents by lifecycle stage. All seven stages are
// returned even when empty, in fixed stage order.
func (s *PostgresStore) PaymentFunnel(ctx context.Context, tenantID id.TenantID, since time.Time) ([]models.FunnelRow, error) {
	const q = `
WITH stages (stage, stage_order) AS (
  VALUES ('created', 1), ('requires_action', 2), ('confirmed', 3),
         ('processing', 4), ('succeeded', 5), ('failed', 6), ('canceled', 7)
), agg AS (
  SELECT CASE status
           WHEN 'requires_payment_method' THEN 'created'
           WHEN 'requires_capture' THEN 'confirmed'
           ELSE status
         END AS stage,
         COUNT(*) AS intents,
         COALESCE(SUM(amount), 0) AS amount
  FROM payment_intents
  WHERE tenant_id = $1 AND created_at >= $2
  GROUP BY 1
)
SELECT stages.stage, stages.stage_order,
       COALESCE(agg.intents, 0), COALESCE(agg.amount, 0)
FROM stages
LEFT JOIN agg ON agg.stage = stages.stage
ORDER BY stages.stage_order ASC
`
	rows, err := s.db.QueryContext(ctx, q, tenantID, since)
	if err != nil {
		return nil, fmt.Errorf("payment funnel: %w", postgres.Classify(err))
	}
	defer rows.Close()

	funnel := []models.FunnelRow{}
	for rows.Next() {
		var r models.FunnelRow
		if err := rows.Scan(&r.Stage, &r.StageOrder, &r.Intents, &r.Amount); err != nil {
			return nil, fmt.Errorf("scan funnel row: %w", err)
		}
		funnel = append(funnel, r)
	}
	return funnel, rowsErr(rows, "payment funnel")
}

// PeakHours counts orders by hour of day.
func (s *PostgresStore) PeakHours(ctx context.Context, tenantID id.TenantID, since time.Time) ([]models.PeakHourRow, error) {
	const q = `
SELECT EXTRACT(HOUR FROM created_at)::int AS hour, COUNT(*)
FROM orders
WHERE tenant_id = $1 AND created_at >= $2
GROUP BY 1
ORDER BY 1 ASC
`
	rows, err := s.db.QueryContext(ctx, q, tenantID, since)
	if err != nil {
		return nil, fmt.Errorf("peak hours: %w", postgres.Classify(err))
	}
	defer rows.Close()

	hours := []models.PeakHourRow{}
	for rows.Next() {
		var r models.PeakHourRow
		if err := rows.Scan(&r.Hour, &r.Orders); err != nil {
			return nil, fmt.Errorf("scan peak hour row: %w", err)
		}
		hours = append(hours, r)
	}
	return hours, rowsErr(rows, "peak hours")
}

// RevenueSeries sums paid-order totals per day.
func (s *PostgresStore) RevenueSeries(ctx context.Context, tenantID id.TenantID, since time.Time) ([]models.RevenuePoint, error) {
	const q = `
SELECT TO_CHAR(DATE_TRUNC('day', created_at), 'YYYY-MM-DD') AS day,
       COUNT(*), COALESCE(SUM(total_amount), 0)
FROM orders
WHERE tenant_id = $1 AND created_at >= $2 AND current_status = 'paid'
GROUP BY 1
ORDER BY 1 ASC
`
	rows, err := s.db.QueryContext(ctx, q, tenantID, since)
	if err != nil {
		return nil, fmt.Errorf("revenue series: %w", postgres.Classify(err))
	}
	defer rows.Close()

	series := []models.RevenuePoint{}
	for rows.Next() {
		var r models.RevenuePoint
		if err := rows.Scan(&r.Day, &r.Orders, &r.Revenue); err != nil {
			return nil, fmt.Errorf("scan revenue point: %w", err)
		}
		series = append(series, r)
	}
	return series, rowsErr(rows, "revenue series")
}

// RevenueBreakdown sums paid-order totals by order type.
func (s *PostgresStore) RevenueBreakdown(ctx context.Context, tenantID id.TenantID, since time.Time) ([]models.BreakdownRow, error) {
	const q = `
SELECT order_type, COUNT(*), COALESCE(SUM(total_amount), 0)
FROM orders
WHERE tenant_id = $1 AND created_at >= $2 AND current_status = 'paid'
GROUP BY order_type
ORDER BY order_type ASC
`
	rows, err := s.db.QueryContext(ctx, q, tenantID, since)
	if err != nil {
		return nil, fmt.Errorf("revenue breakdown: %w", postgres.Classify(err))
	}
	defer rows.Close()

	breakdown := []models.BreakdownRow{}
	for rows.Next() {
		var r models.BreakdownRow
		if err := rows.Scan(&r.OrderType, &r.Orders, &r.Revenue); err != nil {
			return nil, fmt.Errorf("scan breakdown row: %w", err)
		}
		breakdown = append(breakdown, r)
	}
	return breakdown, rowsErr(rows, "revenue breakdown")
}

// FulfillmentTimeline averages the dwell time between consecutive status
// events per order, grouped by the observed transition.
func (s *PostgresStore) FulfillmentTimeline(ctx context.Context, tenantID id.TenantID, since time.Time) ([]models.TimelineRow, error) {
	const q = `
WITH timed AS (
  SELECT order_id, from_status, to_status, created_at,
         created_at - LAG(created_at) OVER (PARTITION BY order_id ORDER BY created_at ASC) AS elapsed
  FROM order_status_events
  WHERE tenant_id = $1 AND created_at >= $2
)
SELECT from_status, to_status, COUNT(*),
       COALESCE(EXTRACT(EPOCH FROM AVG(elapsed)), 0)
FROM timed
WHERE elapsed IS NOT NULL
GROUP BY from_status, to_status
ORDER BY from_status ASC, to_status ASC
`
	rows, err := s.db.QueryContext(ctx, q, tenantID, since)
	if err != nil {
		return nil, fmt.Errorf("fulfillment timeline: %w", postgres.Classify(err))
	}
	defer rows.Close()

	timeline := []models.TimelineRow{}
	for rows.Next() {
		var r models.TimelineRow
		if err := rows.Scan(&r.FromStatus, &r.ToStatus, &r.Transitions, &r.AvgSeconds); err != nil {
			return nil, fmt.Errorf("scan timeline row: %w", err)
		}
		timeline = append(timeline, r)
	}
	return timeline, rowsErr(rows, "fulfillment timeline")
}

func rowsErr(rows *sql.Rows, op string) error {
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate %s: %w", op, postgres.Classify(err))
	}
	return nil
}
