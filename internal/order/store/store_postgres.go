package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"tably/internal/order/models"
	"tably/internal/platform/postgres"
	id "tably/pkg/domain"
)

// PostgresStore persists orders and their status event log.
//
// Status writes are a single statement: the target order row is locked FOR
// UPDATE, the event is appended with from_status taken from the locked row,
// and the denormalized current_status column is refreshed, all in one CTE.
// Concurrent emits for the same order serialize on the row lock, so the
// status history stays a linear chain instead of forking on stale reads.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed order store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const emitStatusSQL = `
WITH target AS (
	SELECT id, current_status
	FROM orders
	WHERE id = $3 AND tenant_id = $2
	FOR UPDATE
), ins AS (
	INSERT INTO order_status_events (id, tenant_id, order_id, from_status, to_status, note, created_by_staff_id, created_at)
	SELECT $1, $2, target.id, COALESCE(target.current_status, 'new'), $4, $5, $6, NOW()
	FROM target
	RETURNING order_id, from_status, to_status, created_at
)
UPDATE orders o
SET current_status = ins.to_status, updated_at = ins.created_at
FROM ins
WHERE o.id = ins.order_id
RETURNING ins.from_status, ins.created_at
`

// EmitStatus appends a status event for the order, if and only if the order
// exists under the tenant. Zero affected rows surface as sentinel.ErrNotFound.
func (s *PostgresStore) EmitStatus(ctx context.Context, ev *models.StatusEvent) error {
	var staffID any
	if ev.CreatedByStaffID != nil {
		staffID = uuid.UUID(*ev.CreatedByStaffID)
	}
	err := s.db.QueryRowContext(ctx, emitStatusSQL,
		ev.ID,
		uuid.UUID(ev.TenantID),
		uuid.UUID(ev.OrderID),
		string(ev.ToStatus),
		nullString(ev.Note),
		staffID,
	).Scan(&ev.FromStatus, &ev.CreatedAt)
	if err != nil {
		return fmt.Errorf("emit status event: %w", postgres.Classify(err))
	}
	return nil
}

// CurrentStatus derives an order's status from the latest event in the log,
// falling back to the default when no events exist.
func (s *PostgresStore) CurrentStatus(ctx context.Context, orderID id.OrderID) (models.Status, error) {
	const q = `
SELECT COALESCE(
	(SELECT to_status FROM order_status_events WHERE order_id = $1 ORDER BY created_at DESC LIMIT 1),
	'new'
)`
	var status models.Status
	if err := s.db.QueryRowContext(ctx, q, uuid.UUID(orderID)).Scan(&status); err != nil {
		return "", fmt.Errorf("current status: %w", postgres.Classify(err))
	}
	return status, nil
}

const laneOrdersSQL = `
SELECT o.id, o.table_id, t.table_number, o.order_type, o.total_amount,
	COALESCE(o.current_status, 'new') AS current_status,
	ls.created_at AS status_updated_at,
	o.created_at,
	COALESCE(
		json_agg(
			json_build_object(
				'id', oi.id,
				'order_id', oi.order_id,
				'menu_item_id', oi.menu_item_id,
				'name', mi.name,
				'quantity', oi.quantity,
				'unit_price', oi.unit_price,
				'note', COALESCE(oi.note, ''),
				'created_at', oi.created_at
			)
		) FILTER (WHERE oi.id IS NOT NULL),
		'[]'
	) AS items
FROM orders o
LEFT JOIN tables t ON o.table_id = t.id
LEFT JOIN LATERAL (
	SELECT created_at
	FROM order_status_events ose
	WHERE ose.order_id = o.id
	ORDER BY ose.created_at DESC
	LIMIT 1
) ls ON true
LEFT JOIN order_items oi ON o.id = oi.order_id
LEFT JOIN menu_items mi ON oi.menu_item_id = mi.id
WHERE o.tenant_id = $1
  AND COALESCE(o.current_status, 'new') IN ('new', 'confirmed', 'preparing', 'ready')
GROUP BY o.id, o.table_id, t.table_number, o.order_type, o.total_amount,
	o.current_status, ls.created_at, o.created_at
ORDER BY o.created_at ASC
`

// ActiveOrders returns the kitchen-active orders (derived status in
// new/confirmed/preparing/ready) with denormalized items, oldest first.
func (s *PostgresStore) ActiveOrders(ctx context.Context, tenantID id.TenantID) ([]models.LaneOrder, error) {
	rows, err := s.db.QueryContext(ctx, laneOrdersSQL, uuid.UUID(tenantID))
	if err != nil {
		return nil, fmt.Errorf("query active orders: %w", postgres.Classify(err))
	}
	defer rows.Close()

	var orders []models.LaneOrder
	for rows.Next() {
		var (
			o           models.LaneOrder
			tableID     sql.Null[uuid.UUID]
			tableNumber sql.NullString
			itemsJSON   []byte
		)
		if err := rows.Scan(&o.ID, &tableID, &tableNumber, &o.OrderType, &o.TotalAmount,
			&o.CurrentStatus, &o.StatusUpdatedAt, &o.CreatedAt, &itemsJSON); err != nil {
			return nil, fmt.Errorf("scan active order: %w", err)
		}
		if tableID.Valid {
			tid := id.TableID(tableID.V)
			o.TableID = &tid
		}
		o.TableNumber = tableNumber.String
		if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
			return nil, fmt.Errorf("decode order items: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate active orders: %w", err)
	}
	return orders, nil
}

// List returns all orders for the tenant with their derived status, newest first.
func (s *PostgresStore) List(ctx context.Context, tenantID id.TenantID) ([]models.OrderSummary, error) {
	const q = `
SELECT o.id, o.tenant_id, o.table_id, o.order_type, o.total_amount,
	o.payment_intent_id, o.created_at, o.updated_at,
	COALESCE(o.current_status, 'new')
FROM orders o
WHERE o.tenant_id = $1
ORDER BY o.created_at DESC
`
	rows, err := s.db.QueryContext(ctx, q, uuid.UUID(tenantID))
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", postgres.Classify(err))
	}
	defer rows.Close()

	var orders []models.OrderSummary
	for rows.Next() {
		o, err := scanOrderSummary(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}
	return orders, nil
}

// Get returns one tenant-scoped order with its items and full status history.
func (s *PostgresStore) Get(ctx context.Context, tenantID id.TenantID, orderID id.OrderID) (*models.OrderDetail, error) {
	const orderQ = `
SELECT o.id, o.tenant_id, o.table_id, o.order_type, o.total_amount,
	o.payment_intent_id, o.created_at, o.updated_at,
	COALESCE(o.current_status, 'new')
FROM orders o
WHERE o.id = $1 AND o.tenant_id = $2
`
	row := s.db.QueryRowContext(ctx, orderQ, uuid.UUID(orderID), uuid.UUID(tenantID))
	summary, err := scanOrderSummary(row)
	if err != nil {
		return nil, err
	}
	detail := &models.OrderDetail{Order: summary.Order, CurrentStatus: summary.CurrentStatus}

	const itemsQ = `
SELECT oi.id, oi.order_id, oi.menu_item_id, mi.name, oi.quantity, oi.unit_price,
	COALESCE(oi.note, ''), oi.created_at
FROM order_items oi
JOIN menu_items mi ON oi.menu_item_id = mi.id
WHERE oi.order_id = $1
ORDER BY oi.created_at ASC
`
	itemRows, err := s.db.QueryContext(ctx, itemsQ, uuid.UUID(orderID))
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", postgres.Classify(err))
	}
	defer itemRows.Close()
	for itemRows.Next() {
		var it models.OrderItem
		if err := itemRows.Scan(&it.ID, &it.OrderID, &it.MenuItemID, &it.Name,
			&it.Quantity, &it.UnitPrice, &it.Note, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		detail.Items = append(detail.Items, it)
	}
	if err := itemRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order items: %w", err)
	}

	const eventsQ = `
SELECT id, tenant_id, order_id, from_status, to_status, COALESCE(note, ''),
	created_by_staff_id, created_at
FROM order_status_events
WHERE order_id = $1
ORDER BY created_at ASC
`
	eventRows, err := s.db.QueryContext(ctx, eventsQ, uuid.UUID(orderID))
	if err != nil {
		return nil, fmt.Errorf("list status events: %w", postgres.Classify(err))
	}
	defer eventRows.Close()
	for eventRows.Next() {
		var (
			ev      models.StatusEvent
			staffID sql.Null[uuid.UUID]
		)
		if err := eventRows.Scan(&ev.ID, &ev.TenantID, &ev.OrderID, &ev.FromStatus,
			&ev.ToStatus, &ev.Note, &staffID, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan status event: %w", err)
		}
		if staffID.Valid {
			sid := id.StaffID(staffID.V)
			ev.CreatedByStaffID = &sid
		}
		detail.Events = append(detail.Events, ev)
	}
	if err := eventRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate status events: %w", err)
	}
	return detail, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrderSummary(row rowScanner) (*models.OrderSummary, error) {
	var (
		o        models.OrderSummary
		tableID  sql.Null[uuid.UUID]
		intentID sql.Null[uuid.UUID]
	)
	err := row.Scan(&o.ID, &o.TenantID, &tableID, &o.OrderType, &o.TotalAmount,
		&intentID, &o.CreatedAt, &o.UpdatedAt, &o.CurrentStatus)
	if err != nil {
		return nil, fmt.Errorf("scan order: %w", postgres.Classify(err))
	}
	if tableID.Valid {
		tid := id.TableID(tableID.V)
		o.TableID = &tid
	}
	if intentID.Valid {
		iid := id.IntentID(intentID.V)
		o.PaymentIntentID = &iid
	}
	return &o, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
