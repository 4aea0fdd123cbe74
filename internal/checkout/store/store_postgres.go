package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	paymodels "tably/internal/payments/models"
	"tably/internal/platform/postgres"
	id "tably/pkg/domain"
)

// PostgresStore persists the public checkout pipeline: intent creation,
// unscoped intent lookup and the confirm transaction that materializes an
// order from a cart.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// CreateIntent inserts the checkout payment intent.
func (s *PostgresStore) CreateIntent(ctx context.Context, intent *paymodels.Intent) error {
	const q = `
INSERT INTO payment_intents
  (id, tenant_id, cart_id, provider, amount, currency, status, client_secret, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), NOW(), NOW())
RETURNING created_at, updated_at
`
	err := s.db.QueryRowContext(ctx, q,
		intent.ID, intent.TenantID, intent.CartID, intent.Provider,
		intent.Amount, intent.Currency, intent.Status, intent.ClientSecret).
		Scan(&intent.CreatedAt, &intent.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert checkout intent: %w", postgres.Classify(err))
	}
	return nil
}

// GetIntentByID looks an intent up without tenant scoping: the public
// checkout surface carries no authenticated tenant, so isolation comes
// from the intent row's own tenant_id downstream.
func (s *PostgresStore) GetIntentByID(ctx context.Context, intentID id.IntentID) (*paymodels.Intent, error) {
	const q = `
SELECT id, tenant_id, cart_id, order_id, provider, amount, currency, status,
       COALESCE(client_secret, ''), created_at, updated_at
FROM payment_intents
WHERE id = $1
`
	var intent paymodels.Intent
	err := s.db.QueryRowContext(ctx, q, intentID).Scan(
		&intent.ID, &intent.TenantID, &intent.CartID, &intent.OrderID,
		&intent.Provider, &intent.Amount, &intent.Currency, &intent.Status,
		&intent.ClientSecret, &intent.CreatedAt, &intent.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("find checkout intent: %w", postgres.Classify(err))
	}
	return &intent, nil
}

// CancelIntent unconditionally marks an intent canceled. No existence or
// current-state guard: repeated cancellation succeeds every time.
func (s *PostgresStore) CancelIntent(ctx context.Context, intentID id.IntentID) error {
	const q = `
UPDATE payment_intents
SET status = $2, updated_at = NOW()
WHERE id = $1
`
	if _, err := s.db.ExecContext(ctx, q, intentID, paymodels.StatusCanceled); err != nil {
		return fmt.Errorf("cancel checkout intent: %w", postgres.Classify(err))
	}
	return nil
}

// ConfirmOrder runs the mock-confirm transaction: marks the intent
// succeeded, materializes an order from the cart with the intent amount,
// snapshots cart items at the current menu price, and seeds the status log
// with the paid transition.
func (s *PostgresStore) ConfirmOrder(ctx context.Context, intent *paymodels.Intent) (id.OrderID, error) {
	orderID := id.OrderID(uuid.New())

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return id.OrderID{}, fmt.Errorf("begin confirm checkout: %w", postgres.Classify(err))
	}
	defer tx.Rollback()

	const intentSQL = `
UPDATE payment_intents
SET status = $2, updated_at = NOW()
WHERE id = $1
`
	if _, err := tx.ExecContext(ctx, intentSQL, intent.ID, paymodels.StatusSucceeded); err != nil {
		return id.OrderID{}, fmt.Errorf("mark intent succeeded: %w", postgres.Classify(err))
	}

	const orderSQL = `
INSERT INTO orders (id, tenant_id, table_id, order_type, current_status, total_amount, payment_intent_id, created_at, updated_at)
SELECT $1, c.tenant_id, c.table_id, c.order_type, 'paid', $2, $3, NOW(), NOW()
FROM carts c
WHERE c.id = $4
`
	res, err := tx.ExecContext(ctx, orderSQL, orderID, intent.Amount, intent.ID, intent.CartID)
	if err != nil {
		return id.OrderID{}, fmt.Errorf("materialize order: %w", postgres.Classify(err))
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return id.OrderID{}, fmt.Errorf("materialize order: %w", postgres.Classify(sql.ErrNoRows))
	}

	// Snapshot the menu price at confirm time, not at cart-creation time.
	const itemsSQL = `
INSERT INTO order_items (id, order_id, menu_item_id, quantity, unit_price, note, created_at)
SELECT gen_random_uuid(), $1, ci.menu_item_id, ci.quantity, mi.price, ci.note, NOW()
FROM cart_items ci
JOIN menu_items mi ON mi.id = ci.menu_item_id
WHERE ci.cart_id = $2
`
	if _, err := tx.ExecContext(ctx, itemsSQL, orderID, intent.CartID); err != nil {
		return id.OrderID{}, fmt.Errorf("snapshot order items: %w", postgres.Classify(err))
	}

	const eventSQL = `
INSERT INTO order_status_events (id, tenant_id, order_id, from_status, to_status, note, created_at)
VALUES ($1, $2, $3, 'new', 'paid', 'checkout confirmed', NOW())
`
	if _, err := tx.ExecContext(ctx, eventSQL, uuid.New(), intent.TenantID, orderID); err != nil {
		return id.OrderID{}, fmt.Errorf("record paid transition: %w", postgres.Classify(err))
	}

	if err := tx.Commit(); err != nil {
		return id.OrderID{}, fmt.Errorf("commit confirm checkout: %w", postgres.Classify(err))
	}
	return orderID, nil
}
