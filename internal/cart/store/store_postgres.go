package store

import (
	"context"
	"database/sql"
	"fmt"

	"tably/internal/cart/models"
	"tably/internal/platform/postgres"
	id "tably/pkg/domain"
)

// PostgresStore persists carts and cart items.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// CreateCart inserts a cart and its items in one transaction.
func (s *PostgresStore) CreateCart(ctx context.Context, cart *models.Cart, items []models.CartItem) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create cart: %w", postgres.Classify(err))
	}
	defer tx.Rollback()

	const cartSQL = `
INSERT INTO carts (id, tenant_id, table_id, order_type, created_at)
VALUES ($1, $2, $3, $4, NOW())
RETURNING created_at
`
	err = tx.QueryRowContext(ctx, cartSQL, cart.ID, cart.TenantID, cart.TableID, cart.OrderType).
		Scan(&cart.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert cart: %w", postgres.Classify(err))
	}

	const itemSQL = `
INSERT INTO cart_items (id, cart_id, menu_item_id, quantity, note)
VALUES ($1, $2, $3, $4, NULLIF($5, ''))
`
	for _, it := range items {
		if _, err := tx.ExecContext(ctx, itemSQL, it.ID, cart.ID, it.MenuItemID, it.Quantity, it.Note); err != nil {
			return fmt.Errorf("insert cart item: %w", postgres.Classify(err))
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create cart: %w", postgres.Classify(err))
	}
	return nil
}

// GetCart loads a cart and its raw items. Prices are resolved by the
// caller against the live menu.
func (s *PostgresStore) GetCart(ctx context.Context, cartID id.CartID) (*models.Cart, []models.CartItem, error) {
	const cartSQL = `
SELECT id, tenant_id, table_id, order_type, created_at
FROM carts
WHERE id = $1
`
	var cart models.Cart
	err := s.db.QueryRowContext(ctx, cartSQL, cartID).Scan(
		&cart.ID, &cart.TenantID, &cart.TableID, &cart.OrderType, &cart.CreatedAt)
	if err != nil {
		return nil, nil, fmt.Errorf("find cart: %w", postgres.Classify(err))
	}

	const itemsSQL = `
SELECT id, cart_id, menu_item_id, quantity, COALESCE(note, '')
FROM cart_items
WHERE cart_id = $1
ORDER BY id ASC
`
	rows, err := s.db.QueryContext(ctx, itemsSQL, cartID)
	if err != nil {
		return nil, nil, fmt.Errorf("list cart items: %w", postgres.Classify(err))
	}
	defer rows.Close()

	items := []models.CartItem{}
	for rows.Next() {
		var it models.CartItem
		if err := rows.Scan(&it.ID, &it.CartID, &it.MenuItemID, &it.Quantity, &it.Note); err != nil {
			return nil, nil, fmt.Errorf("scan cart item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate cart items: %w", postgres.Classify(err))
	}
	return &cart, items, nil
}
