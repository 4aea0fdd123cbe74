package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"tably/internal/menu/models"
	"tably/internal/platform/postgres"
	id "tably/pkg/domain"
)

// PostgresStore reads menu data for the public ordering surface.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// PublicMenu returns the available categories and items for a tenant,
// ordered for display. Unavailable items are excluded.
func (s *PostgresStore) PublicMenu(ctx context.Context, tenantID id.TenantID) (*models.PublicMenu, error) {
	const categoriesSQL = `
SELECT id, name, COALESCE(description, ''), sort_order
FROM menu_categories
WHERE tenant_id = $1
ORDER BY sort_order ASC, name ASC
`
	const itemsSQL = `
SELECT mi.id, mi.category_id, mc.name, mi.name, COALESCE(mi.description, ''),
       mi.price, mi.is_available, COALESCE(mi.image_url, '')
FROM menu_items mi
JOIN menu_categories mc ON mc.id = mi.category_id
WHERE mi.tenant_id = $1 AND mi.is_available = true
ORDER BY mc.sort_order ASC, mi.name ASC
`
	menu := &models.PublicMenu{
		Categories: []models.Category{},
		Items:      []models.Item{},
	}

	rows, err := s.db.QueryContext(ctx, categoriesSQL, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list menu categories: %w", postgres.Classify(err))
	}
	defer rows.Close()
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.SortOrder); err != nil {
			return nil, fmt.Errorf("scan menu category: %w", err)
		}
		menu.Categories = append(menu.Categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate menu categories: %w", postgres.Classify(err))
	}

	itemRows, err := s.db.QueryContext(ctx, itemsSQL, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list menu items: %w", postgres.Classify(err))
	}
	defer itemRows.Close()
	for itemRows.Next() {
		var it models.Item
		if err := itemRows.Scan(&it.ID, &it.CategoryID, &it.CategoryName, &it.Name,
			&it.Description, &it.Price, &it.IsAvailable, &it.ImageURL); err != nil {
			return nil, fmt.Errorf("scan menu item: %w", err)
		}
		menu.Items = append(menu.Items, it)
	}
	if err := itemRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate menu items: %w", postgres.Classify(err))
	}
	return menu, nil
}

// FindItems resolves the given menu items within a tenant, keyed by id.
// Missing ids are simply absent from the result; callers decide whether
// that is an error.
func (s *PostgresStore) FindItems(ctx context.Context, tenantID id.TenantID, itemIDs []id.MenuItemID) (map[id.MenuItemID]models.Item, error) {
	const q = `
SELECT id, category_id, name, COALESCE(description, ''), price, is_available
FROM menu_items
WHERE tenant_id = $1 AND id = ANY($2)
`
	raw := make([]string, 0, len(itemIDs))
	for _, itemID := range itemIDs {
		raw = append(raw, itemID.String())
	}
	rows, err := s.db.QueryContext(ctx, q, tenantID, pq.Array(raw))
	if err != nil {
		return nil, fmt.Errorf("find menu items: %w", postgres.Classify(err))
	}
	defer rows.Close()

	found := make(map[id.MenuItemID]models.Item, len(itemIDs))
	for rows.Next() {
		var it models.Item
		if err := rows.Scan(&it.ID, &it.CategoryID, &it.Name, &it.Description, &it.Price, &it.IsAvailable); err != nil {
			return nil, fmt.Errorf("scan menu item: %w", err)
		}
		found[it.ID] = it
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate menu items: %w", postgres.Classify(err))
	}
	return found, nil
}
