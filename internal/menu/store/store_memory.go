package store

import (
	"context"
	"sort"
	"sync"

	"tably/internal/menu/models"
	id "tably/pkg/domain"
)

// MemoryStore is the in-memory menu store used as a test double.
type MemoryStore struct {
	mu         sync.RWMutex
	categories map[id.TenantID][]models.Category
	items      map[id.TenantID]map[id.MenuItemID]models.Item
}

func NewMemory() *MemoryStore {
	return &MemoryStore{
		categories: make(map[id.TenantID][]models.Category),
		items:      make(map[id.TenantID]map[id.MenuItemID]models.Item),
	}
}

// AddCategory seeds a category fixture.
func (s *MemoryStore) AddCategory(tenantID id.TenantID, c models.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories[tenantID] = append(s.categories[tenantID], c)
}

// AddItem seeds an item fixture.
func (s *MemoryStore) AddItem(tenantID id.TenantID, it models.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.items[tenantID] == nil {
		s.items[tenantID] = make(map[id.MenuItemID]models.Item)
	}
	s.items[tenantID][it.ID] = it
}

func (s *MemoryStore) PublicMenu(ctx context.Context, tenantID id.TenantID) (*models.PublicMenu, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	menu := &models.PublicMenu{
		Categories: append([]models.Category{}, s.categories[tenantID]...),
		Items:      []models.Item{},
	}
	sort.Slice(menu.Categories, func(i, j int) bool {
		return menu.Categories[i].SortOrder < menu.Categories[j].SortOrder
	})
	for _, it := range s.items[tenantID] {
		if it.IsAvailable {
			menu.Items = append(menu.Items, it)
		}
	}
	sort.Slice(menu.Items, func(i, j int) bool { return menu.Items[i].Name < menu.Items[j].Name })
	return menu, nil
}

func (s *MemoryStore) FindItems(ctx context.Context, tenantID id.TenantID, itemIDs []id.MenuItemID) (map[id.MenuItemID]models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	found := make(map[id.MenuItemID]models.Item, len(itemIDs))
	for _, itemID := range itemIDs {
		if it, ok := s.items[tenantID][itemID]; ok {
			found[itemID] = it
		}
	}
	return found, nil
}
