package store

import (
	"context"
	"sync"
	"time"

	"tably/internal/cart/models"
	id "tably/pkg/domain"
	"tably/pkg/platform/sentinel"
)

// MemoryStore is the in-memory cart store used as a test double.
type MemoryStore struct {
	mu    sync.RWMutex
	carts map[id.CartID]*memoryCart
}

type memoryCart struct {
	cart  models.Cart
	items []models.CartItem
}

func NewMemory() *MemoryStore {
	return &MemoryStore{carts: make(map[id.CartID]*memoryCart)}
}

func (s *MemoryStore) CreateCart(ctx context.Context, cart *models.Cart, items []models.CartItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cart.CreatedAt.IsZero() {
		cart.CreatedAt = time.Now().UTC()
	}
	s.carts[cart.ID] = &memoryCart{
		cart:  *cart,
		items: append([]models.CartItem{}, items...),
	}
	return nil
}

func (s *MemoryStore) GetCart(ctx context.Context, cartID id.CartID) (*models.Cart, []models.CartItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	mc, ok := s.carts[cartID]
	if !ok {
		return nil, nil, sentinel.ErrNotFound
	}
	cart := mc.cart
	return &cart, append([]models.CartItem{}, mc.items...), nil
}
