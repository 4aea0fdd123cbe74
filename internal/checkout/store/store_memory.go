package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	cartstore "tably/internal/cart/store"
	menustore "tably/internal/menu/store"
	ordermodels "tably/internal/order/models"
	orderstore "tably/internal/order/store"
	paymodels "tably/internal/payments/models"
	paystore "tably/internal/payments/store"
	id "tably/pkg/domain"
	"tably/pkg/platform/sentinel"
)

// MemoryStore composes the in-memory domain stores into the checkout
// pipeline, mirroring the transactional postgres path for tests.
type MemoryStore struct {
	Intents *paystore.MemoryStore
	Carts   *cartstore.MemoryStore
	Menu    *menustore.MemoryStore
	Orders  *orderstore.MemoryStore
}

func NewMemory(intents *paystore.MemoryStore, carts *cartstore.MemoryStore, menu *menustore.MemoryStore, orders *orderstore.MemoryStore) *MemoryStore {
	return &MemoryStore{Intents: intents, Carts: carts, Menu: menu, Orders: orders}
}

func (s *MemoryStore) CreateIntent(ctx context.Context, intent *paymodels.Intent) error {
	return s.Intents.CreateIntent(ctx, intent)
}

func (s *MemoryStore) GetIntentByID(ctx context.Context, intentID id.IntentID) (*paymodels.Intent, error) {
	return s.Intents.GetIntentByID(ctx, intentID)
}

func (s *MemoryStore) CancelIntent(ctx context.Context, intentID id.IntentID) error {
	return s.Intents.SetIntentStatus(ctx, intentID, paymodels.StatusCanceled)
}

func (s *MemoryStore) ConfirmOrder(ctx context.Context, intent *paymodels.Intent) (id.OrderID, error) {
	if intent.CartID == nil {
		return id.OrderID{}, sentinel.ErrNotFound
	}
	cart, cartItems, err := s.Carts.GetCart(ctx, *intent.CartID)
	if err != nil {
		return id.OrderID{}, err
	}

	itemIDs := make([]id.MenuItemID, 0, len(cartItems))
	for _, it := range cartItems {
		itemIDs = append(itemIDs, it.MenuItemID)
	}
	menuItems, err := s.Menu.FindItems(ctx, cart.TenantID, itemIDs)
	if err != nil {
		return id.OrderID{}, err
	}

	if err := s.Intents.SetIntentStatus(ctx, intent.ID, paymodels.StatusSucceeded); err != nil {
		return id.OrderID{}, err
	}

	now := time.Now().UTC()
	order := &ordermodels.Order{
		ID:              id.OrderID(uuid.New()),
		TenantID:        cart.TenantID,
		TableID:         cart.TableID,
		OrderType:       cart.OrderType,
		TotalAmount:     intent.Amount,
		PaymentIntentID: &intent.ID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	orderItems := make([]ordermodels.OrderItem, 0, len(cartItems))
	for _, it := range cartItems {
		mi, ok := menuItems[it.MenuItemID]
		if !ok {
			continue
		}
		orderItems = append(orderItems, ordermodels.OrderItem{
			ID:         uuid.New(),
			OrderID:    order.ID,
			MenuItemID: it.MenuItemID,
			Name:       mi.Name,
			Quantity:   it.Quantity,
			UnitPrice:  mi.Price,
			Note:       it.Note,
			CreatedAt:  now,
		})
	}

	if err := s.Orders.CreateOrder(ctx, order, orderItems); err != nil {
		return id.OrderID{}, err
	}
	ev := &ordermodels.StatusEvent{
		ID:       uuid.New(),
		TenantID: cart.TenantID,
		OrderID:  order.ID,
		ToStatus: ordermodels.StatusPaid,
		Note:     "checkout confirmed",
	}
	if err := s.Orders.EmitStatus(ctx, ev); err != nil {
		return id.OrderID{}, err
	}
	return order.ID, nil
}
