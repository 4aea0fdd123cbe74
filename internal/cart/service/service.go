package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"tably/internal/cart/models"
	menumodels "tably/internal/menu/models"
	ordermodels "tably/internal/order/models"
	tenantmodels "tably/internal/tenant/models"
	id "tably/pkg/domain"
	dErrors "tably/pkg/domain-errors"
	"tably/pkg/platform/sentinel"
)

// Store persists carts and their items.
type Store interface {
	CreateCart(ctx context.Context, cart *models.Cart, items []models.CartItem) error
	GetCart(ctx context.Context, cartID id.CartID) (*models.Cart, []models.CartItem, error)
}

// MenuStore resolves live menu prices for cart items.
type MenuStore interface {
	FindItems(ctx context.Context, tenantID id.TenantID, itemIDs []id.MenuItemID) (map[id.MenuItemID]menumodels.Item, error)
}

// TenantStore resolves tenants by public code.
type TenantStore interface {
	FindActiveByCode(ctx context.Context, code string) (*tenantmodels.Tenant, error)
}

// Service implements the customer cart surface.
type Service struct {
	carts   Store
	menus   MenuStore
	tenants TenantStore
}

func New(carts Store, menus MenuStore, tenants TenantStore) *Service {
	return &Service{carts: carts, menus: menus, tenants: tenants}
}

// ItemInput is one requested cart line.
type ItemInput struct {
	MenuItemID string `json:"menu_item_id"`
	Quantity   int    `json:"quantity"`
	Note       string `json:"note,omitempty"`
}

// CartView is a cart with its priced items and computed totals.
type CartView struct {
	Cart   *models.Cart        `json:"cart"`
	Items  []models.PricedItem `json:"items"`
	Totals models.Totals       `json:"totals"`
}

// CreateCart resolves the tenant by public code and stores a new cart.
// The cart stores menu item references only; prices are resolved live
// on every read.
func (s *Service) CreateCart(ctx context.Context, tenantCode, orderType string, tableID *id.TableID, items []ItemInput) (id.CartID, error) {
	if len(items) == 0 {
		return id.CartID{}, dErrors.New(dErrors.CodeInvalidInput, "cart requires at least one item")
	}
	ot, err := parseOrderType(orderType)
	if err != nil {
		return id.CartID{}, err
	}

	tenant, err := s.tenants.FindActiveByCode(ctx, tenantCode)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return id.CartID{}, dErrors.New(dErrors.CodeNotFound, "restaurant not found")
		}
		return id.CartID{}, wrapCartErr(err)
	}

	cartItems := make([]models.CartItem, 0, len(items))
	itemIDs := make([]id.MenuItemID, 0, len(items))
	for i, in := range items {
		if in.Quantity <= 0 {
			return id.CartID{}, dErrors.Newf(dErrors.CodeInvalidInput, "item %d: quantity must be positive", i)
		}
		menuItemID, err := id.ParseMenuItemID(in.MenuItemID)
		if err != nil {
			return id.CartID{}, dErrors.Newf(dErrors.CodeInvalidInput, "item %d: invalid menu_item_id", i)
		}
		itemIDs = append(itemIDs, menuItemID)
		cartItems = append(cartItems, models.CartItem{
			ID:         uuid.NewString(),
			MenuItemID: menuItemID,
			Quantity:   in.Quantity,
			Note:       in.Note,
		})
	}

	known, err := s.menus.FindItems(ctx, tenant.ID, itemIDs)
	if err != nil {
		return id.CartID{}, wrapCartErr(err)
	}
	for _, itemID := range itemIDs {
		if _, ok := known[itemID]; !ok {
			return id.CartID{}, dErrors.Newf(dErrors.CodeInvalidInput, "unknown menu item %s", itemID)
		}
	}

	cart := &models.Cart{
		ID:        id.CartID(uuid.New()),
		TenantID:  tenant.ID,
		TableID:   tableID,
		OrderType: ot,
	}
	for i := range cartItems {
		cartItems[i].CartID = cart.ID
	}
	if err := s.carts.CreateCart(ctx, cart, cartItems); err != nil {
		return id.CartID{}, wrapCartErr(fmt.Errorf("create cart: %w", err))
	}
	return cart.ID, nil
}

// GetCart returns a cart with items priced against the current menu and
// totals derived from those live prices.
func (s *Service) GetCart(ctx context.Context, cartID id.CartID) (*CartView, error) {
	cart, priced, err := s.PriceCart(ctx, cartID)
	if err != nil {
		return nil, err
	}
	return &CartView{
		Cart:   cart,
		Items:  priced,
		Totals: models.ComputeTotals(priced),
	}, nil
}

// PriceCart loads a cart and joins its items to the live menu. Items
// whose menu entry has since disappeared are dropped from the result,
// mirroring an inner join on the read path.
func (s *Service) PriceCart(ctx context.Context, cartID id.CartID) (*models.Cart, []models.PricedItem, error) {
	cart, items, err := s.carts.GetCart(ctx, cartID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil, dErrors.New(dErrors.CodeNotFound, "cart not found")
		}
		return nil, nil, wrapCartErr(err)
	}

	itemIDs := make([]id.MenuItemID, 0, len(items))
	for _, it := range items {
		itemIDs = append(itemIDs, it.MenuItemID)
	}
	menuItems, err := s.menus.FindItems(ctx, cart.TenantID, itemIDs)
	if err != nil {
		return nil, nil, wrapCartErr(err)
	}

	priced := make([]models.PricedItem, 0, len(items))
	for _, it := range items {
		mi, ok := menuItems[it.MenuItemID]
		if !ok {
			continue
		}
		priced = append(priced, models.PricedItem{
			CartItem:  it,
			Name:      mi.Name,
			UnitPrice: mi.Price,
			LineTotal: mi.Price * float64(it.Quantity),
		})
	}
	return cart, priced, nil
}

func parseOrderType(raw string) (ordermodels.OrderType, error) {
	switch ordermodels.OrderType(raw) {
	case ordermodels.OrderTypeDineIn, ordermodels.OrderTypeTakeaway:
		return ordermodels.OrderType(raw), nil
	default:
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "invalid order_type %q", raw)
	}
}

func wrapCartErr(err error) error {
	if errors.Is(err, sentinel.ErrMissingTable) {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "cart storage unavailable").
			WithReason("missing_table")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "cart operation failed")
}
