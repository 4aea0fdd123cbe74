package models

import (
	"math"
	"time"

	ordermodels "tably/internal/order/models"
	id "tably/pkg/domain"
)

// TaxRate is the flat tax applied to every cart subtotal. Per-tenant tax
// configuration lives outside this layer.
const TaxRate = 0.10

// Cart is the ephemeral pre-order staging area. It is created on first
// add, read at checkout time, and never explicitly deleted: once an
// order is materialized from it the cart is simply abandoned.
type Cart struct {
	ID        id.CartID             `json:"id"`
	TenantID  id.TenantID           `json:"tenant_id"`
	TableID   *id.TableID           `json:"table_id,omitempty"`
	OrderType ordermodels.OrderType `json:"order_type"`
	CreatedAt time.Time             `json:"created_at"`
}

// CartItem references a menu item by id. Prices are NOT stored on the
// cart: they are resolved against the live menu on every read, so menu
// edits between add and checkout are reflected.
type CartItem struct {
	ID         string        `json:"id"`
	CartID     id.CartID     `json:"cart_id"`
	MenuItemID id.MenuItemID `json:"menu_item_id"`
	Quantity   int           `json:"quantity"`
	Note       string        `json:"note,omitempty"`
}

// PricedItem is a cart item joined to the current menu price.
type PricedItem struct {
	CartItem
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	LineTotal float64 `json:"line_total"`
}

// Totals is the computed money summary for a cart.
type Totals struct {
	Subtotal float64 `json:"subtotal"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
}

// ComputeTotals derives the cart totals from priced items. It is the
// single source of the tax rule: both the cart read path and checkout
// intent creation go through it so the two can never drift apart.
func ComputeTotals(items []PricedItem) Totals {
	var subtotal float64
	for _, it := range items {
		subtotal += it.UnitPrice * float64(it.Quantity)
	}
	subtotal = round2(subtotal)
	tax := round2(subtotal * TaxRate)
	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    round2(subtotal + tax),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
