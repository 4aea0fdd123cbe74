package models

import (
	id "tably/pkg/domain"
)

// Category groups menu items for display ordering.
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	SortOrder   int    `json:"sort_order"`
}

// Item is a sellable menu entry. Price here is the live price; order items
// snapshot it at order-creation time and are not affected by later edits.
type Item struct {
	ID           id.MenuItemID `json:"id"`
	CategoryID   string        `json:"category_id"`
	CategoryName string        `json:"category_name,omitempty"`
	Name         string        `json:"name"`
	Description  string        `json:"description,omitempty"`
	Price        float64       `json:"price"`
	IsAvailable  bool          `json:"is_available"`
	ImageURL     string        `json:"image_url,omitempty"`
}

// PublicMenu is the customer-facing menu payload.
type PublicMenu struct {
	Categories []Category `json:"categories"`
	Items      []Item     `json:"items"`
}
