// Package domain holds typed identifiers shared across the platform.
//
// Every entity is scoped by a TenantID; giving each identifier its own type
// makes cross-tenant (or cross-entity) mixups a compile error instead of a
// data leak.
package domain

import (
	"fmt"

	"github.com/google/uuid"

	dErrors "tably/pkg/domain-errors"
)

type (
	// TenantID identifies one restaurant account, the isolation unit for all data.
	TenantID uuid.UUID
	// TableID identifies a physical table within a tenant.
	TableID uuid.UUID
	// MenuItemID identifies a menu item within a tenant.
	MenuItemID uuid.UUID
	// CartID identifies an ephemeral pre-order cart.
	CartID uuid.UUID
	// OrderID identifies a materialized order.
	OrderID uuid.UUID
	// IntentID identifies a payment intent.
	IntentID uuid.UUID
	// StaffID identifies an authenticated staff member.
	StaffID uuid.UUID
)

func (id TenantID) String() string   { return uuid.UUID(id).String() }
func (id TableID) String() string    { return uuid.UUID(id).String() }
func (id MenuItemID) String() string { return uuid.UUID(id).String() }
func (id CartID) String() string     { return uuid.UUID(id).String() }
func (id OrderID) String() string    { return uuid.UUID(id).String() }
func (id IntentID) String() string   { return uuid.UUID(id).String() }
func (id StaffID) String() string    { return uuid.UUID(id).String() }

func (id TenantID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id TableID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id CartID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id OrderID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id IntentID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id StaffID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }

// MarshalText implementations keep JSON payloads as plain UUID strings.

func (id TenantID) MarshalText() ([]byte, error)   { return []byte(id.String()), nil }
func (id TableID) MarshalText() ([]byte, error)    { return []byte(id.String()), nil }
func (id MenuItemID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id CartID) MarshalText() ([]byte, error)     { return []byte(id.String()), nil }
func (id OrderID) MarshalText() ([]byte, error)    { return []byte(id.String()), nil }
func (id IntentID) MarshalText() ([]byte, error)   { return []byte(id.String()), nil }
func (id StaffID) MarshalText() ([]byte, error)    { return []byte(id.String()), nil }

func (id *TenantID) UnmarshalText(b []byte) error   { return unmarshalID((*uuid.UUID)(id), b) }
func (id *TableID) UnmarshalText(b []byte) error    { return unmarshalID((*uuid.UUID)(id), b) }
func (id *MenuItemID) UnmarshalText(b []byte) error { return unmarshalID((*uuid.UUID)(id), b) }
func (id *CartID) UnmarshalText(b []byte) error     { return unmarshalID((*uuid.UUID)(id), b) }
func (id *OrderID) UnmarshalText(b []byte) error    { return unmarshalID((*uuid.UUID)(id), b) }
func (id *IntentID) UnmarshalText(b []byte) error   { return unmarshalID((*uuid.UUID)(id), b) }
func (id *StaffID) UnmarshalText(b []byte) error    { return unmarshalID((*uuid.UUID)(id), b) }

func unmarshalID(dst *uuid.UUID, b []byte) error {
	u, err := uuid.Parse(string(b))
	if err != nil {
		return dErrors.New(dErrors.CodeInvalidInput, "invalid id")
	}
	*dst = u
	return nil
}

// parseUUID enforces the shared invariant: IDs must be valid, non-nil UUIDs.
// Used at trust boundaries (path params, request bodies).
func parseUUID(raw, what string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("%s is required", what))
	}
	u, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("%s is not a valid UUID", what))
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("%s must not be the nil UUID", what))
	}
	return u, nil
}

func ParseTenantID(raw string) (TenantID, error) {
	u, err := parseUUID(raw, "tenant id")
	return TenantID(u), err
}

func ParseTableID(raw string) (TableID, error) {
	u, err := parseUUID(raw, "table id")
	return TableID(u), err
}

func ParseMenuItemID(raw string) (MenuItemID, error) {
	u, err := parseUUID(raw, "menu item id")
	return MenuItemID(u), err
}

func ParseCartID(raw string) (CartID, error) {
	u, err := parseUUID(raw, "cart id")
	return CartID(u), err
}

func ParseOrderID(raw string) (OrderID, error) {
	u, err := parseUUID(raw, "order id")
	return OrderID(u), err
}

func ParseIntentID(raw string) (IntentID, error) {
	u, err := parseUUID(raw, "intent id")
	return IntentID(u), err
}

func ParseStaffID(raw string) (StaffID, error) {
	u, err := parseUUID(raw, "staff id")
	return StaffID(u), err
}
