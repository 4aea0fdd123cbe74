package models

import (
	"encoding/json"
	"time"

	id "tably/pkg/domain"
)

// Tenant is one restaurant account, the isolation boundary for all data.
//
// Invariants:
//   - Code is the public handle printed on QR codes; unique across tenants.
//   - An inactive tenant is invisible to the public surface: menu, QR entry
//     and cart creation all treat it as not found.
type Tenant struct {
	ID        id.TenantID     `json:"id"`
	Name      string          `json:"name"`
	Code      string          `json:"code"`
	IsActive  bool            `json:"is_active"`
	Branding  json.RawMessage `json:"branding,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Table is one physical table within a tenant, addressed by the number
// printed on its QR code.
type Table struct {
	ID          id.TableID  `json:"id"`
	TenantID    id.TenantID `json:"tenant_id"`
	TableNumber string      `json:"table_number"`
	Section     string      `json:"section,omitempty"`
	Capacity    int         `json:"capacity,omitempty"`
}
