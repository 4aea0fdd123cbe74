package domain

import (
	"database/sql/driver"

	"github.com/google/uuid"
)

// Scanner/Valuer implementations so typed IDs cross the database/sql boundary
// without conversion noise in stores.

func (id TenantID) Value() (driver.Value, error)   { return uuid.UUID(id).Value() }
func (id TableID) Value() (driver.Value, error)    { return uuid.UUID(id).Value() }
func (id MenuItemID) Value() (driver.Value, error) { return uuid.UUID(id).Value() }
func (id CartID) Value() (driver.Value, error)     { return uuid.UUID(id).Value() }
func (id OrderID) Value() (driver.Value, error)    { return uuid.UUID(id).Value() }
func (id IntentID) Value() (driver.Value, error)   { return uuid.UUID(id).Value() }
func (id StaffID) Value() (driver.Value, error)    { return uuid.UUID(id).Value() }

func (id *TenantID) Scan(src any) error   { return (*uuid.UUID)(id).Scan(src) }
func (id *TableID) Scan(src any) error    { return (*uuid.UUID)(id).Scan(src) }
func (id *MenuItemID) Scan(src any) error { return (*uuid.UUID)(id).Scan(src) }
func (id *CartID) Scan(src any) error     { return (*uuid.UUID)(id).Scan(src) }
func (id *OrderID) Scan(src any) error    { return (*uuid.UUID)(id).Scan(src) }
func (id *IntentID) Scan(src any) error   { return (*uuid.UUID)(id).Scan(src) }
func (id *StaffID) Scan(src any) error    { return (*uuid.UUID)(id).Scan(src) }
