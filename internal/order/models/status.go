package models

import (
	dErrors "tably/pkg/domain-errors"
)

// Status is a point in the order lifecycle. Current status is never stored on
// the order row; it is derived from the latest status event.
type Status string

const (
	StatusNew       Status = "new"
	StatusConfirmed Status = "confirmed"
	StatusPreparing Status = "preparing"
	StatusReady     Status = "ready"
	StatusServed    Status = "served"
	StatusPaid      Status = "paid"
	StatusCancelled Status = "cancelled"
)

// DefaultStatus is the canonical status of an order with no events yet.
// "pending" is accepted on input as a legacy alias and normalized here.
const DefaultStatus = StatusNew

const statusAliasPending = "pending"

// lifecycleStatuses is the full set a general emit accepts. Only membership
// is validated; edge legality (e.g. new -> served) is intentionally not
// checked, matching the established behavior clients rely on.
var lifecycleStatuses = map[Status]bool{
	StatusNew:       true,
	StatusConfirmed: true,
	StatusPreparing: true,
	StatusReady:     true,
	StatusServed:    true,
	StatusPaid:      true,
	StatusCancelled: true,
}

// kitchenStatuses is the restricted set the KDS advance endpoint accepts.
// Kitchen staff cannot confirm, collect payment, or cancel.
var kitchenStatuses = map[Status]bool{
	StatusPreparing: true,
	StatusReady:     true,
	StatusServed:    true,
}

// ParseStatus validates a general lifecycle status, normalizing the legacy
// "pending" alias to the canonical default.
func ParseStatus(raw string) (Status, error) {
	if raw == statusAliasPending {
		return DefaultStatus, nil
	}
	s := Status(raw)
	if !lifecycleStatuses[s] {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "invalid status %q", raw)
	}
	return s, nil
}

// ParseKitchenStatus validates a status against the kitchen-restricted set.
func ParseKitchenStatus(raw string) (Status, error) {
	s := Status(raw)
	if !kitchenStatuses[s] {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "invalid status %q for kitchen", raw)
	}
	return s, nil
}

// Lane is a kitchen display grouping bucket.
type Lane string

const (
	LaneQueued    Lane = "queued"
	LanePreparing Lane = "preparing"
	LaneReady     Lane = "ready"
)

// LaneFor maps a derived status to its kitchen lane. Statuses that are
// terminal from the kitchen's perspective (served, paid, cancelled) return
// ok=false and appear in no lane.
func LaneFor(s Status) (Lane, bool) {
	switch s {
	case StatusNew, StatusConfirmed:
		return LaneQueued, true
	case StatusPreparing:
		return LanePreparing, true
	case StatusReady:
		return LaneReady, true
	default:
		return "", false
	}
}
