package models

// FunnelRow is one payment lifecycle stage with its intent count and
// amount sum, ordered by the fixed stage order.
type FunnelRow struct {
	Stage      string  `json:"stage"`
	StageOrder int     `json:"stage_order"`
	Intents    int     `json:"intents"`
	Amount     float64 `json:"amount"`
}

// PeakHourRow is the order count for one hour of the day.
type PeakHourRow struct {
	Hour   int `json:"hour"`
	Orders int `json:"orders"`
}

// RevenuePoint is one day of paid-order revenue.
type RevenuePoint struct {
	Day     string  `json:"day"`
	Orders  int     `json:"orders"`
	Revenue float64 `json:"revenue"`
}

// BreakdownRow is paid-order revenue grouped by order type.
type BreakdownRow struct {
	OrderType string  `json:"order_type"`
	Orders    int     `json:"orders"`
	Revenue   float64 `json:"revenue"`
}

// TimelineRow is the average dwell time observed for one status
// transition, derived from consecutive rows of the status event log.
type TimelineRow struct {
	FromStatus  string  `json:"from_status"`
	ToStatus    string  `json:"to_status"`
	Transitions int     `json:"transitions"`
	AvgSeconds  float64 `json:"avg_seconds"`
}
