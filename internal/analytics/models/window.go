package models

import (
	"time"

	dErrors "tably/pkg/domain-errors"
)

// Window is a reporting time window. Relative windows count back from now;
// the *-to-date windows snap to the start of the current month, quarter or
// year.
type Window string

const (
	Window7d  Window = "7d"
	Window30d Window = "30d"
	Window90d Window = "90d"
	WindowMTD Window = "mtd"
	WindowQTD Window = "qtd"
	WindowYTD Window = "ytd"
)

// DefaultWindow is applied when a request omits the window parameter.
const DefaultWindow = Window7d

var validWindows = map[Window]bool{
	Window7d:  true,
	Window30d: true,
	Window90d: true,
	WindowMTD: true,
	WindowQTD: true,
	WindowYTD: true,
}

// ParseWindow validates a window parameter, defaulting an empty value.
// Unknown values are rejected strictly.
func ParseWindow(raw string) (Window, error) {
	if raw == "" {
		return DefaultWindow, nil
	}
	w := Window(raw)
	if !validWindows[w] {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "invalid window %q", raw).
			WithReason("invalid_window")
	}
	return w, nil
}

// Start returns the inclusive lower bound of the window relative to now.
func (w Window) Start(now time.Time) time.Time {
	switch w {
	case Window7d:
		return now.AddDate(0, 0, -7)
	case Window30d:
		return now.AddDate(0, 0, -30)
	case Window90d:
		return now.AddDate(0, 0, -90)
	case WindowMTD:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	case WindowQTD:
		quarterStart := time.Month((int(now.Month())-1)/3*3 + 1)
		return time.Date(now.Year(), quarterStart, 1, 0, 0, 0, 0, now.Location())
	case WindowYTD:
		return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	}
	return now.AddDate(0, 0, -7)
}
