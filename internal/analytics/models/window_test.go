package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "tably/pkg/domain-errors"
)

func TestParseWindow(t *testing.T) {
	for _, raw := range []string{"7d", "30d", "90d", "mtd", "qtd", "ytd"} {
		w, err := ParseWindow(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, Window(raw), w)
	}

	w, err := ParseWindow("")
	require.NoError(t, err)
	assert.Equal(t, DefaultWindow, w)

	_, err = ParseWindow("14d")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	assert.Equal(t, "invalid_window", dErrors.ReasonOf(err))
}

func TestWindowStart(t *testing.T) {
	// A mid-quarter, mid-month reference point.
	now := time.Date(2025, time.August, 15, 13, 45, 0, 0, time.UTC)

	assert.Equal(t, now.AddDate(0, 0, -7), Window7d.Start(now))
	assert.Equal(t, now.AddDate(0, 0, -30), Window30d.Start(now))
	assert.Equal(t, now.AddDate(0, 0, -90), Window90d.Start(now))
	assert.Equal(t, time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC), WindowMTD.Start(now))
	assert.Equal(t, time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC), WindowQTD.Start(now))
	assert.Equal(t, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), WindowYTD.Start(now))
}

func TestWindowStartQuarterBoundaries(t *testing.T) {
	cases := map[time.Month]time.Month{
		time.January:   time.January,
		time.March:     time.January,
		time.April:     time.April,
		time.June:      time.April,
		time.September: time.July,
		time.December:  time.October,
	}
	for month, quarterStart := range cases {
		now := time.Date(2025, month, 20, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, quarterStart, WindowQTD.Start(now).Month(), "month %s", month)
	}
}
