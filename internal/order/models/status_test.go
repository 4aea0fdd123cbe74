package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLaneFor(t *testing.T) {
	cases := []struct {
		status Status
		lane   Lane
		active bool
	}{
		{StatusNew, LaneQueued, true},
		{StatusConfirmed, LaneQueued, true},
		{StatusPreparing, LanePreparing, true},
		{StatusReady, LaneReady, true},
		{StatusServed, "", false},
		{StatusPaid, "", false},
		{StatusCancelled, "", false},
	}
	for _, tc := range cases {
		lane, ok := LaneFor(tc.status)
		assert.Equal(t, tc.active, ok, "status %s", tc.status)
		assert.Equal(t, tc.lane, lane, "status %s", tc.status)
	}
}

func TestGroupLanesPreservesOrder(t *testing.T) {
	orders := []LaneOrder{
		{CurrentStatus: StatusConfirmed, TableNumber: "1"},
		{CurrentStatus: StatusNew, TableNumber: "2"},
		{CurrentStatus: StatusReady, TableNumber: "3"},
		{CurrentStatus: StatusServed, TableNumber: "4"},
	}
	lanes := GroupLanes(orders)

	assert.Len(t, lanes.Queued, 2)
	assert.Equal(t, "1", lanes.Queued[0].TableNumber)
	assert.Equal(t, "2", lanes.Queued[1].TableNumber)
	assert.Len(t, lanes.Preparing, 0)
	assert.Len(t, lanes.Ready, 1)
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("pending")
	assert.NoError(t, err)
	assert.Equal(t, StatusNew, s)

	_, err = ParseStatus("bogus")
	assert.Error(t, err)
}
