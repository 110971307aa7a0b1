package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haulage-sim/haulage-sim/sim"
)

// forkLayout has one crusher location fanning out to two shovels over two
// separate roads.
func forkLayout(t *testing.T, trucks int) *sim.Layout {
	t.Helper()
	layout, err := sim.NewLayout(
		trucks,
		[]sim.CrusherLocation{{Servers: 1, EmptyTimeMean: 5, EmptyTimeSD: 1}},
		[]sim.Shovel{
			{FillTimeMean: 10, FillTimeSD: 2},
			{FillTimeMean: 12, FillTimeSD: 2},
		},
		[]sim.Road{
			{TravelTimeMean: [2]float64{8, 8}, TravelTimeSD: [2]float64{1, 1}},
			{TravelTimeMean: [2]float64{6, 6}, TravelTimeSD: [2]float64{1, 1}},
		},
		[]sim.Route{
			{Roads: []int{0}, Directions: []int{0}, Crusher: 0, Shovel: 0},
			{Roads: []int{1}, Directions: []int{0}, Crusher: 0, Shovel: 1},
		},
		1.0,
	)
	require.NoError(t, err)
	return layout
}

func TestRoundRobin_Outbound_CyclesRoutes(t *testing.T) {
	// GIVEN a round-robin dispatcher over a forked pit
	layout := forkLayout(t, 2)
	rr := NewRoundRobin(layout)

	// WHEN dispatching repeatedly from the crusher
	// THEN the routes alternate
	assert.Equal(t, 0, rr.NextRoute(0, sim.Waiting, 0))
	assert.Equal(t, 1, rr.NextRoute(1, sim.Waiting, 0))
	assert.Equal(t, 0, rr.NextRoute(0, sim.Waiting, 0))
}

func TestRoundRobin_Inbound_ReturnsToMatchingShovelRoute(t *testing.T) {
	// GIVEN a round-robin dispatcher
	layout := forkLayout(t, 2)
	rr := NewRoundRobin(layout)

	// WHEN dispatching the return leg from each shovel
	// THEN the single route ending there is chosen
	assert.Equal(t, 0, rr.NextRoute(0, sim.LeavingShovel, 0))
	assert.Equal(t, 1, rr.NextRoute(1, sim.LeavingShovel, 1))
}

func TestRoundRobin_Reset_RestartsRotation(t *testing.T) {
	// GIVEN a dispatcher mid-rotation
	layout := forkLayout(t, 2)
	rr := NewRoundRobin(layout)
	rr.NextRoute(0, sim.Waiting, 0)

	// WHEN resetting
	rr.Reset()

	// THEN the rotation starts over
	assert.Equal(t, 0, rr.NextRoute(0, sim.Waiting, 0))
}

func TestFixedRoute_Validation(t *testing.T) {
	layout := forkLayout(t, 2)

	// Wrong assignment count
	_, err := NewFixedRoute(layout, []int{0})
	assert.Error(t, err)

	// Unknown route
	_, err = NewFixedRoute(layout, []int{0, 9})
	assert.Error(t, err)

	// Valid assignment sticks
	f, err := NewFixedRoute(layout, []int{1, 0})
	require.NoError(t, err)
	assert.Equal(t, 1, f.NextRoute(0, sim.Waiting, 1))
	assert.Equal(t, 1, f.NextRoute(0, sim.LeavingShovel, 1))
	assert.Equal(t, 0, f.NextRoute(1, sim.Waiting, 0))
}

func TestInitialCrushersFor_FollowsAssignments(t *testing.T) {
	layout := forkLayout(t, 2)
	assert.Equal(t, []int{0, 0}, InitialCrushersFor(layout, []int{1, 0}))
}

func TestNewDispatcher_ByName(t *testing.T) {
	layout := forkLayout(t, 2)

	d, err := NewDispatcher("round-robin", layout, nil)
	require.NoError(t, err)
	assert.IsType(t, &RoundRobin{}, d)

	d, err = NewDispatcher("fixed-route", layout, []int{0, 1})
	require.NoError(t, err)
	assert.IsType(t, &FixedRoute{}, d)

	_, err = NewDispatcher("shortest-queue", layout, nil)
	assert.Error(t, err)
}
