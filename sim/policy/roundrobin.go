package policy

import (
	"fmt"

	"github.com/haulage-sim/haulage-sim/sim"
)

// RoundRobin cycles through the routes available at each crusher and shovel,
// spreading the fleet evenly over the pit without reading any queue state.
type RoundRobin struct {
	layout   *sim.Layout
	outbound [][]int // per crusher, routes starting there
	inbound  [][]int // per shovel, routes ending there
	nextOut  []int
	nextIn   []int
}

// NewRoundRobin creates a round-robin dispatcher over layout.
func NewRoundRobin(layout *sim.Layout) *RoundRobin {
	rr := &RoundRobin{
		layout:   layout,
		outbound: make([][]int, len(layout.Crushers)),
		inbound:  make([][]int, len(layout.Shovels)),
		nextOut:  make([]int, len(layout.Crushers)),
		nextIn:   make([]int, len(layout.Shovels)),
	}
	for i, r := range layout.Routes {
		rr.outbound[r.Crusher] = append(rr.outbound[r.Crusher], i)
		rr.inbound[r.Shovel] = append(rr.inbound[r.Shovel], i)
	}
	return rr
}

// NextRoute returns the next route in rotation at the truck's current
// crusher or shovel.
func (rr *RoundRobin) NextRoute(truck int, loc sim.TruckLocation, route int) int {
	if loc == sim.Waiting {
		cid := rr.layout.Routes[route].Crusher
		choices := rr.outbound[cid]
		out := choices[rr.nextOut[cid]%len(choices)]
		rr.nextOut[cid]++
		return out
	}
	sid := rr.layout.Routes[route].Shovel
	choices := rr.inbound[sid]
	out := choices[rr.nextIn[sid]%len(choices)]
	rr.nextIn[sid]++
	return out
}

// Reset restarts both rotations.
func (rr *RoundRobin) Reset() {
	for i := range rr.nextOut {
		rr.nextOut[i] = 0
	}
	for i := range rr.nextIn {
		rr.nextIn[i] = 0
	}
}

// FixedRoute keeps every truck on one assigned route for the whole shift,
// out and back.
type FixedRoute struct {
	routes []int
}

// NewFixedRoute creates a fixed-route dispatcher. routes[i] is the route
// truck i cycles on; it must be a valid index into layout.Routes. The
// initial crusher placement must match the assignments, so pair this with
// Controller.WithInitialCrushers(InitialCrushersFor(layout, routes)).
func NewFixedRoute(layout *sim.Layout, routes []int) (*FixedRoute, error) {
	if len(routes) != layout.NumTrucks {
		return nil, fmt.Errorf("fixed-route: %d assignments for %d trucks", len(routes), layout.NumTrucks)
	}
	for i, r := range routes {
		if r < 0 || r >= len(layout.Routes) {
			return nil, fmt.Errorf("fixed-route: truck %d assigned unknown route %d", i, r)
		}
	}
	return &FixedRoute{routes: append([]int(nil), routes...)}, nil
}

// NextRoute returns the truck's assigned route.
func (f *FixedRoute) NextRoute(truck int, loc sim.TruckLocation, route int) int {
	return f.routes[truck]
}

// Reset is a no-op; assignments are static.
func (f *FixedRoute) Reset() {}

// InitialCrushersFor derives the starting crusher placement implied by a
// fixed per-truck route assignment.
func InitialCrushersFor(layout *sim.Layout, routes []int) []int {
	out := make([]int, len(routes))
	for i, r := range routes {
		out[i] = layout.Routes[r].Crusher
	}
	return out
}

// NewDispatcher creates a dispatcher by name.
// Valid names: "round-robin", "fixed-route".
// For fixed-route, routes supplies the per-truck assignment.
func NewDispatcher(name string, layout *sim.Layout, routes []int) (Dispatcher, error) {
	switch name {
	case "round-robin":
		return NewRoundRobin(layout), nil
	case "fixed-route":
		return NewFixedRoute(layout, routes)
	default:
		return nil, fmt.Errorf("unknown dispatcher %q; valid dispatchers: [round-robin, fixed-route]", name)
	}
}
