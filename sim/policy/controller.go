// Package policy provides ready-made dispatch controllers for the haulage
// kernel: route choosers, light timing policies, and the glue that combines
// them into a sim.Controller with optional decision tracing.
package policy

import (
	"github.com/haulage-sim/haulage-sim/sim"
	"github.com/haulage-sim/haulage-sim/sim/trace"
)

// Dispatcher chooses the next route for a truck. loc is the truck's current
// state (Waiting for an outbound dispatch, LeavingShovel for the return) and
// route its current route, from which the dispatcher can read the truck's
// crusher or shovel.
type Dispatcher interface {
	NextRoute(truck int, loc sim.TruckLocation, route int) int
	Reset()
}

// LightPolicy chooses green durations for one-lane road lights. Returning 0
// on a green phase arms greedy mode; the return value on an unscheduled
// yellow must be 0.
type LightPolicy interface {
	GreenTime(road int, phase sim.LightPhase, simTime float64) float64
	Reset()
}

// Controller glues a Dispatcher and a LightPolicy into a sim.Controller.
// It tracks truck state from event notifications, optionally parks trucks
// once a shift deadline has passed, and records decisions into a trace.
type Controller struct {
	layout     *sim.Layout
	dispatcher Dispatcher
	lights     LightPolicy

	initial    []int
	endOfShift float64
	st         *trace.SimulationTrace

	clock     float64
	lastLoc   []sim.TruckLocation
	lastRoute []int
}

// NewController creates a controller over layout combining d and l.
func NewController(layout *sim.Layout, d Dispatcher, l LightPolicy) *Controller {
	c := &Controller{
		layout:     layout,
		dispatcher: d,
		lights:     l,
		lastLoc:    make([]sim.TruckLocation, layout.NumTrucks),
		lastRoute:  make([]int, layout.NumTrucks),
	}
	c.Reset()
	return c
}

// WithTrace records every dispatch and light decision into st.
func (c *Controller) WithTrace(st *trace.SimulationTrace) *Controller {
	c.st = st
	return c
}

// WithEndOfShift parks trucks instead of dispatching them once the clock
// reaches t. Zero disables parking.
func (c *Controller) WithEndOfShift(t float64) *Controller {
	c.endOfShift = t
	return c
}

// WithInitialCrushers sets the per-truck starting crusher locations.
func (c *Controller) WithInitialCrushers(crushers []int) *Controller {
	c.initial = crushers
	return c
}

// NextRoute parks the truck after the shift deadline, otherwise delegates
// to the dispatcher.
func (c *Controller) NextRoute(truck int) int {
	loc := c.lastLoc[truck]
	var route int
	if c.endOfShift > 0 && c.clock >= c.endOfShift && loc == sim.Waiting {
		route = sim.RouteParked
	} else {
		route = c.dispatcher.NextRoute(truck, loc, c.lastRoute[truck])
	}
	c.st.RecordDispatch(trace.DispatchRecord{
		Truck:    truck,
		Clock:    c.clock,
		Route:    route,
		ToShovel: loc == sim.Waiting,
	})
	return route
}

// Event tracks the clock and per-truck state the dispatcher decides from.
func (c *Controller) Event(change sim.StateChange) {
	c.clock = change.Time
	c.lastLoc[change.Truck] = change.Target
	c.lastRoute[change.Truck] = change.Route
}

// LightEvent delegates to the light policy.
func (c *Controller) LightEvent(road int, phase sim.LightPhase, simTime float64, progress []float64) float64 {
	c.clock = simTime
	d := c.lights.GreenTime(road, phase, simTime)
	c.st.RecordLight(trace.LightRecord{
		Road:     road,
		Clock:    simTime,
		Phase:    phase.String(),
		Duration: d,
	})
	return d
}

// Reset reinitializes for a new shift.
func (c *Controller) Reset() {
	c.clock = 0
	for i := range c.lastLoc {
		c.lastLoc[i] = sim.Waiting
		if c.initial == nil {
			c.lastRoute[i] = c.layout.DefaultRoute(i % len(c.layout.Crushers))
		} else {
			c.lastRoute[i] = c.layout.DefaultRoute(c.initial[i])
		}
	}
	c.dispatcher.Reset()
	c.lights.Reset()
}

// InitialCrushers returns the configured starting placement, or nil for the
// default spread.
func (c *Controller) InitialCrushers() []int { return c.initial }
