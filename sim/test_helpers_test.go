package sim

import "testing"

// singleRoadLayout builds the smallest useful mine: one crusher location,
// one shovel, one road between them and one route over it.
func singleRoadLayout(t *testing.T, trucks int, oneLane bool) *Layout {
	t.Helper()
	layout, err := NewLayout(
		trucks,
		[]CrusherLocation{{Servers: 1, EmptyTimeMean: 5, EmptyTimeSD: 1}},
		[]Shovel{{FillTimeMean: 10, FillTimeSD: 1}},
		[]Road{{TravelTimeMean: [2]float64{8, 8}, TravelTimeSD: [2]float64{1, 1}, OneLane: oneLane}},
		[]Route{{Roads: []int{0}, Directions: []int{0}, Crusher: 0, Shovel: 0}},
		1.0,
	)
	if err != nil {
		t.Fatalf("building layout: %v", err)
	}
	return layout
}

// lightLogEntry is one light notification seen by the script controller.
type lightLogEntry struct {
	road  int
	phase LightPhase
	time  float64
}

// scriptController is a fixed-route controller for kernel tests. It keeps
// every truck on one route, answers light events with a fixed green time
// (0 = greedy) and records everything it is told.
type scriptController struct {
	route       int
	greenTime   float64
	maxOutbound int  // park a truck after this many dispatches (0 = never)
	haltInbound bool // halt the run on the first return dispatch

	lastTarget []TruckLocation
	outbound   []int
	events     []StateChange
	lightLog   []lightLogEntry
}

func newScriptController(trucks int) *scriptController {
	return &scriptController{
		lastTarget: make([]TruckLocation, trucks),
		outbound:   make([]int, trucks),
	}
}

func (c *scriptController) NextRoute(truck int) int {
	if c.lastTarget[truck] == Waiting {
		if c.maxOutbound > 0 && c.outbound[truck] >= c.maxOutbound {
			return RouteParked
		}
		c.outbound[truck]++
		return c.route
	}
	if c.haltInbound {
		return RouteHalt
	}
	return c.route
}

func (c *scriptController) Event(change StateChange) {
	c.lastTarget[change.Truck] = change.Target
	c.events = append(c.events, change)
}

func (c *scriptController) LightEvent(road int, phase LightPhase, simTime float64, progress []float64) float64 {
	c.lightLog = append(c.lightLog, lightLogEntry{road: road, phase: phase, time: simTime})
	if phase.GreenDirection() >= 0 {
		return c.greenTime
	}
	return 0
}

func (c *scriptController) Reset() {
	for i := range c.lastTarget {
		c.lastTarget[i] = Waiting
		c.outbound[i] = 0
	}
	c.events = c.events[:0]
	c.lightLog = c.lightLog[:0]
}

func (c *scriptController) InitialCrushers() []int { return nil }

// scriptTimes returns scripted durations in call order, then falls back to
// the mean.
type scriptTimes struct {
	vals []float64
	i    int
}

func (s *scriptTimes) Sample(mean, stdev float64) float64 {
	if s.i < len(s.vals) {
		v := s.vals[s.i]
		s.i++
		return v
	}
	return mean
}
