package sim

import "fmt"

// Road is a bidirectional road segment. Direction 0 runs away from the
// crusher side, direction 1 back towards it. A one-lane road carries a
// traffic light enforcing mutual exclusion between the directions.
type Road struct {
	TravelTimeMean [2]float64
	TravelTimeSD   [2]float64
	OneLane        bool
}

// CrusherLocation is an unloading point with Servers parallel crushers.
type CrusherLocation struct {
	Servers       int
	EmptyTimeMean float64
	EmptyTimeSD   float64
}

// Shovel is a single-server loading point.
type Shovel struct {
	FillTimeMean float64
	FillTimeSD   float64
}

// Route is a fixed ordered path of road segments from one crusher location
// to one shovel. Directions[i] is the direction travelled on Roads[i] on
// the outbound (empty) leg; the loaded return leg reverses it.
type Route struct {
	Roads      []int
	Directions []int
	Crusher    int
	Shovel     int
}

// Length returns the number of road segments on the route.
func (r Route) Length() int { return len(r.Roads) }

// Layout is the immutable description of the mine: machines, roads and the
// pre-enumerated routes connecting them. Built once before simulation;
// the kernel only reads it.
type Layout struct {
	NumTrucks    int
	Crushers     []CrusherLocation
	Shovels      []Shovel
	Roads        []Road
	Routes       []Route
	FullSlowdown float64

	// Derived on construction.
	lightIndex   []int // per road: light id, -1 for two-lane roads
	lightRoads   []int // per light: road id
	defaultRoute []int // per crusher location: first route out of it
	crushingRate float64
}

// NewLayout validates the layout and computes the derived indexes.
// Validation failures are configuration errors reported before any
// simulation begins.
func NewLayout(numTrucks int, crushers []CrusherLocation, shovels []Shovel, roads []Road, routes []Route, fullSlowdown float64) (*Layout, error) {
	if numTrucks <= 0 {
		return nil, fmt.Errorf("layout: need at least one truck, got %d", numTrucks)
	}
	if len(crushers) == 0 || len(shovels) == 0 {
		return nil, fmt.Errorf("layout: need at least one crusher location and one shovel")
	}
	if fullSlowdown <= 0 {
		return nil, fmt.Errorf("layout: full slowdown must be positive, got %f", fullSlowdown)
	}
	for i, c := range crushers {
		if c.Servers < 1 {
			return nil, fmt.Errorf("layout: crusher location %d needs at least one server", i)
		}
		if c.EmptyTimeMean < 0 {
			return nil, fmt.Errorf("layout: crusher location %d has negative emptying time", i)
		}
	}
	for i, s := range shovels {
		if s.FillTimeMean < 0 {
			return nil, fmt.Errorf("layout: shovel %d has negative filling time", i)
		}
	}
	for i, r := range roads {
		for dir := 0; dir < 2; dir++ {
			if r.TravelTimeMean[dir] < 0 {
				return nil, fmt.Errorf("layout: road %d has negative travel time in direction %d", i, dir)
			}
		}
	}
	for i, r := range routes {
		if len(r.Roads) == 0 {
			return nil, fmt.Errorf("layout: route %d is empty", i)
		}
		if len(r.Roads) != len(r.Directions) {
			return nil, fmt.Errorf("layout: route %d has %d roads but %d directions", i, len(r.Roads), len(r.Directions))
		}
		if r.Crusher < 0 || r.Crusher >= len(crushers) {
			return nil, fmt.Errorf("layout: route %d references unknown crusher %d", i, r.Crusher)
		}
		if r.Shovel < 0 || r.Shovel >= len(shovels) {
			return nil, fmt.Errorf("layout: route %d references unknown shovel %d", i, r.Shovel)
		}
		for j, road := range r.Roads {
			if road < 0 || road >= len(roads) {
				return nil, fmt.Errorf("layout: route %d references unknown road %d", i, road)
			}
			if d := r.Directions[j]; d != 0 && d != 1 {
				return nil, fmt.Errorf("layout: route %d has illegal direction %d", i, d)
			}
		}
	}

	l := &Layout{
		NumTrucks:    numTrucks,
		Crushers:     crushers,
		Shovels:      shovels,
		Roads:        roads,
		Routes:       routes,
		FullSlowdown: fullSlowdown,
	}

	l.lightIndex = make([]int, len(roads))
	for i, r := range roads {
		if r.OneLane {
			l.lightIndex[i] = len(l.lightRoads)
			l.lightRoads = append(l.lightRoads, i)
		} else {
			l.lightIndex[i] = -1
		}
	}

	l.defaultRoute = make([]int, len(crushers))
	for i := range l.defaultRoute {
		l.defaultRoute[i] = -1
	}
	for i, r := range routes {
		if l.defaultRoute[r.Crusher] < 0 {
			l.defaultRoute[r.Crusher] = i
		}
	}
	for i, r := range l.defaultRoute {
		if r < 0 {
			return nil, fmt.Errorf("layout: no routes out of crusher location %d", i)
		}
	}

	for _, c := range crushers {
		l.crushingRate += float64(c.Servers) / c.EmptyTimeMean
	}

	return l, nil
}

// NumLights returns the number of traffic lights (one per one-lane road).
func (l *Layout) NumLights() int { return len(l.lightRoads) }

// LightIndex returns the light id guarding a road, or -1 for two-lane roads.
func (l *Layout) LightIndex(road int) int { return l.lightIndex[road] }

// LightRoad returns the road guarded by a light.
func (l *Layout) LightRoad(light int) int { return l.lightRoads[light] }

// DefaultRoute returns the first enumerated route out of a crusher location,
// used for the initial assignment of trucks before the first dispatch.
func (l *Layout) DefaultRoute(crusher int) int { return l.defaultRoute[crusher] }

// CrushingRate returns the net service rate of all crushers, in truckloads
// per time unit. Feeds the truck idle-ore metric.
func (l *Layout) CrushingRate() float64 { return l.crushingRate }
