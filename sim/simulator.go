// sim/simulator.go
package sim

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
)

// Simulator is the discrete-event kernel for one shift of truck haulage.
// It owns all mutable state: truck locations, machine queues, traffic
// lights and the event queues. One instance is single-threaded; rollouts
// materialize their own instances from a Snapshot.
type Simulator struct {
	layout *Layout
	tgen   TimeDistribution
	con    Controller

	clock         float64
	instantQ      transitionQueue // zero-duration cascades, ordered by priority
	timedQ        transitionQueue // sampled-duration transitions, ordered by time
	lightsPending lightSchedule   // scheduled phase changes for timer-mode lights

	locs            []TruckLocation
	assignedShovel  []int
	assignedCrusher []int
	assignedRoute   []int
	routePoint      []int
	arrivalTime     []float64
	intendedArrival []float64

	crusherQueues []TruckQueue
	numEmptying   []int
	shovelQueues  []TruckQueue
	shovelInUse   []bool

	lights      []LightPhase
	lightQueues [][2]TruckQueue
	greedyMode  []bool

	roadQueues    [][2]TruckQueue
	roadAvailable [][2]float64
	roadPriority  [][2]int

	numEmpties int
	numUnused  int
	halted     bool

	metrics  *Metrics
	recorder *Recorder

	initialised bool
}

// NewSimulator allocates a simulator over an immutable layout. Call
// LoadController and Initialise before Run.
func NewSimulator(layout *Layout, tgen TimeDistribution) *Simulator {
	n := layout.NumTrucks
	s := &Simulator{
		layout:          layout,
		tgen:            tgen,
		locs:            make([]TruckLocation, n),
		assignedShovel:  make([]int, n),
		assignedCrusher: make([]int, n),
		assignedRoute:   make([]int, n),
		routePoint:      make([]int, n),
		arrivalTime:     make([]float64, n),
		intendedArrival: make([]float64, n),
		crusherQueues:   make([]TruckQueue, len(layout.Crushers)),
		numEmptying:     make([]int, len(layout.Crushers)),
		shovelQueues:    make([]TruckQueue, len(layout.Shovels)),
		shovelInUse:     make([]bool, len(layout.Shovels)),
		lights:          make([]LightPhase, layout.NumLights()),
		lightQueues:     make([][2]TruckQueue, layout.NumLights()),
		greedyMode:      make([]bool, layout.NumLights()),
		roadQueues:      make([][2]TruckQueue, len(layout.Roads)),
		roadAvailable:   make([][2]float64, len(layout.Roads)),
		roadPriority:    make([][2]int, len(layout.Roads)),
		metrics:         newMetrics(layout),
	}
	return s
}

// LoadController installs the dispatch policy.
func (s *Simulator) LoadController(con Controller) {
	s.con = con
	con.Reset()
	s.initialised = false
}

// AttachRecorder enables stored-state mode: every transition and light
// phase change is reported to r, from which rollouts can be built.
func (s *Simulator) AttachRecorder(r *Recorder) {
	s.recorder = r
}

// Initialise resets the simulation to the start of a shift: all trucks
// Waiting at their initial crusher locations, all lights green towards the
// shovels in greedy mode.
func (s *Simulator) Initialise() {
	if s.con == nil {
		panic("simulator: no controller loaded")
	}
	s.clock = 0
	s.instantQ.clear()
	s.timedQ.clear()
	s.lightsPending.clear()
	initialCrushers := s.con.InitialCrushers()
	for i := 0; i < s.layout.NumTrucks; i++ {
		s.instantQ.push(Transition{Truck: i, Time: s.clock, Source: Waiting, Target: Waiting, Priority: s.getPriority(i, Waiting)})
		s.locs[i] = Waiting
		if initialCrushers == nil {
			s.assignedCrusher[i] = i % len(s.layout.Crushers)
		} else {
			s.assignedCrusher[i] = initialCrushers[i]
		}
		s.assignedRoute[i] = s.layout.DefaultRoute(s.assignedCrusher[i])
		s.assignedShovel[i] = s.layout.Routes[s.assignedRoute[i]].Shovel
		s.routePoint[i] = 0
		s.arrivalTime[i] = s.clock
		s.intendedArrival[i] = s.clock
	}
	for i := range s.crusherQueues {
		s.crusherQueues[i].Clear()
		s.numEmptying[i] = 0
	}
	for i := range s.shovelQueues {
		s.shovelQueues[i].Clear()
		s.shovelInUse[i] = false
	}
	for i := range s.lights {
		s.lights[i] = GreenRed
		s.greedyMode[i] = true
		s.lightQueues[i][0].Clear()
		s.lightQueues[i][1].Clear()
	}
	for i := range s.roadQueues {
		for dir := 0; dir < 2; dir++ {
			s.roadQueues[i][dir].Clear()
			s.roadAvailable[i][dir] = s.clock
			s.roadPriority[i][dir] = math.MinInt32
		}
	}
	s.numEmpties = 0
	s.numUnused = 0
	s.halted = false
	s.metrics.reset(s.clock, nil)

	s.con.Reset()
	if s.recorder != nil {
		s.recorder.Reset(initialCrushers)
	}
	s.initialised = true
}

// Run advances the simulation until the next event would exceed runtime,
// the fleet is fully parked, or the controller halts the run.
func (s *Simulator) Run(runtime float64) {
	if !s.initialised {
		panic("simulator: not initialised")
	}
	for s.numUnused < s.layout.NumTrucks && !s.halted {
		next, ok := s.peekNextEvent()
		change, lok := s.lightsPending.peek()
		if !ok || (lok && change.time <= next.Time) {
			if !lok {
				break
			}
			if change.time > runtime {
				break
			}
			s.updateLights()
			continue
		}
		if next.Time > runtime {
			break
		}
		s.singleEvent()
	}
}

// singleEvent processes one transition: asserts its source matches the
// truck's current location, advances the clock, notifies the controller
// and recorder, and applies the state-specific reaction.
func (s *Simulator) singleEvent() {
	next := s.popNextEvent()
	if next.Time < s.clock {
		panic(fmt.Sprintf("simulator: negative time step: %f < %f", next.Time, s.clock))
	}
	s.clock = next.Time
	tid := next.Truck
	if next.Source != s.locs[tid] {
		panic(fmt.Sprintf("simulator: transition from %v to %v while truck %d is in %v",
			next.Source, next.Target, tid, s.locs[tid]))
	}
	logrus.Debugf("[t=%010.3f] truck %d: %v -> %v", s.clock, tid, next.Source, next.Target)
	sc := s.stateChange(next)
	s.con.Event(sc)
	if s.recorder != nil {
		s.recorder.Observe(sc)
	}
	s.arrivalTime[tid] = s.clock

	switch next.Target {
	case Waiting:
		if next.Source == Emptying {
			s.updateCrusher(s.assignedCrusher[tid])
			if s.metrics.dispatched[tid] > 0 {
				s.metrics.successfulEmpties++
			}
			s.metrics.completeCycles = append(s.metrics.completeCycles, s.clock-s.metrics.dispatchTime[tid])
		}
		if !s.getRoute(tid, true) {
			return
		}
		s.metrics.dispatched[tid]++
		s.metrics.dispatchTime[tid] = s.clock

	case TravelToShovel:
		road := s.layout.Routes[s.assignedRoute[tid]].Roads[s.routePoint[tid]]
		if s.layout.Roads[road].OneLane {
			s.metrics.roadWaiting[tid] += s.clock - s.metrics.lastWaitStart[tid]
			s.metrics.truckWaited(tid, s.clock)
		} else {
			s.clearedRoad(tid, true)
		}
		s.timedQ.push(s.preventCollisions(tid, true))
		s.routePoint[tid]++

	case ApproachingTLCS:
		s.clearedRoad(tid, true)
		s.arrivedAtLights(tid, true)
		s.metrics.lastWaitStart[tid] = s.clock

	case StoppedAtTLCS:
		s.stoppedAtLights(tid)

	case ApproachingShovel:
		s.clearedRoad(tid, true)
		sid := s.assignedShovel[tid]
		var nextLoc TruckLocation
		if s.shovelInUse[sid] {
			nextLoc = WaitingAtShovel
			s.shovelQueues[sid].Enqueue(tid)
		} else {
			nextLoc = Filling
			s.shovelInUse[sid] = true
		}
		s.instantQ.push(Transition{Truck: tid, Time: s.clock, Source: next.Target, Target: nextLoc, Priority: s.getPriority(tid, nextLoc)})
		s.metrics.lastWaitStart[tid] = s.clock

	case WaitingAtShovel:
		// Waits in the shovel queue until promoted by a LeavingShovel event.

	case Filling:
		sid := s.assignedShovel[tid]
		fillTime := s.tgen.Sample(s.layout.Shovels[sid].FillTimeMean, s.layout.Shovels[sid].FillTimeSD)
		s.timedQ.push(Transition{Truck: tid, Time: s.clock + fillTime, Source: next.Target, Target: LeavingShovel, Priority: s.getPriority(tid, LeavingShovel)})
		s.intendedArrival[tid] = s.clock + fillTime
		s.metrics.lastServiceStart[tid] = s.clock
		s.metrics.serviceWaiting[tid] += s.clock - s.metrics.lastWaitStart[tid]
		s.metrics.truckWaited(tid, s.clock)
		s.metrics.serviceAvailable[tid] = s.metrics.lastFillEnd[sid]
		s.metrics.shovelWaiting[sid] += s.clock - s.metrics.lastFillEnd[sid]
		s.metrics.shovelIdleOre += (s.clock - s.metrics.lastFillEnd[sid]) / s.layout.Shovels[sid].FillTimeMean

	case LeavingShovel:
		sid := s.assignedShovel[tid]
		if next.Source == Filling {
			if s.shovelQueues[sid].Empty() {
				s.shovelInUse[sid] = false
			} else {
				head := s.shovelQueues[sid].Dequeue()
				s.instantQ.push(Transition{Truck: head, Time: s.clock, Source: WaitingAtShovel, Target: Filling, Priority: s.getPriority(head, Filling)})
			}
			s.metrics.lastFillEnd[sid] = s.clock
			if s.metrics.dispatched[tid] > 0 {
				s.metrics.successfulFills++
				s.metrics.fillsFromCrusher[s.assignedCrusher[tid]]++
			}
		}
		if !s.getRoute(tid, false) {
			return
		}

	case TravelToCrusher:
		road := s.layout.Routes[s.assignedRoute[tid]].Roads[s.routePoint[tid]]
		if s.layout.Roads[road].OneLane {
			s.metrics.roadWaiting[tid] += s.clock - s.metrics.lastWaitStart[tid]
			s.metrics.truckWaited(tid, s.clock)
		} else {
			s.clearedRoad(tid, false)
		}
		s.timedQ.push(s.preventCollisions(tid, false))
		s.routePoint[tid]--

	case ApproachingTLSS:
		s.clearedRoad(tid, false)
		s.arrivedAtLights(tid, false)
		s.metrics.lastWaitStart[tid] = s.clock

	case StoppedAtTLSS:
		s.stoppedAtLights(tid)

	case ApproachingCrusher:
		s.clearedRoad(tid, false)
		cid := s.assignedCrusher[tid]
		var nextLoc TruckLocation
		if s.numEmptying[cid] < s.layout.Crushers[cid].Servers {
			nextLoc = Emptying
			s.metrics.crusherIdleOre += (s.clock - s.metrics.lastCrusherChange[cid]) *
				float64(s.layout.Crushers[cid].Servers-s.numEmptying[cid]) / s.layout.Crushers[cid].EmptyTimeMean
			s.numEmptying[cid]++
			s.metrics.lastCrusherChange[cid] = s.clock
		} else {
			nextLoc = WaitingAtCrusher
			s.crusherQueues[cid].Enqueue(tid)
		}
		s.instantQ.push(Transition{Truck: tid, Time: s.clock, Source: next.Target, Target: nextLoc, Priority: s.getPriority(tid, nextLoc)})
		s.metrics.lastWaitStart[tid] = s.clock

	case WaitingAtCrusher:
		// Waits in the crusher queue until promoted on a service completion.

	case Emptying:
		cid := s.assignedCrusher[tid]
		emptyTime := s.tgen.Sample(s.layout.Crushers[cid].EmptyTimeMean, s.layout.Crushers[cid].EmptyTimeSD)
		s.timedQ.push(Transition{Truck: tid, Time: s.clock + emptyTime, Source: next.Target, Target: Waiting, Priority: s.getPriority(tid, Waiting)})
		s.intendedArrival[tid] = s.clock + emptyTime
		s.metrics.lastServiceStart[tid] = s.clock
		s.metrics.serviceWaiting[tid] += s.clock - s.metrics.lastWaitStart[tid]
		s.metrics.truckWaited(tid, s.clock)
		s.metrics.serviceAvailable[tid] = s.metrics.lastEmptyEnd[cid]

	case Unused:
		s.numUnused++
		s.metrics.lastWaitStart[tid] = s.clock

	default:
		panic(fmt.Sprintf("simulator: truck has entered illegal state: %v", next.Target))
	}
	s.locs[tid] = next.Target
}

// updateCrusher releases a crusher server after a truck finished emptying,
// promoting the next queued truck if any.
func (s *Simulator) updateCrusher(cid int) {
	if s.crusherQueues[cid].Empty() {
		s.metrics.crusherIdleOre += (s.clock - s.metrics.lastCrusherChange[cid]) *
			float64(s.layout.Crushers[cid].Servers-s.numEmptying[cid]) / s.layout.Crushers[cid].EmptyTimeMean
		s.numEmptying[cid]--
		s.metrics.lastCrusherChange[cid] = s.clock
	} else {
		head := s.crusherQueues[cid].Dequeue()
		s.instantQ.push(Transition{Truck: head, Time: s.clock, Source: WaitingAtCrusher, Target: Emptying, Priority: s.getPriority(head, Emptying)})
	}
	s.numEmpties++
	s.metrics.lastEmptyEnd[cid] = s.clock
	logrus.Debugf("[t=%010.3f] %d empties", s.clock, s.numEmpties)
}

// getRoute asks the controller for a truck's next route and schedules the
// first transition of the new leg. Returns false if the controller halted
// the run.
func (s *Simulator) getRoute(tid int, toShovel bool) bool {
	route := s.con.NextRoute(tid)
	var mid int
	var origin TruckLocation
	if toShovel {
		mid = s.assignedCrusher[tid]
		origin = Waiting
	} else {
		mid = s.assignedShovel[tid]
		origin = LeavingShovel
	}
	if route < 0 {
		if route == RouteParked {
			s.instantQ.push(Transition{Truck: tid, Time: s.clock, Source: origin, Target: Unused, Priority: s.getPriority(tid, Unused)})
			return true
		}
		s.halted = true
		return false
	}
	if route >= len(s.layout.Routes) {
		panic(fmt.Sprintf("simulator: illegal route supplied: %d", route))
	}
	if toShovel {
		if s.layout.Routes[route].Crusher != mid {
			panic(fmt.Sprintf("simulator: illegal route supplied: %d at crusher %d", route, mid))
		}
	} else if s.layout.Routes[route].Shovel != mid {
		panic(fmt.Sprintf("simulator: illegal route supplied: %d at shovel %d", route, mid))
	}
	s.assignedRoute[tid] = route
	s.assignedCrusher[tid] = s.layout.Routes[route].Crusher
	s.assignedShovel[tid] = s.layout.Routes[route].Shovel
	var target TruckLocation
	if toShovel {
		s.routePoint[tid] = 0
		if s.layout.Roads[s.layout.Routes[route].Roads[0]].OneLane {
			target = ApproachingTLCS
		} else {
			target = TravelToShovel
		}
	} else {
		s.routePoint[tid] = s.layout.Routes[route].Length() - 1
		if s.layout.Roads[s.layout.Routes[route].Roads[s.routePoint[tid]]].OneLane {
			target = ApproachingTLSS
		} else {
			target = TravelToCrusher
		}
	}
	logrus.Debugf("[t=%010.3f] truck %d dispatched on route %d", s.clock, tid, route)
	s.instantQ.push(Transition{Truck: tid, Time: s.clock, Source: origin, Target: target, Priority: s.getPriority(tid, target)})
	return true
}

// clearedRoad pops a truck off the road-direction FIFO it just finished
// traversing. The truck must be the head; anything else means overtaking
// happened, which the collision floor is supposed to make impossible.
func (s *Simulator) clearedRoad(tid int, toShovel bool) {
	route := s.layout.Routes[s.assignedRoute[tid]]
	startPoint := 0
	off := -1
	if !toShovel {
		startPoint = route.Length() - 1
		off = 1
	}
	point := s.routePoint[tid]
	if point == startPoint {
		return
	}
	dir := route.Directions[point+off]
	to := dir
	if !toShovel {
		to = 1 - dir
	}
	prevRoad := route.Roads[point+off]
	front := s.roadQueues[prevRoad][to].Dequeue()
	if front != tid {
		panic(fmt.Sprintf("simulator: trucks out of order on road %d: got %d, want %d", prevRoad, front, tid))
	}
	if s.layout.Roads[prevRoad].OneLane {
		s.checkLights(prevRoad)
	}
}

// getPriority returns the tie-break priority for a transition into dest.
// Only affects event order under a deterministic time distribution. Travel
// transitions use the per-road-direction counter instead.
func (s *Simulator) getPriority(tid int, dest TruckLocation) int {
	return transitionPriority(s.layout.NumTrucks, tid, dest)
}

func transitionPriority(n, tid int, dest TruckLocation) int {
	switch dest {
	case StoppedAtTLCS, StoppedAtTLSS:
		return tid
	case TravelToShovel, TravelToCrusher:
		return n + tid
	case WaitingAtShovel, Filling, WaitingAtCrusher, Emptying:
		return n*2 + tid
	case ApproachingTLCS, ApproachingTLSS:
		return n*3 + tid
	case Waiting, LeavingShovel:
		return n*4 + tid
	case ApproachingShovel, ApproachingCrusher:
		return n*5 + tid
	case Unused:
		return -1
	default:
		panic(fmt.Sprintf("simulator: truck cannot transition to: %v", dest))
	}
}

// arrivedAtLights handles a truck reaching the light on a one-lane road:
// proceed on green, or stop and queue, flipping a greedy light to yellow
// when demand appears on the red side.
func (s *Simulator) arrivedAtLights(tid int, toShovel bool) {
	route := s.layout.Routes[s.assignedRoute[tid]]
	road := route.Roads[s.routePoint[tid]]
	if !s.layout.Roads[road].OneLane {
		panic(fmt.Sprintf("simulator: arrived at lights for two-lane road %d", road))
	}
	dir := route.Directions[s.routePoint[tid]]
	var origin, stopTarget, travelTarget TruckLocation
	if toShovel {
		origin = ApproachingTLCS
		stopTarget = StoppedAtTLCS
		travelTarget = TravelToShovel
	} else {
		dir = 1 - dir
		origin = ApproachingTLSS
		stopTarget = StoppedAtTLSS
		travelTarget = TravelToCrusher
	}
	light := s.layout.LightIndex(road)
	stop := func() {
		s.instantQ.push(Transition{Truck: tid, Time: s.clock, Source: origin, Target: stopTarget, Priority: s.getPriority(tid, stopTarget)})
		s.lightQueues[light][dir].Enqueue(tid)
	}
	proceed := func() {
		s.instantQ.push(Transition{Truck: tid, Time: s.clock, Source: origin, Target: travelTarget, Priority: s.getPriority(tid, travelTarget)})
	}
	switch s.lights[light] {
	case RedRed, YellowRed, RedYellow:
		stop()
	case RedGreen:
		if dir == 0 {
			stop()
			if s.greedyMode[light] {
				s.setYellow(light, road, RedYellow)
			}
		} else {
			proceed()
		}
	case GreenRed:
		if dir == 0 {
			proceed()
		} else {
			stop()
			if s.greedyMode[light] {
				s.setYellow(light, road, YellowRed)
			}
		}
	default:
		panic(fmt.Sprintf("simulator: illegal light configuration: %v", s.lights[light]))
	}
}

// setYellow flips a greedy light to its yellow transition. The controller
// is notified and must return exactly 0; greedy timing is kernel-owned.
func (s *Simulator) setYellow(light, road int, yellow LightPhase) {
	s.lights[light] = yellow
	if t := s.con.LightEvent(road, yellow, s.clock, nil); t != 0 {
		panic("simulator: controller overriding greedy mode")
	}
	if s.recorder != nil {
		s.recorder.ObserveLight(road, yellow, s.clock, s.clock, nil)
	}
}

// stoppedAtLights re-checks a greedy light after a truck stops; if the road
// is already clear the yellow can complete immediately.
func (s *Simulator) stoppedAtLights(tid int) {
	road := s.layout.Routes[s.assignedRoute[tid]].Roads[s.routePoint[tid]]
	if s.greedyMode[s.layout.LightIndex(road)] {
		s.checkLights(road)
	}
}

// checkLights completes a yellow phase once the road is empty in both
// directions: flips to green for the opposite side, releases its queue, and
// asks the controller for the green duration (0 arms greedy mode).
func (s *Simulator) checkLights(road int) {
	if !s.roadQueues[road][0].Empty() || !s.roadQueues[road][1].Empty() {
		return
	}
	light := s.layout.LightIndex(road)
	var side int
	switch s.lights[light] {
	case YellowRed:
		s.lights[light] = RedGreen
		side = 1
	case RedYellow:
		s.lights[light] = GreenRed
		side = 0
	default:
		return
	}
	released := s.lightQueues[light][side].Len()
	for i := 0; i < released; i++ {
		front := s.lightQueues[light][side].Dequeue()
		s.roadPriority[road][side]++
		var origin, target TruckLocation
		switch s.locs[front] {
		case ApproachingTLSS, StoppedAtTLSS:
			origin = StoppedAtTLSS
			target = TravelToCrusher
		case ApproachingTLCS, StoppedAtTLCS:
			origin = StoppedAtTLCS
			target = TravelToShovel
		default:
			panic(fmt.Sprintf("simulator: truck %d is in light queue but not stopped: %v", front, s.locs[front]))
		}
		s.instantQ.push(Transition{Truck: front, Time: s.clock, Source: origin, Target: target, Priority: s.roadPriority[road][side]})
	}
	lightTime := s.con.LightEvent(road, s.lights[light], s.clock, nil)
	if lightTime < 0 {
		panic(fmt.Sprintf("simulator: negative light schedule: %f", lightTime))
	}
	if lightTime == 0 {
		s.greedyMode[light] = true
		if s.recorder != nil {
			s.recorder.ObserveLight(road, s.lights[light], s.clock, s.clock, nil)
		}
		if !s.lightQueues[light][1-side].Empty() {
			// Demand already waits on the now-red side; start draining again.
			var yellow LightPhase
			switch s.lights[light] {
			case GreenRed:
				yellow = YellowRed
			case RedGreen:
				yellow = RedYellow
			default:
				panic(fmt.Sprintf("simulator: lights not green after change: %v", s.lights[light]))
			}
			s.setYellow(light, road, yellow)
			if released == 0 {
				s.checkLights(road)
			}
		}
	} else {
		s.lightsPending.push(road, s.clock+lightTime)
		s.greedyMode[light] = false
		if s.recorder != nil {
			s.recorder.ObserveLight(road, s.lights[light], s.clock, s.clock+lightTime, nil)
		}
	}
}

// updateLights processes the next scheduled phase change of a timer-mode
// light. The controller may extend the green by returning a positive value.
func (s *Simulator) updateLights() {
	change := s.lightsPending.pop()
	road := change.road
	light := s.layout.LightIndex(road)
	if change.time < s.clock {
		panic(fmt.Sprintf("simulator: negative time step: %f < %f", change.time, s.clock))
	}
	s.clock = change.time
	var yellow LightPhase
	switch s.lights[light] {
	case GreenRed:
		yellow = YellowRed
	case RedGreen:
		yellow = RedYellow
	default:
		panic(fmt.Sprintf("simulator: light change scheduled for non-green light: %v", s.lights[light]))
	}
	progress := s.progressVector(-1)
	lightTime := s.con.LightEvent(road, yellow, s.clock, progress)
	switch {
	case lightTime > 0:
		s.lightsPending.push(road, s.clock+lightTime)
		if s.recorder != nil {
			s.recorder.ObserveLight(road, s.lights[light], s.clock, s.clock+lightTime, progress)
		}
	case lightTime == 0:
		s.lights[light] = yellow
		if s.recorder != nil {
			s.recorder.ObserveLight(road, yellow, s.clock, s.clock, progress)
		}
		s.checkLights(road)
	default:
		panic(fmt.Sprintf("simulator: negative light schedule: %f", lightTime))
	}
}

func (s *Simulator) popNextEvent() Transition {
	if !s.instantQ.empty() {
		return s.instantQ.pop()
	}
	return s.timedQ.pop()
}

func (s *Simulator) peekNextEvent() (Transition, bool) {
	if t, ok := s.instantQ.peek(); ok {
		return t, true
	}
	return s.timedQ.peek()
}

// preventCollisions builds a travel transition whose completion time is
// floored at the road-direction's availability, so trucks entering a
// segment in order also finish in order regardless of the sampled times.
func (s *Simulator) preventCollisions(tid int, toShovel bool) Transition {
	point := s.routePoint[tid]
	route := s.layout.Routes[s.assignedRoute[tid]]
	road := route.Roads[point]
	dir := route.Directions[point]
	to := dir
	slowdown := 1.0
	if !toShovel {
		to = 1 - dir
		slowdown = s.layout.FullSlowdown
	}
	travelTime := s.tgen.Sample(s.layout.Roads[road].TravelTimeMean[to], s.layout.Roads[road].TravelTimeSD[to]) * slowdown
	s.intendedArrival[tid] = s.clock + travelTime
	actualArrival := math.Max(s.intendedArrival[tid], s.roadAvailable[road][to])
	s.roadAvailable[road][to] = actualArrival
	var travelLoc, targetLoc TruckLocation
	if toShovel {
		travelLoc = TravelToShovel
		switch {
		case point == route.Length()-1:
			targetLoc = ApproachingShovel
		case s.layout.Roads[route.Roads[point+1]].OneLane:
			targetLoc = ApproachingTLCS
		default:
			targetLoc = TravelToShovel
		}
	} else {
		travelLoc = TravelToCrusher
		switch {
		case point == 0:
			targetLoc = ApproachingCrusher
		case s.layout.Roads[route.Roads[point-1]].OneLane:
			targetLoc = ApproachingTLSS
		default:
			targetLoc = TravelToCrusher
		}
	}
	s.roadPriority[road][to]++
	s.roadQueues[road][to].Enqueue(tid)
	return Transition{Truck: tid, Time: actualArrival, Source: travelLoc, Target: targetLoc, Priority: s.roadPriority[road][to]}
}

// stateChange packages a transition with the fleet progress vector for the
// controller and recorder.
func (s *Simulator) stateChange(next Transition) StateChange {
	return StateChange{
		Time:       next.Time,
		Truck:      next.Truck,
		Target:     next.Target,
		Route:      s.assignedRoute[next.Truck],
		RoutePoint: s.routePoint[next.Truck],
		Progress:   s.progressVector(next.Truck),
	}
}

// progressVector computes, per truck, the fraction of its current timed
// transition that has elapsed, or the absolute waiting duration for
// stationary trucks. Trucks on a shared road are floored by the truck
// ahead so reported progress never implies overtaking. The transitioning
// truck (if any) keeps its road-floor value.
func (s *Simulator) progressVector(truck int) []float64 {
	progress := make([]float64, s.layout.NumTrucks)
	marked := make([]bool, s.layout.NumTrucks)
	for road := range s.roadQueues {
		for dir := 0; dir < 2; dir++ {
			minProgress := 1.0
			q := &s.roadQueues[road][dir]
			for k := 0; k < q.Len(); k++ {
				t := q.At(k)
				denom := s.intendedArrival[t] - s.arrivalTime[t]
				intended := 1.0
				if denom > 0 {
					intended = (s.clock - s.arrivalTime[t]) / denom
				}
				minProgress = math.Min(minProgress, intended)
				progress[t] = minProgress
				marked[t] = true
			}
		}
	}
	for i := 0; i < s.layout.NumTrucks; i++ {
		if i == truck {
			continue
		}
		switch s.locs[i] {
		case Waiting, ApproachingTLCS, ApproachingShovel, LeavingShovel, ApproachingTLSS, ApproachingCrusher, Unused:
			// Instantaneous states carry no progress.
		case TravelToShovel, TravelToCrusher:
			if !marked[i] {
				panic(fmt.Sprintf("simulator: road queues are incorrect: truck %d travelling but not queued", i))
			}
		case Filling, Emptying:
			denom := s.intendedArrival[i] - s.arrivalTime[i]
			if denom > 0 {
				progress[i] = (s.clock - s.arrivalTime[i]) / denom
			} else {
				progress[i] = 1
			}
		case StoppedAtTLCS, WaitingAtShovel, StoppedAtTLSS, WaitingAtCrusher:
			progress[i] = s.clock - s.arrivalTime[i]
		default:
			panic(fmt.Sprintf("simulator: truck has entered illegal state: %v", s.locs[i]))
		}
	}
	return progress
}

// === Read accessors ===

// Clock returns the current simulation time.
func (s *Simulator) Clock() float64 { return s.clock }

// Empties returns the number of completed unload services this run.
func (s *Simulator) Empties() int { return s.numEmpties }

// Halted reports whether the controller terminated the run early.
func (s *Simulator) Halted() bool { return s.halted }

// Location returns a truck's current state.
func (s *Simulator) Location(tid int) TruckLocation { return s.locs[tid] }

// AssignedRoute returns a truck's current route index.
func (s *Simulator) AssignedRoute(tid int) int { return s.assignedRoute[tid] }

// AssignedCrusher returns a truck's current crusher location.
func (s *Simulator) AssignedCrusher(tid int) int { return s.assignedCrusher[tid] }

// AssignedShovel returns a truck's current shovel.
func (s *Simulator) AssignedShovel(tid int) int { return s.assignedShovel[tid] }

// LightState returns the phase of the light guarding a one-lane road.
func (s *Simulator) LightState(road int) LightPhase {
	return s.lights[s.layout.LightIndex(road)]
}

// Metrics returns the statistics collected for the current run.
func (s *Simulator) Metrics() *Metrics { return s.metrics }

// Layout returns the immutable mine layout.
func (s *Simulator) Layout() *Layout { return s.layout }

// NumEmptyingSnapshot copies the per-crusher active-server counts, for the
// idle-ore extrapolation accessors.
func (s *Simulator) NumEmptyingSnapshot() []int {
	out := make([]int, len(s.numEmptying))
	copy(out, s.numEmptying)
	return out
}

// ShovelInUseSnapshot copies the per-shovel busy flags.
func (s *Simulator) ShovelInUseSnapshot() []bool {
	out := make([]bool, len(s.shovelInUse))
	copy(out, s.shovelInUse)
	return out
}

// Locations copies the fleet state vector.
func (s *Simulator) Locations() []TruckLocation {
	out := make([]TruckLocation, len(s.locs))
	copy(out, s.locs)
	return out
}
