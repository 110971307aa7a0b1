package sim

import (
	"fmt"
	"math"
	"sort"
)

// progressEpsilon guards residual-duration resampling during replay: a
// fresh sample may only raise a road's availability floor when the truck's
// progress is materially behind the truck ahead, so reconstruction never
// moves an already-elapsed completion backwards.
const progressEpsilon = 1e-6

// ReplaySource turns one Snapshot into any number of independent rollout
// simulations. Construction performs the queue reconstruction once; each
// Materialize call then produces a fresh Simulator owning its own scratch
// state, so rollouts can run in parallel. The snapshot itself is never
// mutated.
type ReplaySource struct {
	layout *Layout
	snap   Snapshot

	instantStored  []Transition
	timedStored    []Transition // completion times filled in per rollout
	crusherStored  []TruckQueue
	shovelStored   []TruckQueue
	emptyingStored []int
	inUseStored    []bool
	lightQStored   [][2]TruckQueue
	roadQStored    [][2]TruckQueue
	roadPrioStored [][2]int
}

// truckOrder is the reconstruction order: descending progress, then
// earliest recorded transition, then truck id. It is the best available
// approximation of true queue order, since the snapshot does not retain
// exact queue contents.
type truckOrder struct {
	tid            int
	progress       float64
	lastTransition int
}

// NewReplaySource reconstructs the waiting lines and pending transitions
// implied by a snapshot.
func NewReplaySource(layout *Layout, snap Snapshot) *ReplaySource {
	rs := &ReplaySource{
		layout:         layout,
		snap:           snap.Clone(),
		crusherStored:  make([]TruckQueue, len(layout.Crushers)),
		shovelStored:   make([]TruckQueue, len(layout.Shovels)),
		emptyingStored: make([]int, len(layout.Crushers)),
		inUseStored:    make([]bool, len(layout.Shovels)),
		lightQStored:   make([][2]TruckQueue, layout.NumLights()),
		roadQStored:    make([][2]TruckQueue, len(layout.Roads)),
		roadPrioStored: make([][2]int, len(layout.Roads)),
	}
	rs.rebuild()
	return rs
}

// Snapshot returns a copy of the source snapshot.
func (rs *ReplaySource) Snapshot() Snapshot { return rs.snap.Clone() }

func (rs *ReplaySource) rebuild() {
	snap := rs.snap
	layout := rs.layout
	n := layout.NumTrucks

	order := make([]truckOrder, n)
	for i := 0; i < n; i++ {
		order[i] = truckOrder{tid: i, progress: snap.Progress[i], lastTransition: snap.LastTransition[i]}
	}
	sort.SliceStable(order, func(i, j int) bool {
		if order[i].progress != order[j].progress {
			return order[i].progress > order[j].progress
		}
		if order[i].lastTransition != order[j].lastTransition {
			return order[i].lastTransition < order[j].lastTransition
		}
		return order[i].tid < order[j].tid
	})

	for i := range rs.roadPrioStored {
		rs.roadPrioStored[i][0] = math.MinInt32
		rs.roadPrioStored[i][1] = math.MinInt32
	}

	instant := func(tid int, loc TruckLocation) {
		rs.instantStored = append(rs.instantStored, Transition{
			Truck: tid, Time: snap.Time, Source: loc, Target: loc,
			Priority: transitionPriority(n, tid, loc),
		})
	}

	for _, o := range order {
		tid := o.tid
		route := layout.Routes[snap.Route[tid]]
		point := snap.RoutePoint[tid]
		var road, dir int
		switch {
		case point < 0:
			road = route.Roads[0]
			dir = route.Directions[0]
		case point < route.Length():
			road = route.Roads[point]
			dir = route.Directions[point]
		default:
			road = route.Roads[route.Length()-1]
			dir = route.Directions[route.Length()-1]
		}
		sid := route.Shovel
		cid := route.Crusher

		switch snap.Locs[tid] {
		case Waiting:
			instant(tid, Waiting)

		case TravelToShovel:
			var nextLoc TruckLocation
			switch {
			case point == route.Length()-1:
				nextLoc = ApproachingShovel
			case layout.Roads[route.Roads[point+1]].OneLane:
				nextLoc = ApproachingTLCS
			default:
				nextLoc = TravelToShovel
			}
			rs.timedStored = append(rs.timedStored, Transition{
				Truck: tid, Source: TravelToShovel, Target: nextLoc,
				Priority: rs.roadPrioStored[road][dir],
			})
			rs.roadPrioStored[road][dir]++
			rs.roadQStored[road][dir].Enqueue(tid)

		case ApproachingTLCS:
			instant(tid, ApproachingTLCS)
			if point > 0 {
				// Still the head of the segment it just finished.
				rs.roadQStored[route.Roads[point-1]][route.Directions[point-1]].AddFront(tid)
			}

		case StoppedAtTLCS:
			rs.lightQStored[layout.LightIndex(road)][dir].Enqueue(tid)

		case ApproachingShovel:
			instant(tid, ApproachingShovel)
			rs.roadQStored[road][dir].AddFront(tid)

		case WaitingAtShovel:
			rs.shovelStored[sid].Enqueue(tid)

		case Filling:
			rs.inUseStored[sid] = true
			rs.timedStored = append(rs.timedStored, Transition{
				Truck: tid, Source: Filling, Target: LeavingShovel,
				Priority: transitionPriority(n, tid, LeavingShovel),
			})

		case LeavingShovel:
			instant(tid, LeavingShovel)

		case TravelToCrusher:
			var nextLoc TruckLocation
			switch {
			case point == 0:
				nextLoc = ApproachingCrusher
			case layout.Roads[route.Roads[point-1]].OneLane:
				nextLoc = ApproachingTLSS
			default:
				nextLoc = TravelToCrusher
			}
			rs.timedStored = append(rs.timedStored, Transition{
				Truck: tid, Source: TravelToCrusher, Target: nextLoc,
				Priority: rs.roadPrioStored[road][1-dir],
			})
			rs.roadPrioStored[road][1-dir]++
			rs.roadQStored[road][1-dir].Enqueue(tid)

		case ApproachingTLSS:
			instant(tid, ApproachingTLSS)
			if point < route.Length()-1 {
				rs.roadQStored[route.Roads[point+1]][1-route.Directions[point+1]].AddFront(tid)
			}

		case StoppedAtTLSS:
			rs.lightQStored[layout.LightIndex(road)][1-dir].Enqueue(tid)

		case ApproachingCrusher:
			instant(tid, ApproachingCrusher)
			rs.roadQStored[road][1-dir].AddFront(tid)

		case WaitingAtCrusher:
			rs.crusherStored[cid].Enqueue(tid)

		case Emptying:
			rs.emptyingStored[cid]++
			rs.timedStored = append(rs.timedStored, Transition{
				Truck: tid, Source: Emptying, Target: Waiting,
				Priority: transitionPriority(n, tid, Waiting),
			})

		case Unused:
			// Parked trucks stay parked; nothing to schedule.

		default:
			panic(fmt.Sprintf("replay: truck %d has illegal stored state: %v", tid, snap.Locs[tid]))
		}
	}

	// A free machine with a non-empty queue admits its head immediately.
	for i := range rs.shovelStored {
		if !rs.inUseStored[i] && !rs.shovelStored[i].Empty() {
			head := rs.shovelStored[i].Dequeue()
			rs.instantStored = append(rs.instantStored, Transition{
				Truck: head, Time: snap.Time, Source: WaitingAtShovel, Target: Filling,
				Priority: transitionPriority(n, head, Filling),
			})
			rs.inUseStored[i] = true
		}
	}
	for i := range rs.crusherStored {
		for rs.emptyingStored[i] < layout.Crushers[i].Servers && !rs.crusherStored[i].Empty() {
			head := rs.crusherStored[i].Dequeue()
			rs.instantStored = append(rs.instantStored, Transition{
				Truck: head, Time: snap.Time, Source: WaitingAtCrusher, Target: Emptying,
				Priority: transitionPriority(n, head, Emptying),
			})
			rs.emptyingStored[i]++
		}
	}

	sort.SliceStable(rs.timedStored, func(i, j int) bool {
		return rs.timedStored[i].Priority < rs.timedStored[j].Priority
	})
}

// Materialize produces a fresh simulator consistent with the snapshot,
// with con installed as the hypothetical policy and residual durations
// freshly sampled from tgen. Every call owns its own scratch state.
func (rs *ReplaySource) Materialize(con Controller, tgen TimeDistribution) *Simulator {
	layout := rs.layout
	snap := rs.snap
	s := NewSimulator(layout, tgen)
	s.con = con
	s.clock = snap.Time

	// Truck state.
	copy(s.locs, snap.Locs)
	copy(s.assignedRoute, snap.Route)
	copy(s.routePoint, snap.RoutePoint)
	s.numUnused = 0
	for i := 0; i < layout.NumTrucks; i++ {
		s.assignedShovel[i] = layout.Routes[snap.Route[i]].Shovel
		s.assignedCrusher[i] = layout.Routes[snap.Route[i]].Crusher
		s.arrivalTime[i] = snap.Time
		s.intendedArrival[i] = snap.Time
		switch snap.Locs[i] {
		case StoppedAtTLCS, WaitingAtShovel, StoppedAtTLSS, WaitingAtCrusher:
			// Stored progress for stationary trucks is the absolute waiting
			// duration; carry it into the rollout's progress vectors.
			s.arrivalTime[i] = snap.Time - snap.Progress[i]
		case Unused:
			s.numUnused++
		}
	}

	// Machine state.
	for i := range s.crusherQueues {
		s.crusherQueues[i].CopyFrom(&rs.crusherStored[i])
	}
	copy(s.numEmptying, rs.emptyingStored)
	for i := range s.shovelQueues {
		s.shovelQueues[i].CopyFrom(&rs.shovelStored[i])
	}
	copy(s.shovelInUse, rs.inUseStored)

	// Road and light state.
	copy(s.lights, snap.Lights)
	copy(s.greedyMode, snap.GreedyMode)
	for i := range s.lightQueues {
		s.lightQueues[i][0].CopyFrom(&rs.lightQStored[i][0])
		s.lightQueues[i][1].CopyFrom(&rs.lightQStored[i][1])
		if s.lights[i].GreenDirection() >= 0 && !s.greedyMode[i] {
			s.lightsPending.push(layout.LightRoad(i), snap.LightSchedule[i])
		}
	}
	roadProgress := make([][2]float64, len(layout.Roads))
	for i := range s.roadQueues {
		for dir := 0; dir < 2; dir++ {
			s.roadQueues[i][dir].CopyFrom(&rs.roadQStored[i][dir])
			s.roadAvailable[i][dir] = s.clock
			s.roadPriority[i][dir] = rs.roadPrioStored[i][dir]
			roadProgress[i][dir] = 1.0
		}
	}

	// Pending events. Instants replay as-is; timed transitions get fresh
	// residual durations, floored so nothing completes before a truck ahead
	// of it and nothing re-shrinks below the already-elapsed point.
	for _, t := range rs.instantStored {
		s.instantQ.push(t)
	}
	for _, t := range rs.timedStored {
		tid := t.Truck
		route := layout.Routes[s.assignedRoute[tid]]
		point := s.routePoint[tid]
		road, dir := -1, -1
		if point >= 0 && point < route.Length() {
			road = route.Roads[point]
			dir = route.Directions[point]
		}
		progress := snap.Progress[tid]
		if progress < 0 || progress > 1 {
			panic(fmt.Sprintf("replay: illegal progress value for truck %d: %f", tid, progress))
		}
		switch t.Source {
		case TravelToShovel:
			if roadProgress[road][dir]-progress > progressEpsilon {
				travel := tgen.Sample(layout.Roads[road].TravelTimeMean[dir], layout.Roads[road].TravelTimeSD[dir]) * (1 - progress)
				s.roadAvailable[road][dir] = math.Max(s.roadAvailable[road][dir], s.clock+travel)
			}
			roadProgress[road][dir] = progress
			t.Time = s.roadAvailable[road][dir]
			s.intendedArrival[tid] = t.Time
			s.timedQ.push(t)
			s.routePoint[tid]++

		case Filling:
			sid := s.assignedShovel[tid]
			finish := s.clock + tgen.Sample(layout.Shovels[sid].FillTimeMean, layout.Shovels[sid].FillTimeSD)*(1-progress)
			t.Time = finish
			s.intendedArrival[tid] = finish
			s.timedQ.push(t)

		case TravelToCrusher:
			back := 1 - dir
			if roadProgress[road][back]-progress > progressEpsilon {
				travel := tgen.Sample(layout.Roads[road].TravelTimeMean[back], layout.Roads[road].TravelTimeSD[back]) *
					(1 - progress) * layout.FullSlowdown
				s.roadAvailable[road][back] = math.Max(s.roadAvailable[road][back], s.clock+travel)
			}
			roadProgress[road][back] = progress
			t.Time = s.roadAvailable[road][back]
			s.intendedArrival[tid] = t.Time
			s.timedQ.push(t)
			s.routePoint[tid]--

		case Emptying:
			cid := s.assignedCrusher[tid]
			finish := s.clock + tgen.Sample(layout.Crushers[cid].EmptyTimeMean, layout.Crushers[cid].EmptyTimeSD)*(1-progress)
			t.Time = finish
			s.intendedArrival[tid] = finish
			s.timedQ.push(t)

		default:
			panic(fmt.Sprintf("replay: stored timed event is invalid: %+v", t))
		}
	}

	s.numEmpties = 0
	s.metrics.reset(s.clock, snap.DispatchTime)
	s.initialised = true
	return s
}

// Rollout materializes a simulator and runs it to runtime. The run ends
// early if all trucks are parked or the policy halts it.
func (rs *ReplaySource) Rollout(con Controller, tgen TimeDistribution, runtime float64) *Simulator {
	s := rs.Materialize(con, tgen)
	s.PrimeLights()
	s.Run(runtime)
	return s
}

// PrimeLights completes any yellow phase whose road is already clear.
// Called once before running a simulator materialized from a snapshot;
// the snapshot may have been taken between a road draining and the
// resulting phase flip.
func (s *Simulator) PrimeLights() {
	for light := 0; light < s.layout.NumLights(); light++ {
		s.checkLights(s.layout.LightRoad(light))
	}
}
