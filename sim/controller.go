package sim

// Route sentinels returned by Controller.NextRoute.
const (
	// RouteHalt terminates the current run. Rollout fitness functions use it
	// to cut a continuation short.
	RouteHalt = -1
	// RouteParked takes the truck out of use for the rest of the run.
	RouteParked = -2
)

// StateChange describes one processed transition. It is handed to the
// controller after every event so it can maintain its own picture of the
// mine, including the snapshot a rollout starts from.
type StateChange struct {
	Time       float64
	Truck      int
	Target     TruckLocation
	Route      int
	RoutePoint int
	// Progress holds, per truck, the fractional completion of its current
	// timed transition, or the absolute waiting duration for stationary
	// trucks. The slice is owned by the receiver.
	Progress []float64
}

// Controller is the dispatch-policy boundary. The kernel calls into it; it
// never calls back except through return values.
type Controller interface {
	// NextRoute is called exactly when a truck reaches Waiting (outbound
	// dispatch) or LeavingShovel (inbound dispatch). The returned route must
	// start at the truck's current crusher (outbound) or end at its current
	// shovel (inbound). RouteParked parks the truck; RouteHalt ends the run.
	NextRoute(truck int) int

	// Event is notified after every transition.
	Event(change StateChange)

	// LightEvent is notified on every phase change of the light guarding
	// road. On a change to yellow the return value must be 0 unless the
	// change was scheduled (timer mode), in which case a positive value
	// keeps the light green for that much longer. On a change to green, 0
	// arms greedy mode and a positive value schedules the next change.
	// Negative values are a policy fault. progress is the per-truck progress
	// vector, or nil if unchanged since the last notification.
	LightEvent(road int, phase LightPhase, simTime float64, progress []float64) float64

	// Reset reinitializes policy state for a new shift.
	Reset()

	// InitialCrushers returns the starting crusher location per truck, or
	// nil for the default round-robin placement.
	InitialCrushers() []int
}
