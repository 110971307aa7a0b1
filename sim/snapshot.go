package sim

// Recorder accumulates the stored state of a live simulation: per truck the
// last reported location, route and progress value, and per light the phase
// and pending schedule. Attach one to a Simulator (AttachRecorder) and take
// Snapshot() whenever a policy wants to evaluate hypothetical
// continuations.
type Recorder struct {
	layout *Layout

	time            float64
	locs            []TruckLocation
	route           []int
	routePoint      []int
	progress        []float64
	lastTransition  []int
	transitionCount int
	dispatchTime    []float64

	lights     []LightPhase
	lightSched []float64
	greedy     []bool
}

// NewRecorder creates a recorder in the start-of-shift state.
func NewRecorder(layout *Layout) *Recorder {
	r := &Recorder{
		layout:         layout,
		locs:           make([]TruckLocation, layout.NumTrucks),
		route:          make([]int, layout.NumTrucks),
		routePoint:     make([]int, layout.NumTrucks),
		progress:       make([]float64, layout.NumTrucks),
		lastTransition: make([]int, layout.NumTrucks),
		dispatchTime:   make([]float64, layout.NumTrucks),
		lights:         make([]LightPhase, layout.NumLights()),
		lightSched:     make([]float64, layout.NumLights()),
		greedy:         make([]bool, layout.NumLights()),
	}
	r.Reset(nil)
	return r
}

// Reset returns the stored state to the start of a shift, with trucks
// placed at initialCrushers (nil for the default round-robin spread).
func (r *Recorder) Reset(initialCrushers []int) {
	r.time = 0
	for i := 0; i < r.layout.NumTrucks; i++ {
		r.locs[i] = Waiting
		if initialCrushers == nil {
			r.route[i] = r.layout.DefaultRoute(i % len(r.layout.Crushers))
		} else {
			r.route[i] = r.layout.DefaultRoute(initialCrushers[i])
		}
		r.routePoint[i] = 0
		r.progress[i] = 0
		r.lastTransition[i] = 0
		r.dispatchTime[i] = 0
	}
	for i := range r.lights {
		r.lights[i] = GreenRed
		r.lightSched[i] = 0
		r.greedy[i] = true
	}
	r.transitionCount = 0
}

// Observe folds one transition into the stored state.
func (r *Recorder) Observe(change StateChange) {
	r.time = change.Time
	tid := change.Truck
	r.locs[tid] = change.Target
	r.route[tid] = change.Route
	r.routePoint[tid] = change.RoutePoint
	copy(r.progress, change.Progress)
	r.lastTransition[tid] = r.transitionCount
	r.transitionCount++
	if change.Target == Waiting {
		r.dispatchTime[tid] = change.Time
	}
}

// ObserveLight folds one light phase change into the stored state.
// schedule is the time of the next pending change; schedule == time marks
// greedy mode. progress is the fleet progress vector, or nil if unchanged.
func (r *Recorder) ObserveLight(road int, phase LightPhase, time, schedule float64, progress []float64) {
	light := r.layout.LightIndex(road)
	r.lights[light] = phase
	r.time = time
	r.lightSched[light] = schedule
	r.greedy[light] = schedule == time
	if progress != nil {
		copy(r.progress, progress)
	}
}

// Snapshot returns an immutable copy of the stored state. Rollouts built
// from it never mutate it, so one snapshot can seed many replays.
func (r *Recorder) Snapshot() Snapshot {
	s := Snapshot{
		Time:            r.time,
		Locs:            append([]TruckLocation(nil), r.locs...),
		Route:           append([]int(nil), r.route...),
		RoutePoint:      append([]int(nil), r.routePoint...),
		Progress:        append([]float64(nil), r.progress...),
		LastTransition:  append([]int(nil), r.lastTransition...),
		DispatchTime:    append([]float64(nil), r.dispatchTime...),
		Lights:          append([]LightPhase(nil), r.lights...),
		LightSchedule:   append([]float64(nil), r.lightSched...),
		GreedyMode:      append([]bool(nil), r.greedy...),
		TransitionCount: r.transitionCount,
	}
	return s
}

// Snapshot is a compact, consistent capture of a mid-shift simulation
// state. Value semantics: treat all slices as read-only.
type Snapshot struct {
	Time            float64
	Locs            []TruckLocation
	Route           []int
	RoutePoint      []int
	Progress        []float64
	LastTransition  []int
	DispatchTime    []float64
	Lights          []LightPhase
	LightSchedule   []float64
	GreedyMode      []bool
	TransitionCount int
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	return Snapshot{
		Time:            s.Time,
		Locs:            append([]TruckLocation(nil), s.Locs...),
		Route:           append([]int(nil), s.Route...),
		RoutePoint:      append([]int(nil), s.RoutePoint...),
		Progress:        append([]float64(nil), s.Progress...),
		LastTransition:  append([]int(nil), s.LastTransition...),
		DispatchTime:    append([]float64(nil), s.DispatchTime...),
		Lights:          append([]LightPhase(nil), s.Lights...),
		LightSchedule:   append([]float64(nil), s.LightSchedule...),
		GreedyMode:      append([]bool(nil), s.GreedyMode...),
		TransitionCount: s.TransitionCount,
	}
}
