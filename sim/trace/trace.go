package trace

// TraceLevel controls the verbosity of decision tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelDecisions captures all dispatch and light policy decisions.
	TraceLevelDecisions TraceLevel = "decisions"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:      true,
	TraceLevelDecisions: true,
	"":                  true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// SimulationTrace collects decision records during a shift simulation.
type SimulationTrace struct {
	Level      TraceLevel
	Dispatches []DispatchRecord
	Lights     []LightRecord
	Rollouts   []RolloutRecord
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
func NewSimulationTrace(level TraceLevel) *SimulationTrace {
	return &SimulationTrace{
		Level:      level,
		Dispatches: make([]DispatchRecord, 0),
		Lights:     make([]LightRecord, 0),
		Rollouts:   make([]RolloutRecord, 0),
	}
}

// Enabled reports whether records should be collected.
func (st *SimulationTrace) Enabled() bool {
	return st != nil && st.Level == TraceLevelDecisions
}

// RecordDispatch appends a dispatch decision record.
func (st *SimulationTrace) RecordDispatch(record DispatchRecord) {
	if !st.Enabled() {
		return
	}
	st.Dispatches = append(st.Dispatches, record)
}

// RecordLight appends a light decision record.
func (st *SimulationTrace) RecordLight(record LightRecord) {
	if !st.Enabled() {
		return
	}
	st.Lights = append(st.Lights, record)
}

// RecordRollout appends a rollout estimate record.
func (st *SimulationTrace) RecordRollout(record RolloutRecord) {
	if !st.Enabled() {
		return
	}
	st.Rollouts = append(st.Rollouts, record)
}
