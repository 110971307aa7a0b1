package trace

import (
	"testing"
)

func TestIsValidTraceLevel(t *testing.T) {
	cases := []struct {
		level string
		want  bool
	}{
		{"none", true},
		{"decisions", true},
		{"", true},
		{"verbose", false},
		{"DECISIONS", false},
	}
	for _, tc := range cases {
		if got := IsValidTraceLevel(tc.level); got != tc.want {
			t.Errorf("IsValidTraceLevel(%q): got %v, want %v", tc.level, got, tc.want)
		}
	}
}

func TestSimulationTrace_Disabled_DropsRecords(t *testing.T) {
	// GIVEN a trace at level none
	st := NewSimulationTrace(TraceLevelNone)

	// WHEN recording
	st.RecordDispatch(DispatchRecord{Truck: 0, Clock: 1, Route: 0})
	st.RecordLight(LightRecord{Road: 0, Clock: 1, Phase: "YR"})
	st.RecordRollout(RolloutRecord{Rollouts: 8})

	// THEN nothing is kept
	if len(st.Dispatches) != 0 || len(st.Lights) != 0 || len(st.Rollouts) != 0 {
		t.Errorf("disabled trace kept records: %d dispatches, %d lights, %d rollouts",
			len(st.Dispatches), len(st.Lights), len(st.Rollouts))
	}
}

func TestSimulationTrace_Decisions_KeepsOrder(t *testing.T) {
	// GIVEN a trace at decisions level
	st := NewSimulationTrace(TraceLevelDecisions)

	// WHEN recording two dispatches
	st.RecordDispatch(DispatchRecord{Truck: 1, Clock: 0, Route: 0, ToShovel: true})
	st.RecordDispatch(DispatchRecord{Truck: 1, Clock: 18, Route: 0})

	// THEN both are kept in order
	if len(st.Dispatches) != 2 {
		t.Fatalf("got %d dispatch records, want 2", len(st.Dispatches))
	}
	if st.Dispatches[0].Clock != 0 || st.Dispatches[1].Clock != 18 {
		t.Errorf("records out of order: %v", st.Dispatches)
	}
}

func TestSimulationTrace_NilSafeEnabled(t *testing.T) {
	var st *SimulationTrace
	if st.Enabled() {
		t.Error("nil trace reported enabled")
	}
	// Recording on a nil trace must not panic
	st.RecordDispatch(DispatchRecord{})
	st.RecordLight(LightRecord{})
	st.RecordRollout(RolloutRecord{})
}
