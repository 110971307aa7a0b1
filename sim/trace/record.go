// Package trace provides decision-trace recording for haulage policy
// analysis. It stores plain data types and does not import the kernel.
package trace

// DispatchRecord captures a single route assignment decision.
type DispatchRecord struct {
	Truck    int
	Clock    float64
	Route    int     // chosen route index, or a negative sentinel
	ToShovel bool    // true for an outbound (crusher to shovel) dispatch
	Reason   string
}

// LightRecord captures a single traffic light decision.
type LightRecord struct {
	Road     int
	Clock    float64
	Phase    string
	Duration float64 // returned green duration; 0 marks greedy mode
}

// RolloutRecord captures one evaluated continuation of a snapshot.
type RolloutRecord struct {
	SnapshotTime  float64
	Rollouts      int
	MeanEmpties   float64
	StdDevEmpties float64
	Chosen        int // route or action index the estimate selected
}
