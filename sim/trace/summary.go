package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalDispatches   int
	ParkedCount       int
	HaltCount         int
	LightDecisions    int
	GreedyDecisions   int
	UniqueRoutes      int
	RouteDistribution map[int]int // route index → dispatch count
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		RouteDistribution: make(map[int]int),
	}
	if st == nil {
		return summary
	}

	summary.TotalDispatches = len(st.Dispatches)
	for _, d := range st.Dispatches {
		switch {
		case d.Route == -2:
			summary.ParkedCount++
		case d.Route < 0:
			summary.HaltCount++
		default:
			summary.RouteDistribution[d.Route]++
		}
	}

	summary.LightDecisions = len(st.Lights)
	for _, l := range st.Lights {
		if l.Duration == 0 {
			summary.GreedyDecisions++
		}
	}

	summary.UniqueRoutes = len(summary.RouteDistribution)

	return summary
}
