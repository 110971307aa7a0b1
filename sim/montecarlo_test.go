package sim

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateRollouts_Deterministic_ZeroSpread(t *testing.T) {
	// GIVEN a snapshot and deterministic rollouts
	layout := singleRoadLayout(t, 2, false)
	snap, before, after := liveWithRecorder(t, layout, 20, 46)
	rs := NewReplaySource(layout, snap)

	// WHEN estimating over four rollouts
	est := EstimateRollouts(rs, SimulationKey(42), 4, 46,
		func(rollout int) Controller { return newScriptController(2) },
		func(rng *rand.Rand) TimeDistribution { return DeterministicTimes{} },
	)

	// THEN every rollout agrees with the live continuation and the spread
	// is zero
	require.Len(t, est.Results, 4)
	for _, r := range est.Results {
		assert.Equal(t, after-before, r.Empties)
	}
	assert.Equal(t, float64(after-before), est.MeanEmpties)
	assert.Equal(t, 0.0, est.StdDevEmpties)
}

func TestEstimateRollouts_FixedKey_Reproducible(t *testing.T) {
	// GIVEN a snapshot and stochastic rollouts
	layout := singleRoadLayout(t, 3, true)
	snap, _, _ := liveWithRecorder(t, layout, 25, 60)
	rs := NewReplaySource(layout, snap)

	estimate := func() RolloutEstimate {
		return EstimateRollouts(rs, SimulationKey(7), 8, 400,
			func(rollout int) Controller { return newScriptController(3) },
			func(rng *rand.Rand) TimeDistribution { return NewNormalTimes(rng) },
		)
	}

	// WHEN estimating twice with the same key
	a := estimate()
	b := estimate()

	// THEN the per-rollout results match regardless of goroutine scheduling
	require.Equal(t, len(a.Results), len(b.Results))
	for i := range a.Results {
		assert.Equal(t, a.Results[i].Empties, b.Results[i].Empties, "rollout %d", i)
		assert.Equal(t, a.Results[i].EndTime, b.Results[i].EndTime, "rollout %d", i)
	}
	assert.Equal(t, a.MeanEmpties, b.MeanEmpties)
	assert.Equal(t, a.StdDevEmpties, b.StdDevEmpties)
}
