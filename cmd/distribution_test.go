package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sim "github.com/haulage-sim/haulage-sim/sim"
)

func TestNewDistribution_ByName(t *testing.T) {
	rng := sim.NewPartitionedRNG(sim.SimulationKey(42))

	d, err := newDistribution("normal", rng)
	require.NoError(t, err)
	assert.IsType(t, &sim.NormalTimes{}, d)

	d, err = newDistribution("uniform", rng)
	require.NoError(t, err)
	assert.IsType(t, &sim.UniformTimes{}, d)

	d, err = newDistribution("deterministic", rng)
	require.NoError(t, err)
	assert.IsType(t, sim.DeterministicTimes{}, d)

	_, err = newDistribution("exponential", rng)
	assert.Error(t, err)
}
