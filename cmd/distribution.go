package cmd

import (
	"fmt"

	sim "github.com/haulage-sim/haulage-sim/sim"
)

// newDistribution creates a duration distribution by name over the shift
// RNG stream.
func newDistribution(name string, rng *sim.PartitionedRNG) (sim.TimeDistribution, error) {
	stream := rng.ForSubsystem(sim.SubsystemShift)
	switch name {
	case "normal":
		return sim.NewNormalTimes(stream), nil
	case "uniform":
		return sim.NewUniformTimes(stream), nil
	case "deterministic":
		return sim.DeterministicTimes{}, nil
	default:
		return nil, fmt.Errorf("unknown distribution %q; valid distributions: [normal, uniform, deterministic]", name)
	}
}
