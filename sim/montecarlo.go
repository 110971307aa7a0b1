package sim

import (
	"math/rand"
	"sync"

	"gonum.org/v1/gonum/stat"
)

// RolloutResult summarizes one hypothetical continuation of a snapshot.
type RolloutResult struct {
	Rollout          int
	Empties          int
	CompletedCycles  int
	AverageCycleTime float64
	EndTime          float64
}

// RolloutEstimate aggregates the results of a batch of rollouts.
type RolloutEstimate struct {
	Results       []RolloutResult
	MeanEmpties   float64
	StdDevEmpties float64
}

// ControllerFactory builds the hypothetical policy for one rollout. Each
// rollout must get its own instance; rollouts run concurrently.
type ControllerFactory func(rollout int) Controller

// DistributionFactory builds the duration sampler for one rollout from its
// dedicated RNG stream.
type DistributionFactory func(rng *rand.Rand) TimeDistribution

// EstimateRollouts runs n independent rollouts of src concurrently, each to
// the given runtime, and aggregates their empties counts. Rollout i draws
// its durations from the SubsystemRollout(i) stream of key, so the whole
// estimate is reproducible for a fixed key regardless of scheduling.
func EstimateRollouts(src *ReplaySource, key SimulationKey, n int, runtime float64,
	newCon ControllerFactory, newDist DistributionFactory) RolloutEstimate {

	results := make([]RolloutResult, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			rng := NewPartitionedRNG(key).ForSubsystem(SubsystemRollout(i))
			s := src.Rollout(newCon(i), newDist(rng), runtime)
			m := s.Metrics()
			results[i] = RolloutResult{
				Rollout:          i,
				Empties:          s.Empties(),
				CompletedCycles:  len(m.CompleteCycles()),
				AverageCycleTime: m.AverageCycleTime(),
				EndTime:          s.Clock(),
			}
		}(i)
	}
	wg.Wait()

	empties := make([]float64, n)
	for i, r := range results {
		empties[i] = float64(r.Empties)
	}
	est := RolloutEstimate{Results: results}
	if n > 0 {
		est.MeanEmpties = stat.Mean(empties, nil)
	}
	if n > 1 {
		est.StdDevEmpties = stat.StdDev(empties, nil)
	}
	return est
}
