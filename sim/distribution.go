package sim

import (
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
)

// TimeDistribution supplies every stochastic duration in the kernel:
// travel, filling and emptying times. Implementations must return
// non-negative values. A negative mean, or a non-positive stdev for a
// stochastic variant, is a configuration fault and panics.
type TimeDistribution interface {
	Sample(mean, stdev float64) float64
}

// === SimulationKey ===

// SimulationKey identifies a reproducible run. Two simulations with the
// same key, layout and controller MUST produce identical event sequences
// when using the same distribution variant.
type SimulationKey int64

const (
	// SubsystemShift is the RNG subsystem for the live shift simulation.
	// Uses the master seed directly.
	SubsystemShift = "shift"
)

// SubsystemRollout returns the subsystem name for rollout n, so parallel
// rollouts draw from independent deterministic streams.
func SubsystemRollout(n int) string {
	return fmt.Sprintf("rollout_%d", n)
}

// PartitionedRNG provides deterministic, isolated RNG streams per
// subsystem. The shift subsystem uses the master seed directly; all other
// subsystems derive their seed as masterSeed XOR fnv1a64(name).
//
// Not safe for concurrent use; each simulation instance owns its streams.
type PartitionedRNG struct {
	key        SimulationKey
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a SimulationKey.
func NewPartitionedRNG(key SimulationKey) *PartitionedRNG {
	return &PartitionedRNG{
		key:        key,
		subsystems: make(map[string]*rand.Rand),
	}
}

// ForSubsystem returns the deterministically-seeded RNG for the named
// subsystem, cached per name. Never returns nil.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}
	derived := int64(p.key)
	if name != SubsystemShift {
		derived ^= fnv1a64(name)
	}
	rng := rand.New(rand.NewSource(derived))
	p.subsystems[name] = rng
	return rng
}

// Key returns the SimulationKey used to create this PartitionedRNG.
func (p *PartitionedRNG) Key() SimulationKey { return p.key }

func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}

// === Distribution variants ===

func checkStochasticArgs(mean, stdev float64) {
	if mean < 0 {
		panic(fmt.Sprintf("time distribution: non-negative mean required: %f", mean))
	}
	if stdev <= 0 {
		panic(fmt.Sprintf("time distribution: positive standard deviation required: %f", stdev))
	}
}

// NormalTimes samples truncated normal durations via the Box-Muller method,
// caching the second variate of each pair.
type NormalTimes struct {
	rng      *rand.Rand
	spare    float64
	hasSpare bool
}

// NewNormalTimes creates a normal distribution over the given RNG stream.
func NewNormalTimes(rng *rand.Rand) *NormalTimes {
	return &NormalTimes{rng: rng}
}

// Sample returns max(0, N(mean, stdev)).
func (n *NormalTimes) Sample(mean, stdev float64) float64 {
	checkStochasticArgs(mean, stdev)
	var z float64
	if n.hasSpare {
		n.hasSpare = false
		z = n.spare
	} else {
		u1 := n.rng.Float64()
		u2 := n.rng.Float64()
		r := math.Sqrt(-2 * math.Log(1-u1))
		z = r * math.Cos(2*math.Pi*u2)
		n.spare = r * math.Sin(2*math.Pi*u2)
		n.hasSpare = true
	}
	return math.Max(0, z*stdev+mean)
}

// UniformTimes samples uniform durations with the requested mean and
// standard deviation, clamped at zero.
type UniformTimes struct {
	rng *rand.Rand
}

// NewUniformTimes creates a uniform distribution over the given RNG stream.
func NewUniformTimes(rng *rand.Rand) *UniformTimes {
	return &UniformTimes{rng: rng}
}

// Sample returns max(0, U(mean - sqrt(3)*stdev, mean + sqrt(3)*stdev)).
func (u *UniformTimes) Sample(mean, stdev float64) float64 {
	checkStochasticArgs(mean, stdev)
	return math.Max(0, mean+math.Sqrt(3)*stdev*(2*u.rng.Float64()-1))
}

// DeterministicTimes always returns the mean. Used for reproducible tests
// and for estimation passes inside dispatch policies.
type DeterministicTimes struct{}

// Sample returns the mean, ignoring the standard deviation.
func (DeterministicTimes) Sample(mean, stdev float64) float64 {
	if mean < 0 {
		panic(fmt.Sprintf("time distribution: non-negative mean required: %f", mean))
	}
	return mean
}
