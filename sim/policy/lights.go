package policy

import (
	"fmt"

	"github.com/haulage-sim/haulage-sim/sim"
)

// GreedyLights leaves every light in greedy mode: a light stays green until
// a truck arrives on the red side, then drains and flips.
type GreedyLights struct{}

// GreenTime always returns 0.
func (GreedyLights) GreenTime(road int, phase sim.LightPhase, simTime float64) float64 {
	return 0
}

// Reset is a no-op.
func (GreedyLights) Reset() {}

// TimedLights runs every light on a fixed green duration, alternating
// directions regardless of demand.
type TimedLights struct {
	green float64
}

// NewTimedLights creates a timed light policy with the given green duration.
func NewTimedLights(green float64) (*TimedLights, error) {
	if green <= 0 {
		return nil, fmt.Errorf("timed lights: positive green duration required: %f", green)
	}
	return &TimedLights{green: green}, nil
}

// GreenTime schedules the fixed duration on every green phase. Yellow
// phases are never extended.
func (t *TimedLights) GreenTime(road int, phase sim.LightPhase, simTime float64) float64 {
	if phase.GreenDirection() >= 0 {
		return t.green
	}
	return 0
}

// Reset is a no-op.
func (t *TimedLights) Reset() {}

// NewLightPolicy creates a light policy by name.
// Valid names: "greedy", "timed".
// For timed, green configures the green phase duration.
func NewLightPolicy(name string, green float64) (LightPolicy, error) {
	switch name {
	case "greedy":
		return GreedyLights{}, nil
	case "timed":
		return NewTimedLights(green)
	default:
		return nil, fmt.Errorf("unknown light policy %q; valid policies: [greedy, timed]", name)
	}
}
