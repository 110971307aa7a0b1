package sim

import "fmt"

// LightPhase is the joint state of the two lights guarding a one-lane road.
// The first letter is the light facing direction 0 (the crusher-to-shovel
// side), the second faces direction 1.
type LightPhase int

const (
	// GreenRed holds direction 0 green, direction 1 red.
	GreenRed LightPhase = iota
	// YellowRed is the transition out of GreenRed while the road drains.
	YellowRed
	// RedGreen holds direction 1 green, direction 0 red.
	RedGreen
	// RedYellow is the transition out of RedGreen while the road drains.
	RedYellow
	// RedRed is not produced by the phase dynamics. Trucks arriving under it
	// stop and queue, the same as under a yellow.
	RedRed
)

var lightPhaseNames = [...]string{"GR", "YR", "RG", "RY", "RR"}

func (p LightPhase) String() string {
	if p < 0 || int(p) >= len(lightPhaseNames) {
		return fmt.Sprintf("LightPhase(%d)", int(p))
	}
	return lightPhaseNames[p]
}

// GreenDirection returns the direction currently held green, or -1 if the
// phase has no steady green.
func (p LightPhase) GreenDirection() int {
	switch p {
	case GreenRed:
		return 0
	case RedGreen:
		return 1
	default:
		return -1
	}
}
