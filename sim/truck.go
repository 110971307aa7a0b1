package sim

import "fmt"

// TruckLocation is the state of a truck in its haul-cycle state machine.
// A truck is always in exactly one location while transitioning to another
// (possibly identical) location.
type TruckLocation int

const (
	// Waiting means the truck is at a crusher location awaiting dispatch.
	Waiting TruckLocation = iota
	// TravelToShovel means the truck is traversing a road segment towards a shovel.
	TravelToShovel
	// ApproachingTLCS means the truck is arriving at a traffic light on the
	// crusher-to-shovel leg.
	ApproachingTLCS
	// StoppedAtTLCS means the truck is held at a red light on the
	// crusher-to-shovel leg.
	StoppedAtTLCS
	// ApproachingShovel means the truck has finished its last segment and is
	// arriving at its assigned shovel.
	ApproachingShovel
	// WaitingAtShovel means the truck is queued behind another truck at a shovel.
	WaitingAtShovel
	// Filling means the truck is being loaded by a shovel.
	Filling
	// LeavingShovel means the truck has been loaded and awaits a return route.
	LeavingShovel
	// TravelToCrusher means the loaded truck is traversing a road segment
	// towards a crusher location.
	TravelToCrusher
	// ApproachingTLSS means the truck is arriving at a traffic light on the
	// shovel-to-crusher leg.
	ApproachingTLSS
	// StoppedAtTLSS means the truck is held at a red light on the
	// shovel-to-crusher leg.
	StoppedAtTLSS
	// ApproachingCrusher means the truck is arriving at its assigned crusher location.
	ApproachingCrusher
	// WaitingAtCrusher means the truck is queued at a crusher location.
	WaitingAtCrusher
	// Emptying means the truck is unloading into a crusher.
	Emptying
	// Unused means the truck has been parked by the dispatch policy for the
	// rest of the run.
	Unused

	numTruckLocations
)

var truckLocationNames = [...]string{
	"WAITING",
	"TRAVEL_TO_SHOVEL",
	"APPROACHING_TL_CS",
	"STOPPED_AT_TL_CS",
	"APPROACHING_SHOVEL",
	"WAITING_AT_SHOVEL",
	"FILLING",
	"LEAVING_SHOVEL",
	"TRAVEL_TO_CRUSHER",
	"APPROACHING_TL_SS",
	"STOPPED_AT_TL_SS",
	"APPROACHING_CRUSHER",
	"WAITING_AT_CRUSHER",
	"EMPTYING",
	"UNUSED",
}

func (l TruckLocation) String() string {
	if l < 0 || int(l) >= len(truckLocationNames) {
		return fmt.Sprintf("TruckLocation(%d)", int(l))
	}
	return truckLocationNames[l]
}
