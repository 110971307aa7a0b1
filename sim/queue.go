// Implements the TruckQueue, the FIFO used for every waiting line in the
// mine: crusher and shovel service queues, traffic-light stop queues, and
// the per-direction order of trucks on a road.

package sim

import (
	"fmt"
	"strings"
)

// TruckQueue is a FIFO of truck ids.
type TruckQueue struct {
	queue []int
}

// Enqueue adds a truck to the back of the queue.
func (tq *TruckQueue) Enqueue(tid int) {
	tq.queue = append(tq.queue, tid)
}

// AddFront inserts a truck at the front of the queue.
// Used during replay reconstruction: a truck observed in an APPROACHING
// state is still the head of the road it just finished traversing.
func (tq *TruckQueue) AddFront(tid int) {
	tq.queue = append([]int{tid}, tq.queue...)
}

// Dequeue removes and returns the front truck. Panics if empty; callers
// guard with Len, an empty pop is a kernel bug.
func (tq *TruckQueue) Dequeue() int {
	if len(tq.queue) == 0 {
		panic("Dequeue: empty truck queue")
	}
	head := tq.queue[0]
	tq.queue = tq.queue[1:]
	return head
}

// Peek returns the front truck without removing it, or -1 if empty.
func (tq *TruckQueue) Peek() int {
	if len(tq.queue) == 0 {
		return -1
	}
	return tq.queue[0]
}

// Len returns the number of queued trucks.
func (tq *TruckQueue) Len() int {
	return len(tq.queue)
}

// Empty reports whether no trucks are queued.
func (tq *TruckQueue) Empty() bool {
	return len(tq.queue) == 0
}

// At returns the truck at position i from the front.
func (tq *TruckQueue) At(i int) int {
	return tq.queue[i]
}

// Clear removes all trucks.
func (tq *TruckQueue) Clear() {
	tq.queue = tq.queue[:0]
}

// CopyFrom replaces the contents with those of another queue.
func (tq *TruckQueue) CopyFrom(other *TruckQueue) {
	tq.queue = append(tq.queue[:0], other.queue...)
}

func (tq *TruckQueue) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, tid := range tq.queue {
		sb.WriteString(fmt.Sprint(tid))
		if i < len(tq.queue)-1 {
			sb.WriteString(" ")
		}
	}
	sb.WriteString("]")
	return sb.String()
}
