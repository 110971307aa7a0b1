package sim

import "container/heap"

// Transition is a scheduled change of one truck's location. Instant
// transitions carry the current simulation time; timed transitions carry a
// future time drawn from the time distribution.
type Transition struct {
	Truck    int
	Time     float64
	Source   TruckLocation
	Target   TruckLocation
	Priority int

	seq uint64 // insertion order, stabilizes equal (time, priority) pairs
}

// transitionHeap implements heap.Interface ordered by (time, priority, seq).
// See the canonical example at https://pkg.go.dev/container/heap
type transitionHeap []Transition

func (h transitionHeap) Len() int { return len(h) }

func (h transitionHeap) Less(i, j int) bool {
	if h[i].Time != h[j].Time {
		return h[i].Time < h[j].Time
	}
	if h[i].Priority != h[j].Priority {
		return h[i].Priority < h[j].Priority
	}
	return h[i].seq < h[j].seq
}

func (h transitionHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *transitionHeap) Push(x any) {
	*h = append(*h, x.(Transition))
}

func (h *transitionHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// transitionQueue wraps a transitionHeap with typed push/pop/peek.
type transitionQueue struct {
	h   transitionHeap
	seq uint64
}

func (q *transitionQueue) push(t Transition) {
	t.seq = q.seq
	q.seq++
	heap.Push(&q.h, t)
}

func (q *transitionQueue) pop() Transition {
	return heap.Pop(&q.h).(Transition)
}

func (q *transitionQueue) peek() (Transition, bool) {
	if len(q.h) == 0 {
		return Transition{}, false
	}
	return q.h[0], true
}

func (q *transitionQueue) empty() bool { return len(q.h) == 0 }

func (q *transitionQueue) clear() {
	q.h = q.h[:0]
	q.seq = 0
}

// lightChange is a pending phase change for the light on a one-lane road.
type lightChange struct {
	road int
	time float64
	seq  uint64
}

type lightChangeHeap []lightChange

func (h lightChangeHeap) Len() int { return len(h) }

func (h lightChangeHeap) Less(i, j int) bool {
	if h[i].time != h[j].time {
		return h[i].time < h[j].time
	}
	return h[i].seq < h[j].seq
}

func (h lightChangeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *lightChangeHeap) Push(x any) {
	*h = append(*h, x.(lightChange))
}

func (h *lightChangeHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

type lightSchedule struct {
	h   lightChangeHeap
	seq uint64
}

func (s *lightSchedule) push(road int, time float64) {
	heap.Push(&s.h, lightChange{road: road, time: time, seq: s.seq})
	s.seq++
}

func (s *lightSchedule) pop() lightChange {
	return heap.Pop(&s.h).(lightChange)
}

func (s *lightSchedule) peek() (lightChange, bool) {
	if len(s.h) == 0 {
		return lightChange{}, false
	}
	return s.h[0], true
}

func (s *lightSchedule) empty() bool { return len(s.h) == 0 }

func (s *lightSchedule) clear() {
	s.h = s.h[:0]
	s.seq = 0
}
