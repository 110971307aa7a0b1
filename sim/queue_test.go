package sim

import (
	"testing"
)

func TestTruckQueue_Peek_NonEmpty_ReturnsFront(t *testing.T) {
	// GIVEN a queue with trucks [3, 7]
	tq := &TruckQueue{}
	tq.Enqueue(3)
	tq.Enqueue(7)

	// WHEN Peek() is called
	got := tq.Peek()

	// THEN it returns the front element without removing it
	if got != 3 {
		t.Errorf("Peek: got truck %d, want 3", got)
	}
	if tq.Len() != 2 {
		t.Errorf("Peek modified queue length: got %d, want 2", tq.Len())
	}
}

func TestTruckQueue_Peek_Empty_ReturnsNegative(t *testing.T) {
	// GIVEN an empty queue
	tq := &TruckQueue{}

	// WHEN Peek() is called
	got := tq.Peek()

	// THEN it returns -1
	if got != -1 {
		t.Errorf("Peek on empty queue: got %d, want -1", got)
	}
}

func TestTruckQueue_AddFront_InsertsAtFront(t *testing.T) {
	// GIVEN a queue with trucks [1, 2, 3]
	tq := &TruckQueue{}
	tq.Enqueue(1)
	tq.Enqueue(2)
	tq.Enqueue(3)

	// WHEN AddFront(9) is called
	tq.AddFront(9)

	// THEN dequeuing yields [9, 1, 2, 3]
	want := []int{9, 1, 2, 3}
	for i, w := range want {
		if got := tq.Dequeue(); got != w {
			t.Errorf("AddFront order[%d]: got %d, want %d", i, got, w)
		}
	}
}

func TestTruckQueue_Dequeue_Empty_Panics(t *testing.T) {
	// GIVEN an empty queue
	tq := &TruckQueue{}

	// WHEN Dequeue() is called THEN it panics
	defer func() {
		if recover() == nil {
			t.Error("Dequeue on empty queue did not panic")
		}
	}()
	tq.Dequeue()
}

func TestTruckQueue_CopyFrom_Independent(t *testing.T) {
	// GIVEN a queue with trucks [4, 5]
	src := &TruckQueue{}
	src.Enqueue(4)
	src.Enqueue(5)

	// WHEN another queue copies it and both are mutated
	var dst TruckQueue
	dst.CopyFrom(src)
	dst.Enqueue(6)
	src.Dequeue()

	// THEN the copies do not alias
	if src.Len() != 1 || src.Peek() != 5 {
		t.Errorf("source after mutation: len %d front %d, want 1 and 5", src.Len(), src.Peek())
	}
	want := []int{4, 5, 6}
	for i, w := range want {
		if got := dst.Dequeue(); got != w {
			t.Errorf("copy order[%d]: got %d, want %d", i, got, w)
		}
	}
}

func TestTruckQueue_At_PreservesOrder(t *testing.T) {
	// GIVEN a queue with trucks [2, 0, 1]
	tq := &TruckQueue{}
	tq.Enqueue(2)
	tq.Enqueue(0)
	tq.Enqueue(1)

	// WHEN reading positions with At
	// THEN the FIFO order is visible without mutation
	want := []int{2, 0, 1}
	for i, w := range want {
		if got := tq.At(i); got != w {
			t.Errorf("At(%d): got %d, want %d", i, got, w)
		}
	}
	if tq.Len() != 3 {
		t.Errorf("At modified queue length: got %d, want 3", tq.Len())
	}
}
