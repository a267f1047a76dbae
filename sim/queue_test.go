package sim

import "testing"

func TestWaitLine_Peek_NonEmpty_ReturnsFront(t *testing.T) {
	// GIVEN a line with requests [A, B]
	wl := &WaitLine{}
	reqA := &Request{id: 1}
	reqB := &Request{id: 2}
	wl.Enqueue(reqA)
	wl.Enqueue(reqB)

	// WHEN Peek() is called
	got := wl.Peek()

	// THEN it returns the front element without removing it
	if got != reqA {
		t.Errorf("Peek: got request #%d, want #%d", got.id, reqA.id)
	}
	if wl.Len() != 2 {
		t.Errorf("Peek modified line length: got %d, want 2", wl.Len())
	}
}

func TestWaitLine_Peek_Empty_ReturnsNil(t *testing.T) {
	// GIVEN an empty line
	wl := &WaitLine{}

	// WHEN Peek() and Dequeue() are called
	// THEN both return nil
	if got := wl.Peek(); got != nil {
		t.Errorf("Peek on empty line: got %v, want nil", got)
	}
	if got := wl.Dequeue(); got != nil {
		t.Errorf("Dequeue on empty line: got %v, want nil", got)
	}
}

func TestWaitLine_Dequeue_FIFO(t *testing.T) {
	// GIVEN a line with requests [1, 2, 3]
	wl := &WaitLine{}
	for id := uint64(1); id <= 3; id++ {
		wl.Enqueue(&Request{id: id})
	}

	// WHEN drained
	var order []uint64
	for wl.Len() > 0 {
		order = append(order, wl.Dequeue().id)
	}

	// THEN requests leave in arrival order
	want := []uint64{1, 2, 3}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("Dequeue order: got %v, want %v", order, want)
		}
	}
}

func TestWaitLine_Remove_MiddleKeepsOrder(t *testing.T) {
	// GIVEN a line with requests [A, B, C]
	wl := &WaitLine{}
	reqA := &Request{id: 1}
	reqB := &Request{id: 2}
	reqC := &Request{id: 3}
	wl.Enqueue(reqA)
	wl.Enqueue(reqB)
	wl.Enqueue(reqC)

	// WHEN B is removed
	if !wl.Remove(reqB) {
		t.Fatal("Remove(B) returned false")
	}

	// THEN the line is [A, C] and B cannot be removed again
	if wl.String() != "[#1 #3]" {
		t.Errorf("after Remove: got %s, want [#1 #3]", wl.String())
	}
	if wl.Remove(reqB) {
		t.Error("second Remove(B) returned true")
	}
}

func TestWaitLine_VacatedSlotsAreCleared(t *testing.T) {
	// GIVEN a line of three requests and a view of its backing array
	wl := &WaitLine{}
	for id := uint64(1); id <= 3; id++ {
		wl.Enqueue(&Request{id: id})
	}
	backing := wl.reqs[:3]

	// WHEN the front is dequeued and the new last request removed
	wl.Dequeue()
	wl.Remove(backing[2])

	// THEN neither vacated slot still references a request
	if backing[0] != nil {
		t.Errorf("dequeued slot still holds request #%d", backing[0].id)
	}
	if backing[2] != nil {
		t.Errorf("removed slot still holds request #%d", backing[2].id)
	}
	if wl.String() != "[#2]" {
		t.Errorf("line: got %s, want [#2]", wl.String())
	}
}
