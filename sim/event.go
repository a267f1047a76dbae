package sim

import "container/heap"

// Event is a continuation registered to run at a simulated instant.
// Events are ordered by time; ties are broken by seq, the order in which
// they were scheduled.
type Event struct {
	time float64
	seq  uint64
	fn   func()
}

// eventHeap implements heap.Interface with deterministic ordering.
// Order by: timestamp → insertion sequence.
type eventHeap []*Event

func (h eventHeap) Len() int { return len(h) }

func (h eventHeap) Less(i, j int) bool {
	if h[i].time != h[j].time {
		return h[i].time < h[j].time
	}
	return h[i].seq < h[j].seq
}

func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *eventHeap) Push(x any) {
	*h = append(*h, x.(*Event))
}

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[0 : n-1]
	return item
}

// peek returns the next event without removing it, or nil when empty.
func (h eventHeap) peek() *Event {
	if len(h) == 0 {
		return nil
	}
	return h[0]
}

func (h *eventHeap) push(e *Event) {
	heap.Push(h, e)
}

func (h *eventHeap) popNext() *Event {
	if h.Len() == 0 {
		return nil
	}
	return heap.Pop(h).(*Event)
}
