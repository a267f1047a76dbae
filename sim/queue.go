package sim

import (
	"strconv"
	"strings"
)

// WaitLine is the FIFO line of requests waiting for a resource slot.
// Requests join at the back when every slot is taken and are admitted
// strictly from the front.
type WaitLine struct {
	reqs []*Request
}

// Enqueue puts r at the back of the line.
func (wl *WaitLine) Enqueue(r *Request) { wl.reqs = append(wl.reqs, r) }

// Len returns the number of waiting requests.
func (wl *WaitLine) Len() int { return len(wl.reqs) }

// Peek returns the request at the front, or nil if nobody is waiting.
func (wl *WaitLine) Peek() *Request {
	if wl.Len() == 0 {
		return nil
	}
	return wl.reqs[0]
}

// Dequeue removes and returns the request at the front, or nil.
// The vacated slot is cleared so the backing array does not keep an
// admitted request (and its continuations) reachable.
func (wl *WaitLine) Dequeue() *Request {
	head := wl.Peek()
	if head == nil {
		return nil
	}
	wl.reqs[0] = nil
	wl.reqs = wl.reqs[1:]
	return head
}

// Remove takes r out of the line wherever it stands, keeping the order of
// the others. Returns false if r is not waiting.
func (wl *WaitLine) Remove(r *Request) bool {
	for i, q := range wl.reqs {
		if q != r {
			continue
		}
		copy(wl.reqs[i:], wl.reqs[i+1:])
		wl.reqs[len(wl.reqs)-1] = nil
		wl.reqs = wl.reqs[:len(wl.reqs)-1]
		return true
	}
	return false
}

// String renders the waiting request ids front to back, e.g. "[#2 #3]".
func (wl *WaitLine) String() string {
	ids := make([]string, len(wl.reqs))
	for i, r := range wl.reqs {
		ids[i] = "#" + strconv.FormatUint(r.id, 10)
	}
	return "[" + strings.Join(ids, " ") + "]"
}
