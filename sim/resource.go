package sim

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

var (
	// ErrInvalidCapacity is returned when a resource is created with fewer than one slot.
	ErrInvalidCapacity = errors.New("resource capacity must be at least 1")
	// ErrNotHeld is returned when releasing a request the resource does not know about.
	ErrNotHeld = errors.New("request is neither holding nor waiting for the resource")
)

// Request is a pending or granted admission to a Resource.
// It is a Future that succeeds when the request is admitted to a slot.
type Request struct {
	*Future
	id          uint64
	res         *Resource
	requestedAt float64
	admittedAt  float64
	admitted    bool
}

// ID returns the request's sequence number within its resource.
func (r *Request) ID() uint64 {
	return r.id
}

// Admitted reports whether the request holds a slot (or held one before release).
func (r *Request) Admitted() bool {
	return r.admitted
}

// RequestedAt returns the simulated time the request was made.
func (r *Request) RequestedAt() float64 {
	return r.requestedAt
}

// AdmittedAt returns the simulated time the request was granted a slot.
// Only meaningful when Admitted is true.
func (r *Request) AdmittedAt() float64 {
	return r.admittedAt
}

type queueWatch struct {
	limit  int
	future *Future
}

// Resource is a capacity-limited server with a FIFO wait line.
// At most Capacity requests hold a slot at any time; waiting requests are
// admitted strictly in the order they were made.
type Resource struct {
	name     string
	sched    *Scheduler
	capacity int
	users    []*Request
	line     WaitLine
	watchers []queueWatch
	ids      Sequence

	// observability
	admissions   int
	peakQueueLen int
	busyIntegral float64 // slot-time units spent in use
	lastChange   float64
}

// NewResource creates a resource with the given number of slots.
func NewResource(s *Scheduler, name string, capacity int) (*Resource, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("resource %q: capacity %d: %w", name, capacity, ErrInvalidCapacity)
	}
	return &Resource{
		name:       name,
		sched:      s,
		capacity:   capacity,
		users:      make([]*Request, 0, capacity),
		lastChange: s.Now(),
	}, nil
}

// Name returns the resource's name.
func (r *Resource) Name() string { return r.name }

// Capacity returns the number of slots.
func (r *Resource) Capacity() int { return r.capacity }

// InUse returns the number of slots currently held.
func (r *Resource) InUse() int { return len(r.users) }

// QueueLen returns the number of requests waiting for a slot.
func (r *Resource) QueueLen() int { return r.line.Len() }

// Head returns the request at the front of the wait line, or nil when nobody waits.
// Observing the head does not consume a slot.
func (r *Resource) Head() *Request { return r.line.Peek() }

// Request asks for a slot. The returned request succeeds immediately when a
// slot is free and nobody is waiting; otherwise it joins the back of the wait line.
func (r *Resource) Request() *Request {
	req := &Request{
		Future:      r.sched.NewFuture(),
		id:          r.ids.Next(),
		res:         r,
		requestedAt: r.sched.Now(),
	}
	if len(r.users) < r.capacity && r.line.Len() == 0 {
		r.admit(req)
		return req
	}
	r.line.Enqueue(req)
	if n := r.line.Len(); n > r.peakQueueLen {
		r.peakQueueLen = n
	}
	logrus.Tracef("[t=%.4f] %s: request #%d queued, line %s", r.sched.Now(), r.name, req.id, r.line.String())
	return req
}

// Release gives up the slot held by req, or withdraws req from the wait line
// if it has not been admitted yet. Freed slots go to the head of the line.
func (r *Resource) Release(req *Request) error {
	if req == nil || req.res != r {
		return fmt.Errorf("resource %q: %w", r.name, ErrNotHeld)
	}
	switch {
	case r.removeUser(req):
	case r.line.Remove(req):
	default:
		return fmt.Errorf("resource %q: request #%d: %w", r.name, req.id, ErrNotHeld)
	}
	shrunk := false
	for len(r.users) < r.capacity && r.line.Len() > 0 {
		r.admit(r.line.Dequeue())
		shrunk = true
	}
	if shrunk || !req.admitted {
		r.notifyWatchers()
	}
	return nil
}

// WaitQueueBelow returns a future that succeeds as soon as the wait line holds
// fewer than limit requests. It succeeds immediately if that is already true.
// Watchers are notified in the order they registered.
func (r *Resource) WaitQueueBelow(limit int) *Future {
	f := r.sched.NewFuture()
	if r.line.Len() < limit {
		f.Succeed()
		return f
	}
	r.watchers = append(r.watchers, queueWatch{limit: limit, future: f})
	return f
}

// Admissions returns how many requests have been granted a slot.
func (r *Resource) Admissions() int { return r.admissions }

// PeakQueueLen returns the longest wait line observed.
func (r *Resource) PeakQueueLen() int { return r.peakQueueLen }

// Utilization returns the fraction of slot-time spent in use between time
// zero and now. Returns 0 at time zero.
func (r *Resource) Utilization(now float64) float64 {
	if now <= 0 {
		return 0
	}
	busy := r.busyIntegral + float64(len(r.users))*(now-r.lastChange)
	return busy / (float64(r.capacity) * now)
}

func (r *Resource) admit(req *Request) {
	r.accumulate()
	r.users = append(r.users, req)
	r.admissions++
	req.admitted = true
	req.admittedAt = r.sched.Now()
	req.Succeed()
}

func (r *Resource) removeUser(req *Request) bool {
	for i, u := range r.users {
		if u == req {
			r.accumulate()
			r.users = append(r.users[:i], r.users[i+1:]...)
			return true
		}
	}
	return false
}

func (r *Resource) accumulate() {
	now := r.sched.Now()
	r.busyIntegral += float64(len(r.users)) * (now - r.lastChange)
	r.lastChange = now
}

func (r *Resource) notifyWatchers() {
	if len(r.watchers) == 0 {
		return
	}
	remaining := r.watchers[:0]
	for _, w := range r.watchers {
		if r.line.Len() < w.limit {
			w.future.Succeed()
			continue
		}
		remaining = append(remaining, w)
	}
	for i := len(remaining); i < len(r.watchers); i++ {
		r.watchers[i] = queueWatch{}
	}
	r.watchers = remaining
}
