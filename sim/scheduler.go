package sim

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
)

// Forever is the horizon to pass to Run when the run should only stop once
// no events remain.
var Forever = math.Inf(1)

// Scheduler owns the simulated clock and the set of pending events.
// It advances time to the next event and resumes exactly that event's continuation.
//
// Thread-safety: NOT thread-safe. All continuations run on the goroutine calling Run or Step.
type Scheduler struct {
	now    float64
	events eventHeap
	seq    Sequence
}

// NewScheduler creates a scheduler with the clock at zero and no pending events.
func NewScheduler() *Scheduler {
	return &Scheduler{
		events: make(eventHeap, 0),
	}
}

// Now returns the current simulated time.
func (s *Scheduler) Now() float64 {
	return s.now
}

// Pending returns the number of events that have not run yet.
func (s *Scheduler) Pending() int {
	return s.events.Len()
}

// Schedule registers fn to run after delay simulated time units.
// A zero delay runs fn at the current instant, after every event already
// scheduled for that instant. Negative or NaN delays would place an event in
// the past and panic.
func (s *Scheduler) Schedule(delay float64, fn func()) {
	if math.IsNaN(delay) || delay < 0 {
		panic(fmt.Sprintf("sim: cannot schedule event with delay %v at t=%v", delay, s.now))
	}
	if fn == nil {
		panic("sim: Schedule: fn must not be nil")
	}
	s.events.push(&Event{
		time: s.now + delay,
		seq:  s.seq.Next(),
		fn:   fn,
	})
}

// Timeout returns a Future that succeeds after delay simulated time units.
func (s *Scheduler) Timeout(delay float64) *Future {
	f := s.NewFuture()
	s.Schedule(delay, func() {
		f.triggered = true
		f.fire()
	})
	return f
}

// Step pops the earliest event, advances the clock to it and runs it.
// Returns false if no event was pending.
func (s *Scheduler) Step() bool {
	ev := s.events.popNext()
	if ev == nil {
		return false
	}
	s.advance(ev)
	return true
}

// Run executes events in order until none remain or the next event lies
// beyond until. Events past the horizon are discarded with the run; the clock
// is left at the horizon in that case. Returns the number of events executed.
func (s *Scheduler) Run(until float64) int {
	executed := 0
	for {
		next := s.events.peek()
		if next == nil {
			break
		}
		if next.time > until {
			s.now = until
			logrus.Debugf("[t=%.4f] horizon reached, %d events discarded", s.now, s.events.Len())
			break
		}
		s.advance(s.events.popNext())
		executed++
	}
	logrus.Debugf("[t=%.4f] simulation ended after %d events", s.now, executed)
	return executed
}

func (s *Scheduler) advance(ev *Event) {
	if ev.time < s.now {
		panic(fmt.Sprintf("sim: clock went backwards: %v < %v", ev.time, s.now))
	}
	s.now = ev.time
	logrus.Tracef("[t=%.4f] executing event #%d", s.now, ev.seq)
	ev.fn()
}
