package sim

// Future is a one-shot completion signal that processes wait on.
// Succeeding a future schedules a zero-delay firing event; when it fires, the
// registered continuations run in registration order.
//
// A future moves through three phases: pending, triggered (success recorded,
// firing scheduled) and fired (continuations have run).
type Future struct {
	sched     *Scheduler
	triggered bool
	fired     bool
	callbacks []func()
}

// NewFuture creates a pending future bound to s.
func (s *Scheduler) NewFuture() *Future {
	return &Future{sched: s}
}

// Triggered reports whether the future has succeeded.
func (f *Future) Triggered() bool {
	return f.triggered
}

// Fired reports whether the future's continuations have already run.
func (f *Future) Fired() bool {
	return f.fired
}

// Succeed marks the future as done and schedules its continuations to run at
// the current instant. Succeeding twice is a no-op.
func (f *Future) Succeed() {
	if f.triggered {
		return
	}
	f.triggered = true
	f.sched.Schedule(0, f.fire)
}

// Then registers fn to run once the future fires. If the future has already
// fired, fn is scheduled at the current instant instead.
func (f *Future) Then(fn func()) {
	if f.fired {
		f.sched.Schedule(0, fn)
		return
	}
	f.callbacks = append(f.callbacks, fn)
}

func (f *Future) fire() {
	if f.fired {
		return
	}
	f.fired = true
	callbacks := f.callbacks
	f.callbacks = nil
	for _, fn := range callbacks {
		fn()
	}
}

// AllOf returns a future that succeeds once every one of futures has fired.
// With no futures it succeeds immediately.
func AllOf(s *Scheduler, futures ...*Future) *Future {
	all := s.NewFuture()
	remaining := len(futures)
	if remaining == 0 {
		all.Succeed()
		return all
	}
	for _, f := range futures {
		f.Then(func() {
			remaining--
			if remaining == 0 {
				all.Succeed()
			}
		})
	}
	return all
}
