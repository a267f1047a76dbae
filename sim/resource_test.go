package sim

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestResource(t *testing.T, s *Scheduler, capacity int) *Resource {
	t.Helper()
	r, err := NewResource(s, "station", capacity)
	require.NoError(t, err)
	return r
}

func TestNewResource_InvalidCapacity(t *testing.T) {
	s := NewScheduler()
	for _, c := range []int{0, -1} {
		_, err := NewResource(s, "bad", c)
		if !errors.Is(err, ErrInvalidCapacity) {
			t.Errorf("capacity %d: err = %v, want ErrInvalidCapacity", c, err)
		}
	}
}

func TestResource_ImmediateAdmissionWhenFree(t *testing.T) {
	s := NewScheduler()
	r := newTestResource(t, s, 2)

	a := r.Request()
	b := r.Request()
	c := r.Request()

	assert.True(t, a.Admitted())
	assert.True(t, b.Admitted())
	assert.False(t, c.Admitted())
	assert.Equal(t, 2, r.InUse())
	assert.Equal(t, 1, r.QueueLen())
	assert.Same(t, c, r.Head())
}

func TestResource_ReleaseAdmitsHeadOfLine(t *testing.T) {
	s := NewScheduler()
	r := newTestResource(t, s, 1)
	holder := r.Request()
	first := r.Request()
	second := r.Request()

	require.NoError(t, r.Release(holder))

	assert.True(t, first.Admitted())
	assert.False(t, second.Admitted())
	assert.Equal(t, 1, r.QueueLen())
}

func TestResource_AdmissionTimestamps(t *testing.T) {
	// GIVEN a single-slot resource held from t=0 and a request made at t=1
	s := NewScheduler()
	r := newTestResource(t, s, 1)
	holder := r.Request()
	var waiter *Request
	s.Schedule(1, func() { waiter = r.Request() })
	s.Schedule(4, func() { require.NoError(t, r.Release(holder)) })

	// WHEN the holder releases at t=4
	s.Run(Forever)

	// THEN the waiter records when it asked and when it got the slot
	assert.Equal(t, 0.0, holder.RequestedAt())
	assert.Equal(t, 0.0, holder.AdmittedAt())
	require.NotNil(t, waiter)
	assert.Equal(t, 1.0, waiter.RequestedAt())
	assert.Equal(t, 4.0, waiter.AdmittedAt())
	assert.True(t, waiter.Admitted())
}

func TestResource_ReleaseUnknownRequest(t *testing.T) {
	s := NewScheduler()
	r := newTestResource(t, s, 1)
	other := newTestResource(t, s, 1)
	req := other.Request()

	assert.ErrorIs(t, r.Release(req), ErrNotHeld)
	assert.ErrorIs(t, r.Release(nil), ErrNotHeld)

	own := r.Request()
	require.NoError(t, r.Release(own))
	assert.ErrorIs(t, r.Release(own), ErrNotHeld, "double release")
}

func TestResource_WithdrawWaitingRequest(t *testing.T) {
	s := NewScheduler()
	r := newTestResource(t, s, 1)
	holder := r.Request()
	waiting := r.Request()
	next := r.Request()

	require.NoError(t, r.Release(waiting))
	assert.Equal(t, 1, r.QueueLen())
	assert.Same(t, next, r.Head())

	require.NoError(t, r.Release(holder))
	assert.True(t, next.Admitted())
	assert.False(t, waiting.Admitted())
}

// TestResource_CapacityAndFIFOUnderLoad drives many processes through a
// resource with random holding times and checks that in-use never exceeds
// capacity and that admission order equals request order.
func TestResource_CapacityAndFIFOUnderLoad(t *testing.T) {
	for _, capacity := range []int{1, 2, 5} {
		s := NewScheduler()
		r := newTestResource(t, s, capacity)
		rng := rand.New(rand.NewSource(7))

		var requested, admitted []int
		for i := 0; i < 200; i++ {
			id := i
			arrival := rng.Float64() * 20
			hold := rng.Float64() * 2
			s.Schedule(arrival, func() {
				requested = append(requested, id)
				req := r.Request()
				req.Then(func() {
					admitted = append(admitted, id)
					s.Schedule(hold, func() {
						require.NoError(t, r.Release(req))
					})
				})
			})
		}

		for s.Step() {
			if r.InUse() > capacity {
				t.Fatalf("capacity %d: in-use %d exceeds capacity at t=%v", capacity, r.InUse(), s.Now())
			}
		}

		assert.Equal(t, requested, admitted, "capacity %d: admission order must equal request order", capacity)
		assert.Equal(t, 200, r.Admissions())
		assert.Equal(t, 0, r.InUse())
	}
}

func TestResource_WaitQueueBelow(t *testing.T) {
	// GIVEN a busy resource with three waiting requests
	s := NewScheduler()
	r := newTestResource(t, s, 1)
	holder := r.Request()
	w1 := r.Request()
	r.Request()
	r.Request()

	// WHEN a watcher waits for the line to drop below 3
	below := r.WaitQueueBelow(3)
	immediate := r.WaitQueueBelow(4)
	s.Run(Forever)

	// THEN it is pending until one waiter is admitted
	assert.False(t, below.Triggered())
	assert.True(t, immediate.Fired())

	require.NoError(t, r.Release(holder))
	assert.True(t, w1.Admitted())
	assert.True(t, below.Triggered())
	assert.Equal(t, 2, r.QueueLen())
}

func TestResource_WaitQueueBelowNotifiesInOrder(t *testing.T) {
	s := NewScheduler()
	r := newTestResource(t, s, 1)
	holder := r.Request()
	r.Request()

	var order []string
	r.WaitQueueBelow(1).Then(func() { order = append(order, "first") })
	r.WaitQueueBelow(1).Then(func() { order = append(order, "second") })

	require.NoError(t, r.Release(holder))
	s.Run(Forever)

	assert.Equal(t, []string{"first", "second"}, order)
}

func TestResource_StatsTracking(t *testing.T) {
	s := NewScheduler()
	r := newTestResource(t, s, 2)

	// one slot busy during [0, 4], the other idle: utilization 0.5 at t=4
	req := r.Request()
	s.Schedule(4, func() { require.NoError(t, r.Release(req)) })
	s.Run(Forever)

	assert.InDelta(t, 0.5, r.Utilization(4), 1e-9)
	assert.InDelta(t, 0.25, r.Utilization(8), 1e-9)
	assert.Equal(t, 0.0, r.Utilization(0))

	r.Request()
	r.Request()
	r.Request()
	r.Request()
	assert.Equal(t, 2, r.PeakQueueLen())
}

func TestWaitLine_String(t *testing.T) {
	s := NewScheduler()
	r := newTestResource(t, s, 1)
	r.Request()
	r.Request()
	r.Request()

	assert.Equal(t, "[#2 #3]", r.line.String())
}
