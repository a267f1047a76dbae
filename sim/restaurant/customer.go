package restaurant

import (
	"fmt"

	"github.com/drivethru-sim/drivethru-sim/sim"
	"github.com/drivethru-sim/drivethru-sim/sim/trace"
)

// Unset marks a timestamp or duration the customer never reached.
const Unset = -1.0

// State is a customer's position in the drive-thru.
type State int

const (
	Arriving State = iota
	AwaitingOrder
	Ordering
	AwaitingPayCapacity
	Paying
	AwaitingPickupCapacity
	PickingUp
	Completed
	Balked
)

var stateNames = [...]string{
	Arriving:               "arriving",
	AwaitingOrder:          "awaiting_order",
	Ordering:               "ordering",
	AwaitingPayCapacity:    "awaiting_pay_capacity",
	Paying:                 "paying",
	AwaitingPickupCapacity: "awaiting_pickup_capacity",
	PickingUp:              "picking_up",
	Completed:              "completed",
	Balked:                 "balked",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// Stage is one timed span of a customer's visit.
type Stage int

const (
	StageOrder Stage = iota
	StagePrep
	StagePay
	StagePickup
	NumStages
)

var stageNames = [...]string{"order", "prep", "pay", "pickup"}

func (s Stage) String() string {
	if s < 0 || s >= NumStages {
		return fmt.Sprintf("Stage(%d)", int(s))
	}
	return stageNames[s]
}

// Customer is one car passing through the drive-thru.
// Its fields are written only by its own process; read them after the run.
type Customer struct {
	ID    uint64
	State State

	EnterTime float64
	ExitTime  float64
	Durations [NumStages]float64

	OrderAdmitted  float64
	PayAdmitted    float64
	PickupAdmitted float64
	PrepStart      float64

	r         *Restaurant
	orderReq  *sim.Request
	payReq    *sim.Request
	pickupReq *sim.Request
	prepDone  *sim.Future
}

func newCustomer(r *Restaurant, id uint64) *Customer {
	c := &Customer{
		ID:             id,
		State:          Arriving,
		EnterTime:      Unset,
		ExitTime:       Unset,
		OrderAdmitted:  Unset,
		PayAdmitted:    Unset,
		PickupAdmitted: Unset,
		PrepStart:      Unset,
		r:              r,
	}
	for i := range c.Durations {
		c.Durations[i] = Unset
	}
	return c
}

// Duration returns the sampled duration of stage, or Unset.
func (c *Customer) Duration(stage Stage) float64 {
	return c.Durations[stage]
}

// Entered reports whether the customer joined the line instead of balking.
func (c *Customer) Entered() bool {
	return c.EnterTime != Unset
}

// Completed reports whether the customer left through the pickup station.
func (c *Customer) Completed() bool {
	return c.State == Completed
}

// TimeInSystem returns exit minus enter time, or Unset if either is missing.
func (c *Customer) TimeInSystem() float64 {
	if c.EnterTime == Unset || c.ExitTime == Unset {
		return Unset
	}
	return c.ExitTime - c.EnterTime
}

// start is the arrival step: balk or join the order line.
func (c *Customer) start() {
	r := c.r
	queued := r.order.QueueLen()
	if queued > r.cfg.OrderLineSlack+r.order.Capacity() {
		c.State = Balked
		r.balked++
		r.emit(c, trace.KindBalk, trace.StationOrder, queued, 0)
		return
	}

	r.emit(c, trace.KindEnter, trace.StationOrder, queued, 0)
	c.EnterTime = r.Now()
	r.stayed++

	c.State = AwaitingOrder
	c.orderReq = r.order.Request()
	c.orderReq.Then(c.order)
}

func (c *Customer) order() {
	r := c.r
	c.State = Ordering
	c.OrderAdmitted = c.orderReq.AdmittedAt()
	d := r.sample(StageOrder)
	c.Durations[StageOrder] = d
	r.emit(c, trace.KindOrder, trace.StationOrder, r.order.QueueLen(), d)
	r.sched.Timeout(d).Then(c.leaveOrder)
}

// leaveOrder starts food prep, then holds the order station until the pay
// line has room.
func (c *Customer) leaveOrder() {
	r := c.r
	prep := r.sample(StagePrep)
	c.Durations[StagePrep] = prep
	c.PrepStart = r.Now()
	c.prepDone = r.sched.Timeout(prep)
	r.emit(c, trace.KindPrep, "", 0, prep)

	c.State = AwaitingPayCapacity
	c.awaitRoom(r.pay, r.cfg.PayBackpressure, trace.KindPayBlocked, trace.StationPay, func() {
		r.mustRelease(r.order, c.orderReq)
		r.emit(c, trace.KindOrderRelease, trace.StationPay, r.pay.QueueLen(), 0)
		c.payReq = r.pay.Request()
		c.payReq.Then(c.payAtWindow)
	})
}

func (c *Customer) payAtWindow() {
	r := c.r
	c.State = Paying
	c.PayAdmitted = c.payReq.AdmittedAt()
	d := r.sample(StagePay)
	c.Durations[StagePay] = d
	r.emit(c, trace.KindPay, trace.StationPay, r.pay.QueueLen(), d)
	r.sched.Timeout(d).Then(c.leavePay)
}

func (c *Customer) leavePay() {
	r := c.r
	c.State = AwaitingPickupCapacity
	c.awaitRoom(r.pickup, r.cfg.PickupBackpressure, trace.KindPickupBlocked, trace.StationPickup, func() {
		r.mustRelease(r.pay, c.payReq)
		r.emit(c, trace.KindPayRelease, trace.StationPickup, r.pickup.QueueLen(), 0)
		c.pickupReq = r.pickup.Request()
		c.pickupReq.Then(c.pickUp)
	})
}

// pickUp waits for both the pickup service and the food prep started at the
// end of ordering.
func (c *Customer) pickUp() {
	r := c.r
	c.State = PickingUp
	c.PickupAdmitted = c.pickupReq.AdmittedAt()
	d := r.sample(StagePickup)
	c.Durations[StagePickup] = d
	r.emit(c, trace.KindPickup, trace.StationPickup, r.pickup.QueueLen(), d)
	sim.AllOf(r.sched, c.prepDone, r.sched.Timeout(d)).Then(c.exit)
}

func (c *Customer) exit() {
	r := c.r
	r.mustRelease(r.pickup, c.pickupReq)
	c.ExitTime = r.Now()
	c.State = Completed
	r.completed++
	r.emit(c, trace.KindExit, "", 0, c.TimeInSystem())
}

// awaitRoom runs next once downstream's wait line is shorter than limit.
// A blocked customer is recorded once per wait, however many wakeups it takes.
func (c *Customer) awaitRoom(downstream *sim.Resource, limit int, blocked trace.Kind, station string, next func()) {
	queued := downstream.QueueLen()
	if queued < limit {
		next()
		return
	}
	c.r.emit(c, blocked, station, queued, 0)
	c.recheckRoom(downstream, limit, next)
}

// recheckRoom waits for room and checks again on wakeup: customers woken by
// the same shrink may refill the line before this one resumes.
func (c *Customer) recheckRoom(downstream *sim.Resource, limit int, next func()) {
	downstream.WaitQueueBelow(limit).Then(func() {
		if downstream.QueueLen() < limit {
			next()
			return
		}
		c.recheckRoom(downstream, limit, next)
	})
}
