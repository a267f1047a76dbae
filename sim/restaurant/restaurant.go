// Package restaurant models a drive-thru as a line of three capacity-limited
// stations (order, pay, pickup) driven by the sim kernel.
//
// A Restaurant owns its scheduler, its stations and every customer it spawns.
// Customers arrive from an ArrivalGenerator, may balk when the order line is
// too long, and are held at a station while the next station's wait line is at
// its backpressure limit. Food prep starts when ordering ends and runs while
// the customer pays; pickup completes once both prep and pickup service are done.
package restaurant

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/rs/xid"
	"github.com/sirupsen/logrus"

	"github.com/drivethru-sim/drivethru-sim/sim"
	"github.com/drivethru-sim/drivethru-sim/sim/trace"
)

// ErrAlreadyRun is returned when Run is called a second time.
var ErrAlreadyRun = errors.New("restaurant has already run")

// Each stage samples from its own RNG stream.
var stageStreams = [NumStages]sim.StreamName{
	StageOrder:  sim.StreamOrder,
	StagePrep:   sim.StreamPrep,
	StagePay:    sim.StreamPay,
	StagePickup: sim.StreamPickup,
}

// Restaurant is one drive-thru simulation run.
type Restaurant struct {
	number int
	runID  string
	cfg    Config

	sched *sim.Scheduler
	rng   *sim.Streams

	order  *sim.Resource
	pay    *sim.Resource
	pickup *sim.Resource

	stages [NumStages]sim.Sampler

	customers []*Customer
	ids       sim.Sequence
	arrivals  *ArrivalGenerator

	balked    int
	stayed    int
	completed int

	sinks trace.Multi
	ran   bool
}

// Option configures a Restaurant.
type Option func(*Restaurant)

// WithNumber sets the restaurant number shown in the printed summary.
func WithNumber(n int) Option {
	return func(r *Restaurant) { r.number = n }
}

// WithRunID overrides the generated run identifier.
func WithRunID(id string) Option {
	return func(r *Restaurant) { r.runID = id }
}

// WithSink adds a receiver for customer events.
func WithSink(s trace.Sink) Option {
	return func(r *Restaurant) { r.sinks = append(r.sinks, s) }
}

// New validates cfg and builds a restaurant ready to Run.
func New(cfg Config, opts ...Option) (*Restaurant, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	sched := sim.NewScheduler()
	r := &Restaurant{
		number: 1,
		runID:  xid.New().String(),
		cfg:    cfg,
		sched:  sched,
		rng:    sim.NewStreams(cfg.Seed),
	}
	for _, opt := range opts {
		opt(r)
	}
	if cfg.Trace {
		r.sinks = append(r.sinks, trace.LogSink{Logger: logrus.StandardLogger()})
	}

	var err error
	if r.order, err = sim.NewResource(sched, trace.StationOrder, cfg.OrderStations); err != nil {
		return nil, err
	}
	if r.pay, err = sim.NewResource(sched, trace.StationPay, cfg.PayStations); err != nil {
		return nil, err
	}
	if r.pickup, err = sim.NewResource(sched, trace.StationPickup, cfg.PickupStations); err != nil {
		return nil, err
	}

	means := [NumStages]float64{cfg.MeanOrderTime, cfg.MeanFoodPrepTime, cfg.MeanPayTime, cfg.MeanPickupTime}
	shapes := [NumStages]float64{cfg.OrderShape, cfg.PrepShape, cfg.PayShape, cfg.PickupShape}
	for st := StageOrder; st < NumStages; st++ {
		// The scale is the reciprocal of the configured mean.
		if r.stages[st], err = sim.NewWeibullSampler(1/means[st], shapes[st]); err != nil {
			return nil, fmt.Errorf("%s duration: %w", st, err)
		}
	}

	if r.arrivals, err = NewArrivalGenerator(r, cfg.ArrivalRate, cfg.Customers); err != nil {
		return nil, err
	}
	return r, nil
}

// Run starts the arrivals and drives the scheduler until no events remain or
// the configured horizon is reached.
func (r *Restaurant) Run() error {
	if r.ran {
		return ErrAlreadyRun
	}
	r.ran = true

	until := sim.Forever
	if r.cfg.Horizon > 0 {
		until = r.cfg.Horizon
	}
	log := logrus.WithFields(logrus.Fields{"run": r.runID, "restaurant": r.number})
	log.Infof("starting simulation: seed=%d rate=%v customers=%d horizon=%v",
		r.cfg.Seed, r.cfg.ArrivalRate, r.cfg.Customers, r.cfg.Horizon)

	r.arrivals.Start()
	events := r.sched.Run(until)

	log.Infof("simulation ended at t=%.4f after %d events: %d arrived, %d balked, %d completed",
		r.Now(), events, r.arrived(), r.balked, r.completed)
	if inLine := r.stayed - r.completed; inLine > 0 {
		log.Warnf("%d customers still in line when the run stopped", inLine)
	}
	return nil
}

// Now returns the current simulated time.
func (r *Restaurant) Now() float64 { return r.sched.Now() }

// Number returns the restaurant number.
func (r *Restaurant) Number() int { return r.number }

// RunID returns the run identifier attached to records and summaries.
func (r *Restaurant) RunID() string { return r.runID }

// Config returns the configuration the restaurant was built with.
func (r *Restaurant) Config() Config { return r.cfg }

// Customers returns every customer spawned so far, in arrival order.
// The slice must not be modified.
func (r *Restaurant) Customers() []*Customer { return r.customers }

// Order returns the order station.
func (r *Restaurant) Order() *sim.Resource { return r.order }

// Pay returns the pay station.
func (r *Restaurant) Pay() *sim.Resource { return r.pay }

// Pickup returns the pickup station.
func (r *Restaurant) Pickup() *sim.Resource { return r.pickup }

func (r *Restaurant) spawn() *Customer {
	c := newCustomer(r, r.ids.Next())
	r.customers = append(r.customers, c)
	return c
}

// arrived is the number of potential customers, balked or not.
func (r *Restaurant) arrived() int { return int(r.ids.Peek()) }

func (r *Restaurant) sample(st Stage) float64 {
	return r.stages[st].Sample(r.stream(st))
}

func (r *Restaurant) stream(st Stage) *rand.Rand {
	return r.rng.Stream(stageStreams[st])
}

func (r *Restaurant) emit(c *Customer, kind trace.Kind, station string, queued int, d float64) {
	if len(r.sinks) == 0 {
		return
	}
	r.sinks.Emit(trace.Record{
		RunID:    r.runID,
		Time:     r.Now(),
		Customer: c.ID,
		Kind:     kind,
		Station:  station,
		QueueLen: queued,
		Duration: d,
	})
}

// mustRelease releases a request the customer is known to hold.
func (r *Restaurant) mustRelease(res *sim.Resource, req *sim.Request) {
	if err := res.Release(req); err != nil {
		panic(fmt.Sprintf("restaurant: %v", err))
	}
}
