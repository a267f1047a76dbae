package restaurant

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drivethru-sim/drivethru-sim/sim/internal/testutil"
	"github.com/drivethru-sim/drivethru-sim/sim/trace"
)

const eps = 1e-9

// rushConfig is the single-lane drive-thru under sustained overload:
// 1/1/1 stations, 5 arrivals per minute, 50 customers, horizon 120.
func rushConfig() Config {
	cfg := DefaultConfig()
	cfg.Customers = 50
	cfg.Horizon = 120
	return cfg
}

func newRecorded(t *testing.T, cfg Config) (*Restaurant, *trace.Recorder) {
	t.Helper()
	rec := trace.NewRecorder()
	r, err := New(cfg, WithSink(rec), WithRunID("test-run"))
	require.NoError(t, err)
	return r, rec
}

// stepAll drives r one event at a time, calling check after each event.
func stepAll(r *Restaurant, check func()) {
	r.ran = true
	r.arrivals.Start()
	for r.sched.Step() {
		check()
	}
}

func TestRestaurant_RushScenario(t *testing.T) {
	// GIVEN the overloaded single-lane drive-thru
	r, _ := newRecorded(t, rushConfig())

	// WHEN it runs
	require.NoError(t, r.Run())
	s := r.Summary()

	// THEN the line-length policy turns customers away
	assert.Equal(t, 50, s.Total)
	assert.Greater(t, s.Balked, 0)
	assert.Equal(t, s.Total, s.Balked+s.Stayed)

	// AND every staying customer has strictly positive stage durations
	for _, c := range r.Customers() {
		if !c.Entered() {
			assert.Equal(t, Balked, c.State)
			assert.Equal(t, Unset, c.ExitTime)
			for st := StageOrder; st < NumStages; st++ {
				assert.Equal(t, Unset, c.Duration(st))
			}
			continue
		}
		require.True(t, c.Completed(), "customer %d in state %s", c.ID, c.State)
		for st := StageOrder; st < NumStages; st++ {
			assert.Greater(t, c.Duration(st), 0.0, "customer %d stage %s", c.ID, st)
		}
	}

	// AND the averages are finite
	require.NotNil(t, s.Averages)
	for _, v := range []float64{s.Averages.TimeInSystem, s.Averages.Order, s.Averages.Prep, s.Averages.Pay, s.Averages.Pickup} {
		assert.False(t, math.IsNaN(v) || math.IsInf(v, 0))
		assert.Greater(t, v, 0.0)
	}
}

func TestRestaurant_BalkIffOrderLineTooLong(t *testing.T) {
	for _, stations := range []int{1, 2} {
		cfg := rushConfig()
		cfg.OrderStations = stations
		cfg.ArrivalRate = 20
		cfg.Customers = 200
		r, rec := newRecorded(t, cfg)

		require.NoError(t, r.Run())

		threshold := cfg.OrderLineSlack + stations
		balks, enters := 0, 0
		for _, e := range rec.Records {
			switch e.Kind {
			case trace.KindBalk:
				balks++
				assert.Greater(t, e.QueueLen, threshold, "customer %d balked with a short line", e.Customer)
			case trace.KindEnter:
				enters++
				assert.LessOrEqual(t, e.QueueLen, threshold, "customer %d entered a long line", e.Customer)
			}
		}
		assert.Greater(t, balks, 0)
		assert.Equal(t, r.Summary().Balked, balks)
		assert.Equal(t, r.Summary().Stayed, enters)
	}
}

func TestRestaurant_TimestampOrdering(t *testing.T) {
	cfg := rushConfig()
	cfg.OrderStations = 2
	cfg.Customers = 300
	cfg.Horizon = 0
	r, _ := newRecorded(t, cfg)

	require.NoError(t, r.Run())

	for _, c := range r.Customers() {
		if !c.Completed() {
			continue
		}
		assert.LessOrEqual(t, c.EnterTime, c.OrderAdmitted)
		assert.LessOrEqual(t, c.OrderAdmitted, c.PayAdmitted)
		assert.LessOrEqual(t, c.PayAdmitted, c.PickupAdmitted)
		assert.LessOrEqual(t, c.PickupAdmitted, c.ExitTime)
		assert.InDelta(t, c.ExitTime-c.EnterTime, c.TimeInSystem(), eps)
	}
}

func TestRestaurant_PickupWaitsForFoodPrep(t *testing.T) {
	// GIVEN slow food prep, so prep often outlasts paying
	cfg := rushConfig()
	cfg.MeanFoodPrepTime = 0.5
	cfg.Horizon = 0
	r, _ := newRecorded(t, cfg)

	require.NoError(t, r.Run())

	// THEN no customer leaves before both prep and pickup are done
	for _, c := range r.Customers() {
		if !c.Completed() {
			continue
		}
		assert.GreaterOrEqual(t, c.ExitTime+eps, c.PrepStart+c.Duration(StagePrep), "customer %d", c.ID)
		assert.GreaterOrEqual(t, c.ExitTime+eps, c.PickupAdmitted+c.Duration(StagePickup), "customer %d", c.ID)
		assert.InDelta(t, c.PrepStart, c.OrderAdmitted+c.Duration(StageOrder), eps, "prep starts when ordering ends")
	}
}

func TestRestaurant_BackpressureBoundsDownstreamLines(t *testing.T) {
	// GIVEN a fast order station feeding slow pay and pickup stations
	cfg := rushConfig()
	cfg.OrderStations = 3
	cfg.MeanOrderTime = 5
	cfg.MeanPayTime = 0.5
	cfg.MeanPickupTime = 0.5
	cfg.Customers = 400
	cfg.Horizon = 0
	r, rec := newRecorded(t, cfg)

	// WHEN it runs one event at a time
	stepAll(r, func() {
		// THEN neither downstream line ever exceeds its limit
		require.LessOrEqual(t, r.Pay().QueueLen(), cfg.PayBackpressure)
		require.LessOrEqual(t, r.Pickup().QueueLen(), cfg.PickupBackpressure)
		require.LessOrEqual(t, r.Order().InUse(), cfg.OrderStations)
		require.LessOrEqual(t, r.Pay().InUse(), cfg.PayStations)
		require.LessOrEqual(t, r.Pickup().InUse(), cfg.PickupStations)
	})

	// AND every upstream release happened with room downstream
	for _, e := range rec.Filter(trace.KindOrderRelease) {
		assert.Less(t, e.QueueLen, cfg.PayBackpressure)
	}
	for _, e := range rec.Filter(trace.KindPayRelease) {
		assert.Less(t, e.QueueLen, cfg.PickupBackpressure)
	}

	// AND the limits were actually hit
	sum := trace.Summarize(rec.Records)
	assert.Greater(t, sum.BlockedWaits[trace.StationPay]+sum.BlockedWaits[trace.StationPickup], 0)
	assert.Equal(t, sum.Entered, sum.Exited)
}

func TestRestaurant_BlockedWaitRecordedOncePerCustomer(t *testing.T) {
	// GIVEN a fast order station feeding slow pay and pickup stations
	cfg := rushConfig()
	cfg.OrderStations = 3
	cfg.MeanOrderTime = 5
	cfg.MeanPayTime = 0.5
	cfg.MeanPickupTime = 0.5
	cfg.Customers = 400
	cfg.Horizon = 0

	for _, seed := range []int64{1, 2, 42} {
		cfg.Seed = seed
		r, rec := newRecorded(t, cfg)

		// WHEN it runs
		require.NoError(t, r.Run())

		// THEN customers do block downstream
		payBlocked := rec.Filter(trace.KindPayBlocked)
		require.NotEmpty(t, payBlocked, "seed %d", seed)

		// AND each customer is recorded at most once per blocked station
		for _, kind := range []trace.Kind{trace.KindPayBlocked, trace.KindPickupBlocked} {
			seen := map[uint64]int{}
			for _, e := range rec.Filter(kind) {
				seen[e.Customer]++
			}
			for id, n := range seen {
				assert.Equal(t, 1, n, "seed %d: customer %d has %d %s records", seed, id, n, kind)
			}
		}
	}
}

func TestRestaurant_TraceTimesNeverDecrease(t *testing.T) {
	r, rec := newRecorded(t, rushConfig())
	require.NoError(t, r.Run())

	require.NotEmpty(t, rec.Records)
	times := make([]float64, len(rec.Records))
	for i, r := range rec.Records {
		times[i] = r.Time
	}
	testutil.AssertNonDecreasing(t, "trace time", times)
}

func TestRestaurant_DeterministicUnderFixedSeed(t *testing.T) {
	// GIVEN two restaurants built from the same configuration and seed
	cfg := rushConfig()
	r1, rec1 := newRecorded(t, cfg)
	r2, rec2 := newRecorded(t, cfg)

	// WHEN both run
	require.NoError(t, r1.Run())
	require.NoError(t, r2.Run())

	// THEN the event sequences and statistics are identical
	assert.Equal(t, rec1.Records, rec2.Records)
	assert.Equal(t, r1.Summary(), r2.Summary())

	// AND a different seed gives a different run
	cfg.Seed = 7
	r3, rec3 := newRecorded(t, cfg)
	require.NoError(t, r3.Run())
	assert.NotEqual(t, rec1.Records, rec3.Records)
}

func TestRestaurant_LowLoadApproximatesSumOfStageMeans(t *testing.T) {
	// GIVEN one arrival every 10 minutes on average
	cfg := DefaultConfig()
	cfg.ArrivalRate = 0.1
	cfg.Customers = 2000
	r, err := New(cfg)
	require.NoError(t, err)

	// WHEN it runs
	require.NoError(t, r.Run())
	s := r.Summary()

	// THEN nobody balks and the time in system is close to the sum of the stage means
	assert.Equal(t, 0, s.Balked)
	assert.Equal(t, cfg.Customers, s.Completed)
	require.NotNil(t, s.Averages)

	order := weibullMean(cfg.MeanOrderTime, cfg.OrderShape)
	pay := weibullMean(cfg.MeanPayTime, cfg.PayShape)
	pickup := weibullMean(cfg.MeanPickupTime, cfg.PickupShape)
	assert.InEpsilon(t, order+pay+pickup, s.Averages.TimeInSystem, 0.10)
	testutil.AssertFloat64Equal(t, "order", order, s.Averages.Order, 0.10)
	testutil.AssertFloat64Equal(t, "prep", weibullMean(cfg.MeanFoodPrepTime, cfg.PrepShape), s.Averages.Prep, 0.10)
	testutil.AssertFloat64Equal(t, "pay", pay, s.Averages.Pay, 0.10)
	testutil.AssertFloat64Equal(t, "pickup", pickup, s.Averages.Pickup, 0.10)
}

// weibullMean is the expected sampled duration for a configured mean and shape.
func weibullMean(mean, shape float64) float64 {
	return (1 / mean) * math.Gamma(1+1/shape)
}

func TestRestaurant_HorizonOnlyRun(t *testing.T) {
	// GIVEN unlimited arrivals and a 30 minute horizon
	cfg := DefaultConfig()
	cfg.Customers = 0
	cfg.Horizon = 30
	r, err := New(cfg)
	require.NoError(t, err)

	// WHEN it runs
	require.NoError(t, r.Run())

	// THEN the clock stops at the horizon with arrivals throughout
	assert.Equal(t, 30.0, r.Now())
	s := r.Summary()
	assert.Greater(t, s.Total, 50)
	assert.LessOrEqual(t, s.Completed, s.Stayed)
	for _, c := range r.Customers() {
		if c.Entered() {
			assert.LessOrEqual(t, c.EnterTime, 30.0)
		}
	}
}

func TestRestaurant_RunTwice(t *testing.T) {
	r, _ := newRecorded(t, rushConfig())
	require.NoError(t, r.Run())
	assert.ErrorIs(t, r.Run(), ErrAlreadyRun)
}

func TestRestaurant_CustomerIDsAreSequential(t *testing.T) {
	r, _ := newRecorded(t, rushConfig())
	require.NoError(t, r.Run())

	for i, c := range r.Customers() {
		assert.Equal(t, uint64(i+1), c.ID)
	}

	// a second restaurant numbers its customers from 1 again
	other, _ := newRecorded(t, rushConfig())
	require.NoError(t, other.Run())
	assert.Equal(t, uint64(1), other.Customers()[0].ID)
}

func TestRestaurant_OptionsAndPrint(t *testing.T) {
	r, err := New(rushConfig(), WithNumber(3), WithRunID("abc"))
	require.NoError(t, err)
	require.NoError(t, r.Run())

	s := r.Summary()
	assert.Equal(t, "abc", s.RunID)
	assert.Equal(t, 3, s.Number)
	require.Len(t, s.Stations, 3)
	assert.Equal(t, "order", s.Stations[0].Name)
	assert.Equal(t, s.Stayed, s.Stations[0].Admissions)

	var buf bytes.Buffer
	s.Print(&buf)
	out := buf.String()
	assert.Contains(t, out, "Restaurant 3 Stats")
	assert.Contains(t, out, "50 potential customers..")
	assert.Contains(t, out, "customers left..")
	assert.Contains(t, out, "Average time spent in drive thru:")
	assert.Contains(t, out, "Average time spent picking up food:")
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "awaiting_pay_capacity", AwaitingPayCapacity.String())
	assert.Equal(t, "balked", Balked.String())
	assert.Equal(t, "State(42)", State(42).String())
	assert.Equal(t, "prep", StagePrep.String())
}
