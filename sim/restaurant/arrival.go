package restaurant

import (
	"fmt"
	"math/rand"

	"github.com/drivethru-sim/drivethru-sim/sim"
)

// ArrivalGenerator spawns customers with exponentially distributed
// interarrival times. It is itself a scheduled process, so arrivals interleave
// with station events on the restaurant's clock.
type ArrivalGenerator struct {
	r       *Restaurant
	gap     sim.Sampler
	rng     *rand.Rand
	limit   int // 0 = no limit
	spawned int
}

// NewArrivalGenerator creates a generator for r. With limit > 0 it stops after
// that many customers; with limit 0 it keeps spawning until the run's horizon.
func NewArrivalGenerator(r *Restaurant, rate float64, limit int) (*ArrivalGenerator, error) {
	gap, err := sim.NewExponentialSampler(rate)
	if err != nil {
		return nil, fmt.Errorf("arrival rate: %w", err)
	}
	if limit < 0 {
		return nil, fmt.Errorf("arrival limit %d must not be negative", limit)
	}
	return &ArrivalGenerator{
		r:     r,
		gap:   gap,
		rng:   r.rng.Stream(sim.StreamArrivals),
		limit: limit,
	}, nil
}

// Start schedules the first arrival at the current instant.
func (g *ArrivalGenerator) Start() {
	g.r.sched.Schedule(0, g.arrive)
}

// Spawned returns how many customers the generator has created.
func (g *ArrivalGenerator) Spawned() int {
	return g.spawned
}

func (g *ArrivalGenerator) arrive() {
	c := g.r.spawn()
	g.r.sched.Schedule(0, c.start)
	g.spawned++
	if g.limit > 0 && g.spawned >= g.limit {
		return
	}
	g.r.sched.Schedule(g.gap.Sample(g.rng), g.arrive)
}
