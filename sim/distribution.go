package sim

import (
	"fmt"
	"math"
	"math/rand"
)

// Sampler draws non-negative durations in simulated time units.
type Sampler interface {
	Sample(rng *rand.Rand) float64
	// Mean returns the distribution's expected value.
	Mean() float64
}

// ExponentialSampler draws exponentially distributed interarrival times
// for a Poisson process with the given rate (events per time unit).
type ExponentialSampler struct {
	rate float64
}

// NewExponentialSampler creates an exponential sampler. rate must be positive.
func NewExponentialSampler(rate float64) (*ExponentialSampler, error) {
	if !(rate > 0) || math.IsInf(rate, 0) {
		return nil, fmt.Errorf("exponential rate must be positive and finite, got %v", rate)
	}
	return &ExponentialSampler{rate: rate}, nil
}

func (s *ExponentialSampler) Sample(rng *rand.Rand) float64 {
	return rng.ExpFloat64() / s.rate
}

func (s *ExponentialSampler) Mean() float64 {
	return 1.0 / s.rate
}

// WeibullSampler draws Weibull-distributed durations.
type WeibullSampler struct {
	scale float64 // Weibull λ parameter
	shape float64 // Weibull k parameter
}

// NewWeibullSampler creates a Weibull sampler. Both parameters must be positive.
func NewWeibullSampler(scale, shape float64) (*WeibullSampler, error) {
	if !(scale > 0) || math.IsInf(scale, 0) {
		return nil, fmt.Errorf("weibull scale must be positive and finite, got %v", scale)
	}
	if !(shape > 0) || math.IsInf(shape, 0) {
		return nil, fmt.Errorf("weibull shape must be positive and finite, got %v", shape)
	}
	return &WeibullSampler{scale: scale, shape: shape}, nil
}

func (s *WeibullSampler) Sample(rng *rand.Rand) float64 {
	// Inverse CDF: scale * (-ln(U))^(1/shape)
	u := rng.Float64()
	if u == 0 {
		u = math.SmallestNonzeroFloat64 // prevent -ln(0) = +Inf
	}
	return s.scale * math.Pow(-math.Log(u), 1.0/s.shape)
}

// Mean returns scale * Γ(1 + 1/shape).
func (s *WeibullSampler) Mean() float64 {
	return s.scale * math.Gamma(1.0+1.0/s.shape)
}
