package sim

import (
	"math"
	"math/rand"
	"testing"
)

func TestNewExponentialSampler_Validation(t *testing.T) {
	for _, rate := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if _, err := NewExponentialSampler(rate); err == nil {
			t.Errorf("rate %v: expected error", rate)
		}
	}
}

func TestNewWeibullSampler_Validation(t *testing.T) {
	tests := []struct {
		name         string
		scale, shape float64
	}{
		{"zero scale", 0, 1.5},
		{"negative scale", -1, 1.5},
		{"zero shape", 1, 0},
		{"nan shape", 1, math.NaN()},
		{"inf scale", math.Inf(1), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewWeibullSampler(tt.scale, tt.shape); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestExponentialSampler_MeanConverges(t *testing.T) {
	s, err := NewExponentialSampler(5)
	if err != nil {
		t.Fatal(err)
	}
	rng := rand.New(rand.NewSource(42))
	const n = 50000
	sum := 0.0
	for i := 0; i < n; i++ {
		v := s.Sample(rng)
		if v < 0 {
			t.Fatalf("negative sample %v", v)
		}
		sum += v
	}
	mean := sum / n
	if math.Abs(mean-s.Mean())/s.Mean() > 0.03 {
		t.Errorf("empirical mean %v, want ≈ %v", mean, s.Mean())
	}
}

func TestWeibullSampler_MeanConvergesAndPositive(t *testing.T) {
	tests := []struct {
		scale, shape float64
	}{
		{1.0 / 3.0, 1.5},
		{1.0 / 6.0, 2.0},
		{2.0, 1.0},
	}
	for _, tt := range tests {
		s, err := NewWeibullSampler(tt.scale, tt.shape)
		if err != nil {
			t.Fatal(err)
		}
		rng := rand.New(rand.NewSource(7))
		const n = 50000
		sum := 0.0
		for i := 0; i < n; i++ {
			v := s.Sample(rng)
			if !(v > 0) {
				t.Fatalf("Weibull(%v, %v) produced non-positive sample %v", tt.scale, tt.shape, v)
			}
			sum += v
		}
		mean := sum / n
		if math.Abs(mean-s.Mean())/s.Mean() > 0.03 {
			t.Errorf("Weibull(%v, %v): empirical mean %v, want ≈ %v", tt.scale, tt.shape, mean, s.Mean())
		}
	}
}

func TestWeibullSampler_ShapeOneIsExponential(t *testing.T) {
	s, _ := NewWeibullSampler(2, 1)
	if math.Abs(s.Mean()-2) > 1e-12 {
		t.Errorf("Weibull(2, 1) mean = %v, want 2", s.Mean())
	}
}
