package sim

import (
	"hash/fnv"
	"math/rand"
)

// StreamName identifies one random stream of a run.
type StreamName string

// Streams used by the drive-thru model. Each stage samples from its own
// stream, so retuning one stage leaves the draws of the others unchanged.
const (
	StreamArrivals StreamName = "arrivals"
	StreamOrder    StreamName = "order"
	StreamPrep     StreamName = "prep"
	StreamPay      StreamName = "pay"
	StreamPickup   StreamName = "pickup"
)

// Streams hands out one deterministic *rand.Rand per stream name, all
// derived from a single seed. The arrivals stream is seeded with the seed
// itself; every other stream with seed XOR fnv1a(name).
//
// Not safe for concurrent use. A run owns its Streams.
type Streams struct {
	seed  int64
	cache map[StreamName]*rand.Rand
}

// NewStreams returns the stream set for seed.
func NewStreams(seed int64) *Streams {
	return &Streams{seed: seed, cache: make(map[StreamName]*rand.Rand)}
}

// Seed returns the seed the streams derive from.
func (s *Streams) Seed() int64 { return s.seed }

// Stream returns the generator for name, creating it on first use.
// Repeated calls with the same name return the same generator.
func (s *Streams) Stream(name StreamName) *rand.Rand {
	if g, ok := s.cache[name]; ok {
		return g
	}
	g := rand.New(rand.NewSource(s.derive(name)))
	s.cache[name] = g
	return g
}

func (s *Streams) derive(name StreamName) int64 {
	if name == StreamArrivals {
		return s.seed
	}
	return s.seed ^ hashName(name)
}

func hashName(name StreamName) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(name))
	return int64(h.Sum64())
}
