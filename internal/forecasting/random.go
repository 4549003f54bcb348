package forecasting

import (
	"math/rand/v2"
	"sync"
)

// RandomSource supplies the pseudo-random draws used for synthetic history,
// simulated fit metrics and seasonal jitter. *rand.Rand satisfies it.
type RandomSource interface {
	Float64() float64
	NormFloat64() float64
}

type globalSource struct{}

func (globalSource) Float64() float64     { return rand.Float64() }
func (globalSource) NormFloat64() float64 { return rand.NormFloat64() }

// NewDefaultSource returns a source backed by the runtime's concurrency-safe generator.
func NewDefaultSource() RandomSource {
	return globalSource{}
}

type lockedSource struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewSeededSource returns a deterministic source that is safe for concurrent use.
func NewSeededSource(seed uint64) RandomSource {
	return &lockedSource{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *lockedSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Float64()
}

func (s *lockedSource) NormFloat64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.NormFloat64()
}

// uniform draws from [lo, hi).
func uniform(rnd RandomSource, lo, hi float64) float64 {
	return lo + (hi-lo)*rnd.Float64()
}

// normal draws from N(mean, std).
func normal(rnd RandomSource, mean, std float64) float64 {
	return mean + std*rnd.NormFloat64()
}

func sourceOrDefault(rnd RandomSource) RandomSource {
	if rnd == nil {
		return NewDefaultSource()
	}
	return rnd
}
