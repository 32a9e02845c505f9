package dialogue

import (
	"math/rand"
	"sync"
)

// sampleWeighted draws an index from the cumulative weight distribution.
// It returns -1 for an empty list or a non-positive total weight, which the
// replica generator treats as "no replica", never as an error.
func sampleWeighted(rng *rand.Rand, weights []float64) int {
	total := 0.0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return -1
	}
	r := rng.Float64() * total
	cum := 0.0
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		cum += w
		if r < cum {
			return i
		}
	}
	// Float round-off can leave r just above the last bucket.
	for i := len(weights) - 1; i >= 0; i-- {
		if weights[i] > 0 {
			return i
		}
	}
	return -1
}

// lockedSource makes one rand.Rand shareable across sessions: the engine's
// random source is injectable for deterministic tests, and turns for
// distinct sessions run in parallel.
type lockedSource struct {
	mu  sync.Mutex
	src rand.Source
}

func (s *lockedSource) Int63() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.src.Int63()
}

func (s *lockedSource) Seed(seed int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.src.Seed(seed)
}

// newLockedRand wraps src into a goroutine-safe *rand.Rand.
func newLockedRand(src rand.Source) *rand.Rand {
	return rand.New(&lockedSource{src: src})
}
