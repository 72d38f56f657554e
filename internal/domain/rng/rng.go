// Package rng provides the seeded, counter-based random stream every snap
// draws from. A stream is a (seed, counter) pair: value i is a pure hash of
// seed and i, so the stream is unbounded and two streams built from the same
// seed always agree.
package rng

import "hash/fnv"

const golden = 0x9E3779B97F4A7C15

// Stream is a counter-based generator. The zero value is a valid stream
// seeded with 0. Not safe for concurrent use; each play owns its streams.
type Stream struct {
	seed    uint64
	counter uint64
}

// New returns a stream starting at counter 0.
func New(seed uint64) *Stream {
	return &Stream{seed: seed}
}

// ForPlay mixes a session seed and a play id into a fresh play stream, so
// every snap of a session draws from its own sub-stream.
func ForPlay(sessionSeed, playID uint64) *Stream {
	return New(Mix(sessionSeed, playID))
}

// Mix combines two 64-bit values into one well-distributed seed.
func Mix(a, b uint64) uint64 {
	return splitmix(splitmix(a) ^ (b + golden))
}

// splitmix is the SplitMix64 finaliser.
func splitmix(z uint64) uint64 {
	z += golden
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

// Seed returns the stream's seed.
func (s *Stream) Seed() uint64 { return s.seed }

// Drawn returns how many values have been consumed.
func (s *Stream) Drawn() uint64 { return s.counter }

// Sub derives an independent stream for a named draw point. Sub-streams do
// not advance the parent, so adding a draw in one place never shifts the
// values another draw point sees.
func (s *Stream) Sub(label string) *Stream {
	h := fnv.New64a()
	_, _ = h.Write([]byte(label))
	return New(Mix(s.seed, h.Sum64()))
}

// Uint64 returns the next raw value.
func (s *Stream) Uint64() uint64 {
	v := splitmix(s.seed ^ splitmix(s.counter))
	s.counter++
	return v
}

// Float64 returns the next value in [0, 1).
func (s *Stream) Float64() float64 {
	return float64(s.Uint64()>>11) / (1 << 53)
}

// Intn returns the next value in [0, n). n <= 0 yields 0.
func (s *Stream) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(s.Uint64() % uint64(n))
}

// Chance reports true with probability p.
func (s *Stream) Chance(p float64) bool {
	return s.Float64() < p
}

// Weighted picks an index with probability proportional to weights. Non-
// positive weights are never picked; all-zero weights pick index 0.
func (s *Stream) Weighted(weights []float64) int {
	total := 0.0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return 0
	}
	return pick(weights, s.Float64()*total)
}

// pick walks the positive weights until u is spent. Rounding can leave u
// just past the total; the last positive weight absorbs it.
func pick(weights []float64, u float64) int {
	last := 0
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		if u < w {
			return i
		}
		u -= w
		last = i
	}
	return last
}
