// Package randutil centralises how the game derives its random sources so
// that every shuffle, target pick and NPC choice can be replayed from a seed.
package randutil

import (
	rand "math/rand/v2"
	"time"
)

const (
	goldenRatio64 = 0x9e3779b97f4a7c15
)

// New returns a *rand.Rand seeded deterministically from the provided int64.
// rand/v2's PCG needs two 64-bit seeds; both are derived from seed with a
// splitmix finaliser so nearby seeds still produce unrelated streams.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// NewTimeSeeded returns a generator seeded from the wall clock along with the
// seed it used, so callers can log it for later replay.
func NewTimeSeeded() (*rand.Rand, int64) {
	seed := time.Now().UnixNano()
	return New(seed), seed
}

// Derive returns an independent child generator for stream n of a base seed.
// Used to give every simulated game or room its own reproducible stream.
func Derive(seed int64, n int) *rand.Rand {
	return New(int64(mix(uint64(seed) ^ mix(uint64(n)+goldenRatio64))))
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
