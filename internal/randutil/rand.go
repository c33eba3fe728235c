package randutil

import (
	rand "math/rand/v2"
	"time"
)

const (
	goldenRatio64 = 0x9e3779b97f4a7c15
)

// New returns a *rand.Rand seeded deterministically from the provided int64.
// Both PCG words are derived from the one seed so a table, a deck and a
// test all reproduce the same shuffle from the same number.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// Seed returns the configured seed, or a time-derived one when none is set.
func Seed(configured *int64) int64 {
	if configured != nil {
		return *configured
	}
	return time.Now().UnixNano()
}

// splitmix64 finalizer
func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
