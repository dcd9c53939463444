package util

import (
	"math/rand/v2"
	"sync"
	"time"

	"golang.org/x/exp/constraints"
)

// Rand is the subset of *rand.Rand the game needs.
type Rand interface {
	IntN(n int) int
	Float64() float64
	Shuffle(n int, swap func(i, j int))
}

// NewRand returns a generator seeded with seed, or with the clock when seed is negative.
func NewRand(seed int64) *rand.Rand {
	if seed < 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))
}

// LockedRand makes a Rand safe for concurrent timer callbacks.
type LockedRand struct {
	mu  sync.Mutex
	rnd Rand
}

func NewLockedRand(rnd Rand) *LockedRand {
	return &LockedRand{rnd: rnd}
}

func (r *LockedRand) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rnd.IntN(n)
}

func (r *LockedRand) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rnd.Float64()
}

func (r *LockedRand) Shuffle(n int, swap func(i, j int)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rnd.Shuffle(n, swap)
}

func Clamp[T constraints.Ordered](value, low, high T) T {
	if value < low {
		return low
	}
	if value > high {
		return high
	}
	return value
}

// RandomDuration draws uniformly from [low, high].
func RandomDuration(rnd Rand, low, high time.Duration) time.Duration {
	if high <= low {
		return low
	}
	return low + time.Duration(rnd.Float64()*float64(high-low))
}
