package engine

import "math/rand"

// Dice is the engine's only source of randomness.
type Dice interface {
	// Intn returns a uniform integer in [0, n).
	Intn(n int) int
}

// RNG wraps math/rand.Rand with deterministic position tracking.
// Position increments with every draw; /state and /trace report it.
type RNG struct {
	seed int64
	src  *rand.Rand
	pos  int64
}

// NewRNG creates a new deterministic RNG from a seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		seed: seed,
		src:  rand.New(rand.NewSource(seed)),
	}
}

// Intn returns a random integer in [0, n).
func (r *RNG) Intn(n int) int {
	r.pos++
	return r.src.Intn(n)
}

// Seed returns the seed the RNG was created with.
func (r *RNG) Seed() int64 { return r.seed }

// Position returns the number of draws made since creation.
func (r *RNG) Position() int64 {
	return r.pos
}

// chance draws once and reports whether the roll landed under c percent.
func chance(d Dice, c int) bool {
	return d.Intn(100) < c
}
