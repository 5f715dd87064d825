package world

import (
	"hash/fnv"
	"math"
	"math/rand"
)

// RNGFactory produces RNG instances for world subsystems.
type RNGFactory func(rootSeed, label string) *rand.Rand

func DeterministicSeedValue(rootSeed, label string) int64 {
	hasher := fnv.New64a()
	hasher.Write([]byte(rootSeed))
	hasher.Write([]byte{0})
	hasher.Write([]byte(label))
	sum := hasher.Sum64()
	if sum == 0 {
		sum = 1
	}
	return int64(sum)
}

func NewDeterministicRNG(rootSeed, label string) *rand.Rand {
	return rand.New(rand.NewSource(DeterministicSeedValue(rootSeed, label)))
}

func RandomAngle(rng *rand.Rand) float64 {
	return rng.Float64() * 2 * math.Pi
}
