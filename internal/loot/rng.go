package loot

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
)

// RandomSource abstract.
// Every random decision of a roll (selection, decay, stack, modifier) goes
// through one RandomSource, consumed sequentially.
type RandomSource interface {
	Float64() float64 // [0, 1)
	IntN(n int) int   // [0, n)
}

// NewSeed reads a 64bit seed from crypto/rand.
func NewSeed() uint64 {
	var buf [8]byte
	if _, err := cryptoRand.Read(buf[:]); err != nil {
		// back to math/rand/v2
		return rand.Uint64()
	}
	return binary.LittleEndian.Uint64(buf[:])
}

// DefaultRNG returns a non reproducible source seeded from process entropy.
func DefaultRNG() RandomSource {
	var seed [32]byte
	if _, err := cryptoRand.Read(seed[:]); err != nil {
		binary.LittleEndian.PutUint64(seed[:8], rand.Uint64())
		binary.LittleEndian.PutUint64(seed[8:16], rand.Uint64())
	}
	return rand.New(rand.NewChaCha8(seed))
}

// NewSeededRNG returns a replicable source: same seed, same sequence.
func NewSeededRNG(seed uint64) RandomSource {
	return rand.New(rand.NewPCG(seed, 0))
}
