// Package seed expands a single 32-bit run seed into a deterministic stream
// of host-side values used to initialise generator state.
package seed

import "math/rand/v2"

// streamKey separates expander streams from other PCG users seeded with the
// same value.
const streamKey = 0x9e3779b97f4a7c15

// Expander is a deterministic seed -> stream function. The zero value is
// ready to use and behaves as Seed(0).
//
// An Expander is owned by a single caller and is not safe for concurrent use.
type Expander struct {
	pcg    rand.PCG
	seeded bool
}

// New returns an Expander seeded with s.
func New(s uint32) *Expander {
	e := &Expander{}
	e.Seed(s)
	return e
}

// Seed resets the stream. The same seed always yields the same stream.
func (e *Expander) Seed(s uint32) {
	e.pcg.Seed(uint64(s), streamKey)
	e.seeded = true
}

// Uint64 returns the next 64 bits of the stream.
func (e *Expander) Uint64() uint64 {
	if !e.seeded {
		e.Seed(0)
	}
	return e.pcg.Uint64()
}

// Uint32 returns the upper 32 bits of the next stream value.
func (e *Expander) Uint32() uint32 {
	return uint32(e.Uint64() >> 32)
}

// NonZero32 draws until it gets a value that is not zero. Shift-register
// generators use it for words that must never be all-zero.
func (e *Expander) NonZero32() uint32 {
	for {
		if v := e.Uint32(); v != 0 {
			return v
		}
	}
}

// Fill writes successive Uint32 draws into dst.
func (e *Expander) Fill(dst []uint32) {
	for i := range dst {
		dst[i] = e.Uint32()
	}
}
