package generators

import (
	"github.com/samcharles93/prngcl/internal/device"
	"github.com/samcharles93/prngcl/internal/prng"
	"github.com/samcharles93/prngcl/internal/seed"
)

// TAUS is L'Ecuyer's three-component combined Tausworthe generator
// (taus88), period about 2^88.
var TAUS = newStream("TAUS", 32, 0, 4294967295, twoPow32, 12,
	[]string{prng.ParamSeed1, prng.ParamSeed2, prng.ParamSeed3},
	func() prng.Engine { return &tausEngine{s1: 2, s2: 8, s3: 16} })

type tausEngine struct {
	s1, s2, s3 uint32
}

func (e *tausEngine) Seed(s uint32) {
	ex := seed.New(s)
	e.s1, e.s2, e.s3 = ex.Uint32(), ex.Uint32(), ex.Uint32()
	e.fix()
}

func (e *tausEngine) SetParameters(p prng.Parameters) {
	if e == nil {
		return
	}
	for i, w := range []*uint32{&e.s1, &e.s2, &e.s3} {
		if v, ok := p.Uint32(TAUS.Params[i]); ok {
			*w = v
		}
	}
	e.fix()
}

// Each component needs its significant bits non-zero: s1 >= 2, s2 >= 8,
// s3 >= 16.
func (e *tausEngine) fix() {
	if e.s1 < 2 {
		e.s1 += 2
	}
	if e.s2 < 8 {
		e.s2 += 8
	}
	if e.s3 < 16 {
		e.s3 += 16
	}
}

func (e *tausEngine) Uint32() uint32 {
	e.s1 = (e.s1&0xfffffffe)<<12 ^ (e.s1<<13^e.s1)>>19
	e.s2 = (e.s2&0xfffffff8)<<4 ^ (e.s2<<2^e.s2)>>25
	e.s3 = (e.s3&0xfffffff0)<<17 ^ (e.s3<<3^e.s3)>>11
	return e.s1 ^ e.s2 ^ e.s3
}

func (e *tausEngine) Float64() float64 {
	return float64(e.Uint32()) / twoPow32
}

func (e *tausEngine) DeviceInit(ctx device.Context, run *prng.RunParameters) error {
	if e == nil {
		return prng.ErrNoState
	}
	return prng.ProvisionStreams(TAUS, ctx, run, e)
}

func (e *tausEngine) CompileOptions(ctx device.Context, run *prng.RunParameters) prng.Options {
	if ctx == nil || e == nil || run == nil {
		return nil
	}
	return streamOptions(TAUS)
}

func (e *tausEngine) MarshalBinary() ([]byte, error) {
	return putWords(make([]byte, 0, 12), e.s1, e.s2, e.s3), nil
}

func (e *tausEngine) UnmarshalBinary(b []byte) error {
	if err := checkState(TAUS.Name, TAUS.StateSize, b); err != nil {
		return err
	}
	readWords(b, &e.s1, &e.s2, &e.s3)
	e.fix()
	return nil
}
