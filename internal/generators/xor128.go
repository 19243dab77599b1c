package generators

import (
	"github.com/samcharles93/prngcl/internal/device"
	"github.com/samcharles93/prngcl/internal/prng"
	"github.com/samcharles93/prngcl/internal/seed"
)

const twoPow32 = 4294967296.0

// XOR128 is Marsaglia's xorshift128 over four 32-bit words, period 2^128-1.
var XOR128 = newStream("XOR128", 32, 0, 4294967295, twoPow32, 16,
	[]string{prng.ParamSeed1, prng.ParamSeed2, prng.ParamSeed3, prng.ParamSeed4},
	func() prng.Engine { return &xor128Engine{x: 123456789, y: 362436069, z: 521288629, w: 88675123} })

type xor128Engine struct {
	x, y, z, w uint32
}

func (e *xor128Engine) Seed(s uint32) {
	ex := seed.New(s)
	e.x, e.y, e.z, e.w = ex.Uint32(), ex.Uint32(), ex.Uint32(), ex.Uint32()
	e.fix()
}

func (e *xor128Engine) SetParameters(p prng.Parameters) {
	if e == nil {
		return
	}
	for i, w := range []*uint32{&e.x, &e.y, &e.z, &e.w} {
		if v, ok := p.Uint32(XOR128.Params[i]); ok {
			*w = v
		}
	}
	e.fix()
}

// The all-zero state is the one fixed point of the recurrence.
func (e *xor128Engine) fix() {
	if e.x|e.y|e.z|e.w == 0 {
		e.x = 1
	}
}

func (e *xor128Engine) Uint32() uint32 {
	t := e.x ^ e.x<<11
	e.x, e.y, e.z = e.y, e.z, e.w
	e.w = e.w ^ e.w>>19 ^ (t ^ t>>8)
	return e.w
}

func (e *xor128Engine) Float64() float64 {
	return float64(e.Uint32()) / twoPow32
}

func (e *xor128Engine) DeviceInit(ctx device.Context, run *prng.RunParameters) error {
	if e == nil {
		return prng.ErrNoState
	}
	return prng.ProvisionStreams(XOR128, ctx, run, e)
}

func (e *xor128Engine) CompileOptions(ctx device.Context, run *prng.RunParameters) prng.Options {
	if ctx == nil || e == nil || run == nil {
		return nil
	}
	return streamOptions(XOR128,
		intDefine("XOR128_A", 11),
		intDefine("XOR128_B", 8),
		intDefine("XOR128_C", 19))
}

func (e *xor128Engine) MarshalBinary() ([]byte, error) {
	return putWords(make([]byte, 0, 16), e.x, e.y, e.z, e.w), nil
}

func (e *xor128Engine) UnmarshalBinary(b []byte) error {
	if err := checkState(XOR128.Name, XOR128.StateSize, b); err != nil {
		return err
	}
	readWords(b, &e.x, &e.y, &e.z, &e.w)
	e.fix()
	return nil
}
