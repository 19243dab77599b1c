package generators

import (
	"github.com/samcharles93/prngcl/internal/device"
	"github.com/samcharles93/prngcl/internal/prng"
	"github.com/samcharles93/prngcl/internal/seed"
)

// Park–Miller minimal standard: x' = 16807·x mod (2^31 - 1).
const (
	pmA = 16807
	pmM = 2147483647
)

// PM is the Park–Miller minimal standard multiplicative congruential
// generator. Outputs lie in [1, 2^31-2] and zero is never produced.
var PM = newStream("PM", 31, 1, pmM-1, pmM, 4, []string{prng.ParamSeed1}, func() prng.Engine {
	return &pmEngine{x: 1}
})

type pmEngine struct {
	x uint32
}

func (e *pmEngine) Seed(s uint32) {
	e.x = seed.New(s).Uint32()%(pmM-1) + 1
}

func (e *pmEngine) SetParameters(p prng.Parameters) {
	if e == nil {
		return
	}
	if v, ok := p.Uint32(prng.ParamSeed1); ok {
		e.x = pmFix(v)
	}
}

// pmFix maps v into the generator's cycle. Zero and multiples of m are
// fixed points and would stall the stream.
func pmFix(v uint32) uint32 {
	v %= pmM
	if v == 0 {
		return 1
	}
	return v
}

func (e *pmEngine) Uint32() uint32 {
	e.x = uint32(uint64(e.x) * pmA % pmM)
	return e.x
}

func (e *pmEngine) Float64() float64 {
	return float64(e.Uint32()) / pmM
}

func (e *pmEngine) DeviceInit(ctx device.Context, run *prng.RunParameters) error {
	if e == nil {
		return prng.ErrNoState
	}
	return prng.ProvisionStreams(PM, ctx, run, e)
}

func (e *pmEngine) CompileOptions(ctx device.Context, run *prng.RunParameters) prng.Options {
	if ctx == nil || e == nil || run == nil {
		return nil
	}
	return streamOptions(PM, intDefine("PM_A", pmA), intDefine("PM_M", pmM))
}

func (e *pmEngine) MarshalBinary() ([]byte, error) {
	return putWords(make([]byte, 0, 4), e.x), nil
}

func (e *pmEngine) UnmarshalBinary(b []byte) error {
	if err := checkState(PM.Name, PM.StateSize, b); err != nil {
		return err
	}
	readWords(b, &e.x)
	e.x = pmFix(e.x)
	return nil
}
