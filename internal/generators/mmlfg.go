package generators

import (
	"encoding/binary"
	"math/bits"

	"github.com/samcharles93/prngcl/internal/device"
	"github.com/samcharles93/prngcl/internal/prng"
	"github.com/samcharles93/prngcl/internal/seed"
)

const (
	mmlfgLags  = 15
	mmlfgState = mmlfgLags*8 + 8
)

// MMLFG is a middle multiplicative lagged Fibonacci generator: each step
// multiplies two odd 64-bit lags and keeps the middle of the 128-bit
// product. Uint32 returns the upper half of that middle word.
var MMLFG = newStream("MMLFG", 32, 0, 4294967295, twoPow32, mmlfgState,
	[]string{prng.ParamSeed1},
	func() prng.Engine {
		e := &mmlfgEngine{}
		e.init(0)
		return e
	})

type mmlfgEngine struct {
	s    [mmlfgLags]uint64
	i, j int32
}

// init spreads s over the lags with an LCG and forces every lag odd.
func (e *mmlfgEngine) init(s uint64) {
	for k := range e.s {
		s = s*0x3243f6a8885a308d + 1111111111111111111
		e.s[k] = s ^ s>>31 | 1
	}
	e.i = 14
	e.j = 12
}

func (e *mmlfgEngine) Seed(s uint32) {
	e.init(seed.New(s).Uint64())
}

func (e *mmlfgEngine) SetParameters(p prng.Parameters) {
	if e == nil {
		return
	}
	if param, ok := p.Lookup(prng.ParamSeed1); ok {
		e.init(uint64(param.Value))
	}
}

func (e *mmlfgEngine) next() uint64 {
	hi, lo := bits.Mul64(e.s[e.i], e.s[e.j])
	e.s[e.i] = lo
	e.i--
	if e.i < 0 {
		e.i = mmlfgLags - 1
	}
	e.j--
	if e.j < 0 {
		e.j = mmlfgLags - 1
	}
	return hi<<32 | lo>>32
}

func (e *mmlfgEngine) Uint32() uint32 {
	return uint32(e.next() >> 32)
}

func (e *mmlfgEngine) Float64() float64 {
	return float64(e.Uint32()) / twoPow32
}

func (e *mmlfgEngine) DeviceInit(ctx device.Context, run *prng.RunParameters) error {
	if e == nil {
		return prng.ErrNoState
	}
	return prng.ProvisionStreams(MMLFG, ctx, run, e)
}

func (e *mmlfgEngine) CompileOptions(ctx device.Context, run *prng.RunParameters) prng.Options {
	if ctx == nil || e == nil || run == nil {
		return nil
	}
	return streamOptions(MMLFG, intDefine("MMLFG_LAGS", mmlfgLags))
}

func (e *mmlfgEngine) MarshalBinary() ([]byte, error) {
	b := make([]byte, 0, mmlfgState)
	for _, v := range e.s {
		b = binary.LittleEndian.AppendUint64(b, v)
	}
	return putWords(b, uint32(e.i), uint32(e.j)), nil
}

func (e *mmlfgEngine) UnmarshalBinary(b []byte) error {
	if err := checkState(MMLFG.Name, mmlfgState, b); err != nil {
		return err
	}
	for k := range e.s {
		e.s[k] = binary.LittleEndian.Uint64(b[k*8:])
	}
	var i, j uint32
	readWords(b[mmlfgLags*8:], &i, &j)
	e.i = int32(i % mmlfgLags)
	e.j = int32(j % mmlfgLags)
	return nil
}
