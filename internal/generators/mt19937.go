package generators

import (
	"encoding/binary"

	"github.com/samcharles93/prngcl/internal/device"
	"github.com/samcharles93/prngcl/internal/prng"
	"github.com/samcharles93/prngcl/internal/seed"
)

const (
	mtN        = 624
	mtM        = 397
	mtMatrixA  = 0x9908b0df
	mtUpper    = 0x80000000
	mtLower    = 0x7fffffff
	mtTemperB  = 0x9d2c5680
	mtTemperC  = 0xefc60000
	mtInitMult = 1812433253
	mtState    = (mtN + 1) * 4
)

// MT19937 is the 32-bit Mersenne Twister. Its lane state is large, so
// device runs with many instances need proportionally large seed buffers.
var MT19937 = newStream("MT19937", 32, 0, 4294967295, twoPow32, mtState,
	[]string{prng.ParamSeed1},
	func() prng.Engine {
		e := &mtEngine{}
		e.init(5489)
		return e
	})

type mtEngine struct {
	mt  [mtN]uint32
	mti uint32
}

func (e *mtEngine) init(s uint32) {
	e.mt[0] = s
	for i := 1; i < mtN; i++ {
		e.mt[i] = mtInitMult*(e.mt[i-1]^e.mt[i-1]>>30) + uint32(i)
	}
	e.mti = mtN
}

func (e *mtEngine) Seed(s uint32) {
	e.init(seed.New(s).Uint32())
}

// SetParameters reinitialises the twister from seed1 with the reference
// initialisation, so seed1=5489 reproduces the published test vector.
func (e *mtEngine) SetParameters(p prng.Parameters) {
	if e == nil {
		return
	}
	if v, ok := p.Uint32(prng.ParamSeed1); ok {
		e.init(v)
	}
}

func (e *mtEngine) twist() {
	mag := [2]uint32{0, mtMatrixA}
	var kk int
	for ; kk < mtN-mtM; kk++ {
		y := e.mt[kk]&mtUpper | e.mt[kk+1]&mtLower
		e.mt[kk] = e.mt[kk+mtM] ^ y>>1 ^ mag[y&1]
	}
	for ; kk < mtN-1; kk++ {
		y := e.mt[kk]&mtUpper | e.mt[kk+1]&mtLower
		e.mt[kk] = e.mt[kk+mtM-mtN] ^ y>>1 ^ mag[y&1]
	}
	y := e.mt[mtN-1]&mtUpper | e.mt[0]&mtLower
	e.mt[mtN-1] = e.mt[mtM-1] ^ y>>1 ^ mag[y&1]
	e.mti = 0
}

func (e *mtEngine) Uint32() uint32 {
	if e.mti >= mtN {
		e.twist()
	}
	y := e.mt[e.mti]
	e.mti++

	y ^= y >> 11
	y ^= y << 7 & mtTemperB
	y ^= y << 15 & mtTemperC
	y ^= y >> 18
	return y
}

func (e *mtEngine) Float64() float64 {
	return float64(e.Uint32()) / twoPow32
}

func (e *mtEngine) DeviceInit(ctx device.Context, run *prng.RunParameters) error {
	if e == nil {
		return prng.ErrNoState
	}
	return prng.ProvisionStreams(MT19937, ctx, run, e)
}

func (e *mtEngine) CompileOptions(ctx device.Context, run *prng.RunParameters) prng.Options {
	if ctx == nil || e == nil || run == nil {
		return nil
	}
	return streamOptions(MT19937, intDefine("MT19937_N", mtN), intDefine("MT19937_M", mtM))
}

func (e *mtEngine) MarshalBinary() ([]byte, error) {
	b := putWords(make([]byte, 0, mtState), e.mt[:]...)
	return binary.LittleEndian.AppendUint32(b, e.mti), nil
}

func (e *mtEngine) UnmarshalBinary(b []byte) error {
	if err := checkState(MT19937.Name, mtState, b); err != nil {
		return err
	}
	for i := range e.mt {
		e.mt[i] = binary.LittleEndian.Uint32(b[i*4:])
	}
	e.mti = min(binary.LittleEndian.Uint32(b[mtN*4:]), mtN)
	return nil
}
