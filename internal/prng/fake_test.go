package prng

import (
	"encoding/binary"
	"errors"

	"github.com/samcharles93/prngcl/internal/device"
)

// counterEngine yields seed, seed+1, ... and is enough to drive the
// provisioning and registry paths without a real algorithm.
type counterEngine struct {
	n uint32
}

func newCounter() Engine { return &counterEngine{} }

func (e *counterEngine) Seed(s uint32) { e.n = s }

func (e *counterEngine) SetParameters(p Parameters) {
	if v, ok := p.Uint32(ParamSeed1); ok {
		e.n = v
	}
}

func (e *counterEngine) Uint32() uint32 {
	v := e.n
	e.n++
	return v
}

func (e *counterEngine) Float64() float64 { return float64(e.Uint32()) / 4294967296.0 }

func (e *counterEngine) DeviceInit(ctx device.Context, run *RunParameters) error {
	return ProvisionStreams(counterDesc, ctx, run, e)
}

func (e *counterEngine) CompileOptions(ctx device.Context, run *RunParameters) Options {
	if ctx == nil || e == nil {
		return nil
	}
	return Options{}.Set("COUNTER_START", Int(int64(e.n)))
}

func (e *counterEngine) MarshalBinary() ([]byte, error) {
	return binary.LittleEndian.AppendUint32(nil, e.n), nil
}

func (e *counterEngine) UnmarshalBinary(b []byte) error {
	if len(b) != 4 {
		return errors.New("counter: bad state")
	}
	e.n = binary.LittleEndian.Uint32(b)
	return nil
}

var counterDesc = &Descriptor{
	Name:             "COUNTER",
	Bitness:          32,
	MinUint:          0,
	MaxUint:          4294967295,
	MinFP:            0,
	MaxFP:            4294967295.0 / 4294967296.0,
	Divisor:          4294967296.0,
	StateSize:        4,
	Params:           []string{ParamSeed1},
	Source:           "counter.cl",
	InitKernel:       "counter_init",
	ProductionKernel: "counter_series",
	New:              newCounter,
}

type allocation struct {
	staging  device.Staging
	kind     device.BufferKind
	count    int
	elemSize int
	name     string
}

type fakeContext struct {
	align  int
	allocs []*allocation
	fail   error
}

func (c *fakeContext) AllocateBuffer(s device.Staging, kind device.BufferKind, count, elemSize int) (device.Handle, error) {
	if c.fail != nil {
		return device.NoBuffer, c.fail
	}
	c.allocs = append(c.allocs, &allocation{staging: s, kind: kind, count: count, elemSize: elemSize})
	return device.Handle(len(c.allocs) - 1), nil
}

func (c *fakeContext) AlignBufferSize(n int) int {
	return (n + c.align - 1) / c.align * c.align
}

func (c *fakeContext) NameBuffer(h device.Handle, label string) {
	if h.Valid() && int(h) < len(c.allocs) {
		c.allocs[h].name = label
	}
}

func (c *fakeContext) release() {
	for _, a := range c.allocs {
		_ = a.staging.Free()
	}
}
