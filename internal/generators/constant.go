package generators

import (
	"context"
	"encoding/binary"
	"fmt"
	"strconv"

	"github.com/samcharles93/prngcl/internal/device"
	"github.com/samcharles93/prngcl/internal/prng"
	"github.com/samcharles93/prngcl/internal/seed"
)

const (
	constantM     = 4294967296.0
	constantMax   = 4294967295
	constantState = 4

	// DefineConstantFP carries the constant into the kernel source.
	DefineConstantFP = "CONSTANT_FP"
)

// Constant returns the same value on every draw. It exists for
// reproducible debugging of device pipelines and is useless for
// simulation.
var Constant = &prng.Descriptor{
	Name:             "CONSTANT",
	Bitness:          32,
	Output:           prng.OutputDouble,
	MinUint:          0,
	MaxUint:          constantMax,
	MinFP:            0.0,
	MaxFP:            constantMax / constantM,
	Divisor:          constantM,
	K:                0.0,
	StateSize:        constantState,
	Params:           []string{prng.ParamSeed1},
	Source:           "prngcl_constant.cl",
	ProductionKernel: "constant_series",
	New:              func() prng.Engine { return &constantEngine{} },
}

type constantEngine struct {
	x uint32
}

func (e *constantEngine) Seed(s uint32) {
	e.x = seed.New(s).Uint32()
}

func (e *constantEngine) SetParameters(p prng.Parameters) {
	if e == nil {
		return
	}
	if v, ok := p.Uint32(prng.ParamSeed1); ok {
		e.x = v
	}
}

func (e *constantEngine) Uint32() uint32 { return e.x }

func (e *constantEngine) Float64() float64 {
	return float64(e.Uint32()) / constantM
}

// DeviceInit allocates only the randoms buffer: every lane reproduces the
// same constant, so there is no device seed state.
func (e *constantEngine) DeviceInit(ctx device.Context, run *prng.RunParameters) error {
	if e == nil {
		return prng.ErrNoState
	}
	return prng.ProvisionOutputOnly(Constant, ctx, run)
}

// CompileOptions embeds x/2^32 so the kernel returns a literal instead of
// reading a buffer.
func (e *constantEngine) CompileOptions(ctx device.Context, run *prng.RunParameters) prng.Options {
	if ctx == nil || e == nil || run == nil {
		return nil
	}
	return prng.Options{}.Set(DefineConstantFP, prng.FloatLiteral(float64(e.x)/constantM, run.Precision))
}

func (e *constantEngine) MarshalBinary() ([]byte, error) {
	return binary.LittleEndian.AppendUint32(make([]byte, 0, constantState), e.x), nil
}

func (e *constantEngine) UnmarshalBinary(b []byte) error {
	if err := checkState(Constant.Name, constantState, b); err != nil {
		return err
	}
	e.x = binary.LittleEndian.Uint32(b)
	return nil
}

// constantSeries fills the lane's slots with the compiled-in constant.
func constantSeries(_ context.Context, env device.Env, lane int) error {
	l := env.Launch()
	raw, ok := env.Define(DefineConstantFP)
	if !ok {
		return fmt.Errorf("constant_series: %s not defined", DefineConstantFP)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("constant_series: %s: %w", DefineConstantFP, err)
	}
	out, err := env.Buffer(l.Randoms)
	if err != nil {
		return err
	}
	if !l.Double && float32(v) >= 1 {
		v = below1
	}
	vec := [device.VectorWidth]float64{v, v, v, v}
	for s := range l.Samples {
		device.PutVector(out, l.Slot(lane, s), l.Double, vec)
	}
	return nil
}
