package prng

import (
	"encoding"
	"fmt"
	"math"

	"github.com/samcharles93/prngcl/internal/device"
)

// OutputKind classifies the floating output convention of an algorithm.
type OutputKind int

const (
	OutputSingle OutputKind = iota
	OutputDouble
)

func (k OutputKind) String() string {
	if k == OutputDouble {
		return "double"
	}
	return "single"
}

// Engine is one generator instance. Its state is private to the
// implementation; MarshalBinary exposes it as an opaque blob of exactly
// Descriptor.StateSize bytes.
type Engine interface {
	// Seed derives the full state from seed. Same seed, same state.
	Seed(seed uint32)
	// SetParameters overwrites state fields named in p. Names the
	// algorithm does not know are ignored.
	SetParameters(p Parameters)
	// Uint32 advances by one output and returns it.
	Uint32() uint32
	// Float64 returns Uint32 scaled by the algorithm's divisor.
	Float64() float64
	// DeviceInit provisions the session buffers and records their
	// handles in run. It does not advance the engine's host stream.
	DeviceInit(ctx device.Context, run *RunParameters) error
	// CompileOptions returns the defines the device kernel needs. It is
	// nil when ctx or the engine is nil.
	CompileOptions(ctx device.Context, run *RunParameters) Options

	encoding.BinaryMarshaler
	encoding.BinaryUnmarshaler
}

// Descriptor is the immutable capability table of one algorithm.
type Descriptor struct {
	Name    string
	Bitness int
	Output  OutputKind

	MinUint uint32
	MaxUint uint32
	MinFP   float64
	MaxFP   float64
	// Divisor maps raw outputs to floating outputs.
	Divisor float64
	// K is the single-to-double promotion constant; zero disables promotion.
	K float64

	StateSize int
	// Params lists the parameter names SetParameters honours.
	Params []string

	Source           string
	InitKernel       string
	ProductionKernel string

	New func() Engine
}

// Instantiate creates an engine, seeds it and applies params.
func (d *Descriptor) Instantiate(seed uint32, params Parameters) Engine {
	e := d.New()
	e.Seed(seed)
	e.SetParameters(params)
	return e
}

// Promote returns a double-precision value from e. With K set it combines
// two draws as u1 + K*u2, clamped to PromotedMax; otherwise it is a single
// Float64 draw.
func (d *Descriptor) Promote(e Engine) float64 {
	u := e.Float64()
	if d.K == 0 {
		return u
	}
	return min(u+d.K*e.Float64(), d.PromotedMax())
}

// PromotedMax is the largest value Promote returns: MaxFP + K*MaxFP, kept
// strictly below 1. Near-full-range generators round that sum to 1.0.
func (d *Descriptor) PromotedMax() float64 {
	if d.K == 0 {
		return d.MaxFP
	}
	return min(d.MaxFP+d.K*d.MaxFP, math.Nextafter(1, 0))
}

// HasInitKernel reports whether the device session needs an init dispatch.
func (d *Descriptor) HasInitKernel() bool { return d.InitKernel != "" }

// Validate checks the invariants every registered descriptor must hold.
func (d *Descriptor) Validate() error {
	switch {
	case d == nil:
		return fmt.Errorf("%w: nil descriptor", ErrInvalidDescriptor)
	case d.Name == "":
		return fmt.Errorf("%w: empty name", ErrInvalidDescriptor)
	case d.New == nil:
		return fmt.Errorf("%w: %s: no constructor", ErrInvalidDescriptor, d.Name)
	case d.ProductionKernel == "":
		return fmt.Errorf("%w: %s: no production kernel", ErrInvalidDescriptor, d.Name)
	case d.MinUint >= d.MaxUint:
		return fmt.Errorf("%w: %s: min_uint %d >= max_uint %d", ErrInvalidDescriptor, d.Name, d.MinUint, d.MaxUint)
	case d.Divisor <= 0:
		return fmt.Errorf("%w: %s: divisor %v", ErrInvalidDescriptor, d.Name, d.Divisor)
	case d.MinFP != float64(d.MinUint)/d.Divisor:
		return fmt.Errorf("%w: %s: min_fp %v != %d/%v", ErrInvalidDescriptor, d.Name, d.MinFP, d.MinUint, d.Divisor)
	case d.MaxFP != float64(d.MaxUint)/d.Divisor:
		return fmt.Errorf("%w: %s: max_fp %v != %d/%v", ErrInvalidDescriptor, d.Name, d.MaxFP, d.MaxUint, d.Divisor)
	case d.StateSize <= 0:
		return fmt.Errorf("%w: %s: state size %d", ErrInvalidDescriptor, d.Name, d.StateSize)
	}
	blob, err := d.New().MarshalBinary()
	if err != nil {
		return fmt.Errorf("%w: %s: marshal state: %w", ErrInvalidDescriptor, d.Name, err)
	}
	if len(blob) != d.StateSize {
		return fmt.Errorf("%w: %s: state blob is %d bytes, declared %d", ErrInvalidDescriptor, d.Name, len(blob), d.StateSize)
	}
	return nil
}
