package prng

import (
	"fmt"
	"math"
	"strings"

	"github.com/samcharles93/prngcl/internal/device"
)

// Precision selects the device output element type.
type Precision int

const (
	Single Precision = iota
	Double
)

func (p Precision) String() string {
	if p == Double {
		return "double"
	}
	return "single"
}

// ParsePrecision accepts "single"/"float" and "double".
func ParsePrecision(s string) (Precision, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "single", "float", "float32":
		return Single, nil
	case "double", "float64":
		return Double, nil
	default:
		return Single, fmt.Errorf("unknown precision %q (expected single or double)", s)
	}
}

// VectorWidth is the number of values per output element. Every device
// kernel writes 4-wide vectors.
const VectorWidth = device.VectorWidth

// ElemSize is the byte size of one output element.
func (p Precision) ElemSize() int {
	if p == Double {
		return VectorWidth * 8
	}
	return VectorWidth * 4
}

// RunParameters describes one device session. Buffer handles are written
// once by DeviceInit and read by dispatch code afterwards.
type RunParameters struct {
	Instances int
	Samples   int
	Precision Precision

	InputSeeds device.Handle
	Seeds      device.Handle
	Randoms    device.Handle

	// RandomsCount is the aligned element count of the randoms buffer.
	RandomsCount int

	provisioned bool
}

// NewRunParameters returns parameters with every handle unset.
func NewRunParameters(instances, samples int, precision Precision) *RunParameters {
	return &RunParameters{
		Instances:  instances,
		Samples:    samples,
		Precision:  precision,
		InputSeeds: device.NoBuffer,
		Seeds:      device.NoBuffer,
		Randoms:    device.NoBuffer,
	}
}

// Total is instances*samples, the number of output elements requested.
func (r *RunParameters) Total() (int, error) {
	if r.Instances < 1 || r.Samples < 1 {
		return 0, fmt.Errorf("%w: instances=%d samples=%d", ErrBadRun, r.Instances, r.Samples)
	}
	if r.Instances > math.MaxInt/r.Samples {
		return 0, fmt.Errorf("%w: instances=%d samples=%d overflows", ErrBadRun, r.Instances, r.Samples)
	}
	return r.Instances * r.Samples, nil
}

// Provisioned reports whether DeviceInit has completed for r.
func (r *RunParameters) Provisioned() bool { return r.provisioned }

// Launch converts r into a dispatch argument block.
func (r *RunParameters) Launch() device.Launch {
	return device.Launch{
		Instances:  r.Instances,
		Samples:    r.Samples,
		Double:     r.Precision == Double,
		InputSeeds: r.InputSeeds,
		Seeds:      r.Seeds,
		Randoms:    r.Randoms,
	}
}
