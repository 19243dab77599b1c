package generators

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/samcharles93/prngcl/internal/device"
	"github.com/samcharles93/prngcl/internal/prng"
)

// ErrStateSize is returned by UnmarshalBinary for a blob of the wrong length.
var ErrStateSize = errors.New("generators: state blob size mismatch")

func putWords(dst []byte, words ...uint32) []byte {
	for _, w := range words {
		dst = binary.LittleEndian.AppendUint32(dst, w)
	}
	return dst
}

func readWords(src []byte, dst ...*uint32) {
	for i, w := range dst {
		*w = binary.LittleEndian.Uint32(src[i*4:])
	}
}

func checkState(name string, want int, b []byte) error {
	if len(b) != want {
		return fmt.Errorf("%w: %s state is %d bytes, got %d", ErrStateSize, name, want, len(b))
	}
	return nil
}

// below1 keeps single-precision outputs inside [0, 1) after rounding to
// float32.
var below1 = float64(math.Nextafter32(1, 0))

func singleValue(e prng.Engine) float64 {
	v := float64(float32(e.Float64()))
	if v >= 1 {
		return below1
	}
	return v
}

// streamKernels emulates the init and production kernels shared by every
// algorithm whose lanes carry their own state. The init kernel copies the
// lane's input seed into the working seed buffer; the production kernel
// restores the lane engine, writes Samples vectors and saves the state back.
func streamKernels(d *prng.Descriptor) device.Kernels {
	k := device.Kernels{
		d.ProductionKernel: func(ctx context.Context, env device.Env, lane int) error {
			return streamSeries(ctx, d, env, lane)
		},
	}
	if d.InitKernel != "" {
		k[d.InitKernel] = func(_ context.Context, env device.Env, lane int) error {
			return streamInit(d, env, lane)
		}
	}
	return k
}

func laneState(d *prng.Descriptor, buf []byte, lane int) []byte {
	return buf[lane*d.StateSize : (lane+1)*d.StateSize]
}

func streamInit(d *prng.Descriptor, env device.Env, lane int) error {
	l := env.Launch()
	in, err := env.Buffer(l.InputSeeds)
	if err != nil {
		return fmt.Errorf("%s: input seeds: %w", d.InitKernel, err)
	}
	work, err := env.Buffer(l.Seeds)
	if err != nil {
		return fmt.Errorf("%s: seeds: %w", d.InitKernel, err)
	}
	copy(laneState(d, work, lane), laneState(d, in, lane))
	return nil
}

func streamSeries(ctx context.Context, d *prng.Descriptor, env device.Env, lane int) error {
	l := env.Launch()
	work, err := env.Buffer(l.Seeds)
	if err != nil {
		return fmt.Errorf("%s: seeds: %w", d.ProductionKernel, err)
	}
	out, err := env.Buffer(l.Randoms)
	if err != nil {
		return fmt.Errorf("%s: randoms: %w", d.ProductionKernel, err)
	}

	state := laneState(d, work, lane)
	e := d.New()
	if err := e.UnmarshalBinary(state); err != nil {
		return fmt.Errorf("%s: lane %d: %w", d.ProductionKernel, lane, err)
	}

	var v [device.VectorWidth]float64
	for s := range l.Samples {
		if s%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		for c := range v {
			if l.Double {
				v[c] = d.Promote(e)
			} else {
				v[c] = singleValue(e)
			}
		}
		device.PutVector(out, l.Slot(lane, s), l.Double, v)
	}

	blob, err := e.MarshalBinary()
	if err != nil {
		return fmt.Errorf("%s: lane %d: %w", d.ProductionKernel, lane, err)
	}
	copy(state, blob)
	return nil
}

// newStream builds the descriptor of a stream algorithm with one state per
// lane, an init kernel and a production kernel. Floating bounds are derived
// from the integer bounds so they match the divisor exactly.
func newStream(name string, bitness int, minU, maxU uint32, divisor float64, stateSize int, params []string, fn func() prng.Engine) *prng.Descriptor {
	lower := strings.ToLower(name)
	return &prng.Descriptor{
		Name:             name,
		Bitness:          bitness,
		Output:           prng.OutputSingle,
		MinUint:          minU,
		MaxUint:          maxU,
		MinFP:            float64(minU) / divisor,
		MaxFP:            float64(maxU) / divisor,
		Divisor:          divisor,
		K:                1 / divisor,
		StateSize:        stateSize,
		Params:           params,
		Source:           "prngcl_" + lower + ".cl",
		InitKernel:       lower + "_init",
		ProductionKernel: lower + "_series",
		New:              fn,
	}
}

// streamOptions is the common part of a stream engine's compile options:
// the per-lane state size followed by algorithm constants.
func streamOptions(d *prng.Descriptor, consts ...prng.Define) prng.Options {
	return prng.Options{}.
		Set(d.Name+"_STATE_SIZE", prng.Int(int64(d.StateSize))).
		Append(consts...)
}

func intDefine(name string, v int64) prng.Define {
	return prng.Define{Name: name, Value: prng.Int(v)}
}
