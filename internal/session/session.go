// Package session drives one engine through a complete device run:
// provisioning, compilation, the optional init dispatch, the production
// dispatch and read-back of the randoms buffer.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/samcharles93/prngcl/internal/device"
	"github.com/samcharles93/prngcl/internal/logger"
	"github.com/samcharles93/prngcl/internal/prng"
)

// Request is the input of Run. Engine must already be seeded and have its
// parameters applied.
type Request struct {
	Descriptor *prng.Descriptor
	Engine     prng.Engine
	Run        *prng.RunParameters
}

// Result is what a finished run produced.
type Result struct {
	ID          string
	Generator   string
	Accelerator string
	Options     string
	Instances   int
	Samples     int
	Precision   prng.Precision
	Buffers     []device.BufferInfo
	// Values holds Instances*Samples vectors flattened in slot order:
	// sample-major, then lane, then vector component.
	Values   []float64
	Duration time.Duration
}

// Lane returns the values lane produced, in sample order.
func (r *Result) Lane(lane int) []float64 {
	if r == nil || lane < 0 || lane >= r.Instances {
		return nil
	}
	out := make([]float64, 0, r.Samples*device.VectorWidth)
	for s := range r.Samples {
		base := (s*r.Instances + lane) * device.VectorWidth
		out = append(out, r.Values[base:base+device.VectorWidth]...)
	}
	return out
}

// Run executes req on acc. The accelerator is left open so callers can
// inspect its buffer table; closing it releases the staging memory.
func Run(ctx context.Context, acc device.Accelerator, req Request, log logger.Logger) (*Result, error) {
	if ctx == nil {
		return nil, fmt.Errorf("context is required")
	}
	if acc == nil {
		return nil, prng.ErrNoContext
	}
	d, e, run := req.Descriptor, req.Engine, req.Run
	if d == nil {
		return nil, fmt.Errorf("%w: nil descriptor", prng.ErrInvalidDescriptor)
	}
	if e == nil {
		return nil, prng.ErrNoState
	}
	if run == nil {
		return nil, prng.ErrNoRun
	}

	id := "run_" + uuid.NewString()
	log = logger.OrDiscard(log).With("run_id", id, "generator", d.Name, "accelerator", acc.Name())
	start := time.Now()

	if err := e.DeviceInit(acc, run); err != nil {
		return nil, fmt.Errorf("device init: %w", err)
	}
	log.Debug("provisioned",
		"instances", run.Instances, "samples", run.Samples,
		"precision", run.Precision.String(), "randoms_count", run.RandomsCount)

	opts := prng.BaseOptions(d, run).Append(e.CompileOptions(acc, run)...)
	prog, err := acc.Compile(d.Source, opts.String())
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", d.Source, err)
	}

	launch := run.Launch()
	if d.HasInitKernel() {
		if err := prog.Run(ctx, d.InitKernel, launch); err != nil {
			return nil, err
		}
	}
	if err := prog.Run(ctx, d.ProductionKernel, launch); err != nil {
		return nil, err
	}

	raw, err := acc.ReadBuffer(run.Randoms)
	if err != nil {
		return nil, fmt.Errorf("read randoms: %w", err)
	}
	total, err := run.Total()
	if err != nil {
		return nil, err
	}
	if len(raw) < total*run.Precision.ElemSize() {
		return nil, errors.New("read randoms: short buffer")
	}

	res := &Result{
		ID:          id,
		Generator:   d.Name,
		Accelerator: acc.Name(),
		Options:     opts.String(),
		Instances:   run.Instances,
		Samples:     run.Samples,
		Precision:   run.Precision,
		Buffers:     acc.Buffers(),
		Values:      device.Flatten(raw, total, run.Precision == prng.Double),
		Duration:    time.Since(start),
	}
	log.Info("run finished", "values", len(res.Values), "duration", res.Duration)
	return res, nil
}
