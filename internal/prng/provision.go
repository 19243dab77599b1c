package prng

import (
	"fmt"

	"github.com/samcharles93/prngcl/internal/device"
	"github.com/samcharles93/prngcl/internal/hostmem"
)

// Buffer roles, used in diagnostic labels.
const (
	RoleInputSeeds = "PRNG_input_seeds"
	RoleSeeds      = "PRNG_seeds"
	RoleRandoms    = "PRNG_randoms"
)

// Label is the diagnostic name of a buffer: "(NAME) role".
func Label(name, role string) string {
	return "(" + name + ") " + role
}

// stageAlloc is swapped by tests to simulate exhaustion.
var stageAlloc = func(size int) (device.Staging, error) {
	return hostmem.Alloc(size)
}

// Provisioner sizes and allocates the buffers of one device session.
// Handles are collected and written to the run parameters by Commit.
type Provisioner struct {
	desc *Descriptor
	ctx  device.Context
	run  *RunParameters

	total   int
	aligned int
}

// NewProvisioner checks the session inputs. It does not allocate.
func NewProvisioner(desc *Descriptor, ctx device.Context, run *RunParameters) (*Provisioner, error) {
	if ctx == nil {
		return nil, ErrNoContext
	}
	if run == nil {
		return nil, ErrNoRun
	}
	if desc == nil {
		return nil, fmt.Errorf("%w: nil descriptor", ErrInvalidDescriptor)
	}
	if run.provisioned {
		return nil, ErrAlreadyProvisioned
	}
	total, err := run.Total()
	if err != nil {
		return nil, err
	}
	return &Provisioner{
		desc:    desc,
		ctx:     ctx,
		run:     run,
		total:   total,
		aligned: ctx.AlignBufferSize(total),
	}, nil
}

// Total is instances*samples.
func (p *Provisioner) Total() int { return p.total }

// Aligned is Total rounded up to the context's alignment quantum.
func (p *Provisioner) Aligned() int { return p.aligned }

// Randoms allocates the output buffer: Aligned elements of 4-wide single
// or double vectors, depending on the run precision.
func (p *Provisioner) Randoms() (device.Handle, error) {
	elem := p.run.Precision.ElemSize()
	what := fmt.Sprintf("randoms (%d×%s4)", p.aligned, precisionType(p.run.Precision))
	return p.allocate(what, RoleRandoms, device.BufferIO, p.aligned, elem, nil)
}

// InputSeeds allocates one StateSize element per instance and lets fill
// write each lane's initial state.
func (p *Provisioner) InputSeeds(fill func(lane int, dst []byte) error) (device.Handle, error) {
	what := fmt.Sprintf("input seeds (%d×%d bytes)", p.run.Instances, p.desc.StateSize)
	return p.allocate(what, RoleInputSeeds, device.BufferInput, p.run.Instances, p.desc.StateSize, fill)
}

// WorkingSeeds allocates the per-lane state the kernels read and write.
func (p *Provisioner) WorkingSeeds() (device.Handle, error) {
	what := fmt.Sprintf("working seeds (%d×%d bytes)", p.run.Instances, p.desc.StateSize)
	return p.allocate(what, RoleSeeds, device.BufferIO, p.run.Instances, p.desc.StateSize, nil)
}

// Commit records the handles in the run parameters and closes the session
// for further provisioning. Unused slots must be device.NoBuffer.
func (p *Provisioner) Commit(inputSeeds, seeds, randoms device.Handle) {
	p.run.InputSeeds = inputSeeds
	p.run.Seeds = seeds
	p.run.Randoms = randoms
	p.run.RandomsCount = p.aligned
	p.run.provisioned = true
}

func (p *Provisioner) allocate(what, role string, kind device.BufferKind, count, elem int, fill func(int, []byte) error) (device.Handle, error) {
	staging, err := stageAlloc(count * elem)
	if err != nil {
		return device.NoBuffer, fatal(fmt.Errorf("%w: %s: could not allocate memory for %s: %w", ErrNoMemory, p.desc.Name, what, err))
	}
	if fill != nil {
		buf := staging.Bytes()
		for lane := range count {
			if err := fill(lane, buf[lane*elem:(lane+1)*elem]); err != nil {
				_ = staging.Free()
				return device.NoBuffer, fmt.Errorf("%s: fill %s lane %d: %w", p.desc.Name, role, lane, err)
			}
		}
	}
	h, err := p.ctx.AllocateBuffer(staging, kind, count, elem)
	if err != nil {
		_ = staging.Free()
		return device.NoBuffer, fmt.Errorf("%s: allocate %s: %w", p.desc.Name, role, err)
	}
	p.ctx.NameBuffer(h, Label(p.desc.Name, role))
	return h, nil
}

func precisionType(p Precision) string {
	if p == Double {
		return "double"
	}
	return "float"
}

// ProvisionOutputOnly is DeviceInit for algorithms without device seed
// state: only the randoms buffer is allocated and both seed slots are
// marked NoBuffer.
func ProvisionOutputOnly(desc *Descriptor, ctx device.Context, run *RunParameters) error {
	p, err := NewProvisioner(desc, ctx, run)
	if err != nil {
		return err
	}
	randoms, err := p.Randoms()
	if err != nil {
		return err
	}
	p.Commit(device.NoBuffer, device.NoBuffer, randoms)
	return nil
}

// ProvisionStreams is DeviceInit for stream algorithms. Lane i starts from
// the state of a fresh engine seeded with the i-th Uint32 drawn from a copy
// of parent, so a seeded parent gives a reproducible device session and its
// own host stream is left where it was.
func ProvisionStreams(desc *Descriptor, ctx device.Context, run *RunParameters, parent Engine) error {
	if parent == nil {
		return ErrNoState
	}
	src, err := cloneEngine(desc, parent)
	if err != nil {
		return err
	}
	p, err := NewProvisioner(desc, ctx, run)
	if err != nil {
		return err
	}
	input, err := p.InputSeeds(func(_ int, dst []byte) error {
		lane := desc.New()
		lane.Seed(src.Uint32())
		blob, err := lane.MarshalBinary()
		if err != nil {
			return err
		}
		copy(dst, blob)
		return nil
	})
	if err != nil {
		return err
	}
	seeds, err := p.WorkingSeeds()
	if err != nil {
		return err
	}
	randoms, err := p.Randoms()
	if err != nil {
		return err
	}
	p.Commit(input, seeds, randoms)
	return nil
}

func cloneEngine(desc *Descriptor, e Engine) (Engine, error) {
	blob, err := e.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("%s: snapshot state: %w", desc.Name, err)
	}
	c := desc.New()
	if err := c.UnmarshalBinary(blob); err != nil {
		return nil, fmt.Errorf("%s: snapshot state: %w", desc.Name, err)
	}
	return c, nil
}
