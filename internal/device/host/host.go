// Package host is an accelerator that runs kernels on the calling machine.
// Buffers live in host staging memory, compile options are parsed into
// defines, and kernels are Go emulations looked up by entry-point name.
package host

import (
	"bytes"
	"context"
	"fmt"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/samcharles93/prngcl/internal/device"
	"github.com/samcharles93/prngcl/internal/logger"
)

const (
	// DefaultAlign is the element quantum buffers are rounded up to.
	DefaultAlign = 64
	// DefaultMaxBuffers bounds the buffer table.
	DefaultMaxBuffers = 128
)

type Config struct {
	Align      int
	MaxBuffers int
	// Workers bounds concurrently running lanes. Zero means GOMAXPROCS.
	Workers int
	Kernels device.Kernels
	Logger  logger.Logger
}

// Buffer is one entry of the buffer table.
type Buffer struct {
	device.BufferInfo
	staging device.Staging
}

// Bytes returns the host mirror of the buffer.
func (b *Buffer) Bytes() []byte { return b.staging.Bytes() }

// Context implements device.Accelerator on the host.
type Context struct {
	cfg     Config
	log     logger.Logger
	mu      sync.RWMutex
	buffers []*Buffer
	closed  bool
}

var _ device.Accelerator = (*Context)(nil)

func New(cfg Config) *Context {
	if cfg.Align <= 0 {
		cfg.Align = DefaultAlign
	}
	if cfg.MaxBuffers <= 0 {
		cfg.MaxBuffers = DefaultMaxBuffers
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	return &Context{cfg: cfg, log: logger.OrDiscard(cfg.Logger).With("accelerator", "host")}
}

func (c *Context) Name() string { return "host" }

// AlignBufferSize rounds count up to the alignment quantum. Non-positive
// counts round to one quantum.
func (c *Context) AlignBufferSize(count int) int {
	q := c.cfg.Align
	if count <= 0 {
		return q
	}
	return (count + q - 1) / q * q
}

func (c *Context) AllocateBuffer(staging device.Staging, kind device.BufferKind, count, elemSize int) (device.Handle, error) {
	if staging == nil {
		return device.NoBuffer, fmt.Errorf("host: allocate buffer: no staging memory")
	}
	if need := count * elemSize; count <= 0 || elemSize <= 0 || len(staging.Bytes()) < need {
		return device.NoBuffer, fmt.Errorf("host: allocate buffer: staging holds %d bytes, need %d×%d",
			len(staging.Bytes()), count, elemSize)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return device.NoBuffer, device.ErrClosed
	}
	if len(c.buffers) >= c.cfg.MaxBuffers {
		return device.NoBuffer, fmt.Errorf("%w (%d)", device.ErrTooManyBuffers, c.cfg.MaxBuffers)
	}
	h := device.Handle(len(c.buffers))
	c.buffers = append(c.buffers, &Buffer{
		BufferInfo: device.BufferInfo{
			Handle:   h,
			Kind:     kind,
			Count:    count,
			ElemSize: elemSize,
		},
		staging: staging,
	})
	c.log.Debug("buffer allocated", "handle", int(h), "kind", kind.String(), "count", count, "elem_size", elemSize)
	return h, nil
}

// NameBuffer labels h for diagnostics. Unknown handles are ignored.
func (c *Context) NameBuffer(h device.Handle, label string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if b := c.lookup(h); b != nil {
		b.Name = label
	}
}

// Buffer returns the table entry for h.
func (c *Context) Buffer(h device.Handle) (*Buffer, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return nil, device.ErrClosed
	}
	b := c.lookup(h)
	if b == nil {
		return nil, fmt.Errorf("%w: %d", device.ErrUnknownBuffer, int(h))
	}
	return b, nil
}

// Buffers snapshots the table in allocation order.
func (c *Context) Buffers() []device.BufferInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]device.BufferInfo, 0, len(c.buffers))
	for _, b := range c.buffers {
		out = append(out, b.BufferInfo)
	}
	return out
}

// ReadBuffer returns a copy of the staging memory of h.
func (c *Context) ReadBuffer(h device.Handle) ([]byte, error) {
	b, err := c.Buffer(h)
	if err != nil {
		return nil, err
	}
	return bytes.Clone(b.Bytes()), nil
}

func (c *Context) lookup(h device.Handle) *Buffer {
	if !h.Valid() || int(h) >= len(c.buffers) {
		return nil
	}
	return c.buffers[h]
}

// Compile parses options and binds them to source. The host has no real
// compiler; source only has to name something.
func (c *Context) Compile(source, options string) (device.Program, error) {
	defs, err := device.ParseOptions(options)
	if err != nil {
		return nil, err
	}
	if source == "" {
		return nil, fmt.Errorf("host: compile: empty source path")
	}
	c.log.Debug("program compiled", "source", source, "options", options)
	return &Program{ctx: c, source: source, defines: defs}, nil
}

// Close releases every staging block. The context cannot be used afterwards.
func (c *Context) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	var firstErr error
	for _, b := range c.buffers {
		if err := b.staging.Free(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	c.buffers = nil
	return firstErr
}

// Program is a parsed option set bound to a context.
type Program struct {
	ctx     *Context
	source  string
	defines device.Defines
}

func (p *Program) Source() string          { return p.source }
func (p *Program) Defines() device.Defines { return p.defines }

// Run dispatches kernel over l.Instances lanes. The first lane error
// cancels the remaining lanes and is returned.
func (p *Program) Run(ctx context.Context, kernel string, l device.Launch) error {
	fn, ok := p.ctx.cfg.Kernels[kernel]
	if !ok || fn == nil {
		return fmt.Errorf("%w: %s", device.ErrUnknownKernel, kernel)
	}
	if l.Instances <= 0 || l.Samples <= 0 {
		return fmt.Errorf("host: run %s: instances=%d samples=%d", kernel, l.Instances, l.Samples)
	}

	env := &env{prog: p, launch: l}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.ctx.cfg.Workers)
	for lane := range l.Instances {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(gctx, env, lane)
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("host: run %s: %w", kernel, err)
	}
	p.ctx.log.Debug("kernel finished", "kernel", kernel, "instances", l.Instances, "samples", l.Samples)
	return nil
}

type env struct {
	prog   *Program
	launch device.Launch
}

func (e *env) Launch() device.Launch { return e.launch }

func (e *env) Define(name string) (string, bool) {
	v, ok := e.prog.defines[name]
	return v, ok
}

func (e *env) Buffer(h device.Handle) ([]byte, error) {
	b, err := e.prog.ctx.Buffer(h)
	if err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}
