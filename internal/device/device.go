// Package device describes the accelerator-context collaborator that
// generator engines provision buffers against. It owns no queues and
// compiles nothing itself; concrete accelerators implement Context.
package device

import (
	"context"
	"errors"
)

// Handle identifies a buffer inside one accelerator context.
type Handle int

// NoBuffer marks a buffer slot the algorithm does not use. Dispatch code
// skips binding it.
const NoBuffer Handle = -1

// Valid reports whether h refers to an allocated buffer.
func (h Handle) Valid() bool { return h >= 0 }

// BufferKind is the access mode the kernel needs.
type BufferKind int

const (
	BufferInput BufferKind = iota
	BufferOutput
	BufferIO
)

func (k BufferKind) String() string {
	switch k {
	case BufferInput:
		return "input"
	case BufferOutput:
		return "output"
	case BufferIO:
		return "io"
	default:
		return "unknown"
	}
}

var (
	ErrUnknownBuffer  = errors.New("device: unknown buffer")
	ErrTooManyBuffers = errors.New("device: buffer limit reached")
	ErrUnknownKernel  = errors.New("device: unknown kernel")
	ErrClosed         = errors.New("device: context closed")
)

// Context is the provisioning surface of an accelerator.
//
// AllocateBuffer takes ownership of host: the context keeps it as the
// buffer's host mirror and releases it when the context is closed.
type Context interface {
	AllocateBuffer(host Staging, kind BufferKind, count, elemSize int) (Handle, error)
	AlignBufferSize(count int) int
	NameBuffer(h Handle, label string)
}

// Staging is host memory handed to AllocateBuffer.
type Staging interface {
	Bytes() []byte
	Free() error
}

// Program is a compiled kernel source bound to its compile options.
type Program interface {
	Defines() Defines
	Run(ctx context.Context, kernel string, l Launch) error
}

// BufferInfo describes one allocated buffer.
type BufferInfo struct {
	Handle   Handle
	Name     string
	Kind     BufferKind
	Count    int
	ElemSize int
}

// Accelerator is a Context that can also compile, dispatch and read back.
type Accelerator interface {
	Context
	Name() string
	Compile(source, options string) (Program, error)
	// ReadBuffer copies the device contents of h to the host.
	ReadBuffer(h Handle) ([]byte, error)
	Buffers() []BufferInfo
	Close() error
}
