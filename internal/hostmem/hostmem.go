// Package hostmem allocates page-backed host staging memory for device
// buffers. Blocks come from anonymous private mappings so that an
// exhausted address space surfaces as an error rather than a runtime abort.
package hostmem

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

var (
	ErrInvalidSize = errors.New("hostmem: invalid allocation size")
	ErrNoMemory    = errors.New("hostmem: allocation refused")
)

// Block is a zero-filled staging region. Release it with Free.
type Block struct {
	data []byte
	size int
}

// Alloc maps size bytes of zeroed memory.
func Alloc(size int) (*Block, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	data, err := unix.Mmap(-1, 0, size,
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("%w: %d bytes: %w", ErrNoMemory, size, err)
	}
	return &Block{data: data, size: size}, nil
}

// Bytes exposes the mapped region. It is nil after Free.
func (b *Block) Bytes() []byte {
	if b == nil {
		return nil
	}
	return b.data
}

// Len reports the requested size.
func (b *Block) Len() int {
	if b == nil {
		return 0
	}
	return b.size
}

// Free unmaps the region. Calling Free twice is a no-op.
func (b *Block) Free() error {
	if b == nil || b.data == nil {
		return nil
	}
	err := unix.Munmap(b.data)
	b.data = nil
	return err
}
