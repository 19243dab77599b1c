// Package generators holds the concrete algorithms behind the prng.Engine
// contract, together with the host emulations of their device kernels.
package generators

import (
	"github.com/samcharles93/prngcl/internal/device"
	"github.com/samcharles93/prngcl/internal/prng"
)

// All returns every built-in descriptor in registration order.
func All() []*prng.Descriptor {
	return []*prng.Descriptor{Constant, PM, XOR128, TAUS, MT19937, MMLFG}
}

// NewRegistry registers All.
func NewRegistry() (*prng.Registry, error) {
	return prng.NewRegistry(All()...)
}

// Kernels returns the host emulation of every built-in kernel, keyed by
// kernel name.
func Kernels() device.Kernels {
	k := device.Kernels{Constant.ProductionKernel: constantSeries}
	for _, d := range All()[1:] {
		k = k.Merge(streamKernels(d))
	}
	return k
}
