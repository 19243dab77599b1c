package device

import "context"

// Launch is the argument block of one kernel dispatch.
type Launch struct {
	Instances  int
	Samples    int
	Double     bool
	InputSeeds Handle
	Seeds      Handle
	Randoms    Handle
}

// Env is what a kernel sees while it runs: the bound buffers and the
// compile-time defines of its program.
type Env interface {
	Launch() Launch
	Buffer(h Handle) ([]byte, error)
	Define(name string) (string, bool)
}

// Kernel runs one lane (instance) of a dispatch. Lanes of the same launch
// may run concurrently and must only touch their own slots.
type Kernel func(ctx context.Context, env Env, lane int) error

// Kernels maps entry-point names to host emulations.
type Kernels map[string]Kernel

// Merge returns a new table holding k and every entry of other. Entries in
// other win on name clashes.
func (k Kernels) Merge(other Kernels) Kernels {
	out := make(Kernels, len(k)+len(other))
	for name, fn := range k {
		out[name] = fn
	}
	for name, fn := range other {
		out[name] = fn
	}
	return out
}
