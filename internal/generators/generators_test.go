package generators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samcharles93/prngcl/internal/device"
	"github.com/samcharles93/prngcl/internal/prng"
)

func TestRegistryAcceptsBuiltins(t *testing.T) {
	t.Parallel()
	reg, err := NewRegistry()
	require.NoError(t, err)
	assert.Equal(t, len(All()), reg.Len())
	assert.Equal(t, []string{"CONSTANT", "MMLFG", "MT19937", "PM", "TAUS", "XOR128"}, reg.Names())

	d, ok := reg.Lookup("mt19937")
	require.True(t, ok)
	assert.Same(t, MT19937, d)
}

func TestKernelsCoverEveryDescriptor(t *testing.T) {
	t.Parallel()
	k := Kernels()
	for _, d := range All() {
		assert.Contains(t, k, d.ProductionKernel, d.Name)
		if d.HasInitKernel() {
			assert.Contains(t, k, d.InitKernel, d.Name)
		}
	}
}

func TestReferenceVectors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		desc   *prng.Descriptor
		params prng.Parameters
		want   []uint32
	}{
		{PM, prng.Parameters{}.With(prng.ParamSeed1, 1), []uint32{16807, 282475249}},
		{XOR128, prng.Parameters{}.
			With(prng.ParamSeed1, 123456789).
			With(prng.ParamSeed2, 362436069).
			With(prng.ParamSeed3, 521288629).
			With(prng.ParamSeed4, 88675123), []uint32{3701687786, 458299110, 2500872618}},
		{TAUS, prng.Parameters{}.
			With(prng.ParamSeed1, 12345).
			With(prng.ParamSeed2, 12345).
			With(prng.ParamSeed3, 12345), []uint32{1667269494, 944790115, 468047577}},
		{MT19937, prng.Parameters{}.With(prng.ParamSeed1, 5489), []uint32{3499211612, 581869302, 3890346734}},
		{MMLFG, prng.Parameters{}.With(prng.ParamSeed1, 0), []uint32{359901778, 988458024, 2400937105}},
	}
	for _, tc := range tests {
		e := tc.desc.Instantiate(99, tc.params)
		for i, want := range tc.want {
			assert.Equal(t, want, e.Uint32(), "%s draw %d", tc.desc.Name, i)
		}
	}
}

func TestParkMillerTenThousandth(t *testing.T) {
	t.Parallel()
	e := PM.Instantiate(0, prng.Parameters{}.With(prng.ParamSeed1, 1))
	var v uint32
	for range 10000 {
		v = e.Uint32()
	}
	assert.Equal(t, uint32(1043618065), v)
}

func TestSeedIsDeterministic(t *testing.T) {
	t.Parallel()
	for _, d := range All() {
		a := d.Instantiate(42, nil)
		b := d.Instantiate(42, nil)
		c := d.Instantiate(43, nil)
		same, differs := true, false
		for range 64 {
			va, vb, vc := a.Uint32(), b.Uint32(), c.Uint32()
			same = same && va == vb
			differs = differs || va != vc
		}
		assert.True(t, same, "%s: same seed diverged", d.Name)
		assert.True(t, differs, "%s: seeds 42 and 43 produced the same stream", d.Name)
	}
}

func TestOutputsWithinBounds(t *testing.T) {
	t.Parallel()
	for _, d := range All() {
		e := d.Instantiate(7, nil)
		for range 5000 {
			u := e.Uint32()
			require.GreaterOrEqual(t, u, d.MinUint, d.Name)
			require.LessOrEqual(t, u, d.MaxUint, d.Name)
			f := e.Float64()
			require.GreaterOrEqual(t, f, d.MinFP, d.Name)
			require.LessOrEqual(t, f, d.MaxFP, d.Name)
			require.Less(t, f, 1.0, d.Name)
		}
	}
}

func TestStateResumes(t *testing.T) {
	t.Parallel()
	for _, d := range All() {
		e := d.Instantiate(11, nil)
		for range 700 {
			e.Uint32()
		}
		blob, err := e.MarshalBinary()
		require.NoError(t, err)
		require.Len(t, blob, d.StateSize, d.Name)

		resumed := d.New()
		require.NoError(t, resumed.UnmarshalBinary(blob), d.Name)
		for i := range 700 {
			require.Equal(t, e.Uint32(), resumed.Uint32(), "%s draw %d after resume", d.Name, i)
		}

		err = resumed.UnmarshalBinary(blob[:len(blob)-1])
		assert.ErrorIs(t, err, ErrStateSize, d.Name)
	}
}

func TestUnknownParametersIgnored(t *testing.T) {
	t.Parallel()
	for _, d := range All() {
		want := d.Instantiate(5, nil)
		got := d.Instantiate(5, prng.Parameters{}.With("lag", 3).With("SEED1", 1))
		for range 32 {
			require.Equal(t, want.Uint32(), got.Uint32(), d.Name)
		}
	}
}

func TestZeroSeedsAreFixedUp(t *testing.T) {
	t.Parallel()

	pm := PM.Instantiate(0, prng.Parameters{}.With(prng.ParamSeed1, 0))
	assert.Equal(t, uint32(16807), pm.Uint32(), "zero PM seed should map to 1")

	zero := prng.Parameters{}.
		With(prng.ParamSeed1, 0).
		With(prng.ParamSeed2, 0).
		With(prng.ParamSeed3, 0).
		With(prng.ParamSeed4, 0)
	for _, d := range []*prng.Descriptor{XOR128, TAUS} {
		e := d.Instantiate(0, zero)
		nonZero := false
		for range 16 {
			nonZero = nonZero || e.Uint32() != 0
		}
		assert.True(t, nonZero, "%s stalled on an all-zero state", d.Name)
	}
}

func TestNilEngines(t *testing.T) {
	t.Parallel()
	run := prng.NewRunParameters(1, 1, prng.Single)
	var (
		c  *constantEngine
		pm *pmEngine
		x  *xor128Engine
		ts *tausEngine
		mt *mtEngine
		mm *mmlfgEngine
	)
	for _, e := range []prng.Engine{c, pm, x, ts, mt, mm} {
		assert.NotPanics(t, func() { e.SetParameters(prng.Parameters{}.With(prng.ParamSeed1, 1)) })
		assert.Nil(t, e.CompileOptions(nil, run))
		assert.ErrorIs(t, e.DeviceInit(nil, run), prng.ErrNoState)
	}
}

func TestStreamCompileOptions(t *testing.T) {
	t.Parallel()
	for _, d := range All()[1:] {
		e := d.Instantiate(1, nil)
		assert.Nil(t, e.CompileOptions(nil, prng.NewRunParameters(1, 1, prng.Single)), d.Name)

		opts := e.CompileOptions(&nullContext{}, prng.NewRunParameters(1, 1, prng.Single))
		defs, err := device.ParseOptions(opts.String())
		require.NoError(t, err)
		n, err := defs.Int(d.Name + "_STATE_SIZE")
		require.NoError(t, err)
		assert.Equal(t, int64(d.StateSize), n, d.Name)
	}
}

func TestSingleValueStaysBelowOne(t *testing.T) {
	t.Parallel()
	// Largest raw output rounds to 1.0 in float32.
	e := Constant.Instantiate(0, prng.Parameters{}.With(prng.ParamSeed1, math.MaxUint32))
	v := singleValue(e)
	assert.Less(t, v, 1.0)
	assert.Equal(t, float64(math.Nextafter32(1, 0)), v)
}

func TestPromoteSaturatedStaysBelowOne(t *testing.T) {
	t.Parallel()
	for _, d := range All() {
		if d.K == 0 {
			continue
		}
		// Every draw is the largest 32-bit output.
		e := Constant.Instantiate(0, prng.Parameters{}.With(prng.ParamSeed1, math.MaxUint32))
		v := d.Promote(e)
		assert.Less(t, v, 1.0, d.Name)
		assert.LessOrEqual(t, v, d.PromotedMax(), d.Name)
		assert.Less(t, d.PromotedMax(), 1.0, d.Name)
		if d.Divisor == twoPow32 {
			assert.Equal(t, math.Nextafter(1, 0), v, d.Name)
		}
	}
}

// nullContext satisfies device.Context for option tests that never
// allocate.
type nullContext struct{}

func (nullContext) AllocateBuffer(device.Staging, device.BufferKind, int, int) (device.Handle, error) {
	return device.NoBuffer, nil
}
func (nullContext) AlignBufferSize(n int) int        { return n }
func (nullContext) NameBuffer(device.Handle, string) {}
