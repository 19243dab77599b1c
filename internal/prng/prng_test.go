package prng

import (
	"errors"
	"math"
	"strconv"
	"testing"
)

func TestParametersLookupFirstMatchWins(t *testing.T) {
	t.Parallel()
	p := Parameters{}.With(ParamSeed1, 7).With("other", 1).With(ParamSeed1, 9)
	got, ok := p.Lookup(ParamSeed1)
	if !ok || got.Value != 7 {
		t.Fatalf("Lookup = %+v, %v", got, ok)
	}
	if _, ok := p.Lookup("missing"); ok {
		t.Fatal("missing name found")
	}
	if v, ok := p.Uint32(ParamSeed1); !ok || v != 7 {
		t.Fatalf("Uint32 = %d, %v", v, ok)
	}
	var empty Parameters
	if _, ok := empty.Uint32(ParamSeed1); ok {
		t.Fatal("empty set returned a value")
	}
}

func TestParseParameters(t *testing.T) {
	t.Parallel()
	p, err := ParseParameters([]string{"seed1=42", " seed2 = 0x10 ", "seed3=4294967295", "scale=0.5", "big=18446744073709551615"})
	if err != nil {
		t.Fatalf("ParseParameters: %v", err)
	}
	want := []struct {
		name  string
		value int64
		float float64
	}{
		{"seed1", 42, 42},
		{"seed2", 16, 16},
		{"seed3", 4294967295, 4294967295},
		{"scale", 0, 0.5},
		{"big", -1, 18446744073709551615},
	}
	for i, w := range want {
		if p[i].Name != w.name || p[i].Value != w.value || p[i].Float != w.float {
			t.Errorf("param %d = %+v, want %+v", i, p[i], w)
		}
	}
	if v, _ := p.Uint32("seed3"); v != math.MaxUint32 {
		t.Errorf("seed3 as uint32 = %d", v)
	}

	for _, bad := range []string{"seed1", "=3", "seed1=", "seed1=abc", "x=NaN", "seed1=1e30", "seed1=-1e19", "seed1=9.3e18"} {
		if _, err := ParseParameters([]string{bad}); !errors.Is(err, ErrBadParameter) {
			t.Errorf("ParseParameters(%q): expected ErrBadParameter, got %v", bad, err)
		}
	}
}

func TestParseParametersFloatEdges(t *testing.T) {
	t.Parallel()
	p, err := ParseParameters([]string{"a=2.5e9", "b=-9.2e18"})
	if err != nil {
		t.Fatalf("ParseParameters: %v", err)
	}
	if p[0].Value != 2500000000 || p[1].Value != -9200000000000000000 {
		t.Fatalf("unexpected values: %+v", p)
	}
}

func TestFloatLiteral(t *testing.T) {
	t.Parallel()
	v := 3221225472.0 / 4294967296.0

	d := FloatLiteral(v, Double).String()
	if d != "7.50000000000000000000000e-01" {
		t.Fatalf("double literal = %q", d)
	}
	s := FloatLiteral(v, Single).String()
	if s != "0.7500000000000000" {
		t.Fatalf("single literal = %q", s)
	}
	for _, text := range []string{d, s} {
		if f, err := strconv.ParseFloat(text, 64); err != nil || f != v {
			t.Fatalf("ParseFloat(%q) = %v, %v", text, f, err)
		}
	}
	if Int(-3).String() != "-3" || (Literal{}).String() != "" {
		t.Fatal("unexpected int/flag rendering")
	}
}

func TestOptionsRendering(t *testing.T) {
	t.Parallel()
	o := Options{}.Set("A", Int(1)).Flag("B").Append(Define{Name: "C", Value: Fixed(0.5, 2)})
	if got := o.String(); got != "-D A=(1) -D B -D C=(0.50)" {
		t.Fatalf("String() = %q", got)
	}
	if l, ok := o.Lookup("C"); !ok || l.Float != 0.5 {
		t.Fatalf("Lookup(C) = %+v, %v", l, ok)
	}
	if Options(nil).String() != "" {
		t.Fatal("nil options should render empty")
	}
}

func TestBaseOptions(t *testing.T) {
	t.Parallel()
	withK := *counterDesc
	withK.K = 0.25

	single := BaseOptions(&withK, NewRunParameters(3, 5, Single)).String()
	if single != "-D PRNG_INSTANCES=(3) -D PRNG_SAMPLES=(5)" {
		t.Fatalf("single = %q", single)
	}
	double := BaseOptions(&withK, NewRunParameters(3, 5, Double))
	if _, ok := double.Lookup(DefinePrecisionDouble); !ok {
		t.Fatal("double run missing precision flag")
	}
	if k, ok := double.Lookup(DefineK); !ok || k.Float != 0.25 {
		t.Fatalf("PRNG_K = %+v, %v", k, ok)
	}
	if _, ok := BaseOptions(counterDesc, NewRunParameters(1, 1, Double)).Lookup(DefineK); ok {
		t.Fatal("PRNG_K emitted for K=0")
	}
	if BaseOptions(nil, nil) != nil {
		t.Fatal("nil inputs should give nil options")
	}
}

func TestRunParameters(t *testing.T) {
	t.Parallel()
	run := NewRunParameters(3, 5, Double)
	if total, err := run.Total(); err != nil || total != 15 {
		t.Fatalf("Total = %d, %v", total, err)
	}
	l := run.Launch()
	if !l.Double || l.Instances != 3 || l.Samples != 5 || l.Randoms.Valid() {
		t.Fatalf("Launch = %+v", l)
	}
	for _, bad := range []*RunParameters{
		NewRunParameters(0, 1, Single),
		NewRunParameters(1, -1, Single),
		NewRunParameters(math.MaxInt, 2, Single),
	} {
		if _, err := bad.Total(); !errors.Is(err, ErrBadRun) {
			t.Errorf("Total(%d,%d): expected ErrBadRun, got %v", bad.Instances, bad.Samples, err)
		}
	}
	if Single.ElemSize() != 16 || Double.ElemSize() != 32 {
		t.Fatal("unexpected element sizes")
	}
}

func TestParsePrecision(t *testing.T) {
	t.Parallel()
	for in, want := range map[string]Precision{"": Single, "single": Single, "FLOAT": Single, "double": Double, "float64": Double} {
		got, err := ParsePrecision(in)
		if err != nil || got != want {
			t.Errorf("ParsePrecision(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParsePrecision("half"); err == nil {
		t.Error("expected error for half")
	}
}

func TestDescriptorPromote(t *testing.T) {
	t.Parallel()
	plain := counterDesc.Instantiate(2147483648, nil)
	if got := counterDesc.Promote(plain); got != 0.5 {
		t.Fatalf("Promote without K = %v", got)
	}

	withK := *counterDesc
	withK.K = 1.0 / 4294967296.0
	e := withK.Instantiate(2147483648, nil)
	want := 0.5 + withK.K*(2147483649.0/4294967296.0)
	if got := withK.Promote(e); got != want {
		t.Fatalf("Promote with K = %v, want %v", got, want)
	}

	if got := counterDesc.PromotedMax(); got != counterDesc.MaxFP {
		t.Fatalf("PromotedMax without K = %v, want MaxFP", got)
	}
	full := *counterDesc
	full.MaxFP = 4294967295.0 / 4294967296.0
	full.K = 1.0 / 4294967296.0
	if got := full.PromotedMax(); got != math.Nextafter(1, 0) {
		t.Fatalf("PromotedMax = %v, want largest double below 1", got)
	}
}

func TestDescriptorInstantiateAppliesParameters(t *testing.T) {
	t.Parallel()
	e := counterDesc.Instantiate(1, Parameters{}.With(ParamSeed1, 42))
	if got := e.Uint32(); got != 42 {
		t.Fatalf("Uint32 = %d, want 42", got)
	}
	if !counterDesc.HasInitKernel() {
		t.Fatal("counter declares an init kernel")
	}
}
