package prng

import (
	"strconv"
	"strings"
)

// LiteralKind is how a define value is rendered.
type LiteralKind int

const (
	LiteralFlag LiteralKind = iota
	LiteralInt
	LiteralFixed
	LiteralExp
)

// Literal is a define value with an explicit rendering rule.
type Literal struct {
	Kind  LiteralKind
	Int   int64
	Float float64
	// Prec is the digit count after the decimal point for Fixed and Exp.
	Prec int
}

func Int(v int64) Literal { return Literal{Kind: LiteralInt, Int: v} }

// Fixed renders v as %1.<prec>f.
func Fixed(v float64, prec int) Literal { return Literal{Kind: LiteralFixed, Float: v, Prec: prec} }

// Exp renders v as %1.<prec>e.
func Exp(v float64, prec int) Literal { return Literal{Kind: LiteralExp, Float: v, Prec: prec} }

// Digits used when embedding a floating constant in kernel source.
const (
	SingleDigits = 16
	DoubleDigits = 23
)

// FloatLiteral formats v for the selected precision: 23 exponent digits
// for double, 16 fixed digits for single.
func FloatLiteral(v float64, p Precision) Literal {
	if p == Double {
		return Exp(v, DoubleDigits)
	}
	return Fixed(v, SingleDigits)
}

func (l Literal) String() string {
	switch l.Kind {
	case LiteralInt:
		return strconv.FormatInt(l.Int, 10)
	case LiteralFixed:
		return strconv.FormatFloat(l.Float, 'f', l.Prec, 64)
	case LiteralExp:
		return strconv.FormatFloat(l.Float, 'e', l.Prec, 64)
	default:
		return ""
	}
}

// Define is one compile-time symbol.
type Define struct {
	Name  string
	Value Literal
}

func (d Define) String() string {
	if d.Value.Kind == LiteralFlag {
		return "-D " + d.Name
	}
	return "-D " + d.Name + "=(" + d.Value.String() + ")"
}

// Options is an ordered list of defines. It is rendered to text only when
// handed to the kernel compiler.
type Options []Define

// Set appends name=v.
func (o Options) Set(name string, v Literal) Options {
	return append(o, Define{Name: name, Value: v})
}

// Flag appends a bare define.
func (o Options) Flag(name string) Options {
	return append(o, Define{Name: name, Value: Literal{Kind: LiteralFlag}})
}

// Append concatenates other after o.
func (o Options) Append(other ...Define) Options {
	return append(o, other...)
}

// Lookup returns the first define called name.
func (o Options) Lookup(name string) (Literal, bool) {
	for _, d := range o {
		if d.Name == name {
			return d.Value, true
		}
	}
	return Literal{}, false
}

func (o Options) String() string {
	parts := make([]string, len(o))
	for i, d := range o {
		parts[i] = d.String()
	}
	return strings.Join(parts, " ")
}

// Shared define names.
const (
	DefineInstances       = "PRNG_INSTANCES"
	DefineSamples         = "PRNG_SAMPLES"
	DefinePrecisionDouble = "PRNG_PRECISION_DOUBLE"
	DefineK               = "PRNG_K"
)

// BaseOptions are the defines every production kernel is compiled with.
func BaseOptions(d *Descriptor, run *RunParameters) Options {
	if d == nil || run == nil {
		return nil
	}
	o := Options{}.
		Set(DefineInstances, Int(int64(run.Instances))).
		Set(DefineSamples, Int(int64(run.Samples)))
	if run.Precision == Double {
		o = o.Flag(DefinePrecisionDouble)
		if d.K != 0 {
			o = o.Set(DefineK, FloatLiteral(d.K, Double))
		}
	}
	return o
}
