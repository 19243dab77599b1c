package prng

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Well-known parameter names.
const (
	ParamSeed1 = "seed1"
	ParamSeed2 = "seed2"
	ParamSeed3 = "seed3"
	ParamSeed4 = "seed4"
)

// Parameter is one named override. Value carries the integer form, Float
// the floating form; integer inputs set both.
type Parameter struct {
	Name  string
	Value int64
	Float float64
}

// Parameters is an ordered override set. A driver may hand the same set to
// any algorithm; each picks the names it knows.
type Parameters []Parameter

// Lookup returns the first parameter called name.
func (p Parameters) Lookup(name string) (Parameter, bool) {
	for _, param := range p {
		if param.Name == name {
			return param, true
		}
	}
	return Parameter{}, false
}

// Uint32 returns the named value truncated to 32 bits.
func (p Parameters) Uint32(name string) (uint32, bool) {
	param, ok := p.Lookup(name)
	if !ok {
		return 0, false
	}
	return uint32(param.Value), true
}

// With returns p with an integer parameter appended.
func (p Parameters) With(name string, value int64) Parameters {
	return append(p, Parameter{Name: name, Value: value, Float: float64(value)})
}

// Names lists parameter names in order, duplicates included.
func (p Parameters) Names() []string {
	out := make([]string, len(p))
	for i, param := range p {
		out[i] = param.Name
	}
	return out
}

// ParseParameters builds a set from "name=value" entries. Values may be
// integers in any Go base prefix or floats.
func ParseParameters(entries []string) (Parameters, error) {
	out := make(Parameters, 0, len(entries))
	for _, entry := range entries {
		param, err := parseParameter(entry)
		if err != nil {
			return nil, err
		}
		out = append(out, param)
	}
	return out, nil
}

func parseParameter(entry string) (Parameter, error) {
	name, raw, ok := strings.Cut(entry, "=")
	name = strings.TrimSpace(name)
	raw = strings.TrimSpace(raw)
	if !ok || name == "" || raw == "" {
		return Parameter{}, fmt.Errorf("%w: %q (expected name=value)", ErrBadParameter, entry)
	}
	if n, err := strconv.ParseInt(raw, 0, 64); err == nil {
		return Parameter{Name: name, Value: n, Float: float64(n)}, nil
	}
	if u, err := strconv.ParseUint(raw, 0, 64); err == nil {
		return Parameter{Name: name, Value: int64(u), Float: float64(u)}, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return Parameter{}, fmt.Errorf("%w: %q: not a number", ErrBadParameter, entry)
	}
	// float64(math.MaxInt64) rounds up to 2^63, which int64 cannot hold.
	if f < math.MinInt64 || f >= -math.MinInt64 {
		return Parameter{}, fmt.Errorf("%w: %q: out of 64-bit integer range", ErrBadParameter, entry)
	}
	return Parameter{Name: name, Value: int64(f), Float: f}, nil
}
