package device

import (
	"fmt"
	"strconv"
	"strings"
)

// Defines are the preprocessor symbols a program was compiled with.
type Defines map[string]string

// ParseOptions extracts -D definitions from a compiler option string.
// Both "-D NAME=value" and "-DNAME=value" are accepted, a bare name
// defines "1", and one pair of surrounding parentheses is stripped from
// the value. Options other than -D are ignored.
func ParseOptions(options string) (Defines, error) {
	defs := Defines{}
	fields := strings.Fields(options)
	for i := 0; i < len(fields); i++ {
		f := fields[i]
		if !strings.HasPrefix(f, "-D") {
			continue
		}
		body := strings.TrimPrefix(f, "-D")
		if body == "" {
			i++
			if i >= len(fields) {
				return nil, fmt.Errorf("device: dangling -D at end of options")
			}
			body = fields[i]
		}
		name, value, ok := strings.Cut(body, "=")
		if name == "" {
			return nil, fmt.Errorf("device: empty define name in %q", body)
		}
		if !ok {
			value = "1"
		}
		if len(value) >= 2 && value[0] == '(' && value[len(value)-1] == ')' {
			value = value[1 : len(value)-1]
		}
		defs[name] = value
	}
	return defs, nil
}

// Float parses the named define as a floating literal.
func (d Defines) Float(name string) (float64, error) {
	v, ok := d[name]
	if !ok {
		return 0, fmt.Errorf("device: define %s not set", name)
	}
	f, err := strconv.ParseFloat(strings.TrimSuffix(v, "f"), 64)
	if err != nil {
		return 0, fmt.Errorf("device: define %s: %w", name, err)
	}
	return f, nil
}

// Int parses the named define as an integer literal.
func (d Defines) Int(name string) (int64, error) {
	v, ok := d[name]
	if !ok {
		return 0, fmt.Errorf("device: define %s not set", name)
	}
	n, err := strconv.ParseInt(strings.TrimRight(v, "uUlL"), 0, 64)
	if err != nil {
		return 0, fmt.Errorf("device: define %s: %w", name, err)
	}
	return n, nil
}

// Has reports whether name is defined.
func (d Defines) Has(name string) bool {
	_, ok := d[name]
	return ok
}
