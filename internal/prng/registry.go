package prng

import (
	"fmt"
	"slices"
	"strings"
)

// Registry is the immutable set of available algorithms.
type Registry struct {
	ordered []*Descriptor
	byName  map[string]*Descriptor
}

// NewRegistry validates descs and indexes them by case-folded name.
func NewRegistry(descs ...*Descriptor) (*Registry, error) {
	r := &Registry{
		ordered: make([]*Descriptor, 0, len(descs)),
		byName:  make(map[string]*Descriptor, len(descs)),
	}
	for _, d := range descs {
		if err := d.Validate(); err != nil {
			return nil, err
		}
		key := strings.ToUpper(d.Name)
		if _, dup := r.byName[key]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateName, d.Name)
		}
		r.byName[key] = d
		r.ordered = append(r.ordered, d)
	}
	return r, nil
}

// Lookup finds a descriptor by name, ignoring case.
func (r *Registry) Lookup(name string) (*Descriptor, bool) {
	d, ok := r.byName[strings.ToUpper(strings.TrimSpace(name))]
	return d, ok
}

// Get is Lookup with an error naming the available generators.
func (r *Registry) Get(name string) (*Descriptor, error) {
	if d, ok := r.Lookup(name); ok {
		return d, nil
	}
	return nil, fmt.Errorf("%w %q (available: %s)", ErrUnknownGenerator, name, strings.Join(r.Names(), ", "))
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.ordered))
	for i, d := range r.ordered {
		names[i] = d.Name
	}
	slices.Sort(names)
	return names
}

// All returns the descriptors in registration order.
func (r *Registry) All() []*Descriptor {
	return slices.Clone(r.ordered)
}

// Len is the number of registered algorithms.
func (r *Registry) Len() int { return len(r.ordered) }
