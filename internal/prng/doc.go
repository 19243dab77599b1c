// Package prng is the engine abstraction shared by every generator
// algorithm: an immutable Descriptor per algorithm, an Engine holding one
// instance's state, named parameter overrides, the device buffer
// provisioner and the compile-option builder.
//
// A driver resolves a Descriptor from a Registry, creates an Engine with
// Descriptor.New, seeds it, optionally applies Parameters, and then either
// draws values on the host or provisions a device session:
//
//	d, _ := reg.Lookup("CONSTANT")
//	e := d.Instantiate(seed, params)
//	run := prng.NewRunParameters(instances, samples, prng.Double)
//	if err := e.DeviceInit(acc, run); err != nil { ... }
//	opts := prng.BaseOptions(d, run).Append(e.CompileOptions(acc, run)...)
//
// Engines do no locking. One goroutine owns an engine at a time; distinct
// engines are independent.
package prng
