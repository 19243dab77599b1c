// Package accel selects the accelerator a device session runs on.
package accel

import (
	"fmt"
	"strings"

	"github.com/samcharles93/prngcl/internal/device"
	"github.com/samcharles93/prngcl/internal/device/host"
)

const (
	Host   = "host"
	OpenCL = "opencl"
	Auto   = "auto"
)

// Options configures Open. Host-only fields are ignored by other backends.
type Options = host.Config

// Normalize lowercases name and checks it is a known backend. An empty
// name means Auto.
func Normalize(name string) (string, error) {
	b := strings.ToLower(strings.TrimSpace(name))
	if b == "" {
		return Auto, nil
	}
	switch b {
	case Host, OpenCL, Auto:
		return b, nil
	default:
		return "", fmt.Errorf("unknown accelerator %q (expected auto, host, or opencl)", b)
	}
}

// Available returns a comma-separated list of usable backends.
func Available() string {
	entries := []string{Host}
	if Has(OpenCL) {
		entries = append(entries, OpenCL)
	}
	return strings.Join(entries, ",")
}

// Open returns an accelerator for name. Auto prefers OpenCL when the build
// has it and falls back to the host emulator.
func Open(name string, opts Options) (device.Accelerator, error) {
	b, err := Normalize(name)
	if err != nil {
		return nil, err
	}
	switch b {
	case Host:
		return host.New(opts), nil
	case OpenCL:
		return newOpenCL(opts)
	default:
		if Has(OpenCL) {
			if acc, err := newOpenCL(opts); err == nil {
				return acc, nil
			}
		}
		return host.New(opts), nil
	}
}
