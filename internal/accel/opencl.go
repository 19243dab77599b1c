package accel

import (
	"errors"

	"github.com/samcharles93/prngcl/internal/device"
)

// OpenCL is a reserved name: configs may ask for it, but no driver is
// linked, so Has reports false and Auto resolves to the host emulator.
var errOpenCLUnavailable = errors.New("opencl accelerator is not available in this build")

func Has(name string) bool {
	return name == Host
}

func newOpenCL(Options) (device.Accelerator, error) {
	return nil, errOpenCLUnavailable
}
