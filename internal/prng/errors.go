package prng

import (
	"errors"
	"os"
	"sync"

	"github.com/samcharles93/prngcl/internal/logger"
)

var (
	ErrNoContext          = errors.New("prng: no device context")
	ErrNoState            = errors.New("prng: no engine state")
	ErrNoRun              = errors.New("prng: no run parameters")
	ErrBadRun             = errors.New("prng: invalid run parameters")
	ErrAlreadyProvisioned = errors.New("prng: run parameters already provisioned")
	ErrNoMemory           = errors.New("prng: host staging allocation failed")
	ErrBadParameter       = errors.New("prng: invalid parameter")
	ErrInvalidDescriptor  = errors.New("prng: invalid descriptor")
	ErrDuplicateName      = errors.New("prng: duplicate generator name")
	ErrUnknownGenerator   = errors.New("prng: unknown generator")
)

// A refused host staging allocation leaves no safe way to continue a Monte
// Carlo run, so it goes to the fatal handler, which by default logs and
// exits.
var (
	fatalMu      sync.RWMutex
	fatalHandler = defaultFatal
)

func defaultFatal(err error) {
	logger.Default().Error("fatal resource exhaustion", "error", err)
	os.Exit(2)
}

// SetFatalHandler replaces the resource-exhaustion handler and returns a
// function restoring the previous one. A handler that returns lets the
// failing operation return the error to its caller.
func SetFatalHandler(fn func(error)) (restore func()) {
	fatalMu.Lock()
	prev := fatalHandler
	fatalHandler = fn
	fatalMu.Unlock()
	return func() {
		fatalMu.Lock()
		fatalHandler = prev
		fatalMu.Unlock()
	}
}

func fatal(err error) error {
	fatalMu.RLock()
	h := fatalHandler
	fatalMu.RUnlock()
	h(err)
	return err
}
