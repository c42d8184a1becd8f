// Package circuit drives the simulation engines from wire-level requests:
// qubit identifiers are resolved, gates are built and applied in order, and
// every step is recorded so callers can replay what happened.
package circuit

import (
	"errors"

	"github.com/theapemachine/qsim/state"
	"github.com/theapemachine/qsim/tableau"
	"github.com/theapemachine/qsim/unitary"
)

var (
	ErrUnknownQubitReference = errors.New("unknown qubit reference")
	ErrDuplicateQubit        = errors.New("duplicate qubit identifier")
	ErrTooManyQubits         = errors.New("too many qubits")
	ErrInvalidRequest        = errors.New("invalid request")
	ErrNormDrift             = errors.New("state norm drifted from 1")
)

// StateQubitLimit is the largest register RunCircuit accepts whatever the
// options say: every gate is built as a dense 2^n×2^n complex128 matrix, which
// is 256 MiB at 12 qubits and 4 GiB at 14.
const StateQubitLimit = 12

// Options bounds a single run.
type Options struct {
	MaxQubits           int
	MaxStabilizerQubits int
	Tolerance           float64
}

func DefaultOptions() Options {
	return Options{
		MaxQubits:           10,
		MaxStabilizerQubits: 64,
		Tolerance:           1e-9,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MaxQubits <= 0 {
		o.MaxQubits = d.MaxQubits
	}
	o.MaxQubits = min(o.MaxQubits, StateQubitLimit)
	if o.MaxStabilizerQubits <= 0 {
		o.MaxStabilizerQubits = d.MaxStabilizerQubits
	}
	if o.Tolerance <= 0 {
		o.Tolerance = d.Tolerance
	}
	return o
}

/*
IsCallerError reports whether err was caused by the request rather than by the
simulator, so transports can answer 400 instead of 500.
*/
func IsCallerError(err error) bool {
	for _, target := range []error{
		ErrUnknownQubitReference,
		ErrDuplicateQubit,
		ErrTooManyQubits,
		ErrInvalidRequest,
		state.ErrInvalidBasis,
		unitary.ErrQubitOutOfRange,
		unitary.ErrInvalidOperands,
		tableau.ErrInvalidCodeConfiguration,
		tableau.ErrQubitOutOfRange,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
