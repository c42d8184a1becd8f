// Package state holds the pure-state engine: an n-qubit register stored as
// its full vector of 2^n complex amplitudes.
package state

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
)

var (
	ErrDimensionMismatch = errors.New("unitary dimension does not match state dimension")
	ErrInvalidBasis      = errors.New("basis bit must be 0 or 1")
)

/*
Unitary is anything that can be applied to a State. The unitary package builds
dense operators that satisfy it, but tests and callers may hand in their own.
*/
type Unitary interface {
	Dim() int
	At(row, col int) complex128
}

/*
State is an ordered amplitude vector over the computational basis. Basis index
bit (n-k) belongs to qubit k, so qubit 1 is the most significant bit and the
ordering follows construction order.
*/
type State struct {
	amps   []complex128
	qubits int
}

// Basis returns |0⟩ or |1⟩.
func Basis(bit int) (*State, error) {
	switch bit {
	case 0:
		return &State{amps: []complex128{1, 0}, qubits: 1}, nil
	case 1:
		return &State{amps: []complex128{0, 1}, qubits: 1}, nil
	}

	return nil, fmt.Errorf("%w: got %d", ErrInvalidBasis, bit)
}

// Zero returns |0…0⟩ on n qubits.
func Zero(n int) *State {
	amps := make([]complex128, 1<<n)
	amps[0] = 1
	return &State{amps: amps, qubits: n}
}

// FromAmplitudes wraps a copy of amps. The length must be a power of two.
func FromAmplitudes(amps []complex128) (*State, error) {
	n := 0
	for 1<<n < len(amps) {
		n++
	}

	if len(amps) == 0 || 1<<n != len(amps) {
		return nil, fmt.Errorf("%w: %d amplitudes is not a power of two", ErrDimensionMismatch, len(amps))
	}

	out := make([]complex128, len(amps))
	copy(out, amps)
	return &State{amps: out, qubits: n}, nil
}

/*
Compose returns the tensor product a ⊗ b. The qubits of a precede the qubits
of b in the combined index, which makes a left fold over single-qubit states
build registers in declaration order.
*/
func Compose(a, b *State) *State {
	out := make([]complex128, len(a.amps)*len(b.amps))

	for i, x := range a.amps {
		if x == 0 {
			continue
		}

		base := i * len(b.amps)
		for j, y := range b.amps {
			out[base+j] = x * y
		}
	}

	return &State{amps: out, qubits: a.qubits + b.qubits}
}

// ComposeAll left-folds Compose over states.
func ComposeAll(states ...*State) *State {
	if len(states) == 0 {
		return &State{amps: []complex128{1}}
	}

	acc := states[0].Clone()
	for _, s := range states[1:] {
		acc = Compose(acc, s)
	}

	return acc
}

/*
Apply multiplies the state in place by u. The only failure is a dimension
mismatch, which means the caller built the operator for the wrong register.
*/
func (s *State) Apply(u Unitary) error {
	dim := len(s.amps)
	if u.Dim() != dim {
		return fmt.Errorf("%w: unitary %d, state %d", ErrDimensionMismatch, u.Dim(), dim)
	}

	out := make([]complex128, dim)
	for row := 0; row < dim; row++ {
		var acc complex128
		for col, a := range s.amps {
			if a == 0 {
				continue
			}
			acc += u.At(row, col) * a
		}
		out[row] = acc
	}

	s.amps = out
	return nil
}

// Amplitudes returns a copy of the current vector.
func (s *State) Amplitudes() []complex128 {
	out := make([]complex128, len(s.amps))
	copy(out, s.amps)
	return out
}

// Probabilities returns |a|² per basis index.
func (s *State) Probabilities() []float64 {
	out := make([]float64, len(s.amps))
	for i, a := range s.amps {
		m := cmplx.Abs(a)
		out[i] = m * m
	}
	return out
}

// Magnitudes returns |a| per basis index.
func (s *State) Magnitudes() []float64 {
	out := make([]float64, len(s.amps))
	for i, a := range s.amps {
		out[i] = cmplx.Abs(a)
	}
	return out
}

// Norm is Σ|a|², which stays 1 under unitary evolution.
func (s *State) Norm() float64 {
	var total float64
	for _, p := range s.Probabilities() {
		total += p
	}
	return total
}

// IsNormalized reports whether Norm is within tol of 1.
func (s *State) IsNormalized(tol float64) bool {
	return math.Abs(s.Norm()-1) <= tol
}

func (s *State) Qubits() int { return s.qubits }
func (s *State) Dim() int    { return len(s.amps) }

func (s *State) Clone() *State {
	out := make([]complex128, len(s.amps))
	copy(out, s.amps)
	return &State{amps: out, qubits: s.qubits}
}

// Label renders a basis index as its bit string, qubit 1 first.
func Label(index, qubits int) string {
	buf := make([]byte, qubits)
	for k := 0; k < qubits; k++ {
		if index&(1<<(qubits-1-k)) != 0 {
			buf[k] = '1'
		} else {
			buf[k] = '0'
		}
	}
	return string(buf)
}
