package unitary

import (
	"math"
	"math/cmplx"
	"strings"
)

// Gate is a canonical gate name as it appears on the wire.
type Gate string

const (
	Identity Gate = "identity"
	Hadamard Gate = "hadamard"
	PauliX   Gate = "pauli_x"
	PauliY   Gate = "pauli_y"
	PauliZ   Gate = "pauli_z"
	Phase    Gate = "phase"
	T        Gate = "t"
	CNOT     Gate = "cnot"
	Swap     Gate = "swap"
	CPhase   Gate = "cphase"
)

var aliases = map[string]Gate{
	"identity": Identity,
	"i":        Identity,
	"id":       Identity,
	"hadamard": Hadamard,
	"h":        Hadamard,
	"pauli_x":  PauliX,
	"x":        PauliX,
	"not":      PauliX,
	"pauli_y":  PauliY,
	"y":        PauliY,
	"pauli_z":  PauliZ,
	"z":        PauliZ,
	"phase":    Phase,
	"s":        Phase,
	"t":        T,
	"cnot":     CNOT,
	"cx":       CNOT,
	"swap":     Swap,
	"cphase":   CPhase,
	"cz":       CPhase,
}

// Lookup normalizes a gate name. The second result is false for unknown names.
func Lookup(name string) (Gate, bool) {
	g, ok := aliases[strings.ToLower(strings.TrimSpace(name))]
	return g, ok
}

// Arity is the number of qubit operands the gate acts on.
func (g Gate) Arity() int {
	switch g {
	case CNOT, Swap, CPhase:
		return 2
	}
	return 1
}

// Clifford reports whether the gate maps Paulis to Paulis under conjugation.
func (g Gate) Clifford() bool {
	return g != T
}

var invSqrt2 = complex(1/math.Sqrt2, 0)

// generators holds the 2×2 matrices of the single-qubit gates.
var generators = map[Gate][2][2]complex128{
	Identity: {{1, 0}, {0, 1}},
	Hadamard: {{invSqrt2, invSqrt2}, {invSqrt2, -invSqrt2}},
	PauliX:   {{0, 1}, {1, 0}},
	PauliY:   {{0, -1i}, {1i, 0}},
	PauliZ:   {{1, 0}, {0, -1}},
	Phase:    {{1, 0}, {0, 1i}},
	T:        {{1, 0}, {0, cmplx.Exp(complex(0, math.Pi/4))}},
}

// Generator returns the 2×2 matrix for a single-qubit gate.
func Generator(g Gate) ([][]complex128, bool) {
	m, ok := generators[g]
	if !ok {
		return nil, false
	}
	return [][]complex128{{m[0][0], m[0][1]}, {m[1][0], m[1][1]}}, true
}
