// Package unitary builds full-register operators for named gates. Local
// generators are embedded into the 2^n dimensional space either by Kronecker
// products (single-qubit gates) or by explicit basis-index permutation rules
// (two-qubit gates), so control and target may sit anywhere in the register.
package unitary

import (
	"errors"
	"fmt"
	"math/cmplx"
)

var (
	ErrUnsupportedOperation = errors.New("unsupported operation")
	ErrQubitOutOfRange      = errors.New("qubit position out of range")
	ErrInvalidOperands      = errors.New("invalid gate operands")
)

/*
Operator is an immutable dense 2^n×2^n matrix tagged with the gate and the
1-indexed qubit positions it acts on.
*/
type Operator struct {
	gate      Gate
	positions []int
	qubits    int
	supported bool
	m         [][]complex128
}

/*
Build constructs the operator for gate acting on positions (1-indexed, qubit 1
is the most significant bit) of an n-qubit register.

An unknown gate name, or a gate given no positions, yields the identity with
Supported() false and ErrUnsupportedOperation, so the caller can log the
occurrence and keep running. Positions outside 1..n, a two-qubit gate with
fewer than two positions or with equal positions are hard errors.
*/
func Build(name string, n int, positions ...int) (*Operator, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: register of %d qubits", ErrInvalidOperands, n)
	}

	gate, ok := Lookup(name)
	if !ok || len(positions) == 0 {
		op := identity(n)
		op.gate = Gate(name)
		op.positions = append([]int(nil), positions...)
		return op, fmt.Errorf("%w: %q on %v treated as identity", ErrUnsupportedOperation, name, positions)
	}

	for _, p := range positions {
		if p < 1 || p > n {
			return nil, fmt.Errorf("%w: %d not in 1..%d", ErrQubitOutOfRange, p, n)
		}
	}

	var m [][]complex128

	switch gate.Arity() {
	case 1:
		if len(positions) != 1 {
			return nil, fmt.Errorf("%w: %s takes one qubit, got %d", ErrInvalidOperands, gate, len(positions))
		}
		g, _ := Generator(gate)
		m = embed(g, n, positions[0])
	case 2:
		if len(positions) != 2 {
			return nil, fmt.Errorf("%w: %s takes two qubits, got %d", ErrInvalidOperands, gate, len(positions))
		}
		if positions[0] == positions[1] {
			return nil, fmt.Errorf("%w: %s on the same qubit %d twice", ErrInvalidOperands, gate, positions[0])
		}
		m = permute(gate, n, positions[0], positions[1])
	}

	return &Operator{
		gate:      gate,
		positions: append([]int(nil), positions...),
		qubits:    n,
		supported: true,
		m:         m,
	}, nil
}

// Must is Build for gates known to be valid; it panics otherwise.
func Must(name string, n int, positions ...int) *Operator {
	op, err := Build(name, n, positions...)
	if err != nil {
		panic(err)
	}
	return op
}

func identity(n int) *Operator {
	dim := 1 << n
	m := zeros(dim)
	for i := 0; i < dim; i++ {
		m[i][i] = 1
	}
	return &Operator{gate: Identity, qubits: n, m: m}
}

// embed computes I⊗(k-1) ⊗ g ⊗ I⊗(n-k).
func embed(g [][]complex128, n, k int) [][]complex128 {
	id := [][]complex128{{1, 0}, {0, 1}}

	out := [][]complex128{{1}}
	for q := 1; q <= n; q++ {
		if q == k {
			out = Kron(out, g)
			continue
		}
		out = Kron(out, id)
	}

	return out
}

/*
permute builds a two-qubit gate row by row. For every basis index the bits at
positions a and b are read directly, so the result does not depend on the two
qubits being adjacent or ordered. Each row holds exactly one non-zero entry.
*/
func permute(gate Gate, n, a, b int) [][]complex128 {
	dim := 1 << n
	m := zeros(dim)

	maskA := 1 << (n - a)
	maskB := 1 << (n - b)

	for i := 0; i < dim; i++ {
		bitA := i&maskA != 0
		bitB := i&maskB != 0

		j := i
		var v complex128 = 1

		switch gate {
		case CNOT:
			if bitA {
				j = i ^ maskB
			}
		case Swap:
			if bitA != bitB {
				j = i ^ maskA ^ maskB
			}
		case CPhase:
			if bitA && bitB {
				v = -1
			}
		}

		// Row j picks up amplitude i; the maps are involutions so this is
		// also the column view.
		m[j][i] = v
	}

	return m
}

// Kron is the Kronecker product a ⊗ b.
func Kron(a, b [][]complex128) [][]complex128 {
	ra, ca := len(a), len(a[0])
	rb, cb := len(b), len(b[0])

	out := make([][]complex128, ra*rb)
	for i := range out {
		out[i] = make([]complex128, ca*cb)
	}

	for i := 0; i < ra; i++ {
		for j := 0; j < ca; j++ {
			x := a[i][j]
			if x == 0 {
				continue
			}
			for k := 0; k < rb; k++ {
				for l := 0; l < cb; l++ {
					out[i*rb+k][j*cb+l] = x * b[k][l]
				}
			}
		}
	}

	return out
}

func zeros(dim int) [][]complex128 {
	m := make([][]complex128, dim)
	for i := range m {
		m[i] = make([]complex128, dim)
	}
	return m
}

func (o *Operator) Dim() int {
	return len(o.m)
}

func (o *Operator) At(row, col int) complex128 {
	return o.m[row][col]
}

func (o *Operator) Gate() Gate {
	return o.gate
}

func (o *Operator) Qubits() int {
	return o.qubits
}

func (o *Operator) Supported() bool {
	return o.supported
}

func (o *Operator) Positions() []int {
	return append([]int(nil), o.positions...)
}

// Matrix returns a copy of the full operator.
func (o *Operator) Matrix() [][]complex128 {
	out := make([][]complex128, len(o.m))
	for i, row := range o.m {
		out[i] = append([]complex128(nil), row...)
	}
	return out
}

// IsUnitary checks U·U† = I within tol.
func (o *Operator) IsUnitary(tol float64) bool {
	dim := len(o.m)
	for i := 0; i < dim; i++ {
		for j := 0; j < dim; j++ {
			var acc complex128
			for k := 0; k < dim; k++ {
				acc += o.m[i][k] * cmplx.Conj(o.m[j][k])
			}

			var want complex128
			if i == j {
				want = 1
			}
			if cmplx.Abs(acc-want) > tol {
				return false
			}
		}
	}
	return true
}

/*
Product returns the operator for applying ops in sequence (ops[0] first). The
result is tagged with the first gate; it is meant for checking identities such
as SWAP = CNOT·CNOT·CNOT.
*/
func Product(ops ...*Operator) (*Operator, error) {
	if len(ops) == 0 {
		return nil, fmt.Errorf("%w: empty product", ErrInvalidOperands)
	}

	dim := ops[0].Dim()
	acc := ops[0].Matrix()

	for _, op := range ops[1:] {
		if op.Dim() != dim {
			return nil, fmt.Errorf("%w: mixed dimensions %d and %d", ErrInvalidOperands, dim, op.Dim())
		}

		next := zeros(dim)
		for i := 0; i < dim; i++ {
			for k := 0; k < dim; k++ {
				x := op.m[i][k]
				if x == 0 {
					continue
				}
				for j := 0; j < dim; j++ {
					next[i][j] += x * acc[k][j]
				}
			}
		}
		acc = next
	}

	return &Operator{
		gate:      ops[0].gate,
		qubits:    ops[0].qubits,
		supported: true,
		m:         acc,
	}, nil
}
