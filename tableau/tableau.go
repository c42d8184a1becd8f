// Package tableau implements stabilizer simulation in the binary symplectic
// (Aaronson–Gottesman) representation: Clifford gates become row updates over
// GF(2), Pauli errors become phase flips, and syndromes are read straight off
// the stabilizer phase bits.
package tableau

import (
	"errors"
	"fmt"
	"strings"

	"github.com/theapemachine/qsim/unitary"
)

var (
	ErrInvalidCodeConfiguration = errors.New("invalid code configuration")
	ErrUnsupportedOperation     = errors.New("unsupported clifford operation")
	ErrQubitOutOfRange          = errors.New("qubit index out of range")
	ErrUncorrectable            = errors.New("syndrome has no single-qubit correction")
	ErrInvalidTableau           = errors.New("tableau violates symplectic structure")
)

/*
Tableau holds 2n generator rows over n qubits. Rows 0..n-1 are destabilizers,
rows n..2n-1 are stabilizers. Row i encodes (-1)^R[i] · ⊗_j P(X[i][j], Z[i][j])
with (1,1) read as Y. The phase is a single bit; imaginary phases never arise
because every row is Hermitian and Clifford conjugation preserves that.
*/
type Tableau struct {
	n    int
	X    [][]uint8
	Z    [][]uint8
	R    []uint8
	code Code

	// checks is how many leading stabilizer rows are parity checks of the
	// code; the rest fix the logical state.
	checks int
}

func alloc(n int) *Tableau {
	t := &Tableau{
		n:      n,
		X:      make([][]uint8, 2*n),
		Z:      make([][]uint8, 2*n),
		R:      make([]uint8, 2*n),
		code:   Custom,
		checks: n,
	}
	for i := range t.X {
		t.X[i] = make([]uint8, n)
		t.Z[i] = make([]uint8, n)
	}
	return t
}

// Identity returns the tableau of |0…0⟩: destabilizers X_i, stabilizers Z_i.
func Identity(n int) (*Tableau, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: %d qubits", ErrInvalidCodeConfiguration, n)
	}

	t := alloc(n)
	for i := 0; i < n; i++ {
		t.X[i][i] = 1
		t.Z[n+i][i] = 1
	}
	return t, nil
}

/*
FromGenerators builds a tableau whose leading stabilizers are gens, in order.
Up to n generators may be supplied; they must be n qubits wide, pairwise
commuting and independent. The remaining rows are completed over GF(2).
*/
func FromGenerators(n int, gens []Generator) (*Tableau, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: %d qubits", ErrInvalidCodeConfiguration, n)
	}
	if len(gens) == 0 {
		return Identity(n)
	}

	vecs := make([][]uint8, len(gens))
	for i, g := range gens {
		if len(g.Paulis) != n {
			return nil, fmt.Errorf(
				"%w: generator %d has %d paulis, want %d",
				ErrInvalidCodeConfiguration, i, len(g.Paulis), n,
			)
		}
		vecs[i] = g.vector()
	}

	destabs, stabs, err := complete(n, vecs)
	if err != nil {
		return nil, err
	}

	t := alloc(n)
	for i := 0; i < n; i++ {
		copy(t.X[i], destabs[i][:n])
		copy(t.Z[i], destabs[i][n:])
		copy(t.X[n+i], stabs[i][:n])
		copy(t.Z[n+i], stabs[i][n:])
	}
	for i, g := range gens {
		if g.Negative {
			t.R[n+i] = 1
		}
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}

	return t, nil
}

func (t *Tableau) Qubits() int { return t.n }
func (t *Tableau) Code() Code  { return t.code }
func (t *Tableau) Checks() int { return t.checks }

func (t *Tableau) Clone() *Tableau {
	out := alloc(t.n)
	for i := range t.X {
		copy(out.X[i], t.X[i])
		copy(out.Z[i], t.Z[i])
	}
	copy(out.R, t.R)
	out.code = t.code
	out.checks = t.checks
	return out
}

func (t *Tableau) row(i int) []uint8 {
	v := make([]uint8, 2*t.n)
	copy(v[:t.n], t.X[i])
	copy(v[t.n:], t.Z[i])
	return v
}

func (t *Tableau) checkQubit(q int) error {
	if q < 0 || q >= t.n {
		return fmt.Errorf("%w: %d not in 0..%d", ErrQubitOutOfRange, q, t.n-1)
	}
	return nil
}

/*
ApplyClifford conjugates every row by the named gate. Qubits are 0-indexed
columns; two-qubit gates take (control, target). SWAP runs as three CNOTs and
CPHASE as H·CNOT·H on the target. Unknown or non-Clifford gates leave the
tableau untouched and return ErrUnsupportedOperation.
*/
func (t *Tableau) ApplyClifford(op string, qubits ...int) error {
	gate, ok := unitary.Lookup(op)
	if !ok || !gate.Clifford() {
		return fmt.Errorf("%w: %q", ErrUnsupportedOperation, op)
	}

	if len(qubits) != gate.Arity() {
		return fmt.Errorf("%w: %s takes %d qubits, got %d", ErrUnsupportedOperation, gate, gate.Arity(), len(qubits))
	}

	for _, q := range qubits {
		if err := t.checkQubit(q); err != nil {
			return err
		}
	}

	if gate.Arity() == 2 && qubits[0] == qubits[1] {
		return fmt.Errorf("%w: %s on the same qubit %d twice", ErrUnsupportedOperation, gate, qubits[0])
	}

	switch gate {
	case unitary.Identity:
	case unitary.Hadamard:
		t.hadamard(qubits[0])
	case unitary.Phase:
		t.phase(qubits[0])
	case unitary.PauliX:
		t.pauli(X, qubits[0])
	case unitary.PauliY:
		t.pauli(Y, qubits[0])
	case unitary.PauliZ:
		t.pauli(Z, qubits[0])
	case unitary.CNOT:
		t.cnot(qubits[0], qubits[1])
	case unitary.Swap:
		t.cnot(qubits[0], qubits[1])
		t.cnot(qubits[1], qubits[0])
		t.cnot(qubits[0], qubits[1])
	case unitary.CPhase:
		t.hadamard(qubits[1])
		t.cnot(qubits[0], qubits[1])
		t.hadamard(qubits[1])
	}

	return nil
}

// HXH = Z, HZH = X, HYH = -Y.
func (t *Tableau) hadamard(q int) {
	for i := range t.X {
		t.R[i] ^= t.X[i][q] & t.Z[i][q]
		t.X[i][q], t.Z[i][q] = t.Z[i][q], t.X[i][q]
	}
}

// SXS† = Y, SYS† = -X, SZS† = Z.
func (t *Tableau) phase(q int) {
	for i := range t.X {
		t.R[i] ^= t.X[i][q] & t.Z[i][q]
		t.Z[i][q] ^= t.X[i][q]
	}
}

func (t *Tableau) cnot(c, tg int) {
	for i := range t.X {
		xc, zc := t.X[i][c], t.Z[i][c]
		xt, zt := t.X[i][tg], t.Z[i][tg]

		t.R[i] ^= xc & zt & (xt ^ zc ^ 1)
		t.X[i][tg] = xt ^ xc
		t.Z[i][c] = zc ^ zt
	}
}

// pauli flips the sign of every row that anticommutes with p on qubit q.
func (t *Tableau) pauli(p Pauli, q int) {
	px, pz := p.bits()
	for i := range t.X {
		t.R[i] ^= px&t.Z[i][q] ^ pz&t.X[i][q]
	}
}

/*
ApplyError injects a Pauli error on qubit q. Only phase bits change: a row
picks up a sign exactly when it anticommutes with the error. I is a no-op.
*/
func (t *Tableau) ApplyError(p Pauli, q int) error {
	if err := t.checkQubit(q); err != nil {
		return err
	}
	t.pauli(p, q)
	return nil
}

// MeasureSyndrome returns the stabilizer phase bits.
func (t *Tableau) MeasureSyndrome() []uint8 {
	return append([]uint8(nil), t.R[t.n:]...)
}

/*
Validate checks that destabilizer i anticommutes with stabilizer i and that
every other pair of rows commutes.
*/
func (t *Tableau) Validate() error {
	rows := make([][]uint8, 2*t.n)
	for i := range rows {
		rows[i] = t.row(i)
	}

	for i := 0; i < 2*t.n; i++ {
		for j := i + 1; j < 2*t.n; j++ {
			var want uint8
			if j == i+t.n {
				want = 1
			}
			if symp(rows[i], rows[j]) != want {
				return fmt.Errorf("%w: rows %d and %d", ErrInvalidTableau, i, j)
			}
		}
	}

	return nil
}

// Generator returns row i as a signed Pauli string.
func (t *Tableau) Generator(i int) Generator {
	g := Generator{Negative: t.R[i] == 1, Paulis: make([]Pauli, t.n)}
	for j := 0; j < t.n; j++ {
		g.Paulis[j] = pauliFromBits(t.X[i][j], t.Z[i][j])
	}
	return g
}

func (t *Tableau) Stabilizers() []string {
	out := make([]string, t.n)
	for i := range out {
		out[i] = t.Generator(t.n + i).String()
	}
	return out
}

func (t *Tableau) Destabilizers() []string {
	out := make([]string, t.n)
	for i := range out {
		out[i] = t.Generator(i).String()
	}
	return out
}

func (t *Tableau) String() string {
	return strings.Join(t.Stabilizers(), "\n")
}

// Snapshot is a deep copy of the tableau for step-by-step traces. Bits are
// ints so they encode as 0/1 arrays rather than byte strings. Rows 0..n-1 of
// X, Z and R are destabilizers; Stabilizers renders rows n..2n-1.
type Snapshot struct {
	X           [][]int  `json:"x"`
	Z           [][]int  `json:"z"`
	R           []int    `json:"r"`
	Syndrome    []int    `json:"syndrome"`
	Stabilizers []string `json:"stabilizers"`
}

func (t *Tableau) Snapshot() Snapshot {
	s := Snapshot{
		X:           make([][]int, len(t.X)),
		Z:           make([][]int, len(t.Z)),
		R:           Bits(t.R),
		Syndrome:    Bits(t.MeasureSyndrome()),
		Stabilizers: t.Stabilizers(),
	}
	for i := range t.X {
		s.X[i] = Bits(t.X[i])
		s.Z[i] = Bits(t.Z[i])
	}
	return s
}

// Bits widens a bit vector to ints.
func Bits(v []uint8) []int {
	out := make([]int, len(v))
	for i, b := range v {
		out[i] = int(b)
	}
	return out
}
