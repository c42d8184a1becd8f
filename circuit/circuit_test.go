package circuit

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/theapemachine/qsim/tableau"
)

func approx(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math.Abs(a[i]-b[i]) > 1e-9 {
			return false
		}
	}
	return true
}

func nodes(ids ...string) []QubitNode {
	out := make([]QubitNode, len(ids))
	for i, id := range ids {
		out[i] = QubitNode{ID: id, Value: "|0⟩"}
	}
	return out
}

func TestRegistry(t *testing.T) {
	Convey("Given a registry", t, func() {
		reg := NewRegistry()

		Convey("Positions follow declaration order", func() {
			a, _ := reg.Add("q-a")
			b, _ := reg.Add("q-b")
			So(a, ShouldEqual, 1)
			So(b, ShouldEqual, 2)

			pos, err := reg.ResolveAll([]string{"q-b", "q-a"})
			So(err, ShouldBeNil)
			So(pos, ShouldResemble, []int{2, 1})
		})

		Convey("Duplicates and misses are rejected", func() {
			_, _ = reg.Add("q")
			_, err := reg.Add("q")
			So(errors.Is(err, ErrDuplicateQubit), ShouldBeTrue)

			_, err = reg.Resolve("ghost")
			So(errors.Is(err, ErrUnknownQubitReference), ShouldBeTrue)
		})
	})
}

func TestRunCircuit(t *testing.T) {
	ctx := context.Background()

	Convey("Given a Bell circuit", t, func() {
		req := CircuitRequest{
			QubitNodes: nodes("a", "b"),
			Operations: []Operation{
				{Operation: "hadamard", Inputs: []string{"a"}},
				{Operation: "cnot", Inputs: []string{"a", "b"}},
			},
		}

		res, err := RunCircuit(ctx, req, Options{})

		Convey("It produces equal weight on 00 and 11", func() {
			So(err, ShouldBeNil)
			So(approx(res.Probabilities, []float64{0.5, 0, 0, 0.5}), ShouldBeTrue)
			So(res.Basis, ShouldResemble, []string{"00", "01", "10", "11"})
			So(res.Qubits, ShouldResemble, []string{"a", "b"})
			So(len(res.Steps), ShouldEqual, 2)
			for _, s := range res.Steps {
				So(math.Abs(s.Norm-1), ShouldBeLessThan, 1e-9)
			}
		})

		Convey("Sampling with a fixed seed only hits 00 and 11", func() {
			req.Shots = 200
			req.Seed = 7
			res, err := RunCircuit(ctx, req, Options{})
			So(err, ShouldBeNil)
			So(res.Counts["00"]+res.Counts["11"], ShouldEqual, 200)
			So(res.Counts["01"], ShouldEqual, 0)
		})
	})

	Convey("Given a seeded random sequence of gates on five qubits", t, func() {
		r := rand.New(rand.NewSource(11))
		ids := []string{"q0", "q1", "q2", "q3", "q4"}
		single := []string{"hadamard", "phase", "t", "pauli_y"}
		double := []string{"cnot", "swap", "cphase"}

		req := CircuitRequest{QubitNodes: nodes(ids...)}
		for i := 0; i < 60; i++ {
			if r.Intn(2) == 0 {
				req.Operations = append(req.Operations, Operation{
					Operation: single[r.Intn(len(single))],
					Inputs:    []string{ids[r.Intn(len(ids))]},
				})
				continue
			}

			perm := r.Perm(len(ids))
			req.Operations = append(req.Operations, Operation{
				Operation: double[r.Intn(len(double))],
				Inputs:    []string{ids[perm[0]], ids[perm[1]]},
			})
		}

		res, err := RunCircuit(ctx, req, Options{})
		So(err, ShouldBeNil)
		So(len(res.Steps), ShouldEqual, 60)

		Convey("Every step keeps the state normalized", func() {
			for _, s := range res.Steps {
				So(s.Skipped, ShouldBeFalse)
				So(math.Abs(s.Norm-1), ShouldBeLessThan, 1e-9)
			}

			total := 0.0
			for _, p := range res.Probabilities {
				total += p
			}
			So(total, ShouldAlmostEqual, 1.0, 1e-9)
			So(len(res.Basis), ShouldEqual, 32)
			So(res.Basis[31], ShouldEqual, fmt.Sprintf("%05b", 31))
		})
	})

	Convey("Given initial values in every accepted notation", t, func() {
		req := CircuitRequest{QubitNodes: []QubitNode{
			{ID: "a", Value: "1"}, {ID: "b", Value: "|0>"}, {ID: "c", Value: "|1⟩"},
		}}

		res, err := RunCircuit(ctx, req, Options{})
		So(err, ShouldBeNil)
		So(res.Probabilities[5], ShouldAlmostEqual, 1.0)
	})

	Convey("Given a CNOT on non-adjacent qubits", t, func() {
		req := CircuitRequest{
			QubitNodes: []QubitNode{{ID: "c", Value: "1"}, {ID: "m", Value: "0"}, {ID: "t", Value: "0"}},
			Operations: []Operation{{Operation: "cx", Inputs: []string{"c", "t"}}},
		}

		res, err := RunCircuit(ctx, req, Options{})
		So(err, ShouldBeNil)
		So(res.Probabilities[5], ShouldAlmostEqual, 1.0)
	})

	Convey("Given an unknown gate", t, func() {
		req := CircuitRequest{
			QubitNodes: nodes("a"),
			Operations: []Operation{
				{Operation: "toffoli", Inputs: []string{"a"}},
				{Operation: "pauli_x", Inputs: []string{"a"}},
			},
		}

		res, err := RunCircuit(ctx, req, Options{})

		Convey("It warns, skips and carries on", func() {
			So(err, ShouldBeNil)
			So(len(res.Warnings), ShouldEqual, 1)
			So(res.Steps[0].Skipped, ShouldBeTrue)
			So(approx(res.Probabilities, []float64{0, 1}), ShouldBeTrue)
		})
	})

	Convey("Given a measurement in the middle", t, func() {
		req := CircuitRequest{
			QubitNodes: nodes("a"),
			Operations: []Operation{
				{Operation: "measurement", Inputs: []string{"a"}},
				{Operation: "pauli_x", Inputs: []string{"a"}},
			},
		}

		res, err := RunCircuit(ctx, req, Options{})
		So(err, ShouldBeNil)
		So(approx(res.Probabilities, []float64{1, 0}), ShouldBeTrue)
		So(len(res.Warnings), ShouldEqual, 1)
	})

	Convey("Given malformed requests", t, func() {
		_, err := RunCircuit(ctx, CircuitRequest{
			QubitNodes: nodes("a"),
			Operations: []Operation{{Operation: "hadamard", Inputs: []string{"b"}}},
		}, Options{})
		So(errors.Is(err, ErrUnknownQubitReference), ShouldBeTrue)
		So(IsCallerError(err), ShouldBeTrue)

		_, err = RunCircuit(ctx, CircuitRequest{QubitNodes: nodes("a", "b", "c")}, Options{MaxQubits: 2})
		So(errors.Is(err, ErrTooManyQubits), ShouldBeTrue)

		wide := make([]string, StateQubitLimit+1)
		for i := range wide {
			wide[i] = fmt.Sprintf("q%d", i)
		}
		_, err = RunCircuit(ctx, CircuitRequest{QubitNodes: nodes(wide...)}, Options{MaxQubits: 20})
		So(errors.Is(err, ErrTooManyQubits), ShouldBeTrue)

		_, err = RunCircuit(ctx, CircuitRequest{QubitNodes: []QubitNode{{ID: "a", Value: "|+⟩"}}}, Options{})
		So(IsCallerError(err), ShouldBeTrue)

		_, err = RunCircuit(ctx, CircuitRequest{
			QubitNodes: nodes("a"),
			Operations: []Operation{{Operation: "cnot", Inputs: []string{"a"}}},
		}, Options{})
		So(IsCallerError(err), ShouldBeTrue)
	})

	Convey("Given a cancelled context", t, func() {
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := RunCircuit(cctx, CircuitRequest{
			QubitNodes: nodes("a"),
			Operations: []Operation{{Operation: "hadamard", Inputs: []string{"a"}}},
		}, Options{})
		So(errors.Is(err, context.Canceled), ShouldBeTrue)
	})
}

func TestRunStabilizer(t *testing.T) {
	ctx := context.Background()

	Convey("Given a Bell preparation on the identity tableau", t, func() {
		res, err := RunStabilizer(ctx, StabilizerRequest{
			NumQubits: 2,
			Operations: []CliffordOp{
				{Operation: "hadamard", Qubits: []int{0}},
				{Operation: "t", Qubits: []int{0}},
				{Operation: "cnot", Qubits: []int{0, 1}},
			},
		}, Options{})

		So(err, ShouldBeNil)
		So(len(res.Steps), ShouldEqual, 3)
		So(res.Steps[1].Skipped, ShouldBeTrue)
		So(len(res.Warnings), ShouldEqual, 1)
		So(res.Steps[2].Stabilizers, ShouldResemble, []string{"+XX", "+ZZ"})
		So(res.HasError, ShouldBeFalse)
		So(res.Recovery, ShouldBeNil)
	})

	Convey("Given custom generators with a negative sign", t, func() {
		res, err := RunStabilizer(ctx, StabilizerRequest{
			NumQubits:  2,
			Generators: []Generator{{Sign: "-1", Paulis: "ZZ"}},
			Errors:     []PauliError{{Type: tableau.X, Qubit: 0}},
		}, Options{})

		Convey("Only the flip caused by the error is decoded", func() {
			So(err, ShouldBeNil)
			So(res.SyndromeBefore[0], ShouldEqual, 1)
			So(res.HasError, ShouldBeTrue)
			So(res.Recovery, ShouldNotBeNil)
			So(res.AfterRecovery.Syndrome, ShouldResemble, res.SyndromeBefore)
		})
	})

	Convey("Given invalid stabilizer requests", t, func() {
		_, err := RunStabilizer(ctx, StabilizerRequest{
			NumQubits:  2,
			Generators: []Generator{{Sign: "+i", Paulis: "XX"}},
		}, Options{})
		So(errors.Is(err, tableau.ErrInvalidCodeConfiguration), ShouldBeTrue)

		_, err = RunStabilizer(ctx, StabilizerRequest{NumQubits: 100}, Options{})
		So(errors.Is(err, ErrTooManyQubits), ShouldBeTrue)

		_, err = RunStabilizer(ctx, StabilizerRequest{CodeType: "steane", NumQubits: 3}, Options{})
		So(errors.Is(err, tableau.ErrInvalidCodeConfiguration), ShouldBeTrue)

		_, err = RunStabilizer(ctx, StabilizerRequest{
			NumQubits:  2,
			Operations: []CliffordOp{{Operation: "hadamard", Qubits: []int{2}}},
		}, Options{})
		So(errors.Is(err, tableau.ErrQubitOutOfRange), ShouldBeTrue)
	})
}

func TestRunQEC(t *testing.T) {
	ctx := context.Background()

	Convey("Given the bit-flip code with an X error on the middle qubit", t, func() {
		res, err := RunQEC(ctx, QECRequest{
			CodeType: "bit_flip",
			Errors:   []PauliError{{Type: tableau.X, Qubit: 1}},
		}, Options{})

		So(err, ShouldBeNil)
		So(res.Initial.Syndrome, ShouldResemble, []int{0, 0, 0})
		So(res.AfterErrors.Syndrome[:2], ShouldResemble, []int{1, 1})
		So(res.HasError, ShouldBeTrue)
		So(*res.Recovery, ShouldResemble, tableau.Recovery{Pauli: tableau.X, Qubit: 1})
		So(res.AfterRecovery.Syndrome, ShouldResemble, []int{0, 0, 0})
	})

	Convey("Given the bit-flip code snapshot", t, func() {
		res, err := RunQEC(ctx, QECRequest{CodeType: "bit_flip"}, Options{})
		So(err, ShouldBeNil)

		snap := res.Initial
		So(len(snap.X), ShouldEqual, 6)

		Convey("The code generators sit in the second half of the rows", func() {
			So(snap.Stabilizers, ShouldResemble, []string{"+ZZI", "+IZZ", "+ZZZ"})
			So(snap.Z[3:], ShouldResemble, [][]int{{1, 1, 0}, {0, 1, 1}, {1, 1, 1}})
			So(snap.X[3:], ShouldResemble, [][]int{{0, 0, 0}, {0, 0, 0}, {0, 0, 0}})
			So(snap.R[3:], ShouldResemble, []int{0, 0, 0})
		})
	})

	Convey("Given the Steane code with no errors", t, func() {
		res, err := RunQEC(ctx, QECRequest{CodeType: "steane"}, Options{})

		So(err, ShouldBeNil)
		So(res.HasError, ShouldBeFalse)
		So(res.Recovery, ShouldBeNil)
	})

	Convey("Given two errors the bit-flip code cannot tell apart", t, func() {
		res, err := RunQEC(ctx, QECRequest{
			CodeType: "bit_flip",
			Errors:   []PauliError{{Type: tableau.X, Qubit: 0}, {Type: tableau.X, Qubit: 1}},
		}, Options{})

		So(err, ShouldBeNil)
		So(res.HasError, ShouldBeTrue)
		So(*res.Recovery, ShouldResemble, tableau.Recovery{Pauli: tableau.X, Qubit: 2})
	})

	Convey("Given no code type", t, func() {
		_, err := RunQEC(ctx, QECRequest{}, Options{})
		So(errors.Is(err, tableau.ErrInvalidCodeConfiguration), ShouldBeTrue)
	})
}
