package circuit

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/theapemachine/errnie"
	"github.com/theapemachine/qsim/state"
	"github.com/theapemachine/qsim/unitary"
)

/*
RunCircuit simulates a state-vector circuit. Qubits are composed left to right
in declaration order and operations are applied in list order. Gates the
builder does not know are recorded as skipped steps with a warning; a
measurement operation ends the circuit, and anything after it is ignored.
*/
func RunCircuit(ctx context.Context, req CircuitRequest, opts Options) (*CircuitResult, error) {
	opts = opts.withDefaults()

	if len(req.QubitNodes) == 0 {
		return nil, fmt.Errorf("%w: no qubits declared", ErrInvalidRequest)
	}
	if len(req.QubitNodes) > opts.MaxQubits {
		return nil, fmt.Errorf("%w: %d declared, limit %d", ErrTooManyQubits, len(req.QubitNodes), opts.MaxQubits)
	}
	if req.Shots < 0 {
		return nil, fmt.Errorf("%w: negative shots", ErrInvalidRequest)
	}

	reg := NewRegistry()
	qubits := make([]*state.State, 0, len(req.QubitNodes))

	for _, node := range req.QubitNodes {
		if _, err := reg.Add(node.ID); err != nil {
			return nil, err
		}

		bit, err := parseInitial(node.Value)
		if err != nil {
			return nil, fmt.Errorf("qubit %q: %w", node.ID, err)
		}

		q, err := state.Basis(bit)
		if err != nil {
			return nil, err
		}
		qubits = append(qubits, q)
	}

	psi := state.ComposeAll(qubits...)
	n := reg.Len()

	result := &CircuitResult{
		Qubits: reg.IDs(),
		Steps:  make([]Step, 0, len(req.Operations)),
	}

	for i, op := range req.Operations {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name := strings.ToLower(strings.TrimSpace(op.Operation))

		positions, err := reg.ResolveAll(op.Inputs)
		if err != nil {
			return nil, fmt.Errorf("operation %d (%s): %w", i, op.Operation, err)
		}

		if isMeasurement(name) {
			if rest := len(req.Operations) - i - 1; rest > 0 {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("operation %d: measurement ends the circuit, %d later operations ignored", i, rest))
			}
			break
		}

		u, err := unitary.Build(name, n, positions...)
		if errors.Is(err, unitary.ErrUnsupportedOperation) {
			errnie.Info("RunCircuit - skipping operation %d: %v", i, err)
			result.Warnings = append(result.Warnings, fmt.Sprintf("operation %d: %v", i, err))
			result.Steps = append(result.Steps, Step{
				Index: i, Operation: op.Operation, Positions: positions, Norm: psi.Norm(), Skipped: true,
			})
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("operation %d (%s): %w", i, op.Operation, err)
		}

		if err := psi.Apply(u); err != nil {
			return nil, err
		}

		norm := psi.Norm()
		if math.Abs(norm-1) > opts.Tolerance {
			return nil, fmt.Errorf("%w: %g after operation %d (%s)", ErrNormDrift, norm, i, op.Operation)
		}

		result.Steps = append(result.Steps, Step{
			Index: i, Operation: string(u.Gate()), Positions: positions, Norm: norm,
		})
	}

	result.Probabilities = psi.Probabilities()
	result.Magnitudes = psi.Magnitudes()
	result.Basis = make([]string, psi.Dim())
	for i := range result.Basis {
		result.Basis[i] = state.Label(i, n)
	}

	if req.Shots > 0 {
		seed := req.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}

		result.Counts = make(map[string]int)
		for idx, c := range psi.Sample(rand.New(rand.NewSource(seed)), req.Shots) {
			result.Counts[state.Label(idx, n)] = c
		}
	}

	return result, nil
}

// parseInitial reads "0", "1", "|0⟩", "|1>" and blank (|0⟩).
func parseInitial(v string) (int, error) {
	v = strings.TrimSpace(v)
	v = strings.TrimPrefix(v, "|")
	v = strings.TrimSuffix(strings.TrimSuffix(v, "⟩"), ">")

	switch strings.TrimSpace(v) {
	case "", "0":
		return 0, nil
	case "1":
		return 1, nil
	}

	return 0, fmt.Errorf("%w: initial value %q", state.ErrInvalidBasis, v)
}

func isMeasurement(name string) bool {
	return name == "measurement" || name == "measure"
}
