package circuit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/theapemachine/errnie"
	"github.com/theapemachine/qsim/tableau"
)

/*
RunStabilizer evolves a tableau through Clifford operations, injects the
requested Pauli errors, decodes the resulting syndrome and applies the
recovery. A snapshot is taken after every operation. Non-Clifford or unknown
operations are skipped with a warning. A syndrome with no single-qubit
correction leaves Recovery nil and AfterRecovery equal to AfterErrors.
*/
func RunStabilizer(ctx context.Context, req StabilizerRequest, opts Options) (*StabilizerResult, error) {
	opts = opts.withDefaults()

	t, err := buildTableau(req, opts)
	if err != nil {
		return nil, err
	}

	result := &StabilizerResult{
		Code:    t.Code(),
		Qubits:  t.Qubits(),
		Initial: t.Snapshot(),
		Steps:   make([]StabilizerStep, 0, len(req.Operations)),
	}

	for i, op := range req.Operations {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		err := t.ApplyClifford(op.Operation, op.Qubits...)
		switch {
		case errors.Is(err, tableau.ErrUnsupportedOperation):
			errnie.Info("RunStabilizer - skipping operation %d: %v", i, err)
			result.Warnings = append(result.Warnings, fmt.Sprintf("operation %d: %v", i, err))
		case err != nil:
			return nil, fmt.Errorf("operation %d (%s): %w", i, op.Operation, err)
		}

		result.Steps = append(result.Steps, StabilizerStep{
			Index:     i,
			Operation: op.Operation,
			Qubits:    append([]int(nil), op.Qubits...),
			Skipped:   err != nil,
			Snapshot:  t.Snapshot(),
		})
	}

	result.SyndromeBefore = tableau.Bits(t.MeasureSyndrome())

	for i, e := range req.Errors {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := t.ApplyError(e.Type, e.Qubit); err != nil {
			return nil, fmt.Errorf("error %d (%s): %w", i, e.Type, err)
		}
	}

	result.AfterErrors = t.Snapshot()
	result.SyndromeAfter = result.AfterErrors.Syndrome
	result.HasError = !sameBits(result.SyndromeBefore, result.SyndromeAfter)

	if result.HasError {
		rec, err := decodeAgainst(t, result.SyndromeBefore)
		if err != nil {
			errnie.Info("RunStabilizer - %v", err)
			result.Warnings = append(result.Warnings, err.Error())
		}

		if err := t.Recover(rec); err != nil {
			return nil, err
		}
		result.Recovery = rec
	}

	result.AfterRecovery = t.Snapshot()
	return result, nil
}

/*
decodeAgainst decodes the change in syndrome since before. Clifford evolution
or negative generators can leave stabilizer phases set before any error, and
only the flips caused by the errors locate them.
*/
func decodeAgainst(t *tableau.Tableau, before []int) (*tableau.Recovery, error) {
	syn := t.MeasureSyndrome()
	for i := range syn {
		syn[i] ^= uint8(before[i])
	}
	return t.Decoder().Decode(syn)
}

// RunQEC runs a preset code through the given errors and reports the
// panel-shaped result.
func RunQEC(ctx context.Context, req QECRequest, opts Options) (*QECResult, error) {
	if strings.TrimSpace(req.CodeType) == "" {
		return nil, fmt.Errorf("%w: codeType is required", tableau.ErrInvalidCodeConfiguration)
	}

	res, err := RunStabilizer(ctx, StabilizerRequest{CodeType: req.CodeType, Errors: req.Errors}, opts)
	if err != nil {
		return nil, err
	}

	return &QECResult{
		Initial:       res.Initial,
		AfterErrors:   res.AfterErrors,
		HasError:      res.HasError,
		Recovery:      res.Recovery,
		AfterRecovery: res.AfterRecovery,
	}, nil
}

func buildTableau(req StabilizerRequest, opts Options) (*tableau.Tableau, error) {
	if code := strings.TrimSpace(req.CodeType); code != "" && code != string(tableau.Custom) {
		c, err := tableau.ParseCode(code)
		if err != nil {
			return nil, err
		}

		n, _, _ := tableau.Describe(c)
		if req.NumQubits != 0 && req.NumQubits != n {
			return nil, fmt.Errorf("%w: %s uses %d qubits, got numQubits %d",
				tableau.ErrInvalidCodeConfiguration, c, n, req.NumQubits)
		}
		if len(req.Generators) > 0 {
			return nil, fmt.Errorf("%w: generators cannot be combined with %s", tableau.ErrInvalidCodeConfiguration, c)
		}

		return tableau.Preset(c)
	}

	if req.NumQubits > opts.MaxStabilizerQubits {
		return nil, fmt.Errorf("%w: %d requested, limit %d", ErrTooManyQubits, req.NumQubits, opts.MaxStabilizerQubits)
	}

	gens := make([]tableau.Generator, 0, len(req.Generators))
	for i, g := range req.Generators {
		gen, err := tableau.ParseGenerator(g.Sign, g.Paulis)
		if err != nil {
			return nil, fmt.Errorf("generator %d: %w", i, err)
		}
		gens = append(gens, gen)
	}

	return tableau.FromGenerators(req.NumQubits, gens)
}

func sameBits(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
