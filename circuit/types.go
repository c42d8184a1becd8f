package circuit

import "github.com/theapemachine/qsim/tableau"

type QubitNode struct {
	ID    string `json:"id"`
	Value string `json:"value"`
}

type Operation struct {
	Operation string   `json:"operation"`
	Inputs    []string `json:"inputs"`
}

// CircuitRequest is the state-vector wire format. Shots > 0 also samples
// measurement counts; a zero Seed draws one from the clock.
type CircuitRequest struct {
	QubitNodes []QubitNode `json:"qubitNodes"`
	Operations []Operation `json:"operations"`
	Shots      int         `json:"shots,omitempty"`
	Seed       int64       `json:"seed,omitempty"`
}

type Step struct {
	Index     int     `json:"index"`
	Operation string  `json:"operation"`
	Positions []int   `json:"positions"`
	Norm      float64 `json:"norm"`
	Skipped   bool    `json:"skipped,omitempty"`
}

type CircuitResult struct {
	Qubits        []string       `json:"qubits"`
	Probabilities []float64      `json:"probabilities"`
	Magnitudes    []float64      `json:"magnitudes"`
	Basis         []string       `json:"basis"`
	Steps         []Step         `json:"steps"`
	Warnings      []string       `json:"warnings,omitempty"`
	Counts        map[string]int `json:"counts,omitempty"`
}

type Generator struct {
	Sign   string `json:"sign"`
	Paulis string `json:"paulis"`
}

// CliffordOp addresses 0-indexed tableau columns, control first.
type CliffordOp struct {
	Operation string `json:"operation"`
	Qubits    []int  `json:"qubits"`
}

type PauliError struct {
	Type  tableau.Pauli `json:"type"`
	Qubit int           `json:"qubit"`
}

/*
StabilizerRequest selects the starting tableau in priority order: a preset
codeType, explicit generators over numQubits, or |0…0⟩ on numQubits.
*/
type StabilizerRequest struct {
	NumQubits  int          `json:"numQubits"`
	CodeType   string       `json:"codeType,omitempty"`
	Generators []Generator  `json:"generators,omitempty"`
	Operations []CliffordOp `json:"operations,omitempty"`
	Errors     []PauliError `json:"errors,omitempty"`
}

type StabilizerStep struct {
	Index     int    `json:"index"`
	Operation string `json:"operation"`
	Qubits    []int  `json:"qubits"`
	Skipped   bool   `json:"skipped,omitempty"`
	tableau.Snapshot
}

type StabilizerResult struct {
	Code           tableau.Code      `json:"code"`
	Qubits         int               `json:"qubits"`
	Initial        tableau.Snapshot  `json:"initial"`
	Steps          []StabilizerStep  `json:"steps"`
	SyndromeBefore []int             `json:"syndromeBefore"`
	AfterErrors    tableau.Snapshot  `json:"afterErrors"`
	SyndromeAfter  []int             `json:"syndromeAfter"`
	HasError       bool              `json:"hasError"`
	Recovery       *tableau.Recovery `json:"recovery"`
	AfterRecovery  tableau.Snapshot  `json:"afterRecovery"`
	Warnings       []string          `json:"warnings,omitempty"`
}

type QECRequest struct {
	CodeType string       `json:"codeType"`
	Errors   []PauliError `json:"errors"`
}

/*
QECResult is the preset-code summary: the tableau before and after the errors
and after recovery, plus the chosen correction. Each snapshot holds all 2n
rows with the destabilizers first, so the code's generators are rows n..2n-1
of x, z and r. The stabilizers field lists those rows as signed Pauli strings
and is the one to read for display.
*/
type QECResult struct {
	Initial       tableau.Snapshot  `json:"initial"`
	AfterErrors   tableau.Snapshot  `json:"afterErrors"`
	HasError      bool              `json:"hasError"`
	Recovery      *tableau.Recovery `json:"recovery"`
	AfterRecovery tableau.Snapshot  `json:"afterRecovery"`
}
