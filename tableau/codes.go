package tableau

import (
	"fmt"
	"strings"
)

// Code names a stabilizer code preset.
type Code string

const (
	Custom    Code = "custom"
	BitFlip   Code = "three_qubit_bit_flip"
	PhaseFlip Code = "three_qubit_phase_flip"
	Steane    Code = "steane_code"
)

var codeAliases = map[string]Code{
	"three_qubit_bit_flip":   BitFlip,
	"bit_flip":               BitFlip,
	"three_qubit_phase_flip": PhaseFlip,
	"phase_flip":             PhaseFlip,
	"steane_code":            Steane,
	"steane":                 Steane,
}

// ParseCode resolves a preset name or one of its short aliases.
func ParseCode(name string) (Code, error) {
	c, ok := codeAliases[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return "", fmt.Errorf("%w: unknown code %q", ErrInvalidCodeConfiguration, name)
	}
	return c, nil
}

type preset struct {
	checks  []string
	logical string
	summary string
}

/*
presets lists each code's parity checks followed by the logical operator
that pins the encoded state (|0_L⟩ for bit-flip and Steane, |+_L⟩ for
phase-flip). The Steane checks are the rows of the [7,4] Hamming matrix read
as binary digits 4, 2, 1 of the qubit position.
*/
var presets = map[Code]preset{
	BitFlip: {
		checks:  []string{"ZZI", "IZZ"},
		logical: "ZZZ",
		summary: "corrects a single X error",
	},
	PhaseFlip: {
		checks:  []string{"XXI", "IXX"},
		logical: "XXX",
		summary: "corrects a single Z error",
	},
	Steane: {
		checks: []string{
			"IIIXXXX", "IXXIIXX", "XIXIXIX",
			"IIIZZZZ", "IZZIIZZ", "ZIZIZIZ",
		},
		logical: "ZZZZZZZ",
		summary: "corrects any single-qubit error",
	},
}

// Preset returns the tableau of the code's encoded logical basis state.
func Preset(code Code) (*Tableau, error) {
	p, ok := presets[code]
	if !ok {
		return nil, fmt.Errorf("%w: no preset for %q", ErrInvalidCodeConfiguration, code)
	}

	gens := make([]Generator, 0, len(p.checks)+1)
	for _, s := range append(append([]string{}, p.checks...), p.logical) {
		gens = append(gens, MustGenerator(s))
	}

	t, err := FromGenerators(len(p.logical), gens)
	if err != nil {
		return nil, err
	}

	t.code = code
	t.checks = len(p.checks)
	return t, nil
}

// Describe returns the qubit count and a one-line capability summary.
func Describe(code Code) (int, string, bool) {
	p, ok := presets[code]
	if !ok {
		return 0, "", false
	}
	return len(p.logical), p.summary, true
}

// Codes lists the presets in a stable order.
func Codes() []Code {
	return []Code{BitFlip, PhaseFlip, Steane}
}
