package tableau

import (
	"fmt"
	"strings"
)

// Pauli is a single-qubit Pauli operator.
type Pauli uint8

const (
	I Pauli = iota
	X
	Y
	Z
)

// ParsePauli accepts I, X, Y or Z in either case.
func ParsePauli(s string) (Pauli, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "I", "":
		return I, nil
	case "X":
		return X, nil
	case "Y":
		return Y, nil
	case "Z":
		return Z, nil
	}

	return I, fmt.Errorf("%w: unknown pauli %q", ErrInvalidCodeConfiguration, s)
}

// bits returns the symplectic (x, z) encoding; Y is (1, 1).
func (p Pauli) bits() (uint8, uint8) {
	switch p {
	case X:
		return 1, 0
	case Y:
		return 1, 1
	case Z:
		return 0, 1
	}
	return 0, 0
}

func pauliFromBits(x, z uint8) Pauli {
	switch {
	case x == 1 && z == 1:
		return Y
	case x == 1:
		return X
	case z == 1:
		return Z
	}
	return I
}

func (p Pauli) String() string {
	return [...]string{"I", "X", "Y", "Z"}[p&3]
}

func (p Pauli) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Pauli) UnmarshalText(b []byte) error {
	v, err := ParsePauli(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

/*
Generator is a signed Pauli string such as "-XZZX". Only real signs are
accepted: a stabilizer generator has to be Hermitian.
*/
type Generator struct {
	Negative bool
	Paulis   []Pauli
}

/*
ParseGenerator reads a sign ("+", "-", "+1", "-1", or empty) and a Pauli
string. The imaginary signs the generator editor offers (+i, -i) are refused.
*/
func ParseGenerator(sign, paulis string) (Generator, error) {
	g := Generator{}

	switch strings.TrimSpace(sign) {
	case "", "+", "+1", "1":
	case "-", "-1":
		g.Negative = true
	default:
		return g, fmt.Errorf("%w: sign %q is not ±1", ErrInvalidCodeConfiguration, sign)
	}

	for _, r := range strings.TrimSpace(paulis) {
		p, err := ParsePauli(string(r))
		if err != nil {
			return g, err
		}
		g.Paulis = append(g.Paulis, p)
	}

	if len(g.Paulis) == 0 {
		return g, fmt.Errorf("%w: empty pauli string", ErrInvalidCodeConfiguration)
	}

	return g, nil
}

// MustGenerator parses a string like "-ZZI"; it panics on malformed input.
func MustGenerator(s string) Generator {
	sign := ""
	if strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		sign, s = s[:1], s[1:]
	}

	g, err := ParseGenerator(sign, s)
	if err != nil {
		panic(err)
	}
	return g
}

func (g Generator) String() string {
	var b strings.Builder
	if g.Negative {
		b.WriteByte('-')
	} else {
		b.WriteByte('+')
	}
	for _, p := range g.Paulis {
		b.WriteString(p.String())
	}
	return b.String()
}

// vector returns the length-2n symplectic vector (x | z).
func (g Generator) vector() []uint8 {
	n := len(g.Paulis)
	v := make([]uint8, 2*n)
	for i, p := range g.Paulis {
		v[i], v[n+i] = p.bits()
	}
	return v
}
