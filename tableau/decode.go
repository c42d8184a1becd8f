package tableau

import (
	"fmt"
	"strings"
)

// Recovery is a single-qubit Pauli correction.
type Recovery struct {
	Pauli Pauli `json:"type"`
	Qubit int   `json:"qubit"`
}

func (r Recovery) String() string {
	return fmt.Sprintf("%s on qubit %d", r.Pauli, r.Qubit)
}

/*
Decoder maps check syndromes to minimal-weight single-qubit corrections. The
table is derived from the check rows: every X, Z and Y error on every qubit is
run through the symplectic product, and the first error to produce a pattern
claims it. Trying X before Z before Y gives the textbook answers for the
presets (bit-flip resolves to X, phase-flip to Z, Steane distinguishes all
three).
*/
type Decoder struct {
	checks int
	table  map[string]Recovery
}

// Decoder builds the lookup table from the current check rows.
func (t *Tableau) Decoder() *Decoder {
	d := &Decoder{checks: t.checks, table: make(map[string]Recovery)}

	rows := make([][]uint8, t.checks)
	for j := range rows {
		rows[j] = t.row(t.n + j)
	}

	for q := 0; q < t.n; q++ {
		for _, p := range []Pauli{X, Z, Y} {
			e := make([]uint8, 2*t.n)
			e[q], e[t.n+q] = p.bits()

			pattern := make([]uint8, t.checks)
			for j, row := range rows {
				pattern[j] = symp(e, row)
			}

			if isZero(pattern) {
				continue
			}

			key := patternKey(pattern)
			if _, taken := d.table[key]; !taken {
				d.table[key] = Recovery{Pauli: p, Qubit: q}
			}
		}
	}

	return d
}

/*
Decode looks up the check portion of a syndrome. A zero pattern needs no
correction and returns nil. Patterns outside the table, which only arise from
errors beyond the code's single-qubit correctable set, return
ErrUncorrectable.
*/
func (d *Decoder) Decode(syndrome []uint8) (*Recovery, error) {
	if len(syndrome) < d.checks {
		return nil, fmt.Errorf("%w: syndrome of %d bits, want %d", ErrUncorrectable, len(syndrome), d.checks)
	}

	pattern := syndrome[:d.checks]
	if isZero(pattern) {
		return nil, nil
	}

	rec, ok := d.table[patternKey(pattern)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUncorrectable, patternKey(pattern))
	}

	return &rec, nil
}

// Table exposes the lookup, keyed by syndrome bit strings such as "10".
func (d *Decoder) Table() map[string]Recovery {
	out := make(map[string]Recovery, len(d.table))
	for k, v := range d.table {
		out[k] = v
	}
	return out
}

// DecodeSyndrome measures the syndrome and decodes it against the active code.
func (t *Tableau) DecodeSyndrome() (*Recovery, error) {
	return t.Decoder().Decode(t.MeasureSyndrome())
}

// Recover applies rec as a Pauli correction. A nil recovery is a no-op.
func (t *Tableau) Recover(rec *Recovery) error {
	if rec == nil {
		return nil
	}
	return t.ApplyError(rec.Pauli, rec.Qubit)
}

func patternKey(bits []uint8) string {
	var b strings.Builder
	for _, v := range bits {
		b.WriteByte('0' + v)
	}
	return b.String()
}
