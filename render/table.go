// Package render turns simulation results into terminal tables and HTML
// charts.
package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/theapemachine/qsim/circuit"
	"github.com/theapemachine/qsim/tableau"
)

/*
Probabilities writes one row per basis state. Rows with zero probability are
left out when skipZero is set, which keeps wide registers readable.
*/
func Probabilities(w io.Writer, res *circuit.CircuitResult, skipZero bool) {
	table := tablewriter.NewWriter(w)

	header := []string{"Basis", "Magnitude", "Probability"}
	if res.Counts != nil {
		header = append(header, "Counts")
	}
	table.SetHeader(header)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)

	for i, p := range res.Probabilities {
		if skipZero && p < 1e-12 {
			continue
		}

		row := []string{
			"|" + res.Basis[i] + "⟩",
			strconv.FormatFloat(res.Magnitudes[i], 'f', 6, 64),
			strconv.FormatFloat(p, 'f', 6, 64),
		}
		if res.Counts != nil {
			row = append(row, strconv.Itoa(res.Counts[res.Basis[i]]))
		}
		table.Append(row)
	}

	table.Render()
}

// Steps lists the applied operations with the norm after each.
func Steps(w io.Writer, res *circuit.CircuitResult) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"#", "Operation", "Qubits", "Norm", "Note"})

	for _, s := range res.Steps {
		note := ""
		if s.Skipped {
			note = "skipped"
		}
		table.Append([]string{
			strconv.Itoa(s.Index),
			s.Operation,
			joinInts(s.Positions),
			strconv.FormatFloat(s.Norm, 'f', 12, 64),
			note,
		})
	}

	table.Render()
}

/*
Tableau prints the 2n generator rows: destabilizers first, then stabilizers,
each with its sign, Pauli string and raw x|z|r bits.
*/
func Tableau(w io.Writer, snap tableau.Snapshot) {
	n := len(snap.X) / 2

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Row", "Kind", "Generator", "X", "Z", "R"})

	for i := range snap.X {
		kind := "destabilizer"
		if i >= n {
			kind = "stabilizer"
		}

		table.Append([]string{
			strconv.Itoa(i),
			kind,
			generator(snap, i),
			joinBits(snap.X[i]),
			joinBits(snap.Z[i]),
			strconv.Itoa(snap.R[i]),
		})
	}

	table.Render()
}

// Correction summarizes a stabilizer run: syndromes, recovery and warnings.
func Correction(w io.Writer, res *circuit.StabilizerResult) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Stage", "Syndrome", "Detail"})

	recovery := "none needed"
	switch {
	case res.Recovery != nil:
		recovery = res.Recovery.String()
	case res.HasError:
		recovery = "uncorrectable"
	}

	table.Append([]string{"before errors", joinBits(res.SyndromeBefore), string(res.Code)})
	table.Append([]string{"after errors", joinBits(res.SyndromeAfter), fmt.Sprintf("error detected: %t", res.HasError)})
	table.Append([]string{"after recovery", joinBits(res.AfterRecovery.Syndrome), recovery})

	for _, warning := range res.Warnings {
		table.Append([]string{"warning", "", warning})
	}

	table.Render()
}

func generator(snap tableau.Snapshot, row int) string {
	var b strings.Builder
	if snap.R[row] == 1 {
		b.WriteByte('-')
	} else {
		b.WriteByte('+')
	}

	for j := range snap.X[row] {
		switch {
		case snap.X[row][j] == 1 && snap.Z[row][j] == 1:
			b.WriteByte('Y')
		case snap.X[row][j] == 1:
			b.WriteByte('X')
		case snap.Z[row][j] == 1:
			b.WriteByte('Z')
		default:
			b.WriteByte('I')
		}
	}

	return b.String()
}

func joinBits(bits []int) string {
	var b strings.Builder
	for _, v := range bits {
		b.WriteString(strconv.Itoa(v))
	}
	return b.String()
}

func joinInts(vs []int) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}
