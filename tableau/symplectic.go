package tableau

import "fmt"

/*
Vectors in this file are length 2n with the x-part first and the z-part
second. Two Paulis commute exactly when their symplectic product is 0.
*/

func symp(a, b []uint8) uint8 {
	n := len(a) / 2
	var acc uint8
	for i := 0; i < n; i++ {
		acc ^= a[i]&b[n+i] ^ a[n+i]&b[i]
	}
	return acc
}

func xorInto(dst, src []uint8) {
	for i := range dst {
		dst[i] ^= src[i]
	}
}

func isZero(v []uint8) bool {
	for _, b := range v {
		if b != 0 {
			return false
		}
	}
	return true
}

func cloneVec(v []uint8) []uint8 {
	return append([]uint8(nil), v...)
}

// twisted swaps the halves so that plain dot products compute symp.
func twisted(v []uint8) []uint8 {
	n := len(v) / 2
	out := make([]uint8, len(v))
	copy(out[:n], v[n:])
	copy(out[n:], v[:n])
	return out
}

/*
rref reduces rows in place over GF(2), considering only the first cols
columns. It returns the pivot column of each leading row; rows past
len(pivots) are zero in those columns.
*/
func rref(rows [][]uint8, cols int) []int {
	pivots := make([]int, 0, len(rows))
	r := 0

	for c := 0; c < cols && r < len(rows); c++ {
		sel := -1
		for i := r; i < len(rows); i++ {
			if rows[i][c] == 1 {
				sel = i
				break
			}
		}
		if sel < 0 {
			continue
		}

		rows[r], rows[sel] = rows[sel], rows[r]
		for i := range rows {
			if i != r && rows[i][c] == 1 {
				xorInto(rows[i], rows[r])
			}
		}

		pivots = append(pivots, c)
		r++
	}

	return pivots
}

func rank(vs [][]uint8) int {
	if len(vs) == 0 {
		return 0
	}
	rows := make([][]uint8, len(vs))
	for i, v := range vs {
		rows[i] = cloneVec(v)
	}
	return len(rref(rows, len(vs[0])))
}

/*
dual solves symp(d_i, s_j) = δ_ij for every i. The stabilizers must be
independent, which guarantees a solution.
*/
func dual(stabs [][]uint8) [][]uint8 {
	m := len(stabs)
	width := len(stabs[0])

	aug := make([][]uint8, m)
	for j, s := range stabs {
		row := make([]uint8, width+m)
		copy(row, twisted(s))
		row[width+j] = 1
		aug[j] = row
	}

	pivots := rref(aug, width)

	out := make([][]uint8, m)
	for i := 0; i < m; i++ {
		d := make([]uint8, width)
		for r, p := range pivots {
			d[p] = aug[r][width+i]
		}
		out[i] = d
	}

	return out
}

// nullspace returns a basis of {v : symp(v, c) = 0 for all c in constraints}.
func nullspace(constraints [][]uint8, width int) [][]uint8 {
	rows := make([][]uint8, len(constraints))
	for i, c := range constraints {
		rows[i] = twisted(c)
	}

	pivots := rref(rows, width)

	isPivot := make(map[int]int, len(pivots))
	for r, p := range pivots {
		isPivot[p] = r
	}

	var basis [][]uint8
	for free := 0; free < width; free++ {
		if _, ok := isPivot[free]; ok {
			continue
		}

		v := make([]uint8, width)
		v[free] = 1
		for r, p := range pivots {
			v[p] = rows[r][free]
		}
		basis = append(basis, v)
	}

	return basis
}

/*
complete turns m ≤ n commuting, independent stabilizer vectors into a full
symplectic basis: n destabilizers and n stabilizers where destabilizer i
anticommutes only with stabilizer i. The supplied stabilizers keep their order
and come first; extra stabilizers are drawn from the symplectic complement.
*/
func complete(n int, stabs [][]uint8) (destabs, full [][]uint8, err error) {
	m := len(stabs)
	if m > n {
		return nil, nil, fmt.Errorf("%w: %d generators for %d qubits", ErrInvalidCodeConfiguration, m, n)
	}

	for i := 0; i < m; i++ {
		if isZero(stabs[i]) {
			return nil, nil, fmt.Errorf("%w: generator %d is the identity", ErrInvalidCodeConfiguration, i)
		}
		for j := i + 1; j < m; j++ {
			if symp(stabs[i], stabs[j]) != 0 {
				return nil, nil, fmt.Errorf("%w: generators %d and %d anticommute", ErrInvalidCodeConfiguration, i, j)
			}
		}
	}

	if m > 0 && rank(stabs) != m {
		return nil, nil, fmt.Errorf("%w: generators are not independent", ErrInvalidCodeConfiguration)
	}

	full = make([][]uint8, 0, n)
	for _, s := range stabs {
		full = append(full, cloneVec(s))
	}

	if m > 0 {
		destabs = dual(full)
	}

	// Destabilizers must commute among themselves; adding S_i fixes a clash
	// with D_i without disturbing any other relation.
	for k := 0; k < m; k++ {
		for i := 0; i < k; i++ {
			if symp(destabs[i], destabs[k]) == 1 {
				xorInto(destabs[k], full[i])
			}
		}
	}

	if m == n {
		return destabs, full, nil
	}

	constraints := append(append([][]uint8{}, full...), destabs...)
	rest := nullspace(constraints, 2*n)

	for len(rest) > 0 {
		v1 := rest[0]
		partner := -1
		for i := 1; i < len(rest); i++ {
			if symp(v1, rest[i]) == 1 {
				partner = i
				break
			}
		}
		if partner < 0 {
			return nil, nil, fmt.Errorf("%w: degenerate complement", ErrInvalidCodeConfiguration)
		}

		v2 := rest[partner]
		full = append(full, v1)
		destabs = append(destabs, v2)

		next := make([][]uint8, 0, len(rest)-2)
		for i, u := range rest {
			if i == 0 || i == partner {
				continue
			}
			u = cloneVec(u)
			a, b := symp(u, v2), symp(u, v1)
			if a == 1 {
				xorInto(u, v1)
			}
			if b == 1 {
				xorInto(u, v2)
			}
			next = append(next, u)
		}
		rest = next
	}

	return destabs, full, nil
}
