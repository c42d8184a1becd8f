package state

import (
	"math/rand"
)

/*
Measure samples one basis index with probability |a|² and collapses the
register onto it. The probabilities are renormalized first so a state that
drifted by rounding still samples correctly.
*/
func (s *State) Measure(r *rand.Rand) int {
	n := len(s.amps)
	if n == 0 {
		return -1
	}

	outcome := s.pick(s.Probabilities(), r.Float64())

	collapsed := make([]complex128, n)
	collapsed[outcome] = 1
	s.amps = collapsed

	return outcome
}

// Sample draws shots outcomes without disturbing the state.
func (s *State) Sample(r *rand.Rand, shots int) map[int]int {
	counts := make(map[int]int)
	probs := s.Probabilities()

	for i := 0; i < shots; i++ {
		counts[s.pick(probs, r.Float64())]++
	}

	return counts
}

func (s *State) pick(probs []float64, u float64) int {
	var total float64
	for _, p := range probs {
		total += p
	}

	if total == 0 {
		return 0
	}

	var cumulative float64
	last := 0
	for i, p := range probs {
		if p == 0 {
			continue
		}
		last = i
		cumulative += p / total
		if u <= cumulative {
			return i
		}
	}

	// Rounding left u above the final cumulative value.
	return last
}
