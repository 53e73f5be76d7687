// Package shuffle provides an unbiased, non-mutating Fisher-Yates shuffle.
package shuffle

import "math/rand/v2"

// Slice returns a shuffled copy of s using the process-wide random source.
func Slice[T any](s []T) []T {
	return SliceWith(nil, s)
}

// SliceWith returns a shuffled copy of s drawing from r. A nil r uses the
// process-wide source. The input slice is never modified.
func SliceWith[T any](r *rand.Rand, s []T) []T {
	out := make([]T, len(s))
	copy(out, s)

	intN := rand.IntN
	if r != nil {
		intN = r.IntN
	}

	for i := len(out) - 1; i > 0; i-- {
		j := intN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}
