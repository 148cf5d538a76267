package generic

import "golang.org/x/exp/constraints"

// Max and Min are the generic-over-ordered-types forms extent.Intersect
// needs for its sweep over two already-normalized extent slices.

func Max[T constraints.Ordered](a, b T) T {
	if a > b {
		return a
	}
	return b
}

func Min[T constraints.Ordered](a, b T) T {
	if a < b {
		return a
	}
	return b
}
