package grid

// Transform converts between the two addressing conventions for the same
// square grid: native matrix indices (row, col in [0,N)) and the alternate
// convention (x in [-N/2, N/2), y in (N/2-1 .. -N/2], y decreasing downward).
// Both directions wrap modulo N, so any integer input is accepted; the pair
// is exactly inverse after wraparound normalization.
type Transform struct {
	size int
}

// NewTransform builds a Transform for a grid of dimension n. Grid
// construction has already validated n, so this never fails for a Grid-owned
// size.
func NewTransform(n int) Transform {
	return Transform{size: n}
}

// Size returns the grid dimension the transform operates over.
func (t Transform) Size() int { return t.size }

// ToMatrix maps alternate coordinates to native matrix indices:
// col = (x + N/2) mod N, row = (N/2 - 1 - y) mod N.
func (t Transform) ToMatrix(x, y int) (row, col int) {
	col = euclidMod(x+t.size/2, t.size)
	row = euclidMod(t.size/2-1-y, t.size)
	return row, col
}

// ToAlternate is the exact inverse of ToMatrix. Out-of-range indices are
// normalized mod N first, so the round trip holds for all integers.
func (t Transform) ToAlternate(row, col int) (x, y int) {
	row = euclidMod(row, t.size)
	col = euclidMod(col, t.size)
	x = col - t.size/2
	y = t.size/2 - 1 - row
	return x, y
}

// euclidMod is the non-negative remainder, since Go's % follows the sign of
// the dividend.
func euclidMod(a, n int) int {
	m := a % n
	if m < 0 {
		m += n
	}
	return m
}
