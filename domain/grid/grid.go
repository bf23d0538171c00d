// Package grid holds the immutable byte-matrix model and the two coordinate
// conventions used to address it.
package grid

import (
	"fmt"

	"gridsig/domain/core"
)

// DefaultSize is the grid dimension observed in every known input.
const DefaultSize = 128

// Grid is a square N×N matrix of signed byte values. It is immutable after
// construction; components borrow it and never write through it.
type Grid struct {
	size  int
	cells [][]int8
}

// New validates and wraps a square cell matrix. The matrix must be non-empty,
// square, and its dimension must be a positive even number so that the
// alternate coordinate convention has a well-defined origin.
func New(cells [][]int8) (*Grid, error) {
	n := len(cells)
	if n == 0 {
		return nil, fmt.Errorf("%w: empty matrix", core.ErrInvalidGridSize)
	}
	if n%2 != 0 {
		return nil, fmt.Errorf("%w: dimension %d is odd", core.ErrInvalidGridSize, n)
	}
	for r, row := range cells {
		if len(row) != n {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", core.ErrInvalidGridSize, r, len(row), n)
		}
	}
	return &Grid{size: n, cells: cells}, nil
}

// FromInts builds a Grid from plain nested int arrays, the shape external
// loaders deliver. Values outside [-128, 127] are rejected.
func FromInts(values [][]int) (*Grid, error) {
	cells := make([][]int8, len(values))
	for r, row := range values {
		cells[r] = make([]int8, len(row))
		for c, v := range row {
			if v < -128 || v > 127 {
				return nil, fmt.Errorf("%w: cell (%d,%d) value %d outside signed byte range", core.ErrInvalidCoordinate, r, c, v)
			}
			cells[r][c] = int8(v)
		}
	}
	return New(cells)
}

// Size returns the grid dimension N.
func (g *Grid) Size() int { return g.size }

// At returns the cell value at native matrix indices. Callers must pass
// in-range indices; Region validation guarantees this for scan paths.
func (g *Grid) At(row, col int) int8 { return g.cells[row][col] }

// Flatten returns the grid contents in row-major order as raw bytes,
// the form control generation samples from.
func (g *Grid) Flatten() []byte {
	out := make([]byte, 0, g.size*g.size)
	for _, row := range g.cells {
		for _, v := range row {
			out = append(out, byte(v))
		}
	}
	return out
}

// Region is a rectangular sub-range of the grid, half-open on both axes:
// rows in [RowStart, RowEnd), columns in [ColStart, ColEnd).
type Region struct {
	RowStart int `json:"row_start"`
	RowEnd   int `json:"row_end"`
	ColStart int `json:"col_start"`
	ColEnd   int `json:"col_end"`
}

// FullRegion covers the entire grid of dimension n.
func FullRegion(n int) Region {
	return Region{RowStart: 0, RowEnd: n, ColStart: 0, ColEnd: n}
}

// Validate checks the region against a grid of dimension n. A region with
// zero cells is degenerate and rejected up front, never scanned.
func (r Region) Validate(n int) error {
	if r.RowStart < 0 || r.ColStart < 0 || r.RowEnd > n || r.ColEnd > n {
		return core.NewRegionError(fmt.Sprintf("bounds [%d,%d)x[%d,%d) outside grid of size %d",
			r.RowStart, r.RowEnd, r.ColStart, r.ColEnd, n))
	}
	if r.RowStart >= r.RowEnd || r.ColStart >= r.ColEnd {
		return core.NewRegionError(fmt.Sprintf("empty bounds [%d,%d)x[%d,%d)",
			r.RowStart, r.RowEnd, r.ColStart, r.ColEnd))
	}
	return nil
}

// CellCount returns the number of cells the region addresses.
func (r Region) CellCount() int {
	rows := r.RowEnd - r.RowStart
	cols := r.ColEnd - r.ColStart
	if rows <= 0 || cols <= 0 {
		return 0
	}
	return rows * cols
}

// Context bundles a loaded grid with its coordinate transform so callers pass
// one explicit value instead of reading ambient globals.
type Context struct {
	Grid      *Grid
	Transform Transform
}

// NewContext builds a Context for a loaded grid.
func NewContext(g *Grid) *Context {
	return &Context{Grid: g, Transform: NewTransform(g.Size())}
}
