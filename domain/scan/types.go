// Package scan defines the symbol-classification model and the configuration
// surface of the resonance scanner.
package scan

import (
	"fmt"

	"gridsig/domain/core"
	"gridsig/domain/grid"
)

// SymbolCategory classifies a decoded byte for score weighting.
type SymbolCategory string

const (
	CategoryLogicSymbol  SymbolCategory = "logic-symbol"
	CategoryAlphanumeric SymbolCategory = "alphanumeric"
	CategoryOther        SymbolCategory = "other"
	CategoryNonPrintable SymbolCategory = "non-printable"
)

// DefaultLogicSymbols is the glyph set treated as logic symbols by the
// default classifier. Callers with a different notion of "meaningful"
// configure their own set.
const DefaultLogicSymbols = "&|^~!=<>+-*/%()[]{}"

// Classifier assigns decoded bytes to symbol categories. The printable test
// runs first: anything outside [32,126] is non-printable regardless of the
// configured symbol set.
type Classifier struct {
	logic [256]bool
}

// NewClassifier builds a classifier with the given logic-symbol glyphs.
func NewClassifier(logicSymbols string) *Classifier {
	c := &Classifier{}
	for _, b := range []byte(logicSymbols) {
		c.logic[b] = true
	}
	return c
}

// DefaultClassifier uses DefaultLogicSymbols.
func DefaultClassifier() *Classifier {
	return NewClassifier(DefaultLogicSymbols)
}

// Classify maps a decoded byte to its category.
func (c *Classifier) Classify(b byte) SymbolCategory {
	if b < 32 || b > 126 {
		return CategoryNonPrintable
	}
	if c.logic[b] {
		return CategoryLogicSymbol
	}
	if (b >= '0' && b <= '9') || (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') {
		return CategoryAlphanumeric
	}
	return CategoryOther
}

// WeightTable maps symbol categories to non-negative score weights.
// Categories absent from the table contribute zero.
type WeightTable map[SymbolCategory]float64

// DefaultWeights favors logic symbols over plain alphanumerics, the weighting
// the exploratory scans converged on.
func DefaultWeights() WeightTable {
	return WeightTable{
		CategoryLogicSymbol:  3.0,
		CategoryAlphanumeric: 1.0,
		CategoryOther:        0.5,
	}
}

// Validate rejects negative weights eagerly; a negative weight would make
// score maximization silently meaningless.
func (w WeightTable) Validate() error {
	for cat, weight := range w {
		if weight < 0 {
			return core.NewWeightError(string(cat), weight)
		}
	}
	return nil
}

// Weight returns the configured weight for a category, zero if unset.
func (w WeightTable) Weight(cat SymbolCategory) float64 {
	return w[cat]
}

// IndexFunc maps a grid cell to a byte-stream position. The result is taken
// modulo the stream length by the scanner, so implementations only need to be
// deterministic, not range-bounded.
//
// The exploratory scripts never settled on one canonical mapping, so the
// mapping stays injectable rather than hardcoded.
type IndexFunc func(row, col, gridSize int) int

// LinearIndex is the default mapping: row-major cell offset. Note that when
// the stream length divides the grid size, this degenerates to a
// column-only mapping: (r*N + c) mod L == c mod L whenever L divides N.
func LinearIndex(row, col, gridSize int) int {
	return row*gridSize + col
}

// ColumnIndex keys the stream position on the column alone.
func ColumnIndex(_, col, _ int) int {
	return col
}

// RowIndex keys the stream position on the row alone.
func RowIndex(row, _, _ int) int {
	return row
}

// DiagonalIndex keys the stream position on the cell's diagonal.
func DiagonalIndex(row, col, _ int) int {
	return row + col
}

// PulseRange is the inclusive range of XOR pulse candidates swept by a scan.
type PulseRange struct {
	Lo int `json:"lo"`
	Hi int `json:"hi"`
}

// FullPulseRange sweeps every byte value.
func FullPulseRange() PulseRange {
	return PulseRange{Lo: 0, Hi: 255}
}

// Validate bounds the range to byte values and rejects inverted ranges.
func (p PulseRange) Validate() error {
	if p.Lo < 0 || p.Hi > 255 || p.Lo > p.Hi {
		return fmt.Errorf("%w: [%d, %d]", core.ErrInvalidPulseRange, p.Lo, p.Hi)
	}
	return nil
}

// Count returns the number of pulse candidates in the range.
func (p PulseRange) Count() int {
	return p.Hi - p.Lo + 1
}

// Result is the immutable outcome of one scan invocation.
type Result struct {
	BestPulse int         `json:"best_pulse"`
	Score     float64     `json:"score"`
	Region    grid.Region `json:"region"`

	// Categories holds the per-cell classification under BestPulse,
	// indexed [row-RowStart][col-ColStart] relative to Region.
	Categories [][]SymbolCategory `json:"categories"`
}
